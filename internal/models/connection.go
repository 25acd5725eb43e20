package models

// ConnectionView is the UI-facing snapshot of one provider connection.
type ConnectionView struct {
	Target           string
	Provider         string
	Status           string
	Note             string
	AuthURL          string
	NeedsCredentials bool
}
