package models

// SessionView mirrors the command session state the UI cares about.
type SessionView struct {
	Status               string
	Busy                 bool
	AwaitingConfirmation bool
}

// AppModel represents the UI state - only local UI concerns.
type AppModel struct {
	Messages     []Message
	Input        string
	Session      SessionView
	LoadingDots  int
	Width        int
	Height       int
	VoiceEnabled bool
	Persona      string

	ShowConnections bool
	Connections     []ConnectionView

	Onboarding OnboardingView

	// LastAuthURL is the most recent authorization link surfaced by a
	// provider connection, shown until the connection settles.
	LastAuthURL string
}
