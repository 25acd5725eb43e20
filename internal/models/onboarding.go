package models

// OnboardingView is the UI-facing snapshot of the onboarding wizard.
type OnboardingView struct {
	Active   bool
	Title    string
	Progress string
	Body     string
	CanBack  bool
	LastStep bool
}
