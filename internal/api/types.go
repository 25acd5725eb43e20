package api

// CommandRequest is the body posted to /api/command. A plain command
// carries Text; a confirmation round-trip carries Name="confirm" and
// the token in Payload.
type CommandRequest struct {
	Text    string `json:"text,omitempty"`
	Name    string `json:"name,omitempty"`
	Payload string `json:"payload,omitempty"`
}

// CommandResponse is the agent's answer to a command or confirmation.
// Status is one of "confirm", "deny", "error", or anything else for a
// plain success.
type CommandResponse struct {
	Status         string `json:"status"`
	Message        string `json:"message,omitempty"`
	ConfirmationID string `json:"confirmation_id,omitempty"`
}

// ConnectRequest is the credential payload for the provider connection
// endpoints (start, finish, test).
type ConnectRequest struct {
	Target       string `json:"target"`
	Provider     string `json:"provider"`
	ClientID     string `json:"client_id,omitempty"`
	ClientSecret string `json:"client_secret,omitempty"`
	Code         string `json:"code,omitempty"`
}

// ConnectResponse is returned by all provider connection endpoints.
// Poll responses use Status "idle", "pending", "connected" or "error".
type ConnectResponse struct {
	Status  string `json:"status,omitempty"`
	Message string `json:"message,omitempty"`
	AuthURL string `json:"auth_url,omitempty"`
}

// OnboardingState is the full resumable onboarding record kept by the
// daemon. The local store only mirrors the completion flag.
type OnboardingState struct {
	Version      int    `json:"version"`
	Completed    bool   `json:"completed"`
	Skipped      bool   `json:"skipped,omitempty"`
	StartedAt    string `json:"started_at,omitempty"`
	LastStep     int    `json:"last_step"`
	VoiceEnabled bool   `json:"voice_enabled"`
	Persona      string `json:"persona,omitempty"`
	CompletedAt  string `json:"completed_at,omitempty"`
}

type onboardingEnvelope struct {
	State *OnboardingState `json:"state"`
}

// PersonaPreset describes one selectable voice persona.
type PersonaPreset struct {
	Name          string   `json:"name"`
	Description   string   `json:"description,omitempty"`
	FillerPhrases []string `json:"filler_phrases,omitempty"`
}

type presetsEnvelope struct {
	Presets map[string]PersonaPreset `json:"presets"`
}

type personaEnvelope struct {
	Persona *PersonaPreset `json:"persona"`
}

type setPersonaRequest struct {
	Preset string `json:"preset"`
}

// ProviderSettings is the daemon-side record of which provider a
// target is set up with.
type ProviderSettings struct {
	Target   string `json:"target"`
	Provider string `json:"provider"`
}

type providerSettingsEnvelope struct {
	Settings *ProviderSettings `json:"settings"`
}
