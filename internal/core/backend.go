package core

import (
	"context"

	"github.com/mxrlkn/murmur/internal/api"
)

// Backend is the slice of the daemon API the core state machines use.
// *api.Client satisfies it; tests substitute fakes.
type Backend interface {
	Command(ctx context.Context, text string) (*api.CommandResponse, error)
	Confirm(ctx context.Context, token string) (*api.CommandResponse, error)
	ConnectStart(ctx context.Context, req api.ConnectRequest) (*api.ConnectResponse, error)
	ConnectStatus(ctx context.Context, target string) (*api.ConnectResponse, error)
	ConnectFinish(ctx context.Context, req api.ConnectRequest) (*api.ConnectResponse, error)
	ConnectTest(ctx context.Context, req api.ConnectRequest) (*api.ConnectResponse, error)
	OnboardingFetch(ctx context.Context) (*api.OnboardingState, error)
	OnboardingSave(ctx context.Context, state api.OnboardingState) error
	PersonaPresets(ctx context.Context) (map[string]api.PersonaPreset, error)
	PersonaSet(ctx context.Context, key string) error
	ProviderSettingsFetch(ctx context.Context, target string) (*api.ProviderSettings, error)
	ProviderSettingsSave(ctx context.Context, settings api.ProviderSettings) error
	Health(ctx context.Context) error
}

// Prefs is the durable local key-value store for client-only
// preferences. *store.Store satisfies it.
type Prefs interface {
	Get(key string) (string, bool, error)
	Set(key, value string) error
	Delete(key string) error
}

// Local preference keys.
const (
	PrefPersona               = "persona"
	PrefVoiceEnabled          = "voice_enabled"
	PrefOnboardingCompleted   = "onboarding_completed"
	PrefOnboardingCompletedAt = "onboarding_completed_at"
)

func fallback(message, def string) string {
	if message != "" {
		return message
	}
	return def
}
