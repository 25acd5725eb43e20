package core

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mxrlkn/murmur/internal/api"
	"github.com/mxrlkn/murmur/internal/eventbus"
	"github.com/mxrlkn/murmur/internal/models"
)

func startTestService(t *testing.T, backend *fakeBackend) (*Service, *eventbus.EventBus, *memPrefs) {
	t.Helper()
	// Keep the wizard dismissed so conversation flows start clean.
	prefs := newMemPrefs()
	prefs.Set(PrefOnboardingCompleted, "1")

	bus := eventbus.NewEventBus()
	s := NewService(backend, bus, prefs, nil)
	s.Start()
	t.Cleanup(s.Stop)
	return s, bus, prefs
}

// waitForSession drains core events until the session view satisfies
// pred or the deadline passes.
func waitForSession(t *testing.T, bus *eventbus.EventBus, pred func(models.SessionView) bool) []models.Message {
	t.Helper()
	var messages []models.Message
	deadline := time.After(2 * time.Second)
	for {
		select {
		case event := <-bus.CoreToUI():
			if su, ok := event.(eventbus.StateUpdateEvent); ok {
				messages = append(messages, su.Messages...)
				if pred(su.Session) {
					return messages
				}
			}
		case <-deadline:
			t.Fatal("timed out waiting for session state")
		}
	}
}

func TestServiceConfirmFlowEndToEnd(t *testing.T) {
	var confirmedToken string
	backend := &fakeBackend{
		command: func(ctx context.Context, text string) (*api.CommandResponse, error) {
			return &api.CommandResponse{
				Status:         "confirm",
				Message:        "Delete 12 events?",
				ConfirmationID: "tok-42",
			}, nil
		},
		confirm: func(ctx context.Context, token string) (*api.CommandResponse, error) {
			confirmedToken = token
			return &api.CommandResponse{Status: "ok", Message: "All gone."}, nil
		},
	}
	s, bus, _ := startTestService(t, backend)

	require.NoError(t, bus.SendToCore(eventbus.SubmitCommandEvent{Text: "clear my calendar"}))
	waitForSession(t, bus, func(v models.SessionView) bool {
		return v.AwaitingConfirmation
	})
	assert.Equal(t, "tok-42", s.Session().PendingConfirmation())

	// The literal word routes through the same submit path as any text.
	require.NoError(t, bus.SendToCore(eventbus.SubmitCommandEvent{Text: "confirm"}))
	messages := waitForSession(t, bus, func(v models.SessionView) bool {
		return v.Status == StatusReady.String() && !v.AwaitingConfirmation
	})

	assert.Equal(t, "tok-42", confirmedToken)
	texts := make([]string, 0, len(messages))
	for _, m := range messages {
		texts = append(texts, m.Content)
	}
	assert.Contains(t, texts, "All gone.")
}

func TestServiceToggleVoicePersists(t *testing.T) {
	_, bus, prefs := startTestService(t, &fakeBackend{})

	require.NoError(t, bus.SendToCore(eventbus.ToggleVoiceEvent{}))

	require.Eventually(t, func() bool {
		v, ok, _ := prefs.Get(PrefVoiceEnabled)
		return ok && v == "1"
	}, time.Second, 5*time.Millisecond)
}

func TestServiceRestoresVoicePref(t *testing.T) {
	prefs := newMemPrefs()
	prefs.Set(PrefOnboardingCompleted, "1")
	prefs.Set(PrefVoiceEnabled, "1")

	bus := eventbus.NewEventBus()
	s := NewService(&fakeBackend{}, bus, prefs, nil)
	s.SetVoiceDefault(false)
	s.Start()
	defer s.Stop()

	deadline := time.After(2 * time.Second)
	for {
		select {
		case event := <-bus.CoreToUI():
			if su, ok := event.(eventbus.StateUpdateEvent); ok && su.VoiceEnabled {
				return
			}
		case <-deadline:
			t.Fatal("stored voice preference was not restored")
		}
	}
}

func TestServiceSelectPersonaUpdatesFillers(t *testing.T) {
	backend := &fakeBackend{
		personaPresets: func(ctx context.Context) (map[string]api.PersonaPreset, error) {
			return map[string]api.PersonaPreset{
				"sam": {Name: "sam", FillerPhrases: []string{"One sec."}},
			}, nil
		},
	}
	s, bus, prefs := startTestService(t, backend)

	require.NoError(t, bus.SendToCore(eventbus.SelectPersonaEvent{Key: "sam"}))

	require.Eventually(t, func() bool {
		v, ok, _ := prefs.Get(PrefPersona)
		return ok && v == "sam"
	}, time.Second, 5*time.Millisecond)
	assert.Equal(t, []string{"One sec."}, s.personas.FillerPool())
}

func TestServiceConnectionEventsReachUI(t *testing.T) {
	backend := &fakeBackend{
		connectStart: func(ctx context.Context, req api.ConnectRequest) (*api.ConnectResponse, error) {
			return &api.ConnectResponse{Status: "pending", AuthURL: "https://auth.example/y"}, nil
		},
		connectStatus: func(ctx context.Context, target string) (*api.ConnectResponse, error) {
			return &api.ConnectResponse{Status: "connected"}, nil
		},
	}
	_, bus, _ := startTestService(t, backend)

	require.NoError(t, bus.SendToCore(eventbus.SelectProviderEvent{Target: "calendar", Provider: "google"}))
	require.NoError(t, bus.SendToCore(eventbus.ConnectStartEvent{Target: "calendar"}))

	sawURL := false
	sawConnected := false
	deadline := time.After(2 * time.Second)
	for !sawURL || !sawConnected {
		select {
		case event := <-bus.CoreToUI():
			switch e := event.(type) {
			case eventbus.OpenURLEvent:
				sawURL = e.URL == "https://auth.example/y"
			case eventbus.ConnectionUpdateEvent:
				if e.Connection.Target == "calendar" && e.Connection.Status == "connected" {
					sawConnected = true
				}
			}
		case <-deadline:
			t.Fatalf("timed out: sawURL=%v sawConnected=%v", sawURL, sawConnected)
		}
	}
}

func TestServiceOnboardingResumeOnStart(t *testing.T) {
	backend := &fakeBackend{
		onboardFetch: func(ctx context.Context) (*api.OnboardingState, error) {
			return &api.OnboardingState{LastStep: 1}, nil
		},
	}
	bus := eventbus.NewEventBus()
	s := NewService(backend, bus, newMemPrefs(), nil)
	s.Start()
	defer s.Stop()

	deadline := time.After(2 * time.Second)
	for {
		select {
		case event := <-bus.CoreToUI():
			if ob, ok := event.(eventbus.OnboardingUpdateEvent); ok && ob.Onboarding.Active {
				assert.Equal(t, "Step 2 of 5", ob.Onboarding.Progress)
				return
			}
		case <-deadline:
			t.Fatal("timed out waiting for onboarding view")
		}
	}
}
