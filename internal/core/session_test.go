package core

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mxrlkn/murmur/internal/api"
)

func newTestSession(backend *fakeBackend) (*CommandSession, *recordingEmitter) {
	emit := &recordingEmitter{}
	// Long first delay keeps filler lines out of these transcripts.
	progress := NewProgressSchedulerWithTiming(time.Hour, time.Hour, emit.AssistantMessage)
	session := NewCommandSession(context.Background(), backend, emit, progress, nil)
	return session, emit
}

func TestSubmitSuccess(t *testing.T) {
	backend := &fakeBackend{
		command: func(ctx context.Context, text string) (*api.CommandResponse, error) {
			return &api.CommandResponse{Status: "ok", Message: "Booked it."}, nil
		},
	}
	session, emit := newTestSession(backend)

	session.Submit("Book a flight")

	assert.Equal(t, StatusReady, session.Status())
	lines := emit.assistantLines()
	require.Len(t, lines, 2)
	assert.Equal(t, "Okay, working on book a flight.", lines[0])
	assert.Equal(t, "Booked it.", lines[1])
	assert.Empty(t, session.PendingConfirmation())
}

func TestSubmitDefaultMessages(t *testing.T) {
	tests := []struct {
		name       string
		status     string
		wantLine   string
		wantStatus SessionStatus
	}{
		{"ok without message", "ok", msgDone, StatusReady},
		{"deny without message", "deny", msgDenied, StatusReady},
		{"error without message", "error", msgErrored, StatusError},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			backend := &fakeBackend{
				command: func(ctx context.Context, text string) (*api.CommandResponse, error) {
					return &api.CommandResponse{Status: tt.status}, nil
				},
			}
			session, emit := newTestSession(backend)

			session.Submit("do something")

			assert.Equal(t, tt.wantStatus, session.Status())
			lines := emit.assistantLines()
			require.Len(t, lines, 2)
			assert.Equal(t, tt.wantLine, lines[1])
		})
	}
}

func TestSubmitUnreachable(t *testing.T) {
	backend := &fakeBackend{
		command: func(ctx context.Context, text string) (*api.CommandResponse, error) {
			return nil, errors.New("connection refused")
		},
	}
	session, emit := newTestSession(backend)

	session.Submit("anything")

	assert.Equal(t, StatusOffline, session.Status())
	lines := emit.assistantLines()
	assert.Equal(t, msgUnreachable, lines[len(lines)-1])
}

func TestConfirmFlow(t *testing.T) {
	var confirmedToken string
	backend := &fakeBackend{
		command: func(ctx context.Context, text string) (*api.CommandResponse, error) {
			return &api.CommandResponse{Status: "confirm", ConfirmationID: "tok-1"}, nil
		},
		confirm: func(ctx context.Context, token string) (*api.CommandResponse, error) {
			confirmedToken = token
			return &api.CommandResponse{Status: "ok", Message: "Deleted."}, nil
		},
	}
	session, emit := newTestSession(backend)

	session.Submit("delete all events")
	assert.Equal(t, StatusAwaitingConfirmation, session.Status())
	assert.Equal(t, "tok-1", session.PendingConfirmation())

	session.Confirm()
	assert.Equal(t, "tok-1", confirmedToken)
	assert.Equal(t, StatusReady, session.Status())
	assert.Empty(t, session.PendingConfirmation())
	lines := emit.assistantLines()
	assert.Equal(t, "Deleted.", lines[len(lines)-1])
}

func TestConfirmWithoutTokenIsNoop(t *testing.T) {
	called := false
	backend := &fakeBackend{
		confirm: func(ctx context.Context, token string) (*api.CommandResponse, error) {
			called = true
			return &api.CommandResponse{Status: "ok"}, nil
		},
	}
	session, _ := newTestSession(backend)

	session.Confirm()

	assert.False(t, called)
}

func TestConfirmClearsTokenOnTransportError(t *testing.T) {
	backend := &fakeBackend{
		command: func(ctx context.Context, text string) (*api.CommandResponse, error) {
			return &api.CommandResponse{Status: "confirm", ConfirmationID: "tok-2"}, nil
		},
		confirm: func(ctx context.Context, token string) (*api.CommandResponse, error) {
			return nil, errors.New("connection refused")
		},
	}
	session, _ := newTestSession(backend)

	session.Submit("wipe inbox")
	session.Confirm()

	assert.Empty(t, session.PendingConfirmation())
	assert.Equal(t, StatusOffline, session.Status())
}

func TestConfirmResponseWithoutTokenStaysReady(t *testing.T) {
	backend := &fakeBackend{
		command: func(ctx context.Context, text string) (*api.CommandResponse, error) {
			return &api.CommandResponse{Status: "confirm"}, nil
		},
	}
	session, _ := newTestSession(backend)

	session.Submit("risky thing")

	// No token to echo back, so the session cannot be left awaiting.
	assert.Equal(t, StatusReady, session.Status())
	assert.Empty(t, session.PendingConfirmation())
}

func TestCancelPending(t *testing.T) {
	backend := &fakeBackend{
		command: func(ctx context.Context, text string) (*api.CommandResponse, error) {
			return &api.CommandResponse{Status: "confirm", ConfirmationID: "tok-3"}, nil
		},
	}
	session, emit := newTestSession(backend)

	session.Submit("delete everything")
	session.CancelPending()

	assert.Empty(t, session.PendingConfirmation())
	assert.Equal(t, StatusReady, session.Status())
	lines := emit.assistantLines()
	assert.Equal(t, msgCancelled, lines[len(lines)-1])
}

func TestCancelWithoutPendingIsSilent(t *testing.T) {
	session, emit := newTestSession(&fakeBackend{})

	session.CancelPending()

	assert.Empty(t, emit.assistantLines())
}

func TestHandleRoutesConfirmWords(t *testing.T) {
	confirmed := 0
	backend := &fakeBackend{
		command: func(ctx context.Context, text string) (*api.CommandResponse, error) {
			return &api.CommandResponse{Status: "confirm", ConfirmationID: "tok-4"}, nil
		},
		confirm: func(ctx context.Context, token string) (*api.CommandResponse, error) {
			confirmed++
			return &api.CommandResponse{Status: "ok"}, nil
		},
	}
	session, _ := newTestSession(backend)

	session.Submit("delete calendar")
	session.Handle("YES")

	assert.Equal(t, 1, confirmed)
	assert.Empty(t, session.PendingConfirmation())
}

func TestHandleNewTextAbandonsToken(t *testing.T) {
	var sent []string
	backend := &fakeBackend{
		command: func(ctx context.Context, text string) (*api.CommandResponse, error) {
			sent = append(sent, text)
			if len(sent) == 1 {
				return &api.CommandResponse{Status: "confirm", ConfirmationID: "tok-5"}, nil
			}
			return &api.CommandResponse{Status: "ok"}, nil
		},
	}
	session, _ := newTestSession(backend)

	session.Submit("delete calendar")
	require.Equal(t, "tok-5", session.PendingConfirmation())

	session.Handle("what's the weather")

	assert.Equal(t, []string{"delete calendar", "what's the weather"}, sent)
	assert.Empty(t, session.PendingConfirmation())
}

func TestSetIdleStatusSkipsBusyStates(t *testing.T) {
	backend := &fakeBackend{
		command: func(ctx context.Context, text string) (*api.CommandResponse, error) {
			return &api.CommandResponse{Status: "confirm", ConfirmationID: "tok-6"}, nil
		},
	}
	session, _ := newTestSession(backend)

	session.Submit("risky")
	require.Equal(t, StatusAwaitingConfirmation, session.Status())

	session.SetIdleStatus(false)

	assert.Equal(t, StatusAwaitingConfirmation, session.Status())
}

func TestSetIdleStatusTogglesReadyOffline(t *testing.T) {
	session, _ := newTestSession(&fakeBackend{})

	session.SetIdleStatus(false)
	assert.Equal(t, StatusOffline, session.Status())

	session.SetIdleStatus(true)
	assert.Equal(t, StatusReady, session.Status())
}

func TestSubmitEmitsFillerWhileWaiting(t *testing.T) {
	release := make(chan struct{})
	backend := &fakeBackend{
		command: func(ctx context.Context, text string) (*api.CommandResponse, error) {
			<-release
			return &api.CommandResponse{Status: "ok", Message: "Found three events."}, nil
		},
	}
	emit := &recordingEmitter{}
	progress := NewProgressSchedulerWithTiming(10*time.Millisecond, time.Hour, emit.AssistantMessage)
	session := NewCommandSession(context.Background(), backend, emit, progress, nil)

	done := make(chan struct{})
	go func() {
		session.Submit("check my calendar")
		close(done)
	}()

	time.Sleep(60 * time.Millisecond)
	close(release)
	<-done

	lines := emit.assistantLines()
	require.GreaterOrEqual(t, len(lines), 3)
	assert.Equal(t, "Okay, working on check my calendar.", lines[0])
	assert.Equal(t, "Still working on check my calendar.", lines[1])
	assert.Equal(t, "Found three events.", lines[len(lines)-1])
	assert.False(t, progress.Running())
}
