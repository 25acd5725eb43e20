package core

import (
	"context"
	"strings"
	"sync"
)

// SessionStatus is the single authoritative state of the command
// session, driven only by documented outcomes.
type SessionStatus int

const (
	StatusIdle SessionStatus = iota
	StatusThinking
	StatusAwaitingConfirmation
	StatusReady
	StatusError
	StatusOffline
)

func (s SessionStatus) String() string {
	switch s {
	case StatusIdle:
		return "Idle"
	case StatusThinking:
		return "Thinking..."
	case StatusAwaitingConfirmation:
		return "Awaiting confirmation"
	case StatusReady:
		return "Ready"
	case StatusError:
		return "Agent error"
	case StatusOffline:
		return "Offline"
	}
	return "Unknown"
}

// Default user-facing texts for responses that carry no message.
const (
	msgConfirmRequired = "Confirmation required. Say confirm or tap confirm."
	msgDenied          = "I can't do that."
	msgErrored         = "Something went wrong."
	msgDone            = "Done."
	msgConfirmed       = "Confirmed."
	msgCancelled       = "Cancelled."
	msgUnreachable     = "I couldn't reach the agent service."
)

// Emitter receives user-visible output from the command session.
type Emitter interface {
	UserMessage(text string)
	AssistantMessage(text string)
	StatusChanged(status SessionStatus)
}

// CommandSession drives one user request end-to-end: submit, interpret
// the outcome, run the progress scheduler while waiting, and manage
// the two-step confirmation for risky actions.
//
// Submit and Confirm block until the backend settles; callers run them
// off the UI loop. The session itself is safe for concurrent use.
type CommandSession struct {
	mu      sync.Mutex
	backend Backend
	emit    Emitter
	ctx     context.Context

	progress *ProgressScheduler
	fillers  func() []string

	text    string
	status  SessionStatus
	pending string
}

// NewCommandSession creates a session. fillers supplies the active
// persona's stock filler pool; nil means DefaultFillerPool.
func NewCommandSession(ctx context.Context, backend Backend, emit Emitter, progress *ProgressScheduler, fillers func() []string) *CommandSession {
	if fillers == nil {
		fillers = func() []string { return DefaultFillerPool }
	}
	return &CommandSession{
		backend:  backend,
		emit:     emit,
		ctx:      ctx,
		progress: progress,
		fillers:  fillers,
		status:   StatusIdle,
	}
}

// Status returns the current session status.
func (s *CommandSession) Status() SessionStatus {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.status
}

// PendingConfirmation returns the outstanding confirmation token, or
// "" when none is pending. It is non-empty iff the session is awaiting
// confirmation.
func (s *CommandSession) PendingConfirmation() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.pending
}

// Handle routes raw user input. While a confirmation is pending,
// literal affirmatives act as confirm and literal negatives as cancel;
// anything else abandons the pending token and submits as a new
// command.
func (s *CommandSession) Handle(text string) {
	trimmed := strings.TrimSpace(text)
	if trimmed == "" {
		return
	}
	if s.PendingConfirmation() != "" {
		switch strings.ToLower(trimmed) {
		case "confirm", "yes":
			s.Confirm()
			return
		case "cancel", "no":
			s.CancelPending()
			return
		}
		// A stale token must never be replayable once the user has
		// moved on.
		s.clearPending()
	}
	s.Submit(trimmed)
}

// Submit sends a command and interprets the outcome. Blocks until the
// backend settles.
func (s *CommandSession) Submit(text string) {
	trimmed := strings.TrimSpace(text)
	if trimmed == "" {
		return
	}

	s.mu.Lock()
	s.text = trimmed
	s.status = StatusThinking
	s.mu.Unlock()

	s.emit.UserMessage(trimmed)
	s.emit.StatusChanged(StatusThinking)

	summary := Summarize(trimmed)
	s.emit.AssistantMessage("Okay, working on " + summary + ".")
	s.progress.Start(TailoredPool(summary, s.fillers()))

	resp, err := s.backend.Command(s.ctx, trimmed)

	// The scheduler is always quiet before the response is read, so a
	// filler line can never land after the real result.
	s.progress.Stop()

	if err != nil {
		s.setStatus(StatusOffline)
		s.emit.AssistantMessage(msgUnreachable)
		return
	}

	switch resp.Status {
	case "confirm":
		s.emit.AssistantMessage(fallback(resp.Message, msgConfirmRequired))
		if resp.ConfirmationID == "" {
			// Nothing to echo back, so there is no confirm affordance
			// to hold the session open for.
			s.setStatus(StatusReady)
			return
		}
		s.mu.Lock()
		s.pending = resp.ConfirmationID
		s.status = StatusAwaitingConfirmation
		s.mu.Unlock()
		s.emit.StatusChanged(StatusAwaitingConfirmation)
	case "deny":
		s.emit.AssistantMessage(fallback(resp.Message, msgDenied))
		s.setStatus(StatusReady)
	case "error":
		s.emit.AssistantMessage(fallback(resp.Message, msgErrored))
		s.setStatus(StatusError)
	default:
		s.emit.AssistantMessage(fallback(resp.Message, msgDone))
		s.setStatus(StatusReady)
	}
}

// Confirm re-submits using the stored token. The token is cleared
// unconditionally once the round-trip settles; a confirm response is
// always terminal.
func (s *CommandSession) Confirm() {
	s.mu.Lock()
	token := s.pending
	if token == "" {
		s.mu.Unlock()
		return
	}
	s.status = StatusThinking
	s.mu.Unlock()

	s.emit.StatusChanged(StatusThinking)
	s.progress.Start(s.fillers())

	resp, err := s.backend.Confirm(s.ctx, token)
	s.progress.Stop()

	s.mu.Lock()
	s.pending = ""
	s.mu.Unlock()

	if err != nil {
		s.setStatus(StatusOffline)
		s.emit.AssistantMessage(msgUnreachable)
		return
	}
	s.emit.AssistantMessage(fallback(resp.Message, msgConfirmed))
	s.setStatus(StatusReady)
}

// CancelPending clears the pending confirmation without contacting the
// backend.
func (s *CommandSession) CancelPending() {
	s.mu.Lock()
	had := s.pending != ""
	s.pending = ""
	if had {
		s.status = StatusReady
	}
	s.mu.Unlock()
	if had {
		s.emit.AssistantMessage(msgCancelled)
		s.emit.StatusChanged(StatusReady)
	}
}

// SetIdleStatus moves the session between Ready and Offline based on
// an out-of-band health signal. Only applies when no request or
// confirmation is in flight.
func (s *CommandSession) SetIdleStatus(online bool) {
	s.mu.Lock()
	switch s.status {
	case StatusThinking, StatusAwaitingConfirmation:
		s.mu.Unlock()
		return
	}
	next := StatusOffline
	if online {
		next = StatusReady
	}
	changed := s.status != next
	s.status = next
	s.mu.Unlock()
	if changed {
		s.emit.StatusChanged(next)
	}
}

func (s *CommandSession) clearPending() {
	s.mu.Lock()
	s.pending = ""
	s.mu.Unlock()
}

func (s *CommandSession) setStatus(status SessionStatus) {
	s.mu.Lock()
	s.status = status
	s.mu.Unlock()
	s.emit.StatusChanged(status)
}
