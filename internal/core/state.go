package core

import (
	"sync"

	"github.com/google/uuid"

	"github.com/mxrlkn/murmur/internal/models"
)

// UIState buffers the conversation and session view for the UI. It is
// the single source of truth for what has been shown; the service
// pushes only unseen messages across the bus.
type UIState struct {
	mu           sync.Mutex
	messages     []models.Message
	lastSent     int
	session      models.SessionView
	voiceEnabled bool
	persona      string
}

func NewUIState() *UIState {
	return &UIState{
		session: models.SessionView{Status: StatusIdle.String()},
	}
}

// Add appends a message and returns it.
func (st *UIState) Add(kind models.MessageType, content string) models.Message {
	st.mu.Lock()
	defer st.mu.Unlock()
	msg := models.Message{
		ID:      uuid.NewString(),
		Content: content,
		Type:    kind,
	}
	st.messages = append(st.messages, msg)
	return msg
}

// SetSession replaces the session view.
func (st *UIState) SetSession(view models.SessionView) {
	st.mu.Lock()
	defer st.mu.Unlock()
	st.session = view
}

// SetVoiceEnabled records the voice toggle.
func (st *UIState) SetVoiceEnabled(enabled bool) {
	st.mu.Lock()
	defer st.mu.Unlock()
	st.voiceEnabled = enabled
}

// VoiceEnabled reports the voice toggle.
func (st *UIState) VoiceEnabled() bool {
	st.mu.Lock()
	defer st.mu.Unlock()
	return st.voiceEnabled
}

// SetPersona records the active persona key.
func (st *UIState) SetPersona(key string) {
	st.mu.Lock()
	defer st.mu.Unlock()
	st.persona = key
}

// Persona returns the active persona key.
func (st *UIState) Persona() string {
	st.mu.Lock()
	defer st.mu.Unlock()
	return st.persona
}

// TakeUnsent returns the messages not yet pushed to the UI along with
// the current session view, and marks them sent.
func (st *UIState) TakeUnsent() ([]models.Message, models.SessionView, bool, string) {
	st.mu.Lock()
	defer st.mu.Unlock()
	unsent := st.messages[st.lastSent:]
	st.lastSent = len(st.messages)
	out := make([]models.Message, len(unsent))
	copy(out, unsent)
	return out, st.session, st.voiceEnabled, st.persona
}

// Messages returns a copy of the full conversation.
func (st *UIState) Messages() []models.Message {
	st.mu.Lock()
	defer st.mu.Unlock()
	out := make([]models.Message, len(st.messages))
	copy(out, st.messages)
	return out
}
