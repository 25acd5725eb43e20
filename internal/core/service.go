package core

import (
	"context"
	"time"

	"github.com/mxrlkn/murmur/internal/eventbus"
	"github.com/mxrlkn/murmur/internal/models"
	"github.com/mxrlkn/murmur/internal/sched"
	"github.com/mxrlkn/murmur/internal/speech"
)

const healthInterval = 5 * time.Second

// Service owns the client-side state machines and runs the core event
// loop. UI events arrive over the bus and are processed one at a time;
// backend calls block the loop while timers (filler announcements,
// connection polls, health pings) keep firing on their own handles.
type Service struct {
	backend Backend
	bus     *eventbus.EventBus
	prefs   Prefs
	speaker speech.Speaker

	state      *UIState
	progress   *ProgressScheduler
	session    *CommandSession
	conns      *ConnectionManager
	onboarding *Onboarding
	personas   *Personas

	health *sched.Handle
	ctx    context.Context
	cancel context.CancelFunc
}

// NewService wires the core. speaker may be nil for a silent client.
func NewService(backend Backend, bus *eventbus.EventBus, prefs Prefs, speaker speech.Speaker) *Service {
	if speaker == nil {
		speaker = speech.Null{}
	}
	ctx, cancel := context.WithCancel(context.Background())

	s := &Service{
		backend: backend,
		bus:     bus,
		prefs:   prefs,
		speaker: speaker,
		state:   NewUIState(),
		ctx:     ctx,
		cancel:  cancel,
	}

	s.progress = NewProgressScheduler(s.AssistantMessage)
	s.personas = NewPersonas(ctx, backend, prefs, s.AssistantMessage)
	s.session = NewCommandSession(ctx, backend, s, s.progress, s.personas.FillerPool)
	s.conns = NewConnectionManager(ctx, backend, ConnectionSinks{
		Update:  s.pushConnection,
		Message: s.AssistantMessage,
		OpenURL: s.pushOpenURL,
	})
	s.onboarding = NewOnboarding(ctx, backend, prefs, DefaultOnboardingSteps(), s.settings, s.pushOnboarding)

	return s
}

// Start restores preferences, greets, resumes onboarding, arms the
// health ping, and runs the event loop.
func (s *Service) Start() {
	s.personas.Load()
	s.state.SetPersona(s.personas.Active())
	s.restoreVoicePref()
	s.addWelcomeMessages()
	s.pushState()

	s.onboarding.Resume()
	s.conns.RestoreSelections()

	s.health = sched.Repeating(healthInterval, s.healthTick)
	go s.healthTick()

	go s.eventLoop()
}

// Stop tears down timers and the loop.
func (s *Service) Stop() {
	s.cancel()
	s.health.Stop()
	s.progress.Stop()
	s.conns.StopAll()
}

// Session exposes the command session, mainly for tests.
func (s *Service) Session() *CommandSession {
	return s.session
}

// Connections exposes the connection manager, mainly for tests.
func (s *Service) Connections() *ConnectionManager {
	return s.conns
}

// Onboarding exposes the wizard, mainly for tests.
func (s *Service) OnboardingFlow() *Onboarding {
	return s.onboarding
}

func (s *Service) eventLoop() {
	for {
		select {
		case <-s.ctx.Done():
			return
		case event, ok := <-s.bus.UIToCore():
			if !ok {
				return
			}
			s.handleUIEvent(event)
		}
	}
}

func (s *Service) handleUIEvent(event eventbus.UIEvent) {
	switch e := event.(type) {
	case eventbus.SubmitCommandEvent:
		s.session.Handle(e.Text)
	case eventbus.ConfirmPendingEvent:
		s.session.Confirm()
	case eventbus.CancelPendingEvent:
		s.session.CancelPending()
	case eventbus.SelectProviderEvent:
		s.conns.SelectProvider(e.Target, e.Provider)
	case eventbus.SetCredentialsEvent:
		s.conns.SetCredentials(e.Target, Credentials{
			ClientID:     e.ClientID,
			ClientSecret: e.ClientSecret,
			Code:         e.Code,
		})
	case eventbus.ConnectStartEvent:
		s.conns.Start(e.Target)
	case eventbus.ConnectFinishEvent:
		s.conns.Finish(e.Target)
	case eventbus.ConnectTestEvent:
		s.conns.Test(e.Target)
	case eventbus.OnboardingNextEvent:
		s.onboarding.Advance()
	case eventbus.OnboardingBackEvent:
		s.onboarding.Back()
	case eventbus.OnboardingSkipEvent:
		s.onboarding.Complete(true)
	case eventbus.OnboardingRestartEvent:
		s.onboarding.Restart()
	case eventbus.SelectPersonaEvent:
		s.personas.Select(e.Key)
		s.state.SetPersona(s.personas.Active())
		s.pushState()
	case eventbus.ToggleVoiceEvent:
		s.toggleVoice()
	}
}

// UserMessage implements Emitter.
func (s *Service) UserMessage(text string) {
	s.state.Add(models.User, text)
	s.pushState()
}

// AssistantMessage implements Emitter. Spoken when voice is on.
func (s *Service) AssistantMessage(text string) {
	s.state.Add(models.Assistant, text)
	if s.state.VoiceEnabled() {
		s.speaker.Say(text)
	}
	s.pushState()
}

// StatusChanged implements Emitter.
func (s *Service) StatusChanged(status SessionStatus) {
	s.state.SetSession(models.SessionView{
		Status:               status.String(),
		Busy:                 status == StatusThinking,
		AwaitingConfirmation: s.session.PendingConfirmation() != "",
	})
	s.pushState()
}

func (s *Service) pushState() {
	messages, session, voice, persona := s.state.TakeUnsent()
	s.bus.SendToUI(eventbus.StateUpdateEvent{
		Messages:     messages,
		Session:      session,
		VoiceEnabled: voice,
		Persona:      persona,
	})
}

func (s *Service) pushConnection(view models.ConnectionView) {
	s.bus.SendToUI(eventbus.ConnectionUpdateEvent{Connection: view})
}

func (s *Service) pushOnboarding(view models.OnboardingView) {
	s.bus.SendToUI(eventbus.OnboardingUpdateEvent{Onboarding: view})
}

func (s *Service) pushOpenURL(url string) {
	s.bus.SendToUI(eventbus.OpenURLEvent{URL: url})
}

func (s *Service) healthTick() {
	err := s.backend.Health(s.ctx)
	s.session.SetIdleStatus(err == nil)
}

func (s *Service) toggleVoice() {
	enabled := !s.state.VoiceEnabled()
	s.state.SetVoiceEnabled(enabled)
	if s.prefs != nil {
		v := "0"
		if enabled {
			v = "1"
		}
		s.prefs.Set(PrefVoiceEnabled, v)
	}
	if enabled {
		s.state.Add(models.Program, "Voice output on.")
	} else {
		s.state.Add(models.Program, "Voice output off.")
	}
	s.pushState()
}

func (s *Service) settings() (bool, string) {
	return s.state.VoiceEnabled(), s.personas.Active()
}

// SetVoiceDefault seeds the voice setting from config. A stored
// preference, restored on Start, wins over this.
func (s *Service) SetVoiceDefault(enabled bool) {
	s.state.SetVoiceEnabled(enabled)
}

func (s *Service) restoreVoicePref() {
	if s.prefs == nil {
		return
	}
	if v, ok, err := s.prefs.Get(PrefVoiceEnabled); err == nil && ok {
		s.state.SetVoiceEnabled(v == "1")
	}
}

func (s *Service) addWelcomeMessages() {
	s.state.Add(models.Program, "-- MURMUR --")
	s.state.Add(models.Program, "Type a command and press Enter. Say \"confirm\" or \"cancel\" when asked.")
	s.state.Add(models.Program, "Controls: ctrl+p connections, ctrl+v voice, ctrl+c quit")
	s.state.Add(models.Program, "")
}
