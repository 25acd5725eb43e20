package eventbus

import (
	"errors"
	"time"

	"github.com/mxrlkn/murmur/internal/models"
)

// UIEvent represents events sent from UI to Core
type UIEvent interface {
	UIEvent()
}

// CoreEvent represents events sent from Core to UI
type CoreEvent interface {
	CoreEvent()
}

// SubmitCommandEvent - the user entered a command (or a confirm/cancel
// phrase while a confirmation is pending; the core decides which).
type SubmitCommandEvent struct {
	Text string
}

func (e SubmitCommandEvent) UIEvent() {}

// ConfirmPendingEvent - the user tapped the confirm affordance.
type ConfirmPendingEvent struct{}

func (e ConfirmPendingEvent) UIEvent() {}

// CancelPendingEvent - the user dismissed the pending confirmation.
type CancelPendingEvent struct{}

func (e CancelPendingEvent) UIEvent() {}

// SelectProviderEvent - the user picked a backend for a target.
type SelectProviderEvent struct {
	Target   string
	Provider string
}

func (e SelectProviderEvent) UIEvent() {}

// SetCredentialsEvent - the user filled the authorization fields.
type SetCredentialsEvent struct {
	Target       string
	ClientID     string
	ClientSecret string
	Code         string
}

func (e SetCredentialsEvent) UIEvent() {}

// ConnectStartEvent - begin (or restart) the handshake for a target.
type ConnectStartEvent struct {
	Target string
}

func (e ConnectStartEvent) UIEvent() {}

// ConnectFinishEvent - manual completion for code-paste flows.
type ConnectFinishEvent struct {
	Target string
}

func (e ConnectFinishEvent) UIEvent() {}

// ConnectTestEvent - fire-and-report connectivity diagnostic.
type ConnectTestEvent struct {
	Target string
}

func (e ConnectTestEvent) UIEvent() {}

// Onboarding wizard controls.
type OnboardingNextEvent struct{}
type OnboardingBackEvent struct{}
type OnboardingSkipEvent struct{}
type OnboardingRestartEvent struct{}

func (e OnboardingNextEvent) UIEvent()    {}
func (e OnboardingBackEvent) UIEvent()    {}
func (e OnboardingSkipEvent) UIEvent()    {}
func (e OnboardingRestartEvent) UIEvent() {}

// SelectPersonaEvent - the user picked a persona preset.
type SelectPersonaEvent struct {
	Key string
}

func (e SelectPersonaEvent) UIEvent() {}

// ToggleVoiceEvent - flip spoken output on or off.
type ToggleVoiceEvent struct{}

func (e ToggleVoiceEvent) UIEvent() {}

// StateUpdateEvent - Core pushes conversation/session changes to UI.
// Messages contains only messages the UI has not seen yet.
type StateUpdateEvent struct {
	Messages     []models.Message
	Session      models.SessionView
	VoiceEnabled bool
	Persona      string
}

func (e StateUpdateEvent) CoreEvent() {}

// ConnectionUpdateEvent - one target's connection state changed.
type ConnectionUpdateEvent struct {
	Connection models.ConnectionView
}

func (e ConnectionUpdateEvent) CoreEvent() {}

// OnboardingUpdateEvent - the wizard moved, opened, or dismissed.
type OnboardingUpdateEvent struct {
	Onboarding models.OnboardingView
}

func (e OnboardingUpdateEvent) CoreEvent() {}

// OpenURLEvent - an authorization link should be surfaced to the user.
type OpenURLEvent struct {
	URL string
}

func (e OpenURLEvent) CoreEvent() {}

// EventBusError represents errors in event processing
type EventBusError struct {
	Operation string
	Err       error
	Timestamp time.Time
}

func (e EventBusError) Error() string {
	return e.Operation + ": " + e.Err.Error()
}

// CircuitBreakerState represents the state of circuit breaker
type CircuitBreakerState int

const (
	CircuitClosed CircuitBreakerState = iota
	CircuitOpen
	CircuitHalfOpen
)

// CircuitBreaker implements circuit breaker pattern
type CircuitBreaker struct {
	maxFailures     int
	resetTimeout    time.Duration
	failureCount    int
	lastFailureTime time.Time
	state           CircuitBreakerState
}

func NewCircuitBreaker(maxFailures int, resetTimeout time.Duration) *CircuitBreaker {
	return &CircuitBreaker{
		maxFailures:  maxFailures,
		resetTimeout: resetTimeout,
		state:        CircuitClosed,
	}
}

func (cb *CircuitBreaker) IsOpen() bool {
	if cb.state == CircuitOpen {
		// Check if we should transition to half-open
		if time.Since(cb.lastFailureTime) > cb.resetTimeout {
			cb.state = CircuitHalfOpen
		}
	}
	return cb.state == CircuitOpen
}

func (cb *CircuitBreaker) RecordSuccess() {
	cb.failureCount = 0
	cb.state = CircuitClosed
}

func (cb *CircuitBreaker) RecordFailure() {
	cb.failureCount++
	cb.lastFailureTime = time.Now()

	if cb.failureCount >= cb.maxFailures {
		cb.state = CircuitOpen
	}
}

// EventBus handles communication between UI and Core with circuit breaker
type EventBus struct {
	uiToCore       chan UIEvent
	coreToUI       chan CoreEvent
	errorCallback  func(EventBusError)
	circuitBreaker *CircuitBreaker
}

func NewEventBus() *EventBus {
	return &EventBus{
		uiToCore:       make(chan UIEvent, 100),
		coreToUI:       make(chan CoreEvent, 100),
		circuitBreaker: NewCircuitBreaker(5, 30*time.Second),
	}
}

func (eb *EventBus) SetErrorCallback(callback func(EventBusError)) {
	eb.errorCallback = callback
}

func (eb *EventBus) reportError(operation string, err error) {
	busError := EventBusError{
		Operation: operation,
		Err:       err,
		Timestamp: time.Now(),
	}

	eb.circuitBreaker.RecordFailure()

	if eb.errorCallback != nil {
		eb.errorCallback(busError)
	}
}

func (eb *EventBus) SendToCore(event UIEvent) error {
	if eb.circuitBreaker.IsOpen() {
		err := errors.New("circuit breaker is open")
		eb.reportError("SendToCore", err)
		return err
	}

	select {
	case eb.uiToCore <- event:
		eb.circuitBreaker.RecordSuccess()
		return nil
	default:
		err := errors.New("UI to Core channel is full")
		eb.reportError("SendToCore", err)
		return err
	}
}

func (eb *EventBus) SendToUI(event CoreEvent) error {
	if eb.circuitBreaker.IsOpen() {
		err := errors.New("circuit breaker is open")
		eb.reportError("SendToUI", err)
		return err
	}

	select {
	case eb.coreToUI <- event:
		eb.circuitBreaker.RecordSuccess()
		return nil
	default:
		err := errors.New("Core to UI channel is full")
		eb.reportError("SendToUI", err)
		return err
	}
}

func (eb *EventBus) UIToCore() <-chan UIEvent {
	return eb.uiToCore
}

func (eb *EventBus) CoreToUI() <-chan CoreEvent {
	return eb.coreToUI
}

func (eb *EventBus) GetCircuitBreakerState() CircuitBreakerState {
	return eb.circuitBreaker.state
}

func (eb *EventBus) Close() {
	close(eb.uiToCore)
	close(eb.coreToUI)
}
