package core

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/mxrlkn/murmur/internal/api"
	"github.com/mxrlkn/murmur/internal/models"
)

// OnboardingStep is one screen of the first-run wizard.
type OnboardingStep struct {
	Title string
	Body  string

	// Activate, when set, wires the step's controls as the step is
	// rendered (toggle voice, pick persona, send a sample command).
	Activate func(o *Onboarding)
}

// DefaultOnboardingSteps is the product's wizard. The flow itself
// works with any step slice.
func DefaultOnboardingSteps() []OnboardingStep {
	return []OnboardingStep{
		{
			Title: "Welcome",
			Body:  "Murmur is your voice and text assistant. This short tour shows you around.",
		},
		{
			Title: "Voice",
			Body:  "Murmur can speak its replies. Toggle voice output with ctrl+v at any time.",
		},
		{
			Title: "Persona",
			Body:  "Pick how the assistant sounds. Run `murmur persona` to browse presets.",
		},
		{
			Title: "Connections",
			Body:  "Link your calendar and email so the assistant can act on them. Press ctrl+p to open the connections panel.",
		},
		{
			Title: "Try it",
			Body:  "Type a command like \"what's on my calendar today\" and press enter.",
		},
	}
}

// SettingsSource supplies the current voice/persona selection for
// persisted onboarding records.
type SettingsSource func() (voiceEnabled bool, persona string)

// Onboarding is the resumable first-run wizard. Progress is persisted
// remotely on every step change; completion is additionally recorded
// in the local store so a finished tour stays dismissed even when the
// daemon is unreachable.
type Onboarding struct {
	mu      sync.Mutex
	backend Backend
	prefs   Prefs
	ctx     context.Context
	notify  func(view models.OnboardingView)
	source  SettingsSource
	now     func() time.Time

	steps     []OnboardingStep
	stepIndex int
	active    bool
	completed bool
	skipped   bool
	startedAt time.Time
}

// NewOnboarding creates the wizard over the given steps.
func NewOnboarding(ctx context.Context, backend Backend, prefs Prefs, steps []OnboardingStep, source SettingsSource, notify func(models.OnboardingView)) *Onboarding {
	if source == nil {
		source = func() (bool, string) { return false, "" }
	}
	return &Onboarding{
		backend: backend,
		prefs:   prefs,
		ctx:     ctx,
		notify:  notify,
		source:  source,
		now:     time.Now,
		steps:   steps,
	}
}

// Active reports whether the wizard is currently shown.
func (o *Onboarding) Active() bool {
	o.mu.Lock()
	defer o.mu.Unlock()
	return o.active
}

// StepIndex returns the current step index.
func (o *Onboarding) StepIndex() int {
	o.mu.Lock()
	defer o.mu.Unlock()
	return o.stepIndex
}

// Completed reports whether the wizard has been finished or skipped.
func (o *Onboarding) Completed() bool {
	o.mu.Lock()
	defer o.mu.Unlock()
	return o.completed
}

// Open shows the wizard at the given step, clamped into range, and
// persists progress when persist is set. The first persisted write
// stamps startedAt.
func (o *Onboarding) Open(atStep int, persist bool) {
	o.mu.Lock()
	if len(o.steps) == 0 || o.completed {
		o.mu.Unlock()
		return
	}
	o.stepIndex = clamp(atStep, 0, len(o.steps)-1)
	o.active = true
	step := o.steps[o.stepIndex]
	o.mu.Unlock()

	if persist {
		o.persistProgress()
	}
	o.push()
	if step.Activate != nil {
		step.Activate(o)
	}
}

// Advance moves forward one step; at the last step it completes the
// flow.
func (o *Onboarding) Advance() {
	o.mu.Lock()
	if !o.active {
		o.mu.Unlock()
		return
	}
	if o.stepIndex >= len(o.steps)-1 {
		o.mu.Unlock()
		o.Complete(false)
		return
	}
	o.stepIndex++
	next := o.stepIndex
	o.mu.Unlock()

	o.persistProgress()
	o.push()
	o.activate(next)
}

// Back moves backward one step; a no-op at the first step. Does not
// restamp startedAt.
func (o *Onboarding) Back() {
	o.mu.Lock()
	if !o.active || o.stepIndex == 0 {
		o.mu.Unlock()
		return
	}
	o.stepIndex--
	prev := o.stepIndex
	o.mu.Unlock()

	o.persistProgress()
	o.push()
	o.activate(prev)
}

// Complete finishes the flow, records completion locally and remotely,
// and dismisses the wizard. Completion is terminal until Restart.
func (o *Onboarding) Complete(skipped bool) {
	o.mu.Lock()
	if o.completed {
		o.mu.Unlock()
		return
	}
	o.completed = true
	o.skipped = skipped
	o.active = false
	completedAt := o.now()
	o.mu.Unlock()

	if o.prefs != nil {
		o.prefs.Set(PrefOnboardingCompleted, "1")
		o.prefs.Set(PrefOnboardingCompletedAt, completedAt.UTC().Format(time.RFC3339))
	}
	o.persistState(completedAt)
	o.push()
}

// Resume decides what to show on startup. A completion flag from
// either store keeps the flow dismissed; otherwise the wizard reopens
// at the remote last step without re-persisting, so startedAt is not
// clobbered.
func (o *Onboarding) Resume() {
	if o.localCompleted() {
		o.mu.Lock()
		o.completed = true
		o.mu.Unlock()
		o.push()
		return
	}

	state, err := o.backend.OnboardingFetch(o.ctx)
	if err == nil && state != nil && state.Completed {
		o.mu.Lock()
		o.completed = true
		o.skipped = state.Skipped
		o.mu.Unlock()
		if o.prefs != nil {
			o.prefs.Set(PrefOnboardingCompleted, "1")
		}
		o.push()
		return
	}

	last := 0
	if err == nil && state != nil {
		last = state.LastStep
		if t, perr := time.Parse(time.RFC3339, state.StartedAt); perr == nil {
			o.mu.Lock()
			o.startedAt = t
			o.mu.Unlock()
		}
	}
	o.Open(last, false)
}

// Restart clears the local completion marker and reopens at the first
// step with a fresh startedAt, persisting immediately.
func (o *Onboarding) Restart() {
	if o.prefs != nil {
		o.prefs.Delete(PrefOnboardingCompleted)
		o.prefs.Delete(PrefOnboardingCompletedAt)
	}
	o.mu.Lock()
	o.completed = false
	o.skipped = false
	o.startedAt = o.now()
	o.mu.Unlock()
	o.Open(0, true)
}

// View returns the UI snapshot of the wizard.
func (o *Onboarding) View() models.OnboardingView {
	o.mu.Lock()
	defer o.mu.Unlock()
	return o.viewLocked()
}

func (o *Onboarding) viewLocked() models.OnboardingView {
	if !o.active || len(o.steps) == 0 {
		return models.OnboardingView{}
	}
	step := o.steps[o.stepIndex]
	return models.OnboardingView{
		Active:   true,
		Title:    step.Title,
		Progress: fmt.Sprintf("Step %d of %d", o.stepIndex+1, len(o.steps)),
		Body:     step.Body,
		CanBack:  o.stepIndex > 0,
		LastStep: o.stepIndex == len(o.steps)-1,
	}
}

func (o *Onboarding) localCompleted() bool {
	if o.prefs == nil {
		return false
	}
	v, ok, err := o.prefs.Get(PrefOnboardingCompleted)
	return err == nil && ok && v == "1"
}

// persistProgress overwrites the remote record with the current
// position. Persistence failures are tolerated; the next step change
// writes again.
func (o *Onboarding) persistProgress() {
	o.mu.Lock()
	if o.startedAt.IsZero() {
		o.startedAt = o.now()
	}
	o.mu.Unlock()
	o.persistState(time.Time{})
}

func (o *Onboarding) persistState(completedAt time.Time) {
	o.mu.Lock()
	voice, persona := o.source()
	state := api.OnboardingState{
		Version:      1,
		Completed:    o.completed,
		Skipped:      o.skipped,
		LastStep:     o.stepIndex,
		VoiceEnabled: voice,
		Persona:      persona,
	}
	if !o.startedAt.IsZero() {
		state.StartedAt = o.startedAt.UTC().Format(time.RFC3339)
	}
	if !completedAt.IsZero() {
		state.CompletedAt = completedAt.UTC().Format(time.RFC3339)
	}
	o.mu.Unlock()

	o.backend.OnboardingSave(o.ctx, state)
}

func (o *Onboarding) push() {
	if o.notify == nil {
		return
	}
	o.notify(o.View())
}

func (o *Onboarding) activate(index int) {
	o.mu.Lock()
	var fn func(*Onboarding)
	if index >= 0 && index < len(o.steps) {
		fn = o.steps[index].Activate
	}
	o.mu.Unlock()
	if fn != nil {
		fn(o)
	}
}

func clamp(v, lo, hi int) int {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}
