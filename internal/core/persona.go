package core

import (
	"context"
	"sync"

	"github.com/mxrlkn/murmur/internal/api"
)

// DefaultPersona is the preset used before the daemon has been asked.
const DefaultPersona = "max"

// Personas tracks the selectable persona presets and the active
// choice. The active persona's filler phrases feed the progress
// scheduler; the selection is remembered locally and pushed to the
// daemon so every surface sounds the same.
type Personas struct {
	mu      sync.Mutex
	backend Backend
	prefs   Prefs
	ctx     context.Context
	message func(text string)

	presets map[string]api.PersonaPreset
	active  string
}

// NewPersonas creates the persona tracker. message receives the
// one-line outcomes of persisting a selection.
func NewPersonas(ctx context.Context, backend Backend, prefs Prefs, message func(string)) *Personas {
	return &Personas{
		backend: backend,
		prefs:   prefs,
		ctx:     ctx,
		message: message,
		presets: make(map[string]api.PersonaPreset),
		active:  DefaultPersona,
	}
}

// Load fetches the presets and restores the saved selection. Fetch
// failures are tolerated; the defaults remain.
func (p *Personas) Load() {
	presets, err := p.backend.PersonaPresets(p.ctx)
	p.mu.Lock()
	if err == nil && presets != nil {
		p.presets = presets
	}
	p.mu.Unlock()

	saved := DefaultPersona
	if p.prefs != nil {
		if v, ok, err := p.prefs.Get(PrefPersona); err == nil && ok && v != "" {
			saved = v
		}
	}
	p.mu.Lock()
	p.active = saved
	p.mu.Unlock()
}

// Active returns the active persona key.
func (p *Personas) Active() string {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.active
}

// Presets returns the known presets.
func (p *Personas) Presets() map[string]api.PersonaPreset {
	p.mu.Lock()
	defer p.mu.Unlock()
	out := make(map[string]api.PersonaPreset, len(p.presets))
	for k, v := range p.presets {
		out[k] = v
	}
	return out
}

// FillerPool returns the active persona's filler phrases, or the
// stock pool when the preset has none.
func (p *Personas) FillerPool() []string {
	p.mu.Lock()
	defer p.mu.Unlock()
	if preset, ok := p.presets[p.active]; ok && len(preset.FillerPhrases) > 0 {
		return preset.FillerPhrases
	}
	return DefaultFillerPool
}

// Select makes key the active persona, remembers it locally, and
// persists it daemon-side.
func (p *Personas) Select(key string) {
	if key == "" {
		return
	}
	p.mu.Lock()
	p.active = key
	p.mu.Unlock()

	if p.prefs != nil {
		p.prefs.Set(PrefPersona, key)
	}

	if err := p.backend.PersonaSet(p.ctx, key); err != nil {
		p.say("Couldn't save persona system-wide.")
		return
	}
	p.say("All set. I'll sound like this everywhere now.")
}

func (p *Personas) say(text string) {
	if p.message != nil {
		p.message(text)
	}
}
