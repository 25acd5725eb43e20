package core

import (
	"context"
	"sync"

	"github.com/mxrlkn/murmur/internal/api"
)

// fakeBackend implements Backend with overridable function fields.
// Unset fields return benign defaults.
type fakeBackend struct {
	command        func(ctx context.Context, text string) (*api.CommandResponse, error)
	confirm        func(ctx context.Context, token string) (*api.CommandResponse, error)
	connectStart   func(ctx context.Context, req api.ConnectRequest) (*api.ConnectResponse, error)
	connectStatus  func(ctx context.Context, target string) (*api.ConnectResponse, error)
	connectFinish  func(ctx context.Context, req api.ConnectRequest) (*api.ConnectResponse, error)
	connectTest    func(ctx context.Context, req api.ConnectRequest) (*api.ConnectResponse, error)
	onboardFetch   func(ctx context.Context) (*api.OnboardingState, error)
	onboardSave    func(ctx context.Context, state api.OnboardingState) error
	personaPresets func(ctx context.Context) (map[string]api.PersonaPreset, error)
	personaSet     func(ctx context.Context, key string) error
	providerFetch  func(ctx context.Context, target string) (*api.ProviderSettings, error)
	providerSave   func(ctx context.Context, settings api.ProviderSettings) error
	health         func(ctx context.Context) error
}

func (f *fakeBackend) Command(ctx context.Context, text string) (*api.CommandResponse, error) {
	if f.command != nil {
		return f.command(ctx, text)
	}
	return &api.CommandResponse{Status: "ok"}, nil
}

func (f *fakeBackend) Confirm(ctx context.Context, token string) (*api.CommandResponse, error) {
	if f.confirm != nil {
		return f.confirm(ctx, token)
	}
	return &api.CommandResponse{Status: "ok"}, nil
}

func (f *fakeBackend) ConnectStart(ctx context.Context, req api.ConnectRequest) (*api.ConnectResponse, error) {
	if f.connectStart != nil {
		return f.connectStart(ctx, req)
	}
	return &api.ConnectResponse{Status: "pending"}, nil
}

func (f *fakeBackend) ConnectStatus(ctx context.Context, target string) (*api.ConnectResponse, error) {
	if f.connectStatus != nil {
		return f.connectStatus(ctx, target)
	}
	return &api.ConnectResponse{Status: "pending"}, nil
}

func (f *fakeBackend) ConnectFinish(ctx context.Context, req api.ConnectRequest) (*api.ConnectResponse, error) {
	if f.connectFinish != nil {
		return f.connectFinish(ctx, req)
	}
	return &api.ConnectResponse{Status: "connected"}, nil
}

func (f *fakeBackend) ConnectTest(ctx context.Context, req api.ConnectRequest) (*api.ConnectResponse, error) {
	if f.connectTest != nil {
		return f.connectTest(ctx, req)
	}
	return &api.ConnectResponse{Status: "ok"}, nil
}

func (f *fakeBackend) OnboardingFetch(ctx context.Context) (*api.OnboardingState, error) {
	if f.onboardFetch != nil {
		return f.onboardFetch(ctx)
	}
	return &api.OnboardingState{}, nil
}

func (f *fakeBackend) OnboardingSave(ctx context.Context, state api.OnboardingState) error {
	if f.onboardSave != nil {
		return f.onboardSave(ctx, state)
	}
	return nil
}

func (f *fakeBackend) PersonaPresets(ctx context.Context) (map[string]api.PersonaPreset, error) {
	if f.personaPresets != nil {
		return f.personaPresets(ctx)
	}
	return map[string]api.PersonaPreset{}, nil
}

func (f *fakeBackend) PersonaSet(ctx context.Context, key string) error {
	if f.personaSet != nil {
		return f.personaSet(ctx, key)
	}
	return nil
}

func (f *fakeBackend) ProviderSettingsFetch(ctx context.Context, target string) (*api.ProviderSettings, error) {
	if f.providerFetch != nil {
		return f.providerFetch(ctx, target)
	}
	return nil, nil
}

func (f *fakeBackend) ProviderSettingsSave(ctx context.Context, settings api.ProviderSettings) error {
	if f.providerSave != nil {
		return f.providerSave(ctx, settings)
	}
	return nil
}

func (f *fakeBackend) Health(ctx context.Context) error {
	if f.health != nil {
		return f.health(ctx)
	}
	return nil
}

// memPrefs is an in-memory Prefs for tests.
type memPrefs struct {
	mu   sync.Mutex
	data map[string]string
}

func newMemPrefs() *memPrefs {
	return &memPrefs{data: make(map[string]string)}
}

func (p *memPrefs) Get(key string) (string, bool, error) {
	p.mu.Lock()
	defer p.mu.Unlock()
	v, ok := p.data[key]
	return v, ok, nil
}

func (p *memPrefs) Set(key, value string) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.data[key] = value
	return nil
}

func (p *memPrefs) Delete(key string) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	delete(p.data, key)
	return nil
}

// recordingEmitter captures everything the session emits.
type recordingEmitter struct {
	mu       sync.Mutex
	user     []string
	lines    []string
	statuses []SessionStatus
}

func (r *recordingEmitter) UserMessage(text string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.user = append(r.user, text)
}

func (r *recordingEmitter) AssistantMessage(text string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.lines = append(r.lines, text)
}

func (r *recordingEmitter) StatusChanged(status SessionStatus) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.statuses = append(r.statuses, status)
}

func (r *recordingEmitter) assistantLines() []string {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]string, len(r.lines))
	copy(out, r.lines)
	return out
}
