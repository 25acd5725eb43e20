package core

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/mxrlkn/murmur/internal/api"
	"github.com/mxrlkn/murmur/internal/models"
	"github.com/mxrlkn/murmur/internal/sched"
)

// ConnectionStatus is the per-target connection state.
type ConnectionStatus int

const (
	ConnIdle ConnectionStatus = iota
	ConnPreparing
	ConnPending
	ConnConnected
	ConnError
)

func (s ConnectionStatus) String() string {
	switch s {
	case ConnIdle:
		return "idle"
	case ConnPreparing:
		return "preparing"
	case ConnPending:
		return "pending"
	case ConnConnected:
		return "connected"
	case ConnError:
		return "error"
	}
	return "unknown"
}

const pollInterval = 1500 * time.Millisecond

// authProviders is the capability table: target/provider pairs that
// require an OAuth-style authorization handshake before use.
var authProviders = map[string]map[string]bool{
	"calendar": {"google": true, "microsoft": true},
	"email":    {"gmail": true, "outlook": true},
}

// RequiresAuthorization reports whether the target/provider pair needs
// credentials and an authorization handshake.
func RequiresAuthorization(target, provider string) bool {
	return authProviders[target][provider]
}

// ProvidersFor lists the providers that need authorization for a
// target, sorted for stable display.
func ProvidersFor(target string) []string {
	providers := make([]string, 0, len(authProviders[target]))
	for provider := range authProviders[target] {
		providers = append(providers, provider)
	}
	sort.Strings(providers)
	return providers
}

// Credentials holds the OAuth-style fields for providers that need an
// authorization handshake.
type Credentials struct {
	ClientID     string
	ClientSecret string
	Code         string
}

// Connection is the owned state object for one target. Its poll handle
// is owned here and nowhere else, so at most one poll can be active per
// target by construction.
type Connection struct {
	Target      string
	Provider    string
	Credentials Credentials
	Status      ConnectionStatus
	AuthURL     string
	Note        string

	poll    *sched.Handle
	pollGen uint64
}

// ConnectionSinks receives connection output: per-target state
// snapshots, one-line confirmation messages for the conversation, and
// authorization links to surface.
type ConnectionSinks struct {
	Update  func(view models.ConnectionView)
	Message func(text string)
	OpenURL func(url string)
}

// ConnectionManager runs the provider connection machine for every
// target. Start and Finish block until the daemon settles, mirroring
// the command session; poll ticks run on their own timers.
type ConnectionManager struct {
	mu      sync.Mutex
	backend Backend
	ctx     context.Context
	sinks   ConnectionSinks
	every   time.Duration
	conns   map[string]*Connection
}

// NewConnectionManager creates a manager with the production poll
// interval.
func NewConnectionManager(ctx context.Context, backend Backend, sinks ConnectionSinks) *ConnectionManager {
	return NewConnectionManagerWithInterval(ctx, backend, sinks, pollInterval)
}

// NewConnectionManagerWithInterval creates a manager with an explicit
// poll interval.
func NewConnectionManagerWithInterval(ctx context.Context, backend Backend, sinks ConnectionSinks, every time.Duration) *ConnectionManager {
	return &ConnectionManager{
		backend: backend,
		ctx:     ctx,
		sinks:   sinks,
		every:   every,
		conns:   make(map[string]*Connection),
	}
}

func (m *ConnectionManager) connLocked(target string) *Connection {
	conn, ok := m.conns[target]
	if !ok {
		conn = &Connection{Target: target}
		m.conns[target] = conn
	}
	return conn
}

// SelectProvider records the provider choice for a target and resets
// the setup affordances tied to the previous choice. The selection is
// pushed to the daemon; a failed write is tolerated, the next
// selection writes again.
func (m *ConnectionManager) SelectProvider(target, provider string) {
	m.mu.Lock()
	conn := m.connLocked(target)
	conn.Provider = provider
	conn.Credentials = Credentials{}
	conn.AuthURL = ""
	conn.Note = ""
	view := m.viewLocked(conn)
	m.mu.Unlock()
	m.update(view)

	m.backend.ProviderSettingsSave(m.ctx, api.ProviderSettings{
		Target:   target,
		Provider: provider,
	})
}

// RestoreSelections pulls the stored provider choice for every known
// target. Fetch failures leave the target unset.
func (m *ConnectionManager) RestoreSelections() {
	targets := make([]string, 0, len(authProviders))
	for target := range authProviders {
		targets = append(targets, target)
	}
	sort.Strings(targets)

	for _, target := range targets {
		settings, err := m.backend.ProviderSettingsFetch(m.ctx, target)
		if err != nil || settings == nil || settings.Provider == "" {
			continue
		}
		m.mu.Lock()
		conn := m.connLocked(target)
		conn.Provider = settings.Provider
		view := m.viewLocked(conn)
		m.mu.Unlock()
		m.update(view)
	}
}

// SetCredentials stores the authorization fields for a target.
func (m *ConnectionManager) SetCredentials(target string, creds Credentials) {
	m.mu.Lock()
	conn := m.connLocked(target)
	conn.Credentials = creds
	m.mu.Unlock()
}

// View returns the UI snapshot for a target.
func (m *ConnectionManager) View(target string) models.ConnectionView {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.viewLocked(m.connLocked(target))
}

// Polling reports whether a poll timer is active for the target.
func (m *ConnectionManager) Polling(target string) bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	conn, ok := m.conns[target]
	return ok && conn.poll != nil
}

// Start begins (or restarts) the authorization handshake for a target.
// Any prior poll for the same target is cancelled first; polls for
// other targets are untouched.
func (m *ConnectionManager) Start(target string) {
	m.mu.Lock()
	conn := m.connLocked(target)
	m.stopPollLocked(conn)
	conn.Status = ConnPreparing
	conn.Note = "Starting connection..."
	req := requestFor(conn)
	view := m.viewLocked(conn)
	m.mu.Unlock()
	m.update(view)

	resp, err := m.backend.ConnectStart(m.ctx, req)
	if err != nil {
		m.fail(target, msgUnreachable)
		return
	}
	if resp.Status == "error" {
		m.fail(target, fallback(resp.Message, "Connection failed."))
		return
	}

	m.mu.Lock()
	if resp.AuthURL != "" {
		conn.AuthURL = resp.AuthURL
	}
	conn.Status = ConnPending
	conn.Note = fallback(resp.Message, "Waiting for approval.")
	conn.pollGen++
	gen := conn.pollGen
	conn.poll = sched.Repeating(m.every, func() { m.pollTick(conn, gen) })
	authURL := resp.AuthURL
	view = m.viewLocked(conn)
	m.mu.Unlock()

	if authURL != "" && m.sinks.OpenURL != nil {
		m.sinks.OpenURL(authURL)
	}
	m.update(view)

	// First poll fires immediately rather than waiting out the
	// interval.
	m.pollTick(conn, gen)
}

// pollTick is one observation of the handshake state. Transport
// failures are swallowed; the next tick retries.
func (m *ConnectionManager) pollTick(conn *Connection, gen uint64) {
	resp, err := m.backend.ConnectStatus(m.ctx, conn.Target)
	if err != nil {
		return
	}

	m.mu.Lock()
	if conn.pollGen != gen || conn.poll == nil {
		// Superseded by a newer Start or already terminal.
		m.mu.Unlock()
		return
	}
	if resp.AuthURL != "" {
		conn.AuthURL = resp.AuthURL
	}
	var announce string
	switch resp.Status {
	case "idle":
		// Nothing to update.
	case "pending":
		conn.Note = fallback(resp.Message, "Waiting for approval.")
	case "connected":
		conn.Status = ConnConnected
		conn.Note = fallback(resp.Message, "Connected.")
		m.stopPollLocked(conn)
		announce = fallback(resp.Message, conn.Target+" is connected.")
	case "error":
		conn.Status = ConnError
		conn.Note = fallback(resp.Message, "Connection failed.")
		m.stopPollLocked(conn)
	}
	view := m.viewLocked(conn)
	m.mu.Unlock()

	m.update(view)
	if announce != "" {
		m.message(announce)
	}
}

// Finish completes a code-paste flow with the current credential
// payload. A successful finish also cancels the target's poll, so the
// two completion paths cannot race past each other.
func (m *ConnectionManager) Finish(target string) {
	m.mu.Lock()
	conn := m.connLocked(target)
	req := requestFor(conn)
	m.mu.Unlock()

	resp, err := m.backend.ConnectFinish(m.ctx, req)
	if err != nil {
		m.fail(target, msgUnreachable)
		return
	}
	if resp.Status == "error" {
		m.fail(target, fallback(resp.Message, "Connection failed."))
		return
	}

	m.mu.Lock()
	conn.Status = ConnConnected
	conn.Note = fallback(resp.Message, "Connected.")
	m.stopPollLocked(conn)
	view := m.viewLocked(conn)
	m.mu.Unlock()

	m.update(view)
	m.message(fallback(resp.Message, target+" is connected."))
}

// Test runs a fire-and-report diagnostic. It only updates the
// displayed note and never changes the connection status.
func (m *ConnectionManager) Test(target string) {
	m.mu.Lock()
	conn := m.connLocked(target)
	req := requestFor(conn)
	m.mu.Unlock()

	resp, err := m.backend.ConnectTest(m.ctx, req)

	m.mu.Lock()
	var announce string
	switch {
	case err != nil:
		conn.Note = msgUnreachable
	case resp.Status == "error":
		conn.Note = fallback(resp.Message, "Test failed.")
	default:
		conn.Note = fallback(resp.Message, "Test passed.")
		announce = resp.Message
	}
	view := m.viewLocked(conn)
	m.mu.Unlock()

	m.update(view)
	if announce != "" {
		m.message(announce)
	}
}

// StopAll cancels every active poll; used on shutdown.
func (m *ConnectionManager) StopAll() {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, conn := range m.conns {
		m.stopPollLocked(conn)
	}
}

func (m *ConnectionManager) fail(target, note string) {
	m.mu.Lock()
	conn := m.connLocked(target)
	conn.Status = ConnError
	conn.Note = note
	m.stopPollLocked(conn)
	view := m.viewLocked(conn)
	m.mu.Unlock()
	m.update(view)
}

func (m *ConnectionManager) stopPollLocked(conn *Connection) {
	conn.pollGen++
	conn.poll.Stop()
	conn.poll = nil
}

func (m *ConnectionManager) viewLocked(conn *Connection) models.ConnectionView {
	return models.ConnectionView{
		Target:           conn.Target,
		Provider:         conn.Provider,
		Status:           conn.Status.String(),
		Note:             conn.Note,
		AuthURL:          conn.AuthURL,
		NeedsCredentials: RequiresAuthorization(conn.Target, conn.Provider),
	}
}

func (m *ConnectionManager) update(view models.ConnectionView) {
	if m.sinks.Update != nil {
		m.sinks.Update(view)
	}
}

func (m *ConnectionManager) message(text string) {
	if m.sinks.Message != nil {
		m.sinks.Message(text)
	}
}

func requestFor(conn *Connection) api.ConnectRequest {
	return api.ConnectRequest{
		Target:       conn.Target,
		Provider:     conn.Provider,
		ClientID:     conn.Credentials.ClientID,
		ClientSecret: conn.Credentials.ClientSecret,
		Code:         conn.Credentials.Code,
	}
}
