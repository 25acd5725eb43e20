// Package api provides the HTTP client for the murmur agent daemon.
package api

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"time"
)

// ClientError represents an error from the agent daemon.
type ClientError struct {
	Message string
	Cause   error
}

func (e *ClientError) Error() string {
	if e.Cause != nil {
		return e.Message + ": " + e.Cause.Error()
	}
	return e.Message
}

func (e *ClientError) Unwrap() error {
	return e.Cause
}

// ErrUnreachable is returned when the daemon could not be reached at
// all, as opposed to answering with an error payload.
var ErrUnreachable = &ClientError{Message: "agent service unreachable"}

// ClientConfig holds configuration options for the daemon client.
type ClientConfig struct {
	// BaseURL is the daemon API base URL (default: http://127.0.0.1:8732)
	BaseURL string

	// DiagnosticTimeout bounds fire-and-report calls such as health
	// pings and connection tests (default: 5s). Command and connect
	// requests carry no timeout; a stalled request stays outstanding
	// until the transport settles it.
	DiagnosticTimeout time.Duration
}

// DefaultConfig returns the default client configuration.
func DefaultConfig() *ClientConfig {
	return &ClientConfig{
		BaseURL:           "http://127.0.0.1:8732",
		DiagnosticTimeout: 5 * time.Second,
	}
}

// Client talks to the agent daemon. It is safe for concurrent use.
type Client struct {
	config     *ClientConfig
	httpClient *http.Client
	diagClient *http.Client
}

// NewClient creates a client with default configuration.
func NewClient() *Client {
	return NewClientWithConfig(DefaultConfig())
}

// NewClientWithConfig creates a client, filling in defaults for any
// zero values.
func NewClientWithConfig(config *ClientConfig) *Client {
	if config == nil {
		config = DefaultConfig()
	}
	if config.BaseURL == "" {
		config.BaseURL = "http://127.0.0.1:8732"
	}
	if config.DiagnosticTimeout == 0 {
		config.DiagnosticTimeout = 5 * time.Second
	}
	return &Client{
		config:     config,
		httpClient: &http.Client{},
		diagClient: &http.Client{Timeout: config.DiagnosticTimeout},
	}
}

// BaseURL returns the configured daemon base URL.
func (c *Client) BaseURL() string {
	return c.config.BaseURL
}

func (c *Client) postJSON(ctx context.Context, hc *http.Client, path string, body, out interface{}) error {
	payload, err := json.Marshal(body)
	if err != nil {
		return &ClientError{Message: "encode request", Cause: err}
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.config.BaseURL+path, bytes.NewReader(payload))
	if err != nil {
		return &ClientError{Message: "build request", Cause: err}
	}
	req.Header.Set("Content-Type", "application/json")
	resp, err := hc.Do(req)
	if err != nil {
		return &ClientError{Message: ErrUnreachable.Message, Cause: err}
	}
	defer resp.Body.Close()
	return decode(resp, out)
}

func (c *Client) getJSON(ctx context.Context, hc *http.Client, path string, out interface{}) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.config.BaseURL+path, nil)
	if err != nil {
		return &ClientError{Message: "build request", Cause: err}
	}
	resp, err := hc.Do(req)
	if err != nil {
		return &ClientError{Message: ErrUnreachable.Message, Cause: err}
	}
	defer resp.Body.Close()
	return decode(resp, out)
}

func decode(resp *http.Response, out interface{}) error {
	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return &ClientError{Message: "read response", Cause: err}
	}
	if resp.StatusCode >= http.StatusInternalServerError {
		return &ClientError{Message: fmt.Sprintf("daemon returned HTTP %d", resp.StatusCode)}
	}
	if out == nil {
		return nil
	}
	if err := json.Unmarshal(data, out); err != nil {
		return &ClientError{Message: "decode response", Cause: err}
	}
	return nil
}

// Command submits a user command.
func (c *Client) Command(ctx context.Context, text string) (*CommandResponse, error) {
	var out CommandResponse
	if err := c.postJSON(ctx, c.httpClient, "/api/command", CommandRequest{Text: text}, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// Confirm echoes a confirmation token back to authorize a pending
// risky action.
func (c *Client) Confirm(ctx context.Context, token string) (*CommandResponse, error) {
	var out CommandResponse
	req := CommandRequest{Name: "confirm", Payload: token}
	if err := c.postJSON(ctx, c.httpClient, "/api/command", req, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// ConnectStart begins an authorization handshake for a target.
func (c *Client) ConnectStart(ctx context.Context, req ConnectRequest) (*ConnectResponse, error) {
	var out ConnectResponse
	if err := c.postJSON(ctx, c.httpClient, "/api/connect/start", req, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// ConnectStatus polls the handshake state for a target.
func (c *Client) ConnectStatus(ctx context.Context, target string) (*ConnectResponse, error) {
	var out ConnectResponse
	path := "/api/connect/status?target=" + url.QueryEscape(target)
	if err := c.getJSON(ctx, c.httpClient, path, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// ConnectFinish completes a code-paste authorization flow.
func (c *Client) ConnectFinish(ctx context.Context, req ConnectRequest) (*ConnectResponse, error) {
	var out ConnectResponse
	if err := c.postJSON(ctx, c.httpClient, "/api/connect/finish", req, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// ConnectTest runs a connectivity diagnostic for a target.
func (c *Client) ConnectTest(ctx context.Context, req ConnectRequest) (*ConnectResponse, error) {
	var out ConnectResponse
	if err := c.postJSON(ctx, c.diagClient, "/api/connect/test", req, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// OnboardingFetch loads the remote onboarding record. A daemon that has
// never stored one answers with a null state.
func (c *Client) OnboardingFetch(ctx context.Context) (*OnboardingState, error) {
	var out onboardingEnvelope
	if err := c.getJSON(ctx, c.httpClient, "/api/onboarding/state", &out); err != nil {
		return nil, err
	}
	return out.State, nil
}

// OnboardingSave overwrites the remote onboarding record.
func (c *Client) OnboardingSave(ctx context.Context, state OnboardingState) error {
	return c.postJSON(ctx, c.httpClient, "/api/onboarding/state", onboardingEnvelope{State: &state}, nil)
}

// PersonaPresets fetches the selectable persona presets.
func (c *Client) PersonaPresets(ctx context.Context) (map[string]PersonaPreset, error) {
	var out presetsEnvelope
	if err := c.getJSON(ctx, c.httpClient, "/api/persona-presets", &out); err != nil {
		return nil, err
	}
	return out.Presets, nil
}

// PersonaSet persists the active persona daemon-side.
func (c *Client) PersonaSet(ctx context.Context, key string) error {
	return c.postJSON(ctx, c.httpClient, "/api/persona/set", setPersonaRequest{Preset: key}, nil)
}

// Persona fetches the currently active persona.
func (c *Client) Persona(ctx context.Context) (*PersonaPreset, error) {
	var out personaEnvelope
	if err := c.getJSON(ctx, c.httpClient, "/api/persona", &out); err != nil {
		return nil, err
	}
	return out.Persona, nil
}

// ProviderSettingsFetch loads the stored provider selection for a
// target; nil when none has been saved.
func (c *Client) ProviderSettingsFetch(ctx context.Context, target string) (*ProviderSettings, error) {
	var out providerSettingsEnvelope
	path := "/api/providers?target=" + url.QueryEscape(target)
	if err := c.getJSON(ctx, c.httpClient, path, &out); err != nil {
		return nil, err
	}
	return out.Settings, nil
}

// ProviderSettingsSave overwrites the stored provider selection for a
// target.
func (c *Client) ProviderSettingsSave(ctx context.Context, settings ProviderSettings) error {
	return c.postJSON(ctx, c.httpClient, "/api/providers", providerSettingsEnvelope{Settings: &settings}, nil)
}

// Health pings the daemon.
func (c *Client) Health(ctx context.Context) error {
	return c.getJSON(ctx, c.diagClient, "/api/health", nil)
}
