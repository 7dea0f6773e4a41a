/*
 * Copyright 2025 Carver Automation Corporation.
 *
 * Licensed under the Apache License, Version 2.0 (the "License");
 * you may not use this file except in compliance with the License.
 * You may obtain a copy of the License at
 *
 *     http://www.apache.org/licenses/LICENSE-2.0
 *
 * Unless required by applicable law or agreed to in writing, software
 * distributed under the License is distributed on an "AS IS" BASIS,
 * WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
 * See the License for the specific language governing permissions and
 * limitations under the License.
 */
// Package agent talks to the per-device cloud agents over HTTP.
package agent

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"sort"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	"golang.org/x/sync/semaphore"

	"github.com/carverauto/companion/pkg/logger"
	"github.com/carverauto/companion/pkg/models"
	"github.com/carverauto/companion/pkg/version"
)

var userAgent = version.UserAgent("agent")

const (
	// DefaultBaseURL is the agent cloud all device codes live under.
	DefaultBaseURL = "https://agent.electricimp.com"
	// DefaultTimeout bounds a single agent exchange.
	DefaultTimeout = 60 * time.Second

	actionsPath = "/actions"
	appInfoPath = "/applewatchexample/appinfo"
)

// Request describes one exchange with a device's agent. A nil Body makes a
// GET of Path; a non-nil Body is POSTed as JSON to Path (default /actions).
type Request struct {
	Action Action
	Body   map[string]string
	Path   string
}

// Outcome is the terminal result of Connect.
type Outcome struct {
	SessionID  uuid.UUID
	Action     Action
	StatusCode int
	Status     *models.Status
	AppInfo    *models.AppInfo
	FollowUp   *Outcome
	Err        error
}

// Client issues agent requests and tracks the in-flight sessions.
type Client struct {
	baseURL  string
	http     HTTPClient
	schemas  *SchemaRegistry
	logger   logger.Logger
	listener SessionListener

	mu       sync.Mutex
	sessions map[uuid.UUID]*session
	gates    map[string]*semaphore.Weighted
}

// Option configures a Client.
type Option func(*Client)

// WithHTTPClient replaces the default *http.Client.
func WithHTTPClient(c HTTPClient) Option {
	return func(cl *Client) {
		cl.http = c
	}
}

// WithTimeout sets the per-request timeout on the default *http.Client.
func WithTimeout(d time.Duration) Option {
	return func(cl *Client) {
		if d > 0 {
			cl.http = &http.Client{Timeout: d}
		}
	}
}

// WithSchemas sets the app-tag to schema mapping.
func WithSchemas(r *SchemaRegistry) Option {
	return func(cl *Client) {
		cl.schemas = r
	}
}

// WithLogger sets the client logger.
func WithLogger(log logger.Logger) Option {
	return func(cl *Client) {
		cl.logger = log
	}
}

// WithListener registers a session listener.
func WithListener(l SessionListener) Option {
	return func(cl *Client) {
		cl.listener = l
	}
}

// NewClient creates a client for agents under baseURL.
func NewClient(baseURL string, opts ...Option) *Client {
	if baseURL == "" {
		baseURL = DefaultBaseURL
	}

	c := &Client{
		baseURL:  strings.TrimRight(baseURL, "/"),
		http:     &http.Client{Timeout: DefaultTimeout},
		schemas:  DefaultSchemas(),
		listener: nopListener{},
		sessions: make(map[uuid.UUID]*session),
		gates:    make(map[string]*semaphore.Weighted),
	}

	for _, opt := range opts {
		opt(c)
	}

	if c.logger == nil {
		c.logger = logger.NewTestLogger()
	}

	return c
}

// Schemas returns the client's schema registry.
func (c *Client) Schemas() *SchemaRegistry {
	return c.schemas
}

// Connect performs one exchange with dev's agent. A successful reset is
// followed by exactly one status request, reported in FollowUp.
func (c *Client) Connect(ctx context.Context, dev models.Device, req Request) Outcome {
	outcome := c.exchange(ctx, dev, req)

	if outcome.Err != nil || req.Action != ActionResetSettings {
		return outcome
	}

	follow := c.exchange(ctx, dev, Request{Action: ActionGetStatus})
	outcome.FollowUp = &follow

	return outcome
}

func (c *Client) exchange(ctx context.Context, dev models.Device, req Request) Outcome {
	outcome := Outcome{Action: req.Action}
	schema := c.schemas.Lookup(dev.App)

	endpoint, err := c.endpoint(dev.Code, req.path(schema))
	if err != nil {
		c.logger.Warn().Err(err).Str("device_code", dev.Code).Msg("Invalid agent endpoint")

		outcome.Err = err

		return outcome
	}

	gate := c.gate(dev.Code)

	if err = gate.Acquire(ctx, 1); err != nil {
		outcome.Err = fmt.Errorf("%w: %w", ErrConnectionFailed, err)

		return outcome
	}
	defer gate.Release(1)

	sctx, cancel := context.WithCancel(ctx)
	defer cancel()

	httpReq, err := newHTTPRequest(sctx, endpoint, req.Body)
	if err != nil {
		c.logger.Error().Err(err).Str("device_code", dev.Code).Msg("Failed to build agent request")

		outcome.Err = err

		return outcome
	}

	s := c.open(dev.Code, req.Action, httpReq, cancel)
	outcome.SessionID = s.info.ID

	outcome.StatusCode, outcome.Err = c.do(httpReq, s, schema, &outcome)

	c.close(s, outcome.Err)

	return outcome
}

// do runs the request and fills the decoded fields of outcome.
func (c *Client) do(req *http.Request, s *session, schema Schema, outcome *Outcome) (int, error) {
	log := c.logger.With().
		Str("session_id", s.info.ID.String()).
		Str("device_code", s.info.DeviceCode).
		Str("action", s.info.Action.String()).
		Logger()

	resp, err := c.http.Do(req)
	if err != nil {
		log.Warn().Err(err).Msg("Agent connection failed")

		return 0, fmt.Errorf("%w: %w", ErrConnectionFailed, err)
	}
	defer func() { _ = resp.Body.Close() }()

	s.setStatusCode(resp.StatusCode)

	if resp.StatusCode == http.StatusNotFound {
		s.cancel()

		log.Info().Int("status_code", resp.StatusCode).Msg("Agent is relocating")

		return resp.StatusCode, &HTTPError{StatusCode: resp.StatusCode}
	}

	if _, err = io.Copy(s, resp.Body); err != nil {
		log.Warn().Err(err).Msg("Agent response interrupted")

		return resp.StatusCode, fmt.Errorf("%w: %w", ErrConnectionFailed, err)
	}

	body := s.body()

	if resp.StatusCode >= http.StatusBadRequest {
		log.Warn().Int("status_code", resp.StatusCode).Msg("Agent returned an error status")

		return resp.StatusCode, &HTTPError{StatusCode: resp.StatusCode, Body: strings.TrimSpace(string(body))}
	}

	switch s.info.Action {
	case ActionGetStatus:
		status, decodeErr := schema.Decode(body)
		if decodeErr != nil {
			log.Warn().Err(decodeErr).Str("schema", schema.Name).Msg("Failed to decode agent status")

			return resp.StatusCode, decodeErr
		}

		outcome.Status = status
	case ActionGetAppInfo:
		info, decodeErr := decodeAppInfo(body)
		if decodeErr != nil {
			log.Warn().Err(decodeErr).Msg("Failed to decode agent app info")

			return resp.StatusCode, decodeErr
		}

		outcome.AppInfo = info
	case ActionOther, ActionResetSettings:
	}

	log.Debug().Int("status_code", resp.StatusCode).Int("bytes", len(body)).Msg("Agent exchange complete")

	return resp.StatusCode, nil
}

func (r Request) path(schema Schema) string {
	if r.Path != "" {
		return r.Path
	}

	if r.Body != nil {
		return actionsPath
	}

	return schema.StatusPath
}

func (c *Client) endpoint(code, path string) (string, error) {
	if code == "" {
		return "", fmt.Errorf("%w: empty device code", ErrInvalidEndpoint)
	}

	if url.PathEscape(code) != code {
		return "", fmt.Errorf("%w: device code %q is not path safe", ErrInvalidEndpoint, code)
	}

	raw := c.baseURL + "/" + code + path

	u, err := url.Parse(raw)
	if err != nil {
		return "", fmt.Errorf("%w: %w", ErrInvalidEndpoint, err)
	}

	if u.Scheme == "" || u.Host == "" {
		return "", fmt.Errorf("%w: %q", ErrInvalidEndpoint, raw)
	}

	return u.String(), nil
}

func newHTTPRequest(ctx context.Context, endpoint string, body map[string]string) (*http.Request, error) {
	if body == nil {
		req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, http.NoBody)
		if err != nil {
			return nil, fmt.Errorf("%w: %w", ErrRequestConstruction, err)
		}

		req.Header.Set("User-Agent", userAgent)

		return req, nil
	}

	data, err := json.Marshal(body)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrRequestConstruction, err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, endpoint, bytes.NewReader(data))
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrRequestConstruction, err)
	}

	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("User-Agent", userAgent)

	return req, nil
}

func (c *Client) gate(code string) *semaphore.Weighted {
	c.mu.Lock()
	defer c.mu.Unlock()

	g, ok := c.gates[code]
	if !ok {
		g = semaphore.NewWeighted(1)
		c.gates[code] = g
	}

	return g
}

func (c *Client) open(code string, action Action, req *http.Request, cancel context.CancelFunc) *session {
	s := &session{
		info: Session{
			ID:         uuid.New(),
			DeviceCode: code,
			Action:     action,
			ActionName: action.String(),
			Method:     req.Method,
			URL:        req.URL.String(),
			StartedAt:  time.Now(),
		},
		cancel: cancel,
	}

	c.mu.Lock()
	c.sessions[s.info.ID] = s
	c.mu.Unlock()

	c.listener.SessionStarted(s.snapshot())

	return s
}

func (c *Client) close(s *session, err error) {
	c.mu.Lock()
	delete(c.sessions, s.info.ID)
	c.mu.Unlock()

	snap := s.snapshot()

	s.cancel()

	c.listener.SessionEnded(snap, err)
}

// OpenSessions returns the in-flight sessions, oldest first.
func (c *Client) OpenSessions() []Session {
	c.mu.Lock()
	out := make([]Session, 0, len(c.sessions))

	for _, s := range c.sessions {
		out = append(out, s.snapshot())
	}
	c.mu.Unlock()

	sort.Slice(out, func(i, j int) bool {
		return out[i].StartedAt.Before(out[j].StartedAt)
	})

	return out
}

// GetStatus reads the device's current state.
func (c *Client) GetStatus(ctx context.Context, dev models.Device) (*models.Status, error) {
	out := c.Connect(ctx, dev, Request{Action: ActionGetStatus})

	return out.Status, out.Err
}

// SetSwitch turns the device's switch on or off.
func (c *Client) SetSwitch(ctx context.Context, dev models.Device, on bool) error {
	value := "off"
	if on {
		value = "on"
	}

	return c.Connect(ctx, dev, Request{
		Action: ActionOther,
		Body:   map[string]string{"action": "state", "value": value},
	}).Err
}

// SetSlider sets the device's slider value.
func (c *Client) SetSlider(ctx context.Context, dev models.Device, value int) error {
	return c.Connect(ctx, dev, Request{
		Action: ActionOther,
		Body:   map[string]string{"action": "slider", "value": strconv.Itoa(value)},
	}).Err
}

// RequestUpdate asks the agent to refresh its state from the device.
func (c *Client) RequestUpdate(ctx context.Context, dev models.Device) error {
	return c.Connect(ctx, dev, Request{
		Action: ActionOther,
		Body:   map[string]string{"action": "update"},
	}).Err
}

// ResetSettings resets the device and returns its state afterwards.
func (c *Client) ResetSettings(ctx context.Context, dev models.Device) (*models.Status, error) {
	out := c.Connect(ctx, dev, Request{
		Action: ActionResetSettings,
		Body:   map[string]string{"action": "reset"},
	})
	if out.Err != nil {
		return nil, out.Err
	}

	if out.FollowUp == nil {
		return nil, fmt.Errorf("%w: no follow-up status", ErrMalformedResponse)
	}

	return out.FollowUp.Status, out.FollowUp.Err
}

// FetchAppInfo asks the agent behind code which app it runs.
func (c *Client) FetchAppInfo(ctx context.Context, code string) (*models.AppInfo, error) {
	out := c.Connect(ctx, models.Device{Code: code}, Request{
		Action: ActionGetAppInfo,
		Path:   appInfoPath,
	})

	return out.AppInfo, out.Err
}

// IsTransient reports whether err is worth retrying later.
func IsTransient(err error) bool {
	return errors.Is(err, ErrEndpointRelocating) || errors.Is(err, ErrConnectionFailed)
}
