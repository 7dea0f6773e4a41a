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
// Package api exposes the device registry and agent controls over HTTP.
package api

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strconv"
	"time"

	"github.com/gorilla/mux"

	"github.com/carverauto/companion/pkg/catalog"
	srHttp "github.com/carverauto/companion/pkg/http"
	"github.com/carverauto/companion/pkg/logger"
	"github.com/carverauto/companion/pkg/models"
	"github.com/carverauto/companion/pkg/registry"
	"github.com/carverauto/companion/pkg/version"
)

const (
	defaultReadTimeout     = 10 * time.Second
	defaultWriteTimeout    = 90 * time.Second
	defaultIdleTimeout     = 60 * time.Second
	defaultShutdownTimeout = 5 * time.Second
	maxBodyBytes           = 1 << 16
)

// APIServer serves the front-end HTTP surface.
type APIServer struct {
	router     *mux.Router
	corsConfig models.CORSConfig
	apiKey     string

	registry *registry.Registry
	agent    AgentClient
	pusher   Pusher
	catalog  *catalog.Catalog
	logger   logger.Logger
	events   *eventHub
}

// NewAPIServer creates a new API server instance with the given configuration.
func NewAPIServer(config models.CORSConfig, options ...func(server *APIServer)) (*APIServer, error) {
	s := &APIServer{
		router:     mux.NewRouter(),
		corsConfig: config,
	}

	for _, o := range options {
		o(s)
	}

	if s.registry == nil {
		return nil, errNoRegistry
	}

	if s.logger == nil {
		s.logger = logger.NewTestLogger()
	}

	if s.catalog == nil {
		s.catalog = catalog.Default()
	}

	s.events = newEventHub(s.logger)
	s.registry.OnChange(func() {
		s.events.broadcast(Event{Type: eventRegistryChanged, Timestamp: time.Now().UTC()})
	})

	s.setupRoutes()

	return s, nil
}

// WithRegistry sets the device registry the API manages.
func WithRegistry(r *registry.Registry) func(server *APIServer) {
	return func(server *APIServer) {
		server.registry = r
	}
}

// WithAgentClient enables the device control endpoints.
func WithAgentClient(c AgentClient) func(server *APIServer) {
	return func(server *APIServer) {
		server.agent = c
	}
}

// WithPusher enables POST /api/sync/push.
func WithPusher(p Pusher) func(server *APIServer) {
	return func(server *APIServer) {
		server.pusher = p
	}
}

// WithCatalog sets the app catalog used for display names.
func WithCatalog(c *catalog.Catalog) func(server *APIServer) {
	return func(server *APIServer) {
		server.catalog = c
	}
}

// WithLogger sets the server logger.
func WithLogger(log logger.Logger) func(server *APIServer) {
	return func(server *APIServer) {
		server.logger = log
	}
}

// WithAPIKey requires X-API-Key on everything except /health.
func WithAPIKey(key string) func(server *APIServer) {
	return func(server *APIServer) {
		server.apiKey = key
	}
}

func (s *APIServer) setupRoutes() {
	s.router.Use(func(next http.Handler) http.Handler {
		return srHttp.CommonMiddleware(next, s.corsConfig, s.logger)
	})

	s.router.Use(srHttp.APIKeyMiddlewareWithOptions(srHttp.APIKeyOptions{
		APIKey:          s.apiKey,
		ExcludePaths:    []string{"/health"},
		LogUnauthorized: true,
		Logger:          s.logger,
	}))

	s.router.HandleFunc("/health", s.handleHealth).Methods(http.MethodGet)

	r := s.router.PathPrefix("/api").Subrouter()

	r.HandleFunc("/devices", s.listDevices).Methods(http.MethodGet)
	r.HandleFunc("/devices", s.addDevice).Methods(http.MethodPost)
	r.HandleFunc("/devices/{index}", s.getDevice).Methods(http.MethodGet)
	r.HandleFunc("/devices/{index}", s.editDevice).Methods(http.MethodPut)
	r.HandleFunc("/devices/{index}", s.removeDevice).Methods(http.MethodDelete)
	r.HandleFunc("/devices/{index}/move", s.moveDevice).Methods(http.MethodPost)
	r.HandleFunc("/current", s.setCurrent).Methods(http.MethodPut)

	r.HandleFunc("/devices/{index}/status", s.getStatus).Methods(http.MethodGet)
	r.HandleFunc("/devices/{index}/switch", s.setSwitch).Methods(http.MethodPost)
	r.HandleFunc("/devices/{index}/slider", s.setSlider).Methods(http.MethodPost)
	r.HandleFunc("/devices/{index}/update", s.requestUpdate).Methods(http.MethodPost)
	r.HandleFunc("/devices/{index}/reset", s.resetSettings).Methods(http.MethodPost)
	r.HandleFunc("/devices/{index}/probe", s.probeDevice).Methods(http.MethodPost)

	r.HandleFunc("/sync/push", s.pushSync).Methods(http.MethodPost)
	r.HandleFunc("/sessions", s.listSessions).Methods(http.MethodGet)
	r.HandleFunc("/stats", s.getStats).Methods(http.MethodGet)
	r.HandleFunc("/catalog", s.getCatalog).Methods(http.MethodGet)
	r.HandleFunc("/events", s.handleEvents).Methods(http.MethodGet)
}

// Handler returns the routed handler, for tests and embedding.
func (s *APIServer) Handler() http.Handler {
	return s.router
}

// Serve listens on addr until ctx is done, then shuts down gracefully.
func (s *APIServer) Serve(ctx context.Context, addr string) error {
	srv := &http.Server{
		Addr:         addr,
		Handler:      s.router,
		ReadTimeout:  defaultReadTimeout,
		WriteTimeout: defaultWriteTimeout,
		IdleTimeout:  defaultIdleTimeout,
	}

	errCh := make(chan error, 1)

	go func() {
		s.logger.Info().Str("addr", addr).Msg("API server listening")

		errCh <- srv.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		return fmt.Errorf("api server: %w", err)
	case <-ctx.Done():
	}

	s.events.closeAll()

	shutdownCtx, cancel := context.WithTimeout(context.Background(), defaultShutdownTimeout)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("api server shutdown: %w", err)
	}

	if err := <-errCh; err != nil && !errors.Is(err, http.ErrServerClosed) {
		return fmt.Errorf("api server: %w", err)
	}

	return nil
}

func (*APIServer) handleHealth(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, HealthResponse{Status: "ok", Build: version.Get()})
}

// persist saves after a mutation. A failed save is logged, not returned: the
// in-memory change stands and the next save retries it.
func (s *APIServer) persist(ctx context.Context) {
	if !s.registry.HasChanges() {
		return
	}

	if err := s.registry.Persist(ctx); err != nil {
		s.logger.Warn().Err(err).Msg("Failed to save device list after change")
	}
}

func (s *APIServer) fail(w http.ResponseWriter, r *http.Request, err error) {
	status := statusForError(err)

	ev := s.logger.Debug()
	if status >= http.StatusInternalServerError {
		ev = s.logger.Warn()
	}

	ev.Err(err).Str("path", r.URL.Path).Int("status_code", status).Msg("Request failed")

	writeError(w, err.Error(), status)
}

func writeJSON(w http.ResponseWriter, status int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)

	_ = json.NewEncoder(w).Encode(data)
}

func decodeBody(r *http.Request, dst interface{}) error {
	dec := json.NewDecoder(io.LimitReader(r.Body, maxBodyBytes))
	dec.DisallowUnknownFields()

	if err := dec.Decode(dst); err != nil {
		return fmt.Errorf("%w: %w", errInvalidBody, err)
	}

	return nil
}

func indexVar(r *http.Request) (int, error) {
	i, err := strconv.Atoi(mux.Vars(r)["index"])
	if err != nil {
		return 0, fmt.Errorf("%w: %q", errInvalidIndex, mux.Vars(r)["index"])
	}

	return i, nil
}
