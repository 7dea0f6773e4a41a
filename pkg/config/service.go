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
package config

import (
	"errors"
	"fmt"
	"net/url"
	"path/filepath"
	"time"

	"github.com/carverauto/companion/pkg/logger"
	"github.com/carverauto/companion/pkg/models"
)

const (
	StoreFile   = "file"
	StoreKV     = "kv"
	StoreMemory = "memory"

	TransportNATS   = "nats"
	TransportKV     = "kv"
	TransportNone   = "none"
	TransportMemory = "memory"

	defaultListenAddr = ":8088"
	defaultSurfaceID  = "phone"
	defaultUser       = "default"
	defaultDataDir    = "/var/lib/companion"
	defaultBaseURL    = "https://agent.electricimp.com"
	defaultTimeout    = 60 * time.Second
	defaultNATSURL    = "nats://127.0.0.1:4222"
	defaultBucket     = "companion"
	devicesFileName   = "devices.json"
)

var (
	errListenAddrRequired = errors.New("listen_addr is required")
	errSurfaceIDRequired  = errors.New("surface_id is required")
	errInvalidBaseURL     = errors.New("agent.base_url must be an absolute http(s) URL")
	errInvalidTimeout     = errors.New("agent.timeout must be positive")
	errInvalidStore       = errors.New("invalid store")
	errInvalidTransport   = errors.New("invalid sync transport")
	errNATSURLRequired    = errors.New("sync.nats_url is required for NATS backed store or transport")
	errInvalidSchema      = errors.New("invalid agent schema")
	errIncompleteTLS      = errors.New("sync.tls needs cert_file, key_file and ca_file")
)

// SchemaConfig maps an app tag to the layout of its agent's state.
type SchemaConfig struct {
	App        string `json:"app"`
	Name       string `json:"name"`
	StatusPath string `json:"status_path"`
	Format     string `json:"format"`
}

// AgentConfig configures the agent HTTP client.
type AgentConfig struct {
	BaseURL string          `json:"base_url"`
	Timeout models.Duration `json:"timeout"`
	Schemas []SchemaConfig  `json:"schemas,omitempty"`
}

// SyncConfig selects how device lists reach the other surface.
type SyncConfig struct {
	Transport     string            `json:"transport"`
	NATSURL       string            `json:"nats_url"`
	Bucket        string            `json:"bucket"`
	LegacyPayload bool              `json:"legacy_payload"`
	TLS           *models.TLSConfig `json:"tls,omitempty"`
}

// ServiceConfig is the companiond configuration.
type ServiceConfig struct {
	ListenAddr  string            `json:"listen_addr"`
	SurfaceID   string            `json:"surface_id"`
	User        string            `json:"user"`
	DataDir     string            `json:"data_dir"`
	CatalogPath string            `json:"catalog_path"`
	Store       string            `json:"store"`
	Agent       AgentConfig       `json:"agent"`
	Sync        SyncConfig        `json:"sync"`
	APIKey      string            `json:"api_key"`
	CORS        models.CORSConfig `json:"cors"`
	Logging     *logger.Config    `json:"logging,omitempty"`
}

// ApplyDefaults fills zero values.
func (c *ServiceConfig) ApplyDefaults() {
	if c.ListenAddr == "" {
		c.ListenAddr = defaultListenAddr
	}

	if c.SurfaceID == "" {
		c.SurfaceID = defaultSurfaceID
	}

	if c.User == "" {
		c.User = defaultUser
	}

	if c.DataDir == "" {
		c.DataDir = defaultDataDir
	}

	if c.Store == "" {
		c.Store = StoreFile
	}

	if c.Agent.BaseURL == "" {
		c.Agent.BaseURL = defaultBaseURL
	}

	if c.Agent.Timeout == 0 {
		c.Agent.Timeout = models.Duration(defaultTimeout)
	}

	if c.Sync.Transport == "" {
		c.Sync.Transport = TransportNone
	}

	if c.Sync.NATSURL == "" && (c.Sync.Transport == TransportNATS || c.Sync.Transport == TransportKV || c.Store == StoreKV) {
		c.Sync.NATSURL = defaultNATSURL
	}

	if c.Sync.Bucket == "" {
		c.Sync.Bucket = defaultBucket
	}

	if len(c.CORS.AllowedOrigins) == 0 {
		c.CORS.AllowedOrigins = []string{"*"}
	}

	if c.Logging == nil {
		c.Logging = logger.DefaultConfig()
	}
}

// Validate implements Validator.
func (c *ServiceConfig) Validate() error {
	if c.ListenAddr == "" {
		return errListenAddrRequired
	}

	if c.SurfaceID == "" {
		return errSurfaceIDRequired
	}

	u, err := url.Parse(c.Agent.BaseURL)
	if err != nil || (u.Scheme != "http" && u.Scheme != "https") || u.Host == "" {
		return fmt.Errorf("%w: %q", errInvalidBaseURL, c.Agent.BaseURL)
	}

	if c.Agent.Timeout <= 0 {
		return errInvalidTimeout
	}

	switch c.Store {
	case StoreFile, StoreKV, StoreMemory:
	default:
		return fmt.Errorf("%w: %q", errInvalidStore, c.Store)
	}

	switch c.Sync.Transport {
	case TransportNATS, TransportKV, TransportNone, TransportMemory:
	default:
		return fmt.Errorf("%w: %q", errInvalidTransport, c.Sync.Transport)
	}

	if c.NeedsNATS() && c.Sync.NATSURL == "" {
		return errNATSURLRequired
	}

	if tls := c.Sync.TLS; tls != nil && (tls.CertFile == "" || tls.KeyFile == "" || tls.CAFile == "") {
		return errIncompleteTLS
	}

	for i, s := range c.Agent.Schemas {
		if s.App == "" || s.StatusPath == "" {
			return fmt.Errorf("%w: schemas[%d] needs app and status_path", errInvalidSchema, i)
		}

		switch s.Format {
		case "", "json", "positional", "legacy":
		default:
			return fmt.Errorf("%w: schemas[%d] format %q", errInvalidSchema, i, s.Format)
		}
	}

	return nil
}

// NeedsNATS reports whether the store or the sync transport uses NATS.
func (c *ServiceConfig) NeedsNATS() bool {
	return c.Store == StoreKV || c.Sync.Transport == TransportNATS || c.Sync.Transport == TransportKV
}

// DevicesPath is the file store location.
func (c *ServiceConfig) DevicesPath() string {
	return filepath.Join(c.DataDir, devicesFileName)
}

// Timeout returns the agent timeout as a time.Duration.
func (c *ServiceConfig) Timeout() time.Duration {
	return time.Duration(c.Agent.Timeout)
}
