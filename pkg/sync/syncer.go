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
// Package sync keeps the device registries of two surfaces in step by
// shipping the full list whenever it changes.
package sync

import (
	"context"
	"fmt"
	"sync"

	"github.com/carverauto/companion/pkg/logger"
	"github.com/carverauto/companion/pkg/registry"
)

// Syncer pushes the local registry and applies lists received from the peer.
type Syncer struct {
	reg       *registry.Registry
	transport Transport
	origin    string
	legacy    bool
	clock     Clock
	logger    logger.Logger

	mu     sync.Mutex
	lastID string
}

// Option configures a Syncer.
type Option func(*Syncer)

// WithLegacyPayload sends the delimited text format instead of JSON.
func WithLegacyPayload(legacy bool) Option {
	return func(s *Syncer) {
		s.legacy = legacy
	}
}

// WithClock overrides the envelope timestamp source.
func WithClock(c Clock) Option {
	return func(s *Syncer) {
		s.clock = c
	}
}

// WithLogger sets the syncer logger.
func WithLogger(log logger.Logger) Option {
	return func(s *Syncer) {
		s.logger = log
	}
}

// NewSyncer creates a syncer for reg. origin identifies this surface.
func NewSyncer(reg *registry.Registry, transport Transport, origin string, opts ...Option) (*Syncer, error) {
	if reg == nil {
		return nil, errNilRegistry
	}

	if transport == nil {
		return nil, errNilTransport
	}

	s := &Syncer{
		reg:       reg,
		transport: transport,
		origin:    origin,
		clock:     realClock{},
	}

	for _, opt := range opts {
		opt(s)
	}

	if s.logger == nil {
		s.logger = logger.NewTestLogger()
	}

	return s, nil
}

// Origin returns the surface ID stamped on outgoing envelopes.
func (s *Syncer) Origin() string {
	return s.origin
}

// Push sends the whole registry to the peer.
func (s *Syncer) Push(ctx context.Context) error {
	p := Export(s.reg)

	var (
		payload []byte
		err     error
	)

	if s.legacy {
		payload = EncodeLegacy(p)
	} else if payload, err = Encode(p); err != nil {
		return err
	}

	data, err := newEnvelope(s.origin, payload, s.legacy, s.clock.Now())
	if err != nil {
		return err
	}

	if err := s.transport.Publish(ctx, data); err != nil {
		s.logger.Error().Err(err).Str("origin", s.origin).Msg("Failed to push device list")

		return fmt.Errorf("failed to publish device list: %w", err)
	}

	s.logger.Info().
		Str("origin", s.origin).
		Str("kind", p.Kind.String()).
		Int("devices", len(p.Devices)).
		Bool("legacy", s.legacy).
		Msg("Pushed device list")

	return nil
}

// Apply makes the registry match p and saves it. The previous contents are
// discarded.
func (s *Syncer) Apply(ctx context.Context, p Payload) error {
	if p.Kind == KindNoop {
		return nil
	}

	if err := p.ApplyTo(s.reg); err != nil {
		return err
	}

	if err := s.reg.Persist(ctx); err != nil {
		return err
	}

	s.logger.Info().Str("kind", p.Kind.String()).Int("devices", len(p.Devices)).Msg("Applied device list")

	return nil
}

// ApplyRaw decodes data and applies it. On a decode error the registry is
// not touched.
func (s *Syncer) ApplyRaw(ctx context.Context, data []byte) error {
	p, err := Decode(data)
	if err != nil {
		s.logger.Warn().Err(err).Int("bytes", len(data)).Msg("Dropping malformed device list")

		return err
	}

	return s.Apply(ctx, p)
}

// Run applies every list the peer sends until ctx is done.
func (s *Syncer) Run(ctx context.Context) error {
	ch, err := s.transport.Subscribe(ctx)
	if err != nil {
		return fmt.Errorf("failed to subscribe for device lists: %w", err)
	}

	s.logger.Info().Str("origin", s.origin).Msg("Listening for device lists")

	for {
		select {
		case <-ctx.Done():
			return nil
		case data, ok := <-ch:
			if !ok {
				if ctx.Err() != nil {
					return nil
				}

				return errSubscriptionEnded
			}

			s.handle(ctx, data)
		}
	}
}

func (s *Syncer) handle(ctx context.Context, data []byte) {
	env, payload := openEnvelope(data)

	if env.Origin != "" && env.Origin == s.origin {
		return
	}

	if env.ID != "" {
		s.mu.Lock()
		dup := env.ID == s.lastID
		s.lastID = env.ID
		s.mu.Unlock()

		if dup {
			return
		}
	}

	if err := s.ApplyRaw(ctx, payload); err != nil {
		s.logger.Warn().Err(err).Str("origin", env.Origin).Msg("Failed to apply device list")
	}
}
