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
package sync

import (
	"context"
	"fmt"

	"github.com/nats-io/nats.go"

	"github.com/carverauto/companion/pkg/logger"
)

const natsBuffer = 64

// NATSTransport publishes envelopes on a core NATS subject. Core NATS keeps
// nothing, so a surface only sees lists pushed while it is subscribed.
type NATSTransport struct {
	nc      *nats.Conn
	subject string
	owned   bool
	logger  logger.Logger
}

// Connect dials NATS with connection event logging.
func Connect(natsURL, name string, log logger.Logger, extra ...nats.Option) (*nats.Conn, error) {
	if natsURL == "" {
		return nil, errNatsURLRequired
	}

	if log == nil {
		log = logger.NewTestLogger()
	}

	opts := []nats.Option{
		nats.Name(name),
		nats.MaxReconnects(-1),
		nats.ErrorHandler(func(_ *nats.Conn, _ *nats.Subscription, err error) {
			log.Error().Err(err).Msg("NATS error")
		}),
		nats.ConnectHandler(func(nc *nats.Conn) {
			log.Info().Str("url", nc.ConnectedUrl()).Msg("Connected to NATS")
		}),
		nats.DisconnectErrHandler(func(_ *nats.Conn, err error) {
			log.Warn().Err(err).Msg("NATS disconnected")
		}),
		nats.ReconnectHandler(func(nc *nats.Conn) {
			log.Info().Str("url", nc.ConnectedUrl()).Msg("NATS reconnected")
		}),
	}

	opts = append(opts, extra...)

	nc, err := nats.Connect(natsURL, opts...)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to NATS: %w", err)
	}

	return nc, nil
}

// NewNATSTransport connects to natsURL and owns the connection.
func NewNATSTransport(natsURL, user string, log logger.Logger) (*NATSTransport, error) {
	nc, err := Connect(natsURL, "companion-sync", log)
	if err != nil {
		return nil, err
	}

	t := NewNATSTransportFromConn(nc, user, log)
	t.owned = true

	return t, nil
}

// NewNATSTransportFromConn uses an existing connection, which Close leaves open.
func NewNATSTransportFromConn(nc *nats.Conn, user string, log logger.Logger) *NATSTransport {
	if log == nil {
		log = logger.NewTestLogger()
	}

	return &NATSTransport{
		nc:      nc,
		subject: SubjectFor(user),
		logger:  log,
	}
}

// Subject returns the subject this transport uses.
func (t *NATSTransport) Subject() string {
	return t.subject
}

func (t *NATSTransport) Publish(ctx context.Context, data []byte) error {
	if t.nc.IsClosed() {
		return errTransportClosed
	}

	if err := t.nc.Publish(t.subject, data); err != nil {
		return fmt.Errorf("failed to publish to %s: %w", t.subject, err)
	}

	if err := t.nc.FlushWithContext(ctx); err != nil {
		return fmt.Errorf("failed to flush %s: %w", t.subject, err)
	}

	return nil
}

func (t *NATSTransport) Subscribe(ctx context.Context) (<-chan []byte, error) {
	msgs := make(chan *nats.Msg, natsBuffer)

	sub, err := t.nc.ChanSubscribe(t.subject, msgs)
	if err != nil {
		return nil, fmt.Errorf("failed to subscribe to %s: %w", t.subject, err)
	}

	out := make(chan []byte, 1)

	go func() {
		defer close(out)
		defer func() {
			if err := sub.Unsubscribe(); err != nil && !t.nc.IsClosed() {
				t.logger.Warn().Err(err).Str("subject", t.subject).Msg("Failed to unsubscribe")
			}
		}()

		for {
			select {
			case <-ctx.Done():
				return
			case msg := <-msgs:
				select {
				case out <- msg.Data:
				case <-ctx.Done():
					return
				}
			}
		}
	}()

	return out, nil
}

func (t *NATSTransport) Close() error {
	if t.owned && !t.nc.IsClosed() {
		t.nc.Close()
	}

	return nil
}
