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
	"sync"
)

const memoryBuffer = 16

type memorySub struct {
	ch  chan []byte
	ctx context.Context
}

// MemoryTransport fans messages out to every subscriber in the process,
// the publisher's own subscriptions included.
type MemoryTransport struct {
	mu     sync.RWMutex
	subs   map[*memorySub]struct{}
	closed bool
}

func NewMemoryTransport() *MemoryTransport {
	return &MemoryTransport{subs: make(map[*memorySub]struct{})}
}

func (t *MemoryTransport) Publish(ctx context.Context, data []byte) error {
	t.mu.RLock()
	defer t.mu.RUnlock()

	if t.closed {
		return errTransportClosed
	}

	for sub := range t.subs {
		msg := append([]byte(nil), data...)

		select {
		case sub.ch <- msg:
		case <-sub.ctx.Done():
		case <-ctx.Done():
			return ctx.Err()
		}
	}

	return nil
}

func (t *MemoryTransport) Subscribe(ctx context.Context) (<-chan []byte, error) {
	t.mu.Lock()
	defer t.mu.Unlock()

	if t.closed {
		return nil, errTransportClosed
	}

	sub := &memorySub{ch: make(chan []byte, memoryBuffer), ctx: ctx}
	t.subs[sub] = struct{}{}

	go func() {
		<-ctx.Done()

		t.mu.Lock()
		defer t.mu.Unlock()

		if _, ok := t.subs[sub]; ok {
			delete(t.subs, sub)
			close(sub.ch)
		}
	}()

	return sub.ch, nil
}

// Subscribers returns the number of live subscriptions.
func (t *MemoryTransport) Subscribers() int {
	t.mu.RLock()
	defer t.mu.RUnlock()

	return len(t.subs)
}

func (t *MemoryTransport) Close() error {
	t.mu.Lock()
	defer t.mu.Unlock()

	if t.closed {
		return nil
	}

	t.closed = true

	for sub := range t.subs {
		delete(t.subs, sub)
		close(sub.ch)
	}

	return nil
}
