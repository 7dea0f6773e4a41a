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
package kv

import (
	"context"
	"sync"
	"time"
)

// MemoryStore is an in-process KVStore. It backs the "memory" store option
// and is shared by tests that need real watch semantics.
type MemoryStore struct {
	mu       sync.Mutex
	data     map[string][]byte
	watchers map[string][]chan []byte
	closed   bool
	done     chan struct{}
}

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		data:     make(map[string][]byte),
		watchers: make(map[string][]chan []byte),
		done:     make(chan struct{}),
	}
}

func (m *MemoryStore) Get(_ context.Context, key string) ([]byte, bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.closed {
		return nil, false, errStoreClosed
	}

	v, ok := m.data[key]
	if !ok {
		return nil, false, nil
	}

	return append([]byte(nil), v...), true, nil
}

func (m *MemoryStore) Put(_ context.Context, key string, value []byte, _ time.Duration) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.closed {
		return errStoreClosed
	}

	m.data[key] = append([]byte(nil), value...)
	m.notify(key, m.data[key])

	return nil
}

func (m *MemoryStore) Delete(_ context.Context, key string) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.closed {
		return errStoreClosed
	}

	delete(m.data, key)
	m.notify(key, nil)

	return nil
}

// notify delivers the latest value to every watcher. A slow watcher only
// ever holds the newest value. Caller holds m.mu.
func (m *MemoryStore) notify(key string, value []byte) {
	for _, ch := range m.watchers[key] {
		select {
		case <-ch:
		default:
		}

		var v []byte
		if value != nil {
			v = append([]byte(nil), value...)
		}

		ch <- v
	}
}

func (m *MemoryStore) Watch(ctx context.Context, key string) (<-chan []byte, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.closed {
		return nil, errStoreClosed
	}

	ch := make(chan []byte, 1)
	if v, ok := m.data[key]; ok {
		ch <- append([]byte(nil), v...)
	}

	m.watchers[key] = append(m.watchers[key], ch)

	go func() {
		select {
		case <-ctx.Done():
			m.removeWatcher(key, ch)
		case <-m.done:
		}
	}()

	return ch, nil
}

func (m *MemoryStore) removeWatcher(key string, ch chan []byte) {
	m.mu.Lock()
	defer m.mu.Unlock()

	list := m.watchers[key]
	for i, c := range list {
		if c == ch {
			m.watchers[key] = append(list[:i], list[i+1:]...)
			close(ch)

			return
		}
	}
}

func (m *MemoryStore) Close() error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.closed {
		return nil
	}

	m.closed = true
	close(m.done)

	for key, list := range m.watchers {
		for _, ch := range list {
			close(ch)
		}

		delete(m.watchers, key)
	}

	return nil
}

var _ KVStore = (*MemoryStore)(nil)
