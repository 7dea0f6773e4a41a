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
//go:generate mockgen -destination=mock_kv.go -package=kv github.com/carverauto/companion/pkg/kv KVStore

// Package kv pkg/kv/interfaces.go
package kv

import (
	"context"
	"time"
)

// KVStore defines the key-value store used for registry snapshots and for
// replicating sync payloads between surfaces.
type KVStore interface {
	// Get retrieves the value associated with the given key.
	// Returns the value as a byte slice, a boolean indicating if the key was found, and an error if the operation fails.
	Get(ctx context.Context, key string) ([]byte, bool, error)

	// Put stores a value under the given key with an optional TTL (time-to-live).
	// If ttl is zero, the value persists indefinitely (or until explicitly deleted, depending on the backend).
	Put(ctx context.Context, key string, value []byte, ttl time.Duration) error

	// Delete removes the key and its associated value from the store.
	Delete(ctx context.Context, key string) error

	// Watch monitors the specified key for changes and sends updates through a channel.
	// The current value, if any, is delivered first. A nil value means the key was deleted.
	// The returned channel is closed when the context is canceled or the KV store is closed.
	Watch(ctx context.Context, key string) (<-chan []byte, error)

	// Close shuts down the KV store, releasing any resources (e.g., connections).
	Close() error
}
