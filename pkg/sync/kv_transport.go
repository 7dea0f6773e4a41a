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

	"github.com/carverauto/companion/pkg/kv"
)

// KVTransport keeps the latest envelope under one key. A surface that starts
// later still receives the most recent list.
type KVTransport struct {
	store kv.KVStore
	key   string
}

// NewKVTransport shares key sync/<user> in store. The store is not closed by
// the transport.
func NewKVTransport(store kv.KVStore, user string) *KVTransport {
	return &KVTransport{store: store, key: KeyFor(user)}
}

// Key returns the KV key this transport uses.
func (t *KVTransport) Key() string {
	return t.key
}

func (t *KVTransport) Publish(ctx context.Context, data []byte) error {
	if err := t.store.Put(ctx, t.key, data, 0); err != nil {
		return fmt.Errorf("failed to put %s: %w", t.key, err)
	}

	return nil
}

func (t *KVTransport) Subscribe(ctx context.Context) (<-chan []byte, error) {
	updates, err := t.store.Watch(ctx, t.key)
	if err != nil {
		return nil, fmt.Errorf("failed to watch %s: %w", t.key, err)
	}

	out := make(chan []byte, 1)

	go func() {
		defer close(out)

		for {
			select {
			case <-ctx.Done():
				return
			case v, ok := <-updates:
				if !ok {
					return
				}

				// deletes carry no list
				if v == nil {
					continue
				}

				select {
				case out <- v:
				case <-ctx.Done():
					return
				}
			}
		}
	}()

	return out, nil
}

func (*KVTransport) Close() error {
	return nil
}
