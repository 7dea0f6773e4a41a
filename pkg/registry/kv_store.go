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
package registry

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/carverauto/companion/pkg/kv"
)

// KVSnapshotStore keeps the snapshot under a single key of a kv.KVStore.
type KVSnapshotStore struct {
	store kv.KVStore
	key   string
}

// NewKVSnapshotStore stores snapshots at "registry/<surface>".
func NewKVSnapshotStore(store kv.KVStore, surface string) *KVSnapshotStore {
	return &KVSnapshotStore{store: store, key: "registry/" + surface}
}

func (k *KVSnapshotStore) Key() string {
	return k.key
}

// Load implements Store.
func (k *KVSnapshotStore) Load(ctx context.Context) (*Snapshot, error) {
	data, found, err := k.store.Get(ctx, k.key)
	if err != nil {
		return nil, err
	}

	if !found {
		return nil, ErrNoSnapshot
	}

	var snapshot Snapshot

	if err := json.Unmarshal(data, &snapshot); err != nil {
		return nil, fmt.Errorf("%w: %s: %w", errCorruptSnapshot, k.key, err)
	}

	return &snapshot, nil
}

// Save implements Store.
func (k *KVSnapshotStore) Save(ctx context.Context, snapshot *Snapshot) error {
	data, err := json.Marshal(snapshot)
	if err != nil {
		return fmt.Errorf("failed to marshal snapshot: %w", err)
	}

	return k.store.Put(ctx, k.key, data, 0)
}

var _ Store = (*KVSnapshotStore)(nil)
