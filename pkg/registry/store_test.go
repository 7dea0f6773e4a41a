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
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/carverauto/companion/pkg/kv"
	"github.com/carverauto/companion/pkg/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/mock/gomock"
)

func TestFileStoreSaveLoad(t *testing.T) {
	ctx := context.Background()
	path := filepath.Join(t.TempDir(), DefaultFileName)
	store := NewFileStore(path)

	_, err := store.Load(ctx)
	require.ErrorIs(t, err, ErrNoSnapshot)

	want := &Snapshot{
		Version: snapshotVersion,
		Current: 0,
		Devices: []models.Device{{Name: "Kitchen", Code: "abc123", App: "X1"}},
	}
	require.NoError(t, store.Save(ctx, want))

	info, err := os.Stat(path)
	require.NoError(t, err)
	assert.Equal(t, os.FileMode(defaultFilePerms), info.Mode().Perm())

	got, err := store.Load(ctx)
	require.NoError(t, err)
	assert.Equal(t, want, got)

	entries, err := os.ReadDir(filepath.Dir(path))
	require.NoError(t, err)
	assert.Len(t, entries, 1, "temp files are cleaned up")
}

func TestKVSnapshotStoreErrors(t *testing.T) {
	ctx := context.Background()
	ctrl := gomock.NewController(t)
	mockKV := kv.NewMockKVStore(ctrl)
	store := NewKVSnapshotStore(mockKV, "watch")

	assert.Equal(t, "registry/watch", store.Key())

	errUnavailable := errors.New("nats unavailable")

	mockKV.EXPECT().Get(ctx, "registry/watch").Return(nil, false, errUnavailable)
	_, err := store.Load(ctx)
	require.ErrorIs(t, err, errUnavailable)

	mockKV.EXPECT().Get(ctx, "registry/watch").Return(nil, false, nil)
	_, err = store.Load(ctx)
	require.ErrorIs(t, err, ErrNoSnapshot)

	mockKV.EXPECT().Get(ctx, "registry/watch").Return([]byte("garbage"), true, nil)
	_, err = store.Load(ctx)
	require.ErrorIs(t, err, errCorruptSnapshot)

	mockKV.EXPECT().Put(ctx, "registry/watch", gomock.Any(), gomock.Any()).Return(errUnavailable)
	require.ErrorIs(t, store.Save(ctx, &Snapshot{Version: snapshotVersion}), errUnavailable)
}
