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
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMemoryStoreGetPutDelete(t *testing.T) {
	ctx := context.Background()
	store := NewMemoryStore()

	_, found, err := store.Get(ctx, "missing")
	require.NoError(t, err)
	assert.False(t, found)

	require.NoError(t, store.Put(ctx, "k", []byte("v1"), 0))

	value, found, err := store.Get(ctx, "k")
	require.NoError(t, err)
	assert.True(t, found)
	assert.Equal(t, []byte("v1"), value)

	require.NoError(t, store.Delete(ctx, "k"))

	_, found, err = store.Get(ctx, "k")
	require.NoError(t, err)
	assert.False(t, found)
}

func TestMemoryStoreWatchDeliversCurrentThenUpdates(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	store := NewMemoryStore()
	require.NoError(t, store.Put(ctx, "sync/default", []byte("first"), 0))

	ch, err := store.Watch(ctx, "sync/default")
	require.NoError(t, err)

	assert.Equal(t, []byte("first"), receive(t, ch))

	require.NoError(t, store.Put(ctx, "sync/default", []byte("second"), 0))
	assert.Equal(t, []byte("second"), receive(t, ch))

	require.NoError(t, store.Delete(ctx, "sync/default"))
	assert.Nil(t, receive(t, ch))

	cancel()

	require.Eventually(t, func() bool {
		_, ok := <-ch
		return !ok
	}, time.Second, 10*time.Millisecond)
}

func TestMemoryStoreClosed(t *testing.T) {
	ctx := context.Background()
	store := NewMemoryStore()

	ch, err := store.Watch(ctx, "k")
	require.NoError(t, err)
	require.NoError(t, store.Close())

	_, ok := <-ch
	assert.False(t, ok)

	assert.ErrorIs(t, store.Put(ctx, "k", []byte("v"), 0), errStoreClosed)
	_, _, err = store.Get(ctx, "k")
	assert.ErrorIs(t, err, errStoreClosed)
	require.NoError(t, store.Close())
}

func receive(t *testing.T, ch <-chan []byte) []byte {
	t.Helper()

	select {
	case v := <-ch:
		return v
	case <-time.After(time.Second):
		t.Fatal("timed out waiting for watch update")
		return nil
	}
}
