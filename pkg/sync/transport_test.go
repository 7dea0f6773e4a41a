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
	"testing"
	"time"

	"github.com/carverauto/companion/pkg/kv"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSubjectAndKey(t *testing.T) {
	assert.Equal(t, "companion.sync.alice", SubjectFor("alice"))
	assert.Equal(t, "companion.sync.a_b_c", SubjectFor("a.b*c"))
	assert.Equal(t, "companion.sync.default", SubjectFor(" "))
	assert.Equal(t, "sync/alice", KeyFor("alice"))
	assert.Equal(t, "sync/bob_smith", KeyFor("bob smith"))
}

func TestKVTransportDeliversLatest(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	store := kv.NewMemoryStore()
	defer func() { _ = store.Close() }()

	tr := NewKVTransport(store, "alice")
	assert.Equal(t, "sync/alice", tr.Key())

	require.NoError(t, tr.Publish(ctx, []byte("first")))
	require.NoError(t, tr.Publish(ctx, []byte("second")))

	ch, err := tr.Subscribe(ctx)
	require.NoError(t, err)

	assert.Equal(t, "second", string(receive(t, ch)), "late subscriber gets the latest value")

	require.NoError(t, store.Delete(ctx, tr.Key()))
	require.NoError(t, tr.Publish(ctx, []byte("third")))

	assert.Equal(t, "third", string(receive(t, ch)), "deletes are skipped")

	cancel()

	require.Eventually(t, func() bool {
		select {
		case _, ok := <-ch:
			return !ok
		default:
			return false
		}
	}, time.Second, 5*time.Millisecond)
}

func TestMemoryTransportFanOut(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	tr := NewMemoryTransport()

	a, err := tr.Subscribe(ctx)
	require.NoError(t, err)

	b, err := tr.Subscribe(ctx)
	require.NoError(t, err)

	require.NoError(t, tr.Publish(ctx, []byte("hello")))

	assert.Equal(t, "hello", string(receive(t, a)))
	assert.Equal(t, "hello", string(receive(t, b)))

	require.NoError(t, tr.Close())
	require.ErrorIs(t, tr.Publish(ctx, []byte("late")), errTransportClosed)

	_, err = tr.Subscribe(ctx)
	require.ErrorIs(t, err, errTransportClosed)
}

func TestNATSTransportRequiresURL(t *testing.T) {
	_, err := NewNATSTransport("", "alice", nil)
	require.ErrorIs(t, err, errNatsURLRequired)
}

func receive(t *testing.T, ch <-chan []byte) []byte {
	t.Helper()

	select {
	case v, ok := <-ch:
		require.True(t, ok, "channel closed")

		return v
	case <-time.After(time.Second):
		t.Fatal("timed out waiting for message")

		return nil
	}
}
