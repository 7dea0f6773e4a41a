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

package config

import (
	"bytes"
	"context"

	"github.com/carverauto/companion/pkg/kv"
	"github.com/carverauto/companion/pkg/logger"
)

// WatchKVConfig blocks until ctx is done, logging every change to the KV key
// that holds the configuration at path. The running service does not reload;
// a restart picks the change up. Values equal to the last one seen are not
// reported.
func WatchKVConfig(ctx context.Context, store kv.KVStore, path string, log logger.Logger) error {
	if store == nil {
		return errKVStoreNotSet
	}

	key := KeyFor(path)

	last, _, err := store.Get(ctx, key)
	if err != nil {
		log.Debug().Err(err).Str("key", key).Msg("Initial KV config read failed")
	}

	ch, err := store.Watch(ctx, key)
	if err != nil {
		log.Warn().Err(err).Str("key", key).Msg("KV watch failed")

		return err
	}

	for {
		select {
		case <-ctx.Done():
			return nil
		case data, ok := <-ch:
			if !ok {
				return nil
			}

			if bytes.Equal(data, last) {
				continue
			}

			last = data

			log.Info().Str("key", key).Msg("KV config updated (restart required)")
		}
	}
}
