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

//go:generate mockgen -destination=mock_sync.go -package=sync github.com/carverauto/companion/pkg/sync Transport

import (
	"context"
)

// Transport moves encoded envelopes between surfaces.
type Transport interface {
	Publish(ctx context.Context, data []byte) error
	// Subscribe delivers incoming messages until ctx is done, then closes
	// the channel.
	Subscribe(ctx context.Context) (<-chan []byte, error)
	Close() error
}
