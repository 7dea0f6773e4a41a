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
//go:generate mockgen -destination=mock_registry.go -package=registry github.com/carverauto/companion/pkg/registry Store

package registry

import (
	"context"

	"github.com/carverauto/companion/pkg/models"
)

// Store persists registry snapshots.
type Store interface {
	// Load returns the last saved snapshot, or ErrNoSnapshot if nothing has
	// been saved yet.
	Load(ctx context.Context) (*Snapshot, error)
	// Save replaces the stored snapshot.
	Save(ctx context.Context, snapshot *Snapshot) error
}

const snapshotVersion = 1

// Snapshot is the persisted form of a Registry.
type Snapshot struct {
	Version int             `json:"version"`
	Current int             `json:"current"`
	Devices []models.Device `json:"devices"`
}

func (s *Snapshot) validate() error {
	if s.Version > snapshotVersion {
		return errUnsupportedSnapshot
	}

	return nil
}
