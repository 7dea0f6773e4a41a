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
// Package registry holds the ordered list of devices known to a surface and
// its durable snapshot.
package registry

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"github.com/carverauto/companion/pkg/logger"
	"github.com/carverauto/companion/pkg/models"
)

// NoSelection is the current index when no device is selected.
const NoSelection = -1

// Registry is the ordered device list of one surface. Order is display order.
type Registry struct {
	mu         sync.RWMutex
	devices    []*models.Device
	current    int
	dirty      bool
	generation uint64

	store     Store
	logger    logger.Logger
	observers []func()
}

// New creates an empty registry persisted through store.
func New(store Store, log logger.Logger) *Registry {
	if log == nil {
		log = logger.NewTestLogger()
	}

	return &Registry{
		current: NoSelection,
		store:   store,
		logger:  log,
	}
}

// OnChange registers fn to run after every change to the list. Observers run
// outside the registry lock and must not block for long.
func (r *Registry) OnChange(fn func()) {
	r.mu.Lock()
	r.observers = append(r.observers, fn)
	r.mu.Unlock()
}

func (r *Registry) notify() {
	r.mu.RLock()
	observers := append([]func(){}, r.observers...)
	r.mu.RUnlock()

	for _, fn := range observers {
		fn()
	}
}

// touch marks a structural change. Caller holds r.mu.
func (r *Registry) touch() {
	r.dirty = true
	r.generation++
}

// Devices returns a copy of the list in display order.
func (r *Registry) Devices() []models.Device {
	r.mu.RLock()
	defer r.mu.RUnlock()

	out := make([]models.Device, len(r.devices))
	for i, d := range r.devices {
		out[i] = *d
	}

	return out
}

func (r *Registry) Len() int {
	r.mu.RLock()
	defer r.mu.RUnlock()

	return len(r.devices)
}

// Get returns a copy of the device at index i.
func (r *Registry) Get(i int) (models.Device, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	if i < 0 || i >= len(r.devices) {
		return models.Device{}, fmt.Errorf("%w: %d", ErrIndexOutOfRange, i)
	}

	return *r.devices[i], nil
}

// Add appends a device and returns its index.
func (r *Registry) Add(d models.Device) int {
	r.mu.Lock()

	dev := d
	dev.HasChanged = true

	if dev.InstallState != models.InstallStateInstalling {
		dev.InstallState = models.InstallStateNone
	}

	r.devices = append(r.devices, &dev)
	r.touch()
	idx := len(r.devices) - 1

	r.mu.Unlock()

	r.notify()

	return idx
}

// Update applies fn to the device at index i. Field changes made through the
// models.Device setters mark the record dirty.
func (r *Registry) Update(i int, fn func(d *models.Device)) error {
	r.mu.Lock()

	if i < 0 || i >= len(r.devices) {
		r.mu.Unlock()

		return fmt.Errorf("%w: %d", ErrIndexOutOfRange, i)
	}

	fn(r.devices[i])

	if r.devices[i].HasChanged {
		r.generation++
	}

	r.mu.Unlock()

	r.notify()

	return nil
}

// Remove deletes the device at index i. The current selection follows the
// record it pointed at, or is cleared if that record was removed.
func (r *Registry) Remove(i int) error {
	r.mu.Lock()

	if i < 0 || i >= len(r.devices) {
		r.mu.Unlock()

		return fmt.Errorf("%w: %d", ErrIndexOutOfRange, i)
	}

	r.devices = append(r.devices[:i], r.devices[i+1:]...)

	switch {
	case r.current == i:
		r.current = NoSelection
	case r.current > i:
		r.current--
	}

	r.touch()
	r.mu.Unlock()

	r.notify()

	return nil
}

// Move relocates the device at from to position to.
func (r *Registry) Move(from, to int) error {
	r.mu.Lock()

	n := len(r.devices)
	if from < 0 || from >= n || to < 0 || to >= n {
		r.mu.Unlock()

		return fmt.Errorf("%w: %d -> %d", ErrIndexOutOfRange, from, to)
	}

	if from == to {
		r.mu.Unlock()

		return nil
	}

	var selected *models.Device
	if r.current != NoSelection {
		selected = r.devices[r.current]
	}

	dev := r.devices[from]
	r.devices = append(r.devices[:from], r.devices[from+1:]...)
	r.devices = append(r.devices[:to], append([]*models.Device{dev}, r.devices[to:]...)...)

	if selected != nil {
		for idx, d := range r.devices {
			if d == selected {
				r.current = idx
				break
			}
		}
	}

	r.touch()
	r.mu.Unlock()

	r.notify()

	return nil
}

func (r *Registry) Current() int {
	r.mu.RLock()
	defer r.mu.RUnlock()

	return r.current
}

// SetCurrent selects the device at i, or clears the selection with NoSelection.
func (r *Registry) SetCurrent(i int) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if i != NoSelection && (i < 0 || i >= len(r.devices)) {
		return fmt.Errorf("%w: %d", ErrIndexOutOfRange, i)
	}

	if r.current != i {
		r.current = i
		r.touch()
	}

	return nil
}

// Replace swaps in a complete new list. Nothing is merged with the
// previous contents.
func (r *Registry) Replace(devices []models.Device, current int) {
	r.mu.Lock()

	r.devices = make([]*models.Device, 0, len(devices))
	for i := range devices {
		dev := devices[i]
		dev.HasChanged = false
		dev.InstallState = models.InstallStateNone
		r.devices = append(r.devices, &dev)
	}

	if current < 0 || current >= len(r.devices) {
		current = NoSelection
	}

	r.current = current
	r.touch()
	r.mu.Unlock()

	r.notify()
}

// Clear empties the list.
func (r *Registry) Clear() {
	r.Replace(nil, NoSelection)
}

// HasChanges reports whether anything changed since the last Persist or Restore.
func (r *Registry) HasChanges() bool {
	r.mu.RLock()
	defer r.mu.RUnlock()

	if r.dirty {
		return true
	}

	for _, d := range r.devices {
		if d.HasChanged {
			return true
		}
	}

	return false
}

// Counts returns the number of devices installed on the secondary surface
// and the total number of devices.
func (r *Registry) Counts() (installed, total int) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	for _, d := range r.devices {
		if d.IsInstalled {
			installed++
		}
	}

	return installed, len(r.devices)
}

// Prune removes placeholder records and returns how many were removed.
func (r *Registry) Prune() int {
	r.mu.Lock()
	removed := r.pruneLocked()
	r.mu.Unlock()

	if removed > 0 {
		r.notify()
	}

	return removed
}

func (r *Registry) pruneLocked() int {
	var selected *models.Device
	if r.current >= 0 && r.current < len(r.devices) {
		selected = r.devices[r.current]
	}

	kept := r.devices[:0]

	for _, d := range r.devices {
		if !d.IsPlaceholder() {
			kept = append(kept, d)
		}
	}

	removed := len(r.devices) - len(kept)

	for i := len(kept); i < len(r.devices); i++ {
		r.devices[i] = nil
	}

	r.devices = kept

	if removed == 0 {
		return 0
	}

	r.current = NoSelection

	for idx, d := range r.devices {
		if d == selected {
			r.current = idx
			break
		}
	}

	r.touch()

	return removed
}

// Persist prunes placeholders and writes the list through the store.
func (r *Registry) Persist(ctx context.Context) error {
	r.mu.Lock()

	removed := r.pruneLocked()

	snapshot := &Snapshot{
		Version: snapshotVersion,
		Current: r.current,
		Devices: make([]models.Device, len(r.devices)),
	}

	for i, d := range r.devices {
		snapshot.Devices[i] = *d
	}

	generation := r.generation
	r.mu.Unlock()

	if removed > 0 {
		r.logger.Debug().Int("removed", removed).Msg("Pruned placeholder devices before save")
		r.notify()
	}

	if err := r.store.Save(ctx, snapshot); err != nil {
		r.logger.Error().Err(err).Msg("Device list save failed")

		return fmt.Errorf("failed to save device list: %w", err)
	}

	r.mu.Lock()
	if r.generation == generation {
		r.dirty = false

		for _, d := range r.devices {
			d.HasChanged = false
		}
	}
	r.mu.Unlock()

	r.logger.Info().Int("devices", len(snapshot.Devices)).Msg("Device list saved")

	return nil
}

// Restore loads the saved list. With nothing saved yet the registry is empty
// and no error is returned. A snapshot that cannot be read leaves the
// registry empty and returns the error for the caller to report.
func (r *Registry) Restore(ctx context.Context) error {
	snapshot, err := r.store.Load(ctx)

	switch {
	case errors.Is(err, ErrNoSnapshot):
		r.logger.Info().Msg("No saved device list, starting empty")
		r.reset()

		return nil
	case err != nil:
		r.logger.Error().Err(err).Msg("Device list load failed, starting empty")
		r.reset()

		return fmt.Errorf("failed to load device list: %w", err)
	}

	if err := snapshot.validate(); err != nil {
		r.logger.Error().Err(err).Int("version", snapshot.Version).Msg("Device list load failed, starting empty")
		r.reset()

		return err
	}

	r.Replace(snapshot.Devices, snapshot.Current)

	r.mu.Lock()
	r.dirty = false
	r.mu.Unlock()

	r.logger.Info().Int("devices", len(snapshot.Devices)).Msg("Device list loaded")

	return nil
}

func (r *Registry) reset() {
	r.Replace(nil, NoSelection)

	r.mu.Lock()
	r.dirty = false
	r.mu.Unlock()
}
