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
package models

// InstallState tracks an in-flight install or removal of a device on the
// secondary surface.
type InstallState int

const (
	InstallStateRemoving   InstallState = 0
	InstallStateInstalling InstallState = 1
	InstallStateNone       InstallState = -1
)

// String returns the state name used in logs and API responses.
func (s InstallState) String() string {
	switch s {
	case InstallStateInstalling:
		return "installing"
	case InstallStateRemoving:
		return "removing"
	case InstallStateNone:
		return "none"
	default:
		return "unknown"
	}
}

// Device describes one registered remote device.
type Device struct {
	Name           string       `json:"name"`
	Code           string       `json:"code"`
	App            string       `json:"app"`
	WatchSupported bool         `json:"watch_supported"`
	IsInstalled    bool         `json:"is_installed"`
	InstallState   InstallState `json:"-"`
	HasChanged     bool         `json:"-"`
}

// NewDevice returns an empty, unconfigured device slot.
func NewDevice() *Device {
	return &Device{InstallState: InstallStateNone}
}

// IsPlaceholder reports whether all identity fields are empty. Placeholders
// are left over from editing and are never persisted.
func (d *Device) IsPlaceholder() bool {
	return d.Name == "" && d.Code == "" && d.App == ""
}

// IsConfigured reports whether the device has an agent code.
func (d *Device) IsConfigured() bool {
	return d.Code != ""
}

func (d *Device) SetName(name string) {
	if d.Name != name {
		d.Name = name
		d.HasChanged = true
	}
}

func (d *Device) SetCode(code string) {
	if d.Code != code {
		d.Code = code
		d.HasChanged = true
	}
}

func (d *Device) SetApp(app string) {
	if d.App != app {
		d.App = app
		d.HasChanged = true
	}
}

func (d *Device) SetWatchSupported(supported bool) {
	if d.WatchSupported != supported {
		d.WatchSupported = supported
		d.HasChanged = true
	}
}

func (d *Device) SetInstalled(installed bool) {
	if d.IsInstalled != installed {
		d.IsInstalled = installed
		d.HasChanged = true
	}
}

// Equal compares the persisted fields of two devices.
func (d *Device) Equal(other *Device) bool {
	if d == nil || other == nil {
		return d == other
	}

	return d.Name == other.Name &&
		d.Code == other.Code &&
		d.App == other.App &&
		d.WatchSupported == other.WatchSupported &&
		d.IsInstalled == other.IsInstalled
}
