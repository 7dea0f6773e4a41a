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

import (
	"encoding/json"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDeviceSettersMarkChanged(t *testing.T) {
	d := NewDevice()
	assert.Equal(t, InstallStateNone, d.InstallState)
	assert.True(t, d.IsPlaceholder())

	d.SetName("")
	assert.False(t, d.HasChanged, "setting an identical value must not dirty the record")

	d.SetName("Kitchen")
	assert.True(t, d.HasChanged)
	assert.False(t, d.IsPlaceholder())
	assert.False(t, d.IsConfigured())

	d.HasChanged = false
	d.SetCode("abc123")
	assert.True(t, d.HasChanged)
	assert.True(t, d.IsConfigured())

	d.HasChanged = false
	d.SetWatchSupported(true)
	d.SetInstalled(true)
	d.SetApp("X1")
	assert.True(t, d.HasChanged)
}

func TestDeviceEqualIgnoresTransientFields(t *testing.T) {
	a := &Device{Name: "Kitchen", Code: "abc123", App: "X1", HasChanged: true, InstallState: InstallStateInstalling}
	b := &Device{Name: "Kitchen", Code: "abc123", App: "X1"}

	assert.True(t, a.Equal(b))

	b.WatchSupported = true
	assert.False(t, a.Equal(b))

	var nilDevice *Device
	assert.False(t, a.Equal(nilDevice))
	assert.True(t, nilDevice.Equal(nil))
}

func TestDeviceJSONOmitsTransientFields(t *testing.T) {
	d := &Device{Name: "n", Code: "c", App: "a", HasChanged: true, InstallState: InstallStateRemoving}

	data, err := json.Marshal(d)
	require.NoError(t, err)
	assert.JSONEq(t, `{"name":"n","code":"c","app":"a","watch_supported":false,"is_installed":false}`, string(data))
}

func TestInstallStateString(t *testing.T) {
	assert.Equal(t, "installing", InstallStateInstalling.String())
	assert.Equal(t, "removing", InstallStateRemoving.String())
	assert.Equal(t, "none", InstallStateNone.String())
	assert.Equal(t, "unknown", InstallState(7).String())
}

func TestDurationUnmarshal(t *testing.T) {
	var d Duration

	require.NoError(t, json.Unmarshal([]byte(`"60s"`), &d))
	assert.Equal(t, 60*time.Second, time.Duration(d))

	require.NoError(t, json.Unmarshal([]byte(`1000000000`), &d))
	assert.Equal(t, time.Second, time.Duration(d))

	require.Error(t, json.Unmarshal([]byte(`"soon"`), &d))
	require.ErrorIs(t, json.Unmarshal([]byte(`true`), &d), errInvalidDuration)

	out, err := json.Marshal(Duration(90 * time.Second))
	require.NoError(t, err)
	assert.Equal(t, `"1m30s"`, string(out))
}
