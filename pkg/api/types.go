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
package api

import (
	"time"

	"github.com/carverauto/companion/pkg/version"
)

// DeviceView is a registry entry as the front-end sees it.
type DeviceView struct {
	Index          int    `json:"index"`
	Name           string `json:"name"`
	Code           string `json:"code"`
	App            string `json:"app"`
	AppName        string `json:"app_name"`
	IconKey        string `json:"icon_key"`
	WatchSupported bool   `json:"watch_supported"`
	IsInstalled    bool   `json:"is_installed"`
	InstallState   string `json:"install_state"`
	Current        bool   `json:"current"`
}

// DeviceList is the GET /api/devices response.
type DeviceList struct {
	Devices []DeviceView `json:"devices"`
	Current int          `json:"current"`
}

// AddDeviceRequest is the POST /api/devices body.
type AddDeviceRequest struct {
	Name string `json:"name"`
	Code string `json:"code"`
	App  string `json:"app,omitempty"`
}

// EditDeviceRequest is the PUT /api/devices/{index} body. Absent fields are
// left unchanged.
type EditDeviceRequest struct {
	Name        *string `json:"name,omitempty"`
	Code        *string `json:"code,omitempty"`
	App         *string `json:"app,omitempty"`
	IsInstalled *bool   `json:"is_installed,omitempty"`
}

type moveRequest struct {
	To int `json:"to"`
}

type currentRequest struct {
	Index int `json:"index"`
}

type switchRequest struct {
	On bool `json:"on"`
}

type sliderRequest struct {
	Value int `json:"value"`
}

// StatsResponse is the GET /api/stats response.
type StatsResponse struct {
	Installed int `json:"installed"`
	Total     int `json:"total"`
}

// ErrorResponse is the body of every non-2xx response.
type HealthResponse struct {
	Status string       `json:"status"`
	Build  version.Info `json:"build"`
}

type ErrorResponse struct {
	Error  string `json:"error"`
	Status int    `json:"status"`
}

// Event is pushed to /api/events subscribers.
type Event struct {
	Type      string    `json:"type"`
	Timestamp time.Time `json:"timestamp"`
}

const eventRegistryChanged = "registry_changed"
