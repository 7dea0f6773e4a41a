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

// Status is the decoded state reported by a device agent.
type Status struct {
	Connected   bool `json:"connected"`
	SliderValue int  `json:"slider_value"`
	SwitchOn    bool `json:"switch_on"`
}

// AppInfo is what an agent reports about the app it is running.
type AppInfo struct {
	AppCode        string `json:"appcode"`
	WatchSupported bool   `json:"watchsupported"`
}
