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

// Package version reports the build version of the companion binaries.
package version

// Set with -ldflags "-X github.com/carverauto/companion/pkg/version.version=..."
//
//nolint:gochecknoglobals // These are intentionally global for ldflags injection
var (
	version = "dev"
	buildID = "dev"
)

// Info is the build identity served by the health endpoint.
type Info struct {
	Version string `json:"version"`
	BuildID string `json:"build_id"`
}

// Get returns the build identity.
func Get() Info {
	return Info{Version: version, BuildID: buildID}
}

// String returns version with build ID
func (i Info) String() string {
	return i.Version + " (build: " + i.BuildID + ")"
}

// UserAgent names component in outgoing HTTP requests.
func UserAgent(component string) string {
	return "companion-" + component + "/" + version
}
