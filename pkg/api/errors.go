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
	"encoding/json"
	"errors"
	"net/http"

	"github.com/carverauto/companion/pkg/agent"
	"github.com/carverauto/companion/pkg/registry"
)

var (
	errInvalidIndex   = errors.New("device index must be an integer")
	errInvalidBody    = errors.New("invalid request body")
	errCodeRequired   = errors.New("code is required")
	errSyncDisabled   = errors.New("sync is not configured")
	errAgentDisabled  = errors.New("agent client is not configured")
	errNoRegistry     = errors.New("registry is required")
	errDeviceNotReady = errors.New("device has no agent code")
)

// statusForError maps domain errors to HTTP status codes.
func statusForError(err error) int {
	switch {
	case errors.Is(err, registry.ErrIndexOutOfRange):
		return http.StatusNotFound
	case errors.Is(err, errInvalidIndex), errors.Is(err, errInvalidBody), errors.Is(err, errCodeRequired),
		errors.Is(err, agent.ErrInvalidEndpoint), errors.Is(err, errDeviceNotReady):
		return http.StatusBadRequest
	case errors.Is(err, agent.ErrEndpointRelocating), errors.Is(err, errSyncDisabled), errors.Is(err, errAgentDisabled):
		return http.StatusServiceUnavailable
	case errors.Is(err, agent.ErrConnectionFailed), errors.Is(err, agent.ErrHTTPStatus),
		errors.Is(err, agent.ErrMalformedResponse):
		return http.StatusBadGateway
	default:
		return http.StatusInternalServerError
	}
}

func writeError(w http.ResponseWriter, message string, statusCode int) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(statusCode)

	if err := json.NewEncoder(w).Encode(ErrorResponse{Error: message, Status: statusCode}); err != nil {
		http.Error(w, "Failed to encode error response", http.StatusInternalServerError)
	}
}
