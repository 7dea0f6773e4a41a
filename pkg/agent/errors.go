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
package agent

import (
	"errors"
	"fmt"
	"net/http"
)

var (
	// ErrInvalidEndpoint means the composed agent URL is malformed.
	ErrInvalidEndpoint = errors.New("invalid agent endpoint")
	// ErrRequestConstruction means the request or its body could not be built.
	ErrRequestConstruction = errors.New("request construction failed")
	// ErrConnectionFailed wraps transport failures: DNS, refused, timeout.
	ErrConnectionFailed = errors.New("could not connect to the agent")
	// ErrHTTPStatus matches any *HTTPError.
	ErrHTTPStatus = errors.New("agent returned an error status")
	// ErrEndpointRelocating matches a 404 from the agent, which the cloud
	// returns while an agent is moving between servers.
	ErrEndpointRelocating = errors.New("agent endpoint is relocating")
	// ErrMalformedResponse means the body did not match the device's schema.
	ErrMalformedResponse = errors.New("malformed agent response")

	errUnknownStatusFormat = errors.New("unknown status format")
)

// HTTPError is returned when the agent answers with a status of 400 or more.
type HTTPError struct {
	StatusCode int
	Body       string
}

func (e *HTTPError) Error() string {
	if e.Body == "" {
		return fmt.Sprintf("%s: %d %s", ErrHTTPStatus, e.StatusCode, http.StatusText(e.StatusCode))
	}

	return fmt.Sprintf("%s: %d %s: %s", ErrHTTPStatus, e.StatusCode, http.StatusText(e.StatusCode), e.Body)
}

func (e *HTTPError) Is(target error) bool {
	switch target {
	case ErrHTTPStatus:
		return true
	case ErrEndpointRelocating:
		return e.StatusCode == http.StatusNotFound
	default:
		return false
	}
}
