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

package cli

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/carverauto/companion/pkg/api"
)

const (
	requestTimeout = 90 * time.Second
	maxErrorBody   = 1 << 12
)

// apiClient calls the companiond HTTP API.
type apiClient struct {
	server string
	apiKey string
	http   *http.Client
}

func newAPIClient(cfg *CmdConfig) *apiClient {
	return &apiClient{
		server: cfg.Server,
		apiKey: cfg.APIKey,
		http:   &http.Client{Timeout: requestTimeout},
	}
}

// do sends body as JSON and decodes a JSON response into out when out is
// not nil. Error responses come back wrapped in errRequestFailed.
func (c *apiClient) do(ctx context.Context, method, path string, body, out interface{}) error {
	var reader io.Reader = http.NoBody

	if body != nil {
		data, err := json.Marshal(body)
		if err != nil {
			return fmt.Errorf("encoding request: %w", err)
		}

		reader = bytes.NewReader(data)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.server+path, reader)
	if err != nil {
		return fmt.Errorf("creating request: %w", err)
	}

	req.Header.Set("Accept", "application/json")

	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	if c.apiKey != "" {
		req.Header.Set("X-API-Key", c.apiKey)
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return fmt.Errorf("%w: %w", errRequestFailed, err)
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode >= http.StatusBadRequest {
		return responseError(resp)
	}

	if out == nil || resp.StatusCode == http.StatusNoContent {
		return nil
	}

	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("decoding response: %w", err)
	}

	return nil
}

func responseError(resp *http.Response) error {
	data, _ := io.ReadAll(io.LimitReader(resp.Body, maxErrorBody))

	var apiErr api.ErrorResponse
	if json.Unmarshal(data, &apiErr) == nil && apiErr.Error != "" {
		return fmt.Errorf("%w: %s (%d)", errRequestFailed, apiErr.Error, resp.StatusCode)
	}

	return fmt.Errorf("%w: %s (%d)", errRequestFailed, bytes.TrimSpace(data), resp.StatusCode)
}

func devicePath(i int, action string) string {
	if action == "" {
		return fmt.Sprintf("/api/devices/%d", i)
	}

	return fmt.Sprintf("/api/devices/%d/%s", i, action)
}
