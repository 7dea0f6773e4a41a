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
package sync

import (
	"bytes"
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"
)

// Envelope wraps a payload with its sender so a surface can drop its own
// messages when the transport echoes them back.
type Envelope struct {
	Origin  string          `json:"origin"`
	ID      string          `json:"id"`
	SentAt  time.Time       `json:"sent_at"`
	Payload json.RawMessage `json:"payload"`
}

// newEnvelope wraps payload. Delimited text travels as a JSON string.
func newEnvelope(origin string, payload []byte, text bool, now time.Time) ([]byte, error) {
	raw := json.RawMessage(payload)

	if text {
		quoted, err := json.Marshal(string(payload))
		if err != nil {
			return nil, fmt.Errorf("failed to encode sync envelope: %w", err)
		}

		raw = quoted
	}

	data, err := json.Marshal(Envelope{
		Origin:  origin,
		ID:      uuid.NewString(),
		SentAt:  now.UTC(),
		Payload: raw,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to encode sync envelope: %w", err)
	}

	return data, nil
}

// openEnvelope splits a transport message into its envelope and the payload
// bytes. Messages that are not envelopes are treated as a bare payload from
// an unknown origin.
func openEnvelope(data []byte) (Envelope, []byte) {
	trimmed := bytes.TrimSpace(data)
	if len(trimmed) == 0 || trimmed[0] != '{' {
		return Envelope{}, data
	}

	var env Envelope

	if err := json.Unmarshal(trimmed, &env); err != nil || len(env.Payload) == 0 {
		return Envelope{}, data
	}

	if env.Payload[0] == '"' {
		var s string

		if err := json.Unmarshal(env.Payload, &s); err == nil {
			return env, []byte(s)
		}
	}

	return env, env.Payload
}
