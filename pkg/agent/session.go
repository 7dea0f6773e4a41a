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
	"bytes"
	"context"
	"sync"
	"time"

	"github.com/google/uuid"
)

// Action tags what a request was for, so completion can trigger follow-ups.
type Action int

const (
	ActionOther Action = iota
	ActionGetStatus
	ActionResetSettings
	ActionGetAppInfo
)

func (a Action) String() string {
	switch a {
	case ActionOther:
		return "other"
	case ActionGetStatus:
		return "get_status"
	case ActionResetSettings:
		return "reset_settings"
	case ActionGetAppInfo:
		return "get_app_info"
	default:
		return "unknown"
	}
}

// Session describes one in-flight exchange with an agent.
type Session struct {
	ID         uuid.UUID `json:"id"`
	DeviceCode string    `json:"device_code"`
	Action     Action    `json:"-"`
	ActionName string    `json:"action"`
	Method     string    `json:"method"`
	URL        string    `json:"url"`
	StatusCode int       `json:"status_code,omitempty"`
	Received   int       `json:"received"`
	StartedAt  time.Time `json:"started_at"`
}

// session is the mutable state behind a Session.
type session struct {
	mu     sync.Mutex
	info   Session
	buf    bytes.Buffer
	cancel context.CancelFunc
}

func (s *session) snapshot() Session {
	s.mu.Lock()
	defer s.mu.Unlock()

	info := s.info
	info.Received = s.buf.Len()

	return info
}

func (s *session) setStatusCode(code int) {
	s.mu.Lock()
	s.info.StatusCode = code
	s.mu.Unlock()
}

func (s *session) body() []byte {
	s.mu.Lock()
	defer s.mu.Unlock()

	return append([]byte(nil), s.buf.Bytes()...)
}

// Write accumulates response bytes as they arrive.
func (s *session) Write(p []byte) (int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	return s.buf.Write(p)
}
