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

import "errors"

var (
	// ErrMalformedPayload means a sync payload could not be parsed. The
	// registry is left untouched.
	ErrMalformedPayload = errors.New("malformed sync payload")

	errUnknownKind       = errors.New("unknown payload kind")
	errTransportClosed   = errors.New("transport closed")
	errNatsURLRequired   = errors.New("nats url is required")
	errNilRegistry       = errors.New("registry is required")
	errNilTransport      = errors.New("transport is required")
	errSubscriptionEnded = errors.New("sync subscription ended")
)
