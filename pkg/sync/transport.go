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
	"strings"
)

const (
	subjectPrefix = "companion.sync."
	kvKeyPrefix   = "sync/"
	defaultUser   = "default"
)

// SubjectFor returns the NATS subject both surfaces of user share.
func SubjectFor(user string) string {
	return subjectPrefix + sanitizeToken(user)
}

// KeyFor returns the KV key both surfaces of user share.
func KeyFor(user string) string {
	return kvKeyPrefix + sanitizeToken(user)
}

// sanitizeToken maps user to a single NATS subject token that is also a
// valid JetStream KV key segment.
func sanitizeToken(user string) string {
	user = strings.TrimSpace(user)
	if user == "" {
		return defaultUser
	}

	return strings.Map(func(r rune) rune {
		switch {
		case r >= 'a' && r <= 'z', r >= 'A' && r <= 'Z', r >= '0' && r <= '9', r == '-', r == '_':
			return r
		default:
			return '_'
		}
	}, user)
}
