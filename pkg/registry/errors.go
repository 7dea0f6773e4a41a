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
package registry

import "errors"

var (
	// ErrNoSnapshot is returned by a Store that has nothing saved yet.
	ErrNoSnapshot = errors.New("no saved registry snapshot")
	// ErrIndexOutOfRange is returned for a device index outside the list.
	ErrIndexOutOfRange = errors.New("device index out of range")

	errUnsupportedSnapshot = errors.New("unsupported snapshot version")
	errCorruptSnapshot     = errors.New("corrupt registry snapshot")
)
