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
	"github.com/charmbracelet/lipgloss"
)

// CmdConfig holds parsed command-line configuration.
type CmdConfig struct {
	Help    bool
	Version bool
	Debug   bool
	SubCmd  string
	Server  string
	APIKey  string
	Output  string
	Fields  []string
	Index   int
	To      int
	Name    string
	Code    string
	App     string
	On      bool
	Value   int
	Legacy  bool
	File    string
	Payload string
}

// logStyles defines styles for logging messages
type logStyles struct {
	info, success, warning, error lipgloss.Style
}

// tableStyles defines styles for rendered device tables.
type tableStyles struct {
	header, cell, current, border lipgloss.Style
}
