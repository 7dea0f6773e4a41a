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
	"encoding/json"
	"fmt"
	"math"
	"strconv"
	"strings"
	"sync"

	"github.com/carverauto/companion/pkg/models"
)

// StatusFormat selects how an agent's state body is laid out.
type StatusFormat int

const (
	// FormatJSON is {"isconnected":bool,"slidervalue":number,"switchstate":bool}.
	FormatJSON StatusFormat = iota
	// FormatPositional is a dot-separated string with fixed field offsets.
	FormatPositional
)

const (
	positionalSwitchIndex    = 0
	positionalSliderIndex    = 4
	positionalConnectedIndex = 8
	positionalMinFields      = positionalConnectedIndex + 1
)

// Catalog codes of the built-in app types.
const (
	AppMyFirstApp  = "761DDC8C-E7F5-40D4-87AC-9B06D91A672D"
	AppMySecondApp = "8B6B3A11-00B4-4304-BE27-ABD11DB1B774"
)

func (f StatusFormat) String() string {
	switch f {
	case FormatJSON:
		return "json"
	case FormatPositional:
		return "positional"
	default:
		return "unknown"
	}
}

// ParseStatusFormat accepts "json" or "positional".
func ParseStatusFormat(s string) (StatusFormat, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "json", "":
		return FormatJSON, nil
	case "positional", "legacy":
		return FormatPositional, nil
	default:
		return FormatJSON, fmt.Errorf("%w: %q", errUnknownStatusFormat, s)
	}
}

// Schema describes how to read one app type's state.
type Schema struct {
	Name       string
	StatusPath string
	Format     StatusFormat
}

// DefaultSchema is used for app tags with no registered schema.
var DefaultSchema = Schema{
	Name:       "default",
	StatusPath: "/applewatchexample/state",
	Format:     FormatJSON,
}

// Decode parses a state body according to the schema's format.
func (s Schema) Decode(body []byte) (*models.Status, error) {
	switch s.Format {
	case FormatPositional:
		return decodePositional(body)
	case FormatJSON:
		return decodeJSON(body)
	default:
		return nil, fmt.Errorf("%w: %d", errUnknownStatusFormat, s.Format)
	}
}

func decodePositional(body []byte) (*models.Status, error) {
	fields := strings.Split(strings.TrimSpace(string(body)), ".")
	if len(fields) < positionalMinFields {
		return nil, fmt.Errorf("%w: expected at least %d fields, got %d",
			ErrMalformedResponse, positionalMinFields, len(fields))
	}

	slider, err := strconv.Atoi(fields[positionalSliderIndex])
	if err != nil {
		return nil, fmt.Errorf("%w: slider value %q", ErrMalformedResponse, fields[positionalSliderIndex])
	}

	return &models.Status{
		SwitchOn:    fields[positionalSwitchIndex] == "1",
		SliderValue: slider,
		Connected:   fields[positionalConnectedIndex] == "1",
	}, nil
}

type jsonStatus struct {
	IsConnected *bool    `json:"isconnected"`
	SliderValue *float64 `json:"slidervalue"`
	SwitchState *bool    `json:"switchstate"`
}

func decodeJSON(body []byte) (*models.Status, error) {
	trimmed := bytes.TrimSpace(body)
	if len(trimmed) == 0 || trimmed[0] != '{' {
		return nil, fmt.Errorf("%w: expected a JSON object", ErrMalformedResponse)
	}

	var raw jsonStatus

	if err := json.Unmarshal(trimmed, &raw); err != nil {
		return nil, fmt.Errorf("%w: %w", ErrMalformedResponse, err)
	}

	status := &models.Status{}

	if raw.IsConnected != nil {
		status.Connected = *raw.IsConnected
	}

	if raw.SliderValue != nil {
		status.SliderValue = int(math.Round(*raw.SliderValue))
	}

	if raw.SwitchState != nil {
		status.SwitchOn = *raw.SwitchState
	}

	return status, nil
}

// decodeAppInfo reads {"appcode":"...","watchsupported":"true"|"false"}.
// Booleans are also accepted for watchsupported.
func decodeAppInfo(body []byte) (*models.AppInfo, error) {
	var raw map[string]interface{}

	if err := json.Unmarshal(body, &raw); err != nil {
		return nil, fmt.Errorf("%w: %w", ErrMalformedResponse, err)
	}

	if raw == nil {
		return nil, fmt.Errorf("%w: expected a JSON object", ErrMalformedResponse)
	}

	info := &models.AppInfo{}

	if code, ok := raw["appcode"].(string); ok {
		info.AppCode = code
	}

	switch v := raw["watchsupported"].(type) {
	case string:
		info.WatchSupported = v == "true"
	case bool:
		info.WatchSupported = v
	}

	return info, nil
}

// SchemaRegistry maps device app tags to schemas.
type SchemaRegistry struct {
	mu       sync.RWMutex
	schemas  map[string]Schema
	fallback Schema
}

// NewSchemaRegistry creates a registry that answers fallback for unknown tags.
func NewSchemaRegistry(fallback Schema) *SchemaRegistry {
	return &SchemaRegistry{
		schemas:  make(map[string]Schema),
		fallback: fallback,
	}
}

// DefaultSchemas returns a registry preloaded with the built-in app types.
func DefaultSchemas() *SchemaRegistry {
	r := NewSchemaRegistry(DefaultSchema)

	r.Register(AppMyFirstApp, Schema{
		Name:       "MyFirstApp",
		StatusPath: "/controller/state",
		Format:     FormatPositional,
	})

	r.Register(AppMySecondApp, Schema{
		Name:       "MySecondApp",
		StatusPath: "/applewatchexample/state",
		Format:     FormatJSON,
	})

	return r
}

// Register adds or replaces the schema for an app tag.
func (r *SchemaRegistry) Register(app string, schema Schema) {
	r.mu.Lock()
	defer r.mu.Unlock()

	r.schemas[app] = schema
}

// Lookup returns the schema for app, or the fallback.
func (r *SchemaRegistry) Lookup(app string) Schema {
	r.mu.RLock()
	defer r.mu.RUnlock()

	if s, ok := r.schemas[app]; ok {
		return s
	}

	return r.fallback
}
