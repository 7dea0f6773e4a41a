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
	"strings"

	"github.com/carverauto/companion/pkg/models"
	"github.com/carverauto/companion/pkg/registry"
)

const (
	clearSentinel   = "clear"
	legacyRecordSep = "\n\n"
	legacyFieldSep  = "\n"
	legacyFields    = 3
)

// Kind says what a payload asks the receiving registry to do.
type Kind int

const (
	KindNoop Kind = iota
	KindClear
	KindReplace
)

func (k Kind) String() string {
	switch k {
	case KindNoop:
		return "noop"
	case KindClear:
		return "clear"
	case KindReplace:
		return "replace"
	default:
		return "unknown"
	}
}

func (k Kind) MarshalText() ([]byte, error) {
	switch k {
	case KindNoop, KindClear, KindReplace:
		return []byte(k.String()), nil
	default:
		return nil, fmt.Errorf("%w: %d", errUnknownKind, k)
	}
}

func (k *Kind) UnmarshalText(text []byte) error {
	switch string(text) {
	case "noop":
		*k = KindNoop
	case "clear":
		*k = KindClear
	case "replace":
		*k = KindReplace
	default:
		return fmt.Errorf("%w: %q", errUnknownKind, text)
	}

	return nil
}

// Record is the part of a device that crosses surfaces.
type Record struct {
	Name string `json:"name"`
	Code string `json:"code"`
	App  string `json:"app"`
}

// Payload is one full-list sync message.
type Payload struct {
	Kind    Kind     `json:"kind"`
	Current int      `json:"current"`
	Devices []Record `json:"devices,omitempty"`
}

// Export captures the registry as a payload. An empty registry exports a
// clear so the other surface empties its list too.
func Export(reg *registry.Registry) Payload {
	devices := reg.Devices()
	if len(devices) == 0 {
		return Payload{Kind: KindClear, Current: registry.NoSelection}
	}

	records := make([]Record, len(devices))
	for i, d := range devices {
		records[i] = Record{Name: d.Name, Code: d.Code, App: d.App}
	}

	return Payload{Kind: KindReplace, Current: reg.Current(), Devices: records}
}

// Encode renders p as JSON.
func Encode(p Payload) ([]byte, error) {
	data, err := json.Marshal(p)
	if err != nil {
		return nil, fmt.Errorf("failed to encode sync payload: %w", err)
	}

	return data, nil
}

// EncodeLegacy renders p in the delimited text format older peers read:
// name, code and app on separate lines, each record followed by a blank line.
func EncodeLegacy(p Payload) []byte {
	switch p.Kind {
	case KindClear:
		return []byte(clearSentinel)
	case KindReplace:
		if len(p.Devices) == 0 {
			return []byte(clearSentinel)
		}

		var b strings.Builder

		for _, r := range p.Devices {
			b.WriteString(r.Name)
			b.WriteString(legacyFieldSep)
			b.WriteString(r.Code)
			b.WriteString(legacyFieldSep)
			b.WriteString(r.App)
			b.WriteString(legacyRecordSep)
		}

		return []byte(b.String())
	case KindNoop:
		return nil
	default:
		return nil
	}
}

// Decode parses either encoding. Empty input is a no-op, the literal "clear"
// empties the list even with trailing whitespace, a leading '{' selects JSON,
// anything else is the delimited text format.
func Decode(data []byte) (Payload, error) {
	if len(data) == 0 {
		return Payload{Kind: KindNoop, Current: registry.NoSelection}, nil
	}

	if strings.TrimRight(string(data), " \t\r\n") == clearSentinel {
		return Payload{Kind: KindClear, Current: registry.NoSelection}, nil
	}

	if bytes.HasPrefix(bytes.TrimLeft(data, " \t\r\n"), []byte("{")) {
		return decodeJSON(data)
	}

	return decodeLegacy(string(data))
}

func decodeJSON(data []byte) (Payload, error) {
	var p Payload

	if err := json.Unmarshal(data, &p); err != nil {
		return Payload{}, fmt.Errorf("%w: %w", ErrMalformedPayload, err)
	}

	if p.Kind == KindReplace && len(p.Devices) == 0 {
		p.Kind = KindClear
	}

	if p.Kind != KindReplace {
		p.Devices = nil
		p.Current = registry.NoSelection
	}

	return p, nil
}

// decodeLegacy reads records as groups of name, code and app lines closed by
// a blank line. Any field may be empty. An incomplete group after the last
// separator is ignored.
func decodeLegacy(s string) (Payload, error) {
	lines := strings.Split(s, legacyFieldSep)

	// the final element is whatever follows the last newline, never a whole line
	complete := lines[:len(lines)-1]
	records := make([]Record, 0, len(complete)/(legacyFields+1))

	for i := 0; i+legacyFields < len(complete); i += legacyFields + 1 {
		if sep := complete[i+legacyFields]; sep != "" {
			return Payload{}, fmt.Errorf("%w: record %d is not followed by a blank line", ErrMalformedPayload, len(records))
		}

		records = append(records, Record{Name: complete[i], Code: complete[i+1], App: complete[i+2]})
	}

	if len(records) == 0 {
		return Payload{}, fmt.Errorf("%w: no complete record", ErrMalformedPayload)
	}

	return Payload{Kind: KindReplace, Current: registry.NoSelection, Devices: records}, nil
}

// devices converts the payload records into registry entries.
func (p Payload) devices() []models.Device {
	out := make([]models.Device, len(p.Devices))

	for i, r := range p.Devices {
		d := models.NewDevice()
		d.Name = r.Name
		d.Code = r.Code
		d.App = r.App
		out[i] = *d
	}

	return out
}

// ApplyTo makes reg match p without saving it. A no-op payload leaves reg
// untouched.
func (p Payload) ApplyTo(reg *registry.Registry) error {
	switch p.Kind {
	case KindNoop:
	case KindClear:
		reg.Clear()
	case KindReplace:
		reg.Replace(p.devices(), p.Current)
	default:
		return fmt.Errorf("%w: %d", errUnknownKind, p.Kind)
	}

	return nil
}
