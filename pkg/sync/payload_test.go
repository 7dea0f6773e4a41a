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
	"encoding/json"
	"testing"

	"github.com/carverauto/companion/pkg/registry"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDecode(t *testing.T) {
	tests := []struct {
		name    string
		input   string
		want    Payload
		wantErr error
	}{
		{
			name:  "empty is a no-op",
			input: "",
			want:  Payload{Kind: KindNoop, Current: registry.NoSelection},
		},
		{
			name:  "clear sentinel",
			input: "clear",
			want:  Payload{Kind: KindClear, Current: registry.NoSelection},
		},
		{
			name:  "clear sentinel with trailing newline",
			input: "clear\n",
			want:  Payload{Kind: KindClear, Current: registry.NoSelection},
		},
		{
			name:  "json replace",
			input: `{"kind":"replace","current":1,"devices":[{"name":"Kitchen","code":"abc123","app":"X1"},{"name":"Porch","code":"def456","app":"X2"}]}`,
			want: Payload{Kind: KindReplace, Current: 1, Devices: []Record{
				{Name: "Kitchen", Code: "abc123", App: "X1"},
				{Name: "Porch", Code: "def456", App: "X2"},
			}},
		},
		{
			name:  "json replace without devices is a clear",
			input: `{"kind":"replace","current":0}`,
			want:  Payload{Kind: KindClear, Current: registry.NoSelection},
		},
		{
			name:  "json clear",
			input: `{"kind":"clear"}`,
			want:  Payload{Kind: KindClear, Current: registry.NoSelection},
		},
		{
			name:  "legacy records in order",
			input: "Kitchen\nabc123\nX1\n\nPorch\ndef456\nX2\n\n",
			want: Payload{Kind: KindReplace, Current: registry.NoSelection, Devices: []Record{
				{Name: "Kitchen", Code: "abc123", App: "X1"},
				{Name: "Porch", Code: "def456", App: "X2"},
			}},
		},
		{
			name:  "legacy ignores text after the last separator",
			input: "Kitchen\nabc123\nX1\n\ntrailing",
			want: Payload{Kind: KindReplace, Current: registry.NoSelection, Devices: []Record{
				{Name: "Kitchen", Code: "abc123", App: "X1"},
			}},
		},
		{
			name:  "legacy records with empty fields",
			input: "Kitchen\nabc123\n\n\nHall\n\nX1\n\n",
			want: Payload{Kind: KindReplace, Current: registry.NoSelection, Devices: []Record{
				{Name: "Kitchen", Code: "abc123", App: ""},
				{Name: "Hall", Code: "", App: "X1"},
			}},
		},
		{
			name:  "legacy ignores an incomplete trailing record",
			input: "Kitchen\nabc123\nX1\n\nHall\ndef456\n",
			want: Payload{Kind: KindReplace, Current: registry.NoSelection, Devices: []Record{
				{Name: "Kitchen", Code: "abc123", App: "X1"},
			}},
		},
		{
			name:    "legacy record without blank line",
			input:   "Kitchen\nabc123\nX1\nextra\n\n",
			wantErr: ErrMalformedPayload,
		},
		{
			name:    "legacy record with too few fields",
			input:   "Kitchen\nabc123\n\n",
			wantErr: ErrMalformedPayload,
		},
		{
			name:    "legacy without separator",
			input:   "Kitchen\nabc123\nX1",
			wantErr: ErrMalformedPayload,
		},
		{
			name:    "invalid json",
			input:   `{"kind":"replace",`,
			wantErr: ErrMalformedPayload,
		},
		{
			name:    "unknown kind",
			input:   `{"kind":"merge"}`,
			wantErr: ErrMalformedPayload,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := Decode([]byte(tt.input))
			if tt.wantErr != nil {
				require.ErrorIs(t, err, tt.wantErr)

				return
			}

			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestEncodeLegacyRoundTrip(t *testing.T) {
	p := Payload{Kind: KindReplace, Current: registry.NoSelection, Devices: []Record{
		{Name: "Kitchen", Code: "abc123", App: "X1"},
		{Name: "", Code: "def456", App: "X2"},
		{Name: "Porch", Code: "ghi789", App: ""},
		{Name: "Hall", Code: "", App: "X1"},
	}}

	data := EncodeLegacy(p)
	assert.Equal(t, "Kitchen\nabc123\nX1\n\n\ndef456\nX2\n\nPorch\nghi789\n\n\nHall\n\nX1\n\n", string(data))

	got, err := Decode(data)
	require.NoError(t, err)
	assert.Equal(t, p, got)

	assert.Equal(t, "clear", string(EncodeLegacy(Payload{Kind: KindClear})))
	assert.Empty(t, EncodeLegacy(Payload{Kind: KindNoop}))
}

func TestEncodeJSON(t *testing.T) {
	data, err := Encode(Payload{Kind: KindReplace, Current: 0, Devices: []Record{{Name: "Kitchen", Code: "abc123", App: "X1"}}})
	require.NoError(t, err)

	var raw map[string]interface{}
	require.NoError(t, json.Unmarshal(data, &raw))
	assert.Equal(t, "replace", raw["kind"])

	_, err = Encode(Payload{Kind: Kind(42)})
	require.Error(t, err)
}

func TestExport(t *testing.T) {
	reg := newTestRegistry(t)

	assert.Equal(t, Payload{Kind: KindClear, Current: registry.NoSelection}, Export(reg))

	reg.Add(testDevice("Kitchen", "abc123", "X1"))
	reg.Add(testDevice("Porch", "def456", "X2"))
	require.NoError(t, reg.SetCurrent(1))

	assert.Equal(t, Payload{Kind: KindReplace, Current: 1, Devices: []Record{
		{Name: "Kitchen", Code: "abc123", App: "X1"},
		{Name: "Porch", Code: "def456", App: "X2"},
	}}, Export(reg))
}
