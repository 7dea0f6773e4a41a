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
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/carverauto/companion/pkg/models"
)

func TestSchemaDecode(t *testing.T) {
	positional := Schema{Name: "MyFirstApp", StatusPath: "/controller/state", Format: FormatPositional}
	jsonSchema := DefaultSchema

	tests := []struct {
		name    string
		schema  Schema
		body    string
		want    *models.Status
		wantErr error
	}{
		{
			name:   "positional offsets",
			schema: positional,
			body:   "1.0.0.0.42.0.0.0.1",
			want:   &models.Status{SwitchOn: true, SliderValue: 42, Connected: true},
		},
		{
			name:   "positional off and disconnected with trailing newline",
			schema: positional,
			body:   "0.9.9.9.3.9.9.9.0.extra\n",
			want:   &models.Status{SwitchOn: false, SliderValue: 3, Connected: false},
		},
		{
			name:    "positional too few fields",
			schema:  positional,
			body:    "1.0.0.0.42",
			wantErr: ErrMalformedResponse,
		},
		{
			name:    "positional non-integer slider",
			schema:  positional,
			body:    "1.0.0.0.x.0.0.0.1",
			wantErr: ErrMalformedResponse,
		},
		{
			name:   "json all fields",
			schema: jsonSchema,
			body:   `{"isconnected": true, "slidervalue": 7, "switchstate": false}`,
			want:   &models.Status{Connected: true, SliderValue: 7, SwitchOn: false},
		},
		{
			name:   "json fractional slider rounds",
			schema: jsonSchema,
			body:   `{"slidervalue": 6.6, "switchstate": true}`,
			want:   &models.Status{SliderValue: 7, SwitchOn: true},
		},
		{
			name:   "json missing fields keep zero values",
			schema: jsonSchema,
			body:   `{}`,
			want:   &models.Status{},
		},
		{
			name:    "json invalid",
			schema:  jsonSchema,
			body:    `{"isconnected": tru`,
			wantErr: ErrMalformedResponse,
		},
		{
			name:    "json null",
			schema:  jsonSchema,
			body:    `null`,
			wantErr: ErrMalformedResponse,
		},
		{
			name:    "json wrong field type",
			schema:  jsonSchema,
			body:    `{"isconnected": "yes"}`,
			wantErr: ErrMalformedResponse,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := tt.schema.Decode([]byte(tt.body))
			if tt.wantErr != nil {
				require.ErrorIs(t, err, tt.wantErr)
				assert.Nil(t, got)

				return
			}

			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestDecodeAppInfo(t *testing.T) {
	info, err := decodeAppInfo([]byte(`{"appcode":"8B6B3A11-00B4-4304-BE27-ABD11DB1B774","watchsupported":"true"}`))
	require.NoError(t, err)
	assert.Equal(t, AppMySecondApp, info.AppCode)
	assert.True(t, info.WatchSupported)

	info, err = decodeAppInfo([]byte(`{"appcode":"x","watchsupported":false}`))
	require.NoError(t, err)
	assert.False(t, info.WatchSupported)

	_, err = decodeAppInfo([]byte(`null`))
	require.ErrorIs(t, err, ErrMalformedResponse)

	_, err = decodeAppInfo([]byte(`not json`))
	require.ErrorIs(t, err, ErrMalformedResponse)
}

func TestSchemaRegistryLookup(t *testing.T) {
	r := DefaultSchemas()

	assert.Equal(t, FormatPositional, r.Lookup(AppMyFirstApp).Format)
	assert.Equal(t, "/controller/state", r.Lookup(AppMyFirstApp).StatusPath)
	assert.Equal(t, FormatJSON, r.Lookup(AppMySecondApp).Format)
	assert.Equal(t, DefaultSchema, r.Lookup("no-such-app"))

	custom := Schema{Name: "custom", StatusPath: "/custom/state", Format: FormatPositional}
	r.Register("custom-app", custom)
	assert.Equal(t, custom, r.Lookup("custom-app"))
}

func TestParseStatusFormat(t *testing.T) {
	f, err := ParseStatusFormat("Positional")
	require.NoError(t, err)
	assert.Equal(t, FormatPositional, f)

	f, err = ParseStatusFormat("")
	require.NoError(t, err)
	assert.Equal(t, FormatJSON, f)

	_, err = ParseStatusFormat("xml")
	require.ErrorIs(t, err, errUnknownStatusFormat)
}
