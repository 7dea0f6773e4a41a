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
	"bytes"
	"context"
	"encoding/json"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/carverauto/companion/pkg/api"
	"github.com/carverauto/companion/pkg/logger"
	"github.com/carverauto/companion/pkg/models"
	"github.com/carverauto/companion/pkg/registry"
)

func TestParseFlags(t *testing.T) {
	t.Setenv("COMPANION_SERVER", "")
	t.Setenv("COMPANION_API_KEY", "")

	tests := []struct {
		name    string
		args    []string
		wantErr error
		check   func(t *testing.T, cfg *CmdConfig)
	}{
		{
			name: "list with globals",
			args: []string{"-server", "http://phone:9000/", "-api-key", "k", "-output", "json", "list"},
			check: func(t *testing.T, cfg *CmdConfig) {
				t.Helper()
				assert.Equal(t, "list", cfg.SubCmd)
				assert.Equal(t, "http://phone:9000", cfg.Server)
				assert.Equal(t, "k", cfg.APIKey)
				assert.Equal(t, outputJSON, cfg.Output)
			},
		},
		{
			name: "default server",
			args: []string{"stats"},
			check: func(t *testing.T, cfg *CmdConfig) {
				t.Helper()
				assert.Equal(t, defaultServer, cfg.Server)
			},
		},
		{
			name: "add",
			args: []string{"add", "-name", "Kitchen", "-code", "abc123", "-app", "X1"},
			check: func(t *testing.T, cfg *CmdConfig) {
				t.Helper()
				assert.Equal(t, "Kitchen", cfg.Name)
				assert.Equal(t, "abc123", cfg.Code)
				assert.Equal(t, "X1", cfg.App)
			},
		},
		{name: "add without code", args: []string{"add", "-name", "Kitchen"}, wantErr: errCodeRequired},
		{
			name: "edit only given flags",
			args: []string{"edit", "2", "-name", "Den", "-installed"},
			check: func(t *testing.T, cfg *CmdConfig) {
				t.Helper()
				assert.Equal(t, 2, cfg.Index)
				assert.ElementsMatch(t, []string{"name", "installed"}, cfg.Fields)
				assert.True(t, cfg.On)
			},
		},
		{
			name: "move",
			args: []string{"mv", "3", "0"},
			check: func(t *testing.T, cfg *CmdConfig) {
				t.Helper()
				assert.Equal(t, 3, cfg.Index)
				assert.Equal(t, 0, cfg.To)
			},
		},
		{
			name: "select none",
			args: []string{"select", "none"},
			check: func(t *testing.T, cfg *CmdConfig) {
				t.Helper()
				assert.Equal(t, registry.NoSelection, cfg.Index)
			},
		},
		{
			name: "switch off",
			args: []string{"switch", "1", "off"},
			check: func(t *testing.T, cfg *CmdConfig) {
				t.Helper()
				assert.Equal(t, 1, cfg.Index)
				assert.False(t, cfg.On)
			},
		},
		{name: "switch bad state", args: []string{"switch", "1", "dim"}, wantErr: errInvalidArgument},
		{
			name: "slider",
			args: []string{"slider", "0", "75"},
			check: func(t *testing.T, cfg *CmdConfig) {
				t.Helper()
				assert.Equal(t, 75, cfg.Value)
			},
		},
		{name: "slider bad value", args: []string{"slider", "0", "high"}, wantErr: errInvalidArgument},
		{name: "negative index", args: []string{"status", "-1"}, wantErr: errInvalidArgument},
		{name: "status needs index", args: []string{"status"}, wantErr: errMissingArgument},
		{name: "list takes nothing", args: []string{"list", "extra"}, wantErr: errInvalidArgument},
		{
			name: "export legacy",
			args: []string{"export", "-file", "/tmp/devices.json", "-legacy"},
			check: func(t *testing.T, cfg *CmdConfig) {
				t.Helper()
				assert.Equal(t, "/tmp/devices.json", cfg.File)
				assert.True(t, cfg.Legacy)
			},
		},
		{
			name: "apply stdin",
			args: []string{"apply", "-"},
			check: func(t *testing.T, cfg *CmdConfig) {
				t.Helper()
				assert.Equal(t, registry.DefaultFileName, cfg.File)
				assert.Equal(t, "-", cfg.Payload)
			},
		},
		{name: "apply needs payload", args: []string{"apply"}, wantErr: errMissingArgument},
		{name: "no command", args: nil, wantErr: errMissingCommand},
		{name: "unknown command", args: []string{"reboot"}, wantErr: errUnknownCommand},
		{name: "bad output", args: []string{"-output", "yaml", "list"}, wantErr: errInvalidOutput},
		{
			name: "version",
			args: []string{"-version"},
			check: func(t *testing.T, cfg *CmdConfig) {
				t.Helper()
				assert.True(t, cfg.Version)
			},
		},
		{
			name: "help",
			args: []string{"-help"},
			check: func(t *testing.T, cfg *CmdConfig) {
				t.Helper()
				assert.True(t, cfg.Help)
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg, err := ParseFlags(tt.args)
			if tt.wantErr != nil {
				require.ErrorIs(t, err, tt.wantErr)

				return
			}

			require.NoError(t, err)
			tt.check(t, cfg)
		})
	}
}

func newTestAPI(t *testing.T, apiKey string) (*registry.Registry, *httptest.Server) {
	t.Helper()

	reg := registry.New(registry.NewFileStore(filepath.Join(t.TempDir(), "devices.json")), logger.NewTestLogger())

	s, err := api.NewAPIServer(models.CORSConfig{AllowedOrigins: []string{"*"}},
		api.WithRegistry(reg), api.WithAPIKey(apiKey), api.WithLogger(logger.NewTestLogger()))
	require.NoError(t, err)

	srv := httptest.NewServer(s.Handler())
	t.Cleanup(srv.Close)

	return reg, srv
}

func run(t *testing.T, args ...string) (string, error) {
	t.Helper()

	cfg, err := ParseFlags(args)
	require.NoError(t, err)

	var out bytes.Buffer

	err = Run(context.Background(), cfg, strings.NewReader(""), &out)

	return out.String(), err
}

func TestRunRemoteCommands(t *testing.T) {
	reg, srv := newTestAPI(t, "secret")

	out, err := run(t, "-server", srv.URL, "-api-key", "secret", "-output", "json",
		"add", "-name", "Kitchen", "-code", "abc123", "-app", "761DDC8C-E7F5-40D4-87AC-9B06D91A672D")
	require.NoError(t, err)

	var view api.DeviceView
	require.NoError(t, json.Unmarshal([]byte(out), &view))
	assert.Equal(t, "MyFirstApp", view.AppName)

	_, err = run(t, "-server", srv.URL, "-api-key", "secret", "add", "-name", "Den", "-code", "def456", "-app", "X2")
	require.NoError(t, err)

	out, err = run(t, "-server", srv.URL, "-api-key", "secret", "-output", "json", "mv", "1", "0")
	require.NoError(t, err)

	var list api.DeviceList
	require.NoError(t, json.Unmarshal([]byte(out), &list))
	require.Len(t, list.Devices, 2)
	assert.Equal(t, "Den", list.Devices[0].Name)

	_, err = run(t, "-server", srv.URL, "-api-key", "secret", "edit", "0", "-installed")
	require.NoError(t, err)

	out, err = run(t, "-server", srv.URL, "-api-key", "secret", "-output", "json", "stats")
	require.NoError(t, err)
	assert.JSONEq(t, `{"installed":1,"total":2}`, out)

	out, err = run(t, "-server", srv.URL, "-api-key", "secret", "list")
	require.NoError(t, err)
	assert.Contains(t, out, "Kitchen")
	assert.Contains(t, out, "NAME")

	_, err = run(t, "-server", srv.URL, "-api-key", "secret", "rm", "0")
	require.NoError(t, err)
	assert.Equal(t, 1, reg.Len())
}

func TestRunEditBlankingAllFields(t *testing.T) {
	reg, srv := newTestAPI(t, "")
	reg.Add(models.Device{Name: "Kitchen", Code: "abc123", App: "X1"})
	reg.Add(models.Device{Name: "Hall", Code: "def456", App: "X1"})

	out, err := run(t, "-server", srv.URL, "-output", "json", "edit", "0", "-name", "", "-code", "", "-app", "")
	require.NoError(t, err)
	assert.JSONEq(t, `{"removed":0}`, out)

	require.Equal(t, 1, reg.Len())

	d, err := reg.Get(0)
	require.NoError(t, err)
	assert.Equal(t, "Hall", d.Name)
}

func TestRunRemoteErrors(t *testing.T) {
	_, srv := newTestAPI(t, "secret")

	_, err := run(t, "-server", srv.URL, "list")
	require.ErrorIs(t, err, errRequestFailed)
	assert.Contains(t, err.Error(), "401")

	_, err = run(t, "-server", srv.URL, "-api-key", "secret", "rm", "7")
	require.ErrorIs(t, err, errRequestFailed)
	assert.Contains(t, err.Error(), "out of range")

	_, err = run(t, "-server", srv.URL, "-api-key", "secret", "push")
	require.ErrorIs(t, err, errRequestFailed)
	assert.Contains(t, err.Error(), "503")
}

func TestExportApply(t *testing.T) {
	ctx := context.Background()
	dir := t.TempDir()

	src := filepath.Join(dir, "phone.json")
	reg := registry.New(registry.NewFileStore(src), logger.NewTestLogger())
	reg.Add(models.Device{Name: "Kitchen", Code: "abc123", App: "X1"})
	reg.Add(models.Device{Name: "Den", Code: "def456"})
	require.NoError(t, reg.Persist(ctx))

	legacy, err := run(t, "export", "-file", src, "-legacy")
	require.NoError(t, err)
	assert.Equal(t, "Kitchen\nabc123\nX1\n\nDen\ndef456\n\n\n", legacy)

	payloadPath := filepath.Join(dir, "payload.txt")
	require.NoError(t, os.WriteFile(payloadPath, []byte(legacy), 0o600))

	dst := filepath.Join(dir, "watch.json")

	_, err = run(t, "apply", "-file", dst, payloadPath)
	require.NoError(t, err)

	watch := registry.New(registry.NewFileStore(dst), logger.NewTestLogger())
	require.NoError(t, watch.Restore(ctx))
	require.Equal(t, 2, watch.Len())

	d, err := watch.Get(1)
	require.NoError(t, err)
	assert.Equal(t, "Den", d.Name)
	assert.Empty(t, d.App)

	cfg, err := ParseFlags([]string{"apply", "-file", dst, "-"})
	require.NoError(t, err)

	var out bytes.Buffer

	require.NoError(t, Run(ctx, cfg, strings.NewReader("clear\n"), &out))
	require.NoError(t, watch.Restore(ctx))
	assert.Equal(t, 0, watch.Len())
}

func TestApplyMalformed(t *testing.T) {
	dst := filepath.Join(t.TempDir(), "watch.json")

	cfg, err := ParseFlags([]string{"apply", "-file", dst, "-"})
	require.NoError(t, err)

	err = Run(context.Background(), cfg, strings.NewReader("Kitchen\nabc123"), &bytes.Buffer{})
	require.Error(t, err)

	_, statErr := os.Stat(dst)
	assert.True(t, os.IsNotExist(statErr), "nothing saved")
}

func TestApplyRejectsOversizedPayload(t *testing.T) {
	dst := filepath.Join(t.TempDir(), "watch.json")

	cfg, err := ParseFlags([]string{"apply", "-file", dst, "-"})
	require.NoError(t, err)

	payload := strings.Repeat("Kitchen\nabc123\nX1\n\n", maxPayloadBytes/18+1)
	require.Greater(t, len(payload), maxPayloadBytes)

	err = Run(context.Background(), cfg, strings.NewReader(payload), &bytes.Buffer{})
	require.ErrorIs(t, err, errPayloadTooLarge)

	_, statErr := os.Stat(dst)
	assert.True(t, os.IsNotExist(statErr), "nothing saved")
}

func TestShowHelp(t *testing.T) {
	var buf bytes.Buffer

	ShowHelp(&buf)
	assert.Contains(t, buf.String(), "companion [options] <command>")
}
