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
	"context"
	"fmt"
	"io"
	"net/http"

	"github.com/carverauto/companion/pkg/agent"
	"github.com/carverauto/companion/pkg/api"
	"github.com/carverauto/companion/pkg/models"
)

// Run executes the parsed command. Results go to out; stdin feeds
// "apply -".
func Run(ctx context.Context, cfg *CmdConfig, stdin io.Reader, out io.Writer) error {
	p := newPrinter(out, cfg.Output)

	switch cfg.SubCmd {
	case "export":
		return runExport(ctx, cfg, out)
	case "apply":
		return runApply(ctx, cfg, stdin, p)
	}

	return runRemote(ctx, cfg, newAPIClient(cfg), p)
}

func runRemote(ctx context.Context, cfg *CmdConfig, c *apiClient, p *printer) error {
	switch cfg.SubCmd {
	case "list":
		var list api.DeviceList
		if err := c.do(ctx, http.MethodGet, "/api/devices", nil, &list); err != nil {
			return err
		}

		return p.devices(&list)
	case "add":
		var d api.DeviceView

		req := api.AddDeviceRequest{Name: cfg.Name, Code: cfg.Code, App: cfg.App}
		if err := c.do(ctx, http.MethodPost, "/api/devices", req, &d); err != nil {
			return err
		}

		return p.success(fmt.Sprintf("Added %q at index %d (%s)", d.Name, d.Index, d.AppName), d)
	case "edit":
		var d api.DeviceView
		if err := c.do(ctx, http.MethodPut, devicePath(cfg.Index, ""), editRequest(cfg), &d); err != nil {
			return err
		}

		// no body: every field was blanked and the server dropped the device
		if d == (api.DeviceView{}) {
			return p.success(fmt.Sprintf("Removed device %d", cfg.Index), map[string]int{"removed": cfg.Index})
		}

		return p.device(&d)
	case "rm":
		if err := c.do(ctx, http.MethodDelete, devicePath(cfg.Index, ""), nil, nil); err != nil {
			return err
		}

		return p.success(fmt.Sprintf("Removed device %d", cfg.Index), map[string]int{"removed": cfg.Index})
	case "mv":
		return listResult(ctx, c, p, http.MethodPost, devicePath(cfg.Index, "move"), map[string]int{"to": cfg.To})
	case "select":
		return listResult(ctx, c, p, http.MethodPut, "/api/current", map[string]int{"index": cfg.Index})
	case "status", "reset":
		var s models.Status

		method := http.MethodGet
		if cfg.SubCmd == "reset" {
			method = http.MethodPost
		}

		if err := c.do(ctx, method, devicePath(cfg.Index, cfg.SubCmd), nil, &s); err != nil {
			return err
		}

		return p.status(&s)
	case "switch":
		if err := c.do(ctx, http.MethodPost, devicePath(cfg.Index, "switch"), map[string]bool{"on": cfg.On}, nil); err != nil {
			return err
		}

		return p.success(fmt.Sprintf("Switch set %s", onOff(cfg.On)), map[string]bool{"on": cfg.On})
	case "slider":
		if err := c.do(ctx, http.MethodPost, devicePath(cfg.Index, "slider"), map[string]int{"value": cfg.Value}, nil); err != nil {
			return err
		}

		return p.success(fmt.Sprintf("Slider set to %d", cfg.Value), map[string]int{"value": cfg.Value})
	case "update":
		if err := c.do(ctx, http.MethodPost, devicePath(cfg.Index, "update"), nil, nil); err != nil {
			return err
		}

		return p.success("Update requested", map[string]bool{"requested": true})
	case "probe":
		var d api.DeviceView
		if err := c.do(ctx, http.MethodPost, devicePath(cfg.Index, "probe"), nil, &d); err != nil {
			return err
		}

		return p.device(&d)
	case "push":
		var res map[string]int
		if err := c.do(ctx, http.MethodPost, "/api/sync/push", nil, &res); err != nil {
			return err
		}

		return p.success(fmt.Sprintf("Pushed %d devices", res["devices"]), res)
	case "sessions":
		var sessions []agent.Session
		if err := c.do(ctx, http.MethodGet, "/api/sessions", nil, &sessions); err != nil {
			return err
		}

		return p.sessions(sessions)
	case "stats":
		var s api.StatsResponse
		if err := c.do(ctx, http.MethodGet, "/api/stats", nil, &s); err != nil {
			return err
		}

		return p.stats(&s)
	default:
		return fmt.Errorf("%w: %s", errUnknownCommand, cfg.SubCmd)
	}
}

func listResult(ctx context.Context, c *apiClient, p *printer, method, path string, body interface{}) error {
	var list api.DeviceList
	if err := c.do(ctx, method, path, body, &list); err != nil {
		return err
	}

	return p.devices(&list)
}

func editRequest(cfg *CmdConfig) api.EditDeviceRequest {
	var req api.EditDeviceRequest

	for _, f := range cfg.Fields {
		switch f {
		case "name":
			req.Name = &cfg.Name
		case "code":
			req.Code = &cfg.Code
		case "app":
			req.App = &cfg.App
		case "installed":
			req.IsInstalled = &cfg.On
		}
	}

	return req
}

func onOff(on bool) string {
	if on {
		return "on"
	}

	return "off"
}
