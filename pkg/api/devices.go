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
package api

import (
	"context"
	"net/http"

	"github.com/carverauto/companion/pkg/catalog"
	"github.com/carverauto/companion/pkg/models"
)

func (s *APIServer) view(i int, d models.Device, current int) DeviceView {
	return DeviceView{
		Index:          i,
		Name:           d.Name,
		Code:           d.Code,
		App:            d.App,
		AppName:        s.catalog.Name(d.App),
		IconKey:        s.catalog.IconKey(d.App),
		WatchSupported: d.WatchSupported,
		IsInstalled:    d.IsInstalled,
		InstallState:   d.InstallState.String(),
		Current:        i == current,
	}
}

func (s *APIServer) listDevices(w http.ResponseWriter, _ *http.Request) {
	devices := s.registry.Devices()
	current := s.registry.Current()

	out := DeviceList{Devices: make([]DeviceView, len(devices)), Current: current}
	for i, d := range devices {
		out.Devices[i] = s.view(i, d, current)
	}

	writeJSON(w, http.StatusOK, out)
}

func (s *APIServer) getDevice(w http.ResponseWriter, r *http.Request) {
	i, d, ok := s.device(w, r)
	if !ok {
		return
	}

	writeJSON(w, http.StatusOK, s.view(i, d, s.registry.Current()))
}

// device resolves the {index} route variable, writing the error response
// itself when it cannot.
func (s *APIServer) device(w http.ResponseWriter, r *http.Request) (int, models.Device, bool) {
	i, err := indexVar(r)
	if err != nil {
		s.fail(w, r, err)

		return 0, models.Device{}, false
	}

	d, err := s.registry.Get(i)
	if err != nil {
		s.fail(w, r, err)

		return 0, models.Device{}, false
	}

	return i, d, true
}

func (s *APIServer) addDevice(w http.ResponseWriter, r *http.Request) {
	var req AddDeviceRequest

	if err := decodeBody(r, &req); err != nil {
		s.fail(w, r, err)

		return
	}

	if req.Code == "" {
		s.fail(w, r, errCodeRequired)

		return
	}

	d := models.NewDevice()
	d.Name = req.Name
	d.Code = req.Code
	d.App = req.App

	if s.catalog.Name(d.App) == catalog.Unknown {
		s.probeInto(r.Context(), d)
	}

	i := s.registry.Add(*d)
	s.persist(r.Context())

	writeJSON(w, http.StatusCreated, s.view(i, *d, s.registry.Current()))
}

// probeInto asks the agent which app it runs. Failures leave d unchanged.
func (s *APIServer) probeInto(ctx context.Context, d *models.Device) {
	if s.agent == nil {
		return
	}

	info, err := s.agent.FetchAppInfo(ctx, d.Code)
	if err != nil {
		s.logger.Info().Err(err).Str("device_code", d.Code).Msg("Could not identify device app")

		return
	}

	d.SetApp(info.AppCode)
	d.SetWatchSupported(info.WatchSupported)
}

func (s *APIServer) editDevice(w http.ResponseWriter, r *http.Request) {
	i, err := indexVar(r)
	if err != nil {
		s.fail(w, r, err)

		return
	}

	var req EditDeviceRequest

	if err = decodeBody(r, &req); err != nil {
		s.fail(w, r, err)

		return
	}

	var edited models.Device

	err = s.registry.Update(i, func(d *models.Device) {
		defer func() { edited = *d }()

		if req.Name != nil {
			d.SetName(*req.Name)
		}

		if req.Code != nil {
			d.SetCode(*req.Code)
		}

		if req.App != nil {
			d.SetApp(*req.App)
		}

		if req.IsInstalled != nil {
			d.SetInstalled(*req.IsInstalled)
		}
	})
	if err != nil {
		s.fail(w, r, err)

		return
	}

	current := s.registry.Current()
	s.persist(r.Context())

	// a blanked record is pruned on save, so {index} now names another device
	if edited.IsPlaceholder() {
		w.WriteHeader(http.StatusNoContent)

		return
	}

	writeJSON(w, http.StatusOK, s.view(i, edited, current))
}

func (s *APIServer) removeDevice(w http.ResponseWriter, r *http.Request) {
	i, err := indexVar(r)
	if err != nil {
		s.fail(w, r, err)

		return
	}

	if err = s.registry.Remove(i); err != nil {
		s.fail(w, r, err)

		return
	}

	s.persist(r.Context())

	w.WriteHeader(http.StatusNoContent)
}

func (s *APIServer) moveDevice(w http.ResponseWriter, r *http.Request) {
	from, err := indexVar(r)
	if err != nil {
		s.fail(w, r, err)

		return
	}

	var req moveRequest

	if err = decodeBody(r, &req); err != nil {
		s.fail(w, r, err)

		return
	}

	if err = s.registry.Move(from, req.To); err != nil {
		s.fail(w, r, err)

		return
	}

	s.persist(r.Context())
	s.listDevices(w, r)
}

func (s *APIServer) setCurrent(w http.ResponseWriter, r *http.Request) {
	var req currentRequest

	if err := decodeBody(r, &req); err != nil {
		s.fail(w, r, err)

		return
	}

	if err := s.registry.SetCurrent(req.Index); err != nil {
		s.fail(w, r, err)

		return
	}

	s.persist(r.Context())
	s.listDevices(w, r)
}

func (s *APIServer) getStats(w http.ResponseWriter, _ *http.Request) {
	installed, total := s.registry.Counts()

	writeJSON(w, http.StatusOK, StatsResponse{Installed: installed, Total: total})
}

func (s *APIServer) getCatalog(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, s.catalog.Entries())
}

func (s *APIServer) pushSync(w http.ResponseWriter, r *http.Request) {
	if s.pusher == nil {
		s.fail(w, r, errSyncDisabled)

		return
	}

	s.persist(r.Context())

	if err := s.pusher.Push(r.Context()); err != nil {
		s.fail(w, r, err)

		return
	}

	writeJSON(w, http.StatusAccepted, map[string]int{"devices": s.registry.Len()})
}
