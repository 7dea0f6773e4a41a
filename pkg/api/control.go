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
	"net/http"

	"github.com/carverauto/companion/pkg/models"
)

// controllable resolves the device and checks that it can be reached.
func (s *APIServer) controllable(w http.ResponseWriter, r *http.Request) (int, models.Device, bool) {
	if s.agent == nil {
		s.fail(w, r, errAgentDisabled)

		return 0, models.Device{}, false
	}

	i, d, ok := s.device(w, r)
	if !ok {
		return 0, models.Device{}, false
	}

	if !d.IsConfigured() {
		s.fail(w, r, errDeviceNotReady)

		return 0, models.Device{}, false
	}

	return i, d, true
}

func (s *APIServer) getStatus(w http.ResponseWriter, r *http.Request) {
	_, d, ok := s.controllable(w, r)
	if !ok {
		return
	}

	status, err := s.agent.GetStatus(r.Context(), d)
	if err != nil {
		s.fail(w, r, err)

		return
	}

	writeJSON(w, http.StatusOK, status)
}

func (s *APIServer) setSwitch(w http.ResponseWriter, r *http.Request) {
	_, d, ok := s.controllable(w, r)
	if !ok {
		return
	}

	var req switchRequest

	if err := decodeBody(r, &req); err != nil {
		s.fail(w, r, err)

		return
	}

	if err := s.agent.SetSwitch(r.Context(), d, req.On); err != nil {
		s.fail(w, r, err)

		return
	}

	w.WriteHeader(http.StatusNoContent)
}

func (s *APIServer) setSlider(w http.ResponseWriter, r *http.Request) {
	_, d, ok := s.controllable(w, r)
	if !ok {
		return
	}

	var req sliderRequest

	if err := decodeBody(r, &req); err != nil {
		s.fail(w, r, err)

		return
	}

	if err := s.agent.SetSlider(r.Context(), d, req.Value); err != nil {
		s.fail(w, r, err)

		return
	}

	w.WriteHeader(http.StatusNoContent)
}

func (s *APIServer) requestUpdate(w http.ResponseWriter, r *http.Request) {
	_, d, ok := s.controllable(w, r)
	if !ok {
		return
	}

	if err := s.agent.RequestUpdate(r.Context(), d); err != nil {
		s.fail(w, r, err)

		return
	}

	w.WriteHeader(http.StatusNoContent)
}

func (s *APIServer) resetSettings(w http.ResponseWriter, r *http.Request) {
	_, d, ok := s.controllable(w, r)
	if !ok {
		return
	}

	status, err := s.agent.ResetSettings(r.Context(), d)
	if err != nil {
		s.fail(w, r, err)

		return
	}

	writeJSON(w, http.StatusOK, status)
}

func (s *APIServer) probeDevice(w http.ResponseWriter, r *http.Request) {
	i, d, ok := s.controllable(w, r)
	if !ok {
		return
	}

	info, err := s.agent.FetchAppInfo(r.Context(), d.Code)
	if err != nil {
		s.fail(w, r, err)

		return
	}

	err = s.registry.Update(i, func(dev *models.Device) {
		dev.SetApp(info.AppCode)
		dev.SetWatchSupported(info.WatchSupported)
	})
	if err != nil {
		s.fail(w, r, err)

		return
	}

	s.persist(r.Context())
	s.getDevice(w, r)
}

func (s *APIServer) listSessions(w http.ResponseWriter, r *http.Request) {
	if s.agent == nil {
		s.fail(w, r, errAgentDisabled)

		return
	}

	writeJSON(w, http.StatusOK, s.agent.OpenSessions())
}
