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
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/mock/gomock"

	"github.com/carverauto/companion/pkg/models"
)

var errConnectionRefused = errors.New("connection refused")

type trackingBody struct {
	r      io.Reader
	reads  int
	closed bool
}

func (b *trackingBody) Read(p []byte) (int, error) {
	b.reads++

	return b.r.Read(p)
}

func (b *trackingBody) Close() error {
	b.closed = true

	return nil
}

func testDevice(app string) models.Device {
	return models.Device{Name: "Kitchen", Code: "abc123", App: app}
}

func TestConnect_GetStatusJSON(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	mockHTTP := NewMockHTTPClient(ctrl)
	client := NewClient("https://agent.example.com", WithHTTPClient(mockHTTP))

	mockHTTP.EXPECT().Do(gomock.Any()).DoAndReturn(func(req *http.Request) (*http.Response, error) {
		assert.Equal(t, http.MethodGet, req.Method)
		assert.Equal(t, "https://agent.example.com/abc123/applewatchexample/state", req.URL.String())

		return &http.Response{
			StatusCode: http.StatusOK,
			Body:       io.NopCloser(strings.NewReader(`{"isconnected": true, "slidervalue": 7, "switchstate": false}`)),
		}, nil
	})

	out := client.Connect(context.Background(), testDevice(AppMySecondApp), Request{Action: ActionGetStatus})

	require.NoError(t, out.Err)
	assert.Equal(t, http.StatusOK, out.StatusCode)
	assert.Equal(t, &models.Status{Connected: true, SliderValue: 7, SwitchOn: false}, out.Status)
	assert.Empty(t, client.OpenSessions())
}

func TestConnect_NotFoundCancelsWithoutDecoding(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	mockHTTP := NewMockHTTPClient(ctrl)
	listener := NewMockSessionListener(ctrl)
	client := NewClient("https://agent.example.com", WithHTTPClient(mockHTTP), WithListener(listener))

	body := &trackingBody{r: strings.NewReader(`{"isconnected": true, "slidervalue": 7, "switchstate": true}`)}

	var reqCtx context.Context

	mockHTTP.EXPECT().Do(gomock.Any()).DoAndReturn(func(req *http.Request) (*http.Response, error) {
		reqCtx = req.Context()

		return &http.Response{StatusCode: http.StatusNotFound, Body: body}, nil
	})

	listener.EXPECT().SessionStarted(gomock.Any())
	listener.EXPECT().SessionEnded(gomock.Any(), gomock.Any()).Do(func(s Session, err error) {
		assert.Equal(t, http.StatusNotFound, s.StatusCode)
		assert.Zero(t, s.Received)
		require.ErrorIs(t, err, ErrEndpointRelocating)
	})

	out := client.Connect(context.Background(), testDevice(AppMySecondApp), Request{Action: ActionGetStatus})

	require.ErrorIs(t, out.Err, ErrEndpointRelocating)
	require.ErrorIs(t, out.Err, ErrHTTPStatus)
	assert.Nil(t, out.Status)
	assert.Zero(t, body.reads, "404 body must not be read")
	assert.True(t, body.closed)
	require.Error(t, reqCtx.Err(), "request context must be canceled")
	assert.Empty(t, client.OpenSessions())
}

func TestConnect_TransportFailure(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	mockHTTP := NewMockHTTPClient(ctrl)
	listener := NewMockSessionListener(ctrl)
	client := NewClient("https://agent.example.com", WithHTTPClient(mockHTTP), WithListener(listener))

	mockHTTP.EXPECT().Do(gomock.Any()).Return(nil, errConnectionRefused)

	var started Session

	listener.EXPECT().SessionStarted(gomock.Any()).Do(func(s Session) {
		started = s
		assert.Len(t, client.OpenSessions(), 1)
	})
	listener.EXPECT().SessionEnded(gomock.Any(), gomock.Any()).Do(func(s Session, err error) {
		assert.Equal(t, started.ID, s.ID)
		require.ErrorIs(t, err, ErrConnectionFailed)
	})

	out := client.Connect(context.Background(), testDevice(AppMySecondApp), Request{Action: ActionGetStatus})

	require.ErrorIs(t, out.Err, ErrConnectionFailed)
	require.ErrorIs(t, out.Err, errConnectionRefused)
	assert.Equal(t, started.ID, out.SessionID)
	assert.Empty(t, client.OpenSessions())
}

func TestConnect_ErrorStatus(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	mockHTTP := NewMockHTTPClient(ctrl)
	client := NewClient("https://agent.example.com", WithHTTPClient(mockHTTP))

	mockHTTP.EXPECT().Do(gomock.Any()).Return(&http.Response{
		StatusCode: http.StatusInternalServerError,
		Body:       io.NopCloser(strings.NewReader("boom\n")),
	}, nil)

	out := client.Connect(context.Background(), testDevice(AppMySecondApp), Request{Action: ActionGetStatus})

	var httpErr *HTTPError

	require.ErrorAs(t, out.Err, &httpErr)
	assert.Equal(t, http.StatusInternalServerError, httpErr.StatusCode)
	assert.Equal(t, "boom", httpErr.Body)
	require.ErrorIs(t, out.Err, ErrHTTPStatus)
	assert.NotErrorIs(t, out.Err, ErrEndpointRelocating)
	assert.Nil(t, out.Status)
}

func TestConnect_MalformedStatus(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	mockHTTP := NewMockHTTPClient(ctrl)
	client := NewClient("https://agent.example.com", WithHTTPClient(mockHTTP))

	mockHTTP.EXPECT().Do(gomock.Any()).Return(&http.Response{
		StatusCode: http.StatusOK,
		Body:       io.NopCloser(strings.NewReader("1.0.0")),
	}, nil)

	status, err := client.GetStatus(context.Background(), testDevice(AppMyFirstApp))

	require.ErrorIs(t, err, ErrMalformedResponse)
	assert.Nil(t, status)
}

func TestConnect_InvalidEndpoint(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	tests := []struct {
		name    string
		baseURL string
		code    string
	}{
		{name: "empty code", baseURL: "https://agent.example.com", code: ""},
		{name: "code with slash", baseURL: "https://agent.example.com", code: "abc/123"},
		{name: "code with space", baseURL: "https://agent.example.com", code: "abc 123"},
		{name: "base without scheme", baseURL: "agent.example.com", code: "abc123"},
		{name: "unparseable base", baseURL: "://agent", code: "abc123"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			// no Do expectation: any request fails the test
			client := NewClient(tt.baseURL, WithHTTPClient(NewMockHTTPClient(ctrl)))

			out := client.Connect(context.Background(), models.Device{Code: tt.code}, Request{Action: ActionGetStatus})

			require.ErrorIs(t, out.Err, ErrInvalidEndpoint)
			assert.Empty(t, client.OpenSessions())
		})
	}
}

func TestCommandBodies(t *testing.T) {
	var (
		mu     sync.Mutex
		bodies []map[string]string
	)

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPost, r.Method)
		assert.Equal(t, "/abc123/actions", r.URL.Path)
		assert.Equal(t, "application/json", r.Header.Get("Content-Type"))
		assert.Equal(t, "companion-agent/dev", r.Header.Get("User-Agent"))

		var body map[string]string

		assert.NoError(t, json.NewDecoder(r.Body).Decode(&body))

		mu.Lock()
		bodies = append(bodies, body)
		mu.Unlock()

		w.WriteHeader(http.StatusOK)
	}))
	defer srv.Close()

	client := NewClient(srv.URL, WithTimeout(5*time.Second))
	ctx := context.Background()
	dev := testDevice(AppMySecondApp)

	require.NoError(t, client.SetSwitch(ctx, dev, true))
	require.NoError(t, client.SetSwitch(ctx, dev, false))
	require.NoError(t, client.SetSlider(ctx, dev, 42))
	require.NoError(t, client.RequestUpdate(ctx, dev))

	assert.Equal(t, []map[string]string{
		{"action": "state", "value": "on"},
		{"action": "state", "value": "off"},
		{"action": "slider", "value": "42"},
		{"action": "update"},
	}, bodies)
}

func TestResetSettings_OneFollowUp(t *testing.T) {
	var resets, statuses atomic.Int32

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Path {
		case "/abc123/actions":
			var body map[string]string

			assert.NoError(t, json.NewDecoder(r.Body).Decode(&body))
			assert.Equal(t, map[string]string{"action": "reset"}, body)
			resets.Add(1)
		case "/abc123/controller/state":
			statuses.Add(1)
			_, _ = io.WriteString(w, "0.0.0.0.50.0.0.0.1")
		default:
			w.WriteHeader(http.StatusNotFound)
		}
	}))
	defer srv.Close()

	client := NewClient(srv.URL)

	status, err := client.ResetSettings(context.Background(), testDevice(AppMyFirstApp))

	require.NoError(t, err)
	assert.Equal(t, &models.Status{SwitchOn: false, SliderValue: 50, Connected: true}, status)
	assert.Equal(t, int32(1), resets.Load())
	assert.Equal(t, int32(1), statuses.Load())
}

func TestResetSettings_FailureSkipsFollowUp(t *testing.T) {
	var hits atomic.Int32

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		hits.Add(1)
		w.WriteHeader(http.StatusBadGateway)
	}))
	defer srv.Close()

	client := NewClient(srv.URL)

	out := client.Connect(context.Background(), testDevice(AppMySecondApp), Request{
		Action: ActionResetSettings,
		Body:   map[string]string{"action": "reset"},
	})

	require.ErrorIs(t, out.Err, ErrHTTPStatus)
	assert.Nil(t, out.FollowUp)
	assert.Equal(t, int32(1), hits.Load())
}

func TestFetchAppInfo(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/abc123/applewatchexample/appinfo", r.URL.Path)
		_, _ = io.WriteString(w, `{"appcode":"8B6B3A11-00B4-4304-BE27-ABD11DB1B774","watchsupported":"true"}`)
	}))
	defer srv.Close()

	client := NewClient(srv.URL)

	info, err := client.FetchAppInfo(context.Background(), "abc123")

	require.NoError(t, err)
	assert.Equal(t, &models.AppInfo{AppCode: AppMySecondApp, WatchSupported: true}, info)
}

func TestConnect_OneSessionPerDevice(t *testing.T) {
	var inflight, maxInflight, served atomic.Int32

	arrived := make(chan struct{}, 2)
	release := make(chan struct{})

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		n := inflight.Add(1)
		for {
			m := maxInflight.Load()
			if n <= m || maxInflight.CompareAndSwap(m, n) {
				break
			}
		}

		arrived <- struct{}{}
		<-release

		served.Add(1)
		inflight.Add(-1)

		_, _ = io.WriteString(w, `{"switchstate": true}`)
	}))
	defer srv.Close()

	client := NewClient(srv.URL)
	dev := testDevice(AppMySecondApp)

	var wg sync.WaitGroup

	for range 2 {
		wg.Add(1)

		go func() {
			defer wg.Done()

			_, err := client.GetStatus(context.Background(), dev)
			assert.NoError(t, err)
		}()
	}

	<-arrived
	assert.Len(t, client.OpenSessions(), 1)

	close(release)
	wg.Wait()

	assert.Equal(t, int32(1), maxInflight.Load())
	assert.Equal(t, int32(2), served.Load())
}

func TestConnect_QueuedCallHonorsContext(t *testing.T) {
	release := make(chan struct{})
	arrived := make(chan struct{})

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		close(arrived)
		<-release
		w.WriteHeader(http.StatusOK)
	}))
	defer srv.Close()

	client := NewClient(srv.URL)
	dev := testDevice(AppMySecondApp)

	done := make(chan error, 1)

	go func() {
		done <- client.RequestUpdate(context.Background(), dev)
	}()

	<-arrived

	ctx, cancel := context.WithTimeout(context.Background(), 20*time.Millisecond)
	defer cancel()

	err := client.RequestUpdate(ctx, dev)
	require.ErrorIs(t, err, ErrConnectionFailed)
	require.ErrorIs(t, err, context.DeadlineExceeded)

	close(release)
	require.NoError(t, <-done)
}

func TestIsTransient(t *testing.T) {
	assert.True(t, IsTransient(&HTTPError{StatusCode: http.StatusNotFound}))
	assert.True(t, IsTransient(ErrConnectionFailed))
	assert.False(t, IsTransient(&HTTPError{StatusCode: http.StatusInternalServerError}))
	assert.False(t, IsTransient(ErrMalformedResponse))
}
