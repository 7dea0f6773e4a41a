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
	"net/url"
	"strings"
	"sync"
	"time"

	"github.com/gorilla/websocket"

	"github.com/carverauto/companion/pkg/logger"
)

const (
	eventBuffer      = 8
	eventWriteWait   = 10 * time.Second
	eventPongWait    = 60 * time.Second
	eventPingPeriod  = (eventPongWait * 9) / 10
	eventReadLimit   = 512
	eventBufferBytes = 1024
)

type eventClient struct {
	conn *websocket.Conn
	send chan Event
}

// eventHub fans registry change notifications out to websocket clients. A
// client that falls behind loses events rather than blocking the registry.
type eventHub struct {
	mu      sync.Mutex
	clients map[*eventClient]struct{}
	logger  logger.Logger
}

func newEventHub(log logger.Logger) *eventHub {
	return &eventHub{
		clients: make(map[*eventClient]struct{}),
		logger:  log,
	}
}

func (h *eventHub) add(c *eventClient) {
	h.mu.Lock()
	h.clients[c] = struct{}{}
	h.mu.Unlock()
}

func (h *eventHub) remove(c *eventClient) {
	h.mu.Lock()
	defer h.mu.Unlock()

	if _, ok := h.clients[c]; ok {
		delete(h.clients, c)
		close(c.send)
	}
}

func (h *eventHub) count() int {
	h.mu.Lock()
	defer h.mu.Unlock()

	return len(h.clients)
}

func (h *eventHub) broadcast(e Event) {
	h.mu.Lock()
	defer h.mu.Unlock()

	for c := range h.clients {
		select {
		case c.send <- e:
		default:
			h.logger.Debug().Str("remote_addr", c.conn.RemoteAddr().String()).Msg("Dropping event for slow client")
		}
	}
}

func (h *eventHub) closeAll() {
	h.mu.Lock()
	defer h.mu.Unlock()

	for c := range h.clients {
		delete(h.clients, c)
		close(c.send)
	}
}

func (s *APIServer) checkWebSocketOrigin(r *http.Request) bool {
	origin := r.Header.Get("Origin")
	if origin == "" {
		return true
	}

	for _, allowed := range s.corsConfig.AllowedOrigins {
		if allowed == "*" || strings.EqualFold(allowed, origin) {
			return true
		}
	}

	u, err := url.Parse(origin)

	return err == nil && strings.EqualFold(u.Host, r.Host)
}

func (s *APIServer) handleEvents(w http.ResponseWriter, r *http.Request) {
	upgrader := websocket.Upgrader{
		ReadBufferSize:  eventBufferBytes,
		WriteBufferSize: eventBufferBytes,
		CheckOrigin:     s.checkWebSocketOrigin,
	}

	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		s.logger.Error().
			Err(err).
			Str("remote_addr", r.RemoteAddr).
			Str("origin", r.Header.Get("Origin")).
			Msg("Failed to upgrade to WebSocket")

		return
	}

	c := &eventClient{conn: conn, send: make(chan Event, eventBuffer)}
	s.events.add(c)

	s.logger.Info().Str("remote_addr", r.RemoteAddr).Msg("Event subscriber connected")

	go s.writeEvents(c)

	s.readEvents(c)
}

// readEvents consumes client frames until the connection drops. Clients
// are not expected to send anything.
func (s *APIServer) readEvents(c *eventClient) {
	defer s.events.remove(c)

	c.conn.SetReadLimit(eventReadLimit)
	_ = c.conn.SetReadDeadline(time.Now().Add(eventPongWait))
	c.conn.SetPongHandler(func(string) error {
		return c.conn.SetReadDeadline(time.Now().Add(eventPongWait))
	})

	for {
		if _, _, err := c.conn.ReadMessage(); err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseNormalClosure) {
				s.logger.Warn().Err(err).Str("remote_addr", c.conn.RemoteAddr().String()).Msg("Event subscriber closed unexpectedly")
			}

			return
		}
	}
}

func (s *APIServer) writeEvents(c *eventClient) {
	ticker := time.NewTicker(eventPingPeriod)

	defer func() {
		ticker.Stop()
		_ = c.conn.Close()
	}()

	for {
		select {
		case e, ok := <-c.send:
			_ = c.conn.SetWriteDeadline(time.Now().Add(eventWriteWait))

			if !ok {
				_ = c.conn.WriteMessage(websocket.CloseMessage, websocket.FormatCloseMessage(websocket.CloseNormalClosure, ""))

				return
			}

			if err := c.conn.WriteJSON(e); err != nil {
				s.logger.Debug().Err(err).Msg("Failed to write event")

				return
			}
		case <-ticker.C:
			_ = c.conn.SetWriteDeadline(time.Now().Add(eventWriteWait))

			if err := c.conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		}
	}
}
