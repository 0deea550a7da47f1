// Copyright 2026 Harald Albrecht.
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//    http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

/*
Package hmr reloads development clients whenever sources change: a websocket
endpoint tracks the connected clients, a filesystem watcher notices source
changes, and a small client script injected into the rendered pages reloads
them when told to.
*/
package hmr

import (
	"context"
	"log/slog"
	"net/http"
	"sync"
	"time"

	"github.com/coder/websocket"
	"github.com/coder/websocket/wsjson"
)

const (
	// SocketPath is the route of the websocket endpoint.
	SocketPath = "/@ssr/hmr"
	// ClientPath is the route of the client script.
	ClientPath = "/@ssr/client"
)

// FullReload tells clients to reload the whole page.
const FullReload = "full-reload"

// sendTimeout limits how long a single slow client may hold up a broadcast.
const sendTimeout = 5 * time.Second

// Message is pushed to the connected clients.
type Message struct {
	Type string `json:"type"`
	Path string `json:"path,omitempty"`
}

// Server manages the websocket connections of development clients.
type Server struct {
	mu    sync.RWMutex
	conns map[*websocket.Conn]struct{}
	log   *slog.Logger
}

// NewServer returns a new Server without any clients yet.
func NewServer(log *slog.Logger) *Server {
	if log == nil {
		log = slog.Default()
	}
	return &Server{
		conns: map[*websocket.Conn]struct{}{},
		log:   log,
	}
}

// ServeHTTP upgrades the HTTP request to a websocket connection and keeps it
// registered until the client goes away. Clients never send anything we care
// about.
func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	conn, err := websocket.Accept(w, r, &websocket.AcceptOptions{
		// Development only, with the dev client served from the same origin.
		InsecureSkipVerify: true,
	})
	if err != nil {
		s.log.Error("hmr websocket accept", slog.String("err", err.Error()))
		return
	}
	s.add(conn)
	defer s.remove(conn)
	s.log.Debug("hmr client connected", slog.String("remote", r.RemoteAddr))

	ctx := conn.CloseRead(r.Context())
	<-ctx.Done()
	s.log.Debug("hmr client disconnected", slog.String("remote", r.RemoteAddr))
}

// Broadcast sends msg to all connected clients. Clients that cannot be
// reached are dropped.
func (s *Server) Broadcast(ctx context.Context, msg Message) {
	s.mu.RLock()
	conns := make([]*websocket.Conn, 0, len(s.conns))
	for conn := range s.conns {
		conns = append(conns, conn)
	}
	s.mu.RUnlock()

	for _, conn := range conns {
		sendctx, cancel := context.WithTimeout(ctx, sendTimeout)
		err := wsjson.Write(sendctx, conn, msg)
		cancel()
		if err != nil {
			s.log.Debug("hmr client unreachable", slog.String("err", err.Error()))
			s.remove(conn)
			_ = conn.Close(websocket.StatusGoingAway, "unreachable")
		}
	}
}

// ConnectionCount returns the number of connected clients.
func (s *Server) ConnectionCount() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.conns)
}

func (s *Server) add(conn *websocket.Conn) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.conns[conn] = struct{}{}
}

func (s *Server) remove(conn *websocket.Conn) {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.conns, conn)
}
