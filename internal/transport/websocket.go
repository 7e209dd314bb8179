// SPDX-License-Identifier: MIT
package transport

import (
	"encoding/json"
	"net/http"
	"sync"

	"github.com/gorilla/websocket"

	applog "flightframe/internal/log"
)

// Monitor implements the Transport interface over WebSockets. It serves a
// small endpoint that dashboards can attach to while a scan runs; every
// payload passed to Send is broadcast to all connected clients as JSON,
// and a newly connecting client immediately receives the latest payload
// so it does not have to wait for the next detection.
//
// Thread safety: the client map and last-payload snapshot are guarded by a
// mutex; Send may be called concurrently with connection handling.
type Monitor struct {
	clients     map[*websocket.Conn]bool
	clientsMu   sync.Mutex
	upgrader    websocket.Upgrader
	server      *http.Server
	lastPayload []byte // most recent JSON payload, replayed to new clients
}

// NewMonitor creates a Monitor listening on the given port and starts its
// HTTP server in a background goroutine. Clients connect to /results.
func NewMonitor(port string) *Monitor {
	m := &Monitor{
		clients: make(map[*websocket.Conn]bool),
		upgrader: websocket.Upgrader{
			ReadBufferSize:  1024,
			WriteBufferSize: 1024,
			CheckOrigin: func(r *http.Request) bool {
				return true // local diagnostic tool, no origin policy
			},
		},
	}

	mux := http.NewServeMux()
	mux.HandleFunc("/results", m.handleWebSocket)
	m.server = &http.Server{
		Addr:    ":" + port,
		Handler: mux,
	}

	go func() {
		applog.Infof("monitor: WebSocket server listening on port %s", port)
		if err := m.server.ListenAndServe(); err != http.ErrServerClosed {
			applog.Errorf("monitor: server error: %v", err)
		}
	}()

	return m
}

// handleWebSocket upgrades HTTP connections, registers the client, replays
// the latest payload and watches for disconnect.
func (m *Monitor) handleWebSocket(w http.ResponseWriter, r *http.Request) {
	conn, err := m.upgrader.Upgrade(w, r, nil)
	if err != nil {
		applog.Errorf("monitor: upgrade error: %v", err)
		return
	}

	m.clientsMu.Lock()
	m.clients[conn] = true
	if m.lastPayload != nil {
		if err := conn.WriteMessage(websocket.TextMessage, m.lastPayload); err != nil {
			delete(m.clients, conn)
			m.clientsMu.Unlock()
			conn.Close()
			return
		}
	}
	m.clientsMu.Unlock()

	// Listen for close.
	go func() {
		for {
			if _, _, err := conn.ReadMessage(); err != nil {
				m.clientsMu.Lock()
				delete(m.clients, conn)
				m.clientsMu.Unlock()
				conn.Close()
				break
			}
		}
	}()
}

// Send broadcasts the payload to all connected clients as JSON and records
// it as the replay snapshot for future connections.
func (m *Monitor) Send(data any) error {
	jsonData, err := json.Marshal(data)
	if err != nil {
		return err
	}

	m.clientsMu.Lock()
	m.lastPayload = jsonData
	for client := range m.clients {
		if err := client.WriteMessage(websocket.TextMessage, jsonData); err != nil {
			client.Close()
			delete(m.clients, client)
		}
	}
	m.clientsMu.Unlock()

	return nil
}

// Close disconnects all clients and shuts down the HTTP server.
// Idempotent and thread-safe.
func (m *Monitor) Close() error {
	m.clientsMu.Lock()
	for client := range m.clients {
		client.Close()
		delete(m.clients, client)
	}
	m.clientsMu.Unlock()

	return m.server.Close()
}

// Ensure Monitor satisfies the interface at compile time.
var _ Transport = (*Monitor)(nil)
