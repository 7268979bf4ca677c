package api

import (
	"net/http"
	"sync"

	"github.com/gorilla/websocket"

	"github.com/agrodata-labs/farmgame-simulator/core"
	"github.com/agrodata-labs/farmgame-simulator/internal/logging"
	"github.com/agrodata-labs/farmgame-simulator/model"
)

// progressEvent is the wire shape pushed to progress websocket clients.
type progressEvent struct {
	Type       string              `json:"type"` // area_recorded | area_updated | registry_cleared
	Area       *model.AnalyzedArea `json:"area,omitempty"`
	Statistics core.Statistics     `json:"statistics"`
}

// progressHub fans registry change events out to websocket clients. Slow
// or broken clients are dropped rather than blocking the broadcast.
type progressHub struct {
	log      logging.Logger
	onChurn  func(delta int)
	upgrader websocket.Upgrader

	mu      sync.Mutex
	clients map[*websocket.Conn]struct{}
}

func newProgressHub(log logging.Logger, onChurn func(delta int)) *progressHub {
	if onChurn == nil {
		onChurn = func(int) {}
	}
	return &progressHub{
		log:     log,
		onChurn: onChurn,
		upgrader: websocket.Upgrader{
			ReadBufferSize:  1024,
			WriteBufferSize: 1024,
			// The game client is served from arbitrary origins in dev.
			CheckOrigin: func(*http.Request) bool { return true },
		},
		clients: make(map[*websocket.Conn]struct{}),
	}
}

// serve upgrades the connection and parks it until the client goes away.
func (h *progressHub) serve(w http.ResponseWriter, r *http.Request) {
	conn, err := h.upgrader.Upgrade(w, r, nil)
	if err != nil {
		h.log.Warn(r.Context(), "websocket upgrade failed", logging.Err(err))
		return
	}

	h.mu.Lock()
	h.clients[conn] = struct{}{}
	h.mu.Unlock()
	h.onChurn(1)

	// Drain reads so close frames and pings are processed; the hub never
	// expects client messages.
	go func() {
		defer h.drop(conn)
		for {
			if _, _, err := conn.ReadMessage(); err != nil {
				return
			}
		}
	}()
}

// broadcast pushes one event to every connected client.
func (h *progressHub) broadcast(evt progressEvent) {
	h.mu.Lock()
	conns := make([]*websocket.Conn, 0, len(h.clients))
	for c := range h.clients {
		conns = append(conns, c)
	}
	h.mu.Unlock()

	for _, c := range conns {
		if err := c.WriteJSON(evt); err != nil {
			h.drop(c)
		}
	}
}

// closeAll disconnects every client, used on server shutdown.
func (h *progressHub) closeAll() {
	h.mu.Lock()
	conns := make([]*websocket.Conn, 0, len(h.clients))
	for c := range h.clients {
		conns = append(conns, c)
	}
	h.clients = make(map[*websocket.Conn]struct{})
	h.mu.Unlock()

	for _, c := range conns {
		c.Close()
		h.onChurn(-1)
	}
}

func (h *progressHub) drop(conn *websocket.Conn) {
	h.mu.Lock()
	_, present := h.clients[conn]
	delete(h.clients, conn)
	h.mu.Unlock()

	if present {
		conn.Close()
		h.onChurn(-1)
	}
}
