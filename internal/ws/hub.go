// Package ws is the realtime transport: it tracks live websocket
// connections by transport id and delivers personalised messages to them.
package ws

import (
	"sync"

	"github.com/google/uuid"
	"github.com/gorilla/websocket"
	"github.com/rs/zerolog"
	"golang.org/x/time/rate"
)

// Hub tracks live connections by transport id.
type Hub struct {
	mu    sync.RWMutex
	conns map[string]*Conn

	limit rate.Limit
	burst int
	log   zerolog.Logger
}

// NewHub creates a hub whose connections may each send limit messages per
// second with bursts of burst.
func NewHub(log zerolog.Logger, limit rate.Limit, burst int) *Hub {
	return &Hub{
		conns: make(map[string]*Conn),
		limit: limit,
		burst: burst,
		log:   log,
	}
}

// Register adds socket under a fresh transport id.
func (h *Hub) Register(socket *websocket.Conn) *Conn {
	c := newConn(uuid.NewString(), socket, rate.NewLimiter(h.limit, h.burst), h.log)
	h.mu.Lock()
	h.conns[c.ID] = c
	n := len(h.conns)
	h.mu.Unlock()
	h.log.Debug().Str("conn", c.ID).Int("connections", n).Msg("connection registered")
	return c
}

// Unregister removes c and closes it.
func (h *Hub) Unregister(c *Conn) {
	h.mu.Lock()
	delete(h.conns, c.ID)
	n := len(h.conns)
	h.mu.Unlock()
	c.Close()
	h.log.Debug().Str("conn", c.ID).Int("connections", n).Msg("connection removed")
}

// Send delivers msg to the connection with transport id connID and reports
// whether it was queued.
func (h *Hub) Send(connID string, msg Message) bool {
	h.mu.RLock()
	c, ok := h.conns[connID]
	h.mu.RUnlock()
	if !ok {
		return false
	}
	return c.Send(msg)
}

// SendPersonalized renders one message per transport id and sends it
// without holding the hub lock.
func (h *Hub) SendPersonalized(connIDs []string, render func(connID string) Message) int {
	h.mu.RLock()
	targets := make([]*Conn, 0, len(connIDs))
	for _, id := range connIDs {
		if c, ok := h.conns[id]; ok {
			targets = append(targets, c)
		}
	}
	h.mu.RUnlock()

	sent := 0
	for _, c := range targets {
		if c.Send(render(c.ID)) {
			sent++
		}
	}
	return sent
}

// Len returns the number of live connections.
func (h *Hub) Len() int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.conns)
}
