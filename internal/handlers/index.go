// Package handlers is the HTTP and websocket boundary of the server.
package handlers

import (
	"net/http"
	"sync"

	"github.com/aaronzipp/brisk/internal/config"
	"github.com/aaronzipp/brisk/internal/store"
	"github.com/aaronzipp/brisk/internal/ws"
	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"
)

// ServiceName is reported by the health endpoint.
const ServiceName = "brisk-server"

// Context holds shared application dependencies
type Context struct {
	Registry *store.Registry
	Hub      *ws.Hub
	Config   config.Config
	Log      zerolog.Logger

	mu       sync.Mutex
	sessions map[string]session // transport id -> joined seat
}

// NewContext wires the boundary to a registry and a connection hub.
func NewContext(reg *store.Registry, hub *ws.Hub, cfg config.Config, log zerolog.Logger) *Context {
	return &Context{
		Registry: reg,
		Hub:      hub,
		Config:   cfg,
		Log:      log,
		sessions: make(map[string]session),
	}
}

// HandleHealth reports liveness.
func (ctx *Context) HandleHealth(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"ok": true, "service": ServiceName})
}

// HandleRuleset serves the static ruleset clients render the board from.
func (ctx *Context) HandleRuleset(c *gin.Context) {
	rules := ctx.Registry.Rules()
	c.JSON(http.StatusOK, gin.H{
		"constants":  rules.Constants,
		"map":        rules.Map,
		"objectives": rules.Objectives.Objectives,
	})
}
