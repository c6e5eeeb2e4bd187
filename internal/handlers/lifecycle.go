package handlers

import (
	"net/http"
	"slices"

	"github.com/aaronzipp/brisk/internal/game"
	"github.com/aaronzipp/brisk/internal/ws"
	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"
)

// HandleSocket upgrades the request and serves the connection until it
// closes, then releases its seat.
func (ctx *Context) HandleSocket(c *gin.Context) {
	upgrader := websocket.Upgrader{
		ReadBufferSize:  1024,
		WriteBufferSize: 1024,
		CheckOrigin:     ctx.checkOrigin,
	}
	socket, err := upgrader.Upgrade(c.Writer, c.Request, nil)
	if err != nil {
		// the upgrader already wrote the error response
		ctx.Log.Warn().Err(err).Msg("websocket upgrade failed")
		return
	}

	conn := ctx.Hub.Register(socket)
	ctx.Log.Debug().Str("conn", conn.ID).Msg("connected")

	conn.Serve(ctx.dispatch)

	ctx.Hub.Unregister(conn)
	ctx.disconnect(conn.ID)
}

func (ctx *Context) checkOrigin(r *http.Request) bool {
	origin := r.Header.Get("Origin")
	if origin == "" || len(ctx.Config.AllowedOrigins) == 0 {
		return true
	}
	return slices.Contains(ctx.Config.AllowedOrigins, origin)
}

func (ctx *Context) dispatch(conn *ws.Conn, env ws.Envelope) {
	switch env.Type {
	case ws.EventLobbyJoin:
		ctx.handleJoin(conn, env)
	case ws.EventGameStart:
		ctx.handleStart(conn, env)
	case ws.EventGameAction:
		ctx.handleAction(conn, env)
	default:
		ctx.ackError(conn, env, game.ErrInvalidAction.With("unknown event: %s", env.Type))
	}
}

// disconnect releases the transport's seat and tells the rest of the room.
func (ctx *Context) disconnect(transportID string) {
	ctx.dropSession(transportID)
	res := ctx.Registry.RemoveTransport(transportID)
	if !res.Found {
		return
	}
	ctx.Log.Info().
		Str("room", res.RoomID).
		Str("player", res.PlayerID).
		Bool("roomDeleted", res.RoomDeleted).
		Msg("player disconnected")
	if !res.RoomDeleted {
		ctx.broadcastRoom(res.RoomID, nil)
	}
}
