package handlers

import (
	"errors"

	"github.com/aaronzipp/brisk/internal/game"
	"github.com/aaronzipp/brisk/internal/ws"
	"github.com/gin-gonic/gin"
)

// CodeInternal is reported for failures that are not game errors.
const CodeInternal = "INTERNAL"

// session is the seat a connection joined.
type session struct {
	RoomID   string
	PlayerID string
}

func (ctx *Context) setSession(transportID string, s session) {
	ctx.mu.Lock()
	ctx.sessions[transportID] = s
	ctx.mu.Unlock()
}

func (ctx *Context) dropSession(transportID string) {
	ctx.mu.Lock()
	delete(ctx.sessions, transportID)
	ctx.mu.Unlock()
}

// activeSession validates that the connection joined a room and still
// controls its player.
func (ctx *Context) activeSession(transportID string) (session, error) {
	ctx.mu.Lock()
	s, ok := ctx.sessions[transportID]
	ctx.mu.Unlock()
	if !ok {
		return session{}, game.ErrNotInRoom
	}
	if !ctx.Registry.IsActiveTransportForPlayer(s.RoomID, s.PlayerID, transportID) {
		return session{}, game.ErrInactiveTransport
	}
	return s, nil
}

func (ctx *Context) ack(conn *ws.Conn, env ws.Envelope, result any) {
	conn.Send(ws.Message{Type: ws.EventAck, AckID: env.AckID, Payload: ws.Ack{OK: true, Result: result}})
}

func (ctx *Context) ackError(conn *ws.Conn, env ws.Envelope, err error) {
	ack := ws.Ack{Error: err.Error(), Code: CodeInternal}
	var gerr *game.Error
	if errors.As(err, &gerr) {
		ack.Code = gerr.Code
		ctx.Log.Debug().Str("conn", conn.ID).Str("type", env.Type).Str("code", gerr.Code).Msg("request rejected")
	} else {
		ctx.Log.Error().Err(err).Str("conn", conn.ID).Str("type", env.Type).Msg("unexpected error")
		ack.Error = "internal error"
	}
	conn.Send(ws.Message{Type: ws.EventAck, AckID: env.AckID, Payload: ack})
}

func errorBody(err error) gin.H {
	body := gin.H{"error": err.Error()}
	var gerr *game.Error
	if errors.As(err, &gerr) {
		body["code"] = gerr.Code
	}
	return body
}
