package handlers

import (
	"github.com/aaronzipp/brisk/internal/game"
	"github.com/aaronzipp/brisk/internal/ws"
)

// handleStart starts the match of the connection's room. Only the host may.
func (ctx *Context) handleStart(conn *ws.Conn, env ws.Envelope) {
	s, err := ctx.activeSession(conn.ID)
	if err != nil {
		ctx.ackError(conn, env, err)
		return
	}
	if err := ctx.Registry.StartGame(s.RoomID, s.PlayerID); err != nil {
		ctx.ackError(conn, env, err)
		return
	}
	ctx.Log.Debug().Str("room", s.RoomID).Str("player", s.PlayerID).Msg("start requested")

	ctx.ack(conn, env, nil)
	ctx.broadcastRoom(s.RoomID, nil)
}

// handleAction applies one game action for the connection's player.
func (ctx *Context) handleAction(conn *ws.Conn, env ws.Envelope) {
	s, err := ctx.activeSession(conn.ID)
	if err != nil {
		ctx.ackError(conn, env, err)
		return
	}
	var action game.Action
	if err := decodePayload(env.Payload, &action); err != nil {
		ctx.ackError(conn, env, err)
		return
	}

	result, err := ctx.Registry.ApplyAction(s.RoomID, s.PlayerID, action)
	if err != nil {
		ctx.ackError(conn, env, err)
		return
	}
	ctx.Log.Debug().
		Str("room", s.RoomID).
		Str("player", s.PlayerID).
		Str("action", string(action.Type)).
		Msg("action applied")

	ctx.ack(conn, env, result)
	ctx.broadcastRoom(s.RoomID, result.Battle)
}
