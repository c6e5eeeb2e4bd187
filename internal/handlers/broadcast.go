package handlers

import (
	"github.com/aaronzipp/brisk/internal/game"
	"github.com/aaronzipp/brisk/internal/render"
	"github.com/aaronzipp/brisk/internal/ws"
)

// broadcastRoom sends every connected player of the room its own snapshot.
func (ctx *Context) broadcastRoom(roomID string, last *game.BattleResult) {
	deliveries := ctx.Registry.Deliveries(roomID, last)
	if len(deliveries) == 0 {
		return
	}

	snapshots := make(map[string]*render.Snapshot, len(deliveries))
	ids := make([]string, 0, len(deliveries))
	for _, d := range deliveries {
		snapshots[d.TransportID] = d.Snapshot
		ids = append(ids, d.TransportID)
	}

	sent := ctx.Hub.SendPersonalized(ids, func(connID string) ws.Message {
		return ws.Message{Type: ws.EventStateUpdate, Payload: snapshots[connID]}
	})
	ctx.Log.Debug().Str("room", roomID).Int("recipients", sent).Msg("state broadcast")
}
