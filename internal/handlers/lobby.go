package handlers

import (
	"encoding/json"
	"net/http"
	"net/url"
	"strings"

	"github.com/aaronzipp/brisk/internal/game"
	"github.com/aaronzipp/brisk/internal/store"
	"github.com/aaronzipp/brisk/internal/ws"
	"github.com/gin-gonic/gin"
	"github.com/skip2/go-qrcode"
)

// InviteSize is the edge length in pixels of invite QR codes.
const InviteSize = 256

// HandleCreateRoom reserves nothing; it hands out a room code that is free
// right now. The room is created by the first lobby:join.
func (ctx *Context) HandleCreateRoom(c *gin.Context) {
	code := game.UniqueRoomCode(ctx.Registry.Exists)
	c.JSON(http.StatusOK, gin.H{"roomId": code, "inviteUrl": ctx.inviteURL(code)})
}

// HandleRoom returns the public summary of a room.
func (ctx *Context) HandleRoom(c *gin.Context) {
	code, err := game.NormalizeRoomID(c.Param("code"))
	if err != nil {
		c.JSON(http.StatusBadRequest, errorBody(err))
		return
	}
	info, ok := ctx.Registry.Get(code)
	if !ok {
		c.JSON(http.StatusNotFound, errorBody(game.ErrRoomNotFound))
		return
	}
	c.JSON(http.StatusOK, info)
}

// HandleInvite renders a QR code pointing at the join link of a room.
func (ctx *Context) HandleInvite(c *gin.Context) {
	code, err := game.NormalizeRoomID(c.Param("code"))
	if err != nil {
		c.JSON(http.StatusBadRequest, errorBody(err))
		return
	}
	png, err := qrcode.Encode(ctx.inviteURL(code), qrcode.Medium, InviteSize)
	if err != nil {
		ctx.Log.Error().Err(err).Str("room", code).Msg("encode invite")
		c.JSON(http.StatusInternalServerError, gin.H{"error": "could not render invite"})
		return
	}
	c.Header("Cache-Control", "public, max-age=3600")
	c.Data(http.StatusOK, "image/png", png)
}

func (ctx *Context) inviteURL(code string) string {
	return strings.TrimRight(ctx.Config.PublicURL, "/") + "/?room=" + url.QueryEscape(code)
}

type joinPayload struct {
	RoomID     string `json:"roomId"`
	PlayerName string `json:"playerName"`
	PlayerID   string `json:"playerId"`
}

// handleJoin creates or joins a room and binds the connection to the seat.
func (ctx *Context) handleJoin(conn *ws.Conn, env ws.Envelope) {
	var p joinPayload
	if err := decodePayload(env.Payload, &p); err != nil {
		ctx.ackError(conn, env, err)
		return
	}

	res, err := ctx.Registry.CreateOrJoin(store.JoinRequest{
		RoomID:      p.RoomID,
		PlayerName:  p.PlayerName,
		TransportID: conn.ID,
		PlayerID:    p.PlayerID,
	})
	if err != nil {
		ctx.ackError(conn, env, err)
		return
	}
	ctx.setSession(conn.ID, session{RoomID: res.RoomID, PlayerID: res.PlayerID})

	ctx.Log.Info().
		Str("room", res.RoomID).
		Str("player", res.PlayerID).
		Bool("created", res.Created).
		Bool("reconnected", res.Reconnected).
		Msg("player joined")

	ctx.ack(conn, env, res)
	ctx.broadcastRoom(res.RoomID, nil)
}

func decodePayload(raw json.RawMessage, target any) error {
	if len(raw) == 0 {
		return game.ErrInvalidAction.With("missing payload")
	}
	if err := json.Unmarshal(raw, target); err != nil {
		return game.ErrInvalidAction.With("malformed payload")
	}
	return nil
}
