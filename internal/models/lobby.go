package models

import (
	"strings"
	"time"
)

// Room is a lobby/match container identified by a short code. Game is nil
// until the host starts the match.
type Room struct {
	ID            string
	CreatedAt     time.Time
	Status        Status
	HostPlayerID  string
	Players       []*RoomPlayer
	Game          *Game
	InactiveSince *time.Time
}

// Player returns the room player with the given id.
func (r *Room) Player(id string) *RoomPlayer {
	for _, p := range r.Players {
		if p.ID == id {
			return p
		}
	}
	return nil
}

// PlayerByName matches names case-insensitively.
func (r *Room) PlayerByName(name string) *RoomPlayer {
	for _, p := range r.Players {
		if strings.EqualFold(p.Name, name) {
			return p
		}
	}
	return nil
}

// PlayerByTransport returns the player bound to transportID, connected or not.
func (r *Room) PlayerByTransport(transportID string) *RoomPlayer {
	if transportID == "" {
		return nil
	}
	for _, p := range r.Players {
		if p.TransportID == transportID {
			return p
		}
	}
	return nil
}

// RemovePlayer drops the player with the given id, keeping join order.
func (r *Room) RemovePlayer(id string) {
	kept := r.Players[:0]
	for _, p := range r.Players {
		if p.ID != id {
			kept = append(kept, p)
		}
	}
	r.Players = kept
}

// FullyDisconnected reports whether no player holds a live connection.
func (r *Room) FullyDisconnected() bool {
	for _, p := range r.Players {
		if p.Connected && p.TransportID != "" {
			return false
		}
	}
	return true
}
