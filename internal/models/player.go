package models

import (
	"time"

	"github.com/aaronzipp/brisk/internal/ruleset"
)

// RoomPlayer is a participant of a room. TransportID is empty while the
// player has no live connection.
type RoomPlayer struct {
	ID          string
	Name        string
	Connected   bool
	TransportID string
	Color       ruleset.Color // assigned when the game starts
}

// GamePlayer contains game-specific player information
type GamePlayer struct {
	ID                   string
	Name                 string
	Color                ruleset.Color
	Alive                bool
	ReserveArmies        int
	ObjectiveID          string
	EliminatedByPlayerID string
	EliminatedAt         *time.Time
}
