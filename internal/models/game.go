package models

import "time"

// Game represents an active match. Players are stored in turn order.
type Game struct {
	ID             string
	Status         Status
	Round          int
	Players        []*GamePlayer
	Territories    map[string]*TerritoryState
	Turn           Turn
	WinnerPlayerID string
	Logs           []LogEntry // newest first
	CreatedAt      time.Time
	UpdatedAt      time.Time
}

// Turn is the cursor of the current player's turn.
type Turn struct {
	CurrentPlayerID   string
	Phase             Phase
	ConqueredThisTurn bool
	FortifiedThisTurn bool
}

// TerritoryState is the mutable ownership of one map territory.
type TerritoryState struct {
	OwnerID string `json:"ownerId"`
	Armies  int    `json:"armies"`
}

// LogEntry is one line of the match log.
type LogEntry struct {
	ID   string    `json:"id"`
	At   time.Time `json:"at"`
	Text string    `json:"text"`
}

// Player returns the game player with the given id.
func (g *Game) Player(id string) *GamePlayer {
	for _, p := range g.Players {
		if p.ID == id {
			return p
		}
	}
	return nil
}

// PlayerIndex returns the turn-order position of id, or -1.
func (g *Game) PlayerIndex(id string) int {
	for i, p := range g.Players {
		if p.ID == id {
			return i
		}
	}
	return -1
}

// CurrentPlayer returns the player whose turn it is.
func (g *Game) CurrentPlayer() *GamePlayer {
	return g.Player(g.Turn.CurrentPlayerID)
}

// AlivePlayers returns the living players in turn order.
func (g *Game) AlivePlayers() []*GamePlayer {
	alive := make([]*GamePlayer, 0, len(g.Players))
	for _, p := range g.Players {
		if p.Alive {
			alive = append(alive, p)
		}
	}
	return alive
}

// TerritoryCounts maps each owner id to the number of territories it holds.
func (g *Game) TerritoryCounts() map[string]int {
	counts := make(map[string]int, len(g.Players))
	for _, t := range g.Territories {
		counts[t.OwnerID]++
	}
	return counts
}

// OwnedTerritoryIDs lists the territories owned by playerID, in the order given.
func (g *Game) OwnedTerritoryIDs(order []string, playerID string) []string {
	owned := make([]string, 0)
	for _, id := range order {
		if t, ok := g.Territories[id]; ok && t.OwnerID == playerID {
			owned = append(owned, id)
		}
	}
	return owned
}
