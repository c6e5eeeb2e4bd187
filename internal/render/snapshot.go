// Package render projects rooms into the snapshots sent to each player.
//
// A Base is built once per broadcast. Every per-player Snapshot derived from
// it shares the map, territories and logs by pointer; only the players
// slice is copied so the viewer's own objective text can be injected.
// Snapshots must be treated as read-only.
package render

import (
	"slices"

	"github.com/aaronzipp/brisk/internal/game"
	"github.com/aaronzipp/brisk/internal/models"
	"github.com/aaronzipp/brisk/internal/ruleset"
)

// Snapshot is the state:update payload for one viewer.
type Snapshot struct {
	RoomID       string        `json:"roomId"`
	Status       models.Status `json:"status"`
	HostPlayerID string        `json:"hostPlayerId"`
	YouPlayerID  string        `json:"youPlayerId,omitempty"`
	Players      []PlayerView  `json:"players"`
	Map          *MapView      `json:"map"`
	Game         *GameView     `json:"game,omitempty"`
}

// PlayerView is one entry of the player list. Seat is nil in the lobby.
type PlayerView struct {
	ID        string `json:"id"`
	Name      string `json:"name"`
	Connected bool   `json:"connected"`
	*Seat
}

// Seat is the in-game part of a player entry. ObjectiveText is only set on
// the viewer's own entry.
type Seat struct {
	Color          ruleset.Color `json:"color"`
	Alive          bool          `json:"alive"`
	ReserveArmies  int           `json:"reserveArmies"`
	TerritoryCount int           `json:"territoryCount"`
	IsCurrentTurn  bool          `json:"isCurrentTurn"`
	ObjectiveText  *string       `json:"objectiveText"`
}

// MapView is the static board. Continents are omitted in the lobby.
type MapView struct {
	RulesetID   string              `json:"rulesetId"`
	Territories []ruleset.Territory `json:"territories"`
	Continents  []ruleset.Continent `json:"continents,omitempty"`
}

// GameView is the public state of a match.
type GameView struct {
	ID                string                           `json:"id"`
	Status            models.Status                    `json:"status"`
	Round             int                              `json:"round"`
	Phase             models.Phase                     `json:"phase"`
	CurrentPlayerID   string                           `json:"currentPlayerId"`
	WinnerPlayerID    string                           `json:"winnerPlayerId,omitempty"`
	ConqueredThisTurn bool                             `json:"conqueredThisTurn"`
	FortifiedThisTurn bool                             `json:"fortifiedThisTurn"`
	Territories       map[string]models.TerritoryState `json:"territories"`
	Logs              []models.LogEntry                `json:"logs"`
	LastActionResult  *game.BattleResult               `json:"lastActionResult"`
}

// Projector builds snapshots against one ruleset.
type Projector struct {
	rules    *ruleset.Ruleset
	locale   string
	lobbyMap *MapView
	gameMap  *MapView
}

// NewProjector prepares the shared map views. locale selects the language
// of objective texts ("pt" or "en").
func NewProjector(rules *ruleset.Ruleset, locale string) *Projector {
	return &Projector{
		rules:  rules,
		locale: locale,
		lobbyMap: &MapView{
			RulesetID:   rules.ID(),
			Territories: rules.Map.Territories,
		},
		gameMap: &MapView{
			RulesetID:   rules.ID(),
			Territories: rules.Map.Territories,
			Continents:  rules.Map.Continents,
		},
	}
}

// Base is the viewer-independent projection of a room.
type Base struct {
	snapshot   Snapshot
	objectives map[string]string
}

// Base projects room. last is attached to the game view when the
// broadcast follows an attack.
func (p *Projector) Base(room *models.Room, last *game.BattleResult) *Base {
	b := &Base{snapshot: Snapshot{
		RoomID:       room.ID,
		Status:       room.Status,
		HostPlayerID: room.HostPlayerID,
	}}

	if room.Status == models.StatusLobby || room.Game == nil {
		b.snapshot.Map = p.lobbyMap
		b.snapshot.Players = make([]PlayerView, len(room.Players))
		for i, rp := range room.Players {
			b.snapshot.Players[i] = PlayerView{ID: rp.ID, Name: rp.Name, Connected: rp.Connected}
		}
		return b
	}

	g := room.Game
	counts := g.TerritoryCounts()
	b.objectives = make(map[string]string, len(g.Players))
	b.snapshot.Map = p.gameMap
	b.snapshot.Players = make([]PlayerView, len(g.Players))
	for i, gp := range g.Players {
		connected := false
		if rp := room.Player(gp.ID); rp != nil {
			connected = rp.Connected
		}
		if card, ok := p.rules.Objective(gp.ObjectiveID); ok {
			b.objectives[gp.ID] = card.Text(p.locale)
		}
		b.snapshot.Players[i] = PlayerView{
			ID:        gp.ID,
			Name:      gp.Name,
			Connected: connected,
			Seat: &Seat{
				Color:          gp.Color,
				Alive:          gp.Alive,
				ReserveArmies:  gp.ReserveArmies,
				TerritoryCount: counts[gp.ID],
				IsCurrentTurn:  g.Turn.CurrentPlayerID == gp.ID,
			},
		}
	}

	territories := make(map[string]models.TerritoryState, len(g.Territories))
	for id, t := range g.Territories {
		territories[id] = *t
	}
	b.snapshot.Game = &GameView{
		ID:                g.ID,
		Status:            g.Status,
		Round:             g.Round,
		Phase:             g.Turn.Phase,
		CurrentPlayerID:   g.Turn.CurrentPlayerID,
		WinnerPlayerID:    g.WinnerPlayerID,
		ConqueredThisTurn: g.Turn.ConqueredThisTurn,
		FortifiedThisTurn: g.Turn.FortifiedThisTurn,
		Territories:       territories,
		Logs:              slices.Clone(g.Logs),
		LastActionResult:  last,
	}
	return b
}

// ForPlayer derives the snapshot seen by viewerID. Only the viewer's own
// entry carries objective text.
func (b *Base) ForPlayer(viewerID string) *Snapshot {
	s := b.snapshot
	s.YouPlayerID = viewerID
	if s.Game == nil {
		return &s
	}

	s.Players = slices.Clone(b.snapshot.Players)
	for i, pv := range s.Players {
		if pv.ID != viewerID || pv.Seat == nil {
			continue
		}
		seat := *pv.Seat
		text := b.objectives[viewerID]
		seat.ObjectiveText = &text
		s.Players[i].Seat = &seat
	}
	return &s
}

// ForPlayers derives one snapshot per id in viewerIDs.
func (b *Base) ForPlayers(viewerIDs []string) map[string]*Snapshot {
	out := make(map[string]*Snapshot, len(viewerIDs))
	for _, id := range viewerIDs {
		out[id] = b.ForPlayer(id)
	}
	return out
}
