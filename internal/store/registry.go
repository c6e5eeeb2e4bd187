// Package store owns every room of the process and is the only place room
// and game state is mutated.
package store

import (
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/aaronzipp/brisk/internal/game"
	"github.com/aaronzipp/brisk/internal/models"
	"github.com/aaronzipp/brisk/internal/render"
	"github.com/aaronzipp/brisk/internal/ruleset"
)

// Registry manages room storage. One mutex serialises every operation, so
// each join, start, action or disconnect runs to completion before the next.
// Every public method first prunes rooms whose inactivity TTL has expired.
type Registry struct {
	mu    sync.Mutex
	rooms map[string]*models.Room

	rules     *ruleset.Ruleset
	machine   *game.Machine
	projector *render.Projector

	ttl    time.Duration
	now    func() time.Time
	rng    game.Rand
	locale string
	log    zerolog.Logger
}

// NewRegistry creates an empty registry playing by rules.
func NewRegistry(rules *ruleset.Ruleset, opts ...Option) *Registry {
	r := &Registry{
		rooms:  make(map[string]*models.Room),
		rules:  rules,
		ttl:    DefaultInactiveRoomTTL,
		now:    time.Now,
		locale: "pt",
		log:    zerolog.Nop(),
	}
	for _, opt := range opts {
		opt(r)
	}
	r.machine = game.NewMachine(rules, r.rng, r.now)
	r.projector = render.NewProjector(rules, r.locale)
	return r
}

// Rules returns the ruleset every room plays by.
func (r *Registry) Rules() *ruleset.Ruleset {
	return r.rules
}

// JoinRequest is a lobby:join from one transport. PlayerID is optional and
// identifies a returning player.
type JoinRequest struct {
	RoomID      string
	PlayerName  string
	TransportID string
	PlayerID    string
}

// JoinResult describes the seat the transport was bound to.
type JoinResult struct {
	RoomID       string `json:"roomId"`
	PlayerID     string `json:"playerId"`
	HostPlayerID string `json:"hostPlayerId"`
	Created      bool   `json:"created"`
	Reconnected  bool   `json:"reconnected"`
}

// CreateOrJoin creates the room on first join, adds a player to a lobby or
// reconnects a known player to a started room.
func (r *Registry) CreateOrJoin(req JoinRequest) (JoinResult, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.pruneLocked(r.now())

	roomID, err := game.NormalizeRoomID(req.RoomID)
	if err != nil {
		return JoinResult{}, err
	}
	name, err := game.NormalizePlayerName(req.PlayerName)
	if err != nil {
		return JoinResult{}, err
	}
	if req.TransportID == "" {
		return JoinResult{}, game.ErrInvalidAction.With("missing transport")
	}
	playerID := strings.TrimSpace(req.PlayerID)

	if bound, p := r.boundLocked(req.TransportID); bound != nil {
		return JoinResult{}, game.ErrAlreadyInRoom.With("this connection is already in room %s as %s", bound.ID, p.Name)
	}

	room, ok := r.rooms[roomID]
	if !ok {
		p := &models.RoomPlayer{ID: uuid.NewString(), Name: name, Connected: true, TransportID: req.TransportID}
		room = &models.Room{
			ID:           roomID,
			CreatedAt:    r.now(),
			Status:       models.StatusLobby,
			HostPlayerID: p.ID,
			Players:      []*models.RoomPlayer{p},
		}
		r.rooms[roomID] = room
		r.log.Info().Str("room", roomID).Str("player", p.ID).Msg("room created")
		return joined(room, p, true, false), nil
	}

	if room.Status != models.StatusLobby {
		return r.reconnectLocked(room, name, playerID, req.TransportID)
	}

	if len(room.Players) >= r.rules.MaxPlayers() {
		return JoinResult{}, game.ErrRoomFull
	}
	if room.PlayerByName(name) != nil {
		return JoinResult{}, game.ErrNameTaken
	}
	p := &models.RoomPlayer{ID: uuid.NewString(), Name: name, Connected: true, TransportID: req.TransportID}
	room.Players = append(room.Players, p)
	room.InactiveSince = nil
	r.log.Info().Str("room", roomID).Str("player", p.ID).Int("players", len(room.Players)).Msg("player joined")
	return joined(room, p, false, false), nil
}

// reconnectLocked rebinds a known player of a started room to transportID.
// An explicit playerID must agree with the name; presenting the right id
// takes the seat over from a live transport.
func (r *Registry) reconnectLocked(room *models.Room, name, playerID, transportID string) (JoinResult, error) {
	var p *models.RoomPlayer
	if playerID != "" {
		p = room.Player(playerID)
		if p != nil && !strings.EqualFold(p.Name, name) {
			return JoinResult{}, game.ErrIdentityMismatch
		}
	}
	if p == nil {
		p = room.PlayerByName(name)
		if p != nil && playerID != "" && p.ID != playerID {
			return JoinResult{}, game.ErrIdentityMismatch
		}
	}
	if p == nil {
		return JoinResult{}, game.ErrGameAlreadyStarted
	}
	if p.Connected && p.TransportID != "" && p.TransportID != transportID && p.ID != playerID {
		return JoinResult{}, game.ErrAlreadyConnected
	}

	p.Connected = true
	p.TransportID = transportID
	room.InactiveSince = nil
	r.log.Info().Str("room", room.ID).Str("player", p.ID).Msg("player reconnected")
	return joined(room, p, false, true), nil
}

func joined(room *models.Room, p *models.RoomPlayer, created, reconnected bool) JoinResult {
	return JoinResult{
		RoomID:       room.ID,
		PlayerID:     p.ID,
		HostPlayerID: room.HostPlayerID,
		Created:      created,
		Reconnected:  reconnected,
	}
}

// boundLocked finds the room and player holding a live binding to transportID.
func (r *Registry) boundLocked(transportID string) (*models.Room, *models.RoomPlayer) {
	for _, room := range r.rooms {
		if p := room.PlayerByTransport(transportID); p != nil && p.Connected {
			return room, p
		}
	}
	return nil, nil
}

// RemoveResult reports what a disconnect did.
type RemoveResult struct {
	RoomID      string
	PlayerID    string
	RoomDeleted bool
	Found       bool
}

// RemoveTransport handles a closed connection. Lobby players leave the
// room; players of a started room are only marked disconnected.
func (r *Registry) RemoveTransport(transportID string) RemoveResult {
	r.mu.Lock()
	defer r.mu.Unlock()
	now := r.now()
	r.pruneLocked(now)

	for _, room := range r.rooms {
		p := room.PlayerByTransport(transportID)
		if p == nil {
			continue
		}
		res := RemoveResult{RoomID: room.ID, PlayerID: p.ID, Found: true}

		if room.Status == models.StatusLobby {
			room.RemovePlayer(p.ID)
			if len(room.Players) == 0 {
				r.deleteLocked(room, "empty lobby")
				res.RoomDeleted = true
				return res
			}
			if room.HostPlayerID == p.ID {
				room.HostPlayerID = room.Players[0].ID
				r.log.Info().Str("room", room.ID).Str("host", room.HostPlayerID).Msg("host reassigned")
			}
			return res
		}

		p.Connected = false
		p.TransportID = ""
		r.log.Info().Str("room", room.ID).Str("player", p.ID).Msg("player disconnected")
		if !room.FullyDisconnected() {
			room.InactiveSince = nil
			return res
		}
		if room.Status == models.StatusFinished {
			r.deleteLocked(room, "finished and empty")
			res.RoomDeleted = true
			return res
		}
		if room.InactiveSince == nil {
			room.InactiveSince = &now
		}
		return res
	}
	return RemoveResult{}
}

// PruneInactive deletes started rooms that have been fully disconnected for
// at least the TTL and returns how many were removed.
func (r *Registry) PruneInactive(now time.Time) int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.pruneLocked(now)
}

func (r *Registry) pruneLocked(now time.Time) int {
	pruned := 0
	for _, room := range r.rooms {
		if room.Status == models.StatusLobby || room.InactiveSince == nil {
			continue
		}
		if now.Sub(*room.InactiveSince) >= r.ttl {
			r.deleteLocked(room, "inactive")
			pruned++
		}
	}
	return pruned
}

func (r *Registry) deleteLocked(room *models.Room, reason string) {
	delete(r.rooms, room.ID)
	r.log.Info().Str("room", room.ID).Str("reason", reason).Msg("room deleted")
}

// StartGame deals a new match. Only the host may start, once, with a
// player count inside the ruleset bounds.
func (r *Registry) StartGame(roomID, requesterID string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.pruneLocked(r.now())

	room, ok := r.rooms[roomID]
	if !ok {
		return game.ErrRoomNotFound
	}
	if room.Status != models.StatusLobby {
		return game.ErrGameAlreadyStarted
	}
	if room.HostPlayerID != requesterID {
		return game.ErrNotHost
	}
	if n := len(room.Players); n < r.rules.MinPlayers() {
		return game.ErrNotEnoughPlayers.With("need at least %d players to start", r.rules.MinPlayers())
	} else if n > r.rules.MaxPlayers() {
		return game.ErrRoomFull
	}

	room.Game = r.machine.NewGame(room.Players)
	room.Status = models.StatusInProgress
	room.InactiveSince = nil
	for _, gp := range room.Game.Players {
		if rp := room.Player(gp.ID); rp != nil {
			rp.Color = gp.Color
		}
	}
	r.log.Info().Str("room", roomID).Str("game", room.Game.ID).Int("players", len(room.Players)).Msg("game started")
	return nil
}

// ApplyAction applies one game action for playerID. The room follows its
// game into FINISHED when the action produced a winner.
func (r *Registry) ApplyAction(roomID, playerID string, action game.Action) (*game.ActionResult, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.pruneLocked(r.now())

	room, ok := r.rooms[roomID]
	if !ok {
		return nil, game.ErrRoomNotFound
	}
	if room.Status == models.StatusLobby || room.Game == nil {
		return nil, game.ErrGameNotStarted
	}

	result, err := r.machine.Apply(room.Game, playerID, action)
	if err != nil {
		return nil, err
	}
	if room.Game.Status == models.StatusFinished && room.Status != models.StatusFinished {
		room.Status = models.StatusFinished
		r.log.Info().Str("room", roomID).Str("winner", room.Game.WinnerPlayerID).Int("round", room.Game.Round).Msg("game finished")
	}
	return result, nil
}

// IsActiveTransportForPlayer reports whether transportID is the live binding
// of playerID. Actions from a superseded transport must be rejected.
func (r *Registry) IsActiveTransportForPlayer(roomID, playerID, transportID string) bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.pruneLocked(r.now())

	room, ok := r.rooms[roomID]
	if !ok {
		return false
	}
	p := room.Player(playerID)
	return p != nil && p.Connected && p.TransportID == transportID
}

// Snapshot projects the room as seen by viewerID.
func (r *Registry) Snapshot(roomID, viewerID string) (*render.Snapshot, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.pruneLocked(r.now())

	room, ok := r.rooms[roomID]
	if !ok {
		return nil, game.ErrRoomNotFound
	}
	return r.projector.Base(room, nil).ForPlayer(viewerID), nil
}

// SnapshotsByPlayer projects the room once and derives a snapshot for every
// room player. last is attached when the broadcast follows an attack.
func (r *Registry) SnapshotsByPlayer(roomID string, last *game.BattleResult) (map[string]*render.Snapshot, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.pruneLocked(r.now())

	room, ok := r.rooms[roomID]
	if !ok {
		return nil, game.ErrRoomNotFound
	}
	ids := make([]string, len(room.Players))
	for i, p := range room.Players {
		ids[i] = p.ID
	}
	return r.projector.Base(room, last).ForPlayers(ids), nil
}

// Delivery is one personalised snapshot addressed to a live transport.
type Delivery struct {
	PlayerID    string
	TransportID string
	Snapshot    *render.Snapshot
}

// Deliveries builds the state broadcast for every connected player of the
// room. It returns nil when the room no longer exists.
func (r *Registry) Deliveries(roomID string, last *game.BattleResult) []Delivery {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.pruneLocked(r.now())

	room, ok := r.rooms[roomID]
	if !ok {
		return nil
	}
	base := r.projector.Base(room, last)
	out := make([]Delivery, 0, len(room.Players))
	for _, p := range room.Players {
		if !p.Connected || p.TransportID == "" {
			continue
		}
		out = append(out, Delivery{PlayerID: p.ID, TransportID: p.TransportID, Snapshot: base.ForPlayer(p.ID)})
	}
	return out
}

// RoomInfo is a public summary of a room.
type RoomInfo struct {
	ID          string        `json:"roomId"`
	Status      models.Status `json:"status"`
	PlayerCount int           `json:"playerCount"`
	MaxPlayers  int           `json:"maxPlayers"`
	CreatedAt   time.Time     `json:"createdAt"`
}

// Get returns the summary of roomID.
func (r *Registry) Get(roomID string) (RoomInfo, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.pruneLocked(r.now())

	room, ok := r.rooms[roomID]
	if !ok {
		return RoomInfo{}, false
	}
	return RoomInfo{
		ID:          room.ID,
		Status:      room.Status,
		PlayerCount: len(room.Players),
		MaxPlayers:  r.rules.MaxPlayers(),
		CreatedAt:   room.CreatedAt,
	}, true
}

// Exists checks if a room id is in use
func (r *Registry) Exists(roomID string) bool {
	_, ok := r.Get(roomID)
	return ok
}

// Len returns the number of live rooms.
func (r *Registry) Len() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.pruneLocked(r.now())
	return len(r.rooms)
}
