package store

import (
	"fmt"
	"math/rand"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/aaronzipp/brisk/internal/game"
	"github.com/aaronzipp/brisk/internal/models"
	"github.com/aaronzipp/brisk/internal/ruleset"
)

type fakeClock struct {
	now time.Time
}

func (c *fakeClock) Now() time.Time          { return c.now }
func (c *fakeClock) Advance(d time.Duration) { c.now = c.now.Add(d) }

func newRegistry(t *testing.T) (*Registry, *fakeClock) {
	t.Helper()
	rules, err := ruleset.Default()
	require.NoError(t, err)
	clock := &fakeClock{now: time.Date(2025, 5, 1, 20, 0, 0, 0, time.UTC)}
	reg := NewRegistry(rules,
		WithClock(clock.Now),
		WithRand(rand.New(rand.NewSource(42))),
		WithTTL(15*time.Minute),
	)
	return reg, clock
}

func join(t *testing.T, reg *Registry, room, name, transport string) JoinResult {
	t.Helper()
	res, err := reg.CreateOrJoin(JoinRequest{RoomID: room, PlayerName: name, TransportID: transport})
	require.NoError(t, err)
	return res
}

// startedRoom creates room WAR1 with Ana (t1, host), Bia (t2) and Caio (t3)
// and starts it.
func startedRoom(t *testing.T, reg *Registry) (host, second, third JoinResult) {
	t.Helper()
	host = join(t, reg, "war1", "Ana", "t1")
	second = join(t, reg, "war1", "Bia", "t2")
	third = join(t, reg, "war1", "Caio", "t3")
	require.NoError(t, reg.StartGame("WAR1", host.PlayerID))
	return host, second, third
}

func TestCreateOrJoinCreatesLobby(t *testing.T) {
	reg, _ := newRegistry(t)

	res := join(t, reg, " war-1 ", "  Ana   Maria ", "t1")
	assert.Equal(t, "WAR1", res.RoomID)
	assert.True(t, res.Created)
	assert.False(t, res.Reconnected)
	assert.Equal(t, res.PlayerID, res.HostPlayerID)
	assert.Equal(t, 1, reg.Len())

	s, err := reg.Snapshot("WAR1", res.PlayerID)
	require.NoError(t, err)
	require.Len(t, s.Players, 1)
	assert.Equal(t, "Ana Maria", s.Players[0].Name)
	assert.Equal(t, models.StatusLobby, s.Status)
}

func TestCreateOrJoinLobbyRules(t *testing.T) {
	reg, _ := newRegistry(t)
	host := join(t, reg, "WAR1", "Ana", "t1")

	second := join(t, reg, "war1", "Bia", "t2")
	assert.False(t, second.Created)
	assert.Equal(t, host.PlayerID, second.HostPlayerID)
	assert.NotEqual(t, host.PlayerID, second.PlayerID)

	_, err := reg.CreateOrJoin(JoinRequest{RoomID: "WAR1", PlayerName: "ANA", TransportID: "t3"})
	assert.ErrorIs(t, err, game.ErrNameTaken)

	for i := 3; i <= 6; i++ {
		join(t, reg, "WAR1", fmt.Sprintf("Player %d", i), fmt.Sprintf("t%d", i))
	}
	_, err = reg.CreateOrJoin(JoinRequest{RoomID: "WAR1", PlayerName: "Late", TransportID: "t7"})
	assert.ErrorIs(t, err, game.ErrRoomFull)

	_, err = reg.CreateOrJoin(JoinRequest{RoomID: "W!", PlayerName: "Zoe", TransportID: "t8"})
	assert.ErrorIs(t, err, game.ErrInvalidRoomID)
	_, err = reg.CreateOrJoin(JoinRequest{RoomID: "WAR2", PlayerName: " Z ", TransportID: "t8"})
	assert.ErrorIs(t, err, game.ErrInvalidPlayerName)
	assert.Equal(t, 1, reg.Len())
}

func TestTransportCanOnlyHoldOneSeat(t *testing.T) {
	reg, _ := newRegistry(t)
	join(t, reg, "WAR1", "Ana", "t1")

	_, err := reg.CreateOrJoin(JoinRequest{RoomID: "WAR2", PlayerName: "Ana", TransportID: "t1"})
	assert.ErrorIs(t, err, game.ErrAlreadyInRoom)
	_, err = reg.CreateOrJoin(JoinRequest{RoomID: "WAR1", PlayerName: "Other", TransportID: "t1"})
	assert.ErrorIs(t, err, game.ErrAlreadyInRoom)
	assert.Equal(t, 1, reg.Len())
}

func TestRemoveTransportFromLobby(t *testing.T) {
	reg, _ := newRegistry(t)
	host := join(t, reg, "WAR1", "Ana", "t1")
	second := join(t, reg, "WAR1", "Bia", "t2")
	join(t, reg, "WAR1", "Caio", "t3")

	res := reg.RemoveTransport("t3")
	assert.True(t, res.Found)
	assert.False(t, res.RoomDeleted)

	res = reg.RemoveTransport("t1")
	assert.Equal(t, host.PlayerID, res.PlayerID)
	s, err := reg.Snapshot("WAR1", second.PlayerID)
	require.NoError(t, err)
	assert.Equal(t, second.PlayerID, s.HostPlayerID, "host passes to the first remaining player")
	assert.Len(t, s.Players, 1)

	res = reg.RemoveTransport("t2")
	assert.True(t, res.RoomDeleted)
	assert.Zero(t, reg.Len())

	assert.False(t, reg.RemoveTransport("unknown").Found)
}

func TestStartGame(t *testing.T) {
	reg, _ := newRegistry(t)
	host := join(t, reg, "WAR1", "Ana", "t1")
	second := join(t, reg, "WAR1", "Bia", "t2")

	assert.ErrorIs(t, reg.StartGame("WAR1", host.PlayerID), game.ErrNotEnoughPlayers)
	join(t, reg, "WAR1", "Caio", "t3")
	assert.ErrorIs(t, reg.StartGame("WAR1", second.PlayerID), game.ErrNotHost)
	assert.ErrorIs(t, reg.StartGame("NOPE", host.PlayerID), game.ErrRoomNotFound)

	require.NoError(t, reg.StartGame("WAR1", host.PlayerID))
	assert.ErrorIs(t, reg.StartGame("WAR1", host.PlayerID), game.ErrGameAlreadyStarted)

	room := reg.rooms["WAR1"]
	assert.Equal(t, models.StatusInProgress, room.Status)
	require.NotNil(t, room.Game)
	assert.Equal(t, 1, room.Game.Round)
	assert.Equal(t, models.PhaseReinforce, room.Game.Turn.Phase)
	for _, rp := range room.Players {
		gp := room.Game.Player(rp.ID)
		require.NotNil(t, gp)
		assert.Equal(t, gp.Color, rp.Color)
	}
	current := room.Game.CurrentPlayer()
	require.NotNil(t, current)
	assert.True(t, current.Alive)

	_, err := reg.CreateOrJoin(JoinRequest{RoomID: "WAR1", PlayerName: "Newcomer", TransportID: "t9"})
	assert.ErrorIs(t, err, game.ErrGameAlreadyStarted)
}

func TestReconnect(t *testing.T) {
	reg, _ := newRegistry(t)
	_, second, _ := startedRoom(t, reg)

	res := reg.RemoveTransport("t2")
	assert.True(t, res.Found)
	assert.False(t, res.RoomDeleted)
	assert.False(t, reg.IsActiveTransportForPlayer("WAR1", second.PlayerID, "t2"))

	back, err := reg.CreateOrJoin(JoinRequest{RoomID: "WAR1", PlayerName: "bia", TransportID: "t20", PlayerID: second.PlayerID})
	require.NoError(t, err)
	assert.True(t, back.Reconnected)
	assert.Equal(t, second.PlayerID, back.PlayerID)
	assert.True(t, reg.IsActiveTransportForPlayer("WAR1", second.PlayerID, "t20"))

	// presenting the id again from a new transport takes the seat over
	again, err := reg.CreateOrJoin(JoinRequest{RoomID: "WAR1", PlayerName: "Bia", TransportID: "t21", PlayerID: second.PlayerID})
	require.NoError(t, err)
	assert.Equal(t, second.PlayerID, again.PlayerID)
	assert.True(t, reg.IsActiveTransportForPlayer("WAR1", second.PlayerID, "t21"))
	assert.False(t, reg.IsActiveTransportForPlayer("WAR1", second.PlayerID, "t20"))
	assert.Len(t, reg.rooms["WAR1"].Players, 3)
}

func TestReconnectConflicts(t *testing.T) {
	reg, _ := newRegistry(t)
	host, second, _ := startedRoom(t, reg)

	_, err := reg.CreateOrJoin(JoinRequest{RoomID: "WAR1", PlayerName: "Bia", TransportID: "t9"})
	assert.ErrorIs(t, err, game.ErrAlreadyConnected, "name only, seat is live")

	_, err = reg.CreateOrJoin(JoinRequest{RoomID: "WAR1", PlayerName: "Caio", TransportID: "t9", PlayerID: second.PlayerID})
	assert.ErrorIs(t, err, game.ErrIdentityMismatch, "id belongs to another name")

	_, err = reg.CreateOrJoin(JoinRequest{RoomID: "WAR1", PlayerName: "Ana", TransportID: "t9", PlayerID: "forged"})
	assert.ErrorIs(t, err, game.ErrIdentityMismatch, "name belongs to another id")

	reg.RemoveTransport("t1")
	back, err := reg.CreateOrJoin(JoinRequest{RoomID: "WAR1", PlayerName: "ANA", TransportID: "t9"})
	require.NoError(t, err)
	assert.Equal(t, host.PlayerID, back.PlayerID, "disconnected seat can be reclaimed by name")
}

func TestInactiveRoomIsPrunedAfterTTL(t *testing.T) {
	reg, clock := newRegistry(t)
	startedRoom(t, reg)

	reg.RemoveTransport("t1")
	reg.RemoveTransport("t2")
	res := reg.RemoveTransport("t3")
	assert.False(t, res.RoomDeleted)
	room := reg.rooms["WAR1"]
	require.NotNil(t, room.InactiveSince)
	assert.Equal(t, clock.now, *room.InactiveSince)

	clock.Advance(14 * time.Minute)
	assert.Equal(t, 1, reg.Len())

	clock.Advance(time.Minute)
	assert.Zero(t, reg.Len())
}

func TestReconnectClearsInactivity(t *testing.T) {
	reg, clock := newRegistry(t)
	startedRoom(t, reg)
	for _, tid := range []string{"t1", "t2", "t3"} {
		reg.RemoveTransport(tid)
	}

	clock.Advance(10 * time.Minute)
	join(t, reg, "WAR1", "Caio", "t30")
	assert.Nil(t, reg.rooms["WAR1"].InactiveSince)

	clock.Advance(10 * time.Minute)
	assert.Equal(t, 1, reg.Len())

	reg.RemoveTransport("t30")
	assert.Zero(t, reg.PruneInactive(clock.now.Add(14*time.Minute)))
	assert.Equal(t, 1, reg.PruneInactive(clock.now.Add(15*time.Minute)))
}

func TestLobbyIsNeverPruned(t *testing.T) {
	reg, clock := newRegistry(t)
	join(t, reg, "WAR1", "Ana", "t1")

	clock.Advance(24 * time.Hour)
	assert.Zero(t, reg.PruneInactive(clock.now))
	assert.Equal(t, 1, reg.Len())
}

func TestFinishedRoomDeletedWhenEmpty(t *testing.T) {
	reg, _ := newRegistry(t)
	startedRoom(t, reg)
	room := reg.rooms["WAR1"]
	room.Status = models.StatusFinished
	room.Game.Status = models.StatusFinished

	assert.False(t, reg.RemoveTransport("t1").RoomDeleted)
	assert.False(t, reg.RemoveTransport("t2").RoomDeleted)
	assert.True(t, reg.RemoveTransport("t3").RoomDeleted)
	assert.Zero(t, reg.Len())
}

func TestApplyAction(t *testing.T) {
	reg, _ := newRegistry(t)
	host := join(t, reg, "WAR1", "Ana", "t1")
	join(t, reg, "WAR1", "Bia", "t2")
	join(t, reg, "WAR1", "Caio", "t3")

	_, err := reg.ApplyAction("WAR1", host.PlayerID, game.Action{Type: game.ActionEndTurn})
	assert.ErrorIs(t, err, game.ErrGameNotStarted)
	_, err = reg.ApplyAction("NOPE", host.PlayerID, game.Action{Type: game.ActionEndTurn})
	assert.ErrorIs(t, err, game.ErrRoomNotFound)

	require.NoError(t, reg.StartGame("WAR1", host.PlayerID))
	g := reg.rooms["WAR1"].Game
	current := g.Turn.CurrentPlayerID
	owned := g.OwnedTerritoryIDs(reg.Rules().TerritoryIDs(), current)
	require.NotEmpty(t, owned)
	before := g.Territories[owned[0]].Armies

	_, err = reg.ApplyAction("WAR1", current, game.Action{
		Type:    game.ActionPlaceReinforcement,
		Payload: game.Payload{TerritoryID: owned[0]},
	})
	require.NoError(t, err)
	assert.Equal(t, before+1, g.Territories[owned[0]].Armies)

	var other string
	for _, p := range g.Players {
		if p.ID != current {
			other = p.ID
			break
		}
	}
	_, err = reg.ApplyAction("WAR1", other, game.Action{Type: game.ActionEndTurn})
	assert.ErrorIs(t, err, game.ErrNotYourTurn)
}

func TestRoomFinishesWithItsGame(t *testing.T) {
	reg, _ := newRegistry(t)
	startedRoom(t, reg)
	room := reg.rooms["WAR1"]
	current := room.Game.Turn.CurrentPlayerID
	for _, terr := range room.Game.Territories {
		terr.OwnerID = current
	}

	_, err := reg.ApplyAction("WAR1", current, game.Action{
		Type:    game.ActionPlaceReinforcement,
		Payload: game.Payload{TerritoryID: "ALASKA"},
	})
	require.NoError(t, err)
	assert.Equal(t, models.StatusFinished, room.Status)
	assert.Equal(t, current, room.Game.WinnerPlayerID)

	_, err = reg.ApplyAction("WAR1", current, game.Action{Type: game.ActionEndTurn})
	assert.ErrorIs(t, err, game.ErrGameNotInProgress)
}

func TestSnapshotsAndDeliveries(t *testing.T) {
	reg, _ := newRegistry(t)
	host, second, third := startedRoom(t, reg)
	reg.RemoveTransport("t3")

	all, err := reg.SnapshotsByPlayer("WAR1", nil)
	require.NoError(t, err)
	assert.Len(t, all, 3)
	for viewer, s := range all {
		assert.Equal(t, viewer, s.YouPlayerID)
		for _, pv := range s.Players {
			if pv.ID != viewer {
				assert.Nil(t, pv.ObjectiveText)
			}
		}
	}

	deliveries := reg.Deliveries("WAR1", nil)
	require.Len(t, deliveries, 2)
	byPlayer := map[string]string{}
	for _, d := range deliveries {
		byPlayer[d.PlayerID] = d.TransportID
		assert.Equal(t, d.PlayerID, d.Snapshot.YouPlayerID)
	}
	assert.Equal(t, map[string]string{host.PlayerID: "t1", second.PlayerID: "t2"}, byPlayer)
	assert.NotContains(t, byPlayer, third.PlayerID)
	assert.Same(t, deliveries[0].Snapshot.Game, deliveries[1].Snapshot.Game)

	assert.Nil(t, reg.Deliveries("NOPE", nil))
	_, err = reg.Snapshot("NOPE", host.PlayerID)
	assert.ErrorIs(t, err, game.ErrRoomNotFound)
	_, err = reg.SnapshotsByPlayer("NOPE", nil)
	assert.ErrorIs(t, err, game.ErrRoomNotFound)
}

func TestGetAndExists(t *testing.T) {
	reg, clock := newRegistry(t)
	join(t, reg, "WAR1", "Ana", "t1")

	info, ok := reg.Get("WAR1")
	require.True(t, ok)
	assert.Equal(t, RoomInfo{ID: "WAR1", Status: models.StatusLobby, PlayerCount: 1, MaxPlayers: 6, CreatedAt: clock.now}, info)
	assert.True(t, reg.Exists("WAR1"))
	assert.False(t, reg.Exists("WAR2"))
}
