package game

import (
	"fmt"
	"math/rand"
	"slices"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/aaronzipp/brisk/internal/combat"
	"github.com/aaronzipp/brisk/internal/models"
	"github.com/aaronzipp/brisk/internal/objective"
	"github.com/aaronzipp/brisk/internal/ruleset"
)

// Rand is the source of every random decision in a match. *math/rand.Rand
// satisfies it.
type Rand interface {
	Intn(n int) int
	Shuffle(n int, swap func(i, j int))
}

// Machine applies the classic rules to games. It holds no per-game state;
// callers serialise access to each *models.Game.
type Machine struct {
	rules *ruleset.Ruleset
	rng   Rand
	now   func() time.Time
}

// NewMachine builds a machine over rules. A nil rng is replaced by a
// time-seeded generator and a nil now by time.Now.
func NewMachine(rules *ruleset.Ruleset, rng Rand, now func() time.Time) *Machine {
	if rng == nil {
		rng = rand.New(rand.NewSource(time.Now().UnixNano()))
	}
	if now == nil {
		now = time.Now
	}
	return &Machine{rules: rules, rng: rng, now: now}
}

// Rules returns the ruleset the machine enforces.
func (m *Machine) Rules() *ruleset.Ruleset {
	return m.rules
}

// NewGame deals a fresh match for roster: colors, objectives, turn order,
// territories and starting armies. The first player in turn order starts
// in REINFORCE with its reinforcement in reserve.
func (m *Machine) NewGame(roster []*models.RoomPlayer) *models.Game {
	colors := m.rules.PlayerColors()
	m.rng.Shuffle(len(colors), func(i, j int) { colors[i], colors[j] = colors[j], colors[i] })

	players := make([]*models.GamePlayer, len(roster))
	for i, rp := range roster {
		players[i] = &models.GamePlayer{
			ID:    rp.ID,
			Name:  rp.Name,
			Color: colors[i],
			Alive: true,
		}
	}
	m.assignObjectives(players)

	order := slices.Clone(players)
	m.rng.Shuffle(len(order), func(i, j int) { order[i], order[j] = order[j], order[i] })

	now := m.now()
	g := &models.Game{
		ID:          uuid.NewString(),
		Status:      models.StatusInProgress,
		Round:       1,
		Players:     order,
		Territories: make(map[string]*models.TerritoryState, len(m.rules.Map.Territories)),
		CreatedAt:   now,
		UpdatedAt:   now,
	}

	territoryIDs := m.rules.TerritoryIDs()
	deal := slices.Clone(territoryIDs)
	m.rng.Shuffle(len(deal), func(i, j int) { deal[i], deal[j] = deal[j], deal[i] })
	for i, id := range deal {
		g.Territories[id] = &models.TerritoryState{OwnerID: order[i%len(order)].ID, Armies: 1}
	}

	pool := m.rules.StartingArmies(len(order))
	for _, p := range order {
		owned := g.OwnedTerritoryIDs(territoryIDs, p.ID)
		for range max(0, pool-len(owned)) {
			g.Territories[owned[m.rng.Intn(len(owned))]].Armies++
		}
	}

	first := order[0]
	g.Turn = models.Turn{CurrentPlayerID: first.ID, Phase: models.PhaseReinforce}
	first.ReserveArmies = m.Reinforcement(g, first.ID)
	m.addLog(g, "%s starts the match.", first.Name)
	return g
}

// assignObjectives deals one card per player from a shuffled deck. A card
// ordering a player to eliminate its own color goes back to the bottom of
// the deck; after a bounded number of redraws the default objective is used.
func (m *Machine) assignObjectives(players []*models.GamePlayer) {
	deck := m.rules.ObjectiveIDs()
	m.rng.Shuffle(len(deck), func(i, j int) { deck[i], deck[j] = deck[j], deck[i] })
	limit := 2 * len(deck)

	draw := func() string {
		if len(deck) == 0 {
			return ""
		}
		id := deck[0]
		deck = deck[1:]
		return id
	}

	for _, p := range players {
		id := draw()
		for safety := 0; id != "" && m.targetsOwnColor(id, p.Color) && safety < limit; safety++ {
			deck = append(deck, id)
			id = draw()
		}
		if id == "" || m.targetsOwnColor(id, p.Color) {
			id = m.rules.DefaultObjectiveID()
		}
		p.ObjectiveID = id
	}
}

func (m *Machine) targetsOwnColor(objectiveID string, color ruleset.Color) bool {
	o, ok := m.rules.Objective(objectiveID)
	return ok && o.Predicate.Kind == ruleset.KindEliminateColor && o.Predicate.Color == color
}

// Reinforcement is the number of armies playerID receives at the start of
// its turn: max(minimum, owned/divisor) plus every fully owned continent's bonus.
func (m *Machine) Reinforcement(g *models.Game, playerID string) int {
	owned := g.TerritoryCounts()[playerID]
	r := m.rules.Constants.Reinforcement
	return max(r.Minimum, owned/r.TerritoryDivisor) + objective.ContinentBonus(m.rules, g, playerID)
}

// Apply validates and applies action for playerID. A failed action leaves
// the game untouched.
func (m *Machine) Apply(g *models.Game, playerID string, action Action) (*ActionResult, error) {
	p := action.Payload
	result := &ActionResult{}
	var err error
	switch action.Type {
	case ActionPlaceReinforcement:
		err = m.PlaceReinforcement(g, playerID, p.TerritoryID)
	case ActionAttack:
		result.Battle, err = m.Attack(g, playerID, p.FromTerritoryID, p.ToTerritoryID, p.AttackDice)
	case ActionEndAttackPhase:
		err = m.EndAttackPhase(g, playerID)
	case ActionFortify:
		err = m.Fortify(g, playerID, p.FromTerritoryID, p.ToTerritoryID, p.Armies)
	case ActionEndTurn:
		err = m.EndTurn(g, playerID)
	case "":
		err = ErrInvalidAction
	default:
		err = ErrInvalidAction.With("unknown action type: %s", action.Type)
	}
	if err != nil {
		return nil, err
	}
	return result, nil
}

// PlaceReinforcement moves one reserve army onto territoryID.
func (m *Machine) PlaceReinforcement(g *models.Game, playerID, territoryID string) error {
	player, err := m.currentTurn(g, playerID)
	if err != nil {
		return err
	}
	if g.Turn.Phase != models.PhaseReinforce {
		return ErrWrongPhase.With("reinforcement is only allowed during %s", models.PhaseReinforce)
	}
	if player.ReserveArmies < 1 {
		return ErrNoReserve
	}
	t, err := m.territory(g, territoryID)
	if err != nil {
		return err
	}
	if t.OwnerID != player.ID {
		return ErrNotOwner.With("you can only reinforce your own territories")
	}

	t.Armies++
	player.ReserveArmies--
	m.addLog(g, "%s reinforced %s (+1).", player.Name, territoryID)
	if player.ReserveArmies == 0 {
		g.Turn.Phase = models.PhaseAttack
		m.addLog(g, "%s entered the attack phase.", player.Name)
	}
	m.settle(g)
	return nil
}

// Attack resolves one battle from fromID against toID. attackDice is
// clamped to what the origin can afford.
func (m *Machine) Attack(g *models.Game, playerID, fromID, toID string, attackDice int) (*BattleResult, error) {
	player, err := m.currentTurn(g, playerID)
	if err != nil {
		return nil, err
	}
	if g.Turn.Phase != models.PhaseAttack {
		return nil, ErrWrongPhase.With("attack is only allowed during %s", models.PhaseAttack)
	}
	from, err := m.territory(g, fromID)
	if err != nil {
		return nil, err
	}
	to, err := m.territory(g, toID)
	if err != nil {
		return nil, err
	}
	if from.OwnerID != player.ID {
		return nil, ErrNotOwner.With("attack origin must be your territory")
	}
	if to.OwnerID == player.ID {
		return nil, ErrNotEnemy
	}
	if !m.rules.Adjacent(fromID, toID) {
		return nil, ErrNotAdjacent
	}
	if from.Armies < MinAttackArmies {
		return nil, ErrInsufficientArmies.With("need at least %d armies to attack", MinAttackArmies)
	}

	attackDice = max(1, min(attackDice, m.rules.AttackDiceMax(), from.Armies-1))
	defenseDice := min(m.rules.DefenseDiceMax(), to.Armies)
	outcome := combat.Resolve(m.rng, attackDice, defenseDice)

	from.Armies -= outcome.AttackerLosses
	to.Armies -= outcome.DefenderLosses

	result := &BattleResult{
		FromTerritoryID: fromID,
		ToTerritoryID:   toID,
		AttackRolls:     outcome.AttackRolls,
		DefenseRolls:    outcome.DefenseRolls,
		AttackerLosses:  outcome.AttackerLosses,
		DefenderLosses:  outcome.DefenderLosses,
	}

	if to.Armies <= 0 {
		previousOwner := to.OwnerID
		moved := max(1, min(attackDice, from.Armies-1))
		to.OwnerID = player.ID
		to.Armies = moved
		from.Armies -= moved
		result.Conquered = true
		result.MovedArmies = moved
		g.Turn.ConqueredThisTurn = true
		m.addLog(g, "%s conquered %s.", player.Name, toID)
		m.eliminateIfDefeated(g, previousOwner, player.ID)
	}

	m.addLog(g, "%s attacked %s from %s (A:%s vs D:%s).",
		player.Name, toID, fromID, joinRolls(outcome.AttackRolls), joinRolls(outcome.DefenseRolls))
	m.settle(g)
	return result, nil
}

// EndAttackPhase moves the current player from ATTACK to FORTIFY.
func (m *Machine) EndAttackPhase(g *models.Game, playerID string) error {
	player, err := m.currentTurn(g, playerID)
	if err != nil {
		return err
	}
	if g.Turn.Phase != models.PhaseAttack {
		return ErrWrongPhase.With("cannot end the attack phase from %s", g.Turn.Phase)
	}
	g.Turn.Phase = models.PhaseFortify
	g.Turn.FortifiedThisTurn = false
	m.addLog(g, "%s entered the fortify phase.", player.Name)
	m.settle(g)
	return nil
}

// Fortify moves armies between two adjacent owned territories, once per turn.
func (m *Machine) Fortify(g *models.Game, playerID, fromID, toID string, armies int) error {
	player, err := m.currentTurn(g, playerID)
	if err != nil {
		return err
	}
	if g.Turn.Phase != models.PhaseFortify {
		return ErrWrongPhase.With("fortify is only allowed during %s", models.PhaseFortify)
	}
	if g.Turn.FortifiedThisTurn {
		return ErrAlreadyFortified
	}
	from, err := m.territory(g, fromID)
	if err != nil {
		return err
	}
	to, err := m.territory(g, toID)
	if err != nil {
		return err
	}
	if from.OwnerID != player.ID || to.OwnerID != player.ID {
		return ErrNotOwner.With("fortify can only move armies between your territories")
	}
	if !m.rules.Adjacent(fromID, toID) {
		return ErrNotAdjacent
	}
	if armies < 1 {
		return ErrInvalidArmies
	}
	if from.Armies <= armies {
		return ErrInsufficientArmies.With("you must leave at least one army behind")
	}

	from.Armies -= armies
	to.Armies += armies
	g.Turn.FortifiedThisTurn = true
	m.addLog(g, "%s moved %d from %s to %s.", player.Name, armies, fromID, toID)
	m.settle(g)
	return nil
}

// EndTurn hands the turn to the next living player in turn order and
// credits its reinforcement. The round advances when the order wraps.
func (m *Machine) EndTurn(g *models.Game, playerID string) error {
	player, err := m.currentTurn(g, playerID)
	if err != nil {
		return err
	}
	if g.Turn.Phase == models.PhaseReinforce && player.ReserveArmies > 0 {
		return ErrReserveRemaining
	}

	current := g.PlayerIndex(player.ID)
	nextIndex := -1
	for offset := 1; offset <= len(g.Players); offset++ {
		i := (current + offset) % len(g.Players)
		if g.Players[i].Alive {
			nextIndex = i
			break
		}
	}
	if nextIndex < 0 {
		return ErrGameNotInProgress
	}
	if nextIndex <= current {
		g.Round++
	}

	next := g.Players[nextIndex]
	g.Turn = models.Turn{CurrentPlayerID: next.ID, Phase: models.PhaseReinforce}
	next.ReserveArmies = m.Reinforcement(g, next.ID)
	m.addLog(g, "%s's turn. Received %d armies.", next.Name, next.ReserveArmies)
	m.settle(g)
	return nil
}

// currentTurn checks the common preconditions of every action.
func (m *Machine) currentTurn(g *models.Game, playerID string) (*models.GamePlayer, error) {
	if g == nil || g.Status != models.StatusInProgress {
		return nil, ErrGameNotInProgress
	}
	if g.Turn.CurrentPlayerID != playerID {
		return nil, ErrNotYourTurn
	}
	player := g.Player(playerID)
	if player == nil || !player.Alive {
		return nil, ErrPlayerEliminated
	}
	return player, nil
}

func (m *Machine) territory(g *models.Game, id string) (*models.TerritoryState, error) {
	if _, ok := m.rules.Territory(id); !ok {
		return nil, ErrUnknownTerritory.With("unknown territory: %s", id)
	}
	t, ok := g.Territories[id]
	if !ok {
		return nil, ErrUnknownTerritory.With("unknown territory: %s", id)
	}
	return t, nil
}

// eliminateIfDefeated attributes the elimination of defeatedID to
// conquerorID once it holds no territory.
func (m *Machine) eliminateIfDefeated(g *models.Game, defeatedID, conquerorID string) {
	if g.TerritoryCounts()[defeatedID] > 0 {
		return
	}
	defeated := g.Player(defeatedID)
	if defeated == nil || !defeated.Alive {
		return
	}
	at := m.now()
	defeated.Alive = false
	defeated.ReserveArmies = 0
	defeated.EliminatedByPlayerID = conquerorID
	defeated.EliminatedAt = &at
	m.addLog(g, "%s was eliminated.", defeated.Name)
}

// settle runs after every successful action: it marks territory-less
// players as eliminated, checks for a winner and stamps the update time.
func (m *Machine) settle(g *models.Game) {
	counts := g.TerritoryCounts()
	for _, p := range g.Players {
		if p.Alive && counts[p.ID] < 1 {
			p.Alive = false
			p.ReserveArmies = 0
			if p.EliminatedAt == nil {
				at := m.now()
				p.EliminatedAt = &at
			}
		}
	}
	m.checkWinner(g)
	g.UpdatedAt = m.now()
}

// checkWinner ends the game on domination or on the first completed
// objective, evaluated in turn order.
func (m *Machine) checkWinner(g *models.Game) {
	if g.Status != models.StatusInProgress {
		return
	}
	alive := g.AlivePlayers()
	if len(alive) == 1 {
		m.finish(g, alive[0])
		m.addLog(g, "%s won by total domination.", alive[0].Name)
		return
	}
	for _, p := range alive {
		if objective.Completed(m.rules, g, p) {
			m.finish(g, p)
			m.addLog(g, "%s completed their objective and won.", p.Name)
			return
		}
	}
}

func (m *Machine) finish(g *models.Game, winner *models.GamePlayer) {
	g.Status = models.StatusFinished
	g.WinnerPlayerID = winner.ID
}

// addLog prepends an entry and trims the log to MaxLogs.
func (m *Machine) addLog(g *models.Game, format string, args ...any) {
	entry := models.LogEntry{ID: uuid.NewString(), At: m.now(), Text: fmt.Sprintf(format, args...)}
	g.Logs = slices.Insert(g.Logs, 0, entry)
	if len(g.Logs) > MaxLogs {
		g.Logs = g.Logs[:MaxLogs]
	}
}

func joinRolls(rolls []int) string {
	parts := make([]string, len(rolls))
	for i, r := range rolls {
		parts[i] = fmt.Sprint(r)
	}
	return strings.Join(parts, ",")
}
