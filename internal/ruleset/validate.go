package ruleset

import (
	"errors"
	"fmt"
	"slices"
	"strconv"
)

const (
	expectedContinents  = 6
	expectedTerritories = 42
	selfTargetRedraw    = "REDRAW_OBJECTIVE"
)

var cardSymbols = map[string]bool{"CIRCULO": true, "TRIANGULO": true, "QUADRADO": true}

// validator accumulates every problem found instead of stopping at the first.
type validator struct {
	errs []error
}

func (v *validator) addf(path, format string, args ...any) {
	v.errs = append(v.errs, fmt.Errorf("%s: %s", path, fmt.Sprintf(format, args...)))
}

// Validate checks the structural invariants the game engine relies on:
// unique ids, symmetric adjacency, consistent continent membership, a
// resolvable and acyclic objective fallback graph and one ELIMINATE_COLOR
// card per color.
func Validate(r *Ruleset) error {
	v := &validator{}
	continents := validateMap(v, &r.Map)
	validateConstants(v, &r.Constants)
	validateObjectives(v, &r.Objectives, continents, r.Constants.Objectives.DefaultObjectiveID)
	if r.Map.RulesetID != r.Constants.RulesetID || r.Objectives.RulesetID != r.Constants.RulesetID {
		v.addf("rulesetId", "map, objectives and constants must share one ruleset id")
	}
	return errors.Join(v.errs...)
}

func validateMap(v *validator, m *MapData) map[string]*Continent {
	if len(m.Continents) != expectedContinents {
		v.addf("map.continents", "must contain %d continents, got %d", expectedContinents, len(m.Continents))
	}
	if len(m.Territories) != expectedTerritories {
		v.addf("map.territories", "must contain %d territories, got %d", expectedTerritories, len(m.Territories))
	}

	continents := make(map[string]*Continent, len(m.Continents))
	declared := make(map[string]string) // territory id -> continent id declaring it
	for i := range m.Continents {
		c := &m.Continents[i]
		path := fmt.Sprintf("map.continents[%d]", i)
		if c.ID == "" {
			v.addf(path+".id", "must be a non-empty string")
			continue
		}
		if _, dup := continents[c.ID]; dup {
			v.addf(path+".id", "duplicate continent id %s", c.ID)
			continue
		}
		continents[c.ID] = c
		if c.Bonus <= 0 {
			v.addf(path+".bonus", "must be a positive integer")
		}
		if len(c.TerritoryIDs) == 0 {
			v.addf(path+".territoryIds", "must be a non-empty array")
		}
		for _, id := range c.TerritoryIDs {
			if other, dup := declared[id]; dup {
				v.addf(path+".territoryIds", "territory %s already declared by %s", id, other)
				continue
			}
			declared[id] = c.ID
		}
	}

	territories := make(map[string]*Territory, len(m.Territories))
	for i := range m.Territories {
		t := &m.Territories[i]
		path := fmt.Sprintf("map.territories[%d]", i)
		if t.ID == "" {
			v.addf(path+".id", "must be a non-empty string")
			continue
		}
		if _, dup := territories[t.ID]; dup {
			v.addf(path+".id", "duplicate territory id %s", t.ID)
			continue
		}
		territories[t.ID] = t
		if _, ok := continents[t.ContinentID]; !ok {
			v.addf(path+".continentId", "unknown continent id %q", t.ContinentID)
		} else if declared[t.ID] != t.ContinentID {
			v.addf(path+".continentId", "%s is not declared by continent %s", t.ID, t.ContinentID)
		}
		if !cardSymbols[t.CardSymbol] {
			v.addf(path+".cardSymbol", "unknown symbol %q", t.CardSymbol)
		}
		if len(t.Neighbors) == 0 {
			v.addf(path+".neighbors", "must be a non-empty array")
		}
		seen := make(map[string]bool, len(t.Neighbors))
		for _, n := range t.Neighbors {
			if n == t.ID {
				v.addf(path+".neighbors", "territory cannot neighbor itself")
			}
			if seen[n] {
				v.addf(path+".neighbors", "duplicate neighbor %s", n)
			}
			seen[n] = true
		}
	}

	for id, continentID := range declared {
		if _, ok := territories[id]; !ok {
			v.addf("map.continents."+continentID, "declares unknown territory %s", id)
		}
	}

	for id, t := range territories {
		for _, n := range t.Neighbors {
			other, ok := territories[n]
			if !ok {
				v.addf("map.territories."+id+".neighbors", "unknown neighbor %s", n)
				continue
			}
			if !slices.Contains(other.Neighbors, id) {
				v.addf("map.territories."+id+".neighbors", "adjacency must be symmetric: %s -> %s without reverse edge", id, n)
			}
		}
	}
	return continents
}

func validateConstants(v *validator, c *Constants) {
	if c.Players.Min != 3 {
		v.addf("constants.players.min", "must be 3 for the classic game")
	}
	if c.Players.Max != 6 {
		v.addf("constants.players.max", "must be 6 for the classic game")
	}
	for n := c.Players.Min; n <= c.Players.Max; n++ {
		key := strconv.Itoa(n)
		if c.Players.StartingArmiesByPlayerCount[key] <= 0 {
			v.addf("constants.players.startingArmiesByPlayerCount."+key, "must be a positive integer")
		}
	}

	if len(c.Players.Colors) != len(Colors) {
		v.addf("constants.players.colors", "must list %d colors", len(Colors))
	}
	seen := make(map[Color]bool)
	for _, color := range c.Players.Colors {
		if !knownColor(color) {
			v.addf("constants.players.colors", "unknown color %s", color)
		}
		if seen[color] {
			v.addf("constants.players.colors", "duplicate color %s", color)
		}
		seen[color] = true
	}

	if c.Reinforcement.Minimum <= 0 {
		v.addf("constants.reinforcement.minimum", "must be a positive integer")
	}
	if c.Reinforcement.TerritoryDivisor <= 0 {
		v.addf("constants.reinforcement.territoryDivisor", "must be a positive integer")
	}
	if c.Combat.AttackDiceMax <= 0 {
		v.addf("constants.combat.attackDiceMax", "must be a positive integer")
	}
	if c.Combat.DefenseDiceMax <= 0 {
		v.addf("constants.combat.defenseDiceMax", "must be a positive integer")
	}
	if !c.Combat.DefenseWinsTies {
		v.addf("constants.combat.defenseWinsTies", "must be true")
	}
}

func validateObjectives(v *validator, deck *ObjectiveDeck, continents map[string]*Continent, defaultID string) {
	objectives := make(map[string]*Objective, len(deck.Objectives))
	eliminations := make(map[Color]int)

	for i := range deck.Objectives {
		o := &deck.Objectives[i]
		path := fmt.Sprintf("objectives[%d]", i)
		if o.ID == "" {
			v.addf(path+".id", "must be a non-empty string")
			continue
		}
		if _, dup := objectives[o.ID]; dup {
			v.addf(path+".id", "duplicate objective id %s", o.ID)
			continue
		}
		objectives[o.ID] = o
		if o.TextPt == "" || o.TextEn == "" {
			v.addf(path, "textPt and textEn must be non-empty")
		}

		p := o.Predicate
		switch p.Kind {
		case KindControlContinents:
			if len(p.ContinentIDs) == 0 {
				v.addf(path+".predicate.continentIds", "must be a non-empty array")
			}
			checkContinents(v, path+".predicate.continentIds", p.ContinentIDs, continents)
		case KindControlContinentsPlusAny:
			if len(p.Required) == 0 {
				v.addf(path+".predicate.required", "must be a non-empty array")
			}
			checkContinents(v, path+".predicate.required", p.Required, continents)
			if p.AdditionalCount <= 0 {
				v.addf(path+".predicate.additionalCount", "must be a positive integer")
			}
		case KindControlTerritories:
			if p.Count <= 0 {
				v.addf(path+".predicate.count", "must be a positive integer")
			}
			if p.MinArmiesEach <= 0 {
				v.addf(path+".predicate.minArmiesEach", "must be a positive integer")
			}
		case KindEliminateColor:
			if !knownColor(p.Color) {
				v.addf(path+".predicate.color", "must be a valid player color")
			} else {
				eliminations[p.Color]++
			}
			if p.FallbackObjectiveID == "" {
				v.addf(path+".predicate.fallbackObjectiveId", "must be a non-empty string")
			}
			if p.SelfTargetHandling != selfTargetRedraw {
				v.addf(path+".predicate.selfTargetHandling", "must be %s", selfTargetRedraw)
			}
		default:
			v.addf(path+".predicate.kind", "unknown predicate kind %q", p.Kind)
		}
	}

	for _, color := range Colors {
		if eliminations[color] != 1 {
			v.addf("objectives", "must contain exactly one ELIMINATE_COLOR objective for %s, got %d", color, eliminations[color])
		}
	}

	for id, o := range objectives {
		if o.Predicate.Kind != KindEliminateColor {
			continue
		}
		if _, ok := objectives[o.Predicate.FallbackObjectiveID]; !ok {
			v.addf("objectives."+id+".predicate.fallbackObjectiveId", "unknown objective id %s", o.Predicate.FallbackObjectiveID)
			continue
		}
		if fallbackCycle(objectives, id) {
			v.addf("objectives."+id+".predicate.fallbackObjectiveId", "fallback chain is cyclic")
		}
	}

	def, ok := objectives[defaultID]
	switch {
	case !ok:
		v.addf("constants.objectives.defaultObjectiveId", "unknown objective id %q", defaultID)
	case def.Predicate.Kind == KindEliminateColor:
		v.addf("constants.objectives.defaultObjectiveId", "must not be an ELIMINATE_COLOR objective")
	}
}

// fallbackCycle follows fallback links from start and reports whether it
// revisits an objective.
func fallbackCycle(objectives map[string]*Objective, start string) bool {
	visited := map[string]bool{}
	id := start
	for {
		if visited[id] {
			return true
		}
		visited[id] = true
		o, ok := objectives[id]
		if !ok || o.Predicate.Kind != KindEliminateColor {
			return false
		}
		id = o.Predicate.FallbackObjectiveID
	}
}

func checkContinents(v *validator, path string, ids []string, continents map[string]*Continent) {
	for _, id := range ids {
		if _, ok := continents[id]; !ok {
			v.addf(path, "unknown continent id %s", id)
		}
	}
}

func knownColor(c Color) bool {
	return slices.Contains(Colors, c)
}
