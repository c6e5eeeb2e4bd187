// Package objective decides whether a player has completed an objective card.
package objective

import (
	"github.com/aaronzipp/brisk/internal/models"
	"github.com/aaronzipp/brisk/internal/ruleset"
)

// Completed reports whether player has met the objective it was dealt.
func Completed(rules *ruleset.Ruleset, g *models.Game, player *models.GamePlayer) bool {
	card, ok := rules.Objective(player.ObjectiveID)
	if !ok {
		return false
	}
	return Evaluate(rules, g, player, card.Predicate)
}

// Evaluate checks predicate p for player against the current game state.
//
// ELIMINATE_COLOR is only satisfied when the evaluating player personally
// eliminated the target color. A missing target, a self target, a target
// still alive or one eliminated by someone else all defer to the fallback
// objective. Ruleset validation guarantees the fallback chain is acyclic.
func Evaluate(rules *ruleset.Ruleset, g *models.Game, player *models.GamePlayer, p ruleset.Predicate) bool {
	switch p.Kind {
	case ruleset.KindControlContinents:
		for _, id := range p.ContinentIDs {
			if !controlsContinent(rules, g, player.ID, id) {
				return false
			}
		}
		return true

	case ruleset.KindControlContinentsPlusAny:
		for _, id := range p.Required {
			if !controlsContinent(rules, g, player.ID, id) {
				return false
			}
		}
		return ControlledContinents(rules, g, player.ID) >= len(p.Required)+p.AdditionalCount

	case ruleset.KindControlTerritories:
		qualifying := 0
		for _, t := range g.Territories {
			if t.OwnerID == player.ID && t.Armies >= p.MinArmiesEach {
				qualifying++
			}
		}
		return qualifying >= p.Count

	case ruleset.KindEliminateColor:
		target := playerByColor(g, p.Color)
		if target != nil && target.ID != player.ID && !target.Alive && target.EliminatedByPlayerID == player.ID {
			return true
		}
		fallback, ok := rules.Objective(p.FallbackObjectiveID)
		if !ok {
			return false
		}
		return Evaluate(rules, g, player, fallback.Predicate)
	}
	return false
}

// ControlledContinents counts the continents playerID owns entirely.
func ControlledContinents(rules *ruleset.Ruleset, g *models.Game, playerID string) int {
	n := 0
	for _, c := range rules.Map.Continents {
		if controlsContinent(rules, g, playerID, c.ID) {
			n++
		}
	}
	return n
}

// ContinentBonus sums the bonus of every continent playerID owns entirely.
func ContinentBonus(rules *ruleset.Ruleset, g *models.Game, playerID string) int {
	bonus := 0
	for _, c := range rules.Map.Continents {
		if controlsContinent(rules, g, playerID, c.ID) {
			bonus += c.Bonus
		}
	}
	return bonus
}

func controlsContinent(rules *ruleset.Ruleset, g *models.Game, playerID, continentID string) bool {
	c, ok := rules.Continent(continentID)
	if !ok {
		return false
	}
	for _, id := range c.TerritoryIDs {
		t, ok := g.Territories[id]
		if !ok || t.OwnerID != playerID {
			return false
		}
	}
	return true
}

func playerByColor(g *models.Game, color ruleset.Color) *models.GamePlayer {
	for _, p := range g.Players {
		if p.Color == color {
			return p
		}
	}
	return nil
}
