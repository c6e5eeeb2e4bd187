// Package combat resolves a single attack roll between two dice pools.
//
// It knows nothing about territories, ownership or adjacency; the game state
// machine checks all of that before calling Resolve.
package combat

import (
	"slices"
)

// Sides is the number of faces on every die.
const Sides = 6

// Roller is the randomness source for dice. *math/rand.Rand satisfies it.
type Roller interface {
	Intn(n int) int
}

// Outcome is the result of one attack roll. Both roll slices are sorted
// descending.
type Outcome struct {
	AttackRolls    []int
	DefenseRolls   []int
	AttackerLosses int
	DefenderLosses int
}

// Roll throws count dice and returns them sorted from highest to lowest.
func Roll(r Roller, count int) []int {
	rolls := make([]int, count)
	for i := range rolls {
		rolls[i] = r.Intn(Sides) + 1
	}
	sortDescending(rolls)
	return rolls
}

// Compare pairs the highest attack die with the highest defense die, the
// second with the second, and so on over the shorter pool. Each pair costs
// the defender one army on a strict attacker win and the attacker one army
// otherwise: ties always go to the defender.
func Compare(attackRolls, defenseRolls []int) (attackerLosses, defenderLosses int) {
	attack := slices.Clone(attackRolls)
	defense := slices.Clone(defenseRolls)
	sortDescending(attack)
	sortDescending(defense)

	pairs := min(len(attack), len(defense))
	for i := 0; i < pairs; i++ {
		if attack[i] > defense[i] {
			defenderLosses++
		} else {
			attackerLosses++
		}
	}
	return attackerLosses, defenderLosses
}

// Resolve rolls attackDice against defenseDice and reports the losses.
// attackerLosses+defenderLosses always equals min(attackDice, defenseDice).
func Resolve(r Roller, attackDice, defenseDice int) Outcome {
	attack := Roll(r, attackDice)
	defense := Roll(r, defenseDice)
	attackerLosses, defenderLosses := Compare(attack, defense)
	return Outcome{
		AttackRolls:    attack,
		DefenseRolls:   defense,
		AttackerLosses: attackerLosses,
		DefenderLosses: defenderLosses,
	}
}

func sortDescending(rolls []int) {
	slices.SortFunc(rolls, func(a, b int) int { return b - a })
}
