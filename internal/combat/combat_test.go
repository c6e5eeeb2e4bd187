package combat

import (
	"math/rand"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// faces replays fixed die faces through Intn.
type faces struct {
	values []int
}

func (f *faces) Intn(n int) int {
	v := f.values[0]
	f.values = f.values[1:]
	return v - 1
}

func TestCompare(t *testing.T) {
	tests := []struct {
		name           string
		attack         []int
		defense        []int
		attackerLosses int
		defenderLosses int
	}{
		{"attacker sweeps", []int{6, 5}, []int{4, 3}, 0, 2},
		{"ties favor defender", []int{4, 4}, []int{4, 4}, 2, 0},
		{"split", []int{6, 2}, []int{5, 3}, 1, 1},
		{"shorter defense pool", []int{6, 6, 6}, []int{1}, 0, 1},
		{"shorter attack pool", []int{2}, []int{1, 6, 6}, 1, 0},
		{"unsorted input is sorted first", []int{1, 6}, []int{5, 2}, 1, 1},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			a, d := Compare(tc.attack, tc.defense)
			assert.Equal(t, tc.attackerLosses, a, "attacker losses")
			assert.Equal(t, tc.defenderLosses, d, "defender losses")
		})
	}
}

func TestCompareDoesNotMutateInput(t *testing.T) {
	attack := []int{1, 6, 3}
	defense := []int{2, 5}
	Compare(attack, defense)
	assert.Equal(t, []int{1, 6, 3}, attack)
	assert.Equal(t, []int{2, 5}, defense)
}

func TestRollSortsDescending(t *testing.T) {
	rolls := Roll(&faces{values: []int{2, 6, 4}}, 3)
	assert.Equal(t, []int{6, 4, 2}, rolls)
}

func TestResolveUsesAttackThenDefenseDice(t *testing.T) {
	out := Resolve(&faces{values: []int{5, 6, 3, 4}}, 2, 2)
	assert.Equal(t, []int{6, 5}, out.AttackRolls)
	assert.Equal(t, []int{4, 3}, out.DefenseRolls)
	assert.Equal(t, 0, out.AttackerLosses)
	assert.Equal(t, 2, out.DefenderLosses)
}

func TestResolveLossesSumToComparedPairs(t *testing.T) {
	rng := rand.New(rand.NewSource(7))
	for attack := 1; attack <= 3; attack++ {
		for defense := 1; defense <= 3; defense++ {
			for i := 0; i < 200; i++ {
				out := Resolve(rng, attack, defense)
				require.Len(t, out.AttackRolls, attack)
				require.Len(t, out.DefenseRolls, defense)
				require.GreaterOrEqual(t, out.AttackerLosses, 0)
				require.GreaterOrEqual(t, out.DefenderLosses, 0)
				require.Equal(t, min(attack, defense), out.AttackerLosses+out.DefenderLosses)
				for _, r := range append(out.AttackRolls, out.DefenseRolls...) {
					require.True(t, r >= 1 && r <= Sides, "die out of range: %d", r)
				}
			}
		}
	}
}
