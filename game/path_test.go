package game

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestAreConnected(t *testing.T) {
	adjacency := map[string][]string{
		"A": {"B"},
		"B": {"A", "C"},
		"C": {"B"},
	}

	t.Run("chain owned by one player", func(t *testing.T) {
		territories := map[string]TerritoryState{
			"A": {Owner: 0, Armies: 1},
			"B": {Owner: 0, Armies: 1},
			"C": {Owner: 0, Armies: 1},
		}
		assert.True(t, AreConnected("A", "C", 0, territories, adjacency))
	})

	t.Run("chain broken by another owner", func(t *testing.T) {
		territories := map[string]TerritoryState{
			"A": {Owner: 0, Armies: 1},
			"B": {Owner: 1, Armies: 1},
			"C": {Owner: 0, Armies: 1},
		}
		assert.False(t, AreConnected("A", "C", 0, territories, adjacency))
	})

	t.Run("same territory", func(t *testing.T) {
		assert.True(t, AreConnected("A", "A", 2, map[string]TerritoryState{}, adjacency))
	})

	t.Run("target is accepted as a neighbor without ownership", func(t *testing.T) {
		territories := map[string]TerritoryState{
			"A": {Owner: 0, Armies: 1},
			"B": {Owner: 0, Armies: 1},
			"C": {Owner: 1, Armies: 1},
		}
		assert.True(t, AreConnected("A", "C", 0, territories, adjacency))
	})

	t.Run("ring goes around the enemy", func(t *testing.T) {
		m := ringMap(t)
		gs := ringState(FortifyPhase)
		gs.Territories["D"] = TerritoryState{Owner: 0, Armies: 1}
		// B reaches D through A even though C is hostile.
		assert.True(t, AreConnected("B", "D", 0, gs.Territories, m.Adjacency))
	})
}
