package game

import (
	"testing"

	"github.com/stretchr/testify/require"
)

// ringMap is A-B-C-D-A with one continent worth 2.
func ringMap(t *testing.T) *Map {
	t.Helper()
	m, err := NewMap([]TerritoryDef{
		{ID: "A", Name: "Alpha", ContinentID: "ring", Adjacent: []string{"B", "D"}},
		{ID: "B", Name: "Bravo", ContinentID: "ring", Adjacent: []string{"A", "C"}},
		{ID: "C", Name: "Charlie", ContinentID: "ring", Adjacent: []string{"B", "D"}},
		{ID: "D", Name: "Delta", ContinentID: "ring", Adjacent: []string{"C", "A"}},
	}, []ContinentDef{{ID: "ring", Name: "Ring", Bonus: 2}})
	require.NoError(t, err)
	return m
}

func testPlayers() []Player {
	return []Player{
		{ID: 0, Name: "Player 1", Color: "#e74c3c", Kind: KindHuman},
		{ID: 1, Name: "Player 2", Color: "#3498db", Kind: KindRandom},
		{ID: 2, Name: "Player 3", Color: "#2ecc71", Kind: KindRandom},
	}
}

// ringState gives A,B to player 0, C to player 1 and D to player 2.
func ringState(phase Phase) *GameState {
	gs := NewGameState(testPlayers())
	gs.Territories = map[string]TerritoryState{
		"A": {Owner: 0, Armies: 2},
		"B": {Owner: 0, Armies: 4},
		"C": {Owner: 1, Armies: 3},
		"D": {Owner: 2, Armies: 1},
	}
	gs.Phase = phase
	return gs
}
