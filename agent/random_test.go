package agent

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/exp/rand"

	"risk3p/game"
)

func TestTrivial(t *testing.T) {
	a, ok := Trivial(nil)
	require.True(t, ok)
	assert.Equal(t, game.Skip(), a)

	only := game.Reinforce("A", 3)
	a, ok = Trivial([]game.Action{only})
	require.True(t, ok)
	assert.Equal(t, only, a)

	_, ok = Trivial([]game.Action{only, game.Skip()})
	assert.False(t, ok)
}

func TestRandomAgent(t *testing.T) {
	agent := NewRandomAgent(rand.New(rand.NewSource(9)))
	ctx := context.Background()

	t.Run("attack bias", func(t *testing.T) {
		actions := []game.Action{game.Attack("A", "B", 2), game.Attack("C", "D", 1), game.Skip()}
		attacks := 0
		const n = 4000
		for i := 0; i < n; i++ {
			a, err := agent.Decide(ctx, game.Serialized{}, actions, game.AttackPhase)
			require.NoError(t, err)
			require.Contains(t, actions, a)
			if a.Type == game.AttackAction {
				attacks++
			}
		}
		assert.InDelta(t, AttackBias, float64(attacks)/n, 0.05)
	})

	t.Run("fortify bias", func(t *testing.T) {
		actions := []game.Action{game.Fortify("A", "B", 2), game.Skip()}
		fortifies := 0
		const n = 4000
		for i := 0; i < n; i++ {
			a, _ := agent.Decide(ctx, game.Serialized{}, actions, game.FortifyPhase)
			if a.Type == game.FortifyAction {
				fortifies++
			}
		}
		assert.InDelta(t, FortifyBias, float64(fortifies)/n, 0.05)
	})

	t.Run("reinforce is uniform", func(t *testing.T) {
		actions := []game.Action{game.Reinforce("A", 3), game.Reinforce("B", 3), game.Reinforce("C", 3)}
		seen := map[string]int{}
		for i := 0; i < 3000; i++ {
			a, _ := agent.Decide(ctx, game.Serialized{}, actions, game.ReinforcePhase)
			seen[a.TerritoryID]++
		}
		for _, id := range []string{"A", "B", "C"} {
			assert.InDelta(t, 1000, seen[id], 150, id)
		}
	})

	t.Run("only skip left", func(t *testing.T) {
		a, err := agent.Decide(ctx, game.Serialized{}, []game.Action{game.Skip()}, game.AttackPhase)
		require.NoError(t, err)
		assert.Equal(t, game.Skip(), a)
	})

	t.Run("empty set skips", func(t *testing.T) {
		a, err := agent.Decide(ctx, game.Serialized{}, nil, game.FortifyPhase)
		require.NoError(t, err)
		assert.Equal(t, game.Skip(), a)
	})
}
