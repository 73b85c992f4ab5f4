package searcher

import (
	"context"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"risk3p/engine"
	"risk3p/game"
	"risk3p/game/maps"
)

func started(t *testing.T) (*game.Map, *engine.Engine) {
	t.Helper()
	m, err := maps.Load("ring")
	require.NoError(t, err)
	players := []game.Player{
		{ID: 0, Name: "Player 1", Kind: game.KindSearch},
		{ID: 1, Name: "Player 2", Kind: game.KindRandom},
		{ID: 2, Name: "Player 3", Kind: game.KindRandom},
	}
	e, err := engine.New(players, m, engine.WithSeed(7), engine.WithLogger(zerolog.Nop()))
	require.NoError(t, err)
	e.SetupGame()
	return m, e
}

// toAttack spends the reinforcements so the engine sits in the attack phase.
func toAttack(t *testing.T, e *engine.Engine) {
	t.Helper()
	actions := e.LegalActions()
	require.NotEmpty(t, actions)
	require.True(t, e.Dispatch(actions[0]).Valid)
	require.Equal(t, game.AttackPhase, e.Phase())
}

func TestNewMCTS(t *testing.T) {
	m, _ := started(t)

	t.Run("requires a budget", func(t *testing.T) {
		_, err := NewMCTS(m)
		require.ErrorIs(t, err, ErrNoBudget)
	})

	t.Run("ignores unknown evaluation names", func(t *testing.T) {
		s, err := NewMCTS(m, WithEpisodes(10), WithEvaluationFn("nope"))
		require.NoError(t, err)
		assert.Equal(t, "resources", s.evalName)
	})

	t.Run("selects connectivity evaluation", func(t *testing.T) {
		s, err := NewMCTS(m, WithEpisodes(10), WithEvaluationFn("connectivity"))
		require.NoError(t, err)
		assert.Equal(t, "connectivity", s.evalName)
	})
}

func TestDecide(t *testing.T) {
	t.Run("single action is returned without search", func(t *testing.T) {
		m, e := started(t)
		s, err := NewMCTS(m, WithEpisodes(10), WithMetrics())
		require.NoError(t, err)

		actions := e.LegalActions()[:1]
		got, err := s.Decide(context.Background(), e.Serialize(), actions, e.Phase())
		require.NoError(t, err)
		assert.Equal(t, actions[0], got)
		assert.Zero(t, s.LastMetric().Episodes)
	})

	t.Run("chooses a legal attack phase action", func(t *testing.T) {
		m, e := started(t)
		toAttack(t, e)
		s, err := NewMCTS(m, WithEpisodes(60), WithCutoff(20), WithGoroutines(4), WithSeed(3), WithMetrics())
		require.NoError(t, err)

		actions := e.LegalActions()
		got, err := s.Decide(context.Background(), e.Serialize(), actions, e.Phase())
		require.NoError(t, err)
		assert.Contains(t, actions, got)

		metric := s.LastMetric()
		assert.Equal(t, 60, metric.Episodes)
		assert.Equal(t, 4, metric.Goroutines)
		assert.Equal(t, 20, metric.Cutoff)
		assert.LessOrEqual(t, metric.FullPlayouts, metric.Episodes)
	})

	t.Run("search leaves the caller's engine untouched", func(t *testing.T) {
		m, e := started(t)
		toAttack(t, e)
		before := e.State()
		s, err := NewMCTS(m, WithEpisodes(30), WithCutoff(10))
		require.NoError(t, err)

		_, err = s.Decide(context.Background(), e.Serialize(), e.LegalActions(), e.Phase())
		require.NoError(t, err)
		assert.Equal(t, before.Territories, e.State().Territories)
		assert.Equal(t, before.Phase, e.Phase())
	})

	t.Run("duration budget", func(t *testing.T) {
		m, e := started(t)
		toAttack(t, e)
		s, err := NewMCTS(m, WithDuration(50*time.Millisecond), WithCutoff(5), WithGoroutines(2), WithMetrics())
		require.NoError(t, err)

		_, err = s.Decide(context.Background(), e.Serialize(), e.LegalActions(), e.Phase())
		require.NoError(t, err)
		assert.Positive(t, s.LastMetric().Episodes)
	})

	t.Run("cancelled context", func(t *testing.T) {
		m, e := started(t)
		toAttack(t, e)
		s, err := NewMCTS(m, WithEpisodes(1000))
		require.NoError(t, err)

		ctx, cancel := context.WithCancel(context.Background())
		cancel()
		_, err = s.Decide(ctx, e.Serialize(), e.LegalActions(), e.Phase())
		require.ErrorIs(t, err, context.Canceled)
	})

	t.Run("malformed snapshot", func(t *testing.T) {
		m, e := started(t)
		toAttack(t, e)
		s, err := NewMCTS(m, WithEpisodes(10))
		require.NoError(t, err)

		_, err = s.Decide(context.Background(), game.Serialized{JSON: "{"}, e.LegalActions(), e.Phase())
		require.Error(t, err)
	})
}

func TestRootSelection(t *testing.T) {
	r := &root{arms: []*arm{
		{action: game.Skip()},
		{action: game.Attack("A", "B", 1)},
	}}

	first := r.selects()
	second := r.selects()
	assert.NotSame(t, first, second, "unvisited arms are tried first")

	r.backup(first, Win)
	r.backup(second, Loss)
	assert.Same(t, first, r.selects(), "the winning arm has the higher value")

	policy := r.Policy()
	assert.InDelta(t, 2.0/3, policy[first.action], 1e-9)
	assert.InDelta(t, 1.0/3, policy[second.action], 1e-9)
}
