package gamemaster

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/exp/rand"

	"risk3p/agent"
	"risk3p/engine"
	"risk3p/game"
	"risk3p/game/maps"
)

func newEngine(t *testing.T, seed uint64, kinds ...game.Kind) *engine.Engine {
	t.Helper()
	m, err := maps.Load("ring")
	require.NoError(t, err)
	players := make([]game.Player, game.NumPlayers)
	for i := range players {
		kind := game.KindRandom
		if i < len(kinds) {
			kind = kinds[i]
		}
		players[i] = game.Player{ID: i, Name: "Player", Kind: kind}
	}
	e, err := engine.New(players, m, engine.WithSeed(seed), engine.WithLogger(zerolog.Nop()))
	require.NoError(t, err)
	return e
}

func randomSeats(seed uint64) [game.NumPlayers]agent.Agent {
	var seats [game.NumPlayers]agent.Agent
	for i := range seats {
		seats[i] = agent.NewRandomAgent(rand.New(rand.NewSource(seed + uint64(i))))
	}
	return seats
}

type reasoning struct {
	agent.Agent
}

func (reasoning) LastReasoning() string { return "because" }

func TestNew(t *testing.T) {
	e := newEngine(t, 1)
	_, err := New(e, [game.NumPlayers]agent.Agent{})
	require.Error(t, err)

	g, err := New(e, randomSeats(1))
	require.NoError(t, err)
	assert.Same(t, e, g.Engine)
}

func TestRun(t *testing.T) {
	t.Run("random seats play to completion", func(t *testing.T) {
		for seed := uint64(1); seed <= 5; seed++ {
			e := newEngine(t, seed)
			updates := 0
			g, err := New(e, randomSeats(seed), WithLogger(zerolog.Nop()), OnUpdate(func(u Update) {
				assert.True(t, u.Result.Valid)
				assert.Equal(t, updates, u.Step)
				updates++
			}))
			require.NoError(t, err)

			res, err := g.Run(context.Background())
			require.NoError(t, err)
			require.True(t, res.Finished, "seed %d", seed)
			assert.GreaterOrEqual(t, res.Winner, 0)
			assert.Less(t, res.Winner, game.NumPlayers)
			assert.Equal(t, res.Moves, updates)
			assert.Equal(t, e.GameID(), res.GameID)
		}
	})

	t.Run("move limit", func(t *testing.T) {
		e := newEngine(t, 3)
		g, err := New(e, randomSeats(3), WithMaxMoves(5), WithLogger(zerolog.Nop()))
		require.NoError(t, err)

		res, err := g.Run(context.Background())
		require.NoError(t, err)
		assert.False(t, res.Finished)
		assert.Equal(t, 5, res.Moves)
		assert.Equal(t, game.NoWinner, res.Winner)
	})

	t.Run("failing seat falls back", func(t *testing.T) {
		e := newEngine(t, 4)
		seats := randomSeats(4)
		seats[0] = agent.Func(func(context.Context, game.Serialized, []game.Action, game.Phase) (game.Action, error) {
			return game.Action{}, errors.New("endpoint down")
		})
		var fallbacks []game.Action
		g, err := New(e, seats, WithMaxMoves(12), WithLogger(zerolog.Nop()), OnUpdate(func(u Update) {
			if u.Player == 0 {
				assert.True(t, u.Fallback)
				fallbacks = append(fallbacks, u.Action)
			}
		}))
		require.NoError(t, err)

		_, err = g.Run(context.Background())
		require.NoError(t, err)
		require.NotEmpty(t, fallbacks)
		assert.Equal(t, game.ReinforceAction, fallbacks[0].Type, "no skip while reinforcing")
		assert.Equal(t, game.SkipAction, fallbacks[1].Type)
	})

	t.Run("action outside the legal set falls back", func(t *testing.T) {
		e := newEngine(t, 5)
		seats := randomSeats(5)
		seats[0] = agent.Func(func(context.Context, game.Serialized, []game.Action, game.Phase) (game.Action, error) {
			return game.Reinforce("nowhere", 1), nil
		})
		var first Update
		g, err := New(e, seats, WithMaxMoves(1), WithLogger(zerolog.Nop()), OnUpdate(func(u Update) {
			first = u
		}))
		require.NoError(t, err)

		_, err = g.Run(context.Background())
		require.NoError(t, err)
		assert.True(t, first.Fallback)
		assert.Equal(t, game.ReinforceAction, first.Action.Type)
	})

	t.Run("reasoning is reported", func(t *testing.T) {
		e := newEngine(t, 6)
		seats := randomSeats(6)
		seats[0] = reasoning{seats[0]}
		var got string
		g, err := New(e, seats, WithMaxMoves(1), WithLogger(zerolog.Nop()), OnUpdate(func(u Update) {
			got = u.Reasoning
		}))
		require.NoError(t, err)

		_, err = g.Run(context.Background())
		require.NoError(t, err)
		assert.Equal(t, "because", got)
	})

	t.Run("cancellation while a human decides", func(t *testing.T) {
		e := newEngine(t, 7, game.KindHuman)
		seats := randomSeats(7)
		human := agent.NewHumanAgent()
		seats[0] = human
		g, err := New(e, seats, WithLogger(zerolog.Nop()))
		require.NoError(t, err)

		ctx, cancel := context.WithCancel(context.Background())
		go func() {
			assert.Eventually(t, human.Waiting, time.Second, time.Millisecond)
			cancel()
		}()
		_, err = g.Run(ctx)
		require.ErrorIs(t, err, context.Canceled)
		assert.Eventually(t, func() bool { return !human.Waiting() }, time.Second, time.Millisecond)
	})

	t.Run("human submission is applied", func(t *testing.T) {
		e := newEngine(t, 8, game.KindHuman)
		seats := randomSeats(8)
		human := agent.NewHumanAgent()
		seats[0] = human
		g, err := New(e, seats, WithMaxMoves(1), WithLogger(zerolog.Nop()))
		require.NoError(t, err)

		go func() {
			assert.Eventually(t, human.Waiting, time.Second, time.Millisecond)
			assert.NoError(t, human.SubmitChoice(1))
		}()
		res, err := g.Run(context.Background())
		require.NoError(t, err)
		assert.Equal(t, 1, res.Moves)
		assert.Equal(t, game.AttackPhase, e.Phase())
	})

	t.Run("move delay applies to bots", func(t *testing.T) {
		e := newEngine(t, 9)
		g, err := New(e, randomSeats(9), WithMaxMoves(2), WithMoveDelay(20*time.Millisecond), WithLogger(zerolog.Nop()))
		require.NoError(t, err)

		res, err := g.Run(context.Background())
		require.NoError(t, err)
		assert.GreaterOrEqual(t, res.Duration, 40*time.Millisecond)
	})
}

func TestStaleDecisionIsDiscarded(t *testing.T) {
	e := newEngine(t, 10)
	e.SetupGame()
	seats := randomSeats(10)
	seats[0] = agent.Func(func(_ context.Context, _ game.Serialized, actions []game.Action, _ game.Phase) (game.Action, error) {
		// Someone else moves while this seat is thinking.
		assert.True(t, e.Dispatch(actions[0]).Valid)
		return actions[0], nil
	})
	g, err := New(e, seats, WithLogger(zerolog.Nop()))
	require.NoError(t, err)

	applied, err := g.round(context.Background(), 0)
	require.NoError(t, err)
	assert.False(t, applied)
	assert.Equal(t, 1, e.Moves())
}

func TestFallback(t *testing.T) {
	attack := game.Attack("A", "B", 1)
	assert.Equal(t, game.Skip(), Fallback([]game.Action{attack, game.Skip()}))
	assert.Equal(t, attack, Fallback([]game.Action{attack}))
	assert.Equal(t, game.Skip(), Fallback(nil))
}
