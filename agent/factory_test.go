package agent

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"risk3p/agent/llm"
	"risk3p/game"
)

func TestForKind(t *testing.T) {
	t.Run("human", func(t *testing.T) {
		a, err := ForKind(game.KindHuman, Deps{})
		require.NoError(t, err)
		assert.IsType(t, &HumanAgent{}, a)
	})

	t.Run("random", func(t *testing.T) {
		a, err := ForKind(game.KindRandom, Deps{})
		require.NoError(t, err)
		assert.IsType(t, &RandomAgent{}, a)
	})

	t.Run("remote without endpoint falls back", func(t *testing.T) {
		a, err := ForKind(game.KindRemote, Deps{})
		require.NoError(t, err)
		assert.IsType(t, &RandomAgent{}, a)
	})

	t.Run("remote", func(t *testing.T) {
		c := llm.CompleterFunc(func(context.Context, string) (string, error) { return "1", nil })
		a, err := ForKind(game.KindRemote, Deps{Completer: c})
		require.NoError(t, err)
		require.IsType(t, &RemoteAgent{}, a)
		assert.Implements(t, (*Reasoner)(nil), a)
	})

	t.Run("search builder errors fall back", func(t *testing.T) {
		a, err := ForKind(game.KindSearch, Deps{Search: func() (Agent, error) { return nil, errors.New("boom") }})
		require.NoError(t, err)
		assert.IsType(t, &RandomAgent{}, a)
	})

	t.Run("search", func(t *testing.T) {
		want := Func(func(context.Context, game.Serialized, []game.Action, game.Phase) (game.Action, error) {
			return game.Skip(), nil
		})
		a, err := ForKind(game.KindSearch, Deps{Search: func() (Agent, error) { return want, nil }})
		require.NoError(t, err)
		got, err := a.Decide(context.Background(), game.Serialized{}, nil, game.AttackPhase)
		require.NoError(t, err)
		assert.Equal(t, game.Skip(), got)
	})

	t.Run("unknown", func(t *testing.T) {
		_, err := ForKind("telepathy", Deps{})
		require.Error(t, err)
	})
}
