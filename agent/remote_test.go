package agent

import (
	"context"
	"errors"
	"strings"
	"sync/atomic"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/exp/rand"

	"risk3p/agent/llm"
	"risk3p/game"
)

var remoteActions = []game.Action{game.Attack("A", "B", 3), game.Attack("A", "C", 2), game.Skip()}

// scripted answers each call with the next reply; errors are returned as is.
type scripted struct {
	replies []any
	calls   atomic.Int32
	prompts []string
}

func (s *scripted) Complete(_ context.Context, prompt string) (string, error) {
	i := int(s.calls.Add(1)) - 1
	s.prompts = append(s.prompts, prompt)
	if i >= len(s.replies) {
		return "", errors.New("no more replies")
	}
	switch r := s.replies[i].(type) {
	case error:
		return "", r
	default:
		return r.(string), nil
	}
}

func newTestRemote(c llm.Completer, opts ...RemoteOption) *RemoteAgent {
	base := []RemoteOption{
		WithBackoff(time.Millisecond),
		WithAgentLogger(zerolog.Nop()),
		WithFallback(NewRandomAgent(rand.New(rand.NewSource(3)))),
	}
	return NewRemoteAgent(c, append(base, opts...)...)
}

func TestRemoteAgent(t *testing.T) {
	state := game.Serialized{Text: "=== RISK GAME STATE ===\n1. ...\n2. ...\n3. ..."}
	ctx := context.Background()

	t.Run("accepts a numbered answer", func(t *testing.T) {
		c := &scripted{replies: []any{"2 | Asia is thin"}}
		r := newTestRemote(c)
		a, err := r.Decide(ctx, state, remoteActions, game.AttackPhase)
		require.NoError(t, err)
		assert.Equal(t, remoteActions[1], a)
		assert.Equal(t, "Asia is thin", r.LastReasoning())
		assert.EqualValues(t, 1, c.calls.Load())
		require.Len(t, c.prompts, 1)
		assert.True(t, strings.HasPrefix(c.prompts[0], SystemPrompt))
		assert.True(t, strings.HasSuffix(c.prompts[0], state.Text))
	})

	t.Run("single action clears the previous reasoning", func(t *testing.T) {
		c := &scripted{replies: []any{"2 | take it"}}
		r := newTestRemote(c)
		_, err := r.Decide(ctx, state, remoteActions, game.AttackPhase)
		require.NoError(t, err)
		require.Equal(t, "take it", r.LastReasoning())

		a, err := r.Decide(ctx, state, []game.Action{game.Skip()}, game.AttackPhase)
		require.NoError(t, err)
		assert.Equal(t, game.Skip(), a)
		assert.Empty(t, r.LastReasoning())
		assert.EqualValues(t, 1, c.calls.Load())
	})

	t.Run("retries bad answers and errors", func(t *testing.T) {
		c := &scripted{replies: []any{errors.New("502"), "9 | out of range", "3"}}
		r := newTestRemote(c)
		a, err := r.Decide(ctx, state, remoteActions, game.AttackPhase)
		require.NoError(t, err)
		assert.Equal(t, game.Skip(), a)
		assert.EqualValues(t, 3, c.calls.Load())
	})

	t.Run("falls back to random after the attempt cap", func(t *testing.T) {
		c := &scripted{replies: []any{"nonsense", "more nonsense", "0", "1"}}
		r := newTestRemote(c)
		a, err := r.Decide(ctx, state, remoteActions, game.AttackPhase)
		require.NoError(t, err)
		assert.Contains(t, remoteActions, a)
		assert.EqualValues(t, DefaultMaxAttempts, c.calls.Load())
		assert.Empty(t, r.LastReasoning())
	})

	t.Run("attempt cap is configurable", func(t *testing.T) {
		c := &scripted{}
		r := newTestRemote(c, WithMaxAttempts(5))
		_, err := r.Decide(ctx, state, remoteActions, game.AttackPhase)
		require.NoError(t, err)
		assert.EqualValues(t, 5, c.calls.Load())
	})

	t.Run("trivial sets skip the endpoint", func(t *testing.T) {
		c := &scripted{}
		r := newTestRemote(c)
		a, err := r.Decide(ctx, state, []game.Action{game.Skip()}, game.FortifyPhase)
		require.NoError(t, err)
		assert.Equal(t, game.Skip(), a)
		a, err = r.Decide(ctx, state, nil, game.FortifyPhase)
		require.NoError(t, err)
		assert.Equal(t, game.Skip(), a)
		assert.Zero(t, c.calls.Load())
	})

	t.Run("cancellation is not swallowed by the fallback", func(t *testing.T) {
		cctx, cancel := context.WithCancel(ctx)
		c := llm.CompleterFunc(func(ctx context.Context, _ string) (string, error) {
			cancel()
			<-ctx.Done()
			return "", ctx.Err()
		})
		r := newTestRemote(c, WithBackoff(time.Hour))
		_, err := r.Decide(cctx, state, remoteActions, game.AttackPhase)
		require.ErrorIs(t, err, context.Canceled)
	})

	t.Run("rate limit spaces calls", func(t *testing.T) {
		c := &scripted{replies: []any{"x", "y", "1"}}
		r := newTestRemote(c, WithRateLimit(20*time.Millisecond, 1))
		start := time.Now()
		_, err := r.Decide(ctx, state, remoteActions, game.AttackPhase)
		require.NoError(t, err)
		assert.GreaterOrEqual(t, time.Since(start), 35*time.Millisecond)
	})
}
