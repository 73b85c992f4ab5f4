package agent

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/cenkalti/backoff/v5"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
	"golang.org/x/exp/rand"
	"golang.org/x/time/rate"

	"risk3p/agent/llm"
	"risk3p/game"
)

const (
	DefaultMaxAttempts = 3
	DefaultBackoff     = time.Second
)

// RemoteAgent asks a remote endpoint for the action number. Failures and bad
// answers are retried with a constant backoff; once the attempts run out it
// falls back to a RandomAgent.
type RemoteAgent struct {
	completer   llm.Completer
	fallback    *RandomAgent
	maxAttempts uint
	backoff     time.Duration
	limiter     *rate.Limiter
	system      string
	logger      zerolog.Logger

	mu            sync.Mutex
	lastReasoning string
}

type RemoteOption func(*RemoteAgent)

func WithMaxAttempts(n uint) RemoteOption {
	return func(r *RemoteAgent) {
		if n > 0 {
			r.maxAttempts = n
		}
	}
}

func WithBackoff(d time.Duration) RemoteOption {
	return func(r *RemoteAgent) {
		r.backoff = d
	}
}

// WithRateLimit caps how often the endpoint is called.
func WithRateLimit(every time.Duration, burst int) RemoteOption {
	return func(r *RemoteAgent) {
		if every > 0 {
			r.limiter = rate.NewLimiter(rate.Every(every), max(1, burst))
		}
	}
}

func WithFallback(f *RandomAgent) RemoteOption {
	return func(r *RemoteAgent) {
		r.fallback = f
	}
}

func WithSystemPrompt(s string) RemoteOption {
	return func(r *RemoteAgent) {
		r.system = s
	}
}

func WithAgentLogger(l zerolog.Logger) RemoteOption {
	return func(r *RemoteAgent) {
		r.logger = l
	}
}

func NewRemoteAgent(completer llm.Completer, opts ...RemoteOption) *RemoteAgent {
	r := &RemoteAgent{
		completer:   completer,
		maxAttempts: DefaultMaxAttempts,
		backoff:     DefaultBackoff,
		limiter:     rate.NewLimiter(rate.Inf, 1),
		system:      SystemPrompt,
		logger:      log.Logger,
	}
	for _, opt := range opts {
		opt(r)
	}
	if r.fallback == nil {
		r.fallback = NewRandomAgent(rand.New(rand.NewSource(uint64(time.Now().UnixNano()))))
	}
	r.logger = r.logger.With().Str("component", "remote-agent").Logger()
	return r
}

func (r *RemoteAgent) Decide(ctx context.Context, state game.Serialized, actions []game.Action, phase game.Phase) (game.Action, error) {
	r.setReasoning("")
	if a, ok := Trivial(actions); ok {
		return a, nil
	}

	prompt := BuildPrompt(r.system, state.Text)
	attempt := 0
	op := func() (game.Action, error) {
		attempt++
		if err := r.limiter.Wait(ctx); err != nil {
			return game.Action{}, backoff.Permanent(err)
		}
		text, err := r.completer.Complete(ctx, prompt)
		if err != nil {
			if ctx.Err() != nil {
				return game.Action{}, backoff.Permanent(ctx.Err())
			}
			return game.Action{}, err
		}
		choice, reason, err := ParseChoice(text)
		if err != nil {
			return game.Action{}, err
		}
		if choice < 1 || choice > len(actions) {
			return game.Action{}, fmt.Errorf("%w: %d not in 1-%d", ErrChoiceOutOfRange, choice, len(actions))
		}
		r.setReasoning(reason)
		return actions[choice-1], nil
	}
	notify := func(err error, next time.Duration) {
		r.logger.Warn().Err(err).Int("attempt", attempt).Dur("retry_in", next).Msg("remote decision failed")
	}

	action, err := backoff.Retry(ctx, op,
		backoff.WithBackOff(backoff.NewConstantBackOff(r.backoff)),
		backoff.WithMaxTries(r.maxAttempts),
		backoff.WithNotify(notify),
	)
	if err == nil {
		return action, nil
	}
	if ctx.Err() != nil {
		return game.Action{}, ctx.Err()
	}

	r.logger.Warn().Err(err).Int("attempts", attempt).Msg("remote decision exhausted, using random fallback")
	return r.fallback.Decide(ctx, state, actions, phase)
}

// LastReasoning returns the justification given with the last accepted answer.
func (r *RemoteAgent) LastReasoning() string {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.lastReasoning
}

func (r *RemoteAgent) setReasoning(s string) {
	r.mu.Lock()
	r.lastReasoning = s
	r.mu.Unlock()
}
