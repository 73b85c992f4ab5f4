package searcher

import (
	"context"
	"errors"
	"fmt"
	"math"
	"sync"
	"sync/atomic"
	"time"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
	"golang.org/x/exp/rand"

	"risk3p/agent"
	"risk3p/engine"
	"risk3p/experiments/metrics"
	"risk3p/game"
)

const MaxCutoff = 100 // Rollout depth in moves

var ErrNoBudget = errors.New("must specify search episodes or duration")

type Option func(mcts *MCTS)

// MCTS is a Monte-Carlo decision source. It restores the game from the JSON
// snapshot, treats each legal action as an arm chosen by UCT and scores
// random rollouts with an evaluation function from the deciding player's
// perspective.
type MCTS struct {
	m          *game.Map
	goroutines int
	duration   time.Duration
	episodes   int
	cutoff     int
	evaluate   game.Evaluate
	evalName   string
	seed       uint64
	metrics    metrics.Collector
	logger     zerolog.Logger

	mu   sync.Mutex
	last metrics.SearchMetric
}

func WithDuration(duration time.Duration) Option {
	return func(u *MCTS) {
		if duration > 0 {
			u.duration = duration
		}
	}
}

func WithEpisodes(episodes int) Option {
	return func(u *MCTS) {
		if episodes > 0 {
			u.episodes = episodes
		}
	}
}

func WithCutoff(depth int) Option {
	return func(u *MCTS) {
		if depth > 0 {
			u.cutoff = depth
		}
	}
}

func WithGoroutines(n int) Option {
	return func(u *MCTS) {
		if n > 0 {
			u.goroutines = n
		}
	}
}

// WithEvaluationFn selects one of game.Evaluators by name.
func WithEvaluationFn(name string) Option {
	return func(m *MCTS) {
		if fn, ok := game.Evaluators[name]; ok {
			m.evaluate = fn
			m.evalName = name
		}
	}
}

func WithSeed(seed uint64) Option {
	return func(m *MCTS) {
		m.seed = seed
	}
}

func WithMetrics() Option {
	return func(m *MCTS) {
		m.metrics = metrics.NewCollector()
	}
}

func WithLogger(l zerolog.Logger) Option {
	return func(m *MCTS) {
		m.logger = l
	}
}

func NewMCTS(m *game.Map, options ...Option) (*MCTS, error) {
	s := &MCTS{ // Default values
		m:          m,
		goroutines: 1,
		cutoff:     MaxCutoff,
		evaluate:   game.EvaluateResources,
		evalName:   "resources",
		seed:       uint64(time.Now().UnixNano()),
		metrics:    metrics.NewDummyCollector(),
		logger:     log.Logger,
	}
	for _, option := range options {
		option(s)
	}
	if s.episodes <= 0 && s.duration <= 0 {
		return nil, ErrNoBudget
	}
	if m == nil {
		return nil, fmt.Errorf("searcher: nil map")
	}
	s.logger = s.logger.With().Str("component", "mcts").Logger()
	return s, nil
}

// Decide implements agent.Agent.
func (s *MCTS) Decide(ctx context.Context, state game.Serialized, actions []game.Action, _ game.Phase) (game.Action, error) {
	if a, ok := agent.Trivial(actions); ok {
		s.mu.Lock()
		s.last = metrics.SearchMetric{}
		s.mu.Unlock()
		return a, nil
	}
	snap, err := game.ParseSnapshot(state.JSON)
	if err != nil {
		return game.Action{}, err
	}
	base, err := engine.Restore(s.m, snap, engine.WithLogger(zerolog.Nop()), engine.WithSeed(s.seed))
	if err != nil {
		return game.Action{}, fmt.Errorf("restore for search: %w", err)
	}

	policy, metric, err := s.Simulate(ctx, base, actions)
	if err != nil {
		return game.Action{}, err
	}
	s.logger.Debug().
		Int("episodes", metric.Episodes).
		Dur("duration", metric.Duration).
		Int("actions", len(policy)).
		Msg("search complete")
	return s.choose(actions, policy), nil
}

func (s *MCTS) choose(actions []game.Action, policy map[game.Action]float64) game.Action {
	best := actions[0]
	for _, a := range actions[1:] {
		if policy[a] > policy[best] {
			best = a
		}
	}
	return best
}

// Simulate runs the search from base over the given root actions and returns
// the visit share of each.
func (s *MCTS) Simulate(ctx context.Context, base *engine.Engine, actions []game.Action) (map[game.Action]float64, metrics.SearchMetric, error) {
	r := &root{arms: make([]*arm, len(actions))}
	for i, a := range actions {
		r.arms[i] = &arm{action: a}
	}
	player := base.CurrentPlayer()
	var counter atomic.Uint64

	episode := func() {
		rng := rand.New(rand.NewSource(s.seed + counter.Add(1)))
		a := r.selects()
		sim := base.Clone(engine.WithRand(rng))
		if res := sim.Dispatch(a.action); !res.Valid {
			// The caller's list disagrees with the snapshot; never pick it.
			r.backup(a, math.Inf(-1))
			return
		}
		r.backup(a, s.rollout(sim, player, rng))
		s.metrics.AddEpisode()
	}

	s.metrics.Start(s.goroutines, s.cutoff, s.evalName)
	if s.episodes > 0 {
		s.iterate(ctx, episode)
	} else {
		s.countdown(ctx, episode)
	}
	metric := s.metrics.Complete()

	s.mu.Lock()
	s.last = metric
	s.mu.Unlock()

	if err := ctx.Err(); err != nil {
		return nil, metric, err
	}
	return r.Policy(), metric, nil
}

func (s *MCTS) iterate(ctx context.Context, episode func()) {
	task := make(chan any, s.episodes)
	for i := 0; i < s.episodes; i++ {
		task <- nil
	}
	close(task)

	var wg sync.WaitGroup
	for i := 0; i < s.goroutines; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()

			for range task {
				if ctx.Err() != nil {
					return
				}
				episode()
			}
		}()
	}

	wg.Wait()
}

func (s *MCTS) countdown(ctx context.Context, episode func()) {
	ctx, cancel := context.WithTimeout(ctx, s.duration)
	defer cancel()

	var wg sync.WaitGroup
	for i := 0; i < s.goroutines; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for ctx.Err() == nil {
				episode()
			}
		}()
	}
	wg.Wait()
}

// rollout plays biased random moves until the game ends or the cutoff, then
// scores the position for player.
func (s *MCTS) rollout(sim *engine.Engine, player int, rng *rand.Rand) float64 {
	policy := agent.NewRandomAgent(rng)
	for depth := 0; depth < s.cutoff && !sim.IsOver(); depth++ {
		actions := sim.LegalActions()
		sim.Dispatch(policy.Choose(actions, sim.Phase()))
	}

	if sim.IsOver() { // Game over before cutoff
		s.metrics.AddFullPlayout()
		if winner, ok := sim.Winner(); ok && winner == player {
			return Win
		}
		return Loss
	}
	return s.evaluate(sim.State(), s.m, player)
}

// LastMetric returns the metrics of the most recent search.
func (s *MCTS) LastMetric() metrics.SearchMetric {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.last
}
