// Package gamemaster drives an engine by asking each seat's decision source
// for an action, one decision round at a time.
package gamemaster

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	"risk3p/agent"
	"risk3p/engine"
	"risk3p/game"
	"risk3p/utils"
)

var ErrStalled = errors.New("no playable action")

// RoundKey identifies a decision round. A decision is only applied while the
// engine still matches the key it was requested under.
type RoundKey struct {
	Turn           int
	Player         int
	Phase          game.Phase
	Reinforcements int
	Moves          int
}

func keyOf(e *engine.Engine) RoundKey {
	return RoundKey{
		Turn:           e.Turn(),
		Player:         e.CurrentPlayer(),
		Phase:          e.Phase(),
		Reinforcements: e.Reinforcements(),
		Moves:          e.Moves(),
	}
}

// Update is handed to observers after every applied action.
type Update struct {
	Step      int
	Player    int
	Action    game.Action
	Result    game.ValidationResult
	State     *game.GameState // Copy, safe to keep
	Reasoning string
	Thinking  time.Duration
	Fallback  bool
}

type Result struct {
	GameID   uuid.UUID
	Winner   int // game.NoWinner when the game ended without one or did not end
	Turns    int
	Moves    int
	Duration time.Duration
	Finished bool
}

type GameMaster struct {
	Engine *engine.Engine
	Agents [game.NumPlayers]agent.Agent

	delay    time.Duration
	maxMoves int
	onUpdate func(Update)
	logger   zerolog.Logger
}

type Option func(*GameMaster)

// WithMoveDelay pauses before each decision of a non-human seat.
func WithMoveDelay(d time.Duration) Option {
	return func(g *GameMaster) {
		g.delay = d
	}
}

// WithMaxMoves stops the game after n applied actions.
func WithMaxMoves(n int) Option {
	return func(g *GameMaster) {
		g.maxMoves = n
	}
}

func OnUpdate(fn func(Update)) Option {
	return func(g *GameMaster) {
		g.onUpdate = fn
	}
}

func WithLogger(l zerolog.Logger) Option {
	return func(g *GameMaster) {
		g.logger = l
	}
}

func New(e *engine.Engine, agents [game.NumPlayers]agent.Agent, opts ...Option) (*GameMaster, error) {
	for seat, a := range agents {
		if a == nil {
			return nil, fmt.Errorf("seat %d has no decision source", seat)
		}
	}
	g := &GameMaster{
		Engine: e,
		Agents: agents,
		logger: log.Logger,
	}
	for _, opt := range opts {
		opt(g)
	}
	g.logger = g.logger.With().Str("component", "gamemaster").Str("game", e.GameID().String()).Logger()
	return g, nil
}

// Run plays decision rounds until the game is over, the move limit is hit or
// ctx is cancelled. The engine is set up first if needed.
func (g *GameMaster) Run(ctx context.Context) (Result, error) {
	start := time.Now()
	if !g.Engine.Started() {
		g.Engine.SetupGame()
	}

	step := 0
	for !g.Engine.IsOver() {
		if err := ctx.Err(); err != nil {
			return g.result(start), err
		}
		if g.maxMoves > 0 && step >= g.maxMoves {
			g.logger.Info().Int("moves", step).Msg("move limit reached")
			break
		}
		applied, err := g.round(ctx, step)
		if err != nil {
			return g.result(start), err
		}
		if applied {
			step++
		}
	}

	res := g.result(start)
	if res.Finished {
		ev := g.logger.Info().Int("turns", res.Turns).Int("moves", res.Moves)
		if res.Winner != game.NoWinner {
			ev = ev.Int("winner", res.Winner)
		}
		ev.Msg("game over")
	}
	return res, nil
}

type decision struct {
	action game.Action
	err    error
}

// round asks the current seat for one action and applies it. It reports
// whether an action was applied.
func (g *GameMaster) round(ctx context.Context, step int) (bool, error) {
	key := keyOf(g.Engine)
	seat := g.Agents[key.Player]
	actions := g.Engine.LegalActions()
	state := g.Engine.Serialize()

	if p, ok := g.Engine.State().Player(key.Player); ok && !p.Kind.IsHuman() && g.delay > 0 {
		select {
		case <-ctx.Done():
			return false, ctx.Err()
		case <-time.After(g.delay):
		}
	}

	roundCtx, cancel := context.WithCancel(ctx)
	defer cancel()

	began := time.Now()
	ch := make(chan decision, 1)
	go func() {
		a, err := seat.Decide(roundCtx, state, actions, key.Phase)
		ch <- decision{action: a, err: err}
	}()

	var d decision
	select {
	case <-ctx.Done():
		return false, ctx.Err()
	case d = <-ch:
	}
	thinking := time.Since(began)

	if keyOf(g.Engine) != key {
		g.logger.Debug().Interface("round", key).Msg("discarding stale decision")
		return false, nil
	}

	fallback := false
	switch {
	case d.err != nil:
		if ctx.Err() != nil {
			return false, ctx.Err()
		}
		g.logger.Warn().Err(d.err).Int("player", key.Player).Msg("decision failed, falling back")
		d.action, fallback = Fallback(actions), true
	case len(actions) > 0 && utils.FindIndex(actions, d.action) < 0:
		g.logger.Warn().Stringer("action", d.action).Int("player", key.Player).Msg("decision outside the legal set, falling back")
		d.action, fallback = Fallback(actions), true
	}

	res := g.Engine.Dispatch(d.action)
	if !res.Valid && !fallback {
		g.logger.Warn().Stringer("action", d.action).Str("reason", res.Reason).Msg("decision rejected, falling back")
		d.action, fallback = Fallback(actions), true
		res = g.Engine.Dispatch(d.action)
	}
	if !res.Valid {
		return false, fmt.Errorf("%w: %s (%s)", ErrStalled, d.action, res.Reason)
	}

	var reasoning string
	if r, ok := seat.(agent.Reasoner); ok {
		reasoning = r.LastReasoning()
		if reasoning != "" {
			g.logger.Info().Int("player", key.Player).Str("reasoning", reasoning).Msg("agent thought")
		}
	}

	if g.onUpdate != nil {
		g.onUpdate(Update{
			Step:      step,
			Player:    key.Player,
			Action:    d.action,
			Result:    res,
			State:     g.Engine.State(),
			Reasoning: reasoning,
			Thinking:  thinking,
			Fallback:  fallback,
		})
	}
	return true, nil
}

// Fallback picks the skip action when it is legal and the first action
// otherwise.
func Fallback(actions []game.Action) game.Action {
	if i := utils.FindIndex(actions, game.Skip()); i >= 0 {
		return actions[i]
	}
	if len(actions) > 0 {
		return actions[0]
	}
	return game.Skip()
}

func (g *GameMaster) result(start time.Time) Result {
	winner, _ := g.Engine.Winner()
	return Result{
		GameID:   g.Engine.GameID(),
		Winner:   winner,
		Turns:    g.Engine.Turn(),
		Moves:    g.Engine.Moves(),
		Duration: time.Since(start),
		Finished: g.Engine.IsOver(),
	}
}
