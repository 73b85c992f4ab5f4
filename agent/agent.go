// Package agent holds the decision sources that pick one action from the
// legal-action set on behalf of a seat.
package agent

import (
	"context"
	"errors"

	"risk3p/game"
)

var (
	ErrNoPendingDecision = errors.New("no decision pending")
	ErrStaleRound        = errors.New("submission for a stale decision round")
	ErrChoiceOutOfRange  = errors.New("choice out of range")
)

// Agent picks exactly one element of actions, or a skip when actions is
// empty. Implementations only see the serialized state and the legal-action
// set, never the engine's mutable state.
type Agent interface {
	Decide(ctx context.Context, state game.Serialized, actions []game.Action, phase game.Phase) (game.Action, error)
}

// Reasoner is implemented by agents that can explain their last choice.
type Reasoner interface {
	LastReasoning() string
}

// Trivial returns the decision when no real choice exists: a skip for an
// empty set and the sole action for a singleton.
func Trivial(actions []game.Action) (game.Action, bool) {
	switch len(actions) {
	case 0:
		return game.Skip(), true
	case 1:
		return actions[0], true
	default:
		return game.Action{}, false
	}
}

// Func adapts a function to Agent.
type Func func(ctx context.Context, state game.Serialized, actions []game.Action, phase game.Phase) (game.Action, error)

func (f Func) Decide(ctx context.Context, state game.Serialized, actions []game.Action, phase game.Phase) (game.Action, error) {
	return f(ctx, state, actions, phase)
}
