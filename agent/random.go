package agent

import (
	"context"
	"sync"

	"golang.org/x/exp/rand"

	"risk3p/game"
)

const (
	AttackBias  = 0.7
	FortifyBias = 0.5
)

// RandomAgent picks uniformly among the legal actions, biased towards
// attacking and fortifying over skipping.
type RandomAgent struct {
	mu  sync.Mutex
	rng *rand.Rand
}

func NewRandomAgent(rng *rand.Rand) *RandomAgent {
	return &RandomAgent{rng: rng}
}

func (r *RandomAgent) Decide(_ context.Context, _ game.Serialized, actions []game.Action, phase game.Phase) (game.Action, error) {
	return r.Choose(actions, phase), nil
}

// Choose is Decide without the protocol plumbing.
func (r *RandomAgent) Choose(actions []game.Action, phase game.Phase) game.Action {
	if a, ok := Trivial(actions); ok {
		return a
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	switch phase {
	case game.AttackPhase:
		return r.biased(actions, game.AttackAction, AttackBias)
	case game.FortifyPhase:
		return r.biased(actions, game.FortifyAction, FortifyBias)
	default:
		return actions[r.rng.Intn(len(actions))]
	}
}

// biased picks one of the preferred actions with probability bias, otherwise
// the skip. Without a skip it picks uniformly.
func (r *RandomAgent) biased(actions []game.Action, preferred game.ActionType, bias float64) game.Action {
	var candidates []game.Action
	skip, hasSkip := game.Action{}, false
	for _, a := range actions {
		switch a.Type {
		case preferred:
			candidates = append(candidates, a)
		case game.SkipAction:
			skip, hasSkip = a, true
		}
	}
	if len(candidates) > 0 && r.rng.Float64() < bias {
		return candidates[r.rng.Intn(len(candidates))]
	}
	if hasSkip {
		return skip
	}
	return actions[r.rng.Intn(len(actions))]
}
