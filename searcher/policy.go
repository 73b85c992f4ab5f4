package searcher

import (
	"math"
	"sync"

	"risk3p/game"
)

// Hyperparameters for MCTS

const CSquared = 2.0 // Exploration constant

const Win = 1.0  // Reward for winning outcome
const Loss = 0.0 // Reward for any losing outcome, whoever won

type uct struct {
	numerator float64
}

func newUCT(cSquared float64, N float64) *uct {
	if N == 0 {
		panic("N cannot be 0")
	}
	return &uct{numerator: cSquared * math.Log(N)}
}

func (u uct) evaluate(q float64, n float64) float64 {
	if n == 0 {
		panic("n cannot be 0")
	}
	// UCT = q/n + sqrt(c^2*ln(N)/n)
	return q/n + math.Sqrt(u.numerator/n)
}

// arm holds the statistics of one root action.
type arm struct {
	action  game.Action
	visits  float64
	rewards float64
}

type root struct {
	mu     sync.Mutex
	arms   []*arm
	visits float64
}

// selects the unvisited arm first, then the arm with the highest UCT value.
// A visit is counted immediately so parallel episodes spread out.
func (r *root) selects() *arm {
	r.mu.Lock()
	defer r.mu.Unlock()

	var best *arm
	for _, a := range r.arms {
		if a.visits == 0 {
			best = a
			break
		}
	}
	if best == nil {
		policy := newUCT(CSquared, r.visits)
		bestScore := math.Inf(-1)
		for _, a := range r.arms {
			if score := policy.evaluate(a.rewards, a.visits); score > bestScore {
				best, bestScore = a, score
			}
		}
		if best == nil { // Every arm was rejected
			best = r.arms[0]
		}
	}
	best.visits++
	r.visits++
	return best
}

func (r *root) backup(a *arm, reward float64) {
	r.mu.Lock()
	a.rewards += reward
	r.mu.Unlock()
}

// Policy returns the visit share of each root action.
func (r *root) Policy() map[game.Action]float64 {
	r.mu.Lock()
	defer r.mu.Unlock()
	policy := make(map[game.Action]float64, len(r.arms))
	for _, a := range r.arms {
		if r.visits > 0 {
			policy[a.action] = a.visits / r.visits
		} else {
			policy[a.action] = 0
		}
	}
	return policy
}
