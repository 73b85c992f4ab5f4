package agent

import (
	"context"
	"fmt"
	"sync"

	"github.com/google/uuid"

	"risk3p/game"
)

// HumanAgent waits for an external submission. Only one decision round is
// pending at a time; submissions for any other round are discarded.
type HumanAgent struct {
	mu      sync.Mutex
	pending *round
}

type round struct {
	id      uuid.UUID
	actions []game.Action
	state   game.Serialized
	ch      chan game.Action
}

func NewHumanAgent() *HumanAgent {
	return &HumanAgent{}
}

func (h *HumanAgent) Decide(ctx context.Context, state game.Serialized, actions []game.Action, _ game.Phase) (game.Action, error) {
	if a, ok := Trivial(actions); ok {
		return a, nil
	}

	r := &round{
		id:      uuid.New(),
		actions: append([]game.Action(nil), actions...),
		state:   state,
		ch:      make(chan game.Action, 1),
	}
	h.mu.Lock()
	h.pending = r
	h.mu.Unlock()

	defer func() {
		h.mu.Lock()
		if h.pending == r {
			h.pending = nil
		}
		h.mu.Unlock()
	}()

	select {
	case a := <-r.ch:
		return a, nil
	case <-ctx.Done():
		return game.Action{}, ctx.Err()
	}
}

// Submit resolves the pending round with action.
func (h *HumanAgent) Submit(action game.Action) error {
	h.mu.Lock()
	defer h.mu.Unlock()
	if h.pending == nil {
		return ErrNoPendingDecision
	}
	h.resolve(action)
	return nil
}

// SubmitFor resolves the pending round only if it is still roundID.
func (h *HumanAgent) SubmitFor(roundID uuid.UUID, action game.Action) error {
	h.mu.Lock()
	defer h.mu.Unlock()
	if h.pending == nil {
		return ErrNoPendingDecision
	}
	if h.pending.id != roundID {
		return ErrStaleRound
	}
	h.resolve(action)
	return nil
}

// SubmitChoice resolves the pending round with the 1-based choice from its
// legal-action list.
func (h *HumanAgent) SubmitChoice(choice int) error {
	h.mu.Lock()
	defer h.mu.Unlock()
	if h.pending == nil {
		return ErrNoPendingDecision
	}
	if choice < 1 || choice > len(h.pending.actions) {
		return fmt.Errorf("%w: %d not in 1-%d", ErrChoiceOutOfRange, choice, len(h.pending.actions))
	}
	h.resolve(h.pending.actions[choice-1])
	return nil
}

// resolve must be called with mu held.
func (h *HumanAgent) resolve(action game.Action) {
	h.pending.ch <- action
	h.pending = nil
}

func (h *HumanAgent) Waiting() bool {
	h.mu.Lock()
	defer h.mu.Unlock()
	return h.pending != nil
}

// PendingRound returns the id of the round waiting for a submission.
func (h *HumanAgent) PendingRound() (uuid.UUID, bool) {
	h.mu.Lock()
	defer h.mu.Unlock()
	if h.pending == nil {
		return uuid.Nil, false
	}
	return h.pending.id, true
}

// Pending returns the transcript and actions of the waiting round.
func (h *HumanAgent) Pending() (game.Serialized, []game.Action, bool) {
	h.mu.Lock()
	defer h.mu.Unlock()
	if h.pending == nil {
		return game.Serialized{}, nil, false
	}
	return h.pending.state, append([]game.Action(nil), h.pending.actions...), true
}
