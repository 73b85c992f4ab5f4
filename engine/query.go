package engine

import (
	"fmt"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"golang.org/x/exp/rand"

	"risk3p/game"
)

// LegalActions computes the legal-action set for the current state. The list
// is rebuilt on every call and follows the map's territory order.
func (e *Engine) LegalActions() []game.Action {
	s := e.state
	if s.GameOver {
		return []game.Action{}
	}

	var actions []game.Action
	switch s.Phase {
	case game.ReinforcePhase:
		for _, id := range e.m.TerritoryIDs() {
			if t, ok := s.Territories[id]; ok && t.Owner == s.CurrentPlayer {
				actions = append(actions, game.Reinforce(id, s.ReinforcementsRemaining))
			}
		}

	case game.AttackPhase:
		for _, id := range e.m.TerritoryIDs() {
			t, ok := s.Territories[id]
			if !ok || t.Owner != s.CurrentPlayer || t.Armies <= 1 {
				continue
			}
			dice := min(e.rules.MaxAttackTroops(), t.Armies-1)
			for _, adj := range e.m.Adjacency[id] {
				if s.Territories[adj].Owner != s.CurrentPlayer {
					actions = append(actions, game.Attack(id, adj, dice))
				}
			}
		}
		actions = append(actions, game.Skip())

	case game.FortifyPhase:
		ids := e.m.TerritoryIDs()
		for _, from := range ids {
			t, ok := s.Territories[from]
			if !ok || t.Owner != s.CurrentPlayer || t.Armies <= 1 {
				continue
			}
			for _, to := range ids {
				if to == from || s.Territories[to].Owner != s.CurrentPlayer {
					continue
				}
				if game.AreConnected(from, to, s.CurrentPlayer, s.Territories, e.m.Adjacency) {
					actions = append(actions, game.Fortify(from, to, t.Armies-1))
				}
			}
		}
		actions = append(actions, game.Skip())
	}
	return actions
}

// Serialize renders the current state together with its legal actions.
func (e *Engine) Serialize() game.Serialized {
	return game.Serialize(e.state, e.m, e.LegalActions())
}

// State returns a deep copy of the game state.
func (e *Engine) State() *game.GameState {
	return e.state.Copy()
}

func (e *Engine) Map() *game.Map         { return e.m }
func (e *Engine) GameID() uuid.UUID      { return e.gameID }
func (e *Engine) CurrentPlayer() int     { return e.state.CurrentPlayer }
func (e *Engine) Phase() game.Phase      { return e.state.Phase }
func (e *Engine) Turn() int              { return e.state.Turn }
func (e *Engine) Reinforcements() int    { return e.state.ReinforcementsRemaining }
func (e *Engine) IsOver() bool           { return e.state.GameOver }
func (e *Engine) Started() bool          { return e.started }
func (e *Engine) Moves() int             { return e.moves }
func (e *Engine) Players() []game.Player { return e.State().Players }
func (e *Engine) LastCombat() *game.CombatResult {
	if e.state.LastCombat == nil {
		return nil
	}
	return e.State().LastCombat
}

// Winner returns the winning player id, or false while nobody has won.
func (e *Engine) Winner() (int, bool) {
	if !e.state.GameOver || e.state.Winner == game.NoWinner {
		return game.NoWinner, false
	}
	return e.state.Winner, true
}

// Log returns a copy of the game log.
func (e *Engine) Log() []game.LogEntry {
	return append([]game.LogEntry(nil), e.state.Log...)
}

// Restore rebuilds an engine from a JSON snapshot produced by Serialize. The
// restored engine has an empty log and is already set up.
func Restore(m *game.Map, snap game.Snapshot, opts ...Option) (*Engine, error) {
	if err := checkRoster(snap.Players); err != nil {
		return nil, err
	}
	for _, id := range m.TerritoryIDs() {
		if _, ok := snap.Territories[id]; !ok {
			return nil, fmt.Errorf("restore: snapshot is missing territory %q", id)
		}
	}
	e := newEngine(snap.State(), m, opts...)
	e.started = true
	return e, nil
}

// Clone copies the engine for simulation. The clone logs nothing and, unless
// WithRand or WithSeed is given, draws from a source seeded by this engine's
// clone seeds. The engine's own dice and setup draws are never consumed.
func (e *Engine) Clone(opts ...Option) *Engine {
	base := []Option{
		WithGameID(e.gameID),
		WithLogger(zerolog.Nop()),
		WithClock(e.clock),
	}
	var given Engine
	for _, opt := range opts {
		opt(&given)
	}
	if given.rng == nil {
		base = append(base, WithSeed(e.nextForkSeed()))
	}
	c := newEngine(e.state.Copy(), e.m, append(base, opts...)...)
	c.started = e.started
	c.moves = e.moves
	return c
}

func (e *Engine) nextForkSeed() uint64 {
	if e.forks == nil {
		e.forks = rand.New(rand.NewSource(e.forkSeed))
	}
	return e.forks.Uint64()
}
