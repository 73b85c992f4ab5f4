package agent

import (
	"fmt"

	"github.com/rs/zerolog/log"
	"golang.org/x/exp/rand"

	"risk3p/agent/llm"
	"risk3p/game"
)

// Deps carries what the factory may need to build a decision source.
type Deps struct {
	Rand      *rand.Rand
	Completer llm.Completer // nil when no remote endpoint is configured
	Remote    []RemoteOption
	// Search builds the search decision source; it lives in its own package.
	Search func() (Agent, error)
}

// ForKind returns the decision source for a seat's control kind. Remote and
// search seats fall back to random when they cannot be built.
func ForKind(kind game.Kind, deps Deps) (Agent, error) {
	rng := deps.Rand
	if rng == nil {
		rng = rand.New(rand.NewSource(1))
	}

	switch kind {
	case game.KindHuman:
		return NewHumanAgent(), nil
	case game.KindRandom:
		return NewRandomAgent(rng), nil
	case game.KindRemote:
		if deps.Completer == nil {
			log.Warn().Str("kind", string(kind)).Msg("no remote endpoint configured, falling back to random")
			return NewRandomAgent(rng), nil
		}
		opts := append([]RemoteOption{WithFallback(NewRandomAgent(rng))}, deps.Remote...)
		return NewRemoteAgent(deps.Completer, opts...), nil
	case game.KindSearch:
		if deps.Search == nil {
			log.Warn().Str("kind", string(kind)).Msg("search not available, falling back to random")
			return NewRandomAgent(rng), nil
		}
		a, err := deps.Search()
		if err != nil {
			log.Warn().Err(err).Msg("failed to build search agent, falling back to random")
			return NewRandomAgent(rng), nil
		}
		return a, nil
	default:
		return nil, fmt.Errorf("unknown player kind %q", kind)
	}
}
