package experiments

import (
	"fmt"
	"slices"

	"risk3p/experiments/metrics"
	"risk3p/game"
)

var random = metrics.AgentConfig{ID: 0, Kind: string(game.KindRandom)}

// Presets builds the named experiment's setups. Every setup pits one search
// configuration against two random seats.
var Presets = map[string]func(m *game.Map) []Setup{
	"baseline":        Baseline,
	"parallelization": Parallelization,
	"cutoff":          Cutoff,
	"evaluation":      Evaluation,
}

func PresetNames() []string {
	names := make([]string, 0, len(Presets))
	for name := range Presets {
		names = append(names, name)
	}
	slices.Sort(names)
	return names
}

func versusRandom(name string, m *game.Map, config metrics.AgentConfig) Setup {
	return Setup{
		Name:   name,
		Map:    m,
		Games:  NumGames,
		Seats:  [game.NumPlayers]metrics.AgentConfig{config, random, random},
		Rotate: true,
	}
}

func Baseline(m *game.Map) []Setup {
	search := metrics.AgentConfig{ID: 1, Kind: string(game.KindSearch), Goroutines: 4, Duration: TimeBudget}
	return []Setup{versusRandom("baseline", m, search)}
}

func Parallelization(m *game.Map) []Setup {
	var setups []Setup
	for i, n := range []int{1, 4, 8, 16, 32} {
		config := metrics.AgentConfig{ID: i + 1, Kind: string(game.KindSearch), Goroutines: n, Duration: TimeBudget}
		setups = append(setups, versusRandom(fmt.Sprintf("parallelization_%d", n), m, config))
	}
	return setups
}

func Cutoff(m *game.Map) []Setup {
	var setups []Setup
	for i, cutoff := range []int{10, 25, 50, 100} {
		config := metrics.AgentConfig{ID: i + 1, Kind: string(game.KindSearch), Goroutines: 8, Duration: TimeBudget, Cutoff: cutoff}
		setups = append(setups, versusRandom(fmt.Sprintf("cutoff_%d", cutoff), m, config))
	}
	return setups
}

func Evaluation(m *game.Map) []Setup {
	var setups []Setup
	for i, name := range []string{"resources", "connectivity"} {
		config := metrics.AgentConfig{ID: i + 1, Kind: string(game.KindSearch), Goroutines: 8, Duration: TimeBudget, Evaluation: name}
		setups = append(setups, versusRandom("evaluation_"+name, m, config))
	}
	return setups
}
