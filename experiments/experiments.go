// Package experiments plays batches of bot games and records per-game and
// per-move metrics.
package experiments

import (
	"context"
	"fmt"
	"time"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
	"golang.org/x/exp/rand"
	"golang.org/x/sync/errgroup"

	"risk3p/agent"
	"risk3p/engine"
	"risk3p/experiments/metrics"
	"risk3p/game"
	"risk3p/gamemaster"
	"risk3p/searcher"
	"risk3p/utils"
)

const (
	NumGames   = 30 // Per setup
	TimeBudget = 10 * time.Millisecond
	MaxMoves   = 5000
)

type Setup struct {
	Name        string
	Map         *game.Map
	Games       int
	Concurrency int
	Seats       [game.NumPlayers]metrics.AgentConfig
	Seed        uint64
	MaxMoves    int
	// Rotate shifts the seat assignment by one every game so no config
	// always moves first.
	Rotate bool
	// OutputDir receives the CSV files. Nothing is written when empty.
	OutputDir string
}

type Report struct {
	Games []metrics.GameRecord
	Moves []metrics.MoveRecord
	Wins  map[int]int // AgentConfig.ID -> games won
	Dir   string
}

// Run plays s.Games games, at most s.Concurrency at a time.
func Run(ctx context.Context, s Setup) (Report, error) {
	if s.Map == nil {
		return Report{}, fmt.Errorf("experiment %q: no map", s.Name)
	}
	if s.Games <= 0 {
		s.Games = NumGames
	}
	if s.Concurrency <= 0 {
		s.Concurrency = 1
	}
	if s.MaxMoves <= 0 {
		s.MaxMoves = MaxMoves
	}

	logger := log.With().Str("component", "experiments").Str("experiment", s.Name).Logger()
	logger.Info().Int("games", s.Games).Int("concurrency", s.Concurrency).Msg("starting experiment")

	type outcome struct {
		game  metrics.GameRecord
		moves []metrics.MoveRecord
	}
	outcomes := make([]outcome, s.Games)

	g, ctx := errgroup.WithContext(ctx)
	g.SetLimit(s.Concurrency)
	for i := 0; i < s.Games; i++ {
		g.Go(func() error {
			seats := s.Seats
			if s.Rotate {
				copy(seats[:], utils.Rotate(s.Seats[:], i))
			}
			record, moves, err := runGame(ctx, s, i+1, seats)
			if err != nil {
				return fmt.Errorf("game %d: %w", i+1, err)
			}
			outcomes[i] = outcome{game: record, moves: moves}
			logger.Info().Int("game", i+1).Int("winner", record.Winner).Int("moves", record.TotalMoves).Msg("completed game")
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return Report{}, err
	}

	report := Report{Wins: make(map[int]int)}
	for _, o := range outcomes {
		report.Games = append(report.Games, o.game)
		report.Moves = append(report.Moves, o.moves...)
		if o.game.Winner != game.NoWinner {
			report.Wins[o.game.Seats[o.game.Winner]]++
		}
	}
	logger.Info().Interface("wins", report.Wins).Msg("completed experiment")

	if s.OutputDir == "" {
		return report, nil
	}
	dir, err := store(s, report)
	if err != nil {
		return report, err
	}
	report.Dir = dir
	return report, nil
}

func store(s Setup, report Report) (string, error) {
	writer, err := metrics.NewWriter(s.OutputDir, s.Name)
	if err != nil {
		return "", fmt.Errorf("failed to create experiment writer: %w", err)
	}
	if err := writer.WriteAgentConfigs(configs(s.Seats)); err != nil {
		return "", fmt.Errorf("failed to store agent configs: %w", err)
	}
	if err := writer.WriteGameRecords(report.Games); err != nil {
		return "", fmt.Errorf("failed to write game records: %w", err)
	}
	if err := writer.WriteMoveRecords(report.Moves); err != nil {
		return "", fmt.Errorf("failed to write move records: %w", err)
	}
	log.Info().Str("dir", writer.Dir()).Msg("stored experiment results")
	return writer.Dir(), nil
}

// configs returns each distinct seat config once.
func configs(seats [game.NumPlayers]metrics.AgentConfig) []metrics.AgentConfig {
	var out []metrics.AgentConfig
	seen := map[int]bool{}
	for _, c := range seats {
		if !seen[c.ID] {
			seen[c.ID] = true
			out = append(out, c)
		}
	}
	return out
}

// runGame executes a single game and returns its record and the metrics of
// every move.
func runGame(ctx context.Context, s Setup, id int, seats [game.NumPlayers]metrics.AgentConfig) (metrics.GameRecord, []metrics.MoveRecord, error) {
	seed := s.Seed + uint64(id)
	players := make([]game.Player, game.NumPlayers)
	var agents [game.NumPlayers]agent.Agent
	for i, c := range seats {
		players[i] = game.Player{ID: i, Name: fmt.Sprintf("Agent %d", c.ID), Kind: game.Kind(c.Kind)}
		a, err := createAgent(s.Map, c, seed*uint64(game.NumPlayers)+uint64(i))
		if err != nil {
			return metrics.GameRecord{}, nil, err
		}
		agents[i] = a
	}

	e, err := engine.New(players, s.Map, engine.WithSeed(seed), engine.WithLogger(zerolog.Nop()))
	if err != nil {
		return metrics.GameRecord{}, nil, err
	}
	e.SetupGame()
	starting := e.CurrentPlayer()

	var moves []metrics.MoveRecord
	gm, err := gamemaster.New(e, agents,
		gamemaster.WithMaxMoves(s.MaxMoves),
		gamemaster.WithLogger(zerolog.Nop()),
		gamemaster.OnUpdate(func(u gamemaster.Update) {
			mm := metrics.MoveMetric{
				Step:   u.Step,
				Turn:   u.State.Turn,
				Player: u.Player,
				Phase:  u.State.Phase.String(),
				Action: u.Action.String(),
			}
			if m, ok := agents[u.Player].(*searcher.MCTS); ok {
				mm.SearchMetric = m.LastMetric()
			}
			moves = append(moves, metrics.MoveRecord{Game: id, MoveMetric: mm})
		}),
	)
	if err != nil {
		return metrics.GameRecord{}, nil, err
	}

	startTime := time.Now()
	res, err := gm.Run(ctx)
	if err != nil {
		return metrics.GameRecord{}, nil, err
	}
	endTime := time.Now()

	var ids [game.NumPlayers]int
	for i, c := range seats {
		ids[i] = c.ID
	}
	return metrics.GameRecord{
		ID:    id,
		Seats: ids,
		GameMetric: metrics.GameMetric{
			ID:             res.GameID,
			StartingPlayer: starting,
			Winner:         res.Winner,
			StartTime:      startTime,
			EndTime:        endTime,
			Duration:       res.Duration,
			TotalMoves:     res.Moves,
			Turns:          res.Turns,
		},
	}, moves, nil
}

func createAgent(m *game.Map, config metrics.AgentConfig, seed uint64) (agent.Agent, error) {
	rng := rand.New(rand.NewSource(seed))
	return agent.ForKind(game.Kind(config.Kind), agent.Deps{
		Rand:   rng,
		Search: func() (agent.Agent, error) {
			s, err := createMCTS(m, config, seed)
			if err != nil {
				return nil, err
			}
			return s, nil
		},
	})
}

func createMCTS(m *game.Map, config metrics.AgentConfig, seed uint64) (*searcher.MCTS, error) {
	options := []searcher.Option{searcher.WithSeed(seed), searcher.WithMetrics(), searcher.WithLogger(zerolog.Nop())}

	if config.Episodes > 0 {
		options = append(options, searcher.WithEpisodes(config.Episodes))
	}
	if config.Duration > 0 {
		options = append(options, searcher.WithDuration(config.Duration))
	}
	if config.Cutoff > 0 {
		options = append(options, searcher.WithCutoff(config.Cutoff))
	}
	if config.Goroutines > 0 {
		options = append(options, searcher.WithGoroutines(config.Goroutines))
	}
	if config.Evaluation != "" {
		options = append(options, searcher.WithEvaluationFn(config.Evaluation))
	}
	return searcher.NewMCTS(m, options...)
}
