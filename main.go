package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
	"golang.org/x/exp/rand"

	"risk3p/agent"
	"risk3p/agent/llm"
	"risk3p/config"
	"risk3p/engine"
	"risk3p/experiments"
	"risk3p/game"
	"risk3p/game/maps"
	"risk3p/gamemaster"
	"risk3p/meta"
	"risk3p/searcher"
)

func main() {
	configPath := flag.String("config", "", "Config file (default risk.yaml in . or ./config)")
	seed := flag.Uint64("seed", 0, "Seed override (0 = from config)")
	watch := flag.Bool("watch", false, "Reload the log level when the config file changes")
	flag.Usage = func() {
		fmt.Fprintf(flag.CommandLine.Output(), "usage: %s [flags] play|experiment|maps\n", os.Args[0])
		flag.PrintDefaults()
	}
	flag.Parse()

	loader, err := config.Load(*configPath)
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
	cfg := loader.Get()
	if err := meta.InitLogger(cfg.Log.Level, cfg.Log.Format == "console"); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
	if *watch {
		loader.Watch(func(c config.Config) {
			if err := meta.SetLevel(c.Log.Level); err != nil {
				log.Warn().Err(err).Msg("keeping log level")
			}
		})
	}
	if *seed != 0 {
		cfg.Game.Seed = *seed
	}
	if cfg.Game.Seed == 0 {
		cfg.Game.Seed = uint64(time.Now().UnixNano())
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	cmd := flag.Arg(0)
	if cmd == "" {
		cmd = "play"
	}
	switch cmd {
	case "play":
		err = play(ctx, cfg)
	case "experiment":
		err = experiment(ctx, cfg)
	case "maps":
		for _, name := range maps.List() {
			fmt.Println(name)
		}
	default:
		flag.Usage()
		os.Exit(2)
	}
	if err != nil && !errors.Is(err, context.Canceled) {
		log.Fatal().Err(err).Str("command", cmd).Msg("failed")
	}
}

func play(ctx context.Context, cfg config.Config) error {
	m, err := maps.Load(cfg.Game.Map)
	if err != nil {
		return err
	}
	players := cfg.Roster()
	rng := rand.New(rand.NewSource(cfg.Game.Seed))

	e, err := engine.New(players, m, engine.WithSeed(rng.Uint64()))
	if err != nil {
		return err
	}

	deps, err := dependencies(cfg, m)
	if err != nil {
		return err
	}
	var agents [game.NumPlayers]agent.Agent
	var human *agent.HumanAgent
	for i, p := range players {
		deps.Rand = rand.New(rand.NewSource(rng.Uint64()))
		a, err := agent.ForKind(p.Kind, deps)
		if err != nil {
			return fmt.Errorf("seat %d: %w", i, err)
		}
		if h, ok := a.(*agent.HumanAgent); ok {
			human = h
		}
		agents[i] = a
	}

	seen := 0
	gm, err := gamemaster.New(e, agents,
		gamemaster.WithMoveDelay(cfg.Game.MoveDelay),
		gamemaster.WithMaxMoves(cfg.Game.MaxMoves),
		gamemaster.OnUpdate(func(u gamemaster.Update) {
			seen = report(os.Stdout, u, seen)
		}),
	)
	if err != nil {
		return err
	}

	if human != nil {
		var stop context.CancelFunc
		ctx, stop = context.WithCancel(ctx)
		defer stop()
		go func() {
			if err := console(ctx, human, os.Stdin, os.Stdout); err != nil {
				log.Error().Err(err).Msg("no more human input, stopping the game")
				stop()
			}
		}()
	}

	log.Info().Str("map", cfg.Game.Map).Uint64("seed", cfg.Game.Seed).Str("game", e.GameID().String()).Msg("starting game")
	res, err := gm.Run(ctx)
	if err != nil {
		return err
	}
	fmt.Println(summary(res, e))
	return nil
}

func experiment(ctx context.Context, cfg config.Config) error {
	m, err := maps.Load(cfg.Game.Map)
	if err != nil {
		return err
	}
	build, ok := experiments.Presets[cfg.Experiment.Preset]
	if !ok {
		return fmt.Errorf("unknown experiment preset %q (have %v)", cfg.Experiment.Preset, experiments.PresetNames())
	}
	for _, setup := range build(m) {
		setup.Games = cfg.Experiment.Games
		setup.Concurrency = cfg.Experiment.Concurrency
		setup.OutputDir = cfg.Experiment.OutputDir
		setup.MaxMoves = cfg.Game.MaxMoves
		setup.Seed = cfg.Game.Seed
		report, err := experiments.Run(ctx, setup)
		if err != nil {
			return err
		}
		log.Info().Str("experiment", setup.Name).Interface("wins", report.Wins).Str("dir", report.Dir).Msg("experiment done")
	}
	return nil
}

// dependencies builds what agent.ForKind needs from the configuration.
func dependencies(cfg config.Config, m *game.Map) (agent.Deps, error) {
	remote := []agent.RemoteOption{
		agent.WithMaxAttempts(uint(cfg.Remote.MaxAttempts)),
		agent.WithBackoff(cfg.Remote.Backoff),
	}
	if cfg.Remote.RateEvery > 0 {
		remote = append(remote, agent.WithRateLimit(cfg.Remote.RateEvery, cfg.Remote.RateBurst))
	}
	deps := agent.Deps{
		Remote: remote,
		Search: func() (agent.Agent, error) {
			opts := []searcher.Option{
				searcher.WithEpisodes(cfg.Search.Episodes),
				searcher.WithDuration(cfg.Search.Duration),
				searcher.WithCutoff(cfg.Search.Cutoff),
				searcher.WithGoroutines(cfg.Search.Goroutines),
				searcher.WithEvaluationFn(cfg.Search.Evaluation),
				searcher.WithSeed(cfg.Game.Seed),
			}
			s, err := searcher.NewMCTS(m, opts...)
			if err != nil {
				return nil, err
			}
			return s, nil
		},
	}

	llmCfg, err := llm.ParseConfig()
	if err != nil {
		return deps, err
	}
	completer, err := llm.New(llmCfg)
	switch {
	case errors.Is(err, llm.ErrNotConfigured):
		log.Debug().Msg("no remote endpoint configured")
	case err != nil:
		return deps, err
	default:
		deps.Completer = completer
		log.Info().Str("provider", llmCfg.Provider).Str("model", llmCfg.Model).Msg("remote endpoint configured")
	}
	return deps, nil
}

// report prints the log entries added since seen and returns the new count.
func report(out io.Writer, u gamemaster.Update, seen int) int {
	entries := u.State.Log
	if seen > len(entries) {
		seen = 0
	}
	for _, entry := range entries[seen:] {
		p, _ := u.State.Player(entry.Player)
		fmt.Fprintf(out, "[turn %d] %s: %s\n", entry.Turn, p.Name, entry.Message)
	}
	if u.Reasoning != "" {
		fmt.Fprintf(out, "  thought: %s\n", u.Reasoning)
	}
	return len(entries)
}

func summary(res gamemaster.Result, e *engine.Engine) string {
	if !res.Finished {
		return fmt.Sprintf("Stopped after %d moves without a winner.", res.Moves)
	}
	if res.Winner == game.NoWinner {
		return "Game over without a winner."
	}
	p, _ := e.State().Player(res.Winner)
	return fmt.Sprintf("%s wins after %d turns (%d moves, %s).", p.Name, res.Turns, res.Moves, res.Duration.Round(time.Millisecond))
}

func init() {
	zerolog.DurationFieldUnit = time.Millisecond
}
