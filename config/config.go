// Package config loads run settings from a YAML file and RISK_* environment
// variables.
package config

import (
	"errors"
	"fmt"
	"io/fs"
	"strings"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"
	"github.com/rs/zerolog/log"
	"github.com/spf13/viper"

	"risk3p/game"
	"risk3p/meta"
)

// Config holds all configuration for the application
type Config struct {
	Game       GameConfig       `mapstructure:"game"`
	Players    []PlayerConfig   `mapstructure:"players"`
	Log        LogConfig        `mapstructure:"log"`
	Remote     RemoteConfig     `mapstructure:"remote"`
	Search     SearchConfig     `mapstructure:"search"`
	Experiment ExperimentConfig `mapstructure:"experiment"`
}

type GameConfig struct {
	Map       string        `mapstructure:"map"`
	Seed      uint64        `mapstructure:"seed"` // 0 picks a seed from the clock
	MoveDelay time.Duration `mapstructure:"move_delay"`
	MaxMoves  int           `mapstructure:"max_moves"`
}

type PlayerConfig struct {
	Name  string `mapstructure:"name"`
	Color string `mapstructure:"color"`
	Kind  string `mapstructure:"kind"`
}

type LogConfig struct {
	Level  string `mapstructure:"level"`
	Format string `mapstructure:"format"` // console or json
}

// RemoteConfig tunes the remote decision source. Endpoint settings come from
// the RISK_LLM_* variables.
type RemoteConfig struct {
	MaxAttempts int           `mapstructure:"max_attempts"`
	Backoff     time.Duration `mapstructure:"backoff"`
	RateEvery   time.Duration `mapstructure:"rate_every"` // 0 disables pacing
	RateBurst   int           `mapstructure:"rate_burst"`
}

type SearchConfig struct {
	Episodes   int           `mapstructure:"episodes"`
	Duration   time.Duration `mapstructure:"duration"`
	Cutoff     int           `mapstructure:"cutoff"`
	Goroutines int           `mapstructure:"goroutines"`
	Evaluation string        `mapstructure:"evaluation"`
}

type ExperimentConfig struct {
	Preset      string `mapstructure:"preset"`
	Games       int    `mapstructure:"games"`
	Concurrency int    `mapstructure:"concurrency"`
	OutputDir   string `mapstructure:"output_dir"`
}

func setViperDefaults(v *viper.Viper) {
	v.SetDefault("game.map", "classic")
	v.SetDefault("game.seed", 0)
	v.SetDefault("game.move_delay", meta.AI_MOVE_DELAY)
	v.SetDefault("game.max_moves", meta.MAX_MOVES)

	players := make([]map[string]any, game.NumPlayers)
	for i := range players {
		kind := game.KindRemote
		if i == 0 {
			kind = game.KindHuman
		}
		players[i] = map[string]any{"name": meta.PLAYER_NAMES[i], "color": meta.PLAYER_COLORS[i], "kind": string(kind)}
	}
	v.SetDefault("players", players)

	v.SetDefault("log.level", "info")
	v.SetDefault("log.format", "console")

	v.SetDefault("remote.max_attempts", 3)
	v.SetDefault("remote.backoff", time.Second)
	v.SetDefault("remote.rate_every", 0)
	v.SetDefault("remote.rate_burst", 1)

	v.SetDefault("search.episodes", meta.EPISODES)
	v.SetDefault("search.duration", 0)
	v.SetDefault("search.cutoff", meta.WITH_CUTOFF)
	v.SetDefault("search.goroutines", meta.GO_ROUTINES)
	v.SetDefault("search.evaluation", "resources")

	v.SetDefault("experiment.preset", "baseline")
	v.SetDefault("experiment.games", 30)
	v.SetDefault("experiment.concurrency", 4)
	v.SetDefault("experiment.output_dir", "experiments/results")
}

// Loader owns a viper instance and the last valid Config decoded from it.
type Loader struct {
	v  *viper.Viper
	mu sync.RWMutex
	c  Config
}

// Load reads configPath, or risk.yaml from the usual places when empty. A
// missing file is not an error.
func Load(configPath string) (*Loader, error) {
	v := viper.New()
	setViperDefaults(v)

	if configPath != "" {
		v.SetConfigFile(configPath)
	} else {
		v.SetConfigName("risk")
		v.SetConfigType("yaml")
		v.AddConfigPath(".")
		v.AddConfigPath("./config")
	}

	v.SetEnvPrefix("RISK")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		switch {
		case errors.As(err, &notFound):
		case configPath != "" && errors.Is(err, fs.ErrNotExist):
		default:
			return nil, fmt.Errorf("error reading config file: %w", err)
		}
	}

	l := &Loader{v: v}
	if err := l.reload(); err != nil {
		return nil, err
	}
	return l, nil
}

func (l *Loader) reload() error {
	var c Config
	if err := l.v.Unmarshal(&c); err != nil {
		return fmt.Errorf("unable to decode config into struct: %w", err)
	}
	if err := Validate(&c); err != nil {
		return fmt.Errorf("config validation failed: %w", err)
	}
	l.mu.Lock()
	l.c = c
	l.mu.Unlock()
	return nil
}

// Get returns a copy of the current configuration.
func (l *Loader) Get() Config {
	l.mu.RLock()
	defer l.mu.RUnlock()
	c := l.c
	c.Players = append([]PlayerConfig(nil), l.c.Players...)
	return c
}

// Set updates one key at runtime. The change is rejected if the result does
// not validate.
func (l *Loader) Set(key string, value any) error {
	l.v.Set(key, value)
	return l.reload()
}

// ConfigFilePath returns the path of the loaded config file
func (l *Loader) ConfigFilePath() string {
	return l.v.ConfigFileUsed()
}

// Watch reloads the file when it changes. Invalid edits are logged and the
// previous configuration is kept.
func (l *Loader) Watch(onChange func(Config)) {
	l.v.OnConfigChange(func(e fsnotify.Event) {
		if err := l.reload(); err != nil {
			log.Error().Err(err).Str("file", e.Name).Msg("ignoring config change")
			return
		}
		log.Info().Str("file", e.Name).Msg("config reloaded")
		if onChange != nil {
			onChange(l.Get())
		}
	})
	l.v.WatchConfig()
}

// Roster turns the player entries into engine seats.
func (c Config) Roster() []game.Player {
	players := make([]game.Player, len(c.Players))
	for i, p := range c.Players {
		players[i] = game.Player{ID: i, Name: p.Name, Color: p.Color, Kind: game.Kind(p.Kind)}
	}
	return players
}

var kinds = map[string]bool{
	string(game.KindHuman):  true,
	string(game.KindRandom): true,
	string(game.KindRemote): true,
	string(game.KindSearch): true,
}

// Validate validates the configuration values
func Validate(c *Config) error {
	if len(c.Players) != game.NumPlayers {
		return fmt.Errorf("players must list exactly %d seats, got %d", game.NumPlayers, len(c.Players))
	}
	humans := 0
	for i, p := range c.Players {
		if !kinds[p.Kind] {
			return fmt.Errorf("players[%d].kind %q is not one of human, random, remote, search", i, p.Kind)
		}
		if p.Kind == string(game.KindHuman) {
			humans++
		}
	}
	if humans > 1 {
		return fmt.Errorf("at most one human seat is supported")
	}
	if c.Game.Map == "" {
		return fmt.Errorf("game.map must be set")
	}
	if c.Game.MoveDelay < 0 {
		return fmt.Errorf("game.move_delay must be non-negative")
	}
	if c.Game.MaxMoves < 0 {
		return fmt.Errorf("game.max_moves must be non-negative")
	}
	if c.Log.Format != "console" && c.Log.Format != "json" {
		return fmt.Errorf("log.format must be console or json")
	}
	if c.Remote.MaxAttempts < 1 {
		return fmt.Errorf("remote.max_attempts must be at least 1")
	}
	if c.Remote.Backoff < 0 || c.Remote.RateEvery < 0 {
		return fmt.Errorf("remote durations must be non-negative")
	}
	if c.Search.Episodes <= 0 && c.Search.Duration <= 0 {
		return fmt.Errorf("search needs episodes or a duration")
	}
	if c.Search.Cutoff < 0 || c.Search.Goroutines < 0 {
		return fmt.Errorf("search.cutoff and search.goroutines must be non-negative")
	}
	if _, ok := game.Evaluators[c.Search.Evaluation]; !ok {
		return fmt.Errorf("search.evaluation %q is unknown", c.Search.Evaluation)
	}
	if c.Experiment.Games < 0 || c.Experiment.Concurrency < 0 {
		return fmt.Errorf("experiment.games and experiment.concurrency must be non-negative")
	}
	return nil
}
