// Package meta holds run-wide constants and logger setup.
package meta

import (
	"io"
	"os"
	"time"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
)

// AI_MOVE_DELAY paces bot seats in interactive games.
const AI_MOVE_DELAY = 800 * time.Millisecond

// EPISODES defines the number of episodes for MCTS.
const EPISODES = 150

// WITH_CUTOFF defines the rollout cutoff for MCTS.
const WITH_CUTOFF = 50

// GO_ROUTINES defines the number of goroutines to use.
const GO_ROUTINES = 8

// MAX_MOVES bounds a single game.
const MAX_MOVES = 5000

var PLAYER_COLORS = [3]string{"#e74c3c", "#3498db", "#2ecc71"}
var PLAYER_NAMES = [3]string{"Player 1", "Player 2", "Player 3"}

// InitLogger replaces the global logger. Console output is human readable,
// otherwise one JSON object per line.
func InitLogger(level string, console bool) error {
	return initLogger(os.Stderr, level, console)
}

func initLogger(out io.Writer, level string, console bool) error {
	if err := SetLevel(level); err != nil {
		return err
	}
	if console {
		out = zerolog.ConsoleWriter{Out: out, TimeFormat: time.Kitchen}
	}
	log.Logger = zerolog.New(out).With().Timestamp().Logger()
	return nil
}

// SetLevel changes the global level. An empty level means info.
func SetLevel(level string) error {
	if level == "" {
		level = zerolog.InfoLevel.String()
	}
	lvl, err := zerolog.ParseLevel(level)
	if err != nil {
		return err
	}
	zerolog.SetGlobalLevel(lvl)
	return nil
}
