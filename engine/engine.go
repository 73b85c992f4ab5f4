package engine

import (
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
	"golang.org/x/exp/rand"

	"risk3p/game"
)

var ErrPlayerCount = errors.New("exactly 3 players with ids 0, 1 and 2 are required")

// transitions is the only way phases move. The fortify edge hands the turn to
// the next active player.
var transitions = map[game.Phase]game.Phase{
	game.ReinforcePhase: game.AttackPhase,
	game.AttackPhase:    game.FortifyPhase,
	game.FortifyPhase:   game.ReinforcePhase,
}

// Engine owns the mutable game state. Every mutation goes through Dispatch.
// It is not safe for concurrent use; the orchestration loop is its only writer.
type Engine struct {
	state  *game.GameState
	m      *game.Map
	rules  *game.StandardRules
	rng    *rand.Rand
	roller game.Roller
	logger zerolog.Logger
	clock  func() time.Time
	gameID uuid.UUID

	started bool
	moves   int

	forkSeed uint64
	forks    *rand.Rand // Seeds for clones, kept apart from rng
}

type Option func(*Engine)

// WithRand sets the source used for setup and, unless WithRoller is given, dice.
func WithRand(rng *rand.Rand) Option {
	return func(e *Engine) {
		e.rng = rng
	}
}

// WithSeed also fixes the seeds handed to clones that bring no source of their own.
func WithSeed(seed uint64) Option {
	return func(e *Engine) {
		e.rng = rand.New(rand.NewSource(seed))
		e.forkSeed = seed ^ 0x9e3779b97f4a7c15
	}
}

func WithRoller(r game.Roller) Option {
	return func(e *Engine) {
		e.roller = r
	}
}

func WithLogger(l zerolog.Logger) Option {
	return func(e *Engine) {
		e.logger = l
	}
}

func WithClock(clock func() time.Time) Option {
	return func(e *Engine) {
		e.clock = clock
	}
}

func WithGameID(id uuid.UUID) Option {
	return func(e *Engine) {
		e.gameID = id
	}
}

// New creates an engine for a fixed three seat roster. Call SetupGame before playing.
func New(players []game.Player, m *game.Map, opts ...Option) (*Engine, error) {
	if err := checkRoster(players); err != nil {
		return nil, err
	}
	if m == nil {
		return nil, fmt.Errorf("engine: nil map")
	}
	return newEngine(game.NewGameState(players), m, opts...), nil
}

func newEngine(state *game.GameState, m *game.Map, opts ...Option) *Engine {
	e := &Engine{
		state:  state,
		m:      m,
		rules:  game.NewStandardRules(),
		logger: log.Logger,
		clock:  time.Now,
		gameID: uuid.New(),
	}
	for _, opt := range opts {
		opt(e)
	}
	if e.rng == nil {
		e.rng = rand.New(rand.NewSource(uint64(time.Now().UnixNano())))
	}
	if e.forkSeed == 0 {
		e.forkSeed = uint64(time.Now().UnixNano())
	}
	if e.roller == nil {
		e.roller = game.NewDiceRoller(e.rng)
	}
	e.logger = e.logger.With().Str("component", "engine").Str("game", e.gameID.String()).Logger()
	return e
}

func checkRoster(players []game.Player) error {
	if len(players) != game.NumPlayers {
		return fmt.Errorf("%w: got %d", ErrPlayerCount, len(players))
	}
	for i, p := range players {
		if p.ID != i {
			return fmt.Errorf("%w: seat %d has id %d", ErrPlayerCount, i, p.ID)
		}
	}
	return nil
}

// SetupGame distributes the territories and grants the first player's
// reinforcements. Only the first call has an effect.
func (e *Engine) SetupGame() {
	if e.started {
		e.logger.Warn().Msg("setup called twice, ignoring")
		return
	}
	e.started = true
	e.state.Territories = game.Distribute(e.state.Players, e.m, e.rng)
	e.state.ReinforcementsRemaining = game.CalculateReinforcements(e.state.CurrentPlayer, e.state.Territories, e.m.Continents)
	e.addLog("Game started! Territories have been distributed.")
}

// Validate checks an action against the current state without applying it.
func (e *Engine) Validate(action game.Action) game.ValidationResult {
	return game.Validate(e.state, action, e.m)
}

// Dispatch validates and applies one action. Invalid actions are logged and
// leave the state untouched.
func (e *Engine) Dispatch(action game.Action) game.ValidationResult {
	res := e.Validate(action)
	if !res.Valid {
		e.logger.Warn().
			Str("reason", res.Reason).
			Stringer("action", action).
			Int("player", e.state.CurrentPlayer).
			Msg("invalid action")
		return res
	}

	switch action.Type {
	case game.ReinforceAction:
		e.applyReinforce(action)
	case game.AttackAction:
		e.applyAttack(action)
	case game.FortifyAction:
		e.applyFortify(action)
	case game.SkipAction:
		e.applySkip()
	}
	e.moves++

	e.checkWinCondition()
	return res
}

func (e *Engine) applyReinforce(action game.Action) {
	t := e.state.Territories[action.TerritoryID]
	t.Armies += action.Armies
	e.state.Territories[action.TerritoryID] = t
	e.state.ReinforcementsRemaining -= action.Armies

	e.addLog(fmt.Sprintf("Placed %d armies on %s", action.Armies, e.m.Name(action.TerritoryID)))

	if e.state.ReinforcementsRemaining <= 0 {
		e.advancePhase(game.AttackPhase)
	}
}

func (e *Engine) applyAttack(action game.Action) {
	from := e.state.Territories[action.From]
	to := e.state.Territories[action.To]

	result := e.rules.ResolveCombat(e.roller, action.AttackDice, to.Armies)
	from.Armies -= result.AttackerLosses
	to.Armies -= result.DefenderLosses

	fromName, toName := e.m.Name(action.From), e.m.Name(action.To)
	attackerDice, defenderDice := game.FormatDice(result.AttackerRolls), game.FormatDice(result.DefenderRolls)

	conquered := to.Armies <= 0
	previousOwner := to.Owner
	if conquered {
		to.Owner = e.state.CurrentPlayer
		from.Armies -= action.AttackDice
		to.Armies = action.AttackDice
	}
	e.state.Territories[action.From] = from
	e.state.Territories[action.To] = to

	if conquered {
		e.addLog(fmt.Sprintf("Conquered %s from %s! %s vs %s", toName, fromName, attackerDice, defenderDice))
		e.checkElimination(previousOwner)
	} else {
		e.addLog(fmt.Sprintf("Attacked %s from %s: %s vs %s → Lost %d, Dealt %d",
			toName, fromName, attackerDice, defenderDice, result.AttackerLosses, result.DefenderLosses))
	}

	e.state.LastCombat = &game.CombatResult{
		AttackerRolls:  result.AttackerRolls,
		DefenderRolls:  result.DefenderRolls,
		AttackerLosses: result.AttackerLosses,
		DefenderLosses: result.DefenderLosses,
		Conquered:      conquered,
		From:           action.From,
		To:             action.To,
	}
}

func (e *Engine) checkElimination(player int) {
	if e.state.CountTerritories(player) > 0 {
		return
	}
	for i := range e.state.Players {
		p := &e.state.Players[i]
		if p.ID == player && !p.Eliminated {
			p.Eliminated = true
			e.addLog(fmt.Sprintf("%s has been eliminated!", p.Name))
		}
	}
}

func (e *Engine) applyFortify(action game.Action) {
	from := e.state.Territories[action.From]
	to := e.state.Territories[action.To]
	from.Armies -= action.Armies
	to.Armies += action.Armies
	e.state.Territories[action.From] = from
	e.state.Territories[action.To] = to

	e.addLog(fmt.Sprintf("Fortified: moved %d from %s to %s", action.Armies, e.m.Name(action.From), e.m.Name(action.To)))
	e.advancePhase(game.ReinforcePhase)
}

func (e *Engine) applySkip() {
	switch e.state.Phase {
	case game.AttackPhase:
		e.addLog("Skipped attack phase")
		e.advancePhase(game.FortifyPhase)
	case game.FortifyPhase:
		e.addLog("Skipped fortify phase")
		e.advancePhase(game.ReinforcePhase)
	}
}

// advancePhase follows one edge of the transition table. Anything else is a
// bug in the caller and is refused.
func (e *Engine) advancePhase(next game.Phase) bool {
	current := e.state.Phase
	if want, ok := transitions[current]; !ok || want != next {
		e.logger.Error().
			Stringer("from", current).
			Stringer("to", next).
			Msg("refusing phase transition not in table")
		return false
	}

	switch next {
	case game.AttackPhase:
		e.state.Phase = next
		e.state.LastCombat = nil
	case game.FortifyPhase:
		e.state.Phase = next
	case game.ReinforcePhase:
		e.advanceTurn()
	}
	return true
}

func (e *Engine) advanceTurn() {
	next, ok := e.nextActivePlayer()
	if !ok {
		e.logger.Error().Int("turn", e.state.Turn).Msg("no active players left, ending game without a winner")
		e.state.GameOver = true
		e.state.Winner = game.NoWinner
		return
	}

	e.state.CurrentPlayer = next
	e.state.Phase = game.ReinforcePhase
	e.state.Turn++
	e.state.LastCombat = nil
	e.state.ReinforcementsRemaining = game.CalculateReinforcements(next, e.state.Territories, e.m.Continents)
	e.addLog(fmt.Sprintf("--- %s's turn (%d reinforcements) ---", e.state.Current().Name, e.state.ReinforcementsRemaining))
}

// nextActivePlayer scans the seats after the current one, wrapping around at
// most once.
func (e *Engine) nextActivePlayer() (int, bool) {
	n := len(e.state.Players)
	for step := 1; step <= n; step++ {
		seat := (e.state.CurrentPlayer + step) % n
		if !e.state.Players[seat].Eliminated {
			return e.state.Players[seat].ID, true
		}
	}
	return 0, false
}

func (e *Engine) checkWinCondition() {
	if e.state.GameOver {
		return
	}
	active := e.state.ActivePlayers()
	switch len(active) {
	case 1:
		e.state.Winner = active[0]
		e.state.GameOver = true
		winner, _ := e.state.Player(active[0])
		e.addLog(fmt.Sprintf("%s wins the game!", winner.Name))
	case 0:
		e.logger.Error().Msg("every player is eliminated, ending game without a winner")
		e.state.Winner = game.NoWinner
		e.state.GameOver = true
	}
}

func (e *Engine) addLog(message string) {
	entry := game.LogEntry{
		Turn:      e.state.Turn,
		Player:    e.state.CurrentPlayer,
		Phase:     e.state.Phase,
		Message:   message,
		Timestamp: e.clock(),
	}
	e.state.Log = append(e.state.Log, entry)
	e.logger.Debug().
		Int("turn", entry.Turn).
		Int("player", entry.Player).
		Stringer("phase", entry.Phase).
		Msg(message)
}
