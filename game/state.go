package game

import (
	"fmt"
	"maps"
	"slices"
	"time"
)

type Phase int

const (
	ReinforcePhase Phase = iota
	AttackPhase
	FortifyPhase
)

var phaseNames = [...]string{"reinforce", "attack", "fortify"}

func (p Phase) String() string {
	if p < 0 || int(p) >= len(phaseNames) {
		return fmt.Sprintf("Phase(%d)", int(p))
	}
	return phaseNames[p]
}

func (p Phase) MarshalText() ([]byte, error) {
	if p < 0 || int(p) >= len(phaseNames) {
		return nil, fmt.Errorf("unknown phase %d", int(p))
	}
	return []byte(phaseNames[p]), nil
}

func (p *Phase) UnmarshalText(text []byte) error {
	parsed, err := ParsePhase(string(text))
	if err != nil {
		return err
	}
	*p = parsed
	return nil
}

func ParsePhase(s string) (Phase, error) {
	for i, name := range phaseNames {
		if name == s {
			return Phase(i), nil
		}
	}
	return 0, fmt.Errorf("unknown phase %q", s)
}

// Kind describes who controls a seat.
type Kind string

const (
	KindHuman  Kind = "human"
	KindRandom Kind = "random"
	KindRemote Kind = "remote"
	KindSearch Kind = "search"
)

func (k Kind) IsHuman() bool { return k == KindHuman }

type Player struct {
	ID         int    `json:"id"`
	Name       string `json:"name"`
	Color      string `json:"color"`
	Kind       Kind   `json:"kind"`
	Eliminated bool   `json:"eliminated"` // monotonic, never reverts
}

type TerritoryState struct {
	Owner  int `json:"owner"`
	Armies int `json:"armies"`
}

// CombatResult records the outcome of the most recent attack.
type CombatResult struct {
	AttackerRolls  []int  `json:"attackerDice"`
	DefenderRolls  []int  `json:"defenderDice"`
	AttackerLosses int    `json:"attackerLosses"`
	DefenderLosses int    `json:"defenderLosses"`
	Conquered      bool   `json:"territoryConquered"`
	From           string `json:"attackingTerritory"`
	To             string `json:"defendingTerritory"`
}

type LogEntry struct {
	Turn      int       `json:"turnNumber"`
	Player    int       `json:"playerIndex"`
	Phase     Phase     `json:"phase"`
	Message   string    `json:"message"`
	Timestamp time.Time `json:"timestamp"`
}

// NoWinner marks a game without a winner.
const NoWinner = -1

// GameState is the dynamic state of a game. The engine owns the only mutable
// instance; everybody else works on copies.
type GameState struct {
	Players                 []Player
	Territories             map[string]TerritoryState
	CurrentPlayer           int
	Phase                   Phase
	Turn                    int
	ReinforcementsRemaining int
	LastCombat              *CombatResult
	Log                     []LogEntry
	Winner                  int
	GameOver                bool
}

// NewGameState returns an empty state for the given roster, before setup.
func NewGameState(players []Player) *GameState {
	return &GameState{
		Players:     slices.Clone(players),
		Territories: make(map[string]TerritoryState),
		Phase:       ReinforcePhase,
		Turn:        1,
		Winner:      NoWinner,
	}
}

// Copy returns a deep copy of the state.
func (gs *GameState) Copy() *GameState {
	cp := *gs
	cp.Players = slices.Clone(gs.Players)
	cp.Territories = maps.Clone(gs.Territories)
	if cp.Territories == nil {
		cp.Territories = make(map[string]TerritoryState)
	}
	cp.Log = slices.Clone(gs.Log)
	if gs.LastCombat != nil {
		lc := *gs.LastCombat
		lc.AttackerRolls = slices.Clone(lc.AttackerRolls)
		lc.DefenderRolls = slices.Clone(lc.DefenderRolls)
		cp.LastCombat = &lc
	}
	return &cp
}

// Player returns the seat with the given id.
func (gs *GameState) Player(id int) (Player, bool) {
	for _, p := range gs.Players {
		if p.ID == id {
			return p, true
		}
	}
	return Player{}, false
}

// Current returns the player whose turn it is.
func (gs *GameState) Current() Player {
	p, _ := gs.Player(gs.CurrentPlayer)
	return p
}

// CountTerritories returns how many territories the player owns.
func (gs *GameState) CountTerritories(player int) int {
	n := 0
	for _, t := range gs.Territories {
		if t.Owner == player {
			n++
		}
	}
	return n
}

// CountArmies returns the total armies the player has on the board.
func (gs *GameState) CountArmies(player int) int {
	n := 0
	for _, t := range gs.Territories {
		if t.Owner == player {
			n += t.Armies
		}
	}
	return n
}

// ActivePlayers returns the ids of the players that are not eliminated.
func (gs *GameState) ActivePlayers() []int {
	var ids []int
	for _, p := range gs.Players {
		if !p.Eliminated {
			ids = append(ids, p.ID)
		}
	}
	return ids
}

// ContinentOwner returns the player owning every territory of the continent,
// or NoWinner if it is split.
func (gs *GameState) ContinentOwner(c ContinentDef) int {
	return continentOwner(c, gs.Territories)
}

func continentOwner(c ContinentDef, territories map[string]TerritoryState) int {
	if len(c.Territories) == 0 {
		return NoWinner
	}
	first, ok := territories[c.Territories[0]]
	if !ok {
		return NoWinner
	}
	for _, id := range c.Territories[1:] {
		if t, ok := territories[id]; !ok || t.Owner != first.Owner {
			return NoWinner
		}
	}
	return first.Owner
}
