package game

import (
	"encoding/json"
	"fmt"
	"strings"
)

// Serialized is the rendering handed to decision sources: a numbered text
// transcript and a JSON snapshot carrying the same facts.
type Serialized struct {
	Text string `json:"text"`
	JSON string `json:"json"`
}

// Snapshot is the machine-readable projection of a game state.
type Snapshot struct {
	Turn                    int                       `json:"turn"`
	Phase                   Phase                     `json:"phase"`
	CurrentPlayer           int                       `json:"currentPlayer"`
	ReinforcementsRemaining int                       `json:"reinforcementsRemaining"`
	Players                 []Player                  `json:"players"`
	Territories             map[string]TerritoryState `json:"territories"`
	ValidActions            []Action                  `json:"validActions"`
	LastCombat              *CombatResult             `json:"lastCombat"`
	GameOver                bool                      `json:"gameOver"`
	Winner                  int                       `json:"winner"`
}

// NewSnapshot projects the state and its legal actions.
func NewSnapshot(state *GameState, actions []Action) Snapshot {
	cp := state.Copy()
	if actions == nil {
		actions = []Action{}
	}
	return Snapshot{
		Turn:                    cp.Turn,
		Phase:                   cp.Phase,
		CurrentPlayer:           cp.CurrentPlayer,
		ReinforcementsRemaining: cp.ReinforcementsRemaining,
		Players:                 cp.Players,
		Territories:             cp.Territories,
		ValidActions:            append([]Action{}, actions...),
		LastCombat:              cp.LastCombat,
		GameOver:                cp.GameOver,
		Winner:                  cp.Winner,
	}
}

// State rebuilds a game state from the snapshot. The game log is not part of
// the snapshot and starts empty.
func (s Snapshot) State() *GameState {
	gs := &GameState{
		Players:                 append([]Player(nil), s.Players...),
		Territories:             make(map[string]TerritoryState, len(s.Territories)),
		CurrentPlayer:           s.CurrentPlayer,
		Phase:                   s.Phase,
		Turn:                    s.Turn,
		ReinforcementsRemaining: s.ReinforcementsRemaining,
		Winner:                  s.Winner,
		GameOver:                s.GameOver,
	}
	for id, t := range s.Territories {
		gs.Territories[id] = t
	}
	if s.LastCombat != nil {
		lc := *s.LastCombat
		gs.LastCombat = &lc
	}
	return gs
}

// ParseSnapshot decodes the JSON half of a Serialized value.
func ParseSnapshot(data string) (Snapshot, error) {
	var s Snapshot
	if err := json.Unmarshal([]byte(data), &s); err != nil {
		return Snapshot{}, fmt.Errorf("parse snapshot: %w", err)
	}
	return s, nil
}

// Serialize renders the state and the legal actions. It is a pure projection.
func Serialize(state *GameState, m *Map, actions []Action) Serialized {
	data, err := json.Marshal(NewSnapshot(state, actions))
	if err != nil {
		// Every field is a plain value; this only fails on a corrupt phase.
		data = []byte("{}")
	}
	return Serialized{
		Text: transcript(state, m, actions),
		JSON: string(data),
	}
}

func transcript(state *GameState, m *Map, actions []Action) string {
	var b strings.Builder
	current := state.Current()

	b.WriteString("=== RISK GAME STATE ===\n")
	fmt.Fprintf(&b, "Turn: %d | Phase: %s | Current Player: %s (%s)\n",
		state.Turn, strings.ToUpper(state.Phase.String()), current.Name, current.Color)
	if state.Phase == ReinforcePhase {
		fmt.Fprintf(&b, "Reinforcements remaining: %d\n", state.ReinforcementsRemaining)
	}
	if state.GameOver {
		if w, ok := state.Player(state.Winner); ok {
			fmt.Fprintf(&b, "GAME OVER: %s wins\n", w.Name)
		} else {
			b.WriteString("GAME OVER\n")
		}
	}
	b.WriteString("\n--- PLAYERS ---\n")
	for _, p := range state.Players {
		marker := ""
		if p.ID == state.CurrentPlayer {
			marker = " [CURRENT TURN]"
		}
		if p.Eliminated {
			marker += " [ELIMINATED]"
		}
		fmt.Fprintf(&b, "%s: %d territories, %d armies%s\n",
			p.Name, state.CountTerritories(p.ID), state.CountArmies(p.ID), marker)
	}

	b.WriteString("\n--- CONTINENTS ---\n")
	for _, c := range m.Continents {
		counts := make(map[int]int)
		for _, id := range c.Territories {
			if t, ok := state.Territories[id]; ok {
				counts[t.Owner]++
			}
		}
		var parts []string
		for _, p := range state.Players {
			n := counts[p.ID]
			switch {
			case n == 0:
			case n == len(c.Territories):
				parts = append(parts, fmt.Sprintf("%s controls ALL (bonus +%d active!)", p.Name, c.Bonus))
			default:
				parts = append(parts, fmt.Sprintf("%s %d/%d", p.Name, n, len(c.Territories)))
			}
		}
		fmt.Fprintf(&b, "%s (bonus +%d): %s\n", c.Name, c.Bonus, strings.Join(parts, ", "))
	}

	b.WriteString("\n--- TERRITORIES ---\n")
	for _, c := range m.Continents {
		fmt.Fprintf(&b, "[%s]\n", c.Name)
		for _, id := range c.Territories {
			def, _ := m.Territory(id)
			t := state.Territories[id]
			owner := fmt.Sprintf("Player %d", t.Owner+1)
			if p, ok := state.Player(t.Owner); ok {
				owner = p.Name
			}
			adj := make([]string, len(def.Adjacent))
			for i, a := range def.Adjacent {
				adj[i] = m.Name(a)
			}
			fmt.Fprintf(&b, "  %s: %s, %d armies (adjacent: %s)\n", m.Name(id), owner, t.Armies, strings.Join(adj, ", "))
		}
	}

	b.WriteString("\n--- VALID ACTIONS ---\n")
	for i, a := range actions {
		fmt.Fprintf(&b, "%d. %s\n", i+1, DescribeAction(a, state, m))
	}
	fmt.Fprintf(&b, "\nChoose an action (1-%d):", len(actions))

	if lc := state.LastCombat; lc != nil {
		conquered := ""
		if lc.Conquered {
			conquered = " (CONQUERED!)"
		}
		fmt.Fprintf(&b, "\n\n--- LAST COMBAT ---\nAttack from %s → %s: %s vs %s → Attacker lost %d, Defender lost %d%s",
			m.Name(lc.From), m.Name(lc.To), FormatDice(lc.AttackerRolls), FormatDice(lc.DefenderRolls),
			lc.AttackerLosses, lc.DefenderLosses, conquered)
	}
	return b.String()
}

// DescribeAction renders an action the way it appears in the transcript.
func DescribeAction(a Action, state *GameState, m *Map) string {
	switch a.Type {
	case ReinforceAction:
		return fmt.Sprintf("Place %d army/armies on %s", a.Armies, m.Name(a.TerritoryID))
	case AttackAction:
		return fmt.Sprintf("Attack from %s (%d) → %s (%d) with %d dice",
			m.Name(a.From), state.Territories[a.From].Armies, m.Name(a.To), state.Territories[a.To].Armies, a.AttackDice)
	case FortifyAction:
		return fmt.Sprintf("Fortify: move %d from %s → %s", a.Armies, m.Name(a.From), m.Name(a.To))
	case SkipAction:
		return fmt.Sprintf("Skip %s phase", state.Phase)
	default:
		return a.String()
	}
}

// FormatDice renders rolls as [6,3,1].
func FormatDice(rolls []int) string {
	parts := make([]string, len(rolls))
	for i, r := range rolls {
		parts[i] = fmt.Sprint(r)
	}
	return "[" + strings.Join(parts, ",") + "]"
}
