package game

import "fmt"

// ActionType represents the type of action a player can perform.
type ActionType string

const (
	ReinforceAction ActionType = "reinforce"
	AttackAction    ActionType = "attack"
	FortifyAction   ActionType = "fortify"
	SkipAction      ActionType = "skip_phase"
)

// Action is one player decision. Only the fields relevant to Type are set.
type Action struct {
	Type        ActionType `json:"type"`
	TerritoryID string     `json:"territoryId,omitempty"` // reinforce target
	From        string     `json:"from,omitempty"`
	To          string     `json:"to,omitempty"`
	Armies      int        `json:"armies,omitempty"`     // reinforce and fortify
	AttackDice  int        `json:"attackDice,omitempty"` // attack
}

func Reinforce(territoryID string, armies int) Action {
	return Action{Type: ReinforceAction, TerritoryID: territoryID, Armies: armies}
}

func Attack(from, to string, dice int) Action {
	return Action{Type: AttackAction, From: from, To: to, AttackDice: dice}
}

func Fortify(from, to string, armies int) Action {
	return Action{Type: FortifyAction, From: from, To: to, Armies: armies}
}

func Skip() Action {
	return Action{Type: SkipAction}
}

func (a Action) String() string {
	switch a.Type {
	case ReinforceAction:
		return fmt.Sprintf("reinforce %s +%d", a.TerritoryID, a.Armies)
	case AttackAction:
		return fmt.Sprintf("attack %s->%s (%d dice)", a.From, a.To, a.AttackDice)
	case FortifyAction:
		return fmt.Sprintf("fortify %s->%s (%d)", a.From, a.To, a.Armies)
	case SkipAction:
		return "skip_phase"
	default:
		return fmt.Sprintf("unknown(%s)", string(a.Type))
	}
}

// ValidationResult reports whether an action is legal and, if not, why.
type ValidationResult struct {
	Valid  bool   `json:"valid"`
	Reason string `json:"reason,omitempty"`
}

func valid() ValidationResult {
	return ValidationResult{Valid: true}
}

func invalid(reason string) ValidationResult {
	return ValidationResult{Valid: false, Reason: reason}
}
