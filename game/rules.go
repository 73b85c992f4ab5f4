package game

type Rules interface {
	MaxAttackTroops() int
	MaxDefendTroops() int
	DetermineAttackOutcome(attackerRolls, defenderRolls []int) (attackerLosses, defenderLosses int)
}

// Roller rolls n six-sided dice and returns them sorted in descending order.
type Roller interface {
	Roll(n int) []int
}

// CombatRoll is the outcome of one attack.
type CombatRoll struct {
	AttackerRolls  []int
	DefenderRolls  []int
	AttackerLosses int
	DefenderLosses int
}

// ResolveCombat resolves one attack with the standard rules.
func ResolveCombat(roller Roller, attackDice, defenderArmies int) CombatRoll {
	return defaultRules.ResolveCombat(roller, attackDice, defenderArmies)
}

var defaultRules = NewStandardRules()
