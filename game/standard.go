package game

import (
	"sort"

	"golang.org/x/exp/rand"
)

type StandardRules struct {
	MaxAttackDice int
	MaxDefendDice int
	DiceSides     int
}

func NewStandardRules() *StandardRules {
	return &StandardRules{
		MaxAttackDice: 3,
		MaxDefendDice: 2,
		DiceSides:     6,
	}
}

func (sr *StandardRules) MaxAttackTroops() int {
	return sr.MaxAttackDice
}

func (sr *StandardRules) MaxDefendTroops() int {
	return sr.MaxDefendDice
}

// DetermineAttackOutcome compares the sorted dice pairwise. Ties go to the defender.
func (sr *StandardRules) DetermineAttackOutcome(attackerRolls, defenderRolls []int) (attackerLosses, defenderLosses int) {
	battles := min(len(attackerRolls), len(defenderRolls))
	for i := 0; i < battles; i++ {
		if attackerRolls[i] > defenderRolls[i] {
			defenderLosses++
		} else {
			attackerLosses++
		}
	}
	return
}

// ResolveCombat rolls attackDice for the attacker and up to MaxDefendDice for
// the defender. The caller guarantees attackDice is legal.
func (sr *StandardRules) ResolveCombat(roller Roller, attackDice, defenderArmies int) CombatRoll {
	attackerRolls := roller.Roll(attackDice)
	defenderRolls := roller.Roll(max(0, min(sr.MaxDefendDice, defenderArmies)))
	attackerLosses, defenderLosses := sr.DetermineAttackOutcome(attackerRolls, defenderRolls)
	return CombatRoll{
		AttackerRolls:  attackerRolls,
		DefenderRolls:  defenderRolls,
		AttackerLosses: attackerLosses,
		DefenderLosses: defenderLosses,
	}
}

// DiceRoller rolls fair dice from a seeded source.
type DiceRoller struct {
	rng   *rand.Rand
	sides int
}

func NewDiceRoller(rng *rand.Rand) *DiceRoller {
	return &DiceRoller{rng: rng, sides: 6}
}

func (d *DiceRoller) Roll(n int) []int {
	rolls := make([]int, n)
	for i := 0; i < n; i++ {
		rolls[i] = d.rng.Intn(d.sides) + 1
	}
	sort.Sort(sort.Reverse(sort.IntSlice(rolls)))
	return rolls
}

// FixedRoller replays predetermined rolls, sorting each batch like a real roll.
// Used for tests and replays.
type FixedRoller struct {
	Rolls [][]int
}

func (f *FixedRoller) Roll(n int) []int {
	if len(f.Rolls) == 0 {
		panic("FixedRoller: no rolls left")
	}
	next := f.Rolls[0]
	f.Rolls = f.Rolls[1:]
	if len(next) != n {
		panic("FixedRoller: wrong number of dice")
	}
	rolls := append([]int(nil), next...)
	sort.Sort(sort.Reverse(sort.IntSlice(rolls)))
	return rolls
}
