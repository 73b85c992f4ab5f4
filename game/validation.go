package game

// Validate checks an action against the current state. It never mutates the
// state and never panics; illegal actions yield a result with a reason.
func Validate(state *GameState, action Action, m *Map) ValidationResult {
	if state.GameOver {
		return invalid("Game is over")
	}
	switch action.Type {
	case ReinforceAction:
		return validateReinforce(state, action)
	case AttackAction:
		return validateAttack(state, action, m)
	case FortifyAction:
		return validateFortify(state, action, m)
	case SkipAction:
		return validateSkip(state)
	default:
		return invalid("Unknown action type: " + string(action.Type))
	}
}

func validateReinforce(state *GameState, action Action) ValidationResult {
	if state.Phase != ReinforcePhase {
		return invalid("Not in reinforce phase")
	}
	territory, ok := state.Territories[action.TerritoryID]
	if !ok {
		return invalid("Territory does not exist")
	}
	if territory.Owner != state.CurrentPlayer {
		return invalid("You do not own this territory")
	}
	if action.Armies < 1 {
		return invalid("Must place at least 1 army")
	}
	if action.Armies > state.ReinforcementsRemaining {
		return invalid("Not enough reinforcements remaining")
	}
	return valid()
}

func validateAttack(state *GameState, action Action, m *Map) ValidationResult {
	if state.Phase != AttackPhase {
		return invalid("Not in attack phase")
	}
	from, okFrom := state.Territories[action.From]
	to, okTo := state.Territories[action.To]
	if !okFrom || !okTo {
		return invalid("Territory does not exist")
	}
	if from.Owner != state.CurrentPlayer {
		return invalid("You do not own the attacking territory")
	}
	if to.Owner == state.CurrentPlayer {
		return invalid("Cannot attack your own territory")
	}
	if !m.AreAdjacent(action.From, action.To) {
		return invalid("Territories are not adjacent")
	}
	if from.Armies <= action.AttackDice {
		return invalid("Must have more armies than dice used (need to leave at least 1)")
	}
	if action.AttackDice < 1 || action.AttackDice > defaultRules.MaxAttackTroops() {
		return invalid("Must use 1-3 attack dice")
	}
	return valid()
}

func validateFortify(state *GameState, action Action, m *Map) ValidationResult {
	if state.Phase != FortifyPhase {
		return invalid("Not in fortify phase")
	}
	from, okFrom := state.Territories[action.From]
	to, okTo := state.Territories[action.To]
	if !okFrom || !okTo {
		return invalid("Territory does not exist")
	}
	if from.Owner != state.CurrentPlayer {
		return invalid("You do not own the source territory")
	}
	if to.Owner != state.CurrentPlayer {
		return invalid("You do not own the destination territory")
	}
	if action.From == action.To {
		return invalid("Source and destination must be different")
	}
	if action.Armies < 1 {
		return invalid("Must move at least 1 army")
	}
	if action.Armies >= from.Armies {
		return invalid("Must leave at least 1 army behind")
	}
	if !AreConnected(action.From, action.To, state.CurrentPlayer, state.Territories, m.Adjacency) {
		return invalid("Territories are not connected through your territories")
	}
	return valid()
}

func validateSkip(state *GameState) ValidationResult {
	if state.Phase == ReinforcePhase && state.ReinforcementsRemaining > 0 {
		return invalid("Must place all reinforcements before skipping")
	}
	if state.Phase != AttackPhase && state.Phase != FortifyPhase {
		return invalid("Can only skip attack or fortify phase")
	}
	return valid()
}
