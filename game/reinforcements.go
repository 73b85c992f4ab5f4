package game

// CalculateReinforcements returns max(3, owned/3) plus the bonus of every
// continent the player owns completely.
func CalculateReinforcements(player int, territories map[string]TerritoryState, continents []ContinentDef) int {
	owned := 0
	for _, t := range territories {
		if t.Owner == player {
			owned++
		}
	}
	troops := max(MinReinforcements, owned/3)

	for _, c := range continents {
		if continentOwner(c, territories) == player {
			troops += c.Bonus
		}
	}
	return troops
}
