package game

import "golang.org/x/exp/rand"

// Distribute shuffles the territories, deals them round-robin with one army
// each and then drops each player's remaining armies one at a time on a
// random owned territory until the player has InitialArmies on the board.
func Distribute(players []Player, m *Map, rng *rand.Rand) map[string]TerritoryState {
	ids := m.TerritoryIDs()
	rng.Shuffle(len(ids), func(i, j int) {
		ids[i], ids[j] = ids[j], ids[i]
	})

	territories := make(map[string]TerritoryState, len(ids))
	owned := make([][]string, len(players))
	for i, id := range ids {
		seat := i % len(players)
		territories[id] = TerritoryState{Owner: players[seat].ID, Armies: 1}
		owned[seat] = append(owned[seat], id)
	}

	for seat := range players {
		if len(owned[seat]) == 0 {
			continue
		}
		for placed := len(owned[seat]); placed < InitialArmies; placed++ {
			id := owned[seat][rng.Intn(len(owned[seat]))]
			t := territories[id]
			t.Armies++
			territories[id] = t
		}
	}
	return territories
}
