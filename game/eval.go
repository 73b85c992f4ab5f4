package game

// EvaluateResources tallies each player's controlled resources (territories,
// armies and continent bonuses) and returns the given player's share, between 0 and 1.
func EvaluateResources(gs *GameState, m *Map, player int) float64 {
	if gs.GameOver {
		return terminalScore(gs, player)
	}
	territoryScore, troopScore := resourceScores(gs, player)
	bonusScore := bonusScore(gs, m, player)
	return (territoryScore + troopScore + bonusScore) / 3.0
}

// EvaluateConnectivity also rewards the size of the player's largest connected
// group of territories, relative to the other players'.
func EvaluateConnectivity(gs *GameState, m *Map, player int) float64 {
	if gs.GameOver {
		return terminalScore(gs, player)
	}
	territoryScore, troopScore := resourceScores(gs, player)
	bonusScore := bonusScore(gs, m, player)
	connectivityScore := connectivityScore(gs, m, player)
	return (territoryScore + troopScore + bonusScore + connectivityScore) / 4
}

// Evaluators by name, for configuration.
var Evaluators = map[string]Evaluate{
	"resources":    EvaluateResources,
	"connectivity": EvaluateConnectivity,
}

func terminalScore(gs *GameState, player int) float64 {
	if gs.Winner == player {
		return 1
	}
	return 0
}

func resourceScores(gs *GameState, player int) (territoryScore, troopScore float64) {
	territories := make(map[int]float64)
	troops := make(map[int]float64)
	for _, t := range gs.Territories {
		territories[t.Owner]++
		troops[t.Owner] += float64(t.Armies)
	}
	return share(territories, player), share(troops, player)
}

func bonusScore(gs *GameState, m *Map, player int) float64 {
	bonus := make(map[int]float64)
	for _, c := range m.Continents {
		if owner := gs.ContinentOwner(c); owner != NoWinner {
			bonus[owner] += float64(c.Bonus)
		}
	}
	if len(bonus) == 0 {
		// Nobody holds a continent; treat it as an even split.
		return 1 / float64(max(1, len(gs.ActivePlayers())))
	}
	return share(bonus, player)
}

func connectivityScore(gs *GameState, m *Map, player int) float64 {
	largest := make(map[int]float64)
	visited := make(map[string]bool)
	for _, id := range m.TerritoryIDs() {
		if visited[id] {
			continue
		}
		owner := gs.Territories[id].Owner
		size := dfs(id, owner, gs, m, visited)
		if float64(size) > largest[owner] {
			largest[owner] = float64(size)
		}
	}
	return share(largest, player)
}

// dfs returns the size of the owner's connected component containing start.
func dfs(start string, owner int, gs *GameState, m *Map, visited map[string]bool) int {
	if visited[start] {
		return 0
	}
	visited[start] = true
	size := 1
	for _, n := range m.Adjacency[start] {
		if gs.Territories[n].Owner == owner {
			size += dfs(n, owner, gs, m, visited)
		}
	}
	return size
}

// share returns values[player] / sum(values), or 0 if everything is zero.
func share(values map[int]float64, player int) float64 {
	total := 0.0
	for _, v := range values {
		total += v
	}
	if total == 0 {
		return 0
	}
	return values[player] / total
}
