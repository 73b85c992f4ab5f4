package game

const (
	NumPlayers        = 3
	MinReinforcements = 3
	InitialArmies     = 35 // per player, including the one army on each starting territory
)

// Evaluates the game state to a score between 0 and 1 indicating how
// favorable the position is for the given player.
type Evaluate func(state *GameState, m *Map, player int) float64
