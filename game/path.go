package game

// AreConnected reports whether to can be reached from from by walking only
// through territories owned by owner. Just BFS. to itself is accepted as a
// neighbor without an ownership check.
func AreConnected(from, to string, owner int, territories map[string]TerritoryState, adjacency map[string][]string) bool {
	if from == to {
		return true
	}
	visited := make(map[string]bool)
	queue := []string{from}

	for len(queue) > 0 {
		current := queue[0]
		queue = queue[1:]

		if visited[current] {
			continue
		}
		visited[current] = true

		for _, adj := range adjacency[current] {
			if adj == to {
				return true
			}
			if t, ok := territories[adj]; !ok || t.Owner != owner {
				continue
			}
			if !visited[adj] {
				queue = append(queue, adj)
			}
		}
	}
	return false
}
