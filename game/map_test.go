package game

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewMap(t *testing.T) {
	t.Run("derives adjacency and continent members", func(t *testing.T) {
		m := ringMap(t)
		assert.Equal(t, []string{"B", "D"}, m.Adjacency["A"])
		c, ok := m.Continent("ring")
		require.True(t, ok)
		assert.Equal(t, []string{"A", "B", "C", "D"}, c.Territories)
		assert.Equal(t, "Alpha", m.Name("A"))
		assert.Equal(t, "Z", m.Name("Z"), "unknown ids fall back to the id")
	})

	t.Run("rejects asymmetric adjacency", func(t *testing.T) {
		_, err := NewMap([]TerritoryDef{
			{ID: "A", ContinentID: "c", Adjacent: []string{"B"}},
			{ID: "B", ContinentID: "c"},
		}, []ContinentDef{{ID: "c"}})
		require.ErrorIs(t, err, ErrAsymmetricAdjacency)
	})

	t.Run("rejects duplicates and unknown continents", func(t *testing.T) {
		_, err := NewMap([]TerritoryDef{
			{ID: "A", ContinentID: "c"},
			{ID: "A", ContinentID: "c"},
		}, []ContinentDef{{ID: "c"}})
		require.Error(t, err)

		_, err = NewMap([]TerritoryDef{{ID: "A", ContinentID: "nope"}}, []ContinentDef{{ID: "c"}})
		require.Error(t, err)
	})

	t.Run("does not alias caller slices", func(t *testing.T) {
		adj := []string{"B"}
		m, err := NewMap([]TerritoryDef{
			{ID: "A", ContinentID: "c", Adjacent: adj},
			{ID: "B", ContinentID: "c", Adjacent: []string{"A"}},
		}, []ContinentDef{{ID: "c"}})
		require.NoError(t, err)
		adj[0] = "X"
		assert.True(t, m.AreAdjacent("A", "B"))
	})
}
