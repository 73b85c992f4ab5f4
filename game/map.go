package game

import (
	"errors"
	"fmt"
	"slices"
)

var ErrAsymmetricAdjacency = errors.New("adjacency is not symmetric")

type TerritoryDef struct {
	ID          string   `yaml:"id" json:"id"`
	Name        string   `yaml:"name" json:"name"`
	ContinentID string   `yaml:"continent" json:"continentId"`
	Adjacent    []string `yaml:"adjacent" json:"adjacent"` // IDs of adjacent territories
}

type ContinentDef struct {
	ID    string `yaml:"id" json:"id"`
	Name  string `yaml:"name" json:"name"`
	Bonus int    `yaml:"bonus" json:"bonus"` // Reinforcement bonus for owning every member

	// Filled from the territory definitions when empty.
	Territories []string `yaml:"territories" json:"territories"`
}

// Map represents the static game map. It is read-only after NewMap returns
// and is shared by every component.
type Map struct {
	Territories []TerritoryDef
	Continents  []ContinentDef
	Adjacency   map[string][]string

	territoryIdx map[string]int
	continentIdx map[string]int
}

// NewMap validates the definitions and builds the derived adjacency mapping.
func NewMap(territories []TerritoryDef, continents []ContinentDef) (*Map, error) {
	m := &Map{
		Territories:  make([]TerritoryDef, len(territories)),
		Continents:   make([]ContinentDef, len(continents)),
		Adjacency:    make(map[string][]string, len(territories)),
		territoryIdx: make(map[string]int, len(territories)),
		continentIdx: make(map[string]int, len(continents)),
	}

	for i, c := range continents {
		if c.ID == "" {
			return nil, fmt.Errorf("continent %d has no id", i)
		}
		if _, dup := m.continentIdx[c.ID]; dup {
			return nil, fmt.Errorf("duplicate continent %q", c.ID)
		}
		c.Territories = slices.Clone(c.Territories)
		m.Continents[i] = c
		m.continentIdx[c.ID] = i
	}

	for i, t := range territories {
		if t.ID == "" {
			return nil, fmt.Errorf("territory %d has no id", i)
		}
		if _, dup := m.territoryIdx[t.ID]; dup {
			return nil, fmt.Errorf("duplicate territory %q", t.ID)
		}
		if _, ok := m.continentIdx[t.ContinentID]; !ok {
			return nil, fmt.Errorf("territory %q: unknown continent %q", t.ID, t.ContinentID)
		}
		t.Adjacent = slices.Clone(t.Adjacent)
		m.Territories[i] = t
		m.territoryIdx[t.ID] = i
	}

	for _, t := range m.Territories {
		for _, adj := range t.Adjacent {
			other, ok := m.territoryIdx[adj]
			if !ok {
				return nil, fmt.Errorf("territory %q: unknown neighbor %q", t.ID, adj)
			}
			if !slices.Contains(m.Territories[other].Adjacent, t.ID) {
				return nil, fmt.Errorf("%w: %s lists %s but not the reverse", ErrAsymmetricAdjacency, t.ID, adj)
			}
		}
		m.Adjacency[t.ID] = t.Adjacent
	}

	// Continent membership defaults to the territories that name the continent.
	for i := range m.Continents {
		c := &m.Continents[i]
		if len(c.Territories) == 0 {
			for _, t := range m.Territories {
				if t.ContinentID == c.ID {
					c.Territories = append(c.Territories, t.ID)
				}
			}
			continue
		}
		for _, id := range c.Territories {
			idx, ok := m.territoryIdx[id]
			if !ok {
				return nil, fmt.Errorf("continent %q: unknown territory %q", c.ID, id)
			}
			if m.Territories[idx].ContinentID != c.ID {
				return nil, fmt.Errorf("continent %q lists %q which belongs to %q", c.ID, id, m.Territories[idx].ContinentID)
			}
		}
	}

	return m, nil
}

// Territory returns the definition for id.
func (m *Map) Territory(id string) (TerritoryDef, bool) {
	idx, ok := m.territoryIdx[id]
	if !ok {
		return TerritoryDef{}, false
	}
	return m.Territories[idx], true
}

func (m *Map) Continent(id string) (ContinentDef, bool) {
	idx, ok := m.continentIdx[id]
	if !ok {
		return ContinentDef{}, false
	}
	return m.Continents[idx], true
}

func (m *Map) HasTerritory(id string) bool {
	_, ok := m.territoryIdx[id]
	return ok
}

// Name returns the display name of a territory, or the id itself if unknown.
func (m *Map) Name(id string) string {
	if t, ok := m.Territory(id); ok && t.Name != "" {
		return t.Name
	}
	return id
}

// AreAdjacent checks if two territories share a border.
func (m *Map) AreAdjacent(a, b string) bool {
	return slices.Contains(m.Adjacency[a], b)
}

// TerritoryIDs returns the territory ids in map order.
func (m *Map) TerritoryIDs() []string {
	ids := make([]string, len(m.Territories))
	for i, t := range m.Territories {
		ids[i] = t.ID
	}
	return ids
}
