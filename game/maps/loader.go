package maps

import (
	"embed"
	"fmt"
	"path"
	"sort"
	"strings"

	"gopkg.in/yaml.v3"

	"risk3p/game"
)

//go:embed data/*.yaml
var mapFiles embed.FS

// RawMap is the on-disk map format.
type RawMap struct {
	ID          string              `yaml:"id"`
	Name        string              `yaml:"name"`
	Continents  []game.ContinentDef `yaml:"continents"`
	Territories []game.TerritoryDef `yaml:"territories"`
}

// Load loads an embedded map by name, e.g. "classic".
func Load(name string) (*game.Map, error) {
	data, err := mapFiles.ReadFile(path.Join("data", name+".yaml"))
	if err != nil {
		return nil, fmt.Errorf("unknown map %q: %w", name, err)
	}
	m, err := Parse(data)
	if err != nil {
		return nil, fmt.Errorf("map %q: %w", name, err)
	}
	return m, nil
}

// Parse builds a map from YAML.
func Parse(data []byte) (*game.Map, error) {
	var raw RawMap
	if err := yaml.Unmarshal(data, &raw); err != nil {
		return nil, fmt.Errorf("failed to parse map YAML: %w", err)
	}
	if len(raw.Territories) == 0 {
		return nil, fmt.Errorf("invalid map: no territories")
	}
	m, err := game.NewMap(raw.Territories, raw.Continents)
	if err != nil {
		return nil, fmt.Errorf("invalid map: %w", err)
	}
	return m, nil
}

// Classic returns the standard 42 territory world map.
func Classic() *game.Map {
	m, err := Load("classic")
	if err != nil {
		panic(err)
	}
	return m
}

// List returns the names of the embedded maps.
func List() []string {
	entries, err := mapFiles.ReadDir("data")
	if err != nil {
		return nil
	}
	names := make([]string, 0, len(entries))
	for _, e := range entries {
		if e.IsDir() {
			continue
		}
		names = append(names, strings.TrimSuffix(e.Name(), ".yaml"))
	}
	sort.Strings(names)
	return names
}
