// Package scenario loads and validates battlefield initialization files.
//
// A scenario is a YAML document describing the static hexagon set, the
// road/rail adjacency network, and the initial unit placements. The engine
// never creates or deletes hexes or adjacency edges at runtime, so the
// scenario plus the action log fully determine the live state.
package scenario

import (
	"bytes"
	"errors"
	"fmt"
	"os"

	"gopkg.in/yaml.v3"

	"github.com/warfront/hexsim/internal/field"
)

// Scenario is a declarative battlefield definition.
type Scenario struct {
	// Name identifies the scenario.
	Name string `yaml:"name"`

	// Description explains the battlefield setup.
	Description string `yaml:"description,omitempty"`

	// Hexes is the static hexagon set.
	Hexes []HexSpec `yaml:"hexes"`

	// Edges is the static adjacency network (road/rail).
	Edges []EdgeSpec `yaml:"edges"`

	// Units are the initial unit placements.
	Units []UnitSpec `yaml:"units,omitempty"`
}

// HexSpec declares one hexagon. The ID is an H3-style spatial index and is
// immutable; the remaining attributes are optional.
type HexSpec struct {
	ID         string   `yaml:"id"`
	Terrain    string   `yaml:"terrain,omitempty"`
	Supply     *int     `yaml:"supply,omitempty"`
	Visibility *float64 `yaml:"visibility,omitempty"`
}

// EdgeSpec declares an undirected adjacency edge with an optional traversal
// weight. Weight 0 means "use the engine's default movement cost".
type EdgeSpec struct {
	A      string `yaml:"a"`
	B      string `yaml:"b"`
	Weight int64  `yaml:"weight,omitempty"`
}

// UnitSpec declares one starting unit.
type UnitSpec struct {
	ID      string   `yaml:"id"`
	Hex     string   `yaml:"hex"`
	Energy  int64    `yaml:"energy"`
	PowerKW int64    `yaml:"power_kw,omitempty"`
	Defense *float64 `yaml:"defense,omitempty"`
}

// Load reads and parses a scenario file.
func Load(path string) (*Scenario, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("load scenario: %w", err)
	}
	s, err := Parse(data)
	if err != nil {
		return nil, fmt.Errorf("load scenario %s: %w", path, err)
	}
	return s, nil
}

// Parse parses a scenario document. Unknown fields are rejected so typos in
// scenario files surface instead of silently dropping data.
func Parse(data []byte) (*Scenario, error) {
	var s Scenario
	dec := yaml.NewDecoder(bytes.NewReader(data))
	dec.KnownFields(true)
	if err := dec.Decode(&s); err != nil {
		return nil, fmt.Errorf("parse scenario: %w", err)
	}
	return &s, nil
}

// Validate checks the scenario for internal consistency. All problems are
// collected and returned joined, so a broken file reports everything wrong
// with it at once.
func (s *Scenario) Validate() error {
	var errs []error

	if s.Name == "" {
		errs = append(errs, errors.New("scenario name is required"))
	}
	if len(s.Hexes) == 0 {
		errs = append(errs, errors.New("scenario declares no hexes"))
	}

	hexes := make(map[string]struct{}, len(s.Hexes))
	for i, h := range s.Hexes {
		if h.ID == "" {
			errs = append(errs, fmt.Errorf("hexes[%d]: empty id", i))
			continue
		}
		if _, dup := hexes[h.ID]; dup {
			errs = append(errs, fmt.Errorf("hexes[%d]: duplicate hex id %q", i, h.ID))
		}
		hexes[h.ID] = struct{}{}
		if h.Supply != nil && *h.Supply < 0 {
			errs = append(errs, fmt.Errorf("hex %q: negative supply %d", h.ID, *h.Supply))
		}
	}

	seenEdges := make(map[[2]string]struct{}, len(s.Edges))
	for i, e := range s.Edges {
		if e.A == e.B {
			errs = append(errs, fmt.Errorf("edges[%d]: self edge on hex %q", i, e.A))
			continue
		}
		if _, ok := hexes[e.A]; !ok {
			errs = append(errs, fmt.Errorf("edges[%d]: unknown hex %q", i, e.A))
		}
		if _, ok := hexes[e.B]; !ok {
			errs = append(errs, fmt.Errorf("edges[%d]: unknown hex %q", i, e.B))
		}
		if e.Weight < 0 {
			errs = append(errs, fmt.Errorf("edges[%d]: negative weight %d", i, e.Weight))
		}
		key := [2]string{e.A, e.B}
		if e.B < e.A {
			key = [2]string{e.B, e.A}
		}
		if _, dup := seenEdges[key]; dup {
			errs = append(errs, fmt.Errorf("edges[%d]: duplicate edge %s-%s", i, e.A, e.B))
		}
		seenEdges[key] = struct{}{}
	}

	units := make(map[string]struct{}, len(s.Units))
	for i, u := range s.Units {
		if u.ID == "" {
			errs = append(errs, fmt.Errorf("units[%d]: empty id", i))
			continue
		}
		if _, dup := units[u.ID]; dup {
			errs = append(errs, fmt.Errorf("units[%d]: duplicate unit id %q", i, u.ID))
		}
		units[u.ID] = struct{}{}
		if _, ok := hexes[u.Hex]; !ok {
			errs = append(errs, fmt.Errorf("unit %q: unknown hex %q", u.ID, u.Hex))
		}
		if u.Energy < 0 {
			errs = append(errs, fmt.Errorf("unit %q: negative energy %d", u.ID, u.Energy))
		}
		if u.Defense != nil && *u.Defense <= 0 {
			errs = append(errs, fmt.Errorf("unit %q: non-positive defense %g", u.ID, *u.Defense))
		}
	}

	return errors.Join(errs...)
}

// Build validates the scenario and constructs the initial field state.
// Call Build once per field: the result is the replay baseline.
func (s *Scenario) Build() (*field.Field, error) {
	if err := s.Validate(); err != nil {
		return nil, fmt.Errorf("build %q: %w", s.Name, err)
	}

	f := field.New()
	for _, h := range s.Hexes {
		hex := field.Hex{ID: field.HexID(h.ID), Terrain: h.Terrain}
		if h.Supply != nil {
			v := *h.Supply
			hex.Supply = &v
		}
		if h.Visibility != nil {
			v := *h.Visibility
			hex.Visibility = &v
		}
		if err := f.AddHex(hex); err != nil {
			return nil, fmt.Errorf("build %q: %w", s.Name, err)
		}
	}
	for _, e := range s.Edges {
		if err := f.Connect(field.HexID(e.A), field.HexID(e.B), e.Weight); err != nil {
			return nil, fmt.Errorf("build %q: %w", s.Name, err)
		}
	}
	for _, u := range s.Units {
		unit := field.Unit{
			ID:       u.ID,
			Energy:   u.Energy,
			PowerKW:  u.PowerKW,
			Location: field.HexID(u.Hex),
		}
		if u.Defense != nil {
			d := *u.Defense
			unit.Defense = &d
		}
		if err := f.AddUnit(unit); err != nil {
			return nil, fmt.Errorf("build %q: %w", s.Name, err)
		}
	}
	return f, nil
}
