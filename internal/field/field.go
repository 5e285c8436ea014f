// Package field holds the live battlefield state: hexagon nodes, the static
// adjacency network between them, and unit placement.
//
// The field is a mutable projection of the action log. It is initialized once
// from a scenario (hexes, edges, starting units) and then mutated only through
// the simulation engine, which pairs every mutation with a log append.
//
// Thread-safety model:
//   - All exported methods are safe for concurrent use (internal RWMutex).
//   - The RWMutex guarantees map consistency only. Logical read-modify-write
//     isolation across calls (e.g. "read energy, then deduct it") is the
//     engine's job via its per-unit lock table.
package field

import (
	"fmt"
	"sort"
	"sync"
)

// HexID is an H3-style hierarchical spatial index identifying a hexagon.
// It is opaque to the field; the scenario supplies the values.
type HexID string

// Hex is a battlefield cell. The ID is immutable; the remaining attributes
// are auxiliary and may be updated by the ingestion write path.
type Hex struct {
	ID         HexID
	Terrain    string
	Supply     *int
	Visibility *float64
}

// Unit is a simulated military entity. Energy is stored in integer joules so
// that logged values are exactly reproducible across platforms.
type Unit struct {
	ID       string
	Energy   int64
	PowerKW  int64
	Defense  *float64
	Location HexID
}

// DefenseRating resolves the optional defense attribute to its effective
// value. Unset or non-positive ratings default to 1.0.
func (u Unit) DefenseRating() float64 {
	if u.Defense == nil || *u.Defense <= 0 {
		return 1.0
	}
	return *u.Defense
}

// edgeKey is the canonical (undirected) identity of an adjacency edge.
type edgeKey struct {
	a, b HexID
}

func canonicalEdge(a, b HexID) edgeKey {
	if b < a {
		a, b = b, a
	}
	return edgeKey{a: a, b: b}
}

// Field is the in-process battlefield graph store and unit registry.
type Field struct {
	mu    sync.RWMutex
	hexes map[HexID]*Hex
	edges map[edgeKey]int64
	units map[string]*Unit
	byHex map[HexID]map[string]struct{}
}

// New creates an empty field. Hexes and edges are added during battlefield
// initialization; the engine never creates or deletes them at runtime.
func New() *Field {
	return &Field{
		hexes: make(map[HexID]*Hex),
		edges: make(map[edgeKey]int64),
		units: make(map[string]*Unit),
		byHex: make(map[HexID]map[string]struct{}),
	}
}

// AddHex registers a hexagon. Duplicate IDs are rejected.
func (f *Field) AddHex(h Hex) error {
	if h.ID == "" {
		return fmt.Errorf("add hex: empty hex id")
	}
	f.mu.Lock()
	defer f.mu.Unlock()

	if _, exists := f.hexes[h.ID]; exists {
		return fmt.Errorf("add hex: hex %q already exists", h.ID)
	}
	hc := h
	f.hexes[h.ID] = &hc
	f.byHex[h.ID] = make(map[string]struct{})
	return nil
}

// Connect adds an undirected adjacency edge between two existing hexagons
// with the given traversal weight. Self-edges and negative weights are
// rejected. Connecting the same pair twice overwrites the weight.
func (f *Field) Connect(a, b HexID, weight int64) error {
	if a == b {
		return fmt.Errorf("connect: self edge on hex %q", a)
	}
	if weight < 0 {
		return fmt.Errorf("connect: negative weight %d on edge %s-%s", weight, a, b)
	}
	f.mu.Lock()
	defer f.mu.Unlock()

	if _, ok := f.hexes[a]; !ok {
		return fmt.Errorf("connect: unknown hex %q", a)
	}
	if _, ok := f.hexes[b]; !ok {
		return fmt.Errorf("connect: unknown hex %q", b)
	}
	f.edges[canonicalEdge(a, b)] = weight
	return nil
}

// Adjacent reports whether an adjacency edge exists between two hexagons.
func (f *Field) Adjacent(a, b HexID) bool {
	f.mu.RLock()
	defer f.mu.RUnlock()
	_, ok := f.edges[canonicalEdge(a, b)]
	return ok
}

// EdgeWeight returns the traversal weight of the edge between two hexagons,
// and whether such an edge exists.
func (f *Field) EdgeWeight(a, b HexID) (int64, bool) {
	f.mu.RLock()
	defer f.mu.RUnlock()
	w, ok := f.edges[canonicalEdge(a, b)]
	return w, ok
}

// Hex returns a copy of the hexagon with the given ID.
func (f *Field) Hex(id HexID) (Hex, bool) {
	f.mu.RLock()
	defer f.mu.RUnlock()
	h, ok := f.hexes[id]
	if !ok {
		return Hex{}, false
	}
	return *h, true
}

// HexAttrs is a partial update to a hexagon's mutable attributes.
// Nil fields are left unchanged.
type HexAttrs struct {
	Terrain    *string
	Supply     *int
	Visibility *float64
}

// SetHexAttrs applies a partial attribute update to an existing hexagon.
// The hex identity and the adjacency network are never touched.
func (f *Field) SetHexAttrs(id HexID, attrs HexAttrs) error {
	f.mu.Lock()
	defer f.mu.Unlock()

	h, ok := f.hexes[id]
	if !ok {
		return fmt.Errorf("set hex attrs: unknown hex %q", id)
	}
	if attrs.Terrain != nil {
		h.Terrain = *attrs.Terrain
	}
	if attrs.Supply != nil {
		s := *attrs.Supply
		h.Supply = &s
	}
	if attrs.Visibility != nil {
		v := *attrs.Visibility
		h.Visibility = &v
	}
	return nil
}

// Unit returns a copy of the unit with the given ID.
func (f *Field) Unit(id string) (Unit, bool) {
	f.mu.RLock()
	defer f.mu.RUnlock()
	u, ok := f.units[id]
	if !ok {
		return Unit{}, false
	}
	return *u, true
}

// AddUnit places a new unit on the field. The unit must carry a location on
// an existing hexagon, a unique ID, and non-negative energy.
func (f *Field) AddUnit(u Unit) error {
	if u.ID == "" {
		return fmt.Errorf("add unit: empty unit id")
	}
	if u.Energy < 0 {
		return fmt.Errorf("add unit: unit %q has negative energy %d", u.ID, u.Energy)
	}
	f.mu.Lock()
	defer f.mu.Unlock()

	if _, exists := f.units[u.ID]; exists {
		return fmt.Errorf("add unit: unit %q already exists", u.ID)
	}
	if _, ok := f.hexes[u.Location]; !ok {
		return fmt.Errorf("add unit: unknown hex %q for unit %q", u.Location, u.ID)
	}
	uc := u
	f.units[u.ID] = &uc
	f.byHex[u.Location][u.ID] = struct{}{}
	return nil
}

// RemoveUnit deletes a unit and its location edge entirely. Removal is
// terminal: the ID is never resurrected by the store.
func (f *Field) RemoveUnit(id string) error {
	f.mu.Lock()
	defer f.mu.Unlock()

	u, ok := f.units[id]
	if !ok {
		return fmt.Errorf("remove unit: unknown unit %q", id)
	}
	delete(f.byHex[u.Location], id)
	delete(f.units, id)
	return nil
}

// MoveUnit relocates a unit to an existing hexagon, replacing its single
// location edge. Adjacency and energy accounting are the engine's concern.
func (f *Field) MoveUnit(id string, to HexID) error {
	f.mu.Lock()
	defer f.mu.Unlock()

	u, ok := f.units[id]
	if !ok {
		return fmt.Errorf("move unit: unknown unit %q", id)
	}
	if _, ok := f.hexes[to]; !ok {
		return fmt.Errorf("move unit: unknown hex %q", to)
	}
	delete(f.byHex[u.Location], id)
	u.Location = to
	f.byHex[to][id] = struct{}{}
	return nil
}

// SetEnergy sets a unit's energy reserve. Negative values are rejected; a
// unit that should die must be removed, not driven negative.
func (f *Field) SetEnergy(id string, energy int64) error {
	if energy < 0 {
		return fmt.Errorf("set energy: negative energy %d for unit %q", energy, id)
	}
	f.mu.Lock()
	defer f.mu.Unlock()

	u, ok := f.units[id]
	if !ok {
		return fmt.Errorf("set energy: unknown unit %q", id)
	}
	u.Energy = energy
	return nil
}

// UnitsAt returns copies of all units located on the given hexagon,
// ordered by ID.
func (f *Field) UnitsAt(id HexID) []Unit {
	f.mu.RLock()
	defer f.mu.RUnlock()

	ids, ok := f.byHex[id]
	if !ok {
		return nil
	}
	out := make([]Unit, 0, len(ids))
	for uid := range ids {
		out = append(out, *f.units[uid])
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out
}

// Units returns copies of all live units, ordered by ID.
func (f *Field) Units() []Unit {
	f.mu.RLock()
	defer f.mu.RUnlock()

	out := make([]Unit, 0, len(f.units))
	for _, u := range f.units {
		out = append(out, *u)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out
}

// Hexes returns copies of all hexagons, ordered by ID.
func (f *Field) Hexes() []Hex {
	f.mu.RLock()
	defer f.mu.RUnlock()

	out := make([]Hex, 0, len(f.hexes))
	for _, h := range f.hexes {
		out = append(out, *h)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out
}

// CheckInvariants verifies the structural invariants of the live state:
// every unit is placed on exactly one existing hexagon, the placement index
// agrees with unit locations, and no unit carries negative energy.
// A non-nil return means the store is corrupt.
func (f *Field) CheckInvariants() error {
	f.mu.RLock()
	defer f.mu.RUnlock()

	for id, u := range f.units {
		if u.Energy < 0 {
			return fmt.Errorf("invariant: unit %q has negative energy %d", id, u.Energy)
		}
		if _, ok := f.hexes[u.Location]; !ok {
			return fmt.Errorf("invariant: unit %q located on unknown hex %q", id, u.Location)
		}
		if _, ok := f.byHex[u.Location][id]; !ok {
			return fmt.Errorf("invariant: unit %q missing from placement index of hex %q", id, u.Location)
		}
	}
	for hid, ids := range f.byHex {
		for uid := range ids {
			u, ok := f.units[uid]
			if !ok {
				return fmt.Errorf("invariant: placement index of hex %q references dead unit %q", hid, uid)
			}
			if u.Location != hid {
				return fmt.Errorf("invariant: unit %q indexed on hex %q but located on %q", uid, hid, u.Location)
			}
		}
	}
	return nil
}
