package sim

import "github.com/warfront/hexsim/internal/field"

// DefaultMoveCost is the energy cost of traversing an edge whose scenario
// did not configure a weight.
const DefaultMoveCost int64 = 100

// CostModel computes the energy cost of traversing an adjacency edge.
//
// Implementations must be pure: deterministic, side-effect-free, and
// non-negative for every adjacent pair. Adjacency is a precondition - the
// engine rejects moves across non-adjacent hexagons before consulting the
// model, so implementations never need to check it.
type CostModel interface {
	Cost(from, to field.HexID) int64
}

// UniformCost charges the same cost for every edge. Mostly used in tests
// and as the simplest distance-based policy.
type UniformCost int64

// Cost implements CostModel.
func (c UniformCost) Cost(from, to field.HexID) int64 {
	if c < 0 {
		return 0
	}
	return int64(c)
}

// EdgeWeightCost charges the scenario-configured weight of the traversed
// edge. This is the engine default: the road/rail network carries its own
// traversal costs. Edges with weight 0 fall back to DefaultMoveCost.
//
// The adjacency network is static after initialization, so reads here are
// deterministic for the simulation's duration.
type EdgeWeightCost struct {
	Field *field.Field
}

// Cost implements CostModel. Calling it for a non-adjacent pair violates
// the contract's precondition; the fallback value keeps it non-negative
// regardless.
func (c EdgeWeightCost) Cost(from, to field.HexID) int64 {
	w, ok := c.Field.EdgeWeight(from, to)
	if !ok || w == 0 {
		return DefaultMoveCost
	}
	return w
}
