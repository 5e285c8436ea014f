package sim

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/warfront/hexsim/internal/field"
)

func TestUniformCost(t *testing.T) {
	assert.Equal(t, int64(250), UniformCost(250).Cost("a", "b"))
	assert.Equal(t, int64(0), UniformCost(-5).Cost("a", "b"), "never negative")
}

func TestEdgeWeightCost(t *testing.T) {
	f := field.New()
	require.NoError(t, f.AddHex(field.Hex{ID: "h1"}))
	require.NoError(t, f.AddHex(field.Hex{ID: "h2"}))
	require.NoError(t, f.AddHex(field.Hex{ID: "h3"}))
	require.NoError(t, f.Connect("h1", "h2", 300))
	require.NoError(t, f.Connect("h2", "h3", 0))

	model := EdgeWeightCost{Field: f}

	assert.Equal(t, int64(300), model.Cost("h1", "h2"))
	assert.Equal(t, int64(300), model.Cost("h2", "h1"), "undirected")
	assert.Equal(t, DefaultMoveCost, model.Cost("h2", "h3"), "zero weight falls back to default")
}
