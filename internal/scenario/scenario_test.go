package scenario

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/warfront/hexsim/internal/field"
)

const validScenario = `
name: two-hex-front
description: Minimal two-hex battlefield with one rail link.
hexes:
  - id: 891ec92a987ffff
    terrain: plains
  - id: 891ec92a98fffff
    terrain: urban
    supply: 3
edges:
  - a: 891ec92a987ffff
    b: 891ec92a98fffff
    weight: 300
units:
  - id: u1
    hex: 891ec92a987ffff
    energy: 1000
    power_kw: 50
  - id: d1
    hex: 891ec92a98fffff
    energy: 500
    defense: 2.0
`

func TestParse_Valid(t *testing.T) {
	s, err := Parse([]byte(validScenario))
	require.NoError(t, err)

	assert.Equal(t, "two-hex-front", s.Name)
	require.Len(t, s.Hexes, 2)
	require.Len(t, s.Edges, 1)
	require.Len(t, s.Units, 2)
	assert.Equal(t, int64(300), s.Edges[0].Weight)
	require.NotNil(t, s.Units[1].Defense)
	assert.Equal(t, 2.0, *s.Units[1].Defense)
	require.NotNil(t, s.Hexes[1].Supply)
	assert.Equal(t, 3, *s.Hexes[1].Supply)
}

func TestParse_UnknownFieldRejected(t *testing.T) {
	_, err := Parse([]byte("name: x\nhexgons: []\n"))
	assert.Error(t, err, "typo'd keys must not be silently dropped")
}

func TestValidate_CollectsAllErrors(t *testing.T) {
	s := &Scenario{
		Hexes: []HexSpec{
			{ID: "h1"},
			{ID: "h1"}, // duplicate
		},
		Edges: []EdgeSpec{
			{A: "h1", B: "h1"},             // self edge
			{A: "h1", B: "h9"},             // unknown hex
			{A: "h1", B: "h2", Weight: -3}, // negative weight, unknown hex
		},
		Units: []UnitSpec{
			{ID: "u1", Hex: "h1", Energy: -5}, // negative energy
		},
	}

	err := s.Validate()
	require.Error(t, err)
	msg := err.Error()
	assert.Contains(t, msg, "name is required")
	assert.Contains(t, msg, "duplicate hex id")
	assert.Contains(t, msg, "self edge")
	assert.Contains(t, msg, "negative energy")
}

func TestBuild_ProducesField(t *testing.T) {
	s, err := Parse([]byte(validScenario))
	require.NoError(t, err)

	f, err := s.Build()
	require.NoError(t, err)

	assert.True(t, f.Adjacent("891ec92a987ffff", "891ec92a98fffff"))
	w, ok := f.EdgeWeight("891ec92a987ffff", "891ec92a98fffff")
	require.True(t, ok)
	assert.Equal(t, int64(300), w)

	u, ok := f.Unit("u1")
	require.True(t, ok)
	assert.Equal(t, int64(1000), u.Energy)
	assert.Equal(t, field.HexID("891ec92a987ffff"), u.Location)

	d, ok := f.Unit("d1")
	require.True(t, ok)
	assert.Equal(t, 2.0, d.DefenseRating())

	require.NoError(t, f.CheckInvariants())
}

func TestLoad_FromFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "front.yaml")
	require.NoError(t, os.WriteFile(path, []byte(validScenario), 0o644))

	s, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, "two-hex-front", s.Name)

	_, err = Load(filepath.Join(t.TempDir(), "missing.yaml"))
	assert.Error(t, err)
}
