package harness

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseScenario(t *testing.T) {
	sc, err := ParseScenario([]byte(miniScenario))
	require.NoError(t, err)

	assert.Equal(t, "mini", sc.Name)
	require.Len(t, sc.Steps, 1)
	require.NotNil(t, sc.Steps[0].Move)
	assert.Equal(t, "scout", sc.Steps[0].Move.Unit)
	require.NotNil(t, sc.Steps[0].Expect)
	require.NotNil(t, sc.Steps[0].Expect.Remaining)
	assert.Equal(t, int64(600), *sc.Steps[0].Expect.Remaining)
	assert.Len(t, sc.Assertions, 2)
}

func TestParseScenario_RejectsUnknownFields(t *testing.T) {
	_, err := ParseScenario([]byte(`
name: typo
battlefield:
  name: x
  hexes:
    - id: h1
steps: []
asserts: []
`))
	assert.Error(t, err)
}

func TestParseScenario_RequiresName(t *testing.T) {
	_, err := ParseScenario([]byte(`
battlefield:
  name: x
  hexes:
    - id: h1
`))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "name is required")
}

func TestParseScenario_EmptyStep(t *testing.T) {
	_, err := ParseScenario([]byte(`
name: s
battlefield:
  name: x
  hexes:
    - id: h1
steps:
  - expect:
      remaining: 1
`))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "neither move nor engage")
}

func TestParseScenario_AmbiguousStep(t *testing.T) {
	_, err := ParseScenario([]byte(`
name: s
battlefield:
  name: x
  hexes:
    - id: h1
steps:
  - move:
      unit: u
      from: h1
      to: h1
    engage:
      attacker: u
      defender: v
`))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "both move and engage")
}
