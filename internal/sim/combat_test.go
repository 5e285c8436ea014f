package sim

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestResolve_DamagedOutcome(t *testing.T) {
	// Attacker 1000, defender 500 behind defense 2.0:
	// dealt 700, net 350, defender left at 150.
	res := Resolve(1000, 500, 2.0)

	assert.Equal(t, int64(700), res.DamageDealt)
	assert.Equal(t, int64(350), res.NetDamage)
	assert.Equal(t, int64(300), res.AttackerRemaining)
	assert.Equal(t, int64(150), res.DefenderRemaining)
	assert.Equal(t, OutcomeDamaged, res.Outcome)
}

func TestResolve_DestroyedOutcome(t *testing.T) {
	// Same attack against a 300-energy defender: 350 net damage destroys it.
	res := Resolve(1000, 300, 2.0)

	assert.Equal(t, int64(350), res.NetDamage)
	assert.Equal(t, int64(-50), res.DefenderRemaining)
	assert.Equal(t, OutcomeDestroyed, res.Outcome)
}

func TestResolve_ExactZeroDestroys(t *testing.T) {
	res := Resolve(1000, 700, 1.0)

	assert.Equal(t, int64(700), res.NetDamage)
	assert.Equal(t, int64(0), res.DefenderRemaining)
	assert.Equal(t, OutcomeDestroyed, res.Outcome, "defender at exactly 0 is destroyed")
}

func TestResolve_DefenseDefaultsToOne(t *testing.T) {
	for _, defense := range []float64{0, -1.5} {
		res := Resolve(1000, 500, defense)
		assert.Equal(t, int64(700), res.NetDamage, "defense %g should default to 1.0", defense)
	}
}

func TestResolve_FloorSemantics(t *testing.T) {
	// 15 * 0.7 = 10.5 -> 10; 15 * 0.3 = 4.5 -> 4.
	res := Resolve(15, 100, 1.0)
	assert.Equal(t, int64(10), res.DamageDealt)
	assert.Equal(t, int64(4), res.AttackerRemaining)

	// floor(floor(100*0.7) / 3.0) = floor(70/3) = 23
	res = Resolve(100, 100, 3.0)
	assert.Equal(t, int64(23), res.NetDamage)
	assert.Equal(t, int64(77), res.DefenderRemaining)
}

func TestResolve_ZeroEnergyAttacker(t *testing.T) {
	// The resolver does not gate on attacker energy: a drained attacker
	// deals nothing and stays at zero.
	res := Resolve(0, 500, 1.0)

	assert.Equal(t, int64(0), res.DamageDealt)
	assert.Equal(t, int64(0), res.NetDamage)
	assert.Equal(t, int64(0), res.AttackerRemaining)
	assert.Equal(t, int64(500), res.DefenderRemaining)
	assert.Equal(t, OutcomeDamaged, res.Outcome)
}

func TestResolve_Pure(t *testing.T) {
	a := Resolve(12345, 6789, 1.7)
	b := Resolve(12345, 6789, 1.7)
	assert.Equal(t, a, b, "Resolve must be deterministic")
}
