package sim

import "math"

// Outcome tags the result of a committed operation in the action log.
type Outcome string

const (
	// OutcomeMoved tags a committed move.
	OutcomeMoved Outcome = "moved"
	// OutcomeDamaged tags an engagement the defender survived.
	OutcomeDamaged Outcome = "damaged"
	// OutcomeDestroyed tags an engagement that destroyed the defender.
	OutcomeDestroyed Outcome = "destroyed"
)

// Engagement is the resolved result of a single combat interaction.
type Engagement struct {
	// DamageDealt is the raw damage output: floor(attackerEnergy * 0.7).
	DamageDealt int64

	// NetDamage is the damage after the defender's rating:
	// floor(DamageDealt / defenseRating).
	NetDamage int64

	// AttackerRemaining is floor(attackerEnergy * 0.3). The attacker always
	// expends 70% of current energy, regardless of outcome.
	AttackerRemaining int64

	// DefenderRemaining is defenderEnergy - NetDamage. May be negative or
	// zero, in which case the defender is destroyed.
	DefenderRemaining int64

	// Outcome is OutcomeDestroyed when DefenderRemaining <= 0, else
	// OutcomeDamaged.
	Outcome Outcome
}

// Resolve computes damage and outcome for an engagement.
//
// Pure function over integer energies; all divisions floor, so logged
// values are exactly reproducible across platforms. A defense rating that
// is unset or non-positive defaults to 1.0.
func Resolve(attackerEnergy, defenderEnergy int64, defenseRating float64) Engagement {
	if defenseRating <= 0 {
		defenseRating = 1.0
	}

	dealt := attackerEnergy * 7 / 10
	net := int64(math.Floor(float64(dealt) / defenseRating))
	remaining := defenderEnergy - net

	outcome := OutcomeDamaged
	if remaining <= 0 {
		outcome = OutcomeDestroyed
	}

	return Engagement{
		DamageDealt:       dealt,
		NetDamage:         net,
		AttackerRemaining: attackerEnergy * 3 / 10,
		DefenderRemaining: remaining,
		Outcome:           outcome,
	}
}
