package harness

import (
	"fmt"

	"github.com/warfront/hexsim/internal/field"
)

// Assertion validates the final log or state after all steps have run.
type Assertion struct {
	// Type selects the assertion: log_length, unit_at, unit_energy,
	// unit_absent.
	Type string `yaml:"type"`

	// Unit names the unit for unit_at, unit_energy, and unit_absent.
	Unit string `yaml:"unit,omitempty"`

	// Hex is the expected location for unit_at.
	Hex string `yaml:"hex,omitempty"`

	// Energy is the expected energy for unit_energy.
	Energy *int64 `yaml:"energy,omitempty"`

	// Length is the expected record count for log_length.
	Length *int `yaml:"length,omitempty"`
}

func evaluateAssertion(f *field.Field, result *Result, a Assertion) error {
	switch a.Type {
	case "log_length":
		if a.Length == nil {
			return fmt.Errorf("log_length assertion requires length")
		}
		if got := len(result.Trace); got != *a.Length {
			return fmt.Errorf("log length = %d, want %d", got, *a.Length)
		}
	case "unit_at":
		u, ok := f.Unit(a.Unit)
		if !ok {
			return fmt.Errorf("unit_at %s: unit not found", a.Unit)
		}
		if string(u.Location) != a.Hex {
			return fmt.Errorf("unit %s at %s, want %s", a.Unit, u.Location, a.Hex)
		}
	case "unit_energy":
		if a.Energy == nil {
			return fmt.Errorf("unit_energy assertion requires energy")
		}
		u, ok := f.Unit(a.Unit)
		if !ok {
			return fmt.Errorf("unit_energy %s: unit not found", a.Unit)
		}
		if u.Energy != *a.Energy {
			return fmt.Errorf("unit %s energy = %d, want %d", a.Unit, u.Energy, *a.Energy)
		}
	case "unit_absent":
		if _, ok := f.Unit(a.Unit); ok {
			return fmt.Errorf("unit %s still present, want absent", a.Unit)
		}
	default:
		return fmt.Errorf("unknown assertion type %q", a.Type)
	}
	return nil
}
