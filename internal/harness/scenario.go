package harness

import (
	"bytes"
	"fmt"
	"os"

	"gopkg.in/yaml.v3"

	"github.com/warfront/hexsim/internal/scenario"
)

// Scenario defines a conformance test scenario: a battlefield, a scripted
// sequence of operations, and assertions over the resulting action log and
// final state.
type Scenario struct {
	// Name uniquely identifies this scenario. Golden traces are stored
	// under testdata/golden/{Name}.golden.
	Name string `yaml:"name"`

	// Description explains what this scenario validates.
	Description string `yaml:"description,omitempty"`

	// Battlefield is the initial state: hexes, adjacency edges, units.
	Battlefield scenario.Scenario `yaml:"battlefield"`

	// Steps is the scripted operation sequence.
	Steps []Step `yaml:"steps"`

	// Assertions validate the final log and state.
	// Supported types: log_length, unit_at, unit_energy, unit_absent.
	Assertions []Assertion `yaml:"assertions,omitempty"`
}

// Step is one scripted operation. Exactly one of Move or Engage is set.
type Step struct {
	Move   *MoveStep   `yaml:"move,omitempty"`
	Engage *EngageStep `yaml:"engage,omitempty"`

	// Expect specifies the expected result. If nil, the step is assumed
	// to succeed.
	Expect *Expect `yaml:"expect,omitempty"`
}

// MoveStep invokes move(unit, from, to).
type MoveStep struct {
	Unit string `yaml:"unit"`
	From string `yaml:"from"`
	To   string `yaml:"to"`
}

// EngageStep invokes engage(attacker, defender).
type EngageStep struct {
	Attacker string `yaml:"attacker"`
	Defender string `yaml:"defender"`
}

// Expect specifies the expected outcome of a step.
type Expect struct {
	// Error is the expected typed error code (e.g. "INSUFFICIENT_ENERGY").
	// Empty means the step must succeed.
	Error string `yaml:"error,omitempty"`

	// Remaining is the expected energy after a successful move.
	Remaining *int64 `yaml:"remaining,omitempty"`

	// AttackerEnergy is the expected attacker energy after an engagement.
	AttackerEnergy *int64 `yaml:"attacker_energy,omitempty"`

	// DefenderStatus is the expected "damaged"/"destroyed" status.
	DefenderStatus string `yaml:"defender_status,omitempty"`

	// NetDamage is the expected net damage of an engagement.
	NetDamage *int64 `yaml:"net_damage,omitempty"`
}

// LoadScenario reads and parses a scenario file.
func LoadScenario(path string) (*Scenario, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("load scenario: %w", err)
	}
	return ParseScenario(data)
}

// ParseScenario parses a scenario document, rejecting unknown fields.
func ParseScenario(data []byte) (*Scenario, error) {
	var sc Scenario
	dec := yaml.NewDecoder(bytes.NewReader(data))
	dec.KnownFields(true)
	if err := dec.Decode(&sc); err != nil {
		return nil, fmt.Errorf("parse scenario: %w", err)
	}
	if err := sc.validate(); err != nil {
		return nil, err
	}
	return &sc, nil
}

func (s *Scenario) validate() error {
	if s.Name == "" {
		return fmt.Errorf("scenario name is required")
	}
	for i, step := range s.Steps {
		switch {
		case step.Move == nil && step.Engage == nil:
			return fmt.Errorf("steps[%d]: neither move nor engage set", i)
		case step.Move != nil && step.Engage != nil:
			return fmt.Errorf("steps[%d]: both move and engage set", i)
		}
	}
	return nil
}
