// Package harness provides a conformance testing framework for the
// simulation engine.
//
// A scenario declares an initial battlefield, a scripted sequence of
// move/engage operations with expected results, and assertions over the
// final action log and live state. Each scenario runs against the real
// engine with a fresh in-memory log, deterministic transaction tokens, and
// suppressed logging, so repeated runs produce byte-identical traces for
// golden comparison.
package harness

import (
	"context"
	"fmt"
	"io"
	"log/slog"

	"github.com/warfront/hexsim/internal/actionlog"
	"github.com/warfront/hexsim/internal/field"
	"github.com/warfront/hexsim/internal/sim"
)

// Run executes a test scenario and returns the result.
//
// Execution flow:
//  1. Build the initial field from the scenario's battlefield.
//  2. Open a fresh in-memory action log.
//  3. Execute each step, validating expect clauses.
//  4. Project the log into the trace and collect final unit states.
//  5. Evaluate assertions.
//
// Run returns an error only for harness-level failures (bad battlefield,
// storage errors); step mismatches are reported in Result.Errors.
func Run(sc *Scenario) (*Result, error) {
	f, err := sc.Battlefield.Build()
	if err != nil {
		return nil, fmt.Errorf("harness: %w", err)
	}

	log, err := actionlog.OpenMemory()
	if err != nil {
		return nil, fmt.Errorf("harness: %w", err)
	}
	defer log.Close()

	eng, err := sim.New(f, log,
		sim.WithTokens(sim.NewFixedGenerator(sim.SeqTokens(len(sc.Steps))...)),
		sim.WithLogger(slog.New(slog.NewTextHandler(io.Discard, nil))),
	)
	if err != nil {
		return nil, fmt.Errorf("harness: %w", err)
	}

	ctx := context.Background()
	result := NewResult()

	for i, step := range sc.Steps {
		if err := executeStep(ctx, eng, i, step, result); err != nil {
			return nil, err
		}
	}

	records, err := log.Scan(ctx)
	if err != nil {
		return nil, fmt.Errorf("harness: %w", err)
	}
	for _, rec := range records {
		result.Trace = append(result.Trace, TraceEvent{
			Seq:       rec.Seq,
			Kind:      string(rec.Kind),
			Unit:      rec.UnitID,
			Secondary: rec.SecondaryID,
			From:      rec.FromHex,
			To:        rec.ToHex,
			Cost:      rec.Cost,
			Remaining: rec.Remaining,
			Outcome:   rec.Outcome,
			NetDamage: rec.NetDamage,
		})
	}
	for _, u := range f.Units() {
		result.Final[u.ID] = UnitState{Hex: string(u.Location), Energy: u.Energy}
	}

	for _, assertion := range sc.Assertions {
		if err := evaluateAssertion(f, result, assertion); err != nil {
			result.AddError(err.Error())
		}
	}

	return result, nil
}

func executeStep(ctx context.Context, eng *sim.Engine, idx int, step Step, result *Result) error {
	switch {
	case step.Move != nil:
		res, err := eng.Move(ctx, step.Move.Unit, field.HexID(step.Move.From), field.HexID(step.Move.To))
		checkMoveExpect(idx, step.Expect, res, err, result)
	case step.Engage != nil:
		res, err := eng.Engage(ctx, step.Engage.Attacker, step.Engage.Defender)
		checkEngageExpect(idx, step.Expect, res, err, result)
	default:
		return fmt.Errorf("harness: steps[%d]: empty step", idx)
	}
	return nil
}

func checkMoveExpect(idx int, expect *Expect, res sim.MoveResult, err error, result *Result) {
	if !checkError(idx, expect, err, result) {
		return
	}
	if expect == nil || err != nil {
		return
	}
	if expect.Remaining != nil && res.Remaining != *expect.Remaining {
		result.AddError(fmt.Sprintf("steps[%d]: remaining = %d, want %d", idx, res.Remaining, *expect.Remaining))
	}
}

func checkEngageExpect(idx int, expect *Expect, res sim.EngageResult, err error, result *Result) {
	if !checkError(idx, expect, err, result) {
		return
	}
	if expect == nil || err != nil {
		return
	}
	if expect.AttackerEnergy != nil && res.AttackerEnergy != *expect.AttackerEnergy {
		result.AddError(fmt.Sprintf("steps[%d]: attacker energy = %d, want %d", idx, res.AttackerEnergy, *expect.AttackerEnergy))
	}
	if expect.DefenderStatus != "" && res.DefenderStatus != expect.DefenderStatus {
		result.AddError(fmt.Sprintf("steps[%d]: defender status = %q, want %q", idx, res.DefenderStatus, expect.DefenderStatus))
	}
	if expect.NetDamage != nil && res.NetDamage != *expect.NetDamage {
		result.AddError(fmt.Sprintf("steps[%d]: net damage = %d, want %d", idx, res.NetDamage, *expect.NetDamage))
	}
}

// checkError validates the error side of an expect clause. Returns false
// if further result validation should be skipped.
func checkError(idx int, expect *Expect, err error, result *Result) bool {
	wantCode := ""
	if expect != nil {
		wantCode = expect.Error
	}

	switch {
	case err == nil && wantCode != "":
		result.AddError(fmt.Sprintf("steps[%d]: succeeded, want error %s", idx, wantCode))
		return false
	case err != nil && wantCode == "":
		result.AddError(fmt.Sprintf("steps[%d]: unexpected error: %v", idx, err))
		return false
	case err != nil:
		if got := string(sim.CodeOf(err)); got != wantCode {
			result.AddError(fmt.Sprintf("steps[%d]: error code = %s, want %s", idx, got, wantCode))
		}
		return false
	}
	return true
}
