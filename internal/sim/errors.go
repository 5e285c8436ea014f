package sim

import (
	"errors"
	"fmt"

	"github.com/warfront/hexsim/internal/field"
)

// OpError represents a rejected or failed simulation operation.
//
// Every domain failure mode has its own code so callers can distinguish
// them without string matching. Precondition failures are detected before
// any mutation: an OpError return means no state change and no log entry.
type OpError struct {
	// Code identifies the failure category.
	Code ErrorCode

	// Message is a human-readable description.
	Message string

	// UnitID identifies the acting unit.
	UnitID string

	// SecondaryID identifies the defender (engagements only).
	SecondaryID string

	// Hex identifies the hexagon involved, when applicable.
	Hex field.HexID

	// Details contains additional context.
	Details map[string]string
}

// ErrorCode categorizes operation failures.
type ErrorCode string

const (
	// ErrCodeUnitNotFound indicates the referenced unit does not exist or
	// was destroyed.
	ErrCodeUnitNotFound ErrorCode = "UNIT_NOT_FOUND"

	// ErrCodeUnitNotAtHex indicates the acting unit is not located on the
	// claimed source hexagon.
	ErrCodeUnitNotAtHex ErrorCode = "UNIT_NOT_AT_HEX"

	// ErrCodeNotColocated indicates attacker and defender do not share a
	// hexagon.
	ErrCodeNotColocated ErrorCode = "NOT_COLOCATED"

	// ErrCodeNoSuchEdge indicates a move across non-adjacent hexagons.
	ErrCodeNoSuchEdge ErrorCode = "NO_SUCH_EDGE"

	// ErrCodeInsufficientEnergy indicates the unit cannot pay the movement
	// cost.
	ErrCodeInsufficientEnergy ErrorCode = "INSUFFICIENT_ENERGY"

	// ErrCodeContended indicates the per-unit lock set could not be
	// acquired within the bounded wait. Retryable by the caller.
	ErrCodeContended ErrorCode = "CONTENDED"

	// ErrCodeInvariantViolation indicates an internal consistency check
	// failed. Fatal: the transaction is aborted and the condition surfaced
	// for operator attention, never silently repaired.
	ErrCodeInvariantViolation ErrorCode = "INVARIANT_VIOLATION"
)

// Error implements the error interface.
func (e *OpError) Error() string {
	switch {
	case e.UnitID != "" && e.SecondaryID != "":
		return fmt.Sprintf("%s: %s (unit=%s, secondary=%s)", e.Code, e.Message, e.UnitID, e.SecondaryID)
	case e.UnitID != "" && e.Hex != "":
		return fmt.Sprintf("%s: %s (unit=%s, hex=%s)", e.Code, e.Message, e.UnitID, e.Hex)
	case e.UnitID != "":
		return fmt.Sprintf("%s: %s (unit=%s)", e.Code, e.Message, e.UnitID)
	default:
		return fmt.Sprintf("%s: %s", e.Code, e.Message)
	}
}

// CodeOf extracts the ErrorCode from an error, unwrapping as needed.
// Returns "" if the error is not an OpError.
func CodeOf(err error) ErrorCode {
	var oe *OpError
	if errors.As(err, &oe) {
		return oe.Code
	}
	return ""
}

// IsRetryable reports whether the caller may retry the operation as-is.
// Only lock contention is retryable by design.
func IsRetryable(err error) bool {
	return CodeOf(err) == ErrCodeContended
}

// IsUnitNotFound reports whether err is a UNIT_NOT_FOUND failure.
func IsUnitNotFound(err error) bool {
	return CodeOf(err) == ErrCodeUnitNotFound
}

// IsContended reports whether err is a CONTENDED failure.
func IsContended(err error) bool {
	return CodeOf(err) == ErrCodeContended
}

// IsInvariantViolation reports whether err is a fatal consistency failure.
func IsInvariantViolation(err error) bool {
	return CodeOf(err) == ErrCodeInvariantViolation
}

func errUnitNotFound(unitID string) *OpError {
	return &OpError{
		Code:    ErrCodeUnitNotFound,
		Message: "unit does not exist",
		UnitID:  unitID,
	}
}

func errUnitNotAtHex(unitID string, claimed, actual field.HexID) *OpError {
	return &OpError{
		Code:    ErrCodeUnitNotAtHex,
		Message: fmt.Sprintf("unit is located on hex %s, not %s", actual, claimed),
		UnitID:  unitID,
		Hex:     claimed,
		Details: map[string]string{"actual_hex": string(actual)},
	}
}

func errNoSuchEdge(unitID string, from, to field.HexID) *OpError {
	return &OpError{
		Code:    ErrCodeNoSuchEdge,
		Message: fmt.Sprintf("no adjacency edge between %s and %s", from, to),
		UnitID:  unitID,
		Hex:     to,
	}
}

func errNotColocated(attackerID, defenderID string, attackerHex, defenderHex field.HexID) *OpError {
	return &OpError{
		Code:        ErrCodeNotColocated,
		Message:     fmt.Sprintf("attacker on hex %s, defender on hex %s", attackerHex, defenderHex),
		UnitID:      attackerID,
		SecondaryID: defenderID,
	}
}

func errInsufficientEnergy(unitID string, have, need int64) *OpError {
	return &OpError{
		Code:    ErrCodeInsufficientEnergy,
		Message: fmt.Sprintf("energy %d is below movement cost %d", have, need),
		UnitID:  unitID,
		Details: map[string]string{
			"energy": fmt.Sprintf("%d", have),
			"cost":   fmt.Sprintf("%d", need),
		},
	}
}

func errContended(unitIDs ...string) *OpError {
	e := &OpError{
		Code:    ErrCodeContended,
		Message: "timed out acquiring unit locks",
	}
	if len(unitIDs) > 0 {
		e.UnitID = unitIDs[0]
	}
	if len(unitIDs) > 1 {
		e.SecondaryID = unitIDs[1]
	}
	return e
}

func errInvariant(unitID string, cause error) *OpError {
	return &OpError{
		Code:    ErrCodeInvariantViolation,
		Message: cause.Error(),
		UnitID:  unitID,
	}
}
