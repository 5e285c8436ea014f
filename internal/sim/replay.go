package sim

import (
	"fmt"

	"github.com/warfront/hexsim/internal/actionlog"
	"github.com/warfront/hexsim/internal/field"
)

// Replay applies an ordered sequence of action records to a field holding
// the initial battlefield state, reconstructing the live state the log
// describes.
//
// The log is the system of record; the field is a derived projection. For
// any correctly produced log, replaying it from the initial state yields
// exactly the engine's live state (location and energy of every surviving
// unit).
//
// Records must be strictly increasing in seq; anything else indicates a
// corrupt or reordered log and is rejected.
func Replay(f *field.Field, records []actionlog.Record) error {
	var lastSeq int64
	for _, rec := range records {
		if rec.Seq <= lastSeq {
			return fmt.Errorf("replay: seq %d after %d is not strictly increasing", rec.Seq, lastSeq)
		}
		lastSeq = rec.Seq

		var err error
		switch rec.Kind {
		case actionlog.KindMove:
			err = replayMove(f, rec)
		case actionlog.KindEngage:
			err = replayEngage(f, rec)
		default:
			err = fmt.Errorf("unknown kind %q", rec.Kind)
		}
		if err != nil {
			return fmt.Errorf("replay: seq %d: %w", rec.Seq, err)
		}
	}
	return f.CheckInvariants()
}

func replayMove(f *field.Field, rec actionlog.Record) error {
	if err := f.MoveUnit(rec.UnitID, field.HexID(rec.ToHex)); err != nil {
		return err
	}
	return f.SetEnergy(rec.UnitID, rec.Remaining)
}

func replayEngage(f *field.Field, rec actionlog.Record) error {
	if err := f.SetEnergy(rec.UnitID, rec.Remaining); err != nil {
		return err
	}

	switch Outcome(rec.Outcome) {
	case OutcomeDestroyed:
		return f.RemoveUnit(rec.SecondaryID)
	case OutcomeDamaged:
		def, ok := f.Unit(rec.SecondaryID)
		if !ok {
			return fmt.Errorf("defender %q not found", rec.SecondaryID)
		}
		return f.SetEnergy(rec.SecondaryID, def.Energy-rec.NetDamage)
	default:
		return fmt.Errorf("unknown engage outcome %q", rec.Outcome)
	}
}
