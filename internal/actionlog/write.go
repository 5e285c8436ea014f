package actionlog

import (
	"context"
	"fmt"
)

// Append inserts a single record into the log.
//
// Seq must be unique and greater than every previously appended seq; the
// PRIMARY KEY constraint rejects duplicates. Unlike an idempotent event
// store, a duplicate seq here is an engine bug, so the constraint violation
// is surfaced rather than swallowed.
//
// Append is called only from within a committing engine transaction, with
// the engine's commit lock held, so log order matches serialization order.
func (s *Store) Append(ctx context.Context, rec Record) error {
	if rec.Seq <= 0 {
		return fmt.Errorf("append: seq must be positive, got %d", rec.Seq)
	}
	if rec.Kind != KindMove && rec.Kind != KindEngage {
		return fmt.Errorf("append: unknown kind %q", rec.Kind)
	}

	_, err := s.db.ExecContext(ctx, `
		INSERT INTO actions
		(seq, kind, unit_id, secondary_id, from_hex, to_hex, cost, remaining, outcome, net_damage, token, wall_nanos)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
	`,
		rec.Seq,
		string(rec.Kind),
		rec.UnitID,
		rec.SecondaryID,
		rec.FromHex,
		rec.ToHex,
		rec.Cost,
		rec.Remaining,
		rec.Outcome,
		rec.NetDamage,
		rec.Token,
		rec.WallNanos,
	)
	if err != nil {
		return fmt.Errorf("append: %w", err)
	}

	return nil
}
