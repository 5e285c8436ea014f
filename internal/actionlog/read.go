package actionlog

import (
	"context"
	"database/sql"
	"fmt"
)

const selectColumns = `seq, kind, unit_id, secondary_id, from_hex, to_hex, cost, remaining, outcome, net_damage, token, wall_nanos`

// Scan returns every record in the log, ordered by seq ascending.
// This is the replay path: applying the result to the initial battlefield
// state reconstructs the current live state.
func (s *Store) Scan(ctx context.Context) ([]Record, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT `+selectColumns+`
		FROM actions
		ORDER BY seq ASC
	`)
	if err != nil {
		return nil, fmt.Errorf("scan: %w", err)
	}
	defer rows.Close()

	return collectRecords(rows)
}

// ScanUnit returns every record in which the given unit acted or was the
// secondary (defending) unit, ordered by seq ascending.
func (s *Store) ScanUnit(ctx context.Context, unitID string) ([]Record, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT `+selectColumns+`
		FROM actions
		WHERE unit_id = ? OR secondary_id = ?
		ORDER BY seq ASC
	`, unitID, unitID)
	if err != nil {
		return nil, fmt.Errorf("scan unit: %w", err)
	}
	defer rows.Close()

	return collectRecords(rows)
}

// LastSeq returns the highest seq in the log, or 0 for an empty log.
// Used to seed the engine's logical clock when reopening a database.
func (s *Store) LastSeq(ctx context.Context) (int64, error) {
	var seq sql.NullInt64
	err := s.db.QueryRowContext(ctx, `SELECT MAX(seq) FROM actions`).Scan(&seq)
	if err != nil {
		return 0, fmt.Errorf("last seq: %w", err)
	}
	if !seq.Valid {
		return 0, nil
	}
	return seq.Int64, nil
}

func collectRecords(rows *sql.Rows) ([]Record, error) {
	var out []Record
	for rows.Next() {
		var rec Record
		var kind string
		err := rows.Scan(
			&rec.Seq,
			&kind,
			&rec.UnitID,
			&rec.SecondaryID,
			&rec.FromHex,
			&rec.ToHex,
			&rec.Cost,
			&rec.Remaining,
			&rec.Outcome,
			&rec.NetDamage,
			&rec.Token,
			&rec.WallNanos,
		)
		if err != nil {
			return nil, fmt.Errorf("scan row: %w", err)
		}
		rec.Kind = Kind(kind)
		out = append(out, rec)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("scan rows: %w", err)
	}
	return out, nil
}
