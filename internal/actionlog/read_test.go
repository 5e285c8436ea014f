package actionlog

import (
	"context"
	"testing"
)

func TestScan_OrderedBySeq(t *testing.T) {
	s, err := OpenMemory()
	if err != nil {
		t.Fatalf("OpenMemory() failed: %v", err)
	}
	defer s.Close()

	ctx := context.Background()

	// Append out of order; scan must come back in seq order.
	for _, seq := range []int64{2, 1, 3} {
		rec := testRecord(seq)
		if err := s.Append(ctx, rec); err != nil {
			t.Fatalf("Append(%d) failed: %v", seq, err)
		}
	}

	records, err := s.Scan(ctx)
	if err != nil {
		t.Fatalf("Scan() failed: %v", err)
	}
	if len(records) != 3 {
		t.Fatalf("got %d records, want 3", len(records))
	}
	for i, rec := range records {
		if rec.Seq != int64(i+1) {
			t.Errorf("records[%d].Seq = %d, want %d", i, rec.Seq, i+1)
		}
	}
}

func TestScan_RoundTrip(t *testing.T) {
	s, err := OpenMemory()
	if err != nil {
		t.Fatalf("OpenMemory() failed: %v", err)
	}
	defer s.Close()

	ctx := context.Background()
	want := Record{
		Seq:         1,
		Kind:        KindEngage,
		UnitID:      "att",
		SecondaryID: "def",
		FromHex:     NoHex,
		ToHex:       NoHex,
		Cost:        700,
		Remaining:   300,
		Outcome:     "damaged",
		NetDamage:   350,
		Token:       "tok-9",
		WallNanos:   42,
	}
	if err := s.Append(ctx, want); err != nil {
		t.Fatalf("Append() failed: %v", err)
	}

	records, err := s.Scan(ctx)
	if err != nil {
		t.Fatalf("Scan() failed: %v", err)
	}
	if len(records) != 1 {
		t.Fatalf("got %d records, want 1", len(records))
	}
	if records[0] != want {
		t.Errorf("round trip mismatch:\n got  %+v\n want %+v", records[0], want)
	}
}

func TestScanUnit_ActingAndSecondary(t *testing.T) {
	s, err := OpenMemory()
	if err != nil {
		t.Fatalf("OpenMemory() failed: %v", err)
	}
	defer s.Close()

	ctx := context.Background()

	move := testRecord(1) // u1 moves
	engage := Record{
		Seq: 2, Kind: KindEngage, UnitID: "u2", SecondaryID: "u1",
		FromHex: NoHex, ToHex: NoHex, Cost: 70, Remaining: 30,
		Outcome: "damaged", NetDamage: 70, WallNanos: 1,
	}
	other := testRecord(3)
	other.UnitID = "u3"

	for _, rec := range []Record{move, engage, other} {
		if err := s.Append(ctx, rec); err != nil {
			t.Fatalf("Append(%d) failed: %v", rec.Seq, err)
		}
	}

	records, err := s.ScanUnit(ctx, "u1")
	if err != nil {
		t.Fatalf("ScanUnit() failed: %v", err)
	}
	if len(records) != 2 {
		t.Fatalf("got %d records for u1, want 2", len(records))
	}
	if records[0].Seq != 1 || records[1].Seq != 2 {
		t.Errorf("seqs = %d, %d; want 1, 2", records[0].Seq, records[1].Seq)
	}
}

func TestLastSeq(t *testing.T) {
	s, err := OpenMemory()
	if err != nil {
		t.Fatalf("OpenMemory() failed: %v", err)
	}
	defer s.Close()

	ctx := context.Background()

	last, err := s.LastSeq(ctx)
	if err != nil {
		t.Fatalf("LastSeq() failed: %v", err)
	}
	if last != 0 {
		t.Errorf("empty log LastSeq = %d, want 0", last)
	}

	for seq := int64(1); seq <= 5; seq++ {
		if err := s.Append(ctx, testRecord(seq)); err != nil {
			t.Fatalf("Append(%d) failed: %v", seq, err)
		}
	}

	last, err = s.LastSeq(ctx)
	if err != nil {
		t.Fatalf("LastSeq() failed: %v", err)
	}
	if last != 5 {
		t.Errorf("LastSeq = %d, want 5", last)
	}
}
