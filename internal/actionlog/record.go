package actionlog

// Kind identifies the operation a record describes.
type Kind string

const (
	// KindMove records a unit traversing an adjacency edge.
	KindMove Kind = "MOVE"
	// KindEngage records a combat engagement between two colocated units.
	KindEngage Kind = "ENGAGE"
)

// NoHex is the sentinel hex value for records where a source/target hexagon
// is not applicable (engagements).
const NoHex = "N/A"

// Record is one committed simulation operation. Records are immutable and
// append-only; the log is the system of record for audit and replay, and the
// live field state must always be reconstructable from it.
//
// Seq is the strictly increasing commit order. WallNanos is informational
// only - ordering decisions are made on Seq, never on wall time.
type Record struct {
	Seq         int64  `json:"seq"`
	Kind        Kind   `json:"kind"`
	UnitID      string `json:"unit_id"`
	SecondaryID string `json:"secondary_id,omitempty"`
	FromHex     string `json:"from_hex"`
	ToHex       string `json:"to_hex"`
	Cost        int64  `json:"cost"`
	Remaining   int64  `json:"remaining"`
	Outcome     string `json:"outcome"`
	NetDamage   int64  `json:"net_damage"`
	Token       string `json:"token"`
	WallNanos   int64  `json:"wall_nanos"`
}
