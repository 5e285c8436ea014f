package harness

// TraceEvent is one action log record projected for trace comparison.
// The transaction token and wall time are deliberately excluded: tokens
// are correlation metadata and wall time is nondeterministic, while golden
// traces must be byte-stable.
type TraceEvent struct {
	Seq       int64  `json:"seq"`
	Kind      string `json:"kind"`
	Unit      string `json:"unit"`
	Secondary string `json:"secondary,omitempty"`
	From      string `json:"from"`
	To        string `json:"to"`
	Cost      int64  `json:"cost"`
	Remaining int64  `json:"remaining"`
	Outcome   string `json:"outcome"`
	NetDamage int64  `json:"net_damage,omitempty"`
}

// UnitState is a surviving unit's final location and energy.
type UnitState struct {
	Hex    string `json:"hex"`
	Energy int64  `json:"energy"`
}

// Result is the outcome of a scenario execution.
type Result struct {
	// Pass indicates overall success: every expect clause matched and
	// every assertion held.
	Pass bool `json:"pass"`

	// Trace contains the committed action log in seq order.
	Trace []TraceEvent `json:"trace"`

	// Errors contains validation error messages. Empty if Pass is true.
	Errors []string `json:"errors,omitempty"`

	// Final maps surviving unit IDs to their final state.
	Final map[string]UnitState `json:"final"`
}

// NewResult creates a new passing result.
func NewResult() *Result {
	return &Result{
		Pass:  true,
		Trace: []TraceEvent{},
		Final: make(map[string]UnitState),
	}
}

// AddError adds a validation error and marks the result as failed.
func (r *Result) AddError(err string) {
	r.Errors = append(r.Errors, err)
	r.Pass = false
}
