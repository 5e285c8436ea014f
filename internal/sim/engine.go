// Package sim implements the simulation engine: a transactional state
// machine applying MOVE and ENGAGE operations to the battlefield field
// while producing an ordered, replayable action log.
//
// Consistency model:
//   - Per-unit serializability. Every operation acquires the locks of all
//     units it will read-modify-write (sorted, bounded wait) before reading
//     anything, so concurrent operations on the same unit never interleave.
//   - Atomic commit. Field mutation and log append happen under a single
//     commit lock; if the append fails the mutation is reverted exactly, so
//     a reader never observes one without the other, and log order equals
//     serialization order.
//   - Precondition failures are detected before any mutation and returned
//     as typed *OpError values with no state change and no log entry.
package sim

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/warfront/hexsim/internal/actionlog"
	"github.com/warfront/hexsim/internal/field"
	"github.com/warfront/hexsim/internal/metrics"
)

// DefaultMaxWait is the default bounded wait for the per-unit lock set.
// Operations that cannot acquire their locks within this window fail with
// CONTENDED instead of deadlocking.
const DefaultMaxWait = 2 * time.Second

// ActionPublisher receives every committed action record, after commit.
// Implemented by bus.Bus; a nil publisher disables publishing.
type ActionPublisher interface {
	PublishAction(rec actionlog.Record) error
}

// Engine orchestrates the battlefield field, cost model, combat resolver,
// and action log.
type Engine struct {
	field  *field.Field
	log    *actionlog.Store
	clock  *Clock
	cost   CostModel
	locks  *lockTable
	tokens TokenGenerator
	pub    ActionPublisher
	logger *slog.Logger

	maxWait time.Duration

	// commitMu spans "apply field mutation + append log record" so that
	// log order is exactly commit order.
	commitMu chan struct{}
}

// Option configures engine parameters.
type Option func(*Engine)

// WithCostModel overrides the default EdgeWeightCost model.
func WithCostModel(m CostModel) Option {
	return func(e *Engine) { e.cost = m }
}

// WithMaxWait sets the bounded wait for unit lock acquisition.
func WithMaxWait(d time.Duration) Option {
	return func(e *Engine) { e.maxWait = d }
}

// WithTokens sets the transaction token generator. Tests use
// NewFixedGenerator for deterministic log output.
func WithTokens(g TokenGenerator) Option {
	return func(e *Engine) { e.tokens = g }
}

// WithPublisher attaches a post-commit action publisher.
func WithPublisher(p ActionPublisher) Option {
	return func(e *Engine) { e.pub = p }
}

// WithLogger sets the engine's structured logger.
func WithLogger(l *slog.Logger) Option {
	return func(e *Engine) { e.logger = l }
}

// New creates an engine over an initialized field and an open action log.
// The logical clock resumes after the log's last seq, so reopening an
// existing database continues the sequence without gaps or collisions.
func New(f *field.Field, log *actionlog.Store, opts ...Option) (*Engine, error) {
	last, err := log.LastSeq(context.Background())
	if err != nil {
		return nil, fmt.Errorf("seed clock: %w", err)
	}

	e := &Engine{
		field:    f,
		log:      log,
		clock:    NewClockAt(last),
		locks:    newLockTable(),
		tokens:   UUIDv7Generator{},
		logger:   slog.Default(),
		maxWait:  DefaultMaxWait,
		commitMu: make(chan struct{}, 1),
	}
	e.cost = EdgeWeightCost{Field: f}

	for _, opt := range opts {
		opt(e)
	}
	return e, nil
}

// MoveResult is the caller-visible outcome of a committed move.
type MoveResult struct {
	Remaining int64 `json:"remaining_energy"`
}

// EngageResult is the caller-visible outcome of a committed engagement.
type EngageResult struct {
	AttackerEnergy int64  `json:"attacker_energy"`
	DefenderStatus string `json:"defender_status"`
	DamageDealt    int64  `json:"damage_dealt"`
	NetDamage      int64  `json:"net_damage"`
}

// Move relocates a unit across an adjacency edge, deducting the movement
// cost, and appends a MOVE record.
//
// Preconditions, checked in order before any mutation: the unit exists and
// is live; its current location is from; an edge from-to exists; its energy
// covers the movement cost.
func (e *Engine) Move(ctx context.Context, unitID string, from, to field.HexID) (MoveResult, error) {
	release, err := e.locks.acquire(ctx, e.maxWait, unitID)
	if err != nil {
		return MoveResult{}, e.reject(err)
	}
	defer release()

	u, ok := e.field.Unit(unitID)
	if !ok {
		return MoveResult{}, e.reject(errUnitNotFound(unitID))
	}
	if u.Location != from {
		return MoveResult{}, e.reject(errUnitNotAtHex(unitID, from, u.Location))
	}
	if !e.field.Adjacent(from, to) {
		return MoveResult{}, e.reject(errNoSuchEdge(unitID, from, to))
	}

	cost := e.cost.Cost(from, to)
	if u.Energy < cost {
		return MoveResult{}, e.reject(errInsufficientEnergy(unitID, u.Energy, cost))
	}
	remaining := u.Energy - cost

	rec := actionlog.Record{
		Kind:      actionlog.KindMove,
		UnitID:    unitID,
		FromHex:   string(from),
		ToHex:     string(to),
		Cost:      cost,
		Remaining: remaining,
		Outcome:   string(OutcomeMoved),
		Token:     e.tokens.Generate(),
		WallNanos: time.Now().UnixNano(),
	}

	apply := func() error {
		if err := e.field.MoveUnit(unitID, to); err != nil {
			return err
		}
		return e.field.SetEnergy(unitID, remaining)
	}
	revert := func() {
		_ = e.field.MoveUnit(unitID, from)
		_ = e.field.SetEnergy(unitID, u.Energy)
	}

	if err := e.commit(ctx, &rec, unitID, apply, revert); err != nil {
		return MoveResult{}, err
	}

	metrics.MovesTotal.Inc()
	e.logger.Debug("move committed",
		"unit", unitID, "from", from, "to", to,
		"cost", cost, "remaining", remaining, "seq", rec.Seq)
	return MoveResult{Remaining: remaining}, nil
}

// Engage resolves combat between two colocated units, applies the result,
// and appends an ENGAGE record.
//
// The attacker always expends 70% of current energy. A defender whose
// energy drops to zero or below is removed from the field entirely, and
// any later operation referencing its ID fails with UNIT_NOT_FOUND.
func (e *Engine) Engage(ctx context.Context, attackerID, defenderID string) (EngageResult, error) {
	if attackerID == defenderID {
		return EngageResult{}, e.reject(&OpError{
			Code:    ErrCodeNotColocated,
			Message: "unit cannot engage itself",
			UnitID:  attackerID,
		})
	}

	release, err := e.locks.acquire(ctx, e.maxWait, attackerID, defenderID)
	if err != nil {
		return EngageResult{}, e.reject(err)
	}
	defer release()

	att, ok := e.field.Unit(attackerID)
	if !ok {
		return EngageResult{}, e.reject(errUnitNotFound(attackerID))
	}
	def, ok := e.field.Unit(defenderID)
	if !ok {
		return EngageResult{}, e.reject(errUnitNotFound(defenderID))
	}
	if att.Location != def.Location {
		return EngageResult{}, e.reject(errNotColocated(attackerID, defenderID, att.Location, def.Location))
	}

	res := Resolve(att.Energy, def.Energy, def.DefenseRating())
	destroyed := res.Outcome == OutcomeDestroyed

	rec := actionlog.Record{
		Kind:        actionlog.KindEngage,
		UnitID:      attackerID,
		SecondaryID: defenderID,
		FromHex:     actionlog.NoHex,
		ToHex:       actionlog.NoHex,
		Cost:        att.Energy - res.AttackerRemaining,
		Remaining:   res.AttackerRemaining,
		Outcome:     string(res.Outcome),
		NetDamage:   res.NetDamage,
		Token:       e.tokens.Generate(),
		WallNanos:   time.Now().UnixNano(),
	}

	apply := func() error {
		if err := e.field.SetEnergy(attackerID, res.AttackerRemaining); err != nil {
			return err
		}
		if destroyed {
			return e.field.RemoveUnit(defenderID)
		}
		return e.field.SetEnergy(defenderID, res.DefenderRemaining)
	}
	revert := func() {
		_ = e.field.SetEnergy(attackerID, att.Energy)
		if destroyed {
			_ = e.field.AddUnit(def)
		} else {
			_ = e.field.SetEnergy(defenderID, def.Energy)
		}
	}

	if err := e.commit(ctx, &rec, attackerID, apply, revert); err != nil {
		return EngageResult{}, err
	}

	metrics.EngagementsTotal.WithLabelValues(string(res.Outcome)).Inc()
	if destroyed {
		metrics.UnitsDestroyedTotal.Inc()
	}
	e.logger.Debug("engagement committed",
		"attacker", attackerID, "defender", defenderID,
		"outcome", res.Outcome, "net_damage", res.NetDamage,
		"attacker_remaining", res.AttackerRemaining, "seq", rec.Seq)

	return EngageResult{
		AttackerEnergy: res.AttackerRemaining,
		DefenderStatus: string(res.Outcome),
		DamageDealt:    res.DamageDealt,
		NetDamage:      res.NetDamage,
	}, nil
}

// PlaceUnit adds a unit to the field through the ingestion write path.
// Placement respects per-unit exclusivity but precedes the operation
// history: replay starts from the scenario's placements, so no MOVE/ENGAGE
// record is appended.
func (e *Engine) PlaceUnit(ctx context.Context, u field.Unit) error {
	release, err := e.locks.acquire(ctx, e.maxWait, u.ID)
	if err != nil {
		return e.reject(err)
	}
	defer release()

	if err := e.field.AddUnit(u); err != nil {
		return fmt.Errorf("place unit: %w", err)
	}
	e.logger.Debug("unit placed", "unit", u.ID, "hex", u.Location, "energy", u.Energy)
	return nil
}

// UpdateHexAttrs applies a partial attribute update to a hexagon through
// the ingestion write path. Hex identity and adjacency are never touched.
func (e *Engine) UpdateHexAttrs(ctx context.Context, id field.HexID, attrs field.HexAttrs) error {
	if err := e.field.SetHexAttrs(id, attrs); err != nil {
		return fmt.Errorf("update hex attrs: %w", err)
	}
	return nil
}

// Unit returns a snapshot copy of a unit. Lock-free: suitable for queries
// but never for gating mutations.
func (e *Engine) Unit(id string) (field.Unit, bool) {
	return e.field.Unit(id)
}

// UnitsAt returns snapshot copies of the units on a hexagon, ordered by ID.
// Lock-free: suitable for queries but never for gating mutations.
func (e *Engine) UnitsAt(id field.HexID) []field.Unit {
	return e.field.UnitsAt(id)
}

// Clock exposes the engine's logical clock position (for checkpointing).
func (e *Engine) Clock() *Clock {
	return e.clock
}

// commit applies the field mutation and appends the log record as a unit.
//
// The commit lock serializes all commits so that seq allocation, field
// mutation, and log append happen in the same order for every operation.
// If apply fails or leaves the field inconsistent, the mutation is
// reverted and INVARIANT_VIOLATION surfaced - by this point all
// preconditions passed, so failure means internal corruption. If the
// append fails, the mutation is reverted exactly and the storage error
// returned: never a mutation without its record.
func (e *Engine) commit(ctx context.Context, rec *actionlog.Record, unitID string, apply func() error, revert func()) error {
	e.commitMu <- struct{}{}
	defer func() { <-e.commitMu }()

	rec.Seq = e.clock.Next()

	if err := apply(); err != nil {
		revert()
		return e.fatal(rec, errInvariant(unitID, err))
	}
	if err := e.field.CheckInvariants(); err != nil {
		revert()
		return e.fatal(rec, errInvariant(unitID, err))
	}

	start := time.Now()
	if err := e.log.Append(ctx, *rec); err != nil {
		revert()
		return fmt.Errorf("append action %d: %w", rec.Seq, err)
	}
	metrics.LogAppendSeconds.Observe(time.Since(start).Seconds())

	if e.pub != nil {
		if err := e.pub.PublishAction(*rec); err != nil {
			// Publishing is post-commit notification, not part of the
			// transaction: the log already holds the truth.
			e.logger.Error("publish action failed", "seq", rec.Seq, "error", err)
		}
	}
	return nil
}

// reject counts a precondition failure and returns it unchanged.
func (e *Engine) reject(err error) error {
	if code := CodeOf(err); code != "" {
		metrics.OpFailuresTotal.WithLabelValues(string(code)).Inc()
	}
	return err
}

// fatal logs an invariant violation with full transaction context before
// surfacing it. These must never occur under correct operation.
func (e *Engine) fatal(rec *actionlog.Record, oe *OpError) error {
	metrics.OpFailuresTotal.WithLabelValues(string(ErrCodeInvariantViolation)).Inc()
	e.logger.Error("invariant violation, transaction aborted",
		"seq", rec.Seq,
		"kind", rec.Kind,
		"unit", rec.UnitID,
		"secondary", rec.SecondaryID,
		"from", rec.FromHex,
		"to", rec.ToHex,
		"error", oe.Message)
	return oe
}
