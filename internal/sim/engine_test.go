package sim

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/warfront/hexsim/internal/actionlog"
	"github.com/warfront/hexsim/internal/field"
)

func defenseOf(v float64) *float64 { return &v }

// testEngine builds a three-hex battlefield with the h1-h2 edge weighted
// 300, unit u1 (energy 1000) on h1, and attacker/defender pairs on h3.
func testEngine(t *testing.T, opts ...Option) (*Engine, *field.Field, *actionlog.Store) {
	t.Helper()

	f := field.New()
	for _, id := range []field.HexID{"h1", "h2", "h3"} {
		require.NoError(t, f.AddHex(field.Hex{ID: id}))
	}
	require.NoError(t, f.Connect("h1", "h2", 300))
	require.NoError(t, f.Connect("h2", "h3", 150))

	require.NoError(t, f.AddUnit(field.Unit{ID: "u1", Energy: 1000, Location: "h1"}))
	require.NoError(t, f.AddUnit(field.Unit{ID: "att", Energy: 1000, Location: "h3"}))
	require.NoError(t, f.AddUnit(field.Unit{ID: "def", Energy: 500, Defense: defenseOf(2.0), Location: "h3"}))

	log, err := actionlog.OpenMemory()
	require.NoError(t, err)
	t.Cleanup(func() { log.Close() })

	eng, err := New(f, log, opts...)
	require.NoError(t, err)
	return eng, f, log
}

func logLen(t *testing.T, log *actionlog.Store) int {
	t.Helper()
	n, err := log.Len(context.Background())
	require.NoError(t, err)
	return n
}

func TestMove_Basic(t *testing.T) {
	eng, f, log := testEngine(t)

	res, err := eng.Move(context.Background(), "u1", "h1", "h2")
	require.NoError(t, err)
	assert.Equal(t, int64(700), res.Remaining)

	u, ok := f.Unit("u1")
	require.True(t, ok)
	assert.Equal(t, field.HexID("h2"), u.Location)
	assert.Equal(t, int64(700), u.Energy)

	records, err := log.Scan(context.Background())
	require.NoError(t, err)
	require.Len(t, records, 1)
	rec := records[0]
	assert.Equal(t, int64(1), rec.Seq)
	assert.Equal(t, actionlog.KindMove, rec.Kind)
	assert.Equal(t, "u1", rec.UnitID)
	assert.Equal(t, "h1", rec.FromHex)
	assert.Equal(t, "h2", rec.ToHex)
	assert.Equal(t, int64(300), rec.Cost)
	assert.Equal(t, int64(700), rec.Remaining)
	assert.Equal(t, string(OutcomeMoved), rec.Outcome)
}

func TestMove_EnergyConservation(t *testing.T) {
	eng, f, _ := testEngine(t)
	ctx := context.Background()

	before, _ := f.Unit("u1")
	res, err := eng.Move(ctx, "u1", "h1", "h2")
	require.NoError(t, err)
	assert.Equal(t, before.Energy-300, res.Remaining)

	res, err = eng.Move(ctx, "u1", "h2", "h3")
	require.NoError(t, err)
	assert.Equal(t, before.Energy-300-150, res.Remaining)
}

func TestMove_ExactCostLeavesZero(t *testing.T) {
	eng, f, _ := testEngine(t)
	require.NoError(t, f.SetEnergy("u1", 300))

	res, err := eng.Move(context.Background(), "u1", "h1", "h2")
	require.NoError(t, err, "energy == cost is a legal move")
	assert.Equal(t, int64(0), res.Remaining)
}

func TestMove_InsufficientEnergyIdempotentRejection(t *testing.T) {
	eng, f, log := testEngine(t)
	require.NoError(t, f.SetEnergy("u1", 299))

	_, err := eng.Move(context.Background(), "u1", "h1", "h2")
	require.Error(t, err)
	assert.Equal(t, ErrCodeInsufficientEnergy, CodeOf(err))

	// No state change, no log entry.
	u, _ := f.Unit("u1")
	assert.Equal(t, field.HexID("h1"), u.Location)
	assert.Equal(t, int64(299), u.Energy)
	assert.Equal(t, 0, logLen(t, log))
}

func TestMove_NoSuchEdge(t *testing.T) {
	eng, _, log := testEngine(t)

	_, err := eng.Move(context.Background(), "u1", "h1", "h3")
	assert.Equal(t, ErrCodeNoSuchEdge, CodeOf(err))
	assert.Equal(t, 0, logLen(t, log))
}

func TestMove_UnitNotFound(t *testing.T) {
	eng, _, _ := testEngine(t)

	_, err := eng.Move(context.Background(), "ghost", "h1", "h2")
	assert.Equal(t, ErrCodeUnitNotFound, CodeOf(err))
}

func TestMove_WrongSourceHex(t *testing.T) {
	eng, _, log := testEngine(t)

	_, err := eng.Move(context.Background(), "u1", "h2", "h3")
	assert.Equal(t, ErrCodeUnitNotAtHex, CodeOf(err))
	assert.Equal(t, 0, logLen(t, log))
}

func TestMove_CustomCostModel(t *testing.T) {
	eng, _, _ := testEngine(t, WithCostModel(UniformCost(1)))

	res, err := eng.Move(context.Background(), "u1", "h1", "h2")
	require.NoError(t, err)
	assert.Equal(t, int64(999), res.Remaining)
}

func TestEngage_Damaged(t *testing.T) {
	eng, f, log := testEngine(t)

	res, err := eng.Engage(context.Background(), "att", "def")
	require.NoError(t, err)

	assert.Equal(t, int64(700), res.DamageDealt)
	assert.Equal(t, int64(350), res.NetDamage)
	assert.Equal(t, int64(300), res.AttackerEnergy)
	assert.Equal(t, string(OutcomeDamaged), res.DefenderStatus)

	att, _ := f.Unit("att")
	def, _ := f.Unit("def")
	assert.Equal(t, int64(300), att.Energy)
	assert.Equal(t, int64(150), def.Energy)

	records, err := log.Scan(context.Background())
	require.NoError(t, err)
	require.Len(t, records, 1)
	rec := records[0]
	assert.Equal(t, actionlog.KindEngage, rec.Kind)
	assert.Equal(t, "att", rec.UnitID)
	assert.Equal(t, "def", rec.SecondaryID)
	assert.Equal(t, actionlog.NoHex, rec.FromHex)
	assert.Equal(t, actionlog.NoHex, rec.ToHex)
	assert.Equal(t, int64(700), rec.Cost)
	assert.Equal(t, int64(300), rec.Remaining)
	assert.Equal(t, int64(350), rec.NetDamage)
}

func TestEngage_Destroyed(t *testing.T) {
	eng, f, _ := testEngine(t)
	require.NoError(t, f.SetEnergy("def", 300))

	res, err := eng.Engage(context.Background(), "att", "def")
	require.NoError(t, err)
	assert.Equal(t, string(OutcomeDestroyed), res.DefenderStatus)

	// The defender node and its location edge are gone.
	_, ok := f.Unit("def")
	assert.False(t, ok, "destroyed unit must not be queryable")
	for _, u := range f.UnitsAt("h3") {
		assert.NotEqual(t, "def", u.ID)
	}

	// Any later reference to the destroyed ID yields UNIT_NOT_FOUND.
	_, err = eng.Engage(context.Background(), "att", "def")
	assert.Equal(t, ErrCodeUnitNotFound, CodeOf(err))
	_, err = eng.Move(context.Background(), "def", "h3", "h2")
	assert.Equal(t, ErrCodeUnitNotFound, CodeOf(err))
}

func TestEngage_NotColocated(t *testing.T) {
	eng, _, log := testEngine(t)

	// u1 is on h1, def on h3.
	_, err := eng.Engage(context.Background(), "u1", "def")
	assert.Equal(t, ErrCodeNotColocated, CodeOf(err))
	assert.Equal(t, 0, logLen(t, log))
}

func TestEngage_SelfRejected(t *testing.T) {
	eng, _, _ := testEngine(t)

	_, err := eng.Engage(context.Background(), "att", "att")
	assert.Equal(t, ErrCodeNotColocated, CodeOf(err))
}

func TestEngage_ZeroEnergyAttacker(t *testing.T) {
	eng, f, _ := testEngine(t)
	require.NoError(t, f.SetEnergy("att", 0))

	res, err := eng.Engage(context.Background(), "att", "def")
	require.NoError(t, err, "engagement does not gate on attacker energy")
	assert.Equal(t, int64(0), res.AttackerEnergy)
	assert.Equal(t, int64(0), res.NetDamage)

	def, _ := f.Unit("def")
	assert.Equal(t, int64(500), def.Energy)
}

func TestSingleLocationInvariant(t *testing.T) {
	eng, f, _ := testEngine(t)
	ctx := context.Background()

	_, err := eng.Move(ctx, "u1", "h1", "h2")
	require.NoError(t, err)
	_, err = eng.Engage(ctx, "att", "def")
	require.NoError(t, err)

	require.NoError(t, f.CheckInvariants())
	for _, u := range f.Units() {
		hosts := 0
		for _, hex := range []field.HexID{"h1", "h2", "h3"} {
			for _, at := range f.UnitsAt(hex) {
				if at.ID == u.ID {
					hosts++
				}
			}
		}
		assert.Equal(t, 1, hosts, "unit %s must be on exactly one hex", u.ID)
	}
}

func TestLogOrderMatchesCommitOrder(t *testing.T) {
	eng, _, log := testEngine(t)
	ctx := context.Background()

	_, err := eng.Move(ctx, "u1", "h1", "h2")
	require.NoError(t, err)
	_, err = eng.Engage(ctx, "att", "def")
	require.NoError(t, err)
	_, err = eng.Move(ctx, "u1", "h2", "h3")
	require.NoError(t, err)

	records, err := log.Scan(ctx)
	require.NoError(t, err)
	require.Len(t, records, 3)
	for i, rec := range records {
		assert.Equal(t, int64(i+1), rec.Seq)
	}
	assert.Equal(t, actionlog.KindMove, records[0].Kind)
	assert.Equal(t, actionlog.KindEngage, records[1].Kind)
	assert.Equal(t, actionlog.KindMove, records[2].Kind)
}

func TestConcurrentEngagementsSerialize(t *testing.T) {
	// Two concurrent engagements against the same defender: exactly one
	// observes the pre-damage energy, the other the post-first state. The
	// final energy equals sequential application in some order, never two
	// independent discounts from the same starting value.
	f := field.New()
	require.NoError(t, f.AddHex(field.Hex{ID: "h1"}))
	require.NoError(t, f.AddUnit(field.Unit{ID: "a1", Energy: 1000, Location: "h1"}))
	require.NoError(t, f.AddUnit(field.Unit{ID: "a2", Energy: 400, Location: "h1"}))
	require.NoError(t, f.AddUnit(field.Unit{ID: "def", Energy: 5000, Location: "h1"}))

	log, err := actionlog.OpenMemory()
	require.NoError(t, err)
	defer log.Close()

	eng, err := New(f, log)
	require.NoError(t, err)

	ctx := context.Background()
	var wg sync.WaitGroup
	wg.Add(2)
	go func() {
		defer wg.Done()
		_, err := eng.Engage(ctx, "a1", "def")
		assert.NoError(t, err)
	}()
	go func() {
		defer wg.Done()
		_, err := eng.Engage(ctx, "a2", "def")
		assert.NoError(t, err)
	}()
	wg.Wait()

	// Both orders deal 700 + 280 = 980 net damage in total here, but the
	// point is the serialized total, not summed independent reads.
	def, ok := f.Unit("def")
	require.True(t, ok)
	assert.Equal(t, int64(5000-700-280), def.Energy)

	records, err := log.Scan(ctx)
	require.NoError(t, err)
	require.Len(t, records, 2)
	assert.Less(t, records[0].Seq, records[1].Seq)
}

func TestConcurrentMoveVsEngage(t *testing.T) {
	// A move racing an engagement on the same unit: both must commit (or
	// one reject), never interleave. Afterwards the invariants hold and
	// the log describes a serial history.
	eng, f, log := testEngine(t)
	ctx := context.Background()

	var wg sync.WaitGroup
	wg.Add(2)
	go func() {
		defer wg.Done()
		_, _ = eng.Engage(ctx, "att", "def")
	}()
	go func() {
		defer wg.Done()
		// def tries to leave h3; legal only before it is engaged, and
		// there is no h3-h1 edge anyway, so this must cleanly reject.
		_, _ = eng.Move(ctx, "def", "h3", "h1")
	}()
	wg.Wait()

	require.NoError(t, f.CheckInvariants())
	records, err := log.Scan(ctx)
	require.NoError(t, err)
	for i := 1; i < len(records); i++ {
		assert.Less(t, records[i-1].Seq, records[i].Seq)
	}
}

func TestContendedSurfacesToCaller(t *testing.T) {
	eng, _, _ := testEngine(t, WithMaxWait(20*time.Millisecond))

	// Hold u1's lock directly so the engine times out.
	release, err := eng.locks.acquire(context.Background(), time.Second, "u1")
	require.NoError(t, err)
	defer release()

	_, err = eng.Move(context.Background(), "u1", "h1", "h2")
	assert.Equal(t, ErrCodeContended, CodeOf(err))
	assert.True(t, IsRetryable(err))
}

func TestPlaceUnit(t *testing.T) {
	eng, f, log := testEngine(t)
	ctx := context.Background()

	err := eng.PlaceUnit(ctx, field.Unit{ID: "reinforcement", Energy: 800, Location: "h2"})
	require.NoError(t, err)

	u, ok := f.Unit("reinforcement")
	require.True(t, ok)
	assert.Equal(t, field.HexID("h2"), u.Location)

	// Placement is a separate write path: it appends no action record.
	assert.Equal(t, 0, logLen(t, log))

	// Existing IDs cannot be re-placed.
	err = eng.PlaceUnit(ctx, field.Unit{ID: "u1", Energy: 1, Location: "h2"})
	assert.Error(t, err)
}

func TestClockResumesFromExistingLog(t *testing.T) {
	eng, f, log := testEngine(t)
	ctx := context.Background()

	_, err := eng.Move(ctx, "u1", "h1", "h2")
	require.NoError(t, err)

	// A second engine over the same log continues the sequence.
	eng2, err := New(f, log)
	require.NoError(t, err)
	_, err = eng2.Move(ctx, "u1", "h2", "h3")
	require.NoError(t, err)

	records, err := log.Scan(ctx)
	require.NoError(t, err)
	require.Len(t, records, 2)
	assert.Equal(t, int64(1), records[0].Seq)
	assert.Equal(t, int64(2), records[1].Seq)
}

type recordingPublisher struct {
	mu   sync.Mutex
	recs []actionlog.Record
}

func (p *recordingPublisher) PublishAction(rec actionlog.Record) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.recs = append(p.recs, rec)
	return nil
}

func TestPublisherReceivesCommittedActions(t *testing.T) {
	pub := &recordingPublisher{}
	eng, _, _ := testEngine(t, WithPublisher(pub))
	ctx := context.Background()

	_, err := eng.Move(ctx, "u1", "h1", "h2")
	require.NoError(t, err)
	_, err = eng.Move(ctx, "u1", "h1", "h2") // rejected: wrong source hex
	require.Error(t, err)

	pub.mu.Lock()
	defer pub.mu.Unlock()
	require.Len(t, pub.recs, 1, "only committed operations are published")
	assert.Equal(t, int64(1), pub.recs[0].Seq)
}
