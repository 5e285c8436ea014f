package cli

import (
	"context"

	"github.com/warfront/hexsim/internal/actionlog"
	"github.com/warfront/hexsim/internal/field"
	"github.com/warfront/hexsim/internal/scenario"
	"github.com/warfront/hexsim/internal/sim"
)

// world bundles the live state reconstructed from a scenario file plus its
// action log: the battlefield with every logged action reapplied, the open
// log, and an engine ready to commit new operations.
type world struct {
	field  *field.Field
	log    *actionlog.Store
	engine *sim.Engine
}

// openWorld rebuilds live state: build the battlefield from the scenario,
// open the action log, and replay every record in seq order. The returned
// engine continues the log from its last seq.
func openWorld(ctx context.Context, scenarioPath, dbPath string) (*world, error) {
	sc, err := scenario.Load(scenarioPath)
	if err != nil {
		return nil, WrapExitError(ExitCommandError, "failed to load scenario", err)
	}
	f, err := sc.Build()
	if err != nil {
		return nil, WrapExitError(ExitCommandError, "failed to build battlefield", err)
	}

	log, err := actionlog.Open(dbPath)
	if err != nil {
		return nil, WrapExitError(ExitCommandError, "failed to open action log", err)
	}

	records, err := log.Scan(ctx)
	if err != nil {
		log.Close()
		return nil, WrapExitError(ExitCommandError, "failed to read action log", err)
	}
	if err := sim.Replay(f, records); err != nil {
		log.Close()
		return nil, WrapExitError(ExitCommandError, "failed to replay action log", err)
	}

	eng, err := sim.New(f, log)
	if err != nil {
		log.Close()
		return nil, WrapExitError(ExitCommandError, "failed to start engine", err)
	}

	return &world{field: f, log: log, engine: eng}, nil
}

func (w *world) Close() error {
	return w.log.Close()
}
