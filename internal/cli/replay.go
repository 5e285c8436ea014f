package cli

import (
	"context"
	"fmt"
	"reflect"

	"github.com/spf13/cobra"

	"github.com/warfront/hexsim/internal/actionlog"
	"github.com/warfront/hexsim/internal/field"
	"github.com/warfront/hexsim/internal/scenario"
	"github.com/warfront/hexsim/internal/sim"
)

// ReplayOptions holds flags for the replay command.
type ReplayOptions struct {
	*RootOptions
	Scenario string
	Database string
}

// ReplayResult holds the replay verification outcome.
type ReplayResult struct {
	Records       int  `json:"records"`
	Moves         int  `json:"moves"`
	Engagements   int  `json:"engagements"`
	Destroyed     int  `json:"destroyed"`
	Survivors     int  `json:"survivors"`
	Deterministic bool `json:"deterministic"`
}

// NewReplayCommand creates the replay command.
func NewReplayCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &ReplayOptions{RootOptions: rootOpts}

	cmd := &cobra.Command{
		Use:   "replay",
		Short: "Replay the action log and verify determinism",
		Long: `Rebuild the battlefield from the scenario, reapply every logged action in
seq order, and verify the reconstruction is deterministic by replaying a
second time and comparing final unit states.

Exit codes:
  0 - Replay succeeded and is deterministic
  1 - Replay diverged between passes
  2 - Command error (bad paths, corrupt log)

Examples:
  hexsim replay --scenario ./battlefield.yaml --db ./actions.db
  hexsim replay --scenario ./battlefield.yaml --db ./actions.db --format json`,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runReplay(opts, cmd)
		},
	}

	cmd.Flags().StringVar(&opts.Scenario, "scenario", "", "path to scenario file (required)")
	_ = cmd.MarkFlagRequired("scenario")
	cmd.Flags().StringVar(&opts.Database, "db", "", "path to action log database (required)")
	_ = cmd.MarkFlagRequired("db")

	return cmd
}

func runReplay(opts *ReplayOptions, cmd *cobra.Command) error {
	ctx := context.Background()
	out := &OutputFormatter{
		Format:    opts.Format,
		Writer:    cmd.OutOrStdout(),
		ErrWriter: cmd.ErrOrStderr(),
		Verbose:   opts.Verbose,
	}

	sc, err := scenario.Load(opts.Scenario)
	if err != nil {
		return WrapExitError(ExitCommandError, "failed to load scenario", err)
	}

	log, err := actionlog.Open(opts.Database)
	if err != nil {
		return WrapExitError(ExitCommandError, "failed to open action log", err)
	}
	defer log.Close()

	records, err := log.Scan(ctx)
	if err != nil {
		return WrapExitError(ExitCommandError, "failed to read action log", err)
	}

	first, err := replayPass(sc, records)
	if err != nil {
		return WrapExitError(ExitCommandError, "replay failed", err)
	}
	second, err := replayPass(sc, records)
	if err != nil {
		return WrapExitError(ExitCommandError, "replay failed on second pass", err)
	}

	result := ReplayResult{
		Records:       len(records),
		Survivors:     len(first),
		Deterministic: reflect.DeepEqual(first, second),
	}
	destroyed := make(map[string]struct{})
	for _, rec := range records {
		switch rec.Kind {
		case actionlog.KindMove:
			result.Moves++
		case actionlog.KindEngage:
			result.Engagements++
			if rec.Outcome == string(sim.OutcomeDestroyed) {
				destroyed[rec.SecondaryID] = struct{}{}
			}
		}
	}
	result.Destroyed = len(destroyed)

	out.VerboseLog("replayed %d records over %d hexes", result.Records, len(sc.Hexes))

	if opts.Format == "json" {
		if err := out.Success(result); err != nil {
			return err
		}
	} else {
		fmt.Fprintf(cmd.OutOrStdout(),
			"Replayed %d records: %d moves, %d engagements, %d destroyed, %d survivors\n",
			result.Records, result.Moves, result.Engagements, result.Destroyed, result.Survivors)
	}

	if !result.Deterministic {
		return NewExitError(ExitFailure, "replay diverged between passes")
	}
	return nil
}

// replayPass rebuilds the battlefield and reapplies the log, returning the
// final unit set keyed by ID.
func replayPass(sc *scenario.Scenario, records []actionlog.Record) (map[string]field.Unit, error) {
	f, err := sc.Build()
	if err != nil {
		return nil, err
	}
	if err := sim.Replay(f, records); err != nil {
		return nil, err
	}
	units := make(map[string]field.Unit)
	for _, u := range f.Units() {
		units[u.ID] = u
	}
	return units, nil
}
