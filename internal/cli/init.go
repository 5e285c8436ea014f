package cli

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/warfront/hexsim/internal/actionlog"
	"github.com/warfront/hexsim/internal/scenario"
)

// InitOptions holds flags for the init command.
type InitOptions struct {
	*RootOptions
	Scenario string
	Database string
}

// InitResult holds the initialization outcome.
type InitResult struct {
	Scenario string `json:"scenario"`
	Database string `json:"database"`
	Hexes    int    `json:"hexes"`
	Units    int    `json:"units"`
	LastSeq  int64  `json:"last_seq"`
}

// NewInitCommand creates the init command.
func NewInitCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &InitOptions{RootOptions: rootOpts}

	cmd := &cobra.Command{
		Use:   "init",
		Short: "Initialize an action log for a scenario",
		Long: `Validate a scenario file, build its battlefield once to verify it, and
create (or migrate) the action log database. Running init against an
existing log is safe: the schema is applied idempotently and logged
actions are preserved.

Exit codes:
  0 - Log initialized
  2 - Command error (invalid scenario, database failure)

Examples:
  hexsim init --scenario ./battlefield.yaml --db ./actions.db`,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runInit(opts, cmd)
		},
	}

	cmd.Flags().StringVar(&opts.Scenario, "scenario", "", "path to scenario file (required)")
	_ = cmd.MarkFlagRequired("scenario")
	cmd.Flags().StringVar(&opts.Database, "db", "", "path to action log database (required)")
	_ = cmd.MarkFlagRequired("db")

	return cmd
}

func runInit(opts *InitOptions, cmd *cobra.Command) error {
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
	if _, err := sc.Build(); err != nil {
		return WrapExitError(ExitCommandError, "invalid scenario", err)
	}

	log, err := actionlog.Open(opts.Database)
	if err != nil {
		return WrapExitError(ExitCommandError, "failed to initialize action log", err)
	}
	defer log.Close()

	lastSeq, err := log.LastSeq(ctx)
	if err != nil {
		return WrapExitError(ExitCommandError, "failed to read action log", err)
	}

	result := InitResult{
		Scenario: sc.Name,
		Database: opts.Database,
		Hexes:    len(sc.Hexes),
		Units:    len(sc.Units),
		LastSeq:  lastSeq,
	}

	if opts.Format == "json" {
		return out.Success(result)
	}
	fmt.Fprintf(cmd.OutOrStdout(), "Initialized %s for scenario %q: %d hexes, %d units, last seq %d\n",
		result.Database, result.Scenario, result.Hexes, result.Units, result.LastSeq)
	return nil
}
