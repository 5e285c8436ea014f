package cli

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/warfront/hexsim/internal/actionlog"
)

// LogOptions holds flags for the log command.
type LogOptions struct {
	*RootOptions
	Database string
	Unit     string // optional, filter to one unit's history
}

// NewLogCommand creates the log command.
func NewLogCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &LogOptions{RootOptions: rootOpts}

	cmd := &cobra.Command{
		Use:   "log",
		Short: "Print the action log",
		Long: `Print committed actions in seq order, optionally filtered to the history
of a single unit (as mover, attacker, or defender).

Exit codes:
  0 - Log printed
  2 - Command error (database not found)

Examples:
  hexsim log --db ./actions.db
  hexsim log --db ./actions.db --unit att --format json`,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runLog(opts, cmd)
		},
	}

	cmd.Flags().StringVar(&opts.Database, "db", "", "path to action log database (required)")
	_ = cmd.MarkFlagRequired("db")
	cmd.Flags().StringVar(&opts.Unit, "unit", "", "show only actions involving this unit")

	return cmd
}

func runLog(opts *LogOptions, cmd *cobra.Command) error {
	ctx := context.Background()
	out := &OutputFormatter{
		Format:    opts.Format,
		Writer:    cmd.OutOrStdout(),
		ErrWriter: cmd.ErrOrStderr(),
		Verbose:   opts.Verbose,
	}

	log, err := actionlog.Open(opts.Database)
	if err != nil {
		return WrapExitError(ExitCommandError, "failed to open action log", err)
	}
	defer log.Close()

	var records []actionlog.Record
	if opts.Unit != "" {
		records, err = log.ScanUnit(ctx, opts.Unit)
	} else {
		records, err = log.Scan(ctx)
	}
	if err != nil {
		return WrapExitError(ExitCommandError, "failed to read action log", err)
	}

	if opts.Format == "json" {
		return out.Success(records)
	}

	if len(records) == 0 {
		fmt.Fprintln(cmd.OutOrStdout(), "No actions logged.")
		return nil
	}
	for _, rec := range records {
		fmt.Fprintln(cmd.OutOrStdout(), formatRecord(rec))
	}
	return nil
}

func formatRecord(rec actionlog.Record) string {
	switch rec.Kind {
	case actionlog.KindEngage:
		return fmt.Sprintf("#%d ENGAGE %s -> %s: %s, net damage %s, attacker at %s [%s]",
			rec.Seq, rec.UnitID, rec.SecondaryID, rec.Outcome,
			FormatEnergy(rec.NetDamage), FormatEnergy(rec.Remaining), rec.Token)
	default:
		return fmt.Sprintf("#%d MOVE %s %s -> %s: cost %s, %s remaining [%s]",
			rec.Seq, rec.UnitID, rec.FromHex, rec.ToHex,
			FormatEnergy(rec.Cost), FormatEnergy(rec.Remaining), rec.Token)
	}
}
