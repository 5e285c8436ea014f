package cli

import (
	"context"
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/warfront/hexsim/internal/field"
	"github.com/warfront/hexsim/internal/sim"
)

// MoveOptions holds flags for the move command.
type MoveOptions struct {
	*RootOptions
	Scenario string
	Database string
	Unit     string
	From     string
	To       string
}

// MoveOutput is the move command's success payload.
type MoveOutput struct {
	Unit      string `json:"unit"`
	From      string `json:"from"`
	To        string `json:"to"`
	Remaining int64  `json:"remaining_energy"`
}

// NewMoveCommand creates the move command.
func NewMoveCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &MoveOptions{RootOptions: rootOpts}

	cmd := &cobra.Command{
		Use:   "move",
		Short: "Move a unit across an adjacency edge",
		Long: `Relocate a unit from one hexagon to an adjacent one, deducting the
traversal cost from its energy and appending a MOVE record to the log.

Exit codes:
  0 - Move committed
  1 - Move rejected (unknown unit, no edge, insufficient energy, contention)
  2 - Command error (bad paths, database failure)

Examples:
  hexsim move --scenario ./battlefield.yaml --db ./actions.db --unit u1 --from 891ec92a987ffff --to 891ec92a98fffff`,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runMove(opts, cmd)
		},
	}

	cmd.Flags().StringVar(&opts.Scenario, "scenario", "", "path to scenario file (required)")
	_ = cmd.MarkFlagRequired("scenario")
	cmd.Flags().StringVar(&opts.Database, "db", "", "path to action log database (required)")
	_ = cmd.MarkFlagRequired("db")
	cmd.Flags().StringVar(&opts.Unit, "unit", "", "unit to move (required)")
	_ = cmd.MarkFlagRequired("unit")
	cmd.Flags().StringVar(&opts.From, "from", "", "source hex (required)")
	_ = cmd.MarkFlagRequired("from")
	cmd.Flags().StringVar(&opts.To, "to", "", "destination hex (required)")
	_ = cmd.MarkFlagRequired("to")

	return cmd
}

func runMove(opts *MoveOptions, cmd *cobra.Command) error {
	ctx := context.Background()
	out := &OutputFormatter{
		Format:    opts.Format,
		Writer:    cmd.OutOrStdout(),
		ErrWriter: cmd.ErrOrStderr(),
		Verbose:   opts.Verbose,
	}

	w, err := openWorld(ctx, opts.Scenario, opts.Database)
	if err != nil {
		return err
	}
	defer w.Close()

	res, err := w.engine.Move(ctx, opts.Unit, field.HexID(opts.From), field.HexID(opts.To))
	if err != nil {
		return rejectOp(out, err)
	}

	if opts.Format == "json" {
		return out.Success(MoveOutput{
			Unit:      opts.Unit,
			From:      opts.From,
			To:        opts.To,
			Remaining: res.Remaining,
		})
	}
	fmt.Fprintf(cmd.OutOrStdout(), "Moved %s from %s to %s, %s remaining\n",
		opts.Unit, opts.From, opts.To, FormatEnergy(res.Remaining))
	return nil
}

// rejectOp renders a typed simulation error and maps it to exit code 1.
func rejectOp(out *OutputFormatter, err error) error {
	code := string(sim.CodeOf(err))
	msg := err.Error()
	var details interface{}
	var opErr *sim.OpError
	if errors.As(err, &opErr) {
		msg = opErr.Message
		if len(opErr.Details) > 0 {
			details = opErr.Details
		}
	}
	if outErr := out.Error(code, msg, details); outErr != nil {
		return outErr
	}
	return WrapExitError(ExitFailure, "operation rejected", err)
}
