package cli

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"
)

// EngageOptions holds flags for the engage command.
type EngageOptions struct {
	*RootOptions
	Scenario string
	Database string
	Attacker string
	Defender string
}

// EngageOutput is the engage command's success payload.
type EngageOutput struct {
	Attacker       string `json:"attacker"`
	Defender       string `json:"defender"`
	AttackerEnergy int64  `json:"attacker_energy"`
	DefenderStatus string `json:"defender_status"`
	NetDamage      int64  `json:"net_damage"`
}

// NewEngageCommand creates the engage command.
func NewEngageCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &EngageOptions{RootOptions: rootOpts}

	cmd := &cobra.Command{
		Use:   "engage",
		Short: "Engage a colocated enemy unit",
		Long: `Commit an engagement between two units sharing a hexagon. The attacker
spends 70% of its energy as attack output; the defender absorbs net damage
scaled down by its defense rating and is destroyed when its energy reaches
zero. An ENGAGE record is appended to the log.

Exit codes:
  0 - Engagement committed
  1 - Engagement rejected (unknown unit, not colocated, contention)
  2 - Command error (bad paths, database failure)

Examples:
  hexsim engage --scenario ./battlefield.yaml --db ./actions.db --attacker att --defender def`,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runEngage(opts, cmd)
		},
	}

	cmd.Flags().StringVar(&opts.Scenario, "scenario", "", "path to scenario file (required)")
	_ = cmd.MarkFlagRequired("scenario")
	cmd.Flags().StringVar(&opts.Database, "db", "", "path to action log database (required)")
	_ = cmd.MarkFlagRequired("db")
	cmd.Flags().StringVar(&opts.Attacker, "attacker", "", "attacking unit (required)")
	_ = cmd.MarkFlagRequired("attacker")
	cmd.Flags().StringVar(&opts.Defender, "defender", "", "defending unit (required)")
	_ = cmd.MarkFlagRequired("defender")

	return cmd
}

func runEngage(opts *EngageOptions, cmd *cobra.Command) error {
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

	res, err := w.engine.Engage(ctx, opts.Attacker, opts.Defender)
	if err != nil {
		return rejectOp(out, err)
	}

	if opts.Format == "json" {
		return out.Success(EngageOutput{
			Attacker:       opts.Attacker,
			Defender:       opts.Defender,
			AttackerEnergy: res.AttackerEnergy,
			DefenderStatus: res.DefenderStatus,
			NetDamage:      res.NetDamage,
		})
	}
	fmt.Fprintf(cmd.OutOrStdout(), "%s engaged %s: %s (%s net damage), attacker at %s\n",
		opts.Attacker, opts.Defender, res.DefenderStatus,
		FormatEnergy(res.NetDamage), FormatEnergy(res.AttackerEnergy))
	return nil
}
