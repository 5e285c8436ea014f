package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/warfront/hexsim/internal/scenario"
)

// ValidateOptions holds flags for the validate command.
type ValidateOptions struct {
	*RootOptions
	Scenario string
}

// ValidateResult holds the validation outcome.
type ValidateResult struct {
	Scenario string `json:"scenario"`
	Hexes    int    `json:"hexes"`
	Edges    int    `json:"edges"`
	Units    int    `json:"units"`
	Valid    bool   `json:"valid"`
}

// NewValidateCommand creates the validate command.
func NewValidateCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &ValidateOptions{RootOptions: rootOpts}

	cmd := &cobra.Command{
		Use:   "validate",
		Short: "Validate a scenario file",
		Long: `Parse a battlefield scenario file and check it for internal consistency:
duplicate hexes, dangling edges, colocated unit IDs, negative energies.

Exit codes:
  0 - Scenario is valid
  1 - Scenario is invalid
  2 - Command error (file not found, parse failure)

Examples:
  hexsim validate --scenario ./battlefield.yaml
  hexsim validate --scenario ./battlefield.yaml --format json`,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runValidate(opts, cmd)
		},
	}

	cmd.Flags().StringVar(&opts.Scenario, "scenario", "", "path to scenario file (required)")
	_ = cmd.MarkFlagRequired("scenario")

	return cmd
}

func runValidate(opts *ValidateOptions, cmd *cobra.Command) error {
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

	if err := sc.Validate(); err != nil {
		if outErr := out.Error("INVALID_SCENARIO", err.Error(), nil); outErr != nil {
			return outErr
		}
		return NewExitError(ExitFailure, "scenario is invalid")
	}

	result := ValidateResult{
		Scenario: sc.Name,
		Hexes:    len(sc.Hexes),
		Edges:    len(sc.Edges),
		Units:    len(sc.Units),
		Valid:    true,
	}

	if opts.Format == "json" {
		return out.Success(result)
	}
	fmt.Fprintf(cmd.OutOrStdout(), "Scenario %q is valid: %d hexes, %d edges, %d units\n",
		result.Scenario, result.Hexes, result.Edges, result.Units)
	return nil
}
