package main

import (
	"errors"
	"os"

	"github.com/spf13/cobra"

	shunterrors "github.com/shunt-io/shunt/pkg/errors"
)

// osExit is swapped out in tests that assert exit codes.
var osExit = os.Exit

type rootFlags struct {
	verbose bool
	dryRun  bool
}

func newRootCmd() *cobra.Command {
	flags := &rootFlags{}

	cmd := &cobra.Command{
		Use:           "shunt",
		Short:         "Shunt reconciles switch resources against declarative manifests",
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return cmd.Help()
		},
	}

	cmd.PersistentFlags().BoolVarP(&flags.verbose, "verbose", "v", false, "Enable verbose logging")
	cmd.PersistentFlags().BoolVar(&flags.dryRun, "dry-run", false, "Preview changes without touching any device")

	cmd.AddCommand(newApplyCmd(flags))
	cmd.AddCommand(newPlanCmd(flags))
	cmd.AddCommand(newShowCmd(flags))
	cmd.AddCommand(newListCmd(flags))
	cmd.AddCommand(newRegistryCmd(flags))
	cmd.AddCommand(newDashboardCmd(flags))
	cmd.AddCommand(newVersionCmd())

	return cmd
}

// exitCodeForError maps an error escaping a command to the process exit
// code: manifest problems exit 2, execution problems 3, everything else
// 1.
func exitCodeForError(err error) int {
	var parseErr *shunterrors.ParseError
	var validationErr *shunterrors.ValidationError
	var execErr *shunterrors.ExecutionError

	switch {
	case errors.As(err, &parseErr), errors.As(err, &validationErr):
		return 2
	case errors.As(err, &execErr):
		return 3
	default:
		return 1
	}
}
