package main

import "github.com/spf13/cobra"

func newRegistryCmd(root *rootFlags) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "registry",
		Short: "Manage the shunt manifest registry",
		Long:  "Manage the registry of known manifests, including adding, listing, removing, refreshing, and showing manifest details.",
		Aliases: []string{
			"reg",
		},
		RunE: func(cmd *cobra.Command, args []string) error {
			return cmd.Help()
		},
	}

	cmd.AddCommand(newRegistryAddCmd(root))
	cmd.AddCommand(newRegistryListCmd(root))
	cmd.AddCommand(newRegistryRemoveCmd(root))
	cmd.AddCommand(newRegistryRefreshCmd(root))
	cmd.AddCommand(newRegistryShowCmd(root))

	return cmd
}
