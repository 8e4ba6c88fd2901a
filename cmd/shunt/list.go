package main

import (
	"context"
	"fmt"
	"sort"

	"github.com/spf13/cobra"

	"github.com/shunt-io/shunt/internal/config"
	"github.com/shunt-io/shunt/internal/gateway"
	"github.com/shunt-io/shunt/internal/logger"
)

type listOptions struct {
	Manifest manifestFlags
	Verbose  bool
}

var listCmdRunner = runList

func newListCmd(root *rootFlags) *cobra.Command {
	opts := listOptions{}

	cmd := &cobra.Command{
		Use:   "list <device> <kind>",
		Short: "List the ids present in a kind's collection on a device",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			opts.Verbose = root.verbose
			return listCmdRunner(cmd, args[0], args[1], opts)
		},
	}

	addManifestFlags(cmd, &opts.Manifest)

	return cmd
}

func runList(cmd *cobra.Command, deviceName, kindName string, opts listOptions) error {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	level := "info"
	if opts.Verbose {
		level = "debug"
	}
	log, err := logger.New(logger.Options{Level: level, HumanReadable: true})
	if err != nil {
		return err
	}

	manifestPath, cleanupSource, err := opts.Manifest.resolve(ctx, log)
	if err != nil {
		return err
	}
	defer cleanupSource()

	manifest, err := config.ParseManifest(manifestPath)
	if err != nil {
		return err
	}

	kinds, err := newKindRegistry(log)
	if err != nil {
		return err
	}
	if _, err := kinds.Get(kindName); err != nil {
		return err
	}

	device, ok := manifest.DeviceByName(deviceName)
	if !ok {
		return fmt.Errorf("device %q not declared in manifest %s", deviceName, manifestPath)
	}

	gw, err := gatewayForDevice(device, log)
	if err != nil {
		return err
	}
	defer func() {
		if closer, ok := gw.(gateway.Closer); ok {
			_ = closer.Close()
		}
	}()

	ids, err := gw.List(ctx, kindName)
	if err != nil {
		return err
	}

	sort.Strings(ids)
	for _, id := range ids {
		fmt.Fprintln(cmd.OutOrStdout(), id)
	}
	return nil
}
