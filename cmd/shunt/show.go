package main

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"sort"

	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/spf13/cobra"

	"github.com/shunt-io/shunt/internal/config"
	"github.com/shunt-io/shunt/internal/gateway"
	"github.com/shunt-io/shunt/internal/logger"
	"github.com/shunt-io/shunt/internal/model"
	"github.com/shunt-io/shunt/internal/query"
	"github.com/shunt-io/shunt/internal/reconcile"
	"github.com/shunt-io/shunt/pkg/diff"
	shunterrors "github.com/shunt-io/shunt/pkg/errors"
)

type showOptions struct {
	Manifest manifestFlags
	Output   string
	Query    string
	Verbose  bool
}

var showCmdRunner = runShow

func newShowCmd(root *rootFlags) *cobra.Command {
	opts := showOptions{}

	cmd := &cobra.Command{
		Use:   "show <address>",
		Short: "Show the live state of one resource",
		Long: `Show reads a single resource through its device gateway and reports the
observed attributes, together with any drift against the manifest's
declaration. The device part of the address may be omitted when the
manifest declares exactly one device.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			opts.Verbose = root.verbose
			return showCmdRunner(cmd, args[0], opts)
		},
	}

	addManifestFlags(cmd, &opts.Manifest)
	cmd.Flags().StringVarP(&opts.Output, "output", "o", "table", "Output format: table or json")
	cmd.Flags().StringVar(&opts.Query, "query", "", "jq expression applied to the JSON report (implies JSON output)")

	return cmd
}

func runShow(cmd *cobra.Command, rawAddress string, opts showOptions) error {
	if opts.Output != "table" && opts.Output != "json" {
		return shunterrors.NewValidationError("output", fmt.Sprintf("unknown format %q: want table or json", opts.Output), nil)
	}

	var q *query.Query
	if opts.Query != "" {
		compiled, err := query.Compile(opts.Query)
		if err != nil {
			return shunterrors.NewValidationError("query", err.Error(), err)
		}
		q = compiled
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	level := "info"
	if opts.Verbose {
		level = "debug"
	}
	log, err := logger.New(logger.Options{Level: level, HumanReadable: opts.Output != "json"})
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

	addr, err := resolveAddress(manifest, rawAddress)
	if err != nil {
		return err
	}

	kinds, err := newKindRegistry(log)
	if err != nil {
		return err
	}
	if _, err := kinds.Get(addr.Kind); err != nil {
		return err
	}

	device, _ := manifest.DeviceByName(addr.Device)
	gw, err := gatewayForDevice(device, log)
	if err != nil {
		return err
	}
	defer func() {
		if closer, ok := gw.(gateway.Closer); ok {
			_ = closer.Close()
		}
	}()

	rec := reconcile.New(gw, kinds, log)
	observed, err := rec.Fetch(ctx, addr.Kind, addr.ID)
	if err != nil {
		return err
	}

	report, err := buildShowReport(manifest, kinds, addr, observed)
	if err != nil {
		return err
	}

	out := cmd.OutOrStdout()
	switch {
	case q != nil:
		return renderQueryResult(ctx, out, q, report)
	case opts.Output == "json":
		encoder := json.NewEncoder(out)
		encoder.SetIndent("", "  ")
		return encoder.Encode(report)
	default:
		renderShowReport(out, report)
		return nil
	}
}

// resolveAddress expands a possibly device-relative address against the
// manifest's device list.
func resolveAddress(manifest *config.Manifest, raw string) (model.Address, error) {
	addr, err := model.ParseAddress(raw)
	if err != nil {
		return model.Address{}, err
	}

	if addr.Device == "" {
		if len(manifest.Devices) != 1 {
			return model.Address{}, fmt.Errorf("address %q must include the device: manifest declares %d devices", raw, len(manifest.Devices))
		}
		addr.Device = manifest.Devices[0].Name
	}

	if _, ok := manifest.DeviceByName(addr.Device); !ok {
		return model.Address{}, fmt.Errorf("address %q references unknown device %q", raw, addr.Device)
	}
	return addr, nil
}

type showReport struct {
	Address    string            `json:"address"`
	Exists     bool              `json:"exists"`
	Attributes map[string]string `json:"attributes,omitempty"`
	Declared   string            `json:"declared_state,omitempty"`
	Drift      string            `json:"drift,omitempty"`
}

// buildShowReport combines the live read with the manifest's
// declaration. Drift only ever covers the attributes the manifest
// asserts; device-side attributes the spec leaves unset are not drift.
func buildShowReport(manifest *config.Manifest, canon reconcile.Canonicalizer, addr model.Address, observed *model.ObservedResource) (showReport, error) {
	report := showReport{
		Address: addr.String(),
		Exists:  observed != nil,
	}
	if observed != nil {
		report.Attributes = observed.Attributes
	}

	resource, declared := config.ResourceMap(manifest.Resources)[addr.String()]
	if !declared {
		return report, nil
	}

	spec := resource.Spec()
	report.Declared = string(spec.State)

	switch {
	case spec.State == model.StateAbsent && observed != nil:
		report.Drift = fmt.Sprintf("declared absent but present on device as %s %s", addr.Kind, addr.ID)
	case spec.State == model.StatePresent && observed == nil:
		report.Drift = "declared present but missing from device"
	case spec.State == model.StatePresent:
		desired, err := canon.CanonicalAttributes(addr.Kind, spec.AssertedAttributes())
		if err != nil {
			return showReport{}, err
		}

		assertedObserved := map[string]string{}
		for name := range desired {
			if value, ok := observed.Attributes[name]; ok {
				assertedObserved[name] = value
			}
		}

		report.Drift = diff.Attributes(assertedObserved, desired, "observed", "desired")
	}

	return report, nil
}

func renderShowReport(w io.Writer, report showReport) {
	fmt.Fprintf(w, "Resource: %s\n", report.Address)
	if report.Exists {
		fmt.Fprintln(w, "State:    present on device")
	} else {
		fmt.Fprintln(w, "State:    not present on device")
	}
	if report.Declared != "" {
		fmt.Fprintf(w, "Declared: %s\n", report.Declared)
	}

	if len(report.Attributes) > 0 {
		names := make([]string, 0, len(report.Attributes))
		for name := range report.Attributes {
			names = append(names, name)
		}
		sort.Strings(names)

		fmt.Fprintln(w)
		tbl := table.NewWriter()
		tbl.SetOutputMirror(w)
		tbl.SetStyle(table.StyleRounded)
		tbl.AppendHeader(table.Row{"ATTRIBUTE", "VALUE"})
		for _, name := range names {
			tbl.AppendRow(table.Row{name, report.Attributes[name]})
		}
		tbl.Render()
	}

	if report.Drift != "" {
		fmt.Fprintln(w, "\nDrift detected:")
		fmt.Fprint(w, report.Drift)
		if report.Drift[len(report.Drift)-1] != '\n' {
			fmt.Fprintln(w)
		}
	}
}
