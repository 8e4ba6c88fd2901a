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
	"github.com/shunt-io/shunt/internal/engine"
	"github.com/shunt-io/shunt/internal/logger"
	"github.com/shunt-io/shunt/internal/model"
	"github.com/shunt-io/shunt/internal/query"
	shunterrors "github.com/shunt-io/shunt/pkg/errors"
)

type planOptions struct {
	Manifest manifestFlags
	Output   string
	Query    string
	Verbose  bool
}

var planCmdRunner = runPlan

func newPlanCmd(root *rootFlags) *cobra.Command {
	opts := planOptions{}

	cmd := &cobra.Command{
		Use:   "plan",
		Short: "Show what apply would change without touching any device",
		Long: `Plan reconciles every resource in dry-run mode and reports the drift.
Exit codes: 0 when everything is in sync, 1 when changes are pending,
2 on a manifest error, 3 when any resource could not be assessed.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			opts.Verbose = root.verbose
			return planCmdRunner(cmd, opts)
		},
	}

	addManifestFlags(cmd, &opts.Manifest)
	cmd.Flags().StringVarP(&opts.Output, "output", "o", "table", "Output format: table or json")
	cmd.Flags().StringVar(&opts.Query, "query", "", "jq expression applied to the JSON report (implies JSON output)")

	return cmd
}

func runPlan(cmd *cobra.Command, opts planOptions) error {
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

	kinds, err := newKindRegistry(log)
	if err != nil {
		return err
	}
	if err := engine.ValidateManifestKinds(manifest, kinds); err != nil {
		return err
	}

	graph, err := engine.BuildGraph(manifest.Resources)
	if err != nil {
		return err
	}
	plan, err := engine.GeneratePlan(graph)
	if err != nil {
		return err
	}

	reconcilers, closeGateways, err := buildReconcilers(manifest, kinds, log)
	if err != nil {
		return err
	}
	defer closeGateways()

	execCtx := engine.NewExecutionContext(manifest, reconcilers, engine.ContextOptions{
		DryRun:          true,
		Verbose:         opts.Verbose,
		ContinueOnError: true,
		Parallel:        0,
		Logger:          log,
		Context:         ctx,
	})

	summary, execErr := engine.Execute(execCtx, plan)
	if summary == nil {
		return execErr
	}

	report := buildPlanReport(manifestPath, manifest, summary)

	out := cmd.OutOrStdout()
	switch {
	case q != nil:
		if err := renderQueryResult(ctx, out, q, report); err != nil {
			return err
		}
	case opts.Output == "json":
		encoder := json.NewEncoder(out)
		encoder.SetIndent("", "  ")
		if err := encoder.Encode(report); err != nil {
			return err
		}
	default:
		renderPlanTable(out, report)
	}

	osExit(summary.ExitCode())
	return nil
}

type planReportChange struct {
	Name string `json:"name"`
	Old  string `json:"old"`
	New  string `json:"new"`
}

type planReportResource struct {
	Address  string             `json:"address"`
	Status   string             `json:"status"`
	Action   string             `json:"action,omitempty"`
	Message  string             `json:"message,omitempty"`
	Error    string             `json:"error,omitempty"`
	Changes  []planReportChange `json:"changes,omitempty"`
	Duration float64            `json:"duration_seconds"`
}

type planReportSummary struct {
	Total    int     `json:"total"`
	Create   int     `json:"create"`
	Update   int     `json:"update"`
	Delete   int     `json:"delete"`
	InSync   int     `json:"in_sync"`
	Failed   int     `json:"failed"`
	Blocked  int     `json:"blocked"`
	Duration float64 `json:"duration_seconds"`
}

type planReport struct {
	Manifest  string               `json:"manifest"`
	Name      string               `json:"name"`
	RunID     string               `json:"run_id"`
	InSync    bool                 `json:"in_sync"`
	Summary   planReportSummary    `json:"summary"`
	Resources []planReportResource `json:"resources"`
}

func buildPlanReport(manifestPath string, manifest *config.Manifest, summary *model.RunSummary) planReport {
	counts := countChanges(summary)

	report := planReport{
		Manifest: manifestPath,
		Name:     manifest.Name,
		RunID:    summary.RunID,
		InSync:   summary.InSync(),
		Summary: planReportSummary{
			Total:    summary.TotalResources,
			Create:   counts.creates,
			Update:   counts.updates,
			Delete:   counts.deletes,
			InSync:   counts.unchanged,
			Failed:   counts.failed,
			Blocked:  counts.blocked,
			Duration: summary.Duration.Seconds(),
		},
		Resources: make([]planReportResource, 0, len(summary.Results)),
	}

	for _, res := range summary.Results {
		entry := planReportResource{
			Address:  res.Address.String(),
			Status:   res.Status,
			Message:  res.Message,
			Duration: res.Duration.Seconds(),
		}
		if res.Error != nil {
			entry.Error = res.Error.Error()
		}
		if res.Result != nil {
			if res.Result.Action != model.ActionNone {
				entry.Action = string(res.Result.Action)
			}
			for _, change := range res.Result.Changes {
				entry.Changes = append(entry.Changes, planReportChange{
					Name: change.Name,
					Old:  change.Old,
					New:  change.New,
				})
			}
		}
		report.Resources = append(report.Resources, entry)
	}

	sort.Slice(report.Resources, func(i, j int) bool {
		return report.Resources[i].Address < report.Resources[j].Address
	})

	return report
}

func renderPlanTable(w io.Writer, report planReport) {
	tbl := table.NewWriter()
	tbl.SetOutputMirror(w)
	tbl.SetStyle(table.StyleRounded)
	tbl.AppendHeader(table.Row{"RESOURCE", "STATUS", "ACTION", "MESSAGE"})

	for _, res := range report.Resources {
		tbl.AppendRow(table.Row{
			res.Address,
			res.Status,
			valueOrFallback(res.Action, "-"),
			truncateString(res.Message, 60),
		})
	}

	tbl.Render()

	fmt.Fprintf(w, "\nPlan: %d to create, %d to update, %d to delete, %d in sync",
		report.Summary.Create, report.Summary.Update, report.Summary.Delete, report.Summary.InSync)
	if report.Summary.Failed > 0 {
		fmt.Fprintf(w, ", %d failed", report.Summary.Failed)
	}
	if report.Summary.Blocked > 0 {
		fmt.Fprintf(w, ", %d blocked", report.Summary.Blocked)
	}
	fmt.Fprintln(w, ".")
}

func renderQueryResult(ctx context.Context, w io.Writer, q *query.Query, report any) error {
	result, err := q.Apply(ctx, report)
	if err != nil {
		return err
	}

	data, err := json.MarshalIndent(result, "", "  ")
	if err != nil {
		return err
	}
	fmt.Fprintln(w, string(data))
	return nil
}
