package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"sort"
	"strings"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/huh"
	"github.com/spf13/cobra"
	"golang.org/x/term"

	"github.com/shunt-io/shunt/internal/config"
	"github.com/shunt-io/shunt/internal/engine"
	"github.com/shunt-io/shunt/internal/logger"
	"github.com/shunt-io/shunt/internal/model"
	"github.com/shunt-io/shunt/internal/reconcile"
	"github.com/shunt-io/shunt/internal/tui"
)

type applyOptions struct {
	Manifest       manifestFlags
	AutoApprove    bool
	Workers        int
	DryRun         bool
	Verbose        bool
	NonInteractive bool
}

var applyCmdRunner = runApply

func newApplyCmd(root *rootFlags) *cobra.Command {
	opts := applyOptions{}

	cmd := &cobra.Command{
		Use:   "apply",
		Short: "Reconcile devices to the manifest's desired state",
		Long: `Apply assesses every resource with a dry-run pass first, shows the
pending changes, and reconciles them after confirmation. Deletes are
listed prominently; pass --auto-approve to skip the prompt.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			opts.DryRun = root.dryRun
			opts.Verbose = root.verbose
			opts.NonInteractive = !term.IsTerminal(int(os.Stdout.Fd()))

			return applyCmdRunner(cmd, opts)
		},
	}

	addManifestFlags(cmd, &opts.Manifest)
	cmd.Flags().BoolVar(&opts.AutoApprove, "auto-approve", false, "Apply without the confirmation prompt")
	cmd.Flags().IntVar(&opts.Workers, "workers", 0, "Maximum devices reconciling in parallel (defaults to the manifest setting)")

	return cmd
}

func runApply(cmd *cobra.Command, opts applyOptions) error {
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

	out := cmd.OutOrStdout()

	planSummary, err := assessPlan(ctx, manifest, reconcilers, plan, opts, log)
	if err != nil {
		return err
	}

	if opts.DryRun {
		renderPendingChanges(out, planSummary)
		if planSummary.HasFailures() {
			osExit(1)
		}
		return nil
	}

	if planSummary.HasFailures() {
		renderPendingChanges(out, planSummary)
		fmt.Fprintln(out, "Cannot apply: some resources could not be assessed.")
		osExit(1)
		return nil
	}

	if planSummary.InSync() {
		fmt.Fprintf(out, "Already in sync: %d resources match their desired state.\n", planSummary.TotalResources)
		return nil
	}

	renderPendingChanges(out, planSummary)

	if !opts.AutoApprove {
		confirmed, err := confirmApply(cmd, planSummary)
		if err != nil {
			return err
		}
		if !confirmed {
			fmt.Fprintln(out, "Cancelled.")
			return nil
		}
	}

	summary, err := runExecution(ctx, cancel, cmd, manifest, reconcilers, plan, opts, log)
	if err != nil {
		return err
	}

	if summary.HasFailures() {
		osExit(1)
	}
	return nil
}

// assessPlan runs a dry-run pass over every resource so apply knows
// exactly what would change. Failures do not abort the pass; they show
// up in the summary.
func assessPlan(ctx context.Context, manifest *config.Manifest, reconcilers map[string]*reconcile.Reconciler, plan *engine.ExecutionPlan, opts applyOptions, log *logger.Logger) (*model.RunSummary, error) {
	execCtx := engine.NewExecutionContext(manifest, reconcilers, engine.ContextOptions{
		DryRun:          true,
		Verbose:         opts.Verbose,
		ContinueOnError: true,
		Parallel:        opts.Workers,
		Logger:          log,
		Context:         ctx,
	})

	summary, err := engine.Execute(execCtx, plan)
	if summary == nil {
		return nil, err
	}
	return summary, nil
}

// runExecution performs the mutating pass: behind the progress TUI when
// stdout is a terminal, or plainly with a static report otherwise.
func runExecution(ctx context.Context, cancel context.CancelFunc, cmd *cobra.Command, manifest *config.Manifest, reconcilers map[string]*reconcile.Reconciler, plan *engine.ExecutionPlan, opts applyOptions, log *logger.Logger) (*model.RunSummary, error) {
	modelState := tui.NewModel(manifest, plan, opts.NonInteractive)

	if opts.NonInteractive {
		execCtx := engine.NewExecutionContext(manifest, reconcilers, engine.ContextOptions{
			Verbose:  opts.Verbose,
			Parallel: opts.Workers,
			Logger:   log,
			Context:  ctx,
		})
		summary, err := engine.Execute(execCtx, plan)
		if summary == nil {
			return nil, err
		}
		feedModel(&modelState, summary)
		fmt.Fprintln(cmd.OutOrStdout(), modelState.View())
		return summary, nil
	}

	program := tea.NewProgram(modelState)

	type outcome struct {
		summary *model.RunSummary
		err     error
	}
	done := make(chan outcome, 1)

	execCtx := engine.NewExecutionContext(manifest, reconcilers, engine.ContextOptions{
		Verbose:  opts.Verbose,
		Parallel: opts.Workers,
		Events:   tui.NewProgramSink(program),
		Logger:   log,
		Context:  ctx,
	})

	go func() {
		summary, err := engine.Execute(execCtx, plan)
		done <- outcome{summary: summary, err: err}
	}()

	final, programErr := program.Run()
	if programErr != nil {
		cancel()
		<-done
		return nil, programErr
	}

	if m, ok := final.(tui.Model); ok && m.IsCancelled() {
		// Ctrl-c: stop the engine and let it record the untouched
		// remainder as blocked.
		cancel()
	}

	result := <-done
	if result.summary == nil {
		return nil, result.err
	}
	return result.summary, nil
}

// feedModel replays a finished run into the model so the static view
// can be rendered without a live program.
func feedModel(state *tui.Model, summary *model.RunSummary) {
	for _, res := range summary.Results {
		dispatchModel(state, tui.ResourceCompleteMsg{Result: res})
	}
	dispatchModel(state, tui.RunCompleteMsg{Summary: *summary})
}

func dispatchModel(state *tui.Model, msg tea.Msg) {
	updated, _ := state.Update(msg)
	if m, ok := updated.(tui.Model); ok {
		*state = m
	}
}

// renderPendingChanges prints what the dry-run pass found, deletes in
// uppercase so they stand out.
func renderPendingChanges(w io.Writer, summary *model.RunSummary) {
	results := append([]model.ResourceResult(nil), summary.Results...)
	sort.Slice(results, func(i, j int) bool {
		return results[i].Address.String() < results[j].Address.String()
	})

	width := 0
	for _, res := range results {
		if n := len(res.Address.String()); n > width {
			width = n
		}
	}

	fmt.Fprintln(w, "\nPlanned changes:")
	for _, res := range results {
		address := res.Address.String()
		switch res.Status {
		case model.StatusWouldCreate:
			fmt.Fprintf(w, "  + %-*s  %s\n", width, address, res.Message)
		case model.StatusWouldUpdate:
			fmt.Fprintf(w, "  ~ %-*s  %s\n", width, address, describeUpdate(res))
		case model.StatusWouldDelete:
			fmt.Fprintf(w, "  - %-*s  DELETE %s %s\n", width, address, res.Address.Kind, res.Address.ID)
		case model.StatusFailed, model.StatusBlocked:
			fmt.Fprintf(w, "  ! %-*s  %s\n", width, address, res.Message)
		}
	}

	fmt.Fprintf(w, "\nPlan: %s.\n", formatPlanLine(countChanges(summary)))
}

func describeUpdate(res model.ResourceResult) string {
	if res.Result == nil || len(res.Result.Changes) == 0 {
		return res.Message
	}

	parts := make([]string, 0, len(res.Result.Changes))
	for _, change := range res.Result.Changes {
		parts = append(parts, fmt.Sprintf("%s: %q -> %q", change.Name, change.Old, change.New))
	}
	return "update " + strings.Join(parts, ", ")
}

// confirmApply prompts before mutating devices. Not having a terminal
// on stdin is an error: scripted runs must opt in with --auto-approve.
func confirmApply(cmd *cobra.Command, summary *model.RunSummary) (bool, error) {
	if !termIsTerminal(int(os.Stdin.Fd())) {
		return false, fmt.Errorf("stdin is not a terminal: pass --auto-approve to apply without confirmation")
	}

	counts := countChanges(summary)
	title := fmt.Sprintf("Apply these changes? (%d to create, %d to update, %d to delete)",
		counts.creates, counts.updates, counts.deletes)

	confirmed := false
	field := huh.NewConfirm().
		Title(title).
		Value(&confirmed)

	form := huh.NewForm(huh.NewGroup(field)).
		WithInput(cmd.InOrStdin()).
		WithOutput(cmd.OutOrStdout()).
		WithShowHelp(false)

	if err := form.Run(); err != nil {
		if errors.Is(err, huh.ErrUserAborted) {
			return false, nil
		}
		return false, err
	}
	return confirmed, nil
}
