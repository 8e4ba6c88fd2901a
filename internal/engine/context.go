package engine

import (
	"context"

	"github.com/google/uuid"

	"github.com/shunt-io/shunt/internal/config"
	"github.com/shunt-io/shunt/internal/logger"
	"github.com/shunt-io/shunt/internal/model"
	"github.com/shunt-io/shunt/internal/reconcile"
)

// EventSink receives execution progress events. The executor calls it
// from device workers, so implementations must be safe for concurrent
// use.
type EventSink interface {
	ResourceStarted(address model.Address)
	ResourceCompleted(result model.ResourceResult)
	RunCompleted(summary model.RunSummary)
}

// ContextOptions carries caller overrides for a run. Zero values fall
// back to the manifest's settings.
type ContextOptions struct {
	DryRun          bool
	Verbose         bool
	ContinueOnError bool
	Parallel        int
	Events          EventSink
	Logger          *logger.Logger
	Context         context.Context
}

// ExecutionContext contains runtime state shared across device workers.
type ExecutionContext struct {
	RunID           string
	Manifest        *config.Manifest
	Reconcilers     map[string]*reconcile.Reconciler
	DryRun          bool
	Verbose         bool
	ContinueOnError bool
	Parallel        int
	Results         map[string]*model.ResourceResult
	Events          EventSink
	Logger          *logger.Logger
	Context         context.Context
}

const defaultParallel = 4

// NewExecutionContext assembles an ExecutionContext, merging the
// manifest's settings with caller overrides and minting a run id.
func NewExecutionContext(manifest *config.Manifest, reconcilers map[string]*reconcile.Reconciler, opts ContextOptions) *ExecutionContext {
	execCtx := &ExecutionContext{
		RunID:       uuid.NewString(),
		Manifest:    manifest,
		Reconcilers: reconcilers,
		Results:     make(map[string]*model.ResourceResult),
		Events:      opts.Events,
		Logger:      opts.Logger,
		Context:     opts.Context,
	}

	var settings config.Settings
	if manifest != nil {
		settings = manifest.Settings
	}

	execCtx.DryRun = opts.DryRun || settings.DryRun
	execCtx.Verbose = opts.Verbose || settings.Verbose
	execCtx.ContinueOnError = opts.ContinueOnError || settings.ContinueOnError

	execCtx.Parallel = opts.Parallel
	if execCtx.Parallel <= 0 {
		execCtx.Parallel = settings.Parallel
	}
	if execCtx.Parallel <= 0 {
		execCtx.Parallel = defaultParallel
	}

	return execCtx
}

func (e *ExecutionContext) emitStarted(address model.Address) {
	if e.Events != nil {
		e.Events.ResourceStarted(address)
	}
}

func (e *ExecutionContext) emitCompleted(result model.ResourceResult) {
	if e.Events != nil {
		e.Events.ResourceCompleted(result)
	}
}

func (e *ExecutionContext) emitRunCompleted(summary model.RunSummary) {
	if e.Events != nil {
		e.Events.RunCompleted(summary)
	}
}
