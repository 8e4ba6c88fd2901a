package engine

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/shunt-io/shunt/internal/config"
	"github.com/shunt-io/shunt/internal/model"
	"github.com/shunt-io/shunt/internal/reconcile"
	shunterrors "github.com/shunt-io/shunt/pkg/errors"
)

const defaultResourceTimeout = 60 * time.Second

// Execute runs the plan level by level. Within a level each device gets
// one worker that reconciles its resources strictly in order, so no two
// operations ever target the same device concurrently; across devices
// the workers run in parallel up to the configured limit.
//
// The returned summary always covers every enabled resource: resources
// behind a failed dependency are recorded as blocked, and when the run
// aborts early the untouched remainder is recorded as blocked too.
func Execute(execCtx *ExecutionContext, plan *ExecutionPlan) (*model.RunSummary, error) {
	if execCtx == nil {
		return nil, shunterrors.NewExecutionError("", fmt.Errorf("execution context is nil"))
	}
	if execCtx.Manifest == nil {
		return nil, shunterrors.NewExecutionError("", fmt.Errorf("execution context manifest is nil"))
	}
	if plan == nil {
		return nil, shunterrors.NewExecutionError("", fmt.Errorf("execution plan is nil"))
	}

	baseCtx := execCtx.Context
	if baseCtx == nil {
		baseCtx = context.Background()
	}
	ctx, cancel := context.WithCancel(baseCtx)
	defer cancel()

	start := time.Now()
	resources := config.ResourceMap(execCtx.Manifest.Resources)
	dependencies := resolveDependencies(execCtx.Manifest.Resources)

	if execCtx.Results == nil {
		execCtx.Results = make(map[string]*model.ResourceResult)
	}

	summary := &model.RunSummary{RunID: execCtx.RunID}

	var mu sync.Mutex
	terminal := make(map[string]string, len(resources))

	record := func(res model.ResourceResult) {
		mu.Lock()
		defer mu.Unlock()
		stored := res
		execCtx.Results[res.Address.String()] = &stored
		summary.Add(res)
		terminal[res.Address.String()] = res.Status
	}

	blockedBy := func(key string) []string {
		mu.Lock()
		defer mu.Unlock()
		var parts []string
		for _, dep := range dependencies[key] {
			status, done := terminal[dep]
			if !done {
				continue
			}
			if status == model.StatusFailed || status == model.StatusBlocked {
				parts = append(parts, fmt.Sprintf("%s (%s)", dep, status))
			}
		}
		return parts
	}

	var firstErr error
	var once sync.Once
	fail := func(err error) {
		once.Do(func() {
			firstErr = err
			if !execCtx.ContinueOnError {
				cancel()
			}
		})
	}

	for levelIdx, level := range plan.Levels {
		var g errgroup.Group
		g.SetLimit(execCtx.Parallel)

		for _, device := range level.Devices() {
			addrs := level.ByDevice[device]
			g.Go(func() error {
				for _, key := range addrs {
					resource, ok := resources[key]
					if !ok {
						fail(shunterrors.NewExecutionError(key, fmt.Errorf("resource not found in manifest")))
						continue
					}

					if ctx.Err() != nil {
						res := abortedResult(resource.Address())
						execCtx.emitCompleted(res)
						record(res)
						continue
					}

					if parts := blockedBy(key); len(parts) > 0 {
						res := blockedResult(resource.Address(), parts)
						execCtx.emitCompleted(res)
						record(res)
						continue
					}

					res := executeResource(ctx, execCtx, resource)
					record(res)

					if res.Status == model.StatusFailed {
						fail(shunterrors.NewExecutionError(key, res.Error))
					}
				}
				return nil
			})
		}

		_ = g.Wait()

		if firstErr != nil && !execCtx.ContinueOnError {
			for _, later := range plan.Levels[levelIdx+1:] {
				for _, key := range later.Addresses {
					resource, ok := resources[key]
					if !ok {
						continue
					}
					res := abortedResult(resource.Address())
					execCtx.emitCompleted(res)
					record(res)
				}
			}
			break
		}
	}

	summary.Duration = time.Since(start)
	execCtx.emitRunCompleted(*summary)

	return summary, firstErr
}

func executeResource(ctx context.Context, execCtx *ExecutionContext, resource config.Resource) model.ResourceResult {
	address := resource.Address()
	log := execCtx.Logger.WithFields(map[string]any{
		"run_id": execCtx.RunID,
		"device": address.Device,
		"kind":   address.Kind,
		"id":     address.ID,
	})

	execCtx.emitStarted(address)

	result := model.ResourceResult{Address: address, Timestamp: time.Now()}

	rec, ok := execCtx.Reconcilers[resource.Device]
	if !ok || rec == nil {
		result.Status = model.StatusFailed
		result.Error = fmt.Errorf("no gateway configured for device %q", resource.Device)
		result.Message = result.Error.Error()
		execCtx.emitCompleted(result)
		return result
	}

	timeout := defaultResourceTimeout
	if execCtx.Manifest.Settings.Timeout > 0 {
		timeout = time.Duration(execCtx.Manifest.Settings.Timeout) * time.Second
	}
	if resource.Timeout > 0 {
		timeout = time.Duration(resource.Timeout) * time.Second
	}

	resCtx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	start := time.Now()
	recResult, err := rec.Reconcile(resCtx, resource.Spec(), reconcile.Options{DryRun: execCtx.DryRun})
	result.Duration = time.Since(start)
	result.Result = recResult

	if err != nil {
		result.Status = model.StatusFailed
		result.Error = err
		result.Message = err.Error()
		if errors.Is(err, context.DeadlineExceeded) || errors.Is(resCtx.Err(), context.DeadlineExceeded) {
			result.Message = "timeout exceeded"
		}
		log.Error(err, "reconcile failed")
		execCtx.emitCompleted(result)
		return result
	}

	result.Status = model.StatusForResult(recResult)
	result.Message = recResult.Message
	log.WithFields(map[string]any{"status": result.Status}).Debug("reconcile finished")
	execCtx.emitCompleted(result)
	return result
}

// resolveDependencies maps each enabled resource address to its enabled
// dependency addresses, mirroring how BuildGraph draws edges.
func resolveDependencies(resources []config.Resource) map[string][]string {
	enabled := make(map[string]bool, len(resources))
	for _, resource := range resources {
		if resource.Enabled {
			enabled[resource.Address().String()] = true
		}
	}

	deps := make(map[string][]string, len(enabled))
	for _, resource := range resources {
		if !resource.Enabled {
			continue
		}
		key := resource.Address().String()
		for _, ref := range resource.DependsOn {
			addr, err := config.ResolveDependsOn(ref, resource.Device)
			if err != nil {
				continue
			}
			if enabled[addr.String()] {
				deps[key] = append(deps[key], addr.String())
			}
		}
	}
	return deps
}

func blockedResult(address model.Address, unsatisfied []string) model.ResourceResult {
	detail := strings.Join(unsatisfied, ", ")
	return model.ResourceResult{
		Address:   address,
		Status:    model.StatusBlocked,
		Message:   "blocked: dependencies not satisfied: " + detail,
		Error:     fmt.Errorf("dependencies not satisfied: %s", detail),
		Timestamp: time.Now(),
	}
}

func abortedResult(address model.Address) model.ResourceResult {
	return model.ResourceResult{
		Address:   address,
		Status:    model.StatusBlocked,
		Message:   "blocked: run aborted after earlier failure",
		Timestamp: time.Now(),
	}
}
