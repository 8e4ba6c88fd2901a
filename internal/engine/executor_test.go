package engine

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/shunt-io/shunt/internal/config"
	"github.com/shunt-io/shunt/internal/gateway"
	"github.com/shunt-io/shunt/internal/gateway/gatewaytest"
	"github.com/shunt-io/shunt/internal/model"
	"github.com/shunt-io/shunt/internal/reconcile"
	shunterrors "github.com/shunt-io/shunt/pkg/errors"
)

func testManifest(resources ...config.Resource) *config.Manifest {
	return &config.Manifest{
		Version: "1.0",
		Name:    "engine-test",
		Devices: []config.Device{
			{Name: "core-1", Driver: "vsh"},
			{Name: "edge-1", Driver: "vsh"},
		},
		Resources: resources,
	}
}

func testReconcilers(gateways map[string]gateway.Gateway) map[string]*reconcile.Reconciler {
	out := make(map[string]*reconcile.Reconciler, len(gateways))
	for device, gw := range gateways {
		out[device] = reconcile.New(gw, nil, nil)
	}
	return out
}

func runPlan(t *testing.T, execCtx *ExecutionContext) (*model.RunSummary, error) {
	t.Helper()

	graph, err := BuildGraph(execCtx.Manifest.Resources)
	require.NoError(t, err)
	plan, err := GeneratePlan(graph)
	require.NoError(t, err)
	return Execute(execCtx, plan)
}

// recordingSink collects events for assertions.
type recordingSink struct {
	mu        sync.Mutex
	started   []string
	completed map[string]string
	summaries []model.RunSummary
}

func newRecordingSink() *recordingSink {
	return &recordingSink{completed: make(map[string]string)}
}

func (s *recordingSink) ResourceStarted(address model.Address) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.started = append(s.started, address.String())
}

func (s *recordingSink) ResourceCompleted(result model.ResourceResult) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.completed[result.Address.String()] = result.Status
}

func (s *recordingSink) RunCompleted(summary model.RunSummary) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.summaries = append(s.summaries, summary)
}

func (s *recordingSink) startedAddresses() []string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]string(nil), s.started...)
}

// stallGateway blocks every operation until the context expires.
type stallGateway struct{}

func (stallGateway) List(ctx context.Context, kind string) ([]string, error) {
	<-ctx.Done()
	return nil, ctx.Err()
}

func (stallGateway) Show(ctx context.Context, kind, id string) (map[string]string, error) {
	<-ctx.Done()
	return nil, ctx.Err()
}

func (stallGateway) Create(ctx context.Context, kind, id string, attrs map[string]string) (map[string]string, error) {
	<-ctx.Done()
	return nil, ctx.Err()
}

func (stallGateway) Edit(ctx context.Context, kind, id string, attrs map[string]string) (map[string]string, error) {
	<-ctx.Done()
	return nil, ctx.Err()
}

func (stallGateway) Delete(ctx context.Context, kind, id string) error {
	<-ctx.Done()
	return ctx.Err()
}

// barrierGateway releases List only once every expected caller arrived,
// so the test hangs unless devices really run concurrently.
type barrierGateway struct {
	gate *sync.WaitGroup
}

func (g barrierGateway) List(ctx context.Context, kind string) ([]string, error) {
	g.gate.Done()
	g.gate.Wait()
	return nil, nil
}

func (g barrierGateway) Show(ctx context.Context, kind, id string) (map[string]string, error) {
	return nil, gateway.NewStatusError(gateway.StatusNotFound, "not found")
}

func (g barrierGateway) Create(ctx context.Context, kind, id string, attrs map[string]string) (map[string]string, error) {
	return attrs, nil
}

func (g barrierGateway) Edit(ctx context.Context, kind, id string, attrs map[string]string) (map[string]string, error) {
	return attrs, nil
}

func (g barrierGateway) Delete(ctx context.Context, kind, id string) error {
	return nil
}

func TestExecuteAppliesAcrossDevices(t *testing.T) {
	t.Parallel()

	core := gatewaytest.NewFake()
	edge := gatewaytest.NewFake()
	edge.Seed("vlan", "20", map[string]string{"name": "lab"})

	inSync := testResource("edge-1", "vlan", "20")
	inSync.Attributes = map[string]string{"name": "lab"}

	manifest := testManifest(
		testResource("core-1", "vlan", "10"),
		inSync,
	)
	execCtx := NewExecutionContext(manifest, testReconcilers(map[string]gateway.Gateway{
		"core-1": core,
		"edge-1": edge,
	}), ContextOptions{})

	summary, err := runPlan(t, execCtx)
	require.NoError(t, err)
	require.Equal(t, 2, summary.TotalResources)
	require.Equal(t, 1, summary.Created)
	require.Equal(t, 1, summary.Unchanged)
	require.False(t, summary.HasFailures())

	require.True(t, core.Exists("vlan", "10"))
	require.Empty(t, edge.MutationCalls())

	require.Equal(t, model.StatusSuccess, execCtx.Results["core-1/vlan/10"].Status)
	require.Equal(t, model.StatusSkipped, execCtx.Results["edge-1/vlan/20"].Status)
}

func TestExecuteSerializesWorkPerDevice(t *testing.T) {
	t.Parallel()

	core := gatewaytest.NewFake()
	manifest := testManifest(
		testResource("core-1", "vlan", "30"),
		testResource("core-1", "vlan", "10"),
		testResource("core-1", "vlan", "20"),
	)
	execCtx := NewExecutionContext(manifest, testReconcilers(map[string]gateway.Gateway{
		"core-1": core,
	}), ContextOptions{Parallel: 8})

	summary, err := runPlan(t, execCtx)
	require.NoError(t, err)
	require.Equal(t, 3, summary.Created)

	var ops []string
	for _, call := range core.Calls() {
		ops = append(ops, call.Op+" "+call.ID)
	}
	require.Equal(t, []string{
		"show 10", "create 10",
		"show 20", "create 20",
		"show 30", "create 30",
	}, ops)
}

func TestExecuteDryRunTouchesNothing(t *testing.T) {
	t.Parallel()

	core := gatewaytest.NewFake()
	core.Seed("vlan", "20", map[string]string{"name": "old"})
	core.Seed("vlan", "30", map[string]string{"name": "doomed"})

	update := testResource("core-1", "vlan", "20")
	update.Attributes = map[string]string{"name": "new"}
	remove := testResource("core-1", "vlan", "30")
	remove.State = "absent"

	manifest := testManifest(
		testResource("core-1", "vlan", "10"),
		update,
		remove,
	)
	execCtx := NewExecutionContext(manifest, testReconcilers(map[string]gateway.Gateway{
		"core-1": core,
	}), ContextOptions{DryRun: true})

	summary, err := runPlan(t, execCtx)
	require.NoError(t, err)
	require.Equal(t, 3, summary.WouldChange)
	require.Empty(t, core.MutationCalls())

	require.Equal(t, model.StatusWouldCreate, execCtx.Results["core-1/vlan/10"].Status)
	require.Equal(t, model.StatusWouldUpdate, execCtx.Results["core-1/vlan/20"].Status)
	require.Equal(t, model.StatusWouldDelete, execCtx.Results["core-1/vlan/30"].Status)
	require.Equal(t, 1, summary.ExitCode())
}

func TestExecuteBlocksDependentsOfFailedResource(t *testing.T) {
	t.Parallel()

	core := gatewaytest.NewFake()
	core.CreateErr = gateway.NewStatusError(gateway.StatusDeviceError, "vlan add failed")
	edge := gatewaytest.NewFake()

	manifest := testManifest(
		testResource("core-1", "vlan", "10"),
		testResource("core-1", "port", "12", "vlan/10"),
		testResource("edge-1", "vlan", "20"),
	)
	execCtx := NewExecutionContext(manifest, testReconcilers(map[string]gateway.Gateway{
		"core-1": core,
		"edge-1": edge,
	}), ContextOptions{ContinueOnError: true})

	summary, err := runPlan(t, execCtx)
	require.Error(t, err)

	var execErr *shunterrors.ExecutionError
	require.ErrorAs(t, err, &execErr)
	require.Equal(t, "core-1/vlan/10", execErr.Address)

	require.Equal(t, 3, summary.TotalResources)
	require.Equal(t, 1, summary.Failed)
	require.Equal(t, 1, summary.Blocked)
	require.Equal(t, 1, summary.Created)
	require.Equal(t, 3, summary.ExitCode())

	blocked := execCtx.Results["core-1/port/12"]
	require.Equal(t, model.StatusBlocked, blocked.Status)
	require.Contains(t, blocked.Message, "core-1/vlan/10 (failed)")
}

func TestExecuteAbortsRemainingWorkAfterFailure(t *testing.T) {
	t.Parallel()

	core := gatewaytest.NewFake()
	core.CreateErr = gateway.NewStatusError(gateway.StatusDeviceError, "vlan add failed")
	edge := gatewaytest.NewFake()
	sink := newRecordingSink()

	manifest := testManifest(
		testResource("core-1", "vlan", "10"),
		testResource("core-1", "vlan", "20"),
		testResource("edge-1", "port", "12", "core-1/vlan/10"),
	)
	execCtx := NewExecutionContext(manifest, testReconcilers(map[string]gateway.Gateway{
		"core-1": core,
		"edge-1": edge,
	}), ContextOptions{Events: sink})

	summary, err := runPlan(t, execCtx)
	require.Error(t, err)
	require.Equal(t, 1, summary.Failed)
	require.Equal(t, 2, summary.Blocked)
	require.Empty(t, edge.Calls())

	require.Contains(t, execCtx.Results["core-1/vlan/20"].Message, "aborted")
	require.Contains(t, execCtx.Results["edge-1/port/12"].Message, "aborted")

	// Only the resource that actually ran gets a start event; aborted
	// ones report completion straight away.
	require.Equal(t, []string{"core-1/vlan/10"}, sink.startedAddresses())
}

func TestExecuteAppliesResourceTimeout(t *testing.T) {
	t.Parallel()

	stalled := testResource("core-1", "vlan", "10")
	stalled.State = "absent"
	stalled.Timeout = 1

	manifest := testManifest(stalled)
	execCtx := NewExecutionContext(manifest, testReconcilers(map[string]gateway.Gateway{
		"core-1": stallGateway{},
	}), ContextOptions{})

	summary, err := runPlan(t, execCtx)
	require.Error(t, err)
	require.Equal(t, 1, summary.Failed)
	require.Equal(t, "timeout exceeded", execCtx.Results["core-1/vlan/10"].Message)
}

func TestExecuteFailsWhenDeviceHasNoReconciler(t *testing.T) {
	t.Parallel()

	manifest := testManifest(testResource("core-1", "vlan", "10"))
	execCtx := NewExecutionContext(manifest, map[string]*reconcile.Reconciler{}, ContextOptions{})

	summary, err := runPlan(t, execCtx)
	require.Error(t, err)
	require.Equal(t, 1, summary.Failed)
	require.Contains(t, execCtx.Results["core-1/vlan/10"].Message, "no gateway configured")
}

func TestExecuteEmitsEvents(t *testing.T) {
	t.Parallel()

	core := gatewaytest.NewFake()
	sink := newRecordingSink()

	manifest := testManifest(
		testResource("core-1", "vlan", "10"),
		testResource("core-1", "vlan", "20"),
	)
	execCtx := NewExecutionContext(manifest, testReconcilers(map[string]gateway.Gateway{
		"core-1": core,
	}), ContextOptions{Events: sink})

	_, err := runPlan(t, execCtx)
	require.NoError(t, err)

	require.ElementsMatch(t, []string{"core-1/vlan/10", "core-1/vlan/20"}, sink.startedAddresses())
	require.Equal(t, map[string]string{
		"core-1/vlan/10": model.StatusSuccess,
		"core-1/vlan/20": model.StatusSuccess,
	}, sink.completed)

	require.Len(t, sink.summaries, 1)
	require.Equal(t, execCtx.RunID, sink.summaries[0].RunID)
	require.Equal(t, 2, sink.summaries[0].TotalResources)
}

func TestExecuteRunsDevicesInParallel(t *testing.T) {
	t.Parallel()

	var gate sync.WaitGroup
	gate.Add(2)

	coreRes := testResource("core-1", "vlan", "10")
	coreRes.State = "absent"
	edgeRes := testResource("edge-1", "vlan", "10")
	edgeRes.State = "absent"

	manifest := testManifest(coreRes, edgeRes)
	execCtx := NewExecutionContext(manifest, testReconcilers(map[string]gateway.Gateway{
		"core-1": barrierGateway{gate: &gate},
		"edge-1": barrierGateway{gate: &gate},
	}), ContextOptions{Parallel: 2})

	graph, err := BuildGraph(manifest.Resources)
	require.NoError(t, err)
	plan, err := GeneratePlan(graph)
	require.NoError(t, err)

	done := make(chan struct{})
	var summary *model.RunSummary
	var execErr error
	go func() {
		defer close(done)
		summary, execErr = Execute(execCtx, plan)
	}()

	select {
	case <-done:
	case <-time.After(5 * time.Second):
		t.Fatal("expected both devices to reconcile concurrently")
	}

	require.NoError(t, execErr)
	require.Equal(t, 2, summary.Unchanged)
}

func TestExecuteValidatesInputs(t *testing.T) {
	t.Parallel()

	_, err := Execute(nil, &ExecutionPlan{})
	require.Error(t, err)

	_, err = Execute(&ExecutionContext{}, &ExecutionPlan{})
	require.Error(t, err)

	execCtx := NewExecutionContext(testManifest(), nil, ContextOptions{})
	_, err = Execute(execCtx, nil)
	require.Error(t, err)
}
