package reconcile

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/shunt-io/shunt/internal/gateway"
	"github.com/shunt-io/shunt/internal/logger"
	"github.com/shunt-io/shunt/internal/model"
)

// Canonicalizer normalizes raw attribute values into their canonical
// string form so desired and observed state compare type-aware. The
// kind registry implements it; a nil Canonicalizer leaves values as
// they are.
type Canonicalizer interface {
	CanonicalAttributes(kind string, attrs map[string]string) (map[string]string, error)
}

// Options carries per-call switches.
type Options struct {
	// DryRun reports the decision without invoking any mutating
	// gateway operation. The Changed result is the same the real call
	// would have produced.
	DryRun bool
}

// Reconciler brings a single resource to its desired state with the
// minimal mutating operation: create, partial update, or delete.
//
// Every call is stateless and independent: one read, at most one write,
// nothing cached in between. The reconciler holds no locks; callers
// running several reconciliations concurrently must serialize calls per
// resource id themselves (the engine serializes per device).
type Reconciler struct {
	gw    gateway.Gateway
	canon Canonicalizer
	log   *logger.Logger
}

// New creates a Reconciler. The gateway is required; canon and log may
// be nil.
func New(gw gateway.Gateway, canon Canonicalizer, log *logger.Logger) *Reconciler {
	return &Reconciler{gw: gw, canon: canon, log: log}
}

// Exists reports whether id appears in the kind's collection listing on
// the device. Read failures wrap into GatewayError and are propagated,
// never retried.
func (r *Reconciler) Exists(ctx context.Context, kind, id string) (bool, error) {
	r.scoped(kind, id, "list").Debug("querying device collection")

	ids, err := r.gw.List(ctx, kind)
	if err != nil {
		return false, NewGatewayError(kind, "", "list", err)
	}
	for _, existing := range ids {
		if existing == id {
			return true, nil
		}
	}
	return false, nil
}

// Fetch reads the observed state of one resource. A device not-found
// answer maps to a nil result: absence is a value here, never an error.
// Observed attributes pass through the canonicalizer so they compare
// cleanly against the spec.
func (r *Reconciler) Fetch(ctx context.Context, kind, id string) (*model.ObservedResource, error) {
	r.scoped(kind, id, "show").Debug("reading resource state")

	attrs, err := r.gw.Show(ctx, kind, id)
	if err != nil {
		if gateway.IsNotFound(err) {
			return nil, nil
		}
		return nil, NewGatewayError(kind, id, "show", err)
	}

	canonical, err := r.canonical(kind, attrs)
	if err != nil {
		return nil, NewGatewayError(kind, id, "show", err)
	}
	return &model.ObservedResource{ID: id, Attributes: canonical}, nil
}

// Reconcile decides and, unless opts.DryRun is set, executes the
// operation that brings the resource to spec.State. All outcomes are
// terminal after at most one mutating call; repeated calls with an
// unchanged spec and unchanged device converge to Changed=false.
func (r *Reconciler) Reconcile(ctx context.Context, spec model.ResourceSpec, opts Options) (*model.ReconcileResult, error) {
	start := time.Now()

	if spec.Kind == "" || spec.ID == "" {
		return nil, fmt.Errorf("resource kind and id are required")
	}
	if !spec.State.IsValid() {
		return nil, fmt.Errorf("unsupported desired state %q", spec.State)
	}

	canonical, err := r.canonical(spec.Kind, spec.Attributes)
	if err != nil {
		return nil, fmt.Errorf("canonicalize attributes for %s %s: %w", spec.Kind, spec.ID, err)
	}
	spec.Attributes = canonical

	var result *model.ReconcileResult
	switch spec.State {
	case model.StateAbsent:
		result, err = r.reconcileAbsent(ctx, spec, opts)
	default:
		result, err = r.reconcilePresent(ctx, spec, opts)
	}
	if err != nil {
		return nil, err
	}

	result.DryRun = opts.DryRun
	result.Duration = time.Since(start)
	return result, nil
}

func (r *Reconciler) reconcileAbsent(ctx context.Context, spec model.ResourceSpec, opts Options) (*model.ReconcileResult, error) {
	exists, err := r.Exists(ctx, spec.Kind, spec.ID)
	if err != nil {
		return nil, err
	}
	if !exists {
		return &model.ReconcileResult{
			Action:  model.ActionNone,
			Changed: false,
			Message: "already absent",
		}, nil
	}

	if opts.DryRun {
		return &model.ReconcileResult{
			Action:  model.ActionDelete,
			Changed: true,
			Message: fmt.Sprintf("would delete %s %s", spec.Kind, spec.ID),
		}, nil
	}

	r.scoped(spec.Kind, spec.ID, "delete").Info("deleting resource")
	if err := r.gw.Delete(ctx, spec.Kind, spec.ID); err != nil && !gateway.IsNotFound(err) {
		return nil, NewOperationError(spec.Kind, spec.ID, "delete", err)
	}
	// A not-found answer means the resource vanished between the read
	// and the delete; the desired state holds either way.
	return &model.ReconcileResult{
		Action:  model.ActionDelete,
		Changed: true,
		Message: fmt.Sprintf("deleted %s %s", spec.Kind, spec.ID),
	}, nil
}

func (r *Reconciler) reconcilePresent(ctx context.Context, spec model.ResourceSpec, opts Options) (*model.ReconcileResult, error) {
	observed, err := r.Fetch(ctx, spec.Kind, spec.ID)
	if err != nil {
		return nil, err
	}

	if observed == nil {
		return r.create(ctx, spec, opts)
	}

	names := Diff(spec, observed)
	if len(names) == 0 {
		return &model.ReconcileResult{
			Action:  model.ActionNone,
			Changed: false,
			Message: "in sync",
		}, nil
	}

	if opts.DryRun {
		return &model.ReconcileResult{
			Action:  model.ActionUpdate,
			Changed: true,
			Changes: Changes(spec, observed, names),
			Message: fmt.Sprintf("would update %s", strings.Join(names, ", ")),
		}, nil
	}

	return r.Update(ctx, spec, observed, names)
}

func (r *Reconciler) create(ctx context.Context, spec model.ResourceSpec, opts Options) (*model.ReconcileResult, error) {
	if opts.DryRun {
		return &model.ReconcileResult{
			Action:  model.ActionCreate,
			Changed: true,
			Message: fmt.Sprintf("would create %s %s", spec.Kind, spec.ID),
		}, nil
	}

	attrs := spec.AssertedAttributes()
	r.scoped(spec.Kind, spec.ID, "create").Info("creating resource")
	out, err := r.gw.Create(ctx, spec.Kind, spec.ID, attrs)
	if err != nil {
		return nil, NewOperationError(spec.Kind, spec.ID, "create", err)
	}
	return &model.ReconcileResult{
		Action:  model.ActionCreate,
		Changed: true,
		Message: fmt.Sprintf("created %s %s", spec.Kind, spec.ID),
		Output:  out,
	}, nil
}

// Update issues a partial edit for exactly the named attributes. An
// empty name set never reaches the gateway: the call degrades to a
// no-op success, so the no-redundant-write guarantee holds even when
// Update is invoked directly rather than through Reconcile.
func (r *Reconciler) Update(ctx context.Context, spec model.ResourceSpec, observed *model.ObservedResource, names []string) (*model.ReconcileResult, error) {
	if len(names) == 0 {
		return &model.ReconcileResult{
			Action:  model.ActionNone,
			Changed: false,
			Message: "in sync",
		}, nil
	}

	attrs := make(map[string]string, len(names))
	for _, name := range names {
		attrs[name] = spec.Attributes[name]
	}

	r.scoped(spec.Kind, spec.ID, "edit").Info("updating resource")
	out, err := r.gw.Edit(ctx, spec.Kind, spec.ID, attrs)
	if err != nil {
		return nil, NewOperationError(spec.Kind, spec.ID, "edit", err)
	}
	return &model.ReconcileResult{
		Action:  model.ActionUpdate,
		Changed: true,
		Changes: Changes(spec, observed, names),
		Message: fmt.Sprintf("updated %s", strings.Join(names, ", ")),
		Output:  out,
	}, nil
}

func (r *Reconciler) canonical(kind string, attrs map[string]string) (map[string]string, error) {
	if r.canon == nil || attrs == nil {
		return attrs, nil
	}
	return r.canon.CanonicalAttributes(kind, attrs)
}

func (r *Reconciler) scoped(kind, id, op string) *logger.Logger {
	return r.log.WithFields(map[string]any{"kind": kind, "id": id, "op": op})
}
