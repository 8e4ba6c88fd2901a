// Package gatewaytest provides an in-memory Gateway for tests.
package gatewaytest

import (
	"context"
	"fmt"
	"sync"

	"github.com/shunt-io/shunt/internal/gateway"
)

// Call records one gateway invocation.
type Call struct {
	Op    string
	Kind  string
	ID    string
	Attrs map[string]string
}

// Fake is an in-memory Gateway with a seedable resource store, call
// recording, and per-operation error injection. Safe for concurrent
// use so engine tests can drive it from several goroutines.
type Fake struct {
	mu        sync.Mutex
	resources map[string]map[string]map[string]string
	calls     []Call

	ListErr   error
	ShowErr   error
	CreateErr error
	EditErr   error
	DeleteErr error
}

// NewFake returns an empty Fake.
func NewFake() *Fake {
	return &Fake{resources: make(map[string]map[string]map[string]string)}
}

// Seed inserts a resource without recording a call.
func (f *Fake) Seed(kind, id string, attrs map[string]string) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.resources[kind] == nil {
		f.resources[kind] = make(map[string]map[string]string)
	}
	f.resources[kind][id] = copyAttrs(attrs)
}

// List implements gateway.Gateway.
func (f *Fake) List(ctx context.Context, kind string) ([]string, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.record("list", kind, "", nil)

	if f.ListErr != nil {
		return nil, f.ListErr
	}
	ids := make([]string, 0, len(f.resources[kind]))
	for id := range f.resources[kind] {
		ids = append(ids, id)
	}
	return ids, nil
}

// Show implements gateway.Gateway.
func (f *Fake) Show(ctx context.Context, kind, id string) (map[string]string, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.record("show", kind, id, nil)

	if f.ShowErr != nil {
		return nil, f.ShowErr
	}
	attrs, ok := f.resources[kind][id]
	if !ok {
		return nil, gateway.NewStatusError(gateway.StatusNotFound, fmt.Sprintf("%s with id %s not found", kind, id))
	}
	return copyAttrs(attrs), nil
}

// Create implements gateway.Gateway.
func (f *Fake) Create(ctx context.Context, kind, id string, attrs map[string]string) (map[string]string, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.record("create", kind, id, attrs)

	if f.CreateErr != nil {
		return nil, f.CreateErr
	}
	if _, ok := f.resources[kind][id]; ok {
		return nil, gateway.NewStatusError(gateway.StatusConflict, fmt.Sprintf("%s with id %s already exists", kind, id))
	}
	if f.resources[kind] == nil {
		f.resources[kind] = make(map[string]map[string]string)
	}
	f.resources[kind][id] = copyAttrs(attrs)
	return copyAttrs(attrs), nil
}

// Edit implements gateway.Gateway.
func (f *Fake) Edit(ctx context.Context, kind, id string, attrs map[string]string) (map[string]string, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.record("edit", kind, id, attrs)

	if f.EditErr != nil {
		return nil, f.EditErr
	}
	current, ok := f.resources[kind][id]
	if !ok {
		return nil, gateway.NewStatusError(gateway.StatusNotFound, fmt.Sprintf("%s with id %s not found", kind, id))
	}
	for key, value := range attrs {
		current[key] = value
	}
	return copyAttrs(current), nil
}

// Delete implements gateway.Gateway.
func (f *Fake) Delete(ctx context.Context, kind, id string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.record("delete", kind, id, nil)

	if f.DeleteErr != nil {
		return f.DeleteErr
	}
	if _, ok := f.resources[kind][id]; !ok {
		return gateway.NewStatusError(gateway.StatusNotFound, fmt.Sprintf("%s with id %s not found", kind, id))
	}
	delete(f.resources[kind], id)
	return nil
}

// Attrs returns the stored attributes for a resource, or nil when it
// does not exist.
func (f *Fake) Attrs(kind, id string) map[string]string {
	f.mu.Lock()
	defer f.mu.Unlock()
	attrs, ok := f.resources[kind][id]
	if !ok {
		return nil
	}
	return copyAttrs(attrs)
}

// Exists reports whether the store holds the resource.
func (f *Fake) Exists(kind, id string) bool {
	f.mu.Lock()
	defer f.mu.Unlock()
	_, ok := f.resources[kind][id]
	return ok
}

// Calls returns every recorded call in order.
func (f *Fake) Calls() []Call {
	f.mu.Lock()
	defer f.mu.Unlock()
	out := make([]Call, len(f.calls))
	copy(out, f.calls)
	return out
}

// CallsFor returns the recorded calls for one operation.
func (f *Fake) CallsFor(op string) []Call {
	var out []Call
	for _, call := range f.Calls() {
		if call.Op == op {
			out = append(out, call)
		}
	}
	return out
}

// MutationCalls returns the recorded create, edit and delete calls.
func (f *Fake) MutationCalls() []Call {
	var out []Call
	for _, call := range f.Calls() {
		switch call.Op {
		case "create", "edit", "delete":
			out = append(out, call)
		}
	}
	return out
}

func (f *Fake) record(op, kind, id string, attrs map[string]string) {
	f.calls = append(f.calls, Call{Op: op, Kind: kind, ID: id, Attrs: copyAttrs(attrs)})
}

func copyAttrs(attrs map[string]string) map[string]string {
	if attrs == nil {
		return nil
	}
	out := make(map[string]string, len(attrs))
	for key, value := range attrs {
		out[key] = value
	}
	return out
}
