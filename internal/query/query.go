// Package query evaluates jq expressions over report data, backing the
// --query flag on plan and show.
package query

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/itchyny/gojq"
)

// Query is a compiled jq expression.
type Query struct {
	code *gojq.Code
	expr string
}

// Compile parses and compiles a jq expression once; Run may be called
// any number of times afterwards.
func Compile(expr string) (*Query, error) {
	trimmed := strings.TrimSpace(expr)
	if trimmed == "" {
		return nil, fmt.Errorf("query: expression is empty")
	}

	parsed, err := gojq.Parse(trimmed)
	if err != nil {
		return nil, fmt.Errorf("query: parse %q: %w", trimmed, err)
	}

	code, err := gojq.Compile(parsed)
	if err != nil {
		return nil, fmt.Errorf("query: compile %q: %w", trimmed, err)
	}

	return &Query{code: code, expr: trimmed}, nil
}

// Run evaluates the query over a JSON-shaped value. A single result
// comes back bare, several as a slice, none as nil.
func (q *Query) Run(ctx context.Context, input any) (any, error) {
	iter := q.code.RunWithContext(ctx, input)

	results := make([]any, 0, 1)
	for {
		value, ok := iter.Next()
		if !ok {
			break
		}
		if err, isErr := value.(error); isErr {
			return nil, fmt.Errorf("query: evaluate %q: %w", q.expr, err)
		}
		results = append(results, value)
	}

	switch len(results) {
	case 0:
		return nil, nil
	case 1:
		return results[0], nil
	default:
		return results, nil
	}
}

// Apply round-trips a typed value through JSON so report structs can be
// queried directly.
func (q *Query) Apply(ctx context.Context, v any) (any, error) {
	data, err := json.Marshal(v)
	if err != nil {
		return nil, fmt.Errorf("query: encode input: %w", err)
	}

	var shaped any
	if err := json.Unmarshal(data, &shaped); err != nil {
		return nil, fmt.Errorf("query: decode input: %w", err)
	}

	return q.Run(ctx, shaped)
}
