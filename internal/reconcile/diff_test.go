package reconcile

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/shunt-io/shunt/internal/model"
)

func TestDiff(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name     string
		spec     map[string]string
		observed map[string]string
		want     []string
	}{
		{
			name:     "value drift",
			spec:     map[string]string{"name": "test"},
			observed: map[string]string{"name": "old"},
			want:     []string{"name"},
		},
		{
			name:     "missing observed key counts as difference",
			spec:     map[string]string{"name": "test", "scope": "local"},
			observed: map[string]string{"name": "test"},
			want:     []string{"scope"},
		},
		{
			name:     "equal values excluded",
			spec:     map[string]string{"name": "test", "scope": "local"},
			observed: map[string]string{"name": "test", "scope": "local"},
			want:     nil,
		},
		{
			name:     "observed-only keys never appear",
			spec:     map[string]string{"name": "test"},
			observed: map[string]string{"name": "test", "ports": "1,2,3"},
			want:     nil,
		},
		{
			name:     "empty spec value is not asserted",
			spec:     map[string]string{"name": "", "scope": "fabric"},
			observed: map[string]string{"name": "whatever", "scope": "local"},
			want:     []string{"scope"},
		},
		{
			name:     "comparison is case sensitive",
			spec:     map[string]string{"name": "Test"},
			observed: map[string]string{"name": "test"},
			want:     []string{"name"},
		},
		{
			name:     "result is sorted",
			spec:     map[string]string{"scope": "fabric", "description": "x", "name": "test"},
			observed: map[string]string{},
			want:     []string{"description", "name", "scope"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			spec := model.ResourceSpec{Kind: "vlan", ID: "999", Attributes: tt.spec, State: model.StatePresent}
			observed := &model.ObservedResource{ID: "999", Attributes: tt.observed}
			require.Equal(t, tt.want, Diff(spec, observed))
		})
	}
}

func TestDiffNilObservedIsEmpty(t *testing.T) {
	t.Parallel()

	spec := model.ResourceSpec{
		Kind:       "vlan",
		ID:         "999",
		Attributes: map[string]string{"name": "test"},
		State:      model.StatePresent,
	}
	require.Nil(t, Diff(spec, nil))
}

func TestChangesCarriesOldAndNewValues(t *testing.T) {
	t.Parallel()

	spec := model.ResourceSpec{
		Kind:       "vlan",
		ID:         "999",
		Attributes: map[string]string{"name": "test", "scope": "fabric"},
		State:      model.StatePresent,
	}
	observed := &model.ObservedResource{ID: "999", Attributes: map[string]string{"name": "old"}}

	changes := Changes(spec, observed, []string{"name", "scope"})
	require.Equal(t, []model.FieldChange{
		{Name: "name", Old: "old", New: "test"},
		{Name: "scope", Old: "", New: "fabric"},
	}, changes)

	require.Nil(t, Changes(spec, observed, nil))
}
