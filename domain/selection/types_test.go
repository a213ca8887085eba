package selection

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestReconcileDropsStaleFieldsInOrder(t *testing.T) {
	set := Set{Version: CurrentVersion, SumFields: []string{"x", "y"}}

	got := set.Reconcile([]string{"x", "z"})

	assert.Equal(t, []string{"x"}, got.SumFields)
	assert.Empty(t, got.CountFields)
	assert.Empty(t, got.AverageFields)
	assert.Equal(t, []string{"x", "y"}, set.SumFields, "original set must be untouched")
}

func TestReconcilePreservesUserOrder(t *testing.T) {
	set := Set{
		SumFields:     []string{"c", "a", "b"},
		CountFields:   []string{"b", "gone"},
		AverageFields: []string{"gone"},
	}

	got := set.Reconcile([]string{"a", "b", "c"})

	assert.Equal(t, []string{"c", "a", "b"}, got.SumFields)
	assert.Equal(t, []string{"b"}, got.CountFields)
	assert.Equal(t, []string{}, got.AverageFields)
}

func TestEmptyAndFields(t *testing.T) {
	assert.True(t, Empty().IsEmpty())
	assert.Equal(t, CurrentVersion, Empty().Version)

	set := Set{
		SumFields:     []string{"a", "b"},
		CountFields:   []string{"c", "a"},
		AverageFields: []string{"b", "d"},
	}
	assert.False(t, set.IsEmpty())
	assert.Equal(t, []string{"a", "b", "d", "c"}, set.Fields())
}
