package wizard

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/idlab-discover/GeoAccuRate-cli/internal/apperr"
	"github.com/idlab-discover/GeoAccuRate-cli/internal/labels"
	"github.com/idlab-discover/GeoAccuRate-cli/internal/sampling"
)

func TestValues_RoundTripDefaults(t *testing.T) {
	p := sampling.DefaultDesignParams()
	v := newValues(p)

	assert.Equal(t, "0.95", v.confidence)
	assert.Equal(t, "0.85", v.expected)
	assert.Equal(t, "0.05", v.margin)
	assert.Equal(t, "42", v.seed)

	got, err := v.apply(p)
	require.NoError(t, err)
	assert.Equal(t, p, got)
}

func TestValues_ApplyEdits(t *testing.T) {
	v := newValues(sampling.DefaultDesignParams())
	v.confidence = " 0.9 "
	v.total = "300"
	v.minDistance = "120.5"
	v.seed = "7"
	v.fpc = false
	v.policy = sampling.Equal
	v.scope = sampling.SpacingGlobal

	got, err := v.apply(sampling.DefaultDesignParams())
	require.NoError(t, err)
	assert.Equal(t, 0.9, got.Confidence)
	assert.Equal(t, 300, got.Total)
	assert.Equal(t, 120.5, got.MinDistance)
	assert.Equal(t, uint64(7), got.Seed)
	assert.False(t, got.FinitePopulation)
	assert.Equal(t, sampling.Equal, got.Policy)
	assert.Equal(t, sampling.SpacingGlobal, got.SpacingScope)
}

func TestValues_ManualFallsBackToProportional(t *testing.T) {
	p := sampling.DefaultDesignParams()
	p.Policy = sampling.Manual
	p.Counts = map[labels.ClassLabel]int{1: 10}

	v := newValues(p)
	assert.Equal(t, sampling.Proportional, v.policy)

	got, err := v.apply(p)
	require.NoError(t, err)
	assert.Nil(t, got.Counts)
}

func TestValues_ApplyRejects(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*designValues)
		param  string
	}{
		{"confidence of one", func(v *designValues) { v.confidence = "1" }, "confidence"},
		{"expected not a number", func(v *designValues) { v.expected = "high" }, "expected_accuracy"},
		{"zero margin", func(v *designValues) { v.margin = "0" }, "margin_of_error"},
		{"negative total", func(v *designValues) { v.total = "-5" }, "total"},
		{"zero minimum", func(v *designValues) { v.minPerClass = "0" }, "min_per_class"},
		{"negative distance", func(v *designValues) { v.minDistance = "-1" }, "min_distance"},
		{"negative seed", func(v *designValues) { v.seed = "-1" }, "seed"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			v := newValues(sampling.DefaultDesignParams())
			tt.mutate(v)
			_, err := v.apply(sampling.DefaultDesignParams())
			var ie *apperr.InvalidInputError
			require.ErrorAs(t, err, &ie)
			assert.Equal(t, tt.param, ie.Param)
		})
	}
}

func TestForm_Builds(t *testing.T) {
	v := newValues(sampling.DefaultDesignParams())
	assert.NotNil(t, v.form())
}
