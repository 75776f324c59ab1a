package metrics

import (
	"encoding/json"
	"math"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.yaml.in/yaml/v3"

	"github.com/idlab-discover/GeoAccuRate-cli/internal/apperr"
	"github.com/idlab-discover/GeoAccuRate-cli/internal/finding"
	"github.com/idlab-discover/GeoAccuRate-cli/internal/labels"
	"github.com/idlab-discover/GeoAccuRate-cli/internal/matrix"
)

const z95 = 1.959963984540054

func threeClass(t *testing.T) matrix.Matrix {
	t.Helper()
	m, err := matrix.FromCounts([]labels.ClassLabel{1, 2, 3}, [][]int{
		{50, 2, 1},
		{3, 45, 2},
		{0, 4, 48},
	})
	require.NoError(t, err)
	return m
}

func TestWilson_KnownValues(t *testing.T) {
	iv, ok := Wilson(0.5, 100, 1.96)
	require.True(t, ok)
	assert.InDelta(t, 0.4038298, iv.Lower, 1e-6)
	assert.InDelta(t, 0.5961702, iv.Upper, 1e-6)

	iv, _ = Wilson(1, 10, 1.96)
	assert.InDelta(t, 0.7224598, iv.Lower, 1e-6)
	assert.Equal(t, 1.0, iv.Upper)

	iv, _ = Wilson(0, 10, 1.96)
	assert.Equal(t, 0.0, iv.Lower)
	assert.InDelta(t, 0.2775402, iv.Upper, 1e-6)
}

func TestWilson_ZeroTrials(t *testing.T) {
	iv, ok := Wilson(0.3, 0, 1.96)
	assert.False(t, ok)
	assert.Equal(t, Interval{Lower: 0, Upper: 1}, iv)
}

func TestWilson_BoundsAndMonotonicWidth(t *testing.T) {
	for _, p := range []float64{0, 0.01, 0.25, 0.5, 0.9, 1} {
		prev := math.Inf(1)
		for _, n := range []float64{1, 2, 5, 10, 50, 100, 1000, 10000} {
			iv, ok := Wilson(p, n, z95)
			require.True(t, ok)
			assert.GreaterOrEqual(t, iv.Lower, 0.0)
			assert.LessOrEqual(t, iv.Upper, 1.0)
			assert.True(t, iv.Contains(p), "p=%v n=%v interval %+v", p, n, iv)
			assert.Less(t, iv.Width(), prev, "width must shrink: p=%v n=%v", p, n)
			prev = iv.Width()
		}
	}
}

func TestZForConfidence(t *testing.T) {
	z, err := ZForConfidence(0.95)
	require.NoError(t, err)
	assert.InDelta(t, 1.959964, z, 1e-6)

	z, err = ZForConfidence(0.99)
	require.NoError(t, err)
	assert.InDelta(t, 2.575829, z, 1e-6)

	assert.InDelta(t, 0.95, ConfidenceForZ(z95), 1e-9)

	for _, c := range []float64{0, 1, -0.5, 1.5, math.NaN()} {
		_, err := ZForConfidence(c)
		assert.True(t, apperr.IsInvalidInput(err), "confidence %v", c)
	}
}

func TestCompute_ThreeClassScenario(t *testing.T) {
	m := threeClass(t)
	s, fs := Compute(m, z95)
	assert.Empty(t, fs)

	assert.True(t, s.Overall.Defined)
	assert.InDelta(t, 143.0/155.0, s.Overall.Estimate, 1e-12)
	assert.InDelta(t, 0.86956, s.Overall.Interval.Lower, 1e-4)
	assert.InDelta(t, 0.95516, s.Overall.Interval.Upper, 1e-4)

	require.True(t, s.Kappa.Defined)
	assert.False(t, math.IsNaN(s.Kappa.Estimate) || math.IsInf(s.Kappa.Estimate, 0))
	assert.InDelta(t, 0.8838516, s.Kappa.Estimate, 1e-6)
	assert.InDelta(t, 8011.0/24025.0, s.ChanceAgreement, 1e-12)
	assert.True(t, s.Kappa.Interval.Contains(s.Kappa.Estimate))

	require.Len(t, s.Classes, 3)
	water := s.Classes[1]
	assert.Equal(t, labels.ClassLabel(2), water.Class)
	assert.Equal(t, 50, water.Predicted)
	assert.Equal(t, 51, water.Reference)
	assert.InDelta(t, 45.0/51.0, water.Producers.Estimate, 1e-12)
	assert.InDelta(t, 45.0/50.0, water.Users.Estimate, 1e-12)
	pa, ua := 45.0/51.0, 45.0/50.0
	assert.InDelta(t, 2*pa*ua/(pa+ua), water.F1.Estimate, 1e-12)
	assert.InDelta(t, 50.5, water.F1.Trials, 1e-12)

	for _, cm := range s.Classes {
		for _, r := range []Result{cm.Producers, cm.Users, cm.F1} {
			assert.True(t, r.Defined)
			assert.LessOrEqual(t, 0.0, r.Interval.Lower)
			assert.LessOrEqual(t, r.Interval.Lower, r.Estimate)
			assert.LessOrEqual(t, r.Estimate, r.Interval.Upper)
			assert.LessOrEqual(t, r.Interval.Upper, 1.0)
		}
	}
}

func TestCompute_ZeroReferenceClass(t *testing.T) {
	// class 3 is predicted but never observed in the reference data
	m, err := matrix.FromCounts([]labels.ClassLabel{1, 2, 3}, [][]int{
		{10, 1, 0},
		{2, 12, 0},
		{1, 1, 0},
	})
	require.NoError(t, err)

	s, fs := Compute(m, z95)
	pa := s.Classes[2].Producers
	assert.False(t, pa.Defined)
	assert.True(t, math.IsNaN(pa.Estimate))
	assert.Equal(t, Interval{Lower: 0, Upper: 1}, pa.Interval)

	ua := s.Classes[2].Users
	require.True(t, ua.Defined)
	assert.Equal(t, 0.0, ua.Estimate)

	assert.False(t, s.Classes[2].F1.Defined)

	var rules []finding.RuleID
	for _, f := range fs {
		assert.Equal(t, labels.ClassLabel(3), f.Entity.ID)
		rules = append(rules, f.Rule)
	}
	assert.Equal(t, []finding.RuleID{finding.RuleUndefinedProducers, finding.RuleUndefinedF1}, rules)
}

func TestF1_BothZero(t *testing.T) {
	m, err := matrix.FromCounts([]labels.ClassLabel{1, 2}, [][]int{
		{0, 5},
		{5, 0},
	})
	require.NoError(t, err)
	s, _ := Compute(m, z95)

	for _, cm := range s.Classes {
		require.True(t, cm.F1.Defined)
		assert.Equal(t, 0.0, cm.F1.Estimate)
	}
	assert.InDelta(t, -1.0, s.Kappa.Estimate, 1e-12)
	assert.GreaterOrEqual(t, s.Kappa.Interval.Lower, -1.0)
}

func TestKappa_SingleClassUndefined(t *testing.T) {
	m, err := matrix.FromCounts([]labels.ClassLabel{7}, [][]int{{20}})
	require.NoError(t, err)

	s, fs := Compute(m, z95)
	assert.False(t, s.Kappa.Defined)
	assert.True(t, math.IsNaN(s.Kappa.Estimate))
	assert.Equal(t, Kappa.Domain(), s.Kappa.Interval)
	assert.Equal(t, 1.0, s.Overall.Estimate)

	require.Len(t, fs, 1)
	assert.Equal(t, finding.RuleUndefinedKappa, fs[0].Rule)
	assert.Equal(t, finding.ScopeGlobal, fs[0].Entity.Scope)
}

func TestCompute_Idempotent(t *testing.T) {
	m := threeClass(t)
	a, fa := Compute(m, z95)
	b, fb := Compute(m, z95)

	ja, err := json.Marshal(a)
	require.NoError(t, err)
	jb, err := json.Marshal(b)
	require.NoError(t, err)
	assert.Equal(t, string(ja), string(jb))
	assert.Equal(t, fa, fb)
	assert.Equal(t, math.Float64bits(a.Kappa.Estimate), math.Float64bits(b.Kappa.Estimate))
}

func TestResult_UndefinedSerializesAsNull(t *testing.T) {
	r := Undefined(ProducersAccuracy, 4)

	b, err := json.Marshal(r)
	require.NoError(t, err)
	assert.Contains(t, string(b), `"estimate":null`)
	assert.Contains(t, string(b), `"kind":"producers_accuracy"`)
	assert.Contains(t, string(b), `"class":4`)

	y, err := yaml.Marshal(r)
	require.NoError(t, err)
	assert.True(t, strings.Contains(string(y), "estimate: null"), "yaml: %s", y)

	g, err := json.Marshal(Result{Kind: OverallAccuracy, Estimate: 0.9, Defined: true})
	require.NoError(t, err)
	assert.NotContains(t, string(g), `"class"`)
}

func TestSet_Get(t *testing.T) {
	s, _ := Compute(threeClass(t), z95)

	for _, k := range Kinds {
		r, ok := s.Get(k, 2)
		require.True(t, ok, k.String())
		assert.Equal(t, k, r.Kind)
	}
	_, ok := s.Get(UsersAccuracy, 99)
	assert.False(t, ok)
}

func TestKind_Text(t *testing.T) {
	for _, k := range Kinds {
		b, err := k.MarshalText()
		require.NoError(t, err)
		var back Kind
		require.NoError(t, back.UnmarshalText(b))
		assert.Equal(t, k, back)
		assert.NotEmpty(t, k.Label())
	}
	var k Kind
	assert.Error(t, k.UnmarshalText([]byte("rmse")))
}
