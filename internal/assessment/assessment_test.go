package assessment

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"math"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/idlab-discover/GeoAccuRate-cli/internal/apperr"
	"github.com/idlab-discover/GeoAccuRate-cli/internal/finding"
	"github.com/idlab-discover/GeoAccuRate-cli/internal/labels"
)

// pairsFrom expands a count matrix (rows predicted, columns reference) into
// label pairs.
func pairsFrom(t *testing.T, classes []labels.ClassLabel, counts [][]int, opts ...labels.Option) labels.Pairs {
	t.Helper()
	var pred, ref []labels.ClassLabel
	for i, row := range counts {
		for j, n := range row {
			for range n {
				pred = append(pred, classes[i])
				ref = append(ref, classes[j])
			}
		}
	}
	p, err := labels.New(pred, ref, opts...)
	require.NoError(t, err)
	return p
}

func scenario(t *testing.T, opts ...labels.Option) labels.Pairs {
	return pairsFrom(t, []labels.ClassLabel{1, 2, 3}, [][]int{
		{50, 2, 1},
		{3, 45, 2},
		{0, 4, 48},
	}, opts...)
}

func fixedNow() time.Time { return time.Date(2024, 5, 1, 12, 0, 0, 0, time.FixedZone("CEST", 7200)) }

func TestRun_Scenario(t *testing.T) {
	opt := DefaultOptions()
	opt.Now = fixedNow
	opt.Version = "1.2.3"
	opt.Inputs = map[string]string{"labels": "samples.csv"}
	opt.Names = map[labels.ClassLabel]string{1: "Forest", 3: "Water"}

	rep, err := Run(context.Background(), scenario(t, labels.WithExcluded(2)), opt)
	require.NoError(t, err)

	assert.Equal(t, 155, rep.Matrix.Total)
	assert.InDelta(t, 143.0/155, rep.Metrics.Overall.Estimate, 1e-12)
	assert.True(t, rep.Metrics.Kappa.Defined)
	assert.InDelta(t, 1-rep.Metrics.Overall.Estimate, rep.Disagreement.Quantity+rep.Disagreement.Allocation, 1e-9)
	assert.Nil(t, rep.Area)

	// only the nodata info survives; every class has >= 25 reference samples
	require.Len(t, rep.Warnings, 1)
	assert.Equal(t, finding.RuleNodataExcluded, rep.Warnings[0].Rule)

	assert.Equal(t, []ClassInfo{{1, "Forest"}, {2, ""}, {3, "Water"}}, rep.Classes)
	assert.Equal(t, "Forest", rep.Name(1))
	assert.Equal(t, "2", rep.Name(2))

	pv := rep.Provenance
	_, err = uuid.Parse(pv.RunID)
	assert.NoError(t, err)
	assert.Equal(t, time.Date(2024, 5, 1, 10, 0, 0, 0, time.UTC), pv.Timestamp)
	assert.Equal(t, Tool, pv.Tool)
	assert.Equal(t, "1.2.3", pv.Version)
	assert.Equal(t, "samples.csv", pv.Inputs["labels"])
	assert.Equal(t, 155, pv.Samples)
	assert.Equal(t, 2, pv.Excluded)
	assert.InDelta(t, 1.959964, pv.Z, 1e-6)
}

func TestRun_RunIDsAreUnique(t *testing.T) {
	a, err := Run(context.Background(), scenario(t), DefaultOptions())
	require.NoError(t, err)
	b, err := Run(context.Background(), scenario(t), DefaultOptions())
	require.NoError(t, err)
	assert.NotEqual(t, a.Provenance.RunID, b.Provenance.RunID)
	assert.Equal(t, a.Metrics, b.Metrics)
}

func TestRun_Area(t *testing.T) {
	opt := DefaultOptions()
	opt.MappedArea = map[labels.ClassLabel]float64{1: 500, 2: 300, 3: 200}
	opt.AreaUnit = "ha"
	opt.Projected = true

	rep, err := Run(context.Background(), scenario(t), opt)
	require.NoError(t, err)
	require.NotNil(t, rep.Area)
	assert.Equal(t, "ha", rep.Area.Unit)
	assert.InDelta(t, 1000.0, rep.Area.TotalArea, 1e-9)

	var sum float64
	for _, ce := range rep.Area.Classes {
		sum += ce.Area
	}
	assert.InDelta(t, 1000.0, sum, 1e-9)
}

func TestRun_GeographicCRSAborts(t *testing.T) {
	opt := DefaultOptions()
	opt.MappedArea = map[labels.ClassLabel]float64{1: 500, 2: 300, 3: 200}

	var failed []Step
	opt.OnProgress = func(e Event) {
		if e.Type == EventStepFailed {
			failed = append(failed, e.Step)
		}
	}
	_, err := Run(context.Background(), scenario(t), opt)
	require.Error(t, err)
	assert.True(t, apperr.IsPrecondition(err))
	assert.Equal(t, []Step{StepArea}, failed)
}

func TestRun_Progress(t *testing.T) {
	var events []Event
	opt := DefaultOptions()
	opt.OnProgress = func(e Event) { events = append(events, e) }

	_, err := Run(context.Background(), scenario(t), opt)
	require.NoError(t, err)

	want := []Event{
		{Type: EventStepStart, Step: StepMatrix},
		{Type: EventStepComplete, Step: StepMatrix},
		{Type: EventStepStart, Step: StepMetrics},
		{Type: EventStepComplete, Step: StepMetrics},
		{Type: EventStepStart, Step: StepDisagreement},
		{Type: EventStepComplete, Step: StepDisagreement},
		{Type: EventStepSkipped, Step: StepArea},
		{Type: EventStepStart, Step: StepRules},
		{Type: EventStepComplete, Step: StepRules},
	}
	assert.Equal(t, want, events)
}

func TestRun_Cancelled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err := Run(ctx, scenario(t), DefaultOptions())
	require.Error(t, err)
	assert.True(t, errors.Is(err, context.Canceled))
}

func TestRun_MappingAndExplicitClasses(t *testing.T) {
	// predicted code 10 is the map's code for reference class 1
	p, err := labels.New(
		[]labels.ClassLabel{10, 10, 2, 2},
		[]labels.ClassLabel{1, 1, 2, 1},
	)
	require.NoError(t, err)

	opt := DefaultOptions()
	opt.Mapping = map[labels.ClassLabel]labels.ClassLabel{10: 1}
	opt.Classes = []labels.ClassLabel{1, 2, 4}

	rep, err := Run(context.Background(), p, opt)
	require.NoError(t, err)
	assert.Equal(t, []labels.ClassLabel{1, 2, 4}, rep.Matrix.Classes)
	assert.InDelta(t, 0.75, rep.Metrics.Overall.Estimate, 1e-12)

	// class 4 is empty on both axes
	cm := rep.Metrics.Classes[2]
	assert.False(t, cm.Producers.Defined)
	assert.False(t, cm.Users.Defined)
	assert.True(t, math.IsNaN(cm.F1.Estimate))
	assert.True(t, finding.HasSeverity(rep.Warnings, finding.SeverityWarning))
}

func TestRun_InvalidOptions(t *testing.T) {
	opt := DefaultOptions()
	opt.Confidence = 1.5
	_, err := Run(context.Background(), scenario(t), opt)
	var ie *apperr.InvalidInputError
	require.ErrorAs(t, err, &ie)
	assert.Equal(t, "confidence", ie.Param)

	opt = DefaultOptions()
	opt.Thresholds.MinClassSamples = -1
	_, err = Run(context.Background(), scenario(t), opt)
	require.ErrorAs(t, err, &ie)
	assert.Equal(t, "thresholds.min_class_samples", ie.Param)
}

func TestReport_JSONHasNullForUndefined(t *testing.T) {
	p, err := labels.New([]labels.ClassLabel{1, 1}, []labels.ClassLabel{1, 1})
	require.NoError(t, err)
	rep, err := Run(context.Background(), p, DefaultOptions())
	require.NoError(t, err)

	b, err := json.Marshal(rep)
	require.NoError(t, err)

	var doc map[string]any
	require.NoError(t, json.Unmarshal(b, &doc))
	kappa := doc["metrics"].(map[string]any)["kappa"].(map[string]any)
	assert.Nil(t, kappa["estimate"])
	assert.Equal(t, false, kappa["defined"])
}

func TestLogger(t *testing.T) {
	var buf bytes.Buffer
	SetLogger(&buf)
	defer SetLogger(nil)

	rep, err := Run(context.Background(), scenario(t), DefaultOptions())
	require.NoError(t, err)
	assert.Contains(t, buf.String(), "run="+rep.Provenance.RunID)
	assert.Contains(t, buf.String(), "Building confusion matrix: done")
}
