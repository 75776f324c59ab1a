// Package assessment runs the accuracy assessment pipeline:
// label pairs → confusion matrix → {metrics, disagreement, area} → rules,
// and wraps the results in a serialisable Report with provenance.
package assessment

import (
	"context"
	"fmt"
	"maps"
	"time"

	"github.com/google/uuid"

	"github.com/idlab-discover/GeoAccuRate-cli/internal/apperr"
	"github.com/idlab-discover/GeoAccuRate-cli/internal/area"
	"github.com/idlab-discover/GeoAccuRate-cli/internal/disagreement"
	"github.com/idlab-discover/GeoAccuRate-cli/internal/finding"
	"github.com/idlab-discover/GeoAccuRate-cli/internal/labels"
	"github.com/idlab-discover/GeoAccuRate-cli/internal/matrix"
	"github.com/idlab-discover/GeoAccuRate-cli/internal/metrics"
	"github.com/idlab-discover/GeoAccuRate-cli/internal/rules"
)

// Tool is the name recorded in provenance.
const Tool = "geoaccurate-cli"

// Options configures Run.
type Options struct {
	Confidence float64 `json:"confidence" yaml:"confidence" validate:"gt=0,lt=1"`
	// Z overrides the critical value derived from Confidence when > 0.
	Z float64 `json:"z,omitempty" yaml:"z,omitempty" validate:"gte=0"`
	// Classes fixes the matrix class set; empty means the observed union.
	Classes []labels.ClassLabel `json:"classes,omitempty" yaml:"classes,omitempty"`
	// Mapping translates predicted codes before the matrix is built.
	Mapping map[labels.ClassLabel]labels.ClassLabel `json:"mapping,omitempty" yaml:"mapping,omitempty"`
	Names   map[labels.ClassLabel]string            `json:"-" yaml:"-"`

	// MappedArea enables area estimation when non-nil.
	MappedArea map[labels.ClassLabel]float64 `json:"-" yaml:"-"`
	AreaUnit   string                        `json:"area_unit,omitempty" yaml:"area_unit,omitempty"`
	Projected  bool                          `json:"projected" yaml:"projected"`

	Thresholds rules.Thresholds `json:"thresholds" yaml:"thresholds"`

	// Seed of the sample design the labels came from, recorded as-is.
	Seed *uint64 `json:"seed,omitempty" yaml:"seed,omitempty"`
	// Inputs maps an input role ("labels", "areas") to its source.
	Inputs  map[string]string `json:"-" yaml:"-"`
	Version string            `json:"-" yaml:"-"`

	OnProgress ProgressCallback `json:"-" yaml:"-"`
	// Now is used for the provenance timestamp; nil means time.Now.
	Now func() time.Time `json:"-" yaml:"-"`
}

// DefaultOptions mirror config/defaults.yaml.
func DefaultOptions() Options {
	return Options{
		Confidence: 0.95,
		Thresholds: rules.DefaultThresholds(),
		Version:    "dev",
	}
}

// ClassInfo names a class of the report.
type ClassInfo struct {
	Class labels.ClassLabel `json:"class" yaml:"class"`
	Name  string            `json:"name,omitempty" yaml:"name,omitempty"`
}

// Provenance records how a report was produced.
type Provenance struct {
	RunID       string            `json:"run_id" yaml:"run_id"`
	Timestamp   time.Time         `json:"timestamp" yaml:"timestamp"`
	Tool        string            `json:"tool" yaml:"tool"`
	Version     string            `json:"version" yaml:"version"`
	Inputs      map[string]string `json:"inputs,omitempty" yaml:"inputs,omitempty"`
	Parameters  Options           `json:"parameters" yaml:"parameters"`
	Z           float64           `json:"z" yaml:"z"`
	Samples     int               `json:"samples" yaml:"samples"`
	Excluded    int               `json:"excluded_nodata" yaml:"excluded_nodata"`
	WeightTotal float64           `json:"weight_total,omitempty" yaml:"weight_total,omitempty"`
}

// Report is the complete, serialisable outcome of an assessment.
type Report struct {
	Provenance   Provenance          `json:"provenance" yaml:"provenance"`
	Classes      []ClassInfo         `json:"classes" yaml:"classes"`
	Matrix       matrix.Table        `json:"confusion_matrix" yaml:"confusion_matrix"`
	Metrics      metrics.Set         `json:"metrics" yaml:"metrics"`
	Disagreement disagreement.Result `json:"disagreement" yaml:"disagreement"`
	Area         *area.Result        `json:"area,omitempty" yaml:"area,omitempty"`
	Warnings     []finding.Warning   `json:"warnings" yaml:"warnings"`
}

// Name returns the display name of c, or its code.
func (r *Report) Name(c labels.ClassLabel) string {
	for _, ci := range r.Classes {
		if ci.Class == c && ci.Name != "" {
			return ci.Name
		}
	}
	return c.String()
}

// Run executes the pipeline. Degenerate inputs produce warnings; invalid
// inputs, a geographic CRS with area estimation, or a cancelled context
// abort with an error.
func Run(ctx context.Context, p labels.Pairs, opt Options) (*Report, error) {
	if err := apperr.Validate(opt); err != nil {
		return nil, err
	}
	z := opt.Z
	if z == 0 {
		var err error
		if z, err = metrics.ZForConfidence(opt.Confidence); err != nil {
			return nil, err
		}
	}
	progress := opt.OnProgress
	if progress == nil {
		progress = func(Event) {}
	}
	now := opt.Now
	if now == nil {
		now = time.Now
	}

	runID := uuid.New().String()
	logf(runID, "start (samples=%d excluded=%d)", p.Len(), p.Excluded())

	if len(opt.Mapping) > 0 {
		p = p.Remap(opt.Mapping)
		logf(runID, "remapped %d predicted codes", len(opt.Mapping))
	}

	var (
		m   matrix.Matrix
		raw []finding.Finding
		rep = &Report{}
	)
	steps := []struct {
		step Step
		skip bool
		run  func() error
	}{
		{StepMatrix, false, func() error {
			var err error
			if m, err = matrix.Build(p, opt.Classes...); err != nil {
				return err
			}
			rep.Matrix = m.Table()
			return nil
		}},
		{StepMetrics, false, func() error {
			set, fs := metrics.Compute(m, z)
			rep.Metrics = set
			raw = append(raw, fs...)
			return nil
		}},
		{StepDisagreement, false, func() error {
			d, fs, err := disagreement.Compute(m)
			if err != nil {
				return err
			}
			rep.Disagreement = d
			raw = append(raw, fs...)
			return nil
		}},
		{StepArea, opt.MappedArea == nil, func() error {
			a, fs, err := area.Estimate(m, area.Params{
				MappedArea: opt.MappedArea,
				Unit:       opt.AreaUnit,
				Projected:  opt.Projected,
				Z:          z,
			})
			if err != nil {
				return err
			}
			rep.Area = &a
			raw = append(raw, fs...)
			return nil
		}},
		{StepRules, false, func() error {
			rep.Warnings = rules.Evaluate(rules.Input{
				Pairs:    &p,
				Matrix:   &m,
				Findings: raw,
			}, opt.Thresholds, opt.Names)
			return nil
		}},
	}

	for _, s := range steps {
		if err := ctx.Err(); err != nil {
			logf(runID, "cancelled before: %s", s.step)
			return nil, fmt.Errorf("assessment cancelled: %w", err)
		}
		if s.skip {
			progress(Event{Type: EventStepSkipped, Step: s.step})
			continue
		}
		progress(Event{Type: EventStepStart, Step: s.step})
		if err := s.run(); err != nil {
			logf(runID, "%s: failed (%v)", s.step, err)
			progress(Event{Type: EventStepFailed, Step: s.step, Err: err})
			return nil, err
		}
		progress(Event{Type: EventStepComplete, Step: s.step})
		logf(runID, "%s: done", s.step)
	}

	for _, c := range m.Classes() {
		rep.Classes = append(rep.Classes, ClassInfo{Class: c, Name: opt.Names[c]})
	}
	rep.Provenance = Provenance{
		RunID:      runID,
		Timestamp:  now().UTC(),
		Tool:       Tool,
		Version:    opt.Version,
		Inputs:     maps.Clone(opt.Inputs),
		Parameters: opt,
		Z:          z,
		Samples:    p.Len(),
		Excluded:   p.Excluded(),
	}
	if p.HasWeights() {
		rep.Provenance.WeightTotal = p.WeightTotal()
	}
	logf(runID, "done (%d warnings)", len(rep.Warnings))
	return rep, nil
}
