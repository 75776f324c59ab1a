// Package rules holds the stateless validation rules. Each Check function is
// a pure predicate over one input and returns raw findings; Evaluate runs the
// applicable checks and reduces everything into warnings. Nothing is cached:
// callers re-run Evaluate whenever an input changes.
package rules

import (
	"slices"

	"github.com/idlab-discover/GeoAccuRate-cli/internal/finding"
	"github.com/idlab-discover/GeoAccuRate-cli/internal/labels"
	"github.com/idlab-discover/GeoAccuRate-cli/internal/matrix"
	"github.com/idlab-discover/GeoAccuRate-cli/internal/sampling"
)

// Thresholds are the sample-count minimums below which a warning is raised.
type Thresholds struct {
	MinTotalSamples int `json:"min_total_samples" yaml:"min_total_samples" validate:"gte=0"`
	MinClassSamples int `json:"min_class_samples" yaml:"min_class_samples" validate:"gte=0"`
}

// DefaultThresholds follow the usual literature minimums: 50 samples overall
// and 25 per class (Congalton & Green, 2019).
func DefaultThresholds() Thresholds {
	return Thresholds{MinTotalSamples: 50, MinClassSamples: 25}
}

// CheckInputs reports facts about the label pairs themselves: excluded
// nodata samples and classes that occur on one axis only.
func CheckInputs(p labels.Pairs) []finding.Finding {
	var fs []finding.Finding
	if n := p.Excluded(); n > 0 {
		fs = append(fs, finding.Info(finding.RuleNodataExcluded, finding.Global(),
			"%d samples excluded as nodata", n))
	}

	pred, ref := p.PredictedClasses(), p.ReferenceClasses()
	for _, c := range pred {
		if _, ok := slices.BinarySearch(ref, c); !ok {
			fs = append(fs, finding.New(finding.RulePredictedOnlyClass, finding.Class(c),
				"class occurs in the map but never in the reference data; producer's accuracy is undefined"))
		}
	}
	for _, c := range ref {
		if _, ok := slices.BinarySearch(pred, c); !ok {
			fs = append(fs, finding.New(finding.RuleReferenceOnlyClass, finding.Class(c),
				"class occurs in the reference data but is never mapped; user's accuracy is undefined"))
		}
	}
	return fs
}

// CheckMatrix flags under-sampled matrices and classes, and empty rows or
// columns. Class sample counts are reference (column) marginals.
func CheckMatrix(m matrix.Matrix, t Thresholds) []finding.Finding {
	var fs []finding.Finding
	if n := m.Total(); n < t.MinTotalSamples {
		fs = append(fs, finding.New(finding.RuleLowTotalSamples, finding.Global(),
			"only %d reference samples (recommended minimum %d)", n, t.MinTotalSamples))
	}
	for j := range m.Size() {
		if n := m.ColTotal(j); n < t.MinClassSamples {
			fs = append(fs, finding.New(finding.RuleLowClassSamples, finding.Class(m.Class(j)),
				"only %d reference samples (recommended minimum %d)", n, t.MinClassSamples))
		}
	}
	for _, c := range m.EmptyRows() {
		fs = append(fs, finding.New(finding.RuleEmptyRow, finding.Class(c),
			"no samples mapped as this class; its normalised row is all zero"))
	}
	for _, c := range m.EmptyColumns() {
		fs = append(fs, finding.New(finding.RuleEmptyColumn, finding.Class(c),
			"no reference samples of this class; its normalised column is all zero"))
	}
	return fs
}

// CheckAllocation flags strata allocated fewer than minPerClass samples and
// strata allocated more samples than they have pixels. Neither is corrected.
func CheckAllocation(a sampling.Allocation, minPerClass int) []finding.Finding {
	var fs []finding.Finding
	for _, s := range a.Strata {
		if s.Samples < minPerClass {
			fs = append(fs, finding.New(finding.RuleAllocationBelowMin, finding.Stratum(s.Class),
				"%d samples allocated, below the minimum of %d", s.Samples, minPerClass))
		}
		if s.Samples > s.Pixels {
			fs = append(fs, finding.New(finding.RuleAllocationOverCapacity, finding.Stratum(s.Class),
				"%d samples allocated but the stratum has only %d pixels", s.Samples, s.Pixels))
		}
	}
	return fs
}

// CheckArea reports the projected-CRS precondition of area estimation as an
// error-severity finding, so it can be listed next to the other warnings
// before anything is computed.
func CheckArea(projected bool) []finding.Finding {
	if projected {
		return nil
	}
	return []finding.Finding{finding.Error(finding.RuleGeographicCRS, finding.Global(),
		"projected CRS required for area estimation")}
}

// Input collects whatever is available for evaluation. Nil fields are
// skipped.
type Input struct {
	Pairs      *labels.Pairs
	Matrix     *matrix.Matrix
	Allocation *sampling.Allocation
	// MinPerClass is the allocation minimum; 0 falls back to
	// Thresholds.MinClassSamples.
	MinPerClass int
	// Area is true when area estimation was requested.
	Area      bool
	Projected bool
	// Findings emitted by the engines while computing.
	Findings []finding.Finding
}

// Evaluate runs every applicable check and reduces the findings into
// warnings enriched with class names.
func Evaluate(in Input, t Thresholds, names map[labels.ClassLabel]string) []finding.Warning {
	var raw []finding.Finding
	if in.Pairs != nil {
		raw = append(raw, CheckInputs(*in.Pairs)...)
	}
	if in.Matrix != nil {
		raw = append(raw, CheckMatrix(*in.Matrix, t)...)
	}
	if in.Allocation != nil {
		minimum := in.MinPerClass
		if minimum == 0 {
			minimum = t.MinClassSamples
		}
		raw = append(raw, CheckAllocation(*in.Allocation, minimum)...)
	}
	if in.Area {
		raw = append(raw, CheckArea(in.Projected)...)
	}
	raw = append(raw, in.Findings...)

	ws := finding.Reduce(raw, names)
	logf("%d findings reduced to %d warnings", len(raw), len(ws))
	return ws
}
