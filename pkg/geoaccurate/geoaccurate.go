// Package geoaccurate is the library entry point for accuracy assessment
// and sample design. It wraps the internal pipeline so callers can embed
// the same computations the CLI runs.
package geoaccurate

import (
	"context"

	"github.com/idlab-discover/GeoAccuRate-cli/internal/assessment"
	"github.com/idlab-discover/GeoAccuRate-cli/internal/finding"
	geoio "github.com/idlab-discover/GeoAccuRate-cli/internal/io"
	"github.com/idlab-discover/GeoAccuRate-cli/internal/labels"
	"github.com/idlab-discover/GeoAccuRate-cli/internal/methods"
	"github.com/idlab-discover/GeoAccuRate-cli/internal/sampling"
)

type (
	ClassLabel = labels.ClassLabel
	Pairs      = labels.Pairs

	Options = assessment.Options
	Report  = assessment.Report

	DesignParams = sampling.DesignParams
	Stratum      = sampling.Stratum
	SampleDesign = sampling.Design
	Candidate    = sampling.Candidate
	Sample       = sampling.Sample

	Finding = finding.Finding
)

// NewPairs builds validated label pairs. weights may be nil.
func NewPairs(predicted, reference []ClassLabel, weights []float64) (Pairs, error) {
	if weights == nil {
		return labels.New(predicted, reference)
	}
	return labels.New(predicted, reference, labels.WithWeights(weights))
}

// DefaultOptions returns the assessment defaults (95% confidence).
func DefaultOptions() Options { return assessment.DefaultOptions() }

// DefaultDesignParams returns the design defaults.
func DefaultDesignParams() DesignParams { return sampling.DefaultDesignParams() }

// Assess runs the full assessment over pairs.
func Assess(ctx context.Context, pairs Pairs, opt Options) (*Report, error) {
	return assessment.Run(ctx, pairs, opt)
}

// AssessFile reads a label CSV with the default columns, dropping pairs
// where either side is one of nodata, and assesses it.
func AssessFile(ctx context.Context, path string, nodata []ClassLabel, opt Options) (*Report, error) {
	pairs, err := geoio.ReadLabels(path, geoio.LabelOptions{Nodata: nodata})
	if err != nil {
		return nil, err
	}
	if opt.Inputs == nil {
		opt.Inputs = map[string]string{"labels": path}
	}
	return assessment.Run(ctx, pairs, opt)
}

// Design computes the sample size and stratum allocation.
func Design(params DesignParams, strata []Stratum) (SampleDesign, error) {
	return sampling.NewDesign(params, strata)
}

// Generate draws the designed points from candidates. Strata that could
// not be filled are reported as findings, not errors.
func Generate(design SampleDesign, candidates []Candidate) (Sample, []Finding, error) {
	return design.Generate(candidates, nil)
}

// MethodsText renders the methods paragraph for r, followed by the
// reference list.
func MethodsText(r *Report, design *SampleDesign) string {
	var opt methods.Options
	if design != nil {
		opt.Sampling = methods.SamplingSentence(string(design.Allocation.Policy))
	}
	return methods.Text(r, opt) + "\n\nReferences\n\n" + methods.ReferenceList()
}
