// Package labels holds the validated input of an accuracy assessment: paired
// predicted/reference class codes for each reference sample.
package labels

import (
	"math"
	"slices"
	"strconv"

	"github.com/idlab-discover/GeoAccuRate-cli/internal/apperr"
)

// ClassLabel identifies a land-cover / land-use class.
type ClassLabel int

func (c ClassLabel) String() string { return strconv.Itoa(int(c)) }

// Pairs is a validated batch of (predicted, reference) labels. Nodata samples
// are never part of a batch; the caller filters them and reports the count
// through WithExcluded.
type Pairs struct {
	predicted []ClassLabel
	reference []ClassLabel
	weights   []float64
	excluded  int
}

// Option configures New.
type Option func(*Pairs)

// WithWeights attaches one non-negative area weight per sample.
func WithWeights(w []float64) Option {
	return func(p *Pairs) {
		p.weights = slices.Clone(w)
	}
}

// WithExcluded records how many samples were dropped upstream as nodata.
func WithExcluded(n int) Option {
	return func(p *Pairs) {
		p.excluded = n
	}
}

// New validates and copies the label sequences.
func New(predicted, reference []ClassLabel, opts ...Option) (Pairs, error) {
	if len(predicted) != len(reference) {
		return Pairs{}, apperr.Invalidf("predicted",
			"length %d does not match reference length %d", len(predicted), len(reference))
	}
	if len(predicted) == 0 {
		return Pairs{}, apperr.Invalid("predicted", "no label pairs supplied")
	}

	p := Pairs{
		predicted: slices.Clone(predicted),
		reference: slices.Clone(reference),
	}
	for _, opt := range opts {
		opt(&p)
	}

	if p.excluded < 0 {
		return Pairs{}, apperr.Invalidf("excluded", "must be >= 0, got %d", p.excluded)
	}
	if p.weights != nil {
		if len(p.weights) != len(p.predicted) {
			return Pairs{}, apperr.Invalidf("weights",
				"length %d does not match label length %d", len(p.weights), len(p.predicted))
		}
		for i, w := range p.weights {
			if math.IsNaN(w) || math.IsInf(w, 0) || w < 0 {
				return Pairs{}, apperr.Invalidf("weights["+strconv.Itoa(i)+"]",
					"must be finite and >= 0, got %v", w)
			}
		}
	}
	return p, nil
}

// Len returns the number of label pairs.
func (p Pairs) Len() int { return len(p.predicted) }

// At returns the i-th pair.
func (p Pairs) At(i int) (predicted, reference ClassLabel) {
	return p.predicted[i], p.reference[i]
}

func (p Pairs) Predicted() []ClassLabel { return slices.Clone(p.predicted) }
func (p Pairs) Reference() []ClassLabel { return slices.Clone(p.reference) }

// Weights returns a copy of the per-sample weights, or nil.
func (p Pairs) Weights() []float64 { return slices.Clone(p.weights) }

func (p Pairs) HasWeights() bool { return p.weights != nil }

// WeightTotal sums the per-sample weights (0 when none are attached).
func (p Pairs) WeightTotal() float64 {
	var s float64
	for _, w := range p.weights {
		s += w
	}
	return s
}

// Excluded is the number of nodata samples filtered before this batch.
func (p Pairs) Excluded() int { return p.excluded }

// Classes returns the sorted union of predicted and reference labels.
func (p Pairs) Classes() []ClassLabel {
	set := make(map[ClassLabel]struct{})
	for i := range p.predicted {
		set[p.predicted[i]] = struct{}{}
		set[p.reference[i]] = struct{}{}
	}
	return SortedSet(set)
}

// PredictedClasses returns the sorted set of predicted labels.
func (p Pairs) PredictedClasses() []ClassLabel { return distinct(p.predicted) }

// ReferenceClasses returns the sorted set of reference labels.
func (p Pairs) ReferenceClasses() []ClassLabel { return distinct(p.reference) }

// ReferenceCounts counts samples per reference class.
func (p Pairs) ReferenceCounts() map[ClassLabel]int {
	out := make(map[ClassLabel]int)
	for _, r := range p.reference {
		out[r]++
	}
	return out
}

// Remap returns a copy with predicted codes translated through mapping.
// Codes absent from mapping are kept as-is.
func (p Pairs) Remap(mapping map[ClassLabel]ClassLabel) Pairs {
	out := p
	out.predicted = make([]ClassLabel, len(p.predicted))
	for i, c := range p.predicted {
		if to, ok := mapping[c]; ok {
			c = to
		}
		out.predicted[i] = c
	}
	out.reference = slices.Clone(p.reference)
	out.weights = slices.Clone(p.weights)
	return out
}

// SortedSet returns the keys of set in ascending order.
func SortedSet(set map[ClassLabel]struct{}) []ClassLabel {
	out := make([]ClassLabel, 0, len(set))
	for c := range set {
		out = append(out, c)
	}
	slices.Sort(out)
	return out
}

func distinct(in []ClassLabel) []ClassLabel {
	set := make(map[ClassLabel]struct{}, len(in))
	for _, c := range in {
		set[c] = struct{}{}
	}
	return SortedSet(set)
}
