package sampling

import (
	"github.com/idlab-discover/GeoAccuRate-cli/internal/apperr"
	"github.com/idlab-discover/GeoAccuRate-cli/internal/finding"
	"github.com/idlab-discover/GeoAccuRate-cli/internal/labels"
)

// Scheme is the only sampling scheme produced by this package.
const Scheme = "stratified_random"

// DesignParams are the user-facing parameters of a sample design.
type DesignParams struct {
	Confidence       float64 `json:"confidence" yaml:"confidence" validate:"gt=0,lt=1"`
	ExpectedAccuracy float64 `json:"expected_accuracy" yaml:"expected_accuracy" validate:"gt=0,lt=1"`
	Margin           float64 `json:"margin_of_error" yaml:"margin_of_error" validate:"gt=0,lt=1"`
	// Total overrides the Cochran sample size when > 0.
	Total int `json:"total,omitempty" yaml:"total,omitempty" validate:"gte=0"`
	// FinitePopulation applies the finite population correction using the
	// total pixel count of all strata.
	FinitePopulation bool   `json:"finite_population" yaml:"finite_population"`
	Policy           Policy `json:"allocation" yaml:"allocation" validate:"oneof=proportional equal manual"`
	// Counts are the per-class sample counts of a manual allocation.
	Counts       map[labels.ClassLabel]int `json:"counts,omitempty" yaml:"counts,omitempty"`
	MinPerClass  int                       `json:"min_per_class" yaml:"min_per_class" validate:"gte=1"`
	MinDistance  float64                   `json:"min_distance" yaml:"min_distance" validate:"gte=0"`
	SpacingScope SpacingScope              `json:"spacing_scope" yaml:"spacing_scope" validate:"omitempty,oneof=stratum global"`
	Seed         uint64                    `json:"seed" yaml:"seed"`
}

// DefaultDesignParams mirror config/defaults.yaml.
func DefaultDesignParams() DesignParams {
	return DesignParams{
		Confidence:       0.95,
		ExpectedAccuracy: 0.85,
		Margin:           0.05,
		FinitePopulation: true,
		Policy:           Proportional,
		MinPerClass:      25,
		SpacingScope:     SpacingStratum,
		Seed:             42,
	}
}

// Design is the record of a sample design: the parameters, the computed
// sample size and the allocation. It is written before any point is
// generated and read back by the generation step.
type Design struct {
	Scheme     string       `json:"scheme" yaml:"scheme"`
	Params     DesignParams `json:"params" yaml:"params"`
	Size       SizeResult   `json:"size" yaml:"size"`
	Allocation Allocation   `json:"allocation" yaml:"allocation"`
}

// NewDesign computes the sample size and allocation for strata.
func NewDesign(p DesignParams, strata []Stratum) (Design, error) {
	if err := apperr.Validate(p); err != nil {
		return Design{}, err
	}
	if p.Policy == Manual && len(p.Counts) == 0 {
		return Design{}, apperr.Invalid("counts", "manual allocation needs per-class counts")
	}

	var pixels int
	for _, s := range strata {
		pixels += s.Pixels
	}
	sp := SizeParams{
		Confidence:       p.Confidence,
		ExpectedAccuracy: p.ExpectedAccuracy,
		Margin:           p.Margin,
	}
	if p.FinitePopulation {
		sp.Population = pixels
	}
	size, err := SampleSize(sp)
	if err != nil {
		return Design{}, err
	}

	d := Design{Scheme: Scheme, Params: p, Size: size}
	switch {
	case p.Policy == Manual:
		d.Allocation, err = Override(strata, p.Counts)
	case p.Total > 0:
		d.Allocation, err = Allocate(p.Total, strata, p.Policy)
	default:
		d.Allocation, err = Allocate(size.Total(), strata, p.Policy)
	}
	if err != nil {
		return Design{}, err
	}
	return d, nil
}

// Generate draws the designed sample from candidates.
func (d Design) Generate(candidates []Candidate, progress func(done, total int)) (Sample, []finding.Finding, error) {
	return Generate(candidates, d.Allocation.Counts(), GenerateParams{
		MinDistance: d.Params.MinDistance,
		Seed:        d.Params.Seed,
		Scope:       d.Params.SpacingScope,
		Progress:    progress,
	})
}
