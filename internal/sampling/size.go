// Package sampling designs stratified random samples: Cochran sample size,
// proportional or equal allocation across strata, and seeded point
// generation under a minimum-distance constraint.
package sampling

import (
	"math"

	"github.com/idlab-discover/GeoAccuRate-cli/internal/apperr"
	"github.com/idlab-discover/GeoAccuRate-cli/internal/metrics"
)

// ceilSlack absorbs float noise so that e.g. 196.00000000000003 rounds to 196.
const ceilSlack = 1e-9

// SizeParams configures the Cochran sample size calculation. When Z is 0 it
// is derived from Confidence.
type SizeParams struct {
	Confidence       float64 `json:"confidence" validate:"gt=0,lt=1"`
	Z                float64 `json:"z,omitempty" validate:"gte=0"`
	ExpectedAccuracy float64 `json:"expected_accuracy" validate:"gt=0,lt=1"`
	Margin           float64 `json:"margin_of_error" validate:"gt=0,lt=1"`
	// Population enables the finite population correction when > 0.
	Population int `json:"population,omitempty" validate:"gte=0"`
}

// SizeResult is the outcome of SampleSize.
type SizeResult struct {
	Z          float64 `json:"z" yaml:"z"`
	Raw        float64 `json:"raw" yaml:"raw"`
	Required   int     `json:"required" yaml:"required"`
	Corrected  bool    `json:"corrected" yaml:"corrected"`
	Adjusted   int     `json:"adjusted" yaml:"adjusted"`
	Population int     `json:"population,omitempty" yaml:"population,omitempty"`
}

// Total is the sample size to use: the corrected count when a finite
// population was supplied, the uncorrected one otherwise.
func (r SizeResult) Total() int {
	if r.Corrected {
		return r.Adjusted
	}
	return r.Required
}

// SampleSize computes n = z²·p(1-p)/E², optionally corrected to
// n/(1 + n/N). Counts are always rounded up and never below 1.
func SampleSize(p SizeParams) (SizeResult, error) {
	if err := apperr.Validate(p); err != nil {
		return SizeResult{}, err
	}
	z := p.Z
	if z == 0 {
		var err error
		if z, err = metrics.ZForConfidence(p.Confidence); err != nil {
			return SizeResult{}, err
		}
	}

	acc := p.ExpectedAccuracy
	n := z * z * acc * (1 - acc) / (p.Margin * p.Margin)
	res := SizeResult{Z: z, Raw: n, Required: ceil(n), Population: p.Population}
	res.Adjusted = res.Required
	if p.Population > 0 {
		res.Corrected = true
		res.Adjusted = ceil(n / (1 + n/float64(p.Population)))
	}
	logf("all", "z=%.4f n=%.2f required=%d adjusted=%d", z, n, res.Required, res.Adjusted)
	return res, nil
}

func ceil(x float64) int {
	return max(1, int(math.Ceil(x-ceilSlack)))
}
