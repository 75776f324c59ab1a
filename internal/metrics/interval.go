package metrics

import (
	"math"

	"gonum.org/v1/gonum/stat/distuv"

	"github.com/idlab-discover/GeoAccuRate-cli/internal/apperr"
)

// Interval is a closed confidence interval.
type Interval struct {
	Lower float64 `json:"lower" yaml:"lower"`
	Upper float64 `json:"upper" yaml:"upper"`
}

// Width returns Upper - Lower.
func (iv Interval) Width() float64 { return iv.Upper - iv.Lower }

// Contains reports whether v lies inside the interval.
func (iv Interval) Contains(v float64) bool { return iv.Lower <= v && v <= iv.Upper }

// Clamp limits both bounds to d.
func (iv Interval) Clamp(d Interval) Interval {
	return Interval{
		Lower: math.Max(d.Lower, math.Min(d.Upper, iv.Lower)),
		Upper: math.Max(d.Lower, math.Min(d.Upper, iv.Upper)),
	}
}

// Wilson returns the Wilson score interval for proportion p observed over n
// trials at critical value z, clamped to [0, 1]. The second result is false
// when n <= 0, in which case the interval is [0, 1].
func Wilson(p, n, z float64) (Interval, bool) {
	if n <= 0 {
		return Interval{Lower: 0, Upper: 1}, false
	}
	z2 := z * z
	denom := 1 + z2/n
	center := (p + z2/(2*n)) / denom
	half := z * math.Sqrt(p*(1-p)/n+z2/(4*n*n)) / denom
	iv := Interval{Lower: center - half, Upper: center + half}.Clamp(Interval{0, 1})
	// rounding can push a bound past p when p is 0 or 1
	iv.Lower = math.Min(iv.Lower, p)
	iv.Upper = math.Max(iv.Upper, p)
	return iv, true
}

// ZForConfidence returns the two-sided standard normal critical value for a
// confidence level in (0, 1), e.g. 1.959964 for 0.95.
func ZForConfidence(confidence float64) (float64, error) {
	if !(confidence > 0 && confidence < 1) {
		return 0, apperr.Invalidf("confidence", "must be in (0, 1), got %v", confidence)
	}
	return distuv.UnitNormal.Quantile((1 + confidence) / 2), nil
}

// ConfidenceForZ is the inverse of ZForConfidence.
func ConfidenceForZ(z float64) float64 {
	return 2*distuv.UnitNormal.CDF(z) - 1
}
