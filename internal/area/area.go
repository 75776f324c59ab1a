// Package area implements stratified area estimation with area-weighted
// accuracy (Olofsson et al., 2014). Strata are the matrix rows: every mapped
// class is a stratum whose weight is its share of the total mapped area.
package area

import (
	"fmt"
	"maps"
	"math"
	"slices"

	"gonum.org/v1/gonum/floats"

	"github.com/idlab-discover/GeoAccuRate-cli/internal/apperr"
	"github.com/idlab-discover/GeoAccuRate-cli/internal/finding"
	"github.com/idlab-discover/GeoAccuRate-cli/internal/labels"
	"github.com/idlab-discover/GeoAccuRate-cli/internal/matrix"
	"github.com/idlab-discover/GeoAccuRate-cli/internal/metrics"
)

// Params are the inputs besides the matrix.
type Params struct {
	// MappedArea is the mapped area of every class, in Unit.
	MappedArea map[labels.ClassLabel]float64 `json:"mapped_area" validate:"required,min=1,dive,gte=0"`
	// Unit is carried into the result for reporting ("ha", "px", "m2").
	Unit string `json:"unit"`
	// Projected must be true: areas derived from geographic coordinates are
	// not comparable across latitudes.
	Projected bool    `json:"projected"`
	Z         float64 `json:"z" validate:"gt=0"`
}

// ClassEstimate is the estimate for one class. Area figures refer to the
// class as a reference class; accuracy figures are area-weighted.
type ClassEstimate struct {
	Class        labels.ClassLabel `json:"class" yaml:"class"`
	MappedArea   float64           `json:"mapped_area" yaml:"mapped_area"`
	Weight       float64           `json:"weight" yaml:"weight"`
	Samples      int               `json:"samples" yaml:"samples"` // n_i+
	Proportion   float64           `json:"proportion" yaml:"proportion"`
	ProportionSE float64           `json:"proportion_se" yaml:"proportion_se"`
	Area         float64           `json:"area" yaml:"area"`
	AreaSE       float64           `json:"area_se" yaml:"area_se"`
	AreaCI       metrics.Interval  `json:"area_ci" yaml:"area_ci"`
	Users        metrics.Result    `json:"users_accuracy" yaml:"users_accuracy"`
	UsersSE      float64           `json:"users_accuracy_se" yaml:"users_accuracy_se"`
	Producers    metrics.Result    `json:"producers_accuracy" yaml:"producers_accuracy"`
	ProducersSE  float64           `json:"producers_accuracy_se" yaml:"producers_accuracy_se"`
}

// Result is the full area estimation.
type Result struct {
	Unit      string          `json:"unit" yaml:"unit"`
	TotalArea float64         `json:"total_area" yaml:"total_area"`
	Z         float64         `json:"z" yaml:"z"`
	Overall   metrics.Result  `json:"overall_accuracy" yaml:"overall_accuracy"`
	OverallSE float64         `json:"overall_accuracy_se" yaml:"overall_accuracy_se"`
	Classes   []ClassEstimate `json:"classes" yaml:"classes"`
}

// Class returns the estimate for c.
func (r Result) Class(c labels.ClassLabel) (ClassEstimate, bool) {
	for _, ce := range r.Classes {
		if ce.Class == c {
			return ce, true
		}
	}
	return ClassEstimate{}, false
}

// Estimate computes area and area-weighted accuracy estimates.
//
// Strata with no samples contribute nothing; strata with a single sample
// contribute to the estimates but not to the variances. Both cases emit one
// finding per stratum.
func Estimate(m matrix.Matrix, p Params) (Result, []finding.Finding, error) {
	if !p.Projected {
		return Result{}, nil, apperr.Precondition("crs", "projected CRS required for area estimation")
	}
	if err := apperr.Validate(p); err != nil {
		return Result{}, nil, err
	}
	if m.Total() == 0 {
		return Result{}, nil, apperr.Invalid("matrix", "cannot estimate area from an empty matrix")
	}

	k := m.Size()
	mapped := make([]float64, k)
	for i, c := range m.Classes() {
		a, ok := p.MappedArea[c]
		if !ok {
			return Result{}, nil, apperr.Invalidf("mapped_area", "missing mapped area for class %d", c)
		}
		if math.IsInf(a, 0) {
			return Result{}, nil, apperr.Invalidf(fmt.Sprintf("mapped_area[%d]", c), "must be finite")
		}
		mapped[i] = a
	}
	for _, c := range slices.Sorted(maps.Keys(p.MappedArea)) {
		if _, ok := m.Index(c); !ok {
			return Result{}, nil, apperr.Invalidf("mapped_area", "class %d is not in the confusion matrix", c)
		}
	}
	total := floats.Sum(mapped)
	if total <= 0 {
		return Result{}, nil, apperr.Invalid("mapped_area", "total mapped area must be positive")
	}
	w := slices.Clone(mapped)
	floats.Scale(1/total, w)

	var out []finding.Finding
	// ratio[i][j] = n_ij / n_i+, zero for empty strata
	ratio := make([][]float64, k)
	for i := 0; i < k; i++ {
		ratio[i] = make([]float64, k)
		c := m.Class(i)
		ni := m.RowTotal(i)
		switch {
		case ni == 0:
			out = append(out, finding.New(finding.RuleAreaEmptyStratum, finding.Stratum(c),
				"no samples in mapped class; its area weight %.4g is not represented", w[i]))
			continue
		case ni == 1:
			out = append(out, finding.New(finding.RuleAreaSingleSample, finding.Stratum(c),
				"single sample in mapped class; variance treated as 0"))
		}
		if w[i] == 0 {
			out = append(out, finding.Info(finding.RuleAreaUnmappedClass, finding.Stratum(c),
				"%d samples in a class with zero mapped area carry no weight", ni))
		}
		for j := 0; j < k; j++ {
			ratio[i][j] = float64(m.Count(i, j)) / float64(ni)
		}
	}

	// term(i, j) is stratum i's contribution to V(p̂_+j) before weighting.
	term := func(i, j int) float64 {
		ni := m.RowTotal(i)
		if ni <= 1 {
			return 0
		}
		r := ratio[i][j]
		return r * (1 - r) / float64(ni-1)
	}

	res := Result{Unit: p.Unit, TotalArea: total, Z: p.Z, Classes: make([]ClassEstimate, k)}

	var oa, varOA float64
	for i := 0; i < k; i++ {
		oa += w[i] * ratio[i][i]
		varOA += w[i] * w[i] * term(i, i)
	}
	res.OverallSE = math.Sqrt(varOA)
	res.Overall = normal(metrics.OverallAccuracy, 0, oa, res.OverallSE, p.Z, float64(m.Total()))

	for j := 0; j < k; j++ {
		c := m.Class(j)
		ce := ClassEstimate{
			Class:      c,
			MappedArea: mapped[j],
			Weight:     w[j],
			Samples:    m.RowTotal(j),
		}

		var prop, varProp, varOther float64
		for i := 0; i < k; i++ {
			prop += w[i] * ratio[i][j]
			t := w[i] * w[i] * term(i, j)
			varProp += t
			if i != j {
				varOther += t
			}
		}
		ce.Proportion = prop
		ce.ProportionSE = math.Sqrt(varProp)
		ce.Area = total * prop
		ce.AreaSE = total * ce.ProportionSE
		ce.AreaCI = metrics.Interval{
			Lower: math.Max(0, ce.Area-p.Z*ce.AreaSE),
			Upper: ce.Area + p.Z*ce.AreaSE,
		}

		if ni := m.RowTotal(j); ni > 0 {
			u := ratio[j][j]
			ce.UsersSE = math.Sqrt(term(j, j))
			ce.Users = normal(metrics.UsersAccuracy, c, u, ce.UsersSE, p.Z, float64(ni))
		} else {
			ce.Users = metrics.Undefined(metrics.UsersAccuracy, c)
		}

		if prop > 0 {
			pa := w[j] * ratio[j][j] / prop
			u := ratio[j][j]
			own := w[j] * w[j] * (1 - pa) * (1 - pa) * u * (1 - u)
			if nj := m.RowTotal(j); nj > 1 {
				own /= float64(nj - 1)
			} else {
				own = 0
			}
			ce.ProducersSE = math.Sqrt((own + pa*pa*varOther) / (prop * prop))
			ce.Producers = normal(metrics.ProducersAccuracy, c, pa, ce.ProducersSE, p.Z, float64(m.ColTotal(j)))
		} else {
			ce.Producers = metrics.Undefined(metrics.ProducersAccuracy, c)
			out = append(out, finding.New(finding.RuleUndefinedProducers, finding.Class(c),
				"area-weighted producer's accuracy is undefined: estimated area is 0"))
		}

		res.Classes[j] = ce
	}

	logf("total=%.6g %s OA=%.4f±%.4f", total, p.Unit, oa, p.Z*res.OverallSE)
	return res, out, nil
}

// normal builds an estimate with a normal-approximation interval clamped to
// the metric's domain.
func normal(k metrics.Kind, c labels.ClassLabel, est, se, z, trials float64) metrics.Result {
	iv := metrics.Interval{Lower: est - z*se, Upper: est + z*se}.Clamp(k.Domain())
	return metrics.Result{Kind: k, Class: c, Estimate: est, Interval: iv, Trials: trials, Defined: true}
}

