// Package metrics derives accuracy metrics from a confusion matrix: overall
// accuracy, per-class producer's and user's accuracy, F1 and Cohen's kappa.
// Proportions carry Wilson score intervals.
//
// Undefined estimates (no trials, degenerate kappa) never fail: they come
// back with Defined=false, a NaN estimate, an interval spanning the metric's
// domain, and a finding describing why.
package metrics

import (
	"encoding/json"
	"math"

	"github.com/idlab-discover/GeoAccuRate-cli/internal/finding"
	"github.com/idlab-discover/GeoAccuRate-cli/internal/labels"
	"github.com/idlab-discover/GeoAccuRate-cli/internal/matrix"
)

// kappaEpsilon is the tolerance below which 1 - p_e counts as zero.
const kappaEpsilon = 1e-15

// Result is one metric estimate with its confidence interval.
type Result struct {
	Kind     Kind
	Class    labels.ClassLabel // zero for global metrics
	Estimate float64
	Interval Interval
	Trials   float64 // n used for the interval
	Defined  bool
}

// Undefined is the sentinel for an estimate that cannot be computed.
func Undefined(k Kind, c labels.ClassLabel) Result {
	return Result{Kind: k, Class: c, Estimate: math.NaN(), Interval: k.Domain()}
}

type resultWire struct {
	Kind     Kind               `json:"kind" yaml:"kind"`
	Class    *labels.ClassLabel `json:"class,omitempty" yaml:"class,omitempty"`
	Estimate *float64           `json:"estimate" yaml:"estimate"`
	Interval Interval           `json:"interval" yaml:"interval"`
	Trials   float64            `json:"trials" yaml:"trials"`
	Defined  bool               `json:"defined" yaml:"defined"`
}

func (r Result) wire() resultWire {
	w := resultWire{Kind: r.Kind, Interval: r.Interval, Trials: r.Trials, Defined: r.Defined}
	if r.Kind.PerClass() {
		c := r.Class
		w.Class = &c
	}
	if r.Defined {
		e := r.Estimate
		w.Estimate = &e
	}
	return w
}

// MarshalJSON writes undefined estimates as null.
func (r Result) MarshalJSON() ([]byte, error) { return json.Marshal(r.wire()) }

// MarshalYAML writes undefined estimates as null.
func (r Result) MarshalYAML() (any, error) { return r.wire(), nil }

// Overall computes overall accuracy trace/n with a Wilson interval over n.
func Overall(m matrix.Matrix, z float64) Result {
	n := float64(m.Total())
	if n == 0 {
		return Undefined(OverallAccuracy, 0)
	}
	p := float64(m.Trace()) / n
	iv, _ := Wilson(p, n, z)
	return Result{Kind: OverallAccuracy, Estimate: p, Interval: iv, Trials: n, Defined: true}
}

// Producers computes n_ii / n_+i for the class at index i (recall).
func Producers(m matrix.Matrix, i int, z float64) Result {
	return proportion(ProducersAccuracy, m.Class(i), m.Count(i, i), m.ColTotal(i), z)
}

// Users computes n_ii / n_i+ for the class at index i (precision).
func Users(m matrix.Matrix, i int, z float64) Result {
	return proportion(UsersAccuracy, m.Class(i), m.Count(i, i), m.RowTotal(i), z)
}

func proportion(k Kind, c labels.ClassLabel, hits, trials int, z float64) Result {
	if trials == 0 {
		return Undefined(k, c)
	}
	n := float64(trials)
	p := float64(hits) / n
	iv, _ := Wilson(p, n, z)
	return Result{Kind: k, Class: c, Estimate: p, Interval: iv, Trials: n, Defined: true}
}

// F1 is the harmonic mean of producer's and user's accuracy. It is undefined
// when either input is, and 0 when both are 0. The interval is a Wilson
// interval over the mean of the two marginals.
func F1(pa, ua Result, z float64) Result {
	c := pa.Class
	if !pa.Defined || !ua.Defined {
		return Undefined(F1Score, c)
	}
	n := (pa.Trials + ua.Trials) / 2
	var f float64
	if pa.Estimate+ua.Estimate > 0 {
		f = 2 * pa.Estimate * ua.Estimate / (pa.Estimate + ua.Estimate)
	}
	iv, _ := Wilson(f, n, z)
	return Result{Kind: F1Score, Class: c, Estimate: f, Interval: iv, Trials: n, Defined: true}
}

// CohenKappa computes (p_o - p_e) / (1 - p_e) with the large-sample interval
// kappa ± z·sqrt(p_o(1-p_o) / (n(1-p_e)²)), clamped to [-1, 1]. The second
// result is the chance agreement p_e.
func CohenKappa(m matrix.Matrix, z float64) (Result, float64) {
	total := m.Total()
	if total == 0 {
		return Undefined(Kappa, 0), math.NaN()
	}
	n := float64(total)
	po := float64(m.Trace()) / n
	var pe float64
	for i := 0; i < m.Size(); i++ {
		pe += float64(m.RowTotal(i)) * float64(m.ColTotal(i))
	}
	pe /= n * n
	if math.Abs(1-pe) < kappaEpsilon {
		return Undefined(Kappa, 0), pe
	}

	k := (po - pe) / (1 - pe)
	se := math.Sqrt(po * (1 - po) / (n * (1 - pe) * (1 - pe)))
	iv := Interval{Lower: k - z*se, Upper: k + z*se}.Clamp(Kappa.Domain())
	return Result{Kind: Kappa, Estimate: k, Interval: iv, Trials: n, Defined: true}, pe
}

// ClassMetrics groups the per-class results.
type ClassMetrics struct {
	Class     labels.ClassLabel `json:"class" yaml:"class"`
	Predicted int               `json:"predicted" yaml:"predicted"` // n_i+
	Reference int               `json:"reference" yaml:"reference"` // n_+i
	Producers Result            `json:"producers_accuracy" yaml:"producers_accuracy"`
	Users     Result            `json:"users_accuracy" yaml:"users_accuracy"`
	F1        Result            `json:"f1" yaml:"f1"`
}

// Set is every metric computed from one matrix.
type Set struct {
	Z               float64        `json:"z" yaml:"z"`
	Overall         Result         `json:"overall_accuracy" yaml:"overall_accuracy"`
	Kappa           Result         `json:"kappa" yaml:"kappa"`
	ChanceAgreement float64        `json:"chance_agreement" yaml:"chance_agreement"`
	Classes         []ClassMetrics `json:"classes" yaml:"classes"`
}

// Get returns the result of kind k for class c. Global kinds ignore c.
func (s Set) Get(k Kind, c labels.ClassLabel) (Result, bool) {
	switch k {
	case OverallAccuracy:
		return s.Overall, true
	case Kappa:
		return s.Kappa, true
	case ProducersAccuracy, UsersAccuracy, F1Score:
		for _, cm := range s.Classes {
			if cm.Class != c {
				continue
			}
			switch k {
			case ProducersAccuracy:
				return cm.Producers, true
			case UsersAccuracy:
				return cm.Users, true
			default:
				return cm.F1, true
			}
		}
		return Result{}, false
	default:
		panic("metrics: unknown kind " + k.String())
	}
}

// Compute derives every metric from m. Each undefined estimate adds exactly
// one finding.
func Compute(m matrix.Matrix, z float64) (Set, []finding.Finding) {
	var out []finding.Finding

	s := Set{Z: z, Overall: Overall(m, z)}
	s.Kappa, s.ChanceAgreement = CohenKappa(m, z)
	if !s.Kappa.Defined {
		out = append(out, finding.New(finding.RuleUndefinedKappa, finding.Global(),
			"kappa is undefined: expected chance agreement is 1 (single-class matrix)"))
	}

	s.Classes = make([]ClassMetrics, m.Size())
	for i := range s.Classes {
		c := m.Class(i)
		cm := ClassMetrics{
			Class:     c,
			Predicted: m.RowTotal(i),
			Reference: m.ColTotal(i),
			Producers: Producers(m, i, z),
			Users:     Users(m, i, z),
		}
		cm.F1 = F1(cm.Producers, cm.Users, z)

		if !cm.Producers.Defined {
			out = append(out, finding.New(finding.RuleUndefinedProducers, finding.Class(c),
				"producer's accuracy is undefined: no reference samples"))
		}
		if !cm.Users.Defined {
			out = append(out, finding.New(finding.RuleUndefinedUsers, finding.Class(c),
				"user's accuracy is undefined: class never predicted"))
		}
		if !cm.F1.Defined {
			out = append(out, finding.New(finding.RuleUndefinedF1, finding.Class(c),
				"F1 is undefined: producer's or user's accuracy is undefined"))
		}
		s.Classes[i] = cm
	}
	logf("n=%d classes=%d OA=%.4f", m.Total(), m.Size(), s.Overall.Estimate)
	return s, out
}
