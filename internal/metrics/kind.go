package metrics

import "fmt"

// Kind is the closed set of accuracy metrics. Every switch over Kind lists
// all variants; the default branch panics so a missing case fails loudly in
// tests.
type Kind int

const (
	OverallAccuracy Kind = iota + 1
	ProducersAccuracy
	UsersAccuracy
	F1Score
	Kappa
)

// Kinds lists every metric kind in report order.
var Kinds = []Kind{OverallAccuracy, ProducersAccuracy, UsersAccuracy, F1Score, Kappa}

func (k Kind) String() string {
	switch k {
	case OverallAccuracy:
		return "overall_accuracy"
	case ProducersAccuracy:
		return "producers_accuracy"
	case UsersAccuracy:
		return "users_accuracy"
	case F1Score:
		return "f1"
	case Kappa:
		return "kappa"
	default:
		return fmt.Sprintf("Kind(%d)", int(k))
	}
}

// Label is the human name used in reports.
func (k Kind) Label() string {
	switch k {
	case OverallAccuracy:
		return "Overall accuracy"
	case ProducersAccuracy:
		return "Producer's accuracy"
	case UsersAccuracy:
		return "User's accuracy"
	case F1Score:
		return "F1 score"
	case Kappa:
		return "Cohen's kappa"
	default:
		panic(fmt.Sprintf("metrics: unknown kind %d", int(k)))
	}
}

// PerClass reports whether the metric is computed for every class.
func (k Kind) PerClass() bool {
	switch k {
	case ProducersAccuracy, UsersAccuracy, F1Score:
		return true
	case OverallAccuracy, Kappa:
		return false
	default:
		panic(fmt.Sprintf("metrics: unknown kind %d", int(k)))
	}
}

// Domain is the logical range of the metric; intervals are clamped to it.
func (k Kind) Domain() Interval {
	switch k {
	case OverallAccuracy, ProducersAccuracy, UsersAccuracy, F1Score:
		return Interval{Lower: 0, Upper: 1}
	case Kappa:
		return Interval{Lower: -1, Upper: 1}
	default:
		panic(fmt.Sprintf("metrics: unknown kind %d", int(k)))
	}
}

func (k Kind) MarshalText() ([]byte, error) { return []byte(k.String()), nil }

func (k *Kind) UnmarshalText(b []byte) error {
	for _, v := range Kinds {
		if v.String() == string(b) {
			*k = v
			return nil
		}
	}
	return fmt.Errorf("unknown metric kind %q", string(b))
}
