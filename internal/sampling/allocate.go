package sampling

import (
	"cmp"
	"fmt"
	"slices"

	"github.com/idlab-discover/GeoAccuRate-cli/internal/apperr"
	"github.com/idlab-discover/GeoAccuRate-cli/internal/labels"
)

// Policy decides how a total sample size is split across strata.
type Policy string

const (
	Proportional Policy = "proportional"
	Equal        Policy = "equal"
	// Manual means per-stratum counts were supplied by the user.
	Manual Policy = "manual"
)

// ParsePolicy accepts "proportional", "equal" or "manual".
func ParsePolicy(s string) (Policy, error) {
	switch p := Policy(s); p {
	case Proportional, Equal, Manual:
		return p, nil
	default:
		return "", apperr.Invalidf("allocation", "unknown policy %q (expected proportional|equal|manual)", s)
	}
}

// Stratum is one mapped class and its size in pixels.
type Stratum struct {
	Class  labels.ClassLabel `json:"class" yaml:"class" csv:"class"`
	Pixels int               `json:"pixels" yaml:"pixels" csv:"pixels"`
	Name   string            `json:"name,omitempty" yaml:"name,omitempty" csv:"name,omitempty"`
}

// StratumAllocation is the number of samples assigned to one stratum.
type StratumAllocation struct {
	Class   labels.ClassLabel `json:"class" yaml:"class"`
	Name    string            `json:"name,omitempty" yaml:"name,omitempty"`
	Pixels  int               `json:"pixels" yaml:"pixels"`
	Weight  float64           `json:"weight" yaml:"weight"`
	Samples int               `json:"samples" yaml:"samples"`
}

// Allocation is the per-stratum split of a total sample size. Strata are in
// ascending class order and Samples always add up to Total.
type Allocation struct {
	Policy Policy              `json:"policy" yaml:"policy"`
	Total  int                 `json:"total" yaml:"total"`
	Strata []StratumAllocation `json:"strata" yaml:"strata"`
}

// Counts returns the allocation as a class -> samples map.
func (a Allocation) Counts() map[labels.ClassLabel]int {
	out := make(map[labels.ClassLabel]int, len(a.Strata))
	for _, s := range a.Strata {
		out[s.Class] = s.Samples
	}
	return out
}

// Get returns the allocation of class c.
func (a Allocation) Get(c labels.ClassLabel) (StratumAllocation, bool) {
	for _, s := range a.Strata {
		if s.Class == c {
			return s, true
		}
	}
	return StratumAllocation{}, false
}

// Allocate splits total samples across strata.
//
// Proportional gives each stratum floor(n·N_h/N) and hands the remainder out
// one by one to the largest strata. Equal gives n/H to every stratum and
// hands the remainder out in class order. Neither policy raises small strata
// to a minimum; see rules.CheckAllocation.
func Allocate(total int, strata []Stratum, policy Policy) (Allocation, error) {
	if total < 1 {
		return Allocation{}, apperr.Invalidf("total", "must be >= 1, got %d", total)
	}
	sorted, pixels, err := prepare(strata)
	if err != nil {
		return Allocation{}, err
	}

	out := Allocation{Policy: policy, Total: total, Strata: make([]StratumAllocation, len(sorted))}
	for i, s := range sorted {
		out.Strata[i] = StratumAllocation{Class: s.Class, Name: s.Name, Pixels: s.Pixels}
		if pixels > 0 {
			out.Strata[i].Weight = float64(s.Pixels) / float64(pixels)
		}
	}

	switch policy {
	case Proportional:
		if pixels == 0 {
			return Allocation{}, apperr.Invalid("strata", "total pixel count is zero")
		}
		proportional(total, out.Strata)
	case Equal:
		h := len(out.Strata)
		base, rem := total/h, total%h
		for i := range out.Strata {
			out.Strata[i].Samples = base
			if i < rem {
				out.Strata[i].Samples++
			}
		}
	case Manual:
		return Allocation{}, apperr.Invalid("allocation", "manual allocation needs explicit counts; use Override")
	default:
		return Allocation{}, apperr.Invalidf("allocation", "unknown policy %q", policy)
	}
	logf("all", "%s allocation of %d over %d strata", policy, total, len(out.Strata))
	return out, nil
}

func proportional(total int, strata []StratumAllocation) {
	sum := pixelSum(strata)
	assigned := 0
	for i := range strata {
		// integer arithmetic keeps the floor exact
		n := total * strata[i].Pixels / sum
		strata[i].Samples = n
		assigned += n
	}

	order := make([]int, len(strata))
	for i := range order {
		order[i] = i
	}
	slices.SortStableFunc(order, func(a, b int) int {
		return cmp.Compare(strata[b].Pixels, strata[a].Pixels)
	})
	for i := 0; assigned < total; i++ {
		strata[order[i%len(order)]].Samples++
		assigned++
	}
}

func pixelSum(strata []StratumAllocation) int {
	var n int
	for _, s := range strata {
		n += s.Pixels
	}
	return n
}

// Override builds a manual allocation from explicit per-class counts. Every
// stratum must have a count; the total is their sum.
func Override(strata []Stratum, counts map[labels.ClassLabel]int) (Allocation, error) {
	sorted, pixels, err := prepare(strata)
	if err != nil {
		return Allocation{}, err
	}
	out := Allocation{Policy: Manual, Strata: make([]StratumAllocation, len(sorted))}
	for i, s := range sorted {
		n, ok := counts[s.Class]
		if !ok {
			return Allocation{}, apperr.Invalidf("counts", "missing count for class %d", s.Class)
		}
		if n < 0 {
			return Allocation{}, apperr.Invalidf(fmt.Sprintf("counts[%d]", s.Class), "must be >= 0, got %d", n)
		}
		out.Strata[i] = StratumAllocation{Class: s.Class, Name: s.Name, Pixels: s.Pixels, Samples: n}
		if pixels > 0 {
			out.Strata[i].Weight = float64(s.Pixels) / float64(pixels)
		}
		out.Total += n
	}
	if len(counts) != len(sorted) {
		for c := range counts {
			if !slices.ContainsFunc(sorted, func(s Stratum) bool { return s.Class == c }) {
				return Allocation{}, apperr.Invalidf("counts", "class %d is not a stratum", c)
			}
		}
	}
	if out.Total < 1 {
		return Allocation{}, apperr.Invalid("counts", "total must be >= 1")
	}
	return out, nil
}

func prepare(strata []Stratum) ([]Stratum, int, error) {
	if len(strata) == 0 {
		return nil, 0, apperr.Invalid("strata", "no strata supplied")
	}
	sorted := slices.Clone(strata)
	slices.SortFunc(sorted, func(a, b Stratum) int { return cmp.Compare(a.Class, b.Class) })

	var pixels int
	for i, s := range sorted {
		if i > 0 && s.Class == sorted[i-1].Class {
			return nil, 0, apperr.Invalidf("strata", "class %d listed twice", s.Class)
		}
		if s.Pixels < 0 {
			return nil, 0, apperr.Invalidf(fmt.Sprintf("strata[%d].pixels", s.Class), "must be >= 0, got %d", s.Pixels)
		}
		pixels += s.Pixels
	}
	return sorted, pixels, nil
}
