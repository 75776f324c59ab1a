// Package disagreement decomposes total map disagreement into quantity and
// allocation components (Pontius and Millones, 2011).
package disagreement

import (
	"math"

	"gonum.org/v1/gonum/floats"

	"github.com/idlab-discover/GeoAccuRate-cli/internal/apperr"
	"github.com/idlab-discover/GeoAccuRate-cli/internal/finding"
	"github.com/idlab-discover/GeoAccuRate-cli/internal/labels"
	"github.com/idlab-discover/GeoAccuRate-cli/internal/matrix"
)

// IdentityTolerance bounds |QD + AD - (1 - OA)|.
const IdentityTolerance = 1e-9

// Component is one class's contribution to the totals.
type Component struct {
	Class      labels.ClassLabel `json:"class" yaml:"class"`
	Quantity   float64           `json:"quantity" yaml:"quantity"`
	Allocation float64           `json:"allocation" yaml:"allocation"`
}

// Result holds quantity and allocation disagreement as fractions of n.
// Quantity + Allocation equals Total within IdentityTolerance.
type Result struct {
	Quantity   float64     `json:"quantity" yaml:"quantity"`
	Allocation float64     `json:"allocation" yaml:"allocation"`
	Total      float64     `json:"total" yaml:"total"`
	Classes    []Component `json:"classes" yaml:"classes"`
}

// Compute derives QD = ½Σ|p_i+ - p_+i| and AD = Σ min(p_i+ - p_ii, p_+i - p_ii)
// from the matrix marginals. Negative values produced by rounding are
// clamped to zero and reported once per clamped term.
func Compute(m matrix.Matrix) (Result, []finding.Finding, error) {
	if m.Total() == 0 {
		return Result{}, nil, apperr.Invalid("matrix", "cannot decompose disagreement of an empty matrix")
	}
	n := float64(m.Total())
	k := m.Size()

	rows := make([]float64, k)
	cols := make([]float64, k)
	diag := make([]float64, k)
	for i := 0; i < k; i++ {
		rows[i] = float64(m.RowTotal(i))
		cols[i] = float64(m.ColTotal(i))
		diag[i] = float64(m.Count(i, i))
	}
	floats.Scale(1/n, rows)
	floats.Scale(1/n, cols)
	floats.Scale(1/n, diag)

	var out []finding.Finding
	res := Result{
		Total:   1 - floats.Sum(diag),
		Classes: make([]Component, k),
	}
	for i := 0; i < k; i++ {
		c := m.Class(i)
		q := math.Abs(rows[i]-cols[i]) / 2
		a := math.Min(rows[i]-diag[i], cols[i]-diag[i])
		if a < 0 {
			out = append(out, finding.Info(finding.RuleDisagreementClamped, finding.Class(c),
				"allocation term %.3g clamped to 0", a))
			a = 0
		}
		res.Classes[i] = Component{Class: c, Quantity: q, Allocation: a}
		res.Quantity += q
		res.Allocation += a
	}
	if res.Total < 0 {
		res.Total = 0
	}

	logf("QD=%.6f AD=%.6f total=%.6f", res.Quantity, res.Allocation, res.Total)
	return res, out, nil
}

// Residual returns |QD + AD - Total|.
func (r Result) Residual() float64 {
	return math.Abs(r.Quantity + r.Allocation - r.Total)
}
