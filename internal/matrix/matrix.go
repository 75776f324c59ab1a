// Package matrix builds the confusion matrix of an accuracy assessment.
//
// Orientation is fixed for the whole module: rows are predicted (map)
// classes, columns are reference classes. Row marginals n_i+ therefore count
// predictions and column marginals n_+i count reference samples.
package matrix

import (
	"fmt"
	"slices"

	"gonum.org/v1/gonum/floats"

	"github.com/idlab-discover/GeoAccuRate-cli/internal/apperr"
	"github.com/idlab-discover/GeoAccuRate-cli/internal/labels"
)

// Matrix is an immutable square count matrix over an ordered class set.
type Matrix struct {
	classes []labels.ClassLabel
	index   map[labels.ClassLabel]int
	counts  []int // row-major, len(classes)^2
	rows    []int
	cols    []int
	total   int
}

// Build aggregates label pairs into a confusion matrix. When classes is
// empty the class set is the sorted union of both label sequences; otherwise
// the explicit list is used (sorted, de-duplicated) and every label in pairs
// must belong to it.
func Build(p labels.Pairs, classes ...labels.ClassLabel) (Matrix, error) {
	if p.Len() == 0 {
		return Matrix{}, apperr.Invalid("predicted", "no label pairs supplied")
	}

	set := p.Classes()
	if len(classes) > 0 {
		set = slices.Clone(classes)
		slices.Sort(set)
		set = slices.Compact(set)
	}

	m := newMatrix(set)
	k := len(set)
	for i := 0; i < p.Len(); i++ {
		pred, ref := p.At(i)
		r, ok := m.index[pred]
		if !ok {
			return Matrix{}, apperr.Invalidf("predicted", "label %d at position %d is not in the class list", pred, i)
		}
		c, ok := m.index[ref]
		if !ok {
			return Matrix{}, apperr.Invalidf("reference", "label %d at position %d is not in the class list", ref, i)
		}
		m.counts[r*k+c]++
	}
	m.marginals()
	return m, nil
}

// FromCounts builds a matrix from an existing k x k table of counts. Rows
// are predicted classes and columns reference classes, both ordered like
// classes, which must be strictly ascending.
func FromCounts(classes []labels.ClassLabel, counts [][]int) (Matrix, error) {
	k := len(classes)
	if k == 0 {
		return Matrix{}, apperr.Invalid("classes", "at least one class is required")
	}
	for i := 1; i < k; i++ {
		if classes[i] <= classes[i-1] {
			return Matrix{}, apperr.Invalid("classes", "must be strictly ascending")
		}
	}
	if len(counts) != k {
		return Matrix{}, apperr.Invalidf("counts", "has %d rows, want %d", len(counts), k)
	}

	m := newMatrix(slices.Clone(classes))
	for i, row := range counts {
		if len(row) != k {
			return Matrix{}, apperr.Invalidf(fmt.Sprintf("counts[%d]", i), "has %d columns, want %d", len(row), k)
		}
		for j, v := range row {
			if v < 0 {
				return Matrix{}, apperr.Invalidf(fmt.Sprintf("counts[%d][%d]", i, j), "must be >= 0, got %d", v)
			}
			m.counts[i*k+j] = v
		}
	}
	m.marginals()
	if m.total == 0 {
		return Matrix{}, apperr.Invalid("counts", "matrix holds no samples")
	}
	return m, nil
}

func newMatrix(classes []labels.ClassLabel) Matrix {
	k := len(classes)
	idx := make(map[labels.ClassLabel]int, k)
	for i, c := range classes {
		idx[c] = i
	}
	return Matrix{
		classes: classes,
		index:   idx,
		counts:  make([]int, k*k),
		rows:    make([]int, k),
		cols:    make([]int, k),
	}
}

func (m *Matrix) marginals() {
	k := len(m.classes)
	for i := 0; i < k; i++ {
		for j := 0; j < k; j++ {
			v := m.counts[i*k+j]
			m.rows[i] += v
			m.cols[j] += v
			m.total += v
		}
	}
}

// Classes returns the ordered class set.
func (m Matrix) Classes() []labels.ClassLabel { return slices.Clone(m.classes) }

// Size is the number of classes.
func (m Matrix) Size() int { return len(m.classes) }

// Index returns the row/column position of class c.
func (m Matrix) Index(c labels.ClassLabel) (int, bool) {
	i, ok := m.index[c]
	return i, ok
}

// Class returns the label at position i.
func (m Matrix) Class(i int) labels.ClassLabel { return m.classes[i] }

// Count returns n_ij: samples predicted as class i with reference class j.
func (m Matrix) Count(i, j int) int { return m.counts[i*len(m.classes)+j] }

// RowTotal returns n_i+, the number of samples predicted as class i.
func (m Matrix) RowTotal(i int) int { return m.rows[i] }

// ColTotal returns n_+j, the number of reference samples of class j.
func (m Matrix) ColTotal(j int) int { return m.cols[j] }

// Total returns n.
func (m Matrix) Total() int { return m.total }

// Trace returns the number of correctly classified samples.
func (m Matrix) Trace() int {
	var t int
	for i := range m.classes {
		t += m.Count(i, i)
	}
	return t
}

// Diagonal returns n_ii for every class.
func (m Matrix) Diagonal() []int {
	out := make([]int, len(m.classes))
	for i := range m.classes {
		out[i] = m.Count(i, i)
	}
	return out
}

// Counts returns a copy of the count table.
func (m Matrix) Counts() [][]int {
	k := len(m.classes)
	out := make([][]int, k)
	for i := range out {
		out[i] = slices.Clone(m.counts[i*k : (i+1)*k])
	}
	return out
}

// RowNormalized divides every cell by its row marginal. A row with no
// samples yields zeros, never NaN.
func (m Matrix) RowNormalized() [][]float64 {
	k := len(m.classes)
	out := m.float()
	for i := 0; i < k; i++ {
		if m.rows[i] == 0 {
			continue
		}
		floats.Scale(1/float64(m.rows[i]), out[i])
	}
	return out
}

// ColumnNormalized divides every cell by its column marginal. A column with
// no samples yields zeros.
func (m Matrix) ColumnNormalized() [][]float64 {
	k := len(m.classes)
	out := m.float()
	for j := 0; j < k; j++ {
		if m.cols[j] == 0 {
			continue
		}
		for i := 0; i < k; i++ {
			out[i][j] /= float64(m.cols[j])
		}
	}
	return out
}

// Proportions divides every cell by n.
func (m Matrix) Proportions() [][]float64 {
	out := m.float()
	if m.total == 0 {
		return out
	}
	for _, row := range out {
		floats.Scale(1/float64(m.total), row)
	}
	return out
}

func (m Matrix) float() [][]float64 {
	k := len(m.classes)
	out := make([][]float64, k)
	for i := 0; i < k; i++ {
		out[i] = make([]float64, k)
		for j := 0; j < k; j++ {
			out[i][j] = float64(m.counts[i*k+j])
		}
	}
	return out
}

// EmptyRows returns the classes that were never predicted.
func (m Matrix) EmptyRows() []labels.ClassLabel {
	var out []labels.ClassLabel
	for i, n := range m.rows {
		if n == 0 {
			out = append(out, m.classes[i])
		}
	}
	return out
}

// EmptyColumns returns the classes with no reference samples.
func (m Matrix) EmptyColumns() []labels.ClassLabel {
	var out []labels.ClassLabel
	for j, n := range m.cols {
		if n == 0 {
			out = append(out, m.classes[j])
		}
	}
	return out
}

// Table is a plain snapshot of a matrix for reports.
type Table struct {
	Classes       []labels.ClassLabel `json:"classes" yaml:"classes"`
	Counts        [][]int             `json:"counts" yaml:"counts"`
	RowTotals     []int               `json:"row_totals" yaml:"row_totals"`
	ColumnTotals  []int               `json:"column_totals" yaml:"column_totals"`
	Total         int                 `json:"total" yaml:"total"`
	RowNormalized [][]float64         `json:"row_normalized" yaml:"row_normalized"`
	ColNormalized [][]float64         `json:"column_normalized" yaml:"column_normalized"`
}

// Table returns a serializable snapshot.
func (m Matrix) Table() Table {
	return Table{
		Classes:       m.Classes(),
		Counts:        m.Counts(),
		RowTotals:     slices.Clone(m.rows),
		ColumnTotals:  slices.Clone(m.cols),
		Total:         m.total,
		RowNormalized: m.RowNormalized(),
		ColNormalized: m.ColumnNormalized(),
	}
}
