package analysis

import (
	"math"
	"sort"

	"github.com/montanaflynn/stats"

	"github.com/KaramelBytes/housing-explorer/internal/dataset"
)

// CorrMatrix holds a symmetric Pearson correlation matrix across numeric columns.
type CorrMatrix struct {
	Columns []string   `json:"columns"`
	Values  [][]Number `json:"values"` // row-major, Values[i][j]
}

// Index returns the position of column in the matrix.
func (m *CorrMatrix) Index(column string) (int, bool) {
	for i, c := range m.Columns {
		if c == column {
			return i, true
		}
	}
	return -1, false
}

// Rounded returns a copy with every coefficient rounded to places decimals.
func (m *CorrMatrix) Rounded(places int) *CorrMatrix {
	out := &CorrMatrix{Columns: append([]string(nil), m.Columns...), Values: make([][]Number, len(m.Values))}
	for i, row := range m.Values {
		out.Values[i] = make([]Number, len(row))
		for j, v := range row {
			out.Values[i][j] = v.Round(places)
		}
	}
	return out
}

// Correlate computes pairwise Pearson coefficients over the numeric columns of
// ds, using the rows where both columns are present. Pairs with fewer than two
// such rows or with a constant side are undefined, including the diagonal of a
// constant column.
func Correlate(ds *dataset.Dataset) (*CorrMatrix, error) {
	numeric := dataset.Classify(ds).Numeric
	if len(numeric) == 0 {
		return nil, &AggregationError{Kind: NoNumericColumns}
	}
	n := len(numeric)
	idx := make([]int, n)
	for a, col := range numeric {
		idx[a], _ = ds.ColumnIndex(col)
	}
	mat := make([][]Number, n)
	for a := range mat {
		mat[a] = make([]Number, n)
	}
	for a := 0; a < n; a++ {
		for b := a; b < n; b++ {
			xs, ys := paired(ds, idx[a], idx[b])
			r := pearson(xs, ys)
			if a == b && r.Valid {
				r = Defined(1)
			}
			mat[a][b] = r
			mat[b][a] = r
		}
	}
	return &CorrMatrix{Columns: numeric, Values: mat}, nil
}

// Correlated is one entry of a top-N correlation list.
type Correlated struct {
	Column string `json:"column"`
	R      Number `json:"r"`
}

// TopCorrelated returns the target's row of m sorted by descending coefficient,
// without the target itself, truncated to n entries. Undefined coefficients sort
// last; ties keep matrix order.
func TopCorrelated(m *CorrMatrix, target string, n int) ([]Correlated, error) {
	t, ok := m.Index(target)
	if !ok {
		return nil, &AggregationError{Kind: UnknownColumn, Column: target}
	}
	out := make([]Correlated, 0, len(m.Columns))
	for j, col := range m.Columns {
		if j == t {
			continue
		}
		out = append(out, Correlated{Column: col, R: m.Values[t][j]})
	}
	sort.SliceStable(out, func(i, j int) bool {
		a, b := out[i].R, out[j].R
		if a.Valid != b.Valid {
			return a.Valid
		}
		return a.Valid && a.Value > b.Value
	})
	if n < 0 {
		n = 0
	}
	if n < len(out) {
		out = out[:n]
	}
	return out, nil
}

func paired(ds *dataset.Dataset, a, b int) (xs, ys []float64) {
	for r := 0; r < ds.Len(); r++ {
		x, okx := ds.At(r, a).Float()
		y, oky := ds.At(r, b).Float()
		if okx && oky {
			xs = append(xs, x)
			ys = append(ys, y)
		}
	}
	return xs, ys
}

func pearson(xs, ys []float64) Number {
	if len(xs) < 2 || constant(xs) || constant(ys) {
		return Undefined
	}
	r, err := stats.Pearson(xs, ys)
	if err != nil {
		return Undefined
	}
	return Defined(math.Max(-1, math.Min(1, r)))
}

func constant(vals []float64) bool {
	for _, v := range vals[1:] {
		if v != vals[0] {
			return false
		}
	}
	return true
}
