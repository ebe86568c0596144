// Package binning partitions a numeric column into equal-width intervals.
package binning

import (
	"errors"
	"fmt"
	"math"
	"sort"
	"strconv"

	"github.com/montanaflynn/stats"

	"github.com/KaramelBytes/housing-explorer/internal/dataset"
)

// Undefined labels rows whose value is missing.
const Undefined = "n/a"

var (
	ErrBinCount = errors.New("bin count must be positive")
	ErrNoValues = errors.New("column has no numeric values")
)

// Result is an equal-width partition. Bin k is the right-closed interval
// (Edges[k], Edges[k+1]].
type Result struct {
	Edges  []float64
	Labels []string
	// Index holds the bin of every input row, -1 for missing values.
	Index  []int
	Counts []int
}

// Label returns the interval label of row i.
func (r *Result) Label(i int) string {
	if r.Index[i] < 0 {
		return Undefined
	}
	return r.Labels[r.Index[i]]
}

// Bin splits the observed [min, max] of values into count intervals of equal
// width. The lowest edge is moved down by 0.1% of the range so the minimum falls
// into the first bin; a constant column is widened by 0.1% on both sides.
func Bin(values []dataset.Value, count int) (*Result, error) {
	if count <= 0 {
		return nil, fmt.Errorf("%w: %d", ErrBinCount, count)
	}
	var present []float64
	for _, v := range values {
		if f, ok := v.Float(); ok {
			present = append(present, f)
		}
	}
	if len(present) == 0 {
		return nil, ErrNoValues
	}
	lo, _ := stats.Min(present)
	hi, _ := stats.Max(present)

	edges := make([]float64, count+1)
	if lo == hi {
		pad := 0.001 * math.Abs(lo)
		if lo == 0 {
			pad = 0.001
		}
		lo, hi = lo-pad, hi+pad
		linspace(edges, lo, hi)
	} else {
		linspace(edges, lo, hi)
		edges[0] -= (hi - lo) * 0.001
	}

	r := &Result{
		Edges:  edges,
		Labels: labels(edges),
		Index:  make([]int, len(values)),
		Counts: make([]int, count),
	}
	upper := edges[1:]
	for i, v := range values {
		f, ok := v.Float()
		if !ok {
			r.Index[i] = -1
			continue
		}
		k := sort.SearchFloat64s(upper, f)
		if k >= count {
			k = count - 1
		}
		r.Index[i] = k
		r.Counts[k]++
	}
	return r, nil
}

// WithBins returns ds with an added text column name holding the interval label
// of column. Rows with a missing value get a missing label.
func WithBins(ds *dataset.Dataset, column string, count int, name string) (*dataset.Dataset, *Result, error) {
	if !ds.IsNumeric(column) {
		if !ds.HasColumn(column) {
			return nil, nil, fmt.Errorf("%w: %q", dataset.ErrUnknownColumn, column)
		}
		return nil, nil, fmt.Errorf("%w: %q", dataset.ErrNotNumeric, column)
	}
	vals, err := ds.Column(column)
	if err != nil {
		return nil, nil, err
	}
	r, err := Bin(vals, count)
	if err != nil {
		return nil, nil, fmt.Errorf("bin %q: %w", column, err)
	}
	out := make([]dataset.Value, len(vals))
	for i := range vals {
		if r.Index[i] < 0 {
			out[i] = dataset.NA()
			continue
		}
		out[i] = dataset.Str(r.Labels[r.Index[i]])
	}
	derived, err := ds.WithColumn(name, out)
	if err != nil {
		return nil, nil, err
	}
	return derived, r, nil
}

func linspace(dst []float64, lo, hi float64) {
	n := len(dst) - 1
	step := (hi - lo) / float64(n)
	for i := range dst {
		dst[i] = lo + float64(i)*step
	}
	dst[n] = hi
}

// labels formats "(lo, hi]" with the fewest decimals (at least one) that keep
// every label distinct.
func labels(edges []float64) []string {
	var out []string
	for prec := 1; prec <= 12; prec++ {
		out = make([]string, len(edges)-1)
		seen := make(map[string]struct{}, len(out))
		distinct := true
		for k := range out {
			out[k] = "(" + strconv.FormatFloat(edges[k], 'f', prec, 64) + ", " +
				strconv.FormatFloat(edges[k+1], 'f', prec, 64) + "]"
			if _, dup := seen[out[k]]; dup {
				distinct = false
			}
			seen[out[k]] = struct{}{}
		}
		if distinct {
			break
		}
	}
	return out
}
