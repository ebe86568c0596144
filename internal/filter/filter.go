// Package filter restricts a dataset to the rows satisfying user-selected
// constraints: closed numeric intervals and allowed value sets.
package filter

import (
	"fmt"
	"math"
	"sort"
	"strconv"
	"strings"

	"github.com/KaramelBytes/housing-explorer/internal/dataset"
)

// ConstraintKind is the type of a Constraint.
type ConstraintKind string

const (
	KindRange ConstraintKind = "range"
	KindSet   ConstraintKind = "set"
)

// Constraint restricts one column: Min <= v <= Max for ranges, membership in
// Values for sets.
type Constraint struct {
	Kind   ConstraintKind `json:"kind"`
	Min    float64        `json:"min,omitempty"`
	Max    float64        `json:"max,omitempty"`
	Values []string       `json:"values,omitempty"`
}

// Range returns the closed interval [lo, hi].
func Range(lo, hi float64) Constraint {
	return Constraint{Kind: KindRange, Min: lo, Max: hi}
}

// OneOf returns a constraint allowing exactly the given values.
func OneOf(values ...string) Constraint {
	return Constraint{Kind: KindSet, Values: append([]string{}, values...)}
}

func (c Constraint) String() string {
	if c.Kind == KindSet {
		return strings.Join(c.Values, "|")
	}
	return formatBound(c.Min) + ":" + formatBound(c.Max)
}

// Spec maps column names to constraints.
type Spec map[string]Constraint

// Columns returns the constrained columns in sorted order.
func (s Spec) Columns() []string {
	cols := make([]string, 0, len(s))
	for c := range s {
		cols = append(cols, c)
	}
	sort.Strings(cols)
	return cols
}

// Key is a canonical text form of s, used to identify filtered views.
func (s Spec) Key() string {
	parts := make([]string, 0, len(s))
	for _, col := range s.Columns() {
		c := s[col]
		switch c.Kind {
		case KindSet:
			vals := append([]string(nil), c.Values...)
			sort.Strings(vals)
			quoted := make([]string, len(vals))
			for i, v := range vals {
				quoted[i] = strconv.Quote(v)
			}
			parts = append(parts, strconv.Quote(col)+"="+strings.Join(quoted, "|"))
		default:
			parts = append(parts, strconv.Quote(col)+"="+formatBound(c.Min)+":"+formatBound(c.Max))
		}
	}
	return strings.Join(parts, "&")
}

// Default returns the unrestricted constraint for column: the observed
// [min, max] of a numeric column, or every distinct value of a text column in
// order of first appearance.
func Default(ds *dataset.Dataset, column string) (Constraint, error) {
	if !ds.HasColumn(column) {
		return Constraint{}, &FilterError{Kind: UnknownColumn, Column: column}
	}
	if ds.IsNumeric(column) {
		lo, hi, _, err := ds.Range(column)
		if err != nil {
			return Constraint{}, err
		}
		return Range(lo, hi), nil
	}
	vals, err := ds.Unique(column)
	if err != nil {
		return Constraint{}, err
	}
	return OneOf(vals...), nil
}

// Normalize validates spec against ds, clamps numeric bounds to each column's
// observed range and drops constraints equal to the column default.
func Normalize(ds *dataset.Dataset, spec Spec) (Spec, error) {
	out := make(Spec, len(spec))
	for _, col := range spec.Columns() {
		c := spec[col]
		if !ds.HasColumn(col) {
			return nil, &FilterError{Kind: UnknownColumn, Column: col}
		}
		if c.Kind == "" && c.Values != nil {
			c.Kind = KindSet
		}
		switch c.Kind {
		case KindRange:
			if !ds.IsNumeric(col) {
				return nil, &FilterError{Kind: KindMismatch, Column: col, Detail: "numeric range on a text column"}
			}
			lo, hi, ok, err := ds.Range(col)
			if err != nil {
				return nil, err
			}
			if !ok {
				// no observed values to restrict
				continue
			}
			clamped := Range(math.Max(c.Min, lo), math.Min(c.Max, hi))
			if clamped.Min == lo && clamped.Max == hi {
				continue
			}
			out[col] = clamped
		case KindSet:
			all, err := ds.Unique(col)
			if err != nil {
				return nil, err
			}
			if sameSet(c.Values, all) {
				continue
			}
			out[col] = OneOf(c.Values...)
		default:
			return nil, &FilterError{Kind: InvalidExpression, Column: col, Detail: fmt.Sprintf("unknown constraint kind %q", c.Kind)}
		}
	}
	return out, nil
}

// Active reports whether spec restricts ds at all.
func Active(ds *dataset.Dataset, spec Spec) (bool, error) {
	n, err := Normalize(ds, spec)
	if err != nil {
		return false, err
	}
	return len(n) > 0, nil
}

// Apply returns the rows of ds satisfying every active constraint of spec. The
// parent is never modified; with no active constraints ds itself is returned.
// Missing cells never satisfy an active constraint. Inverted bounds and empty
// sets select nothing.
func Apply(ds *dataset.Dataset, spec Spec) (*dataset.Dataset, error) {
	active, err := Normalize(ds, spec)
	if err != nil {
		return nil, err
	}
	if len(active) == 0 {
		return ds, nil
	}
	type check struct {
		col   int
		match func(dataset.Value) bool
	}
	checks := make([]check, 0, len(active))
	for _, col := range active.Columns() {
		j, _ := ds.ColumnIndex(col)
		checks = append(checks, check{col: j, match: matcher(active[col], ds.IsNumeric(col))})
	}
	var rows []int
	for i := 0; i < ds.Len(); i++ {
		keep := true
		for _, c := range checks {
			if !c.match(ds.At(i, c.col)) {
				keep = false
				break
			}
		}
		if keep {
			rows = append(rows, i)
		}
	}
	return ds.Select(rows, ds.Fingerprint()+"#"+active.Key()), nil
}

func matcher(c Constraint, numeric bool) func(dataset.Value) bool {
	if c.Kind == KindRange {
		lo, hi := c.Min, c.Max
		return func(v dataset.Value) bool {
			f, ok := v.Float()
			return ok && lo <= f && f <= hi
		}
	}
	texts := make(map[string]struct{}, len(c.Values))
	var nums []float64
	for _, s := range c.Values {
		texts[s] = struct{}{}
		if numeric {
			if f, err := strconv.ParseFloat(strings.TrimSpace(s), 64); err == nil {
				nums = append(nums, f)
			}
		}
	}
	return func(v dataset.Value) bool {
		if v.IsMissing() {
			return false
		}
		if _, ok := texts[v.Text()]; ok {
			return true
		}
		if f, ok := v.Float(); ok {
			for _, n := range nums {
				if f == n {
					return true
				}
			}
		}
		return false
	}
}

func sameSet(a, b []string) bool {
	as := make(map[string]struct{}, len(a))
	for _, v := range a {
		as[v] = struct{}{}
	}
	bs := make(map[string]struct{}, len(b))
	for _, v := range b {
		bs[v] = struct{}{}
	}
	if len(as) != len(bs) {
		return false
	}
	for v := range as {
		if _, ok := bs[v]; !ok {
			return false
		}
	}
	return true
}

func formatBound(f float64) string {
	return strconv.FormatFloat(f, 'g', -1, 64)
}
