// Package dataset holds the in-memory tabular model: loading from CSV/TSV/XLSX,
// column classification and manual entry.
package dataset

import (
	"encoding/binary"
	"fmt"
	"math"
	"strconv"

	"github.com/cespare/xxhash/v2"
)

// Builtin California housing column names.
const (
	ColLongitude        = "longitude"
	ColLatitude         = "latitude"
	ColHousingMedianAge = "housing_median_age"
	ColTotalRooms       = "total_rooms"
	ColTotalBedrooms    = "total_bedrooms"
	ColPopulation       = "population"
	ColHouseholds       = "households"
	ColMedianIncome     = "median_income"
	ColMedianHouseValue = "median_house_value"
	ColPredictedPrice   = "predicted_price"
)

// Dataset is an immutable table. Derived datasets (Select, Head, WithColumn) never
// modify their parent.
type Dataset struct {
	name        string
	fingerprint string
	columns     []string
	index       map[string]int
	numeric     []bool
	rows        [][]Value
}

// New builds a dataset from column names and rows. A column is numeric when every
// non-missing value in it is a number. The fingerprint is a hash of the content.
func New(name string, columns []string, rows [][]Value) (*Dataset, error) {
	index := make(map[string]int, len(columns))
	for i, c := range columns {
		if _, dup := index[c]; dup {
			return nil, fmt.Errorf("duplicate column %q", c)
		}
		index[c] = i
	}
	for i, r := range rows {
		if len(r) != len(columns) {
			return nil, fmt.Errorf("row %d has %d values, want %d", i+1, len(r), len(columns))
		}
	}
	numeric := make([]bool, len(columns))
	for j := range columns {
		numeric[j] = true
		for _, r := range rows {
			if r[j].Kind == Text {
				numeric[j] = false
				break
			}
		}
	}
	ds := &Dataset{
		name:    name,
		columns: append([]string(nil), columns...),
		index:   index,
		numeric: numeric,
		rows:    rows,
	}
	ds.fingerprint = "mem:" + ds.contentHash()
	return ds, nil
}

// Name returns the dataset's display name (file name for loaded datasets).
func (d *Dataset) Name() string { return d.name }

// Fingerprint identifies the dataset's content for caching.
func (d *Dataset) Fingerprint() string { return d.fingerprint }

// Columns returns the column names in header order.
func (d *Dataset) Columns() []string { return append([]string(nil), d.columns...) }

// NumColumns returns the number of columns.
func (d *Dataset) NumColumns() int { return len(d.columns) }

// Len returns the number of rows.
func (d *Dataset) Len() int { return len(d.rows) }

// HasColumn reports whether name is a column of d.
func (d *Dataset) HasColumn(name string) bool {
	_, ok := d.index[name]
	return ok
}

// ColumnIndex returns the position of name.
func (d *Dataset) ColumnIndex(name string) (int, bool) {
	i, ok := d.index[name]
	return i, ok
}

// IsNumeric reports whether name is a numeric column.
func (d *Dataset) IsNumeric(name string) bool {
	i, ok := d.index[name]
	return ok && d.numeric[i]
}

// At returns the value at row i, column j.
func (d *Dataset) At(i, j int) Value { return d.rows[i][j] }

// Column returns a copy of the values of column name.
func (d *Dataset) Column(name string) ([]Value, error) {
	j, ok := d.index[name]
	if !ok {
		return nil, unknownColumn(name)
	}
	out := make([]Value, len(d.rows))
	for i, r := range d.rows {
		out[i] = r[j]
	}
	return out, nil
}

// Floats returns the non-missing values of a numeric column.
func (d *Dataset) Floats(name string) ([]float64, error) {
	j, ok := d.index[name]
	if !ok {
		return nil, unknownColumn(name)
	}
	if !d.numeric[j] {
		return nil, fmt.Errorf("%w: %q", ErrNotNumeric, name)
	}
	out := make([]float64, 0, len(d.rows))
	for _, r := range d.rows {
		if f, ok := r[j].Float(); ok {
			out = append(out, f)
		}
	}
	return out, nil
}

// Range returns the observed min and max of a numeric column. ok is false when the
// column has no numeric values.
func (d *Dataset) Range(name string) (lo, hi float64, ok bool, err error) {
	vals, err := d.Floats(name)
	if err != nil {
		return 0, 0, false, err
	}
	if len(vals) == 0 {
		return 0, 0, false, nil
	}
	lo, hi = math.Inf(1), math.Inf(-1)
	for _, v := range vals {
		lo = math.Min(lo, v)
		hi = math.Max(hi, v)
	}
	return lo, hi, true, nil
}

// Unique returns the distinct non-missing value texts of column name in order of
// first appearance.
func (d *Dataset) Unique(name string) ([]string, error) {
	j, ok := d.index[name]
	if !ok {
		return nil, unknownColumn(name)
	}
	seen := make(map[string]struct{})
	var out []string
	for _, r := range d.rows {
		v := r[j]
		if v.IsMissing() {
			continue
		}
		t := v.Text()
		if _, dup := seen[t]; dup {
			continue
		}
		seen[t] = struct{}{}
		out = append(out, t)
	}
	return out, nil
}

// Select returns a derived dataset with the given row indices, in order. The
// fingerprint identifies the derivation.
func (d *Dataset) Select(rows []int, fingerprint string) *Dataset {
	out := make([][]Value, len(rows))
	for i, r := range rows {
		out[i] = d.rows[r]
	}
	return &Dataset{
		name:        d.name,
		fingerprint: fingerprint,
		columns:     d.columns,
		index:       d.index,
		numeric:     d.numeric,
		rows:        out,
	}
}

// Head returns the first n rows.
func (d *Dataset) Head(n int) *Dataset {
	if n < 0 {
		n = 0
	}
	if n > len(d.rows) {
		n = len(d.rows)
	}
	idx := make([]int, n)
	for i := range idx {
		idx[i] = i
	}
	return d.Select(idx, d.fingerprint+"#head:"+strconv.Itoa(n))
}

// WithColumn returns a derived dataset with an extra column, or with column name
// replaced when it already exists.
func (d *Dataset) WithColumn(name string, values []Value) (*Dataset, error) {
	if len(values) != len(d.rows) {
		return nil, fmt.Errorf("column %q has %d values, want %d", name, len(values), len(d.rows))
	}
	j, exists := d.index[name]
	columns := d.columns
	if !exists {
		columns = append(append([]string(nil), d.columns...), name)
		j = len(columns) - 1
	}
	rows := make([][]Value, len(d.rows))
	for i, r := range d.rows {
		nr := make([]Value, len(columns))
		copy(nr, r)
		nr[j] = values[i]
		rows[i] = nr
	}
	out, err := New(d.name, columns, rows)
	if err != nil {
		return nil, err
	}
	out.fingerprint = d.fingerprint + "#col:" + name + ":" + out.contentHash()
	return out, nil
}

// Row returns the display texts of row i.
func (d *Dataset) Row(i int) []string {
	out := make([]string, len(d.columns))
	for j, v := range d.rows[i] {
		out[j] = v.Text()
	}
	return out
}

// Records returns the display texts of every row.
func (d *Dataset) Records() [][]string {
	out := make([][]string, len(d.rows))
	for i := range d.rows {
		out[i] = d.Row(i)
	}
	return out
}

func (d *Dataset) contentHash() string {
	h := xxhash.New()
	var buf [8]byte
	for _, c := range d.columns {
		_, _ = h.WriteString(c)
		_, _ = h.Write([]byte{0})
	}
	for _, r := range d.rows {
		for _, v := range r {
			_, _ = h.Write([]byte{byte(v.Kind)})
			switch v.Kind {
			case Number:
				binary.LittleEndian.PutUint64(buf[:], math.Float64bits(v.Num))
				_, _ = h.Write(buf[:])
			case Text:
				_, _ = h.WriteString(v.Raw)
				_, _ = h.Write([]byte{0})
			}
		}
	}
	return strconv.FormatUint(h.Sum64(), 16)
}
