package analysis

import (
	"math"
	"sort"

	"github.com/montanaflynn/stats"

	"github.com/KaramelBytes/housing-explorer/internal/dataset"
)

// DescribeStats lists the statistic names of a Description in display order.
var DescribeStats = []string{"count", "mean", "std", "min", "25%", "50%", "75%", "max"}

// ColumnStats are the descriptive statistics of one numeric column, rounded to
// two decimals.
type ColumnStats struct {
	Column string `json:"column"`
	Count  int    `json:"count"`
	Mean   Number `json:"mean"`
	Std    Number `json:"std"`
	Min    Number `json:"min"`
	Q1     Number `json:"q1"`
	Median Number `json:"median"`
	Q3     Number `json:"q3"`
	Max    Number `json:"max"`
}

// Values returns the statistics in DescribeStats order.
func (c ColumnStats) Values() []Number {
	return []Number{Defined(float64(c.Count)), c.Mean, c.Std, c.Min, c.Q1, c.Median, c.Q3, c.Max}
}

// Description is the describe table of a dataset: one entry per numeric column.
type Description struct {
	Columns []ColumnStats `json:"columns"`
}

// Describe computes count, mean, population standard deviation, min, quartiles
// (linear interpolation) and max of every numeric column.
func Describe(ds *dataset.Dataset) (*Description, error) {
	numeric := dataset.Classify(ds).Numeric
	if len(numeric) == 0 {
		return nil, &AggregationError{Kind: NoNumericColumns}
	}
	d := &Description{Columns: make([]ColumnStats, 0, len(numeric))}
	for _, col := range numeric {
		d.Columns = append(d.Columns, describeColumn(col, floats(ds, col)))
	}
	return d, nil
}

// Column returns the statistics of column.
func (d *Description) Column(column string) (ColumnStats, bool) {
	for _, c := range d.Columns {
		if c.Column == column {
			return c, true
		}
	}
	return ColumnStats{}, false
}

func describeColumn(col string, vals []float64) ColumnStats {
	cs := ColumnStats{Column: col, Count: len(vals)}
	if len(vals) == 0 {
		return cs
	}
	sorted := append([]float64(nil), vals...)
	sort.Float64s(sorted)
	std, err := stats.StandardDeviationPopulation(sorted)
	if err != nil {
		std = math.NaN()
	}
	cs.Mean = mean(sorted).Round(2)
	cs.Std = Defined(std).Round(2)
	cs.Min = Defined(sorted[0]).Round(2)
	cs.Q1 = Defined(quantile(sorted, 0.25)).Round(2)
	cs.Median = Defined(quantile(sorted, 0.5)).Round(2)
	cs.Q3 = Defined(quantile(sorted, 0.75)).Round(2)
	cs.Max = Defined(sorted[len(sorted)-1]).Round(2)
	return cs
}

// quantile interpolates linearly between the closest ranks of sorted.
func quantile(sorted []float64, q float64) float64 {
	if len(sorted) == 0 {
		return 0
	}
	if q <= 0 {
		return sorted[0]
	}
	if q >= 1 {
		return sorted[len(sorted)-1]
	}
	pos := q * float64(len(sorted)-1)
	lo := int(math.Floor(pos))
	hi := int(math.Ceil(pos))
	if lo == hi {
		return sorted[lo]
	}
	w := pos - float64(lo)
	return sorted[lo]*(1-w) + sorted[hi]*w
}
