package analysis

import (
	"strings"

	"github.com/montanaflynn/stats"

	"github.com/KaramelBytes/housing-explorer/internal/cache"
	"github.com/KaramelBytes/housing-explorer/internal/dataset"
)

// SnapshotColumns names the columns the snapshot metrics read.
type SnapshotColumns struct {
	Price      string `json:"price"`
	Rooms      string `json:"rooms"`
	Income     string `json:"income"`
	Households string `json:"households"`
}

// DefaultSnapshotColumns returns the builtin housing column names.
func DefaultSnapshotColumns() SnapshotColumns {
	return SnapshotColumns{
		Price:      dataset.ColMedianHouseValue,
		Rooms:      dataset.ColTotalRooms,
		Income:     dataset.ColMedianIncome,
		Households: dataset.ColHouseholds,
	}
}

func (c SnapshotColumns) key() string {
	return strings.Join([]string{c.Price, c.Rooms, c.Income, c.Households}, "\x00")
}

// Snapshot is the fixed set of headline metrics of a dataset.
type Snapshot struct {
	Count                 int    `json:"count"`
	MeanPrice             Number `json:"mean_price"`
	MedianPrice           Number `json:"median_price"`
	MeanRooms             Number `json:"mean_rooms"`
	MeanIncome            Number `json:"mean_income"`
	MeanRoomsPerHousehold Number `json:"mean_rooms_per_household"`
}

// Summarize computes the snapshot of ds. Metrics whose columns are absent, not
// numeric or empty are undefined.
func Summarize(ds *dataset.Dataset, cols SnapshotColumns) Snapshot {
	price := floats(ds, cols.Price)
	return Snapshot{
		Count:                 ds.Len(),
		MeanPrice:             mean(price),
		MedianPrice:           median(price),
		MeanRooms:             mean(floats(ds, cols.Rooms)),
		MeanIncome:            mean(floats(ds, cols.Income)),
		MeanRoomsPerHousehold: MeanRatio(ds, cols.Rooms, cols.Households),
	}
}

// MeanRatio averages num/den computed per row. Rows with a missing value or a
// zero denominator do not contribute.
func MeanRatio(ds *dataset.Dataset, num, den string) Number {
	i, ok1 := ds.ColumnIndex(num)
	j, ok2 := ds.ColumnIndex(den)
	if !ok1 || !ok2 || !ds.IsNumeric(num) || !ds.IsNumeric(den) {
		return Undefined
	}
	var ratios []float64
	for r := 0; r < ds.Len(); r++ {
		n, okn := ds.At(r, i).Float()
		d, okd := ds.At(r, j).Float()
		if !okn || !okd || d == 0 {
			continue
		}
		ratios = append(ratios, n/d)
	}
	return mean(ratios)
}

// SnapshotCache memoizes snapshots by dataset fingerprint and column roles.
type SnapshotCache struct {
	c *cache.Cache[Snapshot]
}

// NewSnapshotCache returns an empty cache.
func NewSnapshotCache() *SnapshotCache {
	return &SnapshotCache{c: cache.New[Snapshot]("snapshot")}
}

// Summarize returns the cached snapshot of ds, computing it on first use. The
// boolean reports a cache hit.
func (s *SnapshotCache) Summarize(ds *dataset.Dataset, cols SnapshotColumns) (Snapshot, bool) {
	snap, hit, _ := s.c.GetOrCompute(ds.Fingerprint()+"|"+cols.key(), func() (Snapshot, error) {
		return Summarize(ds, cols), nil
	})
	return snap, hit
}

// Len reports the number of cached snapshots.
func (s *SnapshotCache) Len() int { return s.c.Len() }

// Forget drops the snapshots of the dataset with the given fingerprint and of
// every dataset derived from it.
func (s *SnapshotCache) Forget(fingerprint string) int {
	return s.c.DeletePrefix(fingerprint+"|") + s.c.DeletePrefix(fingerprint+"#")
}

// floats returns the present values of column, or nil when it is absent or text.
func floats(ds *dataset.Dataset, column string) []float64 {
	if !ds.IsNumeric(column) {
		return nil
	}
	vals, err := ds.Floats(column)
	if err != nil {
		return nil
	}
	return vals
}

func mean(vals []float64) Number {
	if len(vals) == 0 {
		return Undefined
	}
	m, err := stats.Mean(vals)
	if err != nil {
		return Undefined
	}
	return Defined(m)
}

func median(vals []float64) Number {
	if len(vals) == 0 {
		return Undefined
	}
	m, err := stats.Median(vals)
	if err != nil {
		return Undefined
	}
	return Defined(m)
}
