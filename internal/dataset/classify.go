package dataset

// Classification partitions a dataset's columns for the selection controls.
type Classification struct {
	Numeric []string `json:"numeric"`
	All     []string `json:"all"`
}

// Classify returns the numeric columns and all columns of ds, in column order.
func Classify(ds *Dataset) Classification {
	c := Classification{All: ds.Columns(), Numeric: []string{}}
	for j, name := range ds.columns {
		if ds.numeric[j] {
			c.Numeric = append(c.Numeric, name)
		}
	}
	return c
}

// IsNumeric reports whether column is in the numeric partition.
func (c Classification) IsNumeric(column string) bool {
	for _, n := range c.Numeric {
		if n == column {
			return true
		}
	}
	return false
}
