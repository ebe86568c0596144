package dashboard

import (
	"github.com/KaramelBytes/housing-explorer/internal/dataset"
)

const (
	DefaultRowsPageSize = 50
	MaxRowsPageSize     = 1000
)

// RowsPage is one page of the raw data table.
type RowsPage struct {
	Columns []string   `json:"columns"`
	Rows    [][]string `json:"rows"`
	Offset  int        `json:"offset"`
	Limit   int        `json:"limit"`
	Total   int        `json:"total"`
}

// Rows returns limit rows of ds starting at offset. A non-positive limit means
// DefaultRowsPageSize; larger limits are capped at MaxRowsPageSize. An offset
// past the end yields an empty page.
func Rows(ds *dataset.Dataset, offset, limit int) (*RowsPage, error) {
	if ds == nil {
		return nil, ErrNoDataset
	}
	if limit <= 0 {
		limit = DefaultRowsPageSize
	}
	if limit > MaxRowsPageSize {
		limit = MaxRowsPageSize
	}
	total := ds.Len()
	if offset < 0 {
		offset = 0
	}
	if offset > total {
		offset = total
	}
	end := offset + limit
	if end > total {
		end = total
	}
	rows := make([][]string, 0, end-offset)
	for i := offset; i < end; i++ {
		rows = append(rows, ds.Row(i))
	}
	return &RowsPage{
		Columns: ds.Columns(),
		Rows:    rows,
		Offset:  offset,
		Limit:   limit,
		Total:   total,
	}, nil
}
