package dashboard

import (
	"fmt"

	"github.com/KaramelBytes/housing-explorer/internal/dataset"
)

// OverviewPanel shows the shape and first rows of the loaded dataset.
type OverviewPanel struct {
	Name    string     `json:"name"`
	Rows    int        `json:"rows"`
	Columns []string   `json:"columns"`
	Head    [][]string `json:"head"`
	Message string     `json:"message"`
}

// Overview summarizes ds. A load error, or no dataset at all, yields a warning
// and no content.
func Overview(ds *dataset.Dataset, loadErr error, headRows int) Panel[OverviewPanel] {
	if loadErr != nil {
		return Panel[OverviewPanel]{Warning: "Could not load the dataset: " + loadErr.Error()}
	}
	if ds == nil {
		return Panel[OverviewPanel]{Warning: "No dataset loaded. Load the builtin dataset or upload a CSV file to begin exploring."}
	}
	return Panel[OverviewPanel]{Content: &OverviewPanel{
		Name:    ds.Name(),
		Rows:    ds.Len(),
		Columns: ds.Columns(),
		Head:    ds.Head(headRows).Records(),
		Message: fmt.Sprintf("Successfully loaded dataset with %d rows and %d columns.", ds.Len(), ds.NumColumns()),
	}}
}
