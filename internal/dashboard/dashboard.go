// Package dashboard computes the overview, map exploration, statistics and
// manual entry panels. Panels are plain functions of their inputs; Session
// drives them from user events.
package dashboard

import (
	"errors"

	"github.com/KaramelBytes/housing-explorer/internal/analysis"
	"github.com/KaramelBytes/housing-explorer/internal/dataset"
)

// ErrNoDataset is returned by panels that need a dataset when none is loaded.
var ErrNoDataset = errors.New("no dataset loaded")

// AgeGroupColumn is the derived column holding housing age intervals.
const AgeGroupColumn = "age_group"

// Config holds the panel parameters.
type Config struct {
	BuiltinPath      string
	HeadRows         int
	Columns          analysis.SnapshotColumns
	Target           string
	TopN             int
	HistogramBins    int
	AgeColumn        string
	AgeBins          int
	PlaceholderPrice float64
	MaxManualPoints  int
	RawRows          int
}

// DefaultConfig returns the builtin housing dashboard settings.
func DefaultConfig() Config {
	return Config{
		BuiltinPath:      "housing.csv",
		HeadRows:         5,
		Columns:          analysis.DefaultSnapshotColumns(),
		Target:           dataset.ColMedianHouseValue,
		TopN:             10,
		HistogramBins:    30,
		AgeColumn:        dataset.ColHousingMedianAge,
		AgeBins:          5,
		PlaceholderPrice: dataset.DefaultPlaceholderPrice,
		MaxManualPoints:  dataset.DefaultMaxPoints,
		RawRows:          DefaultRowsPageSize,
	}
}

// StatisticsOptions extracts the statistics panel settings.
func (c Config) StatisticsOptions() StatisticsOptions {
	return StatisticsOptions{
		Columns:       c.Columns,
		Target:        c.Target,
		TopN:          c.TopN,
		HistogramBins: c.HistogramBins,
		AgeColumn:     c.AgeColumn,
		AgeBins:       c.AgeBins,
		RawRows:       c.RawRows,
	}
}

// Panel is a computed panel or the warning shown in its place.
type Panel[T any] struct {
	Content *T     `json:"content,omitempty"`
	Warning string `json:"warning,omitempty"`
}

func panelOf[T any](content *T, err error) Panel[T] {
	if err != nil {
		return Panel[T]{Warning: err.Error()}
	}
	return Panel[T]{Content: content}
}
