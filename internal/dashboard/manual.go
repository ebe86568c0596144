package dashboard

import (
	"github.com/KaramelBytes/housing-explorer/internal/analysis"
	"github.com/KaramelBytes/housing-explorer/internal/chart"
	"github.com/KaramelBytes/housing-explorer/internal/dataset"
)

// EntryPanel shows manually entered points with their placeholder prediction.
type EntryPanel struct {
	Points      int         `json:"points"`
	Placeholder float64     `json:"placeholder_price"`
	Message     string      `json:"message"`
	Columns     []string    `json:"columns"`
	Rows        [][]string  `json:"rows"`
	Chart       *chart.Spec `json:"chart"`
}

// ManualEntry validates points and maps them. With no points, defaults default
// points are used; the builder rejects them past maxPoints without allocating
// the rest. Every point gets the same placeholder price; there is no prediction
// model.
func ManualEntry(points []dataset.PointInput, defaults, maxPoints int, placeholder float64) (*EntryPanel, error) {
	b := dataset.NewEntryBuilder(maxPoints, placeholder)
	for _, p := range points {
		if err := b.Add(p); err != nil {
			return nil, err
		}
	}
	if len(points) == 0 {
		if err := b.AddDefaults(defaults); err != nil {
			return nil, err
		}
	}
	ds, err := b.Build()
	if err != nil {
		return nil, err
	}
	spec, err := chart.ScatterMap(ds, dataset.ColLatitude, dataset.ColLongitude,
		chart.WithTitle("House price prediction (placeholder)"),
		chart.WithColor(dataset.ColPredictedPrice),
		chart.WithHover(ds.Columns()...),
		chart.WithZoom(6),
	)
	if err != nil {
		return nil, err
	}
	return &EntryPanel{
		Points:      ds.Len(),
		Placeholder: b.Placeholder(),
		Message:     "Predicted house price (placeholder): " + analysis.Currency(analysis.Defined(b.Placeholder())),
		Columns:     ds.Columns(),
		Rows:        ds.Records(),
		Chart:       spec,
	}, nil
}
