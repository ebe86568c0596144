package dashboard

import (
	"fmt"

	"github.com/KaramelBytes/housing-explorer/internal/analysis"
	"github.com/KaramelBytes/housing-explorer/internal/chart"
	"github.com/KaramelBytes/housing-explorer/internal/dataset"
	"github.com/KaramelBytes/housing-explorer/internal/filter"
)

// MapRequest carries the user's selections for the map panel. Empty roles fall
// back to the first, second and third numeric columns; a nil Hover shows the
// role columns.
type MapRequest struct {
	Longitude string      `json:"longitude,omitempty"`
	Latitude  string      `json:"latitude,omitempty"`
	Price     string      `json:"price,omitempty"`
	Filters   filter.Spec `json:"filters,omitempty"`
	Hover     []string    `json:"hover,omitempty"`
}

// MapPanel is the map exploration panel.
type MapPanel struct {
	Classification   dataset.Classification       `json:"classification"`
	Longitude        string                       `json:"longitude"`
	Latitude         string                       `json:"latitude"`
	Price            string                       `json:"price"`
	AvailableFilters []string                     `json:"available_filters"`
	FilterDefaults   map[string]filter.Constraint `json:"filter_defaults"`
	ActiveFilters    filter.Spec                  `json:"active_filters"`
	TotalRows        int                          `json:"total_rows"`
	FilteredRows     int                          `json:"filtered_rows"`
	Summary          string                       `json:"summary"`
	Hover            []string                     `json:"hover"`
	Chart            *chart.Spec                  `json:"chart"`
}

// DefaultRoles picks longitude, latitude and price among the numeric columns
// by position, reusing the last column when there are fewer than three.
func DefaultRoles(numeric []string) (lon, lat, price string) {
	pick := func(i int) string {
		if i >= len(numeric) {
			i = len(numeric) - 1
		}
		return numeric[i]
	}
	return pick(0), pick(1), pick(2)
}

// Explore classifies ds, resolves the column roles, applies the filters and
// builds the price map of the filtered view.
func Explore(ds *dataset.Dataset, req MapRequest) (*MapPanel, error) {
	if ds == nil {
		return nil, ErrNoDataset
	}
	c := dataset.Classify(ds)
	if len(c.Numeric) == 0 {
		return nil, &analysis.AggregationError{Kind: analysis.NoNumericColumns}
	}
	lon, lat, price := DefaultRoles(c.Numeric)
	for _, role := range []struct {
		name string
		dst  *string
		v    string
	}{
		{"longitude", &lon, req.Longitude},
		{"latitude", &lat, req.Latitude},
		{"price", &price, req.Price},
	} {
		if role.v == "" {
			continue
		}
		if !ds.HasColumn(role.v) {
			return nil, &analysis.AggregationError{Kind: analysis.UnknownColumn, Column: role.v}
		}
		if !c.IsNumeric(role.v) {
			return nil, fmt.Errorf("%s column %q: %w", role.name, role.v, dataset.ErrNotNumeric)
		}
		*role.dst = role.v
	}

	p := &MapPanel{
		Classification: c,
		Longitude:      lon,
		Latitude:       lat,
		Price:          price,
		FilterDefaults: map[string]filter.Constraint{},
		TotalRows:      ds.Len(),
	}
	for _, col := range c.All {
		if col == lon || col == lat || col == price {
			continue
		}
		p.AvailableFilters = append(p.AvailableFilters, col)
		def, err := filter.Default(ds, col)
		if err != nil {
			return nil, err
		}
		p.FilterDefaults[col] = def
	}

	active, err := filter.Normalize(ds, req.Filters)
	if err != nil {
		return nil, err
	}
	view, err := filter.Apply(ds, active)
	if err != nil {
		return nil, err
	}
	p.ActiveFilters = active
	p.FilteredRows = view.Len()
	p.Summary = fmt.Sprintf("Filtered dataset: %d rows (out of %d total)", view.Len(), ds.Len())

	p.Hover = req.Hover
	if p.Hover == nil {
		p.Hover = []string{lon, lat, price}
	}
	p.Chart, err = chart.ScatterMap(view, lat, lon,
		chart.WithTitle("Housing Prices Map"),
		chart.WithColor(price),
		chart.WithColorScale("Viridis"),
		chart.WithHover(p.Hover...),
		chart.WithZoom(10),
		chart.WithHeight(600),
	)
	if err != nil {
		return nil, err
	}
	return p, nil
}
