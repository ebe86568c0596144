package dashboard

import (
	"fmt"
	"strconv"

	"github.com/KaramelBytes/housing-explorer/internal/analysis"
	"github.com/KaramelBytes/housing-explorer/internal/binning"
	"github.com/KaramelBytes/housing-explorer/internal/chart"
	"github.com/KaramelBytes/housing-explorer/internal/dataset"
)

// StatisticsOptions configures the statistics panel.
type StatisticsOptions struct {
	Columns       analysis.SnapshotColumns
	Target        string
	TopN          int
	HistogramBins int
	AgeColumn     string
	AgeBins       int

	// RawRows is the size of the first raw data page; 0 leaves it out.
	RawRows int
}

// Metric is one formatted headline number.
type Metric struct {
	Label string `json:"label"`
	Value string `json:"value"`
}

// NamedChart is a chart with a stable identifier.
type NamedChart struct {
	Name string      `json:"name"`
	Spec *chart.Spec `json:"spec"`
}

// StatisticsPanel holds metrics, charts, the describe table, the correlation
// analysis and the first page of raw rows of a dataset.
type StatisticsPanel struct {
	Snapshot    analysis.Snapshot     `json:"snapshot"`
	Cached      bool                  `json:"cached"`
	Metrics     []Metric              `json:"metrics"`
	Charts      []NamedChart          `json:"charts"`
	Describe    *analysis.Description `json:"describe"`
	Correlation *analysis.CorrMatrix  `json:"correlation"`
	Heatmap     *chart.Spec           `json:"heatmap"`
	Top         []analysis.Correlated `json:"top_correlated"`
	TopChart    *chart.Spec           `json:"top_chart,omitempty"`
	Raw         *RowsPage             `json:"raw,omitempty"`
	Warnings    []string              `json:"warnings,omitempty"`
}

// Statistics computes the statistics panel of ds. The snapshot comes from
// snaps when given. A chart that cannot be built becomes a warning; the panel
// itself fails only when ds has no numeric columns.
func Statistics(ds *dataset.Dataset, opt StatisticsOptions, snaps *analysis.SnapshotCache) (*StatisticsPanel, error) {
	if ds == nil {
		return nil, ErrNoDataset
	}
	desc, err := analysis.Describe(ds)
	if err != nil {
		return nil, err
	}
	corr, err := analysis.Correlate(ds)
	if err != nil {
		return nil, err
	}
	p := &StatisticsPanel{Describe: desc, Correlation: corr.Rounded(3)}
	if opt.RawRows > 0 {
		p.Raw, _ = Rows(ds, 0, opt.RawRows)
	}
	if snaps != nil {
		p.Snapshot, p.Cached = snaps.Summarize(ds, opt.Columns)
	} else {
		p.Snapshot = analysis.Summarize(ds, opt.Columns)
	}
	p.Metrics = []Metric{
		{Label: "Properties", Value: strconv.Itoa(p.Snapshot.Count)},
		{Label: "Mean house price", Value: analysis.Currency(p.Snapshot.MeanPrice)},
		{Label: "Median house price", Value: analysis.Currency(p.Snapshot.MedianPrice)},
		{Label: "Mean rooms per household", Value: p.Snapshot.MeanRoomsPerHousehold.Format(2)},
	}

	cols := opt.Columns
	priceLabel := map[string]string{cols.Price: "House price ($)"}
	p.add("price_histogram", func() (*chart.Spec, error) {
		return chart.Histogram(ds, cols.Price,
			chart.WithTitle("House price distribution"),
			chart.WithNBins(opt.HistogramBins),
			chart.WithLabels(priceLabel),
			chart.WithLabels(map[string]string{"count": "Properties"}))
	})
	p.add("income_vs_price", func() (*chart.Spec, error) {
		return chart.Scatter(ds, cols.Income, cols.Price,
			chart.WithTitle("Income vs house price"),
			chart.WithColor(opt.AgeColumn),
			chart.WithLabels(priceLabel),
			chart.WithLabels(map[string]string{cols.Income: "Median income", opt.AgeColumn: "House age (years)"}))
	})
	p.add("rooms_vs_price", func() (*chart.Spec, error) {
		return chart.Scatter(ds, cols.Rooms, cols.Price,
			chart.WithTitle("House price vs total rooms"),
			chart.WithLabels(priceLabel),
			chart.WithLabels(map[string]string{cols.Rooms: "Total rooms"}))
	})
	p.add("price_by_age", func() (*chart.Spec, error) {
		binned, bins, err := binning.WithBins(ds, opt.AgeColumn, opt.AgeBins, AgeGroupColumn)
		if err != nil {
			return nil, err
		}
		return chart.Box(binned, AgeGroupColumn, cols.Price,
			chart.WithTitle("House price by age"),
			chart.WithCategories(bins.Labels),
			chart.WithLabels(priceLabel),
			chart.WithLabels(map[string]string{AgeGroupColumn: "House age"}))
	})
	p.add("population_vs_price", func() (*chart.Spec, error) {
		return chart.Scatter(ds, dataset.ColPopulation, cols.Price,
			chart.WithTitle("Population vs house price"),
			chart.WithLabels(priceLabel),
			chart.WithLabels(map[string]string{dataset.ColPopulation: "Population"}))
	})
	p.add("households_vs_price", func() (*chart.Spec, error) {
		return chart.Scatter(ds, cols.Households, cols.Price,
			chart.WithTitle("Households vs house price"),
			chart.WithLabels(priceLabel),
			chart.WithLabels(map[string]string{cols.Households: "Households"}))
	})

	p.Heatmap = chart.Heatmap(p.Correlation,
		chart.WithTitle("Correlation matrix"),
		chart.WithColorScale("RdBu"),
		chart.WithZRange(-1, 1),
		chart.WithLabels(map[string]string{"color": "Correlation"}))

	top, err := analysis.TopCorrelated(p.Correlation, opt.Target, opt.TopN)
	if err != nil {
		p.warn("top_correlated", err)
		return p, nil
	}
	p.Top = top
	p.TopChart = chart.Bar(top,
		chart.WithTitle(fmt.Sprintf("Top %d features correlated with %s", opt.TopN, opt.Target)),
		chart.WithLabels(map[string]string{"value": "Correlation", "index": "Feature"}))
	return p, nil
}

func (p *StatisticsPanel) add(name string, build func() (*chart.Spec, error)) {
	spec, err := build()
	if err != nil {
		p.warn(name, err)
		return
	}
	p.Charts = append(p.Charts, NamedChart{Name: name, Spec: spec})
}

func (p *StatisticsPanel) warn(name string, err error) {
	p.Warnings = append(p.Warnings, name+": "+err.Error())
}

// Chart returns the named chart.
func (p *StatisticsPanel) Chart(name string) (*chart.Spec, bool) {
	for _, c := range p.Charts {
		if c.Name == name {
			return c.Spec, true
		}
	}
	return nil, false
}
