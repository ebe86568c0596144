// Package chart assembles declarative chart specifications for a plotting
// front end. Builders only select fields; they never compute statistics.
package chart

import (
	"errors"
	"fmt"

	"github.com/goccy/go-json"

	"github.com/KaramelBytes/housing-explorer/internal/analysis"
	"github.com/KaramelBytes/housing-explorer/internal/dataset"
)

// Kind is the chart type.
type Kind string

const (
	KindScatter    Kind = "scatter"
	KindScatterMap Kind = "scatter_map"
	KindHistogram  Kind = "histogram"
	KindBox        Kind = "box"
	KindHeatmap    Kind = "heatmap"
	KindBar        Kind = "bar"
)

// ErrUnknownColumn is returned when a chart binds a column absent from its view.
var ErrUnknownColumn = errors.New("chart: unknown column")

// Spec is a declarative chart. Data holds the bound columns of the view, one
// entry per row, with nil for missing values.
type Spec struct {
	Kind       Kind                `json:"kind"`
	Title      string              `json:"title,omitempty"`
	X          string              `json:"x,omitempty"`
	Y          string              `json:"y,omitempty"`
	Lat        string              `json:"lat,omitempty"`
	Lon        string              `json:"lon,omitempty"`
	Color      string              `json:"color,omitempty"`
	Hover      []string            `json:"hover,omitempty"`
	Labels     map[string]string   `json:"labels,omitempty"`
	NBins      int                 `json:"nbins,omitempty"`
	ColorScale string              `json:"color_scale,omitempty"`
	ZMin       *float64            `json:"zmin,omitempty"`
	ZMax       *float64            `json:"zmax,omitempty"`
	Zoom       int                 `json:"zoom,omitempty"`
	MapStyle   string              `json:"map_style,omitempty"`
	Height     int                 `json:"height,omitempty"`
	Rows       int                 `json:"rows"`
	Data       map[string][]any    `json:"data,omitempty"`
	Matrix     [][]analysis.Number `json:"matrix,omitempty"`
	Categories []string            `json:"categories,omitempty"`
	Values     []analysis.Number   `json:"values,omitempty"`
}

// Empty reports whether the chart has nothing to draw.
func (s *Spec) Empty() bool { return s.Rows == 0 }

// JSON encodes the spec.
func (s *Spec) JSON() ([]byte, error) { return json.Marshal(s) }

// Option configures a Spec.
type Option func(*Spec)

func WithTitle(title string) Option { return func(s *Spec) { s.Title = title } }

// WithColor colors marks by column.
func WithColor(column string) Option { return func(s *Spec) { s.Color = column } }

// WithHover adds columns shown on hover. Duplicates are dropped.
func WithHover(columns ...string) Option {
	return func(s *Spec) {
		for _, c := range columns {
			if !contains(s.Hover, c) {
				s.Hover = append(s.Hover, c)
			}
		}
	}
}

// WithLabels sets display labels for bound columns.
func WithLabels(labels map[string]string) Option {
	return func(s *Spec) {
		if s.Labels == nil {
			s.Labels = make(map[string]string, len(labels))
		}
		for k, v := range labels {
			s.Labels[k] = v
		}
	}
}

func WithNBins(n int) Option { return func(s *Spec) { s.NBins = n } }

func WithColorScale(name string) Option { return func(s *Spec) { s.ColorScale = name } }

// WithZRange fixes the color axis of a heatmap.
func WithZRange(lo, hi float64) Option {
	return func(s *Spec) { s.ZMin, s.ZMax = &lo, &hi }
}

func WithZoom(z int) Option { return func(s *Spec) { s.Zoom = z } }

func WithMapStyle(style string) Option { return func(s *Spec) { s.MapStyle = style } }

func WithHeight(px int) Option { return func(s *Spec) { s.Height = px } }

// WithCategories fixes the category order of a box or bar chart.
func WithCategories(order []string) Option {
	return func(s *Spec) { s.Categories = append([]string(nil), order...) }
}

// Scatter plots y against x.
func Scatter(view *dataset.Dataset, x, y string, opts ...Option) (*Spec, error) {
	s := newSpec(KindScatter, opts)
	s.X, s.Y = x, y
	return s.bound(view, x, y)
}

// ScatterMap places one marker per row at (lat, lon).
func ScatterMap(view *dataset.Dataset, lat, lon string, opts ...Option) (*Spec, error) {
	s := newSpec(KindScatterMap, opts)
	s.Lat, s.Lon = lat, lon
	if s.MapStyle == "" {
		s.MapStyle = "open-street-map"
	}
	return s.bound(view, lat, lon)
}

// Histogram counts the values of x.
func Histogram(view *dataset.Dataset, x string, opts ...Option) (*Spec, error) {
	s := newSpec(KindHistogram, opts)
	s.X = x
	return s.bound(view, x)
}

// Box summarizes y per category of x.
func Box(view *dataset.Dataset, x, y string, opts ...Option) (*Spec, error) {
	s := newSpec(KindBox, opts)
	s.X, s.Y = x, y
	return s.bound(view, x, y)
}

// Heatmap draws a correlation matrix.
func Heatmap(m *analysis.CorrMatrix, opts ...Option) *Spec {
	s := newSpec(KindHeatmap, opts)
	s.Categories = append([]string(nil), m.Columns...)
	s.Matrix = m.Values
	s.Rows = len(m.Columns)
	return s
}

// Bar draws one bar per correlated feature.
func Bar(items []analysis.Correlated, opts ...Option) *Spec {
	s := newSpec(KindBar, opts)
	s.Categories = make([]string, len(items))
	s.Values = make([]analysis.Number, len(items))
	for i, it := range items {
		s.Categories[i] = it.Column
		s.Values[i] = it.R
	}
	s.Rows = len(items)
	return s
}

func newSpec(kind Kind, opts []Option) *Spec {
	s := &Spec{Kind: kind}
	for _, o := range opts {
		o(s)
	}
	return s
}

func (s *Spec) bound(view *dataset.Dataset, axes ...string) (*Spec, error) {
	if err := s.bind(view, axes...); err != nil {
		return nil, err
	}
	return s, nil
}

// bind copies the axis, color and hover columns of view into Data.
func (s *Spec) bind(view *dataset.Dataset, axes ...string) error {
	cols := append([]string(nil), axes...)
	if s.Color != "" {
		cols = append(cols, s.Color)
	}
	cols = append(cols, s.Hover...)
	s.Rows = view.Len()
	s.Data = make(map[string][]any, len(cols))
	for _, c := range cols {
		if _, done := s.Data[c]; done {
			continue
		}
		vals, err := view.Column(c)
		if err != nil {
			return fmt.Errorf("%w: %q", ErrUnknownColumn, c)
		}
		out := make([]any, len(vals))
		for i, v := range vals {
			out[i] = v.Interface()
		}
		s.Data[c] = out
	}
	return nil
}

func contains(list []string, v string) bool {
	for _, s := range list {
		if s == v {
			return true
		}
	}
	return false
}
