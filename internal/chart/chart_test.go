package chart

import (
	"strings"
	"testing"

	"github.com/goccy/go-json"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/KaramelBytes/housing-explorer/internal/analysis"
	"github.com/KaramelBytes/housing-explorer/internal/dataset"
)

func view(t *testing.T) *dataset.Dataset {
	t.Helper()
	ds, err := dataset.New("v", []string{"lat", "lon", "price", "kind"}, [][]dataset.Value{
		{dataset.Num(37.8), dataset.Num(-122.2), dataset.Num(450000), dataset.Str("NEAR BAY")},
		{dataset.Num(34.0), dataset.Num(-118.3), dataset.NA(), dataset.Str("INLAND")},
	})
	require.NoError(t, err)
	return ds
}

func TestScatterMapSelectsFields(t *testing.T) {
	s, err := ScatterMap(view(t), "lat", "lon",
		WithColor("price"), WithHover("kind", "price", "kind"), WithZoom(10), WithTitle("Housing Prices Map"))
	require.NoError(t, err)

	assert.Equal(t, KindScatterMap, s.Kind)
	assert.Equal(t, "open-street-map", s.MapStyle)
	assert.Equal(t, []string{"kind", "price"}, s.Hover)
	assert.Equal(t, 2, s.Rows)
	assert.Len(t, s.Data, 4)
	assert.Equal(t, []any{450000.0, nil}, s.Data["price"])
	assert.Equal(t, []any{"NEAR BAY", "INLAND"}, s.Data["kind"])
}

func TestUnknownColumn(t *testing.T) {
	_, err := Scatter(view(t), "lat", "nope")
	assert.ErrorIs(t, err, ErrUnknownColumn)

	_, err = Histogram(view(t), "price", WithColor("missing"))
	assert.ErrorIs(t, err, ErrUnknownColumn)
}

func TestEmptyViewRendersEmptyChart(t *testing.T) {
	empty := view(t).Select(nil, "empty")
	for _, build := range []func() (*Spec, error){
		func() (*Spec, error) { return ScatterMap(empty, "lat", "lon", WithColor("price")) },
		func() (*Spec, error) { return Scatter(empty, "price", "lat") },
		func() (*Spec, error) { return Histogram(empty, "price", WithNBins(30)) },
		func() (*Spec, error) { return Box(empty, "kind", "price") },
	} {
		s, err := build()
		require.NoError(t, err)
		assert.True(t, s.Empty())
		b, err := s.JSON()
		require.NoError(t, err)
		assert.Contains(t, string(b), `"rows":0`)
	}
}

func TestHeatmapAndBar(t *testing.T) {
	m := &analysis.CorrMatrix{
		Columns: []string{"a", "b"},
		Values: [][]analysis.Number{
			{analysis.Defined(1), analysis.Defined(0.5)},
			{analysis.Defined(0.5), analysis.Undefined},
		},
	}
	h := Heatmap(m, WithZRange(-1, 1), WithColorScale("RdBu"))
	b, err := h.JSON()
	require.NoError(t, err)
	js := string(b)
	assert.True(t, strings.Contains(js, `"zmin":-1`), js)
	assert.True(t, strings.Contains(js, `"matrix":[[1,0.5],[0.5,null]]`), js)

	bar := Bar([]analysis.Correlated{{Column: "b", R: analysis.Defined(0.5)}}, WithTitle("Top"))
	assert.Equal(t, []string{"b"}, bar.Categories)
	assert.Equal(t, 1, bar.Rows)
}

func TestSpecRoundTripsThroughJSON(t *testing.T) {
	s, err := Histogram(view(t), "price", WithNBins(30), WithLabels(map[string]string{"price": "Price ($)"}))
	require.NoError(t, err)
	b, err := s.JSON()
	require.NoError(t, err)

	var decoded map[string]any
	require.NoError(t, json.Unmarshal(b, &decoded))
	assert.Equal(t, "histogram", decoded["kind"])
	assert.Equal(t, float64(30), decoded["nbins"])
	assert.Equal(t, "Price ($)", decoded["labels"].(map[string]any)["price"])
}
