package render

import (
	"bytes"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/KaramelBytes/housedash/internal/chartspec"
)

func barSpec() *chartspec.Spec {
	return &chartspec.Spec{
		ID:         chartspec.Count,
		Kind:       chartspec.KindBar,
		Title:      "Count of Properties by Neighborhood",
		XLabel:     "Neighborhood",
		YLabel:     "Count",
		Categories: []string{"C", "B", "A"},
		Series:     []chartspec.Series{{Name: "Count", Values: []float64{70, 20, 10}}},
	}
}

func stackedSpec() *chartspec.Spec {
	return &chartspec.Spec{
		ID:         chartspec.Comparison,
		Kind:       chartspec.KindStackedBar,
		Title:      "Count of Neighborhood by Street",
		XLabel:     "Neighborhood",
		YLabel:     "Count",
		Categories: []string{"NAmes", "CollgCr"},
		Series: []chartspec.Series{
			{Name: "Pave", Values: []float64{5, 10}},
			{Name: "Grvl", Values: []float64{5, 0}},
		},
	}
}

func boxSpec() *chartspec.Spec {
	return &chartspec.Spec{
		ID:    chartspec.Comparison,
		Kind:  chartspec.KindBox,
		Title: "SalePrice Distribution by Neighborhood",
		Boxes: []chartspec.Box{
			chartspec.NewBox("A", []float64{1, 2, 3, 4, 100}),
			chartspec.NewBox("B", nil),
			chartspec.NewBox("C", []float64{5, 6, 7}),
		},
	}
}

func histSpec() *chartspec.Spec {
	m := chartspec.NewBox("", []float64{1, 2, 2, 3, 4})
	return &chartspec.Spec{
		ID:       chartspec.Histogram,
		Kind:     chartspec.KindHistogram,
		Title:    "Distribution of Sale Price",
		XLabel:   "Sale Price",
		YLabel:   "Count",
		Bins:     []chartspec.Bin{{Lo: 1, Hi: 2, Count: 1}, {Lo: 2, Hi: 3, Count: 2}, {Lo: 3, Hi: 4, Count: 2}},
		Marginal: &m,
	}
}

func scatterSpec() *chartspec.Spec {
	return &chartspec.Spec{
		ID:     chartspec.Scatter,
		Kind:   chartspec.KindScatter,
		Title:  "SalePrice vs GrLivArea",
		XLabel: "GrLivArea",
		YLabel: "SalePrice",
		Points: []chartspec.Point{{X: 800, Y: 100000}, {X: 1200, Y: 150000}, {X: 2000, Y: 260000}},
	}
}

func TestRender_AllKindsSVG(t *testing.T) {
	for name, spec := range map[string]*chartspec.Spec{
		"bar":       barSpec(),
		"stacked":   stackedSpec(),
		"box":       boxSpec(),
		"histogram": histSpec(),
		"scatter":   scatterSpec(),
	} {
		t.Run(name, func(t *testing.T) {
			var buf bytes.Buffer
			require.NoError(t, Render(&buf, spec, Options{Format: SVG, Width: 640, Height: 360}))
			assert.Contains(t, buf.String(), "<svg")
		})
	}
}

func TestRender_PNG(t *testing.T) {
	for name, spec := range map[string]*chartspec.Spec{
		"bar":       barSpec(),
		"stacked":   stackedSpec(),
		"histogram": histSpec(),
	} {
		t.Run(name, func(t *testing.T) {
			var buf bytes.Buffer
			require.NoError(t, Render(&buf, spec, Options{Format: PNG, Width: 320, Height: 240}))
			assert.True(t, bytes.HasPrefix(buf.Bytes(), []byte("\x89PNG")), "missing PNG signature")
		})
	}
}

func TestRender_StackedBarLegendAndAxes(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, Render(&buf, stackedSpec(), DefaultOptions()))
	svg := buf.String()
	for _, text := range []string{"Pave", "Grvl", "Neighborhood", "Count", "NAmes", "CollgCr", "Count of Neighborhood by Street"} {
		assert.Contains(t, svg, ">"+text+"</text>")
	}
}

func TestRender_BarAxisTitles(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, Render(&buf, barSpec(), DefaultOptions()))
	svg := buf.String()
	assert.Contains(t, svg, ">Neighborhood</text>")
	assert.Contains(t, svg, ">Count</text>")
}

func TestRender_HistogramWithoutMarginal(t *testing.T) {
	spec := histSpec()
	spec.Marginal = nil
	var buf bytes.Buffer
	require.NoError(t, Render(&buf, spec, DefaultOptions()))
	assert.Contains(t, buf.String(), "<svg")
}

func TestRender_SinglePointScatter(t *testing.T) {
	spec := scatterSpec()
	spec.Points = spec.Points[:1]
	var buf bytes.Buffer
	require.NoError(t, Render(&buf, spec, DefaultOptions()))
}

func TestRender_Empty(t *testing.T) {
	cases := map[string]*chartspec.Spec{
		"nil":       nil,
		"bar":       {Kind: chartspec.KindBar, Categories: []string{"A"}, Series: []chartspec.Series{{Values: []float64{0}}}},
		"stacked":   {Kind: chartspec.KindStackedBar},
		"box":       {Kind: chartspec.KindBox, Boxes: []chartspec.Box{chartspec.NewBox("A", nil)}},
		"histogram": {Kind: chartspec.KindHistogram},
		"scatter":   {Kind: chartspec.KindScatter},
	}
	for name, spec := range cases {
		t.Run(name, func(t *testing.T) {
			var buf bytes.Buffer
			err := Render(&buf, spec, DefaultOptions())
			assert.True(t, errors.Is(err, ErrEmptyChart), "got %v", err)
		})
	}
}

func TestRender_UnknownKind(t *testing.T) {
	err := Render(&bytes.Buffer{}, &chartspec.Spec{Kind: "pie"}, DefaultOptions())
	require.Error(t, err)
	assert.False(t, errors.Is(err, ErrEmptyChart))
}

func TestParseFormat(t *testing.T) {
	f, err := ParseFormat("PNG")
	require.NoError(t, err)
	assert.Equal(t, PNG, f)
	f, err = ParseFormat("")
	require.NoError(t, err)
	assert.Equal(t, SVG, f)
	_, err = ParseFormat("gif")
	assert.Error(t, err)

	assert.Equal(t, "image/png", ContentType(PNG))
	assert.Equal(t, "image/svg+xml", ContentType(SVG))
}
