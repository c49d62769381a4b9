package render

import (
	"fmt"
	"io"

	chart "github.com/wcharczuk/go-chart/v2"
	"github.com/wcharczuk/go-chart/v2/drawing"

	"github.com/KaramelBytes/housedash/internal/chartspec"
)

// pointStyle renders points only, no connecting line.
func pointStyle(col drawing.Color) chart.Style {
	return chart.Style{
		StrokeWidth: chart.Disabled,
		DotWidth:    3,
		DotColor:    col.WithAlpha(160),
	}
}

func provider(f Format) chart.RendererProvider {
	if f == PNG {
		return chart.PNG
	}
	return chart.SVG
}

func background() chart.Style {
	return chart.Style{Padding: chart.Box{Top: 48, Left: 16, Right: 16, Bottom: 16}}
}

func renderScatter(w io.Writer, spec *chartspec.Spec, opt Options) error {
	xs := make([]float64, len(spec.Points))
	ys := make([]float64, len(spec.Points))
	for i, p := range spec.Points {
		xs[i], ys[i] = p.X, p.Y
	}
	ch := chart.Chart{
		Title:      spec.Title,
		Width:      opt.Width,
		Height:     opt.Height,
		Background: background(),
		XAxis:      chart.XAxis{Name: spec.XLabel},
		YAxis:      chart.YAxis{Name: spec.YLabel},
		Series: []chart.Series{
			chart.ContinuousSeries{Name: spec.Title, XValues: xs, YValues: ys, Style: pointStyle(chart.ColorBlue)},
		},
	}
	if r := paddedRange(xs); r != nil {
		ch.XAxis.Range = r
	}
	if r := paddedRange(ys); r != nil {
		ch.YAxis.Range = r
	}
	if err := ch.Render(provider(opt.Format), w); err != nil {
		return fmt.Errorf("render scatter: %w", err)
	}
	return nil
}

// paddedRange widens a zero-width range, which go-chart refuses to draw.
// It returns nil when the values already span a range.
func paddedRange(vals []float64) *chart.ContinuousRange {
	lo, hi := vals[0], vals[0]
	for _, v := range vals[1:] {
		if v < lo {
			lo = v
		}
		if v > hi {
			hi = v
		}
	}
	if lo != hi {
		return nil
	}
	return &chart.ContinuousRange{Min: lo - 0.5, Max: hi + 0.5}
}
