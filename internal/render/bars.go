package render

import (
	"fmt"
	"io"
	"math"

	"gonum.org/v1/plot"
	"gonum.org/v1/plot/plotter"
	"gonum.org/v1/plot/plotutil"
	"gonum.org/v1/plot/vg"

	"github.com/KaramelBytes/housedash/internal/chartspec"
)

func renderBar(w io.Writer, spec *chartspec.Spec, opt Options) error {
	p, err := barPlot(spec, opt, false)
	if err != nil {
		return err
	}
	if err := writePlot(w, p, opt); err != nil {
		return fmt.Errorf("write bar chart: %w", err)
	}
	return nil
}

// renderStackedBar stacks one bar chart per series, in series order, and
// names each series in the legend.
func renderStackedBar(w io.Writer, spec *chartspec.Spec, opt Options) error {
	p, err := barPlot(spec, opt, true)
	if err != nil {
		return err
	}
	if err := writePlot(w, p, opt); err != nil {
		return fmt.Errorf("write stacked bar chart: %w", err)
	}
	return nil
}

func barPlot(spec *chartspec.Spec, opt Options, stacked bool) (*plot.Plot, error) {
	p := plot.New()
	p.Title.Text = spec.Title
	p.X.Label.Text = spec.XLabel
	p.Y.Label.Text = spec.YLabel

	barW := length(opt.Width) / vg.Length(2*len(spec.Categories)+2)
	if barW > 40 {
		barW = 40
	}
	var below *plotter.BarChart
	for i, se := range spec.Series {
		bc, err := plotter.NewBarChart(plotter.Values(se.Values), barW)
		if err != nil {
			return nil, fmt.Errorf("series %q: %w", se.Name, err)
		}
		bc.LineStyle.Width = 0
		bc.Color = boxFill
		if stacked {
			bc.Color = plotutil.Color(i)
			if below != nil {
				bc.StackOn(below)
			}
			p.Legend.Add(se.Name, bc)
		}
		p.Add(bc)
		below = bc
	}
	if stacked {
		p.Legend.Top = true
		// Headroom for the legend rows above the tallest stack.
		p.Y.Max *= 1 + math.Min(0.08*float64(len(spec.Series)), 1)
	}
	p.NominalX(spec.Categories...)
	rotateTicks(p, len(spec.Categories))
	return p, nil
}
