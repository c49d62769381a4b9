package render

import (
	"fmt"
	"image/color"
	"io"

	"gonum.org/v1/plot"
	"gonum.org/v1/plot/plotter"
	"gonum.org/v1/plot/vg"
	"gonum.org/v1/plot/vg/draw"
	"gonum.org/v1/plot/vg/vgimg"
	"gonum.org/v1/plot/vg/vgsvg"

	"github.com/KaramelBytes/housedash/internal/chartspec"
)

var (
	boxFill  = color.RGBA{R: 99, G: 110, B: 250, A: 255}
	histFill = color.RGBA{R: 239, G: 85, B: 59, A: 255}
)

// pixelsPerPoint maps pixel sizes onto vg lengths at 96 DPI.
const pixelsPerPoint = 96.0 / 72.0

func length(px int) vg.Length {
	return vg.Length(float64(px) / pixelsPerPoint)
}

// imageCanvas is a sized canvas that can encode itself.
type imageCanvas interface {
	vg.CanvasSizer
	io.WriterTo
}

func newCanvas(f Format, w, h vg.Length) imageCanvas {
	if f == PNG {
		return vgimg.PngCanvas{Canvas: vgimg.NewWith(vgimg.UseWH(w, h), vgimg.UseDPI(96))}
	}
	return vgsvg.New(w, h)
}

// rotateTicks slants crowded nominal labels.
func rotateTicks(p *plot.Plot, n int) {
	if n > 12 {
		p.X.Tick.Label.Rotation = 0.8
		p.X.Tick.Label.XAlign = draw.XRight
	}
}

func writePlot(w io.Writer, p *plot.Plot, opt Options) error {
	c := newCanvas(opt.Format, length(opt.Width), length(opt.Height))
	p.Draw(draw.New(c))
	_, err := c.WriteTo(w)
	return err
}

func renderBoxes(w io.Writer, spec *chartspec.Spec, opt Options) error {
	p := plot.New()
	p.Title.Text = spec.Title
	p.X.Label.Text = spec.XLabel
	p.Y.Label.Text = spec.YLabel

	boxW := length(opt.Width) / vg.Length(2*len(spec.Boxes)+2)
	if boxW > 40 {
		boxW = 40
	}
	labels := make([]string, len(spec.Boxes))
	for i, b := range spec.Boxes {
		labels[i] = b.Label
		if b.N == 0 {
			continue
		}
		bp, err := plotter.NewBoxPlot(boxW, float64(i), plotter.Values(b.Values))
		if err != nil {
			return fmt.Errorf("box %q: %w", b.Label, err)
		}
		bp.FillColor = boxFill
		p.Add(bp)
	}
	p.NominalX(labels...)
	rotateTicks(p, len(labels))

	if err := writePlot(w, p, opt); err != nil {
		return fmt.Errorf("write box plot: %w", err)
	}
	return nil
}

// renderHistogram draws the bins with the marginal box plot in a strip
// along the top fifth of the canvas.
func renderHistogram(w io.Writer, spec *chartspec.Spec, opt Options) error {
	hp := plot.New()
	hp.X.Label.Text = spec.XLabel
	hp.Y.Label.Text = spec.YLabel

	h := &plotter.Histogram{
		Bins:      make([]plotter.HistogramBin, len(spec.Bins)),
		Width:     spec.Bins[0].Hi - spec.Bins[0].Lo,
		FillColor: histFill,
		LineStyle: plotter.DefaultLineStyle,
	}
	for i, b := range spec.Bins {
		h.Bins[i] = plotter.HistogramBin{Min: b.Lo, Max: b.Hi, Weight: float64(b.Count)}
	}
	hp.Add(h)

	width, height := length(opt.Width), length(opt.Height)
	c := newCanvas(opt.Format, width, height)
	dc := draw.New(c)

	if spec.Marginal == nil || spec.Marginal.N == 0 {
		hp.Title.Text = spec.Title
		hp.Draw(dc)
	} else {
		mp := plot.New()
		mp.Title.Text = spec.Title
		bp, err := plotter.NewBoxPlot(height/16, 0, plotter.Values(spec.Marginal.Values))
		if err != nil {
			return fmt.Errorf("marginal box: %w", err)
		}
		bp.Horizontal = true
		bp.FillColor = histFill
		mp.Add(bp)
		mp.X.Min, mp.X.Max = hp.X.Min, hp.X.Max
		mp.HideAxes()

		strip := height / 5
		mp.Draw(draw.Crop(dc, 0, 0, height-strip, 0))
		hp.Draw(draw.Crop(dc, 0, 0, 0, -strip))
	}
	if _, err := c.WriteTo(w); err != nil {
		return fmt.Errorf("write histogram: %w", err)
	}
	return nil
}
