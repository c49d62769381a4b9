// Package render turns chart specs into images. Bar and scatter charts are
// drawn with go-chart; box plots and histograms with gonum/plot.
package render

import (
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/KaramelBytes/housedash/internal/chartspec"
)

// ErrEmptyChart is returned when a spec has nothing to draw.
var ErrEmptyChart = errors.New("chart has no data to draw")

// Format is an output image format.
type Format string

const (
	SVG Format = "svg"
	PNG Format = "png"
)

// ParseFormat accepts "svg" or "png" in any case.
func ParseFormat(s string) (Format, error) {
	switch Format(strings.ToLower(strings.TrimSpace(s))) {
	case SVG, "":
		return SVG, nil
	case PNG:
		return PNG, nil
	default:
		return "", fmt.Errorf("unsupported image format: %q (use svg or png)", s)
	}
}

// ContentType returns the MIME type for f.
func ContentType(f Format) string {
	if f == PNG {
		return "image/png"
	}
	return "image/svg+xml"
}

// Options sizes the output in pixels.
type Options struct {
	Format Format
	Width  int
	Height int
}

// DefaultOptions returns a 960x540 SVG.
func DefaultOptions() Options {
	return Options{Format: SVG, Width: 960, Height: 540}
}

// Render draws spec to w.
func Render(w io.Writer, spec *chartspec.Spec, opt Options) error {
	if spec == nil {
		return ErrEmptyChart
	}
	if !spec.Kind.Known() {
		return fmt.Errorf("render: unsupported chart kind %q", spec.Kind)
	}
	if spec.Empty() {
		return ErrEmptyChart
	}
	def := DefaultOptions()
	if opt.Format == "" {
		opt.Format = def.Format
	}
	if opt.Width <= 0 {
		opt.Width = def.Width
	}
	if opt.Height <= 0 {
		opt.Height = def.Height
	}
	switch spec.Kind {
	case chartspec.KindBar:
		return renderBar(w, spec, opt)
	case chartspec.KindStackedBar:
		return renderStackedBar(w, spec, opt)
	case chartspec.KindScatter:
		return renderScatter(w, spec, opt)
	case chartspec.KindBox:
		return renderBoxes(w, spec, opt)
	default:
		return renderHistogram(w, spec, opt)
	}
}
