package query

import (
	"errors"
	"fmt"

	"github.com/KaramelBytes/housedash/internal/catalog"
	"github.com/KaramelBytes/housedash/internal/chartspec"
	"github.com/KaramelBytes/housedash/internal/dataset"
)

// ErrUnknownChart is returned by Build for ids that are not dashboard charts.
var ErrUnknownChart = errors.New("unknown chart")

// Selection is the dropdown state of one dashboard session.
type Selection struct {
	Categorical string `json:"categorical"`
	Comparison  string `json:"comparison"`
	X           string `json:"x"`
	Y           string `json:"y"`
}

// DefaultSelection is what a fresh dashboard shows.
func DefaultSelection() Selection {
	return Selection{
		Categorical: "Neighborhood",
		Comparison:  catalog.DefaultTarget,
		X:           "GrLivArea",
		Y:           catalog.DefaultTarget,
	}
}

// Merge fills the empty fields of sel from fallback.
func (sel Selection) Merge(fallback Selection) Selection {
	if sel.Categorical == "" {
		sel.Categorical = fallback.Categorical
	}
	if sel.Comparison == "" {
		sel.Comparison = fallback.Comparison
	}
	if sel.X == "" {
		sel.X = fallback.X
	}
	if sel.Y == "" {
		sel.Y = fallback.Y
	}
	return sel
}

// Resolve adapts defaults to the loaded dataset: a default that the matching
// dropdown does not offer is replaced by the first column it does offer.
func Resolve(c *catalog.Catalog, defaults Selection) Selection {
	return Selection{
		Categorical: firstOffered(defaults.Categorical, c.CategoricalColumns()),
		Comparison:  firstOffered(defaults.Comparison, c.AllFeaturesPlusTarget()),
		X:           firstOffered(defaults.X, c.NumericalForComparison()),
		Y:           firstOffered(defaults.Y, c.NumericalFeaturesPlusTarget()),
	}
}

func firstOffered(want string, offered []string) string {
	for _, o := range offered {
		if o == want {
			return want
		}
	}
	if len(offered) > 0 {
		return offered[0]
	}
	return want
}

// Build runs the query behind chart id for the given selection.
func Build(c *catalog.Catalog, id chartspec.ID, sel Selection, bins int) (*chartspec.Spec, error) {
	switch id {
	case chartspec.Comparison:
		return Compare(c, sel.Categorical, sel.Comparison)
	case chartspec.Count:
		return CountBy(c, sel.Categorical)
	case chartspec.Scatter:
		return Scatter(c, sel.X, sel.Y)
	case chartspec.Histogram:
		return Histogram(c, bins)
	default:
		return nil, fmt.Errorf("%w: %q", ErrUnknownChart, id)
	}
}

// Preview is what the dashboard page shows about a chart before its image is
// requested.
type Preview struct {
	Title string
	Empty bool
}

// Peek validates sel for chart id like Build does and reports the chart's
// title and whether Build would produce an empty spec, without aggregating.
func Peek(c *catalog.Catalog, id chartspec.ID, sel Selection) (Preview, error) {
	ds := c.Dataset()
	switch id {
	case chartspec.Comparison:
		if err := c.RequireCategorical(sel.Categorical); err != nil {
			return Preview{}, err
		}
		if err := c.RequireComparison(sel.Comparison); err != nil {
			return Preview{}, err
		}
		if k, _ := c.Kind(sel.Comparison); k == dataset.Categorical {
			return Preview{Title: stackedTitle(sel.Categorical, sel.Comparison), Empty: ds.Rows() == 0}, nil
		}
		col, _ := ds.Column(sel.Comparison)
		return Preview{Title: boxTitle(sel.Categorical, sel.Comparison), Empty: col.MissingCount() == col.Len()}, nil
	case chartspec.Count:
		if err := c.RequireCategorical(sel.Categorical); err != nil {
			return Preview{}, err
		}
		return Preview{Title: countTitle(sel.Categorical), Empty: ds.Rows() == 0}, nil
	case chartspec.Scatter:
		if err := c.RequireXAxis(sel.X); err != nil {
			return Preview{}, err
		}
		if err := c.RequireNumerical(sel.Y); err != nil {
			return Preview{}, err
		}
		xc, _ := ds.Column(sel.X)
		yc, _ := ds.Column(sel.Y)
		empty := true
		for i := 0; i < xc.Len() && empty; i++ {
			empty = xc.IsMissing(i) || yc.IsMissing(i)
		}
		return Preview{Title: scatterTitle(sel.X, sel.Y), Empty: empty}, nil
	case chartspec.Histogram:
		target := c.Target()
		if err := c.RequireNumerical(target); err != nil {
			return Preview{}, err
		}
		col, _ := ds.Column(target)
		return Preview{Title: HistogramTitle(target), Empty: col.MissingCount() == col.Len()}, nil
	default:
		return Preview{}, fmt.Errorf("%w: %q", ErrUnknownChart, id)
	}
}
