// Package catalog derives the selectable feature lists from a classified
// dataset and validates selections against them.
package catalog

import (
	"github.com/KaramelBytes/housedash/internal/dataset"
)

// Names of the selectable lists, used in errors and UI labels.
const (
	ListCategorical = "categorical columns"
	ListComparison  = "comparison features"
	ListNumerical   = "numerical features"
	ListXAxis       = "x-axis features"
	DefaultTarget   = "SalePrice"
)

// DefaultNominal lists numeric-coded columns that name a class.
var DefaultNominal = []string{"MSSubClass"}

// Features are the derived, read-only column lists.
type Features struct {
	Target                 string   `json:"target"`
	Categorical            []string `json:"categorical"`
	Numerical              []string `json:"numerical"`
	NumericalForComparison []string `json:"numerical_for_comparison"`
	AllFeatures            []string `json:"all_features"`
}

// BuildFeatures removes target from the numerical list and concatenates
// categorical and numerical-for-comparison names, preserving order.
func BuildFeatures(categorical, numerical []string, target string) Features {
	f := Features{
		Target:      target,
		Categorical: append([]string(nil), categorical...),
		Numerical:   append([]string(nil), numerical...),
	}
	for _, n := range numerical {
		if n != target {
			f.NumericalForComparison = append(f.NumericalForComparison, n)
		}
	}
	f.AllFeatures = make([]string, 0, len(f.Categorical)+len(f.NumericalForComparison))
	f.AllFeatures = append(f.AllFeatures, f.Categorical...)
	f.AllFeatures = append(f.AllFeatures, f.NumericalForComparison...)
	return f
}

// Catalog binds a dataset to its classification. It is built once at startup
// and shared read-only by every request.
type Catalog struct {
	ds       *dataset.Dataset
	features Features
	kinds    map[string]dataset.Kind
}

// New classifies ds and builds its feature lists. The target must be a
// numerical column of ds.
func New(ds *dataset.Dataset, nominal []string, target string) (*Catalog, error) {
	if target == "" {
		target = DefaultTarget
	}
	cat, num := dataset.Classify(ds, nominal)
	c := &Catalog{
		ds:       ds,
		features: BuildFeatures(cat, num, target),
		kinds:    make(map[string]dataset.Kind, len(cat)+len(num)),
	}
	for _, n := range cat {
		c.kinds[n] = dataset.Categorical
	}
	for _, n := range num {
		c.kinds[n] = dataset.Numerical
	}
	if k, ok := c.kinds[target]; !ok || k != dataset.Numerical {
		return nil, &ColumnNotFoundError{Column: target, List: ListNumerical}
	}
	return c, nil
}

func (c *Catalog) Dataset() *dataset.Dataset { return c.ds }
func (c *Catalog) Target() string            { return c.features.Target }

// Features returns a copy of the derived lists.
func (c *Catalog) Features() Features {
	f := c.features
	f.Categorical = clone(f.Categorical)
	f.Numerical = clone(f.Numerical)
	f.NumericalForComparison = clone(f.NumericalForComparison)
	f.AllFeatures = clone(f.AllFeatures)
	return f
}

// Kind reports the classification of a retained column.
func (c *Catalog) Kind(name string) (dataset.Kind, bool) {
	k, ok := c.kinds[name]
	return k, ok
}

// CategoricalColumns feeds the "Select Categorical Variable" dropdown.
func (c *Catalog) CategoricalColumns() []string { return clone(c.features.Categorical) }

// AllFeaturesPlusTarget feeds the "Compare with" dropdown.
func (c *Catalog) AllFeaturesPlusTarget() []string {
	return append(clone(c.features.AllFeatures), c.features.Target)
}

// NumericalFeaturesPlusTarget feeds the Y-axis dropdown.
func (c *Catalog) NumericalFeaturesPlusTarget() []string {
	return append(clone(c.features.NumericalForComparison), c.features.Target)
}

// NumericalForComparison feeds the X-axis dropdown.
func (c *Catalog) NumericalForComparison() []string {
	return clone(c.features.NumericalForComparison)
}

// RequireCategorical validates a categorical selection.
func (c *Catalog) RequireCategorical(name string) error {
	if k, ok := c.kinds[name]; ok && k == dataset.Categorical {
		return nil
	}
	return &ColumnNotFoundError{Column: name, List: ListCategorical}
}

// RequireComparison validates a "compare with" selection: any catalog column.
func (c *Catalog) RequireComparison(name string) error {
	if _, ok := c.kinds[name]; ok {
		return nil
	}
	return &ColumnNotFoundError{Column: name, List: ListComparison}
}

// RequireNumerical validates a Y-axis selection: a numerical column, target included.
func (c *Catalog) RequireNumerical(name string) error {
	if k, ok := c.kinds[name]; ok && k == dataset.Numerical {
		return nil
	}
	return &ColumnNotFoundError{Column: name, List: ListNumerical}
}

// RequireXAxis validates an X-axis selection: a numerical feature other than
// the target.
func (c *Catalog) RequireXAxis(name string) error {
	if k, ok := c.kinds[name]; ok && k == dataset.Numerical && name != c.features.Target {
		return nil
	}
	return &ColumnNotFoundError{Column: name, List: ListXAxis}
}

func clone(s []string) []string {
	return append(make([]string, 0, len(s)), s...)
}
