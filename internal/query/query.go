// Package query holds the dashboard's aggregation functions. Each one is a
// pure function of the catalog and a selection that returns a chart spec;
// selections are validated against the catalog before any data is touched.
package query

import (
	"fmt"
	"math"
	"sort"
	"strings"
	"unicode"

	"github.com/KaramelBytes/housedash/internal/catalog"
	"github.com/KaramelBytes/housedash/internal/chartspec"
	"github.com/KaramelBytes/housedash/internal/dataset"
	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/stat"
)

// DefaultBins is the histogram resolution used when none is configured.
const DefaultBins = 50

// MissingLabel is the group key for rows without a categorical value.
const MissingLabel = "NA"

// Compare contrasts comparisonCol across the values of categoricalCol: a
// stacked count bar chart when comparisonCol is categorical, one box per
// category value otherwise.
func Compare(c *catalog.Catalog, categoricalCol, comparisonCol string) (*chartspec.Spec, error) {
	if err := c.RequireCategorical(categoricalCol); err != nil {
		return nil, err
	}
	if err := c.RequireComparison(comparisonCol); err != nil {
		return nil, err
	}
	ds := c.Dataset()
	keyCol, _ := ds.Column(categoricalCol)
	cmpCol, _ := ds.Column(comparisonCol)
	if k, _ := c.Kind(comparisonCol); k == dataset.Categorical {
		return groupedCounts(keyCol, cmpCol), nil
	}
	return boxesBy(keyCol, cmpCol), nil
}

func groupedCounts(keyCol, cmpCol *dataset.Column) *chartspec.Spec {
	keys, keyIdx := groupOrder(keyCol)
	series, seriesIdx := groupOrder(cmpCol)
	counts := make([][]float64, len(series))
	for s := range counts {
		counts[s] = make([]float64, len(keys))
	}
	for i := 0; i < keyCol.Len(); i++ {
		counts[seriesIdx[groupKey(cmpCol, i)]][keyIdx[groupKey(keyCol, i)]]++
	}
	spec := &chartspec.Spec{
		ID:         chartspec.Comparison,
		Kind:       chartspec.KindStackedBar,
		Title:      stackedTitle(keyCol.Name(), cmpCol.Name()),
		XLabel:     keyCol.Name(),
		YLabel:     "Count",
		Categories: keys,
	}
	for s, name := range series {
		spec.Series = append(spec.Series, chartspec.Series{Name: name, Values: counts[s]})
	}
	return spec
}

func boxesBy(keyCol, valCol *dataset.Column) *chartspec.Spec {
	keys, keyIdx := groupOrder(keyCol)
	values := make([][]float64, len(keys))
	for i := 0; i < keyCol.Len(); i++ {
		v, ok := valCol.Value(i)
		if !ok {
			continue
		}
		k := keyIdx[groupKey(keyCol, i)]
		values[k] = append(values[k], v)
	}
	spec := &chartspec.Spec{
		ID:         chartspec.Comparison,
		Kind:       chartspec.KindBox,
		Title:      boxTitle(keyCol.Name(), valCol.Name()),
		XLabel:     keyCol.Name(),
		YLabel:     valCol.Name(),
		Categories: keys,
	}
	for k, key := range keys {
		spec.Boxes = append(spec.Boxes, chartspec.NewBox(key, values[k]))
	}
	return spec
}

// CountBy counts rows per value of categoricalCol, most frequent first.
func CountBy(c *catalog.Catalog, categoricalCol string) (*chartspec.Spec, error) {
	if err := c.RequireCategorical(categoricalCol); err != nil {
		return nil, err
	}
	col, _ := c.Dataset().Column(categoricalCol)
	keys, idx := groupOrder(col)
	counts := make([]float64, len(keys))
	for i := 0; i < col.Len(); i++ {
		counts[idx[groupKey(col, i)]]++
	}
	order := make([]int, len(keys))
	for i := range order {
		order[i] = i
	}
	sort.SliceStable(order, func(a, b int) bool { return counts[order[a]] > counts[order[b]] })

	spec := &chartspec.Spec{
		ID:     chartspec.Count,
		Kind:   chartspec.KindBar,
		Title:  countTitle(categoricalCol),
		XLabel: categoricalCol,
		YLabel: "Count",
	}
	vals := make([]float64, len(order))
	for i, k := range order {
		spec.Categories = append(spec.Categories, keys[k])
		vals[i] = counts[k]
	}
	spec.Series = []chartspec.Series{{Name: "Count", Values: vals}}
	return spec, nil
}

// Scatter plots one point per row that has both values. The target is only
// accepted on the Y axis.
func Scatter(c *catalog.Catalog, xCol, yCol string) (*chartspec.Spec, error) {
	if err := c.RequireXAxis(xCol); err != nil {
		return nil, err
	}
	if err := c.RequireNumerical(yCol); err != nil {
		return nil, err
	}
	ds := c.Dataset()
	xc, _ := ds.Column(xCol)
	yc, _ := ds.Column(yCol)
	spec := &chartspec.Spec{
		ID:     chartspec.Scatter,
		Kind:   chartspec.KindScatter,
		Title:  scatterTitle(xCol, yCol),
		XLabel: xCol,
		YLabel: yCol,
		Points: make([]chartspec.Point, 0, xc.Len()),
	}
	for i := 0; i < xc.Len(); i++ {
		x, okx := xc.Value(i)
		y, oky := yc.Value(i)
		if okx && oky {
			spec.Points = append(spec.Points, chartspec.Point{X: x, Y: y})
		}
	}
	return spec, nil
}

// Histogram buckets the catalog target into equal-width bins over its
// observed range and attaches a marginal box of the same values. It always
// plots the target; dashboard selections do not apply.
func Histogram(c *catalog.Catalog, bins int) (*chartspec.Spec, error) {
	target := c.Target()
	if err := c.RequireNumerical(target); err != nil {
		return nil, err
	}
	if bins <= 0 {
		bins = DefaultBins
	}
	col, _ := c.Dataset().Column(target)
	values := col.Values()
	label := humanize(target)
	marginal := chartspec.NewBox(label, values)
	spec := &chartspec.Spec{
		ID:       chartspec.Histogram,
		Kind:     chartspec.KindHistogram,
		Title:    HistogramTitle(target),
		XLabel:   label,
		YLabel:   "Count",
		Marginal: &marginal,
	}
	if len(values) == 0 {
		return spec, nil
	}
	sorted := marginal.Values
	lo, hi := sorted[0], sorted[len(sorted)-1]
	if lo == hi {
		lo, hi = lo-0.5, hi+0.5
	}
	dividers := make([]float64, bins+1)
	floats.Span(dividers, lo, hi)
	dividers[0], dividers[bins] = lo, hi
	// stat.Histogram bins are half-open; nudge the top edge so max lands in the last bin.
	edges := append([]float64(nil), dividers...)
	edges[bins] = math.Nextafter(hi, math.Inf(1))
	counts := stat.Histogram(nil, edges, sorted, nil)
	spec.Bins = make([]chartspec.Bin, bins)
	for i := range spec.Bins {
		spec.Bins[i] = chartspec.Bin{Lo: dividers[i], Hi: dividers[i+1], Count: int(counts[i])}
	}
	return spec, nil
}

// HistogramTitle names the histogram of target.
func HistogramTitle(target string) string { return "Distribution of " + humanize(target) }

func stackedTitle(keyCol, cmpCol string) string {
	return fmt.Sprintf("Count of %s by %s", keyCol, cmpCol)
}

func boxTitle(keyCol, valCol string) string {
	return fmt.Sprintf("%s Distribution by %s", valCol, keyCol)
}

func countTitle(col string) string { return fmt.Sprintf("Count of Properties by %s", col) }

func scatterTitle(xCol, yCol string) string { return fmt.Sprintf("%s vs %s", yCol, xCol) }

// groupOrder returns the distinct group keys of col in first-appearance
// order and their positions.
func groupOrder(col *dataset.Column) ([]string, map[string]int) {
	var keys []string
	idx := map[string]int{}
	for i := 0; i < col.Len(); i++ {
		k := groupKey(col, i)
		if _, ok := idx[k]; !ok {
			idx[k] = len(keys)
			keys = append(keys, k)
		}
	}
	return keys, idx
}

func groupKey(col *dataset.Column, i int) string {
	if col.IsMissing(i) {
		return MissingLabel
	}
	return col.Label(i)
}

// humanize splits a CamelCase column name into words: SalePrice -> Sale Price.
func humanize(name string) string {
	var b strings.Builder
	runes := []rune(name)
	for i, r := range runes {
		if i > 0 && unicode.IsUpper(r) && unicode.IsLower(runes[i-1]) {
			b.WriteRune(' ')
		}
		b.WriteRune(r)
	}
	return b.String()
}
