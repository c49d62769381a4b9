package catalog

import (
	"fmt"
	"sort"
	"strings"

	"github.com/KaramelBytes/housedash/internal/dataset"
	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/stat"
)

const maxTopValues = 8

// Profile is a markdown-friendly summary of the loaded dataset and its catalog.
type Profile struct {
	Name     string                  `json:"name"`
	Rows     int                     `json:"rows"`
	Cols     []ColumnProfile         `json:"columns"`
	Dropped  []dataset.DroppedColumn `json:"dropped"`
	Features Features                `json:"features"`
}

// ColumnProfile captures the classification and statistics of one column.
type ColumnProfile struct {
	Name    string          `json:"name"`
	Kind    dataset.Kind    `json:"kind"`
	Storage dataset.Storage `json:"storage"`
	NonNull int             `json:"non_null"`
	Missing int             `json:"missing"`
	// Numerical stats
	Min  float64 `json:"min,omitempty"`
	Max  float64 `json:"max,omitempty"`
	Mean float64 `json:"mean,omitempty"`
	Std  float64 `json:"std,omitempty"`
	// Categorical top values
	TopValues []CategoryCount `json:"top_values,omitempty"`
	Unique    int             `json:"unique,omitempty"`
}

type CategoryCount struct {
	Value string `json:"value"`
	Count int    `json:"count"`
}

// Profile summarises every retained column in dataset order.
func (c *Catalog) Profile() *Profile {
	ds := c.ds
	p := &Profile{Name: ds.Name(), Rows: ds.Rows(), Dropped: ds.Dropped(), Features: c.Features()}
	for _, name := range ds.Names() {
		col, _ := ds.Column(name)
		kind, _ := c.Kind(name)
		cp := ColumnProfile{
			Name:    name,
			Kind:    kind,
			Storage: col.Storage(),
			Missing: col.MissingCount(),
			NonNull: col.Len() - col.MissingCount(),
		}
		if kind == dataset.Numerical {
			vals := col.Values()
			if len(vals) > 0 {
				cp.Min = floats.Min(vals)
				cp.Max = floats.Max(vals)
				cp.Mean = vals[0]
				if len(vals) > 1 {
					cp.Mean, cp.Std = stat.MeanStdDev(vals, nil)
				}
			}
		} else {
			cp.TopValues, cp.Unique = topValues(col)
		}
		p.Cols = append(p.Cols, cp)
	}
	return p
}

func topValues(col *dataset.Column) ([]CategoryCount, int) {
	counts := map[string]int{}
	for i := 0; i < col.Len(); i++ {
		if col.IsMissing(i) {
			continue
		}
		counts[col.Label(i)]++
	}
	tops := make([]CategoryCount, 0, len(counts))
	for k, v := range counts {
		tops = append(tops, CategoryCount{Value: k, Count: v})
	}
	sort.Slice(tops, func(i, j int) bool {
		if tops[i].Count == tops[j].Count {
			return tops[i].Value < tops[j].Value
		}
		return tops[i].Count > tops[j].Count
	})
	if len(tops) > maxTopValues {
		tops = tops[:maxTopValues]
	}
	return tops, len(counts)
}

// Markdown renders the profile for terminals and docs.
func (p *Profile) Markdown() string {
	var b strings.Builder
	b.WriteString("[DATASET SUMMARY]\n")
	if p.Name != "" {
		b.WriteString(fmt.Sprintf("File: %s\n", p.Name))
	}
	b.WriteString(fmt.Sprintf("Rows: %d\n", p.Rows))
	b.WriteString(fmt.Sprintf("Columns: %d retained, %d dropped\n\n", len(p.Cols), len(p.Dropped)))

	b.WriteString("[SCHEMA]\n")
	for _, c := range p.Cols {
		missPct := 0.0
		if total := c.NonNull + c.Missing; total > 0 {
			missPct = float64(c.Missing) * 100.0 / float64(total)
		}
		b.WriteString(fmt.Sprintf("- %s: %s (%s storage, non-null %d, missing %.1f%%)", c.Name, c.Kind, c.Storage, c.NonNull, missPct))
		switch c.Kind {
		case dataset.Numerical:
			if c.NonNull > 0 {
				b.WriteString(fmt.Sprintf(" — min %.4g, max %.4g, mean %.4g, std %.4g", c.Min, c.Max, c.Mean, c.Std))
			}
		case dataset.Categorical:
			if len(c.TopValues) > 0 {
				b.WriteString(" — top: ")
				for i, kv := range c.TopValues {
					if i > 0 {
						b.WriteString(", ")
					}
					b.WriteString(fmt.Sprintf("%s(%d)", kv.Value, kv.Count))
				}
				if c.Unique > len(c.TopValues) {
					b.WriteString(fmt.Sprintf("; unique=%d", c.Unique))
				}
			}
		}
		b.WriteString("\n")
	}
	if len(p.Dropped) > 0 {
		b.WriteString("\n[DROPPED COLUMNS]\n")
		for _, d := range p.Dropped {
			b.WriteString(fmt.Sprintf("- %s: missing %.1f%%\n", d.Name, d.MissingFraction*100))
		}
	}
	b.WriteString("\n[FEATURE CATALOG]\n")
	b.WriteString(fmt.Sprintf("Target: %s\n", p.Features.Target))
	b.WriteString(fmt.Sprintf("Categorical (%d): %s\n", len(p.Features.Categorical), strings.Join(p.Features.Categorical, ", ")))
	b.WriteString(fmt.Sprintf("Numerical for comparison (%d): %s\n", len(p.Features.NumericalForComparison), strings.Join(p.Features.NumericalForComparison, ", ")))
	return b.String()
}
