// Package dataset loads a delimited table into immutable, column-typed storage
// and drops columns that are mostly empty.
package dataset

import (
	"errors"
	"fmt"
	"io"
	"math"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/go-gota/gota/dataframe"
	"github.com/go-gota/gota/series"
)

// Storage is the physical type a column was parsed into.
type Storage int

const (
	StorageText Storage = iota
	StorageNumeric
	StorageBoolean
)

func (s Storage) String() string {
	switch s {
	case StorageNumeric:
		return "numeric"
	case StorageBoolean:
		return "boolean"
	default:
		return "text"
	}
}

func (s Storage) MarshalText() ([]byte, error) { return []byte(s.String()), nil }

// Options controls how a dataset is parsed and cleaned.
type Options struct {
	// Delimiter for the file. If 0, '\t' for .tsv files and ',' otherwise.
	Delimiter rune
	// MissingThreshold drops a column whose missing fraction is >= this value.
	MissingThreshold float64
	// NaNValues are cell tokens treated as missing in every column type.
	NaNValues []string
}

// DefaultOptions mirrors the pandas defaults the housing data was prepared with.
func DefaultOptions() Options {
	return Options{
		MissingThreshold: 0.5,
		NaNValues:        []string{"", "NA", "N/A", "NaN", "nan", "null", "<nil>"},
	}
}

// DroppedColumn records a column removed by the retention rule.
type DroppedColumn struct {
	Name            string  `json:"name"`
	MissingFraction float64 `json:"missing_fraction"`
}

// Column is one retained column. It is never modified after Load.
type Column struct {
	name    string
	storage Storage
	labels  []string
	values  []float64 // only for StorageNumeric; NaN where missing
	missing []bool
	nMiss   int
}

func (c *Column) Name() string      { return c.name }
func (c *Column) Storage() Storage  { return c.storage }
func (c *Column) Len() int          { return len(c.labels) }
func (c *Column) MissingCount() int { return c.nMiss }

// IsMissing reports whether row i has no value.
func (c *Column) IsMissing(i int) bool { return c.missing[i] }

// Label returns the display form of row i, or "" when missing.
func (c *Column) Label(i int) string {
	if c.missing[i] {
		return ""
	}
	return c.labels[i]
}

// Value returns the numeric value of row i. ok is false for missing cells and
// non-numeric storage.
func (c *Column) Value(i int) (v float64, ok bool) {
	if c.storage != StorageNumeric || c.missing[i] {
		return 0, false
	}
	return c.values[i], true
}

// Values returns a copy of the non-missing numeric values in row order.
func (c *Column) Values() []float64 {
	if c.storage != StorageNumeric {
		return nil
	}
	out := make([]float64, 0, len(c.values)-c.nMiss)
	for i, v := range c.values {
		if !c.missing[i] {
			out = append(out, v)
		}
	}
	return out
}

// Dataset is an in-memory table loaded once and shared read-only.
type Dataset struct {
	name    string
	rows    int
	cols    []*Column
	index   map[string]int
	dropped []DroppedColumn
}

func (d *Dataset) Name() string { return d.name }
func (d *Dataset) Rows() int    { return d.rows }

// Names returns retained column names in file order.
func (d *Dataset) Names() []string {
	out := make([]string, len(d.cols))
	for i, c := range d.cols {
		out[i] = c.name
	}
	return out
}

// Column looks up a retained column by exact name.
func (d *Dataset) Column(name string) (*Column, bool) {
	i, ok := d.index[name]
	if !ok {
		return nil, false
	}
	return d.cols[i], true
}

// Dropped lists the columns removed for excessive missingness.
func (d *Dataset) Dropped() []DroppedColumn {
	out := make([]DroppedColumn, len(d.dropped))
	copy(out, d.dropped)
	return out
}

// Load reads a CSV/TSV file. Any failure is returned as *LoadError.
func Load(path string, opt Options) (*Dataset, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, &LoadError{Path: path, Err: fmt.Errorf("open: %w", err)}
	}
	defer f.Close()
	if opt.Delimiter == 0 {
		opt.Delimiter = sniffDelimiter(path)
	}
	ds, err := Read(filepath.Base(path), f, opt)
	if err != nil {
		var le *LoadError
		if errors.As(err, &le) {
			le.Path = path
		}
		return nil, err
	}
	return ds, nil
}

// Read parses delimited data from r. name labels the dataset in reports.
func Read(name string, r io.Reader, opt Options) (*Dataset, error) {
	if opt.Delimiter == 0 {
		opt.Delimiter = ','
	}
	if opt.MissingThreshold <= 0 {
		opt.MissingThreshold = DefaultOptions().MissingThreshold
	}
	if opt.NaNValues == nil {
		opt.NaNValues = DefaultOptions().NaNValues
	}
	df := dataframe.ReadCSV(r,
		dataframe.HasHeader(true),
		dataframe.DetectTypes(true),
		dataframe.WithDelimiter(opt.Delimiter),
		dataframe.NaNValues(opt.NaNValues),
	)
	if df.Err != nil {
		return nil, &LoadError{Path: name, Err: fmt.Errorf("parse: %w", df.Err)}
	}
	rows := df.Nrow()
	if rows == 0 {
		return nil, &LoadError{Path: name, Err: errors.New("no data rows")}
	}

	ds := &Dataset{name: name, rows: rows, index: make(map[string]int)}
	for _, colName := range df.Names() {
		s := df.Col(colName)
		if s.Err != nil {
			return nil, &LoadError{Path: name, Err: fmt.Errorf("column %q: %w", colName, s.Err)}
		}
		col := newColumn(strings.TrimSpace(colName), s)
		frac := float64(col.nMiss) / float64(rows)
		if frac >= opt.MissingThreshold {
			ds.dropped = append(ds.dropped, DroppedColumn{Name: col.name, MissingFraction: frac})
			continue
		}
		if _, dup := ds.index[col.name]; dup {
			return nil, &LoadError{Path: name, Err: fmt.Errorf("duplicate column %q", col.name)}
		}
		ds.index[col.name] = len(ds.cols)
		ds.cols = append(ds.cols, col)
	}
	return ds, nil
}

func newColumn(name string, s series.Series) *Column {
	n := s.Len()
	c := &Column{name: name, missing: s.IsNaN(), labels: make([]string, n)}
	switch s.Type() {
	case series.Int, series.Float:
		c.storage = StorageNumeric
		c.values = s.Float()
		for i, v := range c.values {
			// Type detection parses inf as a float; nothing downstream can bin or plot it.
			if c.missing[i] || math.IsNaN(v) || math.IsInf(v, 0) {
				c.missing[i] = true
				continue
			}
			c.labels[i] = strconv.FormatFloat(v, 'f', -1, 64)
		}
	case series.Bool:
		c.storage = StorageBoolean
		copy(c.labels, s.Records())
	default:
		c.storage = StorageText
		copy(c.labels, s.Records())
	}
	// Float() can surface NaN cells that IsNaN did not flag.
	for i, m := range c.missing {
		if m {
			c.nMiss++
			c.labels[i] = ""
		}
	}
	return c
}

func sniffDelimiter(path string) rune {
	if strings.HasSuffix(strings.ToLower(path), ".tsv") {
		return '\t'
	}
	return ','
}
