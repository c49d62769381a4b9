package dataset

// Kind is the analytical role of a column.
type Kind int

const (
	Categorical Kind = iota
	Numerical
)

func (k Kind) String() string {
	if k == Numerical {
		return "numerical"
	}
	return "categorical"
}

func (k Kind) MarshalText() ([]byte, error) { return []byte(k.String()), nil }

// Classify splits the retained columns of ds into categorical and numerical
// names, in file order. Text and boolean columns are categorical, numeric
// columns are numerical. Columns listed in nominal hold numeric codes that
// name a class rather than measure a magnitude: numeric ones are moved to the
// end of the categorical list in the order given. Names in nominal that are
// not in ds, or are already categorical, are left alone.
func Classify(ds *Dataset, nominal []string) (categorical, numerical []string) {
	forced := make(map[string]bool, len(nominal))
	for _, name := range nominal {
		if c, ok := ds.Column(name); ok && c.storage == StorageNumeric {
			forced[name] = true
		}
	}
	for _, c := range ds.cols {
		if forced[c.name] {
			continue
		}
		if c.storage == StorageNumeric {
			numerical = append(numerical, c.name)
		} else {
			categorical = append(categorical, c.name)
		}
	}
	seen := make(map[string]bool, len(forced))
	for _, name := range nominal {
		if forced[name] && !seen[name] {
			seen[name] = true
			categorical = append(categorical, name)
		}
	}
	return categorical, numerical
}
