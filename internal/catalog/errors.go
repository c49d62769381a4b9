package catalog

import "fmt"

// ColumnNotFoundError indicates a selection that names a column the catalog
// does not offer in the given list.
type ColumnNotFoundError struct {
	Column string
	List   string
}

func (e *ColumnNotFoundError) Error() string {
	if e.List != "" {
		return fmt.Sprintf("column not found: %q is not one of the %s", e.Column, e.List)
	}
	return fmt.Sprintf("column not found: %q", e.Column)
}
