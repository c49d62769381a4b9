package dataset

import "fmt"

// LoadError reports a dataset that could not be opened, parsed or used.
// It is fatal at startup: a dashboard without data must not serve.
type LoadError struct {
	Path string
	Err  error
}

func (e *LoadError) Error() string {
	if e == nil {
		return "load dataset"
	}
	if e.Path != "" {
		return fmt.Sprintf("load dataset %s: %v", e.Path, e.Err)
	}
	return fmt.Sprintf("load dataset: %v", e.Err)
}

func (e *LoadError) Unwrap() error { return e.Err }
