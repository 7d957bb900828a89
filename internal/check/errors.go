package check

import "fmt"

// ConfigurationError indicates a configured boundary column is absent from
// the new snapshot's schema. Nothing is normalized once this fires.
type ConfigurationError struct {
	Column string
}

func (e *ConfigurationError) Error() string {
	return fmt.Sprintf("boundary column %q not found in new snapshot", e.Column)
}

// DataFormatError indicates a numeric-metric cell that still fails to parse
// after placeholder substitution. Fatal for the run.
type DataFormatError struct {
	Column string
	State  string
	Value  string
	Err    error
}

func (e *DataFormatError) Error() string {
	if e.State != "" {
		return fmt.Sprintf("column %q, state %s: bad numeric value %q: %v", e.Column, e.State, e.Value, e.Err)
	}
	return fmt.Sprintf("column %q: bad numeric value %q: %v", e.Column, e.Value, e.Err)
}

func (e *DataFormatError) Unwrap() error { return e.Err }
