package strata

import "fmt"

// OptionError reports that a strategy option failed validation while
// building a pipeline.
type OptionError struct {
	// Strategy is the name of the strategy whose options were invalid.
	Strategy string

	// Field is the option field that failed validation.
	Field string

	// Reason explains why the value was rejected.
	Reason string
}

func (e *OptionError) Error() string {
	return fmt.Sprintf("strata: invalid %s option %s: %s", e.Strategy, e.Field, e.Reason)
}
