package pricing

import "fmt"

// ValidationError reports a line item or adjustment field that fails the
// numeric preconditions of the calculator. The calculator returns it before
// computing anything, never alongside a partial breakdown.
type ValidationError struct {
	Field  string
	Reason string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("pricing: invalid %s: %s", e.Field, e.Reason)
}
