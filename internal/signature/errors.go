package signature

import (
	"errors"
	"fmt"
)

// InvariantError reports a broken row during permutation. It indicates a
// defect in the input or the generator and aborts the run.
type InvariantError struct {
	Intrinsic string
	Row       int
	Slot      int
	Message   string
}

func (e *InvariantError) Error() string {
	return fmt.Sprintf("signature invariant violated: %s row %d slot %d: %s",
		e.Intrinsic, e.Row, e.Slot, e.Message)
}

// IsInvariantError reports whether err is an *InvariantError.
func IsInvariantError(err error) bool {
	var ie *InvariantError
	return errors.As(err, &ie)
}
