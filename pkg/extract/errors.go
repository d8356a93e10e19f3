package extract

import (
	"errors"
	"fmt"
)

var ErrInvalidKit = errors.New("invalid pattern kit")

// ExtractionError reports a captured substring that could not be assigned
// to its field. It is local to one kit attempt.
type ExtractionError struct {
	Field string
	Kit   string
	Value string
	Err   error
}

func (e *ExtractionError) Error() string {
	return fmt.Sprintf("extract field %q with kit %s from %q: %v", e.Field, e.Kit, e.Value, e.Err)
}

func (e *ExtractionError) Unwrap() error {
	return e.Err
}
