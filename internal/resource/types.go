package resource

import (
	"fmt"

	"github.com/cockroachdb/errors"
)

// #region field
// Field names one coordinate of a resource vector.
type Field string

const (
	FieldS Field = "S" // structural differentiation
	FieldD Field = "D" // causal density
	FieldM Field = "M" // memory persistence

	// FieldCapacity addresses the derived product S×D×M.
	FieldCapacity Field = "C"
)

// Valid reports whether f names a coordinate or the capacity.
func (f Field) Valid() bool {
	switch f {
	case FieldS, FieldD, FieldM, FieldCapacity:
		return true
	}
	return false
}

// #endregion field

// #region range-error
// ErrOutOfRange matches every InputRangeError under errors.Is.
var ErrOutOfRange = errors.New("resource value outside [0, 1]")

// InputRangeError reports the first coordinate that fell outside [0, 1].
type InputRangeError struct {
	Field Field
	Value float64
}

func (e *InputRangeError) Error() string {
	return fmt.Sprintf("resource %s=%v outside [0, 1]", e.Field, e.Value)
}

// Is lets errors.Is(err, ErrOutOfRange) succeed.
func (e *InputRangeError) Is(target error) bool {
	return target == ErrOutOfRange
}

// #endregion range-error
