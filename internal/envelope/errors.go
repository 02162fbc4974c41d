package envelope

import "errors"

// ErrShape matches every *ShapeError via errors.Is.
var ErrShape = errors.New("invalid envelope shape")

// ShapeError reports a stored record that is not a usable envelope. Callers
// treat it as "no key set", never as a crash.
type ShapeError struct {
	Reason string
	Err    error
}

func (e *ShapeError) Error() string {
	return ErrShape.Error() + ": " + e.Reason
}

func (e *ShapeError) Is(target error) bool {
	return target == ErrShape
}

func (e *ShapeError) Unwrap() error {
	return e.Err
}
