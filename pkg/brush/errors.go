package brush

import (
	"errors"
	"fmt"
)

// Sentinel kinds carried by GeometryError.
var (
	ErrBrushEmpty      = errors.New("Brush is empty")
	ErrBrushInvalid    = errors.New("Brush is invalid")
	ErrBrushIncomplete = errors.New("Brush is not fully specified")
	ErrInvalidFace     = errors.New("Brush has invalid face")
)

// ErrMoveRejected is returned by mutators whose feasibility check fails.
var ErrMoveRejected = errors.New("brush: edit rejected")

// GeometryError reports a failed geometry rebuild or face update. Kind is
// one of the sentinel errors above; Err is an optional underlying cause.
type GeometryError struct {
	Op   string
	Kind error
	Err  error
}

func (e *GeometryError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %v: %v", e.Op, e.Kind, e.Err)
	}
	return fmt.Sprintf("%s: %v", e.Op, e.Kind)
}

func (e *GeometryError) Unwrap() error { return e.Err }

// Is matches the error kind so that errors.Is(err, ErrBrushEmpty) works.
func (e *GeometryError) Is(target error) bool {
	return target == e.Kind
}

func geometryError(op string, kind, cause error) error {
	return &GeometryError{Op: op, Kind: kind, Err: cause}
}
