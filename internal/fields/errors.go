package fields

import (
	"errors"
	"fmt"
)

// ErrKeyExists is returned when a field's merge tag collides with another
// field of the same list.
var ErrKeyExists = errors.New("another field with the same merge tag exists")

// ErrFieldNotFound is returned when a field id does not exist in the list.
var ErrFieldNotFound = errors.New("field not found")

// DependencyNotFoundError reports that a field referenced as an ordering
// anchor (the "insert before" target) was deleted between the time the
// options were computed and the write. Callers detect it with errors.As and
// prompt a refresh instead of silently dropping the ordering.
type DependencyNotFoundError struct {
	OrderColumn string
	FieldID     int64
}

func (e *DependencyNotFoundError) Error() string {
	return fmt.Sprintf("ordering dependency not found: field %d (%s)", e.FieldID, e.OrderColumn)
}
