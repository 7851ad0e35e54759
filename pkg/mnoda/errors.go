package mnoda

import (
	"errors"
	"fmt"
)

// Sentinel errors for parsing and persisting documents. Every error returned
// by this package wraps exactly one of them.
var (
	// ErrMissingField indicates a schema-required field is absent.
	ErrMissingField = errors.New("required field missing")
	// ErrTypeMismatch indicates a field exists but has the wrong shape.
	ErrTypeMismatch = errors.New("field has unexpected type")
	// ErrMixedArray indicates an array mixes strings and numbers, or holds
	// elements that are neither.
	ErrMixedArray = errors.New("array must consist of only strings or only numbers")
	// ErrInvalidShape indicates a top-level document collection is not an array.
	ErrInvalidShape = errors.New("collection must be an array")
	// ErrInvalidUserDefined indicates a user_defined section is not an object.
	ErrInvalidUserDefined = errors.New("user_defined must be an object")
	// ErrPersistence indicates a document could not be written to disk.
	ErrPersistence = errors.New("could not save document")
)

// FieldError records a validation problem with the field and the type of
// object that contained it.
type FieldError struct {
	Context  string // Type of the enclosing object, e.g. "record" or "data"
	Field    string
	Expected string // Expected shape, set when a field has the wrong shape
	Actual   string // Shape that was found instead
	Err      error
}

// Error returns a message naming the field and its enclosing context.
func (e *FieldError) Error() string {
	switch e.Err {
	case ErrMissingField:
		if e.Actual != "" {
			return fmt.Sprintf("the required field '%s' for objects of type '%s' must be %s, found %s",
				e.Field, e.Context, e.Expected, e.Actual)
		}
		return fmt.Sprintf("the field '%s' is required for objects of type '%s'", e.Field, e.Context)
	case ErrMixedArray:
		return fmt.Sprintf("if the field '%s' for objects of type '%s' is an array, it must consist of only strings or only numbers",
			e.Field, e.Context)
	case ErrInvalidShape:
		return fmt.Sprintf("the '%s' element of a %s must be an array, found %s", e.Field, e.Context, e.Actual)
	case ErrInvalidUserDefined:
		return fmt.Sprintf("the field '%s' for objects of type '%s' must be an object, found %s", e.Field, e.Context, e.Actual)
	default:
		return fmt.Sprintf("the field '%s' for objects of type '%s' must be %s, found %s",
			e.Field, e.Context, e.Expected, e.Actual)
	}
}

// Unwrap returns the sentinel for use with errors.Is.
func (e *FieldError) Unwrap() error {
	return e.Err
}

func missingField(field, context string) error {
	return &FieldError{Context: context, Field: field, Err: ErrMissingField}
}

func typeMismatch(field, context, expected string, actual any) error {
	return &FieldError{Context: context, Field: field, Expected: expected, Actual: shapeOf(actual), Err: ErrTypeMismatch}
}

// PersistenceError reports a failed save. The file at Path is left as it was
// before the save began.
type PersistenceError struct {
	Path string
	Op   string // Failed step: "create", "write", "sync", "close" or "rename"
	Err  error
}

func (e *PersistenceError) Error() string {
	return fmt.Sprintf("could not save to '%s': %s: %v", e.Path, e.Op, e.Err)
}

func (e *PersistenceError) Unwrap() error {
	return e.Err
}

// Is reports a match against ErrPersistence in addition to the wrapped cause.
func (e *PersistenceError) Is(target error) bool {
	return target == ErrPersistence
}
