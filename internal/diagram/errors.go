package diagram

import "errors"

var (
	// ErrMissingKey indicates a required top-level key is absent or null.
	ErrMissingKey = errors.New("missing required key")
	// ErrInvalidValue indicates a value of the wrong JSON type.
	ErrInvalidValue = errors.New("invalid value")
	// ErrInvalidEntry indicates an entry is missing a required field.
	ErrInvalidEntry = errors.New("invalid entry")
	// ErrSyntax indicates the content is not valid JSON.
	ErrSyntax = errors.New("invalid json")
)
