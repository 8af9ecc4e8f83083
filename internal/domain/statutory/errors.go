package statutory

import "errors"

var (
	ErrMissingRegistration = errors.New("missing statutory registration")
	// ErrFieldOverflow is only ever reported alongside a truncated field.
	ErrFieldOverflow = errors.New("field exceeds fixed width")
	ErrMissingField  = errors.New("missing required field")
)
