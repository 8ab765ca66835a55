package estimation

import "errors"

// ErrInvalidInput marks a rejected computation. Callers match it with errors.Is.
var ErrInvalidInput = errors.New("invalid estimation input")
