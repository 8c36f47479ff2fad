package profile

import "errors"

// ErrValidation marks malformed profile input: a rating out of range, a
// missing or unknown dimension, a blank identifier or an unknown role.
var ErrValidation = errors.New("validation error")
