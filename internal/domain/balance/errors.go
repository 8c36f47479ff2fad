package balance

import "errors"

// ErrInvalidConfiguration marks impossible or inconsistent parameters: an
// empty roster, too many or too few teams, or both sizing modes at once.
var ErrInvalidConfiguration = errors.New("invalid configuration")
