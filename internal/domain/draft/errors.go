package draft

import (
	"errors"

	"github.com/okian/teamforge/internal/domain/balance"
)

// Sentinel error kinds for draft operations. ErrInvalidConfiguration is
// shared with the balancer so callers can match either with one errors.Is.
var (
	ErrInvalidConfiguration   = balance.ErrInvalidConfiguration
	ErrOutOfTurn              = errors.New("out of turn")
	ErrInvalidSelection       = errors.New("invalid selection")
	ErrInvalidStateTransition = errors.New("invalid state transition")
)
