package api

import (
	"errors"
	"fmt"
	"net/http"

	eventqueue "github.com/okian/teamforge/internal/adapters/mq/queue"
	"github.com/okian/teamforge/internal/adapters/repository"
	"github.com/okian/teamforge/internal/adapters/roster"
	"github.com/okian/teamforge/internal/domain/balance"
	"github.com/okian/teamforge/internal/domain/draft"
	"github.com/okian/teamforge/internal/domain/profile"
)

// Sentinel kinds for API errors.
var (
	ErrBadRequest   = errors.New("bad request")
	ErrBackpressure = errors.New("backpressure")
)

// Wrap prefixes err with the operation that failed.
func Wrap(op string, err error) error {
	if err == nil {
		return nil
	}
	return fmt.Errorf("%s: %w", op, err)
}

// WrapKind tags err with a sentinel kind so callers can match either.
func WrapKind(op string, kind, err error) error {
	if err == nil {
		return NewKind(op, kind)
	}
	return fmt.Errorf("%s: %w: %w", op, kind, err)
}

// NewKind returns an error of the given kind for op.
func NewKind(op string, kind error) error {
	return fmt.Errorf("%s: %w", op, kind)
}

// problem is how an error is shown to the caller.
type problem struct {
	status  int
	code    string
	message string
}

// classify maps the error taxonomy onto HTTP. Messages are meant for the
// classroom UI; the wrapped error goes into the detail field for 4xx.
func classify(err error) problem {
	switch {
	case errors.Is(err, draft.ErrOutOfTurn):
		return problem{http.StatusConflict, "out_of_turn", "it's not your turn yet"}
	case errors.Is(err, draft.ErrInvalidSelection):
		return problem{http.StatusUnprocessableEntity, "invalid_selection", "that participant can't be picked"}
	case errors.Is(err, draft.ErrInvalidStateTransition):
		return problem{http.StatusConflict, "invalid_state", "the draft can't do that right now"}
	case errors.Is(err, repository.ErrNotFound):
		return problem{http.StatusNotFound, "not_found", "not found"}
	case errors.Is(err, eventqueue.ErrFull), errors.Is(err, eventqueue.ErrClosed), errors.Is(err, ErrBackpressure):
		return problem{http.StatusTooManyRequests, "backpressure", "too many requests, try again shortly"}
	case errors.Is(err, profile.ErrValidation), errors.Is(err, roster.ErrSchema):
		return problem{http.StatusBadRequest, "invalid_roster", "the roster has a problem"}
	case errors.Is(err, balance.ErrInvalidConfiguration):
		return problem{http.StatusBadRequest, "invalid_configuration", "those settings don't work for this roster"}
	case errors.Is(err, repository.ErrInvalidLimit), errors.Is(err, ErrBadRequest):
		return problem{http.StatusBadRequest, "bad_request", "the request is not valid"}
	default:
		return problem{http.StatusInternalServerError, "internal_error", "something went wrong"}
	}
}
