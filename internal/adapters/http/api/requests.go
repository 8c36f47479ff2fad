package api

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"reflect"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"

	"github.com/okian/teamforge/internal/adapters/roster"
	"github.com/okian/teamforge/internal/domain/balance"
	"github.com/okian/teamforge/internal/domain/draft"
	"github.com/okian/teamforge/internal/domain/model"
)

const maxBodyBytes = 1 << 20

var validate = newValidator()

func newValidator() *validator.Validate {
	v := validator.New(validator.WithRequiredStructEnabled())
	v.RegisterTagNameFunc(func(f reflect.StructField) string {
		name, _, _ := strings.Cut(f.Tag.Get("json"), ",")
		if name == "-" {
			return ""
		}
		return name
	})
	return v
}

// teamsRequest mirrors the OpenAPI schema for POST /teams.
type teamsRequest struct {
	Participants []roster.Record `json:"participants" validate:"required,min=1"`
	TeamCount    int             `json:"team_count" validate:"required_without=TeamSize,excluded_with=TeamSize"`
	TeamSize     int             `json:"team_size" validate:"omitempty,min=1"`
	Themes       []string        `json:"themes" validate:"omitempty,dive,required"`
	TieSeed      *int64          `json:"tie_seed"`
}

func (r *teamsRequest) options() []balance.Option {
	var opts []balance.Option
	if r.TeamCount > 0 {
		opts = append(opts, balance.WithTeamCount(r.TeamCount))
	}
	if r.TeamSize > 0 {
		opts = append(opts, balance.WithTargetTeamSize(r.TeamSize))
	}
	if len(r.Themes) > 0 {
		opts = append(opts, balance.WithThemeLabels(r.Themes...))
	}
	if r.TieSeed != nil {
		opts = append(opts, balance.WithTieSeed(*r.TieSeed))
	}
	return opts
}

type captainRequest struct {
	TeamName      string `json:"team_name"`
	ParticipantID string `json:"participant_id" validate:"required"`
}

// draftRequest mirrors the OpenAPI schema for POST /drafts.
type draftRequest struct {
	Participants          []roster.Record  `json:"participants" validate:"required,min=1"`
	Captains              []captainRequest `json:"captains" validate:"required,min=2,dive"`
	RoundTimeLimitSeconds *int             `json:"round_time_limit_seconds" validate:"omitempty,min=0,max=86400"`
	Scheduled             bool             `json:"scheduled"`
}

func (r *draftRequest) captains() []draft.Captain {
	out := make([]draft.Captain, len(r.Captains))
	for i, c := range r.Captains {
		out[i] = draft.Captain{TeamName: c.TeamName, ParticipantID: c.ParticipantID}
	}
	return out
}

// roundTimeLimit returns the requested budget, or fallback when none was
// given.
func (r *draftRequest) roundTimeLimit(fallback time.Duration) time.Duration {
	if r.RoundTimeLimitSeconds == nil {
		return fallback
	}
	return time.Duration(*r.RoundTimeLimitSeconds) * time.Second
}

type pickRequest struct {
	RequestID     string `json:"request_id" validate:"omitempty,max=128"`
	TeamID        string `json:"team_id" validate:"required"`
	ParticipantID string `json:"participant_id" validate:"required"`
	Reason        string `json:"reason" validate:"max=280"`
}

type skipRequest struct {
	TeamID string `json:"team_id" validate:"required"`
}

// xpRequest mirrors the OpenAPI schema for POST /xp.
type xpRequest struct {
	EventID       string  `json:"event_id" validate:"required"`
	ParticipantID string  `json:"participant_id" validate:"required"`
	Activity      string  `json:"activity" validate:"required"`
	RawMetric     float64 `json:"raw_metric" validate:"gte=0"`
	TS            string  `json:"ts" validate:"required,datetime=2006-01-02T15:04:05Z07:00"`
}

func (r *xpRequest) event() model.XPEvent {
	ts, _ := time.Parse(time.RFC3339, r.TS)
	return model.XPEvent{
		EventID:       strings.TrimSpace(r.EventID),
		ParticipantID: strings.TrimSpace(r.ParticipantID),
		Activity:      r.Activity,
		RawMetric:     r.RawMetric,
		TS:            ts,
	}
}

// decode reads a JSON body into v and validates it. Failures wrap
// ErrBadRequest.
func decode(w http.ResponseWriter, r *http.Request, v any) error {
	dec := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxBodyBytes))
	dec.DisallowUnknownFields()
	if err := dec.Decode(v); err != nil {
		return fmt.Errorf("%w: malformed body: %w", ErrBadRequest, err)
	}
	if err := validate.Struct(v); err != nil {
		return fmt.Errorf("%w: %s", ErrBadRequest, describe(err))
	}
	return nil
}

func describe(err error) string {
	var fields validator.ValidationErrors
	if !errors.As(err, &fields) {
		return err.Error()
	}
	msgs := make([]string, 0, len(fields))
	for _, fe := range fields {
		msgs = append(msgs, fmt.Sprintf("%s failed %q", fieldPath(fe.Namespace()), fe.Tag()))
	}
	return strings.Join(msgs, "; ")
}

// fieldPath drops the struct name from a validator namespace.
func fieldPath(ns string) string {
	if _, rest, ok := strings.Cut(ns, "."); ok {
		return rest
	}
	return ns
}
