// Package loadgen drives a running server with synthetic XP events and
// checks that the leaderboard it builds is consistent.
package loadgen

import (
	"errors"
	"time"

	"github.com/okian/teamforge/internal/domain/types"
)

// ErrInconsistent is returned when the server's ranking disagrees with the
// events it accepted.
var ErrInconsistent = errors.New("leaderboard is inconsistent")

// Config holds configuration for a load run.
type Config struct {
	BaseURL      string        // Base URL of the service
	Participants int           // Distinct participants to spread events over
	Events       int           // Number of events to generate
	TopN         int           // Leaderboard page to fetch
	Workers      int           // Concurrent submitters
	Timeout      time.Duration // Per-request timeout
	Settle       time.Duration // How long to wait for the queue to drain
	Seed         int64         // Seed for the event generator

	// Weights predict the XP each event earns. Leave nil to skip the
	// per-participant total check.
	Weights       map[string]float64
	DefaultWeight float64
}

// Event is the wire shape of POST /xp.
type Event struct {
	EventID       string  `json:"event_id"`
	ParticipantID string  `json:"participant_id"`
	Activity      string  `json:"activity"`
	RawMetric     float64 `json:"raw_metric"`
	TS            string  `json:"ts"`
}

// Entry is the wire shape of a leaderboard row.
type Entry = types.Entry

type ackResponse struct {
	Status    string `json:"status"`
	Duplicate bool   `json:"duplicate"`
}

// Report summarizes a run.
type Report struct {
	Generated   int
	Accepted    int
	Duplicate   int
	Rejected    int
	Failed      int
	Ranked      int
	Leaderboard []Entry
	Duration    time.Duration
}
