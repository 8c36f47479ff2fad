// Package model contains domain models passed between layers.
package model

import "time"

// XPEvent is a classroom activity reported for one participant.
// Fields mirror the OpenAPI schema for /xp.
type XPEvent struct {
	EventID       string    // unique id for idempotency
	ParticipantID string    // who earned it
	Activity      string    // e.g. "challenge_solved", "bug_fixed"
	RawMetric     float64   // count or size of the activity
	TS            time.Time // when it happened
}

// ParticipantXP is a participant's accumulated experience.
type ParticipantXP struct {
	ParticipantID string
	XP            float64
}
