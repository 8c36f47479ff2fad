// Package repository holds the in-memory state of the service: live draft
// sessions and the XP leaderboard.
package repository

import "context"

// Entry represents a leaderboard row.
type Entry struct {
	Rank          int
	ParticipantID string
	XP            float64
	Events        int
}

// Store provides read/write access to the XP leaderboard.
type Store interface {
	// Add credits xp to participantID and returns the new total.
	Add(ctx context.Context, participantID string, xp float64) (float64, error)

	// Rank returns the current rank and XP for a participant.
	// Returns ErrNotFound if the participant is unknown.
	Rank(ctx context.Context, participantID string) (Entry, error)

	// TopN returns the top-N entries ordered by XP desc.
	TopN(ctx context.Context, n int) ([]Entry, error)

	// Count returns the number of participants on the leaderboard.
	Count(ctx context.Context) int
}
