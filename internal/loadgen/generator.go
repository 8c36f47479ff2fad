package loadgen

import (
	"fmt"
	"math/rand"
	"time"

	"github.com/google/uuid"
)

var activities = []string{"challenge_solved", "bug_fixed", "peer_review", "commit", "pair_programming"}

// Generate creates cfg.Events events spread over cfg.Participants
// participants. The same seed gives the same participants, activities and
// metrics; event IDs are always fresh.
func Generate(cfg Config, now time.Time) []Event {
	rng := rand.New(rand.NewSource(cfg.Seed))
	participants := cfg.Participants
	if participants < 1 {
		participants = 1
	}

	events := make([]Event, cfg.Events)
	for i := range events {
		events[i] = Event{
			EventID:       uuid.NewString(),
			ParticipantID: fmt.Sprintf("s-%03d", rng.Intn(participants)+1),
			Activity:      activities[rng.Intn(len(activities))],
			RawMetric:     float64(1 + rng.Intn(5)),
			TS:            now.Add(-time.Duration(rng.Intn(3600)) * time.Second).UTC().Format(time.RFC3339),
		}
	}
	return events
}
