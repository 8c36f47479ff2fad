package loadgen

import (
	"context"
	"fmt"
	"math"
	"sort"

	"github.com/okian/teamforge/internal/domain/scoring"
)

const xpTolerance = 1e-6

// expectedTotals predicts each participant's XP from the accepted events.
// It returns nil when no weights are configured.
func expectedTotals(cfg Config, accepted []Event) map[string]float64 {
	if cfg.Weights == nil {
		return nil
	}
	scorer := scoring.NewInMemoryScorer(scoring.WithActivityWeights(cfg.Weights, cfg.DefaultWeight))
	out := make(map[string]float64)
	for _, e := range accepted {
		res, err := scorer.Score(context.Background(), scoring.Input{
			ParticipantID: e.ParticipantID,
			Activity:      e.Activity,
			RawMetric:     e.RawMetric,
		})
		if err != nil {
			continue
		}
		out[e.ParticipantID] += res.XP
	}
	return out
}

// Verify checks that the leaderboard is ordered, that every rank lookup
// agrees with it, and, when expected is non-nil, that totals match.
func Verify(ranks, leaderboard []Entry, expected map[string]float64) error {
	for i := 1; i < len(leaderboard); i++ {
		prev, cur := leaderboard[i-1], leaderboard[i]
		if cur.XP > prev.XP || (cur.XP == prev.XP && cur.ParticipantID < prev.ParticipantID) {
			return fmt.Errorf("entries %d and %d out of order: %w", i-1, i, ErrInconsistent)
		}
	}

	byID := make(map[string]Entry, len(ranks))
	for _, r := range ranks {
		byID[r.ParticipantID] = r
	}
	for _, e := range leaderboard {
		r, ok := byID[e.ParticipantID]
		if !ok {
			continue
		}
		if r.Rank != e.Rank || math.Abs(r.XP-e.XP) > xpTolerance {
			return fmt.Errorf("%s ranks #%d with %.3f but the leaderboard shows #%d with %.3f: %w",
				e.ParticipantID, r.Rank, r.XP, e.Rank, e.XP, ErrInconsistent)
		}
	}

	if expected == nil {
		return nil
	}
	ids := make([]string, 0, len(expected))
	for id := range expected {
		ids = append(ids, id)
	}
	sort.Strings(ids)
	for _, id := range ids {
		r, ok := byID[id]
		if !ok {
			return fmt.Errorf("%s has no rank: %w", id, ErrInconsistent)
		}
		if math.Abs(r.XP-expected[id]) > xpTolerance {
			return fmt.Errorf("%s has %.3f XP, expected %.3f: %w", id, r.XP, expected[id], ErrInconsistent)
		}
	}
	return nil
}
