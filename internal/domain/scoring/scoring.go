// Package scoring turns classroom activity metrics into experience points.
package scoring

import (
	"context"
	"fmt"
	"math"
	"strings"
)

// Scoring bounds.
const (
	DefaultActivityWeight = 10.0
	MaxXP                 = 500.0
)

// Option applies a configuration option to the InMemoryScorer.
type Option func(*InMemoryScorer)

// WithActivityWeights sets per-activity multipliers. Non-positive weights are
// ignored, as is a non-positive default.
func WithActivityWeights(weights map[string]float64, defaultWeight float64) Option {
	return func(s *InMemoryScorer) {
		s.weights = make(map[string]float64, len(weights))
		for activity, w := range weights {
			if w > 0 {
				s.weights[normalize(activity)] = w
			}
		}
		if defaultWeight > 0 {
			s.defaultWeight = defaultWeight
		}
	}
}

// Input is the part of an XP event needed for scoring.
type Input struct {
	ParticipantID string
	Activity      string
	RawMetric     float64
}

// Result carries the XP earned by one event.
type Result struct {
	ParticipantID string
	XP            float64
}

// Scorer computes XP from an input.
type Scorer interface {
	Score(ctx context.Context, in Input) (Result, error)
}

// InMemoryScorer implements Scorer with a static weight table.
type InMemoryScorer struct {
	weights       map[string]float64
	defaultWeight float64
}

// NewInMemoryScorer creates a scorer; without options every activity uses
// DefaultActivityWeight.
func NewInMemoryScorer(opts ...Option) *InMemoryScorer {
	s := &InMemoryScorer{
		weights:       map[string]float64{},
		defaultWeight: DefaultActivityWeight,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Score multiplies the raw metric by the activity weight and clamps the
// result to [0, MaxXP].
func (s *InMemoryScorer) Score(ctx context.Context, in Input) (Result, error) {
	if err := ctx.Err(); err != nil {
		return Result{}, fmt.Errorf("context cancelled: %w", err)
	}
	if math.IsNaN(in.RawMetric) || math.IsInf(in.RawMetric, 0) {
		return Result{}, fmt.Errorf("raw metric %v for %q is not a finite number", in.RawMetric, in.ParticipantID)
	}
	xp := in.RawMetric * s.Weight(in.Activity)
	return Result{
		ParticipantID: in.ParticipantID,
		XP:            math.Max(0, math.Min(MaxXP, xp)),
	}, nil
}

// Weight returns the multiplier used for activity.
func (s *InMemoryScorer) Weight(activity string) float64 {
	if w, ok := s.weights[normalize(activity)]; ok {
		return w
	}
	return s.defaultWeight
}

func normalize(activity string) string {
	return strings.ToLower(strings.TrimSpace(activity))
}
