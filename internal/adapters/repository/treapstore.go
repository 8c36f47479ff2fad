package repository

import (
	"context"
	"fmt"
	"math"
	"math/rand/v2"
	"strings"
	"sync"
	"time"

	"github.com/okian/teamforge/pkg/metrics"
)

// Treap-based, in-memory Store.
//
// Ordering: XP DESC, then participantID ASC. "less" means ranks earlier, so
// in-order traversal yields the leaderboard from best to worst. Subtree sizes
// make rank lookups O(log n).

// xpScale stores XP as fixed point so equal totals compare exactly.
const xpScale = 1_000_000

type xpFP int64

func toFixedPoint(x float64) xpFP { return xpFP(math.Round(x * xpScale)) }

func toFloat(x xpFP) float64 { return float64(x) / xpScale }

type record struct {
	xp     xpFP
	events int
}

type node struct {
	id    string
	xp    xpFP
	prio  uint64
	left  *node
	right *node
	size  int
}

func nsize(n *node) int {
	if n == nil {
		return 0
	}
	return n.size
}

func fix(n *node) {
	if n != nil {
		n.size = 1 + nsize(n.left) + nsize(n.right)
	}
}

// less returns true if (aXP, aID) should appear before (bXP, bID).
func less(aXP xpFP, aID string, bXP xpFP, bID string) bool {
	if aXP != bXP {
		return aXP > bXP
	}
	return aID < bID
}

func rotateRight(y *node) *node {
	x := y.left
	y.left = x.right
	x.right = y
	fix(y)
	fix(x)
	return x
}

func rotateLeft(x *node) *node {
	y := x.right
	x.right = y.left
	y.left = x
	fix(x)
	fix(y)
	return y
}

func insert(n *node, id string, xp xpFP, prio uint64) *node {
	if n == nil {
		return &node{id: id, xp: xp, prio: prio, size: 1}
	}
	if less(xp, id, n.xp, n.id) {
		n.left = insert(n.left, id, xp, prio)
		if n.left.prio > n.prio {
			n = rotateRight(n)
		}
	} else {
		n.right = insert(n.right, id, xp, prio)
		if n.right.prio > n.prio {
			n = rotateLeft(n)
		}
	}
	fix(n)
	return n
}

func deleteNode(n *node, id string, xp xpFP) *node {
	if n == nil {
		return nil
	}
	switch {
	case xp == n.xp && id == n.id:
		if n.left == nil {
			return n.right
		}
		if n.right == nil {
			return n.left
		}
		if n.left.prio > n.right.prio {
			n = rotateRight(n)
			n.right = deleteNode(n.right, id, xp)
		} else {
			n = rotateLeft(n)
			n.left = deleteNode(n.left, id, xp)
		}
	case less(xp, id, n.xp, n.id):
		n.left = deleteNode(n.left, id, xp)
	default:
		n.right = deleteNode(n.right, id, xp)
	}
	fix(n)
	return n
}

// countAbove returns how many nodes hold strictly more XP than xp.
func countAbove(n *node, xp xpFP) int {
	count := 0
	for n != nil {
		if n.xp > xp {
			count += 1 + nsize(n.left)
			n = n.right
		} else {
			n = n.left
		}
	}
	return count
}

// collectTopN appends up to limit entries in rank order.
func collectTopN(n *node, limit int, records map[string]record, out *[]Entry) {
	if n == nil || len(*out) >= limit {
		return
	}
	collectTopN(n.left, limit, records, out)
	if len(*out) < limit {
		*out = append(*out, Entry{ParticipantID: n.id, XP: toFloat(n.xp), Events: records[n.id].events})
	}
	collectTopN(n.right, limit, records, out)
}

// TreapStore is the in-memory XP leaderboard.
type TreapStore struct {
	mu   sync.RWMutex
	root *node
	byID map[string]record
	rng  *rand.Rand
}

// NewTreapStore constructs an empty leaderboard.
func NewTreapStore(opts ...Option) *TreapStore {
	s := &TreapStore{
		byID: make(map[string]record),
		rng:  rand.New(rand.NewPCG(1, 2)),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Add implements Store.Add with O(log n) expected time.
func (s *TreapStore) Add(_ context.Context, participantID string, xp float64) (float64, error) {
	start := time.Now()
	defer func() {
		metrics.RecordRepositoryUpdateLatency(float64(time.Since(start).Microseconds()) / 1000)
	}()

	if strings.TrimSpace(participantID) == "" {
		return 0, fmt.Errorf("participant id is empty: %w", ErrInvalidXP)
	}
	if xp < 0 || math.IsNaN(xp) || math.IsInf(xp, 0) {
		return 0, fmt.Errorf("%v for %q: %w", xp, participantID, ErrInvalidXP)
	}

	s.mu.Lock()
	rec, known := s.byID[participantID]
	if known {
		s.root = deleteNode(s.root, participantID, rec.xp)
	}
	rec.xp += toFixedPoint(xp)
	rec.events++
	s.byID[participantID] = rec
	s.root = insert(s.root, participantID, rec.xp, s.rng.Uint64())
	total := len(s.byID)
	s.mu.Unlock()

	if !known {
		metrics.UpdateTotalParticipants(total)
	}
	return toFloat(rec.xp), nil
}

// Rank returns the participant's competition rank: one more than the number
// of participants with strictly more XP.
func (s *TreapStore) Rank(_ context.Context, participantID string) (Entry, error) {
	start := time.Now()
	defer func() {
		metrics.RecordRepositoryQueryLatency(float64(time.Since(start).Microseconds()) / 1000)
	}()

	s.mu.RLock()
	defer s.mu.RUnlock()

	rec, ok := s.byID[participantID]
	if !ok {
		metrics.RecordErrorByComponent("repository", "not_found")
		return Entry{}, fmt.Errorf("participant %q: %w", participantID, ErrNotFound)
	}
	return Entry{
		Rank:          countAbove(s.root, rec.xp) + 1,
		ParticipantID: participantID,
		XP:            toFloat(rec.xp),
		Events:        rec.events,
	}, nil
}

// TopN returns the top n entries. Tied participants share a rank.
func (s *TreapStore) TopN(_ context.Context, n int) ([]Entry, error) {
	start := time.Now()
	defer func() {
		metrics.RecordRepositoryQueryLatency(float64(time.Since(start).Microseconds()) / 1000)
	}()

	if n < 1 {
		metrics.RecordErrorByComponent("repository", "invalid_limit")
		return nil, ErrInvalidLimit
	}

	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make([]Entry, 0, min(n, len(s.byID)))
	collectTopN(s.root, n, s.byID, &out)
	assignRanks(out)
	return out, nil
}

// Count returns the number of participants.
func (s *TreapStore) Count(_ context.Context) int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.byID)
}

// assignRanks gives tied entries the rank of the first of them. entries must
// be a prefix of the leaderboard.
func assignRanks(entries []Entry) {
	for i := range entries {
		if i > 0 && entries[i].XP == entries[i-1].XP {
			entries[i].Rank = entries[i-1].Rank
			continue
		}
		entries[i].Rank = i + 1
	}
}
