package loadgen

import (
	"context"
	"fmt"
	"net/http"
	"net/url"
	"sync/atomic"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/okian/teamforge/pkg/logger"
)

const pollInterval = 50 * time.Millisecond

// Run submits generated events, waits for the server to score them and
// verifies the resulting leaderboard.
func Run(ctx context.Context, cfg Config) (Report, error) {
	log := logger.Get().Named("loadgen")
	start := time.Now()
	c := newClient(cfg.BaseURL, cfg.Timeout)

	if code, err := c.getJSON(ctx, "/healthz", nil); err != nil || code != http.StatusOK {
		return Report{}, fmt.Errorf("service health check failed: status %d: %v", code, err)
	}

	baseline, _ := handled(ctx, c)
	events := Generate(cfg, start)
	report := Report{Generated: len(events)}
	log.Info(ctx, "submitting events",
		logger.Int("events", len(events)),
		logger.Int("participants", cfg.Participants),
		logger.Int("workers", cfg.Workers),
	)

	accepted, err := submit(ctx, c, cfg.Workers, events, &report)
	if err != nil {
		return report, err
	}
	if err := waitForDrain(ctx, c, baseline+int64(len(accepted)), cfg.Settle); err != nil {
		return report, err
	}

	ranks, err := fetchRanks(ctx, c, cfg.Workers, participantsOf(accepted))
	if err != nil {
		return report, err
	}
	report.Ranked = len(ranks)

	if _, err := c.getJSON(ctx, fmt.Sprintf("/leaderboard?limit=%d", cfg.TopN), &report.Leaderboard); err != nil {
		return report, fmt.Errorf("leaderboard retrieval failed: %w", err)
	}

	report.Duration = time.Since(start)
	if err := Verify(ranks, report.Leaderboard, expectedTotals(cfg, accepted)); err != nil {
		return report, err
	}
	log.Info(ctx, "load run verified",
		logger.Int("accepted", report.Accepted),
		logger.Int("duplicate", report.Duplicate),
		logger.Int("rejected", report.Rejected),
		logger.Int("failed", report.Failed),
		logger.Int("ranked", report.Ranked),
		logger.Duration("duration", report.Duration),
	)
	return report, nil
}

// submit posts events with at most workers requests in flight and returns
// the events the server accepted.
func submit(ctx context.Context, c *client, workers int, events []Event, report *Report) ([]Event, error) {
	var acceptedN, duplicate, rejected, failed atomic.Int64
	ok := make([]bool, len(events))

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(max(workers, 1))
	for i := range events {
		g.Go(func() error {
			var ack ackResponse
			code, err := c.postJSON(gctx, "/xp", events[i], &ack)
			switch {
			case err != nil:
				failed.Add(1)
			case code == http.StatusAccepted:
				acceptedN.Add(1)
				ok[i] = true
			case code == http.StatusOK && ack.Duplicate:
				duplicate.Add(1)
			case code == http.StatusTooManyRequests:
				rejected.Add(1)
			default:
				failed.Add(1)
			}
			return gctx.Err()
		})
	}
	if err := g.Wait(); err != nil {
		return nil, fmt.Errorf("event submission failed: %w", err)
	}

	report.Accepted = int(acceptedN.Load())
	report.Duplicate = int(duplicate.Load())
	report.Rejected = int(rejected.Load())
	report.Failed = int(failed.Load())

	out := make([]Event, 0, report.Accepted)
	for i, e := range events {
		if ok[i] {
			out = append(out, e)
		}
	}
	return out, nil
}

// handled reports how many events the server's workers have finished,
// successfully or not.
func handled(ctx context.Context, c *client) (int64, error) {
	var stats map[string]any
	if _, err := c.getJSON(ctx, "/stats", &stats); err != nil {
		return 0, err
	}
	processed, _ := stats["processed"].(float64)
	failed, _ := stats["failed"].(float64)
	return int64(processed + failed), nil
}

// waitForDrain polls /stats until the workers have handled target events
// or settle elapses.
func waitForDrain(ctx context.Context, c *client, target int64, settle time.Duration) error {
	ctx, cancel := context.WithTimeout(ctx, settle)
	defer cancel()
	ticker := time.NewTicker(pollInterval)
	defer ticker.Stop()
	for {
		if n, err := handled(ctx, c); err == nil && n >= target {
			return nil
		}
		select {
		case <-ctx.Done():
			return fmt.Errorf("queue did not drain: %w", ctx.Err())
		case <-ticker.C:
		}
	}
}

func fetchRanks(ctx context.Context, c *client, workers int, ids []string) ([]Entry, error) {
	out := make([]Entry, len(ids))
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(max(workers, 1))
	for i, id := range ids {
		g.Go(func() error {
			code, err := c.getJSON(gctx, "/rank/"+url.PathEscape(id), &out[i])
			if err != nil {
				return err
			}
			if code != http.StatusOK {
				return fmt.Errorf("rank %s: status %d: %w", id, code, ErrInconsistent)
			}
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, fmt.Errorf("ranking retrieval failed: %w", err)
	}
	return out, nil
}

func participantsOf(events []Event) []string {
	seen := make(map[string]struct{})
	var out []string
	for _, e := range events {
		if _, ok := seen[e.ParticipantID]; !ok {
			seen[e.ParticipantID] = struct{}{}
			out = append(out, e.ParticipantID)
		}
	}
	return out
}
