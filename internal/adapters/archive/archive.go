// Package archive keeps completed balancing runs and drafts.
//
// Records are stored as JSON documents of the types read shapes, keyed by
// kind and ID. Saving the same key twice replaces the earlier document.
package archive

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/okian/teamforge/internal/domain/balance"
	"github.com/okian/teamforge/internal/domain/draft"
	"github.com/okian/teamforge/internal/domain/types"
	"github.com/okian/teamforge/pkg/metrics"
)

// Record kinds.
const (
	KindTeams = "teams"
	KindDraft = "draft"
)

var timeNow = time.Now

// Archive persists finished results.
type Archive interface {
	SaveTeams(ctx context.Context, runID string, teams []balance.Team) error
	SaveDraft(ctx context.Context, s *draft.Session) error
	LoadTeams(ctx context.Context, runID string) (types.Formation, error)
	LoadDraft(ctx context.Context, id string) (types.Draft, error)
	Close() error
}

// store is the key/value surface each backend provides.
type store interface {
	put(ctx context.Context, kind, id string, body []byte) error
	get(ctx context.Context, kind, id string) ([]byte, error)
	close() error
}

// Open connects to the backend named by the DSN scheme: sqlite://PATH or
// postgres://... (postgresql:// is accepted too).
func Open(ctx context.Context, dsn string, opts ...Option) (Archive, error) {
	o := buildOptions(opts)
	var (
		s   store
		err error
	)
	switch {
	case strings.HasPrefix(dsn, "sqlite://"):
		s, err = openSQLite(ctx, strings.TrimPrefix(dsn, "sqlite://"))
	case strings.HasPrefix(dsn, "postgres://"), strings.HasPrefix(dsn, "postgresql://"):
		s, err = openPostgres(ctx, dsn)
	default:
		return nil, fmt.Errorf("%q: %w", redact(dsn), ErrUnsupportedDSN)
	}
	if err != nil {
		return nil, err
	}
	return &documents{store: s, clock: o.clock}, nil
}

type documents struct {
	store store
	clock draft.Clock
}

func (d *documents) SaveTeams(ctx context.Context, runID string, teams []balance.Team) error {
	if runID == "" {
		return fmt.Errorf("save teams: empty run id: %w", balance.ErrInvalidConfiguration)
	}
	f := types.Formation{RunID: runID, Teams: types.FromTeams(teams), Spread: balance.Spread(teams)}
	return d.save(ctx, KindTeams, runID, f)
}

func (d *documents) SaveDraft(ctx context.Context, s *draft.Session) error {
	if s == nil || s.ID() == "" {
		return fmt.Errorf("save draft: %w", draft.ErrInvalidConfiguration)
	}
	return d.save(ctx, KindDraft, s.ID(), types.FromSession(s, d.clock.Now()))
}

func (d *documents) LoadTeams(ctx context.Context, runID string) (types.Formation, error) {
	var f types.Formation
	err := d.load(ctx, KindTeams, runID, &f)
	return f, err
}

func (d *documents) LoadDraft(ctx context.Context, id string) (types.Draft, error) {
	var out types.Draft
	err := d.load(ctx, KindDraft, id, &out)
	return out, err
}

func (d *documents) Close() error { return d.store.close() }

func (d *documents) save(ctx context.Context, kind, id string, v any) error {
	body, err := json.Marshal(v)
	if err != nil {
		metrics.RecordArchiveWrite(kind, "error")
		return fmt.Errorf("marshal %s %q: %w", kind, id, err)
	}
	if err := d.store.put(ctx, kind, id, body); err != nil {
		metrics.RecordArchiveWrite(kind, "error")
		return fmt.Errorf("save %s %q: %w", kind, id, err)
	}
	metrics.RecordArchiveWrite(kind, "ok")
	return nil
}

func (d *documents) load(ctx context.Context, kind, id string, v any) error {
	body, err := d.store.get(ctx, kind, id)
	if err != nil {
		return fmt.Errorf("load %s %q: %w", kind, id, err)
	}
	if err := json.Unmarshal(body, v); err != nil {
		return fmt.Errorf("decode %s %q: %w", kind, id, err)
	}
	return nil
}

// redact drops credentials from a DSN before it is echoed in an error.
func redact(dsn string) string {
	scheme, rest, ok := strings.Cut(dsn, "://")
	if !ok {
		return dsn
	}
	if at := strings.LastIndex(rest, "@"); at >= 0 {
		rest = "***" + rest[at:]
	}
	return scheme + "://" + rest
}
