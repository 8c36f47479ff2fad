package repository

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"testing"

	"github.com/okian/teamforge/internal/domain/draft"
	"github.com/okian/teamforge/internal/domain/profile"
	"github.com/okian/teamforge/internal/simulate"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newDraft(t *testing.T, id string, n int) *draft.Session {
	t.Helper()
	roster := make([]profile.Profile, n)
	for i := range roster {
		p, err := simulate.Uniform(fmt.Sprintf("p%02d", i), 40-i, profile.Coder)
		require.NoError(t, err)
		roster[i] = p
	}
	s, err := draft.Start(roster, []draft.Captain{{ParticipantID: "p00"}, {ParticipantID: "p01"}}, 0, draft.WithID(id))
	require.NoError(t, err)
	return s
}

func TestSessions_CreateGetDelete(t *testing.T) {
	ctx := context.Background()
	repo := NewSessions()

	require.NoError(t, repo.Create(ctx, newDraft(t, "d-1", 4)))
	require.NoError(t, repo.Create(ctx, newDraft(t, "d-0", 4)))
	assert.ErrorIs(t, repo.Create(ctx, newDraft(t, "d-1", 4)), ErrDuplicate)
	assert.ErrorIs(t, repo.Create(ctx, newDraft(t, "", 4)), draft.ErrInvalidConfiguration)

	got, err := repo.Get(ctx, "d-1")
	require.NoError(t, err)
	assert.Equal(t, "d-1", got.ID())
	assert.Equal(t, []string{"d-0", "d-1"}, repo.IDs())
	assert.Equal(t, 2, repo.Len())

	require.NoError(t, repo.Delete(ctx, "d-1"))
	_, err = repo.Get(ctx, "d-1")
	assert.ErrorIs(t, err, ErrNotFound)
	assert.ErrorIs(t, repo.Delete(ctx, "d-1"), ErrNotFound)
}

func TestSessions_Update(t *testing.T) {
	ctx := context.Background()
	repo := NewSessions()
	require.NoError(t, repo.Create(ctx, newDraft(t, "d-1", 4)))

	next, err := repo.Update(ctx, "d-1", func(s *draft.Session) (*draft.Session, error) {
		return s.SubmitPick("team-1", "p03", "")
	})
	require.NoError(t, err)
	assert.Equal(t, 1, next.CurrentPickIndex())

	_, err = repo.Update(ctx, "d-1", func(s *draft.Session) (*draft.Session, error) {
		return s.SubmitPick("team-1", "p02", "")
	})
	assert.ErrorIs(t, err, draft.ErrOutOfTurn)

	stored, err := repo.Get(ctx, "d-1")
	require.NoError(t, err)
	assert.Equal(t, 1, stored.CurrentPickIndex(), "a rejected transition must not be stored")

	_, err = repo.Update(ctx, "missing", func(s *draft.Session) (*draft.Session, error) { return s, nil })
	assert.ErrorIs(t, err, ErrNotFound)

	cancelled, cancel := context.WithCancel(ctx)
	cancel()
	_, err = repo.Update(cancelled, "d-1", func(s *draft.Session) (*draft.Session, error) { return s, nil })
	assert.True(t, errors.Is(err, context.Canceled))
}

func TestSessions_UpdateSerializesPerSession(t *testing.T) {
	ctx := context.Background()
	repo := NewSessions()
	require.NoError(t, repo.Create(ctx, newDraft(t, "d-1", 40)))

	// Every goroutine skips whatever turn is current; the lock makes each
	// read-modify-write atomic, so no skip is lost.
	var wg sync.WaitGroup
	for g := 0; g < 10; g++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for i := 0; i < 10; i++ {
				_, err := repo.Update(ctx, "d-1", func(s *draft.Session) (*draft.Session, error) {
					_, teamID, _ := s.CurrentTeam()
					return s.SkipPick(teamID)
				})
				assert.NoError(t, err)
			}
		}()
	}
	wg.Wait()

	s, err := repo.Get(ctx, "d-1")
	require.NoError(t, err)
	assert.Equal(t, 100, s.CurrentPickIndex())
}
