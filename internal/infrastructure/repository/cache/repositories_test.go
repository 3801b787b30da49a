package cache

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/nextinning/recruiting-api/internal/domain/team"
	"github.com/nextinning/recruiting-api/internal/infrastructure/repository/memory"
	basecache "github.com/nextinning/recruiting-api/internal/platform/cache"
)

// countingTeamRepository counts hits on the underlying store so the tests
// can tell cached reads from loads.
type countingTeamRepository struct {
	team.Repository
	getCalls  int
	listCalls int
}

func (r *countingTeamRepository) GetByID(ctx context.Context, teamID string) (team.Team, bool, error) {
	r.getCalls++
	return r.Repository.GetByID(ctx, teamID)
}

func (r *countingTeamRepository) List(ctx context.Context, filter team.ListFilter) ([]team.Team, int, error) {
	r.listCalls++
	return r.Repository.List(ctx, filter)
}

func newCachedTeamRepo(t *testing.T) (*TeamRepository, *countingTeamRepository) {
	t.Helper()

	inner := &countingTeamRepository{
		Repository: memory.NewTeamRepository(memory.SeedTeams(), sequenceIDGen{}),
	}
	return NewTeamRepository(inner, basecache.NewStore(time.Minute)), inner
}

func TestTeamRepositoryGetByID_Cached(t *testing.T) {
	repo, inner := newCachedTeamRepo(t)

	first, exists, err := repo.GetByID(t.Context(), memory.TeamIDAustinSliders)
	require.NoError(t, err)
	require.True(t, exists)

	second, exists, err := repo.GetByID(t.Context(), memory.TeamIDAustinSliders)
	require.NoError(t, err)
	require.True(t, exists)
	require.Equal(t, first, second)
	require.Equal(t, 1, inner.getCalls)

	// Misses are cached too.
	_, exists, err = repo.GetByID(t.Context(), "team-missing")
	require.NoError(t, err)
	require.False(t, exists)
	_, _, err = repo.GetByID(t.Context(), "team-missing")
	require.NoError(t, err)
	require.Equal(t, 2, inner.getCalls)
}

func TestTeamRepositoryList_Cached(t *testing.T) {
	repo, inner := newCachedTeamRepo(t)

	filter := team.ListFilter{Page: 1, Limit: 10}
	teams, total, err := repo.List(t.Context(), filter)
	require.NoError(t, err)
	require.Equal(t, 3, total)

	// Mutating the returned slice must not poison the cached copy.
	teams[0].Name = "mutated"

	again, _, err := repo.List(t.Context(), filter)
	require.NoError(t, err)
	require.Equal(t, "Austin Sliders", again[0].Name)
	require.Equal(t, 1, inner.listCalls)

	// Different paging is a different cache entry.
	_, _, err = repo.List(t.Context(), team.ListFilter{Page: 2, Limit: 10})
	require.NoError(t, err)
	require.Equal(t, 2, inner.listCalls)
}

func TestTeamRepositoryGetOrCreateByName_InvalidatesListings(t *testing.T) {
	repo, inner := newCachedTeamRepo(t)

	filter := team.ListFilter{Page: 1, Limit: 10}
	_, total, err := repo.List(t.Context(), filter)
	require.NoError(t, err)
	require.Equal(t, 3, total)

	// Existing team leaves the cache alone.
	_, created, err := repo.GetOrCreateByName(t.Context(), "Austin Sliders")
	require.NoError(t, err)
	require.False(t, created)
	_, _, err = repo.List(t.Context(), filter)
	require.NoError(t, err)
	require.Equal(t, 1, inner.listCalls)

	// A new team flushes every listing page.
	_, created, err = repo.GetOrCreateByName(t.Context(), "Waco Wranglers")
	require.NoError(t, err)
	require.True(t, created)

	_, total, err = repo.List(t.Context(), filter)
	require.NoError(t, err)
	require.Equal(t, 4, total)
	require.Equal(t, 2, inner.listCalls)
}

type sequenceIDGen struct{}

func (sequenceIDGen) NewID() (string, error) {
	return "team-" + time.Now().Format("150405.000000000"), nil
}
