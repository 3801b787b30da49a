package cache

import (
	"context"
	"strconv"
	"strings"

	"github.com/nextinning/recruiting-api/internal/domain/team"
	basecache "github.com/nextinning/recruiting-api/internal/platform/cache"
)

// TeamRepository is a read-through cache over another team repository.
// Team rows change rarely, so listings and lookups are served from the
// store until a CSV import creates a new team and flushes them.
type TeamRepository struct {
	next  team.Repository
	cache *basecache.Store
}

func NewTeamRepository(next team.Repository, cache *basecache.Store) *TeamRepository {
	return &TeamRepository{next: next, cache: cache}
}

func (r *TeamRepository) GetByID(ctx context.Context, teamID string) (team.Team, bool, error) {
	key := "team:id:" + teamID
	v, err := r.cache.GetOrLoad(ctx, key, func(ctx context.Context) (any, error) {
		item, exists, err := r.next.GetByID(ctx, teamID)
		if err != nil {
			return nil, err
		}
		return cachedTeamByID{value: item, exists: exists}, nil
	})
	if err != nil {
		return team.Team{}, false, err
	}

	cached, _ := v.(cachedTeamByID)
	return cached.value, cached.exists, nil
}

func (r *TeamRepository) List(ctx context.Context, filter team.ListFilter) ([]team.Team, int, error) {
	key := teamListKey(filter)
	v, err := r.cache.GetOrLoad(ctx, key, func(ctx context.Context) (any, error) {
		items, total, err := r.next.List(ctx, filter)
		if err != nil {
			return nil, err
		}
		return cachedTeamList{items: append([]team.Team(nil), items...), total: total}, nil
	})
	if err != nil {
		return nil, 0, err
	}

	cached, _ := v.(cachedTeamList)
	return append([]team.Team(nil), cached.items...), cached.total, nil
}

func (r *TeamRepository) GetOrCreateByName(ctx context.Context, name string) (team.Team, bool, error) {
	item, created, err := r.next.GetOrCreateByName(ctx, name)
	if err != nil {
		return team.Team{}, false, err
	}
	if created {
		// A new team changes every listing page.
		r.cache.DeletePrefix(ctx, "team:list:")
		r.cache.Delete(ctx, "team:id:"+item.ID)
	}
	return item, created, nil
}

type cachedTeamByID struct {
	value  team.Team
	exists bool
}

type cachedTeamList struct {
	items []team.Team
	total int
}

func teamListKey(filter team.ListFilter) string {
	return "team:list:" + strings.ToLower(strings.TrimSpace(filter.Search)) +
		":" + strconv.Itoa(filter.Page) +
		":" + strconv.Itoa(filter.Limit)
}
