package memory

import (
	"context"
	"fmt"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/nextinning/recruiting-api/internal/domain/team"
	"github.com/nextinning/recruiting-api/internal/platform/id"
)

type TeamRepository struct {
	mu    sync.RWMutex
	teams map[string]team.Team
	order []string
	idGen id.Generator
	now   func() time.Time
}

func NewTeamRepository(teams []team.Team, idGen id.Generator) *TeamRepository {
	r := &TeamRepository{
		teams: make(map[string]team.Team, len(teams)),
		idGen: idGen,
		now:   time.Now,
	}
	for _, t := range teams {
		r.teams[t.ID] = t
		r.order = append(r.order, t.ID)
	}
	return r
}

func (r *TeamRepository) GetByID(_ context.Context, teamID string) (team.Team, bool, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	t, ok := r.teams[teamID]
	return t, ok, nil
}

func (r *TeamRepository) List(_ context.Context, filter team.ListFilter) ([]team.Team, int, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	search := strings.ToLower(strings.TrimSpace(filter.Search))
	matched := make([]team.Team, 0, len(r.order))
	for _, teamID := range r.order {
		t := r.teams[teamID]
		if !t.IsActive {
			continue
		}
		if search != "" &&
			!strings.Contains(strings.ToLower(t.Name), search) &&
			!strings.Contains(strings.ToLower(t.Location), search) {
			continue
		}
		matched = append(matched, t)
	}

	sort.SliceStable(matched, func(i, j int) bool { return matched[i].Name < matched[j].Name })

	total := len(matched)
	skip := (filter.Page - 1) * filter.Limit
	if skip < 0 {
		skip = 0
	}
	if skip >= len(matched) {
		return []team.Team{}, total, nil
	}
	end := len(matched)
	if filter.Limit > 0 && skip+filter.Limit < end {
		end = skip + filter.Limit
	}

	return matched[skip:end], total, nil
}

func (r *TeamRepository) GetOrCreateByName(_ context.Context, name string) (team.Team, bool, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return team.Team{}, false, fmt.Errorf("team name is required")
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	for _, teamID := range r.order {
		t := r.teams[teamID]
		if strings.EqualFold(t.Name, name) {
			return t, false, nil
		}
	}

	teamID, err := r.idGen.NewID()
	if err != nil {
		return team.Team{}, false, fmt.Errorf("generate team id: %w", err)
	}

	created := team.Team{
		ID:        teamID,
		Name:      name,
		IsActive:  true,
		CreatedAt: r.now(),
		UpdatedAt: r.now(),
	}
	r.teams[teamID] = created
	r.order = append(r.order, teamID)

	return created, true, nil
}
