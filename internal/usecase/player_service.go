package usecase

import (
	"context"
	"fmt"
	"strings"

	"github.com/nextinning/recruiting-api/internal/domain/statfilter"
	"github.com/nextinning/recruiting-api/internal/domain/user"
)

const defaultSearchLimit = 10

// SearchPage is one page of stat-filtered players plus the totals the
// handlers need for pagination math.
type SearchPage struct {
	Players    []user.User
	TotalCount int
	Page       int
	Limit      int
}

func (p SearchPage) TotalPages() int {
	if p.Limit <= 0 || p.TotalCount <= 0 {
		return 0
	}
	return (p.TotalCount + p.Limit - 1) / p.Limit
}

// HasMore reports whether pages remain after this one. It is computed from
// the skip plus the rows actually returned, so a short final page closes
// pagination even when the total count drifted between queries.
func (p SearchPage) HasMore() bool {
	return (p.Page-1)*p.Limit+len(p.Players) < p.TotalCount
}

type PlayerService struct {
	userRepo user.Repository
}

func NewPlayerService(userRepo user.Repository) *PlayerService {
	return &PlayerService{userRepo: userRepo}
}

// Search runs a stat filter over approved active players. Criteria arrive
// pre-parsed from the handler; normalization here keeps direct callers (the
// dashboards) honest too.
func (s *PlayerService) Search(ctx context.Context, criteria statfilter.Criteria) (SearchPage, error) {
	ctx, span := startUsecaseSpan(ctx, "usecase.PlayerService.Search")
	defer span.End()

	if _, ok := statfilter.AllCategories[criteria.Category]; !ok {
		return SearchPage{}, fmt.Errorf("%w: invalid stats type %q: valid values are batting, pitching, fielding", ErrInvalidInput, string(criteria.Category))
	}

	criteria.Normalize(defaultSearchLimit)
	criteria.SeasonYear = statfilter.NormalizeSeasonYear(criteria.SeasonYear)

	players, total, err := s.userRepo.Search(ctx, criteria)
	if err != nil {
		return SearchPage{}, fmt.Errorf("search players: %w", err)
	}

	return SearchPage{
		Players:    players,
		TotalCount: total,
		Page:       criteria.Page,
		Limit:      criteria.Limit,
	}, nil
}

// SearchUncommitted is Search pinned to uncommitted players. Unlike the open
// search, an empty result is an error here: the callers treat "no available
// recruits matched" as a failed lookup and want the reason spelled out.
func (s *PlayerService) SearchUncommitted(ctx context.Context, criteria statfilter.Criteria) (SearchPage, error) {
	ctx, span := startUsecaseSpan(ctx, "usecase.PlayerService.SearchUncommitted")
	defer span.End()

	criteria.CommitmentStatus = string(user.CommitmentUncommitted)

	page, err := s.Search(ctx, criteria)
	if err != nil {
		return SearchPage{}, err
	}
	if len(page.Players) == 0 {
		// A miss here is reported as a client error, not an empty page;
		// the consumers render the message verbatim.
		return SearchPage{}, fmt.Errorf("%w: %s", ErrInvalidInput, uncommittedEmptyMessage(criteria))
	}

	return page, nil
}

// uncommittedEmptyMessage picks the most specific explanation for an empty
// uncommitted search: name beats season year beats the generic line.
func uncommittedEmptyMessage(criteria statfilter.Criteria) string {
	if strings.TrimSpace(criteria.Name) != "" {
		return "No uncommitted players found with this name"
	}
	if criteria.SeasonYear != "" {
		return "No uncommitted players found with this year"
	}
	return "No uncommitted players found"
}

// GetProfile loads one player profile by id.
func (s *PlayerService) GetProfile(ctx context.Context, playerID string) (user.User, error) {
	ctx, span := startUsecaseSpan(ctx, "usecase.PlayerService.GetProfile")
	defer span.End()

	playerID = strings.TrimSpace(playerID)
	if playerID == "" {
		return user.User{}, fmt.Errorf("%w: player id is required", ErrInvalidInput)
	}

	u, exists, err := s.userRepo.GetByID(ctx, playerID)
	if err != nil {
		return user.User{}, fmt.Errorf("get player: %w", err)
	}
	if !exists || u.Role != user.RolePlayer {
		return user.User{}, fmt.Errorf("%w: player=%s", ErrNotFound, playerID)
	}

	return u, nil
}

// PlayerStats is the per-category stat history of one player, optionally
// narrowed to a season.
type PlayerStats struct {
	PlayerID string
	Batting  []user.BattingRecord
	Pitching []user.PitchingRecord
	Fielding []user.FieldingRecord
}

// GetStats returns the stat history of a player. An empty seasonYear returns
// every season on record; otherwise season labels are normalized before the
// comparison so "2024-25" and "2024" select the same rows.
func (s *PlayerService) GetStats(ctx context.Context, playerID, seasonYear string) (PlayerStats, error) {
	ctx, span := startUsecaseSpan(ctx, "usecase.PlayerService.GetStats")
	defer span.End()

	u, err := s.GetProfile(ctx, playerID)
	if err != nil {
		return PlayerStats{}, err
	}

	target := statfilter.NormalizeSeasonYear(seasonYear)
	out := PlayerStats{PlayerID: u.ID}

	for _, rec := range u.BattingStats {
		if statfilter.SeasonMatches(rec.SeasonYear, target) {
			out.Batting = append(out.Batting, rec)
		}
	}
	for _, rec := range u.PitchingStats {
		if statfilter.SeasonMatches(rec.SeasonYear, target) {
			out.Pitching = append(out.Pitching, rec)
		}
	}
	for _, rec := range u.FieldingStats {
		if statfilter.SeasonMatches(rec.SeasonYear, target) {
			out.Fielding = append(out.Fielding, rec)
		}
	}

	return out, nil
}
