package usecase

import (
	"context"
	"fmt"
	"strings"

	"github.com/nextinning/recruiting-api/internal/domain/statfilter"
	"github.com/nextinning/recruiting-api/internal/domain/team"
	"github.com/nextinning/recruiting-api/internal/domain/user"
)

const defaultRosterLimit = 10

type TeamPage struct {
	Teams      []team.Team
	TotalCount int
	Page       int
	Limit      int
}

// RosterPage is one page of a team roster together with the team itself, so
// handlers render the header without a second lookup.
type RosterPage struct {
	Team       team.Team
	Players    []user.User
	TotalCount int
	Page       int
	Limit      int
}

type TeamService struct {
	teamRepo team.Repository
	userRepo user.Repository
}

func NewTeamService(teamRepo team.Repository, userRepo user.Repository) *TeamService {
	return &TeamService{
		teamRepo: teamRepo,
		userRepo: userRepo,
	}
}

func (s *TeamService) List(ctx context.Context, filter team.ListFilter) (TeamPage, error) {
	ctx, span := startUsecaseSpan(ctx, "usecase.TeamService.List")
	defer span.End()

	if filter.Page < 1 {
		filter.Page = 1
	}
	if filter.Limit < 1 {
		filter.Limit = defaultRosterLimit
	}
	filter.Search = strings.TrimSpace(filter.Search)

	teams, total, err := s.teamRepo.List(ctx, filter)
	if err != nil {
		return TeamPage{}, fmt.Errorf("list teams: %w", err)
	}

	return TeamPage{
		Teams:      teams,
		TotalCount: total,
		Page:       filter.Page,
		Limit:      filter.Limit,
	}, nil
}

// GetRoster pages the players of one team, optionally narrowed by position,
// name search, and season year.
func (s *TeamService) GetRoster(ctx context.Context, teamID string, filter user.RosterFilter) (RosterPage, error) {
	ctx, span := startUsecaseSpan(ctx, "usecase.TeamService.GetRoster")
	defer span.End()

	teamID = strings.TrimSpace(teamID)
	if teamID == "" {
		return RosterPage{}, fmt.Errorf("%w: team id is required", ErrInvalidInput)
	}

	t, exists, err := s.teamRepo.GetByID(ctx, teamID)
	if err != nil {
		return RosterPage{}, fmt.Errorf("get team: %w", err)
	}
	if !exists {
		return RosterPage{}, fmt.Errorf("%w: team=%s", ErrNotFound, teamID)
	}

	if filter.Page < 1 {
		filter.Page = 1
	}
	if filter.Limit < 1 {
		filter.Limit = defaultRosterLimit
	}
	filter.Search = strings.TrimSpace(filter.Search)
	filter.SeasonYear = statfilter.NormalizeSeasonYear(filter.SeasonYear)

	players, total, err := s.userRepo.ListByTeam(ctx, teamID, filter)
	if err != nil {
		return RosterPage{}, fmt.Errorf("list team roster: %w", err)
	}

	return RosterPage{
		Team:       t,
		Players:    players,
		TotalCount: total,
		Page:       filter.Page,
		Limit:      filter.Limit,
	}, nil
}
