package usecase

import (
	"context"
	"fmt"
	"strings"

	"github.com/sourcegraph/conc/pool"

	"github.com/nextinning/recruiting-api/internal/domain/statfilter"
	"github.com/nextinning/recruiting-api/internal/domain/user"
)

const dashboardSuggestionLimit = 10

// Dashboard is the recruiting landing view for a coach or scout: their own
// profile, the players they follow, and two completeness-ranked pools.
// Suggestions exclude already-followed players; TopPlayers do not.
type Dashboard struct {
	Viewer          user.User
	FollowedPlayers []user.User
	Suggestions     []user.User
	TopPlayers      []user.User
	FollowingCount  int
	FollowerCount   int
}

type DashboardService struct {
	userRepo  user.Repository
	followSvc *FollowService
}

func NewDashboardService(userRepo user.Repository, followSvc *FollowService) *DashboardService {
	return &DashboardService{
		userRepo:  userRepo,
		followSvc: followSvc,
	}
}

// ForCoach builds the coach dashboard. Coaches recruit committed and
// uncommitted players alike, so the suggestion pool is unrestricted.
func (s *DashboardService) ForCoach(ctx context.Context, coachID string) (Dashboard, error) {
	ctx, span := startUsecaseSpan(ctx, "usecase.DashboardService.ForCoach")
	defer span.End()

	return s.build(ctx, coachID, user.RoleCoach)
}

// ForScout builds the scout dashboard. Suggestions are limited to
// uncommitted players since committed ones are off the market.
func (s *DashboardService) ForScout(ctx context.Context, scoutID string) (Dashboard, error) {
	ctx, span := startUsecaseSpan(ctx, "usecase.DashboardService.ForScout")
	defer span.End()

	return s.build(ctx, scoutID, user.RoleScout)
}

func (s *DashboardService) build(ctx context.Context, viewerID string, wantRole user.Role) (Dashboard, error) {
	viewerID = strings.TrimSpace(viewerID)
	if viewerID == "" {
		return Dashboard{}, fmt.Errorf("%w: user id is required", ErrInvalidInput)
	}

	viewer, exists, err := s.userRepo.GetByID(ctx, viewerID)
	if err != nil {
		return Dashboard{}, fmt.Errorf("get dashboard user: %w", err)
	}
	if !exists {
		return Dashboard{}, fmt.Errorf("%w: user=%s", ErrNotFound, viewerID)
	}
	if viewer.Role != wantRole && viewer.Role != user.RoleAdmin {
		return Dashboard{}, fmt.Errorf("%w: dashboard is for role %s", ErrUnauthorized, wantRole)
	}

	followingIDs, err := s.followSvc.FollowingIDs(ctx, viewerID)
	if err != nil {
		return Dashboard{}, err
	}

	out := Dashboard{
		Viewer:         viewer,
		FollowingCount: len(followingIDs),
	}

	// The four remaining reads are independent; fan them out and fail the
	// dashboard on the first error. Each goroutine writes a distinct field.
	group := pool.New().WithContext(ctx).WithCancelOnError()

	group.Go(func(ctx context.Context) error {
		if len(followingIDs) == 0 {
			return nil
		}
		criteria := statfilter.Criteria{
			Category:    statfilter.CategoryBatting,
			OnlyUserIDs: followingIDs,
			Page:        1,
			Limit:       len(followingIDs),
		}
		followed, _, searchErr := s.userRepo.Search(ctx, criteria)
		if searchErr != nil {
			return fmt.Errorf("load followed players: %w", searchErr)
		}
		out.FollowedPlayers = followed
		return nil
	})

	group.Go(func(ctx context.Context) error {
		suggestions, listErr := s.userRepo.ListTopByCompleteness(ctx, followingIDs, dashboardSuggestionLimit)
		if listErr != nil {
			return fmt.Errorf("load suggestions: %w", listErr)
		}
		if wantRole == user.RoleScout {
			suggestions = filterUncommitted(suggestions)
		}
		out.Suggestions = suggestions
		return nil
	})

	group.Go(func(ctx context.Context) error {
		top, listErr := s.userRepo.ListTopByCompleteness(ctx, nil, dashboardSuggestionLimit)
		if listErr != nil {
			return fmt.Errorf("load top players: %w", listErr)
		}
		out.TopPlayers = top
		return nil
	})

	group.Go(func(ctx context.Context) error {
		counts, countErr := s.followSvc.Counts(ctx, viewerID)
		if countErr != nil {
			return countErr
		}
		out.FollowerCount = counts.Followers
		return nil
	})

	if err := group.Wait(); err != nil {
		return Dashboard{}, err
	}

	return out, nil
}

func filterUncommitted(players []user.User) []user.User {
	out := make([]user.User, 0, len(players))
	for _, p := range players {
		if p.CommitmentStatus != user.CommitmentCommitted {
			out = append(out, p)
		}
	}
	return out
}
