package usecase

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/nextinning/recruiting-api/internal/domain/follow"
	"github.com/nextinning/recruiting-api/internal/domain/user"
	"github.com/nextinning/recruiting-api/internal/platform/id"
)

type FollowService struct {
	followRepo follow.Repository
	userRepo   user.Repository
	idGen      id.Generator
	now        func() time.Time
}

func NewFollowService(followRepo follow.Repository, userRepo user.Repository, idGen id.Generator) *FollowService {
	return &FollowService{
		followRepo: followRepo,
		userRepo:   userRepo,
		idGen:      idGen,
		now:        time.Now,
	}
}

// Follow creates the edge follower -> following. Only approved active player
// profiles can be followed; following the same player twice is a conflict.
func (s *FollowService) Follow(ctx context.Context, followerID, followingID string) (follow.Follow, error) {
	ctx, span := startUsecaseSpan(ctx, "usecase.FollowService.Follow")
	defer span.End()

	followerID = strings.TrimSpace(followerID)
	followingID = strings.TrimSpace(followingID)

	edge := follow.Follow{
		FollowerID:  followerID,
		FollowingID: followingID,
	}
	if err := edge.Validate(); err != nil {
		return follow.Follow{}, fmt.Errorf("%w: %s", ErrInvalidInput, err.Error())
	}

	target, exists, err := s.userRepo.GetByID(ctx, followingID)
	if err != nil {
		return follow.Follow{}, fmt.Errorf("get followed user: %w", err)
	}
	if !exists || target.Role != user.RolePlayer || !target.IsActive {
		return follow.Follow{}, fmt.Errorf("%w: player=%s", ErrNotFound, followingID)
	}

	edge.ID, err = s.idGen.NewID()
	if err != nil {
		return follow.Follow{}, fmt.Errorf("generate follow id: %w", err)
	}
	edge.CreatedAt = s.now().UTC()

	created, err := s.followRepo.Create(ctx, edge)
	if err != nil {
		if errors.Is(err, follow.ErrDuplicate) {
			return follow.Follow{}, fmt.Errorf("%w: already following player=%s", ErrConflict, followingID)
		}
		return follow.Follow{}, fmt.Errorf("create follow: %w", err)
	}

	return created, nil
}

// Unfollow removes the edge. Removing an edge that does not exist is not an
// error: the caller's intent already holds.
func (s *FollowService) Unfollow(ctx context.Context, followerID, followingID string) error {
	ctx, span := startUsecaseSpan(ctx, "usecase.FollowService.Unfollow")
	defer span.End()

	followerID = strings.TrimSpace(followerID)
	followingID = strings.TrimSpace(followingID)
	if followerID == "" || followingID == "" {
		return fmt.Errorf("%w: follower id and following id are required", ErrInvalidInput)
	}

	if _, err := s.followRepo.Delete(ctx, followerID, followingID); err != nil {
		return fmt.Errorf("delete follow: %w", err)
	}

	return nil
}

// FollowCounts are the edge totals shown on a profile.
type FollowCounts struct {
	Followers int
	Following int
}

func (s *FollowService) Counts(ctx context.Context, userID string) (FollowCounts, error) {
	ctx, span := startUsecaseSpan(ctx, "usecase.FollowService.Counts")
	defer span.End()

	userID = strings.TrimSpace(userID)
	if userID == "" {
		return FollowCounts{}, fmt.Errorf("%w: user id is required", ErrInvalidInput)
	}

	followers, err := s.followRepo.CountFollowers(ctx, userID)
	if err != nil {
		return FollowCounts{}, fmt.Errorf("count followers: %w", err)
	}
	following, err := s.followRepo.CountFollowing(ctx, userID)
	if err != nil {
		return FollowCounts{}, fmt.Errorf("count following: %w", err)
	}

	return FollowCounts{Followers: followers, Following: following}, nil
}

func (s *FollowService) FollowingIDs(ctx context.Context, followerID string) ([]string, error) {
	ctx, span := startUsecaseSpan(ctx, "usecase.FollowService.FollowingIDs")
	defer span.End()

	followerID = strings.TrimSpace(followerID)
	if followerID == "" {
		return nil, fmt.Errorf("%w: follower id is required", ErrInvalidInput)
	}

	ids, err := s.followRepo.ListFollowingIDs(ctx, followerID)
	if err != nil {
		return nil, fmt.Errorf("list following ids: %w", err)
	}

	return ids, nil
}
