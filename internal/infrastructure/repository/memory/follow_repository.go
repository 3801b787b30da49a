package memory

import (
	"context"
	"sync"
	"time"

	"github.com/nextinning/recruiting-api/internal/domain/follow"
)

type FollowRepository struct {
	mu    sync.RWMutex
	edges []follow.Follow
	now   func() time.Time
}

func NewFollowRepository() *FollowRepository {
	return &FollowRepository{now: time.Now}
}

func (r *FollowRepository) Create(_ context.Context, f follow.Follow) (follow.Follow, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	for _, edge := range r.edges {
		if edge.FollowerID == f.FollowerID && edge.FollowingID == f.FollowingID {
			return follow.Follow{}, follow.ErrDuplicate
		}
	}

	if f.CreatedAt.IsZero() {
		f.CreatedAt = r.now()
	}
	r.edges = append(r.edges, f)

	return f, nil
}

func (r *FollowRepository) Delete(_ context.Context, followerID, followingID string) (bool, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	for i, edge := range r.edges {
		if edge.FollowerID == followerID && edge.FollowingID == followingID {
			r.edges = append(r.edges[:i], r.edges[i+1:]...)
			return true, nil
		}
	}

	return false, nil
}

func (r *FollowRepository) CountFollowers(_ context.Context, userID string) (int, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	count := 0
	for _, edge := range r.edges {
		if edge.FollowingID == userID {
			count++
		}
	}

	return count, nil
}

func (r *FollowRepository) CountFollowing(_ context.Context, userID string) (int, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	count := 0
	for _, edge := range r.edges {
		if edge.FollowerID == userID {
			count++
		}
	}

	return count, nil
}

func (r *FollowRepository) ListFollowingIDs(_ context.Context, followerID string) ([]string, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	ids := make([]string, 0)
	for _, edge := range r.edges {
		if edge.FollowerID == followerID {
			ids = append(ids, edge.FollowingID)
		}
	}

	return ids, nil
}
