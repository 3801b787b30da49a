package follow

import "context"

// Repository describes follow-graph persistence needs from use cases.
type Repository interface {
	// Create inserts the edge, returning ErrDuplicate when it already
	// exists.
	Create(ctx context.Context, f Follow) (Follow, error)
	Delete(ctx context.Context, followerID, followingID string) (bool, error)
	CountFollowers(ctx context.Context, userID string) (int, error)
	CountFollowing(ctx context.Context, userID string) (int, error)
	ListFollowingIDs(ctx context.Context, followerID string) ([]string, error)
}
