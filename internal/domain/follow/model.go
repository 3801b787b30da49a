package follow

import (
	"errors"
	"fmt"
	"time"
)

// ErrDuplicate reports that the (follower, following) edge already exists.
// Repositories map their store's uniqueness violation onto it.
var ErrDuplicate = errors.New("follow edge already exists")

// Follow is a directed edge: follower tracks following. At most one edge per
// ordered pair, enforced by the store.
type Follow struct {
	ID          string
	FollowerID  string
	FollowingID string
	CreatedAt   time.Time
}

func (f Follow) Validate() error {
	if f.FollowerID == "" {
		return fmt.Errorf("follower id is required")
	}
	if f.FollowingID == "" {
		return fmt.Errorf("following id is required")
	}
	if f.FollowerID == f.FollowingID {
		return fmt.Errorf("a user cannot follow themselves")
	}

	return nil
}
