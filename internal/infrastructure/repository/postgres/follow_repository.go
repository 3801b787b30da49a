package postgres

import (
	"context"
	"fmt"
	"time"

	"github.com/jmoiron/sqlx"
	"github.com/nextinning/recruiting-api/internal/domain/follow"
	qb "github.com/nextinning/recruiting-api/internal/platform/querybuilder"
)

type followTableModel struct {
	ID          int64     `db:"id"`
	PublicID    string    `db:"public_id"`
	FollowerID  string    `db:"follower_public_id"`
	FollowingID string    `db:"following_public_id"`
	CreatedAt   time.Time `db:"created_at"`
}

type followInsertModel struct {
	PublicID    string `db:"public_id"`
	FollowerID  string `db:"follower_public_id"`
	FollowingID string `db:"following_public_id"`
}

type FollowRepository struct {
	db *sqlx.DB
}

func NewFollowRepository(db *sqlx.DB) *FollowRepository {
	return &FollowRepository{db: db}
}

// Create inserts the follow edge. The unique index on the follower/following
// pair is the single authority on duplicates, so two concurrent follows of
// the same player cannot both land.
func (r *FollowRepository) Create(ctx context.Context, f follow.Follow) (follow.Follow, error) {
	insertModel := followInsertModel{
		PublicID:    f.ID,
		FollowerID:  f.FollowerID,
		FollowingID: f.FollowingID,
	}
	query, args, err := qb.InsertModel("follows", insertModel, "RETURNING created_at")
	if err != nil {
		return follow.Follow{}, fmt.Errorf("build insert follow query: %w", err)
	}

	var createdAt time.Time
	if err := r.db.QueryRowxContext(ctx, query, args...).Scan(&createdAt); err != nil {
		if isUniqueViolation(err) {
			return follow.Follow{}, follow.ErrDuplicate
		}
		return follow.Follow{}, fmt.Errorf("insert follow: %w", err)
	}

	f.CreatedAt = createdAt
	return f, nil
}

func (r *FollowRepository) Delete(ctx context.Context, followerID, followingID string) (bool, error) {
	query, args, err := qb.DeleteFrom("follows").
		Where(
			qb.Eq("follower_public_id", followerID),
			qb.Eq("following_public_id", followingID),
		).
		ToSQL()
	if err != nil {
		return false, fmt.Errorf("build delete follow query: %w", err)
	}

	result, err := r.db.ExecContext(ctx, query, args...)
	if err != nil {
		return false, fmt.Errorf("delete follow: %w", err)
	}
	affected, err := result.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("rows affected delete follow: %w", err)
	}

	return affected > 0, nil
}

func (r *FollowRepository) CountFollowers(ctx context.Context, userID string) (int, error) {
	return r.count(ctx, qb.Eq("following_public_id", userID))
}

func (r *FollowRepository) CountFollowing(ctx context.Context, userID string) (int, error) {
	return r.count(ctx, qb.Eq("follower_public_id", userID))
}

func (r *FollowRepository) count(ctx context.Context, condition qb.Condition) (int, error) {
	query, args, err := qb.Select("COUNT(1)").From("follows").
		Where(condition).
		ToSQL()
	if err != nil {
		return 0, fmt.Errorf("build count follows query: %w", err)
	}

	var total int
	if err := r.db.GetContext(ctx, &total, query, args...); err != nil {
		return 0, fmt.Errorf("count follows: %w", err)
	}

	return total, nil
}

func (r *FollowRepository) ListFollowingIDs(ctx context.Context, followerID string) ([]string, error) {
	query, args, err := qb.Select("following_public_id").From("follows").
		Where(qb.Eq("follower_public_id", followerID)).
		OrderBy("id").
		ToSQL()
	if err != nil {
		return nil, fmt.Errorf("build select following ids query: %w", err)
	}

	var ids []string
	if err := r.db.SelectContext(ctx, &ids, query, args...); err != nil {
		return nil, fmt.Errorf("select following ids: %w", err)
	}

	return ids, nil
}
