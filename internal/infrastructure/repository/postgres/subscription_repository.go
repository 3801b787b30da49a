package postgres

import (
	"context"
	"fmt"

	"github.com/jmoiron/sqlx"
	"github.com/nextinning/recruiting-api/internal/domain/subscription"
	qb "github.com/nextinning/recruiting-api/internal/platform/querybuilder"
)

type SubscriptionRepository struct {
	db *sqlx.DB
}

func NewSubscriptionRepository(db *sqlx.DB) *SubscriptionRepository {
	return &SubscriptionRepository{db: db}
}

func (r *SubscriptionRepository) Create(ctx context.Context, sub *subscription.Subscription) error {
	query, args, err := qb.InsertModel("subscriptions", subscriptionToInsertModel(*sub), "RETURNING created_at, updated_at")
	if err != nil {
		return fmt.Errorf("build insert subscription query: %w", err)
	}

	if err := r.db.QueryRowxContext(ctx, query, args...).Scan(&sub.CreatedAt, &sub.UpdatedAt); err != nil {
		return fmt.Errorf("insert subscription: %w", err)
	}

	return nil
}

func (r *SubscriptionRepository) Update(ctx context.Context, sub *subscription.Subscription) error {
	builder, err := qb.UpdateModel("subscriptions", subscriptionToInsertModel(*sub))
	if err != nil {
		return fmt.Errorf("build update subscription query: %w", err)
	}
	query, args, err := builder.
		SetExpr("updated_at", "NOW()").
		Where(
			qb.Eq("public_id", sub.ID),
			qb.IsNull("deleted_at"),
		).
		ToSQL()
	if err != nil {
		return fmt.Errorf("build update subscription query: %w", err)
	}

	result, err := r.db.ExecContext(ctx, query, args...)
	if err != nil {
		return fmt.Errorf("update subscription: %w", err)
	}
	affected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("rows affected update subscription: %w", err)
	}
	if affected == 0 {
		return fmt.Errorf("update subscription: not found")
	}

	return nil
}

func (r *SubscriptionRepository) Delete(ctx context.Context, subscriptionID string) error {
	query, args, err := qb.Update("subscriptions").
		SetExpr("deleted_at", "NOW()").
		Where(
			qb.Eq("public_id", subscriptionID),
			qb.IsNull("deleted_at"),
		).
		ToSQL()
	if err != nil {
		return fmt.Errorf("build delete subscription query: %w", err)
	}

	if _, err := r.db.ExecContext(ctx, query, args...); err != nil {
		return fmt.Errorf("delete subscription: %w", err)
	}

	return nil
}

func (r *SubscriptionRepository) GetByID(ctx context.Context, subscriptionID string) (*subscription.Subscription, error) {
	return r.getOne(ctx, qb.Eq("public_id", subscriptionID))
}

func (r *SubscriptionRepository) GetByStripeSubscriptionID(ctx context.Context, stripeSubID string) (*subscription.Subscription, error) {
	return r.getOne(ctx, qb.Eq("stripe_subscription_id", stripeSubID))
}

func (r *SubscriptionRepository) GetByOutsetaUID(ctx context.Context, outsetaUID string) (*subscription.Subscription, error) {
	return r.getOne(ctx, qb.Eq("outseta_subscription_uid", outsetaUID))
}

func (r *SubscriptionRepository) getOne(ctx context.Context, condition qb.Condition) (*subscription.Subscription, error) {
	query, args, err := qb.Select("*").From("subscriptions").
		Where(
			condition,
			qb.IsNull("deleted_at"),
		).
		OrderBy("id DESC").
		Limit(1).
		ToSQL()
	if err != nil {
		return nil, fmt.Errorf("build get subscription query: %w", err)
	}

	var row subscriptionTableModel
	if err := r.db.GetContext(ctx, &row, query, args...); err != nil {
		if isNotFound(err) {
			return nil, nil
		}
		return nil, fmt.Errorf("get subscription: %w", err)
	}

	sub := subscriptionFromRow(row)
	return &sub, nil
}

func (r *SubscriptionRepository) ListByUser(ctx context.Context, userID string) ([]subscription.Subscription, error) {
	query, args, err := qb.Select("*").From("subscriptions").
		Where(
			qb.Eq("user_public_id", userID),
			qb.IsNull("deleted_at"),
		).
		OrderBy("id DESC").
		ToSQL()
	if err != nil {
		return nil, fmt.Errorf("build select subscriptions query: %w", err)
	}

	var rows []subscriptionTableModel
	if err := r.db.SelectContext(ctx, &rows, query, args...); err != nil {
		return nil, fmt.Errorf("select subscriptions: %w", err)
	}

	out := make([]subscription.Subscription, 0, len(rows))
	for _, row := range rows {
		out = append(out, subscriptionFromRow(row))
	}

	return out, nil
}
