package postgres

import (
	"context"
	"fmt"
	"strings"

	"github.com/jmoiron/sqlx"
	"github.com/nextinning/recruiting-api/internal/domain/registration"
	qb "github.com/nextinning/recruiting-api/internal/platform/querybuilder"
)

type RegistrationRepository struct {
	db *sqlx.DB
}

func NewRegistrationRepository(db *sqlx.DB) *RegistrationRepository {
	return &RegistrationRepository{db: db}
}

func (r *RegistrationRepository) Create(ctx context.Context, p registration.PendingRegistration) (registration.PendingRegistration, error) {
	query, args, err := qb.InsertModel("pending_registrations", pendingRegistrationToInsertModel(p), "RETURNING created_at, updated_at")
	if err != nil {
		return registration.PendingRegistration{}, fmt.Errorf("build insert pending registration query: %w", err)
	}

	if err := r.db.QueryRowxContext(ctx, query, args...).Scan(&p.CreatedAt, &p.UpdatedAt); err != nil {
		return registration.PendingRegistration{}, fmt.Errorf("insert pending registration: %w", err)
	}

	return p, nil
}

func (r *RegistrationRepository) GetByID(ctx context.Context, registrationID string) (registration.PendingRegistration, bool, error) {
	return r.getOne(ctx, qb.Eq("public_id", registrationID))
}

func (r *RegistrationRepository) GetByOutsetaAccountUID(ctx context.Context, accountUID string) (registration.PendingRegistration, bool, error) {
	return r.getOne(ctx, qb.Eq("outseta_account_uid", accountUID))
}

func (r *RegistrationRepository) GetByEmail(ctx context.Context, email string) (registration.PendingRegistration, bool, error) {
	return r.getOne(ctx, qb.Expr("LOWER(email) = LOWER(?)", strings.TrimSpace(email)))
}

func (r *RegistrationRepository) getOne(ctx context.Context, condition qb.Condition) (registration.PendingRegistration, bool, error) {
	query, args, err := qb.Select("*").From("pending_registrations").
		Where(
			condition,
			qb.IsNull("deleted_at"),
		).
		OrderBy("id DESC").
		Limit(1).
		ToSQL()
	if err != nil {
		return registration.PendingRegistration{}, false, fmt.Errorf("build get pending registration query: %w", err)
	}

	var row pendingRegistrationTableModel
	if err := r.db.GetContext(ctx, &row, query, args...); err != nil {
		if isNotFound(err) {
			return registration.PendingRegistration{}, false, nil
		}
		return registration.PendingRegistration{}, false, fmt.Errorf("get pending registration: %w", err)
	}

	return pendingRegistrationFromRow(row), true, nil
}

func (r *RegistrationRepository) SaveOutsetaUIDs(ctx context.Context, registrationID, accountUID, personUID, subscriptionUID string) error {
	builder := qb.Update("pending_registrations").
		SetExpr("updated_at", "NOW()")
	if accountUID != "" {
		builder.Set("outseta_account_uid", accountUID)
	}
	if personUID != "" {
		builder.Set("outseta_person_uid", personUID)
	}
	if subscriptionUID != "" {
		builder.Set("outseta_subscription_uid", subscriptionUID)
	}

	query, args, err := builder.
		Where(
			qb.Eq("public_id", registrationID),
			qb.IsNull("deleted_at"),
		).
		ToSQL()
	if err != nil {
		return fmt.Errorf("build update pending registration uids query: %w", err)
	}

	if _, err := r.db.ExecContext(ctx, query, args...); err != nil {
		return fmt.Errorf("update pending registration uids: %w", err)
	}

	return nil
}

// CompleteIfPending flips status pending -> completed as one conditional
// UPDATE. The affected-rows count is the verdict: zero means another webhook
// delivery already claimed the registration.
func (r *RegistrationRepository) CompleteIfPending(ctx context.Context, registrationID string) (bool, error) {
	query, args, err := qb.Update("pending_registrations").
		Set("status", string(registration.StatusCompleted)).
		SetExpr("updated_at", "NOW()").
		Where(
			qb.Eq("public_id", registrationID),
			qb.Eq("status", string(registration.StatusPending)),
			qb.IsNull("deleted_at"),
		).
		ToSQL()
	if err != nil {
		return false, fmt.Errorf("build complete pending registration query: %w", err)
	}

	result, err := r.db.ExecContext(ctx, query, args...)
	if err != nil {
		return false, fmt.Errorf("complete pending registration: %w", err)
	}
	affected, err := result.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("rows affected complete pending registration: %w", err)
	}

	return affected > 0, nil
}
