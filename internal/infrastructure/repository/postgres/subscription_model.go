package postgres

import (
	"database/sql"
	"time"

	"github.com/nextinning/recruiting-api/internal/domain/subscription"
)

type subscriptionTableModel struct {
	ID       int64  `db:"id"`
	PublicID string `db:"public_id"`
	UserID   string `db:"user_public_id"`
	Provider string `db:"provider"`
	Plan     string `db:"plan"`
	Status   string `db:"status"`

	StripeCustomerID     sql.NullString `db:"stripe_customer_id"`
	StripeSubscriptionID sql.NullString `db:"stripe_subscription_id"`
	StripePriceID        sql.NullString `db:"stripe_price_id"`

	OutsetaSubscriptionUID sql.NullString `db:"outseta_subscription_uid"`
	OutsetaAccountUID      sql.NullString `db:"outseta_account_uid"`

	CurrentPeriodStart time.Time  `db:"current_period_start"`
	CurrentPeriodEnd   time.Time  `db:"current_period_end"`
	TrialStart         *time.Time `db:"trial_start"`
	TrialEnd           *time.Time `db:"trial_end"`
	CancelAtPeriodEnd  bool       `db:"cancel_at_period_end"`
	CanceledAt         *time.Time `db:"canceled_at"`

	CreatedAt time.Time  `db:"created_at"`
	UpdatedAt time.Time  `db:"updated_at"`
	DeletedAt *time.Time `db:"deleted_at"`
}

type subscriptionInsertModel struct {
	PublicID string `db:"public_id"`
	UserID   string `db:"user_public_id"`
	Provider string `db:"provider"`
	Plan     string `db:"plan"`
	Status   string `db:"status"`

	StripeCustomerID     *string `db:"stripe_customer_id"`
	StripeSubscriptionID *string `db:"stripe_subscription_id"`
	StripePriceID        *string `db:"stripe_price_id"`

	OutsetaSubscriptionUID *string `db:"outseta_subscription_uid"`
	OutsetaAccountUID      *string `db:"outseta_account_uid"`

	CurrentPeriodStart time.Time  `db:"current_period_start"`
	CurrentPeriodEnd   time.Time  `db:"current_period_end"`
	TrialStart         *time.Time `db:"trial_start"`
	TrialEnd           *time.Time `db:"trial_end"`
	CancelAtPeriodEnd  bool       `db:"cancel_at_period_end"`
	CanceledAt         *time.Time `db:"canceled_at"`
}

func subscriptionFromRow(row subscriptionTableModel) subscription.Subscription {
	return subscription.Subscription{
		ID:                     row.PublicID,
		UserID:                 row.UserID,
		Provider:               subscription.Provider(row.Provider),
		Plan:                   row.Plan,
		Status:                 subscription.Status(row.Status),
		StripeCustomerID:       row.StripeCustomerID.String,
		StripeSubscriptionID:   row.StripeSubscriptionID.String,
		StripePriceID:          row.StripePriceID.String,
		OutsetaSubscriptionUID: row.OutsetaSubscriptionUID.String,
		OutsetaAccountUID:      row.OutsetaAccountUID.String,
		CurrentPeriodStart:     row.CurrentPeriodStart,
		CurrentPeriodEnd:       row.CurrentPeriodEnd,
		TrialStart:             row.TrialStart,
		TrialEnd:               row.TrialEnd,
		CancelAtPeriodEnd:      row.CancelAtPeriodEnd,
		CanceledAt:             row.CanceledAt,
		CreatedAt:              row.CreatedAt,
		UpdatedAt:              row.UpdatedAt,
	}
}

func subscriptionToInsertModel(s subscription.Subscription) subscriptionInsertModel {
	return subscriptionInsertModel{
		PublicID:               s.ID,
		UserID:                 s.UserID,
		Provider:               string(s.Provider),
		Plan:                   s.Plan,
		Status:                 string(s.Status),
		StripeCustomerID:       optionalString(s.StripeCustomerID),
		StripeSubscriptionID:   optionalString(s.StripeSubscriptionID),
		StripePriceID:          optionalString(s.StripePriceID),
		OutsetaSubscriptionUID: optionalString(s.OutsetaSubscriptionUID),
		OutsetaAccountUID:      optionalString(s.OutsetaAccountUID),
		CurrentPeriodStart:     s.CurrentPeriodStart,
		CurrentPeriodEnd:       s.CurrentPeriodEnd,
		TrialStart:             s.TrialStart,
		TrialEnd:               s.TrialEnd,
		CancelAtPeriodEnd:      s.CancelAtPeriodEnd,
		CanceledAt:             s.CanceledAt,
	}
}
