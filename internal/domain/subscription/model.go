package subscription

import (
	"fmt"
	"time"
)

type Status string

const (
	StatusActive   Status = "active"
	StatusCanceled Status = "canceled"
	StatusPastDue  Status = "past_due"
	StatusTrialing Status = "trialing"
	StatusNone     Status = "none"
)

type Provider string

const (
	ProviderStripe  Provider = "stripe"
	ProviderOutseta Provider = "outseta"
)

// Subscription is one billing agreement owned by exactly one user. A user can
// accumulate historical records but only one is created per completed
// registration.
type Subscription struct {
	ID       string
	UserID   string
	Provider Provider
	Plan     string
	Status   Status

	StripeCustomerID     string
	StripeSubscriptionID string
	StripePriceID        string

	OutsetaSubscriptionUID string
	OutsetaAccountUID      string

	CurrentPeriodStart time.Time
	CurrentPeriodEnd   time.Time
	TrialStart         *time.Time
	TrialEnd           *time.Time
	CancelAtPeriodEnd  bool
	CanceledAt         *time.Time

	CreatedAt time.Time
	UpdatedAt time.Time
}

func (s Subscription) Validate() error {
	if s.UserID == "" {
		return fmt.Errorf("subscription user id is required")
	}
	if s.Provider != ProviderStripe && s.Provider != ProviderOutseta {
		return fmt.Errorf("invalid subscription provider: %s", s.Provider)
	}
	if s.CurrentPeriodEnd.IsZero() {
		return fmt.Errorf("subscription current period end is required")
	}

	return nil
}

// ParseStatus lowers and validates a provider status string, falling back to
// none for anything unrecognized.
func ParseStatus(v string) Status {
	switch Status(v) {
	case StatusActive, StatusCanceled, StatusPastDue, StatusTrialing:
		return Status(v)
	default:
		return StatusNone
	}
}
