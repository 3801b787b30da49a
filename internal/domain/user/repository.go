package user

import (
	"context"
	"time"

	"github.com/nextinning/recruiting-api/internal/domain/statfilter"
)

// RosterFilter narrows a team roster listing.
type RosterFilter struct {
	Position   string
	Search     string
	SeasonYear string
	Page       int
	Limit      int
}

// BillingUpdate carries the subscription columns synced onto a user by the
// webhook flows.
type BillingUpdate struct {
	StripeCustomerID   string
	SubscriptionStatus string
	SubscriptionPlan   string
	SubscriptionEndAt  time.Time
}

// Repository describes user persistence needs from use cases.
type Repository interface {
	GetByID(ctx context.Context, id string) (User, bool, error)
	GetByEmail(ctx context.Context, email string) (User, bool, error)
	Create(ctx context.Context, u User) (User, error)
	Update(ctx context.Context, u User) (User, error)
	Delete(ctx context.Context, id string) error

	// GetPlayerByNameAndTeam resolves a player by exact first/last name
	// within a team. Bulk import uses it as the upsert key.
	GetPlayerByNameAndTeam(ctx context.Context, firstName, lastName, teamID string) (User, bool, error)

	// Search runs the stat filter against approved active players and
	// returns one page plus the total match count.
	Search(ctx context.Context, criteria statfilter.Criteria) ([]User, int, error)

	// ListByTeam pages a team roster with optional position/name/season
	// narrowing, returning the page and total count.
	ListByTeam(ctx context.Context, teamID string, filter RosterFilter) ([]User, int, error)

	// ListTopByCompleteness returns approved active players ordered by
	// profile completeness, excluding the given ids.
	ListTopByCompleteness(ctx context.Context, excludeIDs []string, limit int) ([]User, error)

	UpdateBilling(ctx context.Context, id string, update BillingUpdate) error
	SaveProfileCompleteness(ctx context.Context, id string, score int) error
}
