package registration

import "context"

// Repository describes pending-registration persistence needs from use cases.
type Repository interface {
	Create(ctx context.Context, p PendingRegistration) (PendingRegistration, error)
	GetByID(ctx context.Context, id string) (PendingRegistration, bool, error)
	GetByOutsetaAccountUID(ctx context.Context, accountUID string) (PendingRegistration, bool, error)
	GetByEmail(ctx context.Context, email string) (PendingRegistration, bool, error)

	// SaveOutsetaUIDs back-fills provider correlation ids found via the
	// email fallback so future lookups hit directly.
	SaveOutsetaUIDs(ctx context.Context, id, accountUID, personUID, subscriptionUID string) error

	// CompleteIfPending flips status pending -> completed as a single
	// conditional write. It reports false when the record was not pending,
	// which is how replayed webhooks are fenced off under concurrency.
	CompleteIfPending(ctx context.Context, id string) (bool, error)
}
