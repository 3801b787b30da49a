package subscription

import "context"

type Repository interface {
	Create(ctx context.Context, sub *Subscription) error
	Update(ctx context.Context, sub *Subscription) error
	Delete(ctx context.Context, id string) error
	GetByID(ctx context.Context, id string) (*Subscription, error)
	GetByStripeSubscriptionID(ctx context.Context, stripeSubID string) (*Subscription, error)
	GetByOutsetaUID(ctx context.Context, outsetaUID string) (*Subscription, error)
	ListByUser(ctx context.Context, userID string) ([]Subscription, error)
}
