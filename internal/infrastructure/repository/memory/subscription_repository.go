package memory

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/nextinning/recruiting-api/internal/domain/subscription"
)

type SubscriptionRepository struct {
	mu   sync.Mutex
	subs map[string]subscription.Subscription
	order []string
	now  func() time.Time
}

func NewSubscriptionRepository() *SubscriptionRepository {
	return &SubscriptionRepository{
		subs: make(map[string]subscription.Subscription),
		now:  time.Now,
	}
}

func (r *SubscriptionRepository) Create(_ context.Context, sub *subscription.Subscription) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, exists := r.subs[sub.ID]; exists {
		return fmt.Errorf("subscription %s already exists", sub.ID)
	}
	if sub.CreatedAt.IsZero() {
		sub.CreatedAt = r.now()
	}
	sub.UpdatedAt = sub.CreatedAt
	r.subs[sub.ID] = *sub
	r.order = append(r.order, sub.ID)

	return nil
}

func (r *SubscriptionRepository) Update(_ context.Context, sub *subscription.Subscription) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	existing, ok := r.subs[sub.ID]
	if !ok {
		return fmt.Errorf("subscription %s not found", sub.ID)
	}
	sub.CreatedAt = existing.CreatedAt
	sub.UpdatedAt = r.now()
	r.subs[sub.ID] = *sub

	return nil
}

func (r *SubscriptionRepository) Delete(_ context.Context, subscriptionID string) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	delete(r.subs, subscriptionID)
	for i, id := range r.order {
		if id == subscriptionID {
			r.order = append(r.order[:i], r.order[i+1:]...)
			break
		}
	}

	return nil
}

func (r *SubscriptionRepository) GetByID(_ context.Context, subscriptionID string) (*subscription.Subscription, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	sub, ok := r.subs[subscriptionID]
	if !ok {
		return nil, nil
	}

	return &sub, nil
}

func (r *SubscriptionRepository) GetByStripeSubscriptionID(_ context.Context, stripeSubID string) (*subscription.Subscription, error) {
	return r.findLatest(func(sub subscription.Subscription) bool {
		return sub.StripeSubscriptionID == stripeSubID
	})
}

func (r *SubscriptionRepository) GetByOutsetaUID(_ context.Context, outsetaUID string) (*subscription.Subscription, error) {
	return r.findLatest(func(sub subscription.Subscription) bool {
		return sub.OutsetaSubscriptionUID == outsetaUID
	})
}

func (r *SubscriptionRepository) findLatest(match func(subscription.Subscription) bool) (*subscription.Subscription, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	for i := len(r.order) - 1; i >= 0; i-- {
		sub, ok := r.subs[r.order[i]]
		if ok && match(sub) {
			return &sub, nil
		}
	}

	return nil, nil
}

func (r *SubscriptionRepository) ListByUser(_ context.Context, userID string) ([]subscription.Subscription, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	out := make([]subscription.Subscription, 0)
	for i := len(r.order) - 1; i >= 0; i-- {
		sub, ok := r.subs[r.order[i]]
		if ok && sub.UserID == userID {
			out = append(out, sub)
		}
	}

	return out, nil
}
