package usecase

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/nextinning/recruiting-api/internal/domain/subscription"
	"github.com/nextinning/recruiting-api/internal/domain/user"
)

// SubscriptionUpdateInput is the normalized payload of a provider's
// subscription-changed webhook.
type SubscriptionUpdateInput struct {
	Provider               subscription.Provider
	ProviderSubscriptionID string
	Status                 string
	Plan                   string
	CurrentPeriodStart     time.Time
	CurrentPeriodEnd       time.Time
	CancelAtPeriodEnd      bool
}

type SubscriptionService struct {
	subscriptionRepo subscription.Repository
	userRepo         user.Repository
	logger           *slog.Logger
	now              func() time.Time
}

func NewSubscriptionService(
	subscriptionRepo subscription.Repository,
	userRepo user.Repository,
	logger *slog.Logger,
) *SubscriptionService {
	if logger == nil {
		logger = slog.Default()
	}

	return &SubscriptionService{
		subscriptionRepo: subscriptionRepo,
		userRepo:         userRepo,
		logger:           logger,
		now:              time.Now,
	}
}

// HandleUpdated syncs status, plan, and billing window from the provider
// onto the subscription record and the owning user.
func (s *SubscriptionService) HandleUpdated(ctx context.Context, input SubscriptionUpdateInput) error {
	ctx, span := startUsecaseSpan(ctx, "usecase.SubscriptionService.HandleUpdated")
	defer span.End()

	sub, err := s.lookup(ctx, input.Provider, input.ProviderSubscriptionID)
	if err != nil {
		return err
	}

	now := s.now().UTC()
	sub.Status = subscription.ParseStatus(input.Status)
	if plan := strings.TrimSpace(input.Plan); plan != "" {
		sub.Plan = plan
	}
	if !input.CurrentPeriodStart.IsZero() {
		sub.CurrentPeriodStart = input.CurrentPeriodStart
	}
	if !input.CurrentPeriodEnd.IsZero() {
		sub.CurrentPeriodEnd = input.CurrentPeriodEnd
	}
	sub.CancelAtPeriodEnd = input.CancelAtPeriodEnd
	sub.UpdatedAt = now

	if err := s.subscriptionRepo.Update(ctx, sub); err != nil {
		return fmt.Errorf("update subscription: %w", err)
	}

	if err := s.syncUser(ctx, sub); err != nil {
		return err
	}

	s.logger.InfoContext(ctx, "subscription updated",
		slog.String("subscription_id", sub.ID),
		slog.String("status", string(sub.Status)))

	return nil
}

// HandleCanceled marks the subscription canceled. The user keeps access
// until the current period end; only the plan label drops to none so the
// next renewal attempt is never billed.
func (s *SubscriptionService) HandleCanceled(ctx context.Context, provider subscription.Provider, providerSubscriptionID string) error {
	ctx, span := startUsecaseSpan(ctx, "usecase.SubscriptionService.HandleCanceled")
	defer span.End()

	sub, err := s.lookup(ctx, provider, providerSubscriptionID)
	if err != nil {
		return err
	}

	now := s.now().UTC()
	sub.Status = subscription.StatusCanceled
	sub.CanceledAt = &now
	sub.UpdatedAt = now

	if err := s.subscriptionRepo.Update(ctx, sub); err != nil {
		return fmt.Errorf("cancel subscription: %w", err)
	}

	update := user.BillingUpdate{
		StripeCustomerID:   sub.StripeCustomerID,
		SubscriptionStatus: string(subscription.StatusCanceled),
		SubscriptionPlan:   string(subscription.StatusNone),
		SubscriptionEndAt:  sub.CurrentPeriodEnd,
	}
	if err := s.userRepo.UpdateBilling(ctx, sub.UserID, update); err != nil {
		return fmt.Errorf("sync canceled subscription to user: %w", err)
	}

	s.logger.InfoContext(ctx, "subscription canceled",
		slog.String("subscription_id", sub.ID),
		slog.String("user_id", sub.UserID))

	return nil
}

// HandlePaymentEvent records invoice outcomes. These are log-only today;
// dunning is the provider's job.
func (s *SubscriptionService) HandlePaymentEvent(ctx context.Context, provider subscription.Provider, providerSubscriptionID string, succeeded bool) {
	ctx, span := startUsecaseSpan(ctx, "usecase.SubscriptionService.HandlePaymentEvent")
	defer span.End()

	s.logger.InfoContext(ctx, "subscription payment event",
		slog.String("provider", string(provider)),
		slog.String("provider_subscription_id", providerSubscriptionID),
		slog.Bool("succeeded", succeeded))
}

func (s *SubscriptionService) lookup(ctx context.Context, provider subscription.Provider, providerSubscriptionID string) (*subscription.Subscription, error) {
	providerSubscriptionID = strings.TrimSpace(providerSubscriptionID)
	if providerSubscriptionID == "" {
		return nil, fmt.Errorf("%w: provider subscription id is required", ErrInvalidInput)
	}

	var (
		sub *subscription.Subscription
		err error
	)
	switch provider {
	case subscription.ProviderStripe:
		sub, err = s.subscriptionRepo.GetByStripeSubscriptionID(ctx, providerSubscriptionID)
	case subscription.ProviderOutseta:
		sub, err = s.subscriptionRepo.GetByOutsetaUID(ctx, providerSubscriptionID)
	default:
		return nil, fmt.Errorf("%w: unknown provider %q", ErrInvalidInput, string(provider))
	}
	if err != nil {
		return nil, fmt.Errorf("get subscription by provider id: %w", err)
	}
	if sub == nil {
		return nil, fmt.Errorf("%w: subscription provider_id=%s", ErrNotFound, providerSubscriptionID)
	}

	return sub, nil
}

func (s *SubscriptionService) syncUser(ctx context.Context, sub *subscription.Subscription) error {
	update := user.BillingUpdate{
		StripeCustomerID:   sub.StripeCustomerID,
		SubscriptionStatus: string(sub.Status),
		SubscriptionPlan:   sub.Plan,
		SubscriptionEndAt:  sub.CurrentPeriodEnd,
	}
	if err := s.userRepo.UpdateBilling(ctx, sub.UserID, update); err != nil {
		return fmt.Errorf("sync subscription to user: %w", err)
	}

	return nil
}
