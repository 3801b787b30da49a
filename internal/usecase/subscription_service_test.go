package usecase

import (
	"errors"
	"io"
	"log/slog"
	"testing"
	"time"

	"github.com/nextinning/recruiting-api/internal/domain/subscription"
	"github.com/nextinning/recruiting-api/internal/domain/user"
	"github.com/nextinning/recruiting-api/internal/infrastructure/repository/memory"
)

func newSubscriptionFixture(t *testing.T) (*SubscriptionService, *memory.SubscriptionRepository, *memory.UserRepository) {
	t.Helper()

	userRepo := memory.NewUserRepository([]user.User{{
		ID:        "user-1",
		FirstName: "Marcus",
		LastName:  "Webb",
		Email:     "marcus.webb@example.com",
		Role:      user.RoleCoach,
		IsActive:  true,
	}})
	subscriptionRepo := memory.NewSubscriptionRepository()
	err := subscriptionRepo.Create(t.Context(), &subscription.Subscription{
		ID:                   "sub-1",
		UserID:               "user-1",
		Provider:             subscription.ProviderStripe,
		Plan:                 "coach-monthly",
		Status:               subscription.StatusActive,
		StripeCustomerID:     "cus_1",
		StripeSubscriptionID: "stripe-sub-1",
		CurrentPeriodStart:   time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC),
		CurrentPeriodEnd:     time.Date(2026, 2, 1, 0, 0, 0, 0, time.UTC),
	})
	if err != nil {
		t.Fatalf("seed subscription: %v", err)
	}

	service := NewSubscriptionService(subscriptionRepo, userRepo, slog.New(slog.NewTextHandler(io.Discard, nil)))
	return service, subscriptionRepo, userRepo
}

func TestSubscriptionService_HandleUpdated(t *testing.T) {
	service, subscriptionRepo, userRepo := newSubscriptionFixture(t)

	newEnd := time.Date(2026, 3, 1, 0, 0, 0, 0, time.UTC)
	err := service.HandleUpdated(t.Context(), SubscriptionUpdateInput{
		Provider:               subscription.ProviderStripe,
		ProviderSubscriptionID: "stripe-sub-1",
		Status:                 "past_due",
		Plan:                   "coach-annual",
		CurrentPeriodEnd:       newEnd,
		CancelAtPeriodEnd:      true,
	})
	if err != nil {
		t.Fatalf("handle updated: %v", err)
	}

	sub, err := subscriptionRepo.GetByID(t.Context(), "sub-1")
	if err != nil || sub == nil {
		t.Fatalf("get subscription: %v", err)
	}
	if sub.Status != subscription.StatusPastDue || sub.Plan != "coach-annual" || !sub.CancelAtPeriodEnd {
		t.Fatalf("unexpected subscription: %+v", sub)
	}
	if !sub.CurrentPeriodEnd.Equal(newEnd) {
		t.Fatalf("expected period end %v, got %v", newEnd, sub.CurrentPeriodEnd)
	}
	// Zero-valued period start from the payload keeps the stored one.
	if sub.CurrentPeriodStart.IsZero() {
		t.Fatalf("period start should be untouched")
	}

	u, _, err := userRepo.GetByID(t.Context(), "user-1")
	if err != nil {
		t.Fatalf("get user: %v", err)
	}
	if u.SubscriptionStatus != string(subscription.StatusPastDue) || u.SubscriptionPlan != "coach-annual" {
		t.Fatalf("billing not synced to user: %+v", u)
	}
	if !u.SubscriptionEndAt.Equal(newEnd) {
		t.Fatalf("expected user subscription end %v, got %v", newEnd, u.SubscriptionEndAt)
	}
}

func TestSubscriptionService_HandleCanceled(t *testing.T) {
	service, subscriptionRepo, userRepo := newSubscriptionFixture(t)

	canceledAt := time.Date(2026, 1, 15, 9, 0, 0, 0, time.UTC)
	service.now = func() time.Time { return canceledAt }

	if err := service.HandleCanceled(t.Context(), subscription.ProviderStripe, "stripe-sub-1"); err != nil {
		t.Fatalf("handle canceled: %v", err)
	}

	sub, err := subscriptionRepo.GetByID(t.Context(), "sub-1")
	if err != nil || sub == nil {
		t.Fatalf("get subscription: %v", err)
	}
	if sub.Status != subscription.StatusCanceled {
		t.Fatalf("expected canceled status, got %q", sub.Status)
	}
	if sub.CanceledAt == nil || !sub.CanceledAt.Equal(canceledAt) {
		t.Fatalf("expected canceled_at %v, got %v", canceledAt, sub.CanceledAt)
	}

	u, _, err := userRepo.GetByID(t.Context(), "user-1")
	if err != nil {
		t.Fatalf("get user: %v", err)
	}
	if u.SubscriptionStatus != string(subscription.StatusCanceled) || u.SubscriptionPlan != string(subscription.StatusNone) {
		t.Fatalf("cancellation not synced to user: %+v", u)
	}
	// Access runs to the end of the paid period.
	if !u.SubscriptionEndAt.Equal(time.Date(2026, 2, 1, 0, 0, 0, 0, time.UTC)) {
		t.Fatalf("expected period end kept, got %v", u.SubscriptionEndAt)
	}
}

func TestSubscriptionService_Lookup_Errors(t *testing.T) {
	service, _, _ := newSubscriptionFixture(t)

	err := service.HandleUpdated(t.Context(), SubscriptionUpdateInput{
		Provider:               subscription.ProviderStripe,
		ProviderSubscriptionID: "stripe-sub-unknown",
		Status:                 "active",
	})
	if !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}

	err = service.HandleUpdated(t.Context(), SubscriptionUpdateInput{
		Provider:               subscription.Provider("paypal"),
		ProviderSubscriptionID: "whatever",
	})
	if !errors.Is(err, ErrInvalidInput) {
		t.Fatalf("expected ErrInvalidInput for unknown provider, got %v", err)
	}

	err = service.HandleCanceled(t.Context(), subscription.ProviderStripe, "  ")
	if !errors.Is(err, ErrInvalidInput) {
		t.Fatalf("expected ErrInvalidInput for blank id, got %v", err)
	}
}
