package usecase

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"testing"
	"time"

	"github.com/nextinning/recruiting-api/internal/domain/registration"
	"github.com/nextinning/recruiting-api/internal/domain/subscription"
	"github.com/nextinning/recruiting-api/internal/domain/user"
	"github.com/nextinning/recruiting-api/internal/infrastructure/repository/memory"
)

type seqIDGenerator struct {
	prefix string
	n      int
}

func (g *seqIDGenerator) NewID() (string, error) {
	g.n++
	return fmt.Sprintf("%s-%03d", g.prefix, g.n), nil
}

type stubSubscriptionFetcher struct {
	sub      ProviderSubscription
	err      error
	gotSubID string
}

func (f *stubSubscriptionFetcher) GetSubscription(_ context.Context, subscriptionID string) (ProviderSubscription, error) {
	f.gotSubID = subscriptionID
	if f.err != nil {
		return ProviderSubscription{}, f.err
	}
	return f.sub, nil
}

type registrationFixture struct {
	service          *RegistrationService
	registrationRepo *memory.RegistrationRepository
	userRepo         *memory.UserRepository
	subscriptionRepo *memory.SubscriptionRepository
	stripe           *stubSubscriptionFetcher
	outseta          *stubSubscriptionFetcher
}

func newRegistrationFixture() *registrationFixture {
	f := &registrationFixture{
		registrationRepo: memory.NewRegistrationRepository(),
		userRepo:         memory.NewUserRepository(nil),
		subscriptionRepo: memory.NewSubscriptionRepository(),
		stripe:           &stubSubscriptionFetcher{},
		outseta:          &stubSubscriptionFetcher{},
	}
	f.service = NewRegistrationService(
		f.registrationRepo,
		f.userRepo,
		f.subscriptionRepo,
		f.stripe,
		f.outseta,
		&seqIDGenerator{prefix: "id"},
		slog.New(slog.NewTextHandler(io.Discard, nil)),
	)
	return f
}

func startPending(t *testing.T, f *registrationFixture) registration.PendingRegistration {
	t.Helper()

	pending, err := f.service.Start(t.Context(), StartRegistrationInput{
		FirstName: "Dana",
		LastName:  "Whitlow",
		Email:     "Dana.Whitlow@Example.com",
		Role:      string(user.RoleCoach),
		State:     "TX",
		Plan:      "coach-annual",
	})
	if err != nil {
		t.Fatalf("start registration: %v", err)
	}
	return pending
}

func TestRegistrationService_Start(t *testing.T) {
	f := newRegistrationFixture()

	pending := startPending(t, f)
	if pending.ID == "" {
		t.Fatalf("expected generated id")
	}
	if pending.Email != "dana.whitlow@example.com" {
		t.Fatalf("expected lowercased email, got %q", pending.Email)
	}
	if pending.Status != registration.StatusPending {
		t.Fatalf("expected pending status, got %q", pending.Status)
	}
}

func TestRegistrationService_Start_Validation(t *testing.T) {
	f := newRegistrationFixture()

	_, err := f.service.Start(t.Context(), StartRegistrationInput{Role: string(user.RoleCoach)})
	if !errors.Is(err, ErrInvalidInput) {
		t.Fatalf("expected ErrInvalidInput for missing email, got %v", err)
	}
}

func TestRegistrationService_Complete_Stripe(t *testing.T) {
	f := newRegistrationFixture()
	pending := startPending(t, f)

	periodEnd := time.Date(2026, 3, 1, 0, 0, 0, 0, time.UTC)
	f.stripe.sub = ProviderSubscription{
		ProviderSubscriptionID: "sub_123",
		CustomerID:             "cus_777",
		PriceID:                "price_coach",
		Status:                 "active",
		CurrentPeriodStart:     periodEnd.AddDate(0, -1, 0),
		CurrentPeriodEnd:       periodEnd,
	}

	created, err := f.service.Complete(t.Context(), CompleteRegistrationInput{
		Provider:               subscription.ProviderStripe,
		PendingRegistrationID:  pending.ID,
		StripeCustomerID:       "cus_777",
		ProviderSubscriptionID: "sub_123",
	})
	if err != nil {
		t.Fatalf("complete: %v", err)
	}

	if f.stripe.gotSubID != "sub_123" {
		t.Fatalf("expected stripe fetch for sub_123, got %q", f.stripe.gotSubID)
	}
	if created.Email != pending.Email || created.Role != user.RoleCoach {
		t.Fatalf("unexpected user: %+v", created)
	}
	if created.RegistrationStatus != user.RegistrationApproved || !created.IsActive {
		t.Fatalf("expected approved active user, got %+v", created)
	}
	if created.SubscriptionStatus != string(subscription.StatusActive) {
		t.Fatalf("unexpected subscription status %q", created.SubscriptionStatus)
	}
	if !created.SubscriptionEndAt.Equal(periodEnd) {
		t.Fatalf("unexpected subscription end %v", created.SubscriptionEndAt)
	}

	subs, err := f.subscriptionRepo.ListByUser(t.Context(), created.ID)
	if err != nil {
		t.Fatalf("list subscriptions: %v", err)
	}
	if len(subs) != 1 {
		t.Fatalf("expected 1 subscription, got %d", len(subs))
	}
	if subs[0].StripeSubscriptionID != "sub_123" || subs[0].Plan != "coach-annual" {
		t.Fatalf("unexpected subscription: %+v", subs[0])
	}

	stored, _, err := f.registrationRepo.GetByID(t.Context(), pending.ID)
	if err != nil {
		t.Fatalf("get pending: %v", err)
	}
	if stored.Status != registration.StatusCompleted {
		t.Fatalf("expected completed registration, got %q", stored.Status)
	}
}

func TestRegistrationService_Complete_ReplayIsConflict(t *testing.T) {
	f := newRegistrationFixture()
	pending := startPending(t, f)

	input := CompleteRegistrationInput{
		Provider:              subscription.ProviderStripe,
		PendingRegistrationID: pending.ID,
	}
	if _, err := f.service.Complete(t.Context(), input); err != nil {
		t.Fatalf("first complete: %v", err)
	}
	_, err := f.service.Complete(t.Context(), input)
	if !errors.Is(err, ErrConflict) {
		t.Fatalf("expected ErrConflict on replay, got %v", err)
	}
}

func TestRegistrationService_Complete_ProviderDownLeavesPending(t *testing.T) {
	f := newRegistrationFixture()
	pending := startPending(t, f)
	f.stripe.err = errors.New("stripe: connection refused")

	_, err := f.service.Complete(t.Context(), CompleteRegistrationInput{
		Provider:               subscription.ProviderStripe,
		PendingRegistrationID:  pending.ID,
		ProviderSubscriptionID: "sub_123",
	})
	if !errors.Is(err, ErrDependencyUnavailable) {
		t.Fatalf("expected ErrDependencyUnavailable, got %v", err)
	}

	stored, _, err := f.registrationRepo.GetByID(t.Context(), pending.ID)
	if err != nil {
		t.Fatalf("get pending: %v", err)
	}
	if stored.Status != registration.StatusPending {
		t.Fatalf("expected registration left pending for the retry, got %q", stored.Status)
	}
}

func TestRegistrationService_Complete_NoSubscriptionIDDefaultsTerm(t *testing.T) {
	f := newRegistrationFixture()
	pending := startPending(t, f)

	now := time.Date(2026, 2, 1, 12, 0, 0, 0, time.UTC)
	f.service.now = func() time.Time { return now }

	created, err := f.service.Complete(t.Context(), CompleteRegistrationInput{
		Provider:              subscription.ProviderStripe,
		PendingRegistrationID: pending.ID,
	})
	if err != nil {
		t.Fatalf("complete: %v", err)
	}
	if f.stripe.gotSubID != "" {
		t.Fatalf("expected no provider fetch, got %q", f.stripe.gotSubID)
	}
	if created.SubscriptionStatus != string(subscription.StatusActive) {
		t.Fatalf("unexpected status %q", created.SubscriptionStatus)
	}
	if want := now.Add(30 * 24 * time.Hour); !created.SubscriptionEndAt.Equal(want) {
		t.Fatalf("expected default term end %v, got %v", want, created.SubscriptionEndAt)
	}
}

func TestRegistrationService_Complete_OutsetaEmailFallback(t *testing.T) {
	f := newRegistrationFixture()
	pending := startPending(t, f)

	created, err := f.service.Complete(t.Context(), CompleteRegistrationInput{
		Provider:               subscription.ProviderOutseta,
		OutsetaAccountUID:      "acct_9",
		OutsetaPersonUID:       "person_9",
		OutsetaEmail:           "dana.whitlow@example.com",
		OutsetaSubscriptionUID: "osub_9",
	})
	if err != nil {
		t.Fatalf("complete: %v", err)
	}
	if f.outseta.gotSubID != "osub_9" {
		t.Fatalf("expected outseta fetch for osub_9, got %q", f.outseta.gotSubID)
	}
	if created.OutsetaAccountUID != "acct_9" || created.OutsetaPersonUID != "person_9" {
		t.Fatalf("expected outseta uids on user, got %+v", created)
	}

	// The uid back-fill means a replayed webhook resolves without email.
	stored, exists, err := f.registrationRepo.GetByOutsetaAccountUID(t.Context(), "acct_9")
	if err != nil || !exists {
		t.Fatalf("expected back-filled account uid lookup, exists=%v err=%v", exists, err)
	}
	if stored.ID != pending.ID {
		t.Fatalf("resolved wrong registration %q", stored.ID)
	}

	subs, err := f.subscriptionRepo.ListByUser(t.Context(), created.ID)
	if err != nil || len(subs) != 1 {
		t.Fatalf("expected 1 subscription, got %d err=%v", len(subs), err)
	}
	if subs[0].OutsetaSubscriptionUID != "osub_9" {
		t.Fatalf("unexpected subscription: %+v", subs[0])
	}
}

func TestRegistrationService_Complete_UnknownRegistration(t *testing.T) {
	f := newRegistrationFixture()

	_, err := f.service.Complete(t.Context(), CompleteRegistrationInput{
		Provider:              subscription.ProviderStripe,
		PendingRegistrationID: "nope",
	})
	if !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}

	_, err = f.service.Complete(t.Context(), CompleteRegistrationInput{Provider: subscription.ProviderStripe})
	if !errors.Is(err, ErrInvalidInput) {
		t.Fatalf("expected ErrInvalidInput without identifiers, got %v", err)
	}
}

// raceLostRegistrationRepo reports the record pending but refuses the
// conditional flip, simulating a concurrent delivery winning the race.
type raceLostRegistrationRepo struct {
	registration.Repository
}

func (r *raceLostRegistrationRepo) CompleteIfPending(ctx context.Context, id string) (bool, error) {
	return false, nil
}

func TestRegistrationService_Complete_LostRaceRollsBack(t *testing.T) {
	f := newRegistrationFixture()
	pending := startPending(t, f)
	f.service.registrationRepo = &raceLostRegistrationRepo{Repository: f.registrationRepo}

	_, err := f.service.Complete(t.Context(), CompleteRegistrationInput{
		Provider:              subscription.ProviderStripe,
		PendingRegistrationID: pending.ID,
	})
	if !errors.Is(err, ErrConflict) {
		t.Fatalf("expected ErrConflict after losing the flip, got %v", err)
	}

	// Both writes of the losing attempt are unwound.
	_, exists, err := f.userRepo.GetByID(t.Context(), "id-002")
	if err != nil {
		t.Fatalf("get user: %v", err)
	}
	if exists {
		t.Fatalf("expected rollback to delete the user")
	}
	subs, err := f.subscriptionRepo.ListByUser(t.Context(), "id-002")
	if err != nil {
		t.Fatalf("list subscriptions: %v", err)
	}
	if len(subs) != 0 {
		t.Fatalf("expected rollback to delete the subscription, found %d", len(subs))
	}
}
