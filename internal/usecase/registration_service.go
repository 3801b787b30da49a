package usecase

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/nextinning/recruiting-api/internal/domain/registration"
	"github.com/nextinning/recruiting-api/internal/domain/subscription"
	"github.com/nextinning/recruiting-api/internal/domain/user"
	"github.com/nextinning/recruiting-api/internal/platform/id"
)

// defaultSubscriptionTerm fills the period end when the provider omits it.
const defaultSubscriptionTerm = 30 * 24 * time.Hour

// ProviderSubscription is the normalized authoritative subscription state
// fetched from a payment provider after a checkout completes.
type ProviderSubscription struct {
	ProviderSubscriptionID string
	CustomerID             string
	PriceID                string
	Plan                   string
	Status                 string
	CurrentPeriodStart     time.Time
	CurrentPeriodEnd       time.Time
	TrialStart             *time.Time
	TrialEnd               *time.Time
	CancelAtPeriodEnd      bool
}

// SubscriptionFetcher retrieves the current state of one subscription from a
// payment provider. Both billing clients implement it.
type SubscriptionFetcher interface {
	GetSubscription(ctx context.Context, subscriptionID string) (ProviderSubscription, error)
}

// StartRegistrationInput is the checkout-start payload captured before the
// caller is redirected to the payment provider.
type StartRegistrationInput struct {
	FirstName    string
	LastName     string
	Email        string
	PasswordHash string
	Role         string
	State        string
	ProfileImage string
	Plan         string

	TeamID   string
	JobTitle string

	School     string
	Division   string
	Conference string
}

// CompleteRegistrationInput identifies which pending registration a provider
// webhook is confirming. Exactly one of PendingRegistrationID or the Outseta
// uids is set, depending on which provider fired.
type CompleteRegistrationInput struct {
	Provider subscription.Provider

	PendingRegistrationID string
	StripeCustomerID      string

	OutsetaAccountUID      string
	OutsetaPersonUID       string
	OutsetaEmail           string
	OutsetaSubscriptionUID string

	ProviderSubscriptionID string
	Plan                   string
}

type RegistrationService struct {
	registrationRepo registration.Repository
	userRepo         user.Repository
	subscriptionRepo subscription.Repository
	stripe           SubscriptionFetcher
	outseta          SubscriptionFetcher
	idGen            id.Generator
	logger           *slog.Logger
	now              func() time.Time
}

func NewRegistrationService(
	registrationRepo registration.Repository,
	userRepo user.Repository,
	subscriptionRepo subscription.Repository,
	stripeClient SubscriptionFetcher,
	outsetaClient SubscriptionFetcher,
	idGen id.Generator,
	logger *slog.Logger,
) *RegistrationService {
	if logger == nil {
		logger = slog.Default()
	}

	return &RegistrationService{
		registrationRepo: registrationRepo,
		userRepo:         userRepo,
		subscriptionRepo: subscriptionRepo,
		stripe:           stripeClient,
		outseta:          outsetaClient,
		idGen:            idGen,
		logger:           logger,
		now:              time.Now,
	}
}

// Start records a provisional signup. No account exists until a provider
// webhook confirms payment and Complete promotes the record.
func (s *RegistrationService) Start(ctx context.Context, input StartRegistrationInput) (registration.PendingRegistration, error) {
	ctx, span := startUsecaseSpan(ctx, "usecase.RegistrationService.Start")
	defer span.End()

	pendingID, err := s.idGen.NewID()
	if err != nil {
		return registration.PendingRegistration{}, fmt.Errorf("generate registration id: %w", err)
	}

	now := s.now().UTC()
	pending := registration.PendingRegistration{
		ID:           pendingID,
		FirstName:    strings.TrimSpace(input.FirstName),
		LastName:     strings.TrimSpace(input.LastName),
		Email:        strings.ToLower(strings.TrimSpace(input.Email)),
		PasswordHash: input.PasswordHash,
		Role:         strings.TrimSpace(input.Role),
		State:        strings.TrimSpace(input.State),
		ProfileImage: strings.TrimSpace(input.ProfileImage),
		Plan:         strings.TrimSpace(input.Plan),
		TeamID:       strings.TrimSpace(input.TeamID),
		JobTitle:     strings.TrimSpace(input.JobTitle),
		School:       strings.TrimSpace(input.School),
		Division:     strings.TrimSpace(input.Division),
		Conference:   strings.TrimSpace(input.Conference),
		Status:       registration.StatusPending,
		CreatedAt:    now,
		UpdatedAt:    now,
	}
	if err := pending.Validate(); err != nil {
		return registration.PendingRegistration{}, fmt.Errorf("%w: %s", ErrInvalidInput, err.Error())
	}

	created, err := s.registrationRepo.Create(ctx, pending)
	if err != nil {
		return registration.PendingRegistration{}, fmt.Errorf("create pending registration: %w", err)
	}

	return created, nil
}

// Complete promotes a pending registration into a real account with an
// active subscription. Both provider webhooks funnel here.
//
// Creation order is user, then subscription, then the conditional
// pending->completed flip. The flip is the commit point: when it reports the
// record was no longer pending, another delivery of the same webhook already
// won, and this attempt unwinds its own writes subscription-first.
func (s *RegistrationService) Complete(ctx context.Context, input CompleteRegistrationInput) (user.User, error) {
	ctx, span := startUsecaseSpan(ctx, "usecase.RegistrationService.Complete")
	defer span.End()

	pending, err := s.resolvePending(ctx, input)
	if err != nil {
		return user.User{}, err
	}
	if pending.Status == registration.StatusCompleted {
		s.logger.InfoContext(ctx, "registration already completed, skipping",
			slog.String("pending_registration_id", pending.ID))
		return user.User{}, fmt.Errorf("%w: registration %s already completed", ErrConflict, pending.ID)
	}

	providerSub, err := s.fetchProviderSubscription(ctx, input)
	if err != nil {
		return user.User{}, err
	}

	created, err := s.createUser(ctx, pending, input, providerSub)
	if err != nil {
		return user.User{}, err
	}

	sub, err := s.createSubscription(ctx, created.ID, pending, input, providerSub)
	if err != nil {
		s.rollback(ctx, created.ID, "")
		return user.User{}, err
	}

	flipped, err := s.registrationRepo.CompleteIfPending(ctx, pending.ID)
	if err != nil {
		s.rollback(ctx, created.ID, sub.ID)
		return user.User{}, fmt.Errorf("complete pending registration: %w", err)
	}
	if !flipped {
		// Lost the race to a concurrent delivery of the same webhook.
		s.rollback(ctx, created.ID, sub.ID)
		return user.User{}, fmt.Errorf("%w: registration %s already completed", ErrConflict, pending.ID)
	}

	s.logger.InfoContext(ctx, "registration completed",
		slog.String("pending_registration_id", pending.ID),
		slog.String("user_id", created.ID),
		slog.String("subscription_id", sub.ID),
		slog.String("provider", string(input.Provider)))

	return created, nil
}

// resolvePending finds the pending registration a webhook refers to. Stripe
// carries the id directly in checkout metadata. Outseta only knows its own
// account uid, so a first-time delivery falls back to the signup email and
// back-fills the uids for any replay.
func (s *RegistrationService) resolvePending(ctx context.Context, input CompleteRegistrationInput) (registration.PendingRegistration, error) {
	if pendingID := strings.TrimSpace(input.PendingRegistrationID); pendingID != "" {
		pending, exists, err := s.registrationRepo.GetByID(ctx, pendingID)
		if err != nil {
			return registration.PendingRegistration{}, fmt.Errorf("get pending registration: %w", err)
		}
		if !exists {
			return registration.PendingRegistration{}, fmt.Errorf("%w: pending registration=%s", ErrNotFound, pendingID)
		}
		return pending, nil
	}

	accountUID := strings.TrimSpace(input.OutsetaAccountUID)
	if accountUID == "" {
		return registration.PendingRegistration{}, fmt.Errorf("%w: pending registration id or outseta account uid is required", ErrInvalidInput)
	}

	pending, exists, err := s.registrationRepo.GetByOutsetaAccountUID(ctx, accountUID)
	if err != nil {
		return registration.PendingRegistration{}, fmt.Errorf("get pending registration by account uid: %w", err)
	}
	if exists {
		return pending, nil
	}

	email := strings.ToLower(strings.TrimSpace(input.OutsetaEmail))
	if email == "" {
		return registration.PendingRegistration{}, fmt.Errorf("%w: pending registration for account uid=%s", ErrNotFound, accountUID)
	}
	pending, exists, err = s.registrationRepo.GetByEmail(ctx, email)
	if err != nil {
		return registration.PendingRegistration{}, fmt.Errorf("get pending registration by email: %w", err)
	}
	if !exists {
		return registration.PendingRegistration{}, fmt.Errorf("%w: pending registration for account uid=%s", ErrNotFound, accountUID)
	}

	if err := s.registrationRepo.SaveOutsetaUIDs(ctx, pending.ID, accountUID, input.OutsetaPersonUID, input.OutsetaSubscriptionUID); err != nil {
		return registration.PendingRegistration{}, fmt.Errorf("backfill outseta uids: %w", err)
	}
	pending.OutsetaAccountUID = accountUID
	pending.OutsetaPersonUID = strings.TrimSpace(input.OutsetaPersonUID)
	pending.OutsetaSubscriptionUID = strings.TrimSpace(input.OutsetaSubscriptionUID)

	return pending, nil
}

// fetchProviderSubscription gets the authoritative subscription state from
// the provider, defaulting the billing window when fields are missing. A
// provider outage leaves the registration pending for the webhook retry.
func (s *RegistrationService) fetchProviderSubscription(ctx context.Context, input CompleteRegistrationInput) (ProviderSubscription, error) {
	var fetcher SubscriptionFetcher
	switch input.Provider {
	case subscription.ProviderStripe:
		fetcher = s.stripe
	case subscription.ProviderOutseta:
		fetcher = s.outseta
	default:
		return ProviderSubscription{}, fmt.Errorf("%w: unknown provider %q", ErrInvalidInput, string(input.Provider))
	}

	subID := strings.TrimSpace(input.ProviderSubscriptionID)
	if subID == "" {
		subID = strings.TrimSpace(input.OutsetaSubscriptionUID)
	}

	now := s.now().UTC()
	providerSub := ProviderSubscription{
		Status:             string(subscription.StatusActive),
		CurrentPeriodStart: now,
		CurrentPeriodEnd:   now.Add(defaultSubscriptionTerm),
	}

	if fetcher != nil && subID != "" {
		fetched, err := fetcher.GetSubscription(ctx, subID)
		if err != nil {
			return ProviderSubscription{}, fmt.Errorf("%w: fetch subscription from %s: %v", ErrDependencyUnavailable, input.Provider, err)
		}
		providerSub = fetched
		if providerSub.CurrentPeriodStart.IsZero() {
			providerSub.CurrentPeriodStart = now
		}
		if providerSub.CurrentPeriodEnd.IsZero() {
			providerSub.CurrentPeriodEnd = now.Add(defaultSubscriptionTerm)
		}
	}
	if providerSub.ProviderSubscriptionID == "" {
		providerSub.ProviderSubscriptionID = subID
	}

	return providerSub, nil
}

func (s *RegistrationService) createUser(
	ctx context.Context,
	pending registration.PendingRegistration,
	input CompleteRegistrationInput,
	providerSub ProviderSubscription,
) (user.User, error) {
	userID, err := s.idGen.NewID()
	if err != nil {
		return user.User{}, fmt.Errorf("generate user id: %w", err)
	}

	plan := strings.TrimSpace(input.Plan)
	if plan == "" {
		plan = pending.Plan
	}
	if plan == "" {
		plan = providerSub.Plan
	}

	stripeCustomerID := strings.TrimSpace(input.StripeCustomerID)
	if stripeCustomerID == "" {
		stripeCustomerID = providerSub.CustomerID
	}

	now := s.now().UTC()
	u := user.User{
		ID:                 userID,
		FirstName:          pending.FirstName,
		LastName:           pending.LastName,
		Email:              pending.Email,
		PasswordHash:       pending.PasswordHash,
		Role:               user.Role(pending.Role),
		State:              pending.State,
		ProfileImage:       pending.ProfileImage,
		RegistrationStatus: user.RegistrationApproved,
		IsActive:           true,

		TeamID:   pending.TeamID,
		JobTitle: pending.JobTitle,

		School:     pending.School,
		Division:   pending.Division,
		Conference: pending.Conference,

		StripeCustomerID:   stripeCustomerID,
		OutsetaAccountUID:  pending.OutsetaAccountUID,
		OutsetaPersonUID:   pending.OutsetaPersonUID,
		SubscriptionStatus: string(subscription.ParseStatus(providerSub.Status)),
		SubscriptionPlan:   plan,
		SubscriptionEndAt:  providerSub.CurrentPeriodEnd,

		CreatedAt: now,
		UpdatedAt: now,
	}

	created, err := s.userRepo.Create(ctx, u)
	if err != nil {
		return user.User{}, fmt.Errorf("create user from registration: %w", err)
	}

	return created, nil
}

func (s *RegistrationService) createSubscription(
	ctx context.Context,
	userID string,
	pending registration.PendingRegistration,
	input CompleteRegistrationInput,
	providerSub ProviderSubscription,
) (subscription.Subscription, error) {
	subID, err := s.idGen.NewID()
	if err != nil {
		return subscription.Subscription{}, fmt.Errorf("generate subscription id: %w", err)
	}

	plan := strings.TrimSpace(input.Plan)
	if plan == "" {
		plan = pending.Plan
	}
	if plan == "" {
		plan = providerSub.Plan
	}

	now := s.now().UTC()
	sub := subscription.Subscription{
		ID:       subID,
		UserID:   userID,
		Provider: input.Provider,
		Plan:     plan,
		Status:   subscription.ParseStatus(providerSub.Status),

		StripeCustomerID: providerSub.CustomerID,
		StripePriceID:    providerSub.PriceID,

		OutsetaAccountUID: pending.OutsetaAccountUID,

		CurrentPeriodStart: providerSub.CurrentPeriodStart,
		CurrentPeriodEnd:   providerSub.CurrentPeriodEnd,
		TrialStart:         providerSub.TrialStart,
		TrialEnd:           providerSub.TrialEnd,
		CancelAtPeriodEnd:  providerSub.CancelAtPeriodEnd,

		CreatedAt: now,
		UpdatedAt: now,
	}
	switch input.Provider {
	case subscription.ProviderStripe:
		sub.StripeSubscriptionID = providerSub.ProviderSubscriptionID
	case subscription.ProviderOutseta:
		sub.OutsetaSubscriptionUID = providerSub.ProviderSubscriptionID
	}

	if err := sub.Validate(); err != nil {
		return subscription.Subscription{}, fmt.Errorf("%w: %s", ErrInvalidInput, err.Error())
	}
	if err := s.subscriptionRepo.Create(ctx, &sub); err != nil {
		return subscription.Subscription{}, fmt.Errorf("create subscription: %w", err)
	}

	return sub, nil
}

// rollback unwinds the writes of a failed completion, subscription first so
// a crash mid-rollback never strands a subscription without its user.
// Rollback failures are logged and swallowed: the webhook will be retried
// and the remaining rows surface in reconciliation.
func (s *RegistrationService) rollback(ctx context.Context, userID, subscriptionID string) {
	if subscriptionID != "" {
		if err := s.subscriptionRepo.Delete(ctx, subscriptionID); err != nil {
			s.logger.ErrorContext(ctx, "rollback: delete subscription failed",
				slog.String("subscription_id", subscriptionID),
				slog.String("error", err.Error()))
		}
	}
	if userID != "" {
		if err := s.userRepo.Delete(ctx, userID); err != nil {
			s.logger.ErrorContext(ctx, "rollback: delete user failed",
				slog.String("user_id", userID),
				slog.String("error", err.Error()))
		}
	}
}
