package httpapi

import (
	"context"
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	jsoniter "github.com/json-iterator/go"
	"github.com/nextinning/recruiting-api/internal/domain/subscription"
	"github.com/nextinning/recruiting-api/internal/usecase"
)

// stripeSignatureTolerance bounds how stale a signed webhook may be.
const stripeSignatureTolerance = 5 * time.Minute

// webhookJSON tolerates the unknown fields providers add over time; webhook
// payloads are the one place strict decoding would be a liability.
var webhookJSON = jsoniter.ConfigCompatibleWithStandardLibrary

type stripeEvent struct {
	ID   string `json:"id"`
	Type string `json:"type"`
	Data struct {
		Object stripeEventObject `json:"object"`
	} `json:"data"`
}

type stripeEventObject struct {
	ID           string `json:"id"`
	Customer     string `json:"customer"`
	Subscription string `json:"subscription"`
	Status       string `json:"status"`
	Metadata     struct {
		PendingRegistrationID string `json:"pendingRegistrationId"`
		Plan                  string `json:"plan"`
	} `json:"metadata"`
	CurrentPeriodStart int64 `json:"current_period_start"`
	CurrentPeriodEnd   int64 `json:"current_period_end"`
	CancelAtPeriodEnd  bool  `json:"cancel_at_period_end"`
	Items              struct {
		Data []struct {
			Price struct {
				ID       string `json:"id"`
				Nickname string `json:"nickname"`
			} `json:"price"`
		} `json:"data"`
	} `json:"items"`
}

// StripeWebhook handles Stripe event deliveries. Signature failures are the
// only 4xx; everything past the signature is acknowledged with 200 so Stripe
// stops retrying deliveries we have already judged.
func (h *Handler) StripeWebhook(w http.ResponseWriter, r *http.Request) {
	ctx, span := startSpan(r.Context(), "httpapi.Handler.StripeWebhook")
	defer span.End()

	body, err := io.ReadAll(r.Body)
	if err != nil {
		writeError(ctx, w, fmt.Errorf("%w: read webhook body: %v", usecase.ErrInvalidInput, err))
		return
	}

	if err := verifyStripeSignature(r.Header.Get("Stripe-Signature"), body, h.stripeWebhookSecret, time.Now()); err != nil {
		h.logger.WarnContext(ctx, "stripe webhook signature rejected", "error", err)
		writeError(ctx, w, fmt.Errorf("%w: %s", usecase.ErrInvalidInput, err.Error()))
		return
	}

	var event stripeEvent
	if err := webhookJSON.Unmarshal(body, &event); err != nil {
		h.logger.WarnContext(ctx, "stripe webhook payload unreadable", "error", err)
		writeJSON(ctx, w, http.StatusOK, messageResponse{Message: "ignored"})
		return
	}

	switch event.Type {
	case "checkout.session.completed":
		h.handleStripeCheckoutCompleted(ctx, event)
	case "customer.subscription.updated":
		h.handleStripeSubscriptionUpdated(ctx, event)
	case "customer.subscription.deleted":
		obj := event.Data.Object
		if err := h.subscriptionService.HandleCanceled(ctx, subscription.ProviderStripe, obj.ID); err != nil {
			h.logger.ErrorContext(ctx, "stripe subscription delete failed", "event_id", event.ID, "error", err)
		}
	case "invoice.payment_succeeded":
		h.subscriptionService.HandlePaymentEvent(ctx, subscription.ProviderStripe, event.Data.Object.Subscription, true)
	case "invoice.payment_failed":
		h.subscriptionService.HandlePaymentEvent(ctx, subscription.ProviderStripe, event.Data.Object.Subscription, false)
	default:
		h.logger.InfoContext(ctx, "stripe webhook event ignored", "event_type", event.Type)
	}

	writeJSON(ctx, w, http.StatusOK, messageResponse{Message: "received"})
}

func (h *Handler) handleStripeCheckoutCompleted(ctx context.Context, event stripeEvent) {
	obj := event.Data.Object
	_, err := h.registrationService.Complete(ctx, usecase.CompleteRegistrationInput{
		Provider:               subscription.ProviderStripe,
		PendingRegistrationID:  obj.Metadata.PendingRegistrationID,
		StripeCustomerID:       obj.Customer,
		ProviderSubscriptionID: obj.Subscription,
		Plan:                   obj.Metadata.Plan,
	})
	if err != nil {
		// Acknowledged regardless; a duplicate or unknown session is not
		// something Stripe can fix by retrying.
		h.logger.ErrorContext(ctx, "stripe checkout completion failed",
			"event_id", event.ID,
			"pending_registration_id", obj.Metadata.PendingRegistrationID,
			"error", err)
	}
}

func (h *Handler) handleStripeSubscriptionUpdated(ctx context.Context, event stripeEvent) {
	obj := event.Data.Object

	plan := ""
	if len(obj.Items.Data) > 0 {
		plan = obj.Items.Data[0].Price.Nickname
	}

	input := usecase.SubscriptionUpdateInput{
		Provider:               subscription.ProviderStripe,
		ProviderSubscriptionID: obj.ID,
		Status:                 obj.Status,
		Plan:                   plan,
		CancelAtPeriodEnd:      obj.CancelAtPeriodEnd,
	}
	if obj.CurrentPeriodStart > 0 {
		input.CurrentPeriodStart = time.Unix(obj.CurrentPeriodStart, 0).UTC()
	}
	if obj.CurrentPeriodEnd > 0 {
		input.CurrentPeriodEnd = time.Unix(obj.CurrentPeriodEnd, 0).UTC()
	}

	if err := h.subscriptionService.HandleUpdated(ctx, input); err != nil {
		h.logger.ErrorContext(ctx, "stripe subscription update failed", "event_id", event.ID, "error", err)
	}
}

// verifyStripeSignature checks the v1 HMAC scheme: the header carries a
// timestamp and one or more signatures over "<timestamp>.<body>".
func verifyStripeSignature(header string, body []byte, secret string, now time.Time) error {
	if strings.TrimSpace(secret) == "" {
		return fmt.Errorf("stripe webhook secret is not configured")
	}
	if strings.TrimSpace(header) == "" {
		return fmt.Errorf("missing Stripe-Signature header")
	}

	var timestamp string
	var signatures []string
	for _, part := range strings.Split(header, ",") {
		key, value, found := strings.Cut(strings.TrimSpace(part), "=")
		if !found {
			continue
		}
		switch key {
		case "t":
			timestamp = value
		case "v1":
			signatures = append(signatures, value)
		}
	}
	if timestamp == "" || len(signatures) == 0 {
		return fmt.Errorf("malformed Stripe-Signature header")
	}

	ts, err := parseUnix(timestamp)
	if err != nil {
		return fmt.Errorf("malformed signature timestamp")
	}
	if age := now.Sub(ts); age > stripeSignatureTolerance || age < -stripeSignatureTolerance {
		return fmt.Errorf("signature timestamp outside tolerance")
	}

	mac := hmac.New(sha256.New, []byte(secret))
	mac.Write([]byte(timestamp))
	mac.Write([]byte("."))
	mac.Write(body)
	expected := hex.EncodeToString(mac.Sum(nil))

	for _, signature := range signatures {
		if hmac.Equal([]byte(expected), []byte(signature)) {
			return nil
		}
	}

	return fmt.Errorf("no matching v1 signature")
}

func parseUnix(v string) (time.Time, error) {
	var seconds int64
	for _, r := range v {
		if r < '0' || r > '9' {
			return time.Time{}, fmt.Errorf("invalid unix timestamp %q", v)
		}
		seconds = seconds*10 + int64(r-'0')
	}
	if seconds == 0 {
		return time.Time{}, fmt.Errorf("invalid unix timestamp %q", v)
	}
	return time.Unix(seconds, 0), nil
}

type outsetaEvent struct {
	Uid     string `json:"Uid"`
	Account struct {
		Uid string `json:"Uid"`
	} `json:"Account"`
	Person struct {
		Uid   string `json:"Uid"`
		Email string `json:"Email"`
	} `json:"Person"`
	Plan struct {
		Uid  string `json:"Uid"`
		Name string `json:"Name"`
	} `json:"Plan"`
	SubscriptionStatus string `json:"SubscriptionStatus"`
	RenewalDate        string `json:"RenewalDate"`
}

// OutsetaWebhook handles Outseta subscription events. Outseta signs with a
// static shared key instead of Stripe's timestamped HMAC.
func (h *Handler) OutsetaWebhook(w http.ResponseWriter, r *http.Request) {
	ctx, span := startSpan(r.Context(), "httpapi.Handler.OutsetaWebhook")
	defer span.End()

	if secret := strings.TrimSpace(h.outsetaWebhookSecret); secret != "" {
		provided := strings.TrimSpace(r.Header.Get("X-Outseta-Key"))
		if !hmac.Equal([]byte(secret), []byte(provided)) {
			h.logger.WarnContext(ctx, "outseta webhook key rejected")
			writeError(ctx, w, fmt.Errorf("%w: invalid webhook key", usecase.ErrInvalidInput))
			return
		}
	}

	body, err := io.ReadAll(r.Body)
	if err != nil {
		writeError(ctx, w, fmt.Errorf("%w: read webhook body: %v", usecase.ErrInvalidInput, err))
		return
	}

	var event outsetaEvent
	if err := webhookJSON.Unmarshal(body, &event); err != nil {
		h.logger.WarnContext(ctx, "outseta webhook payload unreadable", "error", err)
		writeJSON(ctx, w, http.StatusOK, messageResponse{Message: "ignored"})
		return
	}

	eventType := strings.TrimSpace(r.Header.Get("X-Outseta-Event"))
	switch eventType {
	case "account.subscription.created", "":
		_, err := h.registrationService.Complete(ctx, usecase.CompleteRegistrationInput{
			Provider:               subscription.ProviderOutseta,
			OutsetaAccountUID:      event.Account.Uid,
			OutsetaPersonUID:       event.Person.Uid,
			OutsetaEmail:           event.Person.Email,
			OutsetaSubscriptionUID: event.Uid,
			Plan:                   event.Plan.Name,
		})
		if err != nil {
			h.logger.ErrorContext(ctx, "outseta registration completion failed",
				"account_uid", event.Account.Uid,
				"error", err)
		}
	case "account.subscription.updated":
		input := usecase.SubscriptionUpdateInput{
			Provider:               subscription.ProviderOutseta,
			ProviderSubscriptionID: event.Uid,
			Status:                 strings.ToLower(event.SubscriptionStatus),
			Plan:                   event.Plan.Name,
		}
		if renewal, parseErr := time.Parse(time.RFC3339, event.RenewalDate); parseErr == nil {
			input.CurrentPeriodEnd = renewal.UTC()
		}
		if err := h.subscriptionService.HandleUpdated(ctx, input); err != nil {
			h.logger.ErrorContext(ctx, "outseta subscription update failed", "subscription_uid", event.Uid, "error", err)
		}
	case "account.subscription.cancelled", "account.subscription.deleted":
		if err := h.subscriptionService.HandleCanceled(ctx, subscription.ProviderOutseta, event.Uid); err != nil {
			h.logger.ErrorContext(ctx, "outseta subscription cancel failed", "subscription_uid", event.Uid, "error", err)
		}
	default:
		h.logger.InfoContext(ctx, "outseta webhook event ignored", "event_type", eventType)
	}

	writeJSON(ctx, w, http.StatusOK, messageResponse{Message: "received"})
}
