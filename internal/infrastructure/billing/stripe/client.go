package stripe

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"strings"
	"time"

	sonic "github.com/bytedance/sonic"
	crerr "github.com/cockroachdb/errors"
	"github.com/nextinning/recruiting-api/internal/platform/resilience"
	"github.com/nextinning/recruiting-api/internal/usecase"
	"github.com/valyala/bytebufferpool"
)

var errStripeTransient = crerr.New("stripe transient failure")

const defaultBaseURL = "https://api.stripe.com"

type Config struct {
	BaseURL        string
	SecretKey      string
	Timeout        time.Duration
	CircuitBreaker resilience.CircuitBreakerConfig
}

// Client reads subscription state from the Stripe API. Writes go through
// Stripe Checkout on the frontend; the backend only ever verifies.
type Client struct {
	client         *http.Client
	baseURL        string
	secretKey      string
	logger         *slog.Logger
	breaker        *resilience.CircuitBreaker
	circuitEnabled bool
}

func NewClient(cfg Config, logger *slog.Logger) *Client {
	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = 10 * time.Second
	}
	if logger == nil {
		logger = slog.Default()
	}
	baseURL := strings.TrimRight(strings.TrimSpace(cfg.BaseURL), "/")
	if baseURL == "" {
		baseURL = defaultBaseURL
	}
	breakerCfg := resilience.NormalizeCircuitBreakerConfig(cfg.CircuitBreaker)

	return &Client{
		client: &http.Client{
			Timeout: timeout,
		},
		baseURL:        baseURL,
		secretKey:      strings.TrimSpace(cfg.SecretKey),
		logger:         logger,
		breaker:        resilience.NewCircuitBreaker(breakerCfg.FailureThreshold, breakerCfg.OpenTimeout, breakerCfg.HalfOpenMaxReq),
		circuitEnabled: breakerCfg.Enabled,
	}
}

type subscriptionPayload struct {
	ID                 string `json:"id"`
	Customer           string `json:"customer"`
	Status             string `json:"status"`
	CurrentPeriodStart int64  `json:"current_period_start"`
	CurrentPeriodEnd   int64  `json:"current_period_end"`
	TrialStart         int64  `json:"trial_start"`
	TrialEnd           int64  `json:"trial_end"`
	CancelAtPeriodEnd  bool   `json:"cancel_at_period_end"`
	Items              struct {
		Data []struct {
			Price struct {
				ID       string `json:"id"`
				Nickname string `json:"nickname"`
			} `json:"price"`
		} `json:"data"`
	} `json:"items"`
}

func (c *Client) GetSubscription(ctx context.Context, subscriptionID string) (usecase.ProviderSubscription, error) {
	subscriptionID = strings.TrimSpace(subscriptionID)
	if subscriptionID == "" {
		return usecase.ProviderSubscription{}, crerr.New("subscription id is required")
	}
	if c.secretKey == "" {
		return usecase.ProviderSubscription{}, crerr.New("stripe secret key is not configured")
	}

	if c.circuitEnabled {
		if err := c.breaker.Allow(); err != nil {
			c.logger.WarnContext(ctx, "stripe circuit breaker rejected request", "state", c.breaker.State())
			return usecase.ProviderSubscription{}, fmt.Errorf("stripe is temporarily unavailable: %w", err)
		}
	}

	requestURL := c.baseURL + "/v1/subscriptions/" + subscriptionID
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, requestURL, nil)
	if err != nil {
		return usecase.ProviderSubscription{}, crerr.Wrap(err, "create stripe request")
	}
	req.Header.Set("Authorization", "Bearer "+c.secretKey)
	req.Header.Set("Accept", "application/json")

	resp, err := c.client.Do(req)
	if err != nil {
		callErr := fmt.Errorf("%w: get subscription id=%s: %v", errStripeTransient, subscriptionID, err)
		c.recordCircuitResult(callErr)
		return usecase.ProviderSubscription{}, callErr
	}
	defer func() {
		_ = resp.Body.Close()
	}()

	buf := bytebufferpool.Get()
	defer bytebufferpool.Put(buf)
	if _, err := buf.ReadFrom(resp.Body); err != nil {
		callErr := fmt.Errorf("%w: read subscription response id=%s: %v", errStripeTransient, subscriptionID, err)
		c.recordCircuitResult(callErr)
		return usecase.ProviderSubscription{}, callErr
	}

	if resp.StatusCode != http.StatusOK {
		callErr := c.statusError(resp.StatusCode, subscriptionID, buf.String())
		c.recordCircuitResult(callErr)
		return usecase.ProviderSubscription{}, callErr
	}

	var payload subscriptionPayload
	if err := sonic.Unmarshal(buf.Bytes(), &payload); err != nil {
		c.recordCircuitResult(nil)
		return usecase.ProviderSubscription{}, crerr.Wrapf(err, "unmarshal subscription id=%s", subscriptionID)
	}

	c.recordCircuitResult(nil)
	return toProviderSubscription(payload), nil
}

func (c *Client) statusError(status int, subscriptionID, body string) error {
	body = strings.TrimSpace(body)
	if status == http.StatusTooManyRequests || status >= http.StatusInternalServerError {
		return fmt.Errorf("%w: get subscription id=%s status=%d body=%s", errStripeTransient, subscriptionID, status, body)
	}
	return fmt.Errorf("get subscription id=%s status=%d body=%s", subscriptionID, status, body)
}

func (c *Client) recordCircuitResult(err error) {
	if !c.circuitEnabled {
		return
	}
	if err == nil {
		c.breaker.RecordSuccess()
		return
	}
	if crerr.Is(err, errStripeTransient) {
		c.breaker.RecordFailure()
		return
	}
	c.breaker.RecordSuccess()
}

func toProviderSubscription(payload subscriptionPayload) usecase.ProviderSubscription {
	out := usecase.ProviderSubscription{
		ProviderSubscriptionID: payload.ID,
		CustomerID:             payload.Customer,
		Status:                 payload.Status,
		CancelAtPeriodEnd:      payload.CancelAtPeriodEnd,
	}

	if len(payload.Items.Data) > 0 {
		out.PriceID = payload.Items.Data[0].Price.ID
		out.Plan = payload.Items.Data[0].Price.Nickname
	}
	if payload.CurrentPeriodStart > 0 {
		out.CurrentPeriodStart = time.Unix(payload.CurrentPeriodStart, 0).UTC()
	}
	if payload.CurrentPeriodEnd > 0 {
		out.CurrentPeriodEnd = time.Unix(payload.CurrentPeriodEnd, 0).UTC()
	}
	if payload.TrialStart > 0 {
		t := time.Unix(payload.TrialStart, 0).UTC()
		out.TrialStart = &t
	}
	if payload.TrialEnd > 0 {
		t := time.Unix(payload.TrialEnd, 0).UTC()
		out.TrialEnd = &t
	}

	return out
}
