package outseta

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

var errOutsetaTransient = crerr.New("outseta transient failure")

type Config struct {
	BaseURL        string
	APIKey         string
	APISecret      string
	Timeout        time.Duration
	CircuitBreaker resilience.CircuitBreakerConfig
}

// Client reads subscription state from the Outseta REST API.
type Client struct {
	client         *http.Client
	baseURL        string
	authHeader     string
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
	breakerCfg := resilience.NormalizeCircuitBreakerConfig(cfg.CircuitBreaker)

	authHeader := ""
	if key := strings.TrimSpace(cfg.APIKey); key != "" {
		authHeader = "Outseta " + key + ":" + strings.TrimSpace(cfg.APISecret)
	}

	return &Client{
		client: &http.Client{
			Timeout: timeout,
		},
		baseURL:        strings.TrimRight(strings.TrimSpace(cfg.BaseURL), "/"),
		authHeader:     authHeader,
		logger:         logger,
		breaker:        resilience.NewCircuitBreaker(breakerCfg.FailureThreshold, breakerCfg.OpenTimeout, breakerCfg.HalfOpenMaxReq),
		circuitEnabled: breakerCfg.Enabled,
	}
}

type subscriptionPayload struct {
	Uid       string `json:"Uid"`
	StartDate string `json:"StartDate"`
	EndDate   string `json:"EndDate"`
	// RenewalDate is the next billing boundary and doubles as the current
	// period end.
	RenewalDate       string `json:"RenewalDate"`
	CancelAtPeriodEnd bool   `json:"CancelAtPeriodEnd"`
	Plan              struct {
		Uid  string `json:"Uid"`
		Name string `json:"Name"`
	} `json:"Plan"`
	Account struct {
		Uid string `json:"Uid"`
	} `json:"Account"`
}

func (c *Client) GetSubscription(ctx context.Context, subscriptionUID string) (usecase.ProviderSubscription, error) {
	subscriptionUID = strings.TrimSpace(subscriptionUID)
	if subscriptionUID == "" {
		return usecase.ProviderSubscription{}, crerr.New("subscription uid is required")
	}
	if c.baseURL == "" || c.authHeader == "" {
		return usecase.ProviderSubscription{}, crerr.New("outseta client is not configured")
	}

	if c.circuitEnabled {
		if err := c.breaker.Allow(); err != nil {
			c.logger.WarnContext(ctx, "outseta circuit breaker rejected request", "state", c.breaker.State())
			return usecase.ProviderSubscription{}, fmt.Errorf("outseta is temporarily unavailable: %w", err)
		}
	}

	requestURL := c.baseURL + "/api/v1/billing/subscriptions/" + subscriptionUID
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, requestURL, nil)
	if err != nil {
		return usecase.ProviderSubscription{}, crerr.Wrap(err, "create outseta request")
	}
	req.Header.Set("Authorization", c.authHeader)
	req.Header.Set("Accept", "application/json")

	resp, err := c.client.Do(req)
	if err != nil {
		callErr := fmt.Errorf("%w: get subscription uid=%s: %v", errOutsetaTransient, subscriptionUID, err)
		c.recordCircuitResult(callErr)
		return usecase.ProviderSubscription{}, callErr
	}
	defer func() {
		_ = resp.Body.Close()
	}()

	buf := bytebufferpool.Get()
	defer bytebufferpool.Put(buf)
	if _, err := buf.ReadFrom(resp.Body); err != nil {
		callErr := fmt.Errorf("%w: read subscription response uid=%s: %v", errOutsetaTransient, subscriptionUID, err)
		c.recordCircuitResult(callErr)
		return usecase.ProviderSubscription{}, callErr
	}

	if resp.StatusCode != http.StatusOK {
		callErr := c.statusError(resp.StatusCode, subscriptionUID, buf.String())
		c.recordCircuitResult(callErr)
		return usecase.ProviderSubscription{}, callErr
	}

	var payload subscriptionPayload
	if err := sonic.Unmarshal(buf.Bytes(), &payload); err != nil {
		c.recordCircuitResult(nil)
		return usecase.ProviderSubscription{}, crerr.Wrapf(err, "unmarshal subscription uid=%s", subscriptionUID)
	}

	c.recordCircuitResult(nil)
	return toProviderSubscription(payload), nil
}

func (c *Client) statusError(status int, subscriptionUID, body string) error {
	body = strings.TrimSpace(body)
	if status == http.StatusTooManyRequests || status >= http.StatusInternalServerError {
		return fmt.Errorf("%w: get subscription uid=%s status=%d body=%s", errOutsetaTransient, subscriptionUID, status, body)
	}
	return fmt.Errorf("get subscription uid=%s status=%d body=%s", subscriptionUID, status, body)
}

func (c *Client) recordCircuitResult(err error) {
	if !c.circuitEnabled {
		return
	}
	if err == nil {
		c.breaker.RecordSuccess()
		return
	}
	if crerr.Is(err, errOutsetaTransient) {
		c.breaker.RecordFailure()
		return
	}
	c.breaker.RecordSuccess()
}

func toProviderSubscription(payload subscriptionPayload) usecase.ProviderSubscription {
	out := usecase.ProviderSubscription{
		ProviderSubscriptionID: payload.Uid,
		Plan:                   payload.Plan.Name,
		PriceID:                payload.Plan.Uid,
		Status:                 "active",
		CancelAtPeriodEnd:      payload.CancelAtPeriodEnd,
	}
	if payload.CancelAtPeriodEnd {
		out.Status = "canceled"
	}

	if start, err := parseOutsetaTime(payload.StartDate); err == nil {
		out.CurrentPeriodStart = start
	}
	if renewal, err := parseOutsetaTime(payload.RenewalDate); err == nil {
		out.CurrentPeriodEnd = renewal
	} else if end, endErr := parseOutsetaTime(payload.EndDate); endErr == nil {
		out.CurrentPeriodEnd = end
	}

	return out
}

func parseOutsetaTime(v string) (time.Time, error) {
	v = strings.TrimSpace(v)
	if v == "" {
		return time.Time{}, fmt.Errorf("empty timestamp")
	}
	t, err := time.Parse(time.RFC3339, v)
	if err != nil {
		return time.Time{}, err
	}
	return t.UTC(), nil
}
