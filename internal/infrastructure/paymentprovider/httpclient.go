// Package paymentprovider talks to the recurring-payment provider over HTTP.
package paymentprovider

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/sony/gobreaker/v2"

	"github.com/Layang-Digital-Innovation/tradeinvestcenter/internal/application/payment/paymentprovider"
	"github.com/Layang-Digital-Innovation/tradeinvestcenter/internal/shared/config"
	"github.com/Layang-Digital-Innovation/tradeinvestcenter/internal/shared/logger"
)

const (
	recurringPlansPath = "/recurring/plans"
	invoicesPath       = "/v2/invoices"

	defaultTimeout        = 10 * time.Second
	maxProviderResponse   = 1 << 20
	defaultBreakerFailure = 5
	defaultBreakerTimeout = 30 * time.Second
)

// errRejected marks a 4xx answer. The provider is reachable, so it does not count
// against the circuit breaker.
var errRejected = errors.New("request rejected by provider")

type recurringPlanRequest struct {
	ReferenceID     string            `json:"reference_id"`
	CustomerID      string            `json:"customer_id"`
	RecurringAction string            `json:"recurring_action"`
	Currency        string            `json:"currency"`
	Amount          json.Number       `json:"amount"`
	Schedule        recurringSchedule `json:"schedule"`
	Description     string            `json:"description,omitempty"`
}

type recurringSchedule struct {
	Interval      string `json:"interval"`
	IntervalCount int    `json:"interval_count"`
}

type recurringPlanResponse struct {
	ID      string `json:"id"`
	Actions []struct {
		Action string `json:"action"`
		URL    string `json:"url"`
	} `json:"actions"`
}

type invoiceRequest struct {
	ExternalID  string      `json:"external_id"`
	Amount      json.Number `json:"amount"`
	Currency    string      `json:"currency"`
	Description string      `json:"description,omitempty"`
}

type invoiceResponse struct {
	ID         string `json:"id"`
	InvoiceURL string `json:"invoice_url"`
}

// HTTPClient implements paymentprovider.PaymentProvider against the provider's REST API.
// Every call runs through one circuit breaker; while it is open calls fail fast.
type HTTPClient struct {
	baseURL    string
	apiKey     string
	httpClient *http.Client
	breaker    *gobreaker.CircuitBreaker[[]byte]
	logger     logger.Interface
}

var _ paymentprovider.PaymentProvider = (*HTTPClient)(nil)

func NewHTTPClient(cfg config.ProviderConfig, log logger.Interface) *HTTPClient {
	timeout := time.Duration(cfg.TimeoutSeconds) * time.Second
	if timeout <= 0 {
		timeout = defaultTimeout
	}
	maxFailures := cfg.BreakerMaxFailures
	if maxFailures <= 0 {
		maxFailures = defaultBreakerFailure
	}
	openTimeout := time.Duration(cfg.BreakerTimeoutSeconds) * time.Second
	if openTimeout <= 0 {
		openTimeout = defaultBreakerTimeout
	}

	c := &HTTPClient{
		baseURL:    strings.TrimRight(cfg.BaseURL, "/"),
		apiKey:     cfg.APIKey,
		httpClient: &http.Client{Timeout: timeout},
		logger:     log.With("component", "paymentprovider.http"),
	}

	c.breaker = gobreaker.NewCircuitBreaker[[]byte](gobreaker.Settings{
		Name:        "payment-provider",
		MaxRequests: 1,
		Timeout:     openTimeout,
		ReadyToTrip: func(counts gobreaker.Counts) bool {
			return counts.ConsecutiveFailures >= uint32(maxFailures)
		},
		IsSuccessful: func(err error) bool {
			return err == nil || errors.Is(err, errRejected)
		},
		OnStateChange: func(name string, from, to gobreaker.State) {
			c.logger.Warnw("circuit breaker state changed",
				"breaker", name,
				"from", from.String(),
				"to", to.String(),
			)
		},
	})

	return c
}

func (c *HTTPClient) CreatePaymentRequest(ctx context.Context, req paymentprovider.CreatePaymentRequest) (*paymentprovider.CreatePaymentResponse, error) {
	body := recurringPlanRequest{
		ReferenceID:     req.ReferenceID,
		CustomerID:      fmt.Sprintf("user-%d", req.UserID),
		RecurringAction: "PAYMENT",
		Currency:        req.Amount.Currency(),
		Amount:          json.Number(req.Amount.Decimal()),
		Schedule: recurringSchedule{
			Interval:      req.Interval,
			IntervalCount: req.IntervalCount,
		},
		Description: req.Description,
	}

	var resp recurringPlanResponse
	if err := c.post(ctx, recurringPlansPath, body, &resp); err != nil {
		return nil, err
	}
	if resp.ID == "" {
		return nil, fmt.Errorf("%w: recurring plan response has no id", paymentprovider.ErrUnavailable)
	}

	link := ""
	for _, action := range resp.Actions {
		if action.URL != "" {
			link = action.URL
			break
		}
	}

	c.logger.Infow("recurring plan created",
		"reference_id", req.ReferenceID,
		"plan_id", resp.ID,
	)

	return &paymentprovider.CreatePaymentResponse{ID: resp.ID, PaymentLink: link}, nil
}

func (c *HTTPClient) CreateInvoice(ctx context.Context, req paymentprovider.CreateInvoiceRequest) (*paymentprovider.CreateInvoiceResponse, error) {
	body := invoiceRequest{
		ExternalID:  req.ReferenceID,
		Amount:      json.Number(req.Amount.Decimal()),
		Currency:    req.Amount.Currency(),
		Description: req.Description,
	}

	var resp invoiceResponse
	if err := c.post(ctx, invoicesPath, body, &resp); err != nil {
		return nil, err
	}
	if resp.ID == "" {
		return nil, fmt.Errorf("%w: invoice response has no id", paymentprovider.ErrUnavailable)
	}

	c.logger.Infow("invoice created",
		"reference_id", req.ReferenceID,
		"invoice_id", resp.ID,
	)

	return &paymentprovider.CreateInvoiceResponse{ID: resp.ID, InvoiceURL: resp.InvoiceURL}, nil
}

// post sends body as JSON and decodes a 2xx answer into out. Every failure is
// reported as paymentprovider.ErrUnavailable.
func (c *HTTPClient) post(ctx context.Context, path string, body, out any) error {
	payload, err := json.Marshal(body)
	if err != nil {
		return fmt.Errorf("failed to encode provider request: %w", err)
	}

	raw, err := c.breaker.Execute(func() ([]byte, error) {
		return c.do(ctx, path, payload)
	})
	if err != nil {
		if errors.Is(err, gobreaker.ErrOpenState) || errors.Is(err, gobreaker.ErrTooManyRequests) {
			c.logger.Warnw("provider call short-circuited", "path", path, "error", err)
		} else {
			c.logger.Errorw("provider call failed", "path", path, "error", err)
		}
		return fmt.Errorf("%w: %v", paymentprovider.ErrUnavailable, err)
	}

	if err := json.Unmarshal(raw, out); err != nil {
		return fmt.Errorf("%w: failed to decode provider response: %v", paymentprovider.ErrUnavailable, err)
	}
	return nil
}

func (c *HTTPClient) do(ctx context.Context, path string, payload []byte) ([]byte, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+path, bytes.NewReader(payload))
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.SetBasicAuth(c.apiKey, "")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("failed to call provider: %w", err)
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(io.LimitReader(resp.Body, maxProviderResponse))
	if err != nil {
		return nil, fmt.Errorf("failed to read provider response: %w", err)
	}

	switch {
	case resp.StatusCode >= 500:
		return nil, fmt.Errorf("provider returned status %d", resp.StatusCode)
	case resp.StatusCode >= 400:
		return nil, fmt.Errorf("%w: status %d: %s", errRejected, resp.StatusCode, truncate(string(raw), 200))
	}
	return raw, nil
}

func truncate(s string, n int) string {
	if len(s) <= n {
		return s
	}
	return s[:n]
}
