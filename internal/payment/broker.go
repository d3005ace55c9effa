package payment

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"time"

	"github.com/sony/gobreaker/v2"

	"github.com/VisheshRajput-dev/vishti-shop-sub000/pkg/circuitbreaker"
)

var (
	ErrInvalidAmount = errors.New("amount must be at least 1")
	// ErrPaymentProvider wraps any gateway-side failure. The broker never
	// retries; retry policy belongs to the caller.
	ErrPaymentProvider = errors.New("payment provider error")
)

// Intent is the gateway order opened for a checkout. Amount echoes back in
// minor currency units, as the gateway reports it.
type Intent struct {
	GatewayOrderID string `json:"gateway_order_id"`
	Amount         int64  `json:"amount"`
	Currency       string `json:"currency"`
	Receipt        string `json:"receipt"`
}

type Broker struct {
	baseURL   string
	keyID     string
	keySecret string
	client    *http.Client
	breaker   *gobreaker.CircuitBreaker[*Intent]
	logger    *slog.Logger
}

func NewBroker(baseURL, keyID, keySecret string, timeout time.Duration, logger *slog.Logger) *Broker {
	return &Broker{
		baseURL:   baseURL,
		keyID:     keyID,
		keySecret: keySecret,
		client:    &http.Client{Timeout: timeout},
		breaker:   circuitbreaker.New[*Intent]("payment-gateway"),
		logger:    logger,
	}
}

type createOrderRequest struct {
	Amount   int64  `json:"amount"`
	Currency string `json:"currency"`
	Receipt  string `json:"receipt"`
}

type createOrderResponse struct {
	ID       string `json:"id"`
	Amount   int64  `json:"amount"`
	Currency string `json:"currency"`
	Receipt  string `json:"receipt"`
}

// CreateIntent opens a gateway order for the given amount in major
// currency units. The major-to-minor conversion (x100) happens here and
// only here, in exact integer arithmetic.
func (b *Broker) CreateIntent(ctx context.Context, amount int64, currency, receipt string) (*Intent, error) {
	if amount < 1 {
		return nil, ErrInvalidAmount
	}

	body, err := json.Marshal(createOrderRequest{
		Amount:   amount * 100,
		Currency: currency,
		Receipt:  receipt,
	})
	if err != nil {
		return nil, fmt.Errorf("marshal gateway order request: %w", err)
	}

	intent, err := b.breaker.Execute(func() (*Intent, error) {
		return b.exchange(ctx, body)
	})
	if err != nil {
		if circuitbreaker.IsOpen(err) {
			return nil, fmt.Errorf("%w: gateway circuit open", ErrPaymentProvider)
		}
		return nil, err
	}
	return intent, nil
}

func (b *Broker) exchange(ctx context.Context, body []byte) (*Intent, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, b.baseURL+"/v1/orders", bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("build gateway order request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.SetBasicAuth(b.keyID, b.keySecret)

	resp, err := b.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrPaymentProvider, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		msg, _ := io.ReadAll(io.LimitReader(resp.Body, 4096))
		b.logger.Error("gateway order creation refused",
			"status", resp.StatusCode, "body", string(msg))
		return nil, fmt.Errorf("%w: gateway returned status %d", ErrPaymentProvider, resp.StatusCode)
	}

	var out createOrderResponse
	if err := json.NewDecoder(resp.Body).Decode(&out); err != nil {
		return nil, fmt.Errorf("%w: decode gateway response: %v", ErrPaymentProvider, err)
	}

	return &Intent{
		GatewayOrderID: out.ID,
		Amount:         out.Amount,
		Currency:       out.Currency,
		Receipt:        out.Receipt,
	}, nil
}
