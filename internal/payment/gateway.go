// Package payment verifies customer payments with the payment provider.
package payment

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/shopspring/decimal"
)

var (
	ErrDeclined         = errors.New("payment declined")
	ErrAmountMismatch   = errors.New("payment amount does not match order total")
	ErrUnknownPayment   = errors.New("payment reference not found")
	ErrGatewayFailure   = errors.New("payment gateway unavailable")
	ErrInvalidReference = errors.New("payment reference is required")
)

// Result is what the provider reports for a payment reference.
type Result struct {
	Provider  string          `json:"provider"`
	Reference string          `json:"reference"`
	Status    string          `json:"status"`
	Amount    decimal.Decimal `json:"amount"`
	Currency  string          `json:"currency"`
}

type Gateway interface {
	// Verify confirms that reference is a succeeded payment of amount.
	Verify(ctx context.Context, reference string, amount decimal.Decimal) (*Result, error)
}

type HTTPGateway struct {
	HTTP     *http.Client
	BaseURL  string
	APIKey   string
	Currency string
}

func NewHTTPGateway(baseURL, apiKey, currency string) *HTTPGateway {
	return &HTTPGateway{
		HTTP:     &http.Client{Timeout: 5 * time.Second},
		BaseURL:  strings.TrimRight(baseURL, "/"),
		APIKey:   apiKey,
		Currency: currency,
	}
}

func (g *HTTPGateway) Verify(ctx context.Context, reference string, amount decimal.Decimal) (*Result, error) {
	if strings.TrimSpace(reference) == "" {
		return nil, ErrInvalidReference
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodGet,
		fmt.Sprintf("%s/payments/%s", g.BaseURL, url.PathEscape(reference)), nil)
	if err != nil {
		return nil, err
	}
	req.Header.Set("Authorization", "Bearer "+g.APIKey)
	req.Header.Set("Accept", "application/json")

	res, err := g.HTTP.Do(req)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrGatewayFailure, err)
	}
	defer res.Body.Close()

	switch res.StatusCode {
	case http.StatusOK:
	case http.StatusNotFound:
		return nil, ErrUnknownPayment
	default:
		return nil, fmt.Errorf("%w: %s", ErrGatewayFailure, res.Status)
	}

	var out Result
	if err := json.NewDecoder(res.Body).Decode(&out); err != nil {
		return nil, fmt.Errorf("%w: decode: %v", ErrGatewayFailure, err)
	}
	if out.Provider == "" {
		out.Provider = "gateway"
	}
	if out.Reference == "" {
		out.Reference = reference
	}
	return check(&out, amount, g.Currency)
}

func check(r *Result, amount decimal.Decimal, currency string) (*Result, error) {
	if r.Status != "succeeded" {
		return nil, fmt.Errorf("%w: status %s", ErrDeclined, r.Status)
	}
	if !r.Amount.Equal(amount) {
		return nil, fmt.Errorf("%w: paid %s, due %s", ErrAmountMismatch, r.Amount.StringFixed(2), amount.StringFixed(2))
	}
	if currency != "" && r.Currency != "" && !strings.EqualFold(r.Currency, currency) {
		return nil, fmt.Errorf("%w: currency %s", ErrAmountMismatch, r.Currency)
	}
	return r, nil
}

// Sandbox approves every reference for the exact amount, except references
// starting with "fail", which are declined.
type Sandbox struct{}

func (Sandbox) Verify(_ context.Context, reference string, amount decimal.Decimal) (*Result, error) {
	if strings.TrimSpace(reference) == "" {
		return nil, ErrInvalidReference
	}
	status := "succeeded"
	if strings.HasPrefix(reference, "fail") {
		status = "declined"
	}
	return check(&Result{Provider: "sandbox", Reference: reference, Status: status, Amount: amount}, amount, "")
}
