package payment

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/shopspring/decimal"
)

func fakeProvider(t *testing.T) *httptest.Server {
	t.Helper()
	mux := http.NewServeMux()
	mux.HandleFunc("/payments/", func(w http.ResponseWriter, r *http.Request) {
		if r.Header.Get("Authorization") != "Bearer key-1" {
			w.WriteHeader(http.StatusUnauthorized)
			return
		}
		w.Header().Set("Content-Type", "application/json")
		switch r.URL.Path {
		case "/payments/pay_ok":
			_, _ = w.Write([]byte(`{"provider":"acme","status":"succeeded","amount":"42.50","currency":"GBP"}`))
		case "/payments/pay_declined":
			_, _ = w.Write([]byte(`{"status":"declined","amount":"42.50"}`))
		case "/payments/pay_usd":
			_, _ = w.Write([]byte(`{"status":"succeeded","amount":"42.50","currency":"USD"}`))
		default:
			w.WriteHeader(http.StatusNotFound)
		}
	})
	srv := httptest.NewServer(mux)
	t.Cleanup(srv.Close)
	return srv
}

func TestHTTPGateway_Verify(t *testing.T) {
	srv := fakeProvider(t)
	g := NewHTTPGateway(srv.URL+"/", "key-1", "GBP")
	due := decimal.RequireFromString("42.5")

	res, err := g.Verify(context.Background(), "pay_ok", due)
	if err != nil {
		t.Fatalf("verify: %v", err)
	}
	if res.Provider != "acme" || res.Reference != "pay_ok" {
		t.Fatalf("result=%+v", res)
	}

	cases := []struct {
		ref    string
		amount string
		want   error
	}{
		{"pay_ok", "40.00", ErrAmountMismatch},
		{"pay_declined", "42.50", ErrDeclined},
		{"pay_usd", "42.50", ErrAmountMismatch},
		{"pay_missing", "42.50", ErrUnknownPayment},
		{"", "42.50", ErrInvalidReference},
	}
	for _, c := range cases {
		_, err := g.Verify(context.Background(), c.ref, decimal.RequireFromString(c.amount))
		if !errors.Is(err, c.want) {
			t.Errorf("ref=%q: esperaba %v, obtuve %v", c.ref, c.want, err)
		}
	}
}

func TestHTTPGateway_Unauthorized(t *testing.T) {
	srv := fakeProvider(t)
	g := NewHTTPGateway(srv.URL, "wrong", "GBP")
	_, err := g.Verify(context.Background(), "pay_ok", decimal.RequireFromString("42.50"))
	if !errors.Is(err, ErrGatewayFailure) {
		t.Fatalf("err=%v", err)
	}
}

func TestSandbox(t *testing.T) {
	amt := decimal.RequireFromString("10.00")
	if _, err := (Sandbox{}).Verify(context.Background(), "sbx_123", amt); err != nil {
		t.Fatalf("sandbox ok: %v", err)
	}
	if _, err := (Sandbox{}).Verify(context.Background(), "fail_card", amt); !errors.Is(err, ErrDeclined) {
		t.Fatalf("sandbox fail: %v", err)
	}
}
