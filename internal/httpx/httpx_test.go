package httpx

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
	"golang.org/x/time/rate"

	"github.com/MikeMC777/plumbstore/internal/logx"
)

func newEngine(mw ...gin.HandlerFunc) *gin.Engine {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	r.Use(mw...)
	return r
}

func TestRequestID_EchoesAndGenerates(t *testing.T) {
	r := newEngine(RequestID(zap.NewNop()))
	var sawLogger bool
	r.GET("/x", func(c *gin.Context) {
		sawLogger = logx.From(c.Request.Context()) != nil
		c.Status(http.StatusNoContent)
	})

	req := httptest.NewRequest(http.MethodGet, "/x", nil)
	req.Header.Set("X-Request-ID", "abc")
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	if got := w.Header().Get("X-Request-ID"); got != "abc" {
		t.Fatalf("rid=%q", got)
	}
	if !sawLogger {
		t.Fatal("no logger in request context")
	}

	w = httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/x", nil))
	if w.Header().Get("X-Request-ID") == "" {
		t.Fatal("expected generated request id")
	}
}

func TestRecovery_WritesEnvelope(t *testing.T) {
	r := newEngine(RequestID(zap.NewNop()), Recovery())
	r.GET("/boom", func(c *gin.Context) { panic("kaboom") })

	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/boom", nil))
	if w.Code != http.StatusInternalServerError {
		t.Fatalf("status=%d body=%s", w.Code, w.Body.String())
	}
	var env Envelope
	if err := json.Unmarshal(w.Body.Bytes(), &env); err != nil {
		t.Fatal(err)
	}
	if env.Success || env.Message == "" {
		t.Fatalf("envelope=%+v", env)
	}
}

func TestRateLimit_PerIP(t *testing.T) {
	l := NewLimiter(rate.Every(time.Hour), 2, time.Minute)
	r := newEngine(RateLimit(l))
	r.POST("/login", func(c *gin.Context) { OK(c, http.StatusOK, nil) })

	do := func(ip string) int {
		req := httptest.NewRequest(http.MethodPost, "/login", nil)
		req.RemoteAddr = ip + ":1234"
		w := httptest.NewRecorder()
		r.ServeHTTP(w, req)
		return w.Code
	}
	for i := 0; i < 2; i++ {
		if code := do("10.0.0.1"); code != http.StatusOK {
			t.Fatalf("attempt %d status=%d", i, code)
		}
	}
	if code := do("10.0.0.1"); code != http.StatusTooManyRequests {
		t.Fatalf("expected 429, got %d", code)
	}
	if code := do("10.0.0.2"); code != http.StatusOK {
		t.Fatalf("otra IP no debe estar limitada: %d", code)
	}
}

func TestLimiter_SweepsIdle(t *testing.T) {
	now := time.Unix(0, 0)
	l := NewLimiter(rate.Every(time.Hour), 1, time.Minute)
	l.now = func() time.Time { return now }

	l.Allow("a")
	now = now.Add(2 * time.Minute)
	l.Allow("b")
	if _, ok := l.visitors["a"]; ok {
		t.Fatal("idle visitor should have been swept")
	}
}
