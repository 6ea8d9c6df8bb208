package session

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/MikeMC777/plumbstore/internal/cache"
)

func TestMiddleware_IssuesAndRestores(t *testing.T) {
	gin.SetMode(gin.TestMode)
	store := cache.NewMemory()
	opts := Options{CookieName: "sid", TTL: time.Hour}

	r := gin.New()
	r.Use(Middleware(store, opts))
	r.POST("/guest", func(c *gin.Context) {
		From(c).SetGuest("g-1")
		c.String(http.StatusOK, From(c).ID())
	})
	r.GET("/guest", func(c *gin.Context) {
		c.String(http.StatusOK, From(c).Data.GuestUserID)
	})

	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodPost, "/guest", nil))
	require.Equal(t, http.StatusOK, w.Code)
	cookies := w.Result().Cookies()
	require.Len(t, cookies, 1)
	assert.Equal(t, "sid", cookies[0].Name)
	assert.Equal(t, w.Body.String(), cookies[0].Value)
	assert.True(t, cookies[0].HttpOnly)

	req := httptest.NewRequest(http.MethodGet, "/guest", nil)
	req.AddCookie(cookies[0])
	w = httptest.NewRecorder()
	r.ServeHTTP(w, req)
	assert.Equal(t, "g-1", w.Body.String())
}

func TestMiddleware_IgnoresMalformedCookie(t *testing.T) {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	r.Use(Middleware(cache.NewMemory(), Options{CookieName: "sid", TTL: time.Hour}))
	r.GET("/", func(c *gin.Context) { c.String(http.StatusOK, From(c).ID()) })

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.AddCookie(&http.Cookie{Name: "sid", Value: "short"})
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	assert.Len(t, w.Body.String(), 64)
	assert.NotEqual(t, "short", w.Body.String())
}

func TestSession_GuestSwitchForgetsAddresses(t *testing.T) {
	s := &Session{}
	s.SetGuest("g-1")
	s.AddAddress("a-1")
	s.AddAddress("a-1")
	assert.Equal(t, []string{"a-1"}, s.Data.AddressIDs)

	s.SetGuest("g-1")
	assert.Equal(t, []string{"a-1"}, s.Data.AddressIDs)

	s.SetGuest("g-2")
	assert.Empty(t, s.Data.AddressIDs)
	assert.True(t, s.changed)
}
