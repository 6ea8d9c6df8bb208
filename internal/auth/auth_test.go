package auth

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestIssuer_RoundTrip(t *testing.T) {
	i := NewIssuer("s3cret", time.Hour)
	tok, err := i.Issue("u-1", "authenticated")
	require.NoError(t, err)

	claims, err := i.Parse(tok)
	require.NoError(t, err)
	assert.Equal(t, "u-1", claims.UserID)
	assert.Equal(t, "authenticated", claims.Role)
}

func TestIssuer_RejectsExpiredAndForeign(t *testing.T) {
	i := NewIssuer("s3cret", time.Minute)
	tok, err := i.Issue("u-1", "authenticated")
	require.NoError(t, err)

	i.now = func() time.Time { return time.Now().Add(time.Hour) }
	_, err = i.Parse(tok)
	assert.ErrorIs(t, err, ErrInvalidToken)

	other := NewIssuer("different", time.Hour)
	foreign, err := other.Issue("u-2", "authenticated")
	require.NoError(t, err)
	_, err = NewIssuer("s3cret", time.Hour).Parse(foreign)
	assert.ErrorIs(t, err, ErrInvalidToken)
}

func TestMiddleware_BearerAndCookie(t *testing.T) {
	gin.SetMode(gin.TestMode)
	i := NewIssuer("s3cret", time.Hour)
	tok, err := i.Issue("u-9", "authenticated")
	require.NoError(t, err)

	r := gin.New()
	r.Use(Middleware(i))
	r.GET("/me", func(c *gin.Context) { c.String(http.StatusOK, UserID(c)) })
	r.GET("/private", Require(), func(c *gin.Context) { c.Status(http.StatusNoContent) })

	req := httptest.NewRequest(http.MethodGet, "/me", nil)
	req.Header.Set("Authorization", "Bearer "+tok)
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	assert.Equal(t, "u-9", w.Body.String())

	req = httptest.NewRequest(http.MethodGet, "/me", nil)
	req.AddCookie(&http.Cookie{Name: CookieName, Value: tok})
	w = httptest.NewRecorder()
	r.ServeHTTP(w, req)
	assert.Equal(t, "u-9", w.Body.String())

	req = httptest.NewRequest(http.MethodGet, "/me", nil)
	req.Header.Set("Authorization", "Bearer garbage")
	w = httptest.NewRecorder()
	r.ServeHTTP(w, req)
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Empty(t, w.Body.String())

	w = httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/private", nil))
	assert.Equal(t, http.StatusUnauthorized, w.Code)
	assert.Contains(t, w.Body.String(), `"success":false`)
}
