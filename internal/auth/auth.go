// Package auth issues and verifies the storefront's signed login tokens and
// exposes gin middleware that identifies the customer.
package auth

import (
	"errors"
	"net/http"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/golang-jwt/jwt/v5"

	"github.com/MikeMC777/plumbstore/internal/httpx"
)

const (
	CookieName = "storefront_token"
	userIDKey  = "auth.user_id"
	roleKey    = "auth.role"
)

var ErrInvalidToken = errors.New("invalid token")

// Claims holds the typed JWT payload.
type Claims struct {
	UserID string `json:"uid"`
	Role   string `json:"role"`
	jwt.RegisteredClaims
}

type Issuer struct {
	secret []byte
	ttl    time.Duration
	now    func() time.Time
}

func NewIssuer(secret string, ttl time.Duration) *Issuer {
	return &Issuer{secret: []byte(secret), ttl: ttl, now: time.Now}
}

func (i *Issuer) TTL() time.Duration { return i.ttl }

func (i *Issuer) Issue(userID, role string) (string, error) {
	now := i.now()
	claims := Claims{
		UserID: userID,
		Role:   role,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   userID,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(i.ttl)),
		},
	}
	return jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(i.secret)
}

func (i *Issuer) Parse(token string) (*Claims, error) {
	tok, err := jwt.ParseWithClaims(token, &Claims{}, func(t *jwt.Token) (any, error) {
		return i.secret, nil
	}, jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}), jwt.WithTimeFunc(i.now))
	if err != nil {
		return nil, errors.Join(ErrInvalidToken, err)
	}
	claims, ok := tok.Claims.(*Claims)
	if !ok || !tok.Valid || claims.UserID == "" {
		return nil, ErrInvalidToken
	}
	return claims, nil
}

func tokenFrom(c *gin.Context) string {
	if h := c.GetHeader("Authorization"); strings.HasPrefix(h, "Bearer ") {
		return strings.TrimSpace(strings.TrimPrefix(h, "Bearer "))
	}
	if v, err := c.Cookie(CookieName); err == nil {
		return v
	}
	return ""
}

// Middleware identifies the customer from a Bearer header or the login
// cookie. Requests without a valid token continue anonymously.
func Middleware(i *Issuer) gin.HandlerFunc {
	return func(c *gin.Context) {
		if raw := tokenFrom(c); raw != "" {
			if claims, err := i.Parse(raw); err == nil {
				c.Set(userIDKey, claims.UserID)
				c.Set(roleKey, claims.Role)
			}
		}
		c.Next()
	}
}

// Require rejects anonymous requests with 401.
func Require() gin.HandlerFunc {
	return func(c *gin.Context) {
		if UserID(c) == "" {
			httpx.Fail(c, http.StatusUnauthorized, "login required")
			return
		}
		c.Next()
	}
}

// UserID returns the authenticated user id, or "".
func UserID(c *gin.Context) string { return c.GetString(userIDKey) }

// SetCookie writes the login cookie for token.
func (i *Issuer) SetCookie(c *gin.Context, token string, secure bool) {
	c.SetSameSite(http.SameSiteLaxMode)
	c.SetCookie(CookieName, token, int(i.ttl.Seconds()), "/", "", secure, true)
}

func ClearCookie(c *gin.Context, secure bool) {
	c.SetSameSite(http.SameSiteLaxMode)
	c.SetCookie(CookieName, "", -1, "/", "", secure, true)
}
