// Package session keeps anonymous shopper state (cart owner id, the guest
// created at checkout) in a cookie-keyed record stored in the cache.
package session

import (
	"crypto/rand"
	"encoding/hex"
	"fmt"
	"net/http"
	"slices"
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/MikeMC777/plumbstore/internal/cache"
	"github.com/MikeMC777/plumbstore/internal/logx"
)

const ctxKey = "session"

type Options struct {
	CookieName string
	TTL        time.Duration
	Secure     bool
}

func DefaultOptions() Options {
	return Options{CookieName: "storefront_session", TTL: 30 * 24 * time.Hour}
}

// Data is what a session remembers between requests.
type Data struct {
	GuestUserID string   `json:"guest_user_id,omitempty"`
	LastOrderID string   `json:"last_order_id,omitempty"`
	AddressIDs  []string `json:"address_ids,omitempty"`
}

type Session struct {
	id      string
	Data    Data
	changed bool
	store   cache.Cache
	opts    Options
}

func (s *Session) ID() string { return s.id }

// SetGuest remembers the guest. Switching to another guest forgets the
// addresses added for the previous one.
func (s *Session) SetGuest(userID string) {
	if s.Data.GuestUserID != userID {
		s.Data.GuestUserID = userID
		s.Data.AddressIDs = nil
		s.changed = true
	}
}

// AddAddress remembers an address this session added for its guest.
func (s *Session) AddAddress(id string) {
	if slices.Contains(s.Data.AddressIDs, id) {
		return
	}
	s.Data.AddressIDs = append(s.Data.AddressIDs, id)
	s.changed = true
}

func (s *Session) SetLastOrder(orderID string) {
	if s.Data.LastOrderID != orderID {
		s.Data.LastOrderID = orderID
		s.changed = true
	}
}

// Reset forgets the remembered guest and order. The id is kept.
func (s *Session) Reset() {
	s.Data = Data{}
	s.changed = true
}

func key(id string) string { return "session:" + id }

func newID() (string, error) {
	b := make([]byte, 32)
	if _, err := rand.Read(b); err != nil {
		return "", err
	}
	return hex.EncodeToString(b), nil
}

// Save persists the session when it changed.
func (s *Session) Save(c *gin.Context) error {
	if !s.changed {
		return nil
	}
	if err := s.store.Set(c.Request.Context(), key(s.id), s.Data, s.opts.TTL); err != nil {
		return fmt.Errorf("session: save: %w", err)
	}
	s.changed = false
	return nil
}

// Middleware loads or starts the session. A new id is written to the cookie
// before the handler runs so the response headers are never already sent.
// Changes are saved after the handler returns.
func Middleware(store cache.Cache, opts Options) gin.HandlerFunc {
	return func(c *gin.Context) {
		s := &Session{store: store, opts: opts}
		ctx := c.Request.Context()

		if id, err := c.Cookie(opts.CookieName); err == nil && len(id) == 64 {
			s.id = id
			if _, err := store.Get(ctx, key(id), &s.Data); err != nil {
				logx.From(ctx).Warn("session load failed", zap.Error(err))
			}
		} else {
			id, err := newID()
			if err != nil {
				c.AbortWithStatus(http.StatusInternalServerError)
				return
			}
			s.id = id
			s.changed = true
		}
		c.SetSameSite(http.SameSiteLaxMode)
		c.SetCookie(opts.CookieName, s.id, int(opts.TTL.Seconds()), "/", "", opts.Secure, true)

		c.Set(ctxKey, s)
		c.Next()

		if err := s.Save(c); err != nil {
			logx.From(ctx).Warn("session save failed", zap.Error(err))
		}
	}
}

// From returns the request's session. It panics outside Middleware.
func From(c *gin.Context) *Session {
	return c.MustGet(ctxKey).(*Session)
}
