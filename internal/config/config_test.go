package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestLoad_Defaults(t *testing.T) {
	t.Setenv("APP_ENV", "")
	t.Setenv("HTTP_ADDR", "")
	t.Setenv("DELIVERY_FEE", "")
	t.Setenv("KAFKA_BROKERS", "")
	t.Setenv("STORE", "")
	t.Setenv("RATE_LIMIT_BURST", "")

	cfg := Load()
	assert.Equal(t, ":8080", cfg.HTTPAddr)
	assert.Equal(t, "5.95", cfg.DeliveryFee.StringFixed(2))
	assert.Empty(t, cfg.KafkaBrokers)
	assert.Equal(t, "postgres", cfg.Store)
	assert.Equal(t, 5, cfg.RateLimitBurst)
	assert.False(t, cfg.Production())
}

func TestLoad_Overrides(t *testing.T) {
	t.Setenv("APP_ENV", "production")
	t.Setenv("DELIVERY_FEE", "3.50")
	t.Setenv("KAFKA_BROKERS", "k1:9092, k2:9092,")
	t.Setenv("SESSION_TTL", "2h")
	t.Setenv("COOKIE_SECURE", "true")
	t.Setenv("STORE", "memory")
	t.Setenv("RATE_LIMIT_RPS", "0.5")

	cfg := Load()
	assert.True(t, cfg.Production())
	assert.Equal(t, "3.50", cfg.DeliveryFee.StringFixed(2))
	assert.Equal(t, []string{"k1:9092", "k2:9092"}, cfg.KafkaBrokers)
	assert.Equal(t, 2*time.Hour, cfg.SessionTTL)
	assert.True(t, cfg.CookieSecure)
	assert.Equal(t, "memory", cfg.Store)
	assert.Equal(t, 0.5, cfg.RateLimitRPS)
}

func TestLoad_BadValuesFallBack(t *testing.T) {
	t.Setenv("SESSION_TTL", "soon")
	t.Setenv("FREE_DELIVERY_THRESHOLD", "lots")

	cfg := Load()
	assert.Equal(t, 30*24*time.Hour, cfg.SessionTTL)
	assert.Equal(t, "75.00", cfg.FreeDeliveryThreshold.StringFixed(2))
}
