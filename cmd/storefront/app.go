package main

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.uber.org/zap"
	"golang.org/x/time/rate"

	"github.com/MikeMC777/plumbstore/internal/auth"
	"github.com/MikeMC777/plumbstore/internal/cache"
	"github.com/MikeMC777/plumbstore/internal/cart"
	"github.com/MikeMC777/plumbstore/internal/category"
	"github.com/MikeMC777/plumbstore/internal/checkout"
	"github.com/MikeMC777/plumbstore/internal/config"
	"github.com/MikeMC777/plumbstore/internal/db"
	"github.com/MikeMC777/plumbstore/internal/events"
	"github.com/MikeMC777/plumbstore/internal/httpx"
	"github.com/MikeMC777/plumbstore/internal/media"
	"github.com/MikeMC777/plumbstore/internal/memstore"
	"github.com/MikeMC777/plumbstore/internal/order"
	"github.com/MikeMC777/plumbstore/internal/payment"
	"github.com/MikeMC777/plumbstore/internal/product"
	"github.com/MikeMC777/plumbstore/internal/seed"
	"github.com/MikeMC777/plumbstore/internal/session"
	"github.com/MikeMC777/plumbstore/internal/user"
)

type productStore interface {
	product.Repository
	product.Stock
}

// backend is the set of repositories behind one storage driver.
type backend struct {
	tx         db.TxRunner
	categories category.Repository
	products   productStore
	users      user.Repository
	carts      cart.Repository
	orders     order.Repository
	ping       func(ctx context.Context) error
}

func postgresBackend(pool *db.Pool) backend {
	p := product.NewPGRepo(pool)
	return backend{
		tx:         pool,
		categories: category.NewPGRepo(pool),
		products:   p,
		users:      user.NewPGRepo(pool),
		carts:      cart.NewPGRepo(pool),
		orders:     order.NewPGRepo(pool),
		ping:       pool.Ping,
	}
}

func memoryBackend(s *memstore.Store) backend {
	return backend{
		tx:         s,
		categories: s.Categories(),
		products:   s.Products(),
		users:      s.Users(),
		carts:      s.Carts(),
		orders:     s.Orders(),
		ping:       func(context.Context) error { return nil },
	}
}

type app struct {
	cfg      config.Config
	log      *zap.Logger
	back     backend
	cache    cache.Cache
	issuer   *auth.Issuer
	sessions session.Options
	limiter  *httpx.Limiter

	categories *category.Service
	products   *product.Service
	carts      *cart.Service
	users      *user.Service
	orders     *order.Service
	checkout   *checkout.Service
}

func newApp(cfg config.Config, log *zap.Logger, b backend, c cache.Cache, m media.Resolver,
	pub events.Publisher, gw payment.Gateway) *app {
	orders := order.NewService(b.tx, b.orders, b.products, pub)
	carts := cart.NewService(b.tx, b.carts, b.products, orders, m)
	users := user.NewService(b.tx, b.users)

	sess := session.DefaultOptions()
	sess.TTL = cfg.SessionTTL
	sess.Secure = cfg.CookieSecure

	return &app{
		cfg:        cfg,
		log:        log,
		back:       b,
		cache:      c,
		issuer:     auth.NewIssuer(cfg.JWTSecret, cfg.TokenTTL),
		sessions:   sess,
		limiter:    httpx.NewLimiter(rate.Limit(cfg.RateLimitRPS), cfg.RateLimitBurst, 10*time.Minute),
		categories: category.NewService(b.categories, c, cfg.CategoryCacheTTL, m),
		products:   product.NewService(b.products, m),
		carts:      carts,
		users:      users,
		orders:     orders,
		checkout: checkout.NewService(b.tx, carts, users, orders, b.products, gw, c, checkout.Config{
			DeliveryFee:           cfg.DeliveryFee,
			FreeDeliveryThreshold: cfg.FreeDeliveryThreshold,
		}),
	}
}

// buildApp connects the configured infrastructure. The returned cleanup
// closes everything that was opened.
func buildApp(ctx context.Context, cfg config.Config, log *zap.Logger) (*app, func(), error) {
	var closers []func()
	cleanup := func() {
		for i := len(closers) - 1; i >= 0; i-- {
			closers[i]()
		}
	}

	var (
		b backend
		c cache.Cache
	)
	switch cfg.Store {
	case "memory":
		s := memstore.New()
		if _, err := seed.Run(ctx, s, s.Categories(), s.Products()); err != nil {
			return nil, cleanup, fmt.Errorf("seed memory store: %w", err)
		}
		b, c = memoryBackend(s), cache.NewMemory()
		log.Warn("using in-memory store; data is lost on exit")
	case "postgres", "":
		pool, err := db.Connect(ctx, cfg.PostgresDSN)
		if err != nil {
			return nil, cleanup, err
		}
		closers = append(closers, pool.Close)
		rdb, err := cache.Connect(ctx, cfg.RedisAddr, cfg.RedisPassword)
		if err != nil {
			cleanup()
			return nil, func() {}, err
		}
		closers = append(closers, func() { _ = rdb.Close() })
		b, c = postgresBackend(pool), cache.NewRedis(rdb, "storefront:")
	default:
		return nil, cleanup, fmt.Errorf("unknown STORE %q (want postgres or memory)", cfg.Store)
	}

	var m media.Resolver = media.Public{BaseURL: cfg.MediaBaseURL}
	if cfg.S3Bucket != "" {
		s3m, err := media.NewS3(ctx, media.S3Options{
			Bucket: cfg.S3Bucket, Region: cfg.S3Region, Endpoint: cfg.S3Endpoint,
			Key: cfg.S3Key, Secret: cfg.S3Secret,
		})
		if err != nil {
			cleanup()
			return nil, func() {}, err
		}
		m = s3m
	}

	var pub events.Publisher = events.Nop{}
	if len(cfg.KafkaBrokers) > 0 {
		k := events.NewKafka(cfg.KafkaBrokers, cfg.KafkaTopic)
		closers = append(closers, func() {
			if err := k.Close(); err != nil {
				log.Warn("kafka close", zap.Error(err))
			}
		})
		pub = k
	} else {
		log.Info("KAFKA_BROKERS not set; order events are not published")
	}

	var gw payment.Gateway = payment.Sandbox{}
	if cfg.PaymentBaseURL != "" {
		gw = payment.NewHTTPGateway(cfg.PaymentBaseURL, cfg.PaymentAPIKey, cfg.Currency)
	} else if cfg.Production() {
		cleanup()
		return nil, func() {}, errors.New("PAYMENT_BASEURL is required in production")
	} else {
		log.Warn("PAYMENT_BASEURL not set; using sandbox payments")
	}

	return newApp(cfg, log, b, c, m, pub, gw), cleanup, nil
}
