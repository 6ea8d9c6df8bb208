// Command storefront serves the plumbing and heating storefront API.
//
//	@title       Plumbstore Storefront API
//	@version     1.0
//	@description Catalogue, cart, checkout and order endpoints for the plumbing and heating storefront.
//	@BasePath    /api
package main

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
	"google.golang.org/grpc"
	"google.golang.org/grpc/health"
	healthpb "google.golang.org/grpc/health/grpc_health_v1"

	"github.com/MikeMC777/plumbstore/internal/cache"
	"github.com/MikeMC777/plumbstore/internal/category"
	"github.com/MikeMC777/plumbstore/internal/config"
	"github.com/MikeMC777/plumbstore/internal/db"
	"github.com/MikeMC777/plumbstore/internal/logx"
	"github.com/MikeMC777/plumbstore/internal/product"
	"github.com/MikeMC777/plumbstore/internal/seed"
)

func main() {
	if err := rootCmd().Execute(); err != nil {
		os.Exit(1)
	}
}

func rootCmd() *cobra.Command {
	root := &cobra.Command{
		Use:          "storefront",
		Short:        "Plumbing and heating storefront API",
		SilenceUsage: true,
	}
	root.AddCommand(serveCmd(), migrateCmd(), seedCmd())
	return root
}

// setup loads config and builds the process logger, also installed as the
// zap global so code without a request context still logs.
func setup() (config.Config, *zap.Logger, error) {
	cfg := config.Load()
	log, err := logx.New(cfg.Production(), cfg.LogLevel)
	if err != nil {
		return cfg, nil, err
	}
	zap.ReplaceGlobals(log)
	return cfg, log, nil
}

func serveCmd() *cobra.Command {
	var store string
	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Run the HTTP API and the gRPC health service",
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg, log, err := setup()
			if err != nil {
				return err
			}
			defer func() { _ = log.Sync() }()
			if store != "" {
				cfg.Store = store
			}
			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
			defer stop()
			return serve(ctx, cfg, log)
		},
	}
	cmd.Flags().StringVar(&store, "store", "", "storage driver: postgres or memory (overrides STORE)")
	return cmd
}

func serve(ctx context.Context, cfg config.Config, log *zap.Logger) error {
	if cfg.Production() {
		gin.SetMode(gin.ReleaseMode)
	}
	a, cleanup, err := buildApp(ctx, cfg, log)
	if err != nil {
		return err
	}
	defer cleanup()

	srv := &http.Server{
		Addr:              cfg.HTTPAddr,
		Handler:           a.router(),
		ReadHeaderTimeout: 5 * time.Second,
	}

	hs := health.NewServer()
	gs := grpc.NewServer()
	healthpb.RegisterHealthServer(gs, hs)
	lis, err := net.Listen("tcp", cfg.GRPCAddr)
	if err != nil {
		return fmt.Errorf("grpc listen: %w", err)
	}

	errc := make(chan error, 2)
	go func() {
		log.Info("storefront listening", zap.String("addr", cfg.HTTPAddr), zap.String("store", cfg.Store))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errc <- err
		}
	}()
	go func() {
		log.Info("grpc health listening", zap.String("addr", cfg.GRPCAddr))
		if err := gs.Serve(lis); err != nil {
			errc <- err
		}
	}()
	go watchHealth(ctx, a.back, hs, log)

	select {
	case <-ctx.Done():
	case err := <-errc:
		log.Error("server failed", zap.Error(err))
	}

	log.Info("shutting down")
	hs.Shutdown()
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	gs.GracefulStop()
	return srv.Shutdown(shutdownCtx)
}

// watchHealth reports SERVING while the store answers pings.
func watchHealth(ctx context.Context, b backend, hs *health.Server, log *zap.Logger) {
	t := time.NewTicker(15 * time.Second)
	defer t.Stop()
	last := healthpb.HealthCheckResponse_UNKNOWN
	for {
		st := healthpb.HealthCheckResponse_SERVING
		pctx, cancel := context.WithTimeout(ctx, 2*time.Second)
		if err := b.ping(pctx); err != nil {
			st = healthpb.HealthCheckResponse_NOT_SERVING
		}
		cancel()
		if st != last {
			log.Info("health", zap.String("status", st.String()))
			hs.SetServingStatus("", st)
			last = st
		}
		select {
		case <-ctx.Done():
			return
		case <-t.C:
		}
	}
}

func migrateCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "migrate",
		Short: "Apply pending database migrations",
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg, log, err := setup()
			if err != nil {
				return err
			}
			defer func() { _ = log.Sync() }()

			pool, err := db.Connect(cmd.Context(), cfg.PostgresDSN)
			if err != nil {
				return err
			}
			defer pool.Close()

			applied, err := pool.Migrate(cmd.Context())
			if err != nil {
				return err
			}
			log.Info("migrations applied", zap.Strings("files", applied))
			return nil
		},
	}
}

func seedCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "seed",
		Short: "Load the sample catalogue into the database",
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg, log, err := setup()
			if err != nil {
				return err
			}
			defer func() { _ = log.Sync() }()

			pool, err := db.Connect(cmd.Context(), cfg.PostgresDSN)
			if err != nil {
				return err
			}
			defer pool.Close()

			ctx := logx.Into(cmd.Context(), log)
			_, err = seed.Run(ctx, pool, category.NewPGRepo(pool), product.NewPGRepo(pool))
			if errors.Is(err, seed.ErrAlreadySeeded) {
				log.Info("catalogue already present, nothing to do")
				return nil
			}
			if err != nil {
				return err
			}

			// cached navigation trees would hide the new categories until they expire
			rdb, err := cache.Connect(ctx, cfg.RedisAddr, cfg.RedisPassword)
			if err != nil {
				log.Warn("category cache not invalidated", zap.Error(err))
				return nil
			}
			defer rdb.Close()
			svc := category.NewService(category.NewPGRepo(pool), cache.NewRedis(rdb, "storefront:"), cfg.CategoryCacheTTL, nil)
			return svc.Invalidate(ctx)
		},
	}
}
