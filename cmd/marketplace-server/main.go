// Package main is the entry point for the marketplace API server.
package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/rs/zerolog"
	"github.com/spf13/cobra"

	"github.com/prn-tf/marketplace/internal/auth"
	"github.com/prn-tf/marketplace/internal/cache/memory"
	"github.com/prn-tf/marketplace/internal/cache/redis"
	"github.com/prn-tf/marketplace/internal/config"
	"github.com/prn-tf/marketplace/internal/handler"
	"github.com/prn-tf/marketplace/internal/lock"
	"github.com/prn-tf/marketplace/internal/logging"
	"github.com/prn-tf/marketplace/internal/metrics"
	"github.com/prn-tf/marketplace/internal/migrate"
	"github.com/prn-tf/marketplace/internal/repository"
	"github.com/prn-tf/marketplace/internal/repository/factory"
	"github.com/prn-tf/marketplace/internal/service"
)

// Version information (set at build time)
var (
	Version   = "dev"
	BuildTime = "unknown"
	GitCommit = "unknown"
)

func main() {
	var configPath string

	cmd := &cobra.Command{
		Use:           "marketplace-server",
		Short:         "Run the marketplace HTTP API",
		Version:       fmt.Sprintf("%s (built %s, commit %s)", Version, BuildTime, GitCommit),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, _ []string) error {
			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
			defer stop()
			return run(ctx, configPath)
		},
	}
	cmd.Flags().StringVarP(&configPath, "config", "c", "", "path to the configuration file")

	if err := cmd.ExecuteContext(context.Background()); err != nil {
		fmt.Fprintf(os.Stderr, "marketplace-server: %v\n", err)
		os.Exit(1)
	}
}

func run(ctx context.Context, configPath string) error {
	if err := config.LoadEnvFiles(); err != nil {
		return err
	}
	cfg, err := config.Load(configPath)
	if err != nil {
		return err
	}

	logger := logging.New(cfg.Logging)
	migrate.SetLogger(logger)

	logger.Info().
		Str("version", Version).
		Str("build_time", BuildTime).
		Str("git_commit", GitCommit).
		Str("driver", cfg.Database.Driver).
		Msg("starting marketplace server")

	db, err := factory.NewFactory(cfg.Database, logger).Create(ctx)
	if err != nil {
		return fmt.Errorf("failed to open database: %w", err)
	}
	defer func() {
		if err := db.Database.Close(); err != nil {
			logger.Error().Err(err).Msg("failed to close database")
		}
	}()

	cache, locker, closeCache, err := newCache(ctx, cfg, logger)
	if err != nil {
		return err
	}
	defer closeCache()

	var m *metrics.Metrics
	if cfg.Metrics.Enabled {
		if m, err = metrics.New(nil); err != nil {
			return fmt.Errorf("failed to register metrics: %w", err)
		}
	}

	repos := db.Repos
	authn := auth.NewAuthenticator(repos.Tokens, repos.Accounts, cache, auth.Config{
		TokenTTL: cfg.Auth.TokenTTL,
		CacheTTL: cfg.Auth.TokenCacheTTL,
	}, logger)

	authService := service.NewAuthService(repos.Accounts, repos.Tokens, authn, cfg.Auth.TokenTTL, logger).
		WithLocker(locker)

	router := handler.NewRouter(handler.RouterConfig{
		AccountService: service.NewAccountService(repos.Accounts, cfg.Auth.BcryptCost, logger),
		ProductService: service.NewProductService(repos.Products, repos.Accounts, logger),
		AuthService:    authService,
		Authenticator:  authn,
		Metrics:        m,
		MetricsPath:    cfg.Metrics.Path,
		Health:         db.Database,
		MaxBodySize:    cfg.Server.MaxBodySize,
		PageSize:       cfg.Pagination.PageSize,
		Logger:         logger,
	})

	srv := &http.Server{
		Addr:         cfg.Server.Addr(),
		Handler:      router.Handler(),
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
		IdleTimeout:  cfg.Server.IdleTimeout,
	}

	errCh := make(chan error, 1)
	go func() {
		logger.Info().Str("addr", srv.Addr).Msg("listening")
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err := <-errCh:
		if err != nil {
			return fmt.Errorf("server failed: %w", err)
		}
		return nil
	case <-ctx.Done():
	}

	logger.Info().Msg("shutting down server")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.Server.ShutdownTimeout)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("graceful shutdown failed: %w", err)
	}
	logger.Info().Msg("server stopped")
	return nil
}

// newCache returns the shared Redis cache and lock when enabled and
// process-local ones otherwise.
func newCache(ctx context.Context, cfg *config.Config, logger zerolog.Logger) (repository.Cache, lock.Locker, func(), error) {
	if cfg.Redis.Enabled {
		c, err := redis.New(ctx, redis.Config{
			Addr:      cfg.Redis.Addr(),
			Password:  cfg.Redis.Password,
			DB:        cfg.Redis.DB,
			KeyPrefix: cfg.Redis.KeyPrefix,
		}, logger)
		if err != nil {
			return nil, nil, nil, err
		}
		return c, lock.NewRedisLocker(c.Client(), cfg.Redis.KeyPrefix), func() { _ = c.Close() }, nil
	}

	c := memory.NewCache(0)
	return c, lock.NewMemoryLocker(), c.Stop, nil
}
