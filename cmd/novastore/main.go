package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	adapthttp "novastore/internal/adapter/http"
	"novastore/internal/adapter/memory"
	"novastore/internal/adapter/postgres"
	"novastore/internal/adapter/redis"
	"novastore/internal/app"
	"novastore/internal/config"
	"novastore/internal/domain"
	"novastore/internal/ratelimit"
	"novastore/internal/seed"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

func main() {
	configPath := flag.String("config", os.Getenv("NOVASTORE_CONFIG"), "path to YAML config file")
	flag.Parse()

	cfg, err := config.Load(*configPath)
	if err != nil {
		log.Fatal(err)
	}

	logger, err := newLogger(cfg.LogLevel)
	if err != nil {
		log.Fatalf("logger: %v", err)
	}

	os.Exit(exitCode(logger, run(cfg, logger)))
}

// exitCode logs a fatal run error and flushes the logger before the process
// exits; os.Exit skips deferred calls.
func exitCode(logger *zap.Logger, err error) int {
	code := 0
	if err != nil {
		logger.Error("server stopped", zap.Error(err))
		code = 1
	}
	_ = logger.Sync()
	return code
}

func run(cfg config.Config, logger *zap.Logger) error {
	var closers []io.Closer
	defer func() {
		for i := len(closers) - 1; i >= 0; i-- {
			_ = closers[i].Close()
		}
	}()

	store, viewers, err := openStorage(cfg, &closers)
	if err != nil {
		return err
	}

	seeds := seed.Embedded()
	if cfg.SeedDir != "" {
		if seeds, err = seed.Dir(cfg.SeedDir); err != nil {
			return err
		}
	}

	authSvc, err := app.NewAuthService(viewers, app.AdminCredentials{Email: cfg.AdminEmail, Password: cfg.AdminPassword}, cfg.SessionSecret)
	if err != nil {
		return err
	}
	sessions, err := app.NewSessionCodec(cfg.SessionSecret)
	if err != nil {
		return err
	}

	opts := adapthttp.Options{
		WebDir:        cfg.WebDir,
		SecureCookies: cfg.SecureCookies,
		Defaults: domain.Preferences{
			Theme:    domain.Theme(cfg.DefaultTheme),
			Language: domain.Language(cfg.DefaultLanguage),
		},
		Logger: logger,
	}

	if cfg.ViewerStore == config.ViewerStoreCookie {
		if opts.ViewerCookies, err = adapthttp.NewViewerCookieStore(cfg.SessionSecret); err != nil {
			return err
		}
	}

	if cfg.LoginRateLimitPerMinute > 0 {
		l, err := ratelimit.NewRedisFixedWindowLimiter(cfg.RedisAddr, cfg.RedisPassword, "novastore:ratelimit:login", cfg.LoginRateLimitPerMinute, time.Minute)
		if err != nil {
			return fmt.Errorf("login limiter: %w", err)
		}
		closers = append(closers, l)
		opts.LoginLimiter = l
	}
	if cfg.SignupRateLimitPerMinute > 0 {
		l, err := ratelimit.NewRedisFixedWindowLimiter(cfg.RedisAddr, cfg.RedisPassword, "novastore:ratelimit:signup", cfg.SignupRateLimitPerMinute, time.Minute)
		if err != nil {
			return fmt.Errorf("signup limiter: %w", err)
		}
		closers = append(closers, l)
		opts.SignupLimiter = l
	}

	if cfg.SSOEnabled() {
		ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		opts.OIDC, err = adapthttp.NewOIDCConfig(ctx, cfg.OIDCIssuer, cfg.OIDCClientID, cfg.OIDCClientSecret, cfg.OIDCRedirectURL)
		cancel()
		if err != nil {
			return fmt.Errorf("oidc: %w", err)
		}
		logger.Info("sso enabled", zap.String("issuer", cfg.OIDCIssuer))
	}

	h := adapthttp.New(
		authSvc,
		sessions,
		app.NewCatalogService(store, seeds, logger),
		app.NewCategoryService(store, seeds, logger),
		app.NewProfileService(store),
		opts,
	).Handler()

	srv := &http.Server{
		Addr:              cfg.Addr,
		Handler:           h,
		ReadHeaderTimeout: 10 * time.Second,
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	errCh := make(chan error, 1)
	go func() {
		logger.Info("listening",
			zap.String("addr", cfg.Addr),
			zap.String("storage", cfg.Storage),
			zap.String("viewerStore", cfg.ViewerStore),
		)
		errCh <- srv.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	case <-ctx.Done():
	}

	logger.Info("shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	return srv.Shutdown(shutdownCtx)
}

// openStorage returns the collection store and the viewer repository for the
// configured backend.
func openStorage(cfg config.Config, closers *[]io.Closer) (domain.CollectionStore, domain.ViewerRepository, error) {
	switch cfg.Storage {
	case config.StoragePostgres:
		db, err := postgres.Open(cfg.DatabaseURL)
		if err != nil {
			return nil, nil, fmt.Errorf("db open: %w", err)
		}
		*closers = append(*closers, db)
		return db, postgres.NewViewerRepo(db), nil

	case config.StorageRedis:
		rs, err := redis.Open(cfg.RedisAddr, cfg.RedisPassword, "novastore")
		if err != nil {
			return nil, nil, fmt.Errorf("redis open: %w", err)
		}
		*closers = append(*closers, rs)
		return rs, rs.NewViewerRepo(), nil

	default:
		db := memory.New()
		return db, db.NewViewerRepo(), nil
	}
}

func newLogger(level string) (*zap.Logger, error) {
	lvl, err := zapcore.ParseLevel(level)
	if err != nil {
		return nil, err
	}
	zc := zap.NewProductionConfig()
	zc.Level = zap.NewAtomicLevelAt(lvl)
	return zc.Build()
}
