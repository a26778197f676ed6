package main

import (
	"context"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	docbookrepo "github.com/personal-report/organizer-api/internal/adapters/docstore/bookrepo"
	docpersonrepo "github.com/personal-report/organizer-api/internal/adapters/docstore/personrepo"
	"github.com/personal-report/organizer-api/internal/adapters/httpapi"
	memdocstore "github.com/personal-report/organizer-api/internal/adapters/memory/docstore"
	memsessions "github.com/personal-report/organizer-api/internal/adapters/memory/sessionstore"
	"github.com/personal-report/organizer-api/internal/adapters/postgres"
	pgdocstore "github.com/personal-report/organizer-api/internal/adapters/postgres/docstore"
	redissessions "github.com/personal-report/organizer-api/internal/adapters/redis/sessionstore"
	sqlitedocstore "github.com/personal-report/organizer-api/internal/adapters/sqlite/docstore"
	"github.com/personal-report/organizer-api/internal/app/books"
	"github.com/personal-report/organizer-api/internal/app/targets"
	"github.com/personal-report/organizer-api/internal/platform/auth/tokens"
	platformclock "github.com/personal-report/organizer-api/internal/platform/clock"
	"github.com/personal-report/organizer-api/internal/platform/config"
	"github.com/personal-report/organizer-api/internal/platform/logging"
	docstoreport "github.com/personal-report/organizer-api/internal/ports/out/docstore"
	sessionstoreport "github.com/personal-report/organizer-api/internal/ports/out/sessionstore"
)

func main() {
	logging.Setup()
	cfg := config.Load()

	// Auth configuration:
	// - Production: AUTH_MODE=jwt with a JWT_SECRET, bearer tokens resolved
	//   by the middleware (auth stays optional per request)
	// - Local dev: AUTH_MODE=dev, subject via X-Debug-Subject
	var authMW func(http.Handler) http.Handler
	switch cfg.AuthMode {
	case "dev":
		authMW = httpapi.NewDevAuthMiddleware(cfg.DevSubject)
	default:
		if cfg.JWTSecret == "" {
			slog.Error("JWT_SECRET is required when AUTH_MODE=jwt")
			os.Exit(1)
		}
		authMW = httpapi.NewAuthMiddleware(tokens.NewManager(cfg.JWTSecret, cfg.TokenTTL))
	}

	var (
		store   docstoreport.Store
		cleanup []func()
	)
	switch cfg.StorageBackend {
	case "postgres":
		pool, err := postgres.NewPool(context.Background(), cfg.DatabaseURL, postgres.PoolOptions{})
		if err != nil {
			slog.Error("connect to postgres", "error", err)
			os.Exit(1)
		}
		cleanup = append(cleanup, pool.Close)
		pgStore := pgdocstore.NewStore(pool)
		if err := pgStore.Migrate(context.Background()); err != nil {
			slog.Error("migrate postgres schema", "error", err)
			os.Exit(1)
		}
		store = pgStore
	case "sqlite":
		sqlStore, err := sqlitedocstore.New(cfg.SQLitePath)
		if err != nil {
			slog.Error("open sqlite store", "error", err, "path", cfg.SQLitePath)
			os.Exit(1)
		}
		cleanup = append(cleanup, func() { _ = sqlStore.Close() })
		store = sqlStore
	default:
		store = memdocstore.NewStore()
	}

	var sessions sessionstoreport.Store
	switch cfg.SessionBackend {
	case "redis":
		redisStore, err := redissessions.New(cfg.RedisURL)
		if err != nil {
			slog.Error("connect to redis", "error", err)
			os.Exit(1)
		}
		cleanup = append(cleanup, func() { _ = redisStore.Close() })
		sessions = redisStore
	default:
		sessions = memsessions.NewStore()
	}

	defer func() {
		for _, fn := range cleanup {
			fn()
		}
	}()

	clk := platformclock.NewSystemClock()
	targetSvc := targets.NewService(docpersonrepo.NewRepo(store), sessions, clk)
	bookSvc := books.NewService(docbookrepo.NewRepo(store), clk)

	handler := httpapi.NewRouter(httpapi.NewServer(targetSvc, bookSvc), authMW)

	srv := &http.Server{
		Addr:              cfg.Addr,
		Handler:           handler,
		ReadHeaderTimeout: 5 * time.Second,
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	go func() {
		slog.Info("api listening",
			"addr", cfg.Addr,
			"storage", cfg.StorageBackend,
			"sessions", cfg.SessionBackend,
			"authMode", cfg.AuthMode)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			slog.Error("listen", "error", err)
			os.Exit(1)
		}
	}()

	<-ctx.Done()
	slog.Info("shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	_ = srv.Shutdown(shutdownCtx)
}
