package main

import (
	"context"
	"database/sql"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/chainguard-dev/clog"
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/cors"

	"github.com/TaylorDurden/rank-everything/internal/application"
	appevals "github.com/TaylorDurden/rank-everything/internal/application/evaluations"
	"github.com/TaylorDurden/rank-everything/internal/config"
	domassets "github.com/TaylorDurden/rank-everything/internal/domain/assets"
	domevalerrors "github.com/TaylorDurden/rank-everything/internal/domain/evalerrors"
	domevals "github.com/TaylorDurden/rank-everything/internal/domain/evaluations"
	domtemplates "github.com/TaylorDurden/rank-everything/internal/domain/templates"
	openaigw "github.com/TaylorDurden/rank-everything/internal/infra/ai/openai"
	"github.com/TaylorDurden/rank-everything/internal/infra/cache"
	mysqlp "github.com/TaylorDurden/rank-everything/internal/infra/db/mysql"
	postgresp "github.com/TaylorDurden/rank-everything/internal/infra/db/postgres"
	"github.com/TaylorDurden/rank-everything/internal/infra/httpserver"
	"github.com/TaylorDurden/rank-everything/internal/infra/notify"
	"github.com/TaylorDurden/rank-everything/internal/infra/report"
	minioStore "github.com/TaylorDurden/rank-everything/internal/infra/storage"
	"github.com/TaylorDurden/rank-everything/internal/infra/usage"
	"github.com/TaylorDurden/rank-everything/internal/middleware"
)

type repositories struct {
	assets      domassets.Repository
	templates   domtemplates.Repository
	evaluations domevals.Repository
	errors      domevalerrors.Repository
}

func main() {
	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer cancel()

	path := "config.yaml"
	if v := os.Getenv("CONFIG_PATH"); v != "" {
		path = v
	}

	cfg, err := config.Load(ctx, path)
	if err != nil {
		clog.FatalContextf(ctx, "config load error: %v", err)
	}

	db, repos, err := openDatabase(ctx, cfg)
	if err != nil {
		clog.FatalContextf(ctx, "database error: %v", err)
	}
	defer db.Close()

	svc := &appevals.Service{
		Assets:      repos.assets,
		Templates:   repos.templates,
		Evaluations: repos.evaluations,
		Errors:      repos.errors,
		Cache:       cache.New(cfg.AI.CacheTTL, cfg.AI.CacheMaxSize),
		Limiter:     usage.New(cfg.AI.DailyLimit, cfg.AI.MonthlyLimit),
		Renderer:    &report.Markdown{},
		Clock:       application.SystemClock{},
	}

	if cfg.AI.APIKey != "" {
		svc.Client = openaigw.NewClient(cfg.AI.APIKey, cfg.AI.BaseURL, cfg.AI.Model, cfg.AI.Timeout)
	} else {
		clog.InfoContext(ctx, "no AI credential configured, analyses will use the fallback path")
	}

	healthChecks := map[string]middleware.HealthChecker{
		"database": &middleware.DatabaseHealthChecker{DB: db},
	}

	if cfg.Minio.Endpoint != "" {
		store, err := minioStore.New(ctx,
			cfg.Minio.Endpoint,
			cfg.Minio.Region,
			cfg.Minio.BucketName,
			cfg.Minio.AccessKey,
			cfg.Minio.SecretKey,
			cfg.Minio.UseSSL,
		)
		if err != nil {
			clog.FatalContextf(ctx, "minio init error: %v", err)
		}
		svc.Reports = store
		healthChecks["report_store"] = middleware.CheckerFunc(store.Ping)
	}

	if cfg.Notify.SlackWebhookURL != "" {
		svc.Notifier = notify.NewSlack(cfg.Notify.SlackWebhookURL)
	}

	mux := chi.NewRouter()
	mux.Use(cors.Handler(cors.Options{
		AllowedOrigins: []string{"*"},
		AllowedMethods: []string{"GET", "POST", "DELETE", "OPTIONS"},
		AllowedHeaders: []string{"Authorization", "Content-Type", "X-User-Id"},
		MaxAge:         300,
	}))
	mux.Use(middleware.LoggingMiddleware)
	mux.Use(middleware.MetricsMiddleware)
	mux.Use(middleware.RateLimitMiddleware(100, 10))
	if len(cfg.Auth.APIKeys) > 0 {
		mux.Use(middleware.APIKeyAuth(cfg.Auth.APIKeys))
	}

	mux.Get("/health", middleware.HealthHandler(healthChecks))
	mux.Get("/health/live", middleware.LivenessHandler)
	mux.Get("/health/ready", middleware.ReadinessHandler)
	mux.Get("/metrics", middleware.MetricsHandler)

	mux.Mount("/", httpserver.NewRouter(svc, repos.assets, repos.templates, repos.evaluations, repos.errors))

	addr := fmt.Sprintf(":%d", cfg.Server.Port)
	srv := &http.Server{
		Addr:         addr,
		Handler:      mux,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 120 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	go func() {
		clog.InfoContextf(ctx, "server listening on %s", addr)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			clog.FatalContextf(ctx, "server error: %v", err)
		}
	}()

	<-ctx.Done()
	clog.InfoContext(ctx, "shutting down server...")

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer shutdownCancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		clog.ErrorContextf(ctx, "shutdown error: %v", err)
	}
}

func openDatabase(ctx context.Context, cfg *config.Config) (*sql.DB, repositories, error) {
	switch cfg.Database.Driver {
	case "postgres":
		db, err := postgresp.Connect(ctx, cfg.PostgresDSN())
		if err != nil {
			return nil, repositories{}, fmt.Errorf("postgres connect: %w", err)
		}
		return db, repositories{
			assets:      postgresp.NewAssetRepository(db),
			templates:   postgresp.NewTemplateRepository(db),
			evaluations: postgresp.NewEvaluationRepository(db),
			errors:      postgresp.NewEvalErrorRepository(db),
		}, nil
	case "mysql", "":
		db, err := mysqlp.Connect(ctx, cfg.MySQLDSN())
		if err != nil {
			return nil, repositories{}, fmt.Errorf("mysql connect: %w", err)
		}
		return db, repositories{
			assets:      mysqlp.NewAssetRepository(db),
			templates:   mysqlp.NewTemplateRepository(db),
			evaluations: mysqlp.NewEvaluationRepository(db),
			errors:      mysqlp.NewEvalErrorRepository(db),
		}, nil
	default:
		return nil, repositories{}, fmt.Errorf("unsupported database driver %q", cfg.Database.Driver)
	}
}
