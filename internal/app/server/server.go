package server

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/jackc/pgx/v5/pgxpool"

	"hrpay/internal/domain/audit"
	"hrpay/internal/domain/catalog"
	"hrpay/internal/domain/glrules"
	"hrpay/internal/domain/payroll"
	"hrpay/internal/platform/config"
	"hrpay/internal/platform/db"
	"hrpay/internal/platform/jobs"
	"hrpay/internal/platform/metrics"
	glruleshandler "hrpay/internal/transport/http/handlers/glrules"
	jobshandler "hrpay/internal/transport/http/handlers/jobs"
	payrollhandler "hrpay/internal/transport/http/handlers/payroll"
	statutoryhandler "hrpay/internal/transport/http/handlers/statutory"
	"hrpay/internal/transport/http/middleware"
)

type App struct {
	Config  config.Config
	DB      *pgxpool.Pool
	Router  http.Handler
	Jobs    *jobs.Service
	Metrics *metrics.Collector
}

// New wires the application. With DATABASE_URL set, reference data, rules, job runs
// and idempotency keys live in Postgres; otherwise the catalog comes from
// CATALOG_FILE and everything else is kept in process.
func New(ctx context.Context, cfg config.Config) (*App, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	app := &App{Config: cfg, Metrics: metrics.New()}

	var (
		catalogStore catalog.Store
		ruleStore    glrules.StoreAPI
		runStore     jobs.RunStore
		idempotency  *middleware.IdempotencyStore
		auditSvc     *audit.Service
	)
	if cfg.DatabaseURL != "" {
		pool, err := db.Connect(ctx, cfg)
		if err != nil {
			return nil, fmt.Errorf("db connect: %w", err)
		}
		app.DB = pool
		if cfg.RunMigrations {
			if err := db.Migrate(ctx, pool, cfg.MigrationsDir); err != nil {
				pool.Close()
				return nil, fmt.Errorf("migrations: %w", err)
			}
		}
		catalogStore = catalog.NewPGStore(pool)
		ruleStore = glrules.NewStore(pool)
		runStore = jobs.NewPGStore(pool)
		idempotency = middleware.NewIdempotencyStore(pool)
		auditSvc = audit.New(pool)
	} else {
		store, err := catalog.LoadFile(cfg.CatalogFile)
		if err != nil {
			return nil, err
		}
		catalogStore = store
		ruleStore = glrules.NewMemoryStore()
		runStore = jobs.NewMemoryStore()
		idempotency = middleware.NewIdempotencyStore(nil)
		slog.Warn("running without a database; rules, job runs, idempotency keys and audit events are not persisted", "catalog", cfg.CatalogFile)
	}

	rules := glrules.NewService(ruleStore)
	if cfg.DatabaseURL == "" && cfg.GLRulesFile != "" {
		loaded, err := glrules.LoadFile(ctx, cfg.GLRulesFile)
		if err != nil {
			return nil, err
		}
		rules = loaded
	}

	assembler := payroll.NewAssembler()
	assembler.TreatUnknownAsTaxable = cfg.TreatUnknownAsTaxable
	payrollSvc := payroll.NewService(catalogStore, assembler, app.Metrics, cfg.BatchConcurrency)
	app.Jobs = jobs.New(runStore, app.Metrics, cfg.JobQueueSize)

	router := chi.NewRouter()
	router.Use(middleware.RequestID)
	router.Use(middleware.Logger)
	router.Use(chimiddleware.Recoverer)
	router.Use(middleware.SecureHeaders(cfg.Environment == "production"))
	if cfg.MetricsEnabled {
		router.Use(middleware.Metrics(app.Metrics))
		router.Method(http.MethodGet, "/metrics", app.Metrics.Handler())
	}

	router.Get("/healthz", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("ok"))
	})

	router.Get("/readyz", func(w http.ResponseWriter, r *http.Request) {
		if app.DB != nil {
			ctx, cancel := context.WithTimeout(r.Context(), 2*time.Second)
			defer cancel()
			if err := app.DB.Ping(ctx); err != nil {
				http.Error(w, "db not ready", http.StatusServiceUnavailable)
				return
			}
		}
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("ready"))
	})

	router.Route("/api/v1", func(r chi.Router) {
		r.Use(middleware.BodyLimit(cfg.MaxBodyBytes))
		if cfg.RateLimitPerMinute > 0 {
			r.Use(middleware.RateLimit(cfg.RateLimitPerMinute, time.Minute))
		}

		payrollHandler := payrollhandler.NewHandler(payrollSvc, app.Jobs, idempotency)
		payrollHandler.RegisterRoutes(r)

		jobsHandler := jobshandler.NewHandler(app.Jobs)
		jobsHandler.RegisterRoutes(r)

		glHandler := glruleshandler.NewHandler(rules, auditSvc)
		glHandler.RegisterRoutes(r)

		statutoryHandler := statutoryhandler.NewHandler(app.Metrics)
		statutoryHandler.RegisterRoutes(r)
	})

	app.Router = router
	return app, nil
}

func (a *App) Close() {
	if a.DB != nil {
		a.DB.Close()
	}
}

// Run serves until SIGINT or SIGTERM, then drains in-flight requests.
func Run() error {
	cfg := config.Load()
	slog.SetDefault(slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{Level: cfg.SlogLevel()})))

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	app, err := New(ctx, cfg)
	if err != nil {
		return err
	}
	defer app.Close()
	app.Jobs.Start(ctx)

	srv := &http.Server{
		Addr:              cfg.Addr,
		Handler:           app.Router,
		ReadHeaderTimeout: 10 * time.Second,
	}
	errCh := make(chan error, 1)
	go func() {
		slog.Info("payroll server listening", "addr", cfg.Addr, "env", cfg.Environment)
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

	slog.Info("shutting down", "timeout", cfg.ShutdownTimeout)
	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.ShutdownTimeout)
	defer cancel()
	return srv.Shutdown(shutdownCtx)
}
