package server

import (
	"context"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/rs/cors"

	"hrms/internal/domain/access"
	"hrms/internal/domain/attendance"
	"hrms/internal/domain/core"
	"hrms/internal/domain/expense"
	"hrms/internal/domain/holiday"
	"hrms/internal/domain/leave"
	"hrms/internal/domain/notifications"
	"hrms/internal/domain/reports"
	"hrms/internal/platform/config"
	"hrms/internal/platform/db"
	"hrms/internal/platform/email"
	"hrms/internal/platform/jobs"
	"hrms/internal/platform/metrics"
	attendancehandler "hrms/internal/transport/http/handlers/attendance"
	authhandler "hrms/internal/transport/http/handlers/auth"
	expensehandler "hrms/internal/transport/http/handlers/expense"
	holidayshandler "hrms/internal/transport/http/handlers/holidays"
	leavehandler "hrms/internal/transport/http/handlers/leave"
	notificationshandler "hrms/internal/transport/http/handlers/notifications"
	reportshandler "hrms/internal/transport/http/handlers/reports"
	roleshandler "hrms/internal/transport/http/handlers/roles"
	usershandler "hrms/internal/transport/http/handlers/users"
	"hrms/internal/transport/http/api"
	"hrms/internal/transport/http/middleware"
)

const maxBodyBytes = 1 << 20

// Run wires the whole application and blocks until shutdown.
func Run() {
	cfg := config.Load()
	logger := slog.New(slog.NewJSONHandler(os.Stdout, nil))
	slog.SetDefault(logger)

	if cfg.DatabaseURL == "" {
		logger.Error("DATABASE_URL is required")
		os.Exit(1)
	}
	if cfg.JWTSecret == "" {
		logger.Error("JWT_SECRET is required")
		os.Exit(1)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	pool, err := db.Connect(ctx, cfg)
	if err != nil {
		logger.Error("db connect failed", slog.Any("error", err))
		os.Exit(1)
	}
	defer pool.Close()

	if cfg.RunMigrations {
		if err := db.Migrate(ctx, pool, "migrations"); err != nil {
			logger.Error("migrations failed", slog.Any("error", err))
			os.Exit(1)
		}
	}
	if cfg.RunSeed {
		if err := db.Seed(ctx, pool, cfg); err != nil {
			logger.Error("seed failed", slog.Any("error", err))
			os.Exit(1)
		}
	}

	// Stores.
	accessStore := access.NewStore(pool)
	coreStore := core.NewStore(pool)
	leaveStore := leave.NewStore(pool)
	attendanceStore := attendance.NewStore(pool)
	holidayStore := holiday.NewStore(pool)
	expenseStore := expense.NewStore(pool)
	notificationStore := notifications.NewStore(pool)

	// Services.
	accessSvc := access.NewService(accessStore)
	holidaySvc := holiday.NewService(holidayStore)
	notifSvc := notifications.NewService(notificationStore, email.New(cfg), logger, cfg.CompanyName)
	leaveSvc := leave.NewService(leaveStore, attendanceStore, notifSvc)
	attendanceSvc := attendance.NewService(attendanceStore, accessSvc.Resolver, holidaySvc, logger)
	expenseSvc := expense.NewService(expenseStore, accessSvc.Resolver)
	coreSvc := core.NewService(coreStore, accessSvc, leaveSvc.Engine, accessSvc.Resolver, logger, cfg.JWTSecret, cfg.TokenTTL)
	reportsSvc := reports.NewService(attendanceSvc, reports.DefaultShifts())
	dashboard := reports.NewDashboard(coreStore, attendanceStore)

	// Background jobs.
	jobsSvc := jobs.New(pool)
	sweep := func(ctx context.Context) (any, error) {
		count, err := attendanceSvc.SweepNoLogout(ctx)
		return map[string]int{"marked": count}, err
	}
	if err := jobsSvc.Schedule(cfg.AbsentSweepSpec, jobs.JobAbsentSweep, sweep); err != nil {
		logger.Error("schedule absent sweep failed", slog.Any("error", err))
		os.Exit(1)
	}
	jobsSvc.Start(ctx)

	collector := metrics.New()

	router := chi.NewRouter()
	router.Use(middleware.RequestID)
	router.Use(middleware.Logger(logger, collector))
	router.Use(middleware.Recoverer(logger))
	router.Use(middleware.SecureHeaders(cfg.Environment == "production"))
	router.Use(middleware.BodyLimit(maxBodyBytes))
	router.Use(cors.New(cors.Options{
		AllowedOrigins:   cfg.CORSOrigins,
		AllowedMethods:   []string{http.MethodGet, http.MethodPost, http.MethodPut, http.MethodPatch, http.MethodDelete},
		AllowedHeaders:   []string{"Authorization", "Content-Type", "X-Request-ID"},
		AllowCredentials: true,
	}).Handler)
	router.Use(middleware.Auth(cfg.JWTSecret))

	router.Get("/healthz", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("ok"))
	})
	router.Get("/readyz", func(w http.ResponseWriter, r *http.Request) {
		ctx, cancel := context.WithTimeout(r.Context(), 2*time.Second)
		defer cancel()
		if err := pool.Ping(ctx); err != nil {
			http.Error(w, "db not ready", http.StatusServiceUnavailable)
			return
		}
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("ready"))
	})
	if cfg.MetricsEnabled {
		router.With(middleware.RequireUser).Get("/metrics", func(w http.ResponseWriter, r *http.Request) {
			api.Success(w, collector.Snapshot(), middleware.GetRequestID(r.Context()))
		})
	}

	router.Route("/api/v1", func(r chi.Router) {
		authhandler.NewHandler(coreSvc).RegisterRoutes(r)
		usershandler.NewHandler(coreSvc).RegisterRoutes(r)
		roleshandler.NewHandler(accessSvc).RegisterRoutes(r)
		leavehandler.NewHandler(leaveSvc, coreSvc).RegisterRoutes(r)
		attendancehandler.NewHandler(attendanceSvc).RegisterRoutes(r)
		holidayshandler.NewHandler(holidaySvc).RegisterRoutes(r)
		expensehandler.NewHandler(expenseSvc, coreSvc).RegisterRoutes(r)
		notificationshandler.NewHandler(notifSvc).RegisterRoutes(r)
		reportshandler.NewHandler(reportsSvc, dashboard, jobsSvc, sweep).RegisterRoutes(r)
	})

	srv := &http.Server{
		Addr:              cfg.Addr,
		Handler:           router,
		ReadHeaderTimeout: 10 * time.Second,
	}

	go func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		if err := srv.Shutdown(shutdownCtx); err != nil {
			logger.Warn("shutdown", slog.Any("error", err))
		}
	}()

	logger.Info("server listening", slog.String("addr", cfg.Addr))
	if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		logger.Error("server failed", slog.Any("error", err))
		os.Exit(1)
	}
}
