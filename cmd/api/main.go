package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"github.com/prometheus/client_golang/prometheus"
	"go.uber.org/multierr"

	"github.com/registropol/registropol-backend/api/routes"
	"github.com/registropol/registropol-backend/internal/audit"
	"github.com/registropol/registropol-backend/internal/auth"
	"github.com/registropol/registropol-backend/internal/dashboard"
	"github.com/registropol/registropol-backend/internal/detainees"
	"github.com/registropol/registropol-backend/internal/documents"
	"github.com/registropol/registropol-backend/internal/users"
	"github.com/registropol/registropol-backend/pkg/config"
	"github.com/registropol/registropol-backend/pkg/db"
	"github.com/registropol/registropol-backend/pkg/logger"
	"github.com/registropol/registropol-backend/pkg/metrics"
	"github.com/registropol/registropol-backend/pkg/migrate"
	"github.com/registropol/registropol-backend/pkg/redis"
	"github.com/registropol/registropol-backend/pkg/session"
	"github.com/registropol/registropol-backend/pkg/storage"
)

const shutdownTimeout = 15 * time.Second

func main() {
	logg := logger.New(logger.Options{ServiceName: "api"})

	if err := godotenv.Load(); err != nil {
		logg.Warn(context.Background(), ".env file not found, relying on environment")
	}

	cfg, err := config.Load()
	if err != nil {
		logg.Error(context.Background(), "failed to load config", err)
		os.Exit(1)
	}

	logg = logger.New(logger.Options{
		ServiceName: "api",
		Level:       logger.ParseLevel(cfg.App.LogLevel),
		WarnStack:   cfg.App.LogWarnStack,
	})

	dbClient, err := db.New(context.Background(), cfg.DB, logg)
	if err != nil {
		logg.Error(context.Background(), "failed to bootstrap database", err)
		os.Exit(1)
	}

	if err := migrate.MaybeRunDev(context.Background(), cfg, logg, dbClient); err != nil {
		logg.Error(context.Background(), "failed to run dev migrations", err)
		os.Exit(1)
	}

	redisClient, err := redis.New(context.Background(), cfg.Redis, logg)
	if err != nil {
		logg.Error(context.Background(), "failed to bootstrap redis", err)
		os.Exit(1)
	}

	store, err := storage.NewLocalStore(context.Background(), cfg.Storage, logg)
	if err != nil {
		logg.Error(context.Background(), "failed to bootstrap storage", err)
		os.Exit(1)
	}

	sessionManager, err := session.NewManager(redisClient, cfg.Session)
	if err != nil {
		logg.Error(context.Background(), "failed to create session manager", err)
		os.Exit(1)
	}

	usersRepo := users.NewRepository(dbClient.DB())
	auditRecorder := audit.NewRecorder(dbClient.DB(), logg)

	if err := auth.EnsureAdmin(context.Background(), usersRepo, cfg.Bootstrap, cfg.Password, logg); err != nil {
		logg.Error(context.Background(), "failed to seed bootstrap admin", err)
		os.Exit(1)
	}

	authService, err := auth.NewService(auth.ServiceParams{
		UserRepo:       usersRepo,
		SessionManager: sessionManager,
		Audit:          auditRecorder,
	})
	if err != nil {
		logg.Error(context.Background(), "failed to create auth service", err)
		os.Exit(1)
	}

	usersService, err := users.NewService(users.ServiceParams{
		Repo:           usersRepo,
		Tx:             dbClient,
		SessionManager: sessionManager,
		Audit:          auditRecorder,
		PasswordConfig: cfg.Password,
	})
	if err != nil {
		logg.Error(context.Background(), "failed to create users service", err)
		os.Exit(1)
	}

	detaineesService, err := detainees.NewService(detainees.ServiceParams{
		Repo:  detainees.NewRepository(dbClient.DB()),
		Audit: auditRecorder,
	})
	if err != nil {
		logg.Error(context.Background(), "failed to create detainees service", err)
		os.Exit(1)
	}

	dashboardService, err := dashboard.NewService(dashboard.ServiceParams{DB: dbClient.DB()})
	if err != nil {
		logg.Error(context.Background(), "failed to create dashboard service", err)
		os.Exit(1)
	}

	registry := prometheus.NewRegistry()
	httpMetrics := metrics.NewHTTPMetrics(registry)

	router := routes.NewRouter(routes.Deps{
		Config:           cfg,
		Logger:           logg,
		DB:               dbClient,
		Redis:            redisClient,
		Storage:          store,
		HTTPMetrics:      httpMetrics,
		Registry:         registry,
		AuthService:      authService,
		UsersService:     usersService,
		DetaineesService: detaineesService,
		DashboardService: dashboardService,
		DocumentsService: documents.NewService(logg),
	})

	port := os.Getenv("PORT")
	if port == "" {
		port = cfg.App.Port
	}
	addr := ":" + port

	ctx := logg.WithFields(context.Background(), map[string]any{
		"env":  cfg.App.Env,
		"addr": addr,
	})
	logg.Info(ctx, "starting api server")

	server := &http.Server{
		Addr:    addr,
		Handler: router,
	}

	errCh := make(chan error, 1)
	go func() {
		errCh <- server.ListenAndServe()
	}()

	stop := make(chan os.Signal, 1)
	signal.Notify(stop, os.Interrupt, syscall.SIGTERM)

	select {
	case err := <-errCh:
		if err != nil && err != http.ErrServerClosed {
			logg.Error(ctx, "api server stopped unexpectedly", err)
			os.Exit(1)
		}
	case sig := <-stop:
		logg.Info(logg.WithField(ctx, "signal", sig.String()), "shutting down api server")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		if err := server.Shutdown(shutdownCtx); err != nil {
			logg.Error(ctx, "graceful shutdown failed", err)
		}
	}

	if err := multierr.Combine(redisClient.Close(), dbClient.Close()); err != nil {
		logg.Error(ctx, "error closing resources", err)
		os.Exit(1)
	}
}
