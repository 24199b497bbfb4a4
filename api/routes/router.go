package routes

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/registropol/registropol-backend/api/controllers"
	"github.com/registropol/registropol-backend/api/middleware"
	"github.com/registropol/registropol-backend/internal/auth"
	"github.com/registropol/registropol-backend/internal/dashboard"
	"github.com/registropol/registropol-backend/internal/detainees"
	"github.com/registropol/registropol-backend/internal/documents"
	"github.com/registropol/registropol-backend/internal/users"
	"github.com/registropol/registropol-backend/pkg/authz"
	"github.com/registropol/registropol-backend/pkg/config"
	"github.com/registropol/registropol-backend/pkg/db"
	"github.com/registropol/registropol-backend/pkg/logger"
	"github.com/registropol/registropol-backend/pkg/metrics"
	"github.com/registropol/registropol-backend/pkg/redis"
	"github.com/registropol/registropol-backend/pkg/storage"
)

// Deps carries everything the HTTP surface needs.
type Deps struct {
	Config      *config.Config
	Logger      *logger.Logger
	DB          db.Pinger
	Redis       *redis.Client
	Storage     *storage.LocalStore
	HTTPMetrics *metrics.HTTPMetrics
	Registry    *prometheus.Registry

	AuthService      auth.Service
	UsersService     users.Service
	DetaineesService detainees.Service
	DashboardService *dashboard.Service
	DocumentsService *documents.Service
}

func NewRouter(deps Deps) http.Handler {
	cfg := deps.Config
	logg := deps.Logger

	r := chi.NewRouter()
	r.Use(
		middleware.Recoverer(logg),
		middleware.RequestID(logg),
		middleware.Logging(logg),
		middleware.CORS(),
	)
	if deps.HTTPMetrics != nil {
		r.Use(deps.HTTPMetrics.Middleware)
	}

	loginPolicy := middleware.NewAuthRateLimitPolicy(
		"login",
		cfg.AuthRateLimit.LoginWindow,
		cfg.AuthRateLimit.LoginIPLimit,
		cfg.AuthRateLimit.LoginUserLimit,
	)

	r.Route("/health", func(r chi.Router) {
		r.Get("/live", controllers.HealthLive(cfg))
		r.Get("/ready", controllers.HealthReady(cfg, logg, readinessChecks(deps)...))
	})

	if deps.Registry != nil {
		r.Method(http.MethodGet, "/metrics", promhttp.HandlerFor(deps.Registry, promhttp.HandlerOpts{}))
	}

	if deps.Storage != nil && deps.Storage.Dir() != "" {
		fileServer := http.StripPrefix("/uploads/", http.FileServer(http.Dir(deps.Storage.Dir())))
		r.Get("/uploads/*", fileServer.ServeHTTP)
	}

	r.Route("/api/public", func(r chi.Router) {
		r.Get("/ping", controllers.PublicPing())
	})

	r.Route("/api/v1/auth", func(r chi.Router) {
		r.With(middleware.AuthRateLimit(loginPolicy, deps.Redis, logg)).Post("/login", controllers.AuthLogin(deps.AuthService, logg))
		r.Post("/logout", controllers.AuthLogout(deps.AuthService, logg))
		r.Get("/me", controllers.AuthMe(deps.AuthService, logg))
	})

	r.Route("/api/v1", func(r chi.Router) {
		r.Use(middleware.Auth(deps.AuthService, logg))

		r.Get("/ping", controllers.PrivatePing())

		r.Route("/detainees", func(r chi.Router) {
			r.With(middleware.RequireCapability(authz.CapabilityRegister, logg)).
				Post("/", controllers.DetaineesRegister(deps.DetaineesService, deps.Storage, cfg.Storage.MaxUploadBytes(), logg))
			r.With(middleware.RequireCapability(authz.CapabilitySearch, logg)).
				Get("/search", controllers.DetaineesSearch(deps.DetaineesService, logg))
			r.With(middleware.RequireCapability(authz.CapabilitySearch, logg)).
				Post("/search/advanced", controllers.DetaineesSearchAdvanced(deps.DetaineesService, logg))
		})

		r.Route("/documents", func(r chi.Router) {
			r.Use(middleware.RequireCapability(authz.CapabilityRegister, logg))
			r.Post("/extract", controllers.DocumentsExtract(deps.DocumentsService, cfg.Storage.MaxUploadBytes(), logg))
		})

		r.Route("/dashboard", func(r chi.Router) {
			r.Use(middleware.RequireCapability(authz.CapabilityDashboard, logg))
			r.Get("/stats", controllers.DashboardStats(deps.DashboardService, logg))
			r.Get("/activity/recent", controllers.DashboardRecentActivities(deps.DashboardService, logg))
			r.Get("/activity/weekly", controllers.DashboardWeeklyActivity(deps.DashboardService, logg))
		})

		r.Route("/admin/users", func(r chi.Router) {
			r.Use(middleware.RequireCapability(authz.CapabilityManageUsers, logg))
			r.Get("/", controllers.AdminUsersList(deps.UsersService, logg))
			r.Post("/", controllers.AdminUsersCreate(deps.UsersService, logg))
			r.Get("/{id}", controllers.AdminUsersGet(deps.UsersService, logg))
			r.Patch("/{id}", controllers.AdminUsersUpdate(deps.UsersService, logg))
			r.Post("/{id}/suspend", controllers.AdminUsersSuspend(deps.UsersService, logg))
			r.Post("/{id}/reactivate", controllers.AdminUsersReactivate(deps.UsersService, logg))
			r.Delete("/{id}", controllers.AdminUsersDelete(deps.UsersService, logg))
		})
	})

	return r
}

func readinessChecks(deps Deps) []controllers.ReadinessCheck {
	checks := make([]controllers.ReadinessCheck, 0, 3)
	if deps.DB != nil {
		checks = append(checks, controllers.ReadinessCheck{Name: "database", Ping: deps.DB.Ping})
	}
	if deps.Redis != nil {
		checks = append(checks, controllers.ReadinessCheck{Name: "redis", Ping: deps.Redis.Ping})
	}
	if deps.Storage != nil {
		checks = append(checks, controllers.ReadinessCheck{Name: "storage", Ping: deps.Storage.Ping})
	}
	return checks
}
