package routes

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/visionhut/optica-backend/api/controllers"
	"github.com/visionhut/optica-backend/api/middleware"
	"github.com/visionhut/optica-backend/internal/auth"
	"github.com/visionhut/optica-backend/pkg/config"
	"github.com/visionhut/optica-backend/pkg/enums"
	"github.com/visionhut/optica-backend/pkg/logger"
	"github.com/visionhut/optica-backend/pkg/redis"
)

// RouterDeps bundles the collaborators the HTTP surface needs.
type RouterDeps struct {
	Config      *config.Config
	Logger      *logger.Logger
	DB          controllers.Pinger
	Redis       *redis.Client
	AuthService auth.Service
	Principals  middleware.PrincipalLoader
	Registry    *prometheus.Registry
}

func NewRouter(deps RouterDeps) http.Handler {
	cfg := deps.Config
	logg := deps.Logger

	r := chi.NewRouter()
	r.Use(
		middleware.Recoverer(logg),
		middleware.RequestID(logg),
		middleware.Logging(logg),
		middleware.CORS(),
	)

	loginPolicy := middleware.NewAuthRateLimitPolicy(
		"login",
		cfg.AuthRateLimit.LoginWindow,
		cfg.AuthRateLimit.LoginIPLimit,
		cfg.AuthRateLimit.LoginIdentifierLimit,
	)

	r.Route("/health", func(r chi.Router) {
		r.Get("/live", controllers.HealthLive(cfg))
		r.Get("/ready", controllers.HealthReady(cfg, deps.DB, deps.Redis, logg))
	})

	if deps.Registry != nil {
		r.Method(http.MethodGet, "/metrics", promhttp.HandlerFor(deps.Registry, promhttp.HandlerOpts{}))
	}

	r.Route("/api/public", func(r chi.Router) {
		r.Get("/ping", controllers.PublicPing())
	})

	r.Route("/api/v1/auth", func(r chi.Router) {
		r.With(middleware.AuthRateLimit(loginPolicy, deps.Redis, logg)).Post("/login", controllers.AuthLogin(deps.AuthService, logg))
		r.Post("/logout", controllers.AuthLogout(deps.AuthService, logg))
		r.Post("/refresh", controllers.AuthRefresh(deps.AuthService, logg))

		r.Group(func(r chi.Router) {
			r.Use(middleware.Auth(cfg.JWT, deps.Redis, deps.Principals, logg))
			r.Get("/me", controllers.AuthMe(deps.AuthService, logg))
		})
	})

	r.Route("/api/v1", func(r chi.Router) {
		r.Use(middleware.Auth(cfg.JWT, deps.Redis, deps.Principals, logg))

		r.Get("/ping", controllers.PrivatePing())

		r.Route("/admin", func(r chi.Router) {
			r.Use(middleware.RequireAnyRole(logg, string(enums.UserRoleAdmin), string(enums.UserRoleManager)))
			r.Get("/ping", controllers.AdminPing())
		})
	})

	return r
}
