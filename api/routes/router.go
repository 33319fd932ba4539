package routes

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/angelmondragon/mise-backend/api/controllers"
	"github.com/angelmondragon/mise-backend/api/middleware"
	"github.com/angelmondragon/mise-backend/internal/forecast"
	"github.com/angelmondragon/mise-backend/pkg/config"
	"github.com/angelmondragon/mise-backend/pkg/logger"
	"github.com/angelmondragon/mise-backend/pkg/redis"
)

func NewRouter(
	cfg *config.Config,
	logg *logger.Logger,
	dbP controllers.Pinger,
	redisClient *redis.Client,
	gate controllers.TenantAuthorizer,
	insights forecast.Service,
	gatherer prometheus.Gatherer,
) http.Handler {
	r := chi.NewRouter()
	r.Use(
		middleware.Recoverer(logg),
		middleware.RequestID(logg),
		middleware.Logging(logg),
	)

	deps := map[string]controllers.Pinger{"db": dbP}
	if redisClient != nil {
		deps["redis"] = redisClient
	}

	r.Route("/health", func(r chi.Router) {
		r.Get("/live", controllers.HealthLive(cfg))
		r.Get("/ready", controllers.HealthReady(cfg, logg, deps))
	})

	if gatherer != nil {
		r.Handle("/metrics", promhttp.HandlerFor(gatherer, promhttp.HandlerOpts{}))
	}

	insightsPolicy := middleware.NewRateLimitPolicy("insights", cfg.RateLimit.Window, cfg.RateLimit.IPLimit)

	r.Route("/api/v1/ai", func(r chi.Router) {
		if redisClient != nil {
			r.Use(middleware.RateLimit(insightsPolicy, redisClient, logg))
		}
		r.Use(middleware.Bearer(logg))

		r.Post("/inventory-insights", controllers.InventoryInsights(gate, insights, logg))
		r.Post("/inventory-insights/baseline", controllers.InventoryBaseline(gate, insights, logg))
	})

	return r
}
