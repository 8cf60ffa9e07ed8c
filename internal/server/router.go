package server

import (
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/go-chi/httprate"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/hamedAligholizade/ajiro/internal/config"
	"github.com/hamedAligholizade/ajiro/internal/handler"
)

// NewRouter wires HTTP routes and middleware.
func NewRouter(cfg config.Config,
	logger *slog.Logger,
	health handler.HealthHandler,
	products handler.ProductHandler,
	customers handler.CustomerHandler,
	tx handler.TransactionHandler,
	loyalty handler.LoyaltyHandler,
	stats handler.StatsHandler,
) http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(NewLoggerMiddleware(logger))
	r.Use(NewMetricsMiddleware())
	r.Use(middleware.Recoverer)
	r.Use(middleware.Timeout(60 * time.Second))
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins:   []string{"*"},
		AllowedMethods:   []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type", "X-CSRF-Token"},
		ExposedHeaders:   []string{"Link"},
		AllowCredentials: true,
		MaxAge:           300,
	}))
	r.Use(httprate.LimitByIP(200, 1*time.Minute))

	health.RegisterRoutes(r)
	r.Method("GET", "/metrics", promhttp.Handler())

	r.Route("/api/shops/{shopID}", func(sr chi.Router) {
		products.RegisterRoutes(sr)
		customers.RegisterRoutes(sr)
		tx.RegisterRoutes(sr)
		loyalty.RegisterRoutes(sr)
		stats.RegisterRoutes(sr)
	})

	return r
}
