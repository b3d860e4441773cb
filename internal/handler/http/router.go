package http

import (
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/roomhaven/reviews-service/internal/service"
	"github.com/roomhaven/reviews-service/pkg/health"
	"github.com/roomhaven/reviews-service/pkg/middleware"
)

// RouterConfig carries the transport-level knobs for NewRouter.
type RouterConfig struct {
	Environment      string
	CORSAllowOrigins []string
}

// NewRouter builds the HTTP routing tree for the reviews service.
func NewRouter(
	svc *service.ReviewService,
	healthHandler *health.Handler,
	logger *slog.Logger,
	cfg RouterConfig,
) http.Handler {
	h := NewReviewHandler(svc, logger)

	corsCfg := middleware.DefaultCORSConfig()
	corsCfg.Environment = cfg.Environment
	if len(cfg.CORSAllowOrigins) > 0 {
		corsCfg.AllowedOrigins = cfg.CORSAllowOrigins
	}

	r := chi.NewRouter()
	r.Use(middleware.CORS(corsCfg))
	r.Use(middleware.Recovery(logger))
	r.Use(middleware.RequestLogging(logger))
	r.Use(middleware.RequestLogger(logger))
	r.Use(middleware.PrometheusMetrics("reviews-service"))

	r.Get("/health/live", healthHandler.LivenessHandler())
	r.Get("/health/ready", healthHandler.ReadinessHandler())
	r.Handle("/metrics", promhttp.Handler())

	r.Route("/api/v1", func(r chi.Router) {
		r.Route("/reviews", func(r chi.Router) {
			r.Post("/", h.Create)
			r.Route("/{reviewID}", func(r chi.Router) {
				r.Get("/", h.Get)
				r.Patch("/", h.Update)
				r.Delete("/", h.Delete)
			})
		})

		r.Route("/listings/{listingID}/reviews", func(r chi.Router) {
			r.Get("/", h.ListByListing)
			r.Get("/stats", h.ListingStats)
			r.Get("/eligibility", h.ListingEligibility)
		})

		r.Route("/agents/{agentID}/reviews", func(r chi.Router) {
			r.Get("/", h.ListByAgent)
			r.Get("/stats", h.AgentStats)
			r.Get("/eligibility", h.AgentEligibility)
		})

		r.Get("/users/{userID}/reviews", h.ListByAuthor)

		r.Route("/admin", func(r chi.Router) {
			r.Use(middleware.RequireRole(service.RoleAdmin))
			r.Put("/reviews/{reviewID}/verified", h.SetVerified)
		})
	})

	return r
}
