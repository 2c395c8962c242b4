package api

import (
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/medaid-ai/medaid/internal/metrics"
	"github.com/medaid-ai/medaid/internal/web"
)

// RouterConfig wires the handlers and observability into one router.
type RouterConfig struct {
	API          *APIHandler
	Web          *web.Handler
	Metrics      *metrics.Metrics
	Gatherer     prometheus.Gatherer
	Logger       *slog.Logger
	MaxBodyBytes int64
}

func NewRouter(cfg RouterConfig) http.Handler {
	logger := cfg.Logger
	if logger == nil {
		logger = slog.Default()
	}

	r := chi.NewRouter()

	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(accessLog(logger, cfg.Metrics))
	r.Use(middleware.Recoverer)    // Recover from panics
	r.Use(middleware.StripSlashes) // Ensure consistent path handling

	if cfg.Web != nil {
		r.Get("/", cfg.Web.Index)
		r.Post("/", cfg.Web.Submit)
	}

	if cfg.Gatherer != nil {
		r.Method(http.MethodGet, "/metrics", promhttp.HandlerFor(cfg.Gatherer, promhttp.HandlerOpts{}))
	}

	// All API routes live under /api
	r.Route("/api", func(r chi.Router) {
		r.Get("/health", cfg.API.HealthHandler)

		r.Group(func(r chi.Router) {
			if cfg.MaxBodyBytes > 0 {
				r.Use(middleware.RequestSize(cfg.MaxBodyBytes))
			}
			r.Use(middleware.AllowContentType("application/json"))

			r.Post("/advice", cfg.API.AdviceHandler)
			r.Post("/chat", cfg.API.ChatHandler)
			r.Post("/remedies", cfg.API.RemediesHandler)
			r.Post("/speech", cfg.API.SpeechHandler)
			r.Post("/transcribe", cfg.API.TranscribeHandler)
		})
	})

	return r
}
