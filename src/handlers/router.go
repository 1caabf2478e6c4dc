package handlers

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/username/jamtax/src/logger"
	"github.com/username/jamtax/src/utils"
)

// RouterOptions carries the middleware settings for NewRouter.
type RouterOptions struct {
	AllowedOrigins     []string
	RateLimitPerSecond float64
	RateLimitBurst     int
}

// NewRouter builds the API routes with the global middleware stack applied.
func NewRouter(h *EvaluationHandler, opts RouterOptions) http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.Recoverer)
	r.Use(RequestLogger)
	r.Use(CORSMiddleware(opts.AllowedOrigins))
	if opts.RateLimitPerSecond > 0 {
		r.Use(RateLimitMiddleware(opts.RateLimitPerSecond, opts.RateLimitBurst))
	}

	r.Get("/", h.HandleHealth)
	r.Route("/api", func(r chi.Router) {
		r.Get("/health", h.HandleHealth)
		r.Get("/defaults", h.HandleGetDefaults)
		r.Post("/evaluate", h.HandleEvaluate)
		r.Post("/sweep", h.HandleSweep)
		r.Post("/optimal-salary", h.HandleOptimalSalary)
		r.Get("/evaluations", h.HandleListEvaluations)
		r.Get("/evaluations/{id}", h.HandleGetEvaluation)
	})

	r.NotFound(func(w http.ResponseWriter, r *http.Request) {
		logger.L.Warn("Route not found", "method", r.Method, "path", r.URL.Path)
		utils.SendJSONError(w, "not found", http.StatusNotFound)
	})
	return r
}
