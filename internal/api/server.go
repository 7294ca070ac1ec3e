// Package api exposes the payroll computation engine over HTTP. Handlers do
// request/response translation only; all semantics live in the calculation,
// optimizer and store packages.
package api

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/rs/zerolog"
)

// NewRouter creates the router with all routes configured.
func NewRouter(h *Handler) *chi.Mux {
	r := chi.NewRouter()

	r.Use(middleware.RequestID)
	r.Use(middleware.Recoverer)
	r.Use(requestLogger(h.Logger))
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins: []string{"*"},
		AllowedMethods: []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowedHeaders: []string{"Accept", "Authorization", "Content-Type"},
	}))

	r.Route("/api", func(r chi.Router) {
		r.Route("/tax", func(r chi.Router) {
			r.Post("/calculate", h.CalculateTax)
			r.Post("/batch", h.CalculateTaxBatch)
			r.Post("/optimize", h.OptimizeRegime)
		})

		r.Post("/gratuity/calculate", h.CalculateGratuity)

		r.Route("/settlements", func(r chi.Router) {
			r.Post("/", h.CreateSettlement)
			r.Get("/{id}", h.GetSettlement)
			r.Get("/{id}/statement", h.GetSettlementStatement)
		})

		r.Route("/employees", func(r chi.Router) {
			r.Get("/", h.ListEmployees)
			r.Post("/", h.CreateEmployee)
			r.Get("/{id}", h.GetEmployee)
			r.Get("/{id}/allocations", h.ListEmployeeAllocations)
			r.Get("/{id}/settlements", h.ListEmployeeSettlements)
		})

		r.Route("/rules", func(r chi.Router) {
			r.Get("/", h.ListRules)
			r.Post("/", h.SaveRule)
			r.Get("/{id}", h.GetRule)
			r.Delete("/{id}", h.DeleteRule)
			r.Post("/{id}/allocations", h.GenerateAllocations)
		})

		r.Route("/allocations", func(r chi.Router) {
			r.Post("/{id}/submit", h.SubmitAllocation)
			r.Post("/{id}/approve", h.ApproveAllocation)
			r.Delete("/{id}", h.DeleteAllocation)
		})
	})

	return r
}

// requestLogger emits one structured line per request.
func requestLogger(logger zerolog.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			start := time.Now()
			ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)

			next.ServeHTTP(ww, r)

			logger.Info().
				Str("method", r.Method).
				Str("path", r.URL.Path).
				Int("status", ww.Status()).
				Dur("duration", time.Since(start)).
				Str("request_id", middleware.GetReqID(r.Context())).
				Msg("request")
		})
	}
}
