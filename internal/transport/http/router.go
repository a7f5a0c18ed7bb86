// Package http exposes the subsystem's operational surface: health, metrics,
// the manual overdue-evaluation trigger and audit queries. Business REST
// endpoints live in the surrounding CRUD service, not here.
package http

import (
	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// NewRouter wires the operational routes.
func NewRouter(h *Handler) chi.Router {
	r := chi.NewRouter()

	r.Use(RequestID)
	r.Use(h.SecurityOutcomes)

	r.Get("/healthz", h.Healthz)
	r.Method("GET", "/metrics", promhttp.Handler())

	r.Route("/internal", func(r chi.Router) {
		r.Post("/tasks/{taskID}/evaluate", h.EvaluateTask)
		r.Get("/audit/recent", h.AuditRecent)
		r.Get("/audit", h.AuditQuery)
	})

	return r
}
