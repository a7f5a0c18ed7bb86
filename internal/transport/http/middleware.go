package http

import (
	"net/http"

	"github.com/google/uuid"

	"tracker/internal/audit"
	"tracker/internal/events"
	"tracker/pkg/requestcontext"
)

// RequestID attaches a correlation id and client metadata to the request
// context. Incoming X-Request-ID is honored so traces line up with the
// calling service.
func RequestID(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		requestID := r.Header.Get("X-Request-ID")
		if requestID == "" {
			requestID = uuid.NewString()
		}

		ctx := requestcontext.WithRequestID(r.Context(), requestID)
		meta := audit.MetadataFromRequest(r)
		ctx = requestcontext.WithClientMetadata(ctx, meta.IPAddress, meta.UserAgent)

		w.Header().Set("X-Request-ID", requestID)
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

// SecurityOutcomes records an access-denied security entry whenever a
// downstream handler answers 401 or 403. Login/logout/registration outcomes
// are reported by the auth service through the bus; denials at this surface
// are captured here.
func (h *Handler) SecurityOutcomes(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		sw := &statusWriter{ResponseWriter: w, status: http.StatusOK}
		next.ServeHTTP(sw, r)

		if sw.status != http.StatusUnauthorized && sw.status != http.StatusForbidden {
			return
		}

		meta := audit.MetadataFromRequest(r)
		audit.LogSecurity(r.Context(), h.logger, h.recorder, events.SecurityAccessDenied, meta,
			"status", http.StatusText(sw.status),
			"endpoint", meta.Endpoint,
		)
	})
}

type statusWriter struct {
	http.ResponseWriter
	status int
}

func (w *statusWriter) WriteHeader(status int) {
	w.status = status
	w.ResponseWriter.WriteHeader(status)
}
