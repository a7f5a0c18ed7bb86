package http

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"

	"tracker/internal/audit"
	"tracker/internal/overdue"
	id "tracker/pkg/domain"
	"tracker/pkg/platform/sentinel"
)

// Handler carries the operational endpoints' dependencies.
type Handler struct {
	scanner    *overdue.Scanner
	auditStore audit.Store
	recorder   *audit.Recorder
	logger     *slog.Logger
}

func NewHandler(scanner *overdue.Scanner, auditStore audit.Store, recorder *audit.Recorder, logger *slog.Logger) *Handler {
	return &Handler{
		scanner:    scanner,
		auditStore: auditStore,
		recorder:   recorder,
		logger:     logger,
	}
}

func (h *Handler) Healthz(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

// EvaluateTask runs one iteration of the scanner's per-task logic for a
// single task, for operational testing.
func (h *Handler) EvaluateTask(w http.ResponseWriter, r *http.Request) {
	taskID, err := id.ParseTaskID(chi.URLParam(r, "taskID"))
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid task id")
		return
	}

	notified, err := h.scanner.EvaluateTask(r.Context(), taskID)
	if errors.Is(err, sentinel.ErrNotFound) {
		writeError(w, http.StatusNotFound, "task not found")
		return
	}
	if err != nil {
		h.logger.Error("manual task evaluation failed", "task_id", taskID, "error", err)
		writeError(w, http.StatusInternalServerError, "evaluation failed")
		return
	}

	writeJSON(w, http.StatusAccepted, map[string]any{
		"task_id":  taskID.String(),
		"notified": notified,
	})
}

// AuditRecent returns the most recent audit entries.
func (h *Handler) AuditRecent(w http.ResponseWriter, r *http.Request) {
	limit := 50
	if raw := r.URL.Query().Get("limit"); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil || n <= 0 {
			writeError(w, http.StatusBadRequest, "invalid limit")
			return
		}
		limit = n
	}

	entries, err := h.auditStore.ListRecent(r.Context(), limit)
	if err != nil {
		h.logger.Error("audit query failed", "error", err)
		writeError(w, http.StatusInternalServerError, "audit query failed")
		return
	}
	writeJSON(w, http.StatusOK, toAuditResponses(entries))
}

// AuditQuery filters audit entries by entity type, actor or time range.
// Exactly one filter dimension is applied, in that order of precedence.
func (h *Handler) AuditQuery(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	ctx := r.Context()

	var (
		entries []audit.Entry
		err     error
	)
	switch {
	case q.Get("entity_type") != "":
		entries, err = h.auditStore.ListByEntityType(ctx, q.Get("entity_type"))
	case q.Get("actor") != "":
		entries, err = h.auditStore.ListByActor(ctx, q.Get("actor"))
	case q.Get("from") != "" && q.Get("to") != "":
		var from, to time.Time
		if from, err = time.Parse(time.RFC3339, q.Get("from")); err != nil {
			writeError(w, http.StatusBadRequest, "invalid from timestamp")
			return
		}
		if to, err = time.Parse(time.RFC3339, q.Get("to")); err != nil {
			writeError(w, http.StatusBadRequest, "invalid to timestamp")
			return
		}
		entries, err = h.auditStore.ListByTimeRange(ctx, from, to)
	default:
		writeError(w, http.StatusBadRequest, "one of entity_type, actor, or from/to is required")
		return
	}

	if err != nil {
		h.logger.Error("audit query failed", "error", err)
		writeError(w, http.StatusInternalServerError, "audit query failed")
		return
	}
	writeJSON(w, http.StatusOK, toAuditResponses(entries))
}

type auditResponse struct {
	ID         string          `json:"id"`
	Action     string          `json:"action"`
	EntityType string          `json:"entity_type,omitempty"`
	EntityID   string          `json:"entity_id,omitempty"`
	ActorName  string          `json:"actor_name"`
	Timestamp  time.Time       `json:"timestamp"`
	Payload    json.RawMessage `json:"payload,omitempty"`
	IPAddress  string          `json:"ip_address,omitempty"`
	UserAgent  string          `json:"user_agent,omitempty"`
	Endpoint   string          `json:"endpoint,omitempty"`
	Detail     string          `json:"detail,omitempty"`
}

func toAuditResponses(entries []audit.Entry) []auditResponse {
	out := make([]auditResponse, 0, len(entries))
	for _, e := range entries {
		out = append(out, auditResponse{
			ID:         e.ID.String(),
			Action:     string(e.Action),
			EntityType: e.EntityType,
			EntityID:   e.EntityID,
			ActorName:  e.ActorName,
			Timestamp:  e.Timestamp,
			Payload:    e.Payload,
			IPAddress:  e.IPAddress,
			UserAgent:  e.UserAgent,
			Endpoint:   e.Endpoint,
			Detail:     e.Detail,
		})
	}
	return out
}

func writeJSON(w http.ResponseWriter, status int, body any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(body)
}

func writeError(w http.ResponseWriter, status int, message string) {
	writeJSON(w, status, map[string]string{"error": message})
}
