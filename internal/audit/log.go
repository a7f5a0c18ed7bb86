package audit

import (
	"context"
	"log/slog"

	"tracker/internal/events"
	"tracker/pkg/attrs"
	"tracker/pkg/requestcontext"
)

// LogSecurity logs a security outcome to the structured logger and records it
// through the recorder in one call. The attribute list follows slog key-value
// convention; "actor" and "detail" are extracted for the audit entry.
func LogSecurity(ctx context.Context, logger *slog.Logger, recorder *Recorder, kind events.SecurityKind, meta RequestMetadata, attrList ...any) {
	if requestID := requestcontext.RequestID(ctx); requestID != "" {
		attrList = append(attrList, "request_id", requestID)
	}

	args := append(attrList, "kind", string(kind), "log_type", "security")
	if logger != nil {
		logger.InfoContext(ctx, string(kind), args...)
	}

	if recorder == nil {
		return
	}

	actor := attrs.ExtractString(attrList, "actor")
	if actor == "" {
		actor = requestcontext.Actor(ctx)
	}
	detail := attrs.ExtractString(attrList, "detail")
	if detail == "" {
		detail = meta.Summary
	}

	recorder.RecordSecurity(ctx, kind, actor, meta, detail)
}
