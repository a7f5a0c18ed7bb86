package audit

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"strings"
	"time"
	"unicode"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"

	"tracker/internal/events"
	"tracker/pkg/requestcontext"
)

var appendFailuresTotal = promauto.NewCounter(prometheus.CounterOpts{
	Name: "tracker_audit_append_failures_total",
	Help: "Audit store append failures (logged, never propagated)",
})

// Identifiable is the capability every auditable entity implements so the
// recorder never has to introspect concrete types at runtime.
type Identifiable interface {
	AuditID() string
}

// EntityNamed overrides the recorded entity type; without it the concrete
// type's simple name is used.
type EntityNamed interface {
	AuditEntityType() string
}

// Recorder appends one entry per mutating business operation and per
// security-relevant action. Append failures are logged and swallowed: audit
// is not a transactional participant, and a failed write must never surface
// to the operation it describes.
type Recorder struct {
	store  Store
	logger *slog.Logger
	now    func() time.Time
}

// RecorderOption configures a Recorder.
type RecorderOption func(*Recorder)

// WithClock overrides the timestamp source; test hook.
func WithClock(now func() time.Time) RecorderOption {
	return func(r *Recorder) { r.now = now }
}

func NewRecorder(store Store, logger *slog.Logger, opts ...RecorderOption) *Recorder {
	r := &Recorder{store: store, logger: logger, now: time.Now}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// Register wires the recorder onto the bus for mutation and security events
// published by collaborating business code. Called once at startup.
func (r *Recorder) Register(bus *events.Bus) {
	bus.Subscribe(events.TypeMutation, "audit-recorder", r.handleMutation)
	bus.Subscribe(events.TypeSecurity, "audit-recorder", r.handleSecurity)
}

func (r *Recorder) handleMutation(ctx context.Context, event events.Event) error {
	e, ok := event.(events.Mutation)
	if !ok {
		return nil
	}

	r.append(ctx, Entry{
		Action:     Action(e.Operation),
		EntityType: e.EntityType,
		EntityID:   e.EntityID,
		ActorName:  e.ActorName,
		Timestamp:  e.Timestamp,
		Payload:    e.Payload,
	})
	return nil
}

func (r *Recorder) handleSecurity(ctx context.Context, event events.Event) error {
	e, ok := event.(events.Security)
	if !ok {
		return nil
	}

	action, known := securityActions[e.Kind]
	if !known {
		r.logger.Warn("unknown security event kind", "kind", e.Kind)
		return nil
	}

	r.append(ctx, Entry{
		Action:    action,
		ActorName: e.ActorName,
		Timestamp: e.Timestamp,
		IPAddress: e.IPAddress,
		UserAgent: e.UserAgent,
		Endpoint:  e.Endpoint,
		Detail:    e.Detail,
	})
	return nil
}

// RecordMutation appends an entry for a completed create or update. The
// affected entity supplies its own identity through the Identifiable
// capability; entities without one are recorded as "unknown" rather than
// failing the audit write.
func (r *Recorder) RecordMutation(ctx context.Context, op events.Operation, entity any) {
	if entity == nil {
		return
	}
	r.append(ctx, Entry{
		Action:     Action(op),
		EntityType: EntityType(entity),
		EntityID:   EntityID(entity),
		ActorName:  requestcontext.Actor(ctx),
		Timestamp:  r.now(),
		Payload:    r.marshalPayload(entity),
	})
}

// RecordDeletion appends an entry for a delete operation. The concrete entity
// is usually gone by the time the recorder runs, so the entity type is
// derived from the operation name and the identifier from the delete
// argument.
func (r *Recorder) RecordDeletion(ctx context.Context, operationName string, ref any) {
	r.append(ctx, Entry{
		Action:     ActionDelete,
		EntityType: EntityTypeFromOperation(operationName),
		EntityID:   EntityID(ref),
		ActorName:  requestcontext.Actor(ctx),
		Timestamp:  r.now(),
	})
}

// RecordSecurity appends an entry for an authentication or authorization
// outcome observed at the edge.
func (r *Recorder) RecordSecurity(ctx context.Context, kind events.SecurityKind, actorName string, meta RequestMetadata, detail string) {
	action, known := securityActions[kind]
	if !known {
		r.logger.Warn("unknown security event kind", "kind", kind)
		return
	}
	r.append(ctx, Entry{
		Action:    action,
		ActorName: actorName,
		Timestamp: r.now(),
		IPAddress: meta.IPAddress,
		UserAgent: meta.UserAgent,
		Endpoint:  meta.Endpoint,
		Detail:    detail,
	})
}

func (r *Recorder) append(ctx context.Context, entry Entry) {
	if entry.Timestamp.IsZero() {
		entry.Timestamp = r.now()
	}
	if entry.ActorName == "" {
		entry.ActorName = requestcontext.Actor(ctx)
	}

	if err := r.store.Append(ctx, entry); err != nil {
		appendFailuresTotal.Inc()
		r.logger.Error("audit append failed",
			"action", entry.Action,
			"entity_type", entry.EntityType,
			"entity_id", entry.EntityID,
			"actor", entry.ActorName,
			"error", err,
		)
	}
}

// marshalPayload serializes the entity best-effort. On failure a fallback
// record noting the failure is substituted; the error never propagates.
func (r *Recorder) marshalPayload(entity any) json.RawMessage {
	raw, err := json.Marshal(entity)
	if err != nil {
		r.logger.Warn("audit payload serialization failed",
			"entity_type", EntityType(entity),
			"error", err,
		)
		fallback, _ := json.Marshal(map[string]string{
			"serialization_error": err.Error(),
			"entity_type":         EntityType(entity),
		})
		return fallback
	}
	return raw
}

// EntityID resolves an entity's audit identifier. Identifiable wins; string
// and Stringer arguments (raw ids from delete operations) are used directly;
// anything else is the sentinel "unknown".
func EntityID(entity any) string {
	switch v := entity.(type) {
	case nil:
		return "unknown"
	case Identifiable:
		return v.AuditID()
	case string:
		return v
	case fmt.Stringer:
		return v.String()
	default:
		return "unknown"
	}
}

// EntityType resolves the recorded entity type: the EntityNamed override if
// present, otherwise the concrete type's simple name.
func EntityType(entity any) string {
	if named, ok := entity.(EntityNamed); ok {
		return named.AuditEntityType()
	}
	name := fmt.Sprintf("%T", entity)
	name = strings.TrimLeft(name, "*")
	if dot := strings.LastIndexByte(name, '.'); dot >= 0 {
		name = name[dot+1:]
	}
	if name == "" {
		return "Entity"
	}
	return name
}

// EntityTypeFromOperation derives an entity type from a delete operation
// name: strip a leading "delete"/"remove", capitalize, default to "Entity".
// Generic names like "deleteById" carry no entity information and also fall
// back to "Entity".
func EntityTypeFromOperation(operationName string) string {
	name := operationName
	for _, prefix := range []string{"delete", "remove", "Delete", "Remove"} {
		if strings.HasPrefix(name, prefix) {
			name = name[len(prefix):]
			break
		}
	}
	if name == "" || strings.HasPrefix(name, "By") {
		return "Entity"
	}

	runes := []rune(name)
	runes[0] = unicode.ToUpper(runes[0])
	return string(runes)
}
