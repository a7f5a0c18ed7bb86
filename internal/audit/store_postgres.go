package audit

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/google/uuid"

	txcontext "tracker/pkg/platform/tx"
)

// PostgresStore is the durable audit store.
//
// Schema:
//
//	CREATE TABLE audit_log (
//	    id          UUID PRIMARY KEY,
//	    action      TEXT NOT NULL,
//	    entity_type TEXT NOT NULL DEFAULT '',
//	    entity_id   TEXT NOT NULL DEFAULT '',
//	    actor_name  TEXT NOT NULL DEFAULT '',
//	    occurred_at TIMESTAMPTZ NOT NULL,
//	    payload     JSONB,
//	    ip_address  TEXT NOT NULL DEFAULT '',
//	    user_agent  TEXT NOT NULL DEFAULT '',
//	    endpoint    TEXT NOT NULL DEFAULT '',
//	    detail      TEXT NOT NULL DEFAULT ''
//	);
type PostgresStore struct {
	db *sql.DB
}

func NewPostgresStore(db *sql.DB) *PostgresStore {
	return &PostgresStore{db: db}
}

type dbExecutor interface {
	ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error)
}

// execer joins the caller's transaction when one is carried in context.
func (s *PostgresStore) execer(ctx context.Context) dbExecutor {
	if tx, ok := txcontext.From(ctx); ok {
		return tx
	}
	return s.db
}

func (s *PostgresStore) Append(ctx context.Context, entry Entry) error {
	if entry.ID == uuid.Nil {
		entry.ID = uuid.New()
	}

	query := `
		INSERT INTO audit_log (
			id, action, entity_type, entity_id, actor_name, occurred_at,
			payload, ip_address, user_agent, endpoint, detail
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11)
	`
	_, err := s.execer(ctx).ExecContext(ctx, query,
		entry.ID,
		string(entry.Action),
		entry.EntityType,
		entry.EntityID,
		entry.ActorName,
		entry.Timestamp,
		nullableJSON(entry.Payload),
		entry.IPAddress,
		entry.UserAgent,
		entry.Endpoint,
		entry.Detail,
	)
	if err != nil {
		return fmt.Errorf("insert audit entry: %w", err)
	}
	return nil
}

const selectColumns = `
	id, action, entity_type, entity_id, actor_name, occurred_at,
	payload, ip_address, user_agent, endpoint, detail
`

func (s *PostgresStore) ListRecent(ctx context.Context, limit int) ([]Entry, error) {
	query := `SELECT ` + selectColumns + ` FROM audit_log ORDER BY occurred_at DESC LIMIT $1`
	return s.query(ctx, query, limit)
}

func (s *PostgresStore) ListByEntityType(ctx context.Context, entityType string) ([]Entry, error) {
	query := `SELECT ` + selectColumns + ` FROM audit_log WHERE entity_type = $1 ORDER BY occurred_at DESC`
	return s.query(ctx, query, entityType)
}

func (s *PostgresStore) ListByActor(ctx context.Context, actorName string) ([]Entry, error) {
	query := `SELECT ` + selectColumns + ` FROM audit_log WHERE actor_name = $1 ORDER BY occurred_at DESC`
	return s.query(ctx, query, actorName)
}

func (s *PostgresStore) ListByTimeRange(ctx context.Context, from, to time.Time) ([]Entry, error) {
	query := `SELECT ` + selectColumns + ` FROM audit_log WHERE occurred_at BETWEEN $1 AND $2 ORDER BY occurred_at DESC`
	return s.query(ctx, query, from, to)
}

func (s *PostgresStore) query(ctx context.Context, query string, args ...any) ([]Entry, error) {
	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("query audit entries: %w", err)
	}
	defer rows.Close()

	var entries []Entry
	for rows.Next() {
		var (
			entry   Entry
			action  string
			payload sql.NullString
		)
		if err := rows.Scan(
			&entry.ID,
			&action,
			&entry.EntityType,
			&entry.EntityID,
			&entry.ActorName,
			&entry.Timestamp,
			&payload,
			&entry.IPAddress,
			&entry.UserAgent,
			&entry.Endpoint,
			&entry.Detail,
		); err != nil {
			return nil, fmt.Errorf("scan audit entry: %w", err)
		}
		entry.Action = Action(action)
		if payload.Valid {
			entry.Payload = []byte(payload.String)
		}
		entries = append(entries, entry)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate audit entries: %w", err)
	}
	return entries, nil
}

func nullableJSON(raw []byte) any {
	if len(raw) == 0 {
		return nil
	}
	return string(raw)
}
