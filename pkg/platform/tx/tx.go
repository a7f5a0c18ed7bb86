// Package tx carries a SQL transaction through context and lets callers defer
// side effects until after a successful commit.
package tx

import (
	"context"
	"database/sql"
	"fmt"
)

type (
	txKey      struct{}
	pendingKey struct{}
)

// WithTx stores a SQL transaction in context for downstream store usage.
func WithTx(ctx context.Context, tx *sql.Tx) context.Context {
	if tx == nil {
		return ctx
	}
	return context.WithValue(ctx, txKey{}, tx)
}

// From extracts a SQL transaction from context if present.
func From(ctx context.Context) (*sql.Tx, bool) {
	tx, ok := ctx.Value(txKey{}).(*sql.Tx)
	return tx, ok
}

// Pending collects side effects deferred until the surrounding unit of work
// commits. Domain events are staged here so subscribers never observe a cache
// eviction or audit entry for data that was rolled back.
type Pending struct {
	fns []func()
}

// WithPending attaches a fresh hook collector to the context.
func WithPending(ctx context.Context) (context.Context, *Pending) {
	p := &Pending{}
	return context.WithValue(ctx, pendingKey{}, p), p
}

// Fire runs the collected hooks in registration order and clears them.
// Callers invoke it exactly once, after a successful commit.
func (p *Pending) Fire() {
	fns := p.fns
	p.fns = nil
	for _, fn := range fns {
		fn()
	}
}

// AfterCommit registers fn to run after the surrounding transaction commits.
// Returns false when no unit of work is in flight, in which case the caller
// should perform the action immediately.
func AfterCommit(ctx context.Context, fn func()) bool {
	p, ok := ctx.Value(pendingKey{}).(*Pending)
	if !ok {
		return false
	}
	p.fns = append(p.fns, fn)
	return true
}

// Run executes fn inside a transaction. Stores that honor From participate in
// the same transaction; hooks registered via AfterCommit fire only once the
// commit has succeeded and are discarded on rollback.
func Run(ctx context.Context, db *sql.DB, fn func(ctx context.Context) error) error {
	sqlTx, err := db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin tx: %w", err)
	}

	txCtx, pending := WithPending(WithTx(ctx, sqlTx))

	if err := fn(txCtx); err != nil {
		_ = sqlTx.Rollback()
		return err
	}
	if err := sqlTx.Commit(); err != nil {
		return fmt.Errorf("commit tx: %w", err)
	}

	pending.Fire()
	return nil
}
