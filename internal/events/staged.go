package events

import (
	"context"

	"tracker/pkg/platform/tx"
)

// PublishAfterCommit defers publication until the transaction carried by ctx
// commits. Outside a transaction the event is published immediately. Staged
// events are discarded on rollback, so subscribers never observe a cache
// eviction or audit entry for data that was never written.
func PublishAfterCommit(ctx context.Context, bus *Bus, event Event) {
	if event == nil {
		panic("events: publish of nil event")
	}
	if !tx.AfterCommit(ctx, func() { bus.Publish(ctx, event) }) {
		bus.Publish(ctx, event)
	}
}
