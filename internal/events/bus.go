package events

import (
	"context"
	"log/slog"
	"sync"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"
)

var (
	publishedTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "tracker_events_published_total",
		Help: "Domain events published to the in-process bus, by type",
	}, []string{"type"})

	handlerFailuresTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "tracker_event_handler_failures_total",
		Help: "Event handler errors and panics, by subscriber",
	}, []string{"subscriber"})
)

// Handler consumes one event. Errors are caught at the bus boundary, logged
// and never propagated to the publisher or to other handlers.
type Handler func(ctx context.Context, event Event) error

// Bus is the in-process publish/subscribe mechanism. Each subscription owns a
// buffered queue drained by a single worker goroutine, so one publisher's
// events reach a given subscriber in publish order while the publisher never
// blocks on handler execution. No ordering is guaranteed across event types
// or across concurrent publishers.
type Bus struct {
	mu     sync.RWMutex
	subs   map[Type][]*subscription
	buffer int
	closed bool

	logger *slog.Logger
	tracer trace.Tracer
	wg     sync.WaitGroup
}

type subscription struct {
	name    string
	handler Handler
	queue   chan delivery
}

type delivery struct {
	ctx   context.Context
	event Event
}

// Option configures a Bus.
type Option func(*Bus)

// WithBuffer sets the per-subscription queue depth.
func WithBuffer(n int) Option {
	return func(b *Bus) {
		if n > 0 {
			b.buffer = n
		}
	}
}

// NewBus creates an event bus. Subscriptions are registered once at process
// start; the registration set is immutable from the publisher's perspective.
func NewBus(logger *slog.Logger, opts ...Option) *Bus {
	b := &Bus{
		subs:   make(map[Type][]*subscription),
		buffer: 256,
		logger: logger,
		tracer: otel.Tracer("tracker/events"),
	}
	for _, opt := range opts {
		opt(b)
	}
	return b
}

// Subscribe registers a named handler for an event type and starts its
// worker. Multiple handlers per type are invoked independently.
func (b *Bus) Subscribe(t Type, name string, handler Handler) {
	if handler == nil {
		panic("events: nil handler subscribed for " + string(t))
	}

	sub := &subscription{
		name:    name,
		handler: handler,
		queue:   make(chan delivery, b.buffer),
	}

	b.mu.Lock()
	if b.closed {
		b.mu.Unlock()
		panic("events: subscribe on closed bus")
	}
	b.subs[t] = append(b.subs[t], sub)
	b.mu.Unlock()

	b.wg.Add(1)
	go b.drain(sub)
}

// Publish hands the event off to every subscriber registered for its type and
// returns without waiting for handler execution. A nil event is a programming
// error and panics; the publisher's transaction has already committed, so
// nothing downstream may fail it.
func (b *Bus) Publish(ctx context.Context, event Event) {
	if event == nil {
		panic("events: publish of nil event")
	}

	// Handlers outlive the request that published the event. Keep the
	// request-scoped values (actor, request id) but drop its cancellation.
	ctx = context.WithoutCancel(ctx)

	// The read lock is held across the sends: Close closes the queues under
	// the write lock, so a queue can never be closed mid-publish. Workers keep
	// draining while the lock is held, so a full queue cannot deadlock Close.
	b.mu.RLock()
	defer b.mu.RUnlock()

	if b.closed {
		b.logger.Warn("event dropped on closed bus", "type", event.Type())
		return
	}

	publishedTotal.WithLabelValues(string(event.Type())).Inc()
	for _, sub := range b.subs[event.Type()] {
		sub.queue <- delivery{ctx: ctx, event: event}
	}
}

// Close stops delivery. Queued events are drained before workers exit.
func (b *Bus) Close() {
	b.mu.Lock()
	if b.closed {
		b.mu.Unlock()
		return
	}
	b.closed = true
	for _, subs := range b.subs {
		for _, sub := range subs {
			close(sub.queue)
		}
	}
	b.mu.Unlock()

	b.wg.Wait()
}

func (b *Bus) drain(sub *subscription) {
	defer b.wg.Done()
	for d := range sub.queue {
		b.dispatch(sub, d)
	}
}

// dispatch invokes the handler with panic and error containment. A failing
// handler must not prevent other subscribers from seeing the same event.
func (b *Bus) dispatch(sub *subscription, d delivery) {
	ctx, span := b.tracer.Start(d.ctx, "events.dispatch", trace.WithAttributes(
		attribute.String("event.type", string(d.event.Type())),
		attribute.String("subscriber", sub.name),
	))
	defer span.End()

	defer func() {
		if r := recover(); r != nil {
			handlerFailuresTotal.WithLabelValues(sub.name).Inc()
			b.logger.Error("event handler panicked",
				"subscriber", sub.name,
				"type", d.event.Type(),
				"panic", r,
			)
		}
	}()

	if err := sub.handler(ctx, d.event); err != nil {
		handlerFailuresTotal.WithLabelValues(sub.name).Inc()
		b.logger.Error("event handler failed",
			"subscriber", sub.name,
			"type", d.event.Type(),
			"error", err,
		)
	}
}
