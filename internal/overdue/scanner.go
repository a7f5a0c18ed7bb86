package overdue

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"

	"tracker/internal/domain"
	"tracker/internal/events"
	"tracker/internal/tasks"
	id "tracker/pkg/domain"
)

var (
	sweepDuration = promauto.NewHistogram(prometheus.HistogramOpts{
		Name:    "tracker_overdue_sweep_duration_seconds",
		Help:    "Duration of one complete overdue sweep",
		Buckets: prometheus.DefBuckets,
	})

	signalsPublished = promauto.NewCounter(prometheus.CounterOpts{
		Name: "tracker_overdue_signals_published_total",
		Help: "TaskOverdue signals published by the scanner",
	})

	taskFailures = promauto.NewCounter(prometheus.CounterOpts{
		Name: "tracker_overdue_task_failures_total",
		Help: "Per-task evaluation failures during sweeps",
	})
)

// Scanner periodically pages through overdue, not-done tasks and publishes a
// TaskOverdue signal for each task not yet notified today. Sweeps run
// synchronously in their own schedule slot: a sweep that overruns the
// interval delays the next one, it never overlaps it.
type Scanner struct {
	store  tasks.Store
	ledger *Ledger
	bus    *events.Bus
	logger *slog.Logger
	tracer trace.Tracer

	interval time.Duration
	pageSize int
	now      func() time.Time
}

// ScannerOption configures a Scanner.
type ScannerOption func(*Scanner)

// WithInterval sets the sweep interval.
func WithInterval(d time.Duration) ScannerOption {
	return func(s *Scanner) {
		if d > 0 {
			s.interval = d
		}
	}
}

// WithPageSize sets the query page size.
func WithPageSize(n int) ScannerOption {
	return func(s *Scanner) {
		if n > 0 {
			s.pageSize = n
		}
	}
}

// WithClock overrides the time source; test hook.
func WithClock(now func() time.Time) ScannerOption {
	return func(s *Scanner) { s.now = now }
}

func NewScanner(store tasks.Store, ledger *Ledger, bus *events.Bus, logger *slog.Logger, opts ...ScannerOption) *Scanner {
	s := &Scanner{
		store:    store,
		ledger:   ledger,
		bus:      bus,
		logger:   logger,
		tracer:   otel.Tracer("tracker/overdue"),
		interval: time.Minute,
		pageSize: 100,
		now:      time.Now,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Run sweeps on a fixed interval until ctx is cancelled. Missed ticks are
// dropped by the ticker, so an overrunning sweep delays rather than stacks.
func (s *Scanner) Run(ctx context.Context) error {
	ticker := time.NewTicker(s.interval)
	defer ticker.Stop()

	s.logger.Info("overdue scanner started",
		"interval", s.interval,
		"page_size", s.pageSize,
	)

	for {
		select {
		case <-ctx.Done():
			s.logger.Info("overdue scanner stopped")
			return ctx.Err()
		case <-ticker.C:
			if _, err := s.Sweep(ctx); err != nil {
				s.logger.Error("sweep failed", "error", err)
			}
		}
	}
}

// Sweep performs one complete pass and returns the number of TaskOverdue
// signals published. A page-level store error aborts the sweep (the next
// interval self-heals); a per-task failure is logged and skipped.
func (s *Scanner) Sweep(ctx context.Context) (int, error) {
	ctx, span := s.tracer.Start(ctx, "overdue.sweep")
	defer span.End()

	start := s.now()
	defer func() {
		sweepDuration.Observe(s.now().Sub(start).Seconds())
	}()

	published := 0
	for page := 0; ; page++ {
		batch, err := s.store.ListOverdue(ctx, start, page, s.pageSize)
		if err != nil {
			return published, fmt.Errorf("list overdue page %d: %w", page, err)
		}

		for _, task := range batch {
			if s.evaluateSafe(ctx, task) {
				published++
			}
		}

		if len(batch) < s.pageSize {
			break
		}
	}

	s.ledger.Compact(start)
	span.SetAttributes(attribute.Int("signals.published", published))

	if published > 0 {
		s.logger.Info("sweep complete", "signals_published", published)
	}
	return published, nil
}

// EvaluateTask runs one iteration of the per-task logic for a single task,
// re-verifying the overdue predicate against current store state. It backs
// the operational trigger endpoint. Returns true iff a signal was published.
func (s *Scanner) EvaluateTask(ctx context.Context, taskID id.TaskID) (bool, error) {
	task, err := s.store.GetTask(ctx, taskID)
	if err != nil {
		return false, fmt.Errorf("evaluate task %s: %w", taskID, err)
	}
	return s.evaluate(ctx, *task), nil
}

// evaluateSafe isolates one task's failure from the rest of the sweep.
func (s *Scanner) evaluateSafe(ctx context.Context, task domain.Task) (published bool) {
	defer func() {
		if r := recover(); r != nil {
			taskFailures.Inc()
			s.logger.Error("task evaluation panicked",
				"task_id", task.ID,
				"panic", r,
			)
			published = false
		}
	}()
	return s.evaluate(ctx, task)
}

// evaluate applies the per-task decision: still overdue, not yet notified
// today. The ledger entry is written before publishing, making the decision
// idempotent per calendar day regardless of what delivery later does.
func (s *Scanner) evaluate(ctx context.Context, task domain.Task) bool {
	now := s.now()
	if !task.Overdue(now) {
		return false
	}
	if !s.ledger.MarkIfDue(task.ID, now) {
		// Already notified this cycle-day.
		return false
	}

	today := domain.DateOf(now)
	due := domain.DateOf(*task.DueDate)
	daysOverdue := int(today.Sub(due) / (24 * time.Hour))

	s.bus.Publish(ctx, events.TaskOverdue{
		TaskID:      task.ID,
		ProjectID:   task.ProjectID,
		AssigneeID:  task.AssigneeID,
		DueDate:     *task.DueDate,
		DaysOverdue: daysOverdue,
	})
	signalsPublished.Inc()

	s.logger.Debug("task overdue signal published",
		"task_id", task.ID,
		"days_overdue", daysOverdue,
	)
	return true
}
