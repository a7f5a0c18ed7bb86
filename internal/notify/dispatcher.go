package notify

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"

	"tracker/internal/events"
	"tracker/internal/tasks"
)

var (
	sentTotal = promauto.NewCounter(prometheus.CounterOpts{
		Name: "tracker_notifications_sent_total",
		Help: "Overdue notifications successfully handed to the mail transport",
	})

	failedTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "tracker_notifications_failed_total",
		Help: "Overdue notifications dropped, by reason",
	}, []string{"reason"})
)

// Dispatcher consumes TaskOverdue signals and delivers templated email. It
// runs on the bus's workers, so delivery never blocks the scanner. Every
// failure mode here is terminal for the signal: the ledger entry the scanner
// already wrote stands, and the task is reconsidered no earlier than the
// next calendar day.
type Dispatcher struct {
	store  tasks.Store
	mailer Mailer
	logger *slog.Logger
}

func NewDispatcher(store tasks.Store, mailer Mailer, logger *slog.Logger) *Dispatcher {
	return &Dispatcher{store: store, mailer: mailer, logger: logger}
}

// Register wires the dispatcher onto the bus. Called once at startup.
func (d *Dispatcher) Register(bus *events.Bus) {
	bus.Subscribe(events.TypeTaskOverdue, "notification-dispatcher", d.handleTaskOverdue)
}

func (d *Dispatcher) handleTaskOverdue(ctx context.Context, event events.Event) error {
	signal, ok := event.(events.TaskOverdue)
	if !ok {
		return nil
	}

	task, err := d.store.GetTask(ctx, signal.TaskID)
	if err != nil {
		// The task may have been deleted since the sweep; benign race.
		failedTotal.WithLabelValues("task_missing").Inc()
		d.logger.Warn("overdue task no longer resolvable",
			"task_id", signal.TaskID,
			"error", err,
		)
		return nil
	}

	if signal.AssigneeID.IsNil() {
		failedTotal.WithLabelValues("no_assignee").Inc()
		d.logger.Warn("task is overdue but has no assignee",
			"task_id", signal.TaskID,
			"task_title", task.Title,
		)
		return nil
	}

	assignee, err := d.store.GetUser(ctx, signal.AssigneeID)
	if err != nil || assignee.Email == "" {
		failedTotal.WithLabelValues("no_email").Inc()
		d.logger.Warn("task is overdue but assignee has no email",
			"task_id", signal.TaskID,
			"assignee_id", signal.AssigneeID,
		)
		return nil
	}

	projectName := ""
	if project, err := d.store.GetProject(ctx, signal.ProjectID); err == nil {
		projectName = project.Name
	}

	body, err := d.mailer.Render(TemplateTaskOverdue, overdueEmailData{
		AssigneeName: assignee.Name,
		TaskTitle:    task.Title,
		ProjectName:  projectName,
		DueDate:      signal.DueDate.Format("2006-01-02"),
		DaysOverdue:  signal.DaysOverdue,
	})
	if err != nil {
		failedTotal.WithLabelValues("render").Inc()
		d.logger.Error("failed to render overdue notification",
			"task_id", signal.TaskID,
			"error", err,
		)
		return nil
	}

	subject := fmt.Sprintf("Task Overdue: %s (%d days)", task.Title, signal.DaysOverdue)
	if err := d.mailer.Send(ctx, assignee.Email, subject, body); err != nil {
		// No retry here: the at-most-once-per-day ledger entry stands, and
		// delivery retries belong to the mail transport.
		failedTotal.WithLabelValues("send").Inc()
		d.logger.Error("failed to send overdue notification",
			"task_id", signal.TaskID,
			"assignee_id", signal.AssigneeID,
			"error", err,
		)
		return nil
	}

	sentTotal.Inc()
	d.logger.Info("overdue notification sent",
		"task_id", signal.TaskID,
		"days_overdue", signal.DaysOverdue,
	)
	return nil
}
