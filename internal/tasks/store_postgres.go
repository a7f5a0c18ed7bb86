package tasks

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"

	"tracker/internal/domain"
	id "tracker/pkg/domain"
	"tracker/pkg/platform/sentinel"
)

// PostgresStore reads tasks, projects and users from the CRUD service's
// Postgres schema.
type PostgresStore struct {
	db *sql.DB
}

func NewPostgresStore(db *sql.DB) *PostgresStore {
	return &PostgresStore{db: db}
}

func (s *PostgresStore) ListOverdue(ctx context.Context, asOf time.Time, page, size int) ([]domain.Task, error) {
	query := `
		SELECT id, project_id, assignee_id, title, description, status, priority,
		       due_date, created_at, updated_at
		FROM tasks
		WHERE due_date IS NOT NULL
		  AND due_date <= $1
		  AND status <> 'done'
		ORDER BY id
		LIMIT $2 OFFSET $3
	`
	rows, err := s.db.QueryContext(ctx, query, domain.DateOf(asOf), size, page*size)
	if err != nil {
		return nil, fmt.Errorf("list overdue tasks: %w", err)
	}
	defer rows.Close()

	var tasks []domain.Task
	for rows.Next() {
		task, err := scanTask(rows)
		if err != nil {
			return nil, err
		}
		tasks = append(tasks, task)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate overdue tasks: %w", err)
	}
	return tasks, nil
}

func (s *PostgresStore) GetTask(ctx context.Context, taskID id.TaskID) (*domain.Task, error) {
	query := `
		SELECT id, project_id, assignee_id, title, description, status, priority,
		       due_date, created_at, updated_at
		FROM tasks
		WHERE id = $1
	`
	row := s.db.QueryRowContext(ctx, query, uuid.UUID(taskID))
	task, err := scanTask(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("task %s: %w", taskID, sentinel.ErrNotFound)
	}
	if err != nil {
		return nil, err
	}
	return &task, nil
}

func (s *PostgresStore) GetProject(ctx context.Context, projectID id.ProjectID) (*domain.Project, error) {
	query := `
		SELECT id, name, description, status, deadline, created_at, updated_at
		FROM projects
		WHERE id = $1
	`
	var (
		project  domain.Project
		rawID    uuid.UUID
		deadline sql.NullTime
		status   string
	)
	err := s.db.QueryRowContext(ctx, query, uuid.UUID(projectID)).Scan(
		&rawID, &project.Name, &project.Description, &status,
		&deadline, &project.CreatedAt, &project.UpdatedAt,
	)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("project %s: %w", projectID, sentinel.ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("get project: %w", err)
	}
	project.ID = id.ProjectID(rawID)
	project.Status = domain.ProjectStatus(status)
	if deadline.Valid {
		d := deadline.Time
		project.Deadline = &d
	}
	return &project, nil
}

func (s *PostgresStore) GetUser(ctx context.Context, userID id.UserID) (*domain.User, error) {
	query := `SELECT id, name, email, role, created_at FROM users WHERE id = $1`

	var (
		user  domain.User
		rawID uuid.UUID
		role  string
	)
	err := s.db.QueryRowContext(ctx, query, uuid.UUID(userID)).Scan(
		&rawID, &user.Name, &user.Email, &role, &user.CreatedAt,
	)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("user %s: %w", userID, sentinel.ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("get user: %w", err)
	}
	user.ID = id.UserID(rawID)
	user.Role = domain.Role(role)
	return &user, nil
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanTask(row rowScanner) (domain.Task, error) {
	var (
		task       domain.Task
		rawID      uuid.UUID
		projectID  uuid.UUID
		assigneeID uuid.NullUUID
		status     string
		priority   string
		dueDate    sql.NullTime
	)
	err := row.Scan(
		&rawID, &projectID, &assigneeID, &task.Title, &task.Description,
		&status, &priority, &dueDate, &task.CreatedAt, &task.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return domain.Task{}, err
		}
		return domain.Task{}, fmt.Errorf("scan task: %w", err)
	}

	task.ID = id.TaskID(rawID)
	task.ProjectID = id.ProjectID(projectID)
	if assigneeID.Valid {
		task.AssigneeID = id.UserID(assigneeID.UUID)
	}
	task.Status = domain.Status(status)
	task.Priority = domain.Priority(priority)
	if dueDate.Valid {
		d := dueDate.Time
		task.DueDate = &d
	}
	return task, nil
}
