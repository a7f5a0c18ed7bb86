//go:build integration

package tasks_test

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/suite"

	"tracker/internal/domain"
	"tracker/internal/tasks"
	id "tracker/pkg/domain"
	"tracker/pkg/platform/sentinel"
	"tracker/pkg/testutil/containers"
)

const trackerSchema = `
	CREATE TABLE IF NOT EXISTS projects (
	    id          UUID PRIMARY KEY,
	    name        TEXT NOT NULL,
	    description TEXT NOT NULL DEFAULT '',
	    status      TEXT NOT NULL,
	    deadline    TIMESTAMPTZ,
	    created_at  TIMESTAMPTZ NOT NULL,
	    updated_at  TIMESTAMPTZ NOT NULL
	);
	CREATE TABLE IF NOT EXISTS users (
	    id         UUID PRIMARY KEY,
	    name       TEXT NOT NULL,
	    email      TEXT NOT NULL DEFAULT '',
	    role       TEXT NOT NULL,
	    created_at TIMESTAMPTZ NOT NULL
	);
	CREATE TABLE IF NOT EXISTS tasks (
	    id          UUID PRIMARY KEY,
	    project_id  UUID NOT NULL,
	    assignee_id UUID,
	    title       TEXT NOT NULL,
	    description TEXT NOT NULL DEFAULT '',
	    status      TEXT NOT NULL,
	    priority    TEXT NOT NULL,
	    due_date    TIMESTAMPTZ,
	    created_at  TIMESTAMPTZ NOT NULL,
	    updated_at  TIMESTAMPTZ NOT NULL
	)
`

type PostgresStoreSuite struct {
	suite.Suite
	postgres *containers.PostgresContainer
	store    *tasks.PostgresStore
	now      time.Time
}

func TestPostgresStoreSuite(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping integration test in short mode")
	}
	suite.Run(t, new(PostgresStoreSuite))
}

func (s *PostgresStoreSuite) SetupSuite() {
	s.postgres = containers.NewPostgresContainer(s.T())
	s.Require().NoError(s.postgres.Apply(context.Background(), trackerSchema))
	s.store = tasks.NewPostgresStore(s.postgres.DB)
	s.now = time.Date(2026, 8, 31, 9, 0, 0, 0, time.UTC)
}

func (s *PostgresStoreSuite) SetupTest() {
	s.Require().NoError(s.postgres.TruncateTables(context.Background(),
		"tasks", "projects", "users"))
}

func (s *PostgresStoreSuite) insertTask(task domain.Task) {
	var assignee any
	if !task.AssigneeID.IsNil() {
		assignee = uuid.UUID(task.AssigneeID)
	}
	var due any
	if task.DueDate != nil {
		due = *task.DueDate
	}
	_, err := s.postgres.DB.ExecContext(context.Background(), `
		INSERT INTO tasks (id, project_id, assignee_id, title, description,
		                   status, priority, due_date, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)`,
		uuid.UUID(task.ID), uuid.UUID(task.ProjectID), assignee,
		task.Title, task.Description, string(task.Status), string(task.Priority),
		due, s.now, s.now,
	)
	s.Require().NoError(err)
}

func (s *PostgresStoreSuite) newTask(due *time.Time, status domain.Status) domain.Task {
	return domain.Task{
		ID:         id.NewTaskID(),
		ProjectID:  id.NewProjectID(),
		AssigneeID: id.NewUserID(),
		Title:      "Ship release notes",
		Status:     status,
		Priority:   domain.PriorityMedium,
		DueDate:    due,
	}
}

func (s *PostgresStoreSuite) TestListOverdueFilters() {
	ctx := context.Background()
	yesterday := s.now.Add(-24 * time.Hour)
	future := s.now.Add(48 * time.Hour)

	overdue := s.newTask(&yesterday, domain.StatusInProgress)
	s.insertTask(overdue)
	s.insertTask(s.newTask(&yesterday, domain.StatusDone))
	s.insertTask(s.newTask(nil, domain.StatusTodo))
	s.insertTask(s.newTask(&future, domain.StatusTodo))

	batch, err := s.store.ListOverdue(ctx, s.now, 0, 10)
	s.Require().NoError(err)
	s.Require().Len(batch, 1)
	s.Equal(overdue.ID, batch[0].ID)
	s.Equal(overdue.AssigneeID, batch[0].AssigneeID)
	s.Require().NotNil(batch[0].DueDate)
	s.True(batch[0].DueDate.Equal(yesterday))
}

func (s *PostgresStoreSuite) TestListOverduePaging() {
	ctx := context.Background()
	yesterday := s.now.Add(-24 * time.Hour)

	for i := 0; i < 5; i++ {
		s.insertTask(s.newTask(&yesterday, domain.StatusTodo))
	}

	seen := map[id.TaskID]bool{}
	for page := 0; ; page++ {
		batch, err := s.store.ListOverdue(ctx, s.now, page, 2)
		s.Require().NoError(err)
		for _, task := range batch {
			s.False(seen[task.ID], "task %s returned twice", task.ID)
			seen[task.ID] = true
		}
		if len(batch) < 2 {
			break
		}
	}
	s.Len(seen, 5, "paging must cover every overdue task exactly once")
}

func (s *PostgresStoreSuite) TestGetTaskNullColumns() {
	task := s.newTask(nil, domain.StatusTodo)
	task.AssigneeID = id.UserID{}
	s.insertTask(task)

	got, err := s.store.GetTask(context.Background(), task.ID)
	s.Require().NoError(err)
	s.True(got.AssigneeID.IsNil())
	s.Nil(got.DueDate)
}

func (s *PostgresStoreSuite) TestLookupsNotFound() {
	ctx := context.Background()

	_, err := s.store.GetTask(ctx, id.NewTaskID())
	s.Require().ErrorIs(err, sentinel.ErrNotFound)
	_, err = s.store.GetProject(ctx, id.NewProjectID())
	s.Require().ErrorIs(err, sentinel.ErrNotFound)
	_, err = s.store.GetUser(ctx, id.NewUserID())
	s.Require().ErrorIs(err, sentinel.ErrNotFound)
}

func (s *PostgresStoreSuite) TestGetProjectAndUser() {
	ctx := context.Background()

	project := domain.Project{
		ID:     id.NewProjectID(),
		Name:   "Atlas",
		Status: domain.ProjectActive,
	}
	_, err := s.postgres.DB.ExecContext(ctx, `
		INSERT INTO projects (id, name, description, status, deadline, created_at, updated_at)
		VALUES ($1, $2, $3, $4, NULL, $5, $5)`,
		uuid.UUID(project.ID), project.Name, project.Description, string(project.Status), s.now,
	)
	s.Require().NoError(err)

	user := domain.User{
		ID:    id.NewUserID(),
		Name:  "Dana",
		Email: "dana@example.com",
		Role:  domain.RoleDeveloper,
	}
	_, err = s.postgres.DB.ExecContext(ctx, `
		INSERT INTO users (id, name, email, role, created_at)
		VALUES ($1, $2, $3, $4, $5)`,
		uuid.UUID(user.ID), user.Name, user.Email, string(user.Role), s.now,
	)
	s.Require().NoError(err)

	gotProject, err := s.store.GetProject(ctx, project.ID)
	s.Require().NoError(err)
	s.Equal(project.Name, gotProject.Name)
	s.Equal(domain.ProjectActive, gotProject.Status)
	s.Nil(gotProject.Deadline)

	gotUser, err := s.store.GetUser(ctx, user.ID)
	s.Require().NoError(err)
	s.Equal(user.Email, gotUser.Email)
	s.Equal(domain.RoleDeveloper, gotUser.Role)
}
