package tasks

import (
	"context"
	"sort"
	"sync"
	"time"

	"tracker/internal/domain"
	id "tracker/pkg/domain"
	"tracker/pkg/platform/sentinel"
)

// InMemoryStore is the test double and development fallback for the task
// store.
type InMemoryStore struct {
	mu       sync.RWMutex
	tasks    map[id.TaskID]domain.Task
	projects map[id.ProjectID]domain.Project
	users    map[id.UserID]domain.User
}

func NewInMemoryStore() *InMemoryStore {
	return &InMemoryStore{
		tasks:    make(map[id.TaskID]domain.Task),
		projects: make(map[id.ProjectID]domain.Project),
		users:    make(map[id.UserID]domain.User),
	}
}

// PutTask upserts a task; seed/test helper.
func (s *InMemoryStore) PutTask(task domain.Task) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.tasks[task.ID] = task
}

// PutProject upserts a project; seed/test helper.
func (s *InMemoryStore) PutProject(project domain.Project) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.projects[project.ID] = project
}

// PutUser upserts a user; seed/test helper.
func (s *InMemoryStore) PutUser(user domain.User) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.users[user.ID] = user
}

func (s *InMemoryStore) ListOverdue(_ context.Context, asOf time.Time, page, size int) ([]domain.Task, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var overdue []domain.Task
	for _, task := range s.tasks {
		if task.Overdue(asOf) {
			overdue = append(overdue, task)
		}
	}
	// Map iteration order is random; sort for stable paging within a sweep.
	sort.Slice(overdue, func(i, j int) bool {
		return overdue[i].ID.String() < overdue[j].ID.String()
	})

	start := page * size
	if start >= len(overdue) {
		return nil, nil
	}
	end := start + size
	if end > len(overdue) {
		end = len(overdue)
	}
	return append([]domain.Task{}, overdue[start:end]...), nil
}

func (s *InMemoryStore) GetTask(_ context.Context, taskID id.TaskID) (*domain.Task, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	task, ok := s.tasks[taskID]
	if !ok {
		return nil, sentinel.ErrNotFound
	}
	return &task, nil
}

func (s *InMemoryStore) GetProject(_ context.Context, projectID id.ProjectID) (*domain.Project, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	project, ok := s.projects[projectID]
	if !ok {
		return nil, sentinel.ErrNotFound
	}
	return &project, nil
}

func (s *InMemoryStore) GetUser(_ context.Context, userID id.UserID) (*domain.User, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	user, ok := s.users[userID]
	if !ok {
		return nil, sentinel.ErrNotFound
	}
	return &user, nil
}
