package cache

import id "tracker/pkg/domain"

// Key scheme for the tracker caches. Point lookups are keyed by entity id;
// listing aggregates live under partition prefixes so they can be evicted
// wholesale when an embedded field changes.
const (
	ProjectListPrefix   = "projects:list:"
	ProjectStatusPrefix = "projects:status:"
)

// ProjectKey is the project-detail cache key.
func ProjectKey(projectID id.ProjectID) string {
	return "project:" + projectID.String()
}

// ProjectTasksKey caches the task listing of one project.
func ProjectTasksKey(projectID id.ProjectID) string {
	return "tasks:project:" + projectID.String()
}

// UserKey is the user-detail cache key.
func UserKey(userID id.UserID) string {
	return "user:" + userID.String()
}

// AuthKey caches authentication lookups, which are keyed by email.
func AuthKey(email string) string {
	return "auth:" + email
}
