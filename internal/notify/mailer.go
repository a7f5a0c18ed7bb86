// Package notify renders and delivers overdue-task notifications.
package notify

import "context"

// Mailer is the template/transport contract the dispatcher depends on.
// Retry policy, if any, belongs to the transport behind Send.
type Mailer interface {
	Render(templateName string, data any) (string, error)
	Send(ctx context.Context, to, subject, body string) error
}
