package notify

import (
	"bytes"
	"fmt"
	"text/template"
)

// TemplateTaskOverdue is the named template the dispatcher renders. Its
// contract is exactly the fields of overdueEmailData.
const TemplateTaskOverdue = "task-overdue"

const taskOverdueBody = `Hello {{.AssigneeName}},

The task "{{.TaskTitle}}" in project "{{.ProjectName}}" was due on {{.DueDate}}
and is now {{.DaysOverdue}} day(s) overdue.

Please update its status or due date in the tracker.
`

type overdueEmailData struct {
	AssigneeName string
	TaskTitle    string
	ProjectName  string
	DueDate      string
	DaysOverdue  int
}

func parseTemplates() (*template.Template, error) {
	root := template.New("notify")
	if _, err := root.New(TemplateTaskOverdue).Parse(taskOverdueBody); err != nil {
		return nil, fmt.Errorf("parse %s template: %w", TemplateTaskOverdue, err)
	}
	return root, nil
}

func render(templates *template.Template, name string, data any) (string, error) {
	var buf bytes.Buffer
	if err := templates.ExecuteTemplate(&buf, name, data); err != nil {
		return "", fmt.Errorf("render template %q: %w", name, err)
	}
	return buf.String(), nil
}
