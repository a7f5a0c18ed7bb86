package notify

import (
	"context"
	"fmt"
	"net"
	"net/smtp"
	"strings"
	"text/template"

	"tracker/internal/platform/config"
)

// SMTPMailer delivers mail over plain SMTP. It carries the parsed template
// set so rendering and transport share one dependency from the dispatcher's
// point of view.
type SMTPMailer struct {
	cfg       config.SMTP
	templates *template.Template
}

func NewSMTPMailer(cfg config.SMTP) (*SMTPMailer, error) {
	templates, err := parseTemplates()
	if err != nil {
		return nil, err
	}
	return &SMTPMailer{cfg: cfg, templates: templates}, nil
}

func (m *SMTPMailer) Render(templateName string, data any) (string, error) {
	return render(m.templates, templateName, data)
}

func (m *SMTPMailer) Send(_ context.Context, to, subject, body string) error {
	recipients := []string{to}
	if m.cfg.AdminBCC != "" {
		recipients = append(recipients, m.cfg.AdminBCC)
	}

	var msg strings.Builder
	fmt.Fprintf(&msg, "From: %s\r\n", m.cfg.From)
	fmt.Fprintf(&msg, "To: %s\r\n", to)
	fmt.Fprintf(&msg, "Subject: %s\r\n", subject)
	msg.WriteString("MIME-Version: 1.0\r\n")
	msg.WriteString("Content-Type: text/plain; charset=UTF-8\r\n")
	msg.WriteString("\r\n")
	msg.WriteString(body)

	var auth smtp.Auth
	if m.cfg.Username != "" {
		auth = smtp.PlainAuth("", m.cfg.Username, m.cfg.Password, m.cfg.Host)
	}

	addr := net.JoinHostPort(m.cfg.Host, m.cfg.Port)
	if err := smtp.SendMail(addr, auth, m.cfg.From, recipients, []byte(msg.String())); err != nil {
		return fmt.Errorf("send mail to %s: %w", to, err)
	}
	return nil
}
