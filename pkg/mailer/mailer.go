// Package mailer delivers the platform's transactional email over SMTP. It
// consumes the jobs that the services enqueue on RabbitMQ.
package mailer

import (
	"fmt"
	"net/smtp"
	"strings"

	"tourly/pkg/rabbitmq"
)

// Config holds SMTP connection details.
type Config struct {
	Host     string
	Port     int
	Username string
	Password string
	From     string
}

// Mailer sends email jobs over a plain SMTP transport.
type Mailer struct {
	cfg Config
}

// New creates a Mailer from the given SMTP configuration.
func New(cfg Config) *Mailer {
	return &Mailer{cfg: cfg}
}

// Deliver renders and sends one email job. Used as the RabbitMQ consumer
// handler, so an error leaves the job on the queue for a retry.
func (m *Mailer) Deliver(job rabbitmq.EmailJob) error {
	subject, body := render(job)
	return m.send(job.To, subject, body)
}

func render(job rabbitmq.EmailJob) (subject, body string) {
	firstName := job.Name
	if i := strings.IndexByte(firstName, ' '); i > 0 {
		firstName = firstName[:i]
	}

	switch job.Kind {
	case rabbitmq.EmailPasswordReset:
		subject = "Your password reset token (valid for only 10 minutes)"
		body = fmt.Sprintf(
			"Hi %s,\n\nForgot your password? Submit a PATCH request with your new password to:\n%s\n\nIf you didn't forget your password, please ignore this email.\n",
			firstName, job.URL)
	default:
		subject = "Welcome to the Tourly Family!"
		body = fmt.Sprintf(
			"Hi %s,\n\nWelcome to Tourly, we're glad to have you!\nVisit your account page any time: %s\n",
			firstName, job.URL)
	}
	return subject, body
}

func (m *Mailer) send(to, subject, body string) error {
	msg := strings.Join([]string{
		"From: " + m.cfg.From,
		"To: " + to,
		"Subject: " + subject,
		"MIME-Version: 1.0",
		"Content-Type: text/plain; charset=\"utf-8\"",
		"",
		body,
	}, "\r\n")

	addr := fmt.Sprintf("%s:%d", m.cfg.Host, m.cfg.Port)

	var auth smtp.Auth
	if m.cfg.Username != "" {
		auth = smtp.PlainAuth("", m.cfg.Username, m.cfg.Password, m.cfg.Host)
	}

	if err := smtp.SendMail(addr, auth, m.cfg.From, []string{to}, []byte(msg)); err != nil {
		return fmt.Errorf("failed to send %q to %s: %w", subject, to, err)
	}
	return nil
}
