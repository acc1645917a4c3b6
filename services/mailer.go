package services

import (
	"context"
	"fmt"
	"net/smtp"
	"strings"
	"sync"

	"github.com/kendall-kelly/autoparts-api/config"
	"github.com/kendall-kelly/autoparts-api/utils"
)

// Mailer sends transactional email
type Mailer interface {
	Send(ctx context.Context, to, subject, body string) error
}

// SMTPMailer sends mail through an SMTP relay with PLAIN auth
type SMTPMailer struct {
	host     string
	port     int
	username string
	password string
	from     string
}

// NewSMTPMailer creates an SMTPMailer from the SMTP_* settings
func NewSMTPMailer(cfg *config.Config) *SMTPMailer {
	return &SMTPMailer{
		host:     cfg.SMTPHost,
		port:     cfg.SMTPPort,
		username: cfg.SMTPUsername,
		password: cfg.SMTPPassword,
		from:     utils.FirstNonEmpty(cfg.SMTPFrom, cfg.SMTPUsername),
	}
}

// Send delivers a plain-text message
func (m *SMTPMailer) Send(ctx context.Context, to, subject, body string) error {
	if m.host == "" || m.from == "" {
		return utils.NewConfigError("SMTP_HOST and SMTP_FROM must be configured to send email")
	}
	if err := ctx.Err(); err != nil {
		return err
	}

	var auth smtp.Auth
	if m.username != "" {
		auth = smtp.PlainAuth("", m.username, m.password, m.host)
	}

	msg := strings.Join([]string{
		"From: " + m.from,
		"To: " + to,
		"Subject: " + subject,
		"MIME-Version: 1.0",
		"Content-Type: text/plain; charset=UTF-8",
		"",
		body,
	}, "\r\n")

	addr := fmt.Sprintf("%s:%d", m.host, m.port)
	if err := smtp.SendMail(addr, auth, m.from, []string{to}, []byte(msg)); err != nil {
		return utils.NewUpstreamError("failed to send email", err)
	}
	return nil
}

// SentMail is a message captured by MockMailer
type SentMail struct {
	To      string
	Subject string
	Body    string
}

// MockMailer records messages instead of sending them
type MockMailer struct {
	mu   sync.Mutex
	sent []SentMail

	// Err, when set, is returned by every Send call
	Err error
}

// NewMockMailer creates a MockMailer
func NewMockMailer() *MockMailer {
	return &MockMailer{}
}

// Send records the message
func (m *MockMailer) Send(_ context.Context, to, subject, body string) error {
	if m.Err != nil {
		return m.Err
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	m.sent = append(m.sent, SentMail{To: to, Subject: subject, Body: body})
	return nil
}

// Sent returns every recorded message
func (m *MockMailer) Sent() []SentMail {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]SentMail(nil), m.sent...)
}

// LastTo returns the most recent message sent to the address
func (m *MockMailer) LastTo(to string) (SentMail, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for i := len(m.sent) - 1; i >= 0; i-- {
		if m.sent[i].To == to {
			return m.sent[i], true
		}
	}
	return SentMail{}, false
}
