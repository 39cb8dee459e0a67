package mailer

import (
	"context"
	"errors"
	"time"

	mg "github.com/mailgun/mailgun-go/v4"
)

// Sender delivers one rendered email.
type Sender interface {
	Send(ctx context.Context, to, subject, text, html string) error
}

// Mailgun wraps Mailgun client configuration.
type Mailgun struct {
	Domain  string
	APIKey  string
	Sender  string
	Timeout time.Duration

	client *mg.MailgunImpl
}

// NewMailgun builds a Mailgun sender. apiBase overrides the API endpoint
// (e.g. mg.APIBaseEU); empty keeps the default.
func NewMailgun(domain, apiKey, sender, apiBase string) *Mailgun {
	client := mg.NewMailgun(domain, apiKey)
	if apiBase != "" {
		client.SetAPIBase(apiBase)
	}
	return &Mailgun{Domain: domain, APIKey: apiKey, Sender: sender, Timeout: 10 * time.Second, client: client}
}

// Send sends an email via Mailgun. html is optional; if provided it will be used as HTML body.
func (m *Mailgun) Send(ctx context.Context, to, subject, text, html string) error {
	msg := m.client.NewMessage(m.Sender, subject, text, to)
	if html != "" {
		msg.SetHtml(html)
	}
	c, cancel := context.WithTimeout(ctx, m.Timeout)
	defer cancel()
	_, _, err := m.client.Send(c, msg)
	return err
}

// SendJob renders job if it names a template and sends it through s.
func SendJob(ctx context.Context, s Sender, job EmailJob) error {
	if job.To == "" {
		return errors.New("mailer: empty recipient")
	}
	job, err := job.resolve()
	if err != nil {
		return err
	}
	if job.Subject == "" || job.Text == "" {
		return errors.New("mailer: job has no subject or body")
	}
	return s.Send(ctx, job.To, job.Subject, job.Text, job.HTML)
}
