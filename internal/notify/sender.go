package notify

import (
	"context"
	"errors"
	"fmt"
	"net/smtp"
	"time"

	"github.com/go-resty/resty/v2"
	"github.com/jordan-wright/email"

	"reservation-monitor-backend/config"
)

// Sender delivers one payload to one recipient. Implementations must be
// independent per recipient so that a failing address never blocks others.
type Sender interface {
	Send(ctx context.Context, recipient string, p Payload) error
}

// ErrNotConfigured is returned by senders whose transport settings are absent.
var ErrNotConfigured = errors.New("notify: transport not configured")

// EmailSender sends the payload as a plain-text email over SMTP.
type EmailSender struct {
	cfg config.SMTPConfig
}

// NewEmailSender creates an SMTP-backed sender.
func NewEmailSender(cfg config.SMTPConfig) *EmailSender {
	return &EmailSender{cfg: cfg}
}

func (s *EmailSender) Send(ctx context.Context, recipient string, p Payload) error {
	if s.cfg.Host == "" || s.cfg.Username == "" {
		return ErrNotConfigured
	}
	if err := ctx.Err(); err != nil {
		return err
	}

	from := s.cfg.From
	if from == "" {
		from = s.cfg.Username
	}

	mail := email.NewEmail()
	mail.From = from
	mail.To = []string{recipient}
	mail.Subject = p.Subject
	mail.Text = []byte(p.Body)

	addr := fmt.Sprintf("%s:%d", s.cfg.Host, s.cfg.Port)
	auth := smtp.PlainAuth("", s.cfg.Username, s.cfg.Password, s.cfg.Host)
	if err := mail.Send(addr, auth); err != nil {
		return fmt.Errorf("failed to send email to %s: %w", recipient, err)
	}
	return nil
}

// EdgeSender relays the payload to an edge function that owns the actual
// mail account. The dispatcher falls back to direct SMTP when the relay
// rejects a recipient.
type EdgeSender struct {
	client *resty.Client
	url    string
}

// NewEdgeSender creates the relay client. Returns a sender that always
// fails with ErrNotConfigured when the URL is empty.
func NewEdgeSender(cfg config.EdgeConfig) *EdgeSender {
	client := resty.New().
		SetTimeout(30 * time.Second).
		SetAuthToken(cfg.Token)
	return &EdgeSender{client: client, url: cfg.URL}
}

type edgeRequest struct {
	ReceiverEmail string `json:"receiver_email"`
	Subject       string `json:"subject"`
	Body          string `json:"body"`
}

func (s *EdgeSender) Send(ctx context.Context, recipient string, p Payload) error {
	if s.url == "" {
		return ErrNotConfigured
	}

	resp, err := s.client.R().
		SetContext(ctx).
		SetBody(edgeRequest{
			ReceiverEmail: recipient,
			Subject:       p.Subject,
			Body:          p.Body,
		}).
		Post(s.url)
	if err != nil {
		return fmt.Errorf("edge function call failed for %s: %w", recipient, err)
	}
	if resp.StatusCode() != 200 {
		return fmt.Errorf("edge function returned status %d for %s", resp.StatusCode(), recipient)
	}
	return nil
}
