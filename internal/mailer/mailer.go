// Package mailer sends account lifecycle emails over SMTP. Sends run on
// their own goroutines: a notification failure is logged and never reaches
// the request that triggered it.
package mailer

import (
	"fmt"
	"log/slog"
	"time"

	gomail "github.com/wneessen/go-mail"
	"golang.org/x/time/rate"

	"github.com/taskloop/taskloop-go/internal/config"
)

// SMTPMailer implements service.Mailer against a real SMTP endpoint.
type SMTPMailer struct {
	client  *gomail.Client
	from    string
	limiter *rate.Limiter
}

// New creates an SMTPMailer from configuration. Outbound sends are
// throttled to one per second with a small burst so a signup storm cannot
// flood the relay.
func New(cfg config.Config) (*SMTPMailer, error) {
	opts := []gomail.Option{
		gomail.WithPort(cfg.SMTPPort),
		gomail.WithSMTPAuth(gomail.SMTPAuthPlain),
		gomail.WithUsername(cfg.SMTPUser),
		gomail.WithPassword(cfg.SMTPPassword),
	}

	client, err := gomail.NewClient(cfg.SMTPHost, opts...)
	if err != nil {
		return nil, fmt.Errorf("creating smtp client: %w", err)
	}

	return &SMTPMailer{
		client:  client,
		from:    cfg.MailFrom,
		limiter: rate.NewLimiter(rate.Limit(1), 5),
	}, nil
}

// SendWelcome mails a new user after signup.
func (m *SMTPMailer) SendWelcome(email, name string) {
	m.send(email, "Thanks for joining in!",
		fmt.Sprintf("Welcome to the app, %s. Let me know how you get along with the app.", name))
}

// SendCancellation mails a user whose account was just deleted.
func (m *SMTPMailer) SendCancellation(email, name string) {
	m.send(email, "Account cancelled",
		fmt.Sprintf("Sorry to see you go %s. Please let us know what we could have done better to keep you. I hope to see you again!", name))
}

func (m *SMTPMailer) send(to, subject, body string) {
	go func() {
		r := m.limiter.Reserve()
		if !r.OK() {
			slog.Warn("mail dropped, limiter rejected send", "to", to, "subject", subject)
			return
		}
		time.Sleep(r.Delay())

		msg := gomail.NewMsg()
		if err := msg.From(m.from); err != nil {
			slog.Warn("mail send failed", "to", to, "error", err)
			return
		}
		if err := msg.To(to); err != nil {
			slog.Warn("mail send failed", "to", to, "error", err)
			return
		}
		msg.Subject(subject)
		msg.SetBodyString(gomail.TypeTextPlain, body)

		if err := m.client.DialAndSend(msg); err != nil {
			slog.Warn("mail send failed", "to", to, "subject", subject, "error", err)
		}
	}()
}
