package notify

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/wneessen/go-mail"
)

// DefaultSMTPHost and DefaultSMTPPort target Gmail's implicit-SSL
// submission endpoint.
const (
	DefaultSMTPHost = "smtp.gmail.com"
	DefaultSMTPPort = 465
)

// Email sends alerts to a list of recipients over SMTP with implicit SSL.
type Email struct {
	Host     string
	Port     int
	From     string
	Password string
	To       []string
}

// Name implements [Notifier].
func (e *Email) Name() string { return "email" }

// Validate implements [Notifier].
func (e *Email) Validate() error {
	if e.From == "" {
		return errors.New("email: from address is required")
	}
	if e.Password == "" {
		return errors.New("email: password is required")
	}
	if len(e.To) == 0 {
		return errors.New("email: at least one recipient is required")
	}
	return nil
}

// Send implements [Notifier]. Each event is delivered as a plain-text
// message in a fresh SMTP session; no connection is kept between alerts.
func (e *Email) Send(ctx context.Context, event Event) error {
	msg := mail.NewMsg()
	if err := msg.From(e.From); err != nil {
		return fmt.Errorf("email: invalid sender: %w", err)
	}
	if err := msg.To(e.To...); err != nil {
		return fmt.Errorf("email: invalid recipient: %w", err)
	}
	msg.Subject(fmt.Sprintf("ALERT: %s is %s", event.Target, humanStatus(event.New)))
	msg.SetBodyString(mail.TypeTextPlain, formatEmailBody(event))

	host := e.Host
	if host == "" {
		host = DefaultSMTPHost
	}
	port := e.Port
	if port == 0 {
		port = DefaultSMTPPort
	}

	client, err := mail.NewClient(host,
		mail.WithPort(port),
		mail.WithSSL(),
		mail.WithSMTPAuth(mail.SMTPAuthPlain),
		mail.WithUsername(e.From),
		mail.WithPassword(e.Password),
	)
	if err != nil {
		return fmt.Errorf("email: create client: %w", err)
	}

	if err := client.DialAndSendWithContext(ctx, msg); err != nil {
		return fmt.Errorf("email: send: %w", err)
	}
	return nil
}

// formatEmailBody renders the plain-text alert body.
func formatEmailBody(event Event) string {
	var b strings.Builder
	b.WriteString("Monitor Alert!\n\n")
	fmt.Fprintf(&b, "Site: %s\n", event.Target)
	fmt.Fprintf(&b, "Previous Status: %s\n", humanStatus(event.Previous))
	fmt.Fprintf(&b, "New Status: %s\n", humanStatus(event.New))
	fmt.Fprintf(&b, "Link: %s\n", event.URL)
	if event.Detail != "" {
		fmt.Fprintf(&b, "\n%s\n", event.Detail)
	}
	return b.String()
}

// humanStatus renders a status value for human-facing alert text,
// e.g. "outage_detected" becomes "OUTAGE DETECTED".
func humanStatus(status string) string {
	return strings.ToUpper(strings.ReplaceAll(status, "_", " "))
}
