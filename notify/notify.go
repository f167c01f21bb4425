package notify

import (
	"context"

	"github.com/wneessen/go-mail"

	"github.com/nyayagpt/nyaya/errors"
	"github.com/nyayagpt/nyaya/logger"
	"github.com/nyayagpt/nyaya/validation"
)

// DefaultSubject is used when a message has none.
const DefaultSubject = "Consultation Request — Legal Document"

// ErrMissingConfig is the Result error for an incomplete Config.
const ErrMissingConfig = "Missing SMTP configuration in environment."

// Message is an outbound email. HTML, when set, is sent as an alternative
// to the plain text body.
type Message struct {
	To      string `json:"to" validate:"required,email"`
	Subject string `json:"subject"`
	Body    string `json:"body" validate:"required"`
	HTML    string `json:"html,omitempty"`
}

// Result is the outcome of a send.
type Result struct {
	OK    bool   `json:"ok"`
	Error string `json:"error,omitempty"`
}

// Err converts a failed Result into a NOTIFICATION_FAILED error.
func (r Result) Err() error {
	if r.OK {
		return nil
	}
	return errors.NotificationFailed(r.Error, nil)
}

// Sender delivers messages.
type Sender interface {
	Send(ctx context.Context, msg Message) Result
}

// SMTPNotifier sends mail through an SMTP server with mandatory STARTTLS
// and PLAIN authentication.
type SMTPNotifier struct {
	cfg  Config
	send func(ctx context.Context, msg *mail.Msg) error
	log  *logger.Logger
}

var _ Sender = (*SMTPNotifier)(nil)

// NewSMTPNotifier creates a notifier. An incomplete cfg is accepted; every
// Send then fails with ErrMissingConfig.
func NewSMTPNotifier(cfg Config) *SMTPNotifier {
	cfg.ApplyDefaults()
	n := &SMTPNotifier{cfg: cfg, log: logger.WithComponent("notify")}
	n.send = n.dialAndSend
	return n
}

// Configured reports whether the notifier can send at all.
func (n *SMTPNotifier) Configured() bool { return n.cfg.Complete() }

// Send delivers msg. Failures are reported in the Result and logged.
func (n *SMTPNotifier) Send(ctx context.Context, msg Message) Result {
	log := n.log.WithContext(ctx).WithFields(logger.Fields("to", msg.To))

	if !n.cfg.Complete() {
		log.Warn("notification skipped", logger.Fields(logger.FieldError, ErrMissingConfig))
		return Result{Error: ErrMissingConfig}
	}
	if msg.Subject == "" {
		msg.Subject = DefaultSubject
	}
	if err := validation.Validate(msg); err != nil {
		log.Warn("notification rejected", logger.Fields(logger.FieldError, err.Error()))
		return Result{Error: err.Error()}
	}

	m, err := n.build(msg)
	if err != nil {
		log.Warn("notification rejected", logger.Fields(logger.FieldError, err.Error()))
		return Result{Error: err.Error()}
	}
	if err := n.send(ctx, m); err != nil {
		log.Error("notification failed", logger.Fields(logger.FieldError, err.Error()))
		return Result{Error: err.Error()}
	}

	log.Info("notification sent", logger.Fields("subject", msg.Subject))
	return Result{OK: true}
}

func (n *SMTPNotifier) build(msg Message) (*mail.Msg, error) {
	m := mail.NewMsg()
	if err := m.FromFormat(n.cfg.FromName, n.cfg.FromEmail); err != nil {
		return nil, err
	}
	if err := m.To(msg.To); err != nil {
		return nil, err
	}
	m.Subject(msg.Subject)
	m.SetBodyString(mail.TypeTextPlain, msg.Body)
	if msg.HTML != "" {
		m.AddAlternativeString(mail.TypeTextHTML, msg.HTML)
	}
	return m, nil
}

func (n *SMTPNotifier) dialAndSend(ctx context.Context, m *mail.Msg) error {
	client, err := mail.NewClient(n.cfg.Host,
		mail.WithPort(n.cfg.Port),
		mail.WithTLSPolicy(mail.TLSMandatory),
		mail.WithSMTPAuth(mail.SMTPAuthPlain),
		mail.WithUsername(n.cfg.User),
		mail.WithPassword(n.cfg.Pass),
		mail.WithTimeout(n.cfg.Timeout),
	)
	if err != nil {
		return err
	}
	return client.DialAndSendWithContext(ctx, m)
}
