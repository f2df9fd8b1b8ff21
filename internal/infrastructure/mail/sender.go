package mail

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/shopforge/backend/internal/infrastructure/config"
	"go.uber.org/zap"
)

// ErrNoRecipients is returned when a message has no To address
var ErrNoRecipients = errors.New("mail message has no recipients")

// Message is a rendered email
type Message struct {
	To      []string
	Subject string
	HTML    string
	Text    string
}

// Validate checks the message can be sent
func (m Message) Validate() error {
	if len(m.To) == 0 {
		return ErrNoRecipients
	}
	for _, addr := range m.To {
		if !strings.Contains(addr, "@") {
			return fmt.Errorf("invalid recipient %q", addr)
		}
	}
	if m.Subject == "" {
		return errors.New("mail message has no subject")
	}
	return nil
}

// Sender delivers email
type Sender interface {
	Send(ctx context.Context, msg Message) error
}

// NewSender returns the sender selected by cfg.Driver
func NewSender(cfg config.MailConfig, logger *zap.Logger) (Sender, error) {
	switch cfg.Driver {
	case "", "log":
		return NewLogSender(logger), nil
	case "smtp":
		return NewSMTPSender(cfg, logger), nil
	default:
		return nil, fmt.Errorf("unknown mail driver %q", cfg.Driver)
	}
}

// LogSender writes messages to the log instead of delivering them
type LogSender struct {
	logger *zap.Logger
}

// NewLogSender creates a LogSender
func NewLogSender(logger *zap.Logger) *LogSender {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &LogSender{logger: logger.Named("mail")}
}

// Send logs the message headers and text body
func (s *LogSender) Send(ctx context.Context, msg Message) error {
	if err := msg.Validate(); err != nil {
		return err
	}
	if err := ctx.Err(); err != nil {
		return err
	}
	s.logger.Info("Email (log driver)",
		zap.Strings("to", msg.To),
		zap.String("subject", msg.Subject),
		zap.String("text", msg.Text))
	return nil
}

var (
	_ Sender = (*LogSender)(nil)
	_ Sender = (*SMTPSender)(nil)
)
