package notify

import (
	"context"

	"github.com/jmillares/dental-booking-api/pkg/logging"
)

// EmailSender defines the interface for sending emails.
// Implementations can be swapped (SES, SMTP) without changing callers.
type EmailSender interface {
	Send(ctx context.Context, msg EmailMessage) error
}

// EmailMessage represents an email to be sent.
type EmailMessage struct {
	To      string
	ToName  string
	Subject string
	Body    string // Plain text body
	HTML    string // Optional HTML body
}

// LogSender logs emails instead of sending them. Used in development when no
// email provider is configured.
type LogSender struct {
	logger *logging.Logger
}

func NewLogSender(logger *logging.Logger) *LogSender {
	if logger == nil {
		logger = logging.Default()
	}
	return &LogSender{logger: logger}
}

func (s *LogSender) Send(ctx context.Context, msg EmailMessage) error {
	s.logger.Info("email (not sent, no provider configured)",
		"to", msg.To,
		"subject", msg.Subject,
	)
	return nil
}

var _ EmailSender = (*LogSender)(nil)
