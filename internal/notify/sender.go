package notify

import (
	"context"
	"errors"

	"go.uber.org/zap"

	"benessere-booking/internal/logging"
)

// ErrDelivery wraps every failure reported by an email provider.
var ErrDelivery = errors.New("notify: email delivery failed")

// EmailMessage is one outbound email. Attachment, when set, is the raw
// iCalendar document; senders encode it for their provider.
type EmailMessage struct {
	To         string
	Subject    string
	HTML       string
	Attachment []byte
}

// Sender delivers a single email. Implementations can be swapped without
// changing callers.
type Sender interface {
	Send(ctx context.Context, msg EmailMessage) error
}

const (
	ProviderZeptoMail = "zeptomail"
	ProviderSendGrid  = "sendgrid"
)

type SenderConfig struct {
	Provider string
	FromName string

	ZeptoMailToken     string
	ZeptoMailFromEmail string
	ZeptoMailAPIURL    string

	SendGridAPIKey    string
	SendGridFromEmail string
}

// NewSender picks the configured provider. A provider without its credential
// or sender address yields a LogSender.
func NewSender(cfg SenderConfig, logger *zap.Logger) Sender {
	logger = logging.OrNop(logger)
	switch cfg.Provider {
	case ProviderSendGrid:
		if cfg.SendGridAPIKey != "" && cfg.SendGridFromEmail != "" {
			return NewSendGridSender(SendGridConfig{
				APIKey:    cfg.SendGridAPIKey,
				FromEmail: cfg.SendGridFromEmail,
				FromName:  cfg.FromName,
			}, logger)
		}
	default:
		if cfg.ZeptoMailToken != "" && cfg.ZeptoMailFromEmail != "" {
			return NewZeptoMailSender(ZeptoMailConfig{
				Token:     cfg.ZeptoMailToken,
				FromEmail: cfg.ZeptoMailFromEmail,
				FromName:  cfg.FromName,
				APIURL:    cfg.ZeptoMailAPIURL,
			}, nil, logger)
		}
	}
	logger.Warn("email provider not configured, emails will only be logged",
		zap.String("provider", cfg.Provider))
	return NewLogSender(logger)
}

// LogSender logs what would have been sent and always succeeds.
type LogSender struct {
	logger *zap.Logger
}

func NewLogSender(logger *zap.Logger) *LogSender {
	return &LogSender{logger: logging.OrNop(logger)}
}

func (s *LogSender) Send(ctx context.Context, msg EmailMessage) error {
	s.logger.Info("email provider not configured, would have sent email",
		zap.String("to", msg.To),
		zap.String("subject", msg.Subject),
		zap.Int("attachment_bytes", len(msg.Attachment)),
	)
	return nil
}
