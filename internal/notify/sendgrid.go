package notify

import (
	"context"
	"encoding/base64"
	"fmt"
	"net/http"

	"github.com/sendgrid/sendgrid-go"
	"github.com/sendgrid/sendgrid-go/helpers/mail"
	"go.uber.org/zap"

	"benessere-booking/internal/invite"
	"benessere-booking/internal/logging"
)

const defaultSendGridHost = "https://api.sendgrid.com"

type SendGridConfig struct {
	APIKey    string
	FromEmail string
	FromName  string
	// Host overrides the API host, e.g. for a local fake.
	Host string
}

// SendGridSender sends emails via the SendGrid v3 API.
type SendGridSender struct {
	cfg    SendGridConfig
	logger *zap.Logger
}

func NewSendGridSender(cfg SendGridConfig, logger *zap.Logger) *SendGridSender {
	if cfg.FromName == "" {
		cfg.FromName = "BEN&ESSERE"
	}
	if cfg.Host == "" {
		cfg.Host = defaultSendGridHost
	}
	return &SendGridSender{cfg: cfg, logger: logging.OrNop(logger)}
}

func (s *SendGridSender) message(msg EmailMessage) *mail.SGMailV3 {
	from := mail.NewEmail(s.cfg.FromName, s.cfg.FromEmail)
	to := mail.NewEmail("", msg.To)
	m := mail.NewV3MailInit(from, msg.Subject, to, mail.NewContent("text/html", msg.HTML))

	if len(msg.Attachment) > 0 {
		a := mail.NewAttachment()
		a.SetContent(base64.StdEncoding.EncodeToString(msg.Attachment))
		a.SetType(invite.MIMEType)
		a.SetFilename(invite.FileName)
		a.SetDisposition("attachment")
		m.AddAttachment(a)
	}
	return m
}

func (s *SendGridSender) Send(ctx context.Context, msg EmailMessage) error {
	req := sendgrid.GetRequest(s.cfg.APIKey, "/v3/mail/send", s.cfg.Host)
	req.Method = http.MethodPost
	req.Body = mail.GetRequestBody(s.message(msg))

	resp, err := sendgrid.MakeRequestWithContext(ctx, req)
	if err != nil {
		s.logger.Error("sendgrid send failed", zap.Error(err), zap.String("to", msg.To))
		return fmt.Errorf("%w: sendgrid request: %w", ErrDelivery, err)
	}
	if resp.StatusCode >= 400 {
		s.logger.Error("sendgrid returned error status",
			zap.Int("status", resp.StatusCode),
			zap.String("body", resp.Body),
			zap.String("to", msg.To),
		)
		return fmt.Errorf("%w: sendgrid status %d", ErrDelivery, resp.StatusCode)
	}

	s.logger.Info("email sent via sendgrid",
		zap.String("to", msg.To),
		zap.String("subject", msg.Subject),
		zap.Int("status", resp.StatusCode),
	)
	return nil
}
