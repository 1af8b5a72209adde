package notify

import (
	"bytes"
	"context"
	"encoding/base64"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"go.uber.org/zap"

	"benessere-booking/internal/invite"
	"benessere-booking/internal/logging"
)

const DefaultZeptoMailAPIURL = "https://api.zeptomail.com/v1.1/email"

type ZeptoMailConfig struct {
	Token     string
	FromEmail string
	FromName  string
	APIURL    string
}

// ZeptoMailSender sends through the ZeptoMail transactional email API.
type ZeptoMailSender struct {
	cfg    ZeptoMailConfig
	client *http.Client
	logger *zap.Logger
}

// NewZeptoMailSender returns a sender posting to cfg.APIURL. A nil client
// gets a default one with a 15s timeout; callers still bound each send with
// their context.
func NewZeptoMailSender(cfg ZeptoMailConfig, client *http.Client, logger *zap.Logger) *ZeptoMailSender {
	if cfg.APIURL == "" {
		cfg.APIURL = DefaultZeptoMailAPIURL
	}
	if cfg.FromName == "" {
		cfg.FromName = "BEN&ESSERE"
	}
	if client == nil {
		client = &http.Client{Timeout: 15 * time.Second}
	}
	return &ZeptoMailSender{cfg: cfg, client: client, logger: logging.OrNop(logger)}
}

type zeptoAddress struct {
	Address string `json:"address"`
	Name    string `json:"name,omitempty"`
}

type zeptoRecipient struct {
	EmailAddress zeptoAddress `json:"email_address"`
}

type zeptoAttachment struct {
	Content  string `json:"content"`
	MimeType string `json:"mime_type"`
	Name     string `json:"name"`
}

type zeptoRequest struct {
	From        zeptoAddress      `json:"from"`
	To          []zeptoRecipient  `json:"to"`
	Subject     string            `json:"subject"`
	HTMLBody    string            `json:"htmlbody"`
	Attachments []zeptoAttachment `json:"attachments,omitempty"`
}

func (s *ZeptoMailSender) Send(ctx context.Context, msg EmailMessage) error {
	payload := zeptoRequest{
		From:     zeptoAddress{Address: s.cfg.FromEmail, Name: s.cfg.FromName},
		To:       []zeptoRecipient{{EmailAddress: zeptoAddress{Address: msg.To}}},
		Subject:  msg.Subject,
		HTMLBody: msg.HTML,
	}
	if len(msg.Attachment) > 0 {
		payload.Attachments = []zeptoAttachment{{
			Content:  base64.StdEncoding.EncodeToString(msg.Attachment),
			MimeType: invite.MIMEType,
			Name:     invite.FileName,
		}}
	}

	body, err := json.Marshal(payload)
	if err != nil {
		return fmt.Errorf("notify: encode zeptomail request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, s.cfg.APIURL, bytes.NewReader(body))
	if err != nil {
		return fmt.Errorf("notify: build zeptomail request: %w", err)
	}
	req.Header.Set("Authorization", "Zoho-enczapikey "+s.cfg.Token)
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Accept", "application/json")

	resp, err := s.client.Do(req)
	if err != nil {
		return fmt.Errorf("%w: zeptomail request: %w", ErrDelivery, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		snippet, _ := io.ReadAll(io.LimitReader(resp.Body, 2048))
		s.logger.Error("zeptomail returned error status",
			zap.Int("status", resp.StatusCode),
			zap.ByteString("body", snippet),
			zap.String("to", msg.To),
		)
		return fmt.Errorf("%w: zeptomail status %d", ErrDelivery, resp.StatusCode)
	}
	_, _ = io.Copy(io.Discard, resp.Body)

	s.logger.Info("email sent via zeptomail", zap.String("to", msg.To), zap.String("subject", msg.Subject))
	return nil
}
