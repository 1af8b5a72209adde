package notify

import (
	"context"
	"time"

	"go.uber.org/zap"

	"benessere-booking/internal/logging"
	"benessere-booking/internal/metrics"
)

type Recipient string

const (
	RecipientClient   Recipient = "client"
	RecipientOperator Recipient = "operator"
)

type Status string

const (
	StatusSent    Status = "sent"
	StatusMock    Status = "mock"
	StatusFailed  Status = "failed"
	StatusSkipped Status = "skipped"
)

// Outcome reports what happened to one booking email.
type Outcome struct {
	Recipient Recipient `json:"recipient"`
	Status    Status    `json:"status"`
}

type DispatcherOptions struct {
	Sender   Sender
	Renderer Renderer
	// OperatorEmail receives new-booking notices. Empty disables them.
	OperatorEmail string
	Timeout       time.Duration
	Logger        *zap.Logger
	Metrics       *metrics.Metrics
}

// Dispatcher renders and sends the two emails of an accepted booking.
type Dispatcher struct {
	sender        Sender
	renderer      Renderer
	operatorEmail string
	timeout       time.Duration
	logger        *zap.Logger
	metrics       *metrics.Metrics
}

func NewDispatcher(opts DispatcherOptions) *Dispatcher {
	logger := logging.OrNop(opts.Logger)
	if opts.Sender == nil {
		opts.Sender = NewLogSender(logger)
	}
	if opts.Timeout <= 0 {
		opts.Timeout = 10 * time.Second
	}
	return &Dispatcher{
		sender:        opts.Sender,
		renderer:      opts.Renderer,
		operatorEmail: opts.OperatorEmail,
		timeout:       opts.Timeout,
		logger:        logger,
		metrics:       opts.Metrics,
	}
}

// NotifyClient sends the localized confirmation with the invite attached.
func (d *Dispatcher) NotifyClient(ctx context.Context, details Details, ics string) (Outcome, error) {
	rendered, err := d.renderer.RenderClient(details)
	if err != nil {
		return d.finish(RecipientClient, err), err
	}
	return d.send(ctx, RecipientClient, details.Email, rendered, ics)
}

// NotifyOperator sends the new-booking notice. Without an operator address
// it is skipped and reports no error.
func (d *Dispatcher) NotifyOperator(ctx context.Context, details Details, ics string) (Outcome, error) {
	if d.operatorEmail == "" {
		d.logger.Debug("operator email not configured, skipping notice")
		return d.finish(RecipientOperator, nil), nil
	}
	rendered, err := d.renderer.RenderOperator(details)
	if err != nil {
		return d.finish(RecipientOperator, err), err
	}
	return d.send(ctx, RecipientOperator, d.operatorEmail, rendered, ics)
}

func (d *Dispatcher) send(ctx context.Context, recipient Recipient, to string, r Rendered, ics string) (Outcome, error) {
	sendCtx, cancel := context.WithTimeout(ctx, d.timeout)
	defer cancel()

	msg := EmailMessage{To: to, Subject: r.Subject, HTML: r.HTML}
	if ics != "" {
		msg.Attachment = []byte(ics)
	}

	err := d.sender.Send(sendCtx, msg)
	if err != nil {
		d.logger.Error("booking email not delivered",
			zap.String("recipient", string(recipient)),
			zap.Error(err),
		)
	}
	return d.finish(recipient, err), err
}

func (d *Dispatcher) finish(recipient Recipient, err error) Outcome {
	status := StatusSent
	switch {
	case err != nil:
		status = StatusFailed
	case recipient == RecipientOperator && d.operatorEmail == "":
		status = StatusSkipped
	default:
		if _, ok := d.sender.(*LogSender); ok {
			status = StatusMock
		}
	}
	d.metrics.ObserveEmail(string(recipient), string(status))
	return Outcome{Recipient: recipient, Status: status}
}
