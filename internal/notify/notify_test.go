package notify

import (
	"context"
	"encoding/base64"
	"encoding/json"
	"errors"
	"html/template"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zaptest/observer"

	"benessere-booking/internal/metrics"
)

const sampleICS = "BEGIN:VCALENDAR\r\nVERSION:2.0\r\nEND:VCALENDAR"

var renderer = Renderer{BusinessName: "BEN&ESSERE", TherapistName: "Larissa"}

func sampleDetails() Details {
	return Details{
		Name:        "Anna Rossi",
		Email:       "anna@example.com",
		Phone:       "+39 333 7654321",
		ServiceName: "Lotus Flow",
		Duration:    80,
		Date:        "2025-06-10",
		Time:        "14:00",
		Price:       110,
		CalendarURL: "https://calendar.google.com/calendar/render?action=TEMPLATE&text=x",
		Locale:      "it",
	}
}

type recordingSender struct {
	mu   sync.Mutex
	sent []EmailMessage
	err  error
}

func (r *recordingSender) Send(ctx context.Context, msg EmailMessage) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.err != nil {
		return r.err
	}
	r.sent = append(r.sent, msg)
	return nil
}

func emailCount(t *testing.T, reg *prometheus.Registry, recipient, status string) float64 {
	t.Helper()
	families, err := reg.Gather()
	require.NoError(t, err)
	for _, f := range families {
		if f.GetName() != "benessere_notify_emails_total" {
			continue
		}
		for _, m := range f.GetMetric() {
			labels := map[string]string{}
			for _, l := range m.GetLabel() {
				labels[l.GetName()] = l.GetValue()
			}
			if labels["recipient"] == recipient && labels["status"] == status {
				return m.GetCounter().GetValue()
			}
		}
	}
	return 0
}

func TestLookupFallsBackToEnglish(t *testing.T) {
	assert.Equal(t, "Ciao", Lookup("it").Greeting)
	assert.Equal(t, "Hallo", Lookup("de").Greeting)
	assert.Equal(t, "Hello", Lookup("en").Greeting)
	assert.Equal(t, "Hello", Lookup("fr").Greeting)
	assert.Equal(t, "Hello", Lookup("").Greeting)
	assert.True(t, Supported("de"))
	assert.False(t, Supported("fr"))
}

func TestTranslationsAreComplete(t *testing.T) {
	for locale, s := range translations {
		b, err := json.Marshal(s)
		require.NoError(t, err)
		var fields map[string]string
		require.NoError(t, json.Unmarshal(b, &fields))
		for name, v := range fields {
			assert.NotEmpty(t, v, "%s.%s", locale, name)
		}
	}
}

func TestRenderClient(t *testing.T) {
	d := sampleDetails()
	d.Notes = "Prima volta"

	r, err := renderer.RenderClient(d)
	require.NoError(t, err)

	assert.Equal(t, "Conferma Prenotazione - BEN&ESSERE", r.Subject)
	assert.Contains(t, r.HTML, "Ciao Anna Rossi,")
	assert.Contains(t, r.HTML, "80 Minuti")
	assert.Contains(t, r.HTML, "110&euro;")
	assert.Contains(t, r.HTML, "Prima volta")
	assert.Contains(t, r.HTML, "Aggiungi al Calendario")
	assert.Contains(t, r.HTML, `href="https://calendar.google.com/calendar/render?action=TEMPLATE&amp;text=x"`)
	assert.Contains(t, r.HTML, "BEN&amp;ESSERE")
}

func TestRenderClientOmitsEmptyNotesAndEscapesInput(t *testing.T) {
	d := sampleDetails()
	d.Name = `<script>alert("x")</script>`
	d.Locale = "xx"

	r, err := renderer.RenderClient(d)
	require.NoError(t, err)

	assert.Equal(t, "Booking Confirmation - BEN&ESSERE", r.Subject)
	assert.NotContains(t, r.HTML, "<script>")
	assert.Contains(t, r.HTML, "&lt;script&gt;")
	assert.NotContains(t, r.HTML, "<strong>Notes:</strong>")
}

func TestRenderOperator(t *testing.T) {
	d := sampleDetails()
	d.Locale = "de"
	d.Price = 75.5

	r, err := renderer.RenderOperator(d)
	require.NoError(t, err)

	assert.Equal(t, "Neue Buchung: Anna Rossi - Lotus Flow", r.Subject)
	assert.Contains(t, r.HTML, "Sie haben eine neue Buchung:")
	assert.Contains(t, r.HTML, "anna@example.com")
	assert.Contains(t, r.HTML, template.HTMLEscapeString(d.Phone))
	assert.NotContains(t, r.HTML, d.Phone)
	assert.Contains(t, r.HTML, "75.5&euro;")
	assert.NotContains(t, r.HTML, "Anmerkungen")
}

func TestZeptoMailSenderPostsMessage(t *testing.T) {
	var got zeptoRequest
	var auth string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		auth = r.Header.Get("Authorization")
		assert.Equal(t, http.MethodPost, r.Method)
		assert.Equal(t, "application/json", r.Header.Get("Content-Type"))
		require.NoError(t, json.NewDecoder(r.Body).Decode(&got))
		w.WriteHeader(http.StatusCreated)
		_, _ = io.WriteString(w, `{"data":[{"code":"EM_104","message":"Email request received"}]}`)
	}))
	defer srv.Close()

	s := NewZeptoMailSender(ZeptoMailConfig{
		Token:     "secret",
		FromEmail: "booking@benessere.example",
		APIURL:    srv.URL,
	}, srv.Client(), nil)

	err := s.Send(context.Background(), EmailMessage{
		To:         "anna@example.com",
		Subject:    "Hi",
		HTML:       "<p>Hi</p>",
		Attachment: []byte(sampleICS),
	})
	require.NoError(t, err)

	assert.Equal(t, "Zoho-enczapikey secret", auth)
	assert.Equal(t, "booking@benessere.example", got.From.Address)
	assert.Equal(t, "BEN&ESSERE", got.From.Name)
	require.Len(t, got.To, 1)
	assert.Equal(t, "anna@example.com", got.To[0].EmailAddress.Address)
	assert.Equal(t, "<p>Hi</p>", got.HTMLBody)
	require.Len(t, got.Attachments, 1)
	assert.Equal(t, "text/calendar", got.Attachments[0].MimeType)
	assert.Equal(t, "booking.ics", got.Attachments[0].Name)

	decoded, err := base64.StdEncoding.DecodeString(got.Attachments[0].Content)
	require.NoError(t, err)
	assert.Equal(t, sampleICS, string(decoded))
}

func TestZeptoMailSenderOmitsEmptyAttachments(t *testing.T) {
	var raw map[string]any
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.NoError(t, json.NewDecoder(r.Body).Decode(&raw))
		w.WriteHeader(http.StatusOK)
	}))
	defer srv.Close()

	s := NewZeptoMailSender(ZeptoMailConfig{Token: "t", FromEmail: "f@x.example", APIURL: srv.URL}, srv.Client(), nil)
	require.NoError(t, s.Send(context.Background(), EmailMessage{To: "a@x.example", Subject: "s", HTML: "h"}))
	assert.NotContains(t, raw, "attachments")
}

func TestZeptoMailSenderErrorStatus(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, `{"error":{"code":"TM_3201"}}`, http.StatusUnauthorized)
	}))
	defer srv.Close()

	core, logs := observer.New(zap.ErrorLevel)
	s := NewZeptoMailSender(ZeptoMailConfig{Token: "bad", FromEmail: "f@x.example", APIURL: srv.URL}, srv.Client(), zap.New(core))

	err := s.Send(context.Background(), EmailMessage{To: "a@x.example"})
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrDelivery)
	assert.Contains(t, err.Error(), "401")
	assert.Equal(t, 1, logs.Len())
}

func TestZeptoMailSenderHonorsContext(t *testing.T) {
	release := make(chan struct{})
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		select {
		case <-release:
		case <-r.Context().Done():
		}
	}))
	defer srv.Close()
	defer close(release)

	s := NewZeptoMailSender(ZeptoMailConfig{Token: "t", FromEmail: "f@x.example", APIURL: srv.URL}, srv.Client(), nil)
	ctx, cancel := context.WithTimeout(context.Background(), 20*time.Millisecond)
	defer cancel()

	err := s.Send(ctx, EmailMessage{To: "a@x.example"})
	assert.ErrorIs(t, err, ErrDelivery)
	assert.ErrorIs(t, err, context.DeadlineExceeded)
}

func TestSendGridSenderPostsMessage(t *testing.T) {
	var body map[string]any
	var auth, path string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		auth = r.Header.Get("Authorization")
		path = r.URL.Path
		require.NoError(t, json.NewDecoder(r.Body).Decode(&body))
		w.WriteHeader(http.StatusAccepted)
	}))
	defer srv.Close()

	s := NewSendGridSender(SendGridConfig{APIKey: "SG.key", FromEmail: "booking@benessere.example", Host: srv.URL}, nil)
	err := s.Send(context.Background(), EmailMessage{
		To:         "anna@example.com",
		Subject:    "Hi",
		HTML:       "<p>Hi</p>",
		Attachment: []byte(sampleICS),
	})
	require.NoError(t, err)

	assert.Equal(t, "Bearer SG.key", auth)
	assert.Equal(t, "/v3/mail/send", path)
	assert.Equal(t, "Hi", body["subject"])

	attachments, ok := body["attachments"].([]any)
	require.True(t, ok)
	require.Len(t, attachments, 1)
	att := attachments[0].(map[string]any)
	assert.Equal(t, "text/calendar", att["type"])
	assert.Equal(t, "booking.ics", att["filename"])
	assert.Equal(t, base64.StdEncoding.EncodeToString([]byte(sampleICS)), att["content"])
}

func TestSendGridSenderErrorStatus(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusForbidden)
		_, _ = io.WriteString(w, `{"errors":[{"message":"forbidden"}]}`)
	}))
	defer srv.Close()

	s := NewSendGridSender(SendGridConfig{APIKey: "SG.key", FromEmail: "f@x.example", Host: srv.URL}, nil)
	err := s.Send(context.Background(), EmailMessage{To: "a@x.example", HTML: "h"})
	assert.ErrorIs(t, err, ErrDelivery)
}

func TestSendGridSenderHonorsContext(t *testing.T) {
	release := make(chan struct{})
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		select {
		case <-release:
		case <-r.Context().Done():
		}
	}))
	defer srv.Close()
	defer close(release)

	s := NewSendGridSender(SendGridConfig{APIKey: "SG.key", FromEmail: "f@x.example", Host: srv.URL}, nil)
	ctx, cancel := context.WithTimeout(context.Background(), 20*time.Millisecond)
	defer cancel()

	err := s.Send(ctx, EmailMessage{To: "a@x.example", HTML: "h"})
	assert.ErrorIs(t, err, ErrDelivery)
	assert.ErrorIs(t, err, context.DeadlineExceeded)
}

func TestNewSenderSelection(t *testing.T) {
	cases := []struct {
		name string
		cfg  SenderConfig
		want any
	}{
		{"zeptomail", SenderConfig{Provider: "zeptomail", ZeptoMailToken: "t", ZeptoMailFromEmail: "f@x.example"}, &ZeptoMailSender{}},
		{"default provider", SenderConfig{ZeptoMailToken: "t", ZeptoMailFromEmail: "f@x.example"}, &ZeptoMailSender{}},
		{"zeptomail missing sender", SenderConfig{Provider: "zeptomail", ZeptoMailToken: "t"}, &LogSender{}},
		{"zeptomail missing token", SenderConfig{Provider: "zeptomail", ZeptoMailFromEmail: "f@x.example"}, &LogSender{}},
		{"sendgrid", SenderConfig{Provider: "sendgrid", SendGridAPIKey: "k", SendGridFromEmail: "f@x.example"}, &SendGridSender{}},
		{"sendgrid missing key", SenderConfig{Provider: "sendgrid", SendGridFromEmail: "f@x.example"}, &LogSender{}},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			assert.IsType(t, tc.want, NewSender(tc.cfg, nil))
		})
	}
}

func TestDispatcherUnconfiguredAlwaysSucceeds(t *testing.T) {
	reg := prometheus.NewRegistry()
	m := metrics.New(reg)
	core, logs := observer.New(zap.InfoLevel)
	d := NewDispatcher(DispatcherOptions{
		Sender:        NewSender(SenderConfig{}, zap.New(core)),
		Renderer:      renderer,
		OperatorEmail: "larissa@benessere.example",
		Logger:        zap.New(core),
		Metrics:       m,
	})

	out, err := d.NotifyClient(context.Background(), sampleDetails(), sampleICS)
	require.NoError(t, err)
	assert.Equal(t, Outcome{Recipient: RecipientClient, Status: StatusMock}, out)

	out, err = d.NotifyOperator(context.Background(), sampleDetails(), sampleICS)
	require.NoError(t, err)
	assert.Equal(t, Outcome{Recipient: RecipientOperator, Status: StatusMock}, out)

	assert.Equal(t, 2, logs.FilterMessage("email provider not configured, would have sent email").Len())
	assert.Equal(t, 1.0, emailCount(t, reg, "client", "mock"))
}

func TestDispatcherSendsBothWithSameAttachment(t *testing.T) {
	rec := &recordingSender{}
	d := NewDispatcher(DispatcherOptions{Sender: rec, Renderer: renderer, OperatorEmail: "larissa@benessere.example"})

	out, err := d.NotifyClient(context.Background(), sampleDetails(), sampleICS)
	require.NoError(t, err)
	assert.Equal(t, StatusSent, out.Status)

	out, err = d.NotifyOperator(context.Background(), sampleDetails(), sampleICS)
	require.NoError(t, err)
	assert.Equal(t, StatusSent, out.Status)

	require.Len(t, rec.sent, 2)
	assert.Equal(t, "anna@example.com", rec.sent[0].To)
	assert.Equal(t, "larissa@benessere.example", rec.sent[1].To)
	assert.True(t, strings.HasPrefix(rec.sent[1].Subject, "Nuova Prenotazione: "))
	assert.Equal(t, rec.sent[0].Attachment, rec.sent[1].Attachment)
	assert.Equal(t, sampleICS, string(rec.sent[0].Attachment))
}

func TestDispatcherSkipsOperatorWithoutAddress(t *testing.T) {
	rec := &recordingSender{}
	reg := prometheus.NewRegistry()
	m := metrics.New(reg)
	d := NewDispatcher(DispatcherOptions{Sender: rec, Renderer: renderer, Metrics: m})

	out, err := d.NotifyOperator(context.Background(), sampleDetails(), sampleICS)
	require.NoError(t, err)
	assert.Equal(t, Outcome{Recipient: RecipientOperator, Status: StatusSkipped}, out)
	assert.Empty(t, rec.sent)
	assert.Equal(t, 1.0, emailCount(t, reg, "operator", "skipped"))
}

func TestDispatcherSurfacesDeliveryFailure(t *testing.T) {
	rec := &recordingSender{err: errors.Join(ErrDelivery, errors.New("status 500"))}
	reg := prometheus.NewRegistry()
	m := metrics.New(reg)
	d := NewDispatcher(DispatcherOptions{Sender: rec, Renderer: renderer, Metrics: m})

	out, err := d.NotifyClient(context.Background(), sampleDetails(), sampleICS)
	assert.ErrorIs(t, err, ErrDelivery)
	assert.Equal(t, StatusFailed, out.Status)
	assert.Equal(t, 1.0, emailCount(t, reg, "client", "failed"))
}
