package notify

import (
	"bytes"
	"fmt"
	"html/template"
	"strconv"

	"benessere-booking/internal/booking"
)

// Details is what both booking emails show.
type Details struct {
	Name        string
	Email       string
	Phone       string
	ServiceName string
	Duration    int
	Date        string
	Time        string
	Price       float64
	Notes       string
	CalendarURL string
	Locale      string
}

func NewDetails(r booking.Request, calendarURL string) Details {
	return Details{
		Name:        r.Name,
		Email:       r.Email,
		Phone:       r.Phone,
		ServiceName: r.ServiceName,
		Duration:    r.Duration,
		Date:        r.Date,
		Time:        r.Time,
		Price:       r.Price,
		Notes:       r.Notes,
		CalendarURL: calendarURL,
		Locale:      r.Locale,
	}
}

// Rendered is a subject plus HTML body.
type Rendered struct {
	Subject string
	HTML    string
}

// Renderer fills the email templates. BusinessName and TherapistName appear
// in the header.
type Renderer struct {
	BusinessName  string
	TherapistName string
}

type view struct {
	Details
	T          Strings
	Business   string
	Therapist  string
	PriceLabel string
}

func (r Renderer) view(d Details) view {
	return view{
		Details:    d,
		T:          Lookup(d.Locale),
		Business:   r.BusinessName,
		Therapist:  r.TherapistName,
		PriceLabel: strconv.FormatFloat(d.Price, 'f', -1, 64),
	}
}

// RenderClient builds the confirmation sent to the person who booked.
func (r Renderer) RenderClient(d Details) (Rendered, error) {
	v := r.view(d)
	html, err := execute(clientTmpl, v)
	if err != nil {
		return Rendered{}, err
	}
	return Rendered{Subject: v.T.Subject, HTML: html}, nil
}

// RenderOperator builds the new-booking notice for the therapist.
func (r Renderer) RenderOperator(d Details) (Rendered, error) {
	v := r.view(d)
	html, err := execute(operatorTmpl, v)
	if err != nil {
		return Rendered{}, err
	}
	return Rendered{
		Subject: fmt.Sprintf("%s: %s - %s", v.T.NotifySubject, d.Name, d.ServiceName),
		HTML:    html,
	}, nil
}

func execute(t *template.Template, v view) (string, error) {
	var buf bytes.Buffer
	if err := t.Execute(&buf, v); err != nil {
		return "", fmt.Errorf("notify: render %s: %w", t.Name(), err)
	}
	return buf.String(), nil
}

var clientTmpl = template.Must(template.New("client").Parse(`<!DOCTYPE html>
<html>
<head><meta charset="utf-8"><meta name="viewport" content="width=device-width, initial-scale=1.0"></head>
<body style="margin:0;padding:0;background-color:#faf6f3;font-family:'Helvetica Neue',Arial,sans-serif;">
  <div style="max-width:560px;margin:0 auto;padding:40px 24px;">
    <div style="text-align:center;margin-bottom:32px;">
      <h1 style="font-family:Georgia,serif;font-size:28px;color:#3d2c2c;margin:0;">{{.Business}}</h1>
      <p style="font-size:12px;color:#8a7a72;letter-spacing:3px;margin:4px 0 0;">by {{.Therapist}}</p>
    </div>
    <div style="background:#ffffff;border-radius:12px;padding:32px;border:1px solid #e8ddd6;">
      <p style="font-size:16px;color:#3d2c2c;margin:0 0 8px;">{{.T.Greeting}} {{.Name}},</p>
      <p style="font-size:15px;color:#8a7a72;margin:0 0 24px;">{{.T.Confirmation}}</p>
      <table style="width:100%;border-collapse:collapse;">
        <tr><td style="padding:10px 0;border-bottom:1px solid #f0e8e2;font-size:13px;color:#8a7a72;">{{.T.Service}}</td><td style="padding:10px 0;border-bottom:1px solid #f0e8e2;font-size:14px;color:#3d2c2c;font-weight:600;text-align:right;">{{.ServiceName}}</td></tr>
        <tr><td style="padding:10px 0;border-bottom:1px solid #f0e8e2;font-size:13px;color:#8a7a72;">{{.T.Duration}}</td><td style="padding:10px 0;border-bottom:1px solid #f0e8e2;font-size:14px;color:#3d2c2c;font-weight:600;text-align:right;">{{.Duration}} {{.T.Minutes}}</td></tr>
        <tr><td style="padding:10px 0;border-bottom:1px solid #f0e8e2;font-size:13px;color:#8a7a72;">{{.T.Date}}</td><td style="padding:10px 0;border-bottom:1px solid #f0e8e2;font-size:14px;color:#3d2c2c;font-weight:600;text-align:right;">{{.Date}}</td></tr>
        <tr><td style="padding:10px 0;border-bottom:1px solid #f0e8e2;font-size:13px;color:#8a7a72;">{{.T.Time}}</td><td style="padding:10px 0;border-bottom:1px solid #f0e8e2;font-size:14px;color:#3d2c2c;font-weight:600;text-align:right;">{{.Time}}</td></tr>
        <tr><td style="padding:10px 0;font-size:13px;color:#8a7a72;">{{.T.Price}}</td><td style="padding:10px 0;font-size:18px;color:#b5735f;font-weight:700;text-align:right;">{{.PriceLabel}}&euro;</td></tr>
      </table>
      {{- if .Notes}}
      <p style="margin:16px 0 0;padding:12px;background:#faf6f3;border-radius:8px;font-size:13px;color:#8a7a72;"><strong>{{.T.Notes}}:</strong> {{.Notes}}</p>
      {{- end}}
      <div style="text-align:center;margin-top:28px;">
        <a href="{{.CalendarURL}}" target="_blank" style="display:inline-block;padding:12px 28px;background-color:#b5735f;color:#ffffff;text-decoration:none;border-radius:24px;font-size:14px;font-weight:600;">{{.T.AddToCalendar}}</a>
      </div>
    </div>
    <p style="text-align:center;font-size:13px;color:#8a7a72;margin:24px 0 0;">{{.T.Footer}}</p>
  </div>
</body>
</html>`))

var operatorTmpl = template.Must(template.New("operator").Parse(`<!DOCTYPE html>
<html>
<head><meta charset="utf-8"></head>
<body style="margin:0;padding:0;background-color:#faf6f3;font-family:'Helvetica Neue',Arial,sans-serif;">
  <div style="max-width:560px;margin:0 auto;padding:40px 24px;">
    <div style="text-align:center;margin-bottom:24px;">
      <h1 style="font-family:Georgia,serif;font-size:24px;color:#3d2c2c;margin:0;">{{.Business}}</h1>
    </div>
    <div style="background:#ffffff;border-radius:12px;padding:32px;border:1px solid #e8ddd6;">
      <p style="font-size:16px;color:#3d2c2c;font-weight:600;margin:0 0 16px;">{{.T.NotifyMessage}}</p>
      <table style="width:100%;border-collapse:collapse;">
        <tr><td style="padding:8px 0;font-size:13px;color:#8a7a72;">{{.T.Client}}</td><td style="padding:8px 0;font-size:14px;color:#3d2c2c;text-align:right;">{{.Name}}</td></tr>
        <tr><td style="padding:8px 0;font-size:13px;color:#8a7a72;">Email</td><td style="padding:8px 0;font-size:14px;color:#3d2c2c;text-align:right;">{{.Email}}</td></tr>
        <tr><td style="padding:8px 0;font-size:13px;color:#8a7a72;">{{.T.Phone}}</td><td style="padding:8px 0;font-size:14px;color:#3d2c2c;text-align:right;">{{.Phone}}</td></tr>
        <tr><td style="padding:8px 0;font-size:13px;color:#8a7a72;">{{.T.Service}}</td><td style="padding:8px 0;font-size:14px;color:#3d2c2c;text-align:right;">{{.ServiceName}}</td></tr>
        <tr><td style="padding:8px 0;font-size:13px;color:#8a7a72;">{{.T.Duration}}</td><td style="padding:8px 0;font-size:14px;color:#3d2c2c;text-align:right;">{{.Duration}} {{.T.Minutes}}</td></tr>
        <tr><td style="padding:8px 0;font-size:13px;color:#8a7a72;">{{.T.Date}}</td><td style="padding:8px 0;font-size:14px;color:#3d2c2c;text-align:right;">{{.Date}}</td></tr>
        <tr><td style="padding:8px 0;font-size:13px;color:#8a7a72;">{{.T.Time}}</td><td style="padding:8px 0;font-size:14px;color:#3d2c2c;text-align:right;">{{.Time}}</td></tr>
        <tr><td style="padding:8px 0;font-size:13px;color:#8a7a72;">{{.T.Price}}</td><td style="padding:8px 0;font-size:14px;color:#b5735f;font-weight:700;text-align:right;">{{.PriceLabel}}&euro;</td></tr>
        {{- if .Notes}}
        <tr><td style="padding:8px 0;font-size:13px;color:#8a7a72;">{{.T.Notes}}</td><td style="padding:8px 0;font-size:14px;color:#3d2c2c;text-align:right;">{{.Notes}}</td></tr>
        {{- end}}
      </table>
    </div>
  </div>
</body>
</html>`))
