// Package invite derives the calendar artifacts for an accepted booking: an
// iCalendar document for the email attachment and a Google Calendar link.
package invite

import (
	"fmt"
	"net/url"
	"strings"
	"time"

	ics "github.com/arran4/golang-ical"
	"github.com/google/uuid"

	"benessere-booking/internal/booking"
	"benessere-booking/internal/slots"
)

const (
	// LocalLayout formats floating (zone-less) iCalendar date-times.
	LocalLayout = "20060102T150405"

	MIMEType = "text/calendar"
	FileName = "booking.ics"

	googleRenderURL = "https://calendar.google.com/calendar/render"
)

// Event holds the fields shared by the invite document and the link.
type Event struct {
	Title       string
	Description string
	Date        string // YYYY-MM-DD
	Time        string // HH:MM
	Duration    int    // minutes
	Location    string
}

// Span returns the event's start and end as floating wall-clock values. They
// are carried in UTC and rendered without a zone.
func Span(date, clock string, duration int) (start, end time.Time, err error) {
	if duration <= 0 || duration > booking.MaxDurationMinutes {
		return time.Time{}, time.Time{}, fmt.Errorf("invite: duration must be 1-%d minutes, got %d", booking.MaxDurationMinutes, duration)
	}
	day, err := slots.ParseDate(date)
	if err != nil {
		return time.Time{}, time.Time{}, err
	}
	start, err = slots.At(day, clock, time.UTC)
	if err != nil {
		return time.Time{}, time.Time{}, err
	}
	return start, start.Add(time.Duration(duration) * time.Minute), nil
}

// Generator builds invite documents. The zero value is usable.
type Generator struct {
	// Domain qualifies generated UIDs.
	Domain string
	ProdID string
	Now    func() time.Time
}

func (g Generator) now() time.Time {
	if g.Now != nil {
		return g.Now()
	}
	return time.Now()
}

func (g Generator) uid() string {
	domain := g.Domain
	if domain == "" {
		domain = "benessere"
	}
	random := strings.ReplaceAll(uuid.NewString(), "-", "")
	return fmt.Sprintf("%d-%s@%s", g.now().UnixMilli(), random[:12], domain)
}

// BuildICS renders e as a single-event VCALENDAR with CRLF line endings.
// DTSTART and DTEND are floating local times.
func (g Generator) BuildICS(e Event) (string, error) {
	start, end, err := Span(e.Date, e.Time, e.Duration)
	if err != nil {
		return "", err
	}
	prodID := g.ProdID
	if prodID == "" {
		prodID = "-//BEN&ESSERE//Booking//EN"
	}

	cal := ics.NewCalendar()
	cal.SetProductId(prodID)
	cal.SetCalscale("GREGORIAN")
	cal.SetMethod(ics.MethodRequest)

	ev := cal.AddEvent(g.uid())
	ev.SetDtStampTime(g.now())
	ev.SetProperty(ics.ComponentPropertyDtStart, start.Format(LocalLayout))
	ev.SetProperty(ics.ComponentPropertyDtEnd, end.Format(LocalLayout))
	ev.SetSummary(normalizeNewlines(e.Title))
	ev.SetDescription(normalizeNewlines(e.Description))
	if e.Location != "" {
		ev.SetLocation(normalizeNewlines(e.Location))
	}
	ev.SetStatus(ics.ObjectStatusConfirmed)

	return cal.Serialize(), nil
}

// GoogleCalendarURL builds the "add to Google Calendar" template link.
func GoogleCalendarURL(e Event) (string, error) {
	start, end, err := Span(e.Date, e.Time, e.Duration)
	if err != nil {
		return "", err
	}
	params := [][2]string{
		{"action", "TEMPLATE"},
		{"text", e.Title},
		{"dates", start.Format(LocalLayout) + "/" + end.Format(LocalLayout)},
		{"details", e.Description},
		{"location", e.Location},
	}
	pairs := make([]string, 0, len(params))
	for _, p := range params {
		pairs = append(pairs, url.QueryEscape(p[0])+"="+url.QueryEscape(p[1]))
	}
	return googleRenderURL + "?" + strings.Join(pairs, "&"), nil
}

// Artifact is everything derived from one booking for the calendar.
type Artifact struct {
	ICS       string
	GoogleURL string
	Start     time.Time
	End       time.Time
}

// BuildArtifact renders e as an invite document and builds the link from the
// same event with linkDetails as its description, so title and span always
// agree. The link is built even when the document cannot be.
func (g Generator) BuildArtifact(e Event, linkDetails string) (Artifact, error) {
	link := e
	link.Description = linkDetails

	googleURL, err := GoogleCalendarURL(link)
	if err != nil {
		return Artifact{}, err
	}
	start, end, _ := Span(e.Date, e.Time, e.Duration)
	art := Artifact{GoogleURL: googleURL, Start: start, End: end}

	doc, err := g.BuildICS(e)
	if err != nil {
		return art, err
	}
	art.ICS = doc
	return art, nil
}

// Studio names the practice in invite titles and descriptions.
type Studio struct {
	BusinessName  string
	TherapistName string
	Location      string
}

// Event builds the invite event for r and the short public description used
// for the link. The invite description carries the client's contact details.
func (s Studio) Event(r booking.Request) (Event, string) {
	e := Event{
		Title: s.BusinessName + ": " + r.ServiceName,
		Description: fmt.Sprintf("Massage appointment with %s\n%s - %d min\nClient: %s\nPhone: %s",
			s.TherapistName, r.ServiceName, r.Duration, r.Name, r.Phone),
		Date:     r.Date,
		Time:     r.Time,
		Duration: r.Duration,
		Location: s.Location,
	}
	details := fmt.Sprintf("Massage appointment with %s - %s (%d min)", s.TherapistName, r.ServiceName, r.Duration)
	return e, details
}

var newlineNormalizer = strings.NewReplacer("\r\n", "\n", "\r", "\n")

func normalizeNewlines(s string) string {
	return newlineNormalizer.Replace(s)
}
