package availability

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"golang.org/x/oauth2/google"
	"google.golang.org/api/calendar/v3"
	"google.golang.org/api/option"
)

var ErrCalendarNotConfigured = errors.New("availability: google calendar not configured")

// GoogleCalendar reads busy periods of a single calendar through the
// Calendar v3 free/busy endpoint.
type GoogleCalendar struct {
	srv        *calendar.Service
	calendarID string
}

// NewGoogleCalendar authenticates with a service-account key (JSON) using the
// read-only calendar scope. Extra options are appended after the credentials.
func NewGoogleCalendar(ctx context.Context, calendarID, serviceAccountKey string, opts ...option.ClientOption) (*GoogleCalendar, error) {
	if calendarID == "" || serviceAccountKey == "" {
		return nil, ErrCalendarNotConfigured
	}

	creds, err := google.CredentialsFromJSON(ctx, []byte(serviceAccountKey), calendar.CalendarReadonlyScope)
	if err != nil {
		return nil, fmt.Errorf("availability: parse service account key: %w", err)
	}

	clientOpts := append([]option.ClientOption{option.WithCredentials(creds)}, opts...)
	srv, err := calendar.NewService(ctx, clientOpts...)
	if err != nil {
		return nil, fmt.Errorf("availability: create calendar service: %w", err)
	}
	return NewGoogleCalendarWithService(srv, calendarID), nil
}

// NewGoogleCalendarWithService wraps an already constructed service.
func NewGoogleCalendarWithService(srv *calendar.Service, calendarID string) *GoogleCalendar {
	return &GoogleCalendar{srv: srv, calendarID: calendarID}
}

// Busy returns the calendar's busy periods between from and to.
func (g *GoogleCalendar) Busy(ctx context.Context, from, to time.Time) ([]BusyPeriod, error) {
	req := &calendar.FreeBusyRequest{
		TimeMin: from.Format(time.RFC3339),
		TimeMax: to.Format(time.RFC3339),
		Items:   []*calendar.FreeBusyRequestItem{{Id: g.calendarID}},
	}

	resp, err := g.srv.Freebusy.Query(req).Context(ctx).Do()
	if err != nil {
		return nil, fmt.Errorf("availability: freebusy query: %w", err)
	}

	cal, ok := resp.Calendars[g.calendarID]
	if !ok {
		return nil, fmt.Errorf("availability: calendar %q missing from freebusy response", g.calendarID)
	}
	if len(cal.Errors) > 0 {
		reasons := make([]string, 0, len(cal.Errors))
		for _, e := range cal.Errors {
			if e != nil {
				reasons = append(reasons, e.Domain+"/"+e.Reason)
			}
		}
		return nil, fmt.Errorf("availability: freebusy calendar errors: %s", strings.Join(reasons, ", "))
	}

	var periods []BusyPeriod
	for _, item := range cal.Busy {
		if item == nil {
			continue
		}
		start, err := time.Parse(time.RFC3339, item.Start)
		if err != nil {
			return nil, fmt.Errorf("availability: parse busy start %q: %w", item.Start, err)
		}
		end, err := time.Parse(time.RFC3339, item.End)
		if err != nil {
			return nil, fmt.Errorf("availability: parse busy end %q: %w", item.End, err)
		}
		periods = append(periods, BusyPeriod{Start: start, End: end})
	}
	return periods, nil
}
