package availability

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"google.golang.org/api/calendar/v3"
	"google.golang.org/api/option"
)

const testCalendarID = "studio@group.calendar.google.com"

func newTestCalendar(t *testing.T, handler http.HandlerFunc) *GoogleCalendar {
	t.Helper()
	server := httptest.NewServer(handler)
	t.Cleanup(server.Close)

	srv, err := calendar.NewService(context.Background(),
		option.WithEndpoint(server.URL+"/"),
		option.WithoutAuthentication(),
	)
	require.NoError(t, err)
	return NewGoogleCalendarWithService(srv, testCalendarID)
}

func TestGoogleCalendarBusy(t *testing.T) {
	var received calendar.FreeBusyRequest
	gc := newTestCalendar(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPost, r.Method)
		assert.True(t, strings.HasSuffix(r.URL.Path, "freeBusy"), r.URL.Path)
		require.NoError(t, json.NewDecoder(r.Body).Decode(&received))

		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{
			"kind": "calendar#freeBusy",
			"calendars": {
				"studio@group.calendar.google.com": {
					"busy": [
						{"start": "2025-06-10T08:00:00Z", "end": "2025-06-10T09:00:00Z"},
						{"start": "2025-06-10T14:30:00+02:00", "end": "2025-06-10T15:00:00+02:00"}
					]
				}
			}
		}`))
	})

	from := time.Date(2025, 6, 10, 7, 0, 0, 0, time.UTC)
	to := time.Date(2025, 6, 10, 16, 0, 0, 0, time.UTC)
	busy, err := gc.Busy(context.Background(), from, to)
	require.NoError(t, err)

	require.Len(t, busy, 2)
	assert.True(t, busy[0].Start.Equal(time.Date(2025, 6, 10, 8, 0, 0, 0, time.UTC)))
	assert.True(t, busy[1].End.Equal(time.Date(2025, 6, 10, 13, 0, 0, 0, time.UTC)))

	assert.Equal(t, "2025-06-10T07:00:00Z", received.TimeMin)
	assert.Equal(t, "2025-06-10T16:00:00Z", received.TimeMax)
	require.Len(t, received.Items, 1)
	assert.Equal(t, testCalendarID, received.Items[0].Id)
}

func TestGoogleCalendarBusyCalendarErrors(t *testing.T) {
	gc := newTestCalendar(t, func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"calendars": {"studio@group.calendar.google.com": {"errors": [{"domain": "global", "reason": "notFound"}]}}}`))
	})

	_, err := gc.Busy(context.Background(), time.Now(), time.Now().Add(time.Hour))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "global/notFound")
}

func TestGoogleCalendarBusyMissingCalendar(t *testing.T) {
	gc := newTestCalendar(t, func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"calendars": {}}`))
	})

	_, err := gc.Busy(context.Background(), time.Now(), time.Now().Add(time.Hour))
	assert.Error(t, err)
}

func TestGoogleCalendarBusyHTTPError(t *testing.T) {
	gc := newTestCalendar(t, func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, `{"error": {"code": 500, "message": "backend"}}`, http.StatusInternalServerError)
	})

	_, err := gc.Busy(context.Background(), time.Now(), time.Now().Add(time.Hour))
	assert.Error(t, err)
}

func TestGoogleCalendarFeedsResolver(t *testing.T) {
	gc := newTestCalendar(t, func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"calendars": {"studio@group.calendar.google.com": {"busy": [
			{"start": "2025-06-10T08:00:00Z", "end": "2025-06-10T09:00:00Z"}
		]}}}`))
	})
	r := NewResolver(Options{Location: rome(t), Source: gc})

	got, err := r.Resolve(context.Background(), "2025-06-10", 30)
	require.NoError(t, err)
	assert.NotContains(t, got, "10:00")
	assert.NotContains(t, got, "10:30")
	assert.Contains(t, got, "09:30")
	assert.Contains(t, got, "11:00")
}

func TestNewGoogleCalendarRequiresConfiguration(t *testing.T) {
	_, err := NewGoogleCalendar(context.Background(), "", `{"type":"service_account"}`)
	assert.ErrorIs(t, err, ErrCalendarNotConfigured)

	_, err = NewGoogleCalendar(context.Background(), testCalendarID, "")
	assert.ErrorIs(t, err, ErrCalendarNotConfigured)

	_, err = NewGoogleCalendar(context.Background(), testCalendarID, "not json")
	assert.Error(t, err)
}
