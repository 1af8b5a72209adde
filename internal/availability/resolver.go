package availability

import (
	"context"
	"time"

	"go.uber.org/zap"

	"benessere-booking/internal/logging"
	"benessere-booking/internal/metrics"
	"benessere-booking/internal/slots"
)

const (
	SourceCalendar = "calendar"
	SourceMock     = "mock"
)

// BusyPeriod is an externally reserved span. Slots overlapping it are not
// offered.
type BusyPeriod struct {
	Start time.Time
	End   time.Time
}

// BusySource reports reserved spans between two instants.
type BusySource interface {
	Busy(ctx context.Context, from, to time.Time) ([]BusyPeriod, error)
}

type Options struct {
	Window   slots.Window
	Location *time.Location
	// Source is nil when no calendar integration is configured.
	Source  BusySource
	Timeout time.Duration
	Logger  *zap.Logger
	Metrics *metrics.Metrics
}

// Resolver turns a date and duration into the list of offered slots.
type Resolver struct {
	window  slots.Window
	loc     *time.Location
	source  BusySource
	timeout time.Duration
	logger  *zap.Logger
	metrics *metrics.Metrics
}

func NewResolver(opts Options) *Resolver {
	if opts.Window.IntervalMinutes == 0 {
		opts.Window = slots.DefaultWindow
	}
	if opts.Location == nil {
		opts.Location = time.UTC
	}
	if opts.Timeout <= 0 {
		opts.Timeout = 5 * time.Second
	}
	return &Resolver{
		window:  opts.Window,
		loc:     opts.Location,
		source:  opts.Source,
		timeout: opts.Timeout,
		logger:  logging.OrNop(opts.Logger),
		metrics: opts.Metrics,
	}
}

// Resolve returns the offered "HH:MM" slots for date ("YYYY-MM-DD") and
// duration in minutes, ascending. Calendar failures are never returned:
// they fall back to a deterministic mock subset of the grid. The only error
// is an unparseable date.
func (r *Resolver) Resolve(ctx context.Context, date string, duration int) ([]string, error) {
	day, err := slots.ParseDate(date)
	if err != nil {
		return nil, err
	}

	grid := slots.Generate(r.window, duration)
	if len(grid) == 0 {
		return grid, nil
	}

	if r.source == nil {
		return r.mock(date, duration, grid, "unconfigured", nil), nil
	}

	from, to := r.window.Bounds(day, r.loc)
	queryCtx, cancel := context.WithTimeout(ctx, r.timeout)
	defer cancel()

	busy, err := r.source.Busy(queryCtx, from, to)
	if err != nil {
		reason := "provider_error"
		if queryCtx.Err() == context.DeadlineExceeded {
			reason = "timeout"
		}
		return r.mock(date, duration, grid, reason, err), nil
	}

	offered := FilterBusy(day, grid, duration, busy, r.loc)
	r.metrics.ObserveAvailability(SourceCalendar, "ok")
	r.logger.Debug("availability resolved",
		zap.String("source", SourceCalendar),
		zap.String("date", date),
		zap.Int("duration", duration),
		zap.Int("busy_periods", len(busy)),
		zap.Int("slots", len(offered)),
	)
	return offered, nil
}

func (r *Resolver) mock(date string, duration int, grid []string, reason string, cause error) []string {
	offered := slots.MockSubset(grid)
	r.metrics.ObserveAvailability(SourceMock, reason)

	fields := []zap.Field{
		zap.String("source", SourceMock),
		zap.String("reason", reason),
		zap.String("date", date),
		zap.Int("duration", duration),
		zap.Int("slots", len(offered)),
	}
	if cause != nil {
		r.logger.Warn("calendar lookup failed, serving mock slots", append(fields, zap.Error(cause))...)
	} else {
		r.logger.Info("calendar not configured, serving mock slots", fields...)
	}
	return offered
}

// FilterBusy drops every slot whose [start, start+duration) overlaps a busy
// period and keeps the rest in their original order. Slots that cannot be
// parsed are dropped.
func FilterBusy(day time.Time, grid []string, duration int, busy []BusyPeriod, loc *time.Location) []string {
	out := make([]string, 0, len(grid))
	length := time.Duration(duration) * time.Minute
	for _, s := range grid {
		start, err := slots.At(day, s, loc)
		if err != nil {
			continue
		}
		end := start.Add(length)
		if !overlapsAny(start, end, busy) {
			out = append(out, s)
		}
	}
	return out
}

func overlapsAny(start, end time.Time, busy []BusyPeriod) bool {
	for _, b := range busy {
		if start.Before(b.End) && end.After(b.Start) {
			return true
		}
	}
	return false
}
