package app

import (
	"context"

	"go.uber.org/zap"

	"benessere-booking/internal/gallery"
	"benessere-booking/internal/invite"
	"benessere-booking/internal/logging"
	"benessere-booking/internal/metrics"
	"benessere-booking/internal/notify"
)

// SlotResolver returns the offered slots for a day and duration.
type SlotResolver interface {
	Resolve(ctx context.Context, date string, duration int) ([]string, error)
}

// Notifier sends the client and operator emails of an accepted booking.
type Notifier interface {
	NotifyClient(ctx context.Context, details notify.Details, ics string) (notify.Outcome, error)
	NotifyOperator(ctx context.Context, details notify.Details, ics string) (notify.Outcome, error)
}

// ArtifactBuilder derives the invite document and calendar link.
type ArtifactBuilder interface {
	BuildArtifact(e invite.Event, linkDetails string) (invite.Artifact, error)
}

// ImageSource always yields a gallery image list.
type ImageSource interface {
	Images(ctx context.Context) []gallery.Image
}

// App holds the collaborators behind the HTTP handlers.
type App struct {
	Slots    SlotResolver
	Notifier Notifier
	Invites  ArtifactBuilder
	Studio   invite.Studio
	Gallery  ImageSource
	Logger   *zap.Logger
	Metrics  *metrics.Metrics
}

func (a *App) logger() *zap.Logger {
	return logging.OrNop(a.Logger)
}
