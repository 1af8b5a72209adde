package app

import (
	"context"
	"errors"
	"io"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"benessere-booking/internal/booking"
	"benessere-booking/internal/catalog"
	"benessere-booking/internal/notify"
	"benessere-booking/internal/slots"
)

const maxBookingBody = 64 << 10

// GET /api/services
func (a *App) ServicesHandler(c *gin.Context) {
	c.JSON(http.StatusOK, ServicesResponse{Services: catalog.All()})
}

// GET /api/availability?date=YYYY-MM-DD&duration=N
// Any failure past parameter checks answers with an empty list so the client
// can fall back to its own static grid.
func (a *App) AvailabilityHandler(c *gin.Context) {
	date := c.Query("date")
	durationStr := c.Query("duration")
	if date == "" || durationStr == "" {
		c.JSON(http.StatusBadRequest, AvailabilityResponse{Slots: []string{}, Error: "date and duration required"})
		return
	}
	if _, err := slots.ParseDate(date); err != nil {
		c.JSON(http.StatusBadRequest, AvailabilityResponse{Slots: []string{}, Error: "invalid date, expected YYYY-MM-DD"})
		return
	}
	duration, err := strconv.Atoi(durationStr)
	if err != nil || duration <= 0 {
		c.JSON(http.StatusBadRequest, AvailabilityResponse{Slots: []string{}, Error: "invalid duration"})
		return
	}

	offered, err := a.Slots.Resolve(c.Request.Context(), date, duration)
	if err != nil {
		a.logger().Error("availability lookup failed",
			zap.String("date", date),
			zap.Int("duration", duration),
			zap.Error(err),
		)
		offered = []string{}
	}
	c.JSON(http.StatusOK, AvailabilityResponse{Slots: offered})
}

// POST /api/book
func (a *App) BookHandler(c *gin.Context) {
	body, err := io.ReadAll(http.MaxBytesReader(c.Writer, c.Request.Body, maxBookingBody))
	if err != nil {
		a.Metrics.ObserveBooking("rejected")
		c.JSON(http.StatusBadRequest, ValidationErrorResponse{
			Error:   msgInvalidBooking,
			Details: []booking.FieldError{{Field: booking.FieldBody, Rule: "size", Message: "could not be read"}},
		})
		return
	}

	req, err := booking.Decode(body)
	if err != nil {
		var verr *booking.ValidationError
		if errors.As(err, &verr) {
			a.Metrics.ObserveBooking("rejected")
			a.logger().Info("booking rejected", zap.Error(verr))
			c.JSON(http.StatusBadRequest, ValidationErrorResponse{Error: msgInvalidBooking, Details: verr.Fields})
			return
		}
		a.failBooking(c, err)
		return
	}

	link, err := a.processBooking(c.Request.Context(), req)
	if err != nil {
		a.failBooking(c, err)
		return
	}

	a.Metrics.ObserveBooking("accepted")
	c.JSON(http.StatusOK, BookingResponse{Success: true, CalendarLinkURL: link})
}

// processBooking derives the calendar artifacts and sends both emails. The
// booking counts as accepted once artifacts exist; email failures are only
// logged.
func (a *App) processBooking(ctx context.Context, req booking.Request) (string, error) {
	event, linkDetails := a.Studio.Event(req)
	art, err := a.Invites.BuildArtifact(event, linkDetails)
	if err != nil {
		return "", err
	}

	// Emails go out even if the submitter disconnects.
	ctx = context.WithoutCancel(ctx)
	details := notify.NewDetails(req, art.GoogleURL)
	log := a.logger().With(
		zap.String("service", req.Service),
		zap.String("date", req.Date),
		zap.String("time", req.Time),
	)

	for _, send := range []func(context.Context, notify.Details, string) (notify.Outcome, error){
		a.Notifier.NotifyClient,
		a.Notifier.NotifyOperator,
	} {
		out, err := send(ctx, details, art.ICS)
		if err != nil {
			log.Warn("booking accepted but email failed",
				zap.String("recipient", string(out.Recipient)),
				zap.Error(err),
			)
			continue
		}
		log.Debug("booking email handled",
			zap.String("recipient", string(out.Recipient)),
			zap.String("status", string(out.Status)),
		)
	}

	log.Info("booking accepted", zap.Int("duration", req.Duration))
	return art.GoogleURL, nil
}

func (a *App) failBooking(c *gin.Context, err error) {
	a.Metrics.ObserveBooking("failed")
	a.logger().Error("booking processing failed", zap.Error(err))
	c.JSON(http.StatusInternalServerError, ErrorResponse{Error: msgBookingFailed})
}

// GET /api/instagram
func (a *App) InstagramHandler(c *gin.Context) {
	c.JSON(http.StatusOK, GalleryResponse{Images: a.Gallery.Images(c.Request.Context())})
}

// GET /health
func (a *App) HealthHandler(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"status": "ok"})
}
