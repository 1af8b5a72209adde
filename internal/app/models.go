package app

import (
	"benessere-booking/internal/booking"
	"benessere-booking/internal/catalog"
	"benessere-booking/internal/gallery"
)

const (
	msgInvalidBooking = "Invalid booking data"
	msgBookingFailed  = "Failed to process booking"
)

type ServicesResponse struct {
	Services []catalog.Service `json:"services"`
}

type AvailabilityResponse struct {
	Slots []string `json:"slots"`
	Error string   `json:"error,omitempty"`
}

type BookingResponse struct {
	Success         bool   `json:"success"`
	CalendarLinkURL string `json:"calendarLinkUrl"`
}

type ValidationErrorResponse struct {
	Error   string               `json:"error"`
	Details []booking.FieldError `json:"details"`
}

type GalleryResponse struct {
	Images []gallery.Image `json:"images"`
}

type ErrorResponse struct {
	Error string `json:"error"`
}
