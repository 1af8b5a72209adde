// Package booking turns a submitted booking form into a validated Request.
package booking

import (
	"time"

	"benessere-booking/internal/slots"
)

const DefaultLocale = "it"

// MaxDurationMinutes caps an appointment at one day. It matches the max rule
// on Payload.Duration.
const MaxDurationMinutes = 24 * 60

// Payload is the booking form as it arrives on the wire. Numerics and the
// optional fields are pointers so that "absent" can be told apart from zero.
type Payload struct {
	Name        string   `json:"name" validate:"required"`
	Email       string   `json:"email" validate:"required,email"`
	Phone       string   `json:"phone" validate:"min=5"`
	Notes       *string  `json:"notes"`
	Service     string   `json:"service" validate:"required"`
	ServiceName string   `json:"serviceName" validate:"required"`
	Duration    *int     `json:"duration" validate:"required,gt=0,max=1440"`
	Price       *float64 `json:"price" validate:"required,gt=0"`
	Date        string   `json:"date" validate:"isodate"`
	Time        string   `json:"time" validate:"clock"`
	Locale      *string  `json:"locale"`
}

// Request is an accepted booking. It is never persisted.
type Request struct {
	Name        string  `json:"name"`
	Email       string  `json:"email"`
	Phone       string  `json:"phone"`
	Notes       string  `json:"notes"`
	Service     string  `json:"service"`
	ServiceName string  `json:"serviceName"`
	Duration    int     `json:"duration"`
	Price       float64 `json:"price"`
	Date        string  `json:"date"`
	Time        string  `json:"time"`
	Locale      string  `json:"locale"`
}

// Start is the appointment's start instant interpreted in loc.
func (r Request) Start(loc *time.Location) (time.Time, error) {
	day, err := slots.ParseDate(r.Date)
	if err != nil {
		return time.Time{}, err
	}
	return slots.At(day, r.Time, loc)
}

func (p Payload) request() Request {
	r := Request{
		Name:        p.Name,
		Email:       p.Email,
		Phone:       p.Phone,
		Service:     p.Service,
		ServiceName: p.ServiceName,
		Date:        p.Date,
		Time:        p.Time,
		Locale:      DefaultLocale,
	}
	if p.Notes != nil {
		r.Notes = *p.Notes
	}
	if p.Locale != nil && *p.Locale != "" {
		r.Locale = *p.Locale
	}
	if p.Duration != nil {
		r.Duration = *p.Duration
	}
	if p.Price != nil {
		r.Price = *p.Price
	}
	return r
}
