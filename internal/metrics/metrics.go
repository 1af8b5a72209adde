package metrics

import (
	"strconv"

	"github.com/prometheus/client_golang/prometheus"
)

// Metrics exposes counters and histograms for the booking flows. A nil
// *Metrics is valid and records nothing.
type Metrics struct {
	availabilityTotal *prometheus.CounterVec
	bookingsTotal     *prometheus.CounterVec
	emailTotal        *prometheus.CounterVec
	galleryTotal      *prometheus.CounterVec
	httpLatency       *prometheus.HistogramVec
}

func New(reg prometheus.Registerer) *Metrics {
	m := &Metrics{
		availabilityTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "benessere",
			Subsystem: "availability",
			Name:      "resolutions_total",
			Help:      "Availability lookups by slot source",
		}, []string{"source", "reason"}),
		bookingsTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "benessere",
			Subsystem: "booking",
			Name:      "submissions_total",
			Help:      "Booking submissions by outcome",
		}, []string{"outcome"}),
		emailTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "benessere",
			Subsystem: "notify",
			Name:      "emails_total",
			Help:      "Notification emails by recipient kind and delivery status",
		}, []string{"recipient", "status"}),
		galleryTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "benessere",
			Subsystem: "gallery",
			Name:      "loads_total",
			Help:      "Gallery feed loads by image source",
		}, []string{"source"}),
		httpLatency: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: "benessere",
			Subsystem: "http",
			Name:      "request_duration_seconds",
			Help:      "Latency of HTTP requests",
			Buckets:   prometheus.DefBuckets,
		}, []string{"route", "status"}),
	}
	if reg == nil {
		reg = prometheus.DefaultRegisterer
	}
	reg.MustRegister(m.availabilityTotal, m.bookingsTotal, m.emailTotal, m.galleryTotal, m.httpLatency)
	return m
}

func (m *Metrics) ObserveAvailability(source, reason string) {
	if m == nil {
		return
	}
	m.availabilityTotal.WithLabelValues(source, reason).Inc()
}

func (m *Metrics) ObserveBooking(outcome string) {
	if m == nil {
		return
	}
	m.bookingsTotal.WithLabelValues(outcome).Inc()
}

func (m *Metrics) ObserveEmail(recipient, status string) {
	if m == nil {
		return
	}
	m.emailTotal.WithLabelValues(recipient, status).Inc()
}

func (m *Metrics) ObserveGallery(source string) {
	if m == nil {
		return
	}
	m.galleryTotal.WithLabelValues(source).Inc()
}

func (m *Metrics) ObserveHTTP(route string, status int, seconds float64) {
	if m == nil {
		return
	}
	m.httpLatency.WithLabelValues(route, strconv.Itoa(status)).Observe(seconds)
}
