package metrics

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

type Registry struct {
	reg                *prometheus.Registry
	Resolutions        *prometheus.CounterVec
	ExtractionSec      prometheus.Histogram
	SchedulesPersisted prometheus.Counter
	Bookings           *prometheus.CounterVec
	Cancellations      prometheus.Counter
	HTTPRequests       *prometheus.CounterVec
	HTTPLatencySec     *prometheus.HistogramVec
}

func NewRegistry() *Registry {
	r := prometheus.NewRegistry()
	resolutions := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "travel_resolutions_total",
		Help: "Availability resolutions by source and result status.",
	}, []string{"source", "status"})
	extraction := prometheus.NewHistogram(prometheus.HistogramOpts{
		Name:    "travel_extraction_seconds",
		Help:    "Time spent waiting on the extraction source.",
		Buckets: []float64{0.5, 1, 2.5, 5, 10, 20, 40, 60},
	})
	persisted := prometheus.NewCounter(prometheus.CounterOpts{
		Name: "travel_schedules_persisted_total",
	})
	bookings := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "travel_bookings_total",
		Help: "Bookings created by outcome.",
	}, []string{"outcome"})
	cancellations := prometheus.NewCounter(prometheus.CounterOpts{
		Name: "travel_booking_cancellations_total",
	})
	httpRequests := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "travel_http_requests_total",
	}, []string{"method", "route", "code"})
	httpLatency := prometheus.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "travel_http_request_seconds",
		Buckets: prometheus.DefBuckets,
	}, []string{"method", "route"})

	r.MustRegister(resolutions, extraction, persisted, bookings, cancellations, httpRequests, httpLatency)
	return &Registry{
		reg:                r,
		Resolutions:        resolutions,
		ExtractionSec:      extraction,
		SchedulesPersisted: persisted,
		Bookings:           bookings,
		Cancellations:      cancellations,
		HTTPRequests:       httpRequests,
		HTTPLatencySec:     httpLatency,
	}
}

func (r *Registry) Handler() http.Handler { return promhttp.HandlerFor(r.reg, promhttp.HandlerOpts{}) }
