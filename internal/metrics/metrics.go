package metrics

import (
	"net/http"
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Metrics owns its registry so several instances (tests, CLI) never collide
// on the default one. A nil *Metrics is valid and records nothing.
type Metrics struct {
	registry *prometheus.Registry

	vitalsIngested     *prometheus.CounterVec
	alertsCreated      *prometheus.CounterVec
	chatResponses      *prometheus.CounterVec
	generationFailures *prometheus.CounterVec
	generationDuration *prometheus.HistogramVec
	httpRequests       *prometheus.CounterVec
}

func New() *Metrics {
	m := &Metrics{
		registry: prometheus.NewRegistry(),
		vitalsIngested: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "vitals_ingested_total",
				Help: "Total number of ingested vital readings",
			},
			[]string{"type", "abnormal"},
		),
		alertsCreated: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "alerts_created_total",
				Help: "Total number of alerts created for abnormal readings",
			},
			[]string{"severity"},
		),
		chatResponses: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "chat_responses_total",
				Help: "Total number of chat answers by source and fallback category",
			},
			[]string{"source", "category"},
		),
		generationFailures: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "chat_generation_failures_total",
				Help: "Total number of text generation calls that failed or timed out",
			},
			[]string{"provider"},
		),
		generationDuration: prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "chat_generation_duration_seconds",
				Help:    "Duration of text generation calls in seconds",
				Buckets: []float64{0.1, 0.25, 0.5, 1.0, 2.0, 5.0, 10.0, 30.0},
			},
			[]string{"provider"},
		),
		httpRequests: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "http_requests_total",
				Help: "Total number of HTTP requests",
			},
			[]string{"method", "endpoint", "status_code"},
		),
	}
	m.registry.MustRegister(
		m.vitalsIngested,
		m.alertsCreated,
		m.chatResponses,
		m.generationFailures,
		m.generationDuration,
		m.httpRequests,
	)
	return m
}

func (m *Metrics) Registry() *prometheus.Registry {
	if m == nil {
		return nil
	}
	return m.registry
}

func (m *Metrics) Handler() http.Handler {
	if m == nil {
		return http.NotFoundHandler()
	}
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{})
}

func (m *Metrics) RecordReading(vitalType string, abnormal bool) {
	if m == nil {
		return
	}
	m.vitalsIngested.WithLabelValues(vitalType, strconv.FormatBool(abnormal)).Inc()
}

func (m *Metrics) RecordAlert(severity string) {
	if m == nil {
		return
	}
	m.alertsCreated.WithLabelValues(severity).Inc()
}

func (m *Metrics) RecordChatResponse(source, category string) {
	if m == nil {
		return
	}
	m.chatResponses.WithLabelValues(source, category).Inc()
}

func (m *Metrics) RecordGeneration(provider string, duration time.Duration, err error) {
	if m == nil {
		return
	}
	m.generationDuration.WithLabelValues(provider).Observe(duration.Seconds())
	if err != nil {
		m.generationFailures.WithLabelValues(provider).Inc()
	}
}

func (m *Metrics) RecordHTTPRequest(method, endpoint string, statusCode int) {
	if m == nil {
		return
	}
	m.httpRequests.WithLabelValues(method, endpoint, strconv.Itoa(statusCode)).Inc()
}
