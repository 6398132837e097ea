package metrics

import (
	"strconv"
	"time"

	"github.com/go-kit/kit/metrics"
	"github.com/go-kit/kit/metrics/discard"
	prometheus "github.com/go-kit/kit/metrics/prometheus"
	stdprometheus "github.com/prometheus/client_golang/prometheus"
)

type ConnectionMetrics struct {
	RequestsTotal       metrics.Counter
	RepliesTotal        metrics.Counter
	EventsTotal         metrics.Counter
	ErrorsTotal         metrics.Counter
	WaitDurationSeconds metrics.Histogram
}

func extensionLabel(ext string) string {
	if ext == "" {
		return CoreExtension
	}
	return ext
}

func (o *ConnectionMetrics) AddRequest(ext string, checked bool) {
	o.RequestsTotal.With(LabelExtension, extensionLabel(ext), LabelChecked, strconv.FormatBool(checked)).Add(1)
}

func (o *ConnectionMetrics) AddReply(ext string) {
	o.RepliesTotal.With(LabelExtension, extensionLabel(ext)).Add(1)
}

func (o *ConnectionMetrics) AddEvent(name string) {
	o.EventsTotal.With(LabelEvent, name).Add(1)
}

func (o *ConnectionMetrics) AddError(code uint8) {
	o.ErrorsTotal.With(LabelCode, strconv.Itoa(int(code))).Add(1)
}

func (o *ConnectionMetrics) ObserveWait(begin time.Time, kind string) {
	o.WaitDurationSeconds.With(LabelKind, kind).Observe(time.Since(begin).Seconds())
}

func PromConnectionMetrics() *ConnectionMetrics {
	return &ConnectionMetrics{
		RequestsTotal: prometheus.NewCounterFrom(stdprometheus.CounterOpts{
			Namespace: Namespace,
			Subsystem: ConnectionSubsystem,
			Name:      "requests_total",
			Help:      "Total number of requests sent.",
		}, []string{LabelExtension, LabelChecked}),
		RepliesTotal: prometheus.NewCounterFrom(stdprometheus.CounterOpts{
			Namespace: Namespace,
			Subsystem: ConnectionSubsystem,
			Name:      "replies_total",
			Help:      "Total number of replies received.",
		}, []string{LabelExtension}),
		EventsTotal: prometheus.NewCounterFrom(stdprometheus.CounterOpts{
			Namespace: Namespace,
			Subsystem: ConnectionSubsystem,
			Name:      "events_total",
			Help:      "Total number of events hoisted.",
		}, []string{LabelEvent}),
		ErrorsTotal: prometheus.NewCounterFrom(stdprometheus.CounterOpts{
			Namespace: Namespace,
			Subsystem: ConnectionSubsystem,
			Name:      "errors_total",
			Help:      "Total number of server errors.",
		}, []string{LabelCode}),
		WaitDurationSeconds: prometheus.NewSummaryFrom(stdprometheus.SummaryOpts{
			Namespace: Namespace,
			Subsystem: ConnectionSubsystem,
			Name:      "wait_duration_seconds",
			Help:      "Time spent blocked on replies, checks and events.",
		}, []string{LabelKind}),
	}
}

func NopConnectionMetrics() *ConnectionMetrics {
	return &ConnectionMetrics{
		RequestsTotal:       discard.NewCounter(),
		RepliesTotal:        discard.NewCounter(),
		EventsTotal:         discard.NewCounter(),
		ErrorsTotal:         discard.NewCounter(),
		WaitDurationSeconds: discard.NewHistogram(),
	}
}
