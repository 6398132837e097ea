package metrics

import (
	"github.com/go-kit/kit/metrics"
	"github.com/go-kit/kit/metrics/discard"
	prometheus "github.com/go-kit/kit/metrics/prometheus"
	stdprometheus "github.com/prometheus/client_golang/prometheus"
)

type RecordMetrics struct {
	EntriesTotal metrics.Counter
	ErrorsTotal  metrics.Counter
}

func (o *RecordMetrics) AddEntry(kind string) {
	o.EntriesTotal.With(LabelKind, kind).Add(1)
}

func (o *RecordMetrics) AddError(kind string) {
	o.ErrorsTotal.With(LabelKind, kind).Add(1)
}

func PromRecordMetrics() *RecordMetrics {
	return &RecordMetrics{
		EntriesTotal: prometheus.NewCounterFrom(stdprometheus.CounterOpts{
			Namespace: Namespace,
			Subsystem: RecordSubsystem,
			Name:      "entries_total",
			Help:      "Total number of recorded session entries.",
		}, []string{LabelKind}),
		ErrorsTotal: prometheus.NewCounterFrom(stdprometheus.CounterOpts{
			Namespace: Namespace,
			Subsystem: RecordSubsystem,
			Name:      "errors_total",
			Help:      "Number of entries that could not be stored.",
		}, []string{LabelKind}),
	}
}

func NopRecordMetrics() *RecordMetrics {
	return &RecordMetrics{
		EntriesTotal: discard.NewCounter(),
		ErrorsTotal:  discard.NewCounter(),
	}
}
