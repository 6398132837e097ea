package cmd

import (
	"strings"

	stdprometheus "github.com/prometheus/client_golang/prometheus"

	"boscoin.io/xcb/pkg/metrics"
)

var flagMetrics bool

func initMetrics() {
	if !flagMetrics {
		return
	}
	metrics.InitPrometheusMetrics()
	metrics.SetVersion()
}

// logMetrics logs the totals of the binding's metric families.
func logMetrics() error {
	if !flagMetrics {
		return nil
	}

	families, err := stdprometheus.DefaultGatherer.Gather()
	if err != nil {
		return err
	}

	for _, mf := range families {
		if !strings.HasPrefix(mf.GetName(), metrics.Namespace+"_") {
			continue
		}

		var total float64
		for _, m := range mf.GetMetric() {
			switch {
			case m.GetCounter() != nil:
				total += m.GetCounter().GetValue()
			case m.GetGauge() != nil:
				total += m.GetGauge().GetValue()
			case m.GetHistogram() != nil:
				total += float64(m.GetHistogram().GetSampleCount())
			}
		}
		log.Info("metric", "name", mf.GetName(), "total", total)
	}
	return nil
}
