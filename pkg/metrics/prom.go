package metrics

import (
	"sync"
)

var promOnce sync.Once

// InitPrometheusMetrics replaces the package level metrics with ones
// registered to the default prometheus registry. Later calls do nothing.
func InitPrometheusMetrics() {
	promOnce.Do(func() {
		Version = PromVersion()
		Connection = PromConnectionMetrics()
		Record = PromRecordMetrics()
	})
}
