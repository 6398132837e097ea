package metrics

var (
	Connection = NopConnectionMetrics()
	Record     = NopRecordMetrics()
)
