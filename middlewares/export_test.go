package middlewares

import "github.com/prometheus/client_golang/prometheus"

func RequestCounter(m *Metrics) *prometheus.CounterVec {
	return m.requests
}
