package service

import "github.com/prometheus/client_golang/prometheus"

type CartMetrics struct {
	ops *prometheus.CounterVec
}

func NewCartMetrics(reg prometheus.Registerer) *CartMetrics {
	m := &CartMetrics{
		ops: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "cart_operations_total",
			Help: "Cart mutations by operation and result.",
		}, []string{"op", "result"}),
	}
	reg.MustRegister(m.ops)
	return m
}

func (m *CartMetrics) observe(op string, err error) {
	if m == nil {
		return
	}
	result := "ok"
	switch {
	case err == nil:
	case isInsufficientStock(err):
		result = "insufficient_stock"
	default:
		result = "error"
	}
	m.ops.WithLabelValues(op, result).Inc()
}
