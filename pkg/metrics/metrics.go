package metrics

import (
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Metrics holds the order lifecycle collectors. A nil *Metrics is valid and
// records nothing.
type Metrics struct {
	StoreOps      *prometheus.CounterVec
	StoreLatency  *prometheus.HistogramVec
	PartialWrites prometheus.Counter
	Resyncs       *prometheus.CounterVec
	CachedOrders  prometheus.Gauge
	Requests      *prometheus.CounterVec
}

func New(reg prometheus.Registerer) *Metrics {
	m := &Metrics{
		StoreOps: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "storeadmin",
			Subsystem: "orders",
			Name:      "store_operations_total",
			Help:      "Order store operations by operation and result.",
		}, []string{"op", "result"}),
		StoreLatency: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: "storeadmin",
			Subsystem: "orders",
			Name:      "store_operation_duration_ms",
			Help:      "Order store operation latency in milliseconds.",
			Buckets:   []float64{5, 10, 25, 50, 100, 250, 500, 1000, 2500, 5000},
		}, []string{"op"}),
		PartialWrites: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "storeadmin",
			Subsystem: "orders",
			Name:      "partial_writes_total",
			Help:      "Orders whose header was written but whose line items were not.",
		}),
		Resyncs: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "storeadmin",
			Subsystem: "orders",
			Name:      "resyncs_total",
			Help:      "Full cache resynchronisations by trigger.",
		}, []string{"trigger"}),
		CachedOrders: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: "storeadmin",
			Subsystem: "orders",
			Name:      "cached_orders",
			Help:      "Orders currently held in the cache.",
		}),
		Requests: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "storeadmin",
			Subsystem: "gateway",
			Name:      "http_requests_total",
			Help:      "Total number of HTTP requests.",
		}, []string{"route", "status"}),
	}
	reg.MustRegister(m.StoreOps, m.StoreLatency, m.PartialWrites, m.Resyncs, m.CachedOrders, m.Requests)
	return m
}

// ObserveStore records one store call.
func (m *Metrics) ObserveStore(op string, start time.Time, err error) {
	if m == nil {
		return
	}
	result := "ok"
	if err != nil {
		result = "error"
	}
	m.StoreOps.WithLabelValues(op, result).Inc()
	m.StoreLatency.WithLabelValues(op).Observe(float64(time.Since(start).Milliseconds()))
}

func (m *Metrics) PartialWrite() {
	if m == nil {
		return
	}
	m.PartialWrites.Inc()
}

func (m *Metrics) Resync(trigger string) {
	if m == nil {
		return
	}
	m.Resyncs.WithLabelValues(trigger).Inc()
}

func (m *Metrics) SetCached(n int) {
	if m == nil {
		return
	}
	m.CachedOrders.Set(float64(n))
}

func (m *Metrics) Request(route, status string) {
	if m == nil {
		return
	}
	m.Requests.WithLabelValues(route, status).Inc()
}

// Handler serves the default registry.
func Handler() http.Handler {
	return promhttp.Handler()
}

// HandlerFor serves reg.
func HandlerFor(reg prometheus.Gatherer) http.Handler {
	return promhttp.HandlerFor(reg, promhttp.HandlerOpts{})
}
