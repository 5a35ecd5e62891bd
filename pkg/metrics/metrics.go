package metrics

import (
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

type ServerMetrics struct {
	Requests  *prometheus.CounterVec
	LatencyMS *prometheus.HistogramVec
}

func NewServerMetrics(reg prometheus.Registerer, service string) *ServerMetrics {
	service = strings.ReplaceAll(service, "-", "_")
	requests := prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: "huongque",
		Subsystem: service,
		Name:      "http_requests_total",
		Help:      "Total number of HTTP requests.",
	}, []string{"handler", "status"})
	latency := prometheus.NewHistogramVec(prometheus.HistogramOpts{
		Namespace: "huongque",
		Subsystem: service,
		Name:      "http_request_duration_ms",
		Help:      "HTTP request latency in milliseconds.",
		Buckets:   []float64{5, 10, 25, 50, 100, 250, 500, 1000, 2500, 5000},
	}, []string{"handler"})

	reg.MustRegister(requests, latency)
	return &ServerMetrics{Requests: requests, LatencyMS: latency}
}

// Wrap records count and latency for h under the given handler label.
func (m *ServerMetrics) Wrap(name string, h http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		rec := &statusRecorder{ResponseWriter: w, status: http.StatusOK}
		h.ServeHTTP(rec, r)
		m.Requests.WithLabelValues(name, strconv.Itoa(rec.status)).Inc()
		m.LatencyMS.WithLabelValues(name).Observe(float64(time.Since(start).Milliseconds()))
	})
}

// DomainMetrics counts storefront business events.
type DomainMetrics struct {
	Orders       prometheus.Counter
	OrderRevenue prometheus.Counter
	Bookings     prometheus.Counter
	Rejections   *prometheus.CounterVec
}

func NewDomainMetrics(reg prometheus.Registerer) *DomainMetrics {
	m := &DomainMetrics{
		Orders: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "huongque",
			Name:      "orders_total",
			Help:      "Orders finalized at checkout.",
		}),
		OrderRevenue: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "huongque",
			Name:      "order_revenue_vnd_total",
			Help:      "Sum of finalized order totals in VND.",
		}),
		Bookings: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "huongque",
			Name:      "bookings_total",
			Help:      "Table bookings created.",
		}),
		Rejections: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "huongque",
			Name:      "rejections_total",
			Help:      "Requests rejected by engine validation.",
		}, []string{"operation"}),
	}
	reg.MustRegister(m.Orders, m.OrderRevenue, m.Bookings, m.Rejections)
	return m
}

func Handler(g prometheus.Gatherer) http.Handler {
	return promhttp.HandlerFor(g, promhttp.HandlerOpts{})
}

type statusRecorder struct {
	http.ResponseWriter
	status int
}

func (r *statusRecorder) WriteHeader(code int) {
	r.status = code
	r.ResponseWriter.WriteHeader(code)
}
