// Package metrics métricas Prometheus del libro de stock y de la API HTTP.
package metrics

import (
	"net/http"
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/jhoicas/farmacia-stock/internal/application/ledger"
)

const namespace = "farmacia"

var _ ledger.Metrics = (*Ledger)(nil)

// Registry registro propio (evita el global y permite varios en tests).
func Registry() *prometheus.Registry {
	reg := prometheus.NewRegistry()
	reg.MustRegister(collectors.NewGoCollector(), collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))
	return reg
}

// Handler expone el registro en formato Prometheus.
func Handler(reg *prometheus.Registry) http.Handler {
	return promhttp.HandlerFor(reg, promhttp.HandlerOpts{Registry: reg})
}

// Ledger métricas de mutaciones y niveles de stock.
type Ledger struct {
	mutations *prometheus.CounterVec
	duration  *prometheus.HistogramVec
	articles  prometheus.Gauge
	low       prometheus.Gauge
	out       prometheus.Gauge
}

// NewLedger registra las métricas del libro en reg.
func NewLedger(reg prometheus.Registerer) *Ledger {
	f := promauto.With(reg)
	return &Ledger{
		mutations: f.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "ledger",
			Name:      "mutations_total",
			Help:      "Mutaciones del libro por operación y resultado (ok o clave del rechazo).",
		}, []string{"op", "outcome"}),
		duration: f.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Subsystem: "ledger",
			Name:      "mutation_duration_seconds",
			Help:      "Duración de validar + confirmar una mutación.",
			Buckets:   prometheus.ExponentialBuckets(0.0005, 2, 14),
		}, []string{"op"}),
		articles: f.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace, Subsystem: "stock", Name: "articles",
			Help: "Artículos en el catálogo.",
		}),
		low: f.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace, Subsystem: "stock", Name: "low_articles",
			Help: "Artículos en o bajo el umbral de alerta.",
		}),
		out: f.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace, Subsystem: "stock", Name: "out_articles",
			Help: "Artículos sin stock.",
		}),
	}
}

func (m *Ledger) ObserveMutation(op, outcome string, elapsed time.Duration) {
	m.mutations.WithLabelValues(op, outcome).Inc()
	m.duration.WithLabelValues(op).Observe(elapsed.Seconds())
}

func (m *Ledger) SetStockLevels(articles, low, out int) {
	m.articles.Set(float64(articles))
	m.low.Set(float64(low))
	m.out.Set(float64(out))
}

// HTTP métricas de peticiones.
type HTTP struct {
	requests *prometheus.CounterVec
	latency  *prometheus.HistogramVec
}

// NewHTTP registra las métricas HTTP en reg.
func NewHTTP(reg prometheus.Registerer) *HTTP {
	f := promauto.With(reg)
	return &HTTP{
		requests: f.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace, Subsystem: "http", Name: "requests_total",
			Help: "Peticiones HTTP por método, ruta y status.",
		}, []string{"method", "route", "status"}),
		latency: f.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace, Subsystem: "http", Name: "request_duration_seconds",
			Help:    "Latencia de las peticiones HTTP.",
			Buckets: prometheus.DefBuckets,
		}, []string{"method", "route"}),
	}
}

// Observe registra una petición; route es el patrón (/api/articles/:id), no la URL.
func (m *HTTP) Observe(method, route string, status int, elapsed time.Duration) {
	m.requests.WithLabelValues(method, route, strconv.Itoa(status)).Inc()
	m.latency.WithLabelValues(method, route).Observe(elapsed.Seconds())
}
