package middlewares

import (
	"strconv"
	"sync"
	"time"

	beego "github.com/beego/beego/v2/server/web"
	"github.com/beego/beego/v2/server/web/context"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Metrics agrupa los colectores HTTP del MID.
type Metrics struct {
	requests *prometheus.CounterVec
	latency  *prometheus.HistogramVec
}

var metricsOnce sync.Once

// NewMetrics crea y registra los colectores en reg.
func NewMetrics(reg prometheus.Registerer) *Metrics {
	m := &Metrics{
		requests: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "gestion_mid",
			Name:      "http_requests_total",
			Help:      "Peticiones HTTP atendidas por ruta, método y estado.",
		}, []string{"method", "route", "status"}),
		latency: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: "gestion_mid",
			Name:      "http_request_duration_seconds",
			Help:      "Latencia de las peticiones HTTP.",
			Buckets:   prometheus.DefBuckets,
		}, []string{"method", "route"}),
	}
	reg.MustRegister(m.requests, m.latency)
	return m
}

// Chain envuelve el servicio de cada petición para medir estado y latencia.
func (m *Metrics) Chain(next beego.FilterFunc) beego.FilterFunc {
	return func(ctx *context.Context) {
		start := time.Now()
		next(ctx)

		route := "unmatched"
		if pattern, ok := ctx.Input.GetData("RouterPattern").(string); ok && pattern != "" {
			route = pattern
		}
		status := ctx.ResponseWriter.Status
		if status == 0 {
			status = 200
		}
		method := ctx.Input.Method()
		m.requests.WithLabelValues(method, route, strconv.Itoa(status)).Inc()
		m.latency.WithLabelValues(method, route).Observe(time.Since(start).Seconds())
	}
}

// UseMetrics instala la cadena de métricas y expone /metrics una sola vez.
func UseMetrics() {
	metricsOnce.Do(func() {
		m := NewMetrics(prometheus.DefaultRegisterer)
		beego.InsertFilterChain("/*", m.Chain)
		beego.Handler("/metrics", promhttp.Handler())
	})
}
