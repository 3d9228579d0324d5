package metrics

import (
	"strconv"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/valyala/fasthttp/fasthttpadaptor"
)

var (
	httpRequestsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "searchmap",
		Subsystem: "http",
		Name:      "requests_total",
		Help:      "HTTP requests processed",
	}, []string{"method", "path", "status"})

	httpRequestDuration = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Namespace: "searchmap",
		Subsystem: "http",
		Name:      "request_duration_seconds",
		Help:      "HTTP request latency in seconds",
		Buckets:   []float64{0.001, 0.005, 0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1},
	}, []string{"method", "path"})

	MessagesReceived = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "searchmap",
		Subsystem: "inbound",
		Name:      "messages_total",
		Help:      "Selection messages received, by source",
	}, []string{"source"})

	MessagesMalformed = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "searchmap",
		Subsystem: "inbound",
		Name:      "malformed_messages_total",
		Help:      "Inbound payloads that were not valid JSON, by source",
	}, []string{"source"})

	MessageDuration = promauto.NewHistogram(prometheus.HistogramOpts{
		Namespace: "searchmap",
		Subsystem: "viz",
		Name:      "message_duration_seconds",
		Help:      "Time spent processing one selection message",
		Buckets:   []float64{0.0001, 0.0005, 0.001, 0.005, 0.01, 0.05, 0.1},
	})

	DatasetsRendered = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "searchmap",
		Subsystem: "viz",
		Name:      "datasets_rendered_total",
		Help:      "Datasets turned into overlays, by geometry shape",
	}, []string{"shape"})

	DatasetsRejected = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "searchmap",
		Subsystem: "viz",
		Name:      "datasets_rejected_total",
		Help:      "Datasets dropped before or during processing, by reason",
	}, []string{"reason"})

	InvalidColors = promauto.NewCounter(prometheus.CounterOpts{
		Namespace: "searchmap",
		Subsystem: "viz",
		Name:      "invalid_colors_total",
		Help:      "Datasets whose color did not parse and used the fallback",
	})

	Overlays = promauto.NewGauge(prometheus.GaugeOpts{
		Namespace: "searchmap",
		Subsystem: "viz",
		Name:      "overlays",
		Help:      "Overlays on the map after the last message",
	})

	ActiveWebSockets = promauto.NewGauge(prometheus.GaugeOpts{
		Namespace: "searchmap",
		Subsystem: "ws",
		Name:      "active_connections",
		Help:      "Current number of WebSocket connections",
	})
)

// Middleware records request metrics.
func Middleware() fiber.Handler {
	return func(c *fiber.Ctx) error {
		start := time.Now()

		err := c.Next()

		path := c.Route().Path
		if path == "" {
			path = c.Path()
		}
		status := strconv.Itoa(c.Response().StatusCode())
		httpRequestsTotal.WithLabelValues(c.Method(), path, status).Inc()
		httpRequestDuration.WithLabelValues(c.Method(), path).Observe(time.Since(start).Seconds())
		return err
	}
}

// Handler serves the default registry in the Prometheus text format.
func Handler() fiber.Handler {
	h := fasthttpadaptor.NewFastHTTPHandler(promhttp.Handler())
	return func(c *fiber.Ctx) error {
		h(c.Context())
		return nil
	}
}
