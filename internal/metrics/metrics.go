package metrics

import (
	"strconv"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/adaptor"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

const namespace = "erp"

var (
	registry = prometheus.NewRegistry()

	httpReqCnt = prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace, Name: "http_requests_total",
	}, []string{"method", "route", "status"})
	httpDur = prometheus.NewHistogramVec(prometheus.HistogramOpts{
		Namespace: namespace, Name: "http_request_duration_seconds", Buckets: prometheus.DefBuckets,
	}, []string{"method", "route"})

	queryCnt = prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace, Name: "queries_total",
	}, []string{"query", "outcome"})
	queryDur = prometheus.NewHistogramVec(prometheus.HistogramOpts{
		Namespace: namespace, Name: "query_duration_seconds", Buckets: prometheus.DefBuckets,
	}, []string{"query"})
)

func init() {
	registry.MustRegister(collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))
	registry.MustRegister(collectors.NewGoCollector())
	registry.MustRegister(httpReqCnt, httpDur, queryCnt, queryDur)
}

// Registry exposes the collectors, mostly for tests.
func Registry() *prometheus.Registry {
	return registry
}

// ObserveQuery records one query helper call. outcome is ok, empty or error.
func ObserveQuery(name, outcome string, d time.Duration) {
	queryCnt.WithLabelValues(name, outcome).Inc()
	queryDur.WithLabelValues(name).Observe(d.Seconds())
}

// Middleware counts requests by matched route pattern.
func Middleware() fiber.Handler {
	return func(c *fiber.Ctx) error {
		start := time.Now()
		err := c.Next()

		status := c.Response().StatusCode()
		if e, ok := err.(*fiber.Error); ok {
			status = e.Code
		} else if err != nil {
			status = fiber.StatusInternalServerError
		}

		route := c.Route().Path
		httpReqCnt.WithLabelValues(c.Method(), route, strconv.Itoa(status)).Inc()
		httpDur.WithLabelValues(c.Method(), route).Observe(time.Since(start).Seconds())
		return err
	}
}

// Handler serves the prometheus exposition format.
func Handler() fiber.Handler {
	return adaptor.HTTPHandler(promhttp.HandlerFor(registry, promhttp.HandlerOpts{}))
}
