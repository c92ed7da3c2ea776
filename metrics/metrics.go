// Package metrics 汇总服务的 Prometheus 指标
package metrics

import (
	"net/http"
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

var (
	// Registry 服务自有的指标注册表
	Registry = prometheus.NewRegistry()

	httpInFlight = prometheus.NewGauge(
		prometheus.GaugeOpts{
			Namespace: "dryp",
			Subsystem: "http",
			Name:      "inflight_requests",
			Help:      "Current number of in-flight HTTP requests.",
		},
	)

	httpRequests = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "dryp",
			Subsystem: "http",
			Name:      "requests_total",
			Help:      "Total number of HTTP requests handled.",
		},
		[]string{"method", "route", "status"},
	)

	httpDuration = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: "dryp",
			Subsystem: "http",
			Name:      "request_duration_seconds",
			Help:      "Duration of HTTP requests.",
			Buckets:   prometheus.ExponentialBuckets(0.005, 2, 12),
		},
		[]string{"method", "route"},
	)

	renders = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "dryp",
			Subsystem: "capture",
			Name:      "renders_total",
			Help:      "Total number of composite captures.",
		},
		[]string{"view", "status"},
	)

	renderDuration = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: "dryp",
			Subsystem: "capture",
			Name:      "render_duration_seconds",
			Help:      "Duration of composite captures.",
			Buckets:   prometheus.ExponentialBuckets(0.01, 2, 10),
		},
		[]string{"view"},
	)

	vendorCalls = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "dryp",
			Subsystem: "vendor",
			Name:      "calls_total",
			Help:      "Total number of calls to external vendors.",
		},
		[]string{"vendor", "status"},
	)
)

func init() {
	Registry.MustRegister(
		httpInFlight,
		httpRequests,
		httpDuration,
		renders,
		renderDuration,
		vendorCalls,
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
		collectors.NewGoCollector(),
	)
}

// Handler 暴露已注册的指标
func Handler() http.Handler {
	return promhttp.HandlerFor(Registry, promhttp.HandlerOpts{})
}

// InFlight 返回请求结束时调用的函数
func InFlight() func() {
	httpInFlight.Inc()
	return httpInFlight.Dec
}

// RecordRequest 记录一次 HTTP 请求
func RecordRequest(method, route string, status int, duration time.Duration) {
	if route == "" {
		route = "unmatched"
	}
	httpRequests.WithLabelValues(method, route, strconv.Itoa(status)).Inc()
	httpDuration.WithLabelValues(method, route).Observe(duration.Seconds())
}

// RecordRender 记录一次合成渲染
func RecordRender(view string, duration time.Duration, err error) {
	renders.WithLabelValues(view, status(err)).Inc()
	renderDuration.WithLabelValues(view).Observe(duration.Seconds())
}

// RecordVendorCall 记录一次外部服务调用
func RecordVendorCall(vendor string, err error) {
	vendorCalls.WithLabelValues(vendor, status(err)).Inc()
}

func status(err error) string {
	if err != nil {
		return "error"
	}
	return "ok"
}
