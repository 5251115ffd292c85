// Package metrics owns the service's prometheus collectors.
package metrics

import (
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

const namespace = "mahjong"

// Metrics is safe for concurrent use. Build one per registry.
type Metrics struct {
	registry        *prometheus.Registry
	requests        *prometheus.CounterVec
	requestDuration *prometheus.HistogramVec
	rankingBuilds   *prometheus.CounterVec
	rankingPlayers  *prometheus.GaugeVec
	rankingDuration prometheus.Histogram
}

// New registers the collectors on reg. A nil reg gets a fresh registry with
// the Go runtime and process collectors attached.
func New(reg *prometheus.Registry) *Metrics {
	if reg == nil {
		reg = prometheus.NewRegistry()
		reg.MustRegister(collectors.NewGoCollector(), collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))
	}
	m := &Metrics{
		registry: reg,
		requests: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "http",
			Name:      "requests_total",
			Help:      "HTTP requests by route, method and status.",
		}, []string{"route", "method", "status"}),
		requestDuration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Subsystem: "http",
			Name:      "request_duration_seconds",
			Help:      "HTTP request latency by route.",
			Buckets:   prometheus.DefBuckets,
		}, []string{"route", "method"}),
		rankingBuilds: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "ranking",
			Name:      "builds_total",
			Help:      "Leaderboard computations by season.",
		}, []string{"season"}),
		rankingPlayers: prometheus.NewGaugeVec(prometheus.GaugeOpts{
			Namespace: namespace,
			Subsystem: "ranking",
			Name:      "players",
			Help:      "Players on the most recently built leaderboard.",
		}, []string{"season"}),
		rankingDuration: prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace: namespace,
			Subsystem: "ranking",
			Name:      "build_duration_seconds",
			Help:      "Time spent aggregating a season into a leaderboard.",
			Buckets:   []float64{.0005, .001, .005, .01, .05, .1, .5},
		}),
	}
	reg.MustRegister(m.requests, m.requestDuration, m.rankingBuilds, m.rankingPlayers, m.rankingDuration)
	return m
}

// RankingBuilt implements service.Recorder.
func (m *Metrics) RankingBuilt(season string, players int, took time.Duration) {
	m.rankingBuilds.WithLabelValues(season).Inc()
	m.rankingPlayers.WithLabelValues(season).Set(float64(players))
	m.rankingDuration.Observe(took.Seconds())
}

// Middleware records one observation per request, labelled by route template
// so path parameters do not explode the label set.
func (m *Metrics) Middleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()

		route := c.FullPath()
		if route == "" {
			route = "unmatched"
		}
		method := c.Request.Method
		m.requests.WithLabelValues(route, method, strconv.Itoa(c.Writer.Status())).Inc()
		m.requestDuration.WithLabelValues(route, method).Observe(time.Since(start).Seconds())
	}
}

// Handler serves the registry in the prometheus exposition format.
func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{Registry: m.registry})
}
