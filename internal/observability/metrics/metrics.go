package metrics

import (
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"go.uber.org/fx"
)

// HTTPMetrics instruments the gin request path.
type HTTPMetrics struct {
	requests *prometheus.CounterVec
	duration *prometheus.HistogramVec
}

func NewHTTP() *HTTPMetrics {
	return &HTTPMetrics{
		requests: promauto.NewCounterVec(prometheus.CounterOpts{
			Name: "avatarhub_http_requests_total",
			Help: "HTTP requests by route, method and status.",
		}, []string{"route", "method", "status"}),
		duration: promauto.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "avatarhub_http_request_duration_seconds",
			Help:    "HTTP request latency by route and method.",
			Buckets: prometheus.DefBuckets,
		}, []string{"route", "method"}),
	}
}

func GinMiddleware(m *HTTPMetrics) gin.HandlerFunc {
	return func(c *gin.Context) {
		if m == nil {
			c.Next()
			return
		}
		start := time.Now()
		c.Next()

		route := c.FullPath()
		if route == "" {
			route = "unmatched"
		}
		m.requests.WithLabelValues(route, c.Request.Method, strconv.Itoa(c.Writer.Status())).Inc()
		m.duration.WithLabelValues(route, c.Request.Method).Observe(time.Since(start).Seconds())
	}
}

// Metrics exposes the domain-level instruments.
type Metrics struct {
	commands *prometheus.CounterVec
	jobRuns  *prometheus.CounterVec
	assigned prometheus.Counter
}

func New() *Metrics {
	return &Metrics{
		commands: promauto.NewCounterVec(prometheus.CounterOpts{
			Name: "avatarhub_commands_total",
			Help: "Collect and upgrade commands by outcome.",
		}, []string{"command", "outcome"}),
		jobRuns: promauto.NewCounterVec(prometheus.CounterOpts{
			Name: "avatarhub_assignment_runs_total",
			Help: "Auto-assignment runs by outcome.",
		}, []string{"outcome"}),
		assigned: promauto.NewCounter(prometheus.CounterOpts{
			Name: "avatarhub_assignment_assigned_total",
			Help: "Avatars handed out by the auto-assignment job.",
		}),
	}
}

// RecordCommand counts one collect/upgrade outcome.
func (m *Metrics) RecordCommand(command string, success bool) {
	if m == nil {
		return
	}
	outcome := "refused"
	if success {
		outcome = "ok"
	}
	m.commands.WithLabelValues(command, outcome).Inc()
}

// RecordAssignmentRun counts a finished scheduler run and the avatars it
// handed out.
func (m *Metrics) RecordAssignmentRun(assigned, errored int) {
	if m == nil {
		return
	}
	outcome := "ok"
	if errored > 0 {
		outcome = "error"
	}
	m.jobRuns.WithLabelValues(outcome).Inc()
	m.assigned.Add(float64(assigned))
}

var Module = fx.Module("observability.metrics",
	fx.Provide(NewHTTP),
	fx.Provide(New),
)
