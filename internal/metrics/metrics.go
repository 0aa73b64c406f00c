// Package metrics exposes Prometheus collectors for the bot and its HTTP server.
package metrics

import (
	"net/http"
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

const namespace = "dompet"

// Command outcomes
const (
	OutcomeOK       = "ok"
	OutcomeDenied   = "denied"
	OutcomeUsage    = "usage"
	OutcomeRejected = "rejected"
	OutcomeError    = "error"
)

var (
	commandsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "commands_total",
		Help:      "Bot commands handled, by command and outcome.",
	}, []string{"command", "outcome"})

	commandDuration = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Namespace: namespace,
		Name:      "command_duration_seconds",
		Help:      "Time spent handling a bot command.",
		Buckets:   []float64{.001, .005, .01, .025, .05, .1, .25, .5, 1},
	}, []string{"command"})

	updatesTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "updates_total",
		Help:      "Telegram updates received, by transport.",
	}, []string{"transport"})

	httpRequestsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "http_requests_total",
		Help:      "HTTP requests served, by path and status code.",
	}, []string{"path", "code"})
)

// ObserveCommand records one handled command.
func ObserveCommand(command, outcome string, elapsed time.Duration) {
	commandsTotal.WithLabelValues(command, outcome).Inc()
	commandDuration.WithLabelValues(command).Observe(elapsed.Seconds())
}

// CommandCount returns the counter for command and outcome.
func CommandCount(command, outcome string) prometheus.Counter {
	return commandsTotal.WithLabelValues(command, outcome)
}

func ObserveUpdate(transport string) {
	updatesTotal.WithLabelValues(transport).Inc()
}

func ObserveHTTP(path string, code int) {
	httpRequestsTotal.WithLabelValues(path, strconv.Itoa(code)).Inc()
}

// Handler serves the default registry.
func Handler() http.Handler {
	return promhttp.Handler()
}
