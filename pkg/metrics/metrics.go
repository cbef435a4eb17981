// Package metrics exports Prometheus metrics for the exec command.
package metrics

import (
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

var (
	// commandsTotal counts handled exec requests by outcome
	commandsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "spawn_commands_total",
			Help: "Total exec requests by outcome (executed, rejected, empty)",
		},
		[]string{"outcome"},
	)

	// rejectionsTotal counts validation rejections by kind
	rejectionsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "spawn_rejections_total",
			Help: "Total commands rejected before execution by rejection kind",
		},
		[]string{"kind"},
	)

	// exemptTotal counts commands from exempt identities
	exemptTotal = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "spawn_exempt_commands_total",
			Help: "Total commands from identities that bypass all filters",
		},
	)

	// commandDuration tracks process run time
	commandDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "spawn_command_duration_seconds",
			Help:    "Command run time in seconds by exit status (ok, error, timeout)",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"status"},
	)

	// directoryCommits counts session directory changes
	directoryCommits = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "spawn_directory_commits_total",
			Help: "Total session working directory changes committed after a standalone cd",
		},
	)

	// maskedOutputs counts outputs rewritten by the curl sanitizer
	maskedOutputs = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "spawn_masked_outputs_total",
			Help: "Total command outputs in which public IPv4 addresses were masked",
		},
	)

	// renderFailures counts render attempts that fell back to text
	renderFailures = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "spawn_render_failures_total",
			Help: "Total rendering failures that fell back to a text reply",
		},
	)
)

// RecordCommand increments the request counter for outcome.
func RecordCommand(outcome string) {
	commandsTotal.WithLabelValues(outcome).Inc()
}

// RecordRejection increments the rejection counter for kind.
func RecordRejection(kind string) {
	rejectionsTotal.WithLabelValues(kind).Inc()
}

// RecordExempt increments the exempt command counter.
func RecordExempt() {
	exemptTotal.Inc()
}

// ObserveDuration records a finished process.
func ObserveDuration(status string, elapsed time.Duration) {
	commandDuration.WithLabelValues(status).Observe(elapsed.Seconds())
}

// RecordDirectoryCommit increments the directory commit counter.
func RecordDirectoryCommit() {
	directoryCommits.Inc()
}

// RecordMaskedOutput increments the masked output counter.
func RecordMaskedOutput() {
	maskedOutputs.Inc()
}

// RecordRenderFailure increments the render failure counter.
func RecordRenderFailure() {
	renderFailures.Inc()
}

// Handler serves the default registry in the Prometheus text format.
func Handler() http.Handler {
	return promhttp.Handler()
}
