// Package metrics provides Prometheus metrics for deskfs.
package metrics

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

var (
	// Shell metrics
	commandsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "deskfs_commands_total",
			Help: "Total number of terminal commands executed",
		},
		[]string{"command", "status"},
	)

	// Filesystem metrics
	vfsMutationsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "deskfs_vfs_mutations_total",
			Help: "Total number of successful filesystem mutations",
		},
		[]string{"op"},
	)

	vfsSubscribers = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "deskfs_vfs_subscribers",
			Help: "Number of registered filesystem change subscribers",
		},
	)

	// FUSE metrics
	fuseRequestsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "deskfs_fuse_requests_total",
			Help: "Total number of FUSE requests served",
		},
		[]string{"op", "status"},
	)
)

// Command status labels.
const (
	StatusOK       = "ok"
	StatusError    = "error"
	StatusNotFound = "not_found"
)

// RecordCommand counts one executed terminal command.
func RecordCommand(command, status string) {
	commandsTotal.WithLabelValues(command, status).Inc()
}

// RecordMutation counts one successful filesystem mutation.
func RecordMutation(op string) {
	vfsMutationsTotal.WithLabelValues(op).Inc()
}

// SetSubscribers sets the subscriber gauge.
func SetSubscribers(n int) {
	vfsSubscribers.Set(float64(n))
}

// RecordFuseRequest counts one FUSE request.
func RecordFuseRequest(op string, err error) {
	status := StatusOK
	if err != nil {
		status = StatusError
	}
	fuseRequestsTotal.WithLabelValues(op, status).Inc()
}

// Handler returns the Prometheus metrics HTTP handler.
func Handler() http.Handler {
	return promhttp.Handler()
}
