// Package metrics holds the Prometheus instruments of the API server.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	HTTPRequestsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "taskdeck_http_requests_total",
		Help: "HTTP requests served, by method, route and status.",
	}, []string{"method", "path", "status"})

	TasksCreatedTotal = promauto.NewCounter(prometheus.CounterOpts{
		Name: "taskdeck_tasks_created_total",
		Help: "Tasks created.",
	})

	AttachmentsStoredTotal = promauto.NewCounter(prometheus.CounterOpts{
		Name: "taskdeck_attachments_stored_total",
		Help: "Attachment binaries written to the store.",
	})

	TasksPurgedTotal = promauto.NewCounter(prometheus.CounterOpts{
		Name: "taskdeck_tasks_purged_total",
		Help: "Soft-deleted tasks permanently removed by the retention sweep.",
	})
)
