// Package metrics holds the service's own prometheus registry, kept separate
// from the default one so the scrape surface stays intentional.
package metrics

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

var registry = prometheus.NewRegistry()

var (
	TasksCreated = prometheus.NewCounter(prometheus.CounterOpts{
		Name: "tracker_tasks_created_total",
		Help: "Total number of tasks created",
	})
	TasksUpdated = prometheus.NewCounter(prometheus.CounterOpts{
		Name: "tracker_tasks_updated_total",
		Help: "Total number of task update operations",
	})
	TasksDeleted = prometheus.NewCounter(prometheus.CounterOpts{
		Name: "tracker_tasks_deleted_total",
		Help: "Total number of tasks deleted (cascades count once)",
	})
	CommentsCreated = prometheus.NewCounter(prometheus.CounterOpts{
		Name: "tracker_comments_created_total",
		Help: "Total number of comments created",
	})
	NotificationsEmitted = prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "tracker_notifications_emitted_total",
		Help: "Notifications generated, by type",
	}, []string{"type"})
)

//nolint:gochecknoinits // single registration point for the custom registry.
func init() {
	registry.MustRegister(
		TasksCreated, TasksUpdated, TasksDeleted,
		CommentsCreated, NotificationsEmitted,
	)
}

// Handler serves the custom registry.
func Handler() http.Handler {
	return promhttp.HandlerFor(registry, promhttp.HandlerOpts{})
}
