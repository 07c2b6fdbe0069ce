// Package metrics exposes the service's Prometheus instrumentation.
package metrics

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

var (
	ExpensesCreated = promauto.NewCounter(prometheus.CounterOpts{
		Name: "splitledger_expenses_created_total",
		Help: "Expenses created via the API.",
	})

	ExpensesDeleted = promauto.NewCounter(prometheus.CounterOpts{
		Name: "splitledger_expenses_deleted_total",
		Help: "Expenses deleted via the API.",
	})

	OccurrencesGenerated = promauto.NewCounter(prometheus.CounterOpts{
		Name: "splitledger_recurring_occurrences_generated_total",
		Help: "Expense occurrences materialized by the recurrence engine.",
	})

	RecurrenceRuns = promauto.NewCounter(prometheus.CounterOpts{
		Name: "splitledger_recurrence_runs_total",
		Help: "Invocations of the recurrence engine.",
	})
)

// Handler returns the HTTP handler serving the metrics endpoint.
func Handler() http.Handler {
	return promhttp.Handler()
}
