package castles

import (
	"github.com/prometheus/client_golang/prometheus"
)

var (
	searchesTotal = prometheus.NewCounter(prometheus.CounterOpts{
		Name: "fortmap_searches_total",
		Help: "Total number of castle name searches",
	})
	togglesTotal = prometheus.NewCounter(prometheus.CounterOpts{
		Name: "fortmap_visited_toggles_total",
		Help: "Total number of visited flag toggles",
	})
	rowsDropped = prometheus.NewCounter(prometheus.CounterOpts{
		Name: "fortmap_dataset_rows_dropped_total",
		Help: "Total dataset rows dropped during load",
	})
	persistFailures = prometheus.NewCounter(prometheus.CounterOpts{
		Name: "fortmap_visited_persist_failures_total",
		Help: "Total failed writes of the visited list",
	})
)

func init() {
	prometheus.MustRegister(searchesTotal)
	prometheus.MustRegister(togglesTotal)
	prometheus.MustRegister(rowsDropped)
	prometheus.MustRegister(persistFailures)
}
