package main

import (
	"github.com/prometheus/client_golang/prometheus"
)

var (
	commandsTotal = prometheus.NewCounter(prometheus.CounterOpts{
		Name: "fortmap_ws_commands_total",
		Help: "Commands received over websocket sessions.",
	})
	webhookBatches = prometheus.NewCounter(prometheus.CounterOpts{
		Name: "fortmap_webhook_batches_total",
		Help: "Batches posted to the visited webhook.",
	})
)

func init() {
	prometheus.MustRegister(commandsTotal)
	prometheus.MustRegister(webhookBatches)
}
