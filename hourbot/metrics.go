package hourbot

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Counters for the frequent events that the logging convention keeps out of
// the logs. Registered on the default registry; the bot main decides
// whether to serve them.
var (
	metricCommandsParsed = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "hourbot",
		Subsystem: "client",
		Name:      "commands_parsed_total",
		Help:      "Inbound protocol commands parsed, by verb",
	}, []string{"verb"})

	metricFanoutDeliveries = promauto.NewCounter(prometheus.CounterOpts{
		Namespace: "hourbot",
		Subsystem: "diverter",
		Name:      "fanout_deliveries_total",
		Help:      "Command deliveries into attached pipes",
	})

	metricRateLimitDrops = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "hourbot",
		Subsystem: "sink",
		Name:      "ratelimit_drops_total",
		Help:      "Unimportant sends dropped inside a cooldown, by category",
	}, []string{"category"})

	metricWindowsFinalized = promauto.NewCounter(prometheus.CounterOpts{
		Namespace: "hourbot",
		Subsystem: "summarizer",
		Name:      "windows_finalized_total",
		Help:      "Accumulation windows that passed the finalize threshold",
	})

	metricReconnects = promauto.NewCounter(prometheus.CounterOpts{
		Namespace: "hourbot",
		Subsystem: "client",
		Name:      "reconnects_total",
		Help:      "Connection attempts after the first",
	})
)
