// Package metrics holds the Prometheus registry and every collector the
// service exports on /metrics.
package metrics

import (
	"net/http"
	"sync"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

const namespace = "everydog"

// Registry is the process-wide registry for all metrics.
var Registry = prometheus.NewRegistry()

// AppInfo exposes build information as labels; the value is always 1.
var AppInfo = promauto.With(Registry).NewGaugeVec(
	prometheus.GaugeOpts{
		Namespace: namespace,
		Name:      "app_info",
		Help:      "Application version information (always set to 1, version info in labels)",
	},
	[]string{"version", "store"},
)

// RegistrationsTotal counts registration attempts by outcome:
// success, waiver_required, not_found, sold_out, duplicate, error.
var RegistrationsTotal = promauto.With(Registry).NewCounterVec(
	prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "registrations_total",
		Help:      "Total number of event registration attempts",
	},
	[]string{"outcome"},
)

// NewsletterSubscriptionsTotal counts signups by outcome: success, duplicate, error.
var NewsletterSubscriptionsTotal = promauto.With(Registry).NewCounterVec(
	prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "newsletter_subscriptions_total",
		Help:      "Total number of newsletter subscription attempts",
	},
	[]string{"outcome"},
)

// ContactMessagesTotal counts stored contact messages by volunteer interest.
var ContactMessagesTotal = promauto.With(Registry).NewCounterVec(
	prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "contact_messages_total",
		Help:      "Total number of contact messages received",
	},
	[]string{"volunteer"},
)

// EventsSeeded records how many fixture events the last bootstrap inserted.
var EventsSeeded = promauto.With(Registry).NewGauge(
	prometheus.GaugeOpts{
		Namespace: namespace,
		Name:      "events_seeded",
		Help:      "Number of events inserted by the most recent bootstrap",
	},
)

var initOnce sync.Once

// Init registers the runtime collectors and sets version information.
func Init(version, store string) {
	initOnce.Do(func() {
		Registry.MustRegister(collectors.NewGoCollector())
		Registry.MustRegister(collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))
	})
	AppInfo.Reset()
	AppInfo.WithLabelValues(version, store).Set(1)
}

// Handler serves the registry in the Prometheus exposition format.
func Handler() http.Handler {
	return promhttp.HandlerFor(Registry, promhttp.HandlerOpts{Registry: Registry})
}
