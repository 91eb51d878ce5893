// Package metrics defines all custom Prometheus metrics for the veilchat
// server. It is the single source of truth for metric names, labels, and
// help strings; metrics register themselves with the default registry at
// import time via promauto.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

const namespace = "veilchat"

// ── Messaging metrics ─────────────────────────────────────────────────────────

// MessagesSentTotal counts messages accepted and persisted by the router.
// Label:
//   - kind: message content type ("text" or "image")
var MessagesSentTotal = promauto.NewCounterVec(
	prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "messages_sent_total",
		Help:      "Total number of private messages persisted, by content kind.",
	},
	[]string{"kind"},
)

// MessageDeliveryTotal counts live delivery attempts.
// Label:
//   - result: "delivered" (receiver connected) or "offline" (stored only)
var MessageDeliveryTotal = promauto.NewCounterVec(
	prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "message_delivery_total",
		Help:      "Total number of live delivery attempts, labelled by result.",
	},
	[]string{"result"},
)

// SocketEventsTotal counts inbound socket events by name. Events outside the
// closed inbound set are labelled "unknown".
var SocketEventsTotal = promauto.NewCounterVec(
	prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "socket_events_total",
		Help:      "Total number of inbound socket events, by event name.",
	},
	[]string{"event"},
)

// ── Presence metrics ──────────────────────────────────────────────────────────

// PresenceConnections tracks the number of identities currently registered
// in the presence hub.
var PresenceConnections = promauto.NewGauge(
	prometheus.GaugeOpts{
		Namespace: namespace,
		Name:      "presence_connections",
		Help:      "Current number of identities with a live socket session.",
	},
)

// ── Duress metrics ────────────────────────────────────────────────────────────

// DuressSwitchesTotal counts successful identity switches to a decoy session.
var DuressSwitchesTotal = promauto.NewCounter(
	prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "duress_switches_total",
		Help:      "Total number of successful switches to a decoy session.",
	},
)
