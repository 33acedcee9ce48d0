// Package metrics defines and registers the custom Prometheus metrics of the
// visitor API. Metrics are registered on the default registry at package init
// through promauto and exposed by the /metrics endpoint.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

const namespace = "visitors"

// ── Visit lifecycle ───────────────────────────────────────────────────────────

// CheckInsTotal counts successful check-ins.
// Label:
//   - resolution: "created", "matched_by_email" or "matched_by_phone"
var CheckInsTotal = promauto.NewCounterVec(
	prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "check_ins_total",
		Help:      "Total number of check-ins, by visitor resolution.",
	},
	[]string{"resolution"},
)

// CheckOutsTotal counts check-out attempts.
// Label:
//   - result: "ok", "already_closed", "not_found" or "error"
var CheckOutsTotal = promauto.NewCounterVec(
	prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "check_outs_total",
		Help:      "Total number of check-out attempts, by result.",
	},
	[]string{"result"},
)

// VisitDurationMinutes observes the length of closed visits.
var VisitDurationMinutes = promauto.NewHistogram(
	prometheus.HistogramOpts{
		Namespace: namespace,
		Name:      "visit_duration_minutes",
		Help:      "Duration of closed visits in whole minutes.",
		Buckets:   []float64{5, 15, 30, 60, 120, 240, 480},
	},
)

// AttachmentFailuresTotal counts best-effort attachments that were not stored.
// Label:
//   - kind: "photo" or "signature"
var AttachmentFailuresTotal = promauto.NewCounterVec(
	prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "attachment_failures_total",
		Help:      "Total number of photo or signature attachments that failed.",
	},
	[]string{"kind"},
)

// ── Reports ───────────────────────────────────────────────────────────────────

// ExportsTotal counts generated exports.
// Label:
//   - format: encoder name, e.g. "xlsx"
var ExportsTotal = promauto.NewCounterVec(
	prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "exports_total",
		Help:      "Total number of visit history exports, by format.",
	},
	[]string{"format"},
)

// ── Admin ─────────────────────────────────────────────────────────────────────

// AdminLoginsTotal counts admin login attempts.
// Label:
//   - result: "success", "invalid", "throttled" or "error"
var AdminLoginsTotal = promauto.NewCounterVec(
	prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "admin_logins_total",
		Help:      "Total number of admin login attempts, by result.",
	},
	[]string{"result"},
)
