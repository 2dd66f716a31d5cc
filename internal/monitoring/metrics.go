package monitoring

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	allocationDecisions = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "eventhub_allocation_decisions_total",
			Help: "Allocation policy outcomes by phase",
		},
		[]string{"phase", "outcome"},
	)

	ticketsMinted = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "eventhub_tickets_minted_total",
			Help: "Tickets created by confirmed purchases",
		},
	)

	referenceRegenerations = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "eventhub_reference_regenerations_total",
			Help: "Ticket references regenerated after a uniqueness collision",
		},
	)

	confirmRetries = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "eventhub_confirm_retries_total",
			Help: "Confirm transactions retried after a seat collision",
		},
	)

	scans = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "eventhub_ticket_scans_total",
			Help: "Ticket scans by outcome",
		},
		[]string{"outcome"},
	)

	sideEffectFailures = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "eventhub_side_effect_failures_total",
			Help: "Post-commit side effects that failed",
		},
		[]string{"kind"},
	)

	confirmDuration = promauto.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "eventhub_confirm_duration_seconds",
			Help:    "Duration of purchase confirmations including side effects",
			Buckets: prometheus.DefBuckets,
		},
	)
)

// Phases of the purchase flow
const (
	PhaseIntent  = "intent"
	PhaseConfirm = "confirm"
)

// TrackAllocation records an allocation decision outcome, "admitted" or a rejection reason
func TrackAllocation(phase, outcome string) {
	allocationDecisions.WithLabelValues(phase, outcome).Inc()
}

// TrackTicketsMinted adds n created tickets
func TrackTicketsMinted(n int) {
	ticketsMinted.Add(float64(n))
}

// TrackReferenceRegeneration records a reference collision retry
func TrackReferenceRegeneration() {
	referenceRegenerations.Inc()
}

// TrackConfirmRetry records a confirm retried after a seat collision
func TrackConfirmRetry() {
	confirmRetries.Inc()
}

// TrackScan records a scan outcome
func TrackScan(outcome string) {
	scans.WithLabelValues(outcome).Inc()
}

// TrackSideEffectFailure records a failed post-commit side effect such as "qr" or "email"
func TrackSideEffectFailure(kind string) {
	sideEffectFailures.WithLabelValues(kind).Inc()
}

// TrackConfirmDuration observes the time a confirmation took
func TrackConfirmDuration(d time.Duration) {
	confirmDuration.Observe(d.Seconds())
}
