package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics provides observability for the onboarding module.
type Metrics struct {
	IdentitiesCreated    prometheus.Counter
	SavesTotal           prometheus.Counter
	FinalizationsTotal   prometheus.Counter
	VerificationSendErrs prometheus.Counter
	SaveDuration         prometheus.Histogram
	FinalizeDuration     prometheus.Histogram
}

// New creates a Metrics instance with all onboarding metrics registered.
func New() *Metrics {
	return &Metrics{
		IdentitiesCreated: promauto.NewCounter(prometheus.CounterOpts{
			Name: "onboard_identities_created_total",
			Help: "Total number of onboarding identities created",
		}),
		SavesTotal: promauto.NewCounter(prometheus.CounterOpts{
			Name: "onboard_saves_total",
			Help: "Total number of progressive save calls accepted",
		}),
		FinalizationsTotal: promauto.NewCounter(prometheus.CounterOpts{
			Name: "onboard_finalizations_total",
			Help: "Total number of successful finalizations",
		}),
		VerificationSendErrs: promauto.NewCounter(prometheus.CounterOpts{
			Name: "onboard_verification_send_errors_total",
			Help: "Verification code sends that failed (non-blocking for saves)",
		}),
		SaveDuration: promauto.NewHistogram(prometheus.HistogramOpts{
			Name:    "onboard_save_duration_seconds",
			Help:    "Duration of progressive save operations",
			Buckets: []float64{0.001, 0.005, 0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1},
		}),
		FinalizeDuration: promauto.NewHistogram(prometheus.HistogramOpts{
			Name:    "onboard_finalize_duration_seconds",
			Help:    "Duration of finalization operations",
			Buckets: []float64{0.001, 0.005, 0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1},
		}),
	}
}

// IncrementIdentitiesCreated records a new identity.
func (m *Metrics) IncrementIdentitiesCreated() {
	if m != nil {
		m.IdentitiesCreated.Inc()
	}
}

// IncrementSaves records an accepted save call.
func (m *Metrics) IncrementSaves() {
	if m != nil {
		m.SavesTotal.Inc()
	}
}

// IncrementFinalizations records a successful finalize.
func (m *Metrics) IncrementFinalizations() {
	if m != nil {
		m.FinalizationsTotal.Inc()
	}
}

// IncrementVerificationSendErrs records a failed (tolerated) code send.
func (m *Metrics) IncrementVerificationSendErrs() {
	if m != nil {
		m.VerificationSendErrs.Inc()
	}
}

// ObserveSave records the duration of a save operation.
func (m *Metrics) ObserveSave(start time.Time) {
	if m != nil {
		m.SaveDuration.Observe(time.Since(start).Seconds())
	}
}

// ObserveFinalize records the duration of a finalize operation.
func (m *Metrics) ObserveFinalize(start time.Time) {
	if m != nil {
		m.FinalizeDuration.Observe(time.Since(start).Seconds())
	}
}
