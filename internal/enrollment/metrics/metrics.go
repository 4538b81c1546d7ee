package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics provides observability for the enrollment module. Tracks decision
// counts, the approval critical path, profile-creation races resolved by
// re-read, and notification failures.
type Metrics struct {
	ApplicationsApproved prometheus.Counter
	ApplicationsRejected prometheus.Counter
	ProfileCreationRaces prometheus.Counter
	NotificationFailures prometheus.Counter
	CohortSeatsRemaining *prometheus.GaugeVec
	ApprovalDuration     prometheus.Histogram
	RejectionDuration    prometheus.Histogram
}

// New creates a Metrics instance with all enrollment module metrics
// registered.
func New() *Metrics {
	return &Metrics{
		ApplicationsApproved: promauto.NewCounter(prometheus.CounterOpts{
			Name: "academy_applications_approved_total",
			Help: "Total number of applications approved",
		}),
		ApplicationsRejected: promauto.NewCounter(prometheus.CounterOpts{
			Name: "academy_applications_rejected_total",
			Help: "Total number of applications rejected",
		}),
		ProfileCreationRaces: promauto.NewCounter(prometheus.CounterOpts{
			Name: "academy_profile_creation_races_total",
			Help: "Profile inserts lost to a concurrent creator and resolved by re-read",
		}),
		NotificationFailures: promauto.NewCounter(prometheus.CounterOpts{
			Name: "academy_notification_failures_total",
			Help: "Best-effort notifications that failed to send",
		}),
		CohortSeatsRemaining: promauto.NewGaugeVec(prometheus.GaugeOpts{
			Name: "academy_cohort_seats_remaining",
			Help: "Seats remaining per cohort as of the last enrollment",
		}, []string{"cohort_id"}),
		ApprovalDuration: promauto.NewHistogram(prometheus.HistogramOpts{
			Name:    "academy_approval_duration_seconds",
			Help:    "Duration of application approvals (the saga critical path)",
			Buckets: []float64{0.005, 0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1, 2.5},
		}),
		RejectionDuration: promauto.NewHistogram(prometheus.HistogramOpts{
			Name:    "academy_rejection_duration_seconds",
			Help:    "Duration of application rejections",
			Buckets: []float64{0.005, 0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1, 2.5},
		}),
	}
}

// ObserveApproval records the duration of an approval.
// Call with time.Now() captured at the start of the operation.
func (m *Metrics) ObserveApproval(start time.Time) {
	m.ApprovalDuration.Observe(time.Since(start).Seconds())
}

// ObserveRejection records the duration of a rejection.
func (m *Metrics) ObserveRejection(start time.Time) {
	m.RejectionDuration.Observe(time.Since(start).Seconds())
}
