package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics provides observability for the registry module.
// Tracks registration volumes by type, validation rejections, and the
// durations of the filing critical path.
type Metrics struct {
	RegistrationsCreated *prometheus.CounterVec
	ValidationRejected   *prometheus.CounterVec
	PaymentFailures      prometheus.Counter
	NotesExpired         prometheus.Counter
	CreateDuration       prometheus.Histogram
	GetDuration          prometheus.Histogram
}

// New creates a Metrics instance with all registry metrics registered.
func New() *Metrics {
	return &Metrics{
		RegistrationsCreated: promauto.NewCounterVec(prometheus.CounterOpts{
			Name: "mhr_registrations_created_total",
			Help: "Total registrations created, by registration type",
		}, []string{"registration_type"}),
		ValidationRejected: promauto.NewCounterVec(prometheus.CounterOpts{
			Name: "mhr_validation_rejected_total",
			Help: "Total submissions rejected by validation, by registration type",
		}, []string{"registration_type"}),
		PaymentFailures: promauto.NewCounter(prometheus.CounterOpts{
			Name: "mhr_payment_failures_total",
			Help: "Total filings aborted because payment was declined or unavailable",
		}),
		NotesExpired: promauto.NewCounter(prometheus.CounterOpts{
			Name: "mhr_notes_expired_total",
			Help: "Total unit notes expired by the batch job",
		}),
		CreateDuration: promauto.NewHistogram(prometheus.HistogramOpts{
			Name:    "mhr_create_registration_duration_seconds",
			Help:    "Duration of registration filing (validate, pay, apply, save)",
			Buckets: []float64{0.005, 0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1, 2.5},
		}),
		GetDuration: promauto.NewHistogram(prometheus.HistogramOpts{
			Name:    "mhr_get_registration_duration_seconds",
			Help:    "Duration of registration aggregate loads",
			Buckets: []float64{0.001, 0.005, 0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1},
		}),
	}
}

// IncrementCreated records a successful registration, by type.
func (m *Metrics) IncrementCreated(registrationType string) {
	m.RegistrationsCreated.WithLabelValues(registrationType).Inc()
}

// IncrementRejected records a validation rejection, by type.
func (m *Metrics) IncrementRejected(registrationType string) {
	m.ValidationRejected.WithLabelValues(registrationType).Inc()
}

// IncrementPaymentFailure records a filing aborted at payment.
func (m *Metrics) IncrementPaymentFailure() {
	m.PaymentFailures.Inc()
}

// AddNotesExpired records notes expired by a batch run.
func (m *Metrics) AddNotesExpired(count int) {
	m.NotesExpired.Add(float64(count))
}

// ObserveCreate records the duration of a filing operation.
// Call with time.Now() at the start of the operation.
func (m *Metrics) ObserveCreate(start time.Time) {
	m.CreateDuration.Observe(time.Since(start).Seconds())
}

// ObserveGet records the duration of an aggregate load.
func (m *Metrics) ObserveGet(start time.Time) {
	m.GetDuration.Observe(time.Since(start).Seconds())
}
