package metrics

import (
	"sync"
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

// Metrics exposes Prometheus collectors for workflow transitions and
// background jobs.
type Metrics struct {
	transitions *prometheus.CounterVec
	runs        *prometheus.CounterVec
	failures    *prometheus.CounterVec
	duration    *prometheus.HistogramVec
	expired     prometheus.Counter
}

var (
	defaultOnce    sync.Once
	defaultMetrics *Metrics
)

// New registers the collectors against registerer. A nil registerer uses the
// default Prometheus registerer, registered once per process.
func New(registerer prometheus.Registerer) *Metrics {
	if registerer == nil {
		defaultOnce.Do(func() {
			defaultMetrics = build(prometheus.DefaultRegisterer)
		})
		return defaultMetrics
	}
	return build(registerer)
}

// ObserveTransition counts a successful requirement transition into status to.
func (m *Metrics) ObserveTransition(to string) {
	if m == nil {
		return
	}
	m.transitions.WithLabelValues(to).Inc()
}

// AddExpired counts requirements moved to expired by a sweep.
func (m *Metrics) AddExpired(n int) {
	if m == nil || n <= 0 {
		return
	}
	m.expired.Add(float64(n))
}

// Tracker records a single job run.
type Tracker struct {
	metrics *Metrics
	job     string
	start   time.Time
}

func (m *Metrics) Track(job string) *Tracker {
	return &Tracker{metrics: m, job: job, start: time.Now()}
}

// End records duration and outcome and returns err untouched.
func (t *Tracker) End(err error) error {
	if t == nil || t.metrics == nil || t.job == "" {
		return err
	}
	status := "success"
	if err != nil {
		status = "failure"
		t.metrics.failures.WithLabelValues(t.job).Inc()
	}
	t.metrics.runs.WithLabelValues(t.job, status).Inc()
	t.metrics.duration.WithLabelValues(t.job).Observe(time.Since(t.start).Seconds())
	return err
}

func build(registerer prometheus.Registerer) *Metrics {
	transitions := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "compliance_requirement_transitions_total",
		Help: "Requirement status transitions partitioned by target status.",
	}, []string{"status"})
	runs := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "compliance_jobs_total",
		Help: "Total job executions partitioned by job name and status.",
	}, []string{"job", "status"})
	failures := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "compliance_jobs_failures_total",
		Help: "Total failures observed for background jobs.",
	}, []string{"job"})
	duration := prometheus.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "compliance_job_duration_seconds",
		Help:    "Duration in seconds of background job executions.",
		Buckets: prometheus.DefBuckets,
	}, []string{"job"})
	expired := prometheus.NewCounter(prometheus.CounterOpts{
		Name: "compliance_requirements_expired_total",
		Help: "Requirements transitioned to expired by the sweeper.",
	})
	registerer.MustRegister(transitions, runs, failures, duration, expired)
	return &Metrics{transitions: transitions, runs: runs, failures: failures, duration: duration, expired: expired}
}
