package runtime

import (
	"github.com/prometheus/client_golang/prometheus"

	"github.com/QuarksBlueFoot/jiminy/pkg/programerr"
)

// Metrics counts executed instructions and check failures. A nil *Metrics
// records nothing.
type Metrics struct {
	Instructions  *prometheus.CounterVec
	CheckFailures *prometheus.CounterVec
	ComputeUnits  prometheus.Histogram
}

func NewMetrics(reg prometheus.Registerer) *Metrics {
	m := &Metrics{
		Instructions: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "jiminy_instructions_total",
			Help: "Top-level instructions executed, by program and result.",
		}, []string{"program", "result"}),
		CheckFailures: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "jiminy_check_failures_total",
			Help: "Failed instructions, by error kind.",
		}, []string{"kind"}),
		ComputeUnits: prometheus.NewHistogram(prometheus.HistogramOpts{
			Name:    "jiminy_transaction_compute_units",
			Help:    "Compute units consumed per transaction.",
			Buckets: prometheus.ExponentialBuckets(100, 4, 8),
		}),
	}
	if reg != nil {
		reg.MustRegister(m.Instructions, m.CheckFailures, m.ComputeUnits)
	}
	return m
}

func (m *Metrics) observeInstruction(program string, err error) {
	if m == nil {
		return
	}
	if err == nil {
		m.Instructions.WithLabelValues(program, "ok").Inc()
		return
	}
	m.Instructions.WithLabelValues(program, "error").Inc()
	m.CheckFailures.WithLabelValues(programerr.KindOf(err).String()).Inc()
}

func (m *Metrics) observeTransaction(units uint64) {
	if m == nil {
		return
	}
	m.ComputeUnits.Observe(float64(units))
}
