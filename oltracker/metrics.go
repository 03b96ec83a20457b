package oltracker

import "github.com/prometheus/client_golang/prometheus"

// Metrics are the tracker task's observability surface: one poll-cycle
// counter per decision kind, plus a histogram of reorg fork depth (how
// many epochs had to be rolled back), registered once per task instance.
type Metrics struct {
	cycles    *prometheus.CounterVec
	forkDepth prometheus.Histogram
}

// NewMetrics creates and registers a Metrics set against reg.
func NewMetrics(reg prometheus.Registerer) *Metrics {
	m := &Metrics{
		cycles: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "oltracker",
			Name:      "poll_cycles_total",
			Help:      "Number of OL tracker poll cycles by decision outcome.",
		}, []string{"outcome"}),
		forkDepth: prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace: "oltracker",
			Name:      "reorg_fork_depth_epochs",
			Help:      "Number of epochs between the fork point and the previously confirmed epoch during a reorg.",
			Buckets:   prometheus.ExponentialBuckets(1, 2, 10),
		}),
	}
	reg.MustRegister(m.cycles, m.forkDepth)
	return m
}

func (m *Metrics) observeCycle(kind ActionKind) {
	if m == nil {
		return
	}
	switch kind {
	case ActionNoop:
		m.cycles.WithLabelValues("noop").Inc()
	case ActionExtend:
		m.cycles.WithLabelValues("extend").Inc()
	case ActionReorg:
		m.cycles.WithLabelValues("reorg").Inc()
	}
}

func (m *Metrics) observeForkDepth(previousConfirmed, forkEpoch uint32) {
	if m == nil {
		return
	}
	m.forkDepth.Observe(float64(previousConfirmed - forkEpoch))
}
