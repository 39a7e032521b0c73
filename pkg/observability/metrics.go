package observability

import (
	"io"
	"strconv"

	"github.com/aretw0/genson/pkg/domain"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/common/expfmt"
)

// Metrics holds the Prometheus collectors for one engine.
type Metrics struct {
	NodesExpanded  *prometheus.CounterVec
	NodesMissing   *prometheus.CounterVec
	Branches       *prometheus.CounterVec
	LoopsTruncated *prometheus.CounterVec
	ExpandDuration *prometheus.HistogramVec
	Children       *prometheus.HistogramVec

	gatherer prometheus.Gatherer
}

// NewMetrics creates the collectors and registers them with reg.
// A nil reg uses a private registry.
func NewMetrics(reg prometheus.Registerer) (*Metrics, error) {
	var gatherer prometheus.Gatherer
	if reg == nil {
		r := prometheus.NewRegistry()
		reg, gatherer = r, r
	} else if g, ok := reg.(prometheus.Gatherer); ok {
		gatherer = g
	}

	m := &Metrics{
		NodesExpanded: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "genson_nodes_expanded_total",
				Help: "Total number of node expansions",
			},
			[]string{"key"},
		),
		NodesMissing: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "genson_nodes_missing_total",
				Help: "Total number of references to undefined nodes",
			},
			[]string{"key"},
		),
		Branches: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "genson_branch_selected_total",
				Help: "Branch choices by node and branch index",
			},
			[]string{"key", "index"},
		),
		LoopsTruncated: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "genson_loops_truncated_total",
				Help: "Continue loops stopped by the iteration ceiling",
			},
			[]string{"key"},
		),
		ExpandDuration: prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "genson_expand_duration_seconds",
				Help:    "Duration of node expansions",
				Buckets: prometheus.ExponentialBuckets(0.00001, 4, 10),
			},
			[]string{"key"},
		),
		Children: prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "genson_expand_children",
				Help:    "Number of children produced per expansion",
				Buckets: []float64{0, 1, 2, 4, 8, 16, 32, 64, 128},
			},
			[]string{"key"},
		),
		gatherer: gatherer,
	}

	for _, c := range []prometheus.Collector{
		m.NodesExpanded, m.NodesMissing, m.Branches, m.LoopsTruncated, m.ExpandDuration, m.Children,
	} {
		if err := reg.Register(c); err != nil {
			return nil, err
		}
	}
	return m, nil
}

// Hooks returns lifecycle hooks that record into the collectors.
func (m *Metrics) Hooks() domain.LifecycleHooks {
	return domain.LifecycleHooks{
		OnNodeExpand: func(e *domain.NodeEvent) {
			m.NodesExpanded.WithLabelValues(e.Key).Inc()
			m.ExpandDuration.WithLabelValues(e.Key).Observe(e.Duration.Seconds())
			m.Children.WithLabelValues(e.Key).Observe(float64(e.Children))
		},
		OnNodeMissing: func(e *domain.NodeEvent) {
			m.NodesMissing.WithLabelValues(e.Key).Inc()
		},
		OnBranchSelected: func(e *domain.BranchEvent) {
			m.Branches.WithLabelValues(e.Key, strconv.Itoa(e.Index)).Inc()
		},
		OnLoopTruncated: func(e *domain.LoopEvent) {
			m.LoopsTruncated.WithLabelValues(e.Key).Inc()
		},
	}
}

// WriteText writes the gathered metrics in the Prometheus text format.
// It is a no-op when the registerer given to NewMetrics cannot gather.
func (m *Metrics) WriteText(w io.Writer) error {
	if m.gatherer == nil {
		return nil
	}
	families, err := m.gatherer.Gather()
	if err != nil {
		return err
	}
	enc := expfmt.NewEncoder(w, expfmt.NewFormat(expfmt.TypeTextPlain))
	for _, mf := range families {
		if err := enc.Encode(mf); err != nil {
			return err
		}
	}
	return nil
}
