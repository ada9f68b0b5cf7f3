package tagging

import (
	"github.com/prometheus/client_golang/prometheus"

	"docstore/internal/model"
)

// Metrics counts finished runs by outcome. A nil *Metrics records nothing.
type Metrics struct {
	runs *prometheus.CounterVec
}

func NewMetrics(reg prometheus.Registerer) (*Metrics, error) {
	m := &Metrics{
		runs: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "tagging_runs_total",
				Help: "Total number of tagging workflow runs, by outcome.",
			},
			[]string{"outcome"},
		),
	}
	if err := reg.Register(m.runs); err != nil {
		return nil, err
	}
	return m, nil
}

func (m *Metrics) finished(o model.TaggingOutcome) {
	if m == nil {
		return
	}
	m.runs.WithLabelValues(string(o)).Inc()
}
