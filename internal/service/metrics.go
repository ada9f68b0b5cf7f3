package service

import (
	"github.com/prometheus/client_golang/prometheus"

	"docstore/internal/model"
)

// Metrics holds the document counters. A nil *Metrics records nothing.
type Metrics struct {
	uploads  *prometheus.CounterVec
	versions prometheus.Counter
}

// NewMetrics creates the counters and registers them on reg.
func NewMetrics(reg prometheus.Registerer) (*Metrics, error) {
	m := &Metrics{
		uploads: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "documents_uploaded_total",
				Help: "Total number of documents uploaded, by document type.",
			},
			[]string{"type"},
		),
		versions: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "document_versions_total",
			Help: "Total number of new document versions uploaded.",
		}),
	}
	for _, c := range []prometheus.Collector{m.uploads, m.versions} {
		if err := reg.Register(c); err != nil {
			return nil, err
		}
	}
	return m, nil
}

func (m *Metrics) uploaded(t model.DocumentType) {
	if m == nil {
		return
	}
	m.uploads.WithLabelValues(string(t)).Inc()
}

func (m *Metrics) versioned() {
	if m == nil {
		return
	}
	m.versions.Inc()
}
