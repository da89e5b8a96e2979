package core

import "github.com/prometheus/client_golang/prometheus"

// Metrics instruments the service-level curation operations.
type Metrics struct {
	otusCreated        prometheus.Counter
	updatesApplied     prometheus.Counter
	accessionsExcluded prometheus.Counter
	operationDuration  *prometheus.HistogramVec
}

// NewMetrics constructs the metric set and registers it with reg when reg
// is non-nil.
func NewMetrics(reg prometheus.Registerer) *Metrics {
	m := &Metrics{
		otusCreated: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "refcore_otus_created_total",
			Help: "Number of OTUs created.",
		}),
		updatesApplied: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "refcore_otu_updates_applied_total",
			Help: "Number of OTU updates applied.",
		}),
		accessionsExcluded: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "refcore_accessions_excluded_total",
			Help: "Number of accessions added to exclusion sets.",
		}),
		operationDuration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "refcore_operation_duration_seconds",
			Help:    "Duration of curation service operations.",
			Buckets: prometheus.DefBuckets,
		}, []string{"operation"}),
	}
	if reg != nil {
		reg.MustRegister(m.otusCreated, m.updatesApplied, m.accessionsExcluded, m.operationDuration)
	}
	return m
}

func (m *Metrics) observeCreate(seconds float64, excluded int) {
	if m == nil {
		return
	}
	m.otusCreated.Inc()
	m.accessionsExcluded.Add(float64(excluded))
	m.operationDuration.WithLabelValues("create").Observe(seconds)
}

func (m *Metrics) observeUpdate(seconds float64, excluded int) {
	if m == nil {
		return
	}
	m.updatesApplied.Inc()
	m.accessionsExcluded.Add(float64(excluded))
	m.operationDuration.WithLabelValues("update").Observe(seconds)
}
