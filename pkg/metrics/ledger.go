package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
)

// LedgerMetrics counts journal postings per event type.
type LedgerMetrics struct {
	posted    *prometheus.CounterVec
	imbalance *prometheus.CounterVec
}

// NewLedgerMetrics registers the posting counters on the provided registerer.
func NewLedgerMetrics(reg prometheus.Registerer) *LedgerMetrics {
	if reg == nil {
		return &LedgerMetrics{}
	}
	posted := prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace,
		Subsystem: "ledger",
		Name:      "journals_posted_total",
		Help:      "Balanced journals committed to the ledger.",
	}, []string{"event_type"})
	imbalance := prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace,
		Subsystem: "ledger",
		Name:      "journal_imbalance_total",
		Help:      "Journals rejected because debits and credits differ.",
	}, []string{"event_type"})
	reg.MustRegister(posted, imbalance)
	return &LedgerMetrics{posted: posted, imbalance: imbalance}
}

func (m *LedgerMetrics) IncPosted(eventType string) {
	if m == nil || m.posted == nil {
		return
	}
	m.posted.WithLabelValues(normalizeLabel(eventType)).Inc()
}

func (m *LedgerMetrics) IncImbalance(eventType string) {
	if m == nil || m.imbalance == nil {
		return
	}
	m.imbalance.WithLabelValues(normalizeLabel(eventType)).Inc()
}
