package metrics

import (
	"testing"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
)

func TestLedgerMetricsCounters(t *testing.T) {
	reg := prometheus.NewRegistry()
	m := NewLedgerMetrics(reg)

	m.IncPosted("payment")
	m.IncPosted("payment")
	m.IncPosted("disbursement")
	m.IncImbalance("")

	assert.Equal(t, float64(2), testutil.ToFloat64(m.posted.WithLabelValues("payment")))
	assert.Equal(t, float64(1), testutil.ToFloat64(m.posted.WithLabelValues("disbursement")))
	assert.Equal(t, float64(1), testutil.ToFloat64(m.imbalance.WithLabelValues("unknown")))
}

func TestLedgerMetricsNilSafe(t *testing.T) {
	var m *LedgerMetrics
	m.IncPosted("payment")
	NewLedgerMetrics(nil).IncImbalance("payment")
}
