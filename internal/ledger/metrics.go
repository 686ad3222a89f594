package ledger

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/shopspring/decimal"
)

const (
	kindRepayment    = "repayment"
	kindReinvestment = "reinvestment"

	resultCreated = "created"
	resultDeleted = "deleted"
	resultFailed  = "failed"
)

var DistributionsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
	Namespace: "revolv",
	Subsystem: "ledger",
	Name:      "distributions_total",
	Help:      "Admin repayments and reinvestments by outcome.",
}, []string{"kind", "result"})

// DistributedAmount is a float view of distributed money for dashboards.
// It is never read back for accounting.
var DistributedAmount = promauto.NewCounterVec(prometheus.CounterOpts{
	Namespace: "revolv",
	Subsystem: "ledger",
	Name:      "distributed_amount_total",
	Help:      "Total amount distributed to users, in dollars.",
}, []string{"kind"})

var DistributionRecipients = promauto.NewHistogramVec(prometheus.HistogramOpts{
	Namespace: "revolv",
	Subsystem: "ledger",
	Name:      "distribution_recipients",
	Help:      "Number of derived records written per distribution.",
	Buckets:   []float64{0, 1, 2, 5, 10, 25, 50, 100, 250, 1000},
}, []string{"kind"})

func observeCreated(kind string, amount decimal.Decimal, recipients int) {
	DistributionsTotal.WithLabelValues(kind, resultCreated).Inc()
	DistributedAmount.WithLabelValues(kind).Add(amount.InexactFloat64())
	DistributionRecipients.WithLabelValues(kind).Observe(float64(recipients))
}

func observeDeleted(kind string) {
	DistributionsTotal.WithLabelValues(kind, resultDeleted).Inc()
}

func observeFailed(kind string) {
	DistributionsTotal.WithLabelValues(kind, resultFailed).Inc()
}
