// Package metrics exposes prometheus instruments for the billing core.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"go.uber.org/fx"
)

// Metrics exposes application-level instruments.
type Metrics struct {
	ledgerEntries     *prometheus.CounterVec
	planPurchases     *prometheus.CounterVec
	ticketPurchases   prometheus.Counter
	cascadeOutcomes   *prometheus.CounterVec
	insufficientFunds prometheus.Counter
}

// New registers the billing instruments on the given registerer.
func New(reg prometheus.Registerer) *Metrics {
	m := &Metrics{
		ledgerEntries: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "showgrid",
			Subsystem: "billing",
			Name:      "ledger_entries_total",
			Help:      "Ledger entries appended, by entry type.",
		}, []string{"entry_type"}),
		planPurchases: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "showgrid",
			Subsystem: "billing",
			Name:      "plan_purchases_total",
			Help:      "Plan purchases, by plan tier.",
		}, []string{"tier"}),
		ticketPurchases: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "showgrid",
			Subsystem: "billing",
			Name:      "ticket_purchases_total",
			Help:      "Manual ticket purchases.",
		}),
		cascadeOutcomes: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "showgrid",
			Subsystem: "billing",
			Name:      "pro_activation_total",
			Help:      "Pro-activation cascade invocations, by outcome.",
		}, []string{"outcome"}),
		insufficientFunds: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "showgrid",
			Subsystem: "billing",
			Name:      "insufficient_balance_total",
			Help:      "Debits rejected for insufficient wallet balance.",
		}),
	}

	reg.MustRegister(
		m.ledgerEntries,
		m.planPurchases,
		m.ticketPurchases,
		m.cascadeOutcomes,
		m.insufficientFunds,
	)
	return m
}

func (m *Metrics) RecordLedgerEntry(entryType string) {
	if m == nil {
		return
	}
	m.ledgerEntries.WithLabelValues(entryType).Inc()
}

func (m *Metrics) RecordPlanPurchase(tier string) {
	if m == nil {
		return
	}
	m.planPurchases.WithLabelValues(tier).Inc()
}

func (m *Metrics) RecordTicketPurchase() {
	if m == nil {
		return
	}
	m.ticketPurchases.Inc()
}

func (m *Metrics) RecordCascadeOutcome(outcome string) {
	if m == nil {
		return
	}
	m.cascadeOutcomes.WithLabelValues(outcome).Inc()
}

func (m *Metrics) RecordInsufficientBalance() {
	if m == nil {
		return
	}
	m.insufficientFunds.Inc()
}

// The default registerer backs the /metrics handler.
func defaultRegisterer() prometheus.Registerer { return prometheus.DefaultRegisterer }

var Module = fx.Module("observability.metrics",
	fx.Provide(
		defaultRegisterer,
		New,
	),
)
