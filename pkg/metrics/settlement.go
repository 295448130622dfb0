package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

// SettlementMetrics records webhook and payout settlement outcomes.
type SettlementMetrics struct {
	webhookEvents *prometheus.CounterVec
	settlements   *prometheus.CounterVec
	payouts       *prometheus.CounterVec
	duration      *prometheus.HistogramVec
}

// NewSettlementMetrics registers the settlement metrics on the provided registerer.
func NewSettlementMetrics(reg prometheus.Registerer) *SettlementMetrics {
	if reg == nil {
		return &SettlementMetrics{}
	}
	webhookEvents := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "webhook_events_total",
		Help: "Gateway webhook deliveries by event and outcome.",
	}, []string{"event", "outcome"})
	settlements := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "cashout_settlements_total",
		Help: "Cashout settlements by terminal status.",
	}, []string{"status"})
	payouts := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "payouts_initiated_total",
		Help: "Gateway payouts initiated by method.",
	}, []string{"method"})
	duration := prometheus.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "webhook_settlement_duration_seconds",
		Help:    "Duration of webhook settlement handling in seconds.",
		Buckets: prometheus.DefBuckets,
	}, []string{"event"})
	reg.MustRegister(webhookEvents, settlements, payouts, duration)
	return &SettlementMetrics{
		webhookEvents: webhookEvents,
		settlements:   settlements,
		payouts:       payouts,
		duration:      duration,
	}
}

// IncWebhookEvent counts one webhook delivery by processing outcome.
func (m *SettlementMetrics) IncWebhookEvent(event, outcome string) {
	if m == nil || m.webhookEvents == nil {
		return
	}
	m.webhookEvents.WithLabelValues(normalizeLabel(event), normalizeLabel(outcome)).Inc()
}

// IncSettlement counts one cashout reaching a terminal status.
func (m *SettlementMetrics) IncSettlement(status string) {
	if m == nil || m.settlements == nil {
		return
	}
	m.settlements.WithLabelValues(normalizeLabel(status)).Inc()
}

// IncPayoutInitiated counts one payout handed to the gateway.
func (m *SettlementMetrics) IncPayoutInitiated(method string) {
	if m == nil || m.payouts == nil {
		return
	}
	m.payouts.WithLabelValues(normalizeLabel(method)).Inc()
}

// ObserveSettlementDuration records how long webhook settlement took.
func (m *SettlementMetrics) ObserveSettlementDuration(event string, duration time.Duration) {
	if m == nil || m.duration == nil {
		return
	}
	m.duration.WithLabelValues(normalizeLabel(event)).Observe(duration.Seconds())
}

func normalizeLabel(value string) string {
	if value == "" {
		return "unknown"
	}
	return value
}
