// Package metrics exports accessory decisions to Prometheus.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"

	"mechcore/internal/accessory"
	"mechcore/internal/aggregate"
)

const namespace = "mechcore"

// Metrics implements accessory.Observer and tracks sessions.
type Metrics struct {
	denials   *prometheus.CounterVec
	ejections *prometheus.CounterVec
	refreshes *prometheus.CounterVec
	active    *prometheus.GaugeVec
	sessions  prometheus.Gauge
	strikes   *prometheus.CounterVec
}

// New registers the collectors with reg.
func New(reg prometheus.Registerer) *Metrics {
	f := promauto.With(reg)
	return &Metrics{
		denials: f.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "accessory",
			Name:      "equip_denials_total",
			Help:      "Equip attempts refused, by accessory and reason.",
		}, []string{"kind", "reason"}),
		ejections: f.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "accessory",
			Name:      "ejections_total",
			Help:      "Accessories forcibly unequipped, by accessory and reason.",
		}, []string{"kind", "reason"}),
		refreshes: f.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "accessory",
			Name:      "refreshes_total",
			Help:      "Periodic accessory refreshes, by accessory and resource tier.",
		}, []string{"kind", "tier"}),
		active: f.NewGaugeVec(prometheus.GaugeOpts{
			Namespace: namespace,
			Subsystem: "accessory",
			Name:      "active_modules",
			Help:      "Active module count seen by the latest refresh, by accessory.",
		}, []string{"kind"}),
		sessions: f.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "sessions",
			Help:      "Connected player sessions.",
		}),
		strikes: f.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "strikes_total",
			Help:      "Strikes against training targets, by outcome.",
		}, []string{"outcome"}),
	}
}

func (m *Metrics) Denied(k accessory.Kind, r accessory.Reason) {
	m.denials.WithLabelValues(string(k), r.String()).Inc()
}

func (m *Metrics) Ejected(k accessory.Kind, r accessory.Reason) {
	m.ejections.WithLabelValues(string(k), r.String()).Inc()
}

func (m *Metrics) Refreshed(k accessory.Kind, s aggregate.Snapshot) {
	m.refreshes.WithLabelValues(string(k), s.Tier.String()).Inc()
	m.active.WithLabelValues(string(k)).Set(float64(s.Active))
}

// SessionJoined and SessionLeft track the session gauge.
func (m *Metrics) SessionJoined() { m.sessions.Inc() }
func (m *Metrics) SessionLeft()   { m.sessions.Dec() }

// Strike counts one strike. landed=false means the target's window
// absorbed it.
func (m *Metrics) Strike(landed bool) {
	outcome := "absorbed"
	if landed {
		outcome = "landed"
	}
	m.strikes.WithLabelValues(outcome).Inc()
}

var _ accessory.Observer = (*Metrics)(nil)
