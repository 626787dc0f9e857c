// File: metrics.go

package vouch

import "github.com/prometheus/client_golang/prometheus"

// Metrics exposes a small set of plain counters for the core's hot paths.
// No histograms, no full metrics subsystem — just enough to alert on a
// sudden spike in rejections.
type Metrics struct {
	tokensSigned        prometheus.Counter
	tokensVerified       *prometheus.CounterVec
	replayRejections     prometheus.Counter
	revocationChecks     prometheus.Counter
}

// NewMetrics registers the core's counters against reg. Pass
// prometheus.DefaultRegisterer to use the global registry.
func NewMetrics(reg prometheus.Registerer) *Metrics {
	m := &Metrics{
		tokensSigned: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "vouch_tokens_signed_total",
			Help: "Total vouch-tokens signed by this process.",
		}),
		tokensVerified: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "vouch_tokens_verified_total",
			Help: "Total verification attempts, partitioned by outcome.",
		}, []string{"result"}),
		replayRejections: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "vouch_replay_rejections_total",
			Help: "Total verifications rejected as replays.",
		}),
		revocationChecks: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "vouch_revocation_checks_total",
			Help: "Total revocation checks performed.",
		}),
	}
	reg.MustRegister(m.tokensSigned, m.tokensVerified, m.replayRejections, m.revocationChecks)
	return m
}

// ObserveSign increments the signed-token counter.
func (m *Metrics) ObserveSign() {
	if m == nil {
		return
	}
	m.tokensSigned.Inc()
}

// ObserveVerify increments the verified-token counter for result, plus the
// replay-specific counter when the rejection was a replay.
func (m *Metrics) ObserveVerify(result string) {
	if m == nil {
		return
	}
	m.tokensVerified.WithLabelValues(result).Inc()
	if result == "replay" {
		m.replayRejections.Inc()
	}
}

// ObserveRevocationCheck increments the revocation-check counter. Call it
// once per token that actually reaches the revocation stage, regardless of
// outcome — it measures how often the check runs, not how often it rejects.
func (m *Metrics) ObserveRevocationCheck() {
	if m == nil {
		return
	}
	m.revocationChecks.Inc()
}
