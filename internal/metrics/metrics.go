// Package metrics exposes Prometheus collectors for the voting core.
package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

// Vote outcomes reported to VoteCast.
const (
	OutcomeRecorded    = "recorded"
	OutcomeDuplicate   = "duplicate"
	OutcomeFailed      = "failed"
	OutcomeRateLimited = "rate_limited"
)

type Metrics interface {
	VoteCast(outcome string)
	LedgerCall(op string, d time.Duration, err error)
	BroadcastDropped(n int)
	ConnectionOpened()
	ConnectionClosed()
}

// NoOp discards everything. Used by tests and when metrics are disabled.
type NoOp struct{}

func (NoOp) VoteCast(string)                         {}
func (NoOp) LedgerCall(string, time.Duration, error) {}
func (NoOp) BroadcastDropped(int)                    {}
func (NoOp) ConnectionOpened()                       {}
func (NoOp) ConnectionClosed()                       {}

type Prometheus struct {
	votes       *prometheus.CounterVec
	ledgerErrs  *prometheus.CounterVec
	ledgerTime  *prometheus.HistogramVec
	dropped     prometheus.Counter
	connections prometheus.Gauge
}

// NewPrometheus creates the collectors and registers them on reg.
func NewPrometheus(reg prometheus.Registerer) (*Prometheus, error) {
	p := &Prometheus{
		votes: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "tracklist",
			Name:      "votes_total",
			Help:      "Vote requests by outcome.",
		}, []string{"outcome"}),
		ledgerErrs: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "tracklist",
			Name:      "ledger_errors_total",
			Help:      "Failed ledger calls by operation.",
		}, []string{"op"}),
		ledgerTime: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: "tracklist",
			Name:      "ledger_duration_seconds",
			Help:      "Ledger call latency by operation.",
			Buckets:   prometheus.DefBuckets,
		}, []string{"op"}),
		dropped: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "tracklist",
			Name:      "broadcast_dropped_total",
			Help:      "Room broadcast frames that could not be queued for a recipient.",
		}),
		connections: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: "tracklist",
			Name:      "connections",
			Help:      "Open websocket connections.",
		}),
	}
	for _, c := range []prometheus.Collector{p.votes, p.ledgerErrs, p.ledgerTime, p.dropped, p.connections} {
		if err := reg.Register(c); err != nil {
			return nil, err
		}
	}
	return p, nil
}

func (p *Prometheus) VoteCast(outcome string) { p.votes.WithLabelValues(outcome).Inc() }

func (p *Prometheus) LedgerCall(op string, d time.Duration, err error) {
	p.ledgerTime.WithLabelValues(op).Observe(d.Seconds())
	if err != nil {
		p.ledgerErrs.WithLabelValues(op).Inc()
	}
}

func (p *Prometheus) BroadcastDropped(n int) {
	if n > 0 {
		p.dropped.Add(float64(n))
	}
}

func (p *Prometheus) ConnectionOpened() { p.connections.Inc() }
func (p *Prometheus) ConnectionClosed() { p.connections.Dec() }
