// Package metrics exports record-layer observations to Prometheus.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"

	"github.com/orris-inc/harborline/internal/application/assets"
	"github.com/orris-inc/harborline/internal/domain/asset"
)

const namespace = "harborline"

// Recorder implements assets.Metrics.
type Recorder struct {
	regime      prometheus.Gauge
	transitions *prometheus.CounterVec
	snapshots   *prometheus.CounterVec
	writes      *prometheus.CounterVec
}

// NewRecorder registers the record-layer metrics with reg.
func NewRecorder(reg prometheus.Registerer) *Recorder {
	factory := promauto.With(reg)

	return &Recorder{
		regime: factory.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "regime",
			Help:      "Authoritative store in use: 0 local, 1 shared",
		}),
		transitions: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "regime_transitions_total",
			Help:      "Regime transitions by source and target regime",
		}, []string{"from", "to"}),
		snapshots: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "snapshots_total",
			Help:      "Remote collection snapshots by kind and outcome",
		}, []string{"kind", "outcome"}),
		writes: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "remote_writes_total",
			Help:      "Remote record mutations by operation and result",
		}, []string{"op", "result"}),
	}
}

var _ assets.Metrics = (*Recorder)(nil)

func (r *Recorder) RegimeChanged(from, to assets.Regime) {
	r.transitions.WithLabelValues(from.String(), to.String()).Inc()
	r.regime.Set(float64(to))
}

func (r *Recorder) SnapshotApplied(kind asset.Kind) {
	r.snapshots.WithLabelValues(kind.String(), "applied").Inc()
}

func (r *Recorder) SnapshotDiscarded(kind asset.Kind) {
	r.snapshots.WithLabelValues(kind.String(), "discarded").Inc()
}

func (r *Recorder) RemoteWrite(op string, err error) {
	result := "ok"
	if err != nil {
		result = "error"
	}
	r.writes.WithLabelValues(op, result).Inc()
}
