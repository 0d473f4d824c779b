package metrics

import (
	"errors"
	"testing"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/orris-inc/harborline/internal/application/assets"
	"github.com/orris-inc/harborline/internal/domain/asset"
)

func TestRecorder(t *testing.T) {
	reg := prometheus.NewRegistry()
	r := NewRecorder(reg)

	r.RegimeChanged(assets.RegimeLocal, assets.RegimeShared)
	assert.Equal(t, 1.0, testutil.ToFloat64(r.regime))
	assert.Equal(t, 1.0, testutil.ToFloat64(r.transitions.WithLabelValues("local", "shared")))

	r.RegimeChanged(assets.RegimeShared, assets.RegimeLocal)
	assert.Equal(t, 0.0, testutil.ToFloat64(r.regime))

	r.SnapshotApplied(asset.KindFacility)
	r.SnapshotApplied(asset.KindFacility)
	r.SnapshotDiscarded(asset.KindVessel)
	assert.Equal(t, 2.0, testutil.ToFloat64(r.snapshots.WithLabelValues("storageFacilities", "applied")))
	assert.Equal(t, 1.0, testutil.ToFloat64(r.snapshots.WithLabelValues("vessels", "discarded")))

	r.RemoteWrite("create", nil)
	r.RemoteWrite("update", errors.New("boom"))
	assert.Equal(t, 1.0, testutil.ToFloat64(r.writes.WithLabelValues("create", "ok")))
	assert.Equal(t, 1.0, testutil.ToFloat64(r.writes.WithLabelValues("update", "error")))

	families, err := reg.Gather()
	require.NoError(t, err)
	names := make([]string, 0, len(families))
	for _, f := range families {
		names = append(names, f.GetName())
	}
	assert.ElementsMatch(t, []string{
		"harborline_regime",
		"harborline_regime_transitions_total",
		"harborline_snapshots_total",
		"harborline_remote_writes_total",
	}, names)
}
