package assets

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/orris-inc/harborline/internal/domain/asset"
	"github.com/orris-inc/harborline/internal/shared/errors"
)

func TestGateway_ValidatesInput(t *testing.T) {
	h := newHarness(t).start(t)
	ctx := context.Background()

	tests := []struct {
		name  string
		draft asset.FacilityDraft
	}{
		{name: "missing name", draft: asset.FacilityDraft{Status: asset.FacilityStatusOK}},
		{name: "markup only name", draft: asset.FacilityDraft{Name: "<br/>", Status: asset.FacilityStatusOK}},
		{name: "negative capacity", draft: asset.FacilityDraft{Name: "Silo", Capacity: -5, Status: asset.FacilityStatusOK}},
		{name: "unknown status", draft: asset.FacilityDraft{Name: "Silo", Status: "Open"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := h.gateway.CreateFacility(ctx, tt.draft)
			require.Error(t, err)
			assert.True(t, errors.IsValidationError(err))
		})
	}

	assert.Len(t, h.gateway.ListFacilities(), 3)
	assert.Zero(t, h.local.saveCount())
}

func TestGateway_SanitizesFreeText(t *testing.T) {
	h := newHarness(t).start(t)
	ctx := context.Background()

	id, err := h.gateway.CreateVessel(ctx, asset.VesselDraft{
		Name:        "<b>MV Clean</b>",
		Cargo:       "Grain<script>alert(1)</script>",
		Destination: "  Rotterdam ",
		Status:      asset.VesselStatusAtSea,
	})
	require.NoError(t, err)

	vessels := h.gateway.ListVessels()
	got := vessels[asset.RecordSet{Vessels: vessels}.VesselIndex(id)]
	assert.Equal(t, "MV Clean", got.Name)
	assert.Equal(t, "Grain", got.Cargo)
	assert.Equal(t, "Rotterdam", got.Destination)
}

func TestGateway_RequiresIDs(t *testing.T) {
	h := newHarness(t).start(t)
	ctx := context.Background()

	assert.True(t, errors.IsValidationError(h.gateway.DeleteFacility(ctx, "")))
	assert.True(t, errors.IsValidationError(h.gateway.DeleteVessel(ctx, " ")))
	assert.True(t, errors.IsValidationError(h.gateway.UpdateVessel(ctx, asset.Vessel{Name: "x", Status: asset.VesselStatusAtSea})))
}

func TestParseStatus(t *testing.T) {
	st, err := ParseFacilityStatus("Critical")
	require.NoError(t, err)
	assert.Equal(t, asset.FacilityStatusCritical, st)

	_, err = ParseVesselStatus("Sunk")
	assert.True(t, errors.IsValidationError(err))
}
