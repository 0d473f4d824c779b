package asset

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestStorageFacility_Utilization(t *testing.T) {
	tests := []struct {
		name     string
		capacity float64
		used     float64
		want     int
	}{
		{name: "rounds to nearest percent", capacity: 8000, used: 7800, want: 98},
		{name: "empty", capacity: 5000, used: 0, want: 0},
		{name: "zero capacity", capacity: 0, used: 100, want: 0},
		{name: "over capacity clamps", capacity: 100, used: 250, want: 100},
		{name: "negative usage clamps", capacity: 100, used: -10, want: 0},
		{name: "half rounds up", capacity: 200, used: 1, want: 1},
		{name: "exactly full", capacity: 3000, used: 3000, want: 100},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := StorageFacility{Capacity: tt.capacity, Used: tt.used}
			assert.Equal(t, tt.want, f.Utilization())
		})
	}
}

func TestStorageFacility_Touched(t *testing.T) {
	prev := time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC)

	later := StorageFacility{}.Touched(prev, prev.Add(time.Minute))
	assert.Equal(t, prev.Add(time.Minute), later.LastUpdate)

	// A clock that moved backwards never rewinds the record.
	earlier := StorageFacility{}.Touched(prev, prev.Add(-time.Hour))
	assert.Equal(t, prev, earlier.LastUpdate)
}

func TestNewStorageFacility_DraftRoundTrip(t *testing.T) {
	d := FacilityDraft{Name: "Depot", Location: "Quay 1", Capacity: 10, Used: 4, Status: FacilityStatusOK}
	at := time.Date(2024, 1, 2, 3, 4, 5, 0, time.UTC)

	f := NewStorageFacility("sf_x", d, at)
	assert.Equal(t, "sf_x", f.ID)
	assert.Equal(t, at, f.LastUpdate)
	assert.Equal(t, d, f.Draft())
}

func TestParseStatus(t *testing.T) {
	s, err := ParseFacilityStatus("Critical")
	assert.NoError(t, err)
	assert.Equal(t, FacilityStatusCritical, s)

	_, err = ParseFacilityStatus("critical")
	assert.Error(t, err)

	v, err := ParseVesselStatus("Discharging")
	assert.NoError(t, err)
	assert.Equal(t, VesselStatusDischarging, v)

	_, err = ParseVesselStatus("Sunk")
	assert.Error(t, err)
}
