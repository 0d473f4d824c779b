package asset

import (
	"math"
	"time"
)

// StorageFacility is a warehouse, silo or yard with a tonnage capacity.
// Used is not capped by Capacity; Utilization clamps the derived percentage.
type StorageFacility struct {
	ID         string         `json:"id"`
	Name       string         `json:"name" validate:"required,notblank,max=120"`
	Location   string         `json:"location" validate:"max=200"`
	Capacity   float64        `json:"capacity" validate:"gte=0"`
	Used       float64        `json:"used" validate:"gte=0"`
	Status     FacilityStatus `json:"status" validate:"required,oneof=OK Full Critical Closed"`
	LastUpdate time.Time      `json:"lastUpdate"`
}

// FacilityDraft is a storage facility before it has an identity.
type FacilityDraft struct {
	Name     string         `json:"name" validate:"required,notblank,max=120"`
	Location string         `json:"location" validate:"max=200"`
	Capacity float64        `json:"capacity" validate:"gte=0"`
	Used     float64        `json:"used" validate:"gte=0"`
	Status   FacilityStatus `json:"status" validate:"required,oneof=OK Full Critical Closed"`
}

// NewStorageFacility assigns an identity and first update time to a draft.
func NewStorageFacility(id string, d FacilityDraft, at time.Time) StorageFacility {
	return StorageFacility{
		ID:         id,
		Name:       d.Name,
		Location:   d.Location,
		Capacity:   d.Capacity,
		Used:       d.Used,
		Status:     d.Status,
		LastUpdate: at,
	}
}

// Draft strips identity and timestamp.
func (f StorageFacility) Draft() FacilityDraft {
	return FacilityDraft{
		Name:     f.Name,
		Location: f.Location,
		Capacity: f.Capacity,
		Used:     f.Used,
		Status:   f.Status,
	}
}

// Utilization is used/capacity as a whole percentage in [0, 100].
// A facility without capacity reports 0.
func (f StorageFacility) Utilization() int {
	if f.Capacity <= 0 {
		return 0
	}
	pct := math.Round(f.Used / f.Capacity * 100)
	switch {
	case pct < 0:
		return 0
	case pct > 100:
		return 100
	default:
		return int(pct)
	}
}

// Touched returns f with LastUpdate moved to at, never backwards relative to
// the previous stored value.
func (f StorageFacility) Touched(previous time.Time, at time.Time) StorageFacility {
	if at.Before(previous) {
		at = previous
	}
	f.LastUpdate = at
	return f
}
