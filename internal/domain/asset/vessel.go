package asset

import "time"

// Vessel is a transport ship tracked by cargo, status and voyage details.
type Vessel struct {
	ID          string       `json:"id"`
	Name        string       `json:"name" validate:"required,notblank,max=120"`
	Cargo       string       `json:"cargo" validate:"max=200"`
	Tonnage     float64      `json:"tonnage" validate:"gte=0"`
	Status      VesselStatus `json:"status" validate:"required,oneof=AtSea Loading Discharging Anchored Delayed"`
	Destination string       `json:"destination,omitempty" validate:"max=120"`
	ETA         *time.Time   `json:"eta,omitempty"`
	Position    string       `json:"position,omitempty" validate:"max=200"`
}

// VesselDraft is a vessel before it has an identity.
type VesselDraft struct {
	Name        string       `json:"name" validate:"required,notblank,max=120"`
	Cargo       string       `json:"cargo" validate:"max=200"`
	Tonnage     float64      `json:"tonnage" validate:"gte=0"`
	Status      VesselStatus `json:"status" validate:"required,oneof=AtSea Loading Discharging Anchored Delayed"`
	Destination string       `json:"destination,omitempty" validate:"max=120"`
	ETA         *time.Time   `json:"eta,omitempty"`
	Position    string       `json:"position,omitempty" validate:"max=200"`
}

func NewVessel(id string, d VesselDraft) Vessel {
	return Vessel{
		ID:          id,
		Name:        d.Name,
		Cargo:       d.Cargo,
		Tonnage:     d.Tonnage,
		Status:      d.Status,
		Destination: d.Destination,
		ETA:         d.ETA,
		Position:    d.Position,
	}
}

func (v Vessel) Draft() VesselDraft {
	return VesselDraft{
		Name:        v.Name,
		Cargo:       v.Cargo,
		Tonnage:     v.Tonnage,
		Status:      v.Status,
		Destination: v.Destination,
		ETA:         v.ETA,
		Position:    v.Position,
	}
}
