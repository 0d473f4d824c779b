package handlers

import (
	"time"

	"github.com/orris-inc/harborline/internal/domain/asset"
)

// FacilityRequest is the body of facility create and update calls.
type FacilityRequest struct {
	Name     string  `json:"name"`
	Location string  `json:"location"`
	Capacity float64 `json:"capacity"`
	Used     float64 `json:"used"`
	Status   string  `json:"status"`
}

func (r FacilityRequest) draft() asset.FacilityDraft {
	return asset.FacilityDraft{
		Name:     r.Name,
		Location: r.Location,
		Capacity: r.Capacity,
		Used:     r.Used,
		Status:   asset.FacilityStatus(r.Status),
	}
}

// VesselRequest is the body of vessel create and update calls. ETA is RFC 3339.
type VesselRequest struct {
	Name        string     `json:"name"`
	Cargo       string     `json:"cargo"`
	Tonnage     float64    `json:"tonnage"`
	Status      string     `json:"status"`
	Destination string     `json:"destination"`
	ETA         *time.Time `json:"eta"`
	Position    string     `json:"position"`
}

func (r VesselRequest) draft() asset.VesselDraft {
	d := asset.VesselDraft{
		Name:        r.Name,
		Cargo:       r.Cargo,
		Tonnage:     r.Tonnage,
		Status:      asset.VesselStatus(r.Status),
		Destination: r.Destination,
		Position:    r.Position,
	}
	if r.ETA != nil {
		eta := r.ETA.UTC()
		d.ETA = &eta
	}
	return d
}
