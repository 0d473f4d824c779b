package remotestore

import (
	"encoding/json"
	"fmt"
	"time"

	"github.com/orris-inc/harborline/internal/domain/asset"
)

// Document payloads mirror the entity attributes. The id lives in the
// document key, never in the payload.

type facilityDoc struct {
	Name       string               `json:"name"`
	Location   string               `json:"location"`
	Capacity   float64              `json:"capacity"`
	Used       float64              `json:"used"`
	Status     asset.FacilityStatus `json:"status"`
	LastUpdate time.Time            `json:"lastUpdate"`
}

type vesselDoc struct {
	Name        string             `json:"name"`
	Cargo       string             `json:"cargo"`
	Tonnage     float64            `json:"tonnage"`
	Status      asset.VesselStatus `json:"status"`
	Destination string             `json:"destination,omitempty"`
	ETA         *time.Time         `json:"eta,omitempty"`
	Position    string             `json:"position,omitempty"`
}

type healthcheckDoc struct {
	Probe  string    `json:"probe"`
	SentAt time.Time `json:"sentAt"`
}

func encodeFacility(f asset.StorageFacility) ([]byte, error) {
	return json.Marshal(facilityDoc{
		Name:       f.Name,
		Location:   f.Location,
		Capacity:   f.Capacity,
		Used:       f.Used,
		Status:     f.Status,
		LastUpdate: f.LastUpdate,
	})
}

func decodeFacility(id string, data []byte) (asset.StorageFacility, error) {
	var d facilityDoc
	if err := json.Unmarshal(data, &d); err != nil {
		return asset.StorageFacility{}, err
	}
	return asset.StorageFacility{
		ID:         id,
		Name:       d.Name,
		Location:   d.Location,
		Capacity:   d.Capacity,
		Used:       d.Used,
		Status:     d.Status,
		LastUpdate: d.LastUpdate,
	}, nil
}

func encodeVessel(v asset.Vessel) ([]byte, error) {
	return json.Marshal(vesselDoc{
		Name:        v.Name,
		Cargo:       v.Cargo,
		Tonnage:     v.Tonnage,
		Status:      v.Status,
		Destination: v.Destination,
		ETA:         v.ETA,
		Position:    v.Position,
	})
}

func decodeVessel(id string, data []byte) (asset.Vessel, error) {
	var d vesselDoc
	if err := json.Unmarshal(data, &d); err != nil {
		return asset.Vessel{}, err
	}
	return asset.Vessel{
		ID:          id,
		Name:        d.Name,
		Cargo:       d.Cargo,
		Tonnage:     d.Tonnage,
		Status:      d.Status,
		Destination: d.Destination,
		ETA:         d.ETA,
		Position:    d.Position,
	}, nil
}

func encodeJSON(v any) ([]byte, error) {
	data, err := json.Marshal(v)
	if err != nil {
		return nil, fmt.Errorf("failed to encode document: %w", err)
	}
	return data, nil
}

func decodeJSON(data []byte, v any) error {
	return json.Unmarshal(data, v)
}
