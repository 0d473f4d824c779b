package asset

import "fmt"

// FacilityStatus is the operating state of a storage facility.
type FacilityStatus string

const (
	FacilityStatusOK       FacilityStatus = "OK"
	FacilityStatusFull     FacilityStatus = "Full"
	FacilityStatusCritical FacilityStatus = "Critical"
	FacilityStatusClosed   FacilityStatus = "Closed"
)

var validFacilityStatuses = map[FacilityStatus]bool{
	FacilityStatusOK:       true,
	FacilityStatusFull:     true,
	FacilityStatusCritical: true,
	FacilityStatusClosed:   true,
}

func (s FacilityStatus) IsValid() bool {
	return validFacilityStatuses[s]
}

// ParseFacilityStatus accepts the canonical spelling only.
func ParseFacilityStatus(s string) (FacilityStatus, error) {
	status := FacilityStatus(s)
	if !status.IsValid() {
		return "", fmt.Errorf("invalid facility status %q: want one of OK, Full, Critical, Closed", s)
	}
	return status, nil
}

// VesselStatus is the voyage state of a vessel.
type VesselStatus string

const (
	VesselStatusAtSea       VesselStatus = "AtSea"
	VesselStatusLoading     VesselStatus = "Loading"
	VesselStatusDischarging VesselStatus = "Discharging"
	VesselStatusAnchored    VesselStatus = "Anchored"
	VesselStatusDelayed     VesselStatus = "Delayed"
)

var validVesselStatuses = map[VesselStatus]bool{
	VesselStatusAtSea:       true,
	VesselStatusLoading:     true,
	VesselStatusDischarging: true,
	VesselStatusAnchored:    true,
	VesselStatusDelayed:     true,
}

func (s VesselStatus) IsValid() bool {
	return validVesselStatuses[s]
}

func ParseVesselStatus(s string) (VesselStatus, error) {
	status := VesselStatus(s)
	if !status.IsValid() {
		return "", fmt.Errorf("invalid vessel status %q: want one of AtSea, Loading, Discharging, Anchored, Delayed", s)
	}
	return status, nil
}
