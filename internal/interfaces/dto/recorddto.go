// Package dto holds the presentation shapes shared by the HTTP API and the
// CLI output encoders.
package dto

import (
	"time"

	"github.com/orris-inc/harborline/internal/application/assets"
	"github.com/orris-inc/harborline/internal/domain/asset"
	"github.com/orris-inc/harborline/internal/domain/backend"
	"github.com/orris-inc/harborline/internal/shared/biztime"
	"github.com/orris-inc/harborline/internal/shared/mapper"
	"github.com/orris-inc/harborline/internal/shared/utils"
)

type FacilityDTO struct {
	ID          string  `json:"id" yaml:"id"`
	Name        string  `json:"name" yaml:"name"`
	Location    string  `json:"location" yaml:"location"`
	Capacity    float64 `json:"capacity" yaml:"capacity"`
	Used        float64 `json:"used" yaml:"used"`
	Utilization int     `json:"utilization" yaml:"utilization"`
	Status      string  `json:"status" yaml:"status"`
	LastUpdate  string  `json:"last_update" yaml:"last_update"`
}

type VesselDTO struct {
	ID          string  `json:"id" yaml:"id"`
	Name        string  `json:"name" yaml:"name"`
	Cargo       string  `json:"cargo" yaml:"cargo"`
	Tonnage     float64 `json:"tonnage" yaml:"tonnage"`
	Status      string  `json:"status" yaml:"status"`
	Destination string  `json:"destination,omitempty" yaml:"destination,omitempty"`
	ETA         string  `json:"eta,omitempty" yaml:"eta,omitempty"`
	Position    string  `json:"position,omitempty" yaml:"position,omitempty"`
}

type IdentityDTO struct {
	ID    string `json:"id" yaml:"id"`
	Email string `json:"email" yaml:"email"`
}

type StatusDTO struct {
	Regime         string       `json:"regime" yaml:"regime"`
	Phase          string       `json:"phase" yaml:"phase"`
	Namespace      string       `json:"namespace,omitempty" yaml:"namespace,omitempty"`
	Identity       *IdentityDTO `json:"identity,omitempty" yaml:"identity,omitempty"`
	Configured     bool         `json:"configured" yaml:"configured"`
	ConfigReadOnly bool         `json:"config_read_only" yaml:"config_read_only"`
	LastError      string       `json:"last_error,omitempty" yaml:"last_error,omitempty"`
	Facilities     int          `json:"facilities" yaml:"facilities"`
	Vessels        int          `json:"vessels" yaml:"vessels"`
}

type HealthcheckDTO struct {
	Namespace string `json:"namespace" yaml:"namespace"`
	LatencyMS int64  `json:"latency_ms" yaml:"latency_ms"`
}

// formatTime renders t in the business timezone as RFC 3339.
func formatTime(t time.Time) string {
	if t.IsZero() {
		return ""
	}
	return biztime.ToBizTimezone(t).Format(time.RFC3339)
}

func ToFacilityDTO(f asset.StorageFacility) FacilityDTO {
	return FacilityDTO{
		ID:          f.ID,
		Name:        f.Name,
		Location:    f.Location,
		Capacity:    f.Capacity,
		Used:        f.Used,
		Utilization: f.Utilization(),
		Status:      string(f.Status),
		LastUpdate:  formatTime(f.LastUpdate),
	}
}

func ToFacilityDTOs(items []asset.StorageFacility) []FacilityDTO {
	return mapper.MapList(items, ToFacilityDTO)
}

func ToVesselDTO(v asset.Vessel) VesselDTO {
	out := VesselDTO{
		ID:          v.ID,
		Name:        v.Name,
		Cargo:       v.Cargo,
		Tonnage:     v.Tonnage,
		Status:      string(v.Status),
		Destination: v.Destination,
		Position:    v.Position,
	}
	if v.ETA != nil {
		out.ETA = formatTime(*v.ETA)
	}
	return out
}

func ToVesselDTOs(items []asset.Vessel) []VesselDTO {
	return mapper.MapList(items, ToVesselDTO)
}

func ToStatusDTO(v assets.View) StatusDTO {
	out := StatusDTO{
		Regime:         v.Regime.String(),
		Phase:          v.Phase.String(),
		Namespace:      v.Namespace.String(),
		Configured:     v.Configured,
		ConfigReadOnly: v.ConfigReadOnly,
		LastError:      v.LastError,
		Facilities:     len(v.Records.Facilities),
		Vessels:        len(v.Records.Vessels),
	}
	if v.Identity != nil {
		out.Identity = &IdentityDTO{ID: v.Identity.ID, Email: v.Identity.Email}
	}
	return out
}

// BackendDTO is the stored backend descriptor with the API key masked.
type BackendDTO struct {
	APIKey     string `json:"api_key" yaml:"api_key"`
	AuthDomain string `json:"auth_domain" yaml:"auth_domain"`
	ProjectID  string `json:"project_id" yaml:"project_id"`
	OrgKey     string `json:"org_key" yaml:"org_key"`
	ReadOnly   bool   `json:"read_only" yaml:"read_only"`
}

func ToBackendDTO(cfg *backend.Config, readOnly bool) BackendDTO {
	out := BackendDTO{ReadOnly: readOnly}
	if cfg != nil {
		out.APIKey = utils.MaskSecret(cfg.APIKey)
		out.AuthDomain = cfg.AuthDomain
		out.ProjectID = cfg.ProjectID
		out.OrgKey = cfg.OrgKey
	}
	return out
}
