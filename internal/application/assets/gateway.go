package assets

import (
	"context"
	stderrors "errors"
	"time"

	"github.com/orris-inc/harborline/internal/domain/asset"
	"github.com/orris-inc/harborline/internal/shared/errors"
	"github.com/orris-inc/harborline/internal/shared/services/sanitize"
	"github.com/orris-inc/harborline/internal/shared/utils"
)

// Gateway is the record API used by the presentation layer. Input is
// sanitized and validated here; the controller's active write strategy
// decides where the write lands.
type Gateway struct {
	controller *Controller
	sanitizer  sanitize.Service
}

func NewGateway(controller *Controller, sanitizer sanitize.Service) *Gateway {
	if sanitizer == nil {
		sanitizer = sanitize.NewService()
	}
	return &Gateway{controller: controller, sanitizer: sanitizer}
}

// ListFacilities returns the facilities of the current view.
func (g *Gateway) ListFacilities() []asset.StorageFacility {
	return g.controller.Snapshot().Records.Facilities
}

// ListVessels returns the vessels of the current view.
func (g *Gateway) ListVessels() []asset.Vessel {
	return g.controller.Snapshot().Records.Vessels
}

// CreateFacility returns the new id. In the shared regime the id is assigned
// by the remote store.
func (g *Gateway) CreateFacility(ctx context.Context, d asset.FacilityDraft) (string, error) {
	f := g.cleanFacility(asset.NewStorageFacility("", d, time.Time{}))
	if err := utils.ValidateStruct(f.Draft()); err != nil {
		return "", err
	}
	return g.submit(ctx, &command{op: opCreate, kind: asset.KindFacility, facility: f})
}

// UpdateFacility replaces every field of an existing facility. LastUpdate is
// assigned by the gateway and never moves backwards.
func (g *Gateway) UpdateFacility(ctx context.Context, f asset.StorageFacility) error {
	if err := utils.ValidateID(f.ID); err != nil {
		return err
	}
	f = g.cleanFacility(f)
	if err := utils.ValidateStruct(f); err != nil {
		return err
	}
	_, err := g.submit(ctx, &command{op: opUpdate, kind: asset.KindFacility, facility: f})
	return err
}

// DeleteFacility succeeds for ids that do not exist.
func (g *Gateway) DeleteFacility(ctx context.Context, id string) error {
	if err := utils.ValidateID(id); err != nil {
		return err
	}
	_, err := g.submit(ctx, &command{op: opDelete, kind: asset.KindFacility, id: id})
	return err
}

func (g *Gateway) CreateVessel(ctx context.Context, d asset.VesselDraft) (string, error) {
	v := g.cleanVessel(asset.NewVessel("", d))
	if err := utils.ValidateStruct(v.Draft()); err != nil {
		return "", err
	}
	return g.submit(ctx, &command{op: opCreate, kind: asset.KindVessel, vessel: v})
}

func (g *Gateway) UpdateVessel(ctx context.Context, v asset.Vessel) error {
	if err := utils.ValidateID(v.ID); err != nil {
		return err
	}
	v = g.cleanVessel(v)
	if err := utils.ValidateStruct(v); err != nil {
		return err
	}
	_, err := g.submit(ctx, &command{op: opUpdate, kind: asset.KindVessel, vessel: v})
	return err
}

func (g *Gateway) DeleteVessel(ctx context.Context, id string) error {
	if err := utils.ValidateID(id); err != nil {
		return err
	}
	_, err := g.submit(ctx, &command{op: opDelete, kind: asset.KindVessel, id: id})
	return err
}

func (g *Gateway) submit(ctx context.Context, cmd *command) (string, error) {
	id, err := g.controller.submit(ctx, cmd)
	switch {
	case err == nil:
		return id, nil
	case stderrors.Is(err, context.Canceled), stderrors.Is(err, context.DeadlineExceeded):
		return "", err
	default:
		return "", toAppError(err, "record write failed")
	}
}

func (g *Gateway) cleanFacility(f asset.StorageFacility) asset.StorageFacility {
	f.Name = g.sanitizer.Text(f.Name)
	f.Location = g.sanitizer.Text(f.Location)
	return f
}

func (g *Gateway) cleanVessel(v asset.Vessel) asset.Vessel {
	v.Name = g.sanitizer.Text(v.Name)
	v.Cargo = g.sanitizer.Text(v.Cargo)
	v.Destination = g.sanitizer.Text(v.Destination)
	v.Position = g.sanitizer.Text(v.Position)
	return v
}

// ParseFacilityStatus wraps the domain parser with a validation error.
func ParseFacilityStatus(s string) (asset.FacilityStatus, error) {
	st, err := asset.ParseFacilityStatus(s)
	if err != nil {
		return "", errors.NewValidationError("invalid facility status", err.Error())
	}
	return st, nil
}

// ParseVesselStatus wraps the domain parser with a validation error.
func ParseVesselStatus(s string) (asset.VesselStatus, error) {
	st, err := asset.ParseVesselStatus(s)
	if err != nil {
		return "", errors.NewValidationError("invalid vessel status", err.Error())
	}
	return st, nil
}
