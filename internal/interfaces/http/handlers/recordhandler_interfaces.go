package handlers

import (
	"context"
	"time"

	"github.com/orris-inc/harborline/internal/application/assets"
	"github.com/orris-inc/harborline/internal/domain/asset"
)

// Application interfaces for the record and status handlers

type recordGateway interface {
	ListFacilities() []asset.StorageFacility
	CreateFacility(ctx context.Context, d asset.FacilityDraft) (string, error)
	UpdateFacility(ctx context.Context, f asset.StorageFacility) error
	DeleteFacility(ctx context.Context, id string) error

	ListVessels() []asset.Vessel
	CreateVessel(ctx context.Context, d asset.VesselDraft) (string, error)
	UpdateVessel(ctx context.Context, v asset.Vessel) error
	DeleteVessel(ctx context.Context, id string) error
}

type viewSource interface {
	Snapshot() assets.View
	SelfTest(ctx context.Context) (time.Duration, error)
}
