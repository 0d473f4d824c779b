package assets

import (
	"context"
	"time"

	"github.com/orris-inc/harborline/internal/domain/asset"
	"github.com/orris-inc/harborline/internal/domain/backend"
	"github.com/orris-inc/harborline/internal/shared/errors"
	"github.com/orris-inc/harborline/internal/shared/id"
)

type commandOp string

const (
	opCreate commandOp = "create"
	opUpdate commandOp = "update"
	opDelete commandOp = "delete"
)

// command is one gateway write. For creates the record carries the draft
// fields and an empty id.
type command struct {
	ctx      context.Context
	op       commandOp
	kind     asset.Kind
	facility asset.StorageFacility
	vessel   asset.Vessel
	id       string
	reply    chan commandResult
}

type commandResult struct {
	id  string
	err error
}

func (c *command) respond(id string, err error) {
	c.reply <- commandResult{id: id, err: err}
}

func (c *command) targetID() string {
	switch {
	case c.op == opDelete:
		return c.id
	case c.kind == asset.KindFacility:
		return c.facility.ID
	default:
		return c.vessel.ID
	}
}

// writeStrategy applies gateway writes for the active regime. It runs on the
// controller goroutine and must answer every command exactly once, either
// inline or from a goroutine it starts.
type writeStrategy interface {
	regime() Regime
	apply(c *Controller, cmd *command)
}

// localWrites mutates the working copy, persists the full set and publishes
// only once the save has succeeded. A failed save restores the prior set.
type localWrites struct{}

func (localWrites) regime() Regime { return RegimeLocal }

func (localWrites) apply(c *Controller, cmd *command) {
	s := &c.state
	now := c.now()
	prev := s.view.Clone()
	var newID string

	switch {
	case cmd.op == opCreate && cmd.kind == asset.KindFacility:
		fid, err := id.NewFacilityID()
		if err != nil {
			cmd.respond("", errors.NewInternalError("failed to generate id", err.Error()))
			return
		}
		rec := asset.NewStorageFacility(fid, cmd.facility.Draft(), now)
		s.view.Facilities = append(s.view.Facilities, rec)
		asset.SortFacilities(s.view.Facilities)
		newID = fid

	case cmd.op == opCreate && cmd.kind == asset.KindVessel:
		vid, err := id.NewVesselID()
		if err != nil {
			cmd.respond("", errors.NewInternalError("failed to generate id", err.Error()))
			return
		}
		s.view.Vessels = append(s.view.Vessels, asset.NewVessel(vid, cmd.vessel.Draft()))
		asset.SortVessels(s.view.Vessels)
		newID = vid

	case cmd.op == opUpdate && cmd.kind == asset.KindFacility:
		idx := s.view.FacilityIndex(cmd.facility.ID)
		if idx < 0 {
			cmd.respond("", errors.NewNotFoundError("storage facility not found", cmd.facility.ID))
			return
		}
		s.view.Facilities[idx] = cmd.facility.Touched(s.view.Facilities[idx].LastUpdate, now)
		asset.SortFacilities(s.view.Facilities)

	case cmd.op == opUpdate && cmd.kind == asset.KindVessel:
		idx := s.view.VesselIndex(cmd.vessel.ID)
		if idx < 0 {
			cmd.respond("", errors.NewNotFoundError("vessel not found", cmd.vessel.ID))
			return
		}
		s.view.Vessels[idx] = cmd.vessel
		asset.SortVessels(s.view.Vessels)

	case cmd.op == opDelete && cmd.kind == asset.KindFacility:
		idx := s.view.FacilityIndex(cmd.id)
		if idx < 0 {
			cmd.respond("", nil)
			return
		}
		s.view.Facilities = append(s.view.Facilities[:idx], s.view.Facilities[idx+1:]...)

	case cmd.op == opDelete && cmd.kind == asset.KindVessel:
		idx := s.view.VesselIndex(cmd.id)
		if idx < 0 {
			cmd.respond("", nil)
			return
		}
		s.view.Vessels = append(s.view.Vessels[:idx], s.view.Vessels[idx+1:]...)
	}

	// The caller may give up waiting; the save still has to land so the
	// working copy and the stored set stay equal.
	if err := c.local.Save(context.WithoutCancel(cmd.ctx), s.view); err != nil {
		s.view = prev
		c.logger.Errorw("failed to persist local records", "op", cmd.op, "kind", cmd.kind, "error", err)
		cmd.respond("", errors.NewInternalError("failed to persist local records", err.Error()))
		return
	}
	c.publish()
	cmd.respond(newID, nil)
}

// sharedWrites forwards to the remote store off the controller goroutine and
// leaves the view to the subscription.
type sharedWrites struct {
	records RemoteStore
	ns      backend.Namespace
	who     backend.Identity
}

func (sharedWrites) regime() Regime { return RegimeShared }

func (w sharedWrites) apply(c *Controller, cmd *command) {
	now := c.now()

	// LastUpdate never moves backwards relative to what this client has seen.
	if cmd.op == opUpdate && cmd.kind == asset.KindFacility {
		prev := time.Time{}
		if idx := c.state.view.FacilityIndex(cmd.facility.ID); idx >= 0 {
			prev = c.state.view.Facilities[idx].LastUpdate
		}
		cmd.facility = cmd.facility.Touched(prev, now)
	}
	if cmd.op == opCreate && cmd.kind == asset.KindFacility {
		cmd.facility.LastUpdate = now
	}

	c.spawn("assets.remote."+string(cmd.op), func() {
		newID, err := w.call(cmd)
		c.metrics.RemoteWrite(string(cmd.op), err)
		if err != nil {
			c.logger.Warnw("remote write failed",
				"op", cmd.op,
				"kind", cmd.kind,
				"id", cmd.targetID(),
				"namespace", w.ns,
				"error", err,
			)
		}
		cmd.respond(newID, err)
	})
}

func (w sharedWrites) call(cmd *command) (string, error) {
	ctx := cmd.ctx
	switch {
	case cmd.op == opCreate && cmd.kind == asset.KindFacility:
		return w.records.CreateFacility(ctx, w.ns, w.who, cmd.facility)
	case cmd.op == opCreate && cmd.kind == asset.KindVessel:
		return w.records.CreateVessel(ctx, w.ns, w.who, cmd.vessel)
	case cmd.op == opUpdate && cmd.kind == asset.KindFacility:
		return "", w.records.UpdateFacility(ctx, w.ns, w.who, cmd.facility)
	case cmd.op == opUpdate && cmd.kind == asset.KindVessel:
		return "", w.records.UpdateVessel(ctx, w.ns, w.who, cmd.vessel)
	case cmd.op == opDelete && cmd.kind == asset.KindFacility:
		return "", w.records.DeleteFacility(ctx, w.ns, w.who, cmd.id)
	case cmd.op == opDelete && cmd.kind == asset.KindVessel:
		return "", w.records.DeleteVessel(ctx, w.ns, w.who, cmd.id)
	default:
		return "", errors.NewBadRequestError("unsupported operation", string(cmd.op))
	}
}
