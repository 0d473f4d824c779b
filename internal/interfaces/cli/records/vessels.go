package records

import (
	"context"
	"time"

	"github.com/spf13/cobra"

	"github.com/orris-inc/harborline/internal/application/assets"
	"github.com/orris-inc/harborline/internal/domain/asset"
	"github.com/orris-inc/harborline/internal/interfaces/cli/bootstrap"
	"github.com/orris-inc/harborline/internal/interfaces/cli/output"
	"github.com/orris-inc/harborline/internal/interfaces/dto"
	"github.com/orris-inc/harborline/internal/shared/biztime"
	"github.com/orris-inc/harborline/internal/shared/errors"
)

type vesselFlags struct {
	name        string
	cargo       string
	tonnage     float64
	status      string
	destination string
	eta         string
	position    string
}

func (f *vesselFlags) bind(cmd *cobra.Command) {
	cmd.Flags().StringVar(&f.name, "name", "", "Vessel name")
	cmd.Flags().StringVar(&f.cargo, "cargo", "", "Cargo description")
	cmd.Flags().Float64Var(&f.tonnage, "tonnage", 0, "Cargo tonnage")
	cmd.Flags().StringVar(&f.status, "status", string(asset.VesselStatusAtSea), "AtSea, Loading, Discharging, Anchored or Delayed")
	cmd.Flags().StringVar(&f.destination, "destination", "", "Destination port")
	cmd.Flags().StringVar(&f.eta, "eta", "", `Estimated arrival, RFC 3339 or "`+biztime.DisplayLayout+`" in the business timezone; empty clears it`)
	cmd.Flags().StringVar(&f.position, "position", "", "Last reported position")
}

func (f *vesselFlags) apply(cmd *cobra.Command, d asset.VesselDraft) (asset.VesselDraft, error) {
	changed := cmd.Flags().Changed
	if changed("name") {
		d.Name = f.name
	}
	if changed("cargo") {
		d.Cargo = f.cargo
	}
	if changed("tonnage") {
		d.Tonnage = f.tonnage
	}
	if changed("status") {
		status, err := assets.ParseVesselStatus(f.status)
		if err != nil {
			return d, err
		}
		d.Status = status
	}
	if changed("destination") {
		d.Destination = f.destination
	}
	if changed("eta") {
		eta, err := parseETA(f.eta)
		if err != nil {
			return d, err
		}
		d.ETA = eta
	}
	if changed("position") {
		d.Position = f.position
	}
	return d, nil
}

func parseETA(s string) (*time.Time, error) {
	if s == "" {
		return nil, nil
	}
	t, err := biztime.ParseInBizTimezone(s)
	if err != nil {
		return nil, errors.NewValidationError("invalid eta", err.Error())
	}
	return &t, nil
}

func NewVesselsCommand(flags *bootstrap.Flags) *cobra.Command {
	cmd := &cobra.Command{
		Use:     "vessels",
		Aliases: []string{"vessel", "vs"},
		Short:   "List and edit vessels",
	}

	cmd.AddCommand(
		newVesselListCommand(flags),
		newVesselCreateCommand(flags),
		newVesselUpdateCommand(flags),
		newVesselDeleteCommand(flags),
	)
	return cmd
}

func newVesselListCommand(flags *bootstrap.Flags) *cobra.Command {
	return &cobra.Command{
		Use:   "list",
		Short: "List vessels from the authoritative store",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return bootstrap.Execute(cmd, flags, func(_ context.Context, app *bootstrap.App, _ assets.View, out *output.Printer) error {
				items := dto.ToVesselDTOs(app.Gateway.ListVessels())
				return out.Print(items, output.Vessels(items))
			})
		},
	}
}

func newVesselCreateCommand(flags *bootstrap.Flags) *cobra.Command {
	var vf vesselFlags
	cmd := &cobra.Command{
		Use:   "create",
		Short: "Create a vessel",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			draft, err := vf.apply(cmd, asset.VesselDraft{Status: asset.VesselStatusAtSea})
			if err != nil {
				return err
			}
			return bootstrap.Execute(cmd, flags, func(ctx context.Context, app *bootstrap.App, _ assets.View, out *output.Printer) error {
				id, err := app.Gateway.CreateVessel(ctx, draft)
				if err != nil {
					return err
				}
				return out.Message(map[string]string{"id": id}, "Created vessel %s", id)
			})
		},
	}
	vf.bind(cmd)
	_ = cmd.MarkFlagRequired("name")
	return cmd
}

func newVesselUpdateCommand(flags *bootstrap.Flags) *cobra.Command {
	var vf vesselFlags
	cmd := &cobra.Command{
		Use:   "update <id>",
		Short: "Update fields of a vessel",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			id := args[0]
			return bootstrap.Execute(cmd, flags, func(ctx context.Context, app *bootstrap.App, view assets.View, out *output.Printer) error {
				i := view.Records.VesselIndex(id)
				if i < 0 {
					return errors.NewNotFoundError("vessel not found", id)
				}

				draft, err := vf.apply(cmd, view.Records.Vessels[i].Draft())
				if err != nil {
					return err
				}
				if err := app.Gateway.UpdateVessel(ctx, asset.NewVessel(id, draft)); err != nil {
					return err
				}
				return out.Message(map[string]string{"id": id}, "Updated vessel %s", id)
			})
		},
	}
	vf.bind(cmd)
	return cmd
}

func newVesselDeleteCommand(flags *bootstrap.Flags) *cobra.Command {
	return &cobra.Command{
		Use:   "delete <id>",
		Short: "Delete a vessel",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			id := args[0]
			return bootstrap.Execute(cmd, flags, func(ctx context.Context, app *bootstrap.App, _ assets.View, out *output.Printer) error {
				if err := app.Gateway.DeleteVessel(ctx, id); err != nil {
					return err
				}
				return out.Message(map[string]string{"id": id}, "Deleted vessel %s", id)
			})
		},
	}
}
