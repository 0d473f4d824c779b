// Package records holds the facility and vessel CRUD commands.
package records

import (
	"context"

	"github.com/spf13/cobra"

	"github.com/orris-inc/harborline/internal/application/assets"
	"github.com/orris-inc/harborline/internal/domain/asset"
	"github.com/orris-inc/harborline/internal/interfaces/cli/bootstrap"
	"github.com/orris-inc/harborline/internal/interfaces/cli/output"
	"github.com/orris-inc/harborline/internal/interfaces/dto"
	"github.com/orris-inc/harborline/internal/shared/errors"
)

type facilityFlags struct {
	name     string
	location string
	capacity float64
	used     float64
	status   string
}

func (f *facilityFlags) bind(cmd *cobra.Command) {
	cmd.Flags().StringVar(&f.name, "name", "", "Facility name")
	cmd.Flags().StringVar(&f.location, "location", "", "Site or berth")
	cmd.Flags().Float64Var(&f.capacity, "capacity", 0, "Capacity in storage units")
	cmd.Flags().Float64Var(&f.used, "used", 0, "Units in use")
	cmd.Flags().StringVar(&f.status, "status", string(asset.FacilityStatusOK), "OK, Full, Critical or Closed")
}

// apply overwrites the fields whose flags were set on the command line.
func (f *facilityFlags) apply(cmd *cobra.Command, d asset.FacilityDraft) (asset.FacilityDraft, error) {
	changed := cmd.Flags().Changed
	if changed("name") {
		d.Name = f.name
	}
	if changed("location") {
		d.Location = f.location
	}
	if changed("capacity") {
		d.Capacity = f.capacity
	}
	if changed("used") {
		d.Used = f.used
	}
	if changed("status") {
		status, err := assets.ParseFacilityStatus(f.status)
		if err != nil {
			return d, err
		}
		d.Status = status
	}
	return d, nil
}

func NewFacilitiesCommand(flags *bootstrap.Flags) *cobra.Command {
	cmd := &cobra.Command{
		Use:     "facilities",
		Aliases: []string{"facility", "sf"},
		Short:   "List and edit storage facilities",
	}

	cmd.AddCommand(
		newFacilityListCommand(flags),
		newFacilityCreateCommand(flags),
		newFacilityUpdateCommand(flags),
		newFacilityDeleteCommand(flags),
	)
	return cmd
}

func newFacilityListCommand(flags *bootstrap.Flags) *cobra.Command {
	return &cobra.Command{
		Use:   "list",
		Short: "List storage facilities from the authoritative store",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return bootstrap.Execute(cmd, flags, func(_ context.Context, app *bootstrap.App, _ assets.View, out *output.Printer) error {
				items := dto.ToFacilityDTOs(app.Gateway.ListFacilities())
				return out.Print(items, output.Facilities(items))
			})
		},
	}
}

func newFacilityCreateCommand(flags *bootstrap.Flags) *cobra.Command {
	var ff facilityFlags
	cmd := &cobra.Command{
		Use:   "create",
		Short: "Create a storage facility",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			draft, err := ff.apply(cmd, asset.FacilityDraft{Status: asset.FacilityStatusOK})
			if err != nil {
				return err
			}
			return bootstrap.Execute(cmd, flags, func(ctx context.Context, app *bootstrap.App, _ assets.View, out *output.Printer) error {
				id, err := app.Gateway.CreateFacility(ctx, draft)
				if err != nil {
					return err
				}
				return out.Message(map[string]string{"id": id}, "Created storage facility %s", id)
			})
		},
	}
	ff.bind(cmd)
	_ = cmd.MarkFlagRequired("name")
	return cmd
}

func newFacilityUpdateCommand(flags *bootstrap.Flags) *cobra.Command {
	var ff facilityFlags
	cmd := &cobra.Command{
		Use:   "update <id>",
		Short: "Update fields of a storage facility",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			id := args[0]
			return bootstrap.Execute(cmd, flags, func(ctx context.Context, app *bootstrap.App, view assets.View, out *output.Printer) error {
				i := view.Records.FacilityIndex(id)
				if i < 0 {
					return errors.NewNotFoundError("storage facility not found", id)
				}
				current := view.Records.Facilities[i]

				draft, err := ff.apply(cmd, current.Draft())
				if err != nil {
					return err
				}
				updated := asset.NewStorageFacility(id, draft, current.LastUpdate)
				if err := app.Gateway.UpdateFacility(ctx, updated); err != nil {
					return err
				}
				return out.Message(map[string]string{"id": id}, "Updated storage facility %s", id)
			})
		},
	}
	ff.bind(cmd)
	return cmd
}

func newFacilityDeleteCommand(flags *bootstrap.Flags) *cobra.Command {
	return &cobra.Command{
		Use:   "delete <id>",
		Short: "Delete a storage facility",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			id := args[0]
			return bootstrap.Execute(cmd, flags, func(ctx context.Context, app *bootstrap.App, _ assets.View, out *output.Printer) error {
				if err := app.Gateway.DeleteFacility(ctx, id); err != nil {
					return err
				}
				return out.Message(map[string]string{"id": id}, "Deleted storage facility %s", id)
			})
		},
	}
}
