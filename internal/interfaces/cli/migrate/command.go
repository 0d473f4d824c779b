package migrate

import (
	"context"

	"github.com/spf13/cobra"
	"gorm.io/gorm"

	"github.com/orris-inc/harborline/internal/domain/backend"
	"github.com/orris-inc/harborline/internal/infrastructure/migration"
	"github.com/orris-inc/harborline/internal/interfaces/cli/bootstrap"
	"github.com/orris-inc/harborline/internal/interfaces/cli/output"
)

func NewCommand(flags *bootstrap.Flags) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "migrate",
		Short: "Shared database schema tools",
		Long: `Apply or inspect the document schema of the shared database named by the
stored backend descriptor. Connecting applies pending migrations as well;
these commands let an operator do it ahead of the first sign-in.`,
	}

	cmd.AddCommand(
		newUpCommand(flags),
		newStatusCommand(flags),
	)
	return cmd
}

func newUpCommand(flags *bootstrap.Flags) *cobra.Command {
	return &cobra.Command{
		Use:   "up",
		Short: "Run all pending migrations",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return bootstrap.WithSharedDB(cmd, flags, func(ctx context.Context, app *bootstrap.App, db *gorm.DB, _ backend.Config, out *output.Printer) error {
				m := migration.NewGooseMigrator(app.Logger)
				if err := m.Migrate(ctx, db); err != nil {
					return err
				}
				version, err := m.Version(ctx, db)
				if err != nil {
					return err
				}
				return out.Message(map[string]int64{"version": version}, "Schema is at version %d", version)
			})
		},
	}
}

func newStatusCommand(flags *bootstrap.Flags) *cobra.Command {
	return &cobra.Command{
		Use:   "status",
		Short: "Show the applied schema version",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return bootstrap.WithSharedDB(cmd, flags, func(ctx context.Context, app *bootstrap.App, db *gorm.DB, _ backend.Config, out *output.Printer) error {
				version, err := migration.NewGooseMigrator(app.Logger).Version(ctx, db)
				if err != nil {
					return err
				}
				return out.Message(map[string]int64{"version": version}, "Current version: %d", version)
			})
		},
	}
}
