// Package configure holds the commands that store, show and clear the shared
// backend descriptor.
package configure

import (
	"context"

	"github.com/spf13/cobra"

	"github.com/orris-inc/harborline/internal/application/assets"
	"github.com/orris-inc/harborline/internal/domain/backend"
	"github.com/orris-inc/harborline/internal/interfaces/cli/bootstrap"
	"github.com/orris-inc/harborline/internal/interfaces/cli/output"
	"github.com/orris-inc/harborline/internal/interfaces/dto"
)

func NewCommand(flags *bootstrap.Flags) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "config",
		Short: "Manage the shared backend descriptor",
		Long: `Store, show or clear the shared backend descriptor. A descriptor injected
through the backend section of the config file or HARBORLINE_BACKEND_*
variables cannot be changed here.`,
	}

	cmd.AddCommand(
		newShowCommand(flags),
		newSetCommand(flags),
		newClearCommand(flags),
	)
	return cmd
}

func newShowCommand(flags *bootstrap.Flags) *cobra.Command {
	return &cobra.Command{
		Use:   "show",
		Short: "Show the backend descriptor in effect",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			out, err := output.New(cmd.OutOrStdout(), flags.Output)
			if err != nil {
				return err
			}
			return bootstrap.With(cmd.Context(), flags, func(app *bootstrap.App) error {
				b := dto.ToBackendDTO(app.Configs.Load(cmd.Context()), app.Configs.ReadOnly())
				return out.Print(b, output.Backend(b))
			})
		},
	}
}

type descriptorFlags struct {
	apiKey     string
	authDomain string
	projectID  string
	orgKey     string
}

func (f *descriptorFlags) apply(cmd *cobra.Command, cfg backend.Config) backend.Config {
	changed := cmd.Flags().Changed
	if changed("api-key") {
		cfg.APIKey = f.apiKey
	}
	if changed("auth-domain") {
		cfg.AuthDomain = f.authDomain
	}
	if changed("project-id") {
		cfg.ProjectID = f.projectID
	}
	if changed("org-key") {
		cfg.OrgKey = f.orgKey
	}
	return cfg
}

func newSetCommand(flags *bootstrap.Flags) *cobra.Command {
	var df descriptorFlags
	cmd := &cobra.Command{
		Use:   "set",
		Short: "Store a backend descriptor and connect to it",
		Long: `Store a backend descriptor and connect to it. Flags that are not given keep
their stored value, so the organization can be switched with --org-key alone.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return bootstrap.Execute(cmd, flags, func(ctx context.Context, app *bootstrap.App, _ assets.View, out *output.Printer) error {
				var current backend.Config
				if stored := app.Configs.Load(ctx); stored != nil {
					current = *stored
				}
				if err := app.Controller.SaveBackend(ctx, df.apply(cmd, current)); err != nil {
					return err
				}
				return app.PrintSettled(ctx, flags.SettleTimeout, out)
			})
		},
	}

	cmd.Flags().StringVar(&df.apiKey, "api-key", "", "Client identifier of the sign-in application")
	cmd.Flags().StringVar(&df.authDomain, "auth-domain", "", "Identity provider base URL")
	cmd.Flags().StringVar(&df.projectID, "project-id", "", "Shared database name")
	cmd.Flags().StringVar(&df.orgKey, "org-key", "", "Organization namespace")
	return cmd
}

func newClearCommand(flags *bootstrap.Flags) *cobra.Command {
	return &cobra.Command{
		Use:   "clear",
		Short: "Remove the stored descriptor and return to local records",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return bootstrap.Execute(cmd, flags, func(ctx context.Context, app *bootstrap.App, _ assets.View, out *output.Printer) error {
				if err := app.Controller.ClearBackend(ctx); err != nil {
					return err
				}
				return app.PrintSettled(ctx, flags.SettleTimeout, out)
			})
		},
	}
}
