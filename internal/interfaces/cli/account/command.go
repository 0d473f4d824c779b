// Package account holds the sign-in commands for the shared backend.
package account

import (
	"context"

	"github.com/spf13/cobra"

	"github.com/orris-inc/harborline/internal/application/assets"
	"github.com/orris-inc/harborline/internal/interfaces/cli/bootstrap"
	"github.com/orris-inc/harborline/internal/interfaces/cli/output"
	"github.com/orris-inc/harborline/internal/interfaces/dto"
)

func NewCommand(flags *bootstrap.Flags) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "auth",
		Short: "Sign in to and out of the shared backend",
	}

	cmd.AddCommand(
		newSignInCommand(flags),
		newSignOutCommand(flags),
		newStatusCommand(flags),
	)
	return cmd
}

func newSignInCommand(flags *bootstrap.Flags) *cobra.Command {
	return &cobra.Command{
		Use:   "signin",
		Short: "Sign in through the identity provider in a browser",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return bootstrap.Execute(cmd, flags, func(ctx context.Context, app *bootstrap.App, _ assets.View, out *output.Printer) error {
				if err := app.Controller.SignIn(ctx); err != nil {
					return err
				}
				return app.PrintSettled(ctx, flags.SettleTimeout, out)
			})
		},
	}
}

func newSignOutCommand(flags *bootstrap.Flags) *cobra.Command {
	return &cobra.Command{
		Use:   "signout",
		Short: "Sign out and return to local records",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return bootstrap.Execute(cmd, flags, func(ctx context.Context, app *bootstrap.App, _ assets.View, out *output.Printer) error {
				if err := app.Controller.SignOut(ctx); err != nil {
					return err
				}
				return app.PrintSettled(ctx, flags.SettleTimeout, out)
			})
		},
	}
}

func newStatusCommand(flags *bootstrap.Flags) *cobra.Command {
	return &cobra.Command{
		Use:   "status",
		Short: "Show the regime, phase and signed-in identity",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return bootstrap.Execute(cmd, flags, func(_ context.Context, _ *bootstrap.App, view assets.View, out *output.Printer) error {
				status := dto.ToStatusDTO(view)
				return out.Print(status, output.Status(status))
			})
		},
	}
}
