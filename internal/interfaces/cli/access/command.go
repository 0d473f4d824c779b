// Package access manages tenant access rules in the shared database.
package access

import (
	"context"

	"github.com/spf13/cobra"
	"gorm.io/gorm"

	"github.com/orris-inc/harborline/internal/domain/backend"
	"github.com/orris-inc/harborline/internal/infrastructure/permission"
	"github.com/orris-inc/harborline/internal/interfaces/cli/bootstrap"
	"github.com/orris-inc/harborline/internal/interfaces/cli/output"
	"github.com/orris-inc/harborline/internal/shared/errors"
)

func NewCommand(flags *bootstrap.Flags) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "access",
		Short: "Manage who may use an organization's shared records",
		Long: `Every signed-in user may read and write the records of any organization
unless revoked here. Connected clients pick up a revocation within a few
seconds, on the next change they receive, and return to local records.`,
	}

	var orgKey string
	cmd.PersistentFlags().StringVar(&orgKey, "org-key", "", "Organization to act on (default: the configured org key)")

	cmd.AddCommand(
		newListCommand(flags),
		newRevokeCommand(flags, &orgKey),
		newRestoreCommand(flags, &orgKey),
	)
	return cmd
}

type enforcerFunc func(ctx context.Context, e *permission.Enforcer, desc backend.Config, out *output.Printer) error

func withEnforcer(cmd *cobra.Command, flags *bootstrap.Flags, fn enforcerFunc) error {
	return bootstrap.WithSharedDB(cmd, flags, func(ctx context.Context, app *bootstrap.App, db *gorm.DB, desc backend.Config, out *output.Printer) error {
		e, err := permission.NewEnforcer(db, app.Logger)
		if err != nil {
			return err
		}
		if err := permission.InitTenantPolicies(e); err != nil {
			return err
		}
		return fn(ctx, e, desc, out)
	})
}

func resolveOrg(flagValue string, desc backend.Config) (string, error) {
	if flagValue != "" {
		return flagValue, nil
	}
	if desc.OrgKey == "" {
		return "", errors.NewValidationError("no organization", "pass --org-key or set one with `harborline config set --org-key`")
	}
	return desc.OrgKey, nil
}

func newListCommand(flags *bootstrap.Flags) *cobra.Command {
	return &cobra.Command{
		Use:   "list",
		Short: "List stored access rules",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return withEnforcer(cmd, flags, func(_ context.Context, e *permission.Enforcer, _ backend.Config, out *output.Printer) error {
				rules, err := e.Rules()
				if err != nil {
					return err
				}
				t := output.Table{Header: []string{"SUBJECT", "PATH", "ACTIONS", "EFFECT"}}
				for _, r := range rules {
					t.Rows = append(t.Rows, []string{r.Subject, r.Path, r.Actions, r.Effect})
				}
				return out.Print(rules, t)
			})
		},
	}
}

func newRevokeCommand(flags *bootstrap.Flags, orgKey *string) *cobra.Command {
	return &cobra.Command{
		Use:   "revoke <user-id>",
		Short: "Deny a user every record of the organization",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return withEnforcer(cmd, flags, func(_ context.Context, e *permission.Enforcer, desc backend.Config, out *output.Printer) error {
				org, err := resolveOrg(*orgKey, desc)
				if err != nil {
					return err
				}
				if err := e.RevokeTenant(args[0], org); err != nil {
					return err
				}
				return out.Message(map[string]string{"subject": args[0], "org_key": org, "access": "revoked"},
					"Revoked %s from %s", args[0], org)
			})
		},
	}
}

func newRestoreCommand(flags *bootstrap.Flags, orgKey *string) *cobra.Command {
	return &cobra.Command{
		Use:   "restore <user-id>",
		Short: "Lift a revocation",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return withEnforcer(cmd, flags, func(_ context.Context, e *permission.Enforcer, desc backend.Config, out *output.Printer) error {
				org, err := resolveOrg(*orgKey, desc)
				if err != nil {
					return err
				}
				if err := e.RestoreTenant(args[0], org); err != nil {
					return err
				}
				return out.Message(map[string]string{"subject": args[0], "org_key": org, "access": "restored"},
					"Restored %s to %s", args[0], org)
			})
		},
	}
}
