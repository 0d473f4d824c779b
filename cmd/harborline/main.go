package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/orris-inc/harborline/internal/interfaces/cli/access"
	"github.com/orris-inc/harborline/internal/interfaces/cli/account"
	"github.com/orris-inc/harborline/internal/interfaces/cli/bootstrap"
	"github.com/orris-inc/harborline/internal/interfaces/cli/configure"
	"github.com/orris-inc/harborline/internal/interfaces/cli/migrate"
	"github.com/orris-inc/harborline/internal/interfaces/cli/monitor"
	"github.com/orris-inc/harborline/internal/interfaces/cli/records"
	"github.com/orris-inc/harborline/internal/interfaces/cli/server"
	"github.com/orris-inc/harborline/internal/shared/version"
)

func main() {
	flags := &bootstrap.Flags{}

	rootCmd := &cobra.Command{
		Use:   "harborline",
		Short: "Harborline - storage facility and vessel records",
		Long: `Harborline keeps storage facility and vessel records on this device and,
once a shared backend is configured and you are signed in, on the backend
shared by your organization.`,
		Version:      version.String(),
		SilenceUsage: true,
	}

	rootCmd.PersistentFlags().StringVarP(&flags.ConfigPath, "config", "c", "", "Path to config file (default: ./configs/config.yaml)")
	rootCmd.PersistentFlags().StringVarP(&flags.Output, "output", "o", "table", "Output format: table, json or yaml")
	rootCmd.PersistentFlags().DurationVar(&flags.SettleTimeout, "settle-timeout", 30*time.Second, "How long to wait for the shared backend to connect and sync")
	rootCmd.PersistentFlags().BoolVarP(&flags.Verbose, "verbose", "v", false, "Log at debug level")

	rootCmd.AddCommand(
		server.NewCommand(flags),
		records.NewFacilitiesCommand(flags),
		records.NewVesselsCommand(flags),
		configure.NewCommand(flags),
		account.NewCommand(flags),
		monitor.NewWatchCommand(flags),
		monitor.NewSelfTestCommand(flags),
		migrate.NewCommand(flags),
		access.NewCommand(flags),
	)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := rootCmd.ExecuteContext(ctx); err != nil {
		stop()
		os.Exit(1)
	}
}
