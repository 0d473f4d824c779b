// Package monitor holds the commands that observe the record layer: a live
// change stream and the backend connectivity self-test.
package monitor

import (
	"context"
	"fmt"
	"strconv"
	"time"

	"github.com/spf13/cobra"

	"github.com/orris-inc/harborline/internal/application/assets"
	"github.com/orris-inc/harborline/internal/interfaces/cli/bootstrap"
	"github.com/orris-inc/harborline/internal/interfaces/cli/output"
	"github.com/orris-inc/harborline/internal/interfaces/dto"
	"github.com/orris-inc/harborline/internal/shared/biztime"
)

func NewWatchCommand(flags *bootstrap.Flags) *cobra.Command {
	return &cobra.Command{
		Use:   "watch",
		Short: "Stream regime, phase and record counts until interrupted",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			out, err := output.New(cmd.OutOrStdout(), flags.Output)
			if err != nil {
				return err
			}
			return bootstrap.With(cmd.Context(), flags, func(app *bootstrap.App) error {
				return app.Run(cmd.Context(), func(ctx context.Context) error {
					return stream(ctx, app.Controller, out)
				})
			})
		},
	}
}

func stream(ctx context.Context, c *assets.Controller, out *output.Printer) error {
	views, cancel := c.Watch()
	defer cancel()

	header := true
	for {
		select {
		case <-ctx.Done():
			return nil
		case v, ok := <-views:
			if !ok {
				return nil
			}
			if err := out.Print(dto.ToStatusDTO(v), changeRow(v, header)); err != nil {
				return err
			}
			header = false
		}
	}
}

func changeRow(v assets.View, header bool) output.Table {
	identity := "-"
	if v.Identity != nil {
		identity = v.Identity.Email
	}
	ns := v.Namespace.String()
	if ns == "" {
		ns = "-"
	}
	t := output.Table{Rows: [][]string{{
		biztime.ToBizTimezone(biztime.NowUTC()).Format(time.TimeOnly),
		v.Regime.String(),
		v.Phase.String(),
		ns,
		identity,
		strconv.Itoa(len(v.Records.Facilities)),
		strconv.Itoa(len(v.Records.Vessels)),
	}}}
	if header {
		t.Header = []string{"TIME", "REGIME", "PHASE", "NAMESPACE", "IDENTITY", "FACILITIES", "VESSELS"}
	}
	return t
}

func NewSelfTestCommand(flags *bootstrap.Flags) *cobra.Command {
	return &cobra.Command{
		Use:   "selftest",
		Short: "Round-trip a probe document through the shared backend",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return bootstrap.Execute(cmd, flags, func(ctx context.Context, app *bootstrap.App, view assets.View, out *output.Printer) error {
				latency, err := app.Controller.SelfTest(ctx)
				if err != nil {
					return err
				}
				result := dto.HealthcheckDTO{
					Namespace: view.Namespace.String(),
					LatencyMS: latency.Milliseconds(),
				}
				return out.Print(result, output.Table{Rows: [][]string{
					{"Namespace:", result.Namespace},
					{"Round trip:", fmt.Sprintf("%dms", result.LatencyMS)},
				}})
			})
		},
	}
}
