// Package bootstrap wires the record layer for CLI commands: configuration,
// logging, the device database and the record controller.
package bootstrap

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"
	"gorm.io/gorm"

	"github.com/orris-inc/harborline/internal/application/assets"
	"github.com/orris-inc/harborline/internal/domain/backend"
	"github.com/orris-inc/harborline/internal/infrastructure/config"
	"github.com/orris-inc/harborline/internal/infrastructure/configstore"
	"github.com/orris-inc/harborline/internal/infrastructure/database"
	"github.com/orris-inc/harborline/internal/infrastructure/kvstore"
	"github.com/orris-inc/harborline/internal/infrastructure/localstore"
	"github.com/orris-inc/harborline/internal/infrastructure/metrics"
	"github.com/orris-inc/harborline/internal/infrastructure/remote"
	"github.com/orris-inc/harborline/internal/interfaces/cli/output"
	"github.com/orris-inc/harborline/internal/interfaces/dto"
	"github.com/orris-inc/harborline/internal/shared/biztime"
	"github.com/orris-inc/harborline/internal/shared/errors"
	"github.com/orris-inc/harborline/internal/shared/logger"
)

// processRecorder registers the record-layer metrics once per process.
var processRecorder = sync.OnceValue(func() *metrics.Recorder {
	return metrics.NewRecorder(prometheus.DefaultRegisterer)
})

// Flags are the persistent root flags every command reads.
type Flags struct {
	ConfigPath string
	Output     string
	// SettleTimeout bounds the wait for the backend to connect and sync
	// before a one-shot command reads or writes.
	SettleTimeout time.Duration
	// Verbose lowers the log level to debug for this invocation.
	Verbose bool
}

// App is a wired but not yet running record layer.
type App struct {
	Config     *config.Config
	Logger     logger.Interface
	Configs    *configstore.Store
	Controller *assets.Controller
	Gateway    *assets.Gateway

	db *gorm.DB
}

// Open loads configuration and builds the controller over the device
// database. The caller must Close the App.
func Open(ctx context.Context, flags *Flags) (*App, error) {
	cfg, err := config.Load(flags.ConfigPath)
	if err != nil {
		return nil, fmt.Errorf("failed to load config: %w", err)
	}

	if err := logger.Init(&cfg.Logger, cfg.Server.IsDebug()); err != nil {
		return nil, fmt.Errorf("failed to initialize logger: %w", err)
	}
	if flags.Verbose {
		logger.SetLevel(slog.LevelDebug)
	}
	log := logger.NewLogger()

	if err := biztime.Init(cfg.Timezone); err != nil {
		return nil, fmt.Errorf("failed to initialize business timezone: %w", err)
	}

	db, err := database.OpenSQLite(cfg.Local.Path, log)
	if err != nil {
		return nil, fmt.Errorf("failed to open local database: %w", err)
	}
	kv, err := kvstore.New(db, log)
	if err != nil {
		_ = database.Close(db)
		return nil, fmt.Errorf("failed to open local key-value store: %w", err)
	}

	configs := configstore.New(kv, cfg.Backend, log)
	connector := remote.NewConnector(remote.Options{
		Remote:   cfg.Remote,
		Auth:     cfg.Auth,
		Sessions: kv,
		Browser:  OpenBrowser,
		Logger:   log,
	})

	controller := assets.NewController(ctx, assets.Options{
		Local:     localstore.New(kv, log),
		Config:    configs,
		Connector: connector,
		Metrics:   processRecorder(),
		Logger:    log,
	})

	return &App{
		Config:     cfg,
		Logger:     log,
		Configs:    configs,
		Controller: controller,
		Gateway:    assets.NewGateway(controller, nil),
		db:         db,
	}, nil
}

// Close releases the device database. Call it after Run has returned.
func (a *App) Close() error {
	return database.Close(a.db)
}

// Run starts the controller, calls fn, then stops the controller and waits
// for it to tear down. fn sees a context that ends when the controller exits.
func (a *App) Run(ctx context.Context, fn func(ctx context.Context) error) error {
	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		return a.Controller.Run(gctx)
	})
	g.Go(func() error {
		defer cancel()
		return fn(gctx)
	})
	return g.Wait()
}

// Settle waits until every event queued so far is applied and the controller
// is idle or live.
func (a *App) Settle(ctx context.Context, timeout time.Duration) (assets.View, error) {
	if timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, timeout)
		defer cancel()
	}

	if err := a.Controller.Flush(ctx); err != nil {
		return assets.View{}, err
	}
	view, err := a.Controller.AwaitSettled(ctx)
	if err != nil {
		return view, fmt.Errorf("backend did not settle (phase %s): %w", view.Phase, err)
	}
	return view, nil
}

// PrintSettled waits for the controller to settle and prints its status.
func (a *App) PrintSettled(ctx context.Context, timeout time.Duration, out *output.Printer) error {
	view, err := a.Settle(ctx, timeout)
	if err != nil {
		return err
	}
	status := dto.ToStatusDTO(view)
	return out.Print(status, output.Status(status))
}

// RunSettled is Run with fn called once the controller has settled.
func (a *App) RunSettled(ctx context.Context, timeout time.Duration, fn func(ctx context.Context, view assets.View) error) error {
	return a.Run(ctx, func(ctx context.Context) error {
		view, err := a.Settle(ctx, timeout)
		if err != nil {
			return err
		}
		return fn(ctx, view)
	})
}

// With opens the App, runs fn with it and closes it.
func With(ctx context.Context, flags *Flags, fn func(app *App) error) error {
	app, err := Open(ctx, flags)
	if err != nil {
		return err
	}
	defer func() {
		if err := app.Close(); err != nil {
			app.Logger.Warnw("failed to close local database", "error", err)
		}
	}()
	return fn(app)
}

// Execute is the common body of one-shot commands: open the App, start the
// controller, wait for it to settle and call fn with a printer for the
// selected output format.
func Execute(cmd *cobra.Command, flags *Flags, fn func(ctx context.Context, app *App, view assets.View, out *output.Printer) error) error {
	out, err := output.New(cmd.OutOrStdout(), flags.Output)
	if err != nil {
		return err
	}
	return With(cmd.Context(), flags, func(app *App) error {
		return app.RunSettled(cmd.Context(), flags.SettleTimeout, func(ctx context.Context, view assets.View) error {
			return fn(ctx, app, view, out)
		})
	})
}

// WithSharedDB opens the App and the shared database named by the stored
// backend descriptor, without starting the controller or signing in. It
// serves operator tools that work on the backend directly.
func WithSharedDB(cmd *cobra.Command, flags *Flags, fn func(ctx context.Context, app *App, db *gorm.DB, desc backend.Config, out *output.Printer) error) error {
	out, err := output.New(cmd.OutOrStdout(), flags.Output)
	if err != nil {
		return err
	}

	return With(cmd.Context(), flags, func(app *App) error {
		ctx := cmd.Context()
		desc := app.Configs.Load(ctx)
		if desc == nil || desc.ProjectID == "" {
			return errors.NewValidationError("no backend configured", "run `harborline config set` first")
		}

		db, err := database.OpenMySQL(&app.Config.Remote.Database, desc.ProjectID, app.Logger)
		if err != nil {
			return fmt.Errorf("failed to open shared database: %w", err)
		}
		defer func() {
			if err := database.Close(db); err != nil {
				app.Logger.Warnw("failed to close shared database", "error", err)
			}
		}()

		return fn(ctx, app, db, *desc, out)
	})
}
