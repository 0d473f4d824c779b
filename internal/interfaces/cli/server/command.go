package server

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"

	"github.com/orris-inc/harborline/internal/interfaces/cli/bootstrap"
	httpRouter "github.com/orris-inc/harborline/internal/interfaces/http"
)

const shutdownTimeout = 15 * time.Second

func NewCommand(flags *bootstrap.Flags) *cobra.Command {
	var addr string

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Start the HTTP API",
		Long: `Start the record controller and serve the facility and vessel API, the
status and healthcheck endpoints and Prometheus metrics until interrupted.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return bootstrap.With(cmd.Context(), flags, func(app *bootstrap.App) error {
				if addr == "" {
					addr = app.Config.Server.GetAddr()
				}
				return serve(cmd.Context(), app, addr)
			})
		},
	}

	cmd.Flags().StringVar(&addr, "addr", "", "Listen address (default from server.host and server.port)")
	return cmd
}

func serve(ctx context.Context, app *bootstrap.App, addr string) error {
	log := app.Logger.Named("server")

	mode := gin.ReleaseMode
	if app.Config.Server.IsDebug() {
		mode = gin.DebugMode
	}
	gin.SetMode(mode)
	gin.DefaultWriter = io.Discard
	gin.DebugPrintRouteFunc = func(httpMethod, absolutePath, handlerName string, nuHandlers int) {}

	router := httpRouter.NewRouter(app.Gateway, app.Controller, app.Config.Server, app.Logger)
	router.SetupRoutes()

	srv := &http.Server{
		Addr:              addr,
		Handler:           router.GetEngine(),
		ReadHeaderTimeout: 10 * time.Second,
		ReadTimeout:       15 * time.Second,
		WriteTimeout:      30 * time.Second,
		IdleTimeout:       60 * time.Second,
	}

	g, gctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		return app.Controller.Run(gctx)
	})

	g.Go(func() error {
		log.Infow("server starting", "address", addr, "mode", mode)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("failed to start server: %w", err)
		}
		return nil
	})

	g.Go(func() error {
		<-gctx.Done()
		log.Infow("shutting down server")

		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		if err := srv.Shutdown(shutdownCtx); err != nil {
			log.Errorw("server forced to shutdown", "error", err)
			return err
		}
		log.Infow("server exited gracefully")
		return nil
	})

	return g.Wait()
}
