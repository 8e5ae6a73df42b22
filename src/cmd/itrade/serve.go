package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/exec"
	"os/signal"
	"runtime"
	"syscall"
	"time"

	log "github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	"github.com/SmooSenseAI/itrade/src/logger"
	"github.com/SmooSenseAI/itrade/src/router"
	"github.com/SmooSenseAI/itrade/src/telemetry"
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the web server",
	RunE: func(cmd *cobra.Command, args []string) error {
		app, err := loadApp(cmd)
		if err != nil {
			return err
		}

		if cmd.Flags().Changed("host") {
			app.Config.Server.Host, _ = cmd.Flags().GetString("host")
		}

		if cmd.Flags().Changed("port") {
			app.Config.Server.Port, _ = cmd.Flags().GetInt("port")
		}

		noBrowser, _ := cmd.Flags().GetBool("no-browser")

		return serve(cmd.Context(), app, !noBrowser)
	},
}

func addServeFlags(cmd *cobra.Command) {
	cmd.Flags().String("host", "127.0.0.1", "Host to bind to.")
	cmd.Flags().Int("port", 8000, "Port to bind to.")
	cmd.Flags().Bool("no-browser", false, "Don't open browser automatically.")
}

func serve(ctx context.Context, app *App, openBrowserOnStart bool) (err error) {
	if ctx == nil {
		ctx = context.Background()
	}

	ctx, stop := signal.NotifyContext(ctx, os.Interrupt, syscall.SIGTERM)
	defer stop()

	if app.Config.Telemetry.Enabled() {
		if os.Getenv("OTEL_EXPORTER_OTLP_ENDPOINT") == "" {
			os.Setenv("OTEL_EXPORTER_OTLP_ENDPOINT", app.Config.Telemetry.OTLPEndpoint)
		}
		logger.AddTraceHook()

		otelShutdown, err := telemetry.Setup(ctx, app.Config.Telemetry.ServiceName)
		if err != nil {
			return fmt.Errorf("failed to setup otel sdk: %w", err)
		}

		// Handle shutdown properly so nothing leaks.
		defer func() {
			err = errors.Join(err, otelShutdown(context.Background()))
		}()
	}

	srv := &http.Server{
		Addr:    app.Config.Server.Addr(),
		Handler: router.NewRouter(app.Service),
	}

	srvErr := make(chan error, 1)
	go func() {
		log.Infof("listening on http://%s", srv.Addr)
		srvErr <- srv.ListenAndServe()
	}()

	if openBrowserOnStart {
		url := fmt.Sprintf("http://%s", srv.Addr)
		time.AfterFunc(time.Second, func() {
			if err := openBrowser(url); err != nil {
				log.Warnf("failed to open browser: %v", err)
			}
		})
		fmt.Printf("Opening %s in browser...\n", url)
	}

	select {
	case err = <-srvErr:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	case <-ctx.Done():
	}

	log.Info("shutting down")
	stop()

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	app.Bus.WaitAsync()

	return srv.Shutdown(shutdownCtx)
}

func openBrowser(url string) error {
	var cmd *exec.Cmd
	switch runtime.GOOS {
	case "darwin":
		cmd = exec.Command("open", url)
	case "windows":
		cmd = exec.Command("rundll32", "url.dll,FileProtocolHandler", url)
	default:
		cmd = exec.Command("xdg-open", url)
	}

	return cmd.Start()
}
