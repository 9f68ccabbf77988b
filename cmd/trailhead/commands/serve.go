package commands

import (
	"os"
	"os/signal"
	"syscall"

	"github.com/pterm/pterm"
	"github.com/spf13/cobra"

	"github.com/mariposa-trails/trailhead/auth"
	"github.com/mariposa-trails/trailhead/config"
	"github.com/mariposa-trails/trailhead/errors"
	"github.com/mariposa-trails/trailhead/logger"
	"github.com/mariposa-trails/trailhead/server"
	"github.com/mariposa-trails/trailhead/store"
	"github.com/mariposa-trails/trailhead/trails"
)

// ServeCmd starts the Trailhead API server
var ServeCmd = &cobra.Command{
	Use:     "serve",
	Aliases: []string{"server"},
	Short:   "Start the Trailhead API server",
	Long:    `Launch the HTTP API serving the trail dataset: read endpoints for trails and the version counter, token issuance, and the authenticated merge-update endpoint with attachment uploads.`,
	RunE:    runServe,
}

var (
	servePort      int
	serveStorePath string
)

func init() {
	ServeCmd.Flags().IntVar(&servePort, "port", 0, "Listen port (overrides config)")
	ServeCmd.Flags().StringVar(&serveStorePath, "store-path", "", "Local path of the datastore repository (overrides config)")
}

func runServe(cmd *cobra.Command, args []string) error {
	cfg, err := config.Load()
	if err != nil {
		return errors.Wrap(err, "failed to load configuration")
	}
	if servePort != 0 {
		cfg.Server.Port = servePort
	}
	if serveStorePath != "" {
		cfg.Store.Path = serveStorePath
	}
	if err := cfg.Validate(); err != nil {
		return errors.Wrap(err, "invalid configuration")
	}

	printStartupBanner(cfg)

	blobs, err := store.Open(cfg.Store, logger.Logger)
	if err != nil {
		return errors.Wrap(err, "failed to open datastore")
	}

	authSvc, err := auth.NewService(cfg.Auth, logger.Logger)
	if err != nil {
		return errors.Wrap(err, "failed to initialize auth")
	}

	service := trails.NewService(blobs, cfg.Store, logger.Logger)
	relocator := trails.NewRelocator(blobs, cfg.Store.UploadsDir, logger.Logger)
	srv := server.NewServer(cfg, service, relocator, authSvc, logger.Logger)

	// Start server in background
	errChan := make(chan error, 1)
	go func() {
		errChan <- srv.Start()
	}()

	// Wait for shutdown signal (Ctrl+C)
	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, os.Interrupt, syscall.SIGTERM)

	select {
	case err := <-errChan:
		return errors.Wrap(err, "server failed to start")
	case <-sigChan:
		pterm.Info.Println("\nShutting down gracefully (press Ctrl+C again to force)...")

		shutdownDone := make(chan error, 1)
		go func() {
			shutdownDone <- srv.Stop()
		}()

		select {
		case err := <-shutdownDone:
			if err != nil {
				return errors.Wrap(err, "shutdown error")
			}
			pterm.Success.Println("Server stopped cleanly")
			return nil
		case <-sigChan:
			pterm.Warning.Println("\nForce shutdown - exiting immediately")
			os.Exit(1)
			return nil // unreachable
		}
	}
}
