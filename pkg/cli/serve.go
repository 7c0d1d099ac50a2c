package cli

import (
	"context"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/m-mizutani/ctxlog"
	"github.com/m-mizutani/goerr/v2"
	"github.com/urfave/cli/v3"

	"github.com/carrel-app/carrel/pkg/cli/config"
	controller "github.com/carrel-app/carrel/pkg/controller/http"
	"github.com/carrel-app/carrel/pkg/infra/archive"
	"github.com/carrel-app/carrel/pkg/infra/fetch"
	"github.com/carrel-app/carrel/pkg/infra/storage"
	"github.com/carrel-app/carrel/pkg/usecase"
)

func cmdServe() *cli.Command {
	var (
		serverCfg  config.Server
		storeCfg   config.Store
		fetchCfg   config.Fetch
		configPath string
	)

	flags := append(serverCfg.Flags(), storeCfg.Flags()...)
	flags = append(flags, fetchCfg.Flags()...)
	flags = append(flags, &cli.StringFlag{
		Name:        "config",
		Usage:       "TOML config file (MIME overrides)",
		Destination: &configPath,
		Sources:     cli.EnvVars("CARREL_CONFIG"),
	})

	return &cli.Command{
		Name:    "serve",
		Aliases: []string{"s"},
		Usage:   "Start the package viewer server",
		Flags:   flags,
		Action: func(ctx context.Context, c *cli.Command) error {
			logger := ctxlog.From(ctx)

			logger.Info("Starting carrel server",
				slog.String("addr", serverCfg.Addr),
				slog.Any("store", storeCfg),
				slog.Any("fetch", fetchCfg),
			)

			var fileCfg *config.File
			if configPath != "" {
				var err error
				fileCfg, err = config.LoadFile(configPath)
				if err != nil {
					return err
				}
			}

			// Durable persistence
			dbPath, err := storeCfg.ResolvePath()
			if err != nil {
				return err
			}
			store, err := storage.New(dbPath, storage.WithQuota(storeCfg.Quota()))
			if err != nil {
				return goerr.Wrap(err, "failed to open content store")
			}
			defer func() {
				if err := store.Close(); err != nil {
					logger.Warn("failed to close content store", slog.Any("error", err))
				}
			}()

			// Use cases
			content := usecase.NewContent(store)
			content.Rehydrate(ctx)
			loader := usecase.NewLoader(archive.New(), content)
			fetcher := fetch.New(
				fetch.WithMaxSize(fetchCfg.MaxDownloadMB<<20),
				fetch.WithAuthHeader(fetchCfg.AuthHeader),
			)

			// HTTP server
			serverOpts := []controller.Option{
				controller.WithAddr(serverCfg.Addr),
				controller.WithMaxUpload(serverCfg.MaxUploadMB << 20),
			}
			if fileCfg != nil && len(fileCfg.MIMETypes) > 0 {
				serverOpts = append(serverOpts, controller.WithMIMEOverrides(fileCfg.MIMETypes))
			}
			server, err := controller.NewServer(ctx, content, loader, fetcher, serverOpts...)
			if err != nil {
				return goerr.Wrap(err, "failed to create HTTP server")
			}

			// Start server in goroutine
			go func() {
				logger.Info("HTTP server starting", slog.String("addr", serverCfg.Addr))
				if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
					logger.Error("HTTP server error", slog.Any("error", err))
				}
			}()

			// Wait for interrupt signal
			sigChan := make(chan os.Signal, 1)
			signal.Notify(sigChan, os.Interrupt, syscall.SIGTERM)

			select {
			case <-ctx.Done():
				logger.Info("Context cancelled, shutting down...")
			case sig := <-sigChan:
				logger.Info("Signal received, shutting down...", slog.Any("signal", sig))
			}

			// Graceful shutdown
			shutdownCtx, cancel := context.WithTimeout(ctx, 10*time.Second)
			defer cancel()

			if err := server.Shutdown(shutdownCtx); err != nil {
				return goerr.Wrap(err, "failed to shutdown server gracefully")
			}

			logger.Info("Server shutdown complete")
			return nil
		},
	}
}
