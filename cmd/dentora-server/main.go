package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/labstack/echo/v4"
	echomw "github.com/labstack/echo/v4/middleware"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/rs/zerolog"
	"github.com/spf13/cobra"

	"github.com/dentora/dentora/internal/backup"
	"github.com/dentora/dentora/internal/config"
	"github.com/dentora/dentora/internal/domain/admin"
	"github.com/dentora/dentora/internal/domain/appointment"
	"github.com/dentora/dentora/internal/domain/inventory"
	"github.com/dentora/dentora/internal/domain/patient"
	"github.com/dentora/dentora/internal/platform/middleware"
	"github.com/dentora/dentora/internal/storage"
	"github.com/dentora/dentora/internal/store"
)

const version = "0.1.0"

func main() {
	rootCmd := &cobra.Command{
		Use:   "dentora-server",
		Short: "Dental clinic operations API server",
	}

	rootCmd.AddCommand(serveCmd())
	rootCmd.AddCommand(exportCmd())
	rootCmd.AddCommand(importCmd())

	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

func serveCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "serve",
		Short: "Start the API server",
		RunE: func(cmd *cobra.Command, args []string) error {
			return runServer()
		},
	}
}

func exportCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "export",
		Short: "Write the stored document to a file",
		RunE: func(cmd *cobra.Command, args []string) error {
			out, _ := cmd.Flags().GetString("out")

			ctx := context.Background()
			logger := newLogger()
			st, closeStore, err := buildStore(ctx, logger)
			if err != nil {
				return err
			}
			defer closeStore()

			name, data, err := st.Export(ctx)
			if err != nil {
				return err
			}
			if out == "" {
				out = name
			}
			if err := os.WriteFile(out, data, 0o644); err != nil {
				return fmt.Errorf("write export: %w", err)
			}
			fmt.Printf("Exported %d bytes to %s\n", len(data), out)
			return nil
		},
	}
	cmd.Flags().String("out", "", "Output path (defaults to the dated export filename)")
	return cmd
}

func importCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "import <file>",
		Short: "Replace the stored document with the one in <file>",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			data, err := os.ReadFile(args[0])
			if err != nil {
				return err
			}

			ctx := context.Background()
			logger := newLogger()
			st, closeStore, err := buildStore(ctx, logger)
			if err != nil {
				return err
			}
			defer closeStore()

			ok, err := st.Import(ctx, data)
			if err != nil {
				return err
			}
			if !ok {
				return fmt.Errorf("%s is not a valid document", args[0])
			}
			fmt.Println("Import complete.")
			return nil
		},
	}
}

func runServer() error {
	logger := newLogger()

	cfg, err := config.Load()
	if err != nil {
		logger.Fatal().Err(err).Msg("failed to load config")
	}
	if err := cfg.Validate(); err != nil {
		logger.Fatal().Err(err).Msg("invalid config")
	}

	ctx := context.Background()
	slot, err := openSlot(ctx, cfg)
	if err != nil {
		logger.Fatal().Err(err).Str("driver", cfg.StorageDriver).Msg("failed to open storage slot")
	}
	defer func() { _ = slot.Close() }()
	logger.Info().Str("driver", cfg.StorageDriver).Msg("storage slot opened")

	// Metrics
	reg := prometheus.NewRegistry()
	reg.MustRegister(collectors.NewGoCollector())
	reg.MustRegister(collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))
	metrics := storage.NewMetrics(reg)

	gw := storage.NewGateway(slot, logger, metrics, storage.SeedSource{URL: cfg.SeedURL, File: cfg.SeedFile})

	// Automatic backups piggyback on every successful save.
	sink, err := newSink(ctx, cfg)
	if err != nil {
		logger.Fatal().Err(err).Str("driver", cfg.BackupDriver).Msg("failed to open backup sink")
	}
	if sink != nil {
		sched := backup.NewScheduler(gw, sink, logger, time.Duration(cfg.BackupIntervalHours)*time.Hour)
		gw.SetAfterSave(sched.CheckAndRun)
		logger.Info().Str("sink", sink.Name()).Int("interval_hours", cfg.BackupIntervalHours).Msg("auto-backup enabled")
	}

	st := store.New(gw, logger)
	if err := st.Init(ctx); err != nil {
		logger.Fatal().Err(err).Msg("failed to initialize document store")
	}

	// Echo server
	e := echo.New()
	e.HideBanner = true
	e.HidePort = true

	// Global middleware
	e.Use(middleware.Recovery(logger))
	e.Use(middleware.RequestID())
	e.Use(middleware.Logger(logger))
	e.Use(echomw.CORSWithConfig(echomw.CORSConfig{
		AllowOrigins: cfg.CORSOrigins,
		AllowMethods: []string{http.MethodGet, http.MethodPost, http.MethodPut, http.MethodDelete},
		AllowHeaders: []string{"Content-Type", "X-Request-ID"},
	}))
	e.Use(middleware.StorageWarning(gw.NearCapacity))

	// Health check
	e.GET("/health", func(c echo.Context) error {
		return c.JSON(http.StatusOK, map[string]string{
			"status":  "ok",
			"version": version,
		})
	})

	// Metrics endpoint
	e.GET("/metrics", echo.WrapHandler(promhttp.HandlerFor(reg, promhttp.HandlerOpts{})))

	// Domain handlers
	apiV1 := e.Group("/api/v1")
	patient.NewHandler(st).RegisterRoutes(apiV1)
	appointment.NewHandler(st).RegisterRoutes(apiV1)
	inventory.NewHandler(st).RegisterRoutes(apiV1)
	admin.NewHandler(st).RegisterRoutes(apiV1)

	// Graceful shutdown
	go func() {
		addr := ":" + cfg.Port
		logger.Info().Str("addr", addr).Msg("starting server")
		if err := e.Start(addr); err != nil && err != http.ErrServerClosed {
			logger.Fatal().Err(err).Msg("server error")
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	logger.Info().Msg("shutting down server")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := e.Shutdown(shutdownCtx); err != nil {
		logger.Fatal().Err(err).Msg("server shutdown failed")
	}
	logger.Info().Msg("server stopped")
	return nil
}

func newLogger() zerolog.Logger {
	logger := zerolog.New(os.Stdout).With().Timestamp().Logger()
	if os.Getenv("ENV") == "development" || os.Getenv("ENV") == "" {
		logger = zerolog.New(zerolog.ConsoleWriter{Out: os.Stdout}).With().Timestamp().Logger()
	}
	return logger
}

// openSlot opens the durable slot named by the config.
func openSlot(ctx context.Context, cfg *config.Config) (storage.Slot, error) {
	switch cfg.StorageDriver {
	case "file":
		return storage.NewFileSlot(cfg.DataDir)
	case "sqlite":
		return storage.NewSQLiteSlot(cfg.SQLitePath)
	case "postgres":
		return storage.NewPostgresSlot(ctx, cfg.DatabaseURL)
	case "memory":
		return storage.NewMemorySlot(), nil
	default:
		return nil, fmt.Errorf("unknown storage driver %q", cfg.StorageDriver)
	}
}

// newSink opens the configured backup sink; nil means backups are off.
func newSink(ctx context.Context, cfg *config.Config) (backup.Sink, error) {
	switch cfg.BackupDriver {
	case "fs":
		return backup.NewFSSink(cfg.BackupDir)
	case "s3":
		return backup.NewS3Sink(ctx, backup.S3Config{
			Bucket:          cfg.S3Bucket,
			Region:          cfg.S3Region,
			Endpoint:        cfg.S3Endpoint,
			AccessKeyID:     cfg.S3AccessKeyID,
			SecretAccessKey: cfg.S3SecretAccessKey,
			PathStyle:       cfg.S3PathStyle,
		})
	case "none":
		return nil, nil
	default:
		return nil, fmt.Errorf("unknown backup driver %q", cfg.BackupDriver)
	}
}

// buildStore wires a store for the one-shot CLI commands. Backups and
// metrics stay out of the way here.
func buildStore(ctx context.Context, logger zerolog.Logger) (*store.Store, func(), error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, nil, err
	}
	if err := cfg.Validate(); err != nil {
		return nil, nil, err
	}
	slot, err := openSlot(ctx, cfg)
	if err != nil {
		return nil, nil, err
	}
	gw := storage.NewGateway(slot, logger, nil, storage.SeedSource{URL: cfg.SeedURL, File: cfg.SeedFile})
	st := store.New(gw, logger)
	if err := st.Init(ctx); err != nil {
		_ = slot.Close()
		return nil, nil, err
	}
	return st, func() { _ = slot.Close() }, nil
}
