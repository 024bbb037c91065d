package main

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/labstack/echo/v4"
	echomw "github.com/labstack/echo/v4/middleware"
	"github.com/spf13/cobra"

	"github.com/ehr/picker/internal/config"
	"github.com/ehr/picker/internal/domain/birthday"
	"github.com/ehr/picker/internal/domain/eligibility"
	"github.com/ehr/picker/internal/domain/form"
	"github.com/ehr/picker/internal/domain/reference"
	"github.com/ehr/picker/internal/platform/cache"
	"github.com/ehr/picker/internal/platform/db"
	"github.com/ehr/picker/internal/platform/middleware"
	"github.com/ehr/picker/internal/platform/telemetry"
	"github.com/ehr/picker/migrations"
)

func main() {
	if err := rootCmd().Execute(); err != nil {
		os.Exit(1)
	}
}

func rootCmd() *cobra.Command {
	root := &cobra.Command{
		Use:   "picker-server",
		Short: "Appointment doctor picker API server",
	}

	root.AddCommand(serveCmd())
	root.AddCommand(migrateCmd())
	root.AddCommand(referenceCmd())
	root.AddCommand(normalizeCmd())
	return root
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

func migrateCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "migrate",
		Short: "Run database migrations",
	}

	// migrate up
	cmd.AddCommand(&cobra.Command{
		Use:   "up",
		Short: "Apply pending migrations",
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			pool, err := openPool(ctx)
			if err != nil {
				return err
			}
			defer pool.Close()

			count, err := db.NewMigrator(pool, migrations.FS).Up(ctx)
			if err != nil {
				return fmt.Errorf("migration failed: %w", err)
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Applied %d migration(s) successfully.\n", count)
			return nil
		},
	})

	// migrate status
	cmd.AddCommand(&cobra.Command{
		Use:   "status",
		Short: "Show migration status",
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			pool, err := openPool(ctx)
			if err != nil {
				return err
			}
			defer pool.Close()

			statuses, err := db.NewMigrator(pool, migrations.FS).Status(ctx)
			if err != nil {
				return fmt.Errorf("failed to get migration status: %w", err)
			}
			printMigrationStatus(cmd, statuses)
			return nil
		},
	})

	return cmd
}

func printMigrationStatus(cmd *cobra.Command, statuses []db.MigrationStatus) {
	out := cmd.OutOrStdout()
	fmt.Fprintf(out, "%-10s %-40s %-10s %s\n", "VERSION", "NAME", "STATUS", "APPLIED AT")
	fmt.Fprintln(out, "---------- ---------------------------------------- ---------- --------------------")
	for _, s := range statuses {
		status := "pending"
		appliedAt := ""
		if s.Applied {
			status = "applied"
			if s.AppliedAt != nil {
				appliedAt = s.AppliedAt.Format("2006-01-02 15:04:05")
			}
		}
		fmt.Fprintf(out, "%-10d %-40s %-10s %s\n", s.Version, s.Name, status, appliedAt)
	}
}

func referenceCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "reference",
		Short: "Manage stored reference data",
	}

	// reference sync
	cmd.AddCommand(&cobra.Command{
		Use:   "sync",
		Short: "Copy cities, specialties and doctors from the HTTP endpoints into Postgres",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.Load()
			if err != nil {
				return err
			}
			logger := newLogger(cfg)
			ctx := cmd.Context()

			store := reference.NewLoader(httpSource(cfg), logger).Load(ctx)
			if texts := store.FailureTexts(); len(texts) > 0 {
				for coll, text := range texts {
					logger.Error().Str("collection", string(coll)).Msg(text)
				}
				return fmt.Errorf("reference sync aborted: %d collection(s) failed to load", len(texts))
			}

			pool, err := openPool(ctx)
			if err != nil {
				return err
			}
			defer pool.Close()

			if err := reference.NewPGSource(pool).Replace(ctx, store.Cities, store.Specialties, store.Doctors); err != nil {
				return fmt.Errorf("store reference data: %w", err)
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Stored %d cities, %d specialties, %d doctors.\n",
				len(store.Cities), len(store.Specialties), len(store.Doctors))

			if cfg.RedisURL == "" {
				return nil
			}
			rc, err := cache.NewRedis(ctx, cfg.RedisURL)
			if err != nil {
				logger.Warn().Err(err).Msg("reference cache not invalidated")
				return nil
			}
			defer rc.Close()
			if err := invalidateReferenceCache(ctx, rc); err != nil {
				logger.Warn().Err(err).Msg("reference cache not invalidated")
				return nil
			}
			fmt.Fprintln(cmd.OutOrStdout(), "Reference cache invalidated.")
			return nil
		},
	})

	return cmd
}

func normalizeCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "normalize <birthday>",
		Short: "Normalize a birthday input the way the form does",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			enc := json.NewEncoder(cmd.OutOrStdout())
			return enc.Encode(birthday.Describe(args[0], time.Now()))
		},
	}
}

func runServer() error {
	// Config
	cfg, err := config.Load()
	if err != nil {
		return err
	}
	logger := newLogger(cfg)
	if err := cfg.Validate(); err != nil {
		logger.Fatal().Err(err).Msg("invalid configuration")
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// Telemetry
	metrics := telemetry.NewMetrics()
	reporter, err := telemetry.NewReporter(telemetry.ReporterConfig{
		DSN:         cfg.SentryDSN,
		Environment: cfg.Env,
		SampleRate:  cfg.SentrySampleRate,
	})
	if err != nil {
		logger.Fatal().Err(err).Msg("failed to initialise sentry")
	}
	defer reporter.Flush(2 * time.Second)

	// Reference data
	deps, err := buildDependencies(ctx, cfg, logger)
	if err != nil {
		logger.Fatal().Err(err).Msg("failed to set up dependencies")
	}
	defer deps.Close()

	loaderOpts := []reference.LoaderOption{reference.WithObservers(metrics)}
	if reporter != nil {
		loaderOpts = append(loaderOpts, reference.WithObservers(reporter))
	}
	loader := reference.NewLoader(deps.source, logger, loaderOpts...)

	// Forms
	engine := eligibility.New()
	formOpts := []form.Option{
		form.WithSubmitter(deps.submitter),
		form.WithSessionTTL(cfg.SessionTTL),
		form.WithObserver(metrics),
	}
	if reporter != nil {
		formOpts = append(formOpts, form.WithErrorReporter(reporter))
	}
	forms := form.NewController(loader, engine, logger, formOpts...)
	go forms.StartCleanup(ctx, cfg.SessionCleanupInterval)

	// Echo server
	e := echo.New()
	e.HideBanner = true
	e.HidePort = true

	// Global middleware
	var panicReporter middleware.ErrorReporter
	if reporter != nil {
		panicReporter = reporter
	}
	e.Use(middleware.Recovery(logger, panicReporter))
	e.Use(middleware.RequestID())
	e.Use(middleware.Logger(logger))
	e.Use(echomw.CORSWithConfig(echomw.CORSConfig{
		AllowOrigins: cfg.CORSOrigins,
		AllowMethods: []string{http.MethodGet, http.MethodPost, http.MethodPatch, http.MethodDelete},
		AllowHeaders: []string{"Content-Type", middleware.RequestIDHeader},
	}))
	e.Use(metrics.Middleware())
	e.Use(middleware.RequestTimeout(cfg.RequestTimeout, "/metrics"))

	// API groups
	apiV1 := e.Group("/api/v1")
	snapshot := reference.NewSnapshot(loader, cfg.SnapshotTTL)
	reference.NewHandler(snapshot).RegisterRoutes(apiV1)
	eligibility.NewHandler(engine, snapshot).RegisterRoutes(apiV1)
	birthday.NewHandler(time.Now).RegisterRoutes(apiV1)
	form.NewHandler(forms).RegisterRoutes(apiV1)

	// Health and metrics
	e.GET("/health", func(c echo.Context) error {
		return c.JSON(http.StatusOK, map[string]string{"status": "ok"})
	})
	e.GET("/health/ready", db.ReadinessHandler(deps.checks...))
	if deps.pool != nil {
		e.GET("/health/db", db.PoolStatsHandler(deps.pool))
	}
	e.GET("/metrics", echo.WrapHandler(metrics.Handler()))

	// Graceful shutdown
	go func() {
		addr := ":" + cfg.Port
		logger.Info().Str("addr", addr).Str("reference_source", cfg.ReferenceSource).Msg("starting server")
		if err := e.Start(addr); err != nil && err != http.ErrServerClosed {
			logger.Fatal().Err(err).Msg("server error")
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	logger.Info().Msg("shutting down server")
	cancel()
	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer shutdownCancel()
	if err := e.Shutdown(shutdownCtx); err != nil {
		logger.Error().Err(err).Msg("server shutdown failed")
	}
	logger.Info().Int("open_forms", forms.Len()).Msg("server stopped")
	return nil
}
