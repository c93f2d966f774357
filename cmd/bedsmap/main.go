// Command bedsmap joins hospital facility records with county population
// estimates and renders per-capita hospital bed choropleth maps.
package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/jonboulle/clockwork"
	"github.com/spf13/cobra"

	httpadapter "github.com/emilydolson/hospital-beds-per-capita/internal/adapter/http"
	"github.com/emilydolson/hospital-beds-per-capita/internal/config"
	"github.com/emilydolson/hospital-beds-per-capita/internal/observability"
	"github.com/emilydolson/hospital-beds-per-capita/internal/pipeline"
	"github.com/emilydolson/hospital-beds-per-capita/internal/progress"
	"github.com/emilydolson/hospital-beds-per-capita/internal/render"
)

func main() {
	rootCmd := &cobra.Command{
		Use:   "bedsmap",
		Short: "Render county-level hospital beds per capita maps",
	}

	rootCmd.AddCommand(newRunCmd())
	rootCmd.AddCommand(newValidateCmd())

	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

func newRunCmd() *cobra.Command {
	var (
		facilityPath    string
		populationPath  string
		geometryPath    string
		outputDir       string
		year            int
		includeZeroBeds bool
		listenAddr      string
		noProgress      bool
	)

	cmd := &cobra.Command{
		Use:   "run",
		Short: "Run the full load-aggregate-join-render pipeline",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.Load()
			if err != nil {
				return err
			}

			// Flags override the environment only when explicitly set.
			flags := cmd.Flags()
			if flags.Changed("facilities") {
				cfg.FacilityPath = facilityPath
			}
			if flags.Changed("population") {
				cfg.PopulationPath = populationPath
			}
			if flags.Changed("geometry") {
				cfg.GeometryPath = geometryPath
			}
			if flags.Changed("out") {
				cfg.OutputDir = outputDir
			}
			if flags.Changed("year") {
				cfg.ReferenceYear = year
			}
			if flags.Changed("include-zero-beds") {
				cfg.IncludeZeroBeds = includeZeroBeds
			}
			if flags.Changed("listen") {
				cfg.ListenAddr = listenAddr
			}

			return runPipeline(cfg, noProgress)
		},
	}

	cmd.Flags().StringVar(&facilityPath, "facilities", "", "hospital facility CSV")
	cmd.Flags().StringVar(&populationPath, "population", "", "county population estimates CSV")
	cmd.Flags().StringVar(&geometryPath, "geometry", "", "county polygon vertex CSV")
	cmd.Flags().StringVar(&outputDir, "out", "", "output directory for rendered artifacts")
	cmd.Flags().IntVar(&year, "year", 0, "population estimate reference year")
	cmd.Flags().BoolVar(&includeZeroBeds, "include-zero-beds", false, "keep counties with no qualifying hospitals (beds=0) instead of dropping them")
	cmd.Flags().StringVar(&listenAddr, "listen", "", "serve /metrics, /readyz, /auditz on this address while running")
	cmd.Flags().BoolVar(&noProgress, "no-progress", false, "disable the terminal progress bar")

	return cmd
}

func runPipeline(cfg *config.Config, noProgress bool) error {
	logger := observability.NewLogger(cfg.LogLevel, cfg.LogFormat)
	metrics := observability.NewMetrics()

	var mgr progress.Manager
	if noProgress {
		mgr = progress.NoopManager{}
	} else {
		mgr = progress.NewMPBManager()
	}

	loader := &pipeline.FileLoader{
		FacilityPath:   cfg.FacilityPath,
		PopulationPath: cfg.PopulationPath,
		ReferenceYear:  cfg.ReferenceYear,
	}
	geo := &pipeline.FileGeometry{Path: cfg.GeometryPath}
	renderer := &render.Artifacts{OutputDir: cfg.OutputDir}

	p := pipeline.New(loader, geo, renderer, logger, metrics, clockwork.NewRealClock(), mgr,
		pipeline.Options{IncludeZeroBeds: cfg.IncludeZeroBeds})

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	var srv *httpadapter.Server
	if cfg.ListenAddr != "" {
		srv = httpadapter.NewServer(cfg.ListenAddr, p, logger)
		go func() {
			if err := srv.Start(); err != nil && !errors.Is(err, http.ErrServerClosed) {
				logger.Error("http server error", "error", err)
			}
		}()
	}

	_, runErr := p.Run(ctx)
	if runErr != nil {
		logger.Error("run failed", "error", runErr)
	}

	if srv != nil {
		shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.ShutdownTimeout)
		defer cancel()
		if err := srv.Shutdown(shutdownCtx); err != nil {
			logger.Error("http server shutdown error", "error", err)
		}
	}

	return runErr
}
