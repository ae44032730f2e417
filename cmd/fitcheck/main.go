// ABOUTME: Entry point for the fitcheck CLI
// ABOUTME: Dispatches to the studio REPL and library, vault and catalog management commands

package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/fatih/color"

	"github.com/2389/fitcheck-studio/internal/config"
	"github.com/2389/fitcheck-studio/internal/faults"
	"github.com/2389/fitcheck-studio/internal/generation"
	"github.com/2389/fitcheck-studio/internal/metrics"
	"github.com/2389/fitcheck-studio/internal/pool"
	"github.com/2389/fitcheck-studio/internal/registry"
	"github.com/2389/fitcheck-studio/internal/store"
	"github.com/2389/fitcheck-studio/internal/studio"
)

// Version is set by goreleaser at build time.
var version = "dev"

const banner = `
   __ _ _       _               _
  / _(_) |_ ___| |__   ___  ___| | __
 | |_| | __/ __| '_ \ / _ \/ __| |/ /
 |  _| | || (__| | | |  __/ (__|   <
 |_| |_|\__\___|_| |_|\___|\___|_|\_\
`

func printUsage() {
	fmt.Println("Usage: fitcheck <command> [args]")
	fmt.Println()
	fmt.Println("Commands:")
	fmt.Println("  init [--endpoint URL] [--driver D] [--force]   Write a config file")
	fmt.Println("  studio                                         Start an interactive fitting session")
	fmt.Println("  catalog import <file>                          Load garments from a .toml, .yaml or .json catalog")
	fmt.Println("  catalog list                                   List library garments")
	fmt.Println("  catalog export [file]                          Write library garments as JSON")
	fmt.Println("  upload <image> --category C [--name N] [--sub S]  Add a custom garment")
	fmt.Println("  vault export [file]                            Write every stored asset as JSON")
	fmt.Println("  vault import <file>                            Restore assets from a vault export")
	fmt.Println("  vault stats                                    Show stored asset counts and sizes")
	fmt.Println("  optimize [--force] [--dry-run] [--grace D]     Report, or with --force delete, assets nothing references")
	fmt.Println("  classify <image>                               Print the quality tier of a source image")
	fmt.Println("  characters                                     List saved characters")
	fmt.Println("  outfits                                        List saved outfits")
	fmt.Println("  version                                        Print the version")
}

func main() {
	if len(os.Args) < 2 {
		printUsage()
		os.Exit(1)
	}

	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	args := os.Args[2:]
	var err error
	switch os.Args[1] {
	case "init":
		err = runInit(args)
	case "studio":
		err = runStudio(ctx)
	case "catalog":
		err = runCatalog(ctx, args)
	case "upload":
		err = runUpload(ctx, args)
	case "vault":
		err = runVault(ctx, args)
	case "optimize":
		err = runOptimize(ctx, args)
	case "classify":
		err = runClassify(args)
	case "characters":
		err = runCharacters(ctx)
	case "outfits":
		err = runOutfits(ctx)
	case "version":
		fmt.Println(version)
	case "help", "-h", "--help":
		printUsage()
	default:
		fmt.Fprintf(os.Stderr, "Unknown command: %s\n", os.Args[1])
		printUsage()
		os.Exit(1)
	}

	if err != nil {
		red := color.New(color.FgRed)
		red.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(exitCode(err))
	}
}

// exitCode maps an error kind to a process exit status.
func exitCode(err error) int {
	switch {
	case errors.Is(err, faults.ErrValidation):
		return 2
	case errors.Is(err, faults.ErrResolution):
		return 3
	case errors.Is(err, faults.ErrGeneration):
		return 4
	case errors.Is(err, faults.ErrStorage):
		return 5
	default:
		return 1
	}
}

// app holds everything a command needs, wired from configuration.
type app struct {
	cfg        *config.Config
	configPath string
	logger     *slog.Logger
	metrics    *metrics.Metrics
	stores     *store.Stores
	registry   *registry.Registry
	session    *studio.Session
}

func openApp(ctx context.Context) (*app, error) {
	configPath := config.DefaultPath()
	cfg, err := config.LoadOrDefault(configPath, config.DataDir())
	if err != nil {
		return nil, fmt.Errorf("loading config: %w", err)
	}

	logger := setupLogger(cfg.Logging)
	slog.SetDefault(logger)

	var m *metrics.Metrics
	if cfg.Metrics.Enabled {
		m = metrics.New()
	}

	stores, err := store.Open(ctx, cfg.Storage)
	if err != nil {
		return nil, err
	}

	reg := registry.New(stores.Assets,
		registry.WithPool(pool.New(cfg.Registry.MaxTransient)),
		registry.WithLogger(logger),
		registry.WithMetrics(m),
	)

	gen, err := newGenerator(cfg.Generation, logger)
	if err != nil {
		_ = stores.Close()
		return nil, err
	}

	sess := studio.New(reg, generation.Instrument(gen, m), stores.Library,
		studio.WithLogger(logger),
		studio.WithMetrics(m),
	)

	return &app{
		cfg:        cfg,
		configPath: configPath,
		logger:     logger,
		metrics:    m,
		stores:     stores,
		registry:   reg,
		session:    sess,
	}, nil
}

func (a *app) Close() error {
	return a.stores.Close()
}

var errNoEndpoint = errors.New("generation.endpoint is not configured")

// newGenerator builds the HTTP generator, or one that always fails when no
// endpoint is configured so library commands still work offline.
func newGenerator(cfg config.GenerationConfig, logger *slog.Logger) (generation.Generator, error) {
	if cfg.Endpoint == "" {
		return generation.GeneratorFunc(func(ctx context.Context, req *generation.Request) (string, error) {
			return "", faults.Generation(string(req.Operation), errNoEndpoint)
		}), nil
	}
	return generation.NewHTTPGenerator(cfg, logger)
}

// serveMetrics exposes the metrics registry until ctx is done.
func (a *app) serveMetrics(ctx context.Context) {
	if a.metrics == nil {
		return
	}

	mux := http.NewServeMux()
	mux.Handle(a.cfg.Metrics.Path, a.metrics.Handler())
	srv := &http.Server{
		Addr:              a.cfg.Metrics.Addr,
		Handler:           mux,
		ReadHeaderTimeout: 5 * time.Second,
	}

	go func() {
		a.logger.Info("serving metrics", "addr", a.cfg.Metrics.Addr, "path", a.cfg.Metrics.Path)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			a.logger.Error("metrics server failed", "error", err)
		}
	}()

	go func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		_ = srv.Shutdown(shutdownCtx)
	}()
}
