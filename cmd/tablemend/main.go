package main

import (
	"context"
	"fmt"
	"log"
	"os"
	"os/signal"
	"path/filepath"
	"runtime"
	"sync/atomic"
	"syscall"

	"github.com/spf13/pflag"
	"golang.org/x/sync/errgroup"

	"github.com/finrail/tablemend/internal/config"
	"github.com/finrail/tablemend/internal/filter"
	"github.com/finrail/tablemend/internal/pdfpage"
	"github.com/finrail/tablemend/internal/tables"
)

// Build-time variables set via ldflags
var (
	version   = "dev"
	buildTime = "unknown"
	gitCommit = "unknown"
)

func main() {
	// Check for version flag before loading config
	for _, arg := range os.Args[1:] {
		if arg == "-version" || arg == "--version" || arg == "-v" {
			printVersion()
			return
		}
	}

	// Load configuration from command line flags
	cfg, err := config.LoadFromFlags()
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}

	// Setup logging based on configuration
	setupLogging(cfg)

	// Override version from build-time variable if available
	if version != "dev" {
		cfg.Version = version
	}

	inputs := pflag.Args()
	if len(inputs) == 0 {
		pflag.Usage()
		os.Exit(2)
	}

	if cfg.IsDebug() {
		log.Printf("Configuration: %s", cfg.String())
	}

	// Create context that cancels on the first interrupt so a long batch
	// stops at a page boundary instead of mid-write
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	signalCh := make(chan os.Signal, 1)
	signal.Notify(signalCh, syscall.SIGINT, syscall.SIGTERM)
	go func() {
		sig := <-signalCh
		log.Printf("Received signal: %v, finishing the current page", sig)
		cancel()
	}()

	if failed := runDocuments(ctx, cfg, inputs); failed > 0 {
		log.Printf("%d of %d documents failed", failed, len(inputs))
		os.Exit(1)
	}
}

// runDocuments processes every input PDF, at most cfg.Concurrency at a time,
// and returns the number of documents that failed. A failed document never
// stops the rest of the batch.
func runDocuments(ctx context.Context, cfg *config.Config, inputs []string) int {
	g, ctx := errgroup.WithContext(ctx)
	g.SetLimit(cfg.Concurrency)

	var failed atomic.Int64
	for _, path := range inputs {
		path := path
		g.Go(func() error {
			if err := processDocument(ctx, cfg, path); err != nil {
				log.Printf("%s: %v", path, err)
				failed.Add(1)
			}
			return nil
		})
	}
	// Workers report their own errors; Wait only joins them.
	_ = g.Wait()

	return int(failed.Load())
}

// processDocument runs the full recovery pipeline for a single PDF and logs
// the per-document summary.
func processDocument(ctx context.Context, cfg *config.Config, path string) error {
	doc, err := pdfpage.Open(path, cfg.MaxFileSize)
	if err != nil {
		return err
	}
	defer doc.Close()

	pages, err := pdfpage.ParsePageRanges(cfg.Pages, doc.PageCount())
	if err != nil {
		return err
	}

	svc := tables.NewService(tables.ServiceConfig{
		OutputRoot:   cfg.OutputDir,
		Variant:      cfg.Variant,
		FilterLimits: filterLimits(cfg),
		Debug:        cfg.IsDebug(),
	}, log.Default())

	report, err := svc.ProcessDocument(ctx, doc, pages)
	if err != nil {
		return err
	}

	name := filepath.Base(path)
	log.Printf("%s: scanned %d pages, wrote %d tables, filtered %d, selected %d",
		name, report.PagesScanned, report.TablesWritten, report.TablesFiltered, report.TablesSelected)
	for _, f := range report.Failures {
		log.Printf("%s: page %d: %s: %v", name, f.Page, f.Strategy, f.Err)
	}
	return nil
}

// filterLimits maps the flag-level filter settings onto the full threshold
// set used by the file-level filter.
func filterLimits(cfg *config.Config) filter.Thresholds {
	limits := filter.DefaultThresholds()
	limits.MinRows = cfg.MinRows
	limits.MinCols = cfg.MinCols
	limits.EmptyRatioMax = cfg.EmptyRatio
	return limits
}

// setupLogging configures the logging system based on the configuration
func setupLogging(cfg *config.Config) {
	log.SetOutput(os.Stderr)
	if cfg.IsDebug() {
		log.SetFlags(log.LstdFlags | log.Lshortfile)
	} else {
		log.SetFlags(log.LstdFlags)
	}
}

// printVersion prints version information
func printVersion() {
	fmt.Printf("tablemend\n")
	fmt.Printf("Version: %s\n", version)
	fmt.Printf("Build Time: %s\n", buildTime)
	fmt.Printf("Git Commit: %s\n", gitCommit)
	fmt.Printf("Built with: %s\n", runtime.Version())
}
