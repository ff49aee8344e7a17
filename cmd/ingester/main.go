package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"sort"
	"strings"
	"syscall"

	"airport-data/internal/config"
	"airport-data/internal/dataset"
	"airport-data/internal/repository"
	"airport-data/internal/services"
	"airport-data/pkg/database"
	"airport-data/pkg/logging"
	"airport-data/pkg/metrics"
)

func main() {
	configPath := flag.String("config", "", "Path to a YAML configuration file")
	forceRefresh := flag.Bool("force-refresh", false, "Ignore cached datasets and download them again")
	output := flag.String("output", "", "Artifact output path (overrides ingest.outputPath)")
	publish := flag.Bool("publish", false, "Store a snapshot of the table in Postgres")
	flag.Parse()

	var (
		cfg *config.Config
		err error
	)
	if *configPath != "" {
		cfg, err = config.LoadConfigFile(*configPath)
	} else {
		cfg, err = config.LoadConfig()
	}
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to load configuration: %v\n", err)
		os.Exit(1)
	}
	if *output != "" {
		cfg.Ingest.OutputPath = *output
	}
	if *publish {
		cfg.Ingest.PublishSnapshot = true
	}
	if err := cfg.Validate(); err != nil {
		fmt.Fprintf(os.Stderr, "Invalid configuration: %v\n", err)
		os.Exit(1)
	}

	logger := logging.NewStructuredLogger("airport-ingester", "1.0.0", logging.ParseLevel(cfg.Logging.Level))

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	logger.Info(ctx, "[INGESTER_START] Starting airport table generation", logging.Fields{
		"version":       "1.0.0",
		"base_url":      cfg.Ingest.BaseURL,
		"cache_dir":     cfg.Ingest.CacheDir,
		"output_path":   cfg.Ingest.OutputPath,
		"force_refresh": *forceRefresh,
		"publish":       cfg.Ingest.PublishSnapshot,
	})

	metricsCollector := metrics.NewCollector("airport_ingester", nil)

	fetcher, err := dataset.NewFetcher(dataset.Config{
		BaseURL:  cfg.Ingest.BaseURL,
		CacheDir: cfg.Ingest.CacheDir,
		MaxAge:   cfg.Ingest.CacheMaxAge,
		Timeout:  cfg.Ingest.HTTPTimeout,
	}, logger, metricsCollector)
	if err != nil {
		logger.Fatal(ctx, "[INGESTER_ERROR] Failed to create dataset fetcher", logging.Fields{}, err)
	}
	defer fetcher.Close()

	var repo repository.TableRepository
	if cfg.Ingest.PublishSnapshot {
		db, err := database.NewPostgresDB(ctx, cfg.Database.Postgres(), logger, metricsCollector)
		if err != nil {
			logger.Fatal(ctx, "[INGESTER_ERROR] Failed to connect to database", logging.Fields{}, err)
		}
		defer db.Close()
		repo = repository.NewTableRepository(db, logger, metricsCollector)
	}

	ingestionService := services.NewIngestionService(fetcher, repo, logger, metricsCollector)

	result, err := ingestionService.Run(ctx, services.IngestOptions{
		AirportsFile: cfg.Ingest.AirportsFile,
		RunwaysFile:  cfg.Ingest.RunwaysFile,
		OutputPath:   cfg.Ingest.OutputPath,
		ByteBudget:   cfg.Ingest.MaxArtifactBytes,
		ForceRefresh: *forceRefresh,
		SourceName:   cfg.Ingest.SourceName,
		SourceURL:    cfg.Ingest.BaseURL,
		Publish:      cfg.Ingest.PublishSnapshot,
	})
	if err != nil {
		logger.Error(ctx, "[INGESTION_ERROR] Table generation failed", logging.Fields{}, err)
		fmt.Fprintf(os.Stderr, "Table generation failed: %v\n", err)
		stop()
		os.Exit(1)
	}

	printSummary(result)

	logger.Info(ctx, "[INGESTER_COMPLETE] Table generation completed successfully", logging.Fields{
		"run_id":           result.RunID,
		"airports":         result.AirportsRetained,
		"artifact_bytes":   result.ArtifactBytes,
		"duration_seconds": result.Duration.Seconds(),
	})
}

func printSummary(result *services.IngestionResult) {
	fmt.Println(strings.Repeat("=", 80))
	fmt.Println("TABLE GENERATION COMPLETE")
	fmt.Println(strings.Repeat("=", 80))
	fmt.Printf("Run ID:             %s\n", result.RunID)
	fmt.Printf("Coverage:           %s\n", result.Meta.Coverage)
	fmt.Printf("Airport Rows:       %d\n", result.AirportRows)
	fmt.Printf("Airports Retained:  %d\n", result.AirportsRetained)
	fmt.Printf("Runway Rows:        %d\n", result.RunwayRows)
	fmt.Printf("Runways Kept:       %d\n", result.RunwaysKept)
	fmt.Printf("Artifact:           %s\n", result.OutputPath)
	fmt.Printf("Artifact Size:      %.1f KB of %.1f KB (%.1f%%)\n",
		float64(result.ArtifactBytes)/1024,
		float64(result.ByteBudget)/1024,
		100*float64(result.ArtifactBytes)/float64(result.ByteBudget))
	if result.SnapshotID != 0 {
		fmt.Printf("Snapshot ID:        %d\n", result.SnapshotID)
	}
	fmt.Printf("Duration:           %v\n", result.Duration)

	printBreakdown("Airports rejected", result.Rejected)
	printBreakdown("Runways dropped", result.RunwaysDropped)
}

func printBreakdown(title string, counts map[string]int) {
	if len(counts) == 0 {
		return
	}
	reasons := make([]string, 0, len(counts))
	for r := range counts {
		reasons = append(reasons, r)
	}
	sort.Strings(reasons)

	fmt.Printf("\n%s:\n", title)
	for _, r := range reasons {
		fmt.Printf("  - %-12s %d\n", r, counts[r])
	}
}
