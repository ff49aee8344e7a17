package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gorilla/mux"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"airport-data/internal/airportdata"
	"airport-data/internal/config"
	"airport-data/internal/handlers"
	"airport-data/internal/models"
	"airport-data/internal/repository"
	"airport-data/internal/services"
	"airport-data/pkg/database"
	"airport-data/pkg/logging"
	"airport-data/pkg/metrics"
)

func main() {
	cfg, err := config.LoadConfig()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to load configuration: %v\n", err)
		os.Exit(1)
	}

	if err := cfg.Validate(); err != nil {
		fmt.Fprintf(os.Stderr, "Invalid configuration: %v\n", err)
		os.Exit(1)
	}

	logger := logging.NewStructuredLogger("airport-api", "1.0.0", logging.ParseLevel(cfg.Logging.Level))

	ctx := context.Background()
	logger.Info(ctx, "[STARTUP] Starting airport lookup API server", logging.Fields{
		"version":      "1.0.0",
		"server_host":  cfg.Server.Host,
		"server_port":  cfg.Server.Port,
		"table_source": cfg.Server.TableSource,
	})

	metricsCollector := metrics.NewCollector("airport_data", nil)

	var (
		lookup *services.LookupService
		store  handlers.HealthChecker
	)

	switch cfg.Server.TableSource {
	case "file":
		lookup = services.NewLookupServiceFromFile(ctx, cfg.Server.TablePath, logger, metricsCollector)
	case "database":
		db, err := database.NewPostgresDB(ctx, cfg.Database.Postgres(), logger, metricsCollector)
		if err != nil {
			logger.Fatal(ctx, "[STARTUP_ERROR] Failed to connect to database", logging.Fields{}, err)
		}
		defer db.Close()

		repo := repository.NewTableRepository(db, logger, metricsCollector)
		store = repo
		lookup = services.NewLookupService(loadSnapshot(ctx, repo, logger), logger, metricsCollector)
	default:
		table, err := airportdata.Load()
		if err != nil {
			logger.Error(ctx, "[STARTUP_ERROR] Bundled airport table is unusable", logging.Fields{}, err)
		}
		lookup = services.NewLookupService(table, logger, metricsCollector)
	}

	if !lookup.IsAvailable() {
		logger.Warn(ctx, "[STARTUP_DEGRADED] Serving without an airport table", logging.Fields{
			"table_source": cfg.Server.TableSource,
		})
	}

	statsService := services.NewStatisticsService(lookup, logger)
	airportHandler := handlers.NewAirportHandler(lookup, statsService, store, logger, metricsCollector)

	router := mux.NewRouter()
	airportHandler.RegisterRoutes(router)
	router.Handle("/metrics", promhttp.Handler())

	server := &http.Server{
		Addr:         fmt.Sprintf("%s:%d", cfg.Server.Host, cfg.Server.Port),
		Handler:      router,
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
		IdleTimeout:  cfg.Server.IdleTimeout,
	}

	go func() {
		logger.Info(ctx, "[SERVER_START] HTTP server listening", logging.Fields{
			"address":  server.Addr,
			"airports": lookup.Count(),
		})

		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Fatal(ctx, "[SERVER_ERROR] Server failed", logging.Fields{}, err)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	logger.Info(ctx, "[SHUTDOWN] Shutting down server...", logging.Fields{})

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := server.Shutdown(shutdownCtx); err != nil {
		logger.Error(ctx, "[SHUTDOWN_ERROR] Server forced to shutdown", logging.Fields{}, err)
	}

	logger.Info(ctx, "[SHUTDOWN_COMPLETE] Server stopped", logging.Fields{})
}

// loadSnapshot returns the latest stored table, or nil when none is usable
func loadSnapshot(ctx context.Context, repo repository.TableRepository, logger *logging.StructuredLogger) *models.AirportTable {
	table, err := repo.LatestTable(ctx)
	if err != nil {
		var nf *repository.NotFoundError
		if errors.As(err, &nf) {
			logger.Warn(ctx, "[STARTUP_NO_SNAPSHOT] No airport table has been published", logging.Fields{})
			return nil
		}
		logger.Error(ctx, "[STARTUP_ERROR] Failed to load airport table snapshot", logging.Fields{}, err)
		return nil
	}
	return table
}
