package services

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"

	"airport-data/internal/compaction"
	"airport-data/internal/models"
	"airport-data/internal/repository"
	"airport-data/pkg/logging"
	"airport-data/pkg/metrics"
	"airport-data/pkg/tabular"
)

// DatasetSource retrieves raw datasets by filename
type DatasetSource interface {
	FetchAll(ctx context.Context, names []string, forceRefresh bool) (map[string][]byte, error)
}

// IngestionService runs the offline table generation pipeline
type IngestionService struct {
	source  DatasetSource
	repo    repository.TableRepository // optional snapshot store
	logger  *logging.StructuredLogger
	metrics *metrics.Collector
	now     func() time.Time
}

// IngestOptions configures a single generation run
type IngestOptions struct {
	AirportsFile string
	RunwaysFile  string
	OutputPath   string
	ByteBudget   int
	ForceRefresh bool
	SourceName   string
	SourceURL    string
	// Publish stores a snapshot of the table when a repository is configured.
	Publish bool
}

// IngestionResult contains generation statistics
type IngestionResult struct {
	RunID            string
	AirportRows      int
	RunwayRows       int
	AirportsRetained int
	Rejected         map[string]int
	RunwaysKept      int
	RunwaysDropped   map[string]int
	ArtifactBytes    int
	ByteBudget       int
	OutputPath       string
	SnapshotID       int64
	Meta             models.TableMeta
	Duration         time.Duration
}

// NewIngestionService creates a new ingestion service. repo may be nil.
func NewIngestionService(source DatasetSource, repo repository.TableRepository, logger *logging.StructuredLogger, metricsCollector *metrics.Collector) *IngestionService {
	return &IngestionService{
		source:  source,
		repo:    repo,
		logger:  logger,
		metrics: metricsCollector,
		now:     time.Now,
	}
}

var (
	requiredAirportColumns = []string{models.ColIdent, models.ColType, models.ColCountry}
	requiredRunwayColumns  = []string{models.ColAirportIdent}
)

// Run fetches both datasets, builds the compact table, optionally stores a
// snapshot and then publishes the artifact at opts.OutputPath. The artifact
// is not touched unless every earlier step succeeds.
func (s *IngestionService) Run(ctx context.Context, opts IngestOptions) (*IngestionResult, error) {
	startTime := s.now()
	result := &IngestionResult{
		RunID:      uuid.NewString(),
		ByteBudget: opts.ByteBudget,
		OutputPath: opts.OutputPath,
	}
	ctx = logging.WithRunID(ctx, result.RunID)
	if result.ByteBudget <= 0 {
		result.ByteBudget = compaction.DefaultByteBudget
	}

	s.logger.Info(ctx, "[INGEST_START] Starting table generation", logging.Fields{
		"airports_file": opts.AirportsFile,
		"runways_file":  opts.RunwaysFile,
		"output_path":   opts.OutputPath,
		"byte_budget":   result.ByteBudget,
		"force_refresh": opts.ForceRefresh,
		"stage":         "INITIALIZATION",
	})

	raw, err := s.source.FetchAll(ctx, []string{opts.AirportsFile, opts.RunwaysFile}, opts.ForceRefresh)
	if err != nil {
		s.metrics.RecordIngestionError("fetch_error")
		return nil, fmt.Errorf("failed to fetch datasets: %w", err)
	}

	airportTable, err := parseDataset(raw[opts.AirportsFile], opts.AirportsFile, requiredAirportColumns)
	if err != nil {
		s.metrics.RecordIngestionError("parse_error")
		return nil, err
	}
	runwayTable, err := parseDataset(raw[opts.RunwaysFile], opts.RunwaysFile, requiredRunwayColumns)
	if err != nil {
		s.metrics.RecordIngestionError("parse_error")
		return nil, err
	}

	result.AirportRows = airportTable.Len()
	result.RunwayRows = runwayTable.Len()
	s.metrics.IngestionRowsTotal.WithLabelValues(opts.AirportsFile).Add(float64(result.AirportRows))
	s.metrics.IngestionRowsTotal.WithLabelValues(opts.RunwaysFile).Add(float64(result.RunwayRows))

	s.logger.Info(ctx, "[INGEST_PARSED] Datasets parsed", logging.Fields{
		"airport_rows": result.AirportRows,
		"runway_rows":  result.RunwayRows,
		"stage":        "PARSE",
	})

	rawRunways := make([]models.RawRunway, 0, runwayTable.Len())
	for _, rec := range runwayTable.Records {
		rawRunways = append(rawRunways, models.RawRunwayFromRecord(rec))
	}
	runwayIndex := compaction.IndexRunways(rawRunways)

	rawAirports := make([]models.RawAirport, 0, airportTable.Len())
	for _, rec := range airportTable.Records {
		rawAirports = append(rawAirports, models.RawAirportFromRecord(rec))
	}

	builder := compaction.NewBuilder(opts.SourceName, opts.SourceURL)
	builder.Now = s.now
	table, stats := builder.Build(rawAirports, runwayIndex)

	result.AirportsRetained = stats.AirportsRetained
	result.Rejected = stats.Rejected
	result.RunwaysKept = stats.RunwaysKept
	result.RunwaysDropped = stats.RunwaysDropped
	result.Meta = table.Meta
	for reason, n := range stats.Rejected {
		s.metrics.AirportsRejectedTotal.WithLabelValues(reason).Add(float64(n))
	}
	for reason, n := range stats.RunwaysDropped {
		s.metrics.RunwaysDroppedTotal.WithLabelValues(reason).Add(float64(n))
	}

	s.logger.Info(ctx, "[INGEST_BUILT] Compact table built", logging.Fields{
		"airports_retained": stats.AirportsRetained,
		"airports_rejected": stats.Rejected,
		"runways_kept":      stats.RunwaysKept,
		"runways_dropped":   stats.RunwaysDropped,
		"stage":             "BUILD",
	})

	data, err := compaction.Encode(table, result.ByteBudget)
	if err != nil {
		var sizeErr *compaction.SizeLimitError
		if errors.As(err, &sizeErr) {
			s.metrics.RecordIngestionError("size_limit")
			s.logger.Error(ctx, "[INGEST_SIZE_LIMIT] Table exceeds byte budget, nothing written", logging.Fields{
				"size_bytes":   sizeErr.Size,
				"budget_bytes": sizeErr.Budget,
				"stage":        "ENCODE",
			}, err)
		} else {
			s.metrics.RecordIngestionError("encode_error")
		}
		return nil, err
	}
	result.ArtifactBytes = len(data)

	// The snapshot goes first so a failed publish leaves the previous artifact in place.
	if opts.Publish && s.repo != nil {
		id, err := s.repo.SaveTable(ctx, table, repository.SnapshotInfo{
			RunID:         result.RunID,
			ArtifactBytes: len(data),
		})
		if err != nil {
			s.metrics.RecordIngestionError("publish_error")
			return nil, fmt.Errorf("snapshot publish failed, nothing written: %w", err)
		}
		result.SnapshotID = id
	}

	if err := compaction.WriteArtifact(opts.OutputPath, data); err != nil {
		s.metrics.RecordIngestionError("write_error")
		return nil, err
	}
	s.metrics.ArtifactBytes.Set(float64(len(data)))

	result.Duration = s.now().Sub(startTime)
	s.metrics.IngestionDuration.Observe(result.Duration.Seconds())

	s.logger.Info(ctx, "[INGEST_COMPLETE] Table generation completed", logging.Fields{
		"airports":         table.Meta.Count,
		"artifact_bytes":   result.ArtifactBytes,
		"budget_bytes":     result.ByteBudget,
		"output_path":      opts.OutputPath,
		"snapshot_id":      result.SnapshotID,
		"duration_seconds": result.Duration.Seconds(),
		"stage":            "COMPLETE",
	})

	return result, nil
}

// parseDataset parses a CSV export and checks that its header carries the
// columns the pipeline depends on.
func parseDataset(data []byte, name string, required []string) (*tabular.Table, error) {
	table := tabular.Parse(data)
	present := make(map[string]bool, len(table.Header))
	for _, h := range table.Header {
		present[h] = true
	}
	for _, col := range required {
		if !present[col] {
			return nil, &models.ValidationError{
				Field:   name,
				Value:   col,
				Message: fmt.Sprintf("%s: missing required column %q", name, col),
			}
		}
	}
	return table, nil
}
