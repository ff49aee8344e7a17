package services

import (
	"context"
	"fmt"
	"io"
	"os"
	"sort"
	"strings"

	"github.com/prometheus/client_golang/prometheus"

	"airport-data/internal/compaction"
	"airport-data/internal/models"
	"airport-data/pkg/logging"
	"airport-data/pkg/metrics"
)

// DefaultSearchLimit applies when SearchAirports is called with limit <= 0
const DefaultSearchLimit = 10

// LookupService answers exact and prefix queries against a loaded table.
// The table is never mutated after construction, so a LookupService is
// safe for concurrent use.
type LookupService struct {
	table   *models.AirportTable
	keys    []string // sorted ascending
	logger  *logging.StructuredLogger
	metrics *metrics.Collector
}

// NewLookupService wraps an already decoded table. A nil table yields an
// unavailable service. A nil logger or collector is replaced by one that is
// not exported anywhere.
func NewLookupService(table *models.AirportTable, logger *logging.StructuredLogger, metricsCollector *metrics.Collector) *LookupService {
	if logger == nil {
		logger = logging.NewNopLogger()
	}
	if metricsCollector == nil {
		metricsCollector = metrics.NewCollector("airport_lookup", prometheus.NewRegistry())
	}
	s := &LookupService{
		table:   table,
		logger:  logger,
		metrics: metricsCollector,
	}
	if table != nil {
		s.keys = make([]string, 0, len(table.Airports))
		for code := range table.Airports {
			s.keys = append(s.keys, code)
		}
		sort.Strings(s.keys)
	}
	metricsCollector.SetTable(s.Count(), s.IsAvailable())
	return s
}

// LoadTable decodes and validates an artifact
func LoadTable(r io.Reader) (*models.AirportTable, error) {
	return compaction.Decode(r)
}

// LoadTableFile decodes and validates the artifact at path
func LoadTableFile(path string) (*models.AirportTable, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open airport table: %w", err)
	}
	defer f.Close()

	table, err := LoadTable(f)
	if err != nil {
		return nil, fmt.Errorf("failed to load airport table %s: %w", path, err)
	}
	return table, nil
}

// NewLookupServiceFromFile loads the artifact at path. A missing or corrupt
// artifact is logged and results in an unavailable service.
func NewLookupServiceFromFile(ctx context.Context, path string, logger *logging.StructuredLogger, metricsCollector *metrics.Collector) *LookupService {
	if logger == nil {
		logger = logging.NewNopLogger()
	}
	table, err := LoadTableFile(path)
	if err != nil {
		logger.Error(ctx, "[LOOKUP_LOAD_ERROR] Airport table unavailable", logging.Fields{
			"path": path,
		}, err)
		return NewLookupService(nil, logger, metricsCollector)
	}

	logger.Info(ctx, "[LOOKUP_LOADED] Airport table loaded", logging.Fields{
		"path":      path,
		"airports":  table.Meta.Count,
		"generated": table.Meta.Generated,
	})
	return NewLookupService(table, logger, metricsCollector)
}

// IsAvailable reports whether a table with at least one airport is loaded
func (s *LookupService) IsAvailable() bool {
	return s.table != nil && len(s.table.Airports) > 0
}

// Meta returns the table metadata as stored. It is zero when no table is loaded.
func (s *LookupService) Meta() models.TableMeta {
	if s.table == nil {
		return models.TableMeta{}
	}
	return s.table.Meta
}

// Count returns the airport count recorded in the metadata
func (s *LookupService) Count() int {
	if s.table == nil {
		return 0
	}
	return s.table.Meta.Count
}

// HasAirport reports whether code is in the table, ignoring case and
// surrounding whitespace.
func (s *LookupService) HasAirport(code string) bool {
	if s.table == nil {
		return false
	}
	_, ok := s.table.Airports[normalizeCode(code)]
	return ok
}

// AirportByICAO returns the expanded airport for code
func (s *LookupService) AirportByICAO(code string) (models.ExpandedAirport, bool) {
	if s.table == nil {
		s.metrics.RecordLookup("get", false)
		return models.ExpandedAirport{}, false
	}
	key := normalizeCode(code)
	ap, ok := s.table.Airports[key]
	s.metrics.RecordLookup("get", ok)
	if !ok {
		return models.ExpandedAirport{}, false
	}
	return ap.Expand(key), true
}

// SearchAirports returns up to limit airports whose code starts with prefix,
// in ascending code order. An empty prefix matches nothing.
func (s *LookupService) SearchAirports(prefix string, limit int) []models.ExpandedAirport {
	results := []models.ExpandedAirport{}
	p := normalizeCode(prefix)
	if p == "" || s.table == nil {
		s.metrics.RecordLookup("search", false)
		return results
	}
	if limit <= 0 {
		limit = DefaultSearchLimit
	}

	for i := sort.SearchStrings(s.keys, p); i < len(s.keys) && len(results) < limit; i++ {
		code := s.keys[i]
		if !strings.HasPrefix(code, p) {
			break
		}
		results = append(results, s.table.Airports[code].Expand(code))
	}

	s.metrics.RecordLookup("search", len(results) > 0)
	s.metrics.SearchResultsCount.Observe(float64(len(results)))
	return results
}

// Codes returns all airport codes in ascending order
func (s *LookupService) Codes() []string {
	out := make([]string, len(s.keys))
	copy(out, s.keys)
	return out
}

func normalizeCode(code string) string {
	return strings.ToUpper(strings.TrimSpace(code))
}
