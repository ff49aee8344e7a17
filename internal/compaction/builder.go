package compaction

import (
	"strings"
	"time"

	"airport-data/internal/models"
)

// BuildStats counts what happened to each raw row during a build
type BuildStats struct {
	AirportsSeen     int
	AirportsRetained int
	Rejected         map[string]int // by reason, plus "duplicate"
	RunwaysSeen      int
	RunwaysKept      int
	RunwaysDropped   map[string]int // by reason
}

// RejectDuplicate counts airports whose code was already taken by an earlier row
const RejectDuplicate = "duplicate"

// Builder turns raw rows into an AirportTable
type Builder struct {
	Coverage  *Coverage
	Source    string
	SourceURL string
	Now       func() time.Time
}

// NewBuilder returns a builder over the default coverage
func NewBuilder(source, sourceURL string) *Builder {
	return &Builder{
		Coverage:  DefaultCoverage(),
		Source:    source,
		SourceURL: sourceURL,
		Now:       time.Now,
	}
}

// IndexRunways groups runways by their owning airport code (uppercased)
func IndexRunways(runways []models.RawRunway) map[string][]models.RawRunway {
	idx := make(map[string][]models.RawRunway)
	for _, rw := range runways {
		key := strings.ToUpper(rw.AirportIdent)
		idx[key] = append(idx[key], rw)
	}
	return idx
}

// Build filters and shapes airports in input order. The first row for a
// given code wins; later rows with the same code are counted and skipped.
// Runways whose airport was not retained never reach the output.
func (b *Builder) Build(airports []models.RawAirport, runwaysByAirport map[string][]models.RawRunway) (*models.AirportTable, BuildStats) {
	stats := BuildStats{
		Rejected:       make(map[string]int),
		RunwaysDropped: make(map[string]int),
	}
	for _, rws := range runwaysByAirport {
		stats.RunwaysSeen += len(rws)
	}

	out := make(map[string]models.CompactAirport)
	for _, raw := range airports {
		stats.AirportsSeen++

		if reason := b.Coverage.Classify(raw.Country, raw.Type, raw.Ident); reason != "" {
			stats.Rejected[reason]++
			continue
		}

		code := strings.ToUpper(raw.Ident)
		if _, exists := out[code]; exists {
			stats.Rejected[RejectDuplicate]++
			continue
		}

		var runways []models.CompactRunway
		for _, rawRw := range runwaysByAirport[code] {
			rw, reason, ok := ShapeRunway(rawRw)
			if !ok {
				stats.RunwaysDropped[reason]++
				continue
			}
			runways = append(runways, rw)
		}
		stats.RunwaysKept += len(runways)

		out[code] = ShapeAirport(raw, runways)
	}
	stats.AirportsRetained = len(out)

	table := &models.AirportTable{
		Meta: models.TableMeta{
			Generated: b.Now().UTC().Format(time.RFC3339),
			Source:    b.Source,
			SourceURL: b.SourceURL,
			Count:     len(out),
			Coverage:  b.Coverage.Describe(),
		},
		Airports: out,
	}
	return table, stats
}
