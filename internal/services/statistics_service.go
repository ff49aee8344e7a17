package services

import (
	"context"
	"sort"
	"strings"

	"airport-data/internal/models"
	"airport-data/pkg/logging"
)

// TableStatistics summarizes the coverage of a loaded table
type TableStatistics struct {
	Airports          int            `json:"airports"`
	Runways           int            `json:"runways"`
	AirportsNoRunways int            `json:"airportsWithoutRunways"`
	ByCountry         map[string]int `json:"byCountry"`
	ByType            map[string]int `json:"byType"`
	BySurface         map[string]int `json:"bySurface"`
	LongestRunway     *RunwayRecord  `json:"longestRunway,omitempty"`
}

// RunwayRecord identifies a single runway within the table
type RunwayRecord struct {
	ICAO     string `json:"icao"`
	RunwayID string `json:"runwayId"`
	LengthFt int    `json:"lengthFt"`
}

// CountryCount is one row of a country breakdown
type CountryCount struct {
	Country  string `json:"country"`
	Airports int    `json:"airports"`
}

// StatisticsService computes diagnostics over the lookup table
type StatisticsService struct {
	lookup *LookupService
	logger *logging.StructuredLogger
}

// NewStatisticsService creates a new statistics service
func NewStatisticsService(lookup *LookupService, logger *logging.StructuredLogger) *StatisticsService {
	return &StatisticsService{
		lookup: lookup,
		logger: logger,
	}
}

// Calculate walks every airport once. Countries come from the region code
// prefix ("CA-QC" counts for CA); types and surfaces are reported expanded.
func (s *StatisticsService) Calculate(ctx context.Context) TableStatistics {
	stats := TableStatistics{
		ByCountry: map[string]int{},
		ByType:    map[string]int{},
		BySurface: map[string]int{},
	}
	table := s.lookup.table
	if table == nil {
		return stats
	}

	for _, code := range s.lookup.keys {
		ap := table.Airports[code]
		stats.Airports++
		stats.ByCountry[countryOf(ap.Region)]++
		stats.ByType[models.ExpandType(ap.Type)]++
		if len(ap.Runways) == 0 {
			stats.AirportsNoRunways++
		}
		for _, rw := range ap.Runways {
			stats.Runways++
			stats.BySurface[models.ExpandSurface(rw.Surface)]++
			if stats.LongestRunway == nil || rw.LengthFt > stats.LongestRunway.LengthFt {
				stats.LongestRunway = &RunwayRecord{ICAO: code, RunwayID: rw.ID, LengthFt: rw.LengthFt}
			}
		}
	}

	s.logger.Debug(ctx, "[STATS_CALC_COMPLETE] Table statistics calculated", logging.Fields{
		"airports":  stats.Airports,
		"runways":   stats.Runways,
		"countries": len(stats.ByCountry),
	})
	return stats
}

// TopCountries returns the n countries with the most airports, ties broken
// by country code.
func (st TableStatistics) TopCountries(n int) []CountryCount {
	out := make([]CountryCount, 0, len(st.ByCountry))
	for c, k := range st.ByCountry {
		out = append(out, CountryCount{Country: c, Airports: k})
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].Airports != out[j].Airports {
			return out[i].Airports > out[j].Airports
		}
		return out[i].Country < out[j].Country
	})
	if n > 0 && len(out) > n {
		out = out[:n]
	}
	return out
}

func countryOf(region string) string {
	country, _, _ := strings.Cut(region, "-")
	if country == "" {
		return "??"
	}
	return country
}
