package compaction

import (
	"math"
	"strconv"
	"strings"

	"airport-data/internal/models"
)

const (
	MaxNameRunes         = 50
	MaxMunicipalityRunes = 30
	ellipsis             = "..."
)

// Runway drop reasons
const (
	DropClosed = "closed"
	DropLength = "length"
)

// ShapeRunway converts a raw runway into its compact form. When the runway
// must not be emitted, ok is false and reason says why.
func ShapeRunway(raw models.RawRunway) (rw models.CompactRunway, reason string, ok bool) {
	if raw.IsClosed() {
		return rw, DropClosed, false
	}

	rw = models.CompactRunway{
		ID:       raw.LowIdent + "/" + raw.HighIdent,
		LengthFt: parseInt(raw.Length),
		WidthFt:  parseInt(raw.Width),
		Surface:  models.AbbreviateSurface(raw.Surface),
		Headings: [2]int{parseHeading(raw.LowHeading), parseHeading(raw.HighHeading)},
	}
	if rw.LengthFt <= 0 {
		return models.CompactRunway{}, DropLength, false
	}
	return rw, "", true
}

// ShapeAirport converts a retained raw airport into its compact form.
// runways is attached only when non-empty.
func ShapeAirport(raw models.RawAirport, runways []models.CompactRunway) models.CompactAirport {
	ap := models.CompactAirport{
		Name:         truncate(strings.TrimSpace(raw.Name), MaxNameRunes, ellipsis),
		Latitude:     round4(parseFloat(raw.Latitude)),
		Longitude:    round4(parseFloat(raw.Longitude)),
		ElevationFt:  parseInt(raw.Elevation),
		Type:         models.AbbreviateType(raw.Type),
		Municipality: truncate(strings.TrimSpace(raw.Municipality), MaxMunicipalityRunes, ""),
		Region:       raw.Region,
	}
	if len(runways) > 0 {
		ap.Runways = runways
	}
	return ap
}

// truncate keeps s within max runes. A non-empty marker replaces the tail so
// the result is still exactly max runes long.
func truncate(s string, max int, marker string) string {
	r := []rune(s)
	if len(r) <= max {
		return s
	}
	keep := max - len([]rune(marker))
	if keep < 0 {
		keep = 0
	}
	return string(r[:keep]) + marker
}

func round4(v float64) float64 {
	return math.Round(v*1e4) / 1e4
}

// parseInt reads a leading integer; "118", "118.9" and " 118 " all give 118.
// Anything unparsable or outside the int32 range gives 0.
func parseInt(s string) int {
	s = strings.TrimSpace(s)
	if s == "" {
		return 0
	}
	if n, err := strconv.Atoi(s); err == nil {
		return n
	}
	if f, err := strconv.ParseFloat(s, 64); err == nil && f >= math.MinInt32 && f <= math.MaxInt32 {
		return int(f)
	}
	return 0
}

func parseFloat(s string) float64 {
	f, err := strconv.ParseFloat(strings.TrimSpace(s), 64)
	if err != nil || math.IsNaN(f) || math.IsInf(f, 0) {
		return 0
	}
	return f
}

// parseHeading rounds to the nearest whole degree within [0,360)
func parseHeading(s string) int {
	h := int(math.Round(parseFloat(s)))
	h %= 360
	if h < 0 {
		h += 360
	}
	return h
}
