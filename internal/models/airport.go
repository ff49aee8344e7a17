package models

import (
	"fmt"
	"strings"
)

// Column names of the OurAirports airports.csv export
const (
	ColIdent        = "ident"
	ColType         = "type"
	ColName         = "name"
	ColLatitude     = "latitude_deg"
	ColLongitude    = "longitude_deg"
	ColElevation    = "elevation_ft"
	ColCountry      = "iso_country"
	ColRegion       = "iso_region"
	ColMunicipality = "municipality"
)

// Column names of the OurAirports runways.csv export
const (
	ColAirportIdent = "airport_ident"
	ColLowIdent     = "le_ident"
	ColHighIdent    = "he_ident"
	ColLength       = "length_ft"
	ColWidth        = "width_ft"
	ColSurface      = "surface"
	ColLowHeading   = "le_heading_degT"
	ColHighHeading  = "he_heading_degT"
	ColClosed       = "closed"
)

// RawAirport is one untrusted row of the airport dataset.
// Every field is kept as text; numeric parsing happens during shaping.
type RawAirport struct {
	Ident        string
	Name         string
	Type         string
	Country      string
	Region       string
	Municipality string
	Latitude     string
	Longitude    string
	Elevation    string
}

// RawAirportFromRecord maps a header-keyed row onto a RawAirport.
// Missing columns become empty strings.
func RawAirportFromRecord(rec map[string]string) RawAirport {
	return RawAirport{
		Ident:        strings.TrimSpace(rec[ColIdent]),
		Name:         rec[ColName],
		Type:         strings.TrimSpace(rec[ColType]),
		Country:      strings.TrimSpace(rec[ColCountry]),
		Region:       strings.TrimSpace(rec[ColRegion]),
		Municipality: rec[ColMunicipality],
		Latitude:     rec[ColLatitude],
		Longitude:    rec[ColLongitude],
		Elevation:    rec[ColElevation],
	}
}

// RawRunway is one untrusted row of the runway dataset
type RawRunway struct {
	AirportIdent string
	LowIdent     string
	HighIdent    string
	Length       string
	Width        string
	Surface      string
	LowHeading   string
	HighHeading  string
	Closed       string
}

// RawRunwayFromRecord maps a header-keyed row onto a RawRunway
func RawRunwayFromRecord(rec map[string]string) RawRunway {
	return RawRunway{
		AirportIdent: strings.TrimSpace(rec[ColAirportIdent]),
		LowIdent:     strings.TrimSpace(rec[ColLowIdent]),
		HighIdent:    strings.TrimSpace(rec[ColHighIdent]),
		Length:       rec[ColLength],
		Width:        rec[ColWidth],
		Surface:      rec[ColSurface],
		LowHeading:   rec[ColLowHeading],
		HighHeading:  rec[ColHighHeading],
		Closed:       rec[ColClosed],
	}
}

// IsClosed reports whether the closed flag is set ("1" or "true").
func (r RawRunway) IsClosed() bool {
	switch strings.ToLower(strings.TrimSpace(r.Closed)) {
	case "1", "true", "yes":
		return true
	}
	return false
}

// CompactRunway is the persisted, abbreviated runway representation
type CompactRunway struct {
	ID       string `json:"id"`  // "LOW/HIGH"
	LengthFt int    `json:"len"` // feet
	WidthFt  int    `json:"wid"` // feet
	Surface  string `json:"sfc"` // 3-letter code
	Headings [2]int `json:"hdg"` // true headings of the low and high end, [0,360)
}

// CompactAirport is the persisted, abbreviated airport representation
type CompactAirport struct {
	Name         string          `json:"n"`
	Latitude     float64         `json:"lat"`
	Longitude    float64         `json:"lon"`
	ElevationFt  int             `json:"el"`
	Type         string          `json:"t"`
	Municipality string          `json:"mu"`
	Region       string          `json:"rg"`
	Runways      []CompactRunway `json:"rw,omitempty"`
}

// TableMeta describes a generated table. Diagnostic only.
type TableMeta struct {
	Generated string `json:"generated"`
	Source    string `json:"source"`
	SourceURL string `json:"sourceUrl"`
	Count     int    `json:"count"`
	Coverage  string `json:"coverage"`
}

// AirportTable is the artifact shared by the ingester and the lookup service
type AirportTable struct {
	Meta     TableMeta                 `json:"meta"`
	Airports map[string]CompactAirport `json:"airports"`
}

// Validate checks the structural invariants a loaded artifact must satisfy
func (t *AirportTable) Validate() error {
	if t == nil || t.Airports == nil {
		return &ValidationError{Field: "airports", Message: "airport table is missing"}
	}
	if t.Meta.Count != len(t.Airports) {
		return &ValidationError{
			Field:   "meta.count",
			Value:   fmt.Sprint(t.Meta.Count),
			Message: fmt.Sprintf("meta count %d does not match %d airports", t.Meta.Count, len(t.Airports)),
		}
	}
	for code, ap := range t.Airports {
		if code != strings.ToUpper(code) {
			return &ValidationError{Field: "airports", Value: code, Message: "airport key is not uppercase"}
		}
		for _, rw := range ap.Runways {
			if rw.LengthFt <= 0 {
				return &ValidationError{
					Field:   "airports." + code + ".rw",
					Value:   rw.ID,
					Message: "runway length must be positive",
				}
			}
		}
	}
	return nil
}

// RunwayEnd is one threshold of an expanded runway
type RunwayEnd struct {
	Ident       string `json:"ident"`
	HeadingTrue int    `json:"headingTrue"`
}

// ExpandedRunway is the runtime runway view handed to flight planning
type ExpandedRunway struct {
	ID       string    `json:"id"`
	LengthFt int       `json:"lengthFt"`
	WidthFt  int       `json:"widthFt"`
	Surface  string    `json:"surface"`
	Low      RunwayEnd `json:"low"`
	High     RunwayEnd `json:"high"`
}

// ExpandedAirport is the runtime airport view handed to flight planning
type ExpandedAirport struct {
	ICAO         string           `json:"icao"`
	Name         string           `json:"name"`
	Latitude     float64          `json:"latitude"`
	Longitude    float64          `json:"longitude"`
	ElevationFt  int              `json:"elevationFt"`
	Type         string           `json:"type"`
	Municipality string           `json:"municipality"`
	Region       string           `json:"region"`
	Runways      []ExpandedRunway `json:"runways"`
}

// Expand reconstructs the consumer-facing airport from its compact form.
// It never mutates c.
func (c CompactAirport) Expand(icao string) ExpandedAirport {
	out := ExpandedAirport{
		ICAO:         icao,
		Name:         c.Name,
		Latitude:     c.Latitude,
		Longitude:    c.Longitude,
		ElevationFt:  c.ElevationFt,
		Type:         ExpandType(c.Type),
		Municipality: c.Municipality,
		Region:       c.Region,
		Runways:      make([]ExpandedRunway, 0, len(c.Runways)),
	}
	for _, rw := range c.Runways {
		out.Runways = append(out.Runways, rw.Expand())
	}
	return out
}

// Expand splits the combined "LOW/HIGH" id into distinguished ends.
// An id without a separator yields a low end only.
func (r CompactRunway) Expand() ExpandedRunway {
	low, high, _ := strings.Cut(r.ID, "/")
	return ExpandedRunway{
		ID:       r.ID,
		LengthFt: r.LengthFt,
		WidthFt:  r.WidthFt,
		Surface:  ExpandSurface(r.Surface),
		Low:      RunwayEnd{Ident: low, HeadingTrue: r.Headings[0]},
		High:     RunwayEnd{Ident: high, HeadingTrue: r.Headings[1]},
	}
}

// ValidationError represents a data validation error
type ValidationError struct {
	Field   string
	Value   string
	Message string
}

func (e *ValidationError) Error() string {
	return e.Message
}

// IsTransient returns false as validation errors are permanent
func (e *ValidationError) IsTransient() bool {
	return false
}
