package compaction

import (
	"testing"
	"unicode/utf8"

	"airport-data/internal/models"
)

func TestShapeRunway(t *testing.T) {
	tests := []struct {
		name        string
		raw         models.RawRunway
		wantOK      bool
		wantReason  string
		checkValues func(*testing.T, models.CompactRunway)
	}{
		{
			name: "open paved runway",
			raw: models.RawRunway{
				LowIdent: "06L", HighIdent: "24R", Length: "11000", Width: "200",
				Surface: "ASPH-CONC", LowHeading: "56.6", HighHeading: "236.6", Closed: "0",
			},
			wantOK: true,
			checkValues: func(t *testing.T, rw models.CompactRunway) {
				if rw.ID != "06L/24R" {
					t.Errorf("ID = %q", rw.ID)
				}
				if rw.LengthFt != 11000 || rw.WidthFt != 200 {
					t.Errorf("dimensions = %dx%d", rw.LengthFt, rw.WidthFt)
				}
				if rw.Surface != "ASP" {
					t.Errorf("Surface = %q, want ASP", rw.Surface)
				}
				if rw.Headings != [2]int{57, 237} {
					t.Errorf("Headings = %v, want [57 237]", rw.Headings)
				}
			},
		},
		{
			name:       "closed runway",
			raw:        models.RawRunway{LowIdent: "10", HighIdent: "28", Length: "7000", Closed: "1"},
			wantReason: DropClosed,
		},
		{
			name:       "zero length",
			raw:        models.RawRunway{LowIdent: "10", HighIdent: "28", Length: "0"},
			wantReason: DropLength,
		},
		{
			name:       "unparsable length",
			raw:        models.RawRunway{LowIdent: "10", HighIdent: "28", Length: "n/a"},
			wantReason: DropLength,
		},
		{
			name:   "missing headings and width default to zero",
			raw:    models.RawRunway{LowIdent: "18", HighIdent: "36", Length: "3000", Surface: "grass"},
			wantOK: true,
			checkValues: func(t *testing.T, rw models.CompactRunway) {
				if rw.Headings != [2]int{0, 0} || rw.WidthFt != 0 {
					t.Errorf("Headings = %v, Width = %d", rw.Headings, rw.WidthFt)
				}
				if rw.Surface != "TRF" {
					t.Errorf("Surface = %q, want TRF", rw.Surface)
				}
			},
		},
		{
			name:   "heading rounding wraps into range",
			raw:    models.RawRunway{LowIdent: "18", HighIdent: "36", Length: "3000", LowHeading: "179.6", HighHeading: "359.7"},
			wantOK: true,
			checkValues: func(t *testing.T, rw models.CompactRunway) {
				if rw.Headings != [2]int{180, 0} {
					t.Errorf("Headings = %v, want [180 0]", rw.Headings)
				}
				if rw.Surface != models.SurfaceUnknown {
					t.Errorf("Surface = %q, want UNK", rw.Surface)
				}
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rw, reason, ok := ShapeRunway(tt.raw)
			if ok != tt.wantOK {
				t.Fatalf("ok = %v, want %v (reason %q)", ok, tt.wantOK, reason)
			}
			if reason != tt.wantReason {
				t.Errorf("reason = %q, want %q", reason, tt.wantReason)
			}
			if tt.checkValues != nil {
				tt.checkValues(t, rw)
			}
		})
	}
}

func TestShapeAirport(t *testing.T) {
	raw := models.RawAirport{
		Ident:        "CYUL",
		Name:         "Montreal / Pierre Elliott Trudeau International Airport and Extra Words",
		Type:         "large_airport",
		Country:      "CA",
		Region:       "CA-QC",
		Municipality: "Montréal, Dorval, Québec, Canada Extra",
		Latitude:     "45.470556",
		Longitude:    "-73.740833",
		Elevation:    "118",
	}

	ap := ShapeAirport(raw, nil)

	if n := utf8.RuneCountInString(ap.Name); n != MaxNameRunes {
		t.Errorf("name has %d runes, want %d: %q", n, MaxNameRunes, ap.Name)
	}
	if ap.Name[len(ap.Name)-3:] != "..." {
		t.Errorf("truncated name should end with ellipsis: %q", ap.Name)
	}
	if n := utf8.RuneCountInString(ap.Municipality); n != MaxMunicipalityRunes {
		t.Errorf("municipality has %d runes, want %d: %q", n, MaxMunicipalityRunes, ap.Municipality)
	}
	if ap.Latitude != 45.4706 || ap.Longitude != -73.7408 {
		t.Errorf("coordinates = %v,%v", ap.Latitude, ap.Longitude)
	}
	if ap.ElevationFt != 118 || ap.Type != "large" || ap.Region != "CA-QC" {
		t.Errorf("elevation/type/region = %d/%q/%q", ap.ElevationFt, ap.Type, ap.Region)
	}
	if ap.Runways != nil {
		t.Errorf("Runways = %v, want nil when there are none", ap.Runways)
	}
}

func TestShapeAirport_ShortFieldsUntouched(t *testing.T) {
	ap := ShapeAirport(models.RawAirport{
		Name: "Zürich Airport", Municipality: "Zürich", Type: "seaplane_base", Elevation: "bogus",
	}, []models.CompactRunway{{ID: "14/32", LengthFt: 10827}})

	if ap.Name != "Zürich Airport" || ap.Municipality != "Zürich" {
		t.Errorf("short fields changed: %q / %q", ap.Name, ap.Municipality)
	}
	if ap.Type != "seaplane" {
		t.Errorf("Type = %q, want seaplane", ap.Type)
	}
	if ap.ElevationFt != 0 {
		t.Errorf("unparsable elevation = %d, want 0", ap.ElevationFt)
	}
	if len(ap.Runways) != 1 {
		t.Errorf("Runways = %v", ap.Runways)
	}
}

func TestParseInt(t *testing.T) {
	tests := map[string]int{
		"118":   118,
		" 118 ": 118,
		"118.9": 118,
		"-12":   -12,
		"":      0,
		"abc":   0,
		"NaN":   0,
		"1e20":  0,
		"-1e30": 0,
		"+Inf":  0,
	}
	for in, want := range tests {
		if got := parseInt(in); got != want {
			t.Errorf("parseInt(%q) = %d, want %d", in, got, want)
		}
	}
}

func TestShapeAirport_OutOfRangeElevation(t *testing.T) {
	for _, el := range []string{"1e20", "-1e30"} {
		ap := ShapeAirport(models.RawAirport{Name: "Overflow Field", Type: "medium_airport", Elevation: el}, nil)
		if ap.ElevationFt != 0 {
			t.Errorf("elevation %q shaped to %d, want 0", el, ap.ElevationFt)
		}
	}
}
