package services

import (
	"context"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"testing"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"

	"airport-data/internal/models"
	"airport-data/pkg/logging"
	"airport-data/pkg/metrics"
)

func sampleTable() *models.AirportTable {
	return &models.AirportTable{
		Meta: models.TableMeta{
			Generated: "2026-10-17T08:30:00Z",
			Source:    "OurAirports",
			SourceURL: "https://example.test/",
			Count:     5,
			Coverage:  "North America (CA, US, MX) + Europe (35 countries)",
		},
		Airports: map[string]models.CompactAirport{
			"CYUL": {
				Name: "Montreal / Pierre Elliott Trudeau International...", Latitude: 45.4706, Longitude: -73.7408,
				ElevationFt: 118, Type: "large", Municipality: "Montréal", Region: "CA-QC",
				Runways: []models.CompactRunway{
					{ID: "06L/24R", LengthFt: 11000, WidthFt: 200, Surface: "ASP", Headings: [2]int{57, 237}},
					{ID: "H1", LengthFt: 60, WidthFt: 60, Surface: "CON", Headings: [2]int{0, 0}},
				},
			},
			"CYVR": {Name: "Vancouver International Airport", ElevationFt: 14, Type: "large", Region: "CA-BC"},
			"CYYZ": {Name: "Toronto Pearson International Airport", ElevationFt: 569, Type: "large", Region: "CA-ON"},
			"KJFK": {Name: "John F Kennedy International Airport", ElevationFt: 13, Type: "large", Region: "US-NY"},
			"EGLL": {Name: "London Heathrow Airport", ElevationFt: 83, Type: "large", Region: "GB-ENG",
				Runways: []models.CompactRunway{{ID: "09L/27R", LengthFt: 12802, WidthFt: 164, Surface: "ASP", Headings: [2]int{90, 270}}}},
		},
	}
}

func newTestLookup(t *testing.T, table *models.AirportTable) (*LookupService, *metrics.Collector) {
	t.Helper()
	mc := metrics.NewCollector("lookup_test", prometheus.NewRegistry())
	return NewLookupService(table, logging.NewNopLogger(), mc), mc
}

func TestLookupService_HasAirport(t *testing.T) {
	svc, _ := newTestLookup(t, sampleTable())

	tests := []struct {
		code string
		want bool
	}{
		{"CYUL", true},
		{"cyul", true},
		{"  CYUL  ", true},
		{"\tegll\n", true},
		{"CYU", false},
		{"SBGR", false},
		{"", false},
	}

	for _, tt := range tests {
		if got := svc.HasAirport(tt.code); got != tt.want {
			t.Errorf("HasAirport(%q) = %v, want %v", tt.code, got, tt.want)
		}
	}
}

func TestLookupService_AirportByICAO(t *testing.T) {
	svc, mc := newTestLookup(t, sampleTable())

	ap, ok := svc.AirportByICAO(" cyul ")
	if !ok {
		t.Fatal("CYUL should be found")
	}

	checkValues := func(field, got, want string) {
		t.Helper()
		if got != want {
			t.Errorf("%s = %q, want %q", field, got, want)
		}
	}

	checkValues("ICAO", ap.ICAO, "CYUL")
	checkValues("Type", ap.Type, "large_airport")
	checkValues("Region", ap.Region, "CA-QC")
	checkValues("Municipality", ap.Municipality, "Montréal")
	if len(ap.Runways) != 2 {
		t.Fatalf("runways = %d, want 2", len(ap.Runways))
	}
	rw := ap.Runways[0]
	checkValues("Surface", rw.Surface, "asphalt")
	checkValues("Low.Ident", rw.Low.Ident, "06L")
	checkValues("High.Ident", rw.High.Ident, "24R")
	if rw.Low.HeadingTrue != 57 || rw.High.HeadingTrue != 237 {
		t.Errorf("headings = %d/%d", rw.Low.HeadingTrue, rw.High.HeadingTrue)
	}
	checkValues("helipad High.Ident", ap.Runways[1].High.Ident, "")

	if _, ok := svc.AirportByICAO("ZZZZ"); ok {
		t.Error("ZZZZ should not be found")
	}

	if got := testutil.ToFloat64(mc.LookupsTotal.WithLabelValues("get", "hit")); got != 1 {
		t.Errorf("get hits = %v, want 1", got)
	}
	if got := testutil.ToFloat64(mc.LookupsTotal.WithLabelValues("get", "miss")); got != 1 {
		t.Errorf("get misses = %v, want 1", got)
	}
}

func TestLookupService_ExpansionIsIdempotent(t *testing.T) {
	table := sampleTable()
	svc, _ := newTestLookup(t, table)

	first, _ := svc.AirportByICAO("CYUL")
	second, _ := svc.AirportByICAO("CYUL")
	if first.Name != second.Name || len(first.Runways) != len(second.Runways) {
		t.Error("repeated lookups should be identical")
	}
	if table.Airports["CYUL"].Type != "large" || table.Airports["CYUL"].Runways[0].Surface != "ASP" {
		t.Error("lookup must not mutate the stored table")
	}
}

func TestLookupService_SearchAirports(t *testing.T) {
	svc, _ := newTestLookup(t, sampleTable())

	codes := func(aps []models.ExpandedAirport) string {
		out := make([]string, len(aps))
		for i, ap := range aps {
			out[i] = ap.ICAO
		}
		return strings.Join(out, ",")
	}

	tests := []struct {
		name   string
		prefix string
		limit  int
		want   string
	}{
		{"prefix in sorted order", "CY", 10, "CYUL,CYVR,CYYZ"},
		{"lowercase and padded", " cy ", 10, "CYUL,CYVR,CYYZ"},
		{"limit stops early", "C", 2, "CYUL,CYVR"},
		{"zero limit uses default", "C", 0, "CYUL,CYVR,CYYZ"},
		{"negative limit uses default", "K", -5, "KJFK"},
		{"exact code", "EGLL", 10, "EGLL"},
		{"no match", "ZZZ", 10, ""},
		{"empty prefix", "", 10, ""},
		{"whitespace prefix", "   ", 10, ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := svc.SearchAirports(tt.prefix, tt.limit)
			if got == nil {
				t.Fatal("SearchAirports should never return nil")
			}
			if c := codes(got); c != tt.want {
				t.Errorf("SearchAirports(%q, %d) = %q, want %q", tt.prefix, tt.limit, c, tt.want)
			}
		})
	}
}

func TestLookupService_SearchDefaultLimit(t *testing.T) {
	table := &models.AirportTable{Airports: map[string]models.CompactAirport{}}
	for _, c := range "ABCDEFGHIJKLMNOP" {
		table.Airports["KA"+string(c)+"X"] = models.CompactAirport{Name: "Airport", Type: "medium"}
	}
	table.Meta.Count = len(table.Airports)
	svc, _ := newTestLookup(t, table)

	got := svc.SearchAirports("KA", 0)
	if len(got) != DefaultSearchLimit {
		t.Fatalf("results = %d, want %d", len(got), DefaultSearchLimit)
	}
	if got[0].ICAO != "KAAX" || got[DefaultSearchLimit-1].ICAO != "KAJX" {
		t.Errorf("results span %s..%s", got[0].ICAO, got[DefaultSearchLimit-1].ICAO)
	}
}

func TestLookupService_MetaAndCount(t *testing.T) {
	table := sampleTable()
	svc, mc := newTestLookup(t, table)

	if !svc.IsAvailable() {
		t.Error("service should be available")
	}
	if svc.Meta() != table.Meta {
		t.Errorf("Meta() = %+v", svc.Meta())
	}
	if svc.Count() != len(table.Airports) {
		t.Errorf("Count() = %d, want %d", svc.Count(), len(table.Airports))
	}
	if codes := svc.Codes(); len(codes) != 5 || codes[0] != "CYUL" || codes[4] != "KJFK" {
		t.Errorf("Codes() = %v", codes)
	}
	if got := testutil.ToFloat64(mc.TableAirports); got != 5 {
		t.Errorf("TableAirports gauge = %v", got)
	}
}

func TestLookupService_Unavailable(t *testing.T) {
	tests := []struct {
		name  string
		table *models.AirportTable
	}{
		{"nil table", nil},
		{"empty table", &models.AirportTable{Airports: map[string]models.CompactAirport{}}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			svc, mc := newTestLookup(t, tt.table)

			if svc.IsAvailable() {
				t.Error("IsAvailable() = true")
			}
			if svc.Count() != 0 {
				t.Errorf("Count() = %d", svc.Count())
			}
			if svc.HasAirport("CYUL") {
				t.Error("HasAirport() = true")
			}
			if _, ok := svc.AirportByICAO("CYUL"); ok {
				t.Error("AirportByICAO() found an airport")
			}
			if got := svc.SearchAirports("C", 5); got == nil || len(got) != 0 {
				t.Errorf("SearchAirports() = %v", got)
			}
			if got := testutil.ToFloat64(mc.TableAvailable); got != 0 {
				t.Errorf("TableAvailable gauge = %v", got)
			}
		})
	}
}

func TestNewLookupServiceFromFile(t *testing.T) {
	dir := t.TempDir()
	valid := filepath.Join(dir, "valid.json")
	corrupt := filepath.Join(dir, "corrupt.json")
	inconsistent := filepath.Join(dir, "inconsistent.json")

	writeFile := func(path, body string) {
		t.Helper()
		if err := os.WriteFile(path, []byte(body), 0o644); err != nil {
			t.Fatal(err)
		}
	}
	writeFile(valid, `{"meta":{"generated":"2026-10-17T08:30:00Z","source":"OurAirports","sourceUrl":"","count":1,"coverage":"North America (CA, US, MX)"},"airports":{"KJFK":{"n":"John F Kennedy International Airport","lat":40.6398,"lon":-73.7789,"el":13,"t":"large","mu":"New York","rg":"US-NY"}}}`)
	writeFile(corrupt, `{"meta":{"count":1},"airports":{"KJFK":`)
	writeFile(inconsistent, `{"meta":{"count":4},"airports":{"KJFK":{"n":"JFK","t":"large"}}}`)

	tests := []struct {
		name      string
		path      string
		available bool
	}{
		{"valid artifact", valid, true},
		{"missing artifact", filepath.Join(dir, "missing.json"), false},
		{"corrupt artifact", corrupt, false},
		{"count mismatch", inconsistent, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			mc := metrics.NewCollector("lookup_file_test", prometheus.NewRegistry())
			svc := NewLookupServiceFromFile(context.Background(), tt.path, logging.NewNopLogger(), mc)
			if svc.IsAvailable() != tt.available {
				t.Errorf("IsAvailable() = %v, want %v", svc.IsAvailable(), tt.available)
			}
		})
	}
}

func TestLookupService_ConcurrentReaders(t *testing.T) {
	svc, _ := newTestLookup(t, sampleTable())

	var wg sync.WaitGroup
	for i := 0; i < 8; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for j := 0; j < 100; j++ {
				svc.HasAirport("cyul")
				svc.AirportByICAO("EGLL")
				svc.SearchAirports("C", 2)
			}
		}()
	}
	wg.Wait()
}

func TestLookupService_WithoutCollector(t *testing.T) {
	svc := NewLookupService(sampleTable(), nil, nil)

	if !svc.HasAirport("cyul") {
		t.Error("HasAirport(cyul) = false")
	}
	if _, ok := svc.AirportByICAO("EGLL"); !ok {
		t.Error("EGLL should be found")
	}
	if got := svc.SearchAirports("CY", 2); len(got) != 2 {
		t.Errorf("SearchAirports(CY, 2) returned %d", len(got))
	}

	missing := NewLookupServiceFromFile(context.Background(), filepath.Join(t.TempDir(), "missing.json"), nil, nil)
	if missing.IsAvailable() {
		t.Error("missing artifact should give an unavailable service")
	}
}
