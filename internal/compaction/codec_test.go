package compaction

import (
	"bytes"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"airport-data/internal/models"
)

func sampleTable() *models.AirportTable {
	return &models.AirportTable{
		Meta: models.TableMeta{Generated: "2026-10-01T12:00:00Z", Source: "OurAirports", Count: 2},
		Airports: map[string]models.CompactAirport{
			"KJFK": {Name: "John F Kennedy International Airport", Type: "large", Region: "US-NY"},
			"CYUL": {Name: "Montreal", Type: "large", Region: "CA-QC", Runways: []models.CompactRunway{
				{ID: "06L/24R", LengthFt: 11000, WidthFt: 200, Surface: "ASP", Headings: [2]int{57, 237}},
			}},
		},
	}
}

func TestEncode_Minified(t *testing.T) {
	data, err := Encode(sampleTable(), DefaultByteBudget)
	if err != nil {
		t.Fatalf("Encode() error = %v", err)
	}
	if bytes.ContainsAny(data, "\n\t") {
		t.Error("encoded table should be minified")
	}
	if !bytes.Contains(data, []byte(`"rw":[{"id":"06L/24R","len":11000,"wid":200,"sfc":"ASP","hdg":[57,237]}]`)) {
		t.Errorf("unexpected runway encoding: %s", data)
	}
	if !bytes.Contains(data, []byte(`"rg":"US-NY"}`)) {
		t.Error("airport without runways must omit the rw key")
	}
	if bytes.Index(data, []byte(`"CYUL"`)) > bytes.Index(data, []byte(`"KJFK"`)) {
		t.Error("airport keys should be encoded in ascending order")
	}
}

func TestEncode_KeepsMarkupCharacters(t *testing.T) {
	table := &models.AirportTable{
		Meta: models.TableMeta{Count: 1},
		Airports: map[string]models.CompactAirport{
			"LFPO": {Name: "A & B <x>", Type: "medium", Region: "FR-IDF"},
		},
	}

	data, err := Encode(table, DefaultByteBudget)
	if err != nil {
		t.Fatalf("Encode() error = %v", err)
	}
	if !bytes.Contains(data, []byte(`"n":"A & B <x>"`)) {
		t.Errorf("markup characters should not be escaped: %s", data)
	}
	if bytes.HasSuffix(data, []byte("\n")) {
		t.Error("encoded table should not end with a newline")
	}

	decoded, err := Decode(bytes.NewReader(data))
	if err != nil {
		t.Fatalf("Decode() error = %v", err)
	}
	if decoded.Airports["LFPO"].Name != "A & B <x>" {
		t.Errorf("decoded name = %q", decoded.Airports["LFPO"].Name)
	}
}

func TestEncode_SizeLimit(t *testing.T) {
	_, err := Encode(sampleTable(), 64)
	var sErr *SizeLimitError
	if !errors.As(err, &sErr) {
		t.Fatalf("Encode() error = %v, want *SizeLimitError", err)
	}
	if sErr.Budget != 64 || sErr.Size <= 64 {
		t.Errorf("SizeLimitError = %+v", sErr)
	}
	if sErr.IsTransient() {
		t.Error("size limit errors are permanent")
	}
}

func TestDecode_RoundTrip(t *testing.T) {
	data, err := Encode(sampleTable(), DefaultByteBudget)
	if err != nil {
		t.Fatal(err)
	}
	table, err := Decode(bytes.NewReader(data))
	if err != nil {
		t.Fatalf("Decode() error = %v", err)
	}
	if table.Meta.Count != 2 || table.Airports["CYUL"].Runways[0].Headings != [2]int{57, 237} {
		t.Errorf("decoded table = %+v", table)
	}
}

func TestDecode_Rejects(t *testing.T) {
	tests := map[string]string{
		"not json":       "{",
		"missing table":  `{"meta":{"count":0}}`,
		"count mismatch": `{"meta":{"count":3},"airports":{"CYUL":{"n":"x"}}}`,
	}
	for name, body := range tests {
		t.Run(name, func(t *testing.T) {
			if _, err := Decode(strings.NewReader(body)); err == nil {
				t.Error("Decode() should fail")
			}
		})
	}
}

func TestWriteArtifact(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", "dir", "airports.json")

	if err := WriteArtifact(path, []byte(`{"ok":true}`)); err != nil {
		t.Fatalf("WriteArtifact() error = %v", err)
	}
	got, err := os.ReadFile(path)
	if err != nil || string(got) != `{"ok":true}` {
		t.Fatalf("artifact = %q, %v", got, err)
	}

	entries, _ := os.ReadDir(filepath.Dir(path))
	if len(entries) != 1 {
		t.Errorf("temp files left behind: %v", entries)
	}
}
