package compaction

import (
	"strings"
	"testing"
)

func TestDefaultCoverage_Includes(t *testing.T) {
	c := DefaultCoverage()

	for _, cc := range []string{"CA", "US", "MX", "FR", "DE", "GB", "ca", " fr "} {
		if !c.Includes(cc) {
			t.Errorf("Includes(%q) = false, want true", cc)
		}
	}
	for _, cc := range []string{"JP", "AU", "BR", "CN", ""} {
		if c.Includes(cc) {
			t.Errorf("Includes(%q) = true, want false", cc)
		}
	}
	if len(Europe.Countries) != 35 {
		t.Errorf("Europe has %d countries, want 35", len(Europe.Countries))
	}
}

func TestCoverage_Describe(t *testing.T) {
	got := DefaultCoverage().Describe()
	if !strings.Contains(got, "North America (CA, US, MX)") || !strings.Contains(got, "Europe (35 countries)") {
		t.Errorf("Describe() = %q", got)
	}
}

func TestIsValidCode(t *testing.T) {
	tests := []struct {
		code string
		want bool
	}{
		{"CYUL", true},
		{"cyul", true},
		{"K2G", true},
		{"LFP", true},
		{"CA-0123", false},
		{"US", false},
		{"EGLLX", false},
		{"", false},
		{"CY L", false},
	}
	for _, tt := range tests {
		if got := IsValidCode(tt.code); got != tt.want {
			t.Errorf("IsValidCode(%q) = %v, want %v", tt.code, got, tt.want)
		}
	}
}

func TestCoverage_Classify(t *testing.T) {
	c := DefaultCoverage()
	tests := []struct {
		name                string
		country, typ, ident string
		want                string
	}{
		{"retained large", "CA", "large_airport", "CYUL", ""},
		{"retained medium", "FR", "medium_airport", "LFRS", ""},
		{"outside coverage", "JP", "large_airport", "RJTT", RejectCoverage},
		{"small airport", "US", "small_airport", "K2G5", RejectType},
		{"heliport", "US", "heliport", "KHEL", RejectType},
		{"bad code", "US", "large_airport", "US-0001", RejectCode},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := c.Classify(tt.country, tt.typ, tt.ident); got != tt.want {
				t.Errorf("Classify() = %q, want %q", got, tt.want)
			}
		})
	}
}
