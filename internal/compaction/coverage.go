package compaction

import (
	"fmt"
	"regexp"
	"strings"
)

// Region is a named group of ISO 3166-1 alpha-2 country codes
type Region struct {
	Name      string
	Countries []string
}

// NorthAmerica and Europe make up the default coverage allow-list
var (
	NorthAmerica = Region{Name: "North America", Countries: []string{"CA", "US", "MX"}}
	Europe       = Region{Name: "Europe", Countries: []string{
		"AT", "BE", "BG", "CH", "CY", "CZ", "DE", "DK", "EE", "ES",
		"FI", "FR", "GB", "GR", "HR", "HU", "IE", "IS", "IT", "LT",
		"LU", "LV", "MT", "NL", "NO", "PL", "PT", "RO", "SE", "SI",
		"SK", "AL", "BA", "ME", "MK",
	}}
)

// EligibleTypes are the dataset type tags kept in the table
var EligibleTypes = map[string]bool{
	"large_airport":  true,
	"medium_airport": true,
}

var codePattern = regexp.MustCompile(`^[A-Za-z0-9]{3,4}$`)

// Rejection reasons reported by Coverage.Classify
const (
	RejectCoverage = "coverage"
	RejectType     = "type"
	RejectCode     = "code"
)

// Coverage is the country allow-list an airport must belong to
type Coverage struct {
	regions   []Region
	countries map[string]bool
}

// NewCoverage builds an allow-list from regions
func NewCoverage(regions ...Region) *Coverage {
	c := &Coverage{regions: regions, countries: make(map[string]bool)}
	for _, r := range regions {
		for _, cc := range r.Countries {
			c.countries[strings.ToUpper(cc)] = true
		}
	}
	return c
}

// DefaultCoverage is North America plus Europe
func DefaultCoverage() *Coverage {
	return NewCoverage(NorthAmerica, Europe)
}

// Includes reports whether country is allow-listed
func (c *Coverage) Includes(country string) bool {
	return c.countries[strings.ToUpper(strings.TrimSpace(country))]
}

// Describe renders the coverage for table metadata, e.g.
// "North America (CA, US, MX) + Europe (35 countries)".
func (c *Coverage) Describe() string {
	parts := make([]string, 0, len(c.regions))
	for _, r := range c.regions {
		if len(r.Countries) <= 5 {
			parts = append(parts, fmt.Sprintf("%s (%s)", r.Name, strings.Join(r.Countries, ", ")))
		} else {
			parts = append(parts, fmt.Sprintf("%s (%d countries)", r.Name, len(r.Countries)))
		}
	}
	return strings.Join(parts, " + ")
}

// IsValidCode reports whether ident looks like a 3-4 character alphanumeric code
func IsValidCode(ident string) bool {
	return codePattern.MatchString(ident)
}

// Classify returns "" when the airport passes every filter, otherwise the
// first failing reason in the order coverage, type, code.
func (c *Coverage) Classify(country, airportType, ident string) string {
	switch {
	case !c.Includes(country):
		return RejectCoverage
	case !EligibleTypes[airportType]:
		return RejectType
	case !IsValidCode(ident):
		return RejectCode
	}
	return ""
}
