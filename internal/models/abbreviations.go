package models

import "strings"

// SurfaceUnknown is used when a runway has no surface description
const SurfaceUnknown = "UNK"

// typeExpansions maps persisted type codes back to the dataset type tag
var typeExpansions = map[string]string{
	"large":       "large_airport",
	"medium":      "medium_airport",
	"small":       "small_airport",
	"seaplane":    "seaplane_base",
	"heliport":    "heliport",
	"balloonport": "balloonport",
	"closed":      "closed",
}

// surfaceExpansions maps persisted surface codes to a readable surface name
var surfaceExpansions = map[string]string{
	"ASP":          "asphalt",
	"CON":          "concrete",
	"GRV":          "gravel",
	"TRF":          "turf",
	"DRT":          "dirt",
	"WTR":          "water",
	"SND":          "sand",
	SurfaceUnknown: "unknown",
}

type surfaceRule struct {
	keywords []string
	code     string
}

// surfaceRules are evaluated in order; the first keyword contained in the
// lowercased description wins.
var surfaceRules = []surfaceRule{
	{[]string{"asphalt"}, "ASP"},
	{[]string{"concrete"}, "CON"},
	{[]string{"gravel"}, "GRV"},
	{[]string{"turf", "grass"}, "TRF"},
	{[]string{"dirt", "earth"}, "DRT"},
	{[]string{"water"}, "WTR"},
	{[]string{"sand"}, "SND"},
}

// AbbreviateType strips the "_airport" suffix and shortens "seaplane_base".
func AbbreviateType(t string) string {
	if t == "seaplane_base" {
		return "seaplane"
	}
	return strings.TrimSuffix(t, "_airport")
}

// ExpandType reverses AbbreviateType. Unknown codes pass through unchanged.
func ExpandType(code string) string {
	if full, ok := typeExpansions[code]; ok {
		return full
	}
	return code
}

// AbbreviateSurface reduces a free-form surface description to a 3-letter code.
func AbbreviateSurface(surface string) string {
	s := strings.TrimSpace(surface)
	if s == "" {
		return SurfaceUnknown
	}
	lower := strings.ToLower(s)
	for _, rule := range surfaceRules {
		for _, kw := range rule.keywords {
			if strings.Contains(lower, kw) {
				return rule.code
			}
		}
	}
	r := []rune(s)
	if len(r) > 3 {
		r = r[:3]
	}
	return strings.ToUpper(string(r))
}

// ExpandSurface reverses AbbreviateSurface on the fixed vocabulary.
// Unknown codes pass through unchanged.
func ExpandSurface(code string) string {
	if full, ok := surfaceExpansions[code]; ok {
		return full
	}
	return code
}
