// Package airportdata bundles the generated airport table with the binary.
// The artifact is rewritten by cmd/ingester; see config.yml for its output path.
package airportdata

import (
	"bytes"
	_ "embed"

	"airport-data/internal/compaction"
	"airport-data/internal/models"
)

//go:embed airports.json
var artifact []byte

// Raw returns the bundled artifact bytes
func Raw() []byte {
	return artifact
}

// Load decodes and validates the bundled artifact
func Load() (*models.AirportTable, error) {
	return compaction.Decode(bytes.NewReader(artifact))
}
