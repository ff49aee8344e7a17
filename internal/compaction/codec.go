package compaction

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"path/filepath"

	"airport-data/internal/models"
)

// DefaultByteBudget is the maximum serialized size of a table (500 KiB)
const DefaultByteBudget = 500 * 1024

// SizeLimitError means the encoded table does not fit the byte budget
type SizeLimitError struct {
	Size   int
	Budget int
}

func (e *SizeLimitError) Error() string {
	return fmt.Sprintf("encoded table is %d bytes, exceeds budget of %d bytes", e.Size, e.Budget)
}

// IsTransient returns false; the same input will always be too large
func (e *SizeLimitError) IsTransient() bool {
	return false
}

// Encode serializes table to minified JSON and enforces budget. Airport keys
// come out in ascending order.
func Encode(table *models.AirportTable, budget int) ([]byte, error) {
	var buf bytes.Buffer
	enc := json.NewEncoder(&buf)
	enc.SetEscapeHTML(false)
	if err := enc.Encode(table); err != nil {
		return nil, fmt.Errorf("failed to encode table: %w", err)
	}
	data := bytes.TrimSuffix(buf.Bytes(), []byte("\n"))
	if len(data) > budget {
		return nil, &SizeLimitError{Size: len(data), Budget: budget}
	}
	return data, nil
}

// Decode reads a table artifact and checks its invariants
func Decode(r io.Reader) (*models.AirportTable, error) {
	var table models.AirportTable
	if err := json.NewDecoder(r).Decode(&table); err != nil {
		return nil, fmt.Errorf("failed to decode table: %w", err)
	}
	if err := table.Validate(); err != nil {
		return nil, fmt.Errorf("invalid table: %w", err)
	}
	return &table, nil
}

// WriteArtifact publishes data at path. The parent directory is created if
// needed and the file is replaced by rename so readers never see a partial
// artifact.
func WriteArtifact(path string, data []byte) error {
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("failed to create output directory: %w", err)
	}

	tmp, err := os.CreateTemp(dir, filepath.Base(path)+".*.tmp")
	if err != nil {
		return fmt.Errorf("failed to create temp file: %w", err)
	}
	defer os.Remove(tmp.Name())

	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		return fmt.Errorf("failed to write artifact: %w", err)
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("failed to close artifact: %w", err)
	}
	if err := os.Chmod(tmp.Name(), 0o644); err != nil {
		return fmt.Errorf("failed to set artifact permissions: %w", err)
	}
	if err := os.Rename(tmp.Name(), path); err != nil {
		return fmt.Errorf("failed to publish artifact: %w", err)
	}
	return nil
}
