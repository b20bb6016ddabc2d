// Package ingest reads tracking exports into raw entries.
package ingest

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"

	"github.com/pbaille/cycles/internal/domain"
)

// ErrNotJSON is returned when an export body cannot be decoded
var ErrNotJSON = errors.New("data file not in correct format, expects json")

type export struct {
	Data []domain.RawEntry `json:"data"`
}

// Decode reads a Clue-style export: {"data": [{"day": ..., "period": ...}]}
func Decode(r io.Reader) ([]domain.RawEntry, error) {
	var e export
	if err := json.NewDecoder(r).Decode(&e); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrNotJSON, err)
	}
	return e.Data, nil
}

// ReadFile decodes the export stored at path
func ReadFile(path string) ([]domain.RawEntry, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open export: %w", err)
	}
	defer f.Close()

	return Decode(f)
}

// Load reads an export from an http(s) URL or a local path
func Load(source string) ([]domain.RawEntry, error) {
	if IsURL(source) {
		return Fetch(source)
	}
	return ReadFile(source)
}
