package cve

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"os"
	"path/filepath"

	"github.com/uwillc/netposture/internal/core/domain"
	"github.com/uwillc/netposture/internal/core/ports"
)

// SeedLoader loads curated vulnerability records from JSON files into the
// record store. Records missing a severity class get one derived from the
// numeric score; invalid files are skipped, never fatal.
type SeedLoader struct {
	store ports.RecordStore
}

// NewSeedLoader creates a new seed loader.
func NewSeedLoader(store ports.RecordStore) *SeedLoader {
	return &SeedLoader{store: store}
}

// LoadFromFile loads records from a single JSON file containing an array
// of records.
func (s *SeedLoader) LoadFromFile(ctx context.Context, path string) (int, error) {
	log.Printf("[CVE-SEED] Loading records from %s", path)

	data, err := os.ReadFile(path)
	if err != nil {
		return 0, fmt.Errorf("failed to read seed file: %w", err)
	}

	var records []domain.VulnerabilityRecord
	if err := json.Unmarshal(data, &records); err != nil {
		return 0, fmt.Errorf("failed to parse seed file: %w", err)
	}

	loaded := 0
	failed := 0
	for _, rec := range records {
		if rec.Severity == "" {
			rec.Severity = domain.SeverityFromScore(rec.CVSSScore)
		}
		if rec.Source == "" {
			rec.Source = "local-json"
		}
		if err := s.store.UpsertRecord(ctx, rec); err != nil {
			log.Printf("[CVE-SEED] Failed to load %s: %v", rec.ID, err)
			failed++
			continue
		}
		loaded++
	}

	log.Printf("[CVE-SEED] Loaded %d records (%d failed)", loaded, failed)
	return loaded, nil
}

// LoadFromDir loads every *.json file in a directory. Files that fail to
// parse are logged and skipped so one bad file never blocks the dataset.
func (s *SeedLoader) LoadFromDir(ctx context.Context, dir string) (int, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return 0, fmt.Errorf("failed to read seed dir: %w", err)
	}

	total := 0
	for _, entry := range entries {
		if entry.IsDir() || filepath.Ext(entry.Name()) != ".json" {
			continue
		}
		n, err := s.LoadFromFile(ctx, filepath.Join(dir, entry.Name()))
		if err != nil {
			log.Printf("[CVE-SEED] Skipping %s: %v", entry.Name(), err)
			continue
		}
		total += n
	}
	return total, nil
}
