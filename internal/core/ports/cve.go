package ports

import (
	"context"

	"github.com/uwillc/netposture/internal/core/domain"
)

// RecordStore defines the interface for vulnerability record storage.
type RecordStore interface {
	// FindByPlatform returns all records whose platform identifier matches
	// the normalized platform.
	FindByPlatform(ctx context.Context, platform string) ([]domain.VulnerabilityRecord, error)

	// GetByID returns a specific record, or nil when absent.
	GetByID(ctx context.Context, cveID string) (*domain.VulnerabilityRecord, error)

	// UpsertRecord inserts or updates a curated record.
	UpsertRecord(ctx context.Context, rec domain.VulnerabilityRecord) error

	// GetTotalCount returns the number of stored records.
	GetTotalCount(ctx context.Context) (int, error)

	Close() error
}

// Matcher returns the records applicable to a profile, in deterministic
// order. An unknown profile yields an empty slice, never an error.
type Matcher interface {
	Match(ctx context.Context, profile domain.DeviceProfile) ([]domain.VulnerabilityRecord, error)
}

// EnrichmentSource fetches an enrichment fragment for a CVE identifier
// from an external authority. Implementations must honor the context
// deadline; any failure mode is equivalent to "provider unavailable".
type EnrichmentSource interface {
	Fetch(ctx context.Context, cveID string) (*domain.EnrichmentFragment, error)
}

// Enricher merges cached or freshly fetched external data into a record.
// It degrades instead of failing: on provider errors the local record is
// returned unchanged. force bypasses cache freshness.
type Enricher interface {
	Enrich(ctx context.Context, rec domain.VulnerabilityRecord, force bool) domain.VulnerabilityRecord
}
