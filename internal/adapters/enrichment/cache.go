package enrichment

import (
	"context"
	"log/slog"
	"sync"
	"time"

	"golang.org/x/sync/singleflight"

	"github.com/uwillc/netposture/internal/core/domain"
	"github.com/uwillc/netposture/internal/core/ports"
	"github.com/uwillc/netposture/internal/telemetry"
)

const (
	// DefaultTTL is the freshness window for cached provider lookups.
	DefaultTTL = 24 * time.Hour
	// DefaultFetchTimeout bounds a single provider call; no response by
	// the deadline is treated as provider unavailable.
	DefaultFetchTimeout = 10 * time.Second
)

type entry struct {
	fragment  *domain.EnrichmentFragment
	fetchedAt time.Time
}

// Cache is a time-bounded cache of external enrichment lookups keyed by
// CVE identifier. It implements ports.Enricher.
//
// Concurrent callers missing on the same identifier share a single
// provider fetch (single-flight). Provider failures degrade to whatever
// cached or local data exists and are never cached, so the next call
// retries.
type Cache struct {
	source  ports.EnrichmentSource
	clock   ports.Clock
	ttl     time.Duration
	timeout time.Duration

	mu      sync.RWMutex
	entries map[string]entry
	group   singleflight.Group
}

// NewCache creates a cache over the given source. A nil clock uses the
// system clock; a non-positive ttl uses DefaultTTL.
func NewCache(source ports.EnrichmentSource, clock ports.Clock, ttl time.Duration) *Cache {
	if clock == nil {
		clock = ports.SystemClock()
	}
	if ttl <= 0 {
		ttl = DefaultTTL
	}
	return &Cache{
		source:  source,
		clock:   clock,
		ttl:     ttl,
		timeout: DefaultFetchTimeout,
		entries: make(map[string]entry),
	}
}

// Enrich merges provider data for rec.ID into the record. Local fields
// stay authoritative (see domain.Merge). On any provider failure the
// record is returned built from local data only, with the stale condition
// logged and counted; the cache never fails a scoring call.
func (c *Cache) Enrich(ctx context.Context, rec domain.VulnerabilityRecord, force bool) domain.VulnerabilityRecord {
	if !force {
		if frag, ok := c.fresh(rec.ID); ok {
			telemetry.EnrichmentHits.Inc()
			return domain.Merge(rec, frag)
		}
	}
	telemetry.EnrichmentMisses.Inc()

	frag, err := c.fetch(ctx, rec.ID, force)
	if err != nil {
		telemetry.EnrichmentFallbacks.Inc()
		slog.Warn("enrichment stale, external data unavailable",
			"cve_id", rec.ID, "error", err)
		// Degrade: an expired entry beats nothing at all.
		if stale := c.any(rec.ID); stale != nil {
			return domain.Merge(rec, stale)
		}
		return rec
	}
	return domain.Merge(rec, frag)
}

// Fragment returns the cached-or-fetched fragment for an identifier.
// Unlike Enrich it surfaces the fetch error to the caller.
func (c *Cache) Fragment(ctx context.Context, cveID string, force bool) (*domain.EnrichmentFragment, error) {
	if !force {
		if frag, ok := c.fresh(cveID); ok {
			telemetry.EnrichmentHits.Inc()
			return frag, nil
		}
	}
	telemetry.EnrichmentMisses.Inc()
	return c.fetch(ctx, cveID, force)
}

// fetch performs the single-flight provider call and stores the result
// with the current timestamp. Failures are not stored.
func (c *Cache) fetch(ctx context.Context, cveID string, force bool) (*domain.EnrichmentFragment, error) {
	v, err, _ := c.group.Do(cveID, func() (interface{}, error) {
		// A concurrent caller may have filled the entry while this call
		// waited its turn in the flight group. Forced refreshes must hit
		// the provider, so the shortcut only applies to plain misses.
		if !force {
			if frag, ok := c.fresh(cveID); ok {
				return frag, nil
			}
		}

		fctx, cancel := context.WithTimeout(ctx, c.timeout)
		defer cancel()

		frag, err := c.source.Fetch(fctx, cveID)
		if err != nil {
			return nil, err
		}

		c.mu.Lock()
		c.entries[cveID] = entry{fragment: frag, fetchedAt: c.clock.Now()}
		c.mu.Unlock()
		return frag, nil
	})
	if err != nil {
		return nil, err
	}
	return v.(*domain.EnrichmentFragment), nil
}

// fresh returns the cached fragment when it is inside the freshness
// window. Entries older than the window are treated as absent.
func (c *Cache) fresh(cveID string) (*domain.EnrichmentFragment, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	e, ok := c.entries[cveID]
	if !ok {
		return nil, false
	}
	if c.clock.Now().Sub(e.fetchedAt) >= c.ttl {
		return nil, false
	}
	return e.fragment, true
}

// any returns the cached fragment regardless of freshness.
func (c *Cache) any(cveID string) *domain.EnrichmentFragment {
	c.mu.RLock()
	defer c.mu.RUnlock()
	if e, ok := c.entries[cveID]; ok {
		return e.fragment
	}
	return nil
}
