package cve

import (
	"context"
	"fmt"
	"strings"

	"github.com/uwillc/netposture/internal/core/domain"
	"github.com/uwillc/netposture/internal/core/ports"
)

// MatcherEngine implements ports.Matcher against a record store.
type MatcherEngine struct {
	store ports.RecordStore
}

// NewMatcher creates a matcher over the given store.
func NewMatcher(store ports.RecordStore) *MatcherEngine {
	return &MatcherEngine{store: store}
}

// Match returns the records applicable to the profile's platform/version,
// ordered by severity rank then identifier so repeated calls over the same
// store snapshot produce identical breakdowns. Platform matching is exact
// (after trim/lowercase normalization); version matching is delegated to
// each record's matcher. Unknown profiles and unmatched platform/version
// pairs yield an empty slice, never an error.
func (m *MatcherEngine) Match(ctx context.Context, profile domain.DeviceProfile) ([]domain.VulnerabilityRecord, error) {
	if profile.IsUnknown() {
		return []domain.VulnerabilityRecord{}, nil
	}

	candidates, err := m.store.FindByPlatform(ctx, normalizePlatform(profile.Platform))
	if err != nil {
		return nil, fmt.Errorf("platform lookup %q: %w", profile.Platform, err)
	}

	matched := []domain.VulnerabilityRecord{}
	for i := range candidates {
		if candidates[i].MatchesVersion(profile.Version) {
			matched = append(matched, candidates[i])
		}
	}

	domain.SortRecords(matched)
	return matched, nil
}

// normalizePlatform lowercases and trims a platform identifier for
// consistent matching.
func normalizePlatform(platform string) string {
	return strings.ToLower(strings.TrimSpace(platform))
}
