package domain

import (
	"sort"
	"strings"
	"time"
)

// SeverityClass buckets a numeric CVSS score into the fixed vocabulary used
// across the API: critical / high / medium / low. A record without a numeric
// score has SeverityUnknown and never contributes to scoring.
type SeverityClass string

const (
	SeverityCritical SeverityClass = "critical"
	SeverityHigh     SeverityClass = "high"
	SeverityMedium   SeverityClass = "medium"
	SeverityLow      SeverityClass = "low"
	SeverityUnknown  SeverityClass = "unknown"
)

// SeverityFromScore derives the severity class from a CVSS score using the
// fixed thresholds: critical >=9.0, high >=7.0, medium >=4.0, low >0.
func SeverityFromScore(score *float64) SeverityClass {
	if score == nil {
		return SeverityUnknown
	}
	switch s := *score; {
	case s >= 9.0:
		return SeverityCritical
	case s >= 7.0:
		return SeverityHigh
	case s >= 4.0:
		return SeverityMedium
	case s > 0:
		return SeverityLow
	default:
		return SeverityUnknown
	}
}

// severityRank orders classes for deterministic match output
// (critical first, unknown last).
func severityRank(s SeverityClass) int {
	switch s {
	case SeverityCritical:
		return 0
	case SeverityHigh:
		return 1
	case SeverityMedium:
		return 2
	case SeverityLow:
		return 3
	default:
		return 99
	}
}

// TagExploited marks a vulnerability with known in-the-wild exploitation.
const TagExploited = "exploited-in-wild"

// VulnerabilityRecord is a curated CVE entry for a device platform.
type VulnerabilityRecord struct {
	ID       string `json:"cve_id"` // e.g., "CVE-2023-20198"
	Title    string `json:"title,omitempty"`
	Platform string `json:"platform"` // e.g., "IOS XE", "ISR4451-X"

	// Version Matching: exactly one of these is normally set.
	VersionExact string   `json:"version_exact,omitempty"`
	VersionList  []string `json:"version_list,omitempty"`
	VersionStart string   `json:"version_start,omitempty"` // inclusive
	VersionEnd   string   `json:"version_end,omitempty"`   // inclusive

	// Severity. CVSSScore nil means the record is informational only.
	CVSSScore  *float64      `json:"cvss_score,omitempty"`
	Severity   SeverityClass `json:"severity"`
	CVSSVector string        `json:"cvss_vector,omitempty"`

	FixedIn string   `json:"fixed_in,omitempty"`
	Tags    []string `json:"tags,omitempty"`

	Description   string    `json:"description,omitempty"`
	Workaround    string    `json:"workaround,omitempty"`
	PublishedDate time.Time `json:"published_date"`
	References    []string  `json:"references,omitempty"`

	// Source tracks where the record came from: "local-json", "nvd", ...
	Source string `json:"source,omitempty"`
}

// HasTag reports whether the record carries the given tag.
func (r *VulnerabilityRecord) HasTag(tag string) bool {
	for _, t := range r.Tags {
		if t == tag {
			return true
		}
	}
	return false
}

// Scorable reports whether the record can contribute penalty: it needs a
// numeric score and a severity class consistent with it.
func (r *VulnerabilityRecord) Scorable() bool {
	return r.CVSSScore != nil && r.Severity == SeverityFromScore(r.CVSSScore)
}

// AgeDays returns the record age relative to now. Records with a zero
// publication date report -1 (age unknown).
func (r *VulnerabilityRecord) AgeDays(now time.Time) int {
	if r.PublishedDate.IsZero() {
		return -1
	}
	return int(now.Sub(r.PublishedDate).Hours() / 24)
}

// MatchesVersion reports whether the given version string is accepted by
// this record's version matcher. Matching is exact-string or explicit
// list/range membership; no semantic inference beyond segment comparison.
func (r *VulnerabilityRecord) MatchesVersion(version string) bool {
	version = strings.TrimSpace(version)
	if version == "" {
		return false
	}
	if r.VersionExact != "" {
		return CompareVersions(version, r.VersionExact) == 0
	}
	if len(r.VersionList) > 0 {
		for _, v := range r.VersionList {
			if CompareVersions(version, v) == 0 {
				return true
			}
		}
		return false
	}
	if r.VersionStart != "" || r.VersionEnd != "" {
		if r.VersionStart != "" && CompareVersions(version, r.VersionStart) < 0 {
			return false
		}
		if r.VersionEnd != "" && CompareVersions(version, r.VersionEnd) > 0 {
			return false
		}
		return true
	}
	// No matcher at all never matches.
	return false
}

// EnrichmentFragment is the subset of fields an external provider can
// supply for a CVE identifier.
type EnrichmentFragment struct {
	ID             string   `json:"cve_id"`
	CVSSScore      *float64 `json:"cvss_score,omitempty"`
	CVSSVector     string   `json:"cvss_vector,omitempty"`
	Classification string   `json:"classification,omitempty"` // e.g., "CWE-78"
	References     []string `json:"references,omitempty"`
}

// Merge combines a locally curated record with an external fragment.
// Local fields are authoritative: the identifier, an existing numeric
// score/severity and fixed_in are never overwritten. Missing fields are
// filled from the fragment and references are unioned.
func Merge(local VulnerabilityRecord, ext *EnrichmentFragment) VulnerabilityRecord {
	if ext == nil {
		return local
	}
	out := local
	if out.CVSSScore == nil && ext.CVSSScore != nil {
		score := *ext.CVSSScore
		out.CVSSScore = &score
		out.Severity = SeverityFromScore(out.CVSSScore)
	}
	if out.CVSSVector == "" {
		out.CVSSVector = ext.CVSSVector
	}
	seen := make(map[string]bool, len(out.References))
	for _, ref := range out.References {
		seen[ref] = true
	}
	for _, ref := range ext.References {
		if !seen[ref] {
			out.References = append(out.References, ref)
			seen[ref] = true
		}
	}
	return out
}

// RecommendedUpgrade returns the lowest fixed_in version among matched
// critical/high records, or "" when none carries a remediation version.
// Upgrading to it clears at least the oldest outstanding critical fix.
func RecommendedUpgrade(records []VulnerabilityRecord) string {
	best := ""
	for i := range records {
		r := &records[i]
		if r.FixedIn == "" {
			continue
		}
		if r.Severity != SeverityCritical && r.Severity != SeverityHigh {
			continue
		}
		if best == "" || CompareVersions(r.FixedIn, best) < 0 {
			best = r.FixedIn
		}
	}
	return best
}

// SortRecords orders records by severity rank (critical first, unknown
// last), then identifier ascending. The ordering is total, so repeated
// matches over the same snapshot produce identical breakdowns.
func SortRecords(records []VulnerabilityRecord) {
	sort.Slice(records, func(i, j int) bool {
		ri, rj := severityRank(records[i].Severity), severityRank(records[j].Severity)
		if ri != rj {
			return ri < rj
		}
		return records[i].ID < records[j].ID
	})
}
