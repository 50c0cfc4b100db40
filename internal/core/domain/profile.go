package domain

import (
	"strings"
	"time"
)

// DeviceProfile is a named device identity used for vulnerability matching.
// Platform and Version are optional; a profile missing either is "unknown"
// and is never matched against the record store.
type DeviceProfile struct {
	Name        string `json:"name"`
	Platform    string `json:"platform,omitempty"` // e.g., "IOS XE"
	Version     string `json:"version,omitempty"`  // e.g., "17.9.3"
	Description string `json:"description,omitempty"`

	CreatedAt time.Time `json:"created_at,omitempty"`
	UpdatedAt time.Time `json:"updated_at,omitempty"`
}

// IsUnknown reports whether the profile lacks the platform/version pair
// required for matching.
func (p *DeviceProfile) IsUnknown() bool {
	return strings.TrimSpace(p.Platform) == "" || strings.TrimSpace(p.Version) == ""
}

// VulnerabilityStatus is the per-profile status derived from the maximum
// CVSS score among matched records.
type VulnerabilityStatus string

const (
	StatusClean    VulnerabilityStatus = "clean"
	StatusLow      VulnerabilityStatus = "low"
	StatusMedium   VulnerabilityStatus = "medium"
	StatusHigh     VulnerabilityStatus = "high"
	StatusCritical VulnerabilityStatus = "critical"
	StatusUnknown  VulnerabilityStatus = "unknown"
)

// StatusFromMaxCVSS maps the highest matched CVSS score to a status.
// A nil score means no scorable record matched.
func StatusFromMaxCVSS(maxCVSS *float64) VulnerabilityStatus {
	if maxCVSS == nil {
		return StatusClean
	}
	switch s := *maxCVSS; {
	case s >= 9.0:
		return StatusCritical
	case s >= 7.0:
		return StatusHigh
	case s >= 4.0:
		return StatusMedium
	case s > 0:
		return StatusLow
	default:
		return StatusClean
	}
}
