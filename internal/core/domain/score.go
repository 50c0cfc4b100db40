package domain

import "time"

// ScoreLabel categorizes a 0-100 security score.
type ScoreLabel string

const (
	LabelExcellent ScoreLabel = "Excellent" // 90-100
	LabelGood      ScoreLabel = "Good"      // 70-89
	LabelFair      ScoreLabel = "Fair"      // 50-69
	LabelPoor      ScoreLabel = "Poor"      // 25-49
	LabelCritical  ScoreLabel = "Critical"  // 0-24
	LabelUnknown   ScoreLabel = "Unknown"   // null score
)

// Base penalty per severity class. A matched CVE deducts its base penalty
// times the combined modifier from the starting score of 100.
var SeverityPenalties = map[SeverityClass]float64{
	SeverityCritical: 25,
	SeverityHigh:     15,
	SeverityMedium:   8,
	SeverityLow:      3,
}

// Risk modifiers. Multiplicative so that compounding risk factors
// (actively exploited AND old) weigh more than either alone.
const (
	ModifierExploited = 1.5
	ModifierPatched   = 0.7
	ModifierAged      = 1.2

	// AgeThresholdDays is the age beyond which the "aged" modifier applies.
	AgeThresholdDays = 365
)

// Canonical modifier names, in display order.
const (
	ModifierNameExploited = "exploited-in-wild"
	ModifierNamePatched   = "patch-available"
	ModifierNameAged      = "aged"
)

// LabelForScore converts a (possibly null) numeric score to its label.
func LabelForScore(score *int) ScoreLabel {
	if score == nil {
		return LabelUnknown
	}
	switch s := *score; {
	case s >= 90:
		return LabelExcellent
	case s >= 70:
		return LabelGood
	case s >= 50:
		return LabelFair
	case s >= 25:
		return LabelPoor
	default:
		return LabelCritical
	}
}

// LabelColor returns the indicator color the presentation layer renders
// next to each label. Static lookup, not algorithmic.
func LabelColor(label ScoreLabel) string {
	switch label {
	case LabelExcellent:
		return "green"
	case LabelGood:
		return "lime"
	case LabelFair:
		return "yellow"
	case LabelPoor:
		return "orange"
	case LabelCritical:
		return "red"
	default:
		return "gray"
	}
}

// CVEScoreBreakdown is the per-CVE penalty detail inside a profile score.
// Derived, read-only view; built fresh on every scoring call.
type CVEScoreBreakdown struct {
	CVEID     string        `json:"cve_id"`
	CVSSScore *float64      `json:"cvss_score"`
	Severity  SeverityClass `json:"severity"`

	BasePenalty      float64  `json:"base_penalty"`
	ModifiersApplied []string `json:"modifiers_applied"`
	ModifierValue    float64  `json:"modifier_value"`
	FinalPenalty     float64  `json:"final_penalty"`
}

// ProfileSecurityScore is the scoring result for a single profile.
// Score and Label are nil for unknown profiles.
type ProfileSecurityScore struct {
	ProfileName string `json:"profile_name"`
	Platform    string `json:"platform,omitempty"`
	Version     string `json:"version,omitempty"`

	Score *int        `json:"score"`
	Label *ScoreLabel `json:"label"`

	CVECount     int                 `json:"cve_count"`
	CVEBreakdown []CVEScoreBreakdown `json:"cve_breakdown"`

	TotalBasePenalty  float64 `json:"total_base_penalty"`
	TotalFinalPenalty float64 `json:"total_final_penalty"`

	// Note carries a diagnostic message when this profile's score was
	// nulled by an internal defect instead of an unknown platform/version.
	Note string `json:"note,omitempty"`
}

// ScoreSummary counts profiles per label bucket across a batch.
type ScoreSummary struct {
	Excellent int `json:"excellent"`
	Good      int `json:"good"`
	Fair      int `json:"fair"`
	Poor      int `json:"poor"`
	Critical  int `json:"critical"`
	Unknown   int `json:"unknown"`
}

// Add counts one result into the summary.
func (s *ScoreSummary) Add(label ScoreLabel) {
	switch label {
	case LabelExcellent:
		s.Excellent++
	case LabelGood:
		s.Good++
	case LabelFair:
		s.Fair++
	case LabelPoor:
		s.Poor++
	case LabelCritical:
		s.Critical++
	default:
		s.Unknown++
	}
}

// BatchScoreResult aggregates a whole scoring run. Aggregates are computed
// over non-null scores only and are nil when every profile was unknown.
type BatchScoreResult struct {
	BatchID         string    `json:"batch_id"`
	Timestamp       time.Time `json:"timestamp"`
	ProfilesChecked int       `json:"profiles_checked"`

	AverageScore *float64 `json:"average_score"`
	LowestScore  *int     `json:"lowest_score"`
	HighestScore *int     `json:"highest_score"`

	Summary ScoreSummary           `json:"summary"`
	Results []ProfileSecurityScore `json:"results"`
}

// ProfileVulnerabilityResult is the lighter status view returned by the
// vulnerability check endpoint (no penalties, just matched IDs).
type ProfileVulnerabilityResult struct {
	ProfileName string `json:"profile_name"`
	Platform    string `json:"platform,omitempty"`
	Version     string `json:"version,omitempty"`

	Status   VulnerabilityStatus `json:"status"`
	CVECount int                 `json:"cve_count"`
	MaxCVSS  *float64            `json:"max_cvss"`
	CVEs     []string            `json:"cves"`
}

// VulnerabilitySummary counts profiles per status bucket.
type VulnerabilitySummary struct {
	Critical int `json:"critical"`
	High     int `json:"high"`
	Medium   int `json:"medium"`
	Low      int `json:"low"`
	Clean    int `json:"clean"`
	Unknown  int `json:"unknown"`
}

// Add counts one status into the summary.
func (s *VulnerabilitySummary) Add(status VulnerabilityStatus) {
	switch status {
	case StatusCritical:
		s.Critical++
	case StatusHigh:
		s.High++
	case StatusMedium:
		s.Medium++
	case StatusLow:
		s.Low++
	case StatusClean:
		s.Clean++
	default:
		s.Unknown++
	}
}

// BatchVulnerabilityResult is the response of the vulnerability check.
type BatchVulnerabilityResult struct {
	Timestamp       time.Time                    `json:"timestamp"`
	ProfilesChecked int                          `json:"profiles_checked"`
	Summary         VulnerabilitySummary         `json:"summary"`
	Results         []ProfileVulnerabilityResult `json:"results"`
}
