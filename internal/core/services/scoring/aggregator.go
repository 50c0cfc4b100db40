package scoring

import (
	"fmt"
	"math"
	"time"

	"github.com/uwillc/netposture/internal/core/domain"
)

// Aggregator converts a profile's matched records into a security score.
type Aggregator struct {
	mods *ModifierCalculator
}

// NewAggregator creates an aggregator using the given modifier calculator.
func NewAggregator(mods *ModifierCalculator) *Aggregator {
	if mods == nil {
		mods = NewModifierCalculator(nil)
	}
	return &Aggregator{mods: mods}
}

// Score computes the ProfileSecurityScore for one profile.
//
// Unknown profiles (missing platform or version) get a nil score and nil
// label with an empty breakdown. Zero matched records yields 100/Excellent.
// Records with unknown severity appear in the breakdown with zero penalty.
// The final score is max(0, round(100 - total)), rounded half-up: 62.5
// rounds to 63.
func (a *Aggregator) Score(profile domain.DeviceProfile, matched []domain.VulnerabilityRecord, now time.Time) (domain.ProfileSecurityScore, error) {
	result := domain.ProfileSecurityScore{
		ProfileName:  profile.Name,
		Platform:     profile.Platform,
		Version:      profile.Version,
		CVEBreakdown: []domain.CVEScoreBreakdown{},
	}

	if profile.IsUnknown() {
		return result, nil
	}

	var totalBase, totalFinal float64
	for i := range matched {
		rec := &matched[i]
		breakdown, err := a.breakdown(rec, now)
		if err != nil {
			return result, fmt.Errorf("record %s: %w", rec.ID, err)
		}
		totalBase += breakdown.BasePenalty
		totalFinal += breakdown.FinalPenalty
		result.CVEBreakdown = append(result.CVEBreakdown, breakdown)
	}

	score := finalScore(totalFinal)
	label := domain.LabelForScore(&score)

	result.Score = &score
	result.Label = &label
	result.CVECount = len(matched)
	result.TotalBasePenalty = round2(totalBase)
	result.TotalFinalPenalty = round2(totalFinal)
	return result, nil
}

// breakdown computes the penalty detail for a single record.
func (a *Aggregator) breakdown(rec *domain.VulnerabilityRecord, now time.Time) (domain.CVEScoreBreakdown, error) {
	b := domain.CVEScoreBreakdown{
		CVEID:            rec.ID,
		CVSSScore:        rec.CVSSScore,
		Severity:         rec.Severity,
		ModifiersApplied: []string{},
		ModifierValue:    1.0,
	}

	base, ok := domain.SeverityPenalties[rec.Severity]
	switch {
	case ok:
		// scorable severity
	case rec.Severity == domain.SeverityUnknown || rec.Severity == "":
		// Informational record: zero penalty, but keep it visible.
		b.Severity = domain.SeverityUnknown
		return b, nil
	default:
		return b, fmt.Errorf("severity %q outside the closed vocabulary", rec.Severity)
	}

	if !rec.Scorable() {
		// No numeric score, or a severity class inconsistent with it:
		// the record is excluded from the penalty sum rather than trusted.
		b.Severity = domain.SeverityUnknown
		return b, nil
	}

	value, applied, err := a.mods.Modifier(rec, now)
	if err != nil {
		return b, err
	}

	b.BasePenalty = base
	b.ModifiersApplied = applied
	b.ModifierValue = round2(value)
	b.FinalPenalty = round2(base * value)
	return b, nil
}

// finalScore clamps and rounds the raw score. Round-half-up keeps the
// behavior consistent for .5 ties.
func finalScore(totalPenalty float64) int {
	raw := 100 - totalPenalty
	score := int(math.Floor(raw + 0.5))
	if score < 0 {
		return 0
	}
	if score > 100 {
		return 100
	}
	return score
}

func round2(v float64) float64 {
	return math.Round(v*100) / 100
}
