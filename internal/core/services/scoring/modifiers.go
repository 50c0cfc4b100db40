package scoring

import (
	"fmt"
	"time"

	"github.com/uwillc/netposture/internal/core/domain"
)

// ModifierRule is a pure predicate→factor pair. Rules are evaluated
// against an immutable record snapshot and combined by multiplication;
// the slice order fixes the canonical display order of applied names.
type ModifierRule struct {
	Name    string
	Factor  float64
	Applies func(rec *domain.VulnerabilityRecord, now time.Time) bool
}

// DefaultModifierRules returns the canonical rule set:
// exploited-in-wild x1.5, patch-available x0.7, aged (>365d) x1.2.
func DefaultModifierRules() []ModifierRule {
	return []ModifierRule{
		{
			Name:   domain.ModifierNameExploited,
			Factor: domain.ModifierExploited,
			Applies: func(rec *domain.VulnerabilityRecord, _ time.Time) bool {
				return rec.HasTag(domain.TagExploited)
			},
		},
		{
			Name:   domain.ModifierNamePatched,
			Factor: domain.ModifierPatched,
			Applies: func(rec *domain.VulnerabilityRecord, _ time.Time) bool {
				return rec.FixedIn != ""
			},
		},
		{
			Name:   domain.ModifierNameAged,
			Factor: domain.ModifierAged,
			Applies: func(rec *domain.VulnerabilityRecord, now time.Time) bool {
				age := rec.AgeDays(now)
				return age > domain.AgeThresholdDays
			},
		},
	}
}

// ModifierCalculator computes the combined multiplicative risk modifier
// for a single record.
type ModifierCalculator struct {
	rules []ModifierRule
}

// NewModifierCalculator creates a calculator over the given rules, or the
// default set when rules is nil.
func NewModifierCalculator(rules []ModifierRule) *ModifierCalculator {
	if rules == nil {
		rules = DefaultModifierRules()
	}
	return &ModifierCalculator{rules: rules}
}

// Modifier returns the combined multiplier and the names of the rules that
// applied, in canonical order. The multiplier starts at 1.0; no applicable
// rules means (1.0, empty list). A rule with a negative factor is a
// contract violation and is reported as an error rather than coerced.
func (c *ModifierCalculator) Modifier(rec *domain.VulnerabilityRecord, now time.Time) (float64, []string, error) {
	value := 1.0
	applied := []string{}
	for i := range c.rules {
		rule := &c.rules[i]
		if rule.Factor < 0 {
			return 0, nil, fmt.Errorf("modifier %q has negative factor %v", rule.Name, rule.Factor)
		}
		if rule.Applies(rec, now) {
			value *= rule.Factor
			applied = append(applied, rule.Name)
		}
	}
	return value, applied, nil
}
