package scoring

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/uwillc/netposture/internal/core/domain"
)

var testNow = time.Date(2024, 6, 1, 0, 0, 0, 0, time.UTC)

func TestModifier_NoneApply(t *testing.T) {
	calc := NewModifierCalculator(nil)
	rec := domain.VulnerabilityRecord{
		ID:            "CVE-2024-0001",
		PublishedDate: testNow.AddDate(0, 0, -30),
	}

	value, applied, err := calc.Modifier(&rec, testNow)
	require.NoError(t, err)
	assert.Equal(t, 1.0, value)
	assert.Empty(t, applied)
}

func TestModifier_Exploited(t *testing.T) {
	calc := NewModifierCalculator(nil)
	rec := domain.VulnerabilityRecord{
		ID:            "CVE-2024-0001",
		Tags:          []string{"exploited-in-wild"},
		PublishedDate: testNow.AddDate(0, 0, -30),
	}

	value, applied, err := calc.Modifier(&rec, testNow)
	require.NoError(t, err)
	assert.Equal(t, 1.5, value)
	assert.Equal(t, []string{"exploited-in-wild"}, applied)
}

func TestModifier_PatchAvailable(t *testing.T) {
	calc := NewModifierCalculator(nil)
	rec := domain.VulnerabilityRecord{
		ID:            "CVE-2024-0001",
		FixedIn:       "17.9.4",
		PublishedDate: testNow.AddDate(0, 0, -30),
	}

	value, applied, err := calc.Modifier(&rec, testNow)
	require.NoError(t, err)
	assert.Equal(t, 0.7, value)
	assert.Equal(t, []string{"patch-available"}, applied)
}

func TestModifier_AgedBoundary(t *testing.T) {
	calc := NewModifierCalculator(nil)

	// Exactly 365 days is not aged; 366 is.
	atThreshold := domain.VulnerabilityRecord{PublishedDate: testNow.AddDate(0, 0, -365)}
	value, applied, err := calc.Modifier(&atThreshold, testNow)
	require.NoError(t, err)
	assert.Equal(t, 1.0, value)
	assert.Empty(t, applied)

	past := domain.VulnerabilityRecord{PublishedDate: testNow.AddDate(0, 0, -366)}
	value, applied, err = calc.Modifier(&past, testNow)
	require.NoError(t, err)
	assert.Equal(t, 1.2, value)
	assert.Equal(t, []string{"aged"}, applied)
}

func TestModifier_UnknownAgeNeverAged(t *testing.T) {
	calc := NewModifierCalculator(nil)
	rec := domain.VulnerabilityRecord{ID: "CVE-2024-0001"} // zero publication date

	value, applied, err := calc.Modifier(&rec, testNow)
	require.NoError(t, err)
	assert.Equal(t, 1.0, value)
	assert.Empty(t, applied)
}

func TestModifier_Combined(t *testing.T) {
	calc := NewModifierCalculator(nil)
	rec := domain.VulnerabilityRecord{
		ID:            "CVE-2023-0001",
		Tags:          []string{"exploited-in-wild"},
		FixedIn:       "17.9.4",
		PublishedDate: testNow.AddDate(0, 0, -400),
	}

	value, applied, err := calc.Modifier(&rec, testNow)
	require.NoError(t, err)
	assert.InDelta(t, 1.5*0.7*1.2, value, 1e-9)
	// Canonical order regardless of evaluation details.
	assert.Equal(t, []string{"exploited-in-wild", "patch-available", "aged"}, applied)
}

func TestModifier_NegativeFactorRejected(t *testing.T) {
	calc := NewModifierCalculator([]ModifierRule{
		{
			Name:    "broken",
			Factor:  -2.0,
			Applies: func(*domain.VulnerabilityRecord, time.Time) bool { return true },
		},
	})

	_, _, err := calc.Modifier(&domain.VulnerabilityRecord{}, testNow)
	assert.Error(t, err)
}
