package scoring

import (
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/uwillc/netposture/internal/core/domain"
)

func f(v float64) *float64 { return &v }

func knownProfile() domain.DeviceProfile {
	return domain.DeviceProfile{Name: "edge-router", Platform: "IOS XE", Version: "17.9.3"}
}

func TestScore_NoMatches(t *testing.T) {
	agg := NewAggregator(nil)

	result, err := agg.Score(knownProfile(), nil, testNow)
	require.NoError(t, err)

	require.NotNil(t, result.Score)
	assert.Equal(t, 100, *result.Score)
	assert.Equal(t, domain.LabelExcellent, *result.Label)
	assert.Empty(t, result.CVEBreakdown)
	assert.Equal(t, 0, result.CVECount)
}

func TestScore_UnknownProfile(t *testing.T) {
	agg := NewAggregator(nil)

	result, err := agg.Score(domain.DeviceProfile{Name: "mystery"}, nil, testNow)
	require.NoError(t, err)

	assert.Nil(t, result.Score)
	assert.Nil(t, result.Label)
	assert.Empty(t, result.CVEBreakdown)
	assert.Equal(t, 0, result.CVECount)
}

func TestScore_SingleCriticalNoModifiers(t *testing.T) {
	agg := NewAggregator(nil)
	matched := []domain.VulnerabilityRecord{
		{
			ID:            "CVE-2024-0001",
			CVSSScore:     f(10.0),
			Severity:      domain.SeverityCritical,
			PublishedDate: testNow.AddDate(0, 0, -30),
		},
	}

	result, err := agg.Score(knownProfile(), matched, testNow)
	require.NoError(t, err)

	assert.Equal(t, 75, *result.Score)
	assert.Equal(t, domain.LabelGood, *result.Label)
	require.Len(t, result.CVEBreakdown, 1)
	assert.Equal(t, 25.0, result.CVEBreakdown[0].BasePenalty)
	assert.Equal(t, 25.0, result.CVEBreakdown[0].FinalPenalty)
}

func TestScore_ExploitedAndAged(t *testing.T) {
	agg := NewAggregator(nil)
	matched := []domain.VulnerabilityRecord{
		{
			ID:            "CVE-2023-0001",
			CVSSScore:     f(9.8),
			Severity:      domain.SeverityCritical,
			Tags:          []string{"exploited-in-wild"},
			PublishedDate: testNow.AddDate(0, 0, -400),
		},
	}

	result, err := agg.Score(knownProfile(), matched, testNow)
	require.NoError(t, err)

	// 25 * 1.5 * 1.2 = 45 penalty
	assert.Equal(t, 55, *result.Score)
	assert.Equal(t, domain.LabelFair, *result.Label)
	assert.Equal(t, 45.0, result.CVEBreakdown[0].FinalPenalty)
	assert.Equal(t, 1.8, result.CVEBreakdown[0].ModifierValue)
}

func TestScore_PatchedAndAged(t *testing.T) {
	agg := NewAggregator(nil)
	matched := []domain.VulnerabilityRecord{
		{
			ID:            "CVE-2023-0002",
			CVSSScore:     f(9.1),
			Severity:      domain.SeverityCritical,
			FixedIn:       "17.9.4",
			PublishedDate: testNow.AddDate(0, 0, -400),
		},
	}

	result, err := agg.Score(knownProfile(), matched, testNow)
	require.NoError(t, err)

	// 25 * 0.7 * 1.2 = 21 penalty
	assert.Equal(t, 79, *result.Score)
	assert.Equal(t, domain.LabelGood, *result.Label)
	assert.Equal(t, 21.0, result.CVEBreakdown[0].FinalPenalty)
}

func TestScore_ThreeRecordsHalfPenalty(t *testing.T) {
	agg := NewAggregator(nil)
	matched := []domain.VulnerabilityRecord{
		{
			// critical, exploited, aged: 25 * 1.5 * 1.2 = 45
			ID:            "CVE-2023-0001",
			CVSSScore:     f(9.8),
			Severity:      domain.SeverityCritical,
			Tags:          []string{"exploited-in-wild"},
			PublishedDate: testNow.AddDate(0, 0, -400),
		},
		{
			// high, aged: 15 * 1.2 = 18
			ID:            "CVE-2023-0002",
			CVSSScore:     f(8.1),
			Severity:      domain.SeverityHigh,
			PublishedDate: testNow.AddDate(0, 0, -500),
		},
		{
			// critical, patched: 25 * 0.7 = 17.5
			ID:            "CVE-2024-0003",
			CVSSScore:     f(9.0),
			Severity:      domain.SeverityCritical,
			FixedIn:       "17.9.4",
			PublishedDate: testNow.AddDate(0, 0, -100),
		},
	}

	result, err := agg.Score(knownProfile(), matched, testNow)
	require.NoError(t, err)

	// Total penalty 80.5; 100 - 80.5 = 19.5 rounds half-up to 20.
	assert.Equal(t, 80.5, result.TotalFinalPenalty)
	require.NotNil(t, result.Score)
	assert.Equal(t, 20, *result.Score)
	assert.Equal(t, domain.LabelCritical, *result.Label)
}

func TestScore_FloorsAtZero(t *testing.T) {
	agg := NewAggregator(nil)
	var matched []domain.VulnerabilityRecord
	for i := 0; i < 6; i++ {
		matched = append(matched, domain.VulnerabilityRecord{
			ID:            fmt.Sprintf("CVE-2024-%04d", i+1),
			CVSSScore:     f(9.8),
			Severity:      domain.SeverityCritical,
			PublishedDate: testNow.AddDate(0, 0, -30),
		})
	}

	result, err := agg.Score(knownProfile(), matched, testNow)
	require.NoError(t, err)

	assert.Equal(t, 0, *result.Score)
	assert.Equal(t, domain.LabelCritical, *result.Label)
}

func TestScore_UnknownSeverityZeroPenalty(t *testing.T) {
	agg := NewAggregator(nil)
	matched := []domain.VulnerabilityRecord{
		{ID: "CVE-2024-0001"}, // no score, no severity
	}

	result, err := agg.Score(knownProfile(), matched, testNow)
	require.NoError(t, err)

	assert.Equal(t, 100, *result.Score)
	require.Len(t, result.CVEBreakdown, 1)
	assert.Equal(t, domain.SeverityUnknown, result.CVEBreakdown[0].Severity)
	assert.Equal(t, 0.0, result.CVEBreakdown[0].FinalPenalty)
}

func TestScore_SeverityWithoutScoreExcluded(t *testing.T) {
	agg := NewAggregator(nil)
	matched := []domain.VulnerabilityRecord{
		{
			ID:       "CVE-2024-0001",
			Severity: domain.SeverityCritical, // labeled, but no numeric score
		},
	}

	result, err := agg.Score(knownProfile(), matched, testNow)
	require.NoError(t, err)

	assert.Equal(t, 100, *result.Score)
	require.Len(t, result.CVEBreakdown, 1)
	assert.Equal(t, domain.SeverityUnknown, result.CVEBreakdown[0].Severity)
	assert.Equal(t, 0.0, result.CVEBreakdown[0].FinalPenalty)
}

func TestScore_InconsistentSeverityExcluded(t *testing.T) {
	agg := NewAggregator(nil)
	matched := []domain.VulnerabilityRecord{
		{
			ID:        "CVE-2024-0001",
			CVSSScore: f(3.0), // low by threshold
			Severity:  domain.SeverityCritical,
		},
	}

	result, err := agg.Score(knownProfile(), matched, testNow)
	require.NoError(t, err)

	assert.Equal(t, 100, *result.Score)
	assert.Equal(t, domain.SeverityUnknown, result.CVEBreakdown[0].Severity)
	assert.Equal(t, 0.0, result.CVEBreakdown[0].FinalPenalty)
}

func TestScore_InvalidSeverityRejected(t *testing.T) {
	agg := NewAggregator(nil)
	matched := []domain.VulnerabilityRecord{
		{ID: "CVE-2024-0001", Severity: domain.SeverityClass("catastrophic")},
	}

	_, err := agg.Score(knownProfile(), matched, testNow)
	assert.Error(t, err)
}

func TestFinalScoreRounding(t *testing.T) {
	assert.Equal(t, 63, finalScore(37.5), "half rounds up")
	assert.Equal(t, 62, finalScore(37.6))
	assert.Equal(t, 100, finalScore(0))
	assert.Equal(t, 100, finalScore(-5), "clamped high")
	assert.Equal(t, 0, finalScore(150), "clamped low")
}
