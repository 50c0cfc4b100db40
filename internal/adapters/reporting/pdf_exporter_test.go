package reporting

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/uwillc/netposture/internal/core/domain"
)

func iptr(v int) *int                            { return &v }
func fptr(v float64) *float64                    { return &v }
func lptr(l domain.ScoreLabel) *domain.ScoreLabel { return &l }

func TestExportBatchScores(t *testing.T) {
	batch := &domain.BatchScoreResult{
		BatchID:         "b-1234",
		Timestamp:       time.Date(2024, 6, 1, 12, 0, 0, 0, time.UTC),
		ProfilesChecked: 2,
		AverageScore:    fptr(66.5),
		LowestScore:     iptr(33),
		HighestScore:    iptr(100),
		Summary:         domain.ScoreSummary{Excellent: 1, Poor: 1},
		Results: []domain.ProfileSecurityScore{
			{
				ProfileName: "edge-router",
				Platform:    "IOS XE",
				Version:     "17.9.3",
				Score:       iptr(33),
				Label:       lptr(domain.LabelPoor),
				CVECount:    3,
			},
			{
				ProfileName: "core-switch",
				Platform:    "NX-OS",
				Version:     "10.2.5",
				Score:       iptr(100),
				Label:       lptr(domain.LabelExcellent),
			},
		},
	}

	data, err := NewPDFExporter().ExportBatchScores(batch)
	require.NoError(t, err)
	require.NotEmpty(t, data)
	assert.Equal(t, "%PDF", string(data[:4]))
}

func TestExportBatchScores_EmptyBatch(t *testing.T) {
	batch := &domain.BatchScoreResult{
		BatchID:   "b-empty",
		Timestamp: time.Date(2024, 6, 1, 12, 0, 0, 0, time.UTC),
	}

	data, err := NewPDFExporter().ExportBatchScores(batch)
	require.NoError(t, err)
	assert.NotEmpty(t, data)
}
