package reporting

import (
	"bytes"
	"fmt"

	"github.com/jung-kurt/gofpdf"

	"github.com/uwillc/netposture/internal/core/domain"
)

// PDFExporter exports batch security-score results to PDF format
type PDFExporter struct{}

// NewPDFExporter creates a new PDF exporter instance
func NewPDFExporter() *PDFExporter {
	return &PDFExporter{}
}

// ExportBatchScores generates a PDF report from a batch scoring result
func (e *PDFExporter) ExportBatchScores(batch *domain.BatchScoreResult) ([]byte, error) {
	pdf := gofpdf.New("P", "mm", "A4", "")
	pdf.AddPage()

	e.addHeader(pdf, batch)
	e.addSummary(pdf, batch)
	e.addResultsTable(pdf, batch)
	e.addFooter(pdf, batch)

	var buf bytes.Buffer
	if err := pdf.Output(&buf); err != nil {
		return nil, fmt.Errorf("failed to generate PDF: %w", err)
	}
	return buf.Bytes(), nil
}

// addHeader adds the report header
func (e *PDFExporter) addHeader(pdf *gofpdf.Fpdf, batch *domain.BatchScoreResult) {
	pdf.SetFont("Arial", "B", 24)
	pdf.SetTextColor(0, 51, 102) // Dark blue
	pdf.CellFormat(0, 15, "Device Security Posture Report", "", 1, "L", false, 0, "")
	pdf.Ln(2)

	pdf.SetFont("Arial", "", 10)
	pdf.SetTextColor(120, 120, 120)
	dateStr := fmt.Sprintf("Generated: %s", batch.Timestamp.Format("2006-01-02 15:04"))
	pdf.CellFormat(0, 6, dateStr, "", 1, "L", false, 0, "")
	pdf.CellFormat(0, 6, fmt.Sprintf("Batch: %s", batch.BatchID), "", 1, "L", false, 0, "")
	pdf.Ln(8)
}

// addSummary adds the aggregate statistics block
func (e *PDFExporter) addSummary(pdf *gofpdf.Fpdf, batch *domain.BatchScoreResult) {
	pdf.SetFont("Arial", "B", 14)
	pdf.SetTextColor(0, 51, 102)
	pdf.CellFormat(0, 10, "Overview", "", 1, "L", false, 0, "")
	pdf.Ln(2)

	avg := "n/a"
	if batch.AverageScore != nil {
		avg = fmt.Sprintf("%.1f", *batch.AverageScore)
	}
	low, high := "n/a", "n/a"
	if batch.LowestScore != nil {
		low = fmt.Sprintf("%d", *batch.LowestScore)
	}
	if batch.HighestScore != nil {
		high = fmt.Sprintf("%d", *batch.HighestScore)
	}

	stats := []struct {
		label string
		value string
		color []int
	}{
		{"Profiles Checked", fmt.Sprintf("%d", batch.ProfilesChecked), []int{0, 102, 204}},
		{"Average Score", avg, []int{0, 102, 204}},
		{"Lowest Score", low, []int{220, 53, 69}},
		{"Highest Score", high, []int{52, 199, 89}},
		{"Excellent", fmt.Sprintf("%d", batch.Summary.Excellent), []int{52, 199, 89}},
		{"Good", fmt.Sprintf("%d", batch.Summary.Good), []int{0, 102, 204}},
		{"Fair", fmt.Sprintf("%d", batch.Summary.Fair), []int{255, 204, 0}},
		{"Poor", fmt.Sprintf("%d", batch.Summary.Poor), []int{255, 149, 0}},
		{"Critical", fmt.Sprintf("%d", batch.Summary.Critical), []int{220, 53, 69}},
		{"Unknown", fmt.Sprintf("%d", batch.Summary.Unknown), []int{150, 150, 150}},
	}

	// Display in 2 columns
	colWidth := 85.0
	for i, stat := range stats {
		x := 20.0
		if i%2 == 1 {
			x = 105.0
		}
		pdf.SetXY(x, pdf.GetY())

		pdf.SetFont("Arial", "", 10)
		pdf.SetTextColor(100, 100, 100)
		pdf.CellFormat(50, 7, stat.label+":", "", 0, "L", false, 0, "")

		pdf.SetFont("Arial", "B", 11)
		pdf.SetTextColor(stat.color[0], stat.color[1], stat.color[2])
		pdf.CellFormat(colWidth-50, 7, stat.value, "", 0, "R", false, 0, "")

		if i%2 == 1 {
			pdf.Ln(7)
		}
	}
	pdf.Ln(10)
}

// addResultsTable adds one row per profile
func (e *PDFExporter) addResultsTable(pdf *gofpdf.Fpdf, batch *domain.BatchScoreResult) {
	pdf.SetFont("Arial", "B", 14)
	pdf.SetTextColor(0, 51, 102)
	pdf.CellFormat(0, 10, "Per-Profile Scores", "", 1, "L", false, 0, "")
	pdf.Ln(2)

	if len(batch.Results) == 0 {
		pdf.SetFont("Arial", "I", 10)
		pdf.SetTextColor(100, 100, 100)
		pdf.CellFormat(0, 7, "No profiles scored", "", 1, "L", false, 0, "")
		pdf.Ln(5)
		return
	}

	// Table header
	pdf.SetFillColor(240, 240, 240)
	pdf.SetFont("Arial", "B", 10)
	pdf.SetTextColor(60, 60, 60)
	pdf.CellFormat(50, 8, "Profile", "1", 0, "L", true, 0, "")
	pdf.CellFormat(35, 8, "Platform", "1", 0, "L", true, 0, "")
	pdf.CellFormat(25, 8, "Version", "1", 0, "L", true, 0, "")
	pdf.CellFormat(20, 8, "CVEs", "1", 0, "C", true, 0, "")
	pdf.CellFormat(20, 8, "Score", "1", 0, "C", true, 0, "")
	pdf.CellFormat(25, 8, "Label", "1", 1, "C", true, 0, "")

	pdf.SetFont("Arial", "", 10)
	for i := range batch.Results {
		r := &batch.Results[i]

		score := "n/a"
		label := string(domain.LabelUnknown)
		if r.Score != nil {
			score = fmt.Sprintf("%d", *r.Score)
		}
		if r.Label != nil {
			label = string(*r.Label)
		}

		cr, cg, cb := e.labelColor(r.Label)
		pdf.SetTextColor(60, 60, 60)
		pdf.CellFormat(50, 8, r.ProfileName, "1", 0, "L", false, 0, "")
		pdf.CellFormat(35, 8, r.Platform, "1", 0, "L", false, 0, "")
		pdf.CellFormat(25, 8, r.Version, "1", 0, "L", false, 0, "")
		pdf.CellFormat(20, 8, fmt.Sprintf("%d", r.CVECount), "1", 0, "C", false, 0, "")
		pdf.SetTextColor(cr, cg, cb)
		pdf.CellFormat(20, 8, score, "1", 0, "C", false, 0, "")
		pdf.CellFormat(25, 8, label, "1", 1, "C", false, 0, "")
	}
	pdf.Ln(5)
}

// labelColor returns RGB for a score label
func (e *PDFExporter) labelColor(label *domain.ScoreLabel) (r, g, b int) {
	if label == nil {
		return 150, 150, 150
	}
	switch *label {
	case domain.LabelExcellent:
		return 52, 199, 89 // Green
	case domain.LabelGood:
		return 0, 102, 204 // Blue
	case domain.LabelFair:
		return 255, 204, 0 // Yellow
	case domain.LabelPoor:
		return 255, 149, 0 // Orange
	case domain.LabelCritical:
		return 220, 53, 69 // Red
	default:
		return 150, 150, 150
	}
}

// addFooter adds the report footer
func (e *PDFExporter) addFooter(pdf *gofpdf.Fpdf, batch *domain.BatchScoreResult) {
	pdf.SetY(-25)
	pdf.SetFont("Arial", "I", 8)
	pdf.SetTextColor(150, 150, 150)
	pdf.CellFormat(0, 5, "netposture - device security posture scoring", "", 1, "C", false, 0, "")
	pdf.CellFormat(0, 5, fmt.Sprintf("%d profiles checked", batch.ProfilesChecked), "", 1, "C", false, 0, "")
}
