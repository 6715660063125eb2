package export

import (
	"bytes"
	"fmt"
	"strings"
	"time"

	"github.com/jung-kurt/gofpdf"
	"github.com/mindsync/server/internal/domain"
)

// RenderPDF renders a mood export: a header block, a summary block, then
// one line group per entry.
func RenderPDF(entries []*domain.MoodEntry, start, end *time.Time) ([]byte, error) {
	pdf := gofpdf.New("P", "mm", "A4", "")
	pdf.SetMargins(15, 15, 15)
	pdf.AddPage()

	pdf.SetFont("Helvetica", "BU", 16)
	pdf.CellFormat(0, 10, "MindSync Mood Export", "", 1, "L", false, 0, "")
	pdf.Ln(2)

	pdf.SetFont("Helvetica", "", 9)
	pdf.CellFormat(0, 5, fmt.Sprintf("Generated: %s", time.Now().Format("2006-01-02 15:04:05")), "", 1, "L", false, 0, "")
	if start != nil || end != nil {
		pdf.CellFormat(0, 5, fmt.Sprintf("Range (entry date): %s to %s", formatBound(start), formatBound(end)), "", 1, "L", false, 0, "")
	}
	pdf.Ln(4)

	var sum int
	for _, e := range entries {
		sum += e.Rating
	}
	avg := float64(sum) / float64(len(entries))

	pdf.SetFont("Helvetica", "BU", 11)
	pdf.CellFormat(0, 7, "Summary", "", 1, "L", false, 0, "")
	pdf.SetFont("Helvetica", "", 9)
	pdf.CellFormat(0, 5, fmt.Sprintf("Total entries: %d", len(entries)), "", 1, "L", false, 0, "")
	pdf.CellFormat(0, 5, fmt.Sprintf("Average rating: %.2f/10", avg), "", 1, "L", false, 0, "")
	pdf.Ln(4)

	pdf.SetFont("Helvetica", "BU", 11)
	pdf.CellFormat(0, 7, "Entries", "", 1, "L", false, 0, "")
	pdf.Ln(1)

	for i, entry := range entries {
		pdf.SetFont("Helvetica", "B", 9)
		pdf.CellFormat(0, 5, fmt.Sprintf("%d. %s - Rating: %d/10", i+1, entry.EntryDate.Format("2006-01-02"), entry.Rating), "", 1, "L", false, 0, "")
		pdf.SetFont("Helvetica", "", 9)
		if len(entry.Tags) > 0 {
			pdf.CellFormat(0, 5, fmt.Sprintf("Tags: %s", strings.Join(entry.Tags, ", ")), "", 1, "L", false, 0, "")
		}
		if entry.Note != "" {
			pdf.MultiCell(0, 5, fmt.Sprintf("Note: %s", entry.Note), "", "L", false)
		}
		pdf.CellFormat(0, 5, fmt.Sprintf("Created: %s", entry.CreatedAt.UTC().Format(time.RFC3339)), "", 1, "L", false, 0, "")
		pdf.Ln(2)
	}

	var buf bytes.Buffer
	if err := pdf.Output(&buf); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

func formatBound(t *time.Time) string {
	if t == nil {
		return "any"
	}
	return t.Format("2006-01-02")
}
