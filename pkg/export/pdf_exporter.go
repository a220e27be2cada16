package export

import (
	"bytes"
	"fmt"

	"github.com/jung-kurt/gofpdf"
)

// Topic cells carry free text, so that column takes the slack left by the
// fixed-width ones.
var scheduleColWidths = []float64{24, 26, 66, 24, 26, 24}

// PDFExporter renders a schedule into a tabular PDF.
type PDFExporter struct{}

// NewPDFExporter constructs a PDF exporter.
func NewPDFExporter() *PDFExporter {
	return &PDFExporter{}
}

// Render creates a PDF document with the plan title, its summary line and
// the session table.
func (e *PDFExporter) Render(schedule Schedule) ([]byte, error) {
	pdf := gofpdf.New("P", "mm", "A4", "")
	pdf.SetMargins(10, 15, 10)
	pdf.AddPage()

	if schedule.Title != "" {
		pdf.SetFont("Arial", "B", 14)
		pdf.CellFormat(0, 10, schedule.Title, "", 1, "C", false, 0, "")
	}
	if schedule.Summary != "" {
		pdf.SetFont("Arial", "I", 10)
		pdf.CellFormat(0, 8, schedule.Summary, "", 1, "C", false, 0, "")
	}
	pdf.Ln(4)

	pdf.SetFont("Arial", "B", 10)
	for i, header := range scheduleHeaders {
		pdf.CellFormat(scheduleColWidths[i], 8, header, "1", 0, "C", false, 0, "")
	}
	pdf.Ln(-1)

	pdf.SetFont("Arial", "", 9)
	for _, row := range schedule.Rows {
		for i, value := range row.record() {
			pdf.CellFormat(scheduleColWidths[i], 7, value, "1", 0, "", false, 0, "")
		}
		pdf.Ln(-1)
	}

	buf := &bytes.Buffer{}
	if err := pdf.Output(buf); err != nil {
		return nil, fmt.Errorf("render pdf: %w", err)
	}
	return buf.Bytes(), nil
}
