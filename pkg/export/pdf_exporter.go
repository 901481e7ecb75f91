package export

import (
	"bytes"
	"fmt"
	"strings"

	"github.com/jung-kurt/gofpdf"
)

// PDFExporter draws a report table with gofpdf. The layout is fixed for the
// dashboard's small summary tables: A4 portrait, equal column widths, the
// title centered above a shaded header row.
type PDFExporter struct{}

// NewPDFExporter builds a PDF exporter.
func NewPDFExporter() *PDFExporter {
	return &PDFExporter{}
}

// Render produces the PDF document bytes for the table.
func (e *PDFExporter) Render(table Table) ([]byte, error) {
	if err := table.validate(); err != nil {
		return nil, err
	}

	pdf := gofpdf.New("P", "mm", "A4", "")
	pdf.SetMargins(10, 15, 10)
	pdf.AddPage()

	if table.Title != "" {
		pdf.SetFont("Arial", "B", 14)
		pdf.CellFormat(0, 10, strings.ToUpper(table.Title), "", 1, "C", false, 0, "")
		pdf.Ln(4)
	}

	width := 190.0 / float64(len(table.Columns))

	pdf.SetFont("Arial", "B", 10)
	pdf.SetFillColor(230, 230, 230)
	for _, col := range table.Columns {
		pdf.CellFormat(width, 8, col, "1", 0, "C", true, 0, "")
	}
	pdf.Ln(-1)

	pdf.SetFont("Arial", "", 9)
	for _, row := range table.Rows {
		for _, cell := range row {
			pdf.CellFormat(width, 7, cell, "1", 0, "", false, 0, "")
		}
		pdf.Ln(-1)
	}

	var buf bytes.Buffer
	if err := pdf.Output(&buf); err != nil {
		return nil, fmt.Errorf("render report pdf: %w", err)
	}
	return buf.Bytes(), nil
}
