package export

import (
	"bytes"
	"encoding/csv"
	"fmt"
)

// CSVExporter encodes a report table as UTF-8 CSV. The title is not part of
// the body; callers carry it in the download filename.
type CSVExporter struct{}

// NewCSVExporter builds a CSV exporter.
func NewCSVExporter() *CSVExporter {
	return &CSVExporter{}
}

// Render encodes the column header followed by one record per row.
func (e *CSVExporter) Render(table Table) ([]byte, error) {
	if err := table.validate(); err != nil {
		return nil, err
	}

	var buf bytes.Buffer
	w := csv.NewWriter(&buf)
	if err := w.Write(table.Columns); err != nil {
		return nil, fmt.Errorf("write report header: %w", err)
	}
	for i, row := range table.Rows {
		if err := w.Write(row); err != nil {
			return nil, fmt.Errorf("write report row %d: %w", i, err)
		}
	}
	w.Flush()
	if err := w.Error(); err != nil {
		return nil, fmt.Errorf("encode report csv: %w", err)
	}
	return buf.Bytes(), nil
}
