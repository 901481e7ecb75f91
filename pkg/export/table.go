// Package export renders dashboard summary tables into the downloadable
// report documents the admin frontend offers (CSV and PDF).
package export

import (
	"errors"
	"fmt"
)

// Table is one report's tabular content: ordered columns with rows aligned
// to them. The dashboard emits one row per service and period bucket.
type Table struct {
	Title   string
	Columns []string
	Rows    [][]string
}

func (t Table) validate() error {
	if len(t.Columns) == 0 {
		return errors.New("report table has no columns")
	}
	for i, row := range t.Rows {
		if len(row) != len(t.Columns) {
			return fmt.Errorf("report row %d has %d cells, want %d", i, len(row), len(t.Columns))
		}
	}
	return nil
}
