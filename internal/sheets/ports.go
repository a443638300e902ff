package sheets

import (
	"context"

	"finboard/internal/export"
)

// Ports for outbound adapters.
type (
	// ReportWriter publishes a report to a spreadsheet, replacing whatever a
	// previous report with the same title left there.
	ReportWriter interface {
		WriteReport(ctx context.Context, r export.Report) (ref string, err error)
	}
)

// TabName is the tab a report sheet is written to. Reports of different
// kinds share a spreadsheet, so the tab carries the report title.
func TabName(r export.Report, s export.Sheet) string {
	return r.Title + " - " + s.Name
}
