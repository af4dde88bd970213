// Package engine orchestrates dpb operations. It delegates identity,
// lookup, rendering and AWS access to the packages that own them.
package engine

// ReportFormat controls the CLI output format.
type ReportFormat string

const (
	ReportFormatJSON  ReportFormat = "json"
	ReportFormatTable ReportFormat = "table"
)
