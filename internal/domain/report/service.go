package report

import "context"

type ReportService interface {
	GenerateOvertimeReport(ctx context.Context, req Request) (Report, error)
	GenerateLatenessReport(ctx context.Context, req Request) (Report, error)
	GenerateExceptionReport(ctx context.Context, req Request) (Report, error)

	// ExportReport dispatches to the generator for reportType and serializes
	// the result. Unknown types fail with ErrInvalidReportType, unknown
	// formats with ErrInvalidFormat.
	ExportReport(ctx context.Context, reportType, format string, req Request) (ExportResult, error)
}
