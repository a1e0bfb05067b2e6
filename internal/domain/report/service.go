package report

import (
	"context"

	"github.com/cmlabs-hris/timeclock-go/internal/domain/timeentry"
)

type ReportService interface {
	Monthly(ctx context.Context, req MonthlyReportRequest) (MonthlyReportResponse, error)
	ExportMonthly(ctx context.Context, req MonthlyReportRequest) (ExportFile, error)

	EmployeeDetail(ctx context.Context, req EmployeeReportRequest) (EmployeeDetailResponse, error)
	ExportEmployeeDetail(ctx context.Context, req EmployeeReportRequest) (ExportFile, error)

	// Unclosed lists open entries dated before today
	Unclosed(ctx context.Context) ([]UnclosedEntryResponse, error)
	CloseUnclosed(ctx context.Context, req CloseUnclosedRequest) (timeentry.TimeEntryResponse, error)

	AtWork(ctx context.Context) ([]AtWorkResponse, error)

	// CalculateWage prices hypothetical hours without reading any records
	CalculateWage(ctx context.Context, req WageCalculatorRequest) (WageCalculatorResponse, error)
}
