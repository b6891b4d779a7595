package report

import (
	"context"
	"fmt"
	"time"

	"github.com/cmlabs-hris/attendance-engine/internal/domain/attendance"
	"github.com/cmlabs-hris/attendance-engine/internal/domain/exception"
	"github.com/cmlabs-hris/attendance-engine/internal/domain/report"
	"github.com/cmlabs-hris/attendance-engine/internal/pkg/clock"
	"github.com/shopspring/decimal"
)

type ReportServiceImpl struct {
	exceptionRepo  exception.ExceptionRepository
	attendanceRepo attendance.AttendanceRepository
	clock          clock.Clock
}

func NewReportService(
	exceptionRepo exception.ExceptionRepository,
	attendanceRepo attendance.AttendanceRepository,
	clk clock.Clock,
) report.ReportService {
	return &ReportServiceImpl{
		exceptionRepo:  exceptionRepo,
		attendanceRepo: attendanceRepo,
		clock:          clk,
	}
}

// GenerateOvertimeReport implements report.ReportService.
func (s *ReportServiceImpl) GenerateOvertimeReport(ctx context.Context, req report.Request) (report.Report, error) {
	overtime := exception.TypeOvertimeRequest
	r, err := s.build(ctx, report.TypeOvertime, &overtime, req)
	if err != nil {
		return report.Report{}, err
	}

	total := decimal.Zero
	for i := range r.Records {
		var minutes float64
		if snap := r.Records[i].AttendanceRecord; snap != nil {
			minutes = max(0, snap.TotalWorkMinutes-report.StandardWorkdayMinutes)
		}
		r.Records[i].OvertimeMinutes = &minutes
		total = total.Add(decimal.NewFromFloat(minutes))
	}

	totalMinutes := total.InexactFloat64()
	totalHours := total.Div(decimal.NewFromInt(60)).StringFixed(2)
	r.Summary.TotalOvertimeMinutes = &totalMinutes
	r.Summary.TotalOvertimeHours = &totalHours
	return r, nil
}

// GenerateLatenessReport implements report.ReportService.
func (s *ReportServiceImpl) GenerateLatenessReport(ctx context.Context, req report.Request) (report.Report, error) {
	late := exception.TypeLate
	r, err := s.build(ctx, report.TypeLateness, &late, req)
	if err != nil {
		return report.Report{}, err
	}

	employees := make(map[string]struct{})
	for _, rec := range r.Records {
		employees[rec.EmployeeID] = struct{}{}
	}
	distinct := len(employees)
	r.Summary.DistinctEmployees = &distinct
	return r, nil
}

// GenerateExceptionReport implements report.ReportService.
func (s *ReportServiceImpl) GenerateExceptionReport(ctx context.Context, req report.Request) (report.Report, error) {
	r, err := s.build(ctx, report.TypeException, nil, req)
	if err != nil {
		return report.Report{}, err
	}

	counts := make(map[string]int)
	for _, rec := range r.Records {
		counts[rec.Type]++
	}
	r.Summary.CountsByType = counts
	return r, nil
}

// build lists the matching exceptions and joins each one's attendance
// record in a single batched read.
func (s *ReportServiceImpl) build(ctx context.Context, reportType report.Type, exType *exception.Type, req report.Request) (report.Report, error) {
	filter := exception.Filter{Type: exType}
	if req.EmployeeID != nil {
		filter.EmployeeID = *req.EmployeeID
	}

	r := report.Report{
		ReportType:  reportType,
		EmployeeID:  req.EmployeeID,
		GeneratedAt: s.clock.Now(),
		Records:     []report.Record{},
	}
	if req.StartDate != nil {
		from := clock.StartOfDay(*req.StartDate)
		filter.From = &from
		r.StartDate = formatDate(from)
	}
	if req.EndDate != nil {
		to := clock.EndOfDay(*req.EndDate)
		filter.To = &to
		r.EndDate = formatDate(to)
	}

	items, err := s.exceptionRepo.List(ctx, filter)
	if err != nil {
		return report.Report{}, fmt.Errorf("failed to list time exceptions: %w", err)
	}

	ids := make([]string, 0, len(items))
	for _, ex := range items {
		ids = append(ids, ex.AttendanceRecordID)
	}
	records, err := s.attendanceRepo.GetByIDs(ctx, ids)
	if err != nil {
		return report.Report{}, fmt.Errorf("failed to get attendance records: %w", err)
	}

	for _, ex := range items {
		rec := report.Record{
			ExceptionID: ex.ID,
			EmployeeID:  ex.EmployeeID,
			Type:        string(ex.Type),
			Status:      string(ex.Status),
			Reason:      ex.Reason,
			CreatedAt:   ex.CreatedAt,
		}
		if att, ok := records[ex.AttendanceRecordID]; ok {
			rec.AttendanceRecord = snapshot(att)
		}
		r.Records = append(r.Records, rec)
	}
	r.Summary.TotalRecords = len(r.Records)

	return r, nil
}

func snapshot(att attendance.AttendanceRecord) *report.AttendanceSnapshot {
	punches := make([]attendance.PunchResponse, 0, len(att.Punches))
	for _, p := range att.Punches {
		punches = append(punches, attendance.PunchResponse{Type: string(p.Type), Time: p.Time.UTC().Format(time.RFC3339)})
	}
	return &report.AttendanceSnapshot{
		ID:               att.ID,
		TotalWorkMinutes: att.TotalWorkMinutes,
		HasMissedPunch:   att.HasMissedPunch,
		Punches:          punches,
	}
}

func formatDate(t time.Time) *string {
	s := t.UTC().Format("2006-01-02")
	return &s
}

// ExportReport implements report.ReportService.
func (s *ReportServiceImpl) ExportReport(ctx context.Context, reportType, format string, req report.Request) (report.ExportResult, error) {
	t, err := report.ParseType(reportType)
	if err != nil {
		return report.ExportResult{}, err
	}
	f, err := report.ParseFormat(format)
	if err != nil {
		return report.ExportResult{}, err
	}

	var r report.Report
	switch t {
	case report.TypeOvertime:
		r, err = s.GenerateOvertimeReport(ctx, req)
	case report.TypeLateness:
		r, err = s.GenerateLatenessReport(ctx, req)
	default:
		r, err = s.GenerateExceptionReport(ctx, req)
	}
	if err != nil {
		return report.ExportResult{}, err
	}

	fileName := fmt.Sprintf("%s-report-%s.%s", t, r.GeneratedAt.UTC().Format("20060102-150405"), f)
	switch f {
	case report.FormatCSV:
		body, err := encodeCSV(r)
		return report.ExportResult{ContentType: "text/csv", FileName: fileName, Body: body}, err
	case report.FormatText:
		return report.ExportResult{ContentType: "text/plain; charset=utf-8", FileName: fileName, Body: encodeText(r)}, nil
	case report.FormatXLSX:
		body, err := encodeXLSX(r)
		return report.ExportResult{
			ContentType: "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet",
			FileName:    fileName,
			Body:        body,
		}, err
	default:
		body, err := encodeJSON(r)
		return report.ExportResult{ContentType: "application/json", FileName: fileName, Body: body}, err
	}
}
