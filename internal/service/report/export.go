package report

import (
	"bytes"
	"encoding/csv"
	"encoding/json"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/cmlabs-hris/attendance-engine/internal/domain/report"
	"github.com/xuri/excelize/v2"
)

var recordHeader = []string{
	"exception_id",
	"employee_id",
	"type",
	"status",
	"reason",
	"created_at",
	"attendance_record",
	"overtime_minutes",
}

func encodeJSON(r report.Report) ([]byte, error) {
	body, err := json.MarshalIndent(r, "", "  ")
	if err != nil {
		return nil, fmt.Errorf("failed to encode report: %w", err)
	}
	return body, nil
}

func formatFloat(f float64) string {
	return strconv.FormatFloat(f, 'f', -1, 64)
}

// inline renders nested values as compact JSON for a single cell.
func inline(v any) string {
	b, err := json.Marshal(v)
	if err != nil {
		return ""
	}
	return string(b)
}

// summaryRows flattens the summary into ordered key/value pairs, leaving
// out fields the report type does not set.
func summaryRows(r report.Report) [][2]string {
	rows := [][2]string{
		{"report_type", string(r.ReportType)},
		{"employee_id", deref(r.EmployeeID)},
		{"start_date", deref(r.StartDate)},
		{"end_date", deref(r.EndDate)},
		{"generated_at", r.GeneratedAt.UTC().Format(time.RFC3339)},
		{"total_records", strconv.Itoa(r.Summary.TotalRecords)},
	}
	if r.Summary.TotalOvertimeMinutes != nil {
		rows = append(rows, [2]string{"total_overtime_minutes", formatFloat(*r.Summary.TotalOvertimeMinutes)})
	}
	if r.Summary.TotalOvertimeHours != nil {
		rows = append(rows, [2]string{"total_overtime_hours", *r.Summary.TotalOvertimeHours})
	}
	if r.Summary.DistinctEmployees != nil {
		rows = append(rows, [2]string{"distinct_employees", strconv.Itoa(*r.Summary.DistinctEmployees)})
	}
	if r.Summary.CountsByType != nil {
		rows = append(rows, [2]string{"counts_by_type", inline(r.Summary.CountsByType)})
	}
	return rows
}

func recordRow(rec report.Record) []string {
	attendanceCell := ""
	if rec.AttendanceRecord != nil {
		attendanceCell = inline(rec.AttendanceRecord)
	}
	overtimeCell := ""
	if rec.OvertimeMinutes != nil {
		overtimeCell = formatFloat(*rec.OvertimeMinutes)
	}
	return []string{
		rec.ExceptionID,
		rec.EmployeeID,
		rec.Type,
		rec.Status,
		rec.Reason,
		rec.CreatedAt.UTC().Format(time.RFC3339),
		attendanceCell,
		overtimeCell,
	}
}

func deref(s *string) string {
	if s == nil {
		return ""
	}
	return *s
}

// encodeCSV writes a "Summary" block of key,value rows, a blank line, then
// a "Records" block with a header row.
func encodeCSV(r report.Report) ([]byte, error) {
	var buf bytes.Buffer
	w := csv.NewWriter(&buf)

	rows := [][]string{{"Summary"}}
	for _, kv := range summaryRows(r) {
		rows = append(rows, []string{kv[0], kv[1]})
	}
	rows = append(rows, []string{}, []string{"Records"}, recordHeader)
	for _, rec := range r.Records {
		rows = append(rows, recordRow(rec))
	}

	if err := w.WriteAll(rows); err != nil {
		return nil, fmt.Errorf("failed to encode report as csv: %w", err)
	}
	return buf.Bytes(), nil
}

func encodeText(r report.Report) []byte {
	var b strings.Builder

	fmt.Fprintf(&b, "%s report\n", strings.ToUpper(string(r.ReportType)))
	b.WriteString("Summary\n")
	for _, kv := range summaryRows(r) {
		if kv[0] == "report_type" || kv[1] == "" {
			continue
		}
		fmt.Fprintf(&b, "  %s: %s\n", kv[0], kv[1])
	}

	fmt.Fprintf(&b, "Records (%d)\n", len(r.Records))
	for i, rec := range r.Records {
		fmt.Fprintf(&b, "  [%d] %s\n", i+1, rec.ExceptionID)
		fmt.Fprintf(&b, "    employee_id: %s\n", rec.EmployeeID)
		fmt.Fprintf(&b, "    type: %s\n", rec.Type)
		fmt.Fprintf(&b, "    status: %s\n", rec.Status)
		if rec.Reason != "" {
			fmt.Fprintf(&b, "    reason: %s\n", rec.Reason)
		}
		fmt.Fprintf(&b, "    created_at: %s\n", rec.CreatedAt.UTC().Format(time.RFC3339))
		if rec.OvertimeMinutes != nil {
			fmt.Fprintf(&b, "    overtime_minutes: %s\n", formatFloat(*rec.OvertimeMinutes))
		}
		if att := rec.AttendanceRecord; att != nil {
			fmt.Fprintf(&b, "    attendance_record: %s\n", att.ID)
			fmt.Fprintf(&b, "      total_work_minutes: %s\n", formatFloat(att.TotalWorkMinutes))
			fmt.Fprintf(&b, "      has_missed_punch: %t\n", att.HasMissedPunch)
			for _, p := range att.Punches {
				fmt.Fprintf(&b, "      %-3s %s\n", p.Type, p.Time)
			}
		}
	}
	return []byte(b.String())
}

const (
	summarySheet = "Summary"
	recordsSheet = "Records"
)

func setRow(f *excelize.File, sheet string, row int, values []string) error {
	for i, v := range values {
		cell, err := excelize.CoordinatesToCellName(i+1, row)
		if err != nil {
			return err
		}
		if err := f.SetCellValue(sheet, cell, v); err != nil {
			return err
		}
	}
	return nil
}

// encodeXLSX writes the same two blocks as encodeCSV, one per sheet.
func encodeXLSX(r report.Report) ([]byte, error) {
	f := excelize.NewFile()
	defer f.Close()

	if err := f.SetSheetName("Sheet1", summarySheet); err != nil {
		return nil, fmt.Errorf("failed to create summary sheet: %w", err)
	}
	if _, err := f.NewSheet(recordsSheet); err != nil {
		return nil, fmt.Errorf("failed to create records sheet: %w", err)
	}

	for i, kv := range summaryRows(r) {
		if err := setRow(f, summarySheet, i+1, kv[:]); err != nil {
			return nil, fmt.Errorf("failed to write summary: %w", err)
		}
	}

	if err := setRow(f, recordsSheet, 1, recordHeader); err != nil {
		return nil, fmt.Errorf("failed to write records header: %w", err)
	}
	for i, rec := range r.Records {
		if err := setRow(f, recordsSheet, i+2, recordRow(rec)); err != nil {
			return nil, fmt.Errorf("failed to write record: %w", err)
		}
	}

	buf, err := f.WriteToBuffer()
	if err != nil {
		return nil, fmt.Errorf("failed to encode report as xlsx: %w", err)
	}
	return buf.Bytes(), nil
}
