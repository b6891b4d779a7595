package report

import (
	"strings"

	"github.com/cmlabs-hris/attendance-engine/internal/pkg/validator"
)

// Query is the transport form of a report request.
type Query struct {
	EmployeeID string `json:"employee_id"`
	StartDate  string `json:"start_date"`
	EndDate    string `json:"end_date"`
}

func (q Query) ToRequest() (Request, error) {
	var (
		errs validator.ValidationErrors
		req  Request
	)

	if !validator.IsEmpty(q.EmployeeID) {
		id := strings.TrimSpace(q.EmployeeID)
		req.EmployeeID = &id
	}
	if q.StartDate != "" {
		d, ok := validator.IsValidDate(q.StartDate)
		if !ok {
			errs = append(errs, validator.ValidationError{Field: "start_date", Message: "start_date must be YYYY-MM-DD"})
		} else {
			req.StartDate = &d
		}
	}
	if q.EndDate != "" {
		d, ok := validator.IsValidDate(q.EndDate)
		if !ok {
			errs = append(errs, validator.ValidationError{Field: "end_date", Message: "end_date must be YYYY-MM-DD"})
		} else {
			req.EndDate = &d
		}
	}
	if req.StartDate != nil && req.EndDate != nil && req.EndDate.Before(*req.StartDate) {
		errs = append(errs, validator.ValidationError{Field: "end_date", Message: "end_date must not be before start_date"})
	}

	if len(errs) > 0 {
		return Request{}, errs
	}
	return req, nil
}

// ParseType normalises a report type name.
func ParseType(s string) (Type, error) {
	switch Type(strings.ToLower(strings.TrimSpace(s))) {
	case TypeOvertime:
		return TypeOvertime, nil
	case TypeLateness:
		return TypeLateness, nil
	case TypeException, "exceptions":
		return TypeException, nil
	}
	return "", ErrInvalidReportType
}

// ParseFormat normalises an export format; empty means json.
func ParseFormat(s string) (Format, error) {
	switch Format(strings.ToLower(strings.TrimSpace(s))) {
	case "", FormatJSON:
		return FormatJSON, nil
	case FormatCSV:
		return FormatCSV, nil
	case FormatText, "txt":
		return FormatText, nil
	case FormatXLSX, "excel":
		return FormatXLSX, nil
	}
	return "", ErrInvalidFormat
}
