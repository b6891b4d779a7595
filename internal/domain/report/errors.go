package report

import "errors"

var (
	ErrInvalidReportType = errors.New("invalid report type")
	ErrInvalidFormat     = errors.New("invalid export format")
)
