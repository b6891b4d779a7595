package http

import (
	"net/http"

	"github.com/cmlabs-hris/attendance-engine/internal/domain/report"
	"github.com/cmlabs-hris/attendance-engine/internal/handler/http/response"
	"github.com/go-chi/chi/v5"
)

type ReportHandler interface {
	Generate(w http.ResponseWriter, r *http.Request)
	Export(w http.ResponseWriter, r *http.Request)
}

type reportHandlerImpl struct {
	reportService report.ReportService
}

func NewReportHandler(reportService report.ReportService) ReportHandler {
	return &reportHandlerImpl{
		reportService: reportService,
	}
}

func reportRequest(r *http.Request) (report.Request, error) {
	q := r.URL.Query()
	query := report.Query{
		EmployeeID: q.Get("employee_id"),
		StartDate:  q.Get("start_date"),
		EndDate:    q.Get("end_date"),
	}
	return query.ToRequest()
}

// Generate implements ReportHandler.
func (h *reportHandlerImpl) Generate(w http.ResponseWriter, r *http.Request) {
	reportType, err := report.ParseType(chi.URLParam(r, "type"))
	if err != nil {
		response.HandleError(w, err)
		return
	}

	req, err := reportRequest(r)
	if err != nil {
		response.HandleError(w, err)
		return
	}

	var result report.Report
	switch reportType {
	case report.TypeOvertime:
		result, err = h.reportService.GenerateOvertimeReport(r.Context(), req)
	case report.TypeLateness:
		result, err = h.reportService.GenerateLatenessReport(r.Context(), req)
	default:
		result, err = h.reportService.GenerateExceptionReport(r.Context(), req)
	}
	if err != nil {
		response.HandleError(w, err)
		return
	}

	response.Success(w, result)
}

// Export implements ReportHandler.
func (h *reportHandlerImpl) Export(w http.ResponseWriter, r *http.Request) {
	req, err := reportRequest(r)
	if err != nil {
		response.HandleError(w, err)
		return
	}

	result, err := h.reportService.ExportReport(r.Context(), chi.URLParam(r, "type"), r.URL.Query().Get("format"), req)
	if err != nil {
		response.HandleError(w, err)
		return
	}

	response.File(w, result.ContentType, result.FileName, result.Body)
}
