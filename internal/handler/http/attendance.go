package http

import (
	"encoding/json"
	"net/http"

	"github.com/cmlabs-hris/attendance-engine/internal/domain/attendance"
	"github.com/cmlabs-hris/attendance-engine/internal/handler/http/middleware"
	"github.com/cmlabs-hris/attendance-engine/internal/handler/http/response"
	"github.com/cmlabs-hris/attendance-engine/internal/pkg/clock"
	"github.com/go-chi/chi/v5"
)

type AttendanceHandler interface {
	ClockIn(w http.ResponseWriter, r *http.Request)
	ClockOut(w http.ResponseWriter, r *http.Request)
	RecordPunches(w http.ResponseWriter, r *http.Request)
	List(w http.ResponseWriter, r *http.Request)
	Summary(w http.ResponseWriter, r *http.Request)
	Get(w http.ResponseWriter, r *http.Request)
	Round(w http.ResponseWriter, r *http.Request)
	ReplacePunches(w http.ResponseWriter, r *http.Request)
	Finalise(w http.ResponseWriter, r *http.Request)
}

type attendanceHandlerImpl struct {
	attendanceService attendance.AttendanceService
	clock             clock.Clock
}

func NewAttendanceHandler(attendanceService attendance.AttendanceService, clk clock.Clock) AttendanceHandler {
	return &attendanceHandlerImpl{
		attendanceService: attendanceService,
		clock:             clk,
	}
}

// ClockIn implements AttendanceHandler.
func (h *attendanceHandlerImpl) ClockIn(w http.ResponseWriter, r *http.Request) {
	var req attendance.ClockRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		response.BadRequest(w, "Invalid request format", nil)
		return
	}

	if err := req.Validate(); err != nil {
		response.HandleError(w, err)
		return
	}

	result, err := h.attendanceService.ClockIn(r.Context(), req.EmployeeID, middleware.ActorID(r.Context()))
	if err != nil {
		response.HandleError(w, err)
		return
	}

	response.Created(w, "Clock in successful", attendance.ToResponse(result))
}

// ClockOut implements AttendanceHandler.
func (h *attendanceHandlerImpl) ClockOut(w http.ResponseWriter, r *http.Request) {
	var req attendance.ClockRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		response.BadRequest(w, "Invalid request format", nil)
		return
	}

	if err := req.Validate(); err != nil {
		response.HandleError(w, err)
		return
	}

	result, err := h.attendanceService.ClockOut(r.Context(), req.EmployeeID, middleware.ActorID(r.Context()))
	if err != nil {
		response.HandleError(w, err)
		return
	}

	response.SuccessWithMessage(w, "Clock out successful", attendance.ToResponse(result))
}

// RecordPunches implements AttendanceHandler.
func (h *attendanceHandlerImpl) RecordPunches(w http.ResponseWriter, r *http.Request) {
	var req attendance.RecordPunchRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		response.BadRequest(w, "Invalid request format", nil)
		return
	}

	// Validation happens in the service so the parsed punches stay attached
	result, err := h.attendanceService.RecordPunchWithMetadata(r.Context(), req, middleware.ActorID(r.Context()))
	if err != nil {
		response.HandleError(w, err)
		return
	}

	response.Created(w, "Punches recorded", attendance.ToResponse(result))
}

func (h *attendanceHandlerImpl) periodFilter(r *http.Request) attendance.PeriodFilter {
	q := r.URL.Query()
	return attendance.PeriodFilter{
		EmployeeID: q.Get("employee_id"),
		StartDate:  q.Get("start_date"),
		EndDate:    q.Get("end_date"),
	}
}

// List implements AttendanceHandler.
func (h *attendanceHandlerImpl) List(w http.ResponseWriter, r *http.Request) {
	filter := h.periodFilter(r)
	from, to, err := filter.Bounds(h.clock.Now())
	if err != nil {
		response.HandleError(w, err)
		return
	}

	records, err := h.attendanceService.ListRecords(r.Context(), filter.EmployeeID, from, to)
	if err != nil {
		response.HandleError(w, err)
		return
	}

	data := make([]attendance.AttendanceResponse, 0, len(records))
	for _, rec := range records {
		data = append(data, attendance.ToResponse(rec))
	}
	response.SuccessWithMeta(w, data, &response.Meta{TotalItems: int64(len(data))})
}

// Summary implements AttendanceHandler.
func (h *attendanceHandlerImpl) Summary(w http.ResponseWriter, r *http.Request) {
	filter := h.periodFilter(r)
	from, to, err := filter.Bounds(h.clock.Now())
	if err != nil {
		response.HandleError(w, err)
		return
	}

	summary, err := h.attendanceService.PeriodSummary(r.Context(), filter.EmployeeID, from, to)
	if err != nil {
		response.HandleError(w, err)
		return
	}

	response.Success(w, summary)
}

// Get implements AttendanceHandler.
func (h *attendanceHandlerImpl) Get(w http.ResponseWriter, r *http.Request) {
	rec, err := h.attendanceService.GetRecord(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		response.HandleError(w, err)
		return
	}

	response.Success(w, attendance.ToResponse(rec))
}

// Round implements AttendanceHandler.
func (h *attendanceHandlerImpl) Round(w http.ResponseWriter, r *http.Request) {
	var req attendance.RoundRecordRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		response.BadRequest(w, "Invalid request format", nil)
		return
	}
	req.ID = chi.URLParam(r, "id")

	rec, err := h.attendanceService.RoundRecord(r.Context(), req, middleware.ActorID(r.Context()))
	if err != nil {
		response.HandleError(w, err)
		return
	}

	response.SuccessWithMessage(w, "Worked minutes rounded", attendance.ToResponse(rec))
}

// ReplacePunches implements AttendanceHandler.
func (h *attendanceHandlerImpl) ReplacePunches(w http.ResponseWriter, r *http.Request) {
	var req attendance.ReplacePunchesRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		response.BadRequest(w, "Invalid request format", nil)
		return
	}

	if err := req.Validate(); err != nil {
		response.HandleError(w, err)
		return
	}

	rec, err := h.attendanceService.ReplacePunches(r.Context(), chi.URLParam(r, "id"), req.ParsedPunches(), middleware.ActorID(r.Context()))
	if err != nil {
		response.HandleError(w, err)
		return
	}

	response.SuccessWithMessage(w, "Punches replaced", attendance.ToResponse(rec))
}

// Finalise implements AttendanceHandler.
func (h *attendanceHandlerImpl) Finalise(w http.ResponseWriter, r *http.Request) {
	var req attendance.FinaliseRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		response.BadRequest(w, "Invalid request format", nil)
		return
	}

	if err := req.Validate(); err != nil {
		response.HandleError(w, err)
		return
	}

	records, err := h.attendanceService.FinaliseForPayroll(r.Context(), req.IDs, middleware.ActorID(r.Context()))
	if err != nil {
		response.HandleError(w, err)
		return
	}

	data := make([]attendance.AttendanceResponse, 0, len(records))
	for _, rec := range records {
		data = append(data, attendance.ToResponse(rec))
	}
	response.SuccessWithMessage(w, "Records finalised for payroll", data)
}
