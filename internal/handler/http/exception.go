package http

import (
	"context"
	"encoding/json"
	"net/http"

	"github.com/cmlabs-hris/attendance-engine/internal/domain/exception"
	"github.com/cmlabs-hris/attendance-engine/internal/handler/http/middleware"
	"github.com/cmlabs-hris/attendance-engine/internal/handler/http/response"
	"github.com/cmlabs-hris/attendance-engine/internal/pkg/validator"
	"github.com/go-chi/chi/v5"
)

type ExceptionHandler interface {
	Create(w http.ResponseWriter, r *http.Request)
	List(w http.ResponseWriter, r *http.Request)
	Get(w http.ResponseWriter, r *http.Request)
	MarkPending(w http.ResponseWriter, r *http.Request)
	Approve(w http.ResponseWriter, r *http.Request)
	Reject(w http.ResponseWriter, r *http.Request)
	Escalate(w http.ResponseWriter, r *http.Request)
	Resolve(w http.ResponseWriter, r *http.Request)
	DetectMissedPunch(w http.ResponseWriter, r *http.Request)
	MonitorLateness(w http.ResponseWriter, r *http.Request)
	TriggerDisciplinary(w http.ResponseWriter, r *http.Request)
}

type exceptionHandlerImpl struct {
	exceptionService  exception.ExceptionService
	latenessMonitor   exception.LatenessMonitor
	latenessThreshold int
}

func NewExceptionHandler(exceptionService exception.ExceptionService, latenessMonitor exception.LatenessMonitor, latenessThreshold int) ExceptionHandler {
	return &exceptionHandlerImpl{
		exceptionService:  exceptionService,
		latenessMonitor:   latenessMonitor,
		latenessThreshold: latenessThreshold,
	}
}

// Create implements ExceptionHandler.
func (h *exceptionHandlerImpl) Create(w http.ResponseWriter, r *http.Request) {
	var req exception.CreateRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		response.BadRequest(w, "Invalid request format", nil)
		return
	}

	ex, err := h.exceptionService.Create(r.Context(), req, middleware.ActorID(r.Context()))
	if err != nil {
		response.HandleError(w, err)
		return
	}

	response.Created(w, "Time exception created", exception.ToResponse(ex))
}

// List implements ExceptionHandler.
func (h *exceptionHandlerImpl) List(w http.ResponseWriter, r *http.Request) {
	req := exception.ListRequest{
		EmployeeID: r.URL.Query().Get("employee_id"),
		Status:     r.URL.Query().Get("status"),
	}

	items, err := h.exceptionService.List(r.Context(), req)
	if err != nil {
		response.HandleError(w, err)
		return
	}

	data := make([]exception.Response, 0, len(items))
	for _, ex := range items {
		data = append(data, exception.ToResponse(ex))
	}
	response.SuccessWithMeta(w, data, &response.Meta{TotalItems: int64(len(data))})
}

// Get implements ExceptionHandler.
func (h *exceptionHandlerImpl) Get(w http.ResponseWriter, r *http.Request) {
	ex, err := h.exceptionService.Get(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		response.HandleError(w, err)
		return
	}
	response.Success(w, exception.ToResponse(ex))
}

// MarkPending implements ExceptionHandler.
func (h *exceptionHandlerImpl) MarkPending(w http.ResponseWriter, r *http.Request) {
	var req struct {
		AssignedTo *string `json:"assigned_to"`
	}
	if err := decodeOptionalJSON(r, &req); err != nil {
		response.BadRequest(w, "Invalid request format", nil)
		return
	}

	ex, err := h.exceptionService.MarkPending(r.Context(), chi.URLParam(r, "id"), req.AssignedTo, middleware.ActorID(r.Context()))
	if err != nil {
		response.HandleError(w, err)
		return
	}
	response.SuccessWithMessage(w, "Time exception pending", exception.ToResponse(ex))
}

func (h *exceptionHandlerImpl) decide(w http.ResponseWriter, r *http.Request, message string, fn func(ctx context.Context, id, actorID string) (exception.TimeException, error)) {
	ex, err := fn(r.Context(), chi.URLParam(r, "id"), middleware.ActorID(r.Context()))
	if err != nil {
		response.HandleError(w, err)
		return
	}
	response.SuccessWithMessage(w, message, exception.ToResponse(ex))
}

// Approve implements ExceptionHandler.
func (h *exceptionHandlerImpl) Approve(w http.ResponseWriter, r *http.Request) {
	h.decide(w, r, "Time exception approved", h.exceptionService.Approve)
}

// Reject implements ExceptionHandler.
func (h *exceptionHandlerImpl) Reject(w http.ResponseWriter, r *http.Request) {
	h.decide(w, r, "Time exception rejected", h.exceptionService.Reject)
}

// Escalate implements ExceptionHandler.
func (h *exceptionHandlerImpl) Escalate(w http.ResponseWriter, r *http.Request) {
	h.decide(w, r, "Time exception escalated", h.exceptionService.Escalate)
}

// Resolve implements ExceptionHandler.
func (h *exceptionHandlerImpl) Resolve(w http.ResponseWriter, r *http.Request) {
	h.decide(w, r, "Time exception resolved", h.exceptionService.Resolve)
}

// DetectMissedPunch implements ExceptionHandler.
func (h *exceptionHandlerImpl) DetectMissedPunch(w http.ResponseWriter, r *http.Request) {
	ex, err := h.exceptionService.DetectMissedPunch(r.Context(), chi.URLParam(r, "id"), middleware.ActorID(r.Context()))
	if err != nil {
		response.HandleError(w, err)
		return
	}
	response.SuccessWithMessage(w, "Missed punch exception raised", exception.ToResponse(ex))
}

// MonitorLateness implements ExceptionHandler. The threshold falls back to
// the configured default.
func (h *exceptionHandlerImpl) MonitorLateness(w http.ResponseWriter, r *http.Request) {
	var req struct {
		EmployeeID string `json:"employee_id"`
		Threshold  *int   `json:"threshold"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		response.BadRequest(w, "Invalid request format", nil)
		return
	}
	if validator.IsEmpty(req.EmployeeID) {
		response.HandleError(w, validator.ValidationErrors{{Field: "employee_id", Message: "employee_id is required"}})
		return
	}

	threshold := h.latenessThreshold
	if req.Threshold != nil {
		threshold = *req.Threshold
	}

	result, err := h.latenessMonitor.MonitorRepeatedLateness(r.Context(), req.EmployeeID, threshold, middleware.ActorID(r.Context()))
	if err != nil {
		response.HandleError(w, err)
		return
	}
	response.Success(w, result)
}

// TriggerDisciplinary implements ExceptionHandler.
func (h *exceptionHandlerImpl) TriggerDisciplinary(w http.ResponseWriter, r *http.Request) {
	var req struct {
		EmployeeID string `json:"employee_id"`
		Action     string `json:"action"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		response.BadRequest(w, "Invalid request format", nil)
		return
	}

	var errs validator.ValidationErrors
	if validator.IsEmpty(req.EmployeeID) {
		errs = append(errs, validator.ValidationError{Field: "employee_id", Message: "employee_id is required"})
	}
	if validator.IsEmpty(req.Action) {
		errs = append(errs, validator.ValidationError{Field: "action", Message: "action is required"})
	}
	if len(errs) > 0 {
		response.HandleError(w, errs)
		return
	}

	if err := h.latenessMonitor.TriggerLatenessDisciplinary(r.Context(), req.EmployeeID, req.Action, middleware.ActorID(r.Context())); err != nil {
		response.HandleError(w, err)
		return
	}
	response.SuccessWithMessage(w, "Disciplinary action recorded", nil)
}
