package http

import (
	"encoding/json"
	"net/http"

	"github.com/cmlabs-hris/attendance-engine/internal/domain/correction"
	"github.com/cmlabs-hris/attendance-engine/internal/handler/http/middleware"
	"github.com/cmlabs-hris/attendance-engine/internal/handler/http/response"
	"github.com/go-chi/chi/v5"
)

type CorrectionHandler interface {
	Submit(w http.ResponseWriter, r *http.Request)
	List(w http.ResponseWriter, r *http.Request)
	Get(w http.ResponseWriter, r *http.Request)
	StartReview(w http.ResponseWriter, r *http.Request)
	Approve(w http.ResponseWriter, r *http.Request)
	Reject(w http.ResponseWriter, r *http.Request)
	Escalate(w http.ResponseWriter, r *http.Request)
}

type correctionHandlerImpl struct {
	correctionService correction.CorrectionService
}

func NewCorrectionHandler(correctionService correction.CorrectionService) CorrectionHandler {
	return &correctionHandlerImpl{
		correctionService: correctionService,
	}
}

// Submit implements CorrectionHandler.
func (h *correctionHandlerImpl) Submit(w http.ResponseWriter, r *http.Request) {
	var req correction.SubmitRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		response.BadRequest(w, "Invalid request format", nil)
		return
	}

	c, err := h.correctionService.Submit(r.Context(), req, middleware.ActorID(r.Context()))
	if err != nil {
		response.HandleError(w, err)
		return
	}

	response.Created(w, "Correction request submitted", correction.ToResponse(c))
}

// List implements CorrectionHandler.
func (h *correctionHandlerImpl) List(w http.ResponseWriter, r *http.Request) {
	req := correction.ListRequest{
		EmployeeID: r.URL.Query().Get("employee_id"),
		Status:     r.URL.Query().Get("status"),
	}

	items, err := h.correctionService.List(r.Context(), req)
	if err != nil {
		response.HandleError(w, err)
		return
	}

	data := make([]correction.Response, 0, len(items))
	for _, c := range items {
		data = append(data, correction.ToResponse(c))
	}
	response.SuccessWithMeta(w, data, &response.Meta{TotalItems: int64(len(data))})
}

// Get implements CorrectionHandler.
func (h *correctionHandlerImpl) Get(w http.ResponseWriter, r *http.Request) {
	c, err := h.correctionService.Get(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		response.HandleError(w, err)
		return
	}
	response.Success(w, correction.ToResponse(c))
}

// StartReview implements CorrectionHandler.
func (h *correctionHandlerImpl) StartReview(w http.ResponseWriter, r *http.Request) {
	c, err := h.correctionService.StartReview(r.Context(), chi.URLParam(r, "id"), middleware.ActorID(r.Context()))
	if err != nil {
		response.HandleError(w, err)
		return
	}
	response.SuccessWithMessage(w, "Correction request in review", correction.ToResponse(c))
}

func decodeDecision(r *http.Request) (correction.DecisionRequest, error) {
	var req correction.DecisionRequest
	err := decodeOptionalJSON(r, &req)
	return req, err
}

// Approve implements CorrectionHandler.
func (h *correctionHandlerImpl) Approve(w http.ResponseWriter, r *http.Request) {
	req, err := decodeDecision(r)
	if err != nil {
		response.BadRequest(w, "Invalid request format", nil)
		return
	}

	c, err := h.correctionService.Approve(r.Context(), chi.URLParam(r, "id"), req, middleware.ActorID(r.Context()))
	if err != nil {
		response.HandleError(w, err)
		return
	}
	response.SuccessWithMessage(w, "Correction request approved", correction.ToResponse(c))
}

// Reject implements CorrectionHandler.
func (h *correctionHandlerImpl) Reject(w http.ResponseWriter, r *http.Request) {
	req, err := decodeDecision(r)
	if err != nil {
		response.BadRequest(w, "Invalid request format", nil)
		return
	}

	c, err := h.correctionService.Reject(r.Context(), chi.URLParam(r, "id"), req, middleware.ActorID(r.Context()))
	if err != nil {
		response.HandleError(w, err)
		return
	}
	response.SuccessWithMessage(w, "Correction request rejected", correction.ToResponse(c))
}

// Escalate implements CorrectionHandler.
func (h *correctionHandlerImpl) Escalate(w http.ResponseWriter, r *http.Request) {
	c, err := h.correctionService.Escalate(r.Context(), chi.URLParam(r, "id"), middleware.ActorID(r.Context()))
	if err != nil {
		response.HandleError(w, err)
		return
	}
	response.SuccessWithMessage(w, "Correction request escalated", correction.ToResponse(c))
}
