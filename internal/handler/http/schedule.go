package http

import (
	"encoding/json"
	"net/http"

	"github.com/cmlabs-hris/attendance-engine/internal/domain/escalation"
	"github.com/cmlabs-hris/attendance-engine/internal/domain/schedule"
	"github.com/cmlabs-hris/attendance-engine/internal/handler/http/middleware"
	"github.com/cmlabs-hris/attendance-engine/internal/handler/http/response"
)

// ScanHandler exposes the periodic scans so an external scheduler can drive them.
type ScanHandler interface {
	ExpiringShiftAssignments(w http.ResponseWriter, r *http.Request)
	PayrollCutoffEscalation(w http.ResponseWriter, r *http.Request)
}

type scanHandlerImpl struct {
	expiryScanner schedule.ShiftExpiryScanner
	escalationSvc escalation.EscalationService
	defaultDays   int
}

func NewScanHandler(expiryScanner schedule.ShiftExpiryScanner, escalationSvc escalation.EscalationService, defaultDays int) ScanHandler {
	return &scanHandlerImpl{
		expiryScanner: expiryScanner,
		escalationSvc: escalationSvc,
		defaultDays:   defaultDays,
	}
}

// ExpiringShiftAssignments implements ScanHandler.
func (h *scanHandlerImpl) ExpiringShiftAssignments(w http.ResponseWriter, r *http.Request) {
	var req struct {
		DaysBeforeExpiry *int `json:"days_before_expiry"`
	}
	if err := decodeOptionalJSON(r, &req); err != nil {
		response.BadRequest(w, "Invalid request format", nil)
		return
	}

	days := h.defaultDays
	if req.DaysBeforeExpiry != nil {
		days = *req.DaysBeforeExpiry
	}

	expiring, err := h.expiryScanner.CheckExpiringShiftAssignments(r.Context(), days, middleware.ActorID(r.Context()))
	if err != nil {
		response.HandleError(w, err)
		return
	}

	response.SuccessWithMeta(w, expiring, &response.Meta{TotalItems: int64(len(expiring))})
}

// PayrollCutoffEscalation implements ScanHandler.
func (h *scanHandlerImpl) PayrollCutoffEscalation(w http.ResponseWriter, r *http.Request) {
	var req escalation.SweepRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		response.BadRequest(w, "Invalid request format", nil)
		return
	}

	cutoff, err := req.Parse()
	if err != nil {
		response.HandleError(w, err)
		return
	}

	result, err := h.escalationSvc.EscalateUnresolvedRequestsBeforePayrollCutoff(r.Context(), cutoff, middleware.ActorID(r.Context()))
	if err != nil {
		response.HandleError(w, err)
		return
	}

	response.Success(w, result)
}
