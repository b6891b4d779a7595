package http

import (
	"net/http"
	"strconv"

	"github.com/cmlabs-hris/attendance-engine/internal/domain/audit"
	"github.com/cmlabs-hris/attendance-engine/internal/handler/http/response"
	"github.com/cmlabs-hris/attendance-engine/internal/pkg/validator"
)

type AuditHandler interface {
	List(w http.ResponseWriter, r *http.Request)
}

type auditHandlerImpl struct {
	reader audit.Reader
}

func NewAuditHandler(reader audit.Reader) AuditHandler {
	return &auditHandlerImpl{reader: reader}
}

// List implements AuditHandler.
func (h *auditHandlerImpl) List(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	filter := audit.Filter{
		Entity:   q.Get("entity"),
		EntityID: q.Get("entity_id"),
		ActorID:  q.Get("actor_id"),
		Limit:    100,
	}
	if limit := q.Get("limit"); limit != "" {
		n, err := strconv.Atoi(limit)
		if err != nil || n < 1 {
			response.HandleError(w, validator.ValidationErrors{{Field: "limit", Message: "limit must be a positive integer"}})
			return
		}
		filter.Limit = n
	}

	entries, err := h.reader.List(r.Context(), filter)
	if err != nil {
		response.HandleError(w, err)
		return
	}

	response.SuccessWithMeta(w, entries, &response.Meta{Limit: filter.Limit, TotalItems: int64(len(entries))})
}
