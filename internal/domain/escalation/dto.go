package escalation

import (
	"time"

	"github.com/cmlabs-hris/attendance-engine/internal/pkg/validator"
)

type SweepRequest struct {
	Cutoff string `json:"cutoff"` // YYYY-MM-DD or RFC3339
}

func (r *SweepRequest) Parse() (time.Time, error) {
	if validator.IsEmpty(r.Cutoff) {
		return time.Time{}, validator.ValidationErrors{{Field: "cutoff", Message: "cutoff is required"}}
	}
	t, ok := validator.ParseDateOrDateTime(r.Cutoff)
	if !ok {
		return time.Time{}, validator.ValidationErrors{{Field: "cutoff", Message: "cutoff must be YYYY-MM-DD or RFC3339"}}
	}
	return t.UTC(), nil
}
