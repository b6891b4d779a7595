package response

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/cmlabs-hris/attendance-engine/internal/domain/attendance"
	"github.com/cmlabs-hris/attendance-engine/internal/domain/exception"
	"github.com/cmlabs-hris/attendance-engine/internal/pkg/lock"
	"github.com/cmlabs-hris/attendance-engine/internal/pkg/validator"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestHandleError(t *testing.T) {
	tests := []struct {
		name       string
		err        error
		wantStatus int
		wantCode   string
	}{
		{"validation", validator.ValidationErrors{{Field: "employee_id", Message: "is required"}}, http.StatusUnprocessableEntity, "VALIDATION_ERROR"},
		{"wrapped not found", fmt.Errorf("load: %w", attendance.ErrAttendanceNotFound), http.StatusNotFound, "NOT_FOUND"},
		{"policy violation", attendance.ErrPolicyViolation, http.StatusBadRequest, "BAD_REQUEST"},
		{"illegal transition", exception.ErrInvalidTransition, http.StatusConflict, "CONFLICT"},
		{"lock busy", lock.ErrNotObtained, http.StatusConflict, "CONFLICT"},
		{"unknown", errors.New("connection reset"), http.StatusInternalServerError, "INTERNAL_SERVER_ERROR"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := httptest.NewRecorder()

			HandleError(rec, tt.err)

			assert.Equal(t, tt.wantStatus, rec.Code)
			var body Response
			require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
			assert.False(t, body.Success)
			require.NotNil(t, body.Error)
			assert.Equal(t, tt.wantCode, body.Error.Code)
		})
	}
}

func TestHandleError_UnknownErrorIsNotLeaked(t *testing.T) {
	rec := httptest.NewRecorder()

	HandleError(rec, errors.New("password authentication failed for user postgres"))

	assert.NotContains(t, rec.Body.String(), "password")
}

func TestSuccessWithMeta_EmptyListReportsZero(t *testing.T) {
	rec := httptest.NewRecorder()

	SuccessWithMeta(rec, []string{}, &Meta{TotalItems: 0})

	assert.JSONEq(t, `{"success":true,"data":[],"meta":{"total_items":0}}`, rec.Body.String())
}

func TestFile(t *testing.T) {
	rec := httptest.NewRecorder()

	File(rec, "text/csv", "lateness-report.csv", []byte("a,b\n"))

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "text/csv", rec.Header().Get("Content-Type"))
	assert.Equal(t, `attachment; filename="lateness-report.csv"`, rec.Header().Get("Content-Disposition"))
	assert.Equal(t, "4", rec.Header().Get("Content-Length"))
	assert.Equal(t, "a,b\n", rec.Body.String())
}
