package response

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/cmlabs-hris/hris-payroll-go/internal/pkg/apperror"
	"github.com/cmlabs-hris/hris-payroll-go/internal/pkg/validator"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestHandleError(t *testing.T) {
	notPending := apperror.New(apperror.CodeInvalidState, "leave request is no longer pending", http.StatusConflict)

	var fieldErrs validator.ValidationErrors
	fieldErrs.Add("month", "month must be between 1 and 12")

	tests := []struct {
		name        string
		err         error
		wantStatus  int
		wantCode    string
		wantMessage string
	}{
		{"validation", fieldErrs, http.StatusUnprocessableEntity, apperror.CodeValidation, "Validation failed"},
		{"sentinel", notPending, http.StatusConflict, apperror.CodeInvalidState, "leave request is no longer pending"},
		{"wrapped sentinel", fmt.Errorf("approve: %w", notPending), http.StatusConflict, apperror.CodeInvalidState, "leave request is no longer pending"},
		{"storage hides cause", apperror.Storage(errors.New("dial tcp 10.0.0.5:5432: refused")), http.StatusServiceUnavailable, apperror.CodeStorage, ""},
		{"unknown", errors.New("boom"), http.StatusInternalServerError, apperror.CodeInternal, "An unexpected error occurred"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := httptest.NewRecorder()
			HandleError(rec, tt.err)

			assert.Equal(t, tt.wantStatus, rec.Code)
			assert.Equal(t, "application/json", rec.Header().Get("Content-Type"))

			var body Response
			require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
			assert.False(t, body.Success)
			require.NotNil(t, body.Error)
			assert.Equal(t, tt.wantCode, body.Error.Code)
			if tt.wantMessage != "" {
				assert.Equal(t, tt.wantMessage, body.Error.Message)
			}
			assert.NotContains(t, rec.Body.String(), "10.0.0.5")
		})
	}
}

func TestValidationError_CarriesDetails(t *testing.T) {
	rec := httptest.NewRecorder()
	ValidationError(rec, map[string]string{"year": "year must be between 2000 and 2100"})

	var body Response
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	assert.Equal(t, "year must be between 2000 and 2100", body.Error.Details["year"])
}
