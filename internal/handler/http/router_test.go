package http

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/cmlabs-hris/hris-payroll-go/internal/config"
	"github.com/cmlabs-hris/hris-payroll-go/internal/domain/attendance"
	"github.com/cmlabs-hris/hris-payroll-go/internal/domain/leave"
	"github.com/cmlabs-hris/hris-payroll-go/internal/domain/salary"
	"github.com/cmlabs-hris/hris-payroll-go/internal/pkg/apperror"
	"github.com/cmlabs-hris/hris-payroll-go/internal/pkg/jwt"
	"github.com/go-chi/chi/v5"
	"github.com/go-redis/redismock/v9"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const (
	hrID       = "0190a3f4-0000-7000-8000-000000000001"
	employeeID = "0190a3f4-0000-7000-8000-000000000002"
	orgID      = "0190a3f4-0000-7000-8000-0000000000aa"
	recordID   = "0190a3f4-0000-7000-8000-0000000000bb"
)

type fakeSalaryService struct {
	salary.SalaryService
	generate   func(requesterID string, req salary.GenerateSalaryRequest) (salary.SalaryRecordResponse, error)
	payslips   func(requesterID string, filter salary.PayslipFilter) ([]salary.SalaryRecordResponse, error)
	statistics func(requesterID, recordID string) (salary.SalaryStatisticsResponse, error)
	pay        func(requesterID, recordID string, req salary.CompletePaymentRequest) (salary.SalaryRecordResponse, error)
	profile    func(requesterID, userID string, req *salary.UpdateProfileRequest) (salary.ProfileResponse, error)
}

func (f *fakeSalaryService) GenerateSalary(_ context.Context, requesterID string, req salary.GenerateSalaryRequest) (salary.SalaryRecordResponse, error) {
	return f.generate(requesterID, req)
}

func (f *fakeSalaryService) GetPayslips(_ context.Context, requesterID string, filter salary.PayslipFilter) ([]salary.SalaryRecordResponse, error) {
	return f.payslips(requesterID, filter)
}

func (f *fakeSalaryService) GetSalaryStatistics(_ context.Context, requesterID, recordID string) (salary.SalaryStatisticsResponse, error) {
	return f.statistics(requesterID, recordID)
}

func (f *fakeSalaryService) CompletePayment(_ context.Context, requesterID, recordID string, req salary.CompletePaymentRequest) (salary.SalaryRecordResponse, error) {
	return f.pay(requesterID, recordID, req)
}

func (f *fakeSalaryService) GetProfile(_ context.Context, requesterID, userID string) (salary.ProfileResponse, error) {
	return f.profile(requesterID, userID, nil)
}

func (f *fakeSalaryService) UpdateProfile(_ context.Context, requesterID, userID string, req salary.UpdateProfileRequest) (salary.ProfileResponse, error) {
	return f.profile(requesterID, userID, &req)
}

type fakeAttendanceService struct {
	attendance.AttendanceService
	monthly func(requesterID string, filter attendance.MonthFilter) (attendance.MonthlyAttendanceResponse, error)
	verify  func(requesterID, sessionID string) (attendance.SessionResponse, error)
	checkIn func(requesterID string) (attendance.SessionResponse, error)
}

func (f *fakeAttendanceService) CheckIn(_ context.Context, requesterID string) (attendance.SessionResponse, error) {
	return f.checkIn(requesterID)
}

func (f *fakeAttendanceService) GetMyAttendance(_ context.Context, requesterID string, filter attendance.MonthFilter) (attendance.MonthlyAttendanceResponse, error) {
	return f.monthly(requesterID, filter)
}

func (f *fakeAttendanceService) VerifySession(_ context.Context, requesterID, sessionID string) (attendance.SessionResponse, error) {
	return f.verify(requesterID, sessionID)
}

type fakeLeaveService struct {
	leave.LeaveService
	approve func(requesterID, requestID string) (leave.LeaveRequestResponse, error)
	reject  func(requesterID, requestID string, req leave.RejectLeaveRequest) (leave.LeaveRequestResponse, error)
}

func (f *fakeLeaveService) ApproveLeaveRequest(_ context.Context, requesterID, requestID string) (leave.LeaveRequestResponse, error) {
	return f.approve(requesterID, requestID)
}

func (f *fakeLeaveService) RejectLeaveRequest(_ context.Context, requesterID, requestID string, req leave.RejectLeaveRequest) (leave.LeaveRequestResponse, error) {
	return f.reject(requesterID, requestID, req)
}

type testServer struct {
	router     *chi.Mux
	jwt        jwt.Service
	salary     *fakeSalaryService
	attendance *fakeAttendanceService
	leave      *fakeLeaveService
}

func newTestServer(t *testing.T) *testServer {
	t.Helper()
	rdb, _ := redismock.NewClientMock()
	cfg := &config.Config{
		App:     config.AppConfig{Env: "test", AllowedOrigins: []string{"http://localhost:3000"}},
		Redis:   config.RedisConfig{IdempotencyTTL: time.Hour},
		Payroll: config.PayrollConfig{GenerateRateLimitPerMin: 100},
	}
	ts := &testServer{
		jwt:        jwt.NewJWTService("test-secret", "1h"),
		salary:     &fakeSalaryService{},
		attendance: &fakeAttendanceService{},
		leave:      &fakeLeaveService{},
	}
	ts.router = NewRouter(cfg, ts.jwt, rdb,
		NewSalaryHandler(ts.salary),
		NewAttendanceHandler(ts.attendance),
		NewLeaveHandler(ts.leave),
	)
	return ts
}

func (ts *testServer) do(t *testing.T, method, path string, body interface{}) *httptest.ResponseRecorder {
	t.Helper()
	token, _, err := ts.jwt.GenerateAccessToken(hrID, "hr@example.com", orgID)
	require.NoError(t, err)

	var buf bytes.Buffer
	if body != nil {
		if raw, ok := body.(string); ok {
			buf.WriteString(raw)
		} else {
			require.NoError(t, json.NewEncoder(&buf).Encode(body))
		}
	}
	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set("Authorization", "Bearer "+token)
	req.Header.Set("Content-Type", "application/json")
	rec := httptest.NewRecorder()
	ts.router.ServeHTTP(rec, req)
	return rec
}

type envelope struct {
	Success bool            `json:"success"`
	Data    json.RawMessage `json:"data"`
	Meta    *struct {
		Count int `json:"count"`
	} `json:"meta"`
	Error *struct {
		Code    string            `json:"code"`
		Details map[string]string `json:"details"`
	} `json:"error"`
}

func decode(t *testing.T, rec *httptest.ResponseRecorder) envelope {
	t.Helper()
	var env envelope
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &env), rec.Body.String())
	return env
}

func TestGenerate(t *testing.T) {
	ts := newTestServer(t)
	ts.salary.generate = func(requesterID string, req salary.GenerateSalaryRequest) (salary.SalaryRecordResponse, error) {
		assert.Equal(t, hrID, requesterID)
		assert.Equal(t, salary.GenerateSalaryRequest{UserID: employeeID, Month: 1, Year: 2024}, req)
		return salary.SalaryRecordResponse{ID: recordID, UserID: employeeID, Month: 1, Year: 2024, NetSalary: decimal.NewFromInt(40400)}, nil
	}

	rec := ts.do(t, http.MethodPost, "/api/v1/salary/generate", map[string]interface{}{
		"user_id": employeeID, "month": 1, "year": 2024,
	})

	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
	var got salary.SalaryRecordResponse
	require.NoError(t, json.Unmarshal(decode(t, rec).Data, &got))
	assert.Equal(t, recordID, got.ID)
	assert.True(t, got.NetSalary.Equal(decimal.NewFromInt(40400)))
}

func TestGenerate_Errors(t *testing.T) {
	tests := []struct {
		name       string
		body       interface{}
		err        error
		wantStatus int
		wantCode   string
	}{
		{"already generated", map[string]interface{}{"user_id": employeeID, "month": 1, "year": 2024}, salary.ErrAlreadyGenerated, http.StatusConflict, apperror.CodeAlreadyGenerated},
		{"forbidden", map[string]interface{}{"user_id": employeeID, "month": 1, "year": 2024}, apperror.ErrUnauthorized, http.StatusForbidden, apperror.CodeUnauthorized},
		{"storage", map[string]interface{}{"user_id": employeeID, "month": 1, "year": 2024}, apperror.Storage(assert.AnError), http.StatusServiceUnavailable, apperror.CodeStorage},
		{"malformed body", `{"user_id":`, nil, http.StatusBadRequest, "BAD_REQUEST"},
		{"unknown field", `{"user":"x"}`, nil, http.StatusBadRequest, "BAD_REQUEST"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ts := newTestServer(t)
			ts.salary.generate = func(string, salary.GenerateSalaryRequest) (salary.SalaryRecordResponse, error) {
				return salary.SalaryRecordResponse{}, tt.err
			}

			rec := ts.do(t, http.MethodPost, "/api/v1/salary/generate", tt.body)

			assert.Equal(t, tt.wantStatus, rec.Code)
			env := decode(t, rec)
			assert.False(t, env.Success)
			require.NotNil(t, env.Error)
			assert.Equal(t, tt.wantCode, env.Error.Code)
		})
	}
}

func TestGenerate_RequiresToken(t *testing.T) {
	ts := newTestServer(t)
	req := httptest.NewRequest(http.MethodPost, "/api/v1/salary/generate", nil)
	rec := httptest.NewRecorder()
	ts.router.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}

func TestListPayslips(t *testing.T) {
	ts := newTestServer(t)
	ts.salary.payslips = func(requesterID string, filter salary.PayslipFilter) ([]salary.SalaryRecordResponse, error) {
		assert.Equal(t, hrID, filter.UserID)
		require.NotNil(t, filter.Month)
		assert.Equal(t, 3, *filter.Month)
		assert.Nil(t, filter.Year)
		return []salary.SalaryRecordResponse{{ID: recordID}}, nil
	}

	rec := ts.do(t, http.MethodGet, "/api/v1/salary/payslips?month=3", nil)

	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	env := decode(t, rec)
	require.NotNil(t, env.Meta)
	assert.Equal(t, 1, env.Meta.Count)
}

func TestListPayslips_BadQuery(t *testing.T) {
	ts := newTestServer(t)

	rec := ts.do(t, http.MethodGet, "/api/v1/salary/payslips?user_id="+employeeID+"&year=twenty", nil)

	assert.Equal(t, http.StatusUnprocessableEntity, rec.Code)
	env := decode(t, rec)
	require.NotNil(t, env.Error)
	assert.Equal(t, apperror.CodeValidation, env.Error.Code)
	assert.Contains(t, env.Error.Details, "year")
}

func TestStatisticsAndPayment_UseRecordID(t *testing.T) {
	ts := newTestServer(t)
	ts.salary.statistics = func(_, id string) (salary.SalaryStatisticsResponse, error) {
		assert.Equal(t, recordID, id)
		return salary.SalaryStatisticsResponse{Record: salary.SalaryRecordResponse{ID: id}}, nil
	}
	ts.salary.pay = func(_, id string, req salary.CompletePaymentRequest) (salary.SalaryRecordResponse, error) {
		assert.Equal(t, recordID, id)
		assert.Equal(t, "bank_transfer", req.PaymentMode)
		return salary.SalaryRecordResponse{ID: id, Status: salary.StatusPaid}, nil
	}

	rec := ts.do(t, http.MethodGet, "/api/v1/salary/records/"+recordID+"/statistics", nil)
	assert.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

	rec = ts.do(t, http.MethodPost, "/api/v1/salary/records/"+recordID+"/pay", map[string]string{"payment_mode": "bank_transfer"})
	assert.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

	ts.salary.pay = func(string, string, salary.CompletePaymentRequest) (salary.SalaryRecordResponse, error) {
		return salary.SalaryRecordResponse{}, salary.ErrAlreadyPaid
	}
	rec = ts.do(t, http.MethodPost, "/api/v1/salary/records/"+recordID+"/pay", map[string]string{"payment_mode": "cash"})
	assert.Equal(t, http.StatusConflict, rec.Code)
	assert.Equal(t, apperror.CodeInvalidState, decode(t, rec).Error.Code)
}

func TestProfileRoutes(t *testing.T) {
	ts := newTestServer(t)
	var updates int
	ts.salary.profile = func(_, userID string, req *salary.UpdateProfileRequest) (salary.ProfileResponse, error) {
		assert.Equal(t, employeeID, userID)
		if req != nil {
			updates++
		}
		return salary.ProfileResponse{UserID: userID}, nil
	}

	rec := ts.do(t, http.MethodGet, "/api/v1/salary/profiles/"+employeeID, nil)
	assert.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

	rec = ts.do(t, http.MethodPut, "/api/v1/salary/profiles/"+employeeID, map[string]string{"base_salary": "30000"})
	assert.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	assert.Equal(t, 1, updates)
}

func TestAttendanceRoutes(t *testing.T) {
	ts := newTestServer(t)
	ts.attendance.checkIn = func(requesterID string) (attendance.SessionResponse, error) {
		return attendance.SessionResponse{}, attendance.ErrOngoingSession
	}
	ts.attendance.monthly = func(_ string, filter attendance.MonthFilter) (attendance.MonthlyAttendanceResponse, error) {
		assert.Equal(t, attendance.MonthFilter{Month: 2, Year: 2024}, filter)
		return attendance.MonthlyAttendanceResponse{Month: 2, Year: 2024}, nil
	}
	ts.attendance.verify = func(requesterID, sessionID string) (attendance.SessionResponse, error) {
		assert.Equal(t, "s-1", sessionID)
		return attendance.SessionResponse{ID: sessionID, Verified: true}, nil
	}

	rec := ts.do(t, http.MethodPost, "/api/v1/attendance/check-in", nil)
	assert.Equal(t, http.StatusConflict, rec.Code)
	assert.Equal(t, apperror.CodeInvalidSession, decode(t, rec).Error.Code)

	rec = ts.do(t, http.MethodGet, "/api/v1/attendance/me?month=2&year=2024", nil)
	assert.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

	rec = ts.do(t, http.MethodPost, "/api/v1/attendance/sessions/s-1/verify", nil)
	assert.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
}

func TestLeaveRoutes(t *testing.T) {
	ts := newTestServer(t)
	ts.leave.approve = func(_, requestID string) (leave.LeaveRequestResponse, error) {
		assert.Equal(t, "lr-1", requestID)
		return leave.LeaveRequestResponse{}, leave.ErrInsufficientBalance
	}
	ts.leave.reject = func(_, requestID string, req leave.RejectLeaveRequest) (leave.LeaveRequestResponse, error) {
		assert.Equal(t, "overlaps release", req.Reason)
		return leave.LeaveRequestResponse{ID: requestID, Status: leave.StatusRejected}, nil
	}

	rec := ts.do(t, http.MethodPost, "/api/v1/leave/requests/lr-1/approve", nil)
	assert.Equal(t, http.StatusUnprocessableEntity, rec.Code)
	assert.Equal(t, apperror.CodeInsufficientBalance, decode(t, rec).Error.Code)

	rec = ts.do(t, http.MethodPost, "/api/v1/leave/requests/lr-1/reject", map[string]string{"reason": "overlaps release"})
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	var got leave.LeaveRequestResponse
	require.NoError(t, json.Unmarshal(decode(t, rec).Data, &got))
	assert.Equal(t, leave.StatusRejected, got.Status)
}
