package http

import (
	"net/http"

	"github.com/cmlabs-hris/hris-payroll-go/internal/domain/salary"
	"github.com/cmlabs-hris/hris-payroll-go/internal/handler/http/response"
	"github.com/cmlabs-hris/hris-payroll-go/internal/pkg/validator"
	"github.com/go-chi/chi/v5"
)

type SalaryHandler interface {
	Generate(w http.ResponseWriter, r *http.Request)
	ListPayslips(w http.ResponseWriter, r *http.Request)
	GetStatistics(w http.ResponseWriter, r *http.Request)
	GenerationStatus(w http.ResponseWriter, r *http.Request)
	CompletePayment(w http.ResponseWriter, r *http.Request)
	GetProfile(w http.ResponseWriter, r *http.Request)
	UpdateProfile(w http.ResponseWriter, r *http.Request)
}

type salaryHandlerImpl struct {
	salaryService salary.SalaryService
}

func NewSalaryHandler(salaryService salary.SalaryService) SalaryHandler {
	return &salaryHandlerImpl{salaryService: salaryService}
}

func (h *salaryHandlerImpl) Generate(w http.ResponseWriter, r *http.Request) {
	requester, err := requesterID(r)
	if err != nil {
		response.HandleError(w, err)
		return
	}

	var req salary.GenerateSalaryRequest
	if err := decodeJSON(w, r, &req); err != nil {
		response.BadRequest(w, "Invalid request body", nil)
		return
	}

	result, err := h.salaryService.GenerateSalary(r.Context(), requester, req)
	if err != nil {
		response.HandleError(w, err)
		return
	}

	response.Created(w, "Salary generated", result)
}

func (h *salaryHandlerImpl) ListPayslips(w http.ResponseWriter, r *http.Request) {
	requester, err := requesterID(r)
	if err != nil {
		response.HandleError(w, err)
		return
	}

	var errs validator.ValidationErrors
	filter := salary.PayslipFilter{
		UserID: r.URL.Query().Get("user_id"),
		Month:  queryInt(r, "month", &errs),
		Year:   queryInt(r, "year", &errs),
	}
	if filter.UserID == "" {
		filter.UserID = requester
	}
	if len(errs) > 0 {
		response.HandleError(w, errs)
		return
	}

	result, err := h.salaryService.GetPayslips(r.Context(), requester, filter)
	if err != nil {
		response.HandleError(w, err)
		return
	}

	response.SuccessWithMeta(w, result, &response.Meta{Count: len(result)})
}

func (h *salaryHandlerImpl) GetStatistics(w http.ResponseWriter, r *http.Request) {
	requester, err := requesterID(r)
	if err != nil {
		response.HandleError(w, err)
		return
	}

	result, err := h.salaryService.GetSalaryStatistics(r.Context(), requester, chi.URLParam(r, "id"))
	if err != nil {
		response.HandleError(w, err)
		return
	}

	response.Success(w, result)
}

func (h *salaryHandlerImpl) GenerationStatus(w http.ResponseWriter, r *http.Request) {
	requester, err := requesterID(r)
	if err != nil {
		response.HandleError(w, err)
		return
	}

	var req salary.GenerationStatusRequest
	if err := decodeJSON(w, r, &req); err != nil {
		response.BadRequest(w, "Invalid request body", nil)
		return
	}

	result, err := h.salaryService.CheckGenerationStatus(r.Context(), requester, req)
	if err != nil {
		response.HandleError(w, err)
		return
	}

	response.Success(w, result)
}

func (h *salaryHandlerImpl) CompletePayment(w http.ResponseWriter, r *http.Request) {
	requester, err := requesterID(r)
	if err != nil {
		response.HandleError(w, err)
		return
	}

	var req salary.CompletePaymentRequest
	if err := decodeJSON(w, r, &req); err != nil {
		response.BadRequest(w, "Invalid request body", nil)
		return
	}

	result, err := h.salaryService.CompletePayment(r.Context(), requester, chi.URLParam(r, "id"), req)
	if err != nil {
		response.HandleError(w, err)
		return
	}

	response.Success(w, result)
}

func (h *salaryHandlerImpl) GetProfile(w http.ResponseWriter, r *http.Request) {
	requester, err := requesterID(r)
	if err != nil {
		response.HandleError(w, err)
		return
	}

	result, err := h.salaryService.GetProfile(r.Context(), requester, chi.URLParam(r, "userId"))
	if err != nil {
		response.HandleError(w, err)
		return
	}

	response.Success(w, result)
}

func (h *salaryHandlerImpl) UpdateProfile(w http.ResponseWriter, r *http.Request) {
	requester, err := requesterID(r)
	if err != nil {
		response.HandleError(w, err)
		return
	}

	var req salary.UpdateProfileRequest
	if err := decodeJSON(w, r, &req); err != nil {
		response.BadRequest(w, "Invalid request body", nil)
		return
	}

	result, err := h.salaryService.UpdateProfile(r.Context(), requester, chi.URLParam(r, "userId"), req)
	if err != nil {
		response.HandleError(w, err)
		return
	}

	response.Success(w, result)
}
