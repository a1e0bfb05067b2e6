package http

import (
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"strconv"

	"github.com/cmlabs-hris/timeclock-go/internal/domain/report"
	"github.com/cmlabs-hris/timeclock-go/internal/handler/http/response"
	"github.com/go-chi/chi/v5"
)

type ReportHandler interface {
	Monthly(w http.ResponseWriter, r *http.Request)
	ExportMonthly(w http.ResponseWriter, r *http.Request)
	EmployeeDetail(w http.ResponseWriter, r *http.Request)
	ExportEmployeeDetail(w http.ResponseWriter, r *http.Request)
	Unclosed(w http.ResponseWriter, r *http.Request)
	CloseUnclosed(w http.ResponseWriter, r *http.Request)
	AtWork(w http.ResponseWriter, r *http.Request)
	WageCalculator(w http.ResponseWriter, r *http.Request)
}

type reportHandlerImpl struct {
	reportService report.ReportService
}

func NewReportHandler(reportService report.ReportService) ReportHandler {
	return &reportHandlerImpl{
		reportService: reportService,
	}
}

// parseMonthYear reads the zero-based month and the year query parameters
func parseMonthYear(w http.ResponseWriter, r *http.Request) (month, year int, ok bool) {
	month, err := strconv.Atoi(r.URL.Query().Get("month"))
	if err != nil {
		response.BadRequest(w, "invalid month parameter", nil)
		return 0, 0, false
	}

	year, err = strconv.Atoi(r.URL.Query().Get("year"))
	if err != nil {
		response.BadRequest(w, "invalid year parameter", nil)
		return 0, 0, false
	}

	return month, year, true
}

// optionalIntQueryParam returns nil when key is absent
func optionalIntQueryParam(w http.ResponseWriter, r *http.Request, key string) (*int, bool) {
	val := r.URL.Query().Get(key)
	if val == "" {
		return nil, true
	}
	n, err := strconv.Atoi(val)
	if err != nil {
		response.BadRequest(w, "invalid "+key+" parameter", nil)
		return nil, false
	}
	return &n, true
}

// Monthly handles GET /reports/monthly
func (h *reportHandlerImpl) Monthly(w http.ResponseWriter, r *http.Request) {
	month, year, ok := parseMonthYear(w, r)
	if !ok {
		return
	}

	result, err := h.reportService.Monthly(r.Context(), report.MonthlyReportRequest{Month: month, Year: year})
	if err != nil {
		response.HandleError(w, err)
		return
	}

	response.Success(w, result)
}

// ExportMonthly handles GET /reports/monthly/export
func (h *reportHandlerImpl) ExportMonthly(w http.ResponseWriter, r *http.Request) {
	month, year, ok := parseMonthYear(w, r)
	if !ok {
		return
	}

	file, err := h.reportService.ExportMonthly(r.Context(), report.MonthlyReportRequest{Month: month, Year: year})
	if err != nil {
		response.HandleError(w, err)
		return
	}

	response.Attachment(w, file.FileName, file.ContentType, file.Content)
}

// EmployeeDetail handles GET /reports/employees/{id}
func (h *reportHandlerImpl) EmployeeDetail(w http.ResponseWriter, r *http.Request) {
	month, year, ok := parseMonthYear(w, r)
	if !ok {
		return
	}

	req := report.EmployeeReportRequest{EmployeeID: chi.URLParam(r, "id"), Month: month, Year: year}
	result, err := h.reportService.EmployeeDetail(r.Context(), req)
	if err != nil {
		response.HandleError(w, err)
		return
	}

	response.Success(w, result)
}

// ExportEmployeeDetail handles GET /reports/employees/{id}/export
func (h *reportHandlerImpl) ExportEmployeeDetail(w http.ResponseWriter, r *http.Request) {
	month, year, ok := parseMonthYear(w, r)
	if !ok {
		return
	}

	req := report.EmployeeReportRequest{EmployeeID: chi.URLParam(r, "id"), Month: month, Year: year}
	file, err := h.reportService.ExportEmployeeDetail(r.Context(), req)
	if err != nil {
		response.HandleError(w, err)
		return
	}

	response.Attachment(w, file.FileName, file.ContentType, file.Content)
}

// Unclosed handles GET /reports/unclosed
func (h *reportHandlerImpl) Unclosed(w http.ResponseWriter, r *http.Request) {
	entries, err := h.reportService.Unclosed(r.Context())
	if err != nil {
		response.HandleError(w, err)
		return
	}

	response.List(w, entries, len(entries))
}

// CloseUnclosed handles POST /reports/unclosed/{id}/close. The body is
// optional; without a time the entry is closed at 23:59.
func (h *reportHandlerImpl) CloseUnclosed(w http.ResponseWriter, r *http.Request) {
	var req report.CloseUnclosedRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil && !errors.Is(err, io.EOF) {
		response.BadRequest(w, "Invalid request body", nil)
		return
	}
	req.EntryID = chi.URLParam(r, "id")

	entry, err := h.reportService.CloseUnclosed(r.Context(), req)
	if err != nil {
		response.HandleError(w, err)
		return
	}

	response.SuccessWithMessage(w, "Entry closed successfully", entry)
}

// AtWork handles GET /reports/at-work
func (h *reportHandlerImpl) AtWork(w http.ResponseWriter, r *http.Request) {
	atWork, err := h.reportService.AtWork(r.Context())
	if err != nil {
		response.HandleError(w, err)
		return
	}

	response.List(w, atWork, len(atWork))
}

// WageCalculator handles POST /reports/wage-calculator
func (h *reportHandlerImpl) WageCalculator(w http.ResponseWriter, r *http.Request) {
	var req report.WageCalculatorRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		response.BadRequest(w, "Invalid request body", nil)
		return
	}

	result, err := h.reportService.CalculateWage(r.Context(), req)
	if err != nil {
		response.HandleError(w, err)
		return
	}

	response.Success(w, result)
}
