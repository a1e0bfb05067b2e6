package http

import (
	"encoding/json"
	"net/http"

	"github.com/cmlabs-hris/timeclock-go/internal/domain/timeentry"
	"github.com/cmlabs-hris/timeclock-go/internal/handler/http/response"
	"github.com/cmlabs-hris/timeclock-go/internal/pkg/validator"
	"github.com/go-chi/chi/v5"
)

type TimeEntryHandler interface {
	ClockIn(w http.ResponseWriter, r *http.Request)
	ClockOut(w http.ResponseWriter, r *http.Request)
	SetBreak(w http.ResponseWriter, r *http.Request)
	List(w http.ResponseWriter, r *http.Request)
	FindOpen(w http.ResponseWriter, r *http.Request)
}

type timeEntryHandlerImpl struct {
	timeEntryService timeentry.TimeEntryService
}

func NewTimeEntryHandler(timeEntryService timeentry.TimeEntryService) TimeEntryHandler {
	return &timeEntryHandlerImpl{
		timeEntryService: timeEntryService,
	}
}

// ClockIn handles POST /time-entries/clock-in
func (h *timeEntryHandlerImpl) ClockIn(w http.ResponseWriter, r *http.Request) {
	var req timeentry.ClockInRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		response.BadRequest(w, "Invalid request body", nil)
		return
	}

	entry, err := h.timeEntryService.ClockIn(r.Context(), req)
	if err != nil {
		response.HandleError(w, err)
		return
	}

	response.Created(w, "Clocked in successfully", entry)
}

// ClockOut handles PATCH /time-entries/{id}/clock-out
func (h *timeEntryHandlerImpl) ClockOut(w http.ResponseWriter, r *http.Request) {
	var req timeentry.ClockOutRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		response.BadRequest(w, "Invalid request body", nil)
		return
	}
	req.ID = chi.URLParam(r, "id")

	entry, err := h.timeEntryService.ClockOut(r.Context(), req)
	if err != nil {
		response.HandleError(w, err)
		return
	}

	response.SuccessWithMessage(w, "Clocked out successfully", entry)
}

// SetBreak handles PATCH /time-entries/{id}/break
func (h *timeEntryHandlerImpl) SetBreak(w http.ResponseWriter, r *http.Request) {
	var req timeentry.SetBreakRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		response.BadRequest(w, "Invalid request body", nil)
		return
	}
	req.ID = chi.URLParam(r, "id")

	entry, err := h.timeEntryService.SetBreak(r.Context(), req)
	if err != nil {
		response.HandleError(w, err)
		return
	}

	response.Success(w, entry)
}

// List handles GET /time-entries?employee_id=&date=
func (h *timeEntryHandlerImpl) List(w http.ResponseWriter, r *http.Request) {
	filter := timeentry.TimeEntryFilter{
		EmployeeID: r.URL.Query().Get("employee_id"),
		Date:       r.URL.Query().Get("date"),
	}
	if err := validateEntryQuery(filter, false); err != nil {
		response.HandleError(w, err)
		return
	}

	entries, err := h.timeEntryService.List(r.Context(), filter)
	if err != nil {
		response.HandleError(w, err)
		return
	}

	response.List(w, entries, len(entries))
}

// FindOpen handles GET /time-entries/open?employee_id=&date=
func (h *timeEntryHandlerImpl) FindOpen(w http.ResponseWriter, r *http.Request) {
	filter := timeentry.TimeEntryFilter{
		EmployeeID: r.URL.Query().Get("employee_id"),
		Date:       r.URL.Query().Get("date"),
	}
	if err := validateEntryQuery(filter, true); err != nil {
		response.HandleError(w, err)
		return
	}

	entry, err := h.timeEntryService.FindOpen(r.Context(), filter.EmployeeID, filter.Date)
	if err != nil {
		response.HandleError(w, err)
		return
	}

	response.Success(w, entry)
}

func validateEntryQuery(f timeentry.TimeEntryFilter, required bool) error {
	var errs validator.ValidationErrors

	if f.EmployeeID != "" || required {
		if !validator.IsValidUUID(f.EmployeeID) {
			errs = append(errs, validator.ValidationError{Field: "employee_id", Message: "employee_id must be a valid UUID"})
		}
	}
	if f.Date != "" || required {
		if _, ok := validator.IsValidDate(f.Date); !ok {
			errs = append(errs, validator.ValidationError{Field: "date", Message: "date must be in YYYY-MM-DD format"})
		}
	}

	if len(errs) > 0 {
		return errs
	}
	return nil
}
