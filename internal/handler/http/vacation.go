package http

import (
	"encoding/json"
	"net/http"

	"github.com/cmlabs-hris/timeclock-go/internal/domain/vacation"
	"github.com/cmlabs-hris/timeclock-go/internal/handler/http/response"
	"github.com/go-chi/chi/v5"
)

type VacationHandler interface {
	List(w http.ResponseWriter, r *http.Request)
	Create(w http.ResponseWriter, r *http.Request)
	Delete(w http.ResponseWriter, r *http.Request)
}

type vacationHandlerImpl struct {
	vacationService vacation.VacationService
}

func NewVacationHandler(vacationService vacation.VacationService) VacationHandler {
	return &vacationHandlerImpl{
		vacationService: vacationService,
	}
}

// List handles GET /vacation-days?employee_id=&month=&year=
func (h *vacationHandlerImpl) List(w http.ResponseWriter, r *http.Request) {
	req := vacation.ListVacationRequest{
		EmployeeID: r.URL.Query().Get("employee_id"),
	}

	month, ok := optionalIntQueryParam(w, r, "month")
	if !ok {
		return
	}
	year, ok := optionalIntQueryParam(w, r, "year")
	if !ok {
		return
	}
	req.Month, req.Year = month, year

	days, err := h.vacationService.List(r.Context(), req)
	if err != nil {
		response.HandleError(w, err)
		return
	}

	response.List(w, days, len(days))
}

// Create handles POST /vacation-days
func (h *vacationHandlerImpl) Create(w http.ResponseWriter, r *http.Request) {
	var req vacation.CreateVacationRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		response.BadRequest(w, "Invalid request body", nil)
		return
	}

	day, err := h.vacationService.Create(r.Context(), req)
	if err != nil {
		response.HandleError(w, err)
		return
	}

	response.Created(w, "Vacation day added successfully", day)
}

// Delete handles DELETE /vacation-days/{id}
func (h *vacationHandlerImpl) Delete(w http.ResponseWriter, r *http.Request) {
	if err := h.vacationService.Delete(r.Context(), chi.URLParam(r, "id")); err != nil {
		response.HandleError(w, err)
		return
	}

	response.SuccessWithMessage(w, "Vacation day removed successfully", nil)
}
