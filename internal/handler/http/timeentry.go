package http

import (
	"encoding/json"
	"log/slog"
	"net/http"

	"github.com/cmlabs-hris/timesheet-backend-go/internal/domain/timeentry"
	"github.com/cmlabs-hris/timesheet-backend-go/internal/handler/http/response"
	"github.com/go-chi/chi/v5"
)

type TimeEntryHandler interface {
	Create(w http.ResponseWriter, r *http.Request)
	ListByDateRange(w http.ResponseWriter, r *http.Request)
	ListByEmployee(w http.ResponseWriter, r *http.Request)
	Get(w http.ResponseWriter, r *http.Request)
	Update(w http.ResponseWriter, r *http.Request)
	RegisterExit(w http.ResponseWriter, r *http.Request)
	UpdateStatus(w http.ResponseWriter, r *http.Request)
	Remove(w http.ResponseWriter, r *http.Request)
}

type timeEntryHandlerImpl struct {
	timeEntryService timeentry.TimeEntryService
}

func NewTimeEntryHandler(timeEntryService timeentry.TimeEntryService) TimeEntryHandler {
	return &timeEntryHandlerImpl{
		timeEntryService: timeEntryService,
	}
}

// decodeJSON writes a 400 and returns false when the body is not valid JSON.
func decodeJSON(w http.ResponseWriter, r *http.Request, op string, dst any) bool {
	if err := json.NewDecoder(r.Body).Decode(dst); err != nil {
		slog.Error(op+" decode error", "error", err)
		response.BadRequest(w, "Invalid request format", nil)
		return false
	}
	return true
}

// Create implements TimeEntryHandler.
func (h *timeEntryHandlerImpl) Create(w http.ResponseWriter, r *http.Request) {
	var req timeentry.CreateTimeEntryRequest
	if !decodeJSON(w, r, "CreateTimeEntry", &req) {
		return
	}

	result, err := h.timeEntryService.Create(r.Context(), req, actorFromContext(r))
	if err != nil {
		response.HandleError(w, err)
		return
	}

	response.Created(w, "Time entry created successfully", result)
}

// ListByDateRange implements TimeEntryHandler.
func (h *timeEntryHandlerImpl) ListByDateRange(w http.ResponseWriter, r *http.Request) {
	query := r.URL.Query()
	filter := timeentry.DateRangeFilter{
		StartDate: query.Get("startDate"),
		EndDate:   query.Get("endDate"),
	}
	if employeeID := query.Get("employeeId"); employeeID != "" {
		filter.EmployeeID = &employeeID
	}

	results, err := h.timeEntryService.ListByDateRange(r.Context(), filter)
	if err != nil {
		response.HandleError(w, err)
		return
	}

	response.List(w, results)
}

// ListByEmployee implements TimeEntryHandler.
func (h *timeEntryHandlerImpl) ListByEmployee(w http.ResponseWriter, r *http.Request) {
	results, err := h.timeEntryService.ListByEmployee(r.Context(), chi.URLParam(r, "employeeId"))
	if err != nil {
		response.HandleError(w, err)
		return
	}

	response.List(w, results)
}

// Get implements TimeEntryHandler.
func (h *timeEntryHandlerImpl) Get(w http.ResponseWriter, r *http.Request) {
	result, err := h.timeEntryService.Get(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		response.HandleError(w, err)
		return
	}

	response.Success(w, result)
}

// Update implements TimeEntryHandler.
func (h *timeEntryHandlerImpl) Update(w http.ResponseWriter, r *http.Request) {
	var req timeentry.UpdateTimeEntryRequest
	if !decodeJSON(w, r, "UpdateTimeEntry", &req) {
		return
	}

	result, err := h.timeEntryService.Update(r.Context(), chi.URLParam(r, "id"), req, actorFromContext(r))
	if err != nil {
		response.HandleError(w, err)
		return
	}

	response.SuccessWithMessage(w, "Time entry updated successfully", result)
}

// RegisterExit implements TimeEntryHandler.
func (h *timeEntryHandlerImpl) RegisterExit(w http.ResponseWriter, r *http.Request) {
	var req timeentry.RegisterExitRequest
	if !decodeJSON(w, r, "RegisterExit", &req) {
		return
	}

	result, err := h.timeEntryService.RegisterExit(r.Context(), chi.URLParam(r, "id"), req, actorFromContext(r))
	if err != nil {
		response.HandleError(w, err)
		return
	}

	response.SuccessWithMessage(w, "Exit time registered successfully", result)
}

// UpdateStatus implements TimeEntryHandler.
func (h *timeEntryHandlerImpl) UpdateStatus(w http.ResponseWriter, r *http.Request) {
	var req timeentry.UpdateStatusRequest
	if !decodeJSON(w, r, "UpdateTimeEntryStatus", &req) {
		return
	}

	result, err := h.timeEntryService.UpdateStatus(r.Context(), chi.URLParam(r, "id"), req, actorFromContext(r))
	if err != nil {
		response.HandleError(w, err)
		return
	}

	response.SuccessWithMessage(w, "Time entry status updated successfully", result)
}

// Remove implements TimeEntryHandler.
func (h *timeEntryHandlerImpl) Remove(w http.ResponseWriter, r *http.Request) {
	if err := h.timeEntryService.Remove(r.Context(), chi.URLParam(r, "id")); err != nil {
		response.HandleError(w, err)
		return
	}

	response.SuccessWithMessage(w, "Time entry deleted successfully", nil)
}
