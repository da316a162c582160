package http

import (
	"encoding/json"
	"log/slog"
	"net/http"

	"github.com/cmlabs-hris/hris-attendance-go/internal/domain/shift"
	"github.com/cmlabs-hris/hris-attendance-go/internal/handler/http/response"
	"github.com/cmlabs-hris/hris-attendance-go/internal/pkg/jwt"
	"github.com/go-chi/chi/v5"
)

type ShiftHandler interface {
	GetMyPolicy(w http.ResponseWriter, r *http.Request)
	GetPolicy(w http.ResponseWriter, r *http.Request)
	UpsertPolicy(w http.ResponseWriter, r *http.Request)
}

type shiftHandlerImpl struct {
	shiftService shift.Service
}

func NewShiftHandler(shiftService shift.Service) ShiftHandler {
	return &shiftHandlerImpl{shiftService: shiftService}
}

// GetMyPolicy implements ShiftHandler.
func (h *shiftHandlerImpl) GetMyPolicy(w http.ResponseWriter, r *http.Request) {
	claims, err := jwt.ClaimsFromContext(r.Context())
	if err != nil {
		response.HandleError(w, err)
		return
	}
	response.Success(w, h.shiftService.Resolve(r.Context(), claims.EmployeeID))
}

// GetPolicy implements ShiftHandler.
func (h *shiftHandlerImpl) GetPolicy(w http.ResponseWriter, r *http.Request) {
	response.Success(w, h.shiftService.Resolve(r.Context(), chi.URLParam(r, "employeeID")))
}

// UpsertPolicy implements ShiftHandler.
func (h *shiftHandlerImpl) UpsertPolicy(w http.ResponseWriter, r *http.Request) {
	var policy shift.Policy
	if err := json.NewDecoder(r.Body).Decode(&policy); err != nil {
		slog.Error("Failed to decode shift policy", "error", err)
		response.BadRequest(w, "Invalid request format", nil)
		return
	}
	policy.EmployeeID = chi.URLParam(r, "employeeID")

	result, err := h.shiftService.Upsert(r.Context(), policy)
	if err != nil {
		response.HandleError(w, err)
		return
	}

	response.SuccessWithMessage(w, "Shift policy saved", result)
}
