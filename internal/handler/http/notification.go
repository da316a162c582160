package http

import (
	"net/http"
	"strconv"

	"github.com/cmlabs-hris/hris-attendance-go/internal/domain/notification"
	"github.com/cmlabs-hris/hris-attendance-go/internal/handler/http/response"
	"github.com/cmlabs-hris/hris-attendance-go/internal/pkg/jwt"
	"github.com/go-chi/chi/v5"
)

const maxNotificationLimit = 100

// NotificationHandler exposes the delivered attendance notifications.
type NotificationHandler interface {
	ListMine(w http.ResponseWriter, r *http.Request)
	ListForEmployee(w http.ResponseWriter, r *http.Request)
}

type notificationHandlerImpl struct {
	notifRepo notification.Repository
}

// NewNotificationHandler creates a new notification handler
func NewNotificationHandler(notifRepo notification.Repository) NotificationHandler {
	return &notificationHandlerImpl{notifRepo: notifRepo}
}

// getIntQueryParam gets an int query parameter with a default value
func getIntQueryParam(r *http.Request, key string, defaultVal int) int {
	val := r.URL.Query().Get(key)
	if val == "" {
		return defaultVal
	}
	intVal, err := strconv.Atoi(val)
	if err != nil {
		return defaultVal
	}
	return intVal
}

// ListMine returns the newest notifications for the authenticated employee
func (h *notificationHandlerImpl) ListMine(w http.ResponseWriter, r *http.Request) {
	claims, err := jwt.ClaimsFromContext(r.Context())
	if err != nil {
		response.HandleError(w, err)
		return
	}
	h.list(w, r, claims.EmployeeID)
}

// ListForEmployee returns the newest notifications for any employee
func (h *notificationHandlerImpl) ListForEmployee(w http.ResponseWriter, r *http.Request) {
	h.list(w, r, chi.URLParam(r, "employeeID"))
}

func (h *notificationHandlerImpl) list(w http.ResponseWriter, r *http.Request, employeeID string) {
	limit := getIntQueryParam(r, "limit", 20)
	if limit <= 0 || limit > maxNotificationLimit {
		limit = 20
	}

	notifications, err := h.notifRepo.ListByRecipient(r.Context(), employeeID, limit)
	if err != nil {
		response.HandleError(w, err)
		return
	}
	if notifications == nil {
		notifications = []*notification.Notification{}
	}

	response.SuccessWithMeta(w, notifications, &response.Meta{Limit: limit, TotalItems: int64(len(notifications))})
}
