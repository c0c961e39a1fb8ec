package transport

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"

	"chaski/internal/notification/application/ports/in"
	"chaski/internal/notification/domain"
	"chaski/internal/shared/logger"
)

// HTTPHandler обрабатывает HTTP запросы к уведомлениям
type HTTPHandler struct {
	listNotifications in.ListNotificationsUseCase
	unreadCount       in.UnreadCountUseCase
	markRead          in.MarkReadUseCase
	markAllRead       in.MarkAllReadUseCase
	log               *logger.Logger
}

// NewHTTPHandler создает новый HTTP handler уведомлений
func NewHTTPHandler(
	listNotifications in.ListNotificationsUseCase,
	unreadCount in.UnreadCountUseCase,
	markRead in.MarkReadUseCase,
	markAllRead in.MarkAllReadUseCase,
	log *logger.Logger,
) *HTTPHandler {
	return &HTTPHandler{
		listNotifications: listNotifications,
		unreadCount:       unreadCount,
		markRead:          markRead,
		markAllRead:       markAllRead,
		log:               log,
	}
}

// RegisterRoutes регистрирует маршруты уведомлений
func (h *HTTPHandler) RegisterRoutes(mux *http.ServeMux, authMiddleware func(http.HandlerFunc) http.HandlerFunc) {
	mux.HandleFunc("GET /notifications", authMiddleware(h.handleList))
	mux.HandleFunc("GET /notifications/unread-count", authMiddleware(h.handleUnreadCount))
	mux.HandleFunc("POST /notifications/read-all", authMiddleware(h.handleMarkAllRead))
	mux.HandleFunc("POST /notifications/{id}/read", authMiddleware(h.handleMarkRead))
}

func (h *HTTPHandler) handleList(w http.ResponseWriter, r *http.Request) {
	userID, ok := userFromContext(r.Context())
	if !ok {
		respondUnauthorized(w, "unauthorized")
		return
	}

	notifications, err := h.listNotifications.Execute(r.Context(), in.ListNotificationsInput{
		UserID:     userID,
		OnlyUnread: r.URL.Query().Get("unread") == "true",
		Limit:      queryInt(r.URL.Query().Get("limit")),
		Offset:     queryInt(r.URL.Query().Get("offset")),
	})
	if err != nil {
		h.handleUseCaseError(w, err)
		return
	}

	h.respondJSON(w, http.StatusOK, map[string]any{"notifications": notifications})
}

func (h *HTTPHandler) handleUnreadCount(w http.ResponseWriter, r *http.Request) {
	userID, ok := userFromContext(r.Context())
	if !ok {
		respondUnauthorized(w, "unauthorized")
		return
	}

	count, err := h.unreadCount.Execute(r.Context(), userID)
	if err != nil {
		h.handleUseCaseError(w, err)
		return
	}

	h.respondJSON(w, http.StatusOK, map[string]int{"unread": count})
}

func (h *HTTPHandler) handleMarkRead(w http.ResponseWriter, r *http.Request) {
	userID, ok := userFromContext(r.Context())
	if !ok {
		respondUnauthorized(w, "unauthorized")
		return
	}

	if err := h.markRead.Execute(r.Context(), r.PathValue("id"), userID); err != nil {
		h.handleUseCaseError(w, err)
		return
	}

	h.respondJSON(w, http.StatusOK, map[string]string{"status": "read"})
}

func (h *HTTPHandler) handleMarkAllRead(w http.ResponseWriter, r *http.Request) {
	userID, ok := userFromContext(r.Context())
	if !ok {
		respondUnauthorized(w, "unauthorized")
		return
	}

	marked, err := h.markAllRead.Execute(r.Context(), userID)
	if err != nil {
		h.handleUseCaseError(w, err)
		return
	}

	h.respondJSON(w, http.StatusOK, map[string]int{"marked": marked})
}

// handleUseCaseError обрабатывает ошибки use case
func (h *HTTPHandler) handleUseCaseError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, domain.ErrNotificationNotFound):
		h.respondError(w, http.StatusNotFound, err.Error())
	case errors.Is(err, domain.ErrInvalidNotification):
		h.respondError(w, http.StatusBadRequest, err.Error())
	default:
		h.log.Error(logger.Entry{
			Action:  "usecase_error",
			Message: err.Error(),
			Error:   &logger.ErrObj{Msg: err.Error()},
		})
		h.respondError(w, http.StatusInternalServerError, "internal server error")
	}
}

// respondJSON отправляет JSON ответ
func (h *HTTPHandler) respondJSON(w http.ResponseWriter, status int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(data); err != nil {
		h.log.Error(logger.Entry{
			Action:  "encode_response_failed",
			Message: err.Error(),
			Error:   &logger.ErrObj{Msg: err.Error()},
		})
	}
}

// respondError отправляет JSON с ошибкой
func (h *HTTPHandler) respondError(w http.ResponseWriter, status int, message string) {
	h.respondJSON(w, status, map[string]string{"error": message})
}

func queryInt(s string) int {
	if s == "" {
		return 0
	}
	n, err := strconv.Atoi(s)
	if err != nil {
		return 0
	}
	return n
}
