package transport

import (
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"strconv"
	"time"

	"chaski/internal/matching/application/ports/in"
	"chaski/internal/matching/domain"
	"chaski/internal/model"
	"chaski/internal/shared/logger"
	"chaski/internal/shared/user"
)

const maxBodySize = 1 << 20 // 1MB

// HTTPHandler обрабатывает HTTP запросы matching сервиса
type HTTPHandler struct {
	createRoute     in.CreateRouteUseCase
	listRoutes      in.ListRoutesUseCase
	deactivateRoute in.DeactivateRouteUseCase
	runMatchingJob  in.RunMatchingJobUseCase
	sweepDeadlines  in.SweepDeadlinesUseCase
	log             *logger.Logger
}

// NewHTTPHandler создает новый HTTP handler matching сервиса
func NewHTTPHandler(
	createRoute in.CreateRouteUseCase,
	listRoutes in.ListRoutesUseCase,
	deactivateRoute in.DeactivateRouteUseCase,
	runMatchingJob in.RunMatchingJobUseCase,
	sweepDeadlines in.SweepDeadlinesUseCase,
	log *logger.Logger,
) *HTTPHandler {
	return &HTTPHandler{
		createRoute:     createRoute,
		listRoutes:      listRoutes,
		deactivateRoute: deactivateRoute,
		runMatchingJob:  runMatchingJob,
		sweepDeadlines:  sweepDeadlines,
		log:             log,
	}
}

// RegisterRoutes регистрирует все HTTP маршруты
func (h *HTTPHandler) RegisterRoutes(mux *http.ServeMux, authMiddleware func(http.HandlerFunc) http.HandlerFunc) {
	mux.HandleFunc("GET /health", h.handleHealth)

	// Маршруты курьеров
	mux.HandleFunc("POST /routes", authMiddleware(h.handleCreateRoute))
	mux.HandleFunc("GET /routes", authMiddleware(h.handleListRoutes))
	mux.HandleFunc("POST /routes/{id}/deactivate", authMiddleware(h.handleDeactivateRoute))

	// Служебные операции (только admin)
	mux.HandleFunc("POST /matching/run", authMiddleware(h.handleRunMatching))
	mux.HandleFunc("POST /matching/sweep", authMiddleware(h.handleSweepDeadlines))
}

func (h *HTTPHandler) handleHealth(w http.ResponseWriter, r *http.Request) {
	h.respondJSON(w, http.StatusOK, map[string]string{
		"status":  "ok",
		"service": "matching",
	})
}

// CreateRouteHTTPRequest — тело запроса создания маршрута
type CreateRouteHTTPRequest struct {
	StartAddress   string     `json:"start_address"`
	StartLat       float64    `json:"start_lat"`
	StartLng       float64    `json:"start_lng"`
	EndAddress     string     `json:"end_address"`
	EndLat         float64    `json:"end_lat"`
	EndLng         float64    `json:"end_lng"`
	MaxDeviationKm float64    `json:"max_deviation_km,omitempty"`
	TripDate       *time.Time `json:"trip_date,omitempty"`
	DepartureTime  *time.Time `json:"departure_time,omitempty"`
}

func (h *HTTPHandler) handleCreateRoute(w http.ResponseWriter, r *http.Request) {
	userID, _, ok := userFromContext(r.Context())
	if !ok {
		respondUnauthorized(w, "unauthorized")
		return
	}

	var req CreateRouteHTTPRequest
	if !h.decodeBody(w, r, &req) {
		return
	}

	route, err := h.createRoute.Execute(r.Context(), in.CreateRouteInput{
		CourierID:      userID,
		StartAddress:   req.StartAddress,
		StartLat:       req.StartLat,
		StartLng:       req.StartLng,
		EndAddress:     req.EndAddress,
		EndLat:         req.EndLat,
		EndLng:         req.EndLng,
		MaxDeviationKm: req.MaxDeviationKm,
		TripDate:       req.TripDate,
		DepartureTime:  req.DepartureTime,
	})
	if err != nil {
		h.handleUseCaseError(w, err)
		return
	}

	h.respondJSON(w, http.StatusCreated, route)
}

func (h *HTTPHandler) handleListRoutes(w http.ResponseWriter, r *http.Request) {
	userID, _, ok := userFromContext(r.Context())
	if !ok {
		respondUnauthorized(w, "unauthorized")
		return
	}

	routes, err := h.listRoutes.Execute(r.Context(), userID)
	if err != nil {
		h.handleUseCaseError(w, err)
		return
	}

	h.respondJSON(w, http.StatusOK, map[string]any{"routes": routes})
}

func (h *HTTPHandler) handleDeactivateRoute(w http.ResponseWriter, r *http.Request) {
	userID, _, ok := userFromContext(r.Context())
	if !ok {
		respondUnauthorized(w, "unauthorized")
		return
	}

	err := h.deactivateRoute.Execute(r.Context(), in.DeactivateRouteInput{
		RouteID: r.PathValue("id"),
		ActorID: userID,
	})
	if err != nil {
		h.handleUseCaseError(w, err)
		return
	}

	h.respondJSON(w, http.StatusOK, map[string]string{"status": "deactivated"})
}

func (h *HTTPHandler) handleRunMatching(w http.ResponseWriter, r *http.Request) {
	_, role, ok := userFromContext(r.Context())
	if !ok {
		respondUnauthorized(w, "unauthorized")
		return
	}
	if role != model.RoleAdmin {
		h.respondError(w, http.StatusForbidden, "admin role required")
		return
	}

	input := in.RunMatchingJobInput{
		Force: r.URL.Query().Get("force") == "true",
	}
	if hours := queryInt(r.URL.Query().Get("lookback_hours")); hours > 0 {
		input.Lookback = time.Duration(hours) * time.Hour
	}

	result, err := h.runMatchingJob.Execute(r.Context(), input)
	if err != nil {
		h.handleUseCaseError(w, err)
		return
	}

	h.respondJSON(w, http.StatusOK, result)
}

func (h *HTTPHandler) handleSweepDeadlines(w http.ResponseWriter, r *http.Request) {
	_, role, ok := userFromContext(r.Context())
	if !ok {
		respondUnauthorized(w, "unauthorized")
		return
	}
	if role != model.RoleAdmin {
		h.respondError(w, http.StatusForbidden, "admin role required")
		return
	}

	result, err := h.sweepDeadlines.Execute(r.Context())
	if err != nil {
		h.handleUseCaseError(w, err)
		return
	}

	h.respondJSON(w, http.StatusOK, result)
}

// decodeBody парсит JSON тело запроса, отвечая 400 при ошибке
func (h *HTTPHandler) decodeBody(w http.ResponseWriter, r *http.Request, dst any) bool {
	r.Body = http.MaxBytesReader(w, r.Body, maxBodySize)
	decoder := json.NewDecoder(r.Body)
	decoder.DisallowUnknownFields()

	if err := decoder.Decode(dst); err != nil {
		if errors.Is(err, io.EOF) {
			h.respondError(w, http.StatusBadRequest, "empty request body")
			return false
		}
		h.log.Error(logger.Entry{
			Action:  "parse_request_failed",
			Message: err.Error(),
			Error:   &logger.ErrObj{Msg: err.Error()},
		})
		h.respondError(w, http.StatusBadRequest, "invalid request format")
		return false
	}
	return true
}

// handleUseCaseError обрабатывает ошибки use case
func (h *HTTPHandler) handleUseCaseError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, domain.ErrRouteNotFound), errors.Is(err, user.ErrUserNotFound):
		h.respondError(w, http.StatusNotFound, err.Error())
	case errors.Is(err, domain.ErrInvalidRoute), errors.Is(err, domain.ErrInvalidCoordinates):
		h.respondError(w, http.StatusBadRequest, err.Error())
	case errors.Is(err, domain.ErrForbidden):
		h.respondError(w, http.StatusForbidden, err.Error())
	case errors.Is(err, domain.ErrJobAlreadyRunning):
		h.respondError(w, http.StatusConflict, err.Error())
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
