package transport

import (
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"strconv"
	"time"

	"chaski/internal/admin/application/ports/in"
	adminout "chaski/internal/admin/application/ports/out"
	"chaski/internal/admin/domain"
	matchingin "chaski/internal/matching/application/ports/in"
	matchingdomain "chaski/internal/matching/domain"
	"chaski/internal/shared/logger"
	"chaski/internal/shared/user"
)

const maxBodySize = 1 << 20 // 1MB

// HTTPHandler обрабатывает HTTP запросы admin сервиса
type HTTPHandler struct {
	createUser         in.CreateUserUseCase
	login              in.LoginUseCase
	listUsers          in.ListUsersUseCase
	updateRole         in.UpdateRoleUseCase
	toggleActive       in.ToggleActiveUseCase
	toggleVerification in.ToggleVerificationUseCase
	stats              in.PlatformStatsUseCase
	listPackages       in.ListPackagesUseCase
	listRoutes         in.ListRoutesUseCase
	createRoute        matchingin.CreateRouteUseCase
	triggerMatching    in.TriggerMatchingUseCase
	log                *logger.Logger
}

// NewHTTPHandler создает новый HTTP handler admin сервиса
func NewHTTPHandler(
	createUser in.CreateUserUseCase,
	login in.LoginUseCase,
	listUsers in.ListUsersUseCase,
	updateRole in.UpdateRoleUseCase,
	toggleActive in.ToggleActiveUseCase,
	toggleVerification in.ToggleVerificationUseCase,
	stats in.PlatformStatsUseCase,
	listPackages in.ListPackagesUseCase,
	listRoutes in.ListRoutesUseCase,
	createRoute matchingin.CreateRouteUseCase,
	triggerMatching in.TriggerMatchingUseCase,
	log *logger.Logger,
) *HTTPHandler {
	return &HTTPHandler{
		createUser:         createUser,
		login:              login,
		listUsers:          listUsers,
		updateRole:         updateRole,
		toggleActive:       toggleActive,
		toggleVerification: toggleVerification,
		stats:              stats,
		listPackages:       listPackages,
		listRoutes:         listRoutes,
		createRoute:        createRoute,
		triggerMatching:    triggerMatching,
		log:                log,
	}
}

// RegisterRoutes регистрирует все HTTP маршруты
func (h *HTTPHandler) RegisterRoutes(mux *http.ServeMux, authMiddleware func(http.HandlerFunc) http.HandlerFunc) {
	mux.HandleFunc("GET /health", h.handleHealth)

	// Аутентификация — единственный незащищенный маршрут
	mux.HandleFunc("POST /auth/login", h.handleLogin)

	// Пользователи
	mux.HandleFunc("POST /admin/users", authMiddleware(AdminOnly(h.handleCreateUser)))
	mux.HandleFunc("GET /admin/users", authMiddleware(AdminOnly(h.handleListUsers)))
	mux.HandleFunc("PUT /admin/users/{id}", authMiddleware(AdminOnly(h.handleUpdateRole)))
	mux.HandleFunc("POST /admin/users/{id}/toggle-active", authMiddleware(AdminOnly(h.handleToggleActive)))
	mux.HandleFunc("POST /admin/users/{id}/toggle-verified", authMiddleware(AdminOnly(h.toggleVerificationHandler(adminout.FieldVerified))))
	mux.HandleFunc("POST /admin/users/{id}/toggle-phone-verified", authMiddleware(AdminOnly(h.toggleVerificationHandler(adminout.FieldPhoneVerified))))
	mux.HandleFunc("POST /admin/users/{id}/toggle-id-verified", authMiddleware(AdminOnly(h.toggleVerificationHandler(adminout.FieldIDVerified))))

	// Обзор платформы
	mux.HandleFunc("GET /admin/stats", authMiddleware(AdminOnly(h.handleStats)))
	mux.HandleFunc("GET /admin/packages", authMiddleware(AdminOnly(h.handleListPackages)))
	mux.HandleFunc("GET /admin/routes", authMiddleware(AdminOnly(h.handleListRoutes)))
	mux.HandleFunc("POST /admin/routes", authMiddleware(AdminOnly(h.handleCreateRoute)))

	// Ручной запуск matching job
	mux.HandleFunc("POST /admin/matching/run", authMiddleware(AdminOnly(h.handleTriggerMatching)))
}

func (h *HTTPHandler) handleHealth(w http.ResponseWriter, r *http.Request) {
	h.respondJSON(w, http.StatusOK, map[string]string{
		"status":  "ok",
		"service": "admin",
	})
}

// LoginHTTPRequest — тело запроса входа
type LoginHTTPRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

func (h *HTTPHandler) handleLogin(w http.ResponseWriter, r *http.Request) {
	var req LoginHTTPRequest
	if !h.decodeBody(w, r, &req) {
		return
	}

	output, err := h.login.Execute(r.Context(), in.LoginInput{
		Email:    req.Email,
		Password: req.Password,
	})
	if err != nil {
		h.handleUseCaseError(w, err)
		return
	}

	h.respondJSON(w, http.StatusOK, output)
}

// CreateUserHTTPRequest — тело запроса создания пользователя
type CreateUserHTTPRequest struct {
	Email    string `json:"email"`
	FullName string `json:"full_name"`
	Password string `json:"password"`
	Role     string `json:"role"`
}

func (h *HTTPHandler) handleCreateUser(w http.ResponseWriter, r *http.Request) {
	var req CreateUserHTTPRequest
	if !h.decodeBody(w, r, &req) {
		return
	}

	u, err := h.createUser.Execute(r.Context(), in.CreateUserInput{
		Email:    req.Email,
		FullName: req.FullName,
		Password: req.Password,
		Role:     req.Role,
	})
	if err != nil {
		h.handleUseCaseError(w, err)
		return
	}

	h.respondJSON(w, http.StatusCreated, u)
}

func (h *HTTPHandler) handleListUsers(w http.ResponseWriter, r *http.Request) {
	users, err := h.listUsers.Execute(r.Context(),
		queryInt(r.URL.Query().Get("limit")),
		queryInt(r.URL.Query().Get("offset")),
	)
	if err != nil {
		h.handleUseCaseError(w, err)
		return
	}

	h.respondJSON(w, http.StatusOK, map[string]any{"users": users})
}

// UpdateRoleHTTPRequest — тело запроса смены роли
type UpdateRoleHTTPRequest struct {
	Role string `json:"role"`
}

func (h *HTTPHandler) handleUpdateRole(w http.ResponseWriter, r *http.Request) {
	actorID, ok := userFromContext(r.Context())
	if !ok {
		respondUnauthorized(w, "unauthorized")
		return
	}

	var req UpdateRoleHTTPRequest
	if !h.decodeBody(w, r, &req) {
		return
	}

	u, err := h.updateRole.Execute(r.Context(), in.UpdateRoleInput{
		ActorID: actorID,
		UserID:  r.PathValue("id"),
		NewRole: req.Role,
	})
	if err != nil {
		h.handleUseCaseError(w, err)
		return
	}

	h.respondJSON(w, http.StatusOK, u)
}

func (h *HTTPHandler) handleToggleActive(w http.ResponseWriter, r *http.Request) {
	actorID, ok := userFromContext(r.Context())
	if !ok {
		respondUnauthorized(w, "unauthorized")
		return
	}

	u, err := h.toggleActive.Execute(r.Context(), in.ToggleActiveInput{
		ActorID: actorID,
		UserID:  r.PathValue("id"),
	})
	if err != nil {
		h.handleUseCaseError(w, err)
		return
	}

	h.respondJSON(w, http.StatusOK, u)
}

func (h *HTTPHandler) toggleVerificationHandler(field string) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		u, err := h.toggleVerification.Execute(r.Context(), in.ToggleVerificationInput{
			UserID: r.PathValue("id"),
			Field:  field,
		})
		if err != nil {
			h.handleUseCaseError(w, err)
			return
		}

		h.respondJSON(w, http.StatusOK, u)
	}
}

func (h *HTTPHandler) handleStats(w http.ResponseWriter, r *http.Request) {
	stats, err := h.stats.Execute(r.Context())
	if err != nil {
		h.handleUseCaseError(w, err)
		return
	}

	h.respondJSON(w, http.StatusOK, stats)
}

func (h *HTTPHandler) handleListPackages(w http.ResponseWriter, r *http.Request) {
	packages, err := h.listPackages.Execute(r.Context(),
		queryInt(r.URL.Query().Get("limit")),
		queryInt(r.URL.Query().Get("offset")),
	)
	if err != nil {
		h.handleUseCaseError(w, err)
		return
	}

	h.respondJSON(w, http.StatusOK, map[string]any{"packages": packages})
}

func (h *HTTPHandler) handleListRoutes(w http.ResponseWriter, r *http.Request) {
	routes, err := h.listRoutes.Execute(r.Context(),
		queryInt(r.URL.Query().Get("limit")),
		queryInt(r.URL.Query().Get("offset")),
	)
	if err != nil {
		h.handleUseCaseError(w, err)
		return
	}

	h.respondJSON(w, http.StatusOK, map[string]any{"routes": routes})
}

// CreateRouteHTTPRequest — создание маршрута от имени курьера
type CreateRouteHTTPRequest struct {
	CourierID      string     `json:"courier_id"`
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
	var req CreateRouteHTTPRequest
	if !h.decodeBody(w, r, &req) {
		return
	}
	if req.CourierID == "" {
		h.respondError(w, http.StatusBadRequest, "courier_id is required")
		return
	}

	route, err := h.createRoute.Execute(r.Context(), matchingin.CreateRouteInput{
		CourierID:      req.CourierID,
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

// TriggerMatchingHTTPRequest — параметры ручного запуска matching job
type TriggerMatchingHTTPRequest struct {
	Force         bool `json:"force,omitempty"`
	LookbackHours int  `json:"lookback_hours,omitempty"`
}

func (h *HTTPHandler) handleTriggerMatching(w http.ResponseWriter, r *http.Request) {
	var req TriggerMatchingHTTPRequest
	if r.ContentLength != 0 && !h.decodeBody(w, r, &req) {
		return
	}

	summary, err := h.triggerMatching.Execute(r.Context(), in.TriggerMatchingInput{
		Force:         req.Force,
		LookbackHours: req.LookbackHours,
	})
	if err != nil {
		h.handleUseCaseError(w, err)
		return
	}

	h.respondJSON(w, http.StatusOK, summary)
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
	var blocked *domain.ActivePackagesError
	switch {
	case errors.As(err, &blocked):
		h.respondJSON(w, http.StatusConflict, map[string]any{
			"error": blocked.Error(),
			"detail": map[string]any{
				"active_packages": blocked.Packages,
			},
		})
	case errors.Is(err, user.ErrUserNotFound):
		h.respondError(w, http.StatusNotFound, err.Error())
	case errors.Is(err, domain.ErrInvalidUser), errors.Is(err, domain.ErrInvalidRoleChange),
		errors.Is(err, matchingdomain.ErrInvalidRoute), errors.Is(err, matchingdomain.ErrInvalidCoordinates):
		h.respondError(w, http.StatusBadRequest, err.Error())
	case errors.Is(err, domain.ErrInvalidCredentials):
		h.respondError(w, http.StatusUnauthorized, err.Error())
	case errors.Is(err, domain.ErrSelfModification):
		h.respondError(w, http.StatusForbidden, err.Error())
	case errors.Is(err, domain.ErrEmailTaken):
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
