package transport

import (
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"strconv"
	"time"

	"chaski/internal/delivery/application/ports/in"
	"chaski/internal/delivery/domain"
	"chaski/internal/shared/logger"
	"chaski/internal/shared/user"
)

const maxBodySize = 1 << 20 // 1MB

// HTTPHandler обрабатывает HTTP запросы Delivery Service
type HTTPHandler struct {
	createPackageUC  in.CreatePackageUseCase
	updatePackageUC  in.UpdatePackageUseCase
	publishPackageUC in.PublishPackageUseCase
	getPackageUC     in.GetPackageUseCase
	listPackagesUC   in.ListPackagesUseCase
	advanceStatusUC  in.AdvanceStatusUseCase
	cancelPackageUC  in.CancelPackageUseCase
	acceptPackageUC  in.AcceptPackageUseCase
	submitBidUC      in.SubmitBidUseCase
	selectBidUC      in.SelectBidUseCase
	listBidsUC       in.ListBidsUseCase
	sendMessageUC    in.SendMessageUseCase
	listMessagesUC   in.ListMessagesUseCase
	log              *logger.Logger
}

// NewHTTPHandler создает новый HTTP handler
func NewHTTPHandler(
	createPackageUC in.CreatePackageUseCase,
	updatePackageUC in.UpdatePackageUseCase,
	publishPackageUC in.PublishPackageUseCase,
	getPackageUC in.GetPackageUseCase,
	listPackagesUC in.ListPackagesUseCase,
	advanceStatusUC in.AdvanceStatusUseCase,
	cancelPackageUC in.CancelPackageUseCase,
	acceptPackageUC in.AcceptPackageUseCase,
	submitBidUC in.SubmitBidUseCase,
	selectBidUC in.SelectBidUseCase,
	listBidsUC in.ListBidsUseCase,
	sendMessageUC in.SendMessageUseCase,
	listMessagesUC in.ListMessagesUseCase,
	log *logger.Logger,
) *HTTPHandler {
	return &HTTPHandler{
		createPackageUC:  createPackageUC,
		updatePackageUC:  updatePackageUC,
		publishPackageUC: publishPackageUC,
		getPackageUC:     getPackageUC,
		listPackagesUC:   listPackagesUC,
		advanceStatusUC:  advanceStatusUC,
		cancelPackageUC:  cancelPackageUC,
		acceptPackageUC:  acceptPackageUC,
		submitBidUC:      submitBidUC,
		selectBidUC:      selectBidUC,
		listBidsUC:       listBidsUC,
		sendMessageUC:    sendMessageUC,
		listMessagesUC:   listMessagesUC,
		log:              log,
	}
}

// RegisterRoutes регистрирует все HTTP маршруты
func (h *HTTPHandler) RegisterRoutes(mux *http.ServeMux, authMiddleware func(http.HandlerFunc) http.HandlerFunc) {
	// liveness
	mux.HandleFunc("GET /health", h.handleHealth)

	// packages
	mux.HandleFunc("POST /packages", authMiddleware(h.handleCreatePackage))
	mux.HandleFunc("GET /packages", authMiddleware(h.handleListPackages))
	mux.HandleFunc("GET /packages/{id}", authMiddleware(h.handleGetPackage))
	mux.HandleFunc("PUT /packages/{id}", authMiddleware(h.handleUpdatePackage))
	mux.HandleFunc("POST /packages/{id}/publish", authMiddleware(h.handlePublishPackage))
	mux.HandleFunc("POST /packages/{id}/status", authMiddleware(h.handleAdvanceStatus))
	mux.HandleFunc("POST /packages/{id}/cancel", authMiddleware(h.handleCancelPackage))

	// прямое принятие посылки курьером, минуя торги
	mux.HandleFunc("POST /matching/accept/{id}", authMiddleware(h.handleAcceptPackage))

	// bids
	mux.HandleFunc("POST /bids", authMiddleware(h.handleSubmitBid))
	mux.HandleFunc("GET /packages/{id}/bids", authMiddleware(h.handleListBids))
	mux.HandleFunc("POST /packages/{id}/bids/{bidID}/select", authMiddleware(h.handleSelectBid))

	// chat
	mux.HandleFunc("POST /messages", authMiddleware(h.handleSendMessage))
	mux.HandleFunc("GET /messages/package/{id}", authMiddleware(h.handleListMessages))
}

// handleHealth обрабатывает health check
func (h *HTTPHandler) handleHealth(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write([]byte(`{"status":"ok"}`))
}

// CreatePackageHTTPRequest — HTTP DTO для создания посылки
type CreatePackageHTTPRequest struct {
	Size           string  `json:"size"`
	WeightKg       float64 `json:"weight_kg"`
	PickupAddress  string  `json:"pickup_address"`
	PickupLat      float64 `json:"pickup_lat"`
	PickupLng      float64 `json:"pickup_lng"`
	PickupContact  string  `json:"pickup_contact,omitempty"`
	DropoffAddress string  `json:"dropoff_address"`
	DropoffLat     float64 `json:"dropoff_lat"`
	DropoffLng     float64 `json:"dropoff_lng"`
	DropoffContact string  `json:"dropoff_contact,omitempty"`
}

// handleCreatePackage обрабатывает POST /packages
func (h *HTTPHandler) handleCreatePackage(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	userID, _, ok := userFromContext(ctx)
	if !ok {
		h.respondError(w, http.StatusUnauthorized, "unauthorized")
		return
	}

	var req CreatePackageHTTPRequest
	if !h.decodeBody(w, r, &req) {
		return
	}
	if req.PickupAddress == "" {
		h.respondError(w, http.StatusBadRequest, "pickup_address is required")
		return
	}
	if req.DropoffAddress == "" {
		h.respondError(w, http.StatusBadRequest, "dropoff_address is required")
		return
	}

	pkg, err := h.createPackageUC.Execute(ctx, in.CreatePackageInput{
		SenderID:       userID,
		Size:           req.Size,
		WeightKg:       req.WeightKg,
		PickupAddress:  req.PickupAddress,
		PickupLat:      req.PickupLat,
		PickupLng:      req.PickupLng,
		PickupContact:  req.PickupContact,
		DropoffAddress: req.DropoffAddress,
		DropoffLat:     req.DropoffLat,
		DropoffLng:     req.DropoffLng,
		DropoffContact: req.DropoffContact,
	})
	if err != nil {
		h.handleUseCaseError(w, err)
		return
	}
	h.respondJSON(w, http.StatusCreated, pkg)
}

// handleUpdatePackage обрабатывает PUT /packages/{id}.
// Правка доступна отправителю до публикации посылки.
func (h *HTTPHandler) handleUpdatePackage(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	userID, _, ok := userFromContext(ctx)
	if !ok {
		h.respondError(w, http.StatusUnauthorized, "unauthorized")
		return
	}

	var req CreatePackageHTTPRequest
	if !h.decodeBody(w, r, &req) {
		return
	}
	if req.PickupAddress == "" {
		h.respondError(w, http.StatusBadRequest, "pickup_address is required")
		return
	}
	if req.DropoffAddress == "" {
		h.respondError(w, http.StatusBadRequest, "dropoff_address is required")
		return
	}

	pkg, err := h.updatePackageUC.Execute(ctx, in.UpdatePackageInput{
		PackageID:      r.PathValue("id"),
		ActorID:        userID,
		Size:           req.Size,
		WeightKg:       req.WeightKg,
		PickupAddress:  req.PickupAddress,
		PickupLat:      req.PickupLat,
		PickupLng:      req.PickupLng,
		PickupContact:  req.PickupContact,
		DropoffAddress: req.DropoffAddress,
		DropoffLat:     req.DropoffLat,
		DropoffLng:     req.DropoffLng,
		DropoffContact: req.DropoffContact,
	})
	if err != nil {
		h.handleUseCaseError(w, err)
		return
	}
	h.respondJSON(w, http.StatusOK, pkg)
}

// handleListPackages обрабатывает GET /packages
func (h *HTTPHandler) handleListPackages(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	userID, _, ok := userFromContext(ctx)
	if !ok {
		h.respondError(w, http.StatusUnauthorized, "unauthorized")
		return
	}

	q := r.URL.Query()
	input := in.ListPackagesInput{
		Status: q.Get("status"),
		Limit:  queryInt(q.Get("limit")),
		Offset: queryInt(q.Get("offset")),
	}
	// По умолчанию — посылки текущего пользователя как отправителя;
	// as=courier переключает на назначенные ему посылки
	if q.Get("as") == "courier" {
		input.CourierID = userID
	} else {
		input.SenderID = userID
	}

	packages, err := h.listPackagesUC.Execute(ctx, input)
	if err != nil {
		h.handleUseCaseError(w, err)
		return
	}
	h.respondJSON(w, http.StatusOK, map[string]any{"packages": packages})
}

// handleGetPackage обрабатывает GET /packages/{id}
func (h *HTTPHandler) handleGetPackage(w http.ResponseWriter, r *http.Request) {
	pkg, err := h.getPackageUC.Execute(r.Context(), r.PathValue("id"))
	if err != nil {
		h.handleUseCaseError(w, err)
		return
	}
	h.respondJSON(w, http.StatusOK, pkg)
}

// PublishPackageHTTPRequest — HTTP DTO для публикации посылки
type PublishPackageHTTPRequest struct {
	BidDeadline *time.Time `json:"bid_deadline,omitempty"`
}

// handlePublishPackage обрабатывает POST /packages/{id}/publish
func (h *HTTPHandler) handlePublishPackage(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	userID, _, ok := userFromContext(ctx)
	if !ok {
		h.respondError(w, http.StatusUnauthorized, "unauthorized")
		return
	}

	var req PublishPackageHTTPRequest
	if r.ContentLength != 0 && !h.decodeBody(w, r, &req) {
		return
	}

	input := in.PublishPackageInput{PackageID: r.PathValue("id"), ActorID: userID}
	if req.BidDeadline != nil {
		input.BidDeadline = *req.BidDeadline
	}

	pkg, err := h.publishPackageUC.Execute(ctx, input)
	if err != nil {
		h.handleUseCaseError(w, err)
		return
	}
	h.respondJSON(w, http.StatusOK, pkg)
}

// AdvanceStatusHTTPRequest — HTTP DTO для продвижения статуса
type AdvanceStatusHTTPRequest struct {
	Status string `json:"status"`
}

// handleAdvanceStatus обрабатывает POST /packages/{id}/status
func (h *HTTPHandler) handleAdvanceStatus(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	userID, _, ok := userFromContext(ctx)
	if !ok {
		h.respondError(w, http.StatusUnauthorized, "unauthorized")
		return
	}

	var req AdvanceStatusHTTPRequest
	if !h.decodeBody(w, r, &req) {
		return
	}
	if req.Status == "" {
		h.respondError(w, http.StatusBadRequest, "status is required")
		return
	}

	pkg, err := h.advanceStatusUC.Execute(ctx, in.AdvanceStatusInput{
		PackageID: r.PathValue("id"),
		ActorID:   userID,
		ToStatus:  req.Status,
	})
	if err != nil {
		h.handleUseCaseError(w, err)
		return
	}
	h.respondJSON(w, http.StatusOK, pkg)
}

// CancelPackageHTTPRequest — HTTP DTO для отмены посылки
type CancelPackageHTTPRequest struct {
	Reason string `json:"reason,omitempty"`
	// mark_as_failed учитывается только для роли admin
	MarkAsFailed bool `json:"mark_as_failed,omitempty"`
}

// handleCancelPackage обрабатывает POST /packages/{id}/cancel
func (h *HTTPHandler) handleCancelPackage(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	userID, role, ok := userFromContext(ctx)
	if !ok {
		h.respondError(w, http.StatusUnauthorized, "unauthorized")
		return
	}

	var req CancelPackageHTTPRequest
	if r.ContentLength != 0 && !h.decodeBody(w, r, &req) {
		return
	}

	pkg, err := h.cancelPackageUC.Execute(ctx, in.CancelPackageInput{
		PackageID:    r.PathValue("id"),
		ActorID:      userID,
		ActorRole:    role,
		Reason:       req.Reason,
		MarkAsFailed: req.MarkAsFailed,
	})
	if err != nil {
		h.handleUseCaseError(w, err)
		return
	}
	h.respondJSON(w, http.StatusOK, pkg)
}

// handleAcceptPackage обрабатывает POST /matching/accept/{id}
func (h *HTTPHandler) handleAcceptPackage(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	userID, _, ok := userFromContext(ctx)
	if !ok {
		h.respondError(w, http.StatusUnauthorized, "unauthorized")
		return
	}

	pkg, err := h.acceptPackageUC.Execute(ctx, in.AcceptPackageInput{
		PackageID: r.PathValue("id"),
		CourierID: userID,
	})
	if err != nil {
		h.handleUseCaseError(w, err)
		return
	}
	h.respondJSON(w, http.StatusOK, pkg)
}

// SubmitBidHTTPRequest — HTTP DTO для подачи ставки
type SubmitBidHTTPRequest struct {
	PackageID              string     `json:"package_id"`
	ProposedPrice          float64    `json:"proposed_price"`
	EstimatedDeliveryHours *int       `json:"estimated_delivery_hours,omitempty"`
	EstimatedPickupTime    *time.Time `json:"estimated_pickup_time,omitempty"`
	Message                string     `json:"message,omitempty"`
}

// handleSubmitBid обрабатывает POST /bids
func (h *HTTPHandler) handleSubmitBid(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	userID, _, ok := userFromContext(ctx)
	if !ok {
		h.respondError(w, http.StatusUnauthorized, "unauthorized")
		return
	}

	var req SubmitBidHTTPRequest
	if !h.decodeBody(w, r, &req) {
		return
	}
	if req.PackageID == "" {
		h.respondError(w, http.StatusBadRequest, "package_id is required")
		return
	}

	output, err := h.submitBidUC.Execute(ctx, in.SubmitBidInput{
		PackageID:              req.PackageID,
		CourierID:              userID,
		ProposedPrice:          req.ProposedPrice,
		EstimatedDeliveryHours: req.EstimatedDeliveryHours,
		EstimatedPickupTime:    req.EstimatedPickupTime,
		Message:                req.Message,
	})
	if err != nil {
		h.handleUseCaseError(w, err)
		return
	}
	h.respondJSON(w, http.StatusCreated, output)
}

// handleListBids обрабатывает GET /packages/{id}/bids
func (h *HTTPHandler) handleListBids(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	userID, _, ok := userFromContext(ctx)
	if !ok {
		h.respondError(w, http.StatusUnauthorized, "unauthorized")
		return
	}

	bids, err := h.listBidsUC.Execute(ctx, r.PathValue("id"), userID)
	if err != nil {
		h.handleUseCaseError(w, err)
		return
	}
	h.respondJSON(w, http.StatusOK, map[string]any{"bids": bids})
}

// handleSelectBid обрабатывает POST /packages/{id}/bids/{bidID}/select
func (h *HTTPHandler) handleSelectBid(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	userID, _, ok := userFromContext(ctx)
	if !ok {
		h.respondError(w, http.StatusUnauthorized, "unauthorized")
		return
	}

	output, err := h.selectBidUC.Execute(ctx, in.SelectBidInput{
		PackageID: r.PathValue("id"),
		BidID:     r.PathValue("bidID"),
		ActorID:   userID,
	})
	if err != nil {
		h.handleUseCaseError(w, err)
		return
	}
	h.respondJSON(w, http.StatusOK, output)
}

// SendMessageHTTPRequest — HTTP DTO для сообщения чата
type SendMessageHTTPRequest struct {
	PackageID string `json:"package_id"`
	Body      string `json:"body"`
}

// handleSendMessage обрабатывает POST /messages
func (h *HTTPHandler) handleSendMessage(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	userID, _, ok := userFromContext(ctx)
	if !ok {
		h.respondError(w, http.StatusUnauthorized, "unauthorized")
		return
	}

	var req SendMessageHTTPRequest
	if !h.decodeBody(w, r, &req) {
		return
	}
	if req.PackageID == "" {
		h.respondError(w, http.StatusBadRequest, "package_id is required")
		return
	}

	msg, err := h.sendMessageUC.Execute(ctx, in.SendMessageInput{
		PackageID: req.PackageID,
		SenderID:  userID,
		Body:      req.Body,
	})
	if err != nil {
		h.handleUseCaseError(w, err)
		return
	}
	h.respondJSON(w, http.StatusCreated, msg)
}

// handleListMessages обрабатывает GET /messages/package/{id}
func (h *HTTPHandler) handleListMessages(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	userID, _, ok := userFromContext(ctx)
	if !ok {
		h.respondError(w, http.StatusUnauthorized, "unauthorized")
		return
	}

	msgs, err := h.listMessagesUC.Execute(ctx, in.ListMessagesInput{
		PackageID: r.PathValue("id"),
		ReaderID:  userID,
	})
	if err != nil {
		h.handleUseCaseError(w, err)
		return
	}
	h.respondJSON(w, http.StatusOK, map[string]any{"messages": msgs})
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
	case errors.Is(err, domain.ErrPackageNotFound), errors.Is(err, domain.ErrBidNotFound),
		errors.Is(err, user.ErrUserNotFound):
		h.respondError(w, http.StatusNotFound, err.Error())
	case errors.Is(err, domain.ErrInvalidBid), errors.Is(err, domain.ErrInvalidCoordinates),
		errors.Is(err, domain.ErrMessageNotAllowed):
		h.respondError(w, http.StatusBadRequest, err.Error())
	case errors.Is(err, domain.ErrForbidden), errors.Is(err, domain.ErrCourierNotVerified):
		h.respondError(w, http.StatusForbidden, err.Error())
	case errors.Is(err, domain.ErrStatusConflict), errors.Is(err, domain.ErrNotCancellable):
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
