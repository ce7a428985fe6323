package handler

import (
	"encoding/json"
	"net/http"

	"fronteira/internal/model"
	"fronteira/internal/service"

	"github.com/rs/zerolog"
)

// FulfillmentHandler handles lifecycle HTTP requests: status transitions,
// delivery claims and payment callbacks.
type FulfillmentHandler struct {
	service service.FulfillmentService
	logger  zerolog.Logger
}

// NewFulfillmentHandler creates a new fulfillment handler.
func NewFulfillmentHandler(service service.FulfillmentService, logger zerolog.Logger) *FulfillmentHandler {
	return &FulfillmentHandler{
		service: service,
		logger:  logger.With().Str("handler", "fulfillment").Logger(),
	}
}

// SetOrderStatus handles PATCH /api/orders/{id}/status requests.
func (h *FulfillmentHandler) SetOrderStatus(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPatch {
		writeError(w, http.StatusMethodNotAllowed, "method not allowed", h.logger)
		return
	}

	orderID, ok := parseIDSegment(w, r, "/api/orders/", h.logger)
	if !ok {
		return
	}

	var req model.StatusChangeRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body", h.logger)
		return
	}

	if err := h.service.SetOrderStatus(r.Context(), orderID, req.Status); err != nil {
		writeServiceError(w, err, h.logger)
		return
	}

	writeJSON(w, http.StatusOK, map[string]string{"status": req.Status})
}

// SetDeliveryStatus handles PATCH /api/deliveries/{id}/status requests.
func (h *FulfillmentHandler) SetDeliveryStatus(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPatch {
		writeError(w, http.StatusMethodNotAllowed, "method not allowed", h.logger)
		return
	}

	deliveryID, ok := parseIDSegment(w, r, "/api/deliveries/", h.logger)
	if !ok {
		return
	}

	var req model.StatusChangeRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body", h.logger)
		return
	}

	if err := h.service.SetDeliveryStatus(r.Context(), deliveryID, req.Status); err != nil {
		writeServiceError(w, err, h.logger)
		return
	}

	writeJSON(w, http.StatusOK, map[string]string{"status": req.Status})
}

// ClaimDelivery handles POST /api/deliveries/{id}/claim requests.
func (h *FulfillmentHandler) ClaimDelivery(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		writeError(w, http.StatusMethodNotAllowed, "method not allowed", h.logger)
		return
	}

	deliveryID, ok := parseIDSegment(w, r, "/api/deliveries/", h.logger)
	if !ok {
		return
	}

	var req model.ClaimRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body", h.logger)
		return
	}

	if err := h.service.ClaimDelivery(r.Context(), deliveryID, req.DriverID); err != nil {
		writeServiceError(w, err, h.logger)
		return
	}

	writeJSON(w, http.StatusOK, map[string]string{"status": model.DeliveryStatusAssigned})
}

// PaymentCallback handles POST /api/payments/callback requests from the
// external payment collaborator.
func (h *FulfillmentHandler) PaymentCallback(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		writeError(w, http.StatusMethodNotAllowed, "method not allowed", h.logger)
		return
	}

	var cb model.PaymentCallback
	if err := json.NewDecoder(r.Body).Decode(&cb); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body", h.logger)
		return
	}

	if err := h.service.HandlePaymentCallback(r.Context(), &cb); err != nil {
		writeServiceError(w, err, h.logger)
		return
	}

	writeJSON(w, http.StatusOK, map[string]bool{"received": true})
}
