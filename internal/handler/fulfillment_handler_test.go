package handler

import (
	"bytes"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"fronteira/internal/model"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
)

func TestFulfillmentHandler_SetOrderStatus(t *testing.T) {
	logger := zerolog.Nop()
	orderID := uuid.New()

	tests := []struct {
		name           string
		method         string
		path           string
		requestBody    interface{}
		mockError      error
		expectedStatus int
		expectService  bool
	}{
		{
			name:           "Success",
			method:         http.MethodPatch,
			path:           "/api/orders/" + orderID.String() + "/status",
			requestBody:    model.StatusChangeRequest{Status: model.OrderStatusPaid},
			mockError:      nil,
			expectedStatus: http.StatusOK,
			expectService:  true,
		},
		{
			name:           "Invalid transition",
			method:         http.MethodPatch,
			path:           "/api/orders/" + orderID.String() + "/status",
			requestBody:    model.StatusChangeRequest{Status: model.OrderStatusPaid},
			mockError:      model.NewInvalidTransitionError(model.OrderStatusDelivered, model.OrderStatusPaid),
			expectedStatus: http.StatusConflict,
			expectService:  true,
		},
		{
			name:           "Order not found",
			method:         http.MethodPatch,
			path:           "/api/orders/" + orderID.String() + "/status",
			requestBody:    model.StatusChangeRequest{Status: model.OrderStatusPaid},
			mockError:      model.ErrOrderNotFound,
			expectedStatus: http.StatusNotFound,
			expectService:  true,
		},
		{
			name:           "Unknown status",
			method:         http.MethodPatch,
			path:           "/api/orders/" + orderID.String() + "/status",
			requestBody:    model.StatusChangeRequest{Status: "teleported"},
			mockError:      model.NewValidationError("unknown order status"),
			expectedStatus: http.StatusBadRequest,
			expectService:  true,
		},
		{
			name:           "Invalid JSON",
			method:         http.MethodPatch,
			path:           "/api/orders/" + orderID.String() + "/status",
			requestBody:    "not json",
			mockError:      nil,
			expectedStatus: http.StatusBadRequest,
			expectService:  false,
		},
		{
			name:           "Invalid id format",
			method:         http.MethodPatch,
			path:           "/api/orders/nope/status",
			requestBody:    model.StatusChangeRequest{Status: model.OrderStatusPaid},
			mockError:      nil,
			expectedStatus: http.StatusBadRequest,
			expectService:  false,
		},
		{
			name:           "Method not allowed",
			method:         http.MethodPost,
			path:           "/api/orders/" + orderID.String() + "/status",
			requestBody:    nil,
			mockError:      nil,
			expectedStatus: http.StatusMethodNotAllowed,
			expectService:  false,
		},
		{
			name:           "Service internal error",
			method:         http.MethodPatch,
			path:           "/api/orders/" + orderID.String() + "/status",
			requestBody:    model.StatusChangeRequest{Status: model.OrderStatusPaid},
			mockError:      errors.New("database connection failed"),
			expectedStatus: http.StatusInternalServerError,
			expectService:  true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			mockService := new(MockFulfillmentService)
			handler := NewFulfillmentHandler(mockService, logger)

			var body []byte
			if tt.requestBody != nil {
				if str, ok := tt.requestBody.(string); ok {
					body = []byte(str)
				} else {
					body, _ = json.Marshal(tt.requestBody)
				}
			}

			if tt.expectService {
				mockService.On("SetOrderStatus", mock.Anything, orderID, mock.AnythingOfType("string")).
					Return(tt.mockError)
			}

			req := httptest.NewRequest(tt.method, tt.path, bytes.NewBuffer(body))
			req.Header.Set("Content-Type", "application/json")
			w := httptest.NewRecorder()

			handler.SetOrderStatus(w, req)

			assert.Equal(t, tt.expectedStatus, w.Code)

			if tt.expectService {
				mockService.AssertExpectations(t)
			}
		})
	}
}

func TestFulfillmentHandler_SetDeliveryStatus(t *testing.T) {
	logger := zerolog.Nop()
	deliveryID := uuid.New()

	tests := []struct {
		name           string
		requestBody    model.StatusChangeRequest
		mockError      error
		expectedStatus int
	}{
		{
			name:           "Success",
			requestBody:    model.StatusChangeRequest{Status: model.DeliveryStatusInTransit},
			mockError:      nil,
			expectedStatus: http.StatusOK,
		},
		{
			name:           "Delivery not found",
			requestBody:    model.StatusChangeRequest{Status: model.DeliveryStatusInTransit},
			mockError:      model.ErrDeliveryNotFound,
			expectedStatus: http.StatusNotFound,
		},
		{
			name:           "Backwards transition rejected",
			requestBody:    model.StatusChangeRequest{Status: model.DeliveryStatusPending},
			mockError:      model.NewInvalidTransitionError(model.DeliveryStatusInTransit, model.DeliveryStatusPending),
			expectedStatus: http.StatusConflict,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			mockService := new(MockFulfillmentService)
			handler := NewFulfillmentHandler(mockService, logger)

			mockService.On("SetDeliveryStatus", mock.Anything, deliveryID, tt.requestBody.Status).
				Return(tt.mockError)

			body, _ := json.Marshal(tt.requestBody)
			req := httptest.NewRequest(http.MethodPatch, "/api/deliveries/"+deliveryID.String()+"/status", bytes.NewBuffer(body))
			req.Header.Set("Content-Type", "application/json")
			w := httptest.NewRecorder()

			handler.SetDeliveryStatus(w, req)

			assert.Equal(t, tt.expectedStatus, w.Code)
			mockService.AssertExpectations(t)
		})
	}
}

func TestFulfillmentHandler_ClaimDelivery(t *testing.T) {
	logger := zerolog.Nop()
	deliveryID := uuid.New()
	driverID := uuid.New()

	tests := []struct {
		name           string
		mockError      error
		expectedStatus int
	}{
		{
			name:           "Success",
			mockError:      nil,
			expectedStatus: http.StatusOK,
		},
		{
			name:           "Already claimed",
			mockError:      model.ErrAlreadyClaimed,
			expectedStatus: http.StatusConflict,
		},
		{
			name:           "Driver not found",
			mockError:      model.ErrDriverNotFound,
			expectedStatus: http.StatusNotFound,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			mockService := new(MockFulfillmentService)
			handler := NewFulfillmentHandler(mockService, logger)

			mockService.On("ClaimDelivery", mock.Anything, deliveryID, driverID).
				Return(tt.mockError)

			body, _ := json.Marshal(model.ClaimRequest{DriverID: driverID})
			req := httptest.NewRequest(http.MethodPost, "/api/deliveries/"+deliveryID.String()+"/claim", bytes.NewBuffer(body))
			req.Header.Set("Content-Type", "application/json")
			w := httptest.NewRecorder()

			handler.ClaimDelivery(w, req)

			assert.Equal(t, tt.expectedStatus, w.Code)
			mockService.AssertExpectations(t)

			if tt.mockError == nil {
				var resp map[string]string
				assert.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
				assert.Equal(t, model.DeliveryStatusAssigned, resp["status"])
			}
		})
	}
}

func TestFulfillmentHandler_PaymentCallback(t *testing.T) {
	logger := zerolog.Nop()
	orderID := uuid.New()

	tests := []struct {
		name           string
		requestBody    interface{}
		mockError      error
		expectedStatus int
		expectService  bool
	}{
		{
			name:           "Approved",
			requestBody:    model.PaymentCallback{OrderID: orderID, Outcome: model.PaymentApproved},
			mockError:      nil,
			expectedStatus: http.StatusOK,
			expectService:  true,
		},
		{
			name:           "Unknown order",
			requestBody:    model.PaymentCallback{OrderID: orderID, Outcome: model.PaymentApproved},
			mockError:      model.ErrOrderNotFound,
			expectedStatus: http.StatusNotFound,
			expectService:  true,
		},
		{
			name:           "Invalid JSON",
			requestBody:    "not json",
			mockError:      nil,
			expectedStatus: http.StatusBadRequest,
			expectService:  false,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			mockService := new(MockFulfillmentService)
			handler := NewFulfillmentHandler(mockService, logger)

			var body []byte
			if str, ok := tt.requestBody.(string); ok {
				body = []byte(str)
			} else {
				body, _ = json.Marshal(tt.requestBody)
			}

			if tt.expectService {
				mockService.On("HandlePaymentCallback", mock.Anything, mock.AnythingOfType("*model.PaymentCallback")).
					Return(tt.mockError)
			}

			req := httptest.NewRequest(http.MethodPost, "/api/payments/callback", bytes.NewBuffer(body))
			req.Header.Set("Content-Type", "application/json")
			w := httptest.NewRecorder()

			handler.PaymentCallback(w, req)

			assert.Equal(t, tt.expectedStatus, w.Code)

			if tt.expectService {
				mockService.AssertExpectations(t)
			}
		})
	}
}
