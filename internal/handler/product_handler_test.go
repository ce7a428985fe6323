package handler

import (
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"fronteira/internal/model"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
)

func TestProductHandler_GetAll(t *testing.T) {
	logger := zerolog.Nop()

	testProducts := []model.Product{
		{ID: "P001", Name: "Yerba Mate 1kg", Price: 9500, Stock: 50, Active: true, WeightKg: 1.0, PickupEnabled: true, CreatedAt: time.Now()},
		{ID: "P002", Name: "Dulce de Leche", Price: 4200, Stock: 30, Active: true, WeightKg: 0.45, CreatedAt: time.Now()},
	}

	tests := []struct {
		name           string
		method         string
		queryParams    string
		mockReturn     []model.Product
		mockError      error
		expectedStatus int
		expectService  bool
		limit          int
		offset         int
	}{
		{
			name:           "Success with default pagination",
			method:         http.MethodGet,
			queryParams:    "",
			mockReturn:     testProducts,
			expectedStatus: http.StatusOK,
			expectService:  true,
			limit:          0,
			offset:         0,
		},
		{
			name:           "Success with custom pagination",
			method:         http.MethodGet,
			queryParams:    "?limit=5&offset=10",
			mockReturn:     testProducts,
			expectedStatus: http.StatusOK,
			expectService:  true,
			limit:          5,
			offset:         10,
		},
		{
			name:           "Service error",
			method:         http.MethodGet,
			queryParams:    "",
			mockError:      errors.New("database error"),
			expectedStatus: http.StatusInternalServerError,
			expectService:  true,
			limit:          0,
			offset:         0,
		},
		{
			name:           "Method not allowed",
			method:         http.MethodPost,
			queryParams:    "",
			expectedStatus: http.StatusMethodNotAllowed,
			expectService:  false,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			mockService := new(MockProductService)
			handler := NewProductHandler(mockService, logger)

			if tt.expectService {
				mockService.On("GetAll", mock.Anything, tt.limit, tt.offset).
					Return(tt.mockReturn, tt.mockError)
			}

			req := httptest.NewRequest(tt.method, "/api/products"+tt.queryParams, nil)
			w := httptest.NewRecorder()

			handler.GetAll(w, req)

			assert.Equal(t, tt.expectedStatus, w.Code)

			if tt.expectedStatus == http.StatusOK {
				var got []model.Product
				assert.NoError(t, json.NewDecoder(w.Body).Decode(&got))
				assert.Len(t, got, len(tt.mockReturn))
			}

			if tt.expectService {
				mockService.AssertExpectations(t)
			}
		})
	}
}

func TestProductHandler_GetByID(t *testing.T) {
	logger := zerolog.Nop()

	testProduct := &model.Product{
		ID:            "P001",
		Name:          "Yerba Mate 1kg",
		Price:         9500,
		Stock:         50,
		Active:        true,
		WeightKg:      1.0,
		PickupEnabled: true,
		CreatedAt:     time.Now(),
	}

	tests := []struct {
		name           string
		method         string
		path           string
		mockReturn     *model.Product
		mockError      error
		expectedStatus int
		expectService  bool
		productID      string
	}{
		{
			name:           "Success",
			method:         http.MethodGet,
			path:           "/api/products/P001",
			mockReturn:     testProduct,
			expectedStatus: http.StatusOK,
			expectService:  true,
			productID:      "P001",
		},
		{
			name:           "Unknown product",
			method:         http.MethodGet,
			path:           "/api/products/P999",
			mockError:      model.ErrUnknownProduct,
			expectedStatus: http.StatusNotFound,
			expectService:  true,
			productID:      "P999",
		},
		{
			name:           "Missing product ID",
			method:         http.MethodGet,
			path:           "/api/products/",
			expectedStatus: http.StatusBadRequest,
			expectService:  false,
		},
		{
			name:           "Method not allowed",
			method:         http.MethodPost,
			path:           "/api/products/P001",
			expectedStatus: http.StatusMethodNotAllowed,
			expectService:  false,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			mockService := new(MockProductService)
			handler := NewProductHandler(mockService, logger)

			if tt.expectService {
				mockService.On("GetByID", mock.Anything, tt.productID).
					Return(tt.mockReturn, tt.mockError)
			}

			req := httptest.NewRequest(tt.method, tt.path, nil)
			w := httptest.NewRecorder()

			handler.GetByID(w, req)

			assert.Equal(t, tt.expectedStatus, w.Code)

			if tt.expectedStatus == http.StatusOK {
				var got model.Product
				assert.NoError(t, json.NewDecoder(w.Body).Decode(&got))
				assert.Equal(t, testProduct.ID, got.ID)
			}

			if tt.expectService {
				mockService.AssertExpectations(t)
			}
		})
	}
}
