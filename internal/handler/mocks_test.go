package handler

import (
	"context"

	"fronteira/internal/model"

	"github.com/google/uuid"
	"github.com/stretchr/testify/mock"
)

// MockOrderService is a mock implementation of service.OrderService.
type MockOrderService struct {
	mock.Mock
}

func (m *MockOrderService) Create(ctx context.Context, req *model.OrderRequest) (*model.OrderResponse, error) {
	args := m.Called(ctx, req)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.OrderResponse), args.Error(1)
}

func (m *MockOrderService) GetByID(ctx context.Context, id uuid.UUID) (*model.OrderDetail, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.OrderDetail), args.Error(1)
}

// MockProductService is a mock implementation of service.ProductService.
type MockProductService struct {
	mock.Mock
}

func (m *MockProductService) GetAll(ctx context.Context, limit, offset int) ([]model.Product, error) {
	args := m.Called(ctx, limit, offset)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]model.Product), args.Error(1)
}

func (m *MockProductService) GetByID(ctx context.Context, id string) (*model.Product, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.Product), args.Error(1)
}

// MockFulfillmentService is a mock implementation of service.FulfillmentService.
type MockFulfillmentService struct {
	mock.Mock
}

func (m *MockFulfillmentService) SetOrderStatus(ctx context.Context, orderID uuid.UUID, newStatus string) error {
	args := m.Called(ctx, orderID, newStatus)
	return args.Error(0)
}

func (m *MockFulfillmentService) SetDeliveryStatus(ctx context.Context, deliveryID uuid.UUID, newStatus string) error {
	args := m.Called(ctx, deliveryID, newStatus)
	return args.Error(0)
}

func (m *MockFulfillmentService) HandlePaymentCallback(ctx context.Context, cb *model.PaymentCallback) error {
	args := m.Called(ctx, cb)
	return args.Error(0)
}

func (m *MockFulfillmentService) ClaimDelivery(ctx context.Context, deliveryID, driverID uuid.UUID) error {
	args := m.Called(ctx, deliveryID, driverID)
	return args.Error(0)
}

// MockTrackingService is a mock implementation of service.TrackingService.
type MockTrackingService struct {
	mock.Mock
}

func (m *MockTrackingService) ReportPosition(ctx context.Context, driverID uuid.UUID, report model.LocationReport) ([]model.PositionUpdate, error) {
	args := m.Called(ctx, driverID, report)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]model.PositionUpdate), args.Error(1)
}
