package service

import (
	"context"
	"errors"
	"testing"
	"time"

	"fronteira/internal/model"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

type fulfillmentFixture struct {
	orderRepo    *MockOrderRepository
	deliveryRepo *MockDeliveryRepository
	driverRepo   *MockDriverRepository
	publisher    *MockPublisher
	service      FulfillmentService
}

func newFulfillmentFixture(t *testing.T) *fulfillmentFixture {
	t.Helper()
	f := &fulfillmentFixture{
		orderRepo:    new(MockOrderRepository),
		deliveryRepo: new(MockDeliveryRepository),
		driverRepo:   new(MockDriverRepository),
		publisher:    new(MockPublisher),
	}
	f.service = NewFulfillmentService(
		f.orderRepo, f.deliveryRepo, f.driverRepo, f.publisher,
		testMetrics(t), zerolog.Nop(),
	)
	return f
}

func TestFulfillment_SetOrderStatus_DeliveredPropagatesAndStamps(t *testing.T) {
	ctx := context.Background()
	f := newFulfillmentFixture(t)

	orderID := uuid.New()
	deliveryID := uuid.New()
	order := &model.Order{ID: orderID, Status: model.OrderStatusShipped}
	delivery := &model.Delivery{ID: deliveryID, OrderID: orderID, Status: model.DeliveryStatusInTransit}

	f.orderRepo.On("GetByID", ctx, orderID).Return(order, nil, nil)
	f.orderRepo.On("UpdateStatus", ctx, orderID, model.OrderStatusDelivered).Return(nil)
	f.deliveryRepo.On("GetByOrderID", ctx, orderID).Return(delivery, nil)

	var stampedDelivered *time.Time
	f.deliveryRepo.On("UpdateStatus", ctx, deliveryID, model.DeliveryStatusDelivered,
		mock.Anything, mock.Anything).Run(func(args mock.Arguments) {
		if args.Get(4) != nil {
			stampedDelivered = args.Get(4).(*time.Time)
		}
	}).Return(nil)
	f.publisher.On("Publish", mock.AnythingOfType("notify.StatusChangeEvent")).Return(nil)
	f.deliveryRepo.On("MarkNotified", ctx, deliveryID, model.OrderStatusDelivered, mock.Anything).Return(nil)

	err := f.service.SetOrderStatus(ctx, orderID, model.OrderStatusDelivered)
	require.NoError(t, err)

	require.NotNil(t, stampedDelivered, "actual_delivery must be stamped")
	assert.WithinDuration(t, time.Now(), *stampedDelivered, time.Minute)

	f.orderRepo.AssertExpectations(t)
	f.deliveryRepo.AssertExpectations(t)
}

func TestFulfillment_SetOrderStatus_PaidLeavesDeliveryAlone(t *testing.T) {
	ctx := context.Background()
	f := newFulfillmentFixture(t)

	orderID := uuid.New()
	order := &model.Order{ID: orderID, Status: model.OrderStatusPending}
	delivery := &model.Delivery{ID: uuid.New(), OrderID: orderID, Status: model.DeliveryStatusPending}

	f.orderRepo.On("GetByID", ctx, orderID).Return(order, nil, nil)
	f.orderRepo.On("UpdateStatus", ctx, orderID, model.OrderStatusPaid).Return(nil)
	f.publisher.On("Publish", mock.Anything).Return(nil)
	f.deliveryRepo.On("GetByOrderID", ctx, orderID).Return(delivery, nil)
	f.deliveryRepo.On("MarkNotified", ctx, delivery.ID, model.OrderStatusPaid, mock.Anything).Return(nil)

	err := f.service.SetOrderStatus(ctx, orderID, model.OrderStatusPaid)
	require.NoError(t, err)

	f.deliveryRepo.AssertNotCalled(t, "UpdateStatus",
		mock.Anything, mock.Anything, mock.Anything, mock.Anything, mock.Anything)
}

func TestFulfillment_SetOrderStatus_InvalidTransition(t *testing.T) {
	ctx := context.Background()
	f := newFulfillmentFixture(t)

	orderID := uuid.New()
	order := &model.Order{ID: orderID, Status: model.OrderStatusDelivered}
	f.orderRepo.On("GetByID", ctx, orderID).Return(order, nil, nil)

	err := f.service.SetOrderStatus(ctx, orderID, model.OrderStatusPaid)
	require.Error(t, err)

	var domainErr *model.DomainError
	require.ErrorAs(t, err, &domainErr)
	assert.Equal(t, model.ErrCodeInvalidTransition, domainErr.Code)

	f.orderRepo.AssertNotCalled(t, "UpdateStatus", mock.Anything, mock.Anything, mock.Anything)
}

func TestFulfillment_SetOrderStatus_NotificationFailureDoesNotBlock(t *testing.T) {
	ctx := context.Background()
	f := newFulfillmentFixture(t)

	orderID := uuid.New()
	order := &model.Order{ID: orderID, Status: model.OrderStatusPending}

	f.orderRepo.On("GetByID", ctx, orderID).Return(order, nil, nil)
	f.orderRepo.On("UpdateStatus", ctx, orderID, model.OrderStatusPaid).Return(nil)
	f.publisher.On("Publish", mock.Anything).Return(errors.New("broker down"))

	err := f.service.SetOrderStatus(ctx, orderID, model.OrderStatusPaid)
	assert.NoError(t, err)
	f.deliveryRepo.AssertNotCalled(t, "MarkNotified", mock.Anything, mock.Anything, mock.Anything, mock.Anything)
}

func TestFulfillment_SetDeliveryStatus_InTransitForcesShippedAndStampsPickup(t *testing.T) {
	ctx := context.Background()
	f := newFulfillmentFixture(t)

	orderID := uuid.New()
	deliveryID := uuid.New()
	delivery := &model.Delivery{ID: deliveryID, OrderID: orderID, Status: model.DeliveryStatusAssigned}
	order := &model.Order{ID: orderID, Status: model.OrderStatusPaid}

	var stampedPicked *time.Time
	f.deliveryRepo.On("GetByID", ctx, deliveryID).Return(delivery, nil)
	f.deliveryRepo.On("UpdateStatus", ctx, deliveryID, model.DeliveryStatusInTransit,
		mock.Anything, mock.Anything).Run(func(args mock.Arguments) {
		if args.Get(3) != nil {
			stampedPicked = args.Get(3).(*time.Time)
		}
	}).Return(nil)
	f.orderRepo.On("GetByID", ctx, orderID).Return(order, nil, nil)
	f.orderRepo.On("UpdateStatus", ctx, orderID, model.OrderStatusShipped).Return(nil)
	f.publisher.On("Publish", mock.Anything).Return(nil)
	f.deliveryRepo.On("GetByOrderID", ctx, orderID).Return(delivery, nil)
	f.deliveryRepo.On("MarkNotified", ctx, deliveryID, model.DeliveryStatusInTransit, mock.Anything).Return(nil)

	err := f.service.SetDeliveryStatus(ctx, deliveryID, model.DeliveryStatusInTransit)
	require.NoError(t, err)
	require.NotNil(t, stampedPicked, "picked_at must be stamped")

	f.orderRepo.AssertExpectations(t)
}

func TestFulfillment_SetDeliveryStatus_FailedForcesCancelled(t *testing.T) {
	ctx := context.Background()
	f := newFulfillmentFixture(t)

	orderID := uuid.New()
	deliveryID := uuid.New()
	delivery := &model.Delivery{ID: deliveryID, OrderID: orderID, Status: model.DeliveryStatusInTransit}
	order := &model.Order{ID: orderID, Status: model.OrderStatusShipped}

	f.deliveryRepo.On("GetByID", ctx, deliveryID).Return(delivery, nil)
	f.deliveryRepo.On("UpdateStatus", ctx, deliveryID, model.DeliveryStatusFailed,
		mock.Anything, mock.Anything).Return(nil)
	f.orderRepo.On("GetByID", ctx, orderID).Return(order, nil, nil)
	f.orderRepo.On("UpdateStatus", ctx, orderID, model.OrderStatusCancelled).Return(nil)
	f.publisher.On("Publish", mock.Anything).Return(nil)
	f.deliveryRepo.On("GetByOrderID", ctx, orderID).Return(delivery, nil)
	f.deliveryRepo.On("MarkNotified", ctx, deliveryID, model.DeliveryStatusFailed, mock.Anything).Return(nil)

	err := f.service.SetDeliveryStatus(ctx, deliveryID, model.DeliveryStatusFailed)
	require.NoError(t, err)
	f.orderRepo.AssertExpectations(t)
}

func TestFulfillment_HandlePaymentCallback(t *testing.T) {
	tests := []struct {
		name        string
		outcome     string
		expectOrder string
	}{
		{name: "approved moves order to paid", outcome: model.PaymentApproved, expectOrder: model.OrderStatusPaid},
		{name: "rejected cancels order", outcome: model.PaymentRejected, expectOrder: model.OrderStatusCancelled},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ctx := context.Background()
			f := newFulfillmentFixture(t)

			orderID := uuid.New()
			order := &model.Order{ID: orderID, Status: model.OrderStatusPending}
			delivery := &model.Delivery{ID: uuid.New(), OrderID: orderID, Status: model.DeliveryStatusPending}

			f.orderRepo.On("GetByID", ctx, orderID).Return(order, nil, nil)
			f.orderRepo.On("UpdateStatus", ctx, orderID, tt.expectOrder).Return(nil)
			f.deliveryRepo.On("GetByOrderID", ctx, orderID).Return(delivery, nil)
			f.deliveryRepo.On("UpdateStatus", mock.Anything, mock.Anything, mock.Anything,
				mock.Anything, mock.Anything).Return(nil).Maybe()
			f.publisher.On("Publish", mock.Anything).Return(nil)
			f.deliveryRepo.On("MarkNotified", ctx, delivery.ID, tt.expectOrder, mock.Anything).Return(nil)

			err := f.service.HandlePaymentCallback(ctx, &model.PaymentCallback{
				OrderID: orderID,
				Outcome: tt.outcome,
			})
			require.NoError(t, err)
			f.orderRepo.AssertExpectations(t)
		})
	}
}

func TestFulfillment_HandlePaymentCallback_DuplicateApprovedIsIdempotent(t *testing.T) {
	ctx := context.Background()
	f := newFulfillmentFixture(t)

	orderID := uuid.New()
	order := &model.Order{ID: orderID, Status: model.OrderStatusPaid}

	f.orderRepo.On("GetByID", ctx, orderID).Return(order, nil, nil)

	err := f.service.HandlePaymentCallback(ctx, &model.PaymentCallback{
		OrderID: orderID,
		Outcome: model.PaymentApproved,
	})
	require.NoError(t, err)

	f.orderRepo.AssertNotCalled(t, "UpdateStatus", mock.Anything, mock.Anything, mock.Anything)
	f.publisher.AssertNotCalled(t, "Publish", mock.Anything)
}

func TestFulfillment_HandlePaymentCallback_PendingIsNoOp(t *testing.T) {
	ctx := context.Background()
	f := newFulfillmentFixture(t)

	err := f.service.HandlePaymentCallback(ctx, &model.PaymentCallback{
		OrderID: uuid.New(),
		Outcome: model.PaymentPending,
	})
	require.NoError(t, err)
	f.orderRepo.AssertNotCalled(t, "GetByID", mock.Anything, mock.Anything)
}

func TestFulfillment_ClaimDelivery_Success(t *testing.T) {
	ctx := context.Background()
	f := newFulfillmentFixture(t)

	deliveryID := uuid.New()
	driverID := uuid.New()
	orderID := uuid.New()
	driver := &model.Driver{ID: driverID, Active: true}
	delivery := &model.Delivery{ID: deliveryID, OrderID: orderID, Status: model.DeliveryStatusPending}

	f.driverRepo.On("GetByID", ctx, driverID).Return(driver, nil)
	f.deliveryRepo.On("GetByID", ctx, deliveryID).Return(delivery, nil)
	f.deliveryRepo.On("Claim", ctx, deliveryID, driverID).Return(true, nil)
	f.publisher.On("Publish", mock.Anything).Return(nil)
	f.deliveryRepo.On("GetByOrderID", ctx, orderID).Return(delivery, nil)
	f.deliveryRepo.On("MarkNotified", ctx, deliveryID, model.DeliveryStatusAssigned, mock.Anything).Return(nil)

	err := f.service.ClaimDelivery(ctx, deliveryID, driverID)
	require.NoError(t, err)
	f.deliveryRepo.AssertExpectations(t)
}

func TestFulfillment_ClaimDelivery_AlreadyClaimed(t *testing.T) {
	ctx := context.Background()
	f := newFulfillmentFixture(t)

	deliveryID := uuid.New()
	driverID := uuid.New()
	driver := &model.Driver{ID: driverID, Active: true}
	delivery := &model.Delivery{ID: deliveryID, OrderID: uuid.New(), Status: model.DeliveryStatusAssigned}

	f.driverRepo.On("GetByID", ctx, driverID).Return(driver, nil)
	f.deliveryRepo.On("GetByID", ctx, deliveryID).Return(delivery, nil)
	f.deliveryRepo.On("Claim", ctx, deliveryID, driverID).Return(false, nil)

	err := f.service.ClaimDelivery(ctx, deliveryID, driverID)
	assert.ErrorIs(t, err, model.ErrAlreadyClaimed)
	f.publisher.AssertNotCalled(t, "Publish", mock.Anything)
}

func TestFulfillment_ClaimDelivery_InactiveDriver(t *testing.T) {
	ctx := context.Background()
	f := newFulfillmentFixture(t)

	driverID := uuid.New()
	f.driverRepo.On("GetByID", ctx, driverID).Return(&model.Driver{ID: driverID, Active: false}, nil)

	err := f.service.ClaimDelivery(ctx, uuid.New(), driverID)
	assert.ErrorIs(t, err, model.ErrDriverNotFound)
}
