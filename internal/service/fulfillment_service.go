package service

import (
	"context"
	"fmt"
	"time"

	"fronteira/internal/metrics"
	"fronteira/internal/model"
	"fronteira/internal/notify"
	"fronteira/internal/repository"
	"fronteira/internal/status"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
)

// fulfillmentService implements FulfillmentService.
type fulfillmentService struct {
	orderRepo    repository.OrderRepository
	deliveryRepo repository.DeliveryRepository
	driverRepo   repository.DriverRepository
	publisher    notify.Publisher
	metrics      *metrics.Metrics
	logger       zerolog.Logger
}

// NewFulfillmentService creates a new fulfillment service.
func NewFulfillmentService(
	orderRepo repository.OrderRepository,
	deliveryRepo repository.DeliveryRepository,
	driverRepo repository.DriverRepository,
	publisher notify.Publisher,
	m *metrics.Metrics,
	logger zerolog.Logger,
) FulfillmentService {
	return &fulfillmentService{
		orderRepo:    orderRepo,
		deliveryRepo: deliveryRepo,
		driverRepo:   driverRepo,
		publisher:    publisher,
		metrics:      m,
		logger:       logger.With().Str("service", "fulfillment").Logger(),
	}
}

// SetOrderStatus applies an order-driven transition and propagates the forced
// delivery status from the mapping table.
func (s *fulfillmentService) SetOrderStatus(ctx context.Context, orderID uuid.UUID, newStatus string) error {
	if !model.ValidOrderStatus(newStatus) {
		return model.NewValidationError(fmt.Sprintf("unknown order status %q", newStatus))
	}

	order, _, err := s.orderRepo.GetByID(ctx, orderID)
	if err != nil {
		return fmt.Errorf("failed to load order: %w", err)
	}
	if order == nil {
		return model.ErrOrderNotFound
	}
	if !status.CanTransitionOrder(order.Status, newStatus) {
		return model.NewInvalidTransitionError(order.Status, newStatus)
	}

	result := status.Sync(status.OrderDriven, newStatus)

	if err := s.orderRepo.UpdateStatus(ctx, orderID, result.OrderStatus); err != nil {
		return err
	}
	s.metrics.StatusTransition(notify.EntityOrder, result.OrderStatus)

	if result.DeliveryStatus != "" {
		if err := s.applyDeliveryEffect(ctx, orderID, result); err != nil {
			// The order status is already committed; the delivery side is
			// corrected on the next transition since the table is idempotent.
			s.logger.Error().Err(err).
				Str("order_id", orderID.String()).
				Str("delivery_status", result.DeliveryStatus).
				Msg("failed to propagate status to delivery")
		}
	}

	s.notifyChange(ctx, orderID, notify.EntityOrder, order.Status, result.OrderStatus)
	return nil
}

// SetDeliveryStatus applies a delivery-driven transition and propagates the
// forced order status from the mapping table.
func (s *fulfillmentService) SetDeliveryStatus(ctx context.Context, deliveryID uuid.UUID, newStatus string) error {
	if !model.ValidDeliveryStatus(newStatus) {
		return model.NewValidationError(fmt.Sprintf("unknown delivery status %q", newStatus))
	}

	delivery, err := s.deliveryRepo.GetByID(ctx, deliveryID)
	if err != nil {
		return fmt.Errorf("failed to load delivery: %w", err)
	}
	if delivery == nil {
		return model.ErrDeliveryNotFound
	}
	if !status.CanTransitionDelivery(delivery.Status, newStatus) {
		return model.NewInvalidTransitionError(delivery.Status, newStatus)
	}

	result := status.Sync(status.DeliveryDriven, newStatus)
	pickedAt, actualDelivery := stamps(result)

	if err := s.deliveryRepo.UpdateStatus(ctx, deliveryID, result.DeliveryStatus, pickedAt, actualDelivery); err != nil {
		return err
	}
	s.metrics.StatusTransition(notify.EntityDelivery, result.DeliveryStatus)

	if result.OrderStatus != "" {
		order, _, err := s.orderRepo.GetByID(ctx, delivery.OrderID)
		if err != nil || order == nil {
			s.logger.Error().Err(err).
				Str("order_id", delivery.OrderID.String()).
				Msg("failed to load order for status propagation")
		} else if order.Status != result.OrderStatus {
			if err := s.orderRepo.UpdateStatus(ctx, delivery.OrderID, result.OrderStatus); err != nil {
				s.logger.Error().Err(err).
					Str("order_id", delivery.OrderID.String()).
					Str("order_status", result.OrderStatus).
					Msg("failed to propagate status to order")
			} else {
				s.metrics.StatusTransition(notify.EntityOrder, result.OrderStatus)
			}
		}
	}

	s.notifyChange(ctx, delivery.OrderID, notify.EntityDelivery, delivery.Status, result.DeliveryStatus)
	return nil
}

// HandlePaymentCallback maps a payment outcome onto the order lifecycle. A
// pending outcome is a no-op; the collaborator will call again.
func (s *fulfillmentService) HandlePaymentCallback(ctx context.Context, cb *model.PaymentCallback) error {
	if cb == nil || cb.OrderID == uuid.Nil {
		return model.NewValidationError("order_id is required")
	}

	switch cb.Outcome {
	case model.PaymentApproved:
		s.logger.Info().Str("order_id", cb.OrderID.String()).Msg("payment approved")
		return s.paymentTransition(ctx, cb.OrderID, model.OrderStatusPaid)
	case model.PaymentRejected:
		s.logger.Warn().Str("order_id", cb.OrderID.String()).Msg("payment rejected, cancelling order")
		return s.paymentTransition(ctx, cb.OrderID, model.OrderStatusCancelled)
	case model.PaymentPending:
		s.logger.Debug().Str("order_id", cb.OrderID.String()).Msg("payment still pending")
		return nil
	}

	return model.NewValidationError(fmt.Sprintf("unknown payment outcome %q", cb.Outcome))
}

// paymentTransition tolerates webhook retries: a callback that repeats the
// order's current status is acknowledged without a transition error.
func (s *fulfillmentService) paymentTransition(ctx context.Context, orderID uuid.UUID, target string) error {
	order, _, err := s.orderRepo.GetByID(ctx, orderID)
	if err != nil {
		return fmt.Errorf("failed to load order: %w", err)
	}
	if order == nil {
		return model.ErrOrderNotFound
	}
	if order.Status == target {
		s.logger.Debug().
			Str("order_id", orderID.String()).
			Str("status", target).
			Msg("duplicate payment callback ignored")
		return nil
	}

	return s.SetOrderStatus(ctx, orderID, target)
}

// ClaimDelivery assigns an unclaimed delivery to a driver through a
// conditional write, so concurrent claims cannot double-assign.
func (s *fulfillmentService) ClaimDelivery(ctx context.Context, deliveryID, driverID uuid.UUID) error {
	driver, err := s.driverRepo.GetByID(ctx, driverID)
	if err != nil {
		return fmt.Errorf("failed to load driver: %w", err)
	}
	if driver == nil || !driver.Active {
		return model.ErrDriverNotFound
	}

	delivery, err := s.deliveryRepo.GetByID(ctx, deliveryID)
	if err != nil {
		return fmt.Errorf("failed to load delivery: %w", err)
	}
	if delivery == nil {
		return model.ErrDeliveryNotFound
	}

	claimed, err := s.deliveryRepo.Claim(ctx, deliveryID, driverID)
	if err != nil {
		return err
	}
	if !claimed {
		s.metrics.ClaimConflict()
		return model.ErrAlreadyClaimed
	}

	s.metrics.StatusTransition(notify.EntityDelivery, model.DeliveryStatusAssigned)
	s.logger.Info().
		Str("delivery_id", deliveryID.String()).
		Str("driver_id", driverID.String()).
		Msg("delivery claimed")

	s.notifyChange(ctx, delivery.OrderID, notify.EntityDelivery, delivery.Status, model.DeliveryStatusAssigned)
	return nil
}

// applyDeliveryEffect pushes the forced delivery status and stamps for an
// order-driven transition.
func (s *fulfillmentService) applyDeliveryEffect(ctx context.Context, orderID uuid.UUID, result status.Result) error {
	delivery, err := s.deliveryRepo.GetByOrderID(ctx, orderID)
	if err != nil {
		return err
	}
	if delivery == nil {
		return model.ErrDeliveryNotFound
	}
	if delivery.Status == result.DeliveryStatus {
		return nil
	}

	pickedAt, actualDelivery := stamps(result)
	if err := s.deliveryRepo.UpdateStatus(ctx, delivery.ID, result.DeliveryStatus, pickedAt, actualDelivery); err != nil {
		return err
	}
	s.metrics.StatusTransition(notify.EntityDelivery, result.DeliveryStatus)
	return nil
}

// notifyChange publishes the transition and records it on the delivery.
// Publish failures never roll back the transition.
func (s *fulfillmentService) notifyChange(ctx context.Context, orderID uuid.UUID, entity, previous, next string) {
	now := time.Now()
	err := s.publisher.Publish(notify.StatusChangeEvent{
		OrderID:        orderID,
		Entity:         entity,
		PreviousStatus: previous,
		NewStatus:      next,
		OccurredAt:     now,
	})
	if err != nil {
		s.logger.Warn().Err(err).
			Str("order_id", orderID.String()).
			Str("new_status", next).
			Msg("status change notification failed")
		return
	}

	delivery, err := s.deliveryRepo.GetByOrderID(ctx, orderID)
	if err != nil || delivery == nil {
		return
	}
	if err := s.deliveryRepo.MarkNotified(ctx, delivery.ID, next, now); err != nil {
		s.logger.Warn().Err(err).
			Str("delivery_id", delivery.ID.String()).
			Msg("failed to record notification")
	}
}

func stamps(result status.Result) (pickedAt, actualDelivery *time.Time) {
	now := time.Now()
	if result.StampPickedAt {
		pickedAt = &now
	}
	if result.StampDelivered {
		actualDelivery = &now
	}
	return pickedAt, actualDelivery
}
