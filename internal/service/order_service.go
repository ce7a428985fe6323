package service

import (
	"context"
	"fmt"
	"time"

	"fronteira/internal/geo"
	"fronteira/internal/metrics"
	"fronteira/internal/model"
	"fronteira/internal/pricing"
	"fronteira/internal/repository"
	"fronteira/internal/shipping"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
)

// Request field length limits.
const (
	maxNameLen    = 100
	maxPhoneLen   = 20
	maxEmailLen   = 255
	maxAddressLen = 500
	maxNotesLen   = 500
)

// orderService implements OrderService.
type orderService struct {
	orderRepo    repository.OrderRepository
	productRepo  repository.ProductRepository
	customerRepo repository.CustomerRepository
	deliveryRepo repository.DeliveryRepository
	settingsRepo repository.SettingsRepository
	defaults     model.StoreSettings
	metrics      *metrics.Metrics
	logger       zerolog.Logger
}

// NewOrderService creates a new order service. The defaults settings are used
// whenever the tenant has no store_settings row yet.
func NewOrderService(
	orderRepo repository.OrderRepository,
	productRepo repository.ProductRepository,
	customerRepo repository.CustomerRepository,
	deliveryRepo repository.DeliveryRepository,
	settingsRepo repository.SettingsRepository,
	defaults model.StoreSettings,
	m *metrics.Metrics,
	logger zerolog.Logger,
) OrderService {
	return &orderService{
		orderRepo:    orderRepo,
		productRepo:  productRepo,
		customerRepo: customerRepo,
		deliveryRepo: deliveryRepo,
		settingsRepo: settingsRepo,
		defaults:     defaults,
		metrics:      m,
		logger:       logger.With().Str("service", "order").Logger(),
	}
}

// Create assembles and persists an order. Prices, stock, distance and the
// delivery fee are all recomputed from trusted data; nothing monetary in the
// request is believed.
func (s *orderService) Create(ctx context.Context, req *model.OrderRequest) (resp *model.OrderResponse, err error) {
	defer func() {
		if err != nil {
			if domainErr, ok := err.(*model.DomainError); ok {
				s.metrics.OrderRejected(domainErr.Code)
			}
		}
	}()

	if err = s.validateRequest(req); err != nil {
		return nil, err
	}

	settings, tiers, err := s.loadTariffConfig(ctx)
	if err != nil {
		return nil, err
	}

	// Recompute every line from the authoritative catalogue.
	ids := make([]string, len(req.Items))
	for i, line := range req.Items {
		ids[i] = line.ProductID
	}
	catalog, err := s.productRepo.GetByIDs(ctx, ids)
	if err != nil {
		return nil, fmt.Errorf("failed to load catalogue: %w", err)
	}

	cart, err := pricing.Validate(req.Items, catalog)
	if err != nil {
		s.logger.Warn().Err(err).Int("item_count", len(req.Items)).Msg("cart validation failed")
		return nil, err
	}

	// The client-submitted distance is ignored; only the coordinates count.
	distanceKm := geo.DistanceKm(
		geo.Point{Latitude: settings.StoreLatitude, Longitude: settings.StoreLongitude},
		geo.Point{Latitude: req.Delivery.Latitude, Longitude: req.Delivery.Longitude},
	)

	quote := shipping.Resolve(shipping.Input{
		Method:        req.Delivery.ShippingMethod,
		DistanceKm:    distanceKm,
		WeightKg:      cart.TotalWeightKg,
		PickupAllowed: cart.PickupAllowed,
	}, settings, tiers)
	if !quote.Available {
		s.logger.Warn().
			Str("method", req.Delivery.ShippingMethod).
			Float64("distance_km", distanceKm).
			Float64("weight_kg", cart.TotalWeightKg).
			Msg("shipping method unavailable")
		return nil, model.ErrShippingUnavailable
	}

	feeInBase := quote.FeeInBase(settings.FXRate)
	total := cart.Subtotal + feeInBase

	customerID, err := s.customerRepo.UpsertByPhone(ctx, &model.Customer{
		Name:      req.Customer.Name,
		Phone:     req.Customer.Phone,
		Email:     req.Customer.Email,
		Address:   req.Customer.Address,
		Latitude:  req.Customer.Latitude,
		Longitude: req.Customer.Longitude,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to resolve customer: %w", err)
	}

	now := time.Now()
	order := &model.Order{
		ID:             uuid.New(),
		CustomerID:     customerID,
		Status:         model.OrderStatusPending,
		Subtotal:       cart.Subtotal,
		DeliveryFee:    feeInBase,
		Total:          total,
		DistanceKm:     distanceKm,
		ShippingMethod: req.Delivery.ShippingMethod,
		Latitude:       req.Delivery.Latitude,
		Longitude:      req.Delivery.Longitude,
		Notes:          req.Notes,
		CreatedAt:      now,
		UpdatedAt:      now,
	}

	if err = s.persistOrder(ctx, order, cart.Items, req.Items); err != nil {
		return nil, err
	}

	// The delivery row is secondary, derivable state: losing it is logged and
	// reconciled later rather than failing a paid-for order.
	delivery := &model.Delivery{
		ID:        uuid.New(),
		OrderID:   order.ID,
		Status:    model.DeliveryStatusPending,
		CreatedAt: now,
	}
	if deliveryErr := s.deliveryRepo.Create(ctx, delivery); deliveryErr != nil {
		s.logger.Error().
			Err(deliveryErr).
			Str("order_id", order.ID.String()).
			Msg("failed to create delivery record for order, needs reconciliation")
	}

	s.metrics.OrderCreated(total)
	s.logger.Info().
		Str("order_id", order.ID.String()).
		Int("item_count", len(cart.Items)).
		Float64("total", total).
		Msg("order created successfully")

	return &model.OrderResponse{
		Success:     true,
		OrderID:     order.ID,
		Total:       total,
		Subtotal:    cart.Subtotal,
		DeliveryFee: feeInBase,
	}, nil
}

// persistOrder writes the order, decrements stock and inserts the items in a
// single transaction. The conditional stock decrement closes the oversell
// race: a line whose stock ran out since validation fails the whole order.
func (s *orderService) persistOrder(ctx context.Context, order *model.Order, items []model.OrderItem, lines []model.CartLine) (err error) {
	tx, err := s.orderRepo.BeginTx(ctx)
	if err != nil {
		return fmt.Errorf("failed to create order: %w", err)
	}

	defer func() {
		if err != nil {
			if rbErr := tx.Rollback(ctx); rbErr != nil {
				s.logger.Error().Err(rbErr).Msg("failed to rollback transaction")
			}
		}
	}()

	if err = s.orderRepo.CreateOrder(ctx, tx, order); err != nil {
		return fmt.Errorf("failed to create order: %w", err)
	}

	for i := range items {
		items[i].OrderID = order.ID

		var ok bool
		ok, err = s.productRepo.DecrementStock(ctx, tx, lines[i].ProductID, lines[i].Quantity)
		if err != nil {
			return fmt.Errorf("failed to create order: %w", err)
		}
		if !ok {
			err = model.NewInsufficientStockError(items[i].ProductName, 0)
			return err
		}
	}

	if err = s.orderRepo.CreateOrderItems(ctx, tx, items); err != nil {
		return fmt.Errorf("failed to create order items: %w", err)
	}

	if err = tx.Commit(ctx); err != nil {
		return fmt.Errorf("failed to create order: %w", err)
	}

	return nil
}

// GetByID retrieves an order with its items and paired delivery.
func (s *orderService) GetByID(ctx context.Context, id uuid.UUID) (*model.OrderDetail, error) {
	order, items, err := s.orderRepo.GetByID(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("failed to get order: %w", err)
	}
	if order == nil {
		return nil, nil
	}

	delivery, err := s.deliveryRepo.GetByOrderID(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("failed to get delivery: %w", err)
	}

	return &model.OrderDetail{
		Order:    *order,
		Items:    items,
		Delivery: delivery,
	}, nil
}

// loadTariffConfig reads the hot-reloadable settings and tier table, falling
// back to the configured defaults when the tenant has no settings row.
func (s *orderService) loadTariffConfig(ctx context.Context) (model.StoreSettings, []model.ShippingTier, error) {
	settings, err := s.settingsRepo.GetStoreSettings(ctx)
	if err != nil {
		return model.StoreSettings{}, nil, fmt.Errorf("failed to load store settings: %w", err)
	}
	if settings == nil {
		settings = &s.defaults
	}

	tiers, err := s.settingsRepo.GetShippingTiers(ctx)
	if err != nil {
		return model.StoreSettings{}, nil, fmt.Errorf("failed to load shipping tiers: %w", err)
	}

	return *settings, tiers, nil
}

// validateRequest enforces the request shape and field limits before any
// storage access.
func (s *orderService) validateRequest(req *model.OrderRequest) error {
	if req == nil {
		return model.NewValidationError("order request is required")
	}
	if len(req.Items) == 0 {
		return model.NewValidationError("order must contain at least one item")
	}
	if req.Customer.Name == "" {
		return model.NewValidationError("customer name is required")
	}
	if len(req.Customer.Name) > maxNameLen {
		return model.NewValidationError(fmt.Sprintf("customer name must be at most %d characters", maxNameLen))
	}
	if req.Customer.Phone == "" {
		return model.NewValidationError("customer phone is required")
	}
	if len(req.Customer.Phone) > maxPhoneLen {
		return model.NewValidationError(fmt.Sprintf("customer phone must be at most %d characters", maxPhoneLen))
	}
	if len(req.Customer.Email) > maxEmailLen {
		return model.NewValidationError(fmt.Sprintf("customer email must be at most %d characters", maxEmailLen))
	}
	if len(req.Customer.Address) > maxAddressLen {
		return model.NewValidationError(fmt.Sprintf("customer address must be at most %d characters", maxAddressLen))
	}
	if len(req.Notes) > maxNotesLen {
		return model.NewValidationError(fmt.Sprintf("notes must be at most %d characters", maxNotesLen))
	}
	if !model.ValidShippingMethod(req.Delivery.ShippingMethod) {
		return model.NewValidationError(fmt.Sprintf("unknown shipping method %q", req.Delivery.ShippingMethod))
	}
	return nil
}
