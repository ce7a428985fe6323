package service

import (
	"context"
	"fmt"
	"time"

	"fronteira/internal/geo"
	"fronteira/internal/model"
	"fronteira/internal/repository"
	"fronteira/internal/tracking"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
)

// trackingService implements TrackingService.
type trackingService struct {
	driverRepo   repository.DriverRepository
	deliveryRepo repository.DeliveryRepository
	hub          *tracking.Hub
	logger       zerolog.Logger
}

// NewTrackingService creates a new tracking service.
func NewTrackingService(
	driverRepo repository.DriverRepository,
	deliveryRepo repository.DeliveryRepository,
	hub *tracking.Hub,
	logger zerolog.Logger,
) TrackingService {
	return &trackingService{
		driverRepo:   driverRepo,
		deliveryRepo: deliveryRepo,
		hub:          hub,
		logger:       logger.With().Str("service", "tracking").Logger(),
	}
}

// ReportPosition stamps the driver's position and fans it out to every
// non-terminal delivery assigned to that driver, with distance and ETA to
// each drop-off recomputed for display.
func (s *trackingService) ReportPosition(ctx context.Context, driverID uuid.UUID, report model.LocationReport) ([]model.PositionUpdate, error) {
	if report.Latitude < -90 || report.Latitude > 90 || report.Longitude < -180 || report.Longitude > 180 {
		return nil, model.NewValidationError("coordinates out of range")
	}

	driver, err := s.driverRepo.GetByID(ctx, driverID)
	if err != nil {
		return nil, fmt.Errorf("failed to load driver: %w", err)
	}
	if driver == nil {
		return nil, model.ErrDriverNotFound
	}
	if !driver.TrackingEnabled {
		s.logger.Debug().Str("driver_id", driverID.String()).Msg("tracking disabled, position discarded")
		return nil, nil
	}

	now := time.Now()
	if err := s.driverRepo.UpdatePosition(ctx, driverID, report.Latitude, report.Longitude, now); err != nil {
		return nil, err
	}

	deliveries, err := s.deliveryRepo.ListActiveByDriver(ctx, driverID)
	if err != nil {
		return nil, err
	}

	updates := make([]model.PositionUpdate, 0, len(deliveries))
	for _, d := range deliveries {
		if err := s.deliveryRepo.UpdatePosition(ctx, d.ID, report.Latitude, report.Longitude, now); err != nil {
			s.logger.Error().Err(err).
				Str("delivery_id", d.ID.String()).
				Msg("failed to stamp position on delivery")
			continue
		}

		distanceKm := geo.DistanceKm(
			geo.Point{Latitude: report.Latitude, Longitude: report.Longitude},
			geo.Point{Latitude: d.DropoffLatitude, Longitude: d.DropoffLongitude},
		)
		etaMinutes := geo.ETAMinutes(distanceKm)

		update := model.PositionUpdate{
			DeliveryID: d.ID,
			Latitude:   report.Latitude,
			Longitude:  report.Longitude,
			DistanceKm: distanceKm,
			ETAMinutes: etaMinutes,
			ETALabel:   geo.FormatETA(etaMinutes),
			ReportedAt: now,
		}
		s.hub.Publish(update)
		updates = append(updates, update)
	}

	s.logger.Debug().
		Str("driver_id", driverID.String()).
		Int("delivery_count", len(updates)).
		Msg("driver position reported")

	return updates, nil
}

// Staleness renders the age of a position for display. It carries no business
// meaning; positions are never invalidated automatically.
func Staleness(at *time.Time, now time.Time) string {
	if at == nil {
		return "no position yet"
	}
	age := now.Sub(*at)
	switch {
	case age < time.Minute:
		return "just now"
	case age < time.Hour:
		return fmt.Sprintf("%d min ago", int(age.Minutes()))
	default:
		return fmt.Sprintf("%d h ago", int(age.Hours()))
	}
}
