package repository

import (
	"context"
	"fmt"

	"fronteira/internal/model"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/rs/zerolog"
)

// settingsRepository implements the SettingsRepository interface using PostgreSQL.
type settingsRepository struct {
	pool   *pgxpool.Pool
	logger zerolog.Logger
}

// NewSettingsRepository creates a new PostgreSQL-backed settings repository.
func NewSettingsRepository(pool *pgxpool.Pool, logger zerolog.Logger) SettingsRepository {
	return &settingsRepository{
		pool:   pool,
		logger: logger.With().Str("repository", "settings").Logger(),
	}
}

// GetStoreSettings returns the singleton settings row, or nil when the tenant
// has not configured one yet. Settings are read per request so tariff changes
// take effect without a restart.
func (r *settingsRepository) GetStoreSettings(ctx context.Context) (*model.StoreSettings, error) {
	query := `
		SELECT store_latitude, store_longitude, local_base_fee, local_per_km_fee,
		       max_local_km, national_flat_fee, fx_rate, updated_at
		FROM store_settings
		LIMIT 1
	`

	var s model.StoreSettings
	err := r.pool.QueryRow(ctx, query).Scan(
		&s.StoreLatitude, &s.StoreLongitude, &s.LocalBaseFee, &s.LocalPerKmFee,
		&s.MaxLocalKm, &s.NationalFlatFee, &s.FXRate, &s.UpdatedAt,
	)
	if err != nil {
		if err == pgx.ErrNoRows {
			r.logger.Debug().Msg("no store settings row, caller falls back to defaults")
			return nil, nil
		}
		r.logger.Error().Err(err).Msg("failed to query store settings")
		return nil, fmt.Errorf("failed to query store settings: %w", err)
	}

	return &s, nil
}

// GetShippingTiers returns the international tiers ordered by ascending max
// weight.
func (r *settingsRepository) GetShippingTiers(ctx context.Context) ([]model.ShippingTier, error) {
	query := `
		SELECT id, max_weight_kg, price, dimensions
		FROM shipping_tiers
		ORDER BY max_weight_kg
	`

	rows, err := r.pool.Query(ctx, query)
	if err != nil {
		r.logger.Error().Err(err).Msg("failed to query shipping tiers")
		return nil, fmt.Errorf("failed to query shipping tiers: %w", err)
	}
	defer rows.Close()

	var tiers []model.ShippingTier
	for rows.Next() {
		var t model.ShippingTier
		if err := rows.Scan(&t.ID, &t.MaxWeightKg, &t.Price, &t.Dimensions); err != nil {
			r.logger.Error().Err(err).Msg("failed to scan shipping tier row")
			return nil, fmt.Errorf("failed to scan shipping tier: %w", err)
		}
		tiers = append(tiers, t)
	}

	if err := rows.Err(); err != nil {
		r.logger.Error().Err(err).Msg("error iterating shipping tier rows")
		return nil, fmt.Errorf("error iterating shipping tiers: %w", err)
	}

	return tiers, nil
}
