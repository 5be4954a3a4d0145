package repository

import (
	"context"
	"errors"
	"fmt"

	"github.com/01fe23bcs183/paaji-client-sub000/internal/model"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/rs/zerolog"
)

// zoneRepository implements the ZoneRepository interface using PostgreSQL.
type zoneRepository struct {
	pool   *pgxpool.Pool
	logger zerolog.Logger
}

// NewZoneRepository creates a new PostgreSQL-backed shipping zone repository.
func NewZoneRepository(pool *pgxpool.Pool, logger zerolog.Logger) ZoneRepository {
	return &zoneRepository{
		pool:   pool,
		logger: logger.With().Str("repository", "shipping_zone").Logger(),
	}
}

const zoneColumns = `id, name, pincodes, rate, delivery_days, priority, created_at, updated_at`

func scanZone(row pgx.Row) (model.ShippingZone, error) {
	var z model.ShippingZone
	err := row.Scan(&z.ID, &z.Name, &z.Pincodes, &z.Rate, &z.DeliveryDays, &z.Priority, &z.CreatedAt, &z.UpdatedAt)
	return z, err
}

// ListZones returns every zone in resolve order.
func (r *zoneRepository) ListZones(ctx context.Context) ([]model.ShippingZone, error) {
	rows, err := r.pool.Query(ctx, `SELECT `+zoneColumns+` FROM shipping_zones ORDER BY priority, name, id`)
	if err != nil {
		r.logger.Error().Err(err).Msg("failed to query shipping zones")
		return nil, fmt.Errorf("failed to query shipping zones: %w", err)
	}
	defer rows.Close()

	zones := []model.ShippingZone{}
	for rows.Next() {
		z, err := scanZone(rows)
		if err != nil {
			r.logger.Error().Err(err).Msg("failed to scan shipping zone row")
			return nil, fmt.Errorf("failed to scan shipping zone: %w", err)
		}
		zones = append(zones, z)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating shipping zones: %w", err)
	}
	return zones, nil
}

// GetZone returns nil if the zone does not exist.
func (r *zoneRepository) GetZone(ctx context.Context, id string) (*model.ShippingZone, error) {
	z, err := scanZone(r.pool.QueryRow(ctx, `SELECT `+zoneColumns+` FROM shipping_zones WHERE id = $1`, id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		r.logger.Error().Err(err).Str("zone_id", id).Msg("failed to query shipping zone")
		return nil, fmt.Errorf("failed to query shipping zone: %w", err)
	}
	return &z, nil
}

// CreateZone inserts a zone.
func (r *zoneRepository) CreateZone(ctx context.Context, z *model.ShippingZone) error {
	query := `
		INSERT INTO shipping_zones (` + zoneColumns + `)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
	`

	_, err := r.pool.Exec(ctx, query, z.ID, z.Name, z.Pincodes, z.Rate, z.DeliveryDays, z.Priority, z.CreatedAt, z.UpdatedAt)
	if err != nil {
		r.logger.Error().Err(err).Str("zone_id", z.ID).Msg("failed to create shipping zone")
		return fmt.Errorf("failed to create shipping zone: %w", err)
	}

	r.logger.Debug().Str("zone_id", z.ID).Int("pincode_count", len(z.Pincodes)).Msg("shipping zone created")
	return nil
}

// UpdateZone rewrites a zone.
func (r *zoneRepository) UpdateZone(ctx context.Context, z *model.ShippingZone) error {
	query := `
		UPDATE shipping_zones
		SET name = $2, pincodes = $3, rate = $4, delivery_days = $5, priority = $6, updated_at = $7
		WHERE id = $1
		RETURNING created_at
	`

	err := r.pool.QueryRow(ctx, query, z.ID, z.Name, z.Pincodes, z.Rate, z.DeliveryDays, z.Priority, z.UpdatedAt).Scan(&z.CreatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return model.ErrZoneNotFound.WithDetails(map[string]any{"id": z.ID})
		}
		r.logger.Error().Err(err).Str("zone_id", z.ID).Msg("failed to update shipping zone")
		return fmt.Errorf("failed to update shipping zone: %w", err)
	}
	return nil
}

// DeleteZone removes a zone.
func (r *zoneRepository) DeleteZone(ctx context.Context, id string) error {
	tag, err := r.pool.Exec(ctx, `DELETE FROM shipping_zones WHERE id = $1`, id)
	if err != nil {
		r.logger.Error().Err(err).Str("zone_id", id).Msg("failed to delete shipping zone")
		return fmt.Errorf("failed to delete shipping zone: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return model.ErrZoneNotFound.WithDetails(map[string]any{"id": id})
	}
	return nil
}
