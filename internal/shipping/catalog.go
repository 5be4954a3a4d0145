package shipping

import (
	"context"
	"fmt"

	"github.com/01fe23bcs183/paaji-client-sub000/internal/model"

	"github.com/rs/zerolog"
	"golang.org/x/sync/errgroup"
)

// LoadCatalog loads every zone file concurrently and merges the results in
// path order. Each zone is validated and zone ids must be unique across files.
// Overlapping pincodes are logged but tolerated; Resolve's priority order
// decides which zone wins.
func LoadCatalog(ctx context.Context, loader Loader, paths []string, pincodeLength int, logger zerolog.Logger) ([]model.ShippingZone, error) {
	logger = logger.With().Str("component", "zone-catalog").Logger()

	results := make([][]model.ShippingZone, len(paths))
	g, gctx := errgroup.WithContext(ctx)
	for i, path := range paths {
		g.Go(func() error {
			zones, err := loader.Load(gctx, path)
			if err != nil {
				return fmt.Errorf("failed to load zone file %s: %w", path, err)
			}
			results[i] = zones
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	var catalog []model.ShippingZone
	ids := make(map[string]string)
	for i, zones := range results {
		for _, zone := range zones {
			if err := ValidateZone(&zone, pincodeLength); err != nil {
				return nil, fmt.Errorf("zone file %s: %w", paths[i], err)
			}
			if zone.ID == "" {
				return nil, fmt.Errorf("zone file %s: %w", paths[i], model.ErrInvalidZone.WithMessage("zone %q has no id", zone.Name))
			}
			if prev, dup := ids[zone.ID]; dup {
				return nil, fmt.Errorf("zone file %s: %w", paths[i],
					model.ErrInvalidZone.WithMessage("zone id %s already defined in %s", zone.ID, prev))
			}
			ids[zone.ID] = paths[i]
			catalog = append(catalog, zone)
		}
	}

	if overlaps := FindOverlaps(catalog); len(overlaps) > 0 {
		logger.Warn().
			Int("overlapping_pincodes", len(overlaps)).
			Str("first_pincode", overlaps[0].Pincode).
			Msg("zone catalogue has overlapping pincodes, lowest priority value wins")
	}

	logger.Info().
		Int("file_count", len(paths)).
		Int("zone_count", len(catalog)).
		Msg("zone catalogue loaded")

	return catalog, nil
}
