package shipping

import (
	"bufio"
	"compress/gzip"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/01fe23bcs183/paaji-client-sub000/internal/model"

	"github.com/rs/zerolog"
)

// Loader reads a zone catalogue file.
type Loader interface {
	// Load reads a gzipped JSON-lines zone file, one zone per line.
	Load(ctx context.Context, path string) ([]model.ShippingZone, error)
}

// fileLoader implements Loader for reading gzipped zone files from disk.
type fileLoader struct {
	logger zerolog.Logger
}

// NewFileLoader creates a new file-based zone loader.
func NewFileLoader(logger zerolog.Logger) Loader {
	return &fileLoader{
		logger: logger.With().Str("component", "zone-loader").Logger(),
	}
}

// Load reads a gzipped zone file from the local file system.
func (l *fileLoader) Load(ctx context.Context, path string) ([]model.ShippingZone, error) {
	l.logger.Info().Str("file", path).Msg("loading zone file")

	file, err := os.Open(path)
	if err != nil {
		l.logger.Error().Err(err).Str("file", path).Msg("failed to open zone file")
		return nil, fmt.Errorf("failed to open zone file %s: %w", path, err)
	}
	defer file.Close()

	zones, err := decodeZones(ctx, file, path)
	if err != nil {
		l.logger.Error().Err(err).Str("file", path).Msg("failed to read zone file")
		return nil, err
	}

	l.logger.Info().
		Str("file", path).
		Int("zones_loaded", len(zones)).
		Msg("zone file loaded successfully")

	return zones, nil
}

// decodeZones reads gzip-compressed JSON lines from r. Blank lines are skipped.
func decodeZones(ctx context.Context, r io.Reader, source string) ([]model.ShippingZone, error) {
	gzipReader, err := gzip.NewReader(r)
	if err != nil {
		return nil, fmt.Errorf("failed to create gzip reader for %s: %w", source, err)
	}
	defer gzipReader.Close()

	scanner := bufio.NewScanner(gzipReader)
	// A metro zone can list thousands of pincodes on one line.
	scanner.Buffer(make([]byte, 64*1024), 8*1024*1024)

	var zones []model.ShippingZone
	lineNo := 0
	for scanner.Scan() {
		lineNo++
		if lineNo%1_000 == 0 {
			select {
			case <-ctx.Done():
				return nil, ctx.Err()
			default:
			}
		}

		line := strings.TrimSpace(scanner.Text())
		if line == "" {
			continue
		}

		var zone model.ShippingZone
		if err := json.Unmarshal([]byte(line), &zone); err != nil {
			return nil, fmt.Errorf("invalid zone on line %d of %s: %w", lineNo, source, err)
		}
		zones = append(zones, zone)
	}

	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("error reading zone file %s: %w", source, err)
	}

	return zones, nil
}
