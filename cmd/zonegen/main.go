package main

import (
	"compress/gzip"
	"encoding/json"
	"flag"
	"fmt"
	"log"
	"os"
	"path/filepath"

	"github.com/01fe23bcs183/paaji-client-sub000/internal/model"
)

// zonegen writes sample shipping zone catalogues for local development.
// Metro pincodes also appear in the regional file, where the higher priority
// value lets the metro zone win during resolution.
func main() {
	dataDir := flag.String("dir", "data/zones", "output directory")
	flag.Parse()

	if err := os.MkdirAll(*dataDir, 0o755); err != nil {
		log.Fatalf("Failed to create directory: %v", err)
	}

	for filename, zones := range sampleCatalogues() {
		filePath := filepath.Join(*dataDir, filename)

		if err := writeZoneFile(filePath, zones); err != nil {
			log.Fatalf("Failed to create %s: %v", filename, err)
		}

		fmt.Printf("Created %s with %d zones\n", filePath, len(zones))
	}

	fmt.Println("\nSet SHIPPING_ZONE_FILES to a comma separated list of these files to import them at startup.")
}

func sampleCatalogues() map[string][]model.ShippingZone {
	return map[string][]model.ShippingZone{
		"metro.jsonl.gz": {
			{
				ID:           "metro-blr",
				Name:         "Bengaluru Metro",
				Pincodes:     pincodeRange(560001, 40),
				Rate:         4000,
				DeliveryDays: "1-2",
				Priority:     1,
			},
			{
				ID:           "metro-mum",
				Name:         "Mumbai Metro",
				Pincodes:     pincodeRange(400001, 40),
				Rate:         4000,
				DeliveryDays: "1-2",
				Priority:     1,
			},
		},
		"regional.jsonl.gz": {
			{
				ID:           "south",
				Name:         "South India",
				Pincodes:     append(pincodeRange(560001, 100), pincodeRange(600001, 100)...),
				Rate:         8000,
				DeliveryDays: "3-5",
				Priority:     10,
			},
			{
				ID:           "west",
				Name:         "West India",
				Pincodes:     append(pincodeRange(400001, 100), pincodeRange(380001, 60)...),
				Rate:         8000,
				DeliveryDays: "3-5",
				Priority:     10,
			},
			{
				ID:           "free-island",
				Name:         "Port Blair",
				Pincodes:     []string{"744101", "744102"},
				Rate:         0,
				DeliveryDays: "7-10",
				Priority:     5,
			},
		},
	}
}

func pincodeRange(start, count int) []string {
	codes := make([]string, 0, count)
	for i := range count {
		codes = append(codes, fmt.Sprintf("%06d", start+i))
	}
	return codes
}

func writeZoneFile(filePath string, zones []model.ShippingZone) error {
	file, err := os.Create(filePath)
	if err != nil {
		return fmt.Errorf("failed to create file: %w", err)
	}
	defer file.Close()

	gzipWriter := gzip.NewWriter(file)
	defer gzipWriter.Close()

	enc := json.NewEncoder(gzipWriter)
	for _, zone := range zones {
		if err := enc.Encode(zone); err != nil {
			return fmt.Errorf("failed to write zone %s: %w", zone.ID, err)
		}
	}

	return nil
}
