package model

import "time"

// ShippingZone groups pincodes sharing a delivery rate and estimate. Zones
// with a lower Priority are matched first.
type ShippingZone struct {
	ID           string    `json:"id" db:"id"`
	Name         string    `json:"name" db:"name"`
	Pincodes     []string  `json:"pincodes" db:"pincodes"`
	Rate         Money     `json:"rate" db:"rate"`
	DeliveryDays string    `json:"deliveryDays" db:"delivery_days"`
	Priority     int       `json:"priority" db:"priority"`
	CreatedAt    time.Time `json:"createdAt" db:"created_at"`
	UpdatedAt    time.Time `json:"updatedAt" db:"updated_at"`
}

// ShippingQuote is the resolved delivery outcome for a pincode. When
// Serviceable is false, Rate carries no meaning and must not be charged.
type ShippingQuote struct {
	Serviceable  bool   `json:"serviceable"`
	Pincode      string `json:"pincode"`
	ZoneID       string `json:"zoneId,omitempty"`
	ZoneName     string `json:"zoneName,omitempty"`
	Rate         Money  `json:"rate"`
	DeliveryDays string `json:"deliveryDays,omitempty"`
}

// ZoneRequest represents the admin payload for a shipping zone.
type ZoneRequest struct {
	Name         string   `json:"name"`
	Pincodes     []string `json:"pincodes"`
	Rate         Money    `json:"rate"`
	DeliveryDays string   `json:"deliveryDays"`
	Priority     int      `json:"priority"`
}
