package inventory

import (
	"fmt"
	"strconv"
	"time"
)

// Location is where an item is kept. Only two storage areas exist.
type Location string

const (
	LocationFridge  Location = "Fridge"
	LocationCabinet Location = "Cabinet"
)

// ParseLocation validates a raw location string.
func ParseLocation(s string) (Location, error) {
	switch Location(s) {
	case LocationFridge, LocationCabinet:
		return Location(s), nil
	default:
		return "", fmt.Errorf("unknown location %q (want Fridge or Cabinet)", s)
	}
}

// DefaultExpiry returns the conventional expiry for an item added to the
// location now: two weeks for the fridge, six months for the cabinet.
func (l Location) DefaultExpiry(now time.Time) time.Time {
	if l == LocationCabinet {
		return now.AddDate(0, 0, 180)
	}
	return now.AddDate(0, 0, 14)
}

// Item is a stored inventory record. Quantity is kept as a decimal string and
// only parsed at the boundaries where arithmetic happens.
type Item struct {
	ID         int        `json:"id"`
	Name       string     `json:"name"`
	Location   Location   `json:"location"`
	Quantity   string     `json:"quantity"`
	Unit       string     `json:"unit"`
	Confidence int        `json:"confidence"`
	AddedDate  time.Time  `json:"addedDate"`
	ExpiryDate *time.Time `json:"expiryDate"`
}

// Fields carries the caller-settable fields for a new item.
type Fields struct {
	Name       string
	Location   Location
	Quantity   string
	Unit       string
	Confidence int
	ExpiryDate *time.Time
}

// Patch carries a partial update. Nil pointers mean "leave untouched";
// distinguishing an omitted field from an explicitly cleared one is the
// caller's responsibility.
type Patch struct {
	Name       *string
	Location   *Location
	Quantity   *string
	Unit       *string
	Confidence *int
	ExpiryDate *time.Time
}

// parseQuantity parses a decimal quantity string, returning def when the
// string is empty or unparseable. It never panics.
func parseQuantity(s string, def float64) float64 {
	if s == "" {
		return def
	}
	v, err := strconv.ParseFloat(s, 64)
	if err != nil || v < 0 {
		return def
	}
	return v
}

// formatQuantity renders a summed quantity back to its string form with the
// shortest representation that round-trips ("6"+"6" -> "12", "0.5"+"0.25" -> "0.75").
func formatQuantity(v float64) string {
	return strconv.FormatFloat(v, 'f', -1, 64)
}
