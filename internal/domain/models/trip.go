package models

import (
	"fmt"
	"strings"
)

// TripType distinguishes one-way transfers from round trips.
type TripType string

const (
	TripOneWay    TripType = "one_way"
	TripRoundTrip TripType = "round_trip"
)

// ParseTripType accepts the canonical values plus the dashed spellings used by quick-book links.
func ParseTripType(s string) (TripType, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", "one_way", "one-way", "oneway":
		return TripOneWay, nil
	case "round_trip", "round-trip", "roundtrip", "return":
		return TripRoundTrip, nil
	default:
		return "", fmt.Errorf("unknown trip type %q", s)
	}
}

// Address is a location picked through the places adapter. Raw text typed by the user without
// selecting a prediction is not resolved.
type Address struct {
	Text    string  `json:"text"`
	PlaceID string  `json:"place_id,omitempty"`
	Lat     float64 `json:"lat,omitempty"`
	Lng     float64 `json:"lng,omitempty"`
}

func (a Address) Resolved() bool {
	if strings.TrimSpace(a.Text) == "" {
		return false
	}
	return strings.TrimSpace(a.PlaceID) != "" || (a.Lat != 0 && a.Lng != 0)
}

// TripDetails holds the pickup/dropoff/date/time facts of a requested transfer.
type TripDetails struct {
	Pickup        Address  `json:"pickup"`
	Dropoff       Address  `json:"dropoff"`
	TripType      TripType `json:"trip_type"`
	Date          string   `json:"date"`
	Time          string   `json:"time"`
	ReturnDate    string   `json:"return_date,omitempty"`
	ReturnTime    string   `json:"return_time,omitempty"`
	DurationHours int      `json:"duration_hours,omitempty"`
	Passengers    int      `json:"passengers"`
	Luggage       int      `json:"luggage"`
}

func (t TripDetails) IsRoundTrip() bool { return t.TripType == TripRoundTrip }
