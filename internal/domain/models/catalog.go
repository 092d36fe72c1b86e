package models

import (
	"fmt"
	"strings"
)

// ServiceIcon is the closed set of icons a service card can show.
type ServiceIcon string

const (
	IconAirport  ServiceIcon = "airport"
	IconCity     ServiceIcon = "city"
	IconHourly   ServiceIcon = "hourly"
	IconTour     ServiceIcon = "tour"
	IconEvent    ServiceIcon = "event"
	IconTransfer ServiceIcon = "transfer"
)

func ParseServiceIcon(s string) (ServiceIcon, error) {
	switch ServiceIcon(strings.ToLower(strings.TrimSpace(s))) {
	case IconAirport:
		return IconAirport, nil
	case IconCity:
		return IconCity, nil
	case IconHourly:
		return IconHourly, nil
	case IconTour:
		return IconTour, nil
	case IconEvent:
		return IconEvent, nil
	case IconTransfer:
		return IconTransfer, nil
	default:
		return "", fmt.Errorf("unknown service icon %q", s)
	}
}

// Asset returns the static image path of the icon.
func (i ServiceIcon) Asset() string {
	switch i {
	case IconAirport:
		return "/static/icons/plane.svg"
	case IconCity:
		return "/static/icons/building.svg"
	case IconHourly:
		return "/static/icons/clock.svg"
	case IconTour:
		return "/static/icons/map.svg"
	case IconEvent:
		return "/static/icons/star.svg"
	case IconTransfer:
		return "/static/icons/car.svg"
	}
	panic("unreachable service icon " + string(i))
}

// Service is immutable reference data fetched from the catalog.
type Service struct {
	ID          string      `json:"id"`
	Title       string      `json:"title"`
	Description string      `json:"description"`
	Icon        ServiceIcon `json:"icon"`
	ImageURL    string      `json:"image_url"`
	Hourly      bool        `json:"hourly"`
}

// Vehicle is a fleet entry. It can be booked for a service only if ServiceTypes lists the service id.
type Vehicle struct {
	ID           string   `json:"id"`
	Name         string   `json:"name"`
	Category     string   `json:"category"`
	Passengers   int      `json:"passengers"`
	Luggage      int      `json:"luggage"`
	BasePrice    float64  `json:"base_price"`
	ServiceTypes []string `json:"service_types"`
	Images       []string `json:"images"`
}

func (v Vehicle) Supports(serviceID string) bool {
	for _, t := range v.ServiceTypes {
		if t == serviceID {
			return true
		}
	}
	return false
}

// VehicleMatch is a vehicle offered for the chosen service, with a capacity hint.
type VehicleMatch struct {
	Vehicle         Vehicle `json:"vehicle"`
	CapacityWarning bool    `json:"capacity_warning"`
}
