package services

import (
	"context"
	"encoding/json"
	"sort"
	"strconv"
	"strings"
	"time"

	"transfers/internal/apiclient"
	"transfers/internal/cache"
	"transfers/internal/domain"
	"transfers/internal/domain/models"
	"transfers/internal/utils"
)

// CatalogService reads services and fleet from the backend. The service list is cached per
// language; fleet availability depends on the trip and is always fetched.
type CatalogService struct {
	API             CatalogAPI
	Cache           cache.Cache
	TTL             time.Duration
	DefaultLang     string
	EnforceCapacity bool
}

func (s CatalogService) ListServices(ctx context.Context, lang string) ([]models.Service, error) {
	key := "services:" + lang
	if s.Cache != nil {
		if raw, ok := s.Cache.Get(ctx, key); ok {
			var cached []models.Service
			if err := json.Unmarshal(raw, &cached); err == nil {
				return cached, nil
			}
		}
	}

	dtos, err := s.API.Services(ctx, lang)
	if err != nil {
		return nil, err
	}
	out := make([]models.Service, 0, len(dtos))
	for _, d := range dtos {
		svc, err := s.serviceFromDTO(d, lang)
		if err != nil {
			utils.LogError(utils.RequestIDFrom(ctx), "catalog", "decode_service", err)
			continue
		}
		out = append(out, svc)
	}

	if s.Cache != nil {
		if raw, err := json.Marshal(out); err == nil {
			s.Cache.Set(ctx, key, raw, s.TTL)
		}
	}
	return out, nil
}

// serviceFromDTO rejects services whose icon is not one the site knows how to draw.
func (s CatalogService) serviceFromDTO(d apiclient.ServiceDTO, lang string) (models.Service, error) {
	id := strings.TrimSpace(d.ID)
	if id == "" {
		return models.Service{}, domain.ValidationError{Field: "service.id", Msg: "service without id"}
	}
	icon, err := models.ParseServiceIcon(d.Icon)
	if err != nil {
		return models.Service{}, domain.ValidationError{Field: "service.icon", Msg: "service " + id, Err: err}
	}
	return models.Service{
		ID:          id,
		Title:       d.Title.Pick(lang, s.DefaultLang),
		Description: d.Description.Pick(lang, s.DefaultLang),
		Icon:        icon,
		ImageURL:    d.Image,
		Hourly:      d.Hourly || icon == models.IconHourly,
	}, nil
}

func (s CatalogService) GetService(ctx context.Context, lang, id string) (models.Service, error) {
	list, err := s.ListServices(ctx, lang)
	if err != nil {
		return models.Service{}, err
	}
	for _, svc := range list {
		if svc.ID == id {
			return svc, nil
		}
	}
	return models.Service{}, domain.NotFoundError{Resource: "service " + id}
}

// ListVehicles fetches the fleet available for the service on the trip dates. An empty serviceID
// lists the whole fleet.
func (s CatalogService) ListVehicles(ctx context.Context, serviceID string, trip models.TripDetails) ([]models.Vehicle, error) {
	q := apiclient.FleetQuery{ServiceID: serviceID, Date: trip.Date, Time: trip.Time}
	if trip.IsRoundTrip() {
		q.ReturnDate = trip.ReturnDate
		q.ReturnTime = trip.ReturnTime
	}
	dtos, err := s.API.Fleet(ctx, q)
	if err != nil {
		return nil, err
	}
	out := make([]models.Vehicle, 0, len(dtos))
	for _, d := range dtos {
		if strings.TrimSpace(d.ID) == "" {
			continue
		}
		out = append(out, models.Vehicle{
			ID:           d.ID,
			Name:         d.Name,
			Category:     d.Category,
			Passengers:   d.Passengers,
			Luggage:      d.Luggage,
			BasePrice:    utils.RoundCents(d.Price),
			ServiceTypes: d.ServiceTypes,
			Images:       d.Images,
		})
	}
	return out, nil
}

// Match applies MatchVehicles with the configured capacity policy.
func (s CatalogService) Match(serviceID string, vehicles []models.Vehicle, trip models.TripDetails) []models.VehicleMatch {
	return MatchVehicles(serviceID, vehicles, trip.Passengers, trip.Luggage, s.EnforceCapacity)
}

// MatchVehicles keeps the vehicles tagged with serviceID, cheapest first and ties by id.
// Vehicles too small for the group are dropped when enforce is set, otherwise flagged.
func MatchVehicles(serviceID string, vehicles []models.Vehicle, passengers, luggage int, enforce bool) []models.VehicleMatch {
	out := make([]models.VehicleMatch, 0, len(vehicles))
	for _, v := range vehicles {
		if !v.Supports(serviceID) {
			continue
		}
		small := v.Passengers < passengers || v.Luggage < luggage
		if small && enforce {
			continue
		}
		out = append(out, models.VehicleMatch{Vehicle: v, CapacityWarning: small})
	}
	sort.SliceStable(out, func(i, j int) bool {
		a, b := out[i].Vehicle, out[j].Vehicle
		if a.BasePrice != b.BasePrice {
			return a.BasePrice < b.BasePrice
		}
		return idLess(a.ID, b.ID)
	})
	return out
}

// idLess puts numeric ids first, ordered by value so "9" comes before "10", then the rest as text.
func idLess(a, b string) bool {
	na, aerr := strconv.ParseInt(a, 10, 64)
	nb, berr := strconv.ParseInt(b, 10, 64)
	switch {
	case aerr == nil && berr == nil && na != nb:
		return na < nb
	case (aerr == nil) != (berr == nil):
		return aerr == nil
	}
	return a < b
}
