package services

import (
	"context"
	"sync"
	"time"

	"github.com/golang-jwt/jwt/v5"

	"transfers/internal/apiclient"
	"transfers/internal/cache"
	"transfers/internal/domain/models"
	"transfers/internal/storage"
)

type fakeBackend struct {
	mu sync.Mutex

	services     []apiclient.ServiceDTO
	fleet        []apiclient.VehicleDTO
	serviceCalls int
	fleetCalls   int
	fleetQueries []apiclient.FleetQuery
	fleetErr     error

	reserve      func(apiclient.ReservationRequest) (apiclient.ReservationResponse, error)
	reserveCalls int
	lastToken    string

	token     string
	authErr   error
	authCalls int

	contacts []apiclient.ContactRequest
}

func (f *fakeBackend) Services(_ context.Context, _ string) ([]apiclient.ServiceDTO, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.serviceCalls++
	return f.services, nil
}

func (f *fakeBackend) Fleet(_ context.Context, q apiclient.FleetQuery) ([]apiclient.VehicleDTO, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.fleetCalls++
	f.fleetQueries = append(f.fleetQueries, q)
	if f.fleetErr != nil {
		return nil, f.fleetErr
	}
	return f.fleet, nil
}

func (f *fakeBackend) CreateReservation(_ context.Context, token string, in apiclient.ReservationRequest) (apiclient.ReservationResponse, error) {
	f.mu.Lock()
	f.reserveCalls++
	f.lastToken = token
	fn := f.reserve
	f.mu.Unlock()
	return fn(in)
}

func (f *fakeBackend) SignIn(_ context.Context, _, _ string) (string, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.authCalls++
	return f.token, f.authErr
}

func (f *fakeBackend) Register(_ context.Context, _, _, _ string) (string, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.authCalls++
	return f.token, f.authErr
}

func (f *fakeBackend) Contact(_ context.Context, _ string, in apiclient.ContactRequest) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.contacts = append(f.contacts, in)
	return nil
}

func (f *fakeBackend) calls() (reserve, fleet int) {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.reserveCalls, f.fleetCalls
}

type staticTokens string

func (s staticTokens) Bearer(context.Context, string) string { return string(s) }

func mintToken(sub, email, name string, exp time.Time) string {
	claims := tokenClaims{
		Email: email,
		Name:  name,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   sub,
			ExpiresAt: jwt.NewNumericDate(exp),
		},
	}
	s, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte("backend-secret"))
	if err != nil {
		panic(err)
	}
	return s
}

func madeiraFleet() *fakeBackend {
	return &fakeBackend{
		services: []apiclient.ServiceDTO{
			{ID: "airport", Title: apiclient.LocalizedText{"en": "Airport transfer", "pt": "Transfer aeroporto"}, Icon: "airport"},
			{ID: "hourly", Title: apiclient.LocalizedText{"": "Chauffeur by the hour"}, Icon: "hourly", Hourly: true},
			{ID: "yacht", Title: apiclient.LocalizedText{"": "Yacht"}, Icon: "boat"},
		},
		fleet: []apiclient.VehicleDTO{
			{ID: "v-van", Name: "Mercedes V-Class", Category: "van", Passengers: 7, Luggage: 7, Price: 120, ServiceTypes: []string{"airport", "hourly"}},
			{ID: "v-eclass", Name: "Mercedes E-Class", Category: "sedan", Passengers: 3, Luggage: 3, Price: 85, ServiceTypes: []string{"airport"}},
			{ID: "v-sclass", Name: "Mercedes S-Class", Category: "luxury", Passengers: 3, Luggage: 2, Price: 150, ServiceTypes: []string{"hourly"}},
		},
	}
}

func newWizard(api *fakeBackend) (*WizardService, storage.Store) {
	store := storage.NewMemory()
	catalog := CatalogService{API: api, Cache: cache.NewMemory(), TTL: time.Minute, DefaultLang: "en"}
	w := NewWizardService(store, catalog, api, staticTokens(""), time.UTC)
	w.Now = func() time.Time { return time.Date(2025, 11, 20, 9, 0, 0, 0, time.UTC) }
	n := 0
	w.NewID = func() string {
		n++
		return "draft-" + string(rune('0'+n))
	}
	return w, store
}

func resolvedTrip() models.TripDetails {
	return models.TripDetails{
		Pickup:   models.Address{Text: "Funchal Airport", PlaceID: "p-airport"},
		Dropoff:  models.Address{Text: "Hotel X", PlaceID: "p-hotel"},
		TripType: models.TripOneWay,
		Date:     "2025-12-01",
		Time:     "14:00",
	}
}
