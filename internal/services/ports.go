package services

import (
	"context"

	"transfers/internal/apiclient"
)

// The backend calls each service needs; *apiclient.Client implements all of them.

type AuthAPI interface {
	SignIn(ctx context.Context, email, password string) (string, error)
	Register(ctx context.Context, name, email, password string) (string, error)
}

type CatalogAPI interface {
	Services(ctx context.Context, lang string) ([]apiclient.ServiceDTO, error)
	Fleet(ctx context.Context, q apiclient.FleetQuery) ([]apiclient.VehicleDTO, error)
}

type ReservationAPI interface {
	CreateReservation(ctx context.Context, token string, in apiclient.ReservationRequest) (apiclient.ReservationResponse, error)
}

type ContactAPI interface {
	Contact(ctx context.Context, token string, in apiclient.ContactRequest) error
}

// TokenSource yields the bearer token of an authenticated visitor, or "".
type TokenSource interface {
	Bearer(ctx context.Context, visitor string) string
}
