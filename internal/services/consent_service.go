package services

import (
	"context"
	"errors"

	"transfers/internal/domain"
	"transfers/internal/domain/models"
	"transfers/internal/storage"
	"transfers/internal/utils"
)

// ConsentService stores the cookie-consent choice. The banner shows until a choice is stored.
type ConsentService struct {
	Store storage.Store
}

func (s ConsentService) Get(ctx context.Context, visitor string) (models.Consent, error) {
	raw, err := s.Store.Get(ctx, visitor, storage.KeyConsent)
	if errors.Is(err, storage.ErrNotFound) {
		return models.ConsentUnset, nil
	}
	if err != nil {
		return models.ConsentUnset, domain.InternalError{Msg: "load consent", Err: err}
	}
	c, _ := models.ParseConsent(string(raw))
	return c, nil
}

func (s ConsentService) ShowBanner(ctx context.Context, visitor string) (bool, error) {
	c, err := s.Get(ctx, visitor)
	if err != nil {
		return false, err
	}
	return c == models.ConsentUnset, nil
}

func (s ConsentService) Set(ctx context.Context, visitor string, c models.Consent) error {
	if _, ok := models.ParseConsent(string(c)); !ok {
		return domain.ValidationError{Field: "consent", Msg: "consent must be accepted or rejected"}
	}
	if err := s.Store.Put(ctx, visitor, storage.KeyConsent, []byte(c)); err != nil {
		return domain.InternalError{Msg: "store consent", Err: err}
	}
	utils.LogEvent(utils.RequestIDFrom(ctx), "consent", "set", string(c))
	return nil
}

// Clear removes the stored choice so the banner shows again.
func (s ConsentService) Clear(ctx context.Context, visitor string) error {
	if err := s.Store.Delete(ctx, visitor, storage.KeyConsent); err != nil {
		return domain.InternalError{Msg: "clear consent", Err: err}
	}
	return nil
}
