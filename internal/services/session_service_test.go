package services

import (
	"context"
	"errors"
	"testing"
	"time"

	"transfers/internal/domain"
	"transfers/internal/storage"
)

var sessionNow = time.Date(2025, 11, 20, 9, 0, 0, 0, time.UTC)

func newSessions(api *fakeBackend) (SessionService, *storage.Memory) {
	store := storage.NewMemory()
	return SessionService{
		API:    api,
		Store:  store,
		Sealer: storage.NewSealer("test-secret"),
		Now:    func() time.Time { return sessionNow },
	}, store
}

func TestLoginPersistsAndRestoresWithoutNetwork(t *testing.T) {
	api := &fakeBackend{token: mintToken("42", "maria@example.com", "Maria Silva", sessionNow.Add(time.Hour))}
	svc, store := newSessions(api)
	ctx := context.Background()

	sess, err := svc.Login(ctx, "vis", "Maria@Example.com ", "pw")
	if err != nil {
		t.Fatalf("Login: %v", err)
	}
	if !sess.Authenticated || sess.Identity.ID != "42" || sess.Identity.Email != "maria@example.com" {
		t.Fatalf("unexpected session %+v", sess)
	}

	raw, err := store.Get(ctx, "vis", storage.KeyToken)
	if err != nil || string(raw) == sess.Token {
		t.Fatalf("token must be stored sealed, got %q %v", raw, err)
	}

	restored, err := svc.Restore(ctx, "vis")
	if err != nil {
		t.Fatalf("Restore: %v", err)
	}
	if !restored.Authenticated || restored.Identity.Name != "Maria Silva" || restored.Identity.Email != "maria@example.com" {
		t.Fatalf("unexpected restored session %+v", restored)
	}
	if api.authCalls != 1 {
		t.Fatalf("Restore must not call the backend, calls=%d", api.authCalls)
	}
	if svc.Bearer(ctx, "vis") != sess.Token {
		t.Fatalf("Bearer should return the stored token")
	}
}

func TestRestorePurgesExpiredToken(t *testing.T) {
	api := &fakeBackend{token: mintToken("42", "maria@example.com", "Maria", sessionNow.Add(time.Minute))}
	svc, store := newSessions(api)
	ctx := context.Background()

	if _, err := svc.Login(ctx, "vis", "maria@example.com", "pw"); err != nil {
		t.Fatalf("Login: %v", err)
	}
	svc.Now = func() time.Time { return sessionNow.Add(2 * time.Minute) }

	sess, err := svc.Restore(ctx, "vis")
	if err != nil || sess.Authenticated {
		t.Fatalf("expired token must log out, got %+v %v", sess, err)
	}
	if _, err := store.Get(ctx, "vis", storage.KeyToken); !errors.Is(err, storage.ErrNotFound) {
		t.Fatalf("token not purged: %v", err)
	}
	if _, err := store.Get(ctx, "vis", storage.KeyUser); !errors.Is(err, storage.ErrNotFound) {
		t.Fatalf("user not purged: %v", err)
	}
}

func TestRestorePurgesUndecodableToken(t *testing.T) {
	svc, store := newSessions(&fakeBackend{})
	ctx := context.Background()
	sealed, _ := svc.Sealer.Seal([]byte("not-a-jwt"))
	_ = store.Put(ctx, "vis", storage.KeyToken, sealed)
	_ = store.Put(ctx, "vis", storage.KeyUser, []byte(`{"identity":{"id":"1"}}`))

	sess, err := svc.Restore(ctx, "vis")
	if err != nil || sess.Authenticated {
		t.Fatalf("garbage token must log out: %+v %v", sess, err)
	}
	if _, err := store.Get(ctx, "vis", storage.KeyUser); !errors.Is(err, storage.ErrNotFound) {
		t.Fatalf("user not purged")
	}
}

func TestLoginFailuresPersistNothing(t *testing.T) {
	ctx := context.Background()

	api := &fakeBackend{authErr: domain.AuthError{Status: 401, Msg: "Invalid credentials"}}
	svc, store := newSessions(api)
	if _, err := svc.Login(ctx, "vis", "maria@example.com", "bad"); !domain.IsAuth(err) || err.Error() != "Invalid credentials" {
		t.Fatalf("expected AuthError with server message, got %v", err)
	}

	api.authErr = nil
	api.token = "malformed"
	if _, err := svc.Login(ctx, "vis", "maria@example.com", "pw"); !domain.IsAuth(err) {
		t.Fatalf("malformed token should be an AuthError, got %v", err)
	}

	api.token = mintToken("42", "maria@example.com", "", sessionNow.Add(-time.Second))
	if _, err := svc.Login(ctx, "vis", "maria@example.com", "pw"); !domain.IsAuth(err) {
		t.Fatalf("already expired token should be an AuthError, got %v", err)
	}

	if _, err := store.Get(ctx, "vis", storage.KeyToken); !errors.Is(err, storage.ErrNotFound) {
		t.Fatalf("failed logins must not store a token")
	}
}

func TestRegisterUsesTypedNameAndLogoutClears(t *testing.T) {
	api := &fakeBackend{token: mintToken("7", "joao@example.com", "", sessionNow.Add(time.Hour))}
	svc, _ := newSessions(api)
	ctx := context.Background()

	sess, err := svc.Register(ctx, "vis", "  João   Santos ", "joao@example.com", "pw")
	if err != nil {
		t.Fatalf("Register: %v", err)
	}
	if sess.Identity.Name != "João Santos" {
		t.Fatalf("display name should be the typed one, got %q", sess.Identity.Name)
	}
	restored, _ := svc.Restore(ctx, "vis")
	if restored.Identity.Name != "João Santos" {
		t.Fatalf("cached name lost: %+v", restored)
	}

	if err := svc.Logout(ctx, "vis"); err != nil {
		t.Fatalf("Logout: %v", err)
	}
	if restored, _ := svc.Restore(ctx, "vis"); restored.Authenticated {
		t.Fatalf("still authenticated after logout")
	}
	if api.authCalls != 1 {
		t.Fatalf("logout must not call the backend")
	}
}
