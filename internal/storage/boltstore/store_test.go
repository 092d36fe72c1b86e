package boltstore

import (
	"context"
	"errors"
	"path/filepath"
	"testing"
	"time"

	bolt "go.etcd.io/bbolt"

	"transfers/internal/storage"
)

func openTestStore(t *testing.T, path string) *Store {
	t.Helper()
	db, err := bolt.Open(path, 0o600, nil)
	if err != nil {
		t.Fatalf("open bolt: %v", err)
	}
	s, err := New(db)
	if err != nil {
		t.Fatalf("new store: %v", err)
	}
	return s
}

func TestStorePutGetDelete(t *testing.T) {
	ctx := context.Background()
	s := openTestStore(t, filepath.Join(t.TempDir(), "v.db"))
	defer s.Close()

	if _, err := s.Get(ctx, "v1", storage.KeyConsent); !errors.Is(err, storage.ErrNotFound) {
		t.Fatalf("expected ErrNotFound for unknown visitor, got %v", err)
	}
	if err := s.Put(ctx, "v1", storage.KeyConsent, []byte("accepted")); err != nil {
		t.Fatalf("put: %v", err)
	}
	got, err := s.Get(ctx, "v1", storage.KeyConsent)
	if err != nil || string(got) != "accepted" {
		t.Fatalf("get = %q, %v", got, err)
	}
	if _, err := s.Get(ctx, "v2", storage.KeyConsent); !errors.Is(err, storage.ErrNotFound) {
		t.Fatalf("visitors must not share keys, got %v", err)
	}
	if err := s.Delete(ctx, "v1", storage.KeyConsent, storage.KeyToken); err != nil {
		t.Fatalf("delete: %v", err)
	}
	if _, err := s.Get(ctx, "v1", storage.KeyConsent); !errors.Is(err, storage.ErrNotFound) {
		t.Fatalf("expected ErrNotFound after delete, got %v", err)
	}
}

func TestStoreSurvivesReopen(t *testing.T) {
	ctx := context.Background()
	path := filepath.Join(t.TempDir(), "v.db")

	s := openTestStore(t, path)
	if err := s.Put(ctx, "v1", storage.KeyUser, []byte(`{"name":"Maria"}`)); err != nil {
		t.Fatalf("put: %v", err)
	}
	if err := s.Close(); err != nil {
		t.Fatalf("close: %v", err)
	}

	s = openTestStore(t, path)
	defer s.Close()
	got, err := s.Get(ctx, "v1", storage.KeyUser)
	if err != nil || string(got) != `{"name":"Maria"}` {
		t.Fatalf("after reopen get = %q, %v", got, err)
	}
}

func TestClaimHeldUntilExpiry(t *testing.T) {
	ctx := context.Background()
	path := filepath.Join(t.TempDir(), "v.db")
	now := time.Date(2025, 12, 1, 10, 0, 0, 0, time.UTC)

	a := openTestStore(t, path)
	a.Now = func() time.Time { return now }
	defer a.Close()

	ok, err := a.Claim(ctx, "v1", storage.KeySubmit, 2*time.Minute)
	if err != nil || !ok {
		t.Fatalf("first claim = %v, %v", ok, err)
	}
	if ok, err := a.Claim(ctx, "v1", storage.KeySubmit, 2*time.Minute); err != nil || ok {
		t.Fatalf("second claim must fail while held, got %v %v", ok, err)
	}
	if ok, err := a.Claim(ctx, "v2", storage.KeySubmit, 2*time.Minute); err != nil || !ok {
		t.Fatalf("claims are per visitor, got %v %v", ok, err)
	}

	now = now.Add(2 * time.Minute)
	if ok, err := a.Claim(ctx, "v1", storage.KeySubmit, 2*time.Minute); err != nil || !ok {
		t.Fatalf("expired claim should be taken over, got %v %v", ok, err)
	}

	if err := a.Delete(ctx, "v1", storage.KeySubmit); err != nil {
		t.Fatalf("delete: %v", err)
	}
	if ok, err := a.Claim(ctx, "v1", storage.KeySubmit, 2*time.Minute); err != nil || !ok {
		t.Fatalf("released claim should be free, got %v %v", ok, err)
	}
}
