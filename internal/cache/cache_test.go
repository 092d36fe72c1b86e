package cache

import (
	"context"
	"testing"
	"time"
)

func TestMemoryExpires(t *testing.T) {
	ctx := context.Background()
	m := NewMemory()

	m.Set(ctx, "services:en", []byte("x"), 50*time.Millisecond)
	if v, ok := m.Get(ctx, "services:en"); !ok || string(v) != "x" {
		t.Fatalf("expected hit, got %q %v", v, ok)
	}

	time.Sleep(80 * time.Millisecond)
	if _, ok := m.Get(ctx, "services:en"); ok {
		t.Fatalf("expected miss after ttl")
	}
}

func TestMemoryReadDoesNotExtend(t *testing.T) {
	ctx := context.Background()
	m := NewMemory()

	m.Set(ctx, "vehicles:airport", []byte("x"), 60*time.Millisecond)
	time.Sleep(40 * time.Millisecond)
	if _, ok := m.Get(ctx, "vehicles:airport"); !ok {
		t.Fatalf("expected hit before ttl")
	}
	time.Sleep(40 * time.Millisecond)
	if _, ok := m.Get(ctx, "vehicles:airport"); ok {
		t.Fatalf("a read must not push the expiry out")
	}
}

func TestMemoryZeroTTLDoesNotStore(t *testing.T) {
	ctx := context.Background()
	m := NewMemory()
	m.Set(ctx, "k", []byte("v"), 0)
	if _, ok := m.Get(ctx, "k"); ok {
		t.Fatalf("zero ttl must disable caching")
	}
}
