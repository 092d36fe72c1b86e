package utils

import (
	"testing"
	"time"
)

func TestFormatPrice(t *testing.T) {
	cases := []struct {
		amount   float64
		currency string
		want     string
	}{
		{85, "EUR", "€85.00"},
		{85, "eur", "€85.00"},
		{12.5, "CHF", "12.50 CHF"},
		{-3, "USD", "-$3.00"},
		{7, "", "7.00"},
	}
	for _, c := range cases {
		if got := FormatPrice(c.amount, c.currency); got != c.want {
			t.Fatalf("FormatPrice(%v, %q) = %q, want %q", c.amount, c.currency, got, c.want)
		}
	}
	if got := RoundCents(84.999); got != 85 {
		t.Fatalf("RoundCents = %v", got)
	}
}

func TestIsEmail(t *testing.T) {
	for _, ok := range []string{"ana@example.com", "a.b+c@sub.example.pt"} {
		if !IsEmail(ok) {
			t.Fatalf("expected %q to be valid", ok)
		}
	}
	for _, bad := range []string{"", "ana", "ana@localhost", "Ana <ana@example.com>", "ana@@example.com"} {
		if IsEmail(bad) {
			t.Fatalf("expected %q to be invalid", bad)
		}
	}
}

func TestNormalizePhoneAndSpace(t *testing.T) {
	if got := NormalizePhone(" +351 (912) 345-678 "); got != "+351912345678" {
		t.Fatalf("NormalizePhone = %q", got)
	}
	if got := NormalizePhone("912+345"); got != "912345" {
		t.Fatalf("inner plus should be dropped, got %q", got)
	}
	if got := NormalizeSpace("  Hotel \t X \n"); got != "Hotel X" {
		t.Fatalf("NormalizeSpace = %q", got)
	}
}

func TestParseDateTimeUsesLocation(t *testing.T) {
	loc := time.FixedZone("WET", 0)
	got, err := ParseDateTime("2025-12-01", "14:00", loc)
	if err != nil {
		t.Fatalf("parse: %v", err)
	}
	if got.Location() != loc || got.Hour() != 14 {
		t.Fatalf("unexpected time %v", got)
	}
	if _, err := ParseClock("25:00"); err == nil {
		t.Fatalf("expected error for 25:00")
	}
}
