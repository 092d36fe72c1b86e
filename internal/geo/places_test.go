package geo

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"transfers/internal/domain"
)

var madeira = [4]float64{32.60, -17.30, 32.90, -16.60}

func TestAutocompleteRestrictsToBounds(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		q := r.URL.Query()
		if r.URL.Path != "/maps/api/place/autocomplete/json" {
			t.Errorf("unexpected path %s", r.URL.Path)
		}
		if q.Get("locationrestriction") != "rectangle:32.6,-17.3|32.9,-16.6" {
			t.Errorf("bounds not sent: %q", q.Get("locationrestriction"))
		}
		if q.Get("key") != "k" || q.Get("language") != "pt" {
			t.Errorf("key/language missing: %s", r.URL.RawQuery)
		}
		_, _ = w.Write([]byte(`{"status":"OK","predictions":[{"description":"Funchal Airport, Santa Cruz","place_id":"p1"}]}`))
	}))
	defer srv.Close()

	p := NewPlaces(srv.URL, "k", madeira, time.Second)
	got, err := p.Autocomplete(context.Background(), "funchal air", "pt")
	if err != nil {
		t.Fatalf("Autocomplete: %v", err)
	}
	if len(got) != 1 || got[0].PlaceID != "p1" || got[0].Text != "Funchal Airport, Santa Cruz" {
		t.Fatalf("unexpected predictions %+v", got)
	}
}

func TestResolveReturnsResolvedAddress(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Query().Get("place_id") != "p1" {
			t.Errorf("place id not sent")
		}
		_, _ = w.Write([]byte(`{"status":"OK","result":{"name":"Funchal Airport","formatted_address":"9100-105 Santa Cruz","geometry":{"location":{"lat":32.69,"lng":-16.77}}}}`))
	}))
	defer srv.Close()

	addr, err := NewPlaces(srv.URL, "k", madeira, time.Second).Resolve(context.Background(), "p1", "en")
	if err != nil {
		t.Fatalf("Resolve: %v", err)
	}
	if !addr.Resolved() || addr.Text != "Funchal Airport, 9100-105 Santa Cruz" || addr.Lat != 32.69 {
		t.Fatalf("unexpected address %+v", addr)
	}
}

func TestResolveRejectsOutsideBounds(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`{"status":"OK","result":{"name":"Lisbon Airport","formatted_address":"1700-111 Lisboa","geometry":{"location":{"lat":38.77,"lng":-9.13}}}}`))
	}))
	defer srv.Close()

	_, err := NewPlaces(srv.URL, "k", madeira, time.Second).Resolve(context.Background(), "p-lis", "en")
	if domain.FieldOf(err) != "location" {
		t.Fatalf("expected location validation error, got %v", err)
	}
}

func TestReverseRejectsOutsideBounds(t *testing.T) {
	calls := 0
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls++
		_, _ = w.Write([]byte(`{"status":"OK","results":[{"formatted_address":"Rua X, Funchal","place_id":"p9"}]}`))
	}))
	defer srv.Close()

	p := NewPlaces(srv.URL, "k", madeira, time.Second)
	_, err := p.Reverse(context.Background(), 38.72, -9.14, "en")
	if domain.FieldOf(err) != "location" {
		t.Fatalf("expected location ValidationError, got %v", err)
	}
	if calls != 0 {
		t.Fatalf("out of bounds lookups must not reach the provider")
	}

	addr, err := p.Reverse(context.Background(), 32.65, -16.91, "en")
	if err != nil {
		t.Fatalf("Reverse: %v", err)
	}
	if addr.PlaceID != "p9" || addr.Lat != 32.65 {
		t.Fatalf("unexpected address %+v", addr)
	}
}

func TestProviderErrorsAndDisabled(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`{"status":"REQUEST_DENIED","error_message":"bad key"}`))
	}))
	defer srv.Close()

	_, err := NewPlaces(srv.URL, "k", madeira, time.Second).Autocomplete(context.Background(), "x", "en")
	if !domain.IsFetch(err) {
		t.Fatalf("expected FetchError, got %v", err)
	}

	off := NewPlaces(srv.URL, "", madeira, time.Second)
	if off.Enabled() {
		t.Fatalf("no key must disable the adapter")
	}
	if _, err := off.Autocomplete(context.Background(), "x", "en"); !errors.Is(err, ErrDisabled) {
		t.Fatalf("expected ErrDisabled, got %v", err)
	}
}
