package apiclient

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"
	"time"

	"transfers/internal/domain"
)

func TestSignInReturnsTokenAndMapsErrors(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/api/auth/signin" || r.Method != http.MethodPost {
			t.Errorf("unexpected request %s %s", r.Method, r.URL.Path)
		}
		var in signInRequest
		_ = json.NewDecoder(r.Body).Decode(&in)
		if in.Password != "good" {
			w.WriteHeader(http.StatusUnauthorized)
			_, _ = w.Write([]byte(`{"message":"Invalid credentials"}`))
			return
		}
		_, _ = w.Write([]byte(`{"token":"abc"}`))
	}))
	defer srv.Close()

	c := New(srv.URL, time.Second, 0)
	tok, err := c.SignIn(context.Background(), "a@b.pt", "good")
	if err != nil || tok != "abc" {
		t.Fatalf("SignIn = %q, %v", tok, err)
	}

	_, err = c.SignIn(context.Background(), "a@b.pt", "bad")
	if !domain.IsAuth(err) {
		t.Fatalf("expected AuthError, got %v", err)
	}
	if err.Error() != "Invalid credentials" {
		t.Fatalf("server message not surfaced: %q", err.Error())
	}
}

func TestServicesDecodesLocalizedText(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Query().Get("lang") != "pt" {
			t.Errorf("lang not forwarded: %s", r.URL.RawQuery)
		}
		_, _ = w.Write([]byte(`{"data":[
			{"id":"airport","title":{"en":"Airport transfer","pt":"Transfer aeroporto"},"description":"Meet and greet","icon":"airport"},
			{"id":"hourly","title":"By the hour","icon":"hourly","hourly":true}
		]}`))
	}))
	defer srv.Close()

	got, err := New(srv.URL, time.Second, 0).Services(context.Background(), "pt")
	if err != nil {
		t.Fatalf("Services returned error: %v", err)
	}
	if len(got) != 2 {
		t.Fatalf("expected 2 services, got %d", len(got))
	}
	if got[0].Title.Pick("pt", "en") != "Transfer aeroporto" {
		t.Fatalf("pt title = %q", got[0].Title.Pick("pt", "en"))
	}
	if got[0].Title.Pick("de", "en") != "Airport transfer" {
		t.Fatalf("fallback title = %q", got[0].Title.Pick("de", "en"))
	}
	if got[1].Title.Pick("pt", "en") != "By the hour" || !got[1].Hourly {
		t.Fatalf("plain string title not decoded: %+v", got[1])
	}
}

func TestFleetSendsQuery(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		q := r.URL.Query()
		if q.Get("service") != "airport" || q.Get("date") != "2025-12-01" || q.Get("time") != "14:00" {
			t.Errorf("unexpected query %s", r.URL.RawQuery)
		}
		if q.Has("return_date") {
			t.Errorf("one way query must not carry return_date")
		}
		_, _ = w.Write([]byte(`{"data":[{"id":"v1","name":"E-Class","price":85,"passengers":3,"luggage":3,"service_types":["airport"]}]}`))
	}))
	defer srv.Close()

	got, err := New(srv.URL, time.Second, 0).Fleet(context.Background(), FleetQuery{ServiceID: "airport", Date: "2025-12-01", Time: "14:00"})
	if err != nil || len(got) != 1 || got[0].Price != 85 {
		t.Fatalf("Fleet = %+v, %v", got, err)
	}
}

type scriptedBackend struct {
	mu     sync.Mutex
	status int
	body   string
	auth   string
}

func (b *scriptedBackend) set(status int, body string) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.status, b.body = status, body
}

func (b *scriptedBackend) lastAuth() string {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.auth
}

func (b *scriptedBackend) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	b.mu.Lock()
	b.auth = r.Header.Get("Authorization")
	status, body := b.status, b.body
	b.mu.Unlock()
	w.WriteHeader(status)
	_, _ = w.Write([]byte(body))
}

func TestCreateReservationStatusMapping(t *testing.T) {
	backend := &scriptedBackend{}
	srv := httptest.NewServer(backend)
	defer srv.Close()
	c := New(srv.URL, time.Second, 0)
	ctx := context.Background()

	backend.set(http.StatusCreated, `{"success":true,"reservation":{"id":42,"status":"pending"},"payment":{"method":"mb","data":{"entity":"12345","reference":"123 456 789","value":"85.00"}}}`)
	res, err := c.CreateReservation(ctx, "tok", ReservationRequest{VehicleID: "v1"})
	if err != nil {
		t.Fatalf("CreateReservation returned error: %v", err)
	}
	if got := backend.lastAuth(); got != "Bearer tok" {
		t.Fatalf("Authorization header = %q", got)
	}
	if res.Number() != "42" || float64(res.Payment.Data.Value) != 85 {
		t.Fatalf("unexpected response %+v", res)
	}

	backend.set(http.StatusConflict, `{"message":"Vehicle already booked"}`)
	if _, err := c.CreateReservation(ctx, "", ReservationRequest{VehicleID: "v1"}); !domain.IsSlotUnavailable(err) {
		t.Fatalf("expected SlotUnavailable, got %v", err)
	}

	backend.set(http.StatusUnprocessableEntity, `{"message":"Card declined"}`)
	_, err = c.CreateReservation(ctx, "", ReservationRequest{})
	if !domain.IsPaymentFailed(err) || err.Error() != "Card declined" {
		t.Fatalf("expected PaymentFailed with server message, got %v", err)
	}

	backend.set(http.StatusOK, `{"success":false,"message":"Payment provider unavailable"}`)
	if _, err := c.CreateReservation(ctx, "", ReservationRequest{}); !domain.IsPaymentFailed(err) {
		t.Fatalf("expected PaymentFailed for success=false, got %v", err)
	}

	backend.set(http.StatusBadGateway, ``)
	if _, err := c.CreateReservation(ctx, "", ReservationRequest{}); !domain.IsFetch(err) {
		t.Fatalf("expected FetchError for 5xx, got %v", err)
	}
}

func TestTimeoutIsFetchError(t *testing.T) {
	release := make(chan struct{})
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		select {
		case <-release:
		case <-r.Context().Done():
		}
	}))
	defer srv.Close()
	defer close(release)

	_, err := New(srv.URL, 50*time.Millisecond, 0).Services(context.Background(), "en")
	if !domain.IsFetch(err) {
		t.Fatalf("expected FetchError on timeout, got %v", err)
	}
}
