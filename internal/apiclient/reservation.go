package apiclient

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"strconv"

	"go.opentelemetry.io/otel/attribute"

	"transfers/internal/domain"
)

type AddressDTO struct {
	Text    string  `json:"text"`
	PlaceID string  `json:"place_id,omitempty"`
	Lat     float64 `json:"lat,omitempty"`
	Lng     float64 `json:"lng,omitempty"`
}

type PassengerDTO struct {
	Name            string `json:"name"`
	Email           string `json:"email"`
	Phone           string `json:"phone"`
	SpecialRequests string `json:"special_requests,omitempty"`
}

// ReservationRequest is the frozen booking draft.
type ReservationRequest struct {
	DraftID        string       `json:"draft_id"`
	ServiceID      string       `json:"service_id"`
	VehicleID      string       `json:"vehicle_id"`
	TripType       string       `json:"trip_type"`
	Pickup         AddressDTO   `json:"pickup"`
	Dropoff        AddressDTO   `json:"dropoff"`
	Date           string       `json:"date"`
	Time           string       `json:"time"`
	ReturnDate     string       `json:"return_date,omitempty"`
	ReturnTime     string       `json:"return_time,omitempty"`
	DurationHours  int          `json:"duration_hours,omitempty"`
	Passengers     int          `json:"passengers"`
	Luggage        int          `json:"luggage"`
	Passenger      PassengerDTO `json:"passenger"`
	PaymentMethod  string       `json:"payment_method"`
	EstimatedPrice float64      `json:"estimated_price"`
	Lang           string       `json:"lang,omitempty"`
}

// Amount accepts both JSON numbers and numeric strings ("85.00").
type Amount float64

func (a *Amount) UnmarshalJSON(b []byte) error {
	b = bytes.TrimSpace(b)
	if bytes.Equal(b, []byte("null")) {
		return nil
	}
	if len(b) > 0 && b[0] == '"' {
		var s string
		if err := json.Unmarshal(b, &s); err != nil {
			return err
		}
		if s == "" {
			return nil
		}
		f, err := strconv.ParseFloat(s, 64)
		if err != nil {
			return err
		}
		*a = Amount(f)
		return nil
	}
	var f float64
	if err := json.Unmarshal(b, &f); err != nil {
		return err
	}
	*a = Amount(f)
	return nil
}

// FlexID accepts both numeric and string ids.
type FlexID string

func (f *FlexID) UnmarshalJSON(b []byte) error {
	b = bytes.TrimSpace(b)
	if bytes.Equal(b, []byte("null")) {
		return nil
	}
	if len(b) > 0 && b[0] == '"' {
		var s string
		if err := json.Unmarshal(b, &s); err != nil {
			return err
		}
		*f = FlexID(s)
		return nil
	}
	var n json.Number
	if err := json.Unmarshal(b, &n); err != nil {
		return err
	}
	*f = FlexID(n.String())
	return nil
}

type ReservationDTO struct {
	ID            FlexID `json:"id"`
	BookingNumber string `json:"booking_number"`
	Status        string `json:"status"`
	Total         Amount `json:"total"`
}

type PaymentDataDTO struct {
	Entity    string `json:"entity,omitempty"`
	Reference string `json:"reference,omitempty"`
	Value     Amount `json:"value,omitempty"`
	Phone     string `json:"phone,omitempty"`
}

type PaymentDTO struct {
	Method string         `json:"method"`
	Data   PaymentDataDTO `json:"data"`
}

type ReservationResponse struct {
	Success     bool           `json:"success"`
	Message     string         `json:"message,omitempty"`
	Reservation ReservationDTO `json:"reservation"`
	Payment     PaymentDTO     `json:"payment"`
}

// Number is the booking number shown to the customer; backends without one expose the id.
func (r ReservationResponse) Number() string {
	if r.Reservation.BookingNumber != "" {
		return r.Reservation.BookingNumber
	}
	return string(r.Reservation.ID)
}

// CreateReservation submits a draft. A 409 is a SlotUnavailableError, other 4xx answers and
// success=false are PaymentFailedError, transport failures and 5xx are FetchError.
func (c *Client) CreateReservation(ctx context.Context, token string, in ReservationRequest) (ReservationResponse, error) {
	ctx, span := tracer.Start(ctx, "Client.CreateReservation")
	defer span.End()
	span.SetAttributes(attribute.String("draft_id", in.DraftID), attribute.String("vehicle_id", in.VehicleID))

	res, err := c.do(ctx, "reservation", http.MethodPost, "/api/reservations", nil, token, in)
	if err != nil {
		span.RecordError(err)
		return ReservationResponse{}, err
	}
	span.SetAttributes(attribute.Int("status", res.Status))

	switch {
	case res.Status == http.StatusConflict:
		return ReservationResponse{}, domain.SlotUnavailableError{VehicleID: in.VehicleID, Msg: res.message()}
	case res.Status >= 500:
		return ReservationResponse{}, domain.FetchError{Op: "reservation", Status: res.Status}
	case !res.ok():
		return ReservationResponse{}, domain.PaymentFailedError{Status: res.Status, Msg: res.message()}
	}

	var out ReservationResponse
	if err := decode("reservation", res, &out); err != nil {
		return ReservationResponse{}, err
	}
	if !out.Success {
		return ReservationResponse{}, domain.PaymentFailedError{Status: res.Status, Msg: out.Message}
	}
	if out.Number() == "" {
		return ReservationResponse{}, domain.FetchError{Op: "reservation", Err: errMissingNumber}
	}
	return out, nil
}
