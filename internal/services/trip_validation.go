package services

import (
	"net/url"
	"strconv"
	"strings"
	"time"

	"transfers/internal/domain"
	"transfers/internal/domain/models"
	"transfers/internal/utils"
)

const maxDurationHours = 24

// TripFromValues reads trip fields from a form post or a quick-book query string.
// Only malformed numbers are errors here; everything else is left to ValidateTrip.
func TripFromValues(v url.Values) (models.TripDetails, error) {
	t := models.TripDetails{
		Pickup:     addressFromValues(v, "pickup"),
		Dropoff:    addressFromValues(v, "dropoff"),
		TripType:   models.TripType(strings.TrimSpace(v.Get("trip_type"))),
		Date:       strings.TrimSpace(v.Get("date")),
		Time:       strings.TrimSpace(v.Get("time")),
		ReturnDate: strings.TrimSpace(v.Get("return_date")),
		ReturnTime: strings.TrimSpace(v.Get("return_time")),
	}
	var err error
	if t.DurationHours, err = intField(v, "duration_hours"); err != nil {
		return t, err
	}
	if t.Passengers, err = intField(v, "passengers"); err != nil {
		return t, err
	}
	if t.Luggage, err = intField(v, "luggage"); err != nil {
		return t, err
	}
	return t, nil
}

func addressFromValues(v url.Values, prefix string) models.Address {
	a := models.Address{
		Text:    utils.NormalizeSpace(v.Get(prefix)),
		PlaceID: strings.TrimSpace(v.Get(prefix + "_place_id")),
	}
	a.Lat, _ = strconv.ParseFloat(strings.TrimSpace(v.Get(prefix+"_lat")), 64)
	a.Lng, _ = strconv.ParseFloat(strings.TrimSpace(v.Get(prefix+"_lng")), 64)
	return a
}

func intField(v url.Values, name string) (int, error) {
	raw := strings.TrimSpace(v.Get(name))
	if raw == "" {
		return 0, nil
	}
	n, err := strconv.Atoi(raw)
	if err != nil {
		return 0, domain.ValidationError{Field: name, Msg: "must be a whole number", Err: err}
	}
	return n, nil
}

// Area is the operating region. geo.Bounds satisfies it.
type Area interface {
	Contains(lat, lng float64) bool
}

// inArea accepts addresses without coordinates; a place id alone resolves an address.
func inArea(area Area, a models.Address) bool {
	if area == nil || (a.Lat == 0 && a.Lng == 0) {
		return true
	}
	return area.Contains(a.Lat, a.Lng)
}

// ValidateTrip normalizes t and checks it field by field in form order, returning the first
// failure. Return fields are dropped for one-way trips. Coordinates outside area fail on their
// address field; a nil area skips that check.
func ValidateTrip(t models.TripDetails, loc *time.Location, area Area) (models.TripDetails, error) {
	tt, err := models.ParseTripType(string(t.TripType))
	if err != nil {
		return t, domain.ValidationError{Field: "trip_type", Msg: "unknown trip type", Err: err}
	}
	t.TripType = tt
	t.Pickup.Text = utils.NormalizeSpace(t.Pickup.Text)
	t.Dropoff.Text = utils.NormalizeSpace(t.Dropoff.Text)
	if t.Passengers == 0 {
		t.Passengers = 1
	}
	if !t.IsRoundTrip() {
		t.ReturnDate, t.ReturnTime = "", ""
	}

	if !t.Pickup.Resolved() {
		return t, domain.ValidationError{Field: "pickup", Msg: "pick an address from the suggestions"}
	}
	if !inArea(area, t.Pickup) {
		return t, domain.ValidationError{Field: "pickup", Msg: "pickup is outside the service area"}
	}
	if !t.Dropoff.Resolved() {
		return t, domain.ValidationError{Field: "dropoff", Msg: "pick an address from the suggestions"}
	}
	if !inArea(area, t.Dropoff) {
		return t, domain.ValidationError{Field: "dropoff", Msg: "drop-off is outside the service area"}
	}
	if _, err := utils.ParseDate(t.Date, loc); err != nil {
		return t, domain.ValidationError{Field: "date", Msg: "date is required (YYYY-MM-DD)", Err: err}
	}
	if _, err := utils.ParseClock(t.Time); err != nil {
		return t, domain.ValidationError{Field: "time", Msg: "time is required (HH:MM)", Err: err}
	}
	if t.IsRoundTrip() {
		if _, err := utils.ParseDate(t.ReturnDate, loc); err != nil {
			return t, domain.ValidationError{Field: "return_date", Msg: "return date is required", Err: err}
		}
		if _, err := utils.ParseClock(t.ReturnTime); err != nil {
			return t, domain.ValidationError{Field: "return_time", Msg: "return time is required", Err: err}
		}
		pickup, _ := utils.ParseDateTime(t.Date, t.Time, loc)
		back, _ := utils.ParseDateTime(t.ReturnDate, t.ReturnTime, loc)
		if !back.After(pickup) {
			return t, domain.ValidationError{Field: "return", Msg: "return must be after pickup"}
		}
	}
	if t.DurationHours < 0 || t.DurationHours > maxDurationHours {
		return t, domain.ValidationError{Field: "duration_hours", Msg: "duration must be between 1 and 24 hours"}
	}
	if t.Passengers < 1 {
		return t, domain.ValidationError{Field: "passengers", Msg: "at least one passenger"}
	}
	if t.Luggage < 0 {
		return t, domain.ValidationError{Field: "luggage", Msg: "luggage cannot be negative"}
	}
	return t, nil
}

// ValidatePassenger normalizes contact fields and checks the required ones.
func ValidatePassenger(p models.Passenger) (models.Passenger, error) {
	p.Name = utils.NormalizeSpace(p.Name)
	p.Email = strings.ToLower(utils.TrimOrEmpty(p.Email))
	p.Phone = utils.NormalizePhone(p.Phone)
	p.SpecialRequests = utils.TrimOrEmpty(p.SpecialRequests)
	switch {
	case p.Name == "":
		return p, domain.ValidationError{Field: "name", Msg: "name is required"}
	case p.Email == "":
		return p, domain.ValidationError{Field: "email", Msg: "email is required"}
	case !utils.IsEmail(p.Email):
		return p, domain.ValidationError{Field: "email", Msg: "email is not valid"}
	case len(strings.TrimPrefix(p.Phone, "+")) < 6:
		return p, domain.ValidationError{Field: "phone", Msg: "phone is required"}
	}
	return p, nil
}
