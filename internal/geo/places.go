// Package geo resolves free-text addresses and device coordinates into addresses inside the
// operating area, using the Google Places and Geocoding web services.
package geo

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"
	"go.opentelemetry.io/otel"

	"transfers/internal/domain"
	"transfers/internal/domain/models"
)

var tracer = otel.GetTracerProvider().Tracer("transfers/internal/geo")

// ErrDisabled is returned by every lookup when no API key is configured.
var ErrDisabled = errors.New("geo: places lookup is not configured")

type Bounds struct {
	South, West, North, East float64
}

func (b Bounds) Contains(lat, lng float64) bool {
	return lat >= b.South && lat <= b.North && lng >= b.West && lng <= b.East
}

func (b Bounds) rectangle() string {
	return fmt.Sprintf("rectangle:%s,%s|%s,%s", ftoa(b.South), ftoa(b.West), ftoa(b.North), ftoa(b.East))
}

func ftoa(f float64) string { return strconv.FormatFloat(f, 'f', -1, 64) }

type Prediction struct {
	Text    string `json:"text"`
	PlaceID string `json:"place_id"`
}

type Places struct {
	BaseURL string
	Key     string
	Bounds  Bounds
	HTTP    *http.Client
	Timeout time.Duration
}

func NewPlaces(baseURL, key string, bounds [4]float64, timeout time.Duration) *Places {
	return &Places{
		BaseURL: strings.TrimRight(baseURL, "/"),
		Key:     strings.TrimSpace(key),
		Bounds:  Bounds{South: bounds[0], West: bounds[1], North: bounds[2], East: bounds[3]},
		HTTP:    &http.Client{Transport: otelhttp.NewTransport(http.DefaultTransport)},
		Timeout: timeout,
	}
}

func (p *Places) Enabled() bool { return p != nil && p.Key != "" }

type apiStatus struct {
	Status       string `json:"status"`
	ErrorMessage string `json:"error_message"`
}

func (s apiStatus) err(op string) error {
	switch s.Status {
	case "OK", "ZERO_RESULTS":
		return nil
	case "INVALID_REQUEST":
		return domain.ValidationError{Field: "address", Msg: s.ErrorMessage}
	}
	msg := s.Status
	if s.ErrorMessage != "" {
		msg += ": " + s.ErrorMessage
	}
	return domain.FetchError{Op: op, Err: errors.New(msg)}
}

type location struct {
	Lat float64 `json:"lat"`
	Lng float64 `json:"lng"`
}

type geometry struct {
	Location location `json:"location"`
}

// Autocomplete returns predictions restricted to the configured bounding box.
func (p *Places) Autocomplete(ctx context.Context, input, lang string) ([]Prediction, error) {
	ctx, span := tracer.Start(ctx, "Places.Autocomplete")
	defer span.End()

	input = strings.TrimSpace(input)
	if input == "" {
		return []Prediction{}, nil
	}
	q := url.Values{}
	q.Set("input", input)
	q.Set("locationrestriction", p.Bounds.rectangle())

	var out struct {
		apiStatus
		Predictions []struct {
			Description string `json:"description"`
			PlaceID     string `json:"place_id"`
		} `json:"predictions"`
	}
	if err := p.get(ctx, "places autocomplete", "/maps/api/place/autocomplete/json", q, lang, &out); err != nil {
		return nil, err
	}
	if err := out.err("places autocomplete"); err != nil {
		return nil, err
	}
	preds := make([]Prediction, 0, len(out.Predictions))
	for _, pr := range out.Predictions {
		preds = append(preds, Prediction{Text: pr.Description, PlaceID: pr.PlaceID})
	}
	return preds, nil
}

// Resolve turns a selected prediction into a resolved address. Places outside the operating
// area are rejected.
func (p *Places) Resolve(ctx context.Context, placeID, lang string) (models.Address, error) {
	ctx, span := tracer.Start(ctx, "Places.Resolve")
	defer span.End()

	placeID = strings.TrimSpace(placeID)
	if placeID == "" {
		return models.Address{}, domain.ValidationError{Field: "place_id", Msg: "place id is required"}
	}
	q := url.Values{}
	q.Set("place_id", placeID)
	q.Set("fields", "formatted_address,name,geometry")

	var out struct {
		apiStatus
		Result struct {
			Name             string   `json:"name"`
			FormattedAddress string   `json:"formatted_address"`
			Geometry         geometry `json:"geometry"`
		} `json:"result"`
	}
	if err := p.get(ctx, "places details", "/maps/api/place/details/json", q, lang, &out); err != nil {
		return models.Address{}, err
	}
	if err := out.err("places details"); err != nil {
		return models.Address{}, err
	}
	if out.Status == "ZERO_RESULTS" {
		return models.Address{}, domain.NotFoundError{Resource: "place"}
	}
	text := out.Result.FormattedAddress
	if out.Result.Name != "" && !strings.HasPrefix(text, out.Result.Name) {
		text = out.Result.Name + ", " + text
	}
	loc := out.Result.Geometry.Location
	if !p.Bounds.Contains(loc.Lat, loc.Lng) {
		return models.Address{}, domain.ValidationError{Field: "location", Msg: "place is outside the service area"}
	}
	return models.Address{
		Text:    text,
		PlaceID: placeID,
		Lat:     loc.Lat,
		Lng:     loc.Lng,
	}, nil
}

// Reverse geocodes device coordinates. Points outside the operating area are rejected.
func (p *Places) Reverse(ctx context.Context, lat, lng float64, lang string) (models.Address, error) {
	ctx, span := tracer.Start(ctx, "Places.Reverse")
	defer span.End()

	if !p.Bounds.Contains(lat, lng) {
		return models.Address{}, domain.ValidationError{Field: "location", Msg: "location is outside the service area"}
	}
	q := url.Values{}
	q.Set("latlng", ftoa(lat)+","+ftoa(lng))

	var out struct {
		apiStatus
		Results []struct {
			FormattedAddress string `json:"formatted_address"`
			PlaceID          string `json:"place_id"`
		} `json:"results"`
	}
	if err := p.get(ctx, "reverse geocode", "/maps/api/geocode/json", q, lang, &out); err != nil {
		return models.Address{}, err
	}
	if err := out.err("reverse geocode"); err != nil {
		return models.Address{}, err
	}
	if len(out.Results) == 0 {
		return models.Address{}, domain.NotFoundError{Resource: "address"}
	}
	return models.Address{
		Text:    out.Results[0].FormattedAddress,
		PlaceID: out.Results[0].PlaceID,
		Lat:     lat,
		Lng:     lng,
	}, nil
}

func (p *Places) get(ctx context.Context, op, path string, q url.Values, lang string, out any) error {
	if !p.Enabled() {
		return ErrDisabled
	}
	if p.Timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, p.Timeout)
		defer cancel()
	}
	q.Set("key", p.Key)
	if lang != "" {
		q.Set("language", lang)
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, p.BaseURL+path+"?"+q.Encode(), nil)
	if err != nil {
		return domain.InternalError{Msg: "build " + op, Err: err}
	}
	res, err := p.HTTP.Do(req)
	if err != nil {
		return domain.FetchError{Op: op, Err: err}
	}
	defer res.Body.Close()
	if res.StatusCode != http.StatusOK {
		return domain.FetchError{Op: op, Status: res.StatusCode}
	}
	if err := json.NewDecoder(io.LimitReader(res.Body, 1<<20)).Decode(out); err != nil {
		return domain.FetchError{Op: op, Err: fmt.Errorf("decode response: %w", err)}
	}
	return nil
}
