package apiclient

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/url"
	"strings"

	"go.opentelemetry.io/otel/attribute"

	"transfers/internal/domain"
)

// LocalizedText is either a plain string or a language -> text object.
type LocalizedText map[string]string

func (t *LocalizedText) UnmarshalJSON(b []byte) error {
	b = bytes.TrimSpace(b)
	if len(b) > 0 && b[0] == '"' {
		var s string
		if err := json.Unmarshal(b, &s); err != nil {
			return err
		}
		*t = LocalizedText{"": s}
		return nil
	}
	m := map[string]string{}
	if err := json.Unmarshal(b, &m); err != nil {
		return err
	}
	*t = m
	return nil
}

// Pick returns the text in lang, then fallback, then the untagged value, then any value.
func (t LocalizedText) Pick(lang, fallback string) string {
	for _, k := range []string{lang, fallback, ""} {
		if v, ok := t[k]; ok && v != "" {
			return v
		}
	}
	for _, v := range t {
		if v != "" {
			return v
		}
	}
	return ""
}

type ServiceDTO struct {
	ID          string        `json:"id"`
	Title       LocalizedText `json:"title"`
	Description LocalizedText `json:"description"`
	Icon        string        `json:"icon"`
	Image       string        `json:"image"`
	Hourly      bool          `json:"hourly"`
}

type VehicleDTO struct {
	ID           string   `json:"id"`
	Name         string   `json:"name"`
	Category     string   `json:"category"`
	Passengers   int      `json:"passengers"`
	Luggage      int      `json:"luggage"`
	Price        float64  `json:"price"`
	ServiceTypes []string `json:"service_types"`
	Images       []string `json:"images"`
}

type listEnvelope[T any] struct {
	Data []T `json:"data"`
}

// FleetQuery filters the fleet by service and trip dates.
type FleetQuery struct {
	ServiceID  string
	Date       string
	Time       string
	ReturnDate string
	ReturnTime string
}

func (q FleetQuery) values() url.Values {
	v := url.Values{}
	if q.ServiceID != "" {
		v.Set("service", q.ServiceID)
	}
	if q.Date != "" {
		v.Set("date", q.Date)
	}
	if q.Time != "" {
		v.Set("time", q.Time)
	}
	if q.ReturnDate != "" {
		v.Set("return_date", q.ReturnDate)
		v.Set("return_time", q.ReturnTime)
	}
	return v
}

func (c *Client) Services(ctx context.Context, lang string) ([]ServiceDTO, error) {
	ctx, span := tracer.Start(ctx, "Client.Services")
	defer span.End()

	q := url.Values{}
	if lang = strings.TrimSpace(lang); lang != "" {
		q.Set("lang", lang)
	}
	res, err := c.do(ctx, "services", http.MethodGet, "/api/services", q, "", nil)
	if err != nil {
		span.RecordError(err)
		return nil, err
	}
	if !res.ok() {
		return nil, domain.FetchError{Op: "services", Status: res.Status}
	}
	var out listEnvelope[ServiceDTO]
	if err := decode("services", res, &out); err != nil {
		return nil, err
	}
	return out.Data, nil
}

func (c *Client) Fleet(ctx context.Context, q FleetQuery) ([]VehicleDTO, error) {
	ctx, span := tracer.Start(ctx, "Client.Fleet")
	defer span.End()
	span.SetAttributes(attribute.String("service", q.ServiceID))

	res, err := c.do(ctx, "fleet", http.MethodGet, "/api/fleet", q.values(), "", nil)
	if err != nil {
		span.RecordError(err)
		return nil, err
	}
	if !res.ok() {
		return nil, domain.FetchError{Op: "fleet", Status: res.Status}
	}
	var out listEnvelope[VehicleDTO]
	if err := decode("fleet", res, &out); err != nil {
		return nil, err
	}
	return out.Data, nil
}
