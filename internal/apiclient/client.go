// Package apiclient talks to the external booking backend: auth, catalog, reservations and contact.
package apiclient

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"
	"go.opentelemetry.io/otel"
	"golang.org/x/time/rate"

	"transfers/internal/domain"
)

var tracer = otel.GetTracerProvider().Tracer("transfers/internal/apiclient")

const maxBody = 1 << 20

type Client struct {
	BaseURL string
	HTTP    *http.Client
	Timeout time.Duration
	limiter *rate.Limiter
}

// New builds a client with a per-request timeout and an outbound request budget of rps per second.
// rps <= 0 disables throttling.
func New(baseURL string, timeout time.Duration, rps float64) *Client {
	c := &Client{
		BaseURL: strings.TrimRight(baseURL, "/"),
		HTTP:    &http.Client{Transport: otelhttp.NewTransport(http.DefaultTransport)},
		Timeout: timeout,
	}
	if rps > 0 {
		burst := int(rps)
		if burst < 1 {
			burst = 1
		}
		c.limiter = rate.NewLimiter(rate.Limit(rps), burst)
	}
	return c
}

// response is the raw result of a call; non-2xx statuses are not errors at this level.
type response struct {
	Status int
	Body   []byte
}

// errorBody is the backend's error envelope; both spellings are seen in the wild.
type errorBody struct {
	Message string `json:"message"`
	Error   string `json:"error"`
}

func (r response) message() string {
	var eb errorBody
	if err := json.Unmarshal(r.Body, &eb); err != nil {
		return ""
	}
	if eb.Message != "" {
		return eb.Message
	}
	return eb.Error
}

func (r response) ok() bool { return r.Status >= 200 && r.Status < 300 }

func (c *Client) do(ctx context.Context, op, method, path string, query url.Values, token string, in any) (response, error) {
	if c.Timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, c.Timeout)
		defer cancel()
	}
	if c.limiter != nil {
		if err := c.limiter.Wait(ctx); err != nil {
			return response{}, domain.FetchError{Op: op, Err: err}
		}
	}

	var body io.Reader
	if in != nil {
		b, err := json.Marshal(in)
		if err != nil {
			return response{}, domain.InternalError{Msg: "encode " + op, Err: err}
		}
		body = bytes.NewReader(b)
	}

	u := c.BaseURL + path
	if len(query) > 0 {
		u += "?" + query.Encode()
	}
	req, err := http.NewRequestWithContext(ctx, method, u, body)
	if err != nil {
		return response{}, domain.InternalError{Msg: "build " + op, Err: err}
	}
	req.Header.Set("Accept", "application/json")
	if in != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}

	res, err := c.HTTP.Do(req)
	if err != nil {
		if errors.Is(err, context.DeadlineExceeded) || errors.Is(ctx.Err(), context.DeadlineExceeded) {
			return response{}, domain.FetchError{Op: op, Err: fmt.Errorf("timed out after %s", c.Timeout)}
		}
		return response{}, domain.FetchError{Op: op, Err: err}
	}
	defer res.Body.Close()

	raw, err := io.ReadAll(io.LimitReader(res.Body, maxBody))
	if err != nil {
		return response{}, domain.FetchError{Op: op, Err: err}
	}
	return response{Status: res.StatusCode, Body: raw}, nil
}

func decode(op string, r response, out any) error {
	if err := json.Unmarshal(r.Body, out); err != nil {
		return domain.FetchError{Op: op, Err: fmt.Errorf("decode response: %w", err)}
	}
	return nil
}
