package apiclient

import (
	"context"
	"errors"
	"net/http"

	"transfers/internal/domain"
)

var errMissingNumber = errors.New("reservation response has no booking number")

type ContactRequest struct {
	Name    string `json:"name"`
	Email   string `json:"email"`
	Phone   string `json:"phone,omitempty"`
	Subject string `json:"subject,omitempty"`
	Message string `json:"message"`
}

func (c *Client) Contact(ctx context.Context, token string, in ContactRequest) error {
	ctx, span := tracer.Start(ctx, "Client.Contact")
	defer span.End()

	res, err := c.do(ctx, "contact", http.MethodPost, "/api/contact", nil, token, in)
	if err != nil {
		return err
	}
	switch {
	case res.ok():
		return nil
	case res.Status >= 400 && res.Status < 500:
		return domain.ValidationError{Field: "contact", Msg: res.message()}
	default:
		return domain.FetchError{Op: "contact", Status: res.Status}
	}
}
