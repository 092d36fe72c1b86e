package apiclient

import (
	"context"
	"net/http"
	"strings"

	"transfers/internal/domain"
)

type signInRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

type registerRequest struct {
	Name     string `json:"name"`
	Email    string `json:"email"`
	Password string `json:"password"`
}

type tokenResponse struct {
	Token string `json:"token"`
}

// SignIn exchanges credentials for a bearer token.
func (c *Client) SignIn(ctx context.Context, email, password string) (string, error) {
	ctx, span := tracer.Start(ctx, "Client.SignIn")
	defer span.End()
	return c.token(ctx, "signin", "/api/auth/signin", signInRequest{Email: email, Password: password})
}

// Register creates an account and returns its bearer token.
func (c *Client) Register(ctx context.Context, name, email, password string) (string, error) {
	ctx, span := tracer.Start(ctx, "Client.Register")
	defer span.End()
	return c.token(ctx, "register", "/api/auth/register", registerRequest{Name: name, Email: email, Password: password})
}

func (c *Client) token(ctx context.Context, op, path string, in any) (string, error) {
	res, err := c.do(ctx, op, http.MethodPost, path, nil, "", in)
	if err != nil {
		return "", err
	}
	if !res.ok() {
		if res.Status >= 500 {
			return "", domain.FetchError{Op: op, Status: res.Status}
		}
		return "", domain.AuthError{Status: res.Status, Msg: res.message()}
	}
	var out tokenResponse
	if err := decode(op, res, &out); err != nil {
		return "", err
	}
	if strings.TrimSpace(out.Token) == "" {
		return "", domain.AuthError{Status: res.Status, Msg: "no token in response"}
	}
	return out.Token, nil
}
