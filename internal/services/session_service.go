package services

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"

	"transfers/internal/domain"
	"transfers/internal/domain/models"
	"transfers/internal/storage"
	"transfers/internal/utils"
)

// SessionService keeps the visitor's bearer token (sealed) and the identity decoded from it.
// Token signatures are checked by the backend; here the token is only decoded for its claims.
type SessionService struct {
	API    AuthAPI
	Store  storage.Store
	Sealer storage.Sealer
	Now    func() time.Time
}

type tokenClaims struct {
	UserID any    `json:"id,omitempty"`
	Email  string `json:"email,omitempty"`
	Name   string `json:"name,omitempty"`
	jwt.RegisteredClaims
}

// storedUser is the cached user record kept next to the token.
type storedUser struct {
	Identity  models.Identity `json:"identity"`
	ExpiresAt time.Time       `json:"expires_at,omitempty"`
}

var (
	errTokenExpired   = errors.New("token expired")
	errTokenNoSubject = errors.New("token has no subject")
)

func (s SessionService) now() time.Time {
	if s.Now != nil {
		return s.Now()
	}
	return utils.NowUTC()
}

// decodeToken reads the claims without verifying the signature and checks exp against now.
// Tokens without exp never expire on this side.
func decodeToken(raw string, now time.Time) (models.Identity, time.Time, error) {
	var claims tokenClaims
	if _, _, err := jwt.NewParser().ParseUnverified(strings.TrimSpace(raw), &claims); err != nil {
		return models.Identity{}, time.Time{}, err
	}
	var exp time.Time
	if claims.ExpiresAt != nil {
		exp = claims.ExpiresAt.Time
		if !now.Before(exp) {
			return models.Identity{}, exp, errTokenExpired
		}
	}
	id := claims.Subject
	if id == "" {
		id = claimString(claims.UserID)
	}
	if id == "" && claims.Email == "" {
		return models.Identity{}, exp, errTokenNoSubject
	}
	return models.Identity{ID: id, Name: claims.Name, Email: claims.Email}, exp, nil
}

func claimString(v any) string {
	switch t := v.(type) {
	case string:
		return t
	case float64:
		return strconv.FormatFloat(t, 'f', -1, 64)
	case nil:
		return ""
	default:
		return fmt.Sprint(t)
	}
}

// Login signs in against the backend and persists the session. Nothing is stored on failure.
func (s SessionService) Login(ctx context.Context, visitor, email, password string) (models.Session, error) {
	email = strings.ToLower(utils.TrimOrEmpty(email))
	if !utils.IsEmail(email) {
		return models.Session{}, domain.ValidationError{Field: "email", Msg: "a valid email is required"}
	}
	if password == "" {
		return models.Session{}, domain.ValidationError{Field: "password", Msg: "password is required"}
	}
	token, err := s.API.SignIn(ctx, email, password)
	if err != nil {
		return models.Session{}, err
	}
	ident, exp, err := decodeToken(token, s.now())
	if err != nil {
		return models.Session{}, domain.AuthError{Msg: "invalid token", Err: err}
	}
	if ident.Email == "" {
		ident.Email = email
	}
	if ident.Name == "" {
		ident.Name = ident.Email
	}
	if err := s.persist(ctx, visitor, token, ident, exp); err != nil {
		return models.Session{}, err
	}
	utils.LogEvent(utils.RequestIDFrom(ctx), "session", "login", "user_id="+ident.ID)
	return models.Session{Identity: ident, Token: token, ExpiresAt: exp, Authenticated: true}, nil
}

// Register creates the account and signs the visitor in. The display name is the one the
// visitor typed, since tokens do not always carry it.
func (s SessionService) Register(ctx context.Context, visitor, name, email, password string) (models.Session, error) {
	name = utils.NormalizeSpace(name)
	email = strings.ToLower(utils.TrimOrEmpty(email))
	switch {
	case name == "":
		return models.Session{}, domain.ValidationError{Field: "name", Msg: "name is required"}
	case !utils.IsEmail(email):
		return models.Session{}, domain.ValidationError{Field: "email", Msg: "a valid email is required"}
	case password == "":
		return models.Session{}, domain.ValidationError{Field: "password", Msg: "password is required"}
	}
	token, err := s.API.Register(ctx, name, email, password)
	if err != nil {
		return models.Session{}, err
	}
	ident, exp, err := decodeToken(token, s.now())
	if err != nil {
		return models.Session{}, domain.AuthError{Msg: "invalid token", Err: err}
	}
	ident.Name = name
	if ident.Email == "" {
		ident.Email = email
	}
	if err := s.persist(ctx, visitor, token, ident, exp); err != nil {
		return models.Session{}, err
	}
	utils.LogEvent(utils.RequestIDFrom(ctx), "session", "register", "user_id="+ident.ID)
	return models.Session{Identity: ident, Token: token, ExpiresAt: exp, Authenticated: true}, nil
}

func (s SessionService) persist(ctx context.Context, visitor, token string, ident models.Identity, exp time.Time) error {
	sealed, err := s.Sealer.Seal([]byte(token))
	if err != nil {
		return domain.InternalError{Msg: "seal token", Err: err}
	}
	user, err := json.Marshal(storedUser{Identity: ident, ExpiresAt: exp})
	if err != nil {
		return domain.InternalError{Msg: "encode user", Err: err}
	}
	if err := s.Store.Put(ctx, visitor, storage.KeyToken, sealed); err != nil {
		return domain.InternalError{Msg: "store token", Err: err}
	}
	if err := s.Store.Put(ctx, visitor, storage.KeyUser, user); err != nil {
		_ = s.Store.Delete(ctx, visitor, storage.KeyToken)
		return domain.InternalError{Msg: "store user", Err: err}
	}
	return nil
}

// Logout forgets the token and the cached user. There is no backend call.
func (s SessionService) Logout(ctx context.Context, visitor string) error {
	if err := s.Store.Delete(ctx, visitor, storage.KeyToken, storage.KeyUser); err != nil {
		return domain.InternalError{Msg: "clear session", Err: err}
	}
	utils.LogEvent(utils.RequestIDFrom(ctx), "session", "logout", "visitor="+visitor)
	return nil
}

// Restore rebuilds the session from storage without calling the backend. Expired or unreadable
// tokens are purged and the visitor is treated as logged out.
func (s SessionService) Restore(ctx context.Context, visitor string) (models.Session, error) {
	sealed, err := s.Store.Get(ctx, visitor, storage.KeyToken)
	if errors.Is(err, storage.ErrNotFound) {
		return models.Session{}, nil
	}
	if err != nil {
		return models.Session{}, domain.InternalError{Msg: "load token", Err: err}
	}

	token, err := s.Sealer.Open(sealed)
	if err != nil {
		return models.Session{}, s.purge(ctx, visitor, err)
	}
	ident, exp, err := decodeToken(string(token), s.now())
	if err != nil {
		return models.Session{}, s.purge(ctx, visitor, err)
	}

	if raw, err := s.Store.Get(ctx, visitor, storage.KeyUser); err == nil {
		var cached storedUser
		if json.Unmarshal(raw, &cached) == nil && cached.Identity.ID == ident.ID {
			ident = cached.Identity
		}
	}
	return models.Session{Identity: ident, Token: string(token), ExpiresAt: exp, Authenticated: true}, nil
}

func (s SessionService) purge(ctx context.Context, visitor string, cause error) error {
	utils.LogEvent(utils.RequestIDFrom(ctx), "session", "purge", "visitor="+visitor+" reason="+cause.Error())
	if err := s.Store.Delete(ctx, visitor, storage.KeyToken, storage.KeyUser); err != nil {
		return domain.InternalError{Msg: "purge session", Err: err}
	}
	return nil
}

// Bearer returns the token of an authenticated visitor, or "".
func (s SessionService) Bearer(ctx context.Context, visitor string) string {
	sess, err := s.Restore(ctx, visitor)
	if err != nil || !sess.Authenticated {
		return ""
	}
	return sess.Token
}
