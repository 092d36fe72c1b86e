package models

import "time"

// Identity is the user derived from a bearer token.
type Identity struct {
	ID    string `json:"id"`
	Name  string `json:"name"`
	Email string `json:"email"`
}

// Session is the visitor's authentication state.
type Session struct {
	Identity      Identity  `json:"identity"`
	Token         string    `json:"-"`
	ExpiresAt     time.Time `json:"expires_at,omitempty"`
	Authenticated bool      `json:"authenticated"`
}

// Consent is the visitor's cookie-tracking preference.
type Consent string

const (
	ConsentUnset    Consent = ""
	ConsentAccepted Consent = "accepted"
	ConsentRejected Consent = "rejected"
)

func ParseConsent(s string) (Consent, bool) {
	switch Consent(s) {
	case ConsentAccepted, ConsentRejected:
		return Consent(s), true
	default:
		return ConsentUnset, false
	}
}
