// Package identity wraps the external identity provider: account creation,
// password sign-in, sign-out and session verification.
package identity

import (
	"context"
	"errors"
)

// Failure kinds. Provider errors wrap one of these and carry the provider's
// own message verbatim.
var (
	ErrEmailExists        = errors.New("email already in use")
	ErrInvalidCredentials = errors.New("invalid credentials")
	ErrWeakPassword       = errors.New("weak password")
	ErrInvalidEmail       = errors.New("invalid email")
	ErrInvalidSession     = errors.New("invalid session")
)

// Error is a provider failure shown to the user as-is.
type Error struct {
	Kind    error
	Message string
}

func (e *Error) Error() string { return e.Message }

func (e *Error) Unwrap() error { return e.Kind }

func newError(kind error, message string) *Error {
	return &Error{Kind: kind, Message: message}
}

// Identity is the provider-side subject.
type Identity struct {
	UID         string `json:"uid"`
	Email       string `json:"email"`
	DisplayName string `json:"displayName,omitempty"`
}

// Credential is an authenticated session handed back to the client.
type Credential struct {
	Identity
	IDToken      string `json:"idToken"`
	RefreshToken string `json:"refreshToken,omitempty"`
	ExpiresIn    int64  `json:"expiresIn"`
}

// SessionState is one event on the session stream. A nil Identity means no session.
type SessionState struct {
	Identity *Identity
}

// SignedIn reports whether a session is present.
func (s SessionState) SignedIn() bool {
	return s.Identity != nil
}

// Present builds a signed-in state.
func Present(id Identity) SessionState {
	return SessionState{Identity: &id}
}

// Absent is the signed-out state.
var Absent = SessionState{}

// Provider is the identity provider contract.
type Provider interface {
	CreateAccount(ctx context.Context, email, password, displayName string) (*Credential, error)
	SignIn(ctx context.Context, email, password string) (*Credential, error)
	// SignOut revokes every session of uid.
	SignOut(ctx context.Context, uid string) error
	VerifySession(ctx context.Context, idToken string) (*Identity, error)
}
