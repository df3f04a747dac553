// Package auth signs users in through an external identity provider and
// keeps their sessions.
package auth

import (
	"context"
	"errors"
)

var (
	ErrInvalidState = errors.New("invalid or expired oauth state")
	ErrNoIdentity   = errors.New("identity provider returned no user id")
)

// Identity is the signed-in user as reported by the provider. UID is the
// stable identifier that keys the user's data.
type Identity struct {
	UID   string
	Email string
	Name  string
}

// Provider runs an authorization-code login.
type Provider interface {
	// Name identifies the provider in logs.
	Name() string
	// AuthCodeURL is where the browser is sent to sign in.
	AuthCodeURL(state string) string
	// Exchange turns the code returned to the callback into an identity.
	Exchange(ctx context.Context, code string) (Identity, error)
}
