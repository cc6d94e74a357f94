// Package identity resolves the caller of a request to an identity-provider
// subject. It never talks to the link store: mapping a subject to an internal
// user is the link service's job.
package identity

import (
	"context"
	"errors"
)

// Subject is the identity provider's stable id for a signed-in person.
// The zero value means no caller could be resolved.
type Subject string

// IsZero reports whether no caller was resolved.
func (s Subject) IsZero() bool { return s == "" }

func (s Subject) String() string { return string(s) }

var (
	// ErrNoToken is returned by Verifiers when given an empty token.
	ErrNoToken = errors.New("identity: no token")
	// ErrInvalidToken is returned when a token fails verification.
	ErrInvalidToken = errors.New("identity: invalid token")
)

// Verifier turns a bearer token into the subject it was issued for.
type Verifier interface {
	Verify(ctx context.Context, token string) (Subject, error)
}

type contextKey struct{}

// WithSubject returns a copy of ctx carrying s.
func WithSubject(ctx context.Context, s Subject) context.Context {
	return context.WithValue(ctx, contextKey{}, s)
}

// FromContext returns the subject stored by Middleware, or the zero Subject.
func FromContext(ctx context.Context) Subject {
	s, _ := ctx.Value(contextKey{}).(Subject)
	return s
}
