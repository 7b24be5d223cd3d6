// Package auth carries the identity resolved for a request.
package auth

import (
	"context"

	"blogAPI/internal/models"
)

// Principal is either Anonymous or Authenticated.
type Principal interface {
	IsAuthenticated() bool
}

type Anonymous struct{}

func (Anonymous) IsAuthenticated() bool { return false }

type Authenticated struct {
	User *models.User
}

func (Authenticated) IsAuthenticated() bool { return true }

type principalKey struct{}

func WithPrincipal(ctx context.Context, p Principal) context.Context {
	return context.WithValue(ctx, principalKey{}, p)
}

// FromContext returns the request principal, Anonymous when none was attached.
func FromContext(ctx context.Context) Principal {
	if p, ok := ctx.Value(principalKey{}).(Principal); ok && p != nil {
		return p
	}
	return Anonymous{}
}

// CurrentUser returns the authenticated user, if any.
func CurrentUser(ctx context.Context) (*models.User, bool) {
	if p, ok := FromContext(ctx).(Authenticated); ok && p.User != nil {
		return p.User, true
	}
	return nil, false
}
