package middleware

import (
	"context"
	"net/http"

	"github.com/sirupsen/logrus"

	"blogAPI/internal/apperror"
	"blogAPI/internal/auth"
	handlers "blogAPI/internal/handler"
	"blogAPI/internal/models"
)

type TokenVerifier interface {
	Verify(token string) (string, error)
}

type UserFinder interface {
	GetByID(ctx context.Context, userID string) (*models.User, error)
}

// AuthGuard resolves the bearer token of a request to a stored user.
type AuthGuard struct {
	tokens TokenVerifier
	users  UserFinder
	log    *logrus.Logger
}

func NewAuthGuard(tokens TokenVerifier, users UserFinder, log *logrus.Logger) *AuthGuard {
	return &AuthGuard{tokens: tokens, users: users, log: log}
}

var (
	errMissingToken = apperror.Authentication("authentication required")
	errUnknownUser  = apperror.Authentication("user no longer exists")
)

func (g *AuthGuard) resolve(r *http.Request) (*models.User, error) {
	header := r.Header.Get("Authorization")
	if header == "" {
		return nil, errMissingToken
	}

	token, ok := bearerToken(header)
	if !ok {
		return nil, apperror.Authentication("authorization header must be: Bearer <token>")
	}

	userID, err := g.tokens.Verify(token)
	if err != nil {
		return nil, err
	}

	user, err := g.users.GetByID(r.Context(), userID)
	if err != nil {
		if apperror.IsNotFound(err) {
			return nil, errUnknownUser
		}
		return nil, err
	}

	return user, nil
}

// RequireAuth rejects requests without a valid token for an existing user.
func (g *AuthGuard) RequireAuth(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		user, err := g.resolve(r)
		if err != nil {
			if apperror.KindOf(err) != apperror.KindAuthentication {
				handlers.WriteAppError(w, r, g.log, err)
				return
			}
			handlers.WriteError(w, apperror.MessageOf(err), http.StatusUnauthorized)
			return
		}

		ctx := auth.WithPrincipal(r.Context(), auth.Authenticated{User: user})
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

// Identify never rejects: requests without valid credentials continue as
// anonymous.
func (g *AuthGuard) Identify(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		var principal auth.Principal = auth.Anonymous{}

		user, err := g.resolve(r)
		switch {
		case err == nil:
			principal = auth.Authenticated{User: user}
		case apperror.KindOf(err) != apperror.KindAuthentication:
			g.log.WithError(err).Warn("could not identify caller")
		}

		next.ServeHTTP(w, r.WithContext(auth.WithPrincipal(r.Context(), principal)))
	})
}
