package handlers

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"

	"github.com/sirupsen/logrus"

	"blogAPI/internal/apperror"
	"blogAPI/internal/auth"
	"blogAPI/internal/config"
	"blogAPI/internal/service"
)

// maxJSONBody caps JSON request bodies.
const maxJSONBody = 1 << 20

// HealthChecker is a dependency checked by GET /health.
type HealthChecker interface {
	HealthCheck(ctx context.Context) error
}

type Handlers struct {
	UserService  service.UserService
	AuthService  service.AuthService
	PostService  service.PostService
	HealthChecks map[string]HealthChecker
	Cfg          *config.Config
	Log          *logrus.Logger
}

func NewHandlers(service *service.Service, config *config.Config, log *logrus.Logger, checks map[string]HealthChecker) *Handlers {
	return &Handlers{
		UserService:  service.User,
		AuthService:  service.Auth,
		PostService:  service.Post,
		HealthChecks: checks,
		Cfg:          config,
		Log:          log,
	}
}

// decodeJSON decodes exactly one JSON object into dst. Unknown fields are
// rejected.
func decodeJSON(w http.ResponseWriter, r *http.Request, dst interface{}) error {
	r.Body = http.MaxBytesReader(w, r.Body, maxJSONBody)

	decoder := json.NewDecoder(r.Body)
	decoder.DisallowUnknownFields()

	if err := decoder.Decode(dst); err != nil {
		var maxErr *http.MaxBytesError
		switch {
		case errors.Is(err, io.EOF):
			return apperror.Validation("request body is empty")
		case errors.As(err, &maxErr):
			return apperror.Validation("request body is too large")
		default:
			return apperror.Validation("invalid request body: %v", err)
		}
	}

	if decoder.More() {
		return apperror.Validation("request body must contain a single JSON object")
	}

	return nil
}

// currentUserID returns the caller resolved by the auth guard.
func currentUserID(r *http.Request) (string, error) {
	user, ok := auth.CurrentUser(r.Context())
	if !ok {
		return "", apperror.Authentication("authentication required")
	}
	return user.UserID, nil
}
