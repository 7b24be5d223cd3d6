package handlers_test

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gorilla/mux"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"blogAPI/internal/apperror"
	"blogAPI/internal/auth"
	"blogAPI/internal/config"
	handlers "blogAPI/internal/handler"
	"blogAPI/internal/logging"
	"blogAPI/internal/models"
	"blogAPI/internal/service"
)

type fixture struct {
	auth    *MockAuthService
	users   *MockUserService
	posts   *MockPostService
	handler *handlers.Handlers
}

func newFixture() *fixture {
	f := &fixture{
		auth:  new(MockAuthService),
		users: new(MockUserService),
		posts: new(MockPostService),
	}
	f.handler = handlers.NewHandlers(
		&service.Service{Auth: f.auth, User: f.users, Post: f.posts},
		&config.Config{MaxUploadSize: 1 << 20},
		logging.Discard(),
		nil,
	)
	return f
}

// newRequest builds a request with an optional JSON body, route variables
// and an authenticated caller.
func newRequest(t *testing.T, method, target string, body interface{}, vars map[string]string, caller *models.User) *http.Request {
	t.Helper()

	var buf bytes.Buffer
	if body != nil {
		switch b := body.(type) {
		case string:
			buf.WriteString(b)
		default:
			require.NoError(t, json.NewEncoder(&buf).Encode(b))
		}
	}

	req := httptest.NewRequest(method, target, &buf)
	req.Header.Set("Content-Type", "application/json")
	if vars != nil {
		req = mux.SetURLVars(req, vars)
	}
	if caller != nil {
		req = req.WithContext(auth.WithPrincipal(req.Context(), auth.Authenticated{User: caller}))
	}
	return req
}

func decodeError(t *testing.T, rr *httptest.ResponseRecorder) string {
	t.Helper()
	var resp handlers.ErrorResponse
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &resp))
	return resp.Error
}

func TestNewHandlers(t *testing.T) {
	f := newFixture()

	assert.NotNil(t, f.handler.AuthService)
	assert.NotNil(t, f.handler.UserService)
	assert.NotNil(t, f.handler.PostService)
	assert.NotNil(t, f.handler.Cfg)
	assert.NotNil(t, f.handler.Log)
}

func TestStatusFor(t *testing.T) {
	tests := []struct {
		kind   apperror.Kind
		status int
	}{
		{apperror.KindValidation, http.StatusBadRequest},
		{apperror.KindAuthentication, http.StatusUnauthorized},
		{apperror.KindForbidden, http.StatusForbidden},
		{apperror.KindNotFound, http.StatusNotFound},
		{apperror.KindConflict, http.StatusConflict},
		{apperror.KindInternal, http.StatusInternalServerError},
	}

	for _, tt := range tests {
		t.Run(tt.kind.String(), func(t *testing.T) {
			assert.Equal(t, tt.status, handlers.StatusFor(tt.kind))
		})
	}
}

func TestWriteAppError_HidesInternalDetail(t *testing.T) {
	rr := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/api/posts", nil)

	handlers.WriteAppError(rr, req, logging.Discard(), errors.New("pq: password authentication failed"))

	assert.Equal(t, http.StatusInternalServerError, rr.Code)
	assert.Equal(t, "internal server error", decodeError(t, rr))
}

func TestHealth(t *testing.T) {
	t.Run("all checks pass", func(t *testing.T) {
		f := newFixture()
		db := new(MockHealthChecker)
		db.On("HealthCheck", mock.Anything).Return(nil)
		f.handler.HealthChecks = map[string]handlers.HealthChecker{"database": db}

		rr := httptest.NewRecorder()
		f.handler.Health(rr, httptest.NewRequest(http.MethodGet, "/health", nil))

		assert.Equal(t, http.StatusOK, rr.Code)
		var resp handlers.HealthResponse
		require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &resp))
		assert.Equal(t, "ok", resp.Status)
		assert.Equal(t, "ok", resp.Checks["database"])
	})

	t.Run("failing dependency", func(t *testing.T) {
		f := newFixture()
		db := new(MockHealthChecker)
		db.On("HealthCheck", mock.Anything).Return(context.DeadlineExceeded)
		f.handler.HealthChecks = map[string]handlers.HealthChecker{"database": db}

		rr := httptest.NewRecorder()
		f.handler.Health(rr, httptest.NewRequest(http.MethodGet, "/health", nil))

		assert.Equal(t, http.StatusServiceUnavailable, rr.Code)
	})
}
