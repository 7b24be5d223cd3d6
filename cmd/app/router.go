package app

import (
	"net/http"

	"github.com/gorilla/mux"
	"github.com/sirupsen/logrus"

	"blogAPI/internal/config"
	handlers "blogAPI/internal/handler"
	"blogAPI/internal/middleware"
)

// Guard is the authentication middleware used by the router.
type Guard interface {
	RequireAuth(next http.Handler) http.Handler
	Identify(next http.Handler) http.Handler
}

func NewRouter(h *handlers.Handlers, guard Guard, cfg *config.Config, log *logrus.Logger) http.Handler {
	r := mux.NewRouter()
	r.NotFoundHandler = http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		handlers.WriteError(w, "route not found", http.StatusNotFound)
	})
	r.MethodNotAllowedHandler = http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		handlers.WriteError(w, "method not allowed", http.StatusMethodNotAllowed)
	})

	r.HandleFunc("/health", h.Health).Methods(http.MethodGet)

	protected := func(fn http.HandlerFunc) http.Handler {
		return guard.RequireAuth(fn)
	}
	// identified reads are public but mark likedByMe for a signed-in caller
	identified := func(fn http.HandlerFunc) http.Handler {
		return guard.Identify(fn)
	}

	api := r.PathPrefix("/api").Subrouter()

	// auth
	api.HandleFunc("/register", h.Register).Methods(http.MethodPost)
	api.HandleFunc("/login", h.Login).Methods(http.MethodPost)
	api.Handle("/auth/refresh", protected(h.Refresh)).Methods(http.MethodPost)
	api.Handle("/me", protected(h.GetCurrentUser)).Methods(http.MethodGet)

	// users
	api.Handle("/users/profile", protected(h.UpdateProfile)).Methods(http.MethodPut)
	api.HandleFunc("/users/{id}", h.GetUser).Methods(http.MethodGet)

	// posts; /posts/user is registered before /posts/{id}
	api.Handle("/posts", identified(h.GetPosts)).Methods(http.MethodGet)
	api.Handle("/posts", protected(h.CreatePost)).Methods(http.MethodPost)
	api.Handle("/posts/user", protected(h.GetMyPosts)).Methods(http.MethodGet)
	api.Handle("/posts/{id}", identified(h.GetPost)).Methods(http.MethodGet)
	api.Handle("/posts/{id}", protected(h.UpdatePost)).Methods(http.MethodPatch, http.MethodPut)
	api.Handle("/posts/{id}", protected(h.DeletePost)).Methods(http.MethodDelete)
	api.Handle("/posts/{id}/like", protected(h.ToggleLike)).Methods(http.MethodPost)
	api.HandleFunc("/posts/{id}/comments", h.GetComments).Methods(http.MethodGet)
	api.Handle("/posts/{id}/comments", protected(h.AddComment)).Methods(http.MethodPost)

	return middleware.Chain(r,
		middleware.Timeout(cfg.RequestTimeout),
		middleware.CORS(cfg.CORSAllowedOrigin),
		middleware.Logging(log),
		middleware.Recover(log),
	)
}
