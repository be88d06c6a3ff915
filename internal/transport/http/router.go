package http

import (
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"sociogram/internal/handler"
	"sociogram/internal/httputil"
	"sociogram/internal/service"
	authmw "sociogram/internal/transport/http/middleware"
)

// RouterConfig holds the dependencies needed to create routes
type RouterConfig struct {
	AuthHandler   *handler.AuthHandler
	UserHandler   *handler.UserHandler
	FriendHandler *handler.FriendHandler
	FeedHandler   *handler.FeedHandler
	PostHandler   *handler.PostHandler
	TokenService  *service.TokenService

	// AssetDir serves stored images over AssetURLPrefix when the local
	// storage backend is active. Empty disables static serving.
	AssetDir       string
	AssetURLPrefix string
}

// NewRouter creates and configures a new Chi router with all route groups
func NewRouter(cfg RouterConfig) chi.Router {
	r := chi.NewRouter()

	r.Use(middleware.Logger)
	r.Use(middleware.Recoverer)
	r.Use(middleware.RequestID)

	// Health check endpoint (useful for deployment/monitoring)
	r.Get("/health", func(w http.ResponseWriter, r *http.Request) {
		httputil.WriteJSON(w, 200, map[string]string{"status": "ok"})
	})

	// Public routes - no authentication required
	r.Route("/auth", func(r chi.Router) {
		r.Post("/register", cfg.AuthHandler.Register)
		r.Post("/login", cfg.AuthHandler.Login)
	})

	// Static assets when running on local storage
	if cfg.AssetDir != "" {
		prefix := strings.TrimSuffix(cfg.AssetURLPrefix, "/")
		fs := http.StripPrefix(prefix+"/", http.FileServer(http.Dir(cfg.AssetDir)))
		r.Get(prefix+"/*", fs.ServeHTTP)
	}

	// Protected routes - require authentication
	r.Group(func(r chi.Router) {
		r.Use(authmw.AuthMiddleware(cfg.TokenService))

		r.Get("/me", cfg.AuthHandler.Me)

		r.Route("/users", func(r chi.Router) {
			r.Get("/{id}", cfg.UserHandler.GetProfile)
			r.Get("/{id}/friends", cfg.FriendHandler.GetFriends)
			r.Patch("/{id}/{friendId}", cfg.FriendHandler.Toggle)
		})

		r.Route("/posts", func(r chi.Router) {
			r.Post("/", cfg.PostHandler.Create)
			r.Get("/", cfg.FeedHandler.ListAll)
			r.Get("/{userId}", cfg.FeedHandler.FriendsFeed)
			r.Patch("/{id}/like", cfg.PostHandler.ToggleLike)
			r.Post("/{id}/comments", cfg.PostHandler.AddComment)
			r.Delete("/{id}", cfg.PostHandler.Delete)
		})
	})

	return r
}
