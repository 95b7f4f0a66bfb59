package http

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"foodgram/internal/handler"
	"foodgram/internal/httputil"
	authmw "foodgram/internal/transport/http/middleware"
)

// RouterConfig holds the dependencies needed to create routes
type RouterConfig struct {
	AuthHandler    *handler.AuthHandler
	UserHandler    *handler.UserHandler
	FollowHandler  *handler.FollowHandler
	PostHandler    *handler.PostHandler
	CommentHandler *handler.CommentHandler
	// MediaHandler is nil when R2 is not configured; media routes are then not mounted
	MediaHandler *handler.MediaHandler

	JWTSecret      string
	Users          authmw.UserLookup
	RequestTimeout time.Duration
}

// NewRouter creates and configures a new Chi router with all route groups
func NewRouter(cfg RouterConfig) chi.Router {
	r := chi.NewRouter()

	r.Use(middleware.RequestID)
	r.Use(middleware.Logger)
	r.Use(middleware.Recoverer)
	if cfg.RequestTimeout > 0 {
		r.Use(middleware.Timeout(cfg.RequestTimeout))
	}

	r.Get("/health", func(w http.ResponseWriter, r *http.Request) {
		httputil.WriteJSON(w, http.StatusOK, map[string]string{"status": "ok"})
	})

	// Public routes - no authentication required
	r.Route("/auth", func(r chi.Router) {
		r.Post("/signup", cfg.AuthHandler.Signup)
		r.Post("/login", cfg.AuthHandler.Login)
		r.Post("/refresh", cfg.AuthHandler.Refresh)
		r.Post("/logout", cfg.AuthHandler.Logout)
	})

	r.Get("/users", cfg.UserHandler.Rank)
	r.Get("/users/{id}", cfg.UserHandler.GetProfile)
	r.Get("/users/{id}/followers", cfg.FollowHandler.GetFollowers)
	r.Get("/users/{id}/following", cfg.FollowHandler.GetFollowing)

	r.Get("/posts", cfg.PostHandler.List)
	r.Get("/posts/{id}", cfg.PostHandler.GetByID)
	r.Get("/posts/{id}/comments", cfg.CommentHandler.List)
	r.Get("/posts/{id}/comments/{commentId}/replies", cfg.CommentHandler.Replies)

	// Protected routes - require authentication
	r.Group(func(r chi.Router) {
		r.Use(authmw.AuthMiddleware(cfg.JWTSecret, cfg.Users))

		r.Post("/auth/logout-all", cfg.AuthHandler.LogoutAll)

		r.Get("/users/me", cfg.UserHandler.Me)
		r.Put("/users/me", cfg.UserHandler.UpdateMe)
		r.Put("/users/me/avatar", cfg.UserHandler.UpdateAvatar)
		r.Delete("/users/{id}", cfg.UserHandler.Delete)
		r.Post("/users/{id}/follow", cfg.FollowHandler.Toggle)

		r.Post("/posts", cfg.PostHandler.Create)
		r.Put("/posts/{id}", cfg.PostHandler.Update)
		r.Delete("/posts/{id}", cfg.PostHandler.Delete)
		r.Post("/posts/{id}/likes", cfg.PostHandler.ToggleLike)
		r.Post("/posts/{id}/favs", cfg.PostHandler.ToggleFavorite)
		r.Post("/posts/{id}/share", cfg.PostHandler.ToggleShare)

		r.Post("/posts/{id}/comments", cfg.CommentHandler.Create)
		r.Post("/posts/{id}/comments/{commentId}/reply", cfg.CommentHandler.Reply)
		r.Delete("/posts/comments/{commentId}", cfg.CommentHandler.Delete)

		// Media endpoints (direct-to-R2 uploads)
		if cfg.MediaHandler != nil {
			r.Post("/media/posts/presign", cfg.MediaHandler.PresignPostUpload)
			r.Post("/media/posts/presign/batch", cfg.MediaHandler.PresignPostUploadBatch)
		}
	})

	return r
}
